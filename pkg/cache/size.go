package cache

import (
	"encoding/json"
	"errors"
)

// DefaultEntrySize is charged for values the Sizer cannot measure.
const DefaultEntrySize int64 = 1024

// Sizer estimates the number of bytes a value occupies.
type Sizer func(value any) (int64, error)

// JSONSizer measures a value by the length of its JSON encoding.
func JSONSizer(value any) (int64, error) {
	b, err := json.Marshal(value)
	if err != nil {
		return 0, errors.Join(ErrSerialization, err)
	}
	return int64(len(b)), nil
}
