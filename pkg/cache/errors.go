package cache

import "errors"

var (
	// ErrInvalidConfig is returned when a Config holds a negative TTL or MaxSize.
	ErrInvalidConfig = errors.New("cache: invalid configuration")

	// ErrNoStore is returned when persistence is requested but no Store is attached.
	ErrNoStore = errors.New("cache: persistence enabled without a store")

	// ErrInstanceExists is returned when registering a name twice in one Registry.
	ErrInstanceExists = errors.New("cache: instance already registered")

	// ErrInstanceNotFound is returned by Lookup for unknown names.
	ErrInstanceNotFound = errors.New("cache: instance not found")

	// ErrTypeMismatch is returned by Lookup when the instance holds a different value type.
	ErrTypeMismatch = errors.New("cache: instance value type mismatch")

	// ErrEmptyName is returned when an instance is created without a name.
	ErrEmptyName = errors.New("cache: instance name is empty")

	// Failures below are logged and never returned from Get/Set/Delete/Has.

	// ErrSerialization marks a value that could not be encoded or decoded.
	ErrSerialization = errors.New("cache: serialization failed")

	// ErrPersistence marks a failed call to the durable store.
	ErrPersistence = errors.New("cache: persistence failed")
)
