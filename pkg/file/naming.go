package file

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
)

// namespaceDir maps a namespace to a single path segment.
func namespaceDir(namespace string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(namespace))
}

// entryName maps a cache key to a fixed-length file name. The key itself is
// kept inside the entry, so the mapping never has to be reversed.
func entryName(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:]) + ".json"
}
