package smartcache

import "errors"

var (
	ErrEngineClosed      = errors.New("cache engine is closed")
	ErrBackendUnhealthy  = errors.New("cache backend is unhealthy")
	ErrBackendConfig     = errors.New("failed to load cache backend config")
	ErrBackendConnection = errors.New("failed to open cache backend")
)
