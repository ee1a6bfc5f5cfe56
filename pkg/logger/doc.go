// Package logger wraps log/slog with functional options, helper attribute
// constructors and injection of values stored in context.Context.
//
// New creates a *slog.Logger from a set of Option functions that select the
// output format (text or json), the minimum level, static attributes, and
// ContextExtractor callbacks that add attributes from the context on every
// record.
//
// # Architecture
//
// New picks slog.NewTextHandler or slog.NewJSONHandler based on the Format
// and wraps it with a handler that appends attributes stored by
// ContextWithAttrs and runs the registered ContextExtractor callbacks before
// delegating to the underlying handler.
//
// Helper constructors in attr.go (Cache, Key, Namespace, Size, Duration,
// Error, ...) keep attribute names consistent across the cache engine and its
// persistence backends.
//
// # Usage
//
//	import "github.com/dmitrymomot/smartcache/pkg/logger"
//
//	log := logger.New(logger.WithEnvironment(os.Getenv("APP_ENV"), "cache"))
//	logger.SetAsDefault(log)
//
//	log.Warn("cache entry not persisted",
//	    logger.Cache("user-data"),
//	    logger.Key("user:42"),
//	    logger.Error(err),
//	)
//
// # Error Handling
//
// Error and Errors produce attributes only for non-nil errors, so
//
//	log.Info("sweep finished", logger.Error(err))
//
// needs no additional nil check.
package logger
