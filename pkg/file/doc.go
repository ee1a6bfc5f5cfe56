// Package file provides filesystem and object-storage backends for cache.Store.
//
// Two implementations are provided:
//   - FSStore: one JSON file per entry on a go-billy filesystem. Use
//     NewLocalStore for a directory on disk or NewMemoryStore for tests.
//   - S3Store: one JSON object per entry in Amazon S3 or an S3-compatible
//     service (MinIO, Wasabi, etc.).
//
// Both lay entries out the same way:
//
//	<root or prefix>/<base64url(namespace)>/<sha256(key)>.json
//
// The file body is the cache.SerializedEntry wire form, which carries the
// original key, so names never have to be decoded.
//
// # Usage
//
//	store, err := file.NewLocalStore(file.Config{Dir: "/var/cache/app"})
//	if err != nil {
//		return err
//	}
//	reg, err := cache.NewDefaultRegistry(cache.WithRegistryStore(store))
//
// S3-compatible storage:
//
//	store, err := file.NewS3Store(ctx, file.S3Config{
//		Bucket:         "app-cache",
//		Region:         "us-east-1",
//		Endpoint:       "http://localhost:9000",
//		ForcePathStyle: true,
//	})
//
// # Error Handling
//
// S3 errors are classified into sentinel errors (ErrAccessDenied,
// ErrBucketNotFound, ErrServiceUnavailable, ErrOperationTimeout, ...) that
// can be checked with errors.Is. Filesystem errors are joined with
// ErrFailedToReadFile, ErrFailedToWriteFile and friends.
package file
