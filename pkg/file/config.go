package file

// Config selects the directory used by FSStore.
type Config struct {
	Dir            string `env:"CACHE_FILE_DIR" envDefault:"var/cache"`        // Dir is the root directory; each namespace gets a subdirectory.
}

// S3Config contains configuration for S3Store.
type S3Config struct {
	Bucket         string `env:"CACHE_S3_BUCKET"`
	Region         string `env:"CACHE_S3_REGION"`
	AccessKeyID    string `env:"CACHE_S3_ACCESS_KEY_ID"`
	SecretKey      string `env:"CACHE_S3_SECRET_KEY"`
	Endpoint       string `env:"CACHE_S3_ENDPOINT"`                            // Optional: for S3-compatible services
	Prefix         string `env:"CACHE_S3_PREFIX" envDefault:"smartcache"`      // Object key prefix shared by every namespace
	ForcePathStyle bool   `env:"CACHE_S3_FORCE_PATH_STYLE" envDefault:"false"` // For S3-compatible services like MinIO
}
