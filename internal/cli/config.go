package cli

import (
	"time"

	"github.com/dmitrymomot/docvault/pkg/httpserver"
	"github.com/dmitrymomot/docvault/pkg/ingest"
)

// Storage drivers accepted by STORAGE_DRIVER.
const (
	DriverLocal = "local"
	DriverS3    = "s3"
)

// Config is the application configuration read from the environment and
// optional dotenv files.
type Config struct {
	AppEnv        string `env:"APP_ENV" envDefault:"development"`
	AppName       string `env:"APP_NAME" envDefault:"docvault"`
	LogLevel      string `env:"LOG_LEVEL"`
	LogFile       string `env:"LOG_FILE"`
	MaxUploadSize int64  `env:"MAX_UPLOAD_SIZE" envDefault:"104857600"`
	StorageDriver string `env:"STORAGE_DRIVER" envDefault:"local"`
	NameAttempts  int    `env:"NAME_ATTEMPTS" envDefault:"3"`

	// ClientIPHeaders lists the proxy headers trusted for the client address,
	// in priority order.
	ClientIPHeaders []string `env:"CLIENT_IP_HEADERS" envDefault:"CF-Connecting-IP,X-Forwarded-For,X-Real-IP" envSeparator:","`

	Ingest ingest.Settings
	S3     S3Config
	HTTP   httpserver.Config
}

// S3Config configures the S3-compatible storage driver.
type S3Config struct {
	Bucket         string        `env:"S3_BUCKET"`
	Region         string        `env:"S3_REGION" envDefault:"us-east-1"`
	AccessKeyID    string        `env:"S3_ACCESS_KEY_ID"`
	SecretKey      string        `env:"S3_SECRET_KEY"`
	Endpoint       string        `env:"S3_ENDPOINT"`
	Prefix         string        `env:"S3_PREFIX"`
	ForcePathStyle bool          `env:"S3_FORCE_PATH_STYLE" envDefault:"false"`
	UploadTimeout  time.Duration `env:"S3_UPLOAD_TIMEOUT" envDefault:"5m"`
	PartSize       int64         `env:"S3_PART_SIZE"`
}
