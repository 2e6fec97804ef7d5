package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

type Config struct {
	AppEnv   string `envconfig:"APP_ENV"   default:"development"`
	HTTPPort string `envconfig:"HTTP_PORT" default:":3000"`
	GrpcPort string `envconfig:"GRPC_PORT" default:""` // gRPC health listener, disabled when empty

	DatabaseURL       string        `envconfig:"DATABASE_URL"         required:"true"`
	DBDriver          string        `envconfig:"DB_DRIVER"            default:"postgres"`
	DBMaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS"    default:"25"`
	DBMaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS"    default:"5"`
	DBConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"30m"`

	JWTSecret    string        `envconfig:"JWT_SECRET"     required:"true"`
	JWTExpiresIn time.Duration `envconfig:"JWT_EXPIRES_IN" default:"168h"`
	BcryptCost   int           `envconfig:"BCRYPT_COST"    default:"12"`

	LogLevel  string `envconfig:"LOG_LEVEL"  default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`
	LogFile   string `envconfig:"LOG_FILE"   default:""`

	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`

	UploadDir     string `envconfig:"UPLOAD_DIR"      default:"./uploads"`
	PublicBaseURL string `envconfig:"PUBLIC_BASE_URL" default:"http://localhost:3000"`

	CloudinaryCloudName string `envconfig:"CLOUDINARY_CLOUD_NAME"`
	CloudinaryAPIKey    string `envconfig:"CLOUDINARY_API_KEY"`
	CloudinaryAPISecret string `envconfig:"CLOUDINARY_API_SECRET"`
	CloudinaryFolder    string `envconfig:"CLOUDINARY_FOLDER" default:"ecommerce"`
}

var (
	config  Config
	loadErr error
	once    sync.Once
)

// LoadConfig reads .env (when present) and the process environment once.
// Later calls return the same result.
func LoadConfig(logger *logrus.Logger) (*Config, error) {
	once.Do(func() {
		err := godotenv.Load()
		if err != nil && !os.IsNotExist(err) {
			logger.Warnf("Error loading .env file (but continuing): %v", err)
		} else if err == nil {
			logger.Info("Loaded configuration from .env file")
		}

		if err := envconfig.Process("", &config); err != nil {
			loadErr = fmt.Errorf("failed to process configuration from environment variables: %w", err)
			return
		}
		if err := config.Validate(); err != nil {
			loadErr = err
			return
		}

		logger.Infof("Configuration loaded: env=%s, HTTP port=%s, gRPC port=%q, DB driver=%s, log level=%s",
			config.AppEnv, config.HTTPPort, config.GrpcPort, config.DBDriver, config.LogLevel)
		if config.CloudinaryEnabled() {
			logger.Info("Configuration loaded: Cloudinary asset storage is set")
		} else {
			logger.Infof("Configuration loaded: using local asset storage in %s", config.UploadDir)
		}
	})
	if loadErr != nil {
		return nil, loadErr
	}
	return &config, nil
}

func (c *Config) Validate() error {
	switch c.DBDriver {
	case "postgres", "pgx":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (expected postgres or pgx)", c.DBDriver)
	}
	if strings.TrimSpace(c.JWTSecret) == "" {
		return errors.New("JWT_SECRET cannot be empty")
	}
	if c.JWTExpiresIn <= 0 {
		return errors.New("JWT_EXPIRES_IN must be positive")
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("unsupported LOG_FORMAT %q (expected json or text)", c.LogFormat)
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// CloudinaryEnabled reports whether all Cloudinary credentials are present.
func (c *Config) CloudinaryEnabled() bool {
	return c.CloudinaryCloudName != "" && c.CloudinaryAPIKey != "" && c.CloudinaryAPISecret != ""
}
