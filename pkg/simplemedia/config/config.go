package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/simple-media/pkg/simplemedia"
	"github.com/tendant/simple-media/pkg/simplemedia/api"
	"github.com/tendant/simple-media/pkg/simplemedia/federation"
	"github.com/tendant/simple-media/pkg/simplemedia/identity"
	"github.com/tendant/simple-media/pkg/simplemedia/repo/memory"
	repopg "github.com/tendant/simple-media/pkg/simplemedia/repo/postgres"
	fsstorage "github.com/tendant/simple-media/pkg/simplemedia/storage/fs"
	memorystorage "github.com/tendant/simple-media/pkg/simplemedia/storage/memory"
	s3storage "github.com/tendant/simple-media/pkg/simplemedia/storage/s3"
)

// Option applies configuration to a ServerConfig instance.
type Option func(*ServerConfig) error

// Load constructs a ServerConfig by applying the supplied options on top of library defaults.
func Load(opts ...Option) (*ServerConfig, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaults() ServerConfig {
	return ServerConfig{
		Port:        "8080",
		Environment: "development",
		DatabaseURL: "memory",
		DBSchema:    "media",
		StorageURL:  "memory://",
		Federation: FederationConfig{
			Scheme:  "https",
			Timeout: 60 * time.Second,
		},
		MaxUploadSize: 50 << 20,
		EnableMetrics: true,
	}
}

// ServerConfig represents server configuration for the simple-media service
type ServerConfig struct {
	ServerName        string   `env:"SERVER_NAME" validate:"required"`
	ServerNameAliases []string `env:"SERVER_NAME_ALIASES" env-separator:","`

	Port        string `env:"PORT" env-default:"8080" validate:"required,numeric"`
	Environment string `env:"ENVIRONMENT" env-default:"development" validate:"oneof=development production testing"`

	// DatabaseURL is "memory" or a postgres:// connection string
	DatabaseURL string `env:"DATABASE_URL" env-default:"memory" validate:"required"`
	DBSchema    string `env:"DB_SCHEMA" env-default:"media"`

	// StorageURL is memory://, file:///path or s3://bucket?region=..&endpoint=..
	StorageURL string `env:"STORAGE_URL" env-default:"memory://" validate:"required"`
	S3         S3Credentials

	Federation FederationConfig

	MaxUploadSize int64 `env:"MAX_UPLOAD_SIZE" env-default:"52428800" validate:"gt=0"`
	EnableMetrics bool  `env:"ENABLE_METRICS" env-default:"true"`
}

// S3Credentials holds secrets that do not belong in STORAGE_URL
type S3Credentials struct {
	AccessKeyID     string `env:"S3_ACCESS_KEY_ID"`
	SecretAccessKey string `env:"S3_SECRET_ACCESS_KEY"`
}

// FederationConfig configures remote media downloads
type FederationConfig struct {
	Scheme  string        `env:"FEDERATION_SCHEME" env-default:"https" validate:"oneof=http https"`
	Timeout time.Duration `env:"FEDERATION_TIMEOUT" env-default:"60s" validate:"gt=0"`
}

var validate = validator.New()

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if err := api.ValidateServerName(c.ServerName); err != nil {
		return fmt.Errorf("invalid server_name: %w", err)
	}
	for _, alias := range c.ServerNameAliases {
		if err := api.ValidateServerName(strings.TrimSpace(alias)); err != nil {
			return fmt.Errorf("invalid server_name alias: %w", err)
		}
	}

	if !c.usesPostgres() && c.DatabaseURL != "memory" {
		return fmt.Errorf("unsupported DATABASE_URL format: %s (use 'memory' or 'postgres://...')", c.DatabaseURL)
	}

	if _, err := c.storage(); err != nil {
		return err
	}

	return nil
}

func (c *ServerConfig) usesPostgres() bool {
	return strings.HasPrefix(c.DatabaseURL, "postgres://") || strings.HasPrefix(c.DatabaseURL, "postgresql://")
}

// BuildIdentity returns the set of server names this server owns.
func (c *ServerConfig) BuildIdentity() *identity.ServerNames {
	return identity.New(c.ServerName, c.ServerNameAliases...)
}

// BuildRepository creates a Repository based on the configuration. The
// returned close function releases any database pool.
func (c *ServerConfig) BuildRepository(ctx context.Context) (simplemedia.Repository, func(), error) {
	if !c.usesPostgres() {
		return memory.New(), func() {}, nil
	}

	cfg, err := pgxpool.ParseConfig(c.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse DATABASE_URL: %w", err)
	}
	if schema := c.DBSchema; schema != "" {
		cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
			_, err := conn.Exec(ctx, "SET search_path TO "+pgx.Identifier{schema}.Sanitize())
			return err
		}
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("database ping failed: %w", err)
	}

	repo := repopg.NewWithPool(pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return repo, pool.Close, nil
}

type storageTarget struct {
	kind string // memory, fs, s3
	fs   fsstorage.Config
	s3   s3storage.Config
}

// storage parses StorageURL.
func (c *ServerConfig) storage() (storageTarget, error) {
	u, err := url.Parse(c.StorageURL)
	if err != nil {
		return storageTarget{}, fmt.Errorf("invalid STORAGE_URL: %w", err)
	}

	switch u.Scheme {
	case "memory":
		return storageTarget{kind: "memory"}, nil
	case "file":
		if u.Path == "" {
			return storageTarget{}, errors.New("filesystem path cannot be empty in STORAGE_URL")
		}
		return storageTarget{kind: "fs", fs: fsstorage.Config{BaseDir: u.Path}}, nil
	case "s3":
		if u.Host == "" {
			return storageTarget{}, errors.New("S3 bucket name cannot be empty in STORAGE_URL")
		}
		q := u.Query()
		pathStyle, _ := strconv.ParseBool(q.Get("path_style"))
		createBucket, _ := strconv.ParseBool(q.Get("create_bucket"))
		return storageTarget{kind: "s3", s3: s3storage.Config{
			Bucket:                 u.Host,
			Region:                 q.Get("region"),
			Endpoint:               q.Get("endpoint"),
			UsePathStyle:           pathStyle,
			EnableSSE:              q.Get("sse") != "",
			SSEAlgorithm:           q.Get("sse"),
			SSEKMSKeyID:            q.Get("sse_kms_key_id"),
			AccessKeyID:            c.S3.AccessKeyID,
			SecretAccessKey:        c.S3.SecretAccessKey,
			CreateBucketIfNotExist: createBucket,
		}}, nil
	default:
		return storageTarget{}, fmt.Errorf("unsupported STORAGE_URL format: %s (use 'memory://', 'file://...', or 's3://...')", c.StorageURL)
	}
}

// BuildBlobStore creates the BlobStore named by StorageURL.
func (c *ServerConfig) BuildBlobStore() (simplemedia.BlobStore, error) {
	target, err := c.storage()
	if err != nil {
		return nil, err
	}

	switch target.kind {
	case "fs":
		return fsstorage.New(target.fs)
	case "s3":
		return s3storage.New(target.s3)
	default:
		return memorystorage.New(), nil
	}
}

// BuildFetcher creates the federation client.
func (c *ServerConfig) BuildFetcher() *federation.Client {
	return federation.New(federation.Config{
		Scheme:    c.Federation.Scheme,
		Timeout:   c.Federation.Timeout,
		MaxSize:   c.MaxUploadSize,
		UserAgent: "simple-media/" + c.ServerName,
	})
}
