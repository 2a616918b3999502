package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

var (
	ErrInvalidEnv     = errors.New("invalid env")
	ErrInvalidStorage = errors.New("invalid storage")
	ErrInvalidPort    = errors.New("invalid port")
)

type Config struct {
	Env             string `yaml:"env"`
	Storage         string `yaml:"storage"`
	ShortCodeLength int    `yaml:"short_code_length"`
	HTTPServer      `yaml:"http_server"`
	Postgres        `yaml:"postgres"`
}

type HTTPServer struct {
	Port           int           `yaml:"port"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	IdleTimeout    time.Duration `yaml:"idle_timeout"`
	MaxHeaderBytes int           `yaml:"max_header_bytes"`
	CertFile       string        `yaml:"cert_file"`
	KeyFile        string        `yaml:"key_file"`
}

var defaultHTTPServer = HTTPServer{
	Port:           5000,
	ReadTimeout:    5 * time.Second,
	WriteTimeout:   10 * time.Second,
	IdleTimeout:    time.Minute,
	MaxHeaderBytes: 1 << 20,
}

func (s *HTTPServer) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

type Postgres struct {
	URL             string        `yaml:"url"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	DB              string        `yaml:"db"`
	SSLMode         string        `yaml:"sslmode"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	QueryTimeout    time.Duration `yaml:"query_timeout"`
	MigrationsPath  string        `yaml:"migrations_path"`
}

var defaultPostgres = Postgres{
	User:            "postgres",
	Password:        "postgres",
	Host:            "localhost",
	Port:            5432,
	DB:              "url_shortener",
	SSLMode:         "disable",
	ConnMaxIdleTime: 5 * time.Minute,
	ConnMaxLifetime: 30 * time.Minute,
	MaxIdleConns:    5,
	MaxOpenConns:    25,
	QueryTimeout:    3 * time.Second,
	MigrationsPath:  "file://migrations",
}

// DSN returns URL when it is set and otherwise builds one from the individual parts.
func (p *Postgres) DSN() string {
	if p.URL != "" {
		return p.URL
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.DB, p.SSLMode)
}

// Load builds the configuration from defaults, the YAML file at path and the environment,
// in increasing order of precedence. An empty path skips the file.
// Variables from a .env file in the working directory are loaded first when it exists.
func Load(path string) (*Config, error) {
	const op = "config.Load"

	// Missing .env is the normal case outside local development.
	_ = godotenv.Load()

	var cfg Config
	setDefaults(&cfg)

	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &cfg, nil
}

func loadFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
		return fmt.Errorf("failed to decode config file: %w", err)
	}

	return nil
}

func applyEnv(cfg *Config) error {
	if v, ok := os.LookupEnv("ENV"); ok {
		cfg.Env = v
	}
	if v, ok := os.LookupEnv("STORAGE"); ok {
		cfg.Storage = v
	}
	if v, ok := os.LookupEnv("PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidPort, v)
		}
		cfg.HTTPServer.Port = port
	}
	if v, ok := os.LookupEnv("DATABASE_URL"); ok {
		cfg.Postgres.URL = v
	}
	if v, ok := os.LookupEnv("MIGRATIONS_PATH"); ok {
		cfg.Postgres.MigrationsPath = v
	}

	return nil
}

func (cfg *Config) validate() error {
	switch cfg.Env {
	case EnvDev, EnvStage, EnvProd:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidEnv, cfg.Env)
	}

	switch cfg.Storage {
	case StoragePostgres, StorageMemory:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidStorage, cfg.Storage)
	}

	if cfg.HTTPServer.Port <= 0 || cfg.HTTPServer.Port > 65535 {
		return fmt.Errorf("%w: %d", ErrInvalidPort, cfg.HTTPServer.Port)
	}

	return nil
}

func setDefaults(cfg *Config) {
	cfg.Env = EnvDev
	cfg.Storage = StoragePostgres
	cfg.ShortCodeLength = 8
	cfg.HTTPServer = defaultHTTPServer
	cfg.Postgres = defaultPostgres
}
