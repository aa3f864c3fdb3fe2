package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Env               string        `yaml:"env"`
	IP                string        `yaml:"ip"`
	Port              string        `yaml:"port"`
	PoolSize          int           `yaml:"pool"`
	RequestLimit      int           `yaml:"limit"` // 0 = unlimited
	AdminPort         string        `yaml:"admin_port"`
	DocRoot           string        `yaml:"doc_root"`
	SleepDelay        time.Duration `yaml:"sleep_delay"`
	ReadTimeout       time.Duration `yaml:"read_timeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
	DatabaseURL       string        `yaml:"database_url"`
	Migrate           bool          `yaml:"migrate"`
	JWTSecret         string        `yaml:"jwt_secret"`
	JWTIssuer         string        `yaml:"jwt_issuer"`
	AdminPasswordHash string        `yaml:"admin_password_hash"`
	RateRPS           int           `yaml:"rate_rps"`
	LogLevel          string        `yaml:"log_level"`
}

var ErrUnknownArg = errors.New("config: unknown argument")

func Default() Config {
	return Config{
		Env:             "dev",
		IP:              "127.0.0.1",
		Port:            "7878",
		PoolSize:        4,
		AdminPort:       "9090",
		SleepDelay:      5 * time.Second,
		ReadTimeout:     10 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		JWTSecret:       "changeme-secret",
		JWTIssuer:       "hello-server",
		RateRPS:         100,
	}
}

// Load builds the config from defaults, an optional YAML file, the
// environment, flags and legacy key=value arguments, in that order.
func Load(args []string) (Config, error) {
	return LoadFrom(args, os.Getenv)
}

func LoadFrom(args []string, getenv func(string) string) (Config, error) {
	cfg := Default()

	fs := pflag.NewFlagSet("hello-server", pflag.ContinueOnError)
	configFile := fs.StringP("config", "c", getenv("APP_CONFIG"), "YAML config file")
	ip := fs.String("ip", "", "listen address")
	port := fs.StringP("port", "p", "", "listen port")
	pool := fs.Int("pool", 0, "worker pool size")
	limit := fs.Int("limit", 0, "stop after this many connections (0 = unlimited)")
	adminPort := fs.String("admin-port", "", "admin HTTP port")
	docRoot := fs.String("doc-root", "", "directory holding hello.html and 404.html")
	sleep := fs.Duration("sleep", 0, "delay used by GET /sleep")
	logLevel := fs.String("log-level", "", "debug|info|warn|error")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if *configFile != "" {
		if err := cfg.loadFile(*configFile); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.loadEnv(getenv); err != nil {
		return Config{}, err
	}

	if fs.Changed("ip") {
		cfg.IP = *ip
	}
	if fs.Changed("port") {
		cfg.Port = *port
	}
	if fs.Changed("pool") {
		cfg.PoolSize = *pool
	}
	if fs.Changed("limit") {
		cfg.RequestLimit = *limit
	}
	if fs.Changed("admin-port") {
		cfg.AdminPort = *adminPort
	}
	if fs.Changed("doc-root") {
		cfg.DocRoot = *docRoot
	}
	if fs.Changed("sleep") {
		cfg.SleepDelay = *sleep
	}
	if fs.Changed("log-level") {
		cfg.LogLevel = *logLevel
	}

	if err := cfg.applyArgs(fs.Args()); err != nil {
		return Config{}, err
	}
	if cfg.RequestLimit < 0 {
		return Config{}, fmt.Errorf("config: limit must be >= 0, got %d", cfg.RequestLimit)
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func (c *Config) loadEnv(getenv func(string) string) error {
	get := func(key, def string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return def
	}
	getInt := func(key string, def int) (int, error) {
		v := getenv(key)
		if v == "" {
			return def, nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("config: %s: %w", key, err)
		}
		return n, nil
	}
	getDuration := func(key string, def time.Duration) (time.Duration, error) {
		v := getenv(key)
		if v == "" {
			return def, nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("config: %s: %w", key, err)
		}
		return d, nil
	}

	var err error
	c.Env = get("APP_ENV", c.Env)
	c.IP = get("HTTP_IP", c.IP)
	c.Port = get("HTTP_PORT", c.Port)
	c.AdminPort = get("ADMIN_PORT", c.AdminPort)
	c.DocRoot = get("DOC_ROOT", c.DocRoot)
	c.DatabaseURL = get("DATABASE_URL", c.DatabaseURL)
	c.Migrate = get("APP_MIGRATE", strconv.FormatBool(c.Migrate)) == "true"
	c.JWTSecret = get("JWT_SECRET", c.JWTSecret)
	c.JWTIssuer = get("JWT_ISSUER", c.JWTIssuer)
	c.AdminPasswordHash = get("ADMIN_PASSWORD_HASH", c.AdminPasswordHash)
	c.LogLevel = get("LOG_LEVEL", c.LogLevel)
	if c.PoolSize, err = getInt("POOL_SIZE", c.PoolSize); err != nil {
		return err
	}
	if c.RequestLimit, err = getInt("REQUEST_LIMIT", c.RequestLimit); err != nil {
		return err
	}
	if c.RateRPS, err = getInt("RATE_RPS", c.RateRPS); err != nil {
		return err
	}
	if c.SleepDelay, err = getDuration("SLEEP_DELAY", c.SleepDelay); err != nil {
		return err
	}
	if c.ReadTimeout, err = getDuration("READ_TIMEOUT", c.ReadTimeout); err != nil {
		return err
	}
	if c.ShutdownTimeout, err = getDuration("SHUTDOWN_TIMEOUT", c.ShutdownTimeout); err != nil {
		return err
	}
	return nil
}

// applyArgs handles the positional ip=, port=, pool= and limit= forms.
func (c *Config) applyArgs(args []string) error {
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			return fmt.Errorf("%w: %q, expected key=value", ErrUnknownArg, arg)
		}
		switch key {
		case "ip":
			c.IP = value
		case "port":
			c.Port = value
		case "limit":
			n, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("config: limit: %w", err)
			}
			c.RequestLimit = n
		case "pool":
			n, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("config: pool: %w", err)
			}
			c.PoolSize = n
		default:
			return fmt.Errorf("%w: %q, expected ip=, port=, pool= or limit=", ErrUnknownArg, key)
		}
	}
	return nil
}

func (c Config) Address() string { return net.JoinHostPort(c.IP, c.Port) }

func (c Config) AdminAddress() string { return ":" + c.AdminPort }
