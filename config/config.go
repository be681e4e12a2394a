package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultBackendPort is the port the trader's API listens on.
const DefaultBackendPort = 8080

type Config struct {
	ProjectDir string `json:"project_dir"`
	DataDir    string `json:"data_dir"`

	// BackendURL wins over BackendHost/BackendPort when set.
	BackendURL  string `json:"backend_url"`
	BackendHost string `json:"backend_host"`
	BackendPort int    `json:"backend_port"`

	TraderID        string        `json:"trader_id"`
	Language        string        `json:"language"`
	RefreshInterval time.Duration `json:"refresh_interval"`
	RequestTimeout  time.Duration `json:"request_timeout"`
	MaxCards        int           `json:"max_cards"`

	Debug    bool   `json:"debug"`
	LogLevel string `json:"log_level"`
	LogFile  string `json:"log_file"`

	JournalEnabled bool   `json:"journal_enabled"`
	JournalPath    string `json:"journal_path"`

	// Fixture backend used by `cortexmem serve`.
	FixtureDir  string `json:"fixture_dir"`
	FixtureAddr string `json:"fixture_addr"`
}

func DefaultConfig() *Config {
	currentDir, _ := os.Getwd()
	cfg := DefaultConfigWithRoot(currentDir)

	// Load environment variables from .env file
	_ = godotenv.Load()

	cfg.loadFromEnv()
	return cfg
}

// DefaultConfigWithRoot returns defaults rooted at dir without reading the environment.
func DefaultConfigWithRoot(dir string) *Config {
	dataDir := filepath.Join(dir, "data")
	return &Config{
		ProjectDir: dir,
		DataDir:    dataDir,

		BackendHost: "localhost",
		BackendPort: DefaultBackendPort,

		Language:        "en",
		RefreshInterval: 10 * time.Second,
		RequestTimeout:  10 * time.Second,
		MaxCards:        10,

		LogLevel: "info",

		JournalEnabled: true,
		JournalPath:    filepath.Join(dataDir, "journal.db"),

		FixtureDir:  filepath.Join(dataDir, "fixtures"),
		FixtureAddr: ":8080",
	}
}

func (c *Config) loadFromEnv() {
	if val := os.Getenv("PROJECT_DIR"); val != "" {
		c.ProjectDir = val
	}
	if val := os.Getenv("DATA_DIR"); val != "" {
		c.DataDir = val
		c.JournalPath = filepath.Join(val, "journal.db")
		c.FixtureDir = filepath.Join(val, "fixtures")
	}

	if val := os.Getenv("BACKEND_URL"); val != "" {
		c.BackendURL = val
	}
	if val := os.Getenv("BACKEND_HOST"); val != "" {
		c.BackendHost = val
	}
	if val := os.Getenv("BACKEND_PORT"); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			c.BackendPort = v
		}
	}

	if val := os.Getenv("TRADER_ID"); val != "" {
		c.TraderID = val
	}
	if val := os.Getenv("LANGUAGE"); val != "" {
		c.Language = val
	}
	if val := os.Getenv("REFRESH_INTERVAL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			c.RefreshInterval = d
		}
	}
	if val := os.Getenv("REQUEST_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			c.RequestTimeout = d
		}
	}
	if val := os.Getenv("MAX_CARDS"); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			c.MaxCards = v
		}
	}

	if val := os.Getenv("CORTEXMEM_DEBUG"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.Debug = enabled
		}
	}
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.LogLevel = val
	}
	if val := os.Getenv("LOG_FILE"); val != "" {
		c.LogFile = val
	}

	if val := os.Getenv("JOURNAL_ENABLED"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.JournalEnabled = enabled
		}
	}
	if val := os.Getenv("JOURNAL_PATH"); val != "" {
		c.JournalPath = val
	}
	if val := os.Getenv("FIXTURE_DIR"); val != "" {
		c.FixtureDir = val
	}
	if val := os.Getenv("FIXTURE_ADDR"); val != "" {
		c.FixtureAddr = val
	}
}

// Validate checks the values that would otherwise fail late at runtime.
func (c Config) Validate() error {
	var errs []error
	if c.BackendURL == "" && strings.TrimSpace(c.BackendHost) == "" {
		errs = append(errs, errors.New("backend_host or backend_url is required"))
	}
	if c.BackendPort < 1 || c.BackendPort > 65535 {
		errs = append(errs, fmt.Errorf("backend_port %d out of range", c.BackendPort))
	}
	if c.RefreshInterval < time.Second {
		errs = append(errs, fmt.Errorf("refresh_interval must be at least 1s, got %s", c.RefreshInterval))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request_timeout must be positive"))
	}
	if c.MaxCards < 1 {
		errs = append(errs, fmt.Errorf("max_cards must be positive, got %d", c.MaxCards))
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("unknown log_level %q", c.LogLevel))
	}
	if c.JournalEnabled && strings.TrimSpace(c.JournalPath) == "" {
		errs = append(errs, errors.New("journal_path is required when the journal is enabled"))
	}
	return errors.Join(errs...)
}

// MemoryBaseURL is the base address the memory client talks to.
func (c Config) MemoryBaseURL() string {
	if c.BackendURL != "" {
		return strings.TrimRight(c.BackendURL, "/")
	}
	return ResolveBaseURL(c.BackendHost, c.BackendPort)
}

// ResolveBaseURL maps the host the operator is on to the trader API address.
// The loopback name always targets localhost; any other host is reused as-is.
func ResolveBaseURL(host string, port int) string {
	if port == 0 {
		port = DefaultBackendPort
	}
	host = strings.TrimSpace(host)
	if host == "" || host == "localhost" {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, strconv.Itoa(port))
}

func (c *Config) EnsureDirectories() error {
	dirs := []string{c.DataDir}
	if c.JournalEnabled && c.JournalPath != "" {
		dirs = append(dirs, filepath.Dir(c.JournalPath))
	}
	for _, dir := range dirs {
		path := strings.TrimSpace(dir)
		if path == "" {
			continue
		}
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", path, err)
		}
	}
	return nil
}
