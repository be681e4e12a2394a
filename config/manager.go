package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Manager ties the viewer's settings file to the running process. Edits made
// on disk while a watch view is open are reported as a Change; only LiveKeys
// are applied by the view, the rest are picked up on the next start.
type Manager struct {
	path     string
	base     Config // defaults for keys the file leaves out
	debounce time.Duration
	log      zerolog.Logger

	mu       sync.RWMutex
	cfg      Config
	watching bool
	onChange func(Change)
}

type managerOptions struct {
	configPath    string
	initialConfig *Config
	debounce      time.Duration
	log           zerolog.Logger
}

type ManagerOption func(*managerOptions)

// NewManager loads the settings file, creating it from the initial config
// when it does not exist yet.
func NewManager(opts ...ManagerOption) (*Manager, error) {
	options := managerOptions{
		debounce: 300 * time.Millisecond,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&options)
	}

	path := options.configPath
	if path == "" {
		var err error
		if path, err = defaultConfigPath(); err != nil {
			return nil, err
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create config dir: %w", err)
	}

	base := *DefaultConfigWithRoot(filepath.Dir(path))
	if options.initialConfig != nil {
		base = *options.initialConfig
	}

	cfg, err := readConfigFile(path, base)
	switch {
	case errors.Is(err, os.ErrNotExist):
		cfg = base
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		if err := writeConfigFile(path, cfg); err != nil {
			return nil, fmt.Errorf("write initial config: %w", err)
		}
	case err != nil:
		return nil, err
	default:
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}

	return &Manager{
		path:     path,
		base:     base,
		cfg:      cfg,
		debounce: options.debounce,
		log:      options.log.With().Str("component", "config").Logger(),
	}, nil
}

func (m *Manager) Get() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg
}

func (m *Manager) Path() string {
	return m.path
}

// Set updates one key by its JSON name and persists the file.
func (m *Manager) Set(key, value string) error {
	cfg := m.Get()
	if err := cfg.Set(key, value); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := writeConfigFile(m.path, cfg); err != nil {
		return err
	}
	m.apply(cfg)
	return nil
}

// Watch follows the settings file until ctx is done. onChange runs on the
// watcher goroutine and only for reloads that touch a live key.
func (m *Manager) Watch(ctx context.Context, onChange func(Change)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.watching {
		return errors.New("config already watched")
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	// Watch the directory: editors and writeConfigFile replace the file.
	if err := w.Add(filepath.Dir(m.path)); err != nil {
		w.Close()
		return fmt.Errorf("watch config dir: %w", err)
	}
	m.watching = true
	m.onChange = onChange

	go m.watchLoop(ctx, w)
	return nil
}

func (m *Manager) watchLoop(ctx context.Context, w *fsnotify.Watcher) {
	defer w.Close()

	var settle <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Clean(evt.Name) == filepath.Clean(m.path) &&
				evt.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				settle = time.After(m.debounce)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			m.log.Warn().Err(err).Msg("config watcher error")
		case <-settle:
			settle = nil
			m.reload()
		}
	}
}

// reload keeps the current settings when the file is missing or invalid, so
// a half-written edit never blanks the trader out of a running view.
func (m *Manager) reload() {
	cfg, err := readConfigFile(m.path, m.base)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		m.log.Error().Err(err).Str("path", m.path).Msg("config reload skipped")
		return
	}
	m.apply(cfg)
}

func (m *Manager) apply(cfg Config) {
	m.mu.Lock()
	ch := Change{Config: cfg, Keys: ChangedKeys(m.cfg, cfg)}
	m.cfg = cfg
	cb := m.onChange
	m.mu.Unlock()

	if len(ch.Keys) == 0 {
		return
	}
	if keys := ch.RestartKeys(); len(keys) > 0 {
		m.log.Warn().Strs("keys", keys).Msg("config changed; restart cortexmem to apply")
	}
	if ch.Live() {
		m.log.Info().Str("trader_id", cfg.TraderID).Str("language", cfg.Language).Msg("config reloaded")
		if cb != nil {
			cb(ch)
		}
	}
}

// fileConfig is the on-disk shape. Durations are stored as Go duration
// strings ("10s") so the file stays editable by hand.
type fileConfig struct {
	Config
	RefreshInterval string `json:"refresh_interval"`
	RequestTimeout  string `json:"request_timeout"`
}

func readConfigFile(path string, base Config) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	fc := fileConfig{Config: base}
	if err := json.Unmarshal(data, &fc); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	for _, d := range []struct {
		key string
		raw string
		dst *time.Duration
	}{
		{"refresh_interval", fc.RefreshInterval, &fc.Config.RefreshInterval},
		{"request_timeout", fc.RequestTimeout, &fc.Config.RequestTimeout},
	} {
		if d.raw == "" {
			continue
		}
		v, err := time.ParseDuration(d.raw)
		if err != nil {
			return Config{}, fmt.Errorf("parse %s: %s: %w", path, d.key, err)
		}
		*d.dst = v
	}
	return fc.Config, nil
}

// writeConfigFile replaces path atomically through a sibling temp file.
func writeConfigFile(path string, cfg Config) error {
	data, err := json.MarshalIndent(fileConfig{
		Config:          cfg,
		RefreshInterval: cfg.RefreshInterval.String(),
		RequestTimeout:  cfg.RequestTimeout.String(),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace config: %w", err)
	}
	return nil
}

func defaultConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		if dir, err = os.Getwd(); err != nil {
			return "", err
		}
	}
	return filepath.Join(dir, "cortexmem", "config.json"), nil
}

func WithConfigPath(path string) ManagerOption {
	return func(o *managerOptions) {
		if path != "" {
			o.configPath = path
		}
	}
}

func WithDebounce(d time.Duration) ManagerOption {
	return func(o *managerOptions) {
		if d > 0 {
			o.debounce = d
		}
	}
}

// WithInitialConfig seeds a new file and fills keys an existing file omits.
func WithInitialConfig(cfg *Config) ManagerOption {
	return func(o *managerOptions) {
		o.initialConfig = cfg
	}
}

func WithLogger(log zerolog.Logger) ManagerOption {
	return func(o *managerOptions) {
		o.log = log
	}
}
