// Package config loads console settings from defaults, an optional
// .overseer.yaml file and OVERSEER_* environment variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const FileName = ".overseer.yaml"

const (
	VariantLog      = "log"
	VariantResponse = "response"

	StrategyDelay = "delay"
	StrategyPoll  = "poll"
)

const (
	DefaultSupervisorURL   = "http://127.0.0.1:8000"
	DefaultOrchestratorURL = "http://127.0.0.1:8001"
	DefaultMonitorURL      = "http://127.0.0.1:8002"

	DefaultHealthPath        = "/health"
	DefaultMonitorHealthPath = "/logs?limit=1"

	DefaultRefreshDelay = 8 * time.Second
	DefaultPollInterval = 1500 * time.Millisecond
	DefaultMaxWait      = 30 * time.Second
	DefaultLogLimit     = 10
)

// Endpoint is one remote service the console talks to.
type Endpoint struct {
	URL        string `yaml:"url,omitempty"`
	HealthPath string `yaml:"health_path,omitempty"`
}

type EndpointsConfig struct {
	Supervisor   Endpoint `yaml:"supervisor,omitempty"`
	Orchestrator Endpoint `yaml:"orchestrator,omitempty"`
	Monitor      Endpoint `yaml:"monitor,omitempty"`
}

// RefreshConfig controls how the log feed is re-read after a submission.
type RefreshConfig struct {
	Strategy     string        `yaml:"strategy,omitempty"`
	Delay        time.Duration `yaml:"delay,omitempty"`
	PollInterval time.Duration `yaml:"poll_interval,omitempty"`
	MaxWait      time.Duration `yaml:"max_wait,omitempty"`
}

type LogsConfig struct {
	Limit int `yaml:"limit,omitempty"`
}

type HTTPConfig struct {
	// Zero means no client timeout.
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

type Config struct {
	Variant   string          `yaml:"variant,omitempty"`
	Endpoints EndpointsConfig `yaml:"endpoints,omitempty"`
	Refresh   RefreshConfig   `yaml:"refresh,omitempty"`
	Logs      LogsConfig      `yaml:"logs,omitempty"`
	HTTP      HTTPConfig      `yaml:"http,omitempty"`
	AltScreen *bool           `yaml:"alt_screen,omitempty"`
}

// Service names a probed dependency.
type Service struct {
	Name     string
	ProbeURL string
}

func New() *Config {
	altScreen := true
	return &Config{
		Variant: VariantLog,
		Endpoints: EndpointsConfig{
			Supervisor:   Endpoint{URL: DefaultSupervisorURL, HealthPath: DefaultHealthPath},
			Orchestrator: Endpoint{URL: DefaultOrchestratorURL, HealthPath: DefaultHealthPath},
			Monitor:      Endpoint{URL: DefaultMonitorURL, HealthPath: DefaultMonitorHealthPath},
		},
		Refresh: RefreshConfig{
			Strategy:     StrategyDelay,
			Delay:        DefaultRefreshDelay,
			PollInterval: DefaultPollInterval,
			MaxWait:      DefaultMaxWait,
		},
		Logs:      LogsConfig{Limit: DefaultLogLimit},
		AltScreen: &altScreen,
	}
}

// Load builds a Config from defaults, then the config file, then the
// environment. If path is empty, .overseer.yaml is searched for upward
// from startDir; a missing file is not an error.
func Load(path, startDir string) (*Config, error) {
	cfg := New()

	var (
		data []byte
		err  error
	)
	if path != "" {
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
	} else {
		data, err = findConfigFile(startDir)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", FileName, err)
		}
	}

	if len(data) > 0 {
		var fileCfg Config
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", nullCoalesce(path, FileName), err)
		}
		merge(cfg, &fileCfg)
	}

	if err := applyEnv(cfg, os.Getenv); err != nil {
		return nil, err
	}
	return cfg, nil
}

func findConfigFile(dir string) ([]byte, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path %q: %w", dir, err)
	}
	dir = absDir

	for i := 0; i < 10; i++ {
		p := filepath.Join(dir, FileName)
		data, err := os.ReadFile(p)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading %q: %w", p, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return nil, os.ErrNotExist
}

func merge(dst, src *Config) {
	if src.Variant != "" {
		dst.Variant = src.Variant
	}
	mergeEndpoint(&dst.Endpoints.Supervisor, src.Endpoints.Supervisor)
	mergeEndpoint(&dst.Endpoints.Orchestrator, src.Endpoints.Orchestrator)
	mergeEndpoint(&dst.Endpoints.Monitor, src.Endpoints.Monitor)

	if src.Refresh.Strategy != "" {
		dst.Refresh.Strategy = src.Refresh.Strategy
	}
	if src.Refresh.Delay != 0 {
		dst.Refresh.Delay = src.Refresh.Delay
	}
	if src.Refresh.PollInterval != 0 {
		dst.Refresh.PollInterval = src.Refresh.PollInterval
	}
	if src.Refresh.MaxWait != 0 {
		dst.Refresh.MaxWait = src.Refresh.MaxWait
	}
	if src.Logs.Limit != 0 {
		dst.Logs.Limit = src.Logs.Limit
	}
	if src.HTTP.Timeout != 0 {
		dst.HTTP.Timeout = src.HTTP.Timeout
	}
	if src.AltScreen != nil {
		dst.AltScreen = src.AltScreen
	}
}

func mergeEndpoint(dst *Endpoint, src Endpoint) {
	if src.URL != "" {
		dst.URL = src.URL
	}
	if src.HealthPath != "" {
		dst.HealthPath = src.HealthPath
	}
}

func applyEnv(cfg *Config, getenv func(string) string) error {
	env := func(key string) string { return strings.TrimSpace(getenv(key)) }

	if v := env("OVERSEER_VARIANT"); v != "" {
		cfg.Variant = v
	}
	if v := env("OVERSEER_SUPERVISOR_URL"); v != "" {
		cfg.Endpoints.Supervisor.URL = v
	}
	if v := env("OVERSEER_ORCHESTRATOR_URL"); v != "" {
		cfg.Endpoints.Orchestrator.URL = v
	}
	if v := env("OVERSEER_MONITOR_URL"); v != "" {
		cfg.Endpoints.Monitor.URL = v
	}
	if v := env("OVERSEER_MONITOR_HEALTH_PATH"); v != "" {
		cfg.Endpoints.Monitor.HealthPath = v
	}
	if v := env("OVERSEER_REFRESH_STRATEGY"); v != "" {
		cfg.Refresh.Strategy = v
	}
	if v := env("OVERSEER_REFRESH_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("OVERSEER_REFRESH_DELAY: %w", err)
		}
		cfg.Refresh.Delay = d
	}
	if v := env("OVERSEER_LOG_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("OVERSEER_LOG_LIMIT: %w", err)
		}
		cfg.Logs.Limit = n
	}
	if v := env("OVERSEER_HTTP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("OVERSEER_HTTP_TIMEOUT: %w", err)
		}
		cfg.HTTP.Timeout = d
	}
	return nil
}

// Validate normalizes case and reports the first invalid setting.
func (c *Config) Validate() error {
	c.Variant = strings.ToLower(strings.TrimSpace(c.Variant))
	switch c.Variant {
	case VariantLog, VariantResponse:
	default:
		return fmt.Errorf("unknown variant %q (want %s or %s)", c.Variant, VariantLog, VariantResponse)
	}

	c.Refresh.Strategy = strings.ToLower(strings.TrimSpace(c.Refresh.Strategy))
	switch c.Refresh.Strategy {
	case StrategyDelay, StrategyPoll:
	default:
		return fmt.Errorf("unknown refresh strategy %q (want %s or %s)", c.Refresh.Strategy, StrategyDelay, StrategyPoll)
	}
	if c.Refresh.Delay < 0 {
		return fmt.Errorf("refresh delay must not be negative")
	}
	if c.Refresh.Strategy == StrategyPoll {
		if c.Refresh.PollInterval <= 0 {
			return fmt.Errorf("refresh poll_interval must be positive")
		}
		if c.Refresh.MaxWait < c.Refresh.PollInterval {
			return fmt.Errorf("refresh max_wait %s is shorter than poll_interval %s", c.Refresh.MaxWait, c.Refresh.PollInterval)
		}
	}
	if c.Logs.Limit < 1 {
		return fmt.Errorf("logs limit must be at least 1")
	}

	if err := checkURL("supervisor", c.Endpoints.Supervisor.URL); err != nil {
		return err
	}
	if c.Variant == VariantLog {
		if err := checkURL("orchestrator", c.Endpoints.Orchestrator.URL); err != nil {
			return err
		}
		if err := checkURL("monitor", c.Endpoints.Monitor.URL); err != nil {
			return err
		}
	}
	return nil
}

func checkURL(name, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s url: %w", name, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%s url %q must be an absolute http(s) URL", name, raw)
	}
	return nil
}

// Services lists the dependencies probed for the configured variant.
func (c *Config) Services() []Service {
	services := []Service{
		{Name: "supervisor", ProbeURL: joinURL(c.Endpoints.Supervisor.URL, c.Endpoints.Supervisor.HealthPath)},
	}
	if c.Variant != VariantLog {
		return services
	}
	return append(services,
		Service{Name: "orchestrator", ProbeURL: joinURL(c.Endpoints.Orchestrator.URL, c.Endpoints.Orchestrator.HealthPath)},
		Service{Name: "monitor", ProbeURL: joinURL(c.Endpoints.Monitor.URL, c.Endpoints.Monitor.HealthPath)},
	)
}

func (c *Config) UseAltScreen() bool {
	return c.AltScreen == nil || *c.AltScreen
}

func joinURL(base, path string) string {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	path = strings.TrimSpace(path)
	if path == "" {
		path = DefaultHealthPath
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return base + path
}

func nullCoalesce(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
