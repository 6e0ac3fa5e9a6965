package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	Prod = "prod"
	Dev  = "dev"
	Test = "test"
)

// Config is the root configuration of the pool daemon, loaded from yaml.
type Config struct {
	Env  string  `yaml:"env"` // prod|dev|test
	Pool PoolBox `yaml:"pool"`
}

type PoolBox struct {
	Api       Api       `yaml:"api"`
	Capacity  int       `yaml:"capacity"`
	Prefill   int       `yaml:"prefill"`
	Stats     Stats     `yaml:"stats"`
	Cleanup   Cleanup   `yaml:"cleanup"`
	Validate  Validate  `yaml:"validate"`
	Upstream  Upstream  `yaml:"upstream"`
	Workload  Workload  `yaml:"workload"`
	RateLimit RateLimit `yaml:"rate_limit"`
	K8S       K8S       `yaml:"k8s"`
	Runtime   Runtime   `yaml:"runtime"`
}

type Api struct {
	Name string `yaml:"name"`
	Port string `yaml:"port"`
}

type Stats struct {
	Enabled bool `yaml:"enabled"`
}

type Cleanup struct {
	Enabled  bool          `yaml:"enabled"`
	Interval time.Duration `yaml:"interval"` // e.g. "30s"
	MaxIdle  time.Duration `yaml:"max_idle"` // e.g. "5m"
}

type Validate struct {
	OnAcquire bool `yaml:"on_acquire"`
	OnRelease bool `yaml:"on_release"`
}

type Upstream struct {
	Addr    string        `yaml:"addr"`
	Scheme  string        `yaml:"scheme"`
	Timeout time.Duration `yaml:"timeout"`
	Rate    int           `yaml:"rate"` // outgoing requests per second, 0 disables pacing
}

type Workload struct {
	Enabled bool `yaml:"enabled"`
	Workers int  `yaml:"workers"`
	Rate    int  `yaml:"rate"` // synthetic acquires per second per daemon
}

type RateLimit struct {
	Enabled bool    `yaml:"enabled"`
	RPS     float64 `yaml:"rps"`
	Burst   int     `yaml:"burst"`
}

type K8S struct {
	Probe Probe `yaml:"probe"`
}

type Probe struct {
	Timeout time.Duration `yaml:"timeout"`
}

type Runtime struct {
	Gc Gc `yaml:"gc"`
}

type Gc struct {
	Enabled           bool          `yaml:"enabled"`
	GCInterval        time.Duration `yaml:"gc_interval"`
	FreeOsMemInterval time.Duration `yaml:"free_os_mem_interval"`
}

// LoadConfig reads and parses the yaml config at path. A .env file next to
// the binary is preloaded into the environment first (non-fatal when absent),
// and ${VAR} style values in the yaml may rely on it through os.ExpandEnv.
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config yaml file %s: %w", path, err)
	}
	data = []byte(os.ExpandEnv(string(data)))

	cfg := &Config{}
	if err = yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal yaml from %s: %w", path, err)
	}
	cfg.applyDefaults()

	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Env == "" {
		c.Env = Dev
	}
	if c.Pool.Api.Name == "" {
		c.Pool.Api.Name = "advanced-pool"
	}
	if c.Pool.Api.Port == "" {
		c.Pool.Api.Port = "8020"
	}
	if c.Pool.Capacity <= 0 {
		c.Pool.Capacity = 512
	}
	if c.Pool.Cleanup.Interval <= 0 {
		c.Pool.Cleanup.Interval = 30 * time.Second
	}
	if c.Pool.Cleanup.MaxIdle <= 0 {
		c.Pool.Cleanup.MaxIdle = 5 * time.Minute
	}
	if c.Pool.K8S.Probe.Timeout <= 0 {
		c.Pool.K8S.Probe.Timeout = 5 * time.Second
	}
	if c.Pool.Workload.Workers <= 0 {
		c.Pool.Workload.Workers = 4
	}
	if c.Pool.Upstream.Scheme == "" {
		c.Pool.Upstream.Scheme = "http"
	}
	if c.Pool.Upstream.Timeout <= 0 {
		c.Pool.Upstream.Timeout = 500 * time.Millisecond
	}
	if c.Pool.Runtime.Gc.GCInterval <= 0 {
		c.Pool.Runtime.Gc.GCInterval = time.Minute
	}
	if c.Pool.Runtime.Gc.FreeOsMemInterval <= 0 {
		c.Pool.Runtime.Gc.FreeOsMemInterval = 5 * time.Minute
	}
}

func (c *Config) IsProd() bool { return c.Env == Prod }
