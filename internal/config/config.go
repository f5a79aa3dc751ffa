package config

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/bashhack/syncwrap/internal/constants"
	syncwrapErrors "github.com/bashhack/syncwrap/internal/errors"
	"github.com/bashhack/syncwrap/internal/lock"
)

const (
	// DefaultLockPath is the lock resource shared by every invocation on the host.
	DefaultLockPath = "/var/lock/aws_s3_sync.lock"

	// DefaultLogPath is the audit log.
	DefaultLogPath = "/var/log/aws_s3_sync.log"

	// DefaultCommand is the transfer tool and its fixed arguments.
	DefaultCommand = "aws s3 sync"

	// DefaultRetryDelay is the pause between blocking lock attempts.
	DefaultRetryDelay = lock.DefaultRetryDelay
)

// LockScope selects what the lock protects.
type LockScope string

const (
	// ScopeLog locks only the audit append; transfers run concurrently.
	ScopeLog LockScope = "log"

	// ScopeInvocation locks the transfer and the append together.
	ScopeInvocation LockScope = "invocation"
)

// Scopes lists the accepted lock scopes.
var Scopes = []LockScope{ScopeLog, ScopeInvocation}

// LookupEnvFunc reads an environment variable. os.LookupEnv in production.
type LookupEnvFunc func(key string) (string, bool)

// Config holds all syncwrap application settings
type Config struct {
	// Lock and audit log
	LockPath     string        `yaml:"lock"`
	LogPath      string        `yaml:"log"`
	LockScope    LockScope     `yaml:"lock_scope"`
	LockStrategy lock.Strategy `yaml:"lock_strategy"`
	NoWait       bool          `yaml:"no_wait"`
	RetryDelay   time.Duration `yaml:"retry_delay"`

	// Transfer
	Command string `yaml:"command"`

	// User experience
	ShowOutput bool `yaml:"show_output"`

	// Debugging
	Debug bool `yaml:"debug"`

	// Special flags
	ConfigFile string `yaml:"-"`
	Find       string `yaml:"-"`
	Version    bool   `yaml:"-"`

	// Build metadata
	VersionInfo VersionInfo `yaml:"-"`
}

// VersionInfo contains build-time version metadata
type VersionInfo struct {
	Version string
	Commit  string
	Date    string
}

// New creates a new Config with default values
func New() *Config {
	return &Config{
		LockPath:     DefaultLockPath,
		LogPath:      DefaultLogPath,
		LockScope:    ScopeLog,
		LockStrategy: lock.StrategyFlock,
		NoWait:       false,
		RetryDelay:   DefaultRetryDelay,
		Command:      DefaultCommand,
		ShowOutput:   false,
		Debug:        false,

		// Default version info, will be overridden if provided
		VersionInfo: VersionInfo{
			Version: "dev",
			Commit:  "unknown",
			Date:    "unknown",
		},
	}
}

// CommandArgs returns the transfer command split into program and arguments.
func (c *Config) CommandArgs() []string {
	return strings.Fields(c.Command)
}

// Wait reports whether lock acquisition should block.
func (c *Config) Wait() bool {
	return !c.NoWait
}

// LoadFile overlays settings from a YAML file. Unknown keys are rejected.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return syncwrapErrors.NewConfigError("config", path,
			syncwrapErrors.Errorf("%w: %w", syncwrapErrors.ErrInvalidConfiguration, err))
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !syncwrapErrors.Is(err, io.EOF) {
		return syncwrapErrors.NewConfigError("config", path,
			syncwrapErrors.Wrapf(syncwrapErrors.ErrInvalidConfiguration, "failed to parse %s: %v", path, err))
	}
	c.ConfigFile = path
	return nil
}

// LoadFromEnvironment updates config from SYNCWRAP_* environment variables.
// Values that cannot be parsed leave the current setting in place.
func (c *Config) LoadFromEnvironment(lookup LookupEnvFunc) {
	c.LockPath = getEnvString(lookup, "LOCK", c.LockPath)
	c.LogPath = getEnvString(lookup, "LOG", c.LogPath)
	c.LockScope = LockScope(getEnvString(lookup, "LOCK_SCOPE", string(c.LockScope)))
	c.LockStrategy = lock.Strategy(getEnvString(lookup, "LOCK_STRATEGY", string(c.LockStrategy)))
	c.NoWait = getEnvBool(lookup, "NO_WAIT", c.NoWait)
	c.RetryDelay = getEnvDuration(lookup, "RETRY_DELAY", c.RetryDelay)
	c.Command = getEnvString(lookup, "COMMAND", c.Command)
	c.ShowOutput = getEnvBool(lookup, "SHOW_OUTPUT", c.ShowOutput)
	c.Debug = getEnvBool(lookup, "DEBUG", c.Debug)
}

// ConfigFileFromEnvironment returns SYNCWRAP_CONFIG, if set.
func ConfigFileFromEnvironment(lookup LookupEnvFunc) string {
	return getEnvString(lookup, "CONFIG", "")
}

// SetupFlags sets up command-line flags to override config values
func (c *Config) SetupFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.LockPath, "lock", c.LockPath, "Lock file (or directory with --lock-strategy mkdir)")
	fs.StringVar(&c.LogPath, "log", c.LogPath, "Audit log file")
	fs.BoolVarP(&c.ShowOutput, "show-output", "o", c.ShowOutput, "Print the transfer output on success")
	fs.StringVar((*string)(&c.LockScope), "lock-scope", string(c.LockScope), "What the lock protects: log or invocation")
	fs.StringVar((*string)(&c.LockStrategy), "lock-strategy", string(c.LockStrategy), "Lock primitive: flock or mkdir")
	fs.BoolVar(&c.NoWait, "no-wait", c.NoWait, "Fail instead of waiting when the lock is held (invocation scope only)")
	fs.DurationVar(&c.RetryDelay, "retry-delay", c.RetryDelay, "Pause between lock attempts while waiting")
	fs.StringVar(&c.Command, "command", c.Command, "Transfer command and its fixed arguments")
	fs.StringVar(&c.ConfigFile, "config", c.ConfigFile, "YAML configuration file")
	fs.BoolVar(&c.Debug, "debug", c.Debug, "Enable debug logging on stderr")
	fs.StringVar(&c.Find, "find", c.Find, "Print the audit record of an invocation ID and exit")
	fs.BoolVar(&c.Version, "version", c.Version, "Print version information and exit")

	// --o is the spelling older wrappers accepted.
	fs.BoolVar(&c.ShowOutput, "o", c.ShowOutput, "Alias for --show-output")
	_ = fs.MarkHidden("o")
}

// flagFields copies a flag's value from one Config to another, keyed by flag name.
var flagFields = map[string]func(dst, src *Config){
	"lock":          func(dst, src *Config) { dst.LockPath = src.LockPath },
	"log":           func(dst, src *Config) { dst.LogPath = src.LogPath },
	"show-output":   func(dst, src *Config) { dst.ShowOutput = src.ShowOutput },
	"o":             func(dst, src *Config) { dst.ShowOutput = src.ShowOutput },
	"lock-scope":    func(dst, src *Config) { dst.LockScope = src.LockScope },
	"lock-strategy": func(dst, src *Config) { dst.LockStrategy = src.LockStrategy },
	"no-wait":       func(dst, src *Config) { dst.NoWait = src.NoWait },
	"retry-delay":   func(dst, src *Config) { dst.RetryDelay = src.RetryDelay },
	"command":       func(dst, src *Config) { dst.Command = src.Command },
	"config":        func(dst, src *Config) { dst.ConfigFile = src.ConfigFile },
	"debug":         func(dst, src *Config) { dst.Debug = src.Debug },
	"find":          func(dst, src *Config) { dst.Find = src.Find },
	"version":       func(dst, src *Config) { dst.Version = src.Version },
}

// ApplyFlags copies every flag the user set explicitly from flags into c.
// flags is the Config that SetupFlags bound to fs.
func (c *Config) ApplyFlags(fs *pflag.FlagSet, flags *Config) {
	fs.Visit(func(f *pflag.Flag) {
		if apply, ok := flagFields[f.Name]; ok {
			apply(c, flags)
		}
	})
}

// Load builds the effective configuration: defaults, then the YAML file
// (--config or SYNCWRAP_CONFIG), then the environment, then explicitly set
// flags. The result is finalized.
func Load(fs *pflag.FlagSet, flags *Config, lookup LookupEnvFunc) (*Config, error) {
	cfg := New()
	cfg.VersionInfo = flags.VersionInfo

	path := ConfigFileFromEnvironment(lookup)
	if f := fs.Lookup("config"); f != nil && f.Changed {
		path = flags.ConfigFile
	}
	if path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.LoadFromEnvironment(lookup)
	cfg.ApplyFlags(fs, flags)

	if err := cfg.Finalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Finalize validates and finalizes the configuration
func (c *Config) Finalize() error {
	if !isScope(c.LockScope) {
		return syncwrapErrors.NewConfigError("lock_scope", string(c.LockScope),
			syncwrapErrors.Wrapf(syncwrapErrors.ErrInvalidConfiguration, "must be one of %v", Scopes))
	}

	if !isStrategy(c.LockStrategy) {
		return syncwrapErrors.NewConfigError("lock_strategy", string(c.LockStrategy),
			syncwrapErrors.Wrapf(syncwrapErrors.ErrInvalidConfiguration, "must be one of %v", lock.Strategies))
	}

	if c.NoWait && c.LockScope != ScopeInvocation {
		return syncwrapErrors.NewConfigError("no_wait", c.NoWait,
			syncwrapErrors.Wrapf(syncwrapErrors.ErrInvalidConfiguration,
				"--no-wait requires --lock-scope %s", ScopeInvocation))
	}

	if c.RetryDelay <= 0 {
		return syncwrapErrors.NewConfigError("retry_delay", c.RetryDelay.String(),
			syncwrapErrors.Wrap(syncwrapErrors.ErrInvalidConfiguration, "must be positive"))
	}

	if len(c.CommandArgs()) == 0 {
		return syncwrapErrors.NewConfigError("command", c.Command,
			syncwrapErrors.Wrap(syncwrapErrors.ErrInvalidConfiguration, "must not be empty"))
	}

	var err error
	if c.LockPath, err = absPath("lock", c.LockPath); err != nil {
		return err
	}
	if c.LogPath, err = absPath("log", c.LogPath); err != nil {
		return err
	}

	if c.LockPath == c.LogPath {
		return syncwrapErrors.NewConfigError("lock", c.LockPath,
			syncwrapErrors.Wrap(syncwrapErrors.ErrInvalidConfiguration, "lock and log must be different paths"))
	}

	return nil
}

func absPath(parameter, path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", syncwrapErrors.NewConfigError(parameter, path,
			syncwrapErrors.Wrap(syncwrapErrors.ErrInvalidConfiguration, "path must not be empty"))
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", syncwrapErrors.NewConfigError(parameter, path,
			syncwrapErrors.Wrapf(syncwrapErrors.ErrInvalidConfiguration, "failed to resolve absolute path: %v", err))
	}
	return abs, nil
}

func isScope(s LockScope) bool {
	for _, scope := range Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

func isStrategy(s lock.Strategy) bool {
	for _, strategy := range lock.Strategies {
		if s == strategy {
			return true
		}
	}
	return false
}

// getEnvString returns an environment variable string or a default value
func getEnvString(lookup LookupEnvFunc, key, defaultValue string) string {
	if value, exists := lookup(constants.EnvPrefix + key); exists {
		return value
	}
	return defaultValue
}

// getEnvDuration returns an environment variable as a duration or a default value
func getEnvDuration(lookup LookupEnvFunc, key string, defaultValue time.Duration) time.Duration {
	if valueStr, exists := lookup(constants.EnvPrefix + key); exists {
		if value, err := time.ParseDuration(valueStr); err == nil {
			return value
		}
		// Bare numbers are milliseconds.
		if ms, err := strconv.Atoi(valueStr); err == nil {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return defaultValue
}

// getEnvBool returns an environment variable as bool or a default value
func getEnvBool(lookup LookupEnvFunc, key string, defaultValue bool) bool {
	if valueStr, exists := lookup(constants.EnvPrefix + key); exists {
		valueLower := strings.ToLower(valueStr)
		if valueLower == "true" || valueLower == "1" || valueLower == "yes" {
			return true
		}
		if valueLower == "false" || valueLower == "0" || valueLower == "no" {
			return false
		}
		// For any other value, fall back to default
	}
	return defaultValue
}
