// Package config loads stylegen settings. Each layer overrides the one before
// it: built-in defaults, the YAML config file, STYLEGEN_* environment
// variables, then command-line flags.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/stylegen/internal/executor"
	"github.com/jmylchreest/stylegen/internal/protocol"
	"github.com/jmylchreest/stylegen/internal/source"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "STYLEGEN_"

// Config holds every setting the CLI needs.
type Config struct {
	Format       protocol.OutputFormat `yaml:"format"`
	ColorMode    protocol.ColorMode    `yaml:"color_mode"`
	NameFormat   protocol.NameFormat   `yaml:"name_format"`
	Source       string                `yaml:"source"`
	ChannelScale source.ChannelScale   `yaml:"channel_scale"`
	Transport    executor.Transport    `yaml:"transport"`
	LogLevel     string                `yaml:"log_level"`
	HexAlpha     bool                  `yaml:"hex_alpha"`
	Header       string                `yaml:"header"`
	OutputDir    string                `yaml:"output_dir"`
	Theme        string                `yaml:"theme"`
	Timeout      time.Duration         `yaml:"timeout"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Format:       protocol.FormatSCSS,
		ColorMode:    protocol.ColorModeRGBA,
		NameFormat:   protocol.NameKebabHyphen,
		ChannelScale: source.ScaleUnit,
		Transport:    executor.TransportInProcess,
		LogLevel:     "warn",
		OutputDir:    ".",
		Theme:        "monokai",
		Timeout:      30 * time.Second,
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/stylegen/config.yaml, falling back to
// the platform user config directory.
func DefaultPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		var err error
		dir, err = os.UserConfigDir()
		if err != nil {
			return ""
		}
	}
	return filepath.Join(dir, "stylegen", "config.yaml")
}

// Load builds a Config from defaults, the config file and the environment.
// An empty path uses DefaultPath, which may be absent; an explicit path must
// exist.
func Load(path string) (*Config, error) {
	return load(path, os.LookupEnv)
}

func load(path string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path != "" {
		if err := cfg.mergeFile(expandPath(path)); err != nil {
			if explicit || !errors.Is(err, fs.ErrNotExist) {
				return nil, err
			}
		}
	}

	if err := cfg.applyEnv(lookup); err != nil {
		return nil, err
	}
	return cfg, nil
}

// mergeFile overlays the fields set in a YAML file.
func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path) // #nosec G304 - config path is chosen by the user
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok && v != "" {
			*dst = v
		}
	}

	var format, mode, naming, scale, transport string
	str("FORMAT", &format)
	str("COLOR_MODE", &mode)
	str("NAME_FORMAT", &naming)
	str("CHANNEL_SCALE", &scale)
	str("TRANSPORT", &transport)
	str("SOURCE", &c.Source)
	str("LOG_LEVEL", &c.LogLevel)
	str("HEADER", &c.Header)
	str("OUTPUT_DIR", &c.OutputDir)
	str("THEME", &c.Theme)

	if format != "" {
		c.Format = protocol.OutputFormat(format)
	}
	if mode != "" {
		c.ColorMode = protocol.ColorMode(mode)
	}
	if naming != "" {
		c.NameFormat = protocol.NameFormat(naming)
	}
	if scale != "" {
		c.ChannelScale = source.ChannelScale(scale)
	}
	if transport != "" {
		c.Transport = executor.Transport(transport)
	}

	if v, ok := lookup(EnvPrefix + "HEX_ALPHA"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sHEX_ALPHA: %w", EnvPrefix, err)
		}
		c.HexAlpha = b
	}
	if v, ok := lookup(EnvPrefix + "TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sTIMEOUT: %w", EnvPrefix, err)
		}
		c.Timeout = d
	}
	return nil
}

// Flag names shared by every command.
const (
	FlagFormat       = "format"
	FlagColorMode    = "color-mode"
	FlagNameFormat   = "name-format"
	FlagSource       = "source"
	FlagChannelScale = "channel-scale"
	FlagTransport    = "transport"
	FlagHexAlpha     = "hex-alpha"
	FlagHeader       = "header"
	FlagOutputDir    = "output-dir"
	FlagTheme        = "theme"
	FlagTimeout      = "timeout"
	FlagLogLevel     = "log-level"
)

// RegisterFlags adds the generation flags to flags. Flag defaults are shown
// from d but only flags the user sets override lower layers.
func RegisterFlags(flags *pflag.FlagSet, d *Config) {
	flags.StringP(FlagFormat, "f", string(d.Format), "output format ("+tokenList(protocol.Formats())+")")
	flags.StringP(FlagColorMode, "c", string(d.ColorMode), "colour mode ("+tokenList(protocol.ColorModes())+")")
	flags.StringP(FlagNameFormat, "n", string(d.NameFormat), "name format ("+tokenList(protocol.NameFormats())+")")
	flags.StringP(FlagSource, "s", d.Source, "snapshot file, https URL, or - for stdin")
	flags.String(FlagChannelScale, string(d.ChannelScale), "channel range of object fills (unit, byte)")
	flags.String(FlagTransport, string(d.Transport), "engine transport ("+tokenList(executor.Transports())+")")
	flags.Bool(FlagHexAlpha, d.HexAlpha, "always emit the alpha byte for HEX colours")
	flags.String(FlagHeader, d.Header, "comment placed at the top of generated code")
	flags.StringP(FlagOutputDir, "o", d.OutputDir, "directory for downloaded stylesheets")
	flags.String(FlagTheme, d.Theme, "syntax highlighting theme")
	flags.Duration(FlagTimeout, d.Timeout, "timeout for remote snapshots")
	flags.String(FlagLogLevel, d.LogLevel, "log level (trace, debug, info, warn, error)")
}

// ApplyFlags overlays every flag the user changed.
func (c *Config) ApplyFlags(flags *pflag.FlagSet) error {
	var err error
	flags.Visit(func(f *pflag.Flag) {
		if err != nil {
			return
		}
		v := f.Value.String()
		switch f.Name {
		case FlagFormat:
			c.Format = protocol.OutputFormat(v)
		case FlagColorMode:
			c.ColorMode = protocol.ColorMode(v)
		case FlagNameFormat:
			c.NameFormat = protocol.NameFormat(v)
		case FlagSource:
			c.Source = v
		case FlagChannelScale:
			c.ChannelScale = source.ChannelScale(v)
		case FlagTransport:
			c.Transport = executor.Transport(v)
		case FlagHexAlpha:
			c.HexAlpha, err = flags.GetBool(FlagHexAlpha)
		case FlagHeader:
			c.Header = v
		case FlagOutputDir:
			c.OutputDir = v
		case FlagTheme:
			c.Theme = v
		case FlagTimeout:
			c.Timeout, err = flags.GetDuration(FlagTimeout)
		case FlagLogLevel:
			c.LogLevel = v
		}
	})
	return err
}

// Normalize parses every enumerated setting, accepting any letter case, and
// rejects values that are not recognised.
func (c *Config) Normalize() error {
	var err error
	if c.Format, err = protocol.ParseFormat(string(c.Format)); err != nil {
		return err
	}
	if c.ColorMode, err = protocol.ParseColorMode(string(c.ColorMode)); err != nil {
		return err
	}
	if c.NameFormat, err = protocol.ParseNameFormat(string(c.NameFormat)); err != nil {
		return err
	}
	if c.ChannelScale, err = source.ParseChannelScale(string(c.ChannelScale)); err != nil {
		return err
	}
	if c.Transport, err = executor.ParseTransport(strings.ToLower(string(c.Transport))); err != nil {
		return err
	}
	if hclog.LevelFromString(c.LogLevel) == hclog.NoLevel {
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	return nil
}

// SourceOptions returns the snapshot decoding options.
func (c *Config) SourceOptions() source.Options {
	return source.Options{Scale: c.ChannelScale, Timeout: c.Timeout}
}

// expandPath expands a leading ~ to the home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

func tokenList[T ~string](values []T) string {
	s := make([]string, len(values))
	for i, v := range values {
		s[i] = string(v)
	}
	return strings.Join(s, ", ")
}
