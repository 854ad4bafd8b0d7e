package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"

	"github.com/spinifex/uvarint/pkg/logflags"
	"github.com/spinifex/uvarint/pkg/uvarint"
)

const (
	configDir  string = "uvarint"
	configFile string = "config.yml"

	// configDirEnv overrides the directory holding the configuration file.
	configDirEnv = "UVARINT_CONFIG_DIR"
)

// Output formats for encoded bytes.
const (
	FormatHex = "hex"
	FormatDec = "dec"
	FormatRaw = "raw"
)

// Config defines all configuration options available to be set through the config file.
type Config struct {
	// Commands aliases.
	Aliases map[string][]string `yaml:"aliases"`

	// DecodeMode is either "strict" or "lenient".
	DecodeMode string `yaml:"decode-mode,omitempty"`

	// OutputFormat selects how encoded bytes are printed: hex, dec or raw.
	OutputFormat string `yaml:"output-format,omitempty"`

	// Color enables colored output on terminals, defaults to true.
	Color *bool `yaml:"color,omitempty"`
}

// Mode returns the configured decode mode.
func (c *Config) Mode() (uvarint.DecodeMode, error) {
	return uvarint.ParseDecodeMode(c.DecodeMode)
}

// Format returns the configured output format, hex when unset.
func (c *Config) Format() (string, error) {
	return ParseFormat(c.OutputFormat)
}

// UseColor reports whether colored output is enabled.
func (c *Config) UseColor() bool {
	return c.Color == nil || *c.Color
}

// ParseFormat validates the name of an output format.
func ParseFormat(s string) (string, error) {
	switch s {
	case "":
		return FormatHex, nil
	case FormatHex, FormatDec, FormatRaw:
		return s, nil
	}
	return "", fmt.Errorf("unknown output format %q (must be hex, dec or raw)", s)
}

// LoadConfig attempts to populate a Config object from the config.yml file.
// A default file is written if none exists.
func LoadConfig() (*Config, error) {
	logger := logflags.ConfigLogger()

	if err := createConfigPath(); err != nil {
		return &Config{}, fmt.Errorf("could not create config directory: %v", err)
	}
	fullConfigFile, err := GetConfigFilePath(configFile)
	if err != nil {
		return &Config{}, fmt.Errorf("unable to get config file path: %v", err)
	}

	f, err := os.Open(fullConfigFile)
	if err != nil {
		logger.Debugf("creating default config file %s", fullConfigFile)
		f, err = createDefaultConfig(fullConfigFile)
		if err != nil {
			return &Config{}, fmt.Errorf("error creating default config file: %v", err)
		}
	}
	defer func() {
		err := f.Close()
		if err != nil {
			logger.Warnf("closing config file failed: %v", err)
		}
	}()

	data, err := io.ReadAll(f)
	if err != nil {
		return &Config{}, fmt.Errorf("unable to read config data: %v", err)
	}

	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return &Config{}, fmt.Errorf("unable to decode config file: %v", err)
	}
	if _, err := c.Mode(); err != nil {
		return &Config{}, fmt.Errorf("%s: %v", fullConfigFile, err)
	}
	if _, err := c.Format(); err != nil {
		return &Config{}, fmt.Errorf("%s: %v", fullConfigFile, err)
	}
	if logflags.Config() {
		logger.WithField("file", fullConfigFile).Debugf("loaded config: mode=%q format=%q aliases=%d", c.DecodeMode, c.OutputFormat, len(c.Aliases))
	}

	return &c, nil
}

// SaveConfig will marshal and save the config struct
// to disk.
func SaveConfig(conf *Config) error {
	fullConfigFile, err := GetConfigFilePath(configFile)
	if err != nil {
		return err
	}

	out, err := yaml.Marshal(*conf)
	if err != nil {
		return err
	}

	f, err := os.Create(fullConfigFile)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(out)
	logflags.ConfigLogger().WithField("file", fullConfigFile).Debug("saved config")
	return err
}

func createDefaultConfig(path string) (*os.File, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("unable to create config file: %v", err)
	}
	err = writeDefaultConfig(f)
	if err != nil {
		return nil, fmt.Errorf("unable to write default configuration: %v", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	return f, nil
}

func writeDefaultConfig(f *os.File) error {
	_, err := f.WriteString(
		`# Configuration file for the uvarint tool.

# This is the default configuration file. Available options are provided, but disabled.
# Delete the leading hash mark to enable an item.

# How decode treats malformed input. "strict" rejects unterminated input,
# trailing bytes and redundant zero groups; "lenient" ignores bytes after the
# terminator and decodes unterminated input as 0.
# decode-mode: strict

# How encoded bytes are printed: hex (ac 02), dec ([172 2]) or raw.
# output-format: hex

# Set to false to disable colored output in the terminal.
# color: true

# Provided aliases will be added to the default aliases for a given command.
aliases:
  # command: ["alias1", "alias2"]
`)
	return err
}

// createConfigPath creates the directory structure at which all config files are saved.
func createConfigPath() error {
	path, err := GetConfigFilePath("")
	if err != nil {
		return err
	}
	return os.MkdirAll(path, 0700)
}

// GetConfigFilePath gets the full path to the given config file name.
func GetConfigFilePath(file string) (string, error) {
	if dir := os.Getenv(configDirEnv); dir != "" {
		return filepath.Join(dir, file), nil
	}
	userConfigDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(userConfigDir, configDir, file), nil
}
