package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"

	"github.com/rflorenc/tackle-migrator/internal/apperrors"
	"github.com/rflorenc/tackle-migrator/internal/models"
)

const (
	DefaultConfigFile = "./tackle-config.yml"
	DefaultDataDir    = "./tackle-data"
	DefaultListen     = ":8080"
)

// TargetConfig is one system section of the config file. Every value can be
// overridden from the environment using the section prefix, e.g. ORIGIN_URL.
type TargetConfig struct {
	URL      string `yaml:"url" env:"URL"`
	TokenURL string `yaml:"token_url" env:"TOKEN_URL"`
	ClientID string `yaml:"client_id" env:"CLIENT_ID" env-default:"tackle-ui"`
	Username string `yaml:"username" env:"USERNAME"`
	Password string `yaml:"password" env:"PASSWORD"`
	Insecure bool   `yaml:"insecure" env:"INSECURE"`
}

// File is the on-disk YAML config.
type File struct {
	Origin      TargetConfig  `yaml:"origin" env-prefix:"ORIGIN_"`
	Destination TargetConfig  `yaml:"destination" env-prefix:"DESTINATION_"`
	Timeout     time.Duration `yaml:"timeout" env:"TACKLE_TIMEOUT" env-default:"60s"`
}

// Config holds all configuration (CLI flags + config file).
type Config struct {
	ConfigFile           string
	DataDir              string
	Listen               string
	Verbose              bool
	SkipDestinationCheck bool
	DisableSSLWarnings   bool
	IgnoreImportErrors   bool
	NoAuth               bool
	ShowVersion          bool

	// Actions are the positional arguments in the order given.
	Actions []string

	File File
}

// Parse reads CLI flags and positional actions from args (without the
// program name). Flags and actions may be interleaved.
func Parse(args []string, output io.Writer) (*Config, error) {
	c := &Config{}
	fs := flag.NewFlagSet("tackle-migrator", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {
		fmt.Fprintf(output, "Usage: tackle-migrator [flags] <export-origin|import|clean|clean-all|serve>...\n\nFlags:\n")
		fs.PrintDefaults()
	}

	stringVar(fs, &c.ConfigFile, "c", "config", DefaultConfigFile, "Path to config file (YAML)")
	stringVar(fs, &c.DataDir, "d", "data-dir", DefaultDataDir, "Snapshot data directory")
	boolVar(fs, &c.Verbose, "v", "verbose", "Verbose (debug) logging")
	boolVar(fs, &c.SkipDestinationCheck, "s", "skip-destination-check", "Skip the pre-import conflict check")
	boolVar(fs, &c.DisableSSLWarnings, "w", "disable-ssl-warnings", "Do not warn about insecure TLS targets")
	boolVar(fs, &c.IgnoreImportErrors, "i", "ignore-import-errors", "Log and skip records that fail to import")
	boolVar(fs, &c.NoAuth, "n", "no-auth", "Skip token exchange and send an empty bearer token")
	fs.StringVar(&c.Listen, "listen", DefaultListen, "HTTP listen address (serve)")
	fs.BoolVar(&c.ShowVersion, "version", false, "Print version and exit")

	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		rest := fs.Args()
		if len(rest) == 0 {
			break
		}
		c.Actions = append(c.Actions, rest[0])
		args = rest[1:]
	}
	return c, nil
}

func stringVar(fs *flag.FlagSet, p *string, short, long, value, usage string) {
	fs.StringVar(p, short, value, usage)
	fs.StringVar(p, long, value, usage)
}

func boolVar(fs *flag.FlagSet, p *bool, short, long, usage string) {
	fs.BoolVar(p, short, false, usage)
	fs.BoolVar(p, long, false, usage)
}

// Load reads the config file, with environment variable overrides.
func (c *Config) Load() error {
	if _, err := os.Stat(c.ConfigFile); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: config file %s not found", apperrors.ErrConfig, c.ConfigFile)
		}
		return fmt.Errorf("%w: %v", apperrors.ErrConfig, err)
	}
	if err := cleanenv.ReadConfig(c.ConfigFile, &c.File); err != nil {
		return fmt.Errorf("%w: reading %s: %v", apperrors.ErrConfig, c.ConfigFile, err)
	}
	return nil
}

// Origin returns the validated origin target.
func (c *Config) Origin() (*models.Target, error) {
	return c.target("origin", c.File.Origin)
}

// Destination returns the validated destination target.
func (c *Config) Destination() (*models.Target, error) {
	return c.target("destination", c.File.Destination)
}

func (c *Config) target(name string, tc TargetConfig) (*models.Target, error) {
	if tc.URL == "" {
		return nil, fmt.Errorf("%w: %s.url is required", apperrors.ErrConfig, name)
	}
	if !c.NoAuth {
		if tc.TokenURL == "" {
			return nil, fmt.Errorf("%w: %s.token_url is required unless --no-auth is set", apperrors.ErrConfig, name)
		}
		if tc.Username == "" || tc.Password == "" {
			return nil, fmt.Errorf("%w: %s.username and %s.password are required unless --no-auth is set", apperrors.ErrConfig, name, name)
		}
	}
	return &models.Target{
		Name:     name,
		URL:      tc.URL,
		TokenURL: tc.TokenURL,
		ClientID: tc.ClientID,
		Username: tc.Username,
		Password: tc.Password,
		Insecure: tc.Insecure,
	}, nil
}

// Redacted renders the effective file config as YAML with passwords masked.
func (f File) Redacted() (string, error) {
	for _, tc := range []*TargetConfig{&f.Origin, &f.Destination} {
		if tc.Password != "" {
			tc.Password = "********"
		}
	}
	data, err := yaml.Marshal(f)
	if err != nil {
		return "", fmt.Errorf("encoding config: %w", err)
	}
	return string(data), nil
}
