// Package config loads run settings from flags, MIST_* environment
// variables, a .env file and an optional YAML config file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"Mist-Guest-Grabber/pkg/enrich"
	"Mist-Guest-Grabber/pkg/filters"
	"Mist-Guest-Grabber/pkg/mist"
	"Mist-Guest-Grabber/pkg/output"
)

// EnvPrefix prefixes every environment variable, e.g. MIST_API_TOKEN.
const EnvPrefix = "MIST"

// DefaultConfigName is looked up in the home directory when --config is not given.
const DefaultConfigName = ".mist-guest-grabber"

// Keys shared by viper, the config file and the environment.
const (
	KeyOrgID         = "org_id"
	KeyAPIToken      = "api_token"
	KeyAPIHost       = "api_host"
	KeyOutput        = "output"
	KeyOutputFormat  = "output_format"
	KeyTimeFormat    = "time_format"
	KeyTimezone      = "timezone"
	KeyDuration      = "duration"
	KeyLimit         = "limit"
	KeyWLAN          = "wlan"
	KeySite          = "site"
	KeyInventoryType = "inventory_type"
	KeySiteDevices   = "site_devices"
	KeyTimeout       = "timeout"
	KeyLogFile       = "log_file"
	KeyLogLevel      = "log_level"
)

var (
	ErrMissingOrgID = errors.New("org_id is required (--org-id or MIST_ORG_ID)")
	ErrMissingToken = errors.New("api_token is required (--api-token or MIST_API_TOKEN)")
)

// Config holds every setting for one run.
type Config struct {
	OrgID         string        `mapstructure:"org_id"`
	APIToken      string        `mapstructure:"api_token"`
	APIHost       string        `mapstructure:"api_host"`
	Output        string        `mapstructure:"output"`
	OutputFormat  string        `mapstructure:"output_format"`
	TimeFormat    string        `mapstructure:"time_format"`
	Timezone      string        `mapstructure:"timezone"`
	Duration      string        `mapstructure:"duration"`
	Limit         int           `mapstructure:"limit"`
	WLAN          string        `mapstructure:"wlan"`
	Site          string        `mapstructure:"site"`
	InventoryType string        `mapstructure:"inventory_type"`
	SiteDevices   bool          `mapstructure:"site_devices"`
	Timeout       time.Duration `mapstructure:"timeout"`
	LogFile       string        `mapstructure:"log_file"`
	LogLevel      string        `mapstructure:"log_level"`
}

// flagKeys maps command line flag names to config keys.
var flagKeys = map[string]string{
	"org-id":         KeyOrgID,
	"api-token":      KeyAPIToken,
	"api-host":       KeyAPIHost,
	"output":         KeyOutput,
	"output-format":  KeyOutputFormat,
	"time-format":    KeyTimeFormat,
	"timezone":       KeyTimezone,
	"duration":       KeyDuration,
	"limit":          KeyLimit,
	"wlan":           KeyWLAN,
	"site":           KeySite,
	"inventory-type": KeyInventoryType,
	"site-devices":   KeySiteDevices,
	"timeout":        KeyTimeout,
	"log-file":       KeyLogFile,
	"log-level":      KeyLogLevel,
}

// RegisterFlags adds every setting to fs. Flag defaults are empty so that an
// unset flag never shadows the environment or config file.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("org-id", "", "Mist organization ID")
	fs.String("api-token", "", "Mist API token")
	fs.String("api-host", "", "Mist API host (default "+mist.DefaultHost+")")
	fs.StringP("output", "o", "", "Output file path (default ./guests.csv)")
	fs.String("output-format", "", "Output format: csv, text, html (default csv)")
	fs.String("time-format", "", "Time layout, Go or strftime style (default %I:%M:%S %m-%d-%Y)")
	fs.String("timezone", "", "Timezone for Auth/Expire Time: Local, UTC or an IANA name (default Local)")
	fs.String("duration", "", "Guest search window, e.g. 1d, 7d (default 1d)")
	fs.Int("limit", 0, "Guest search page size (default 1000)")
	fs.String("wlan", "", "Only guests of this WLAN ID")
	fs.String("site", "", "Comma-separated site names or IDs, or ALL (default ALL)")
	fs.String("inventory-type", "", "Inventory device type used for AP names (default ap)")
	fs.Bool("site-devices", false, "Also resolve AP names from each site's device list")
	fs.Duration("timeout", 0, "Per-request timeout (default 30s)")
	fs.String("log-file", "", "Log file path")
	fs.String("log-level", "", "Log level: DEBUG, INFO, WARNING, ERROR (default INFO)")
}

// New returns a viper instance with defaults, environment binding and the
// flags in fs bound to their keys.
func New(fs *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if fs != nil {
		for name, key := range flagKeys {
			f := fs.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}
	return v, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyAPIHost, mist.DefaultHost)
	v.SetDefault(KeyOutput, "./guests.csv")
	v.SetDefault(KeyOutputFormat, string(output.FormatCSV))
	v.SetDefault(KeyTimeFormat, enrich.DefaultTimeLayout)
	v.SetDefault(KeyTimezone, "Local")
	v.SetDefault(KeyDuration, "1d")
	v.SetDefault(KeyLimit, 1000)
	v.SetDefault(KeySite, filters.AllSites)
	v.SetDefault(KeyInventoryType, "ap")
	v.SetDefault(KeySiteDevices, false)
	v.SetDefault(KeyTimeout, 30*time.Second)
	v.SetDefault(KeyLogLevel, "INFO")
}

// LoadDotEnv loads .env files into the process environment. Variables that
// are already set win. Missing files are not an error.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	var present []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			present = append(present, f)
		}
	}
	if len(present) == 0 {
		return nil
	}
	return godotenv.Load(present...)
}

// ReadFile reads cfgFile, or the default file in the home directory when
// cfgFile is empty. Only an explicitly named file is required to exist.
func ReadFile(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", cfgFile, err)
		}
		return nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	v.AddConfigPath(home)
	v.SetConfigType("yaml")
	v.SetConfigName(DefaultConfigName)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config %s: %w", filepath.Join(home, DefaultConfigName+".yaml"), err)
	}
	return nil
}

// Load resolves the final Config from v. It does not validate credentials,
// so listing commands can report what is missing themselves.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.OrgID = strings.TrimSpace(cfg.OrgID)
	cfg.APIToken = strings.TrimSpace(cfg.APIToken)
	cfg.APIHost = strings.TrimSpace(cfg.APIHost)
	cfg.TimeFormat = strings.TrimSpace(cfg.TimeFormat)
	return cfg, nil
}

// Validate checks the settings a guest report needs.
func (c Config) Validate() error {
	var errs []error
	if c.OrgID == "" {
		errs = append(errs, ErrMissingOrgID)
	}
	if c.APIToken == "" {
		errs = append(errs, ErrMissingToken)
	}
	if c.Limit <= 0 {
		errs = append(errs, fmt.Errorf("limit must be positive, got %d", c.Limit))
	}
	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout must be positive, got %s", c.Timeout))
	}
	if strings.TrimSpace(c.Output) == "" {
		errs = append(errs, errors.New("output path is required"))
	}
	if _, err := output.ParseFormat(c.OutputFormat); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}
	if err := enrich.CheckLayout(c.TimeFormat); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Location resolves Timezone. "Local" and "" mean the system zone.
func (c Config) Location() (*time.Location, error) {
	switch strings.TrimSpace(c.Timezone) {
	case "", "Local", "local":
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}
