// Package config loads service settings from defaults, an optional YAML file,
// BOXOFFICE_* environment variables and command-line flags, in rising priority.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"boxoffice-pipeline/internal/pipeline"
	"boxoffice-pipeline/pkg/utils"
)

// EnvPrefix prefixes every environment override, e.g. BOXOFFICE_DATA_PATH.
const EnvPrefix = "BOXOFFICE"

// DefaultMovieCodes preselects the code view when a request names no movies.
// Codes absent from the loaded table are dropped.
var DefaultMovieCodes = []string{"20226411", "20204548", "20172742"}

// Settings is the full service configuration.
type Settings struct {
	Data struct {
		Path          string   `mapstructure:"path"`
		DefaultMovies []string `mapstructure:"default_movies"`
		DefaultCodes  []string `mapstructure:"default_codes"`
	} `mapstructure:"data"`

	Window struct {
		Days int `mapstructure:"days"`
	} `mapstructure:"window"`

	Dashboard struct {
		Variant string `mapstructure:"variant"`
	} `mapstructure:"dashboard"`

	Store struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"store"`

	Export struct {
		Dir     string   `mapstructure:"dir"`
		Formats []string `mapstructure:"formats"`
	} `mapstructure:"export"`

	Server struct {
		Addr         string `mapstructure:"addr"`
		ReadTimeout  string `mapstructure:"read_timeout"`
		WriteTimeout string `mapstructure:"write_timeout"`
		JobTimeout   string `mapstructure:"job_timeout"`
	} `mapstructure:"server"`

	Logging struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	} `mapstructure:"logging"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data.path", "data/boxoffice.csv")
	v.SetDefault("data.default_movies", []string{})
	v.SetDefault("data.default_codes", DefaultMovieCodes)

	v.SetDefault("window.days", pipeline.DefaultWindowDays)
	v.SetDefault("dashboard.variant", pipeline.DefaultVariant)

	v.SetDefault("store.path", "boxoffice.db")

	v.SetDefault("export.dir", "outputs")
	v.SetDefault("export.formats", []string{pipeline.FormatCSV, pipeline.FormatJSON, pipeline.FormatHTML})

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "2m")
	v.SetDefault("server.job_timeout", "5m")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// New returns a viper instance with defaults and environment binding set up.
func New() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// flagKeys maps command-line flags onto config keys.
var flagKeys = map[string]string{
	"data":       "data.path",
	"movies":     "data.default_movies",
	"codes":      "data.default_codes",
	"window":     "window.days",
	"variant":    "dashboard.variant",
	"db":         "store.path",
	"out":        "export.dir",
	"formats":    "export.formats",
	"addr":       "server.addr",
	"log-level":  "logging.level",
	"log-format": "logging.format",
}

// BindFlags binds whichever of the known flags exist in fs.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}

// Load reads configFile (optional; "" searches ./boxoffice.yaml) into Settings and validates it.
func Load(v *viper.Viper, configFile string) (*Settings, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("boxoffice")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	settings := &Settings{}
	if err := v.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}
	return settings, nil
}

// Validate checks values that would otherwise fail deep inside a run.
func (s *Settings) Validate() error {
	var errs []error
	if strings.TrimSpace(s.Data.Path) == "" {
		errs = append(errs, errors.New("data.path is required"))
	}
	if s.Window.Days < 0 {
		errs = append(errs, fmt.Errorf("window.days must not be negative, got %d", s.Window.Days))
	}
	if _, err := pipeline.LookupVariant(s.Dashboard.Variant); err != nil {
		errs = append(errs, fmt.Errorf("dashboard.variant: %w", err))
	}
	if err := pipeline.ValidateFormats(s.Export.Formats); err != nil {
		errs = append(errs, fmt.Errorf("export.formats: %w", err))
	}
	for key, val := range map[string]string{
		"server.read_timeout":  s.Server.ReadTimeout,
		"server.write_timeout": s.Server.WriteTimeout,
		"server.job_timeout":   s.Server.JobTimeout,
	} {
		if val == "" {
			continue
		}
		if _, err := time.ParseDuration(val); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}

// PipelineOptions turns the settings into build options.
func (s *Settings) PipelineOptions() pipeline.Options {
	return pipeline.Options{
		WindowDays:     s.Window.Days,
		DefaultVariant: s.Dashboard.Variant,
		DefaultMovies:  s.Data.DefaultMovies,
		DefaultCodes:   s.Data.DefaultCodes,
	}
}

// ReadTimeout returns the server read timeout, 15s when unset.
func (s *Settings) ReadTimeout() time.Duration {
	return utils.ParseDuration(s.Server.ReadTimeout, 15*time.Second)
}

// WriteTimeout returns the server write timeout, 2m when unset.
func (s *Settings) WriteTimeout() time.Duration {
	return utils.ParseDuration(s.Server.WriteTimeout, 2*time.Minute)
}

// JobTimeout bounds a single dashboard run, 5m when unset.
func (s *Settings) JobTimeout() time.Duration {
	return utils.ParseDuration(s.Server.JobTimeout, 5*time.Minute)
}
