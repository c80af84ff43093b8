// Package config loads application configuration from config.yaml and
// the REDIST_* environment, and installs the global logger.
package config

import (
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Fields  FieldsConfig  `yaml:"fields" mapstructure:"fields"`
	Balance BalanceConfig `yaml:"balance" mapstructure:"balance"`
	Export  ExportConfig  `yaml:"export" mapstructure:"export"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver string `yaml:"driver" mapstructure:"driver"`
	DSN    string `yaml:"dsn" mapstructure:"dsn"`
}

// FieldsConfig names the block-table fields and the patterns the
// session discovery and preprocessing steps scan for. The defaults
// match the city GIS export schema.
type FieldsConfig struct {
	ID               string `yaml:"id" mapstructure:"id"`
	Ward             string `yaml:"ward" mapstructure:"ward"`
	Neighborhood     string `yaml:"neighborhood" mapstructure:"neighborhood"`
	BasePopulation   string `yaml:"base_population" mapstructure:"base_population"`
	PermitPattern    string `yaml:"permit_pattern" mapstructure:"permit_pattern"`
	DwellingsPattern string `yaml:"dwellings_pattern" mapstructure:"dwellings_pattern"`
	FillPattern      string `yaml:"fill_pattern" mapstructure:"fill_pattern"`
}

// BalanceConfig configures the balance target computation. PriorTotal
// is the last known census total; a derived total below it flags bad
// edits. Zero disables the check.
type BalanceConfig struct {
	Tolerance  float64 `yaml:"tolerance" mapstructure:"tolerance"`
	PriorTotal float64 `yaml:"prior_total" mapstructure:"prior_total"`
}

// ExportConfig configures workbook output.
type ExportConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("REDIST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.dsn", "data/redist.db")
	v.SetDefault("fields.id", "GEOID10")
	v.SetDefault("fields.ward", "Ward_Numbe")
	v.SetDefault("fields.neighborhood", "Name")
	v.SetDefault("fields.base_population", "EstTotPop14")
	v.SetDefault("fields.permit_pattern", `^NewPop(20\d{2})$`)
	v.SetDefault("fields.dwellings_pattern", `^dwellings`)
	v.SetDefault("fields.fill_pattern", `dwellings|NewPop|TotPop|NewHU`)
	v.SetDefault("balance.tolerance", 0.03)
	v.SetDefault("balance.prior_total", 0)
	v.SetDefault("export.dir", ".")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	if err := cfg.Fields.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (f FieldsConfig) validate() error {
	for name, pat := range map[string]string{
		"fields.permit_pattern":    f.PermitPattern,
		"fields.dwellings_pattern": f.DwellingsPattern,
		"fields.fill_pattern":      f.FillPattern,
	} {
		if _, err := regexp.Compile(pat); err != nil {
			return eris.Wrapf(err, "config: compile %s", name)
		}
	}
	return nil
}

// PermitRegexp returns the compiled permit-year pattern.
func (f FieldsConfig) PermitRegexp() *regexp.Regexp {
	return regexp.MustCompile(f.PermitPattern)
}

// DwellingsRegexp returns the compiled dwelling-delta pattern.
func (f FieldsConfig) DwellingsRegexp() *regexp.Regexp {
	return regexp.MustCompile(f.DwellingsPattern)
}

// FillRegexp returns the compiled null-fill pattern.
func (f FieldsConfig) FillRegexp() *regexp.Regexp {
	return regexp.MustCompile(f.FillPattern)
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
