// Package config loads runtime configuration from environment variables and
// an optional .env file.
package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/clinpipe/clinpipe/internal/deid"
)

type Config struct {
	Port        string `mapstructure:"PORT"`
	Env         string `mapstructure:"ENV"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	JWTSecret   string `mapstructure:"JWT_SECRET"`
	EmbedDim    int    `mapstructure:"EMBEDDING_DIMENSION"`

	DeidMethod              string `mapstructure:"DEID_METHOD"`
	DeidKeepYear            bool   `mapstructure:"DEID_KEEP_YEAR"`
	DeidGeographicPrecision string `mapstructure:"DEID_GEOGRAPHIC_PRECISION"`
	DeidOver90Handling      string `mapstructure:"DEID_OVER_90_HANDLING"`
	DeidPatientIDStrategy   string `mapstructure:"DEID_PATIENT_ID_STRATEGY"`
	DeidIDSalt              string `mapstructure:"DEID_ID_SALT"`
	DeidStatisticalDetector bool   `mapstructure:"DEID_USE_STATISTICAL_TEXT_DETECTOR"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("EMBEDDING_DIMENSION", 256)
	v.SetDefault("DEID_METHOD", string(deid.MethodSafeHarbor))
	v.SetDefault("DEID_KEEP_YEAR", true)
	v.SetDefault("DEID_GEOGRAPHIC_PRECISION", string(deid.PrecisionState))
	v.SetDefault("DEID_OVER_90_HANDLING", string(deid.Over90Flag))
	v.SetDefault("DEID_PATIENT_ID_STRATEGY", string(deid.StrategyHash))
	v.SetDefault("DEID_USE_STATISTICAL_TEXT_DETECTOR", false)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("JWT_SECRET")
	v.BindEnv("EMBEDDING_DIMENSION")
	v.BindEnv("DEID_METHOD")
	v.BindEnv("DEID_KEEP_YEAR")
	v.BindEnv("DEID_GEOGRAPHIC_PRECISION")
	v.BindEnv("DEID_OVER_90_HANDLING")
	v.BindEnv("DEID_PATIENT_ID_STRATEGY")
	v.BindEnv("DEID_ID_SALT")
	v.BindEnv("DEID_USE_STATISTICAL_TEXT_DETECTOR")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Policy().Validate(); err != nil {
		return nil, err
	}
	if cfg.EmbedDim <= 0 {
		return nil, fmt.Errorf("EMBEDDING_DIMENSION must be positive, got %d", cfg.EmbedDim)
	}
	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// HasDatabase reports whether Postgres persistence is configured. Audit
// tracking and the durable vector store are disabled without it.
func (c *Config) HasDatabase() bool {
	return c.DatabaseURL != ""
}

// AuthEnabled reports whether the API requires bearer tokens. Development
// mode never requires them.
func (c *Config) AuthEnabled() bool {
	return c.JWTSecret != "" && !c.IsDev()
}

// Policy assembles the de-identification policy from the DEID_* settings,
// with unset values filled by the documented defaults.
func (c *Config) Policy() deid.Policy {
	p := deid.Policy{
		Method:                     deid.Method(c.DeidMethod),
		KeepYear:                   c.DeidKeepYear,
		GeographicPrecision:        deid.GeographicPrecision(c.DeidGeographicPrecision),
		Over90Handling:             deid.Over90Handling(c.DeidOver90Handling),
		PatientIDStrategy:          deid.PatientIDStrategy(c.DeidPatientIDStrategy),
		IDSalt:                     c.DeidIDSalt,
		UseStatisticalTextDetector: c.DeidStatisticalDetector,
	}
	return p.Normalize()
}
