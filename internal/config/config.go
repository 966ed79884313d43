// Package config loads service settings from .env, keel.yaml and KEEL_*
// environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"

	"Keel/internal/calc/gzcurve"
	"Keel/internal/calc/scenario"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Addr        string             `mapstructure:"addr"`
	TLSCert     string             `mapstructure:"tls_cert"`
	TLSKey      string             `mapstructure:"tls_key"`
	DatabaseURL string             `mapstructure:"database_url"`
	TokenKey    string             `mapstructure:"token_key"`
	RateLimit   float64            `mapstructure:"rate_limit"`
	RateBurst   int                `mapstructure:"rate_burst"`
	BatchLimit  int                `mapstructure:"batch_limit"`
	Debug       bool               `mapstructure:"debug"`
	Calc        scenario.Constants `mapstructure:"calc"`
}

func setDefaults() {
	viper.SetDefault("addr", ":8443")
	viper.SetDefault("tls_cert", "")
	viper.SetDefault("tls_key", "")
	viper.SetDefault("database_url", "")
	viper.SetDefault("token_key", "")
	viper.SetDefault("rate_limit", 5.0)
	viper.SetDefault("rate_burst", 10)
	viper.SetDefault("batch_limit", 8)
	viper.SetDefault("debug", false)

	c := scenario.DefaultConstants()
	viper.SetDefault("calc.density", c.Density)
	viper.SetDefault("calc.curve_step_deg", c.CurveStepDeg)
	viper.SetDefault("calc.deck_edge_coeff", c.DeckEdgeCoeff)
	viper.SetDefault("calc.roll_coeff", c.RollCoeff)
	viper.SetDefault("calc.thresholds.area_0_30_mdeg", c.Thresholds.Area0to30MDeg)
	viper.SetDefault("calc.thresholds.area_0_40_mdeg", c.Thresholds.Area0to40MDeg)
	viper.SetDefault("calc.thresholds.area_30_40_mdeg", c.Thresholds.Area30to40MDeg)
	viper.SetDefault("calc.thresholds.max_gz_m", c.Thresholds.MaxGZM)
	viper.SetDefault("calc.thresholds.max_gz_from_deg", c.Thresholds.MaxGZFromDeg)
	viper.SetDefault("calc.thresholds.initial_gm_m", c.Thresholds.InitialGMM)
	viper.SetDefault("calc.thresholds.weather_heel_cap_deg", c.Thresholds.WeatherHeelCapDeg)
	viper.SetDefault("calc.thresholds.high_fsc_ratio", c.Thresholds.HighFSCRatio)
}

// Load reads the configuration. configDir is searched for keel.yaml; a
// missing file is not an error. A .env file in the working directory is
// loaded first if present.
func Load(configDir string) (Config, error) {
	_ = godotenv.Load()
	setDefaults()

	viper.SetEnvPrefix("KEEL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetConfigName("keel")
	viper.SetConfigType("yaml")
	if configDir != "" {
		viper.AddConfigPath(configDir)
	}
	if err := viper.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) {
			return Config{}, fmt.Errorf("error reading config file: %v", err)
		}
	}

	var c Config
	if err := viper.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("error decoding config: %v", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) Validate() error {
	switch {
	case c.Calc.Density <= 0:
		return fmt.Errorf("calc.density must be positive, got %v", c.Calc.Density)
	case c.Calc.CurveStepDeg < gzcurve.MinStepDeg || c.Calc.CurveStepDeg > gzcurve.MaxAngleDeg:
		return fmt.Errorf("calc.curve_step_deg must be in [%v,%v], got %v", gzcurve.MinStepDeg, gzcurve.MaxAngleDeg, c.Calc.CurveStepDeg)
	case c.Calc.DeckEdgeCoeff < 0 || c.Calc.DeckEdgeCoeff > 1:
		return fmt.Errorf("calc.deck_edge_coeff must be in [0,1], got %v", c.Calc.DeckEdgeCoeff)
	case c.RateLimit <= 0 || c.RateBurst <= 0:
		return fmt.Errorf("rate_limit and rate_burst must be positive")
	case c.BatchLimit <= 0:
		return fmt.Errorf("batch_limit must be positive")
	}
	return nil
}
