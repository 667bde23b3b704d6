package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/viper"

	"mcpgate/internal/bootstrap/logging"
	"mcpgate/internal/errs"
)

type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Policy   PolicyConfig   `mapstructure:"policy"`
	Proxy    ProxyConfig    `mapstructure:"proxy"`
	Events   EventsConfig   `mapstructure:"events"`
}

type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
}

type ServerConfig struct {
	Addr      string `mapstructure:"addr"`
	AuthToken string `mapstructure:"auth_token"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// PolicyConfig holds the risk thresholds applied to uploaded scans.
// Scores at or below AutoApproveBelow approve without review; scores
// above MaxRiskScore fail outright.
type PolicyConfig struct {
	AutoApproveBelow float64 `mapstructure:"auto_approve_below"`
	MaxRiskScore     float64 `mapstructure:"max_risk_score"`
}

type ProxyConfig struct {
	UpstreamTimeoutSeconds int `mapstructure:"upstream_timeout_seconds"`
}

type EventsConfig struct {
	NATSURL       string `mapstructure:"nats_url"`
	SubjectPrefix string `mapstructure:"subject_prefix"`
}

func Load(ctx context.Context, configFile string) (Config, error) {
	if ctx == nil {
		return Config{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return Config{}, errs.Wrap(err, "check context")
	}

	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.config"))

	v := viper.New()
	setDefaults(logCtx, v)

	v.SetEnvPrefix("MCPGATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile == "" && errors.As(err, &notFound) {
			// Keep default and env-backed config when no file is provided.
			logging.Warn(logCtx, "config file not found, fallback to defaults and env")
		} else {
			return Config{}, errs.Wrap(err, "read config")
		}
	} else {
		logging.Info(logCtx, "using config file", slog.String("path", v.ConfigFileUsed()))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errs.Wrap(err, "unmarshal config")
	}

	if err := validate(cfg); err != nil {
		return Config{}, err
	}

	logging.Info(
		logCtx,
		"config loaded",
		slog.String("app", cfg.App.Name),
		slog.String("env", cfg.App.Env),
		slog.String("database_driver", cfg.Database.Driver),
		slog.Float64("auto_approve_below", cfg.Policy.AutoApproveBelow),
		slog.Float64("max_risk_score", cfg.Policy.MaxRiskScore),
	)

	return cfg, nil
}

func validate(cfg Config) error {
	if cfg.Database.DSN == "" {
		return errors.New("database.dsn is required")
	}
	if cfg.Policy.AutoApproveBelow < 0 {
		return fmt.Errorf("policy.auto_approve_below must not be negative, got %v", cfg.Policy.AutoApproveBelow)
	}
	if cfg.Policy.AutoApproveBelow >= cfg.Policy.MaxRiskScore {
		return fmt.Errorf(
			"policy.auto_approve_below (%v) must be strictly below policy.max_risk_score (%v)",
			cfg.Policy.AutoApproveBelow,
			cfg.Policy.MaxRiskScore,
		)
	}
	if cfg.Proxy.UpstreamTimeoutSeconds <= 0 {
		return fmt.Errorf("proxy.upstream_timeout_seconds must be positive, got %d", cfg.Proxy.UpstreamTimeoutSeconds)
	}
	return nil
}

func setDefaults(ctx context.Context, v *viper.Viper) {
	if ctx == nil {
		return
	}

	v.SetDefault("app.name", "mcpgate")
	v.SetDefault("app.env", "local")
	v.SetDefault("server.addr", ":8000")
	v.SetDefault("server.auth_token", "")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "data/mcpgate.sqlite")
	v.SetDefault("policy.auto_approve_below", 25)
	v.SetDefault("policy.max_risk_score", 75)
	v.SetDefault("proxy.upstream_timeout_seconds", 60)
	v.SetDefault("events.nats_url", "")
	v.SetDefault("events.subject_prefix", "mcpgate.audit")
}
