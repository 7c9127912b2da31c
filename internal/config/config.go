package config

import (
	"log"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"habitquest/pkg/config"
)

// SweepConfig controls the daily missed-habit sweep. Hour is the local hour
// (0-23) at which the sweep for the previous day runs.
type SweepConfig struct {
	Hour int `yaml:"hour"`
}

type Config struct {
	DB            config.DBConfig      `yaml:"db"`
	JWT           config.JWTConfig     `yaml:"jwt"`
	Server        config.ServerConfig  `yaml:"server"`
	MQ            config.MQConfig      `yaml:"mq"`
	Redis         config.RedisConfig   `yaml:"redis"`
	Payment       config.PaymentConfig `yaml:"payment"`
	Sweep         SweepConfig          `yaml:"sweep"`
	MigrationsDir string               `yaml:"migrations_dir"`
}

func Load() *Config {
	path := config.GetEnv("CONFIG_PATH", "config.yaml")

	f, err := os.Open(path)
	if err != nil {
		log.Fatalf("failed to open %s: %v", path, err)
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		log.Fatalf("failed to decode %s: %v", path, err)
	}

	config.OverrideDBFromEnv(&cfg.DB)
	config.OverrideJWTFromEnv(&cfg.JWT)
	config.OverrideServerFromEnv(&cfg.Server)
	config.OverrideMQFromEnv(&cfg.MQ)
	config.OverrideRedisFromEnv(&cfg.Redis)
	config.OverridePaymentFromEnv(&cfg.Payment)
	if hour := os.Getenv("SWEEP_HOUR"); hour != "" {
		if h, err := strconv.Atoi(hour); err == nil {
			cfg.Sweep.Hour = h
		}
	}
	if dir := os.Getenv("MIGRATIONS_DIR"); dir != "" {
		cfg.MigrationsDir = dir
	}

	if cfg.MigrationsDir == "" {
		cfg.MigrationsDir = "migrations"
	}
	if cfg.Payment.Currency == "" {
		cfg.Payment.Currency = "usd"
	}

	return &cfg
}
