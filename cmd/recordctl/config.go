package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ruslano69/recordkit/pkg/config"
)

// CreateSampleConfig creates sample configuration for a driver
func CreateSampleConfig(driverName string) (*config.Config, error) {
	cfg := config.Default()
	cfg.Driver = driverName

	switch driverName {
	case "mysql":
		cfg.DB.Port = 3306
		cfg.DB.Database = "hotel"
	case "postgres":
		cfg.DB.Port = 5432
		cfg.DB.User = "postgres"
		cfg.DB.Database = "hotel"
	case "mssql":
		cfg.DB.Port = 1433
		cfg.DB.User = "sa"
		cfg.DB.Database = "hotel"
	case "sqlite":
		cfg.DB.Host = ""
		cfg.DB.User = ""
		cfg.DB.Database = "hotel.db"
	default:
		return nil, fmt.Errorf("unknown driver %q", driverName)
	}

	cfg.QueryLog.File = "logs/queries.jsonl"
	return cfg, nil
}

// SaveConfig writes configuration to a YAML file
func SaveConfig(path string, cfg *config.Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
