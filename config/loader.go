package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// LoadAppConfig loads and validates the application configuration.
// When path is empty a short list of conventional locations is tried.
func LoadAppConfig(path string) (AppConfig, error) {
	paths := []string{path}
	if path == "" {
		paths = []string{"config.yml", "./config/config.yml"}
	}

	var data []byte
	var err error
	for _, p := range paths {
		data, err = os.ReadFile(p)
		if err == nil {
			break
		}
	}
	if err != nil {
		return AppConfig{}, fmt.Errorf("read config: %w", err)
	}

	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return AppConfig{}, fmt.Errorf("parse config: %w", err)
	}
	cfg.ApplyDefaults()

	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		return AppConfig{}, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// ApplyDefaults fills in defaults for unset fields. Planner defaults match
// the values the production composable shipped with.
func (c *AppConfig) ApplyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.SIRI.Timezone == "" {
		c.SIRI.Timezone = "Europe/Madrid"
	}
	if c.SIRI.TimeoutMS == 0 {
		c.SIRI.TimeoutMS = 15000
	}
	if p := os.Getenv("SIRI_ACCOUNT_ID"); p != "" {
		c.SIRI.AccountID = p
	}
	if p := os.Getenv("SIRI_ACCOUNT_KEY"); p != "" {
		c.SIRI.AccountKey = p
	}
	if p := os.Getenv("DATABASE_PATH"); p != "" {
		c.Storage.DatabasePath = p
	}
	if c.Storage.DatabasePath == "" {
		c.Storage.DatabasePath = "storage.db"
	}
	if c.Vehicles.GhostTTLMinutes == 0 {
		c.Vehicles.GhostTTLMinutes = 15
	}
	c.Planner = c.Planner.withDefaults()
}

func (p PlannerConfig) withDefaults() PlannerConfig {
	if p.WalkingSpeedMPS == 0 {
		p.WalkingSpeedMPS = 1.1 // ~4 km/h
	}
	if p.BusSpeedMPS == 0 {
		p.BusSpeedMPS = 5.5 // ~20 km/h average in city, stops included
	}
	if p.TransferRadiusMeters == 0 {
		p.TransferRadiusMeters = 300
	}
	if p.MaxWalkDistanceMeters == 0 {
		p.MaxWalkDistanceMeters = 800
	}
	if p.DirectWalkCapMeters == 0 {
		p.DirectWalkCapMeters = 3000
	}
	if p.MinHopSeconds == 0 {
		p.MinHopSeconds = 30
	}
	if p.InitialWaitSeconds == 0 {
		p.InitialWaitSeconds = 300
	}
	if p.TransferWaitSeconds == 0 {
		p.TransferWaitSeconds = 300
	}
	if p.MissedHeadwaySeconds == 0 {
		p.MissedHeadwaySeconds = 900
	}
	if p.MaxRoutes == 0 {
		p.MaxRoutes = 3
	}
	if p.ArrivalPrefetchStops == 0 {
		p.ArrivalPrefetchStops = 5
	}
	if p.DuplicateRetries == 0 {
		p.DuplicateRetries = 5
	}
	if p.DuplicatePenaltySeconds == 0 {
		p.DuplicatePenaltySeconds = 5000
	}
	if p.FastTagSeconds == 0 {
		p.FastTagSeconds = 1200
	}
	return p
}

// DefaultPlannerConfig returns the planner constants used in production.
func DefaultPlannerConfig() PlannerConfig {
	return PlannerConfig{}.withDefaults()
}
