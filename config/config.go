// Package config loads judgefee.yaml.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/zalepa/judgefee/fee"
	"github.com/zalepa/judgefee/report"
	"github.com/zalepa/judgefee/roster"
)

// DefaultPath is the config file read when --config is not given.
const DefaultPath = "judgefee.yaml"

// Config holds every setting of the judgefee binary.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	FeeTable FeeTableConfig `yaml:"fee_table"`
	Engine   EngineConfig   `yaml:"engine"`
	Roster   RosterConfig   `yaml:"roster"`
	Report   ReportConfig   `yaml:"report"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig holds the form server settings.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// FeeTableConfig locates the region fee table. An empty path disables it.
type FeeTableConfig struct {
	Path string `yaml:"path"`
}

// EngineConfig selects the fee model variant.
type EngineConfig struct {
	MealSchema        string `yaml:"meal_schema"`
	RegionLookup      bool   `yaml:"region_lookup"`
	ExtraFees         bool   `yaml:"extra_fees"`
	SignedAdjustments bool   `yaml:"signed_adjustments"`
}

// RosterConfig controls how new judge records start.
type RosterConfig struct {
	AppendSeed string `yaml:"append_seed"`
}

// ReportConfig controls exported reports.
type ReportConfig struct {
	Title         string `yaml:"title"`
	FileName      string `yaml:"file_name"`
	ShowZeroLines bool   `yaml:"show_zero_lines"`
	Chart         bool   `yaml:"chart"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            "127.0.0.1:8080",
			ShutdownTimeout: 5 * time.Second,
		},
		FeeTable: FeeTableConfig{Path: "fees.csv"},
		Engine: EngineConfig{
			MealSchema:   string(fee.MealCountRate),
			RegionLookup: true,
			ExtraFees:    true,
		},
		Roster: RosterConfig{AppendSeed: string(roster.SeedDefault)},
		Report: ReportConfig{
			Title:    report.DefaultTitle,
			FileName: report.DefaultFileName,
			Chart:    true,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks enumerated values.
func (c Config) Validate() error {
	if _, err := fee.ParseMealSchema(c.Engine.MealSchema); err != nil {
		return fmt.Errorf("engine.meal_schema: %w", err)
	}
	if _, err := roster.ParseSeed(c.Roster.AppendSeed); err != nil {
		return fmt.Errorf("roster.append_seed: %w", err)
	}
	if c.Server.ShutdownTimeout < 0 {
		return fmt.Errorf("server.shutdown_timeout: must not be negative, got %s", c.Server.ShutdownTimeout)
	}
	return nil
}

// FeeOptions converts the engine section. Call Validate first.
func (c Config) FeeOptions() fee.Options {
	schema, _ := fee.ParseMealSchema(c.Engine.MealSchema)
	return fee.Options{
		MealSchema:        schema,
		RegionLookup:      c.Engine.RegionLookup,
		ExtraFees:         c.Engine.ExtraFees,
		SignedAdjustments: c.Engine.SignedAdjustments,
	}
}

// AppendSeed converts roster.append_seed. Call Validate first.
func (c Config) AppendSeed() roster.Seed {
	seed, _ := roster.ParseSeed(c.Roster.AppendSeed)
	return seed
}

// ReportOptions converts the report section.
func (c Config) ReportOptions() report.Options {
	return report.Options{
		Title:         c.Report.Title,
		ShowZeroLines: c.Report.ShowZeroLines,
		Chart:         c.Report.Chart,
		Fee:           c.FeeOptions(),
	}
}

// ReportFileName is the download name of the PDF export.
func (c Config) ReportFileName() string {
	if c.Report.FileName == "" {
		return report.DefaultFileName
	}
	return c.Report.FileName
}
