package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config models buildline.yml.
type Config struct {
	Building struct {
		ID    string     `yaml:"id"`
		Name  string     `yaml:"name"`
		Zones []ZoneSeed `yaml:"zones"`
	} `yaml:"building"`
	Rates struct {
		ElectricityPerKWH float64 `yaml:"electricity_per_kwh"`
		PeakDemandPerKW   float64 `yaml:"peak_demand_per_kw"`
		AvgZoneLoadKW     float64 `yaml:"avg_zone_load_kw"`
	} `yaml:"rates"`
	Server struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
	} `yaml:"server"`
}

// ZoneSeed describes a zone provisioned on first startup.
type ZoneSeed struct {
	ID                  string  `yaml:"id"`
	Name                string  `yaml:"name"`
	TemperatureSetpoint float64 `yaml:"temperature_setpoint"`
	CurrentTemperature  float64 `yaml:"current_temperature"`
	HVACMode            string  `yaml:"hvac_mode"`
	OccupancyMode       string  `yaml:"occupancy_mode"`
	PowerUsageKW        float64 `yaml:"power_usage_kw"`
}

// Load reads and validates config from the workspace.
func Load(workspace string) (*Config, error) {
	path := Path(workspace)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config %s not found; generate one with bl init", path)
		}
		return nil, err
	}
	return FromYAML(data)
}

// LoadOptional returns nil,nil if the config file does not exist.
func LoadOptional(workspace string) (*Config, error) {
	path := Path(workspace)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return FromYAML(data)
}

// FromYAML parses and validates config from raw YAML bytes.
func FromYAML(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid config yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FromFile reads YAML config from the given path.
func FromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return FromYAML(data)
}

// Validate ensures the config meets required structure.
func (c *Config) Validate() error {
	if c.Building.ID == "" {
		return fmt.Errorf("config.building.id is required")
	}
	seen := map[string]bool{}
	for _, z := range c.Building.Zones {
		if z.ID == "" {
			return fmt.Errorf("config.building.zones contains empty zone id")
		}
		if seen[z.ID] {
			return fmt.Errorf("config.building.zones contains duplicate zone id %s", z.ID)
		}
		seen[z.ID] = true
	}
	if c.Rates.ElectricityPerKWH < 0 {
		return fmt.Errorf("config.rates.electricity_per_kwh must not be negative")
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config.server.port must be a valid port")
	}
	return nil
}

// Path returns the config file path for a workspace.
func Path(workspace string) string {
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, "buildline.yml")
}

// GenerateDefault returns default config YAML.
func GenerateDefault(buildingID string) string {
	return fmt.Sprintf(defaultTemplate, buildingID)
}

// Default returns the default Config struct for a building.
func Default(buildingID string) *Config {
	cfg, err := FromYAML([]byte(GenerateDefault(buildingID)))
	if err != nil {
		panic(err)
	}
	return cfg
}

const defaultTemplate = `building:
  id: %s
  name: Demo Building

  zones:
    - id: Z001
      name: Open Office East
      temperature_setpoint: 72.0
      current_temperature: 72.5
      hvac_mode: auto
      occupancy_mode: occupied
      power_usage_kw: 15.2
    - id: Z002
      name: Open Office West
      temperature_setpoint: 72.0
      current_temperature: 71.8
      hvac_mode: auto
      occupancy_mode: occupied
      power_usage_kw: 8.5
    - id: Z003
      name: Conference Center
      temperature_setpoint: 73.0
      current_temperature: 73.2
      hvac_mode: auto
      occupancy_mode: occupied
      power_usage_kw: 6.8
    - id: Z004
      name: Server Room
      temperature_setpoint: 68.0
      current_temperature: 68.5
      hvac_mode: auto
      occupancy_mode: unoccupied
      power_usage_kw: 22.1
    - id: Z005
      name: Lobby
      temperature_setpoint: 74.0
      current_temperature: 74.0
      hvac_mode: auto
      occupancy_mode: occupied
      power_usage_kw: 4.2

rates:
  electricity_per_kwh: 0.12
  peak_demand_per_kw: 15.0
  avg_zone_load_kw: 10.0

server:
  host: 127.0.0.1
  port: 8080
`
