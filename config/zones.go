package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/wassel-delivery/dispatch/core/model"
)

// ZoneConfig describes one delivery zone in the configuration file.
type ZoneConfig struct {
	ID           string  `json:"id" yaml:"id"`
	Name         string  `json:"name" yaml:"name"`
	Latitude     float64 `json:"latitude" yaml:"latitude"`
	Longitude    float64 `json:"longitude" yaml:"longitude"`
	RadiusMeters float64 `json:"radius_meters" yaml:"radius_meters"`
	Priority     int     `json:"priority" yaml:"priority"`
}

// Model converts the config entry to the domain zone.
func (z ZoneConfig) Model() model.Zone {
	return model.Zone{
		ID:           z.ID,
		Name:         z.Name,
		Center:       model.Coordinate{Latitude: z.Latitude, Longitude: z.Longitude},
		RadiusMeters: z.RadiusMeters,
		Priority:     z.Priority,
	}
}

// ZoneModels converts all configured zones to their domain form.
func (c *Config) ZoneModels() []model.Zone {
	out := make([]model.Zone, 0, len(c.Zones))
	for _, z := range c.Zones {
		out = append(out, z.Model())
	}
	return out
}

// DefaultZones returns the Riyadh delivery zones.
func DefaultZones() []ZoneConfig {
	return []ZoneConfig{
		{ID: "central", Name: "Central Riyadh", Latitude: 24.7136, Longitude: 46.6753, RadiusMeters: 5000, Priority: 1},
		{ID: "north", Name: "North Riyadh", Latitude: 24.7836, Longitude: 46.6753, RadiusMeters: 7000, Priority: 2},
		{ID: "south", Name: "South Riyadh", Latitude: 24.6436, Longitude: 46.6753, RadiusMeters: 7000, Priority: 2},
		{ID: "east", Name: "East Riyadh", Latitude: 24.7136, Longitude: 46.7753, RadiusMeters: 6000, Priority: 2},
		{ID: "west", Name: "West Riyadh", Latitude: 24.7136, Longitude: 46.5753, RadiusMeters: 6000, Priority: 2},
	}
}

// LoadZonesFile reads a standalone zone list from a yaml or json file.
func LoadZonesFile(path string) ([]ZoneConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var zones []ZoneConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &zones)
	case ".json":
		err = json.Unmarshal(data, &zones)
	default:
		return nil, fmt.Errorf("unsupported zone file format: %s", filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}
	for _, z := range zones {
		if err := z.Model().Validate(); err != nil {
			return nil, fmt.Errorf("zone %s: %w", z.ID, err)
		}
	}
	return zones, nil
}
