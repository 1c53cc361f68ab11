package application

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	bins "smartwaste-cloud/internal/bins/domain"
)

// BinConfig describes one provisioned bin.
type BinConfig struct {
	ID           string  `yaml:"id"`
	Label        string  `yaml:"label"`
	Latitude     float64 `yaml:"latitude"`
	Longitude    float64 `yaml:"longitude"`
	Address      string  `yaml:"address"`
	LowThreshold float64 `yaml:"low_threshold"`
}

type provisioningFile struct {
	Bins []BinConfig `yaml:"bins"`
}

// LoadProvisioning reads the bin fleet from a YAML file, falling back to the
// built-in fleet when no path is given. The fleet is fixed for the process
// lifetime; telemetry never adds or removes bins.
func LoadProvisioning(path string) ([]bins.Bin, error) {
	configs := defaultFleet()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("bin provisioning: %w", err)
		}
		var file provisioningFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("bin provisioning: %w", err)
		}
		if len(file.Bins) == 0 {
			return nil, fmt.Errorf("bin provisioning: %s declares no bins", path)
		}
		configs = file.Bins
	}

	records := make([]bins.Bin, 0, len(configs))
	for i, cfg := range configs {
		if cfg.ID == "" {
			return nil, fmt.Errorf("bin provisioning: bin %d has no id", i)
		}
		if cfg.Label == "" {
			return nil, fmt.Errorf("bin provisioning: bin %q has no label", cfg.ID)
		}
		records = append(records, bins.Bin{
			ID:           cfg.ID,
			Label:        cfg.Label,
			Latitude:     cfg.Latitude,
			Longitude:    cfg.Longitude,
			Address:      cfg.Address,
			LowThreshold: cfg.LowThreshold,
		})
	}
	return records, nil
}

func defaultFleet() []BinConfig {
	return []BinConfig{
		{ID: "bin1", Label: "BIN 1", Latitude: 12.92351, Longitude: 77.49971, Address: "CURRENT", LowThreshold: 10},
		{ID: "bin2", Label: "BIN 2", Latitude: 12.915872, Longitude: 77.49364, Address: "CAUVERY HOSTEL", LowThreshold: 30},
	}
}
