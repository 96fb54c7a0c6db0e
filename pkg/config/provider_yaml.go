package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// YAMLProvider implements Provider for YAML configuration files
type YAMLProvider struct {
	filename string
	config   *Data
}

// NewYAMLProvider creates a new YAML configuration provider
func NewYAMLProvider(filename string) *YAMLProvider {
	return &YAMLProvider{
		filename: filename,
	}
}

// LoadConfig loads the complete configuration from the YAML file
func (y *YAMLProvider) LoadConfig() (*Data, error) {
	cfgFile, err := os.ReadFile(y.filename)
	if err != nil {
		return nil, err
	}

	config := &Data{}
	if err := yaml.Unmarshal(cfgFile, config); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", y.filename, err)
	}
	config.Normalize()

	y.config = config
	return config, nil
}

func (y *YAMLProvider) cached() (*Data, error) {
	if y.config != nil {
		return y.config, nil
	}
	return y.LoadConfig()
}

// GetAPI returns the upstream API configuration
func (y *YAMLProvider) GetAPI() (*APIData, error) {
	config, err := y.cached()
	if err != nil {
		return nil, err
	}
	return &config.API, nil
}

// GetSites returns the configured forecast sites
func (y *YAMLProvider) GetSites() ([]SiteData, error) {
	config, err := y.cached()
	if err != nil {
		return nil, err
	}
	return config.Sites, nil
}

// GetStorageConfig returns the storage configuration
func (y *YAMLProvider) GetStorageConfig() (*StorageData, error) {
	config, err := y.cached()
	if err != nil {
		return nil, err
	}
	return &config.Storage, nil
}

// GetControllers returns the controller configurations
func (y *YAMLProvider) GetControllers() ([]ControllerData, error) {
	config, err := y.cached()
	if err != nil {
		return nil, err
	}
	return config.Controllers, nil
}

// IsReadOnly returns true: YAML configurations are not editable at runtime
func (y *YAMLProvider) IsReadOnly() bool {
	return true
}

// Close is a no-op for YAML providers
func (y *YAMLProvider) Close() error {
	return nil
}
