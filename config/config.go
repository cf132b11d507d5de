package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Location describes a place pulse files can be read from: a local
// directory or a minio/S3 bucket.
type Location struct {
	LocationName   string `mapstructure:"location_name"`
	LocationType   string `mapstructure:"location_type"`
	Path           string `mapstructure:"path"`
	MinioBucket    string `mapstructure:"minio_bucket"`
	Location       string `mapstructure:"location"`
	MinioAccessKey string `mapstructure:"minio_access_key"`
	MinioSecretKey string `mapstructure:"minio_secret_key"`
	MinioUseSSL    bool   `mapstructure:"minio_use_ssl"`
}

// Configuration for the pulse-file data source layer.
type Configuration struct {
	CacheLocation   string     `mapstructure:"cache_location"`
	CacheMaxBytes   int64      `mapstructure:"cache_max_bytes"`
	CheckCacheEvery int        `mapstructure:"check_cache_every"`
	LocationDetails []Location `mapstructure:"location_details"`
}

// Load reads and unmarshals a YAML configuration file.
func Load(configPath string) (*Configuration, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", configPath, err)
	}

	configuration := &Configuration{}
	if err := v.Unmarshal(configuration); err != nil {
		return nil, fmt.Errorf("error decoding config file %s: %w", configPath, err)
	}
	return configuration, nil
}

// FindLocation returns the named location's details.
func (c *Configuration) FindLocation(locationName string) (Location, bool) {
	for i := range c.LocationDetails {
		if c.LocationDetails[i].LocationName == locationName {
			return c.LocationDetails[i], true
		}
	}
	return Location{}, false
}
