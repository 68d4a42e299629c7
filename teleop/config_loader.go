package teleop

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads the ground station configuration from a YAML file and
// applies defaults for unset fields. The broker may alternatively come from
// the MQTT_BROKER env var, so its absence here is not an error.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	applyDefaults(&config)

	if err := validate(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(path string, config *Config) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("marshaling config YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// DefaultConfig returns a config with every default applied, used when no
// config file is given.
func DefaultConfig() *Config {
	config := &Config{}
	applyDefaults(config)
	return config
}

func applyDefaults(config *Config) {
	if config.MQTT.TopicPrefix == "" {
		config.MQTT.TopicPrefix = DefaultTopicPrefix
	}
	if config.Frame.Width == 0 {
		config.Frame.Width = DefaultFrameWidth
	}
	if config.Frame.Height == 0 {
		config.Frame.Height = DefaultFrameHeight
	}
	if config.Frame.Rate == 0 {
		config.Frame.Rate = DefaultFrameRate
	}
	if config.Frame.Scale == 0 {
		config.Frame.Scale = DefaultScale
	}
	if config.Drive.LinearGain == 0 {
		config.Drive.LinearGain = DefaultLinearGain
	}
	if config.Drive.AngularGain == 0 {
		config.Drive.AngularGain = DefaultAngularGain
	}
	if config.HTTPPort == 0 {
		config.HTTPPort = DefaultHTTPPort
	}
}

func validate(config *Config) error {
	if config.Frame.Width < 0 || config.Frame.Height < 0 {
		return fmt.Errorf("frame size must be positive, got %dx%d", config.Frame.Width, config.Frame.Height)
	}
	if config.Frame.Scale < 0 {
		return fmt.Errorf("frame.scale must be positive, got %g", config.Frame.Scale)
	}
	if config.Drive.LinearGain < 0 || config.Drive.AngularGain < 0 {
		return fmt.Errorf("drive gains must be positive, got linear=%g angular=%g",
			config.Drive.LinearGain, config.Drive.AngularGain)
	}
	return nil
}
