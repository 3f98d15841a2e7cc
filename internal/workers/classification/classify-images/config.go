// internal/workers/classification/classify-images/config.go
package classifyimages

import "time"

type Config struct {
	MaxLabels int
	Timeout   time.Duration
}

func LoadConfig() *Config {
	return &Config{
		MaxLabels: 20,
		Timeout:   120 * time.Second,
	}
}
