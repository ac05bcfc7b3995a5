package jobs

import "time"

// Config controls worker count and retry behaviour.
type Config struct {
	Workers     int
	MaxRetries  int
	BaseBackoff time.Duration
	QueueSize   int
}

func DefaultConfig() Config {
	return Config{
		Workers:     2,
		MaxRetries:  3,
		BaseBackoff: time.Second,
		QueueSize:   256,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.Workers <= 0 {
		c.Workers = defaults.Workers
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = defaults.MaxRetries
	}
	if c.BaseBackoff <= 0 {
		c.BaseBackoff = defaults.BaseBackoff
	}
	if c.QueueSize <= 0 {
		c.QueueSize = defaults.QueueSize
	}
	return c
}
