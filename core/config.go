package core

import "fmt"

// Config controls detection and validation behavior.
type Config struct {
	// DepthThreshold is the nesting depth at which a conditional chain
	// becomes a region. Minimum 2.
	DepthThreshold int `json:"depth_threshold"`

	// MaxRepairAttempts bounds the validator's repair loop.
	MaxRepairAttempts int `json:"max_repair_attempts"`

	// AcceptanceConfidence flags candidates below it as low-confidence.
	AcceptanceConfidence float64 `json:"acceptance_confidence"`

	// Workers limits parallel unit processing in ProcessAll. Zero means
	// one worker per CPU.
	Workers int `json:"workers,omitempty"`
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		DepthThreshold:       3,
		MaxRepairAttempts:    3,
		AcceptanceConfidence: 0.5,
	}
}

// Validate checks field ranges.
func (c Config) Validate() error {
	if c.DepthThreshold < 2 {
		return fmt.Errorf("depth_threshold must be >= 2, got %d", c.DepthThreshold)
	}
	if c.MaxRepairAttempts < 0 {
		return fmt.Errorf("max_repair_attempts must be >= 0, got %d", c.MaxRepairAttempts)
	}
	if c.AcceptanceConfidence < 0 || c.AcceptanceConfidence > 1 {
		return fmt.Errorf("acceptance_confidence must be in [0,1], got %g", c.AcceptanceConfidence)
	}
	return nil
}
