package orchestrator

import (
	"time"

	"github.com/jwywoo26-LR/cut-generation-client-sub000/internal/infra"
)

// Config holds the run tunables.
type Config struct {
	// Concurrency caps the in-flight set.
	Concurrency int
	// PollInterval is the wait between polling rounds.
	PollInterval time.Duration
	// PollDelay is the wait between two status queries in the same round.
	PollDelay time.Duration
	// MaxPolls is the number of status queries after which a job times out.
	MaxPolls int
	// SubmitDelay is the wait between two submissions in the same fill cycle.
	SubmitDelay time.Duration
	// Variations is the default number of variations per record.
	Variations int
	// MaxStatusErrors is the number of consecutive failed status queries
	// tolerated per job.
	MaxStatusErrors int
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		Concurrency:     5,
		PollInterval:    3000 * time.Millisecond,
		PollDelay:       500 * time.Millisecond,
		MaxPolls:        60,
		SubmitDelay:     500 * time.Millisecond,
		Variations:      1,
		MaxStatusErrors: 3,
	}
}

// ConfigFromSettings maps environment settings onto a Config.
func ConfigFromSettings(s infra.RunSettings) Config {
	cfg := DefaultConfig()
	cfg.Concurrency = s.Concurrency
	cfg.PollInterval = s.PollInterval
	cfg.PollDelay = s.PollDelay
	cfg.MaxPolls = s.MaxPolls
	cfg.SubmitDelay = s.SubmitDelay
	cfg.Variations = s.Variations
	return cfg.normalize()
}

// normalize replaces counts that would stall a run. Zero delays are kept.
func (c Config) normalize() Config {
	def := DefaultConfig()
	if c.Concurrency < 1 {
		c.Concurrency = def.Concurrency
	}
	if c.MaxPolls < 1 {
		c.MaxPolls = def.MaxPolls
	}
	if c.Variations < 1 {
		c.Variations = def.Variations
	}
	if c.MaxStatusErrors < 1 {
		c.MaxStatusErrors = def.MaxStatusErrors
	}
	if c.PollInterval < 0 {
		c.PollInterval = 0
	}
	if c.PollDelay < 0 {
		c.PollDelay = 0
	}
	if c.SubmitDelay < 0 {
		c.SubmitDelay = 0
	}
	return c
}
