package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Defaults applied by Validate when fields are omitted.
const (
	DefaultSendTime      = "08:00"
	DefaultTimezone      = "UTC"
	DefaultQuestions     = 4
	DefaultTick          = time.Minute
	DefaultTolerance     = time.Minute
	DefaultRetentionDays = 90
)

// MaxQuestions is the size of the fixed question template set; a larger
// configured count could never produce a valid bundle.
const MaxQuestions = 4

// Validate checks cross-field constraints and fills defaults in place.
// It is called on initial load and again before every hot reload commit.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}

	if strings.TrimSpace(cfg.Telegram.Token) == "" {
		return errors.New("telegram.token is required")
	}
	if _, err := ParseDurationField("telegram.poll_timeout", cfg.Telegram.PollTimeout); err != nil {
		return err
	}

	if strings.TrimSpace(cfg.Storage.Driver) == "" {
		cfg.Storage.Driver = "sqlite"
	}
	if strings.TrimSpace(cfg.Storage.Path) == "" {
		return errors.New("storage.path is required")
	}
	if _, err := ParseDurationField("storage.busy_timeout", cfg.Storage.BusyTimeout); err != nil {
		return err
	}

	if strings.TrimSpace(cfg.Schedule.SendTime) == "" {
		cfg.Schedule.SendTime = DefaultSendTime
	}
	if _, _, err := ParseHHMM(cfg.Schedule.SendTime); err != nil {
		return fmt.Errorf("schedule.send_time: %w", err)
	}
	if strings.TrimSpace(cfg.Schedule.Timezone) == "" {
		cfg.Schedule.Timezone = DefaultTimezone
	}
	if _, err := time.LoadLocation(cfg.Schedule.Timezone); err != nil {
		return fmt.Errorf("schedule.timezone: %w", err)
	}
	if _, err := ParseDurationField("schedule.tick", cfg.Schedule.Tick); err != nil {
		return err
	}
	if _, err := ParseDurationField("schedule.tolerance", cfg.Schedule.Tolerance); err != nil {
		return err
	}
	if cfg.Schedule.RetentionDays < 0 {
		return errors.New("schedule.retention_days must be >= 0")
	}

	if cfg.Content.Questions == 0 {
		cfg.Content.Questions = DefaultQuestions
	}
	if cfg.Content.Questions < 1 || cfg.Content.Questions > MaxQuestions {
		return fmt.Errorf("content.questions must be between 1 and %d", MaxQuestions)
	}
	if len(cfg.Content.Tiers) == 0 {
		return errors.New("content.tiers must not be empty")
	}
	seen := map[string]bool{}
	for i, t := range cfg.Content.Tiers {
		name := strings.TrimSpace(t.Name)
		if name == "" {
			return fmt.Errorf("content.tiers[%d].name is required", i)
		}
		if seen[name] {
			return fmt.Errorf("content.tiers: duplicate tier %q", name)
		}
		seen[name] = true
		if t.MinWords <= 0 || t.MaxWords < t.MinWords {
			return fmt.Errorf("content.tiers[%d]: invalid word bounds [%d,%d]", i, t.MinWords, t.MaxWords)
		}
	}
	if strings.TrimSpace(cfg.Content.DefaultTier) == "" {
		cfg.Content.DefaultTier = cfg.Content.Tiers[0].Name
	}
	if !seen[cfg.Content.DefaultTier] {
		return fmt.Errorf("content.default_tier %q is not a configured tier", cfg.Content.DefaultTier)
	}
	if len(cfg.Content.Topics) == 0 {
		return errors.New("content.topics must not be empty")
	}
	if cfg.Content.LLM.Enabled {
		if strings.TrimSpace(cfg.Content.LLM.Model) == "" {
			return errors.New("content.llm.model is required when llm is enabled")
		}
		if strings.TrimSpace(cfg.Content.LLM.APIKey) == "" {
			return errors.New("content.llm.api_key is required when llm is enabled")
		}
	}

	return nil
}

// Tier returns the tier definition by name.
func (c ContentConfig) Tier(name string) (TierConfig, bool) {
	for _, t := range c.Tiers {
		if t.Name == name {
			return t, true
		}
	}
	return TierConfig{}, false
}

// ParseHHMM parses a "HH:MM" time-of-day.
func ParseHHMM(s string) (hour, minute int, err error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid time-of-day %q (want HH:MM)", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", s)
	}
	return h, m, nil
}
