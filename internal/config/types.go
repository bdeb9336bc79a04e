package config

type Config struct {
	Telegram TelegramConfig `json:"telegram"`
	Logging  LoggingConfig  `json:"logging"`
	Storage  StorageConfig  `json:"storage"`
	Schedule ScheduleConfig `json:"schedule"`
	Content  ContentConfig  `json:"content"`
}

type TelegramConfig struct {
	Token string `json:"token"`
	// ChatID is the broadcast target for the daily send and the operator
	// log sink. Interactive commands reply to whatever chat they came from.
	ChatID int64 `json:"chat_id"`
	// PollTimeout is a Go duration string (e.g. "10s").
	PollTimeout string `json:"poll_timeout,omitempty"`
}

type LoggingConfig struct {
	Level    string          `json:"level"`
	Console  bool            `json:"console"`
	File     LoggingFile     `json:"file"`
	Telegram LoggingTelegram `json:"telegram"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path,omitempty"`
}

type LoggingTelegram struct {
	Enabled    bool   `json:"enabled"`
	MinLevel   string `json:"min_level,omitempty"`
	RatePerSec int    `json:"rate_per_sec,omitempty"`
}

// StorageConfig controls the persistence layer.
//
// Driver values:
//   - "sqlite": SQLite database file (default)
//   - "file":   dependency-free per-record JSON backend
type StorageConfig struct {
	Driver      string `json:"driver"`
	Path        string `json:"path"`
	BusyTimeout string `json:"busy_timeout,omitempty"` // Go duration string (sqlite)
}

// ScheduleConfig controls the daily dispatch loop. Whether the loop
// runs at all is decided by the process run mode, not by config.
type ScheduleConfig struct {
	// SendTime is the local time-of-day of the daily broadcast, "HH:MM".
	SendTime string `json:"send_time"`
	Timezone string `json:"timezone,omitempty"`
	// Tick and Tolerance are Go duration strings. The loop re-evaluates
	// the clock every Tick and dispatches when now is within Tolerance of
	// SendTime and nothing was sent yet for the current date.
	Tick      string `json:"tick,omitempty"`
	Tolerance string `json:"tolerance,omitempty"`
	// RetentionDays bounds how long stored bundles and delivery records
	// are kept. 0 disables pruning.
	RetentionDays int `json:"retention_days,omitempty"`
}

// ContentConfig controls generation: tiers, topic rotation and the
// optional LLM backend. Question count is fixed per deployment.
type ContentConfig struct {
	DefaultTier string       `json:"default_tier"`
	Tiers       []TierConfig `json:"tiers"`
	Topics      []string     `json:"topics"`
	Questions   int          `json:"questions,omitempty"`
	LLM         LLMConfig    `json:"llm"`
}

// TierConfig is a named difficulty: passage word-count bounds, inclusive.
type TierConfig struct {
	Name     string `json:"name"`
	Label    string `json:"label,omitempty"`
	MinWords int    `json:"min_words"`
	MaxWords int    `json:"max_words"`
}

// LLMConfig configures the OpenAI-compatible passage generator.
// When disabled (or on failure) the static fallback passages are used.
type LLMConfig struct {
	Enabled     bool    `json:"enabled"`
	BaseURL     string  `json:"base_url,omitempty"`
	APIKey      string  `json:"api_key,omitempty"`
	Model       string  `json:"model,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
	// MinWords is the minimum acceptable raw output size; anything
	// shorter is discarded and the fallback is used instead.
	MinWords int `json:"min_words,omitempty"`
}
