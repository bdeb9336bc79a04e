package content

import (
	"strings"
	"time"
)

// QuestionKind is the fixed taxonomy of question types. Every bundle
// carries one question of each kind, in this order.
type QuestionKind string

const (
	KindMainIdea    QuestionKind = "main-idea"
	KindInference   QuestionKind = "inference"
	KindTone        QuestionKind = "tone"
	KindImplication QuestionKind = "implication"
)

// OptionCount is fixed: labels are always exactly A-D.
const OptionCount = 4

// DefaultQuestions is the question count used when none is configured.
const DefaultQuestions = 4

// Labels are the option labels in order.
var Labels = [OptionCount]string{"A", "B", "C", "D"}

// CorrectRationaleKey is the distinguished rationale key explaining why
// the correct option is correct (option labels explain why they fail).
const CorrectRationaleKey = "correct"

type Option struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

type Question struct {
	Number    int               `json:"number"`
	Kind      QuestionKind      `json:"kind"`
	Prompt    string            `json:"prompt"`
	Options   []Option          `json:"options"`
	Correct   string            `json:"correct"`
	Rationale map[string]string `json:"rationale"`
}

// Bundle is one day's content for a scope: a passage plus its question
// set. Immutable once validated and stored; regeneration for a stored
// (date, scope) happens only through the explicit override path.
type Bundle struct {
	Scope       string     `json:"scope"`
	Date        string     `json:"date"` // "2006-01-02" in the reference timezone
	Topic       string     `json:"topic"`
	Passage     string     `json:"passage"`
	Questions   []Question `json:"questions"`
	Source      string     `json:"source"` // "llm" or "fallback"
	GeneratedAt time.Time  `json:"generated_at"`
}

// Tier is a named difficulty: inclusive passage word-count bounds.
type Tier struct {
	Name     string
	Label    string
	MinWords int
	MaxWords int
}

// Limits are the structural constraints a bundle is validated against.
type Limits struct {
	MinWords  int
	MaxWords  int
	Questions int
}

const dateLayout = "2006-01-02"

// DateKey formats t as the period key.
func DateKey(t time.Time) string { return t.Format(dateLayout) }

// WordCount counts whitespace-separated words.
func WordCount(s string) int { return len(strings.Fields(s)) }
