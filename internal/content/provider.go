package content

import (
	"context"
	"strings"
	"time"

	logx "rcbot/pkg/logx"
)

// Provider produces a candidate bundle for a topic and tier. The result
// still has to pass validation before it may be stored; Scope and Date
// are filled in by the caller.
type Provider interface {
	Generate(ctx context.Context, topic string, tier Tier) (*Bundle, error)
}

// Generator is the default Provider: an optional LLM backend with the
// static passages as fallback. Both sources are equally valid to
// callers; Source records which one produced the passage.
type Generator struct {
	llm       *llmClient // nil when the remote backend is disabled
	questions int
	log       logx.Logger
	now       func() time.Time
}

type GeneratorOptions struct {
	Questions int
	// LLM enables the remote backend when non-nil.
	LLM *LLMOptions
}

func NewGenerator(opts GeneratorOptions, log logx.Logger) *Generator {
	if log.IsZero() {
		log = logx.Nop()
	}
	if opts.Questions <= 0 {
		opts.Questions = DefaultQuestions
	}
	g := &Generator{questions: opts.Questions, log: log, now: time.Now}
	if opts.LLM != nil {
		g.llm = newLLMClient(*opts.LLM, log)
	}
	return g
}

func (g *Generator) Generate(ctx context.Context, topic string, tier Tier) (*Bundle, error) {
	passage, source := "", "fallback"

	if g.llm != nil {
		p, err := g.llm.Passage(ctx, topic, tier)
		if err != nil {
			g.log.Warn("llm passage failed, using fallback", logx.String("topic", topic), logx.Err(err))
		} else {
			passage, source = p, "llm"
		}
	}
	if passage == "" {
		passage = FallbackPassage(topic)
	}
	if passage == "" {
		return nil, ErrGenerationUnavailable
	}

	// Oversized model output is cut at a sentence boundary; if it ends up
	// under the tier minimum anyway, the static passage wins.
	if WordCount(passage) > tier.MaxWords {
		passage = truncateAtSentence(passage, tier.MaxWords)
	}
	if source == "llm" && WordCount(passage) < tier.MinWords {
		g.log.Warn("llm passage below tier minimum, using fallback",
			logx.String("topic", topic), logx.Int("words", WordCount(passage)))
		passage, source = FallbackPassage(topic), "fallback"
	}

	return &Bundle{
		Topic:       topic,
		Passage:     strings.TrimSpace(passage),
		Questions:   QuestionSet(g.questions),
		Source:      source,
		GeneratedAt: g.now().UTC(),
	}, nil
}
