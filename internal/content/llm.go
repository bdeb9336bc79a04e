package content

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	logx "rcbot/pkg/logx"
)

// LLMOptions configures the OpenAI-compatible passage generator.
type LLMOptions struct {
	BaseURL     string
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
	// MinWords rejects undersized model output so the fallback can take
	// over instead of storing a stub passage.
	MinWords int
}

type llmClient struct {
	client *openai.Client
	opts   LLMOptions
	log    logx.Logger
}

func newLLMClient(opts LLMOptions, log logx.Logger) *llmClient {
	cc := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cc.BaseURL = opts.BaseURL
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 800
	}
	if opts.Temperature == 0 {
		opts.Temperature = 0.8
	}
	if opts.MinWords <= 0 {
		opts.MinWords = 200
	}
	return &llmClient{client: openai.NewClientWithConfig(cc), opts: opts, log: log}
}

// Passage asks the model for a single passage. Undersized or empty
// output is an error so callers fall through to the static passages.
func (c *llmClient) Passage(ctx context.Context, topic string, tier Tier) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       c.opts.Model,
		MaxTokens:   c.opts.MaxTokens,
		Temperature: c.opts.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: passagePrompt(topic, tier)},
		},
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response from model")
	}

	passage := strings.TrimSpace(resp.Choices[0].Message.Content)
	if wc := WordCount(passage); wc < c.opts.MinWords {
		return "", fmt.Errorf("model output too short: %d words, want >= %d", wc, c.opts.MinWords)
	}
	return passage, nil
}

func passagePrompt(topic string, tier Tier) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are an expert reading-comprehension item writer. Generate a challenging passage.\n\n")
	fmt.Fprintf(&b, "TOPIC: %s\n\n", topic)
	fmt.Fprintf(&b, "STRICT REQUIREMENTS:\n")
	fmt.Fprintf(&b, "1. EXACTLY %d-%d words. Count every word.\n", tier.MinWords, tier.MaxWords)
	b.WriteString(`2. STYLE:
   - Dense abstract prose with complex nested sentences
   - Formal academic tone, no narratives or examples
   - Author's position implicit and subtle only
3. CONTENT:
   - Theoretical arguments, paradoxes and logical tensions
   - Room for inference-based questions
4. STRUCTURE:
   - Central problem, competing perspectives, logical tension, implicit position

FORBIDDEN: examples, case studies, explicit author opinion, simple facts, narrative elements.

`)
	fmt.Fprintf(&b, "GENERATE PASSAGE (exactly %d-%d words):\n", tier.MinWords, tier.MaxWords)
	return b.String()
}
