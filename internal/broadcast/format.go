package broadcast

import (
	"fmt"
	"html"
	"strings"

	"rcbot/internal/content"
)

const divider = "━━━━━━━━━━━━━━━━━━━━━"

// Messages renders a bundle as the ordered message sequence consumers
// rely on: the passage message first, then one message per question in
// ascending number. All output is Telegram HTML.
func Messages(b *content.Bundle, tierLabel string) []string {
	out := make([]string, 0, 1+len(b.Questions))
	out = append(out, PassageMessage(b, tierLabel))
	for _, q := range b.Questions {
		out = append(out, QuestionMessage(q))
	}
	return out
}

// PassageMessage renders the header and passage.
func PassageMessage(b *content.Bundle, tierLabel string) string {
	var sb strings.Builder
	sb.WriteString("🎯 <b>Today's Reading Challenge</b>\n\n")
	fmt.Fprintf(&sb, "📌 <b>Topic:</b> %s\n", html.EscapeString(b.Topic))
	if tierLabel != "" {
		fmt.Fprintf(&sb, "🔥 <b>Level:</b> %s\n", html.EscapeString(tierLabel))
	}
	sb.WriteString("\n" + divider + "\n")
	fmt.Fprintf(&sb, "<b>PASSAGE</b> (%d words)\n", content.WordCount(b.Passage))
	sb.WriteString(divider + "\n\n")
	sb.WriteString(html.EscapeString(b.Passage))
	sb.WriteString("\n\n" + divider + "\n<b>QUESTIONS</b>\n" + divider)
	return sb.String()
}

// QuestionMessage renders one question with its options.
func QuestionMessage(q content.Question) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "<b>Q%d. %s</b>\n\n", q.Number, html.EscapeString(kindTitle(q.Kind)))
	sb.WriteString(html.EscapeString(q.Prompt))
	sb.WriteString("\n\n")
	for _, opt := range q.Options {
		fmt.Fprintf(&sb, "%s) %s\n", opt.Label, html.EscapeString(opt.Text))
	}
	sb.WriteString("\n💭 <i>Take your time. Use /answer to see the solution.</i>")
	return sb.String()
}

// AnswerMessages renders the answer key: a header, then one message per
// question with the correct label, why it is correct and why the other
// labels fail.
func AnswerMessages(b *content.Bundle) []string {
	out := make([]string, 0, 1+len(b.Questions))
	out = append(out, fmt.Sprintf("✅ <b>ANSWERS &amp; EXPLANATIONS</b>\n\n📌 <b>Topic:</b> %s", html.EscapeString(b.Topic)))

	for _, q := range b.Questions {
		var sb strings.Builder
		fmt.Fprintf(&sb, "<b>Q%d. %s</b>\n\n", q.Number, html.EscapeString(kindTitle(q.Kind)))
		sb.WriteString(html.EscapeString(q.Prompt))
		fmt.Fprintf(&sb, "\n\n<b>Correct answer:</b> %s\n\n", q.Correct)
		if why, ok := q.Rationale[content.CorrectRationaleKey]; ok {
			sb.WriteString("<b>Why this is correct:</b>\n")
			sb.WriteString(html.EscapeString(why))
			sb.WriteString("\n")
		}
		wrote := false
		for _, opt := range q.Options {
			if opt.Label == q.Correct {
				continue
			}
			why, ok := q.Rationale[opt.Label]
			if !ok {
				continue
			}
			if !wrote {
				sb.WriteString("\n<b>Why the others fail:</b>\n")
				wrote = true
			}
			fmt.Fprintf(&sb, "%s: %s\n", opt.Label, html.EscapeString(why))
		}
		out = append(out, strings.TrimRight(sb.String(), "\n"))
	}
	return out
}

func kindTitle(k content.QuestionKind) string {
	switch k {
	case content.KindMainIdea:
		return "Primary Purpose"
	case content.KindInference:
		return "Inference"
	case content.KindTone:
		return "Tone & Attitude"
	case content.KindImplication:
		return "Logical Implication"
	default:
		return strings.ToUpper(string(k))
	}
}
