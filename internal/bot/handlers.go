package bot

import (
	"context"
	"errors"
	"fmt"
	"html"

	"rcbot/internal/broadcast"
	"rcbot/internal/content"
	"rcbot/internal/storage"
	kit "rcbot/internal/transport"
	logx "rcbot/pkg/logx"
)

const helpText = `📚 <b>Reading Challenge Bot</b>

Every day you get one passage and four questions testing main idea, inference, tone and implication.

/today shows the current challenge.
/answer shows the answer key with explanations.
/stats shows your activity and streak.
/feedback &lt;text&gt; sends a note to the maintainers.`

const contentUnavailableText = "😔 Today's challenge is not available right now. Please try again in a few minutes."

func (r *Router) handleStart(ctx context.Context, up kit.Update) error {
	r.touchProfile(ctx, up, nil)
	text := "👋 Welcome! One reading passage and four questions, every day.\n\nStart with /today."
	return r.reply(ctx, up, text)
}

func (r *Router) handleToday(ctx context.Context, up kit.Update) error {
	bundle, err := r.source.Today(ctx, r.cfg.Scope, r.today())
	if err != nil {
		// Never serve a stale or partial challenge. Apologize instead.
		r.log.Warn("today unavailable", logx.Int64("chat_id", up.ChatID), logx.Err(err))
		return r.reply(ctx, up, contentUnavailableText)
	}

	r.touchProfile(ctx, up, func(p *storage.Profile) { p.SeenCount++ })

	for _, msg := range broadcast.Messages(bundle, r.cfg.TierLabel) {
		if err := r.reply(ctx, up, msg); err != nil {
			return err
		}
	}
	return nil
}

func (r *Router) handleAnswer(ctx context.Context, up kit.Update) error {
	bundle, err := r.source.Today(ctx, r.cfg.Scope, r.today())
	if err != nil {
		r.log.Warn("answers unavailable", logx.Int64("chat_id", up.ChatID), logx.Err(err))
		return r.reply(ctx, up, contentUnavailableText)
	}

	r.touchProfile(ctx, up, func(p *storage.Profile) { p.AnswerViews++ })

	for _, msg := range broadcast.AnswerMessages(bundle) {
		if err := r.reply(ctx, up, msg); err != nil {
			return err
		}
	}
	return nil
}

func (r *Router) handleStats(ctx context.Context, up kit.Update) error {
	p, err := r.store.GetProfile(ctx, up.FromID)
	if err != nil {
		r.log.Warn("profile load failed", logx.Int64("user_id", up.FromID), logx.Err(err))
		return r.reply(ctx, up, "Stats are unavailable right now, sorry.")
	}

	name := p.Username
	if name == "" {
		name = fmt.Sprintf("user %d", p.UserID)
	}
	text := fmt.Sprintf(`📊 <b>Your stats</b>

👤 %s
📖 Challenges viewed: %d
✅ Answer keys viewed: %d
🔥 Current streak: %d day(s)`,
		html.EscapeString(name), p.SeenCount, p.AnswerViews, p.StreakDays)
	return r.reply(ctx, up, text)
}

func (r *Router) handleFeedback(ctx context.Context, up kit.Update, args string) error {
	if args != "" {
		return r.recordFeedback(ctx, up, args)
	}
	r.mu.Lock()
	r.pending[up.FromID] = struct{}{}
	r.mu.Unlock()
	return r.reply(ctx, up, "📝 Send your feedback as the next message.")
}

// handlePlainText consumes a pending feedback prompt; anything else is
// ignored so the bot stays quiet in group chats.
func (r *Router) handlePlainText(ctx context.Context, up kit.Update) {
	r.mu.Lock()
	_, waiting := r.pending[up.FromID]
	if waiting {
		delete(r.pending, up.FromID)
	}
	r.mu.Unlock()
	if !waiting || up.Text == "" {
		return
	}
	if err := r.recordFeedback(ctx, up, up.Text); err != nil {
		r.log.Warn("feedback failed", logx.Int64("user_id", up.FromID), logx.Err(err))
	}
}

func (r *Router) recordFeedback(ctx context.Context, up kit.Update, text string) error {
	entry := storage.FeedbackEntry{
		At:       r.now(),
		UserID:   up.FromID,
		Username: up.FromUsername,
		Text:     text,
	}
	if err := r.store.AppendFeedback(ctx, entry); err != nil {
		if errors.Is(err, storage.ErrUnavailable) {
			_ = r.reply(ctx, up, "Could not save your feedback, please try again later.")
		}
		return err
	}
	return r.reply(ctx, up, "🙏 Thanks, feedback recorded.")
}

// touchProfile loads the caller's profile, applies the daily streak
// rules and the optional bump, and writes it back. Failures are logged
// and never block the reply.
func (r *Router) touchProfile(ctx context.Context, up kit.Update, bump func(*storage.Profile)) {
	p, err := r.store.GetProfile(ctx, up.FromID)
	if err != nil {
		r.log.Warn("profile load failed", logx.Int64("user_id", up.FromID), logx.Err(err))
		return
	}
	if up.FromUsername != "" {
		p.Username = up.FromUsername
	}

	now := r.now().In(r.cfg.Location)
	today := content.DateKey(now)
	if p.LastActiveDate != today {
		yesterday := content.DateKey(now.AddDate(0, 0, -1))
		if p.LastActiveDate == yesterday {
			p.StreakDays++
		} else {
			p.StreakDays = 1
		}
		p.LastActiveDate = today
	}
	if p.FirstSeen.IsZero() {
		p.FirstSeen = r.now()
	}
	if bump != nil {
		bump(&p)
	}

	if err := r.store.PutProfile(ctx, p); err != nil {
		r.log.Warn("profile save failed", logx.Int64("user_id", up.FromID), logx.Err(err))
	}
}
