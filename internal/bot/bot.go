// Package bot routes incoming chat commands to handlers.
package bot

import (
	"context"
	"strings"
	"sync"
	"time"

	"rcbot/internal/content"
	"rcbot/internal/storage"
	kit "rcbot/internal/transport"
	logx "rcbot/pkg/logx"
)

// ContentAPI yields the bundle for a (scope, date) pair, generating it
// on demand when absent.
type ContentAPI interface {
	Today(ctx context.Context, scope, date string) (*content.Bundle, error)
}

// ProfileStore is the slice of the store the router needs.
type ProfileStore interface {
	GetProfile(ctx context.Context, userID int64) (storage.Profile, error)
	PutProfile(ctx context.Context, p storage.Profile) error
	AppendFeedback(ctx context.Context, e storage.FeedbackEntry) error
}

type Config struct {
	// Scope selects the difficulty tier served to chat commands.
	Scope string
	// TierLabel is the human-readable name of that tier.
	TierLabel string
	Location  *time.Location
}

type Router struct {
	cfg     Config
	adapter kit.Adapter
	source  ContentAPI
	store   ProfileStore
	log     logx.Logger
	now     func() time.Time

	mu      sync.Mutex
	pending map[int64]struct{} // users whose next message is feedback
}

func NewRouter(cfg Config, adapter kit.Adapter, source ContentAPI, store ProfileStore, log logx.Logger) *Router {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Router{
		cfg:     cfg,
		adapter: adapter,
		source:  source,
		store:   store,
		log:     log,
		now:     time.Now,
		pending: make(map[int64]struct{}),
	}
}

// Commands is the menu published to the chat platform.
func Commands() []kit.BotCommand {
	return []kit.BotCommand{
		{Command: "today", Description: "Get today's reading challenge"},
		{Command: "answer", Description: "Show answers and explanations"},
		{Command: "stats", Description: "Your reading stats"},
		{Command: "feedback", Description: "Send feedback"},
		{Command: "help", Description: "How this bot works"},
	}
}

// Run starts the adapter and processes updates until ctx is cancelled.
func (r *Router) Run(ctx context.Context) error {
	updates := make(chan kit.Update, 64)
	if err := r.adapter.Start(ctx, updates); err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = r.adapter.Stop(stopCtx)
	}()

	if menu, ok := r.adapter.(kit.CommandMenuUpdater); ok {
		if err := menu.UpdateMenuCommands(ctx, Commands()); err != nil {
			r.log.Warn("command menu update failed", logx.Err(err))
		}
	}

	r.log.Info("bot router started", logx.String("scope", r.cfg.Scope))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case up := <-updates:
			r.handle(ctx, up)
		}
	}
}

func (r *Router) handle(ctx context.Context, up kit.Update) {
	cmd, args := parseCommand(up.Text)
	if cmd == "" {
		r.handlePlainText(ctx, up)
		return
	}

	log := r.log.With(logx.String("cmd", cmd), logx.Int64("from", up.FromID))
	var err error
	switch cmd {
	case "start":
		err = r.handleStart(ctx, up)
	case "help":
		err = r.reply(ctx, up, helpText)
	case "today":
		err = r.handleToday(ctx, up)
	case "answer":
		err = r.handleAnswer(ctx, up)
	case "stats":
		err = r.handleStats(ctx, up)
	case "feedback":
		err = r.handleFeedback(ctx, up, args)
	default:
		if !up.IsGroup {
			err = r.reply(ctx, up, "Unknown command. Try /help.")
		}
	}
	if err != nil {
		log.Warn("command failed", logx.Err(err))
	}
}

// parseCommand extracts ("today", rest) from "/today@somebot rest".
// Returns an empty command for plain text.
func parseCommand(text string) (string, string) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", ""
	}
	cmd := text[1:]
	args := ""
	if i := strings.IndexAny(cmd, " \t\n"); i != -1 {
		cmd, args = cmd[:i], strings.TrimSpace(cmd[i+1:])
	}
	if i := strings.IndexByte(cmd, '@'); i != -1 {
		cmd = cmd[:i]
	}
	return strings.ToLower(cmd), args
}

func (r *Router) reply(ctx context.Context, up kit.Update, text string) error {
	_, err := r.adapter.SendText(ctx, kit.ChatTarget{ChatID: up.ChatID}, text,
		&kit.SendOptions{ParseMode: "HTML", DisablePreview: true})
	return err
}

func (r *Router) today() string {
	return content.DateKey(r.now().In(r.cfg.Location))
}
