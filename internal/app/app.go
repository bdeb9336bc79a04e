// Package app assembles the process: config, logging, storage, content
// generation, the chat router and the daily dispatch loop.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rcbot/internal/bot"
	"rcbot/internal/broadcast"
	"rcbot/internal/config"
	"rcbot/internal/content"
	"rcbot/internal/scheduler"
	"rcbot/internal/storage"
	kit "rcbot/internal/transport"
	"rcbot/internal/transport/telegram"
	logx "rcbot/pkg/logx"
)

// Run modes.
const (
	ModeBot       = "bot"       // interactive commands only
	ModeScheduler = "scheduler" // timed broadcast only
	ModeBoth      = "both"
	ModeSendNow   = "send-now" // one immediate dispatch attempt, then exit
	ModeResend    = "resend"   // regenerate today's content and send it again
)

type Options struct {
	ConfigPath string
	Mode       string
}

type App struct {
	opts    Options
	manager *config.Manager
	cfg     *config.Config

	logSvc  *logx.Service
	log     logx.Logger
	store   storage.Store
	adapter *telegram.Adapter
	content *content.Service
	sender  *broadcast.Sender
	router  *bot.Router
	loop    *scheduler.Loop
	keeper  *scheduler.Housekeeper
	loc     *time.Location
}

// New loads the config and builds every component. Nothing is running
// yet; Run starts the selected mode.
func New(opts Options) (*App, error) {
	switch opts.Mode {
	case ModeBot, ModeScheduler, ModeBoth, ModeSendNow, ModeResend:
	case "":
		opts.Mode = ModeBoth
	default:
		return nil, fmt.Errorf("unknown mode %q", opts.Mode)
	}

	mgr := config.NewManager(opts.ConfigPath)
	cfg, err := mgr.Load()
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", opts.ConfigPath, err)
	}

	pollTimeout, _ := config.ParseDurationField("telegram.poll_timeout", cfg.Telegram.PollTimeout)
	adapter, err := telegram.New(telegram.Config{Token: cfg.Telegram.Token, PollTimeout: pollTimeout}, logx.Nop())
	if err != nil {
		return nil, fmt.Errorf("telegram adapter: %w", err)
	}

	logSvc, log := logx.New(logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File:    logx.FileConfig{Enabled: cfg.Logging.File.Enabled, Path: cfg.Logging.File.Path},
		Telegram: logx.TelegramConfig{
			Enabled:    cfg.Logging.Telegram.Enabled,
			MinLevel:   cfg.Logging.Telegram.MinLevel,
			RatePerSec: cfg.Logging.Telegram.RatePerSec,
		},
	}, adapter)
	logSvc.SetTelegramTarget(cfg.Telegram.ChatID)
	mgr.SetLogger(log.With(logx.String("comp", "config")))

	busyTimeout, _ := config.ParseDurationField("storage.busy_timeout", cfg.Storage.BusyTimeout)
	store, err := storage.Open(storage.Config{
		Driver:      cfg.Storage.Driver,
		Path:        cfg.Storage.Path,
		BusyTimeout: busyTimeout,
	}, log.With(logx.String("comp", "storage")))
	if err != nil {
		logSvc.Close()
		return nil, fmt.Errorf("open storage: %w", err)
	}

	a := &App{
		opts:    opts,
		manager: mgr,
		cfg:     cfg,
		logSvc:  logSvc,
		log:     log,
		store:   store,
		adapter: adapter,
	}
	if err := a.buildDomain(); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) buildDomain() error {
	cfg := a.cfg

	tiers := make([]content.Tier, 0, len(cfg.Content.Tiers))
	labels := make(map[string]string, len(cfg.Content.Tiers))
	for _, t := range cfg.Content.Tiers {
		tiers = append(tiers, content.Tier{Name: t.Name, Label: t.Label, MinWords: t.MinWords, MaxWords: t.MaxWords})
		label := t.Label
		if label == "" {
			label = t.Name
		}
		labels[t.Name] = label
	}

	genOpts := content.GeneratorOptions{Questions: cfg.Content.Questions}
	if cfg.Content.LLM.Enabled {
		genOpts.LLM = &content.LLMOptions{
			BaseURL:     cfg.Content.LLM.BaseURL,
			APIKey:      cfg.Content.LLM.APIKey,
			Model:       cfg.Content.LLM.Model,
			MaxTokens:   cfg.Content.LLM.MaxTokens,
			Temperature: float32(cfg.Content.LLM.Temperature),
			MinWords:    cfg.Content.LLM.MinWords,
		}
	}
	gen := content.NewGenerator(genOpts, a.log.With(logx.String("comp", "generator")))
	svc := content.NewService(a.store, gen, content.ServiceOptions{
		Tiers:     tiers,
		Topics:    cfg.Content.Topics,
		Questions: cfg.Content.Questions,
	}, a.log.With(logx.String("comp", "content")))

	loc, err := time.LoadLocation(cfg.Schedule.Timezone)
	if err != nil {
		return fmt.Errorf("schedule.timezone: %w", err)
	}
	hour, minute, err := config.ParseHHMM(cfg.Schedule.SendTime)
	if err != nil {
		return fmt.Errorf("schedule.send_time: %w", err)
	}
	tick, _ := config.ParseDurationOrDefault("schedule.tick", cfg.Schedule.Tick, config.DefaultTick)
	tolerance, _ := config.ParseDurationOrDefault("schedule.tolerance", cfg.Schedule.Tolerance, config.DefaultTolerance)

	sender := broadcast.NewSender(a.adapter, broadcast.Config{
		RatePerSec: 1,
		RetryMax:   3,
		TierLabels: labels,
	}, a.log.With(logx.String("comp", "broadcast")))
	a.content = svc
	a.sender = sender
	a.loc = loc

	a.loop = scheduler.NewLoop(scheduler.Config{
		SendHour:   hour,
		SendMinute: minute,
		Location:   loc,
		Tick:       tick,
		Tolerance:  tolerance,
		Scope:      cfg.Content.DefaultTier,
		Target:     kit.ChatTarget{ChatID: cfg.Telegram.ChatID},
	}, a.store, svc, sender, a.log.With(logx.String("comp", "scheduler")))

	if cfg.Schedule.RetentionDays > 0 {
		a.keeper = scheduler.NewHousekeeper(a.store, cfg.Schedule.RetentionDays, loc,
			a.log.With(logx.String("comp", "housekeeping")))
	}

	a.router = bot.NewRouter(bot.Config{
		Scope:     cfg.Content.DefaultTier,
		TierLabel: labels[cfg.Content.DefaultTier],
		Location:  loc,
	}, a.adapter, svc, a.store, a.log.With(logx.String("comp", "bot")))

	return nil
}

// Run executes the selected mode until ctx is cancelled or a component
// fails fatally.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.log.Info("starting",
		logx.String("mode", a.opts.Mode),
		logx.String("config", a.opts.ConfigPath),
		logx.String("storage", a.cfg.Storage.Driver))

	switch a.opts.Mode {
	case ModeSendNow:
		return a.loop.Dispatch(ctx, time.Now())
	case ModeResend:
		return a.resend(ctx)
	}

	go func() {
		if err := a.manager.Watch(ctx); err != nil {
			a.log.Warn("config watch stopped", logx.Err(err))
		}
	}()
	reloads := a.manager.Subscribe(1)
	defer a.manager.Unsubscribe(reloads)
	go a.consumeReloads(ctx, reloads)

	errs := make(chan error, 2)
	running := 0

	if a.opts.Mode == ModeBot || a.opts.Mode == ModeBoth {
		running++
		go func() { errs <- a.router.Run(ctx) }()
	}
	if a.opts.Mode == ModeScheduler || a.opts.Mode == ModeBoth {
		running++
		go func() { errs <- a.loop.Run(ctx) }()
		if a.keeper != nil {
			if err := a.keeper.Start(ctx); err != nil {
				a.log.Warn("housekeeping not started", logx.Err(err))
				a.keeper = nil
			}
		}
	}

	var first error
	for i := 0; i < running; i++ {
		err := <-errs
		if err != nil && !errors.Is(err, context.Canceled) && first == nil {
			first = err
		}
		cancel()
	}
	if a.keeper != nil {
		a.keeper.Stop()
	}
	return first
}

// resend is the explicit override path: fresh content for today,
// overwriting the stored bundle, delivered regardless of the delivery
// log. Recipients see a duplicate; that is the point of the command.
func (a *App) resend(ctx context.Context) error {
	date := content.DateKey(time.Now().In(a.loc))
	scope := a.cfg.Content.DefaultTier

	bundle, err := a.content.Regenerate(ctx, scope, date)
	if err != nil {
		return fmt.Errorf("regenerate %s: %w", date, err)
	}

	target := kit.ChatTarget{ChatID: a.cfg.Telegram.ChatID}
	if err := a.sender.Send(ctx, bundle, target); err != nil {
		return err
	}
	rec := storage.DeliveryRecord{Date: date, Target: target.ChatID, Topic: bundle.Topic, SentAt: time.Now()}
	if err := a.store.RecordSent(ctx, rec); err != nil {
		return fmt.Errorf("record delivery: %w", err)
	}
	a.log.Info("manual resend complete", logx.String("date", date), logx.String("topic", bundle.Topic))
	return nil
}

// consumeReloads applies hot-reloadable settings from validated config
// snapshots. Only logging changes take effect without a restart.
func (a *App) consumeReloads(ctx context.Context, ch chan *config.Config) {
	for {
		select {
		case <-ctx.Done():
			return
		case cfg, ok := <-ch:
			if !ok {
				return
			}
			a.logSvc.Apply(logx.Config{
				Level:   cfg.Logging.Level,
				Console: cfg.Logging.Console,
				File:    logx.FileConfig{Enabled: cfg.Logging.File.Enabled, Path: cfg.Logging.File.Path},
				Telegram: logx.TelegramConfig{
					Enabled:    cfg.Logging.Telegram.Enabled,
					MinLevel:   cfg.Logging.Telegram.MinLevel,
					RatePerSec: cfg.Logging.Telegram.RatePerSec,
				},
			})
			a.logSvc.SetTelegramTarget(cfg.Telegram.ChatID)
			a.log.Info("logging settings reapplied")
		}
	}
}

// Close releases resources. Storage goes last so late log writes and
// in-flight handlers still have it.
func (a *App) Close() {
	if a.logSvc != nil {
		a.logSvc.Close()
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			fmt.Printf("storage close: %v\n", err)
		}
	}
}
