package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"rcbot/internal/content"
	logx "rcbot/pkg/logx"
)

// Pruner removes rows older than the cutoff date.
type Pruner interface {
	PruneBefore(ctx context.Context, cutoffDate string) error
}

// Housekeeper prunes expired bundles and delivery records nightly.
type Housekeeper struct {
	cron      *cron.Cron
	store     Pruner
	retention int
	loc       *time.Location
	log       logx.Logger
}

func NewHousekeeper(store Pruner, retentionDays int, loc *time.Location, log logx.Logger) *Housekeeper {
	if loc == nil {
		loc = time.UTC
	}
	if retentionDays <= 0 {
		retentionDays = 90
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Housekeeper{
		cron:      cron.New(cron.WithLocation(loc)),
		store:     store,
		retention: retentionDays,
		loc:       loc,
		log:       log,
	}
}

// Start schedules the nightly prune and runs one immediately so a
// long-stopped instance catches up on startup.
func (h *Housekeeper) Start(ctx context.Context) error {
	if _, err := h.cron.AddFunc("30 3 * * *", func() { h.prune(ctx) }); err != nil {
		return err
	}
	h.cron.Start()
	go h.prune(ctx)
	return nil
}

func (h *Housekeeper) Stop() {
	st := h.cron.Stop()
	select {
	case <-st.Done():
	case <-time.After(5 * time.Second):
		h.log.Warn("housekeeping stop timed out")
	}
}

func (h *Housekeeper) prune(ctx context.Context) {
	cutoff := content.DateKey(time.Now().In(h.loc).AddDate(0, 0, -h.retention))
	if err := h.store.PruneBefore(ctx, cutoff); err != nil {
		h.log.Warn("prune failed", logx.String("cutoff", cutoff), logx.Err(err))
		return
	}
	h.log.Info("old records pruned", logx.String("cutoff", cutoff), logx.Int("retention_days", h.retention))
}
