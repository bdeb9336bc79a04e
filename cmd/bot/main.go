package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/coreos/go-systemd/v22/daemon"

	"rcbot/internal/app"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	mode := flag.String("mode", app.ModeBoth, "run mode: bot, scheduler, both, send-now or resend")
	flag.Parse()

	a, err := app.New(app.Options{ConfigPath: *configPath, Mode: *mode})
	if err != nil {
		fmt.Fprintf(os.Stderr, "startup failed: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_, _ = daemon.SdNotify(false, daemon.SdNotifyReady)
	err = a.Run(ctx)
	_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)

	if err != nil && ctx.Err() == nil {
		fmt.Fprintf(os.Stderr, "run failed: %v\n", err)
		a.Close()
		os.Exit(1)
	}
}
