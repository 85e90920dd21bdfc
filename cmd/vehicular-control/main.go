package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/quantumauth-io/quantum-go-utils/log"

	"github.com/sinbandera-io/vehicular-control/internal/notify"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{}
	root := newRootCmd(a)

	if err := root.ExecuteContext(ctx); err != nil {
		notify.New(os.Stderr, a.verbose).Error(err)
		stop()
		os.Exit(1)
	}
}

func logVersion() {
	log.Info("vehicular-control",
		"version", Version,
		"commit", Commit,
		"build_date", BuildDate,
	)
}
