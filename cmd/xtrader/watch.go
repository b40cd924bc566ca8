package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/alejandrodnm/xtrader/internal/adapters/notify"
	"github.com/alejandrodnm/xtrader/internal/application/dashboard"
)

// runWatch pinta el dashboard cada vez que cambia, como mucho una vez por
// intervalo, hasta Ctrl+C.
func runWatch(ctx context.Context, dash *dashboard.Dashboard, console *notify.Console, every time.Duration) {
	slog.Info("watching dashboard", "refresh", every)

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	var lastVersion uint64
	for {
		select {
		case <-ctx.Done():
			dash.Logout(context.Background())
			return
		case <-ticker.C:
			v := dash.Snapshot()
			if v.Version == lastVersion {
				continue
			}
			lastVersion = v.Version
			console.PrintDashboard(v)
		}
	}
}

// runOnce ejecuta cada poller una vez y pinta el resultado.
func runOnce(ctx context.Context, dash *dashboard.Dashboard, console *notify.Console) {
	outcomes, err := dash.RefreshAll(ctx)
	if err != nil {
		slog.Error("refresh failed", "err", err)
		return
	}
	for name, outcome := range outcomes {
		slog.Debug("poll", "poller", name, "outcome", outcome)
	}
	console.PrintDashboard(dash.Snapshot())
}
