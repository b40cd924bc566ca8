package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alejandrodnm/xtrader/internal/adapters/notify"
	"github.com/alejandrodnm/xtrader/internal/application/dashboard"
	"github.com/alejandrodnm/xtrader/internal/domain"
)

// runTrade compra un contrato en la dirección dada.
func runTrade(ctx context.Context, dash *dashboard.Dashboard, dir string) error {
	p, ok := domain.ParsePrediction(dir)
	if !ok {
		slog.Error("invalid direction", "direction", dir)
		return fmt.Errorf("invalid direction %q", dir)
	}
	slog.Info("placing trade",
		"direction", p,
		"market", dash.Snapshot().SelectedMarket,
		"payout", dash.Payout(),
	)
	_, err := dash.ExecuteTrade(ctx, p)
	return err
}

// runSignal pide la señal del mercado y la imprime. No requiere sesión.
func runSignal(ctx context.Context, dash *dashboard.Dashboard, console *notify.Console) {
	sig, err := dash.FetchSignal(ctx)
	if err != nil {
		slog.Error("signal failed", "err", err)
		return
	}
	console.PrintSignal(sig)
}

// runHistory imprime los últimos trades del journal.
func runHistory(ctx context.Context, dash *dashboard.Dashboard, console *notify.Console) {
	recs, err := dash.RecentTrades(ctx, 20)
	if err != nil {
		slog.Error("history failed", "err", err)
		return
	}
	console.PrintTrades(recs)
}
