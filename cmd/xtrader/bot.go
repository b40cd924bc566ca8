package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/alejandrodnm/xtrader/internal/adapters/notify"
	"github.com/alejandrodnm/xtrader/internal/application/dashboard"
	"github.com/alejandrodnm/xtrader/internal/domain"
)

const botRefreshInterval = 5 * time.Second

// runBot crea y arranca un bot, y sigue sus stats hasta Ctrl+C. Al salir
// lo para.
func runBot(ctx context.Context, dash *dashboard.Dashboard, console *notify.Console, templateID string) error {
	if _, err := domain.TemplateByID(templateID); err != nil {
		console.PrintTemplates(domain.BotTemplates)
		return err
	}

	cfg := domain.DefaultBotConfig()
	cfg.Stake = dash.Snapshot().Stake
	if _, err := dash.CreateBot(ctx, templateID, cfg); err != nil {
		return err
	}
	if err := dash.StartBot(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(botRefreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			// ctx ya está cancelado: parar el bot con uno nuevo.
			stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return dash.StopBot(stopCtx)
		case <-ticker.C:
			if err := dash.RefreshBot(ctx); err != nil {
				slog.Warn("bot refresh failed", "err", err)
				continue
			}
			v := dash.Snapshot()
			if v.Bot != nil {
				console.PrintBot(*v.Bot, v.BotLogs)
			}
		}
	}
}
