package dashboard

// actions.go: acciones iniciadas por el usuario.
//
// Política común: cada acción captura sus errores localmente (log +
// notificación) y además los devuelve envueltos para que la CLI decida el
// exit code. Un fallo nunca produce una notificación de éxito ni muta el
// estado local.

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alejandrodnm/xtrader/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SelectMarket cambia el mercado seleccionado. Limpia lo que dependía del
// anterior, rearma los pollers de precio y analytics y resuscribe el stream.
func (d *Dashboard) SelectMarket(ctx context.Context, symbol string) error {
	if _, ok := domain.LookupMarket(symbol); !ok {
		return fmt.Errorf("dashboard.SelectMarket: %q: %w", symbol, domain.ErrUnknownMarket)
	}
	if !d.store.Dispatch(MarketSelected{Symbol: symbol}) {
		return nil
	}
	slog.Info("market selected", "symbol", symbol)

	d.lifecycle.Lock()
	defer d.lifecycle.Unlock()
	if d.streamCancel != nil {
		if err := d.stream.SubscribeTicks(symbol); err != nil {
			slog.Warn("subscribe ticks failed", "symbol", symbol, "err", err)
		}
	}
	d.pollers.Restart(PollerPrice, PollerAnalytics)
	return nil
}

// SetStake fija el stake. El mínimo se valida al operar, no aquí, para
// poder escribir importes intermedios.
func (d *Dashboard) SetStake(stake decimal.Decimal) error {
	if stake.IsNegative() {
		return fmt.Errorf("dashboard.SetStake: negative stake %s", stake)
	}
	d.store.Dispatch(StakeChanged{Stake: stake})
	return nil
}

// Payout devuelve el pago potencial formateado ("$19.50").
func (d *Dashboard) Payout() string {
	return domain.FormatUSD(domain.Payout(d.store.Stake()))
}

// ExecuteTrade compra un contrato en la dirección dada con el stake actual.
func (d *Dashboard) ExecuteTrade(ctx context.Context, direction domain.Prediction) (domain.Contract, error) {
	session, err := d.requireSession(ctx, "ExecuteTrade")
	if err != nil {
		return domain.Contract{}, err
	}
	stake := d.store.Stake()
	if err := domain.ValidateStake(stake); err != nil {
		d.notes.Notify(ctx, "Minimum stake is "+domain.FormatUSD(domain.MinStake), domain.SeverityError)
		return domain.Contract{}, fmt.Errorf("dashboard.ExecuteTrade: %w", err)
	}
	contractType, err := direction.ContractType()
	if err != nil {
		d.notes.Notify(ctx, fmt.Sprintf("Cannot trade %s", direction), domain.SeverityError)
		return domain.Contract{}, fmt.Errorf("dashboard.ExecuteTrade: %s: %w", direction, err)
	}
	symbol, _ := d.store.Market()

	req := domain.TradeRequest{
		ClientID:     uuid.NewString(),
		UserID:       session.UserID,
		Symbol:       symbol,
		Direction:    direction,
		ContractType: contractType,
		Stake:        stake,
		Duration:     domain.DefaultDuration,
		DurationUnit: domain.DefaultDurationUnit,
	}
	res, err := d.backend.Buy(ctx, req)

	rec := domain.TradeRecord{
		ID:        req.ClientID,
		Action:    "buy",
		UserID:    req.UserID,
		Symbol:    symbol,
		Direction: string(direction),
		Stake:     stake,
		Success:   err == nil,
		At:        time.Now(),
	}
	if err != nil {
		rec.Error = err.Error()
		d.record(ctx, rec)
		slog.Warn("trade failed", "symbol", symbol, "direction", direction, "err", err)
		d.notes.Notify(ctx, "Trade failed: "+err.Error(), domain.SeverityError)
		return domain.Contract{}, fmt.Errorf("dashboard.ExecuteTrade: %w", err)
	}

	var contract domain.Contract
	if res.Contract != nil {
		contract = *res.Contract
		rec.ContractID = contract.ID
	}
	d.record(ctx, rec)
	slog.Info("trade executed",
		"symbol", symbol,
		"direction", direction,
		"stake", stake.StringFixed(2),
		"contract_id", contract.ID,
	)
	d.notes.Notify(ctx, fmt.Sprintf("%s %s executed: %s", symbol, direction, domain.FormatUSD(stake)), domain.SeveritySuccess)
	d.refreshAccount(ctx)
	return contract, nil
}

// SellContract cierra un contrato abierto.
func (d *Dashboard) SellContract(ctx context.Context, contractID string) error {
	session, err := d.requireSession(ctx, "SellContract")
	if err != nil {
		return err
	}
	err = d.backend.Sell(ctx, session.UserID, contractID)

	rec := domain.TradeRecord{
		Action:     "sell",
		UserID:     session.UserID,
		ContractID: contractID,
		Success:    err == nil,
		At:         time.Now(),
	}
	if err != nil {
		rec.Error = err.Error()
		d.record(ctx, rec)
		slog.Warn("sell failed", "contract_id", contractID, "err", err)
		d.notes.Notify(ctx, "Sell failed: "+err.Error(), domain.SeverityError)
		return fmt.Errorf("dashboard.SellContract: %w", err)
	}
	d.record(ctx, rec)
	slog.Info("contract sold", "contract_id", contractID)
	d.notes.Notify(ctx, "Contract "+contractID+" sold", domain.SeveritySuccess)
	d.refreshAccount(ctx)
	return nil
}

// FetchSignal pide la señal del mercado seleccionado. Si el backend falla
// se usa la señal de ejemplo (Fallback=true) con un aviso.
func (d *Dashboard) FetchSignal(ctx context.Context) (domain.Signal, error) {
	symbol, gen := d.store.Market()
	d.store.Dispatch(SignalRequested{Gen: gen})

	sig, err := d.backend.FetchSignal(ctx, symbol)
	if err != nil {
		if ctx.Err() != nil {
			d.store.Dispatch(SignalFailed{Gen: gen})
			return domain.Signal{}, fmt.Errorf("dashboard.FetchSignal: %w", ctx.Err())
		}
		slog.Warn("signal fetch failed, using fallback", "symbol", symbol, "err", err)
		sig = d.fallback.Signal(symbol)
		d.notes.Notify(ctx, "Signal service unavailable, showing sample signal", domain.SeverityWarning)
	}
	if sig.FetchedAt.IsZero() {
		sig.FetchedAt = time.Now()
	}
	if !d.store.Dispatch(SignalReceived{Gen: gen, Signal: sig}) {
		slog.Debug("stale signal discarded", "symbol", symbol, "gen", gen)
	}
	if d.journal != nil {
		if err := d.journal.RecordSignal(ctx, sig); err != nil {
			slog.Warn("journal error", "err", err)
		}
	}
	return sig, nil
}

// FetchProbability pide la probabilidad estimada para un tipo de contrato
// en el mercado seleccionado.
func (d *Dashboard) FetchProbability(ctx context.Context, contractType string) (domain.Probability, error) {
	symbol, gen := d.store.Market()
	p, err := d.backend.FetchProbability(ctx, symbol, contractType)
	if err != nil {
		slog.Warn("probability fetch failed", "symbol", symbol, "contract_type", contractType, "err", err)
		d.notes.Notify(ctx, "Probability unavailable", domain.SeverityWarning)
		return domain.Probability{}, fmt.Errorf("dashboard.FetchProbability: %w", err)
	}
	d.store.Dispatch(ProbabilityReceived{Gen: gen, Probability: p})
	return p, nil
}

// --- bots ---

// CreateBot crea un bot a partir de una plantilla.
func (d *Dashboard) CreateBot(ctx context.Context, templateID string, cfg domain.BotConfig) (domain.Bot, error) {
	tpl, err := domain.TemplateByID(templateID)
	if err != nil {
		d.notes.Notify(ctx, "Unknown strategy "+templateID, domain.SeverityError)
		return domain.Bot{}, fmt.Errorf("dashboard.CreateBot: %q: %w", templateID, err)
	}
	session, err := d.requireSession(ctx, "CreateBot")
	if err != nil {
		return domain.Bot{}, err
	}
	bot, err := d.backend.CreateBot(ctx, session.UserID, tpl, cfg)
	if err != nil {
		slog.Warn("bot create failed", "template", templateID, "err", err)
		d.notes.Notify(ctx, "Bot creation failed: "+err.Error(), domain.SeverityError)
		return domain.Bot{}, fmt.Errorf("dashboard.CreateBot: %w", err)
	}
	if bot.TemplateID == "" {
		bot.TemplateID = tpl.ID
	}
	if bot.Name == "" {
		bot.Name = tpl.Name
	}
	d.store.Dispatch(BotUpdated{Bot: bot})
	d.store.Dispatch(BotLogsReceived{Logs: nil})
	slog.Info("bot created", "bot_id", bot.ID, "template", tpl.ID)
	d.notes.Notify(ctx, "Bot "+bot.Name+" created", domain.SeveritySuccess)
	return bot, nil
}

// StartBot arranca el bot creado.
func (d *Dashboard) StartBot(ctx context.Context) error {
	return d.botCommand(ctx, "StartBot", domain.BotRunning, d.backend.StartBot)
}

// StopBot para el bot creado.
func (d *Dashboard) StopBot(ctx context.Context) error {
	return d.botCommand(ctx, "StopBot", domain.BotStopped, d.backend.StopBot)
}

func (d *Dashboard) botCommand(ctx context.Context, op string, next domain.BotStatus, call func(context.Context, string) error) error {
	bot := d.store.Snapshot().Bot
	if bot == nil {
		d.notes.Notify(ctx, "Create a bot first", domain.SeverityError)
		return fmt.Errorf("dashboard.%s: %w", op, domain.ErrNoBot)
	}
	if err := call(ctx, bot.ID); err != nil {
		slog.Warn("bot command failed", "op", op, "bot_id", bot.ID, "err", err)
		d.notes.Notify(ctx, "Bot command failed: "+err.Error(), domain.SeverityError)
		return fmt.Errorf("dashboard.%s: %w", op, err)
	}
	updated := *bot
	updated.Status = next
	d.store.Dispatch(BotUpdated{Bot: updated})
	d.notes.Notify(ctx, fmt.Sprintf("Bot %s %s", bot.Name, next), domain.SeverityInfo)
	return nil
}

// RefreshBot trae estadísticas y logs del bot. Un fallo deja el estado
// anterior.
func (d *Dashboard) RefreshBot(ctx context.Context) error {
	bot := d.store.Snapshot().Bot
	if bot == nil {
		return fmt.Errorf("dashboard.RefreshBot: %w", domain.ErrNoBot)
	}
	stats, err := d.backend.FetchBotStats(ctx, bot.ID)
	if err != nil {
		slog.Warn("bot stats failed", "bot_id", bot.ID, "err", err)
		return fmt.Errorf("dashboard.RefreshBot: stats: %w", err)
	}
	if stats.ID == "" {
		stats.ID = bot.ID
	}
	if stats.Name == "" {
		stats.Name = bot.Name
	}
	if stats.TemplateID == "" {
		stats.TemplateID = bot.TemplateID
	}
	if stats.Status == "" {
		stats.Status = bot.Status
	}
	d.store.Dispatch(BotUpdated{Bot: stats})

	logs, err := d.backend.FetchBotLogs(ctx, bot.ID)
	if err != nil {
		slog.Warn("bot logs failed", "bot_id", bot.ID, "err", err)
		return fmt.Errorf("dashboard.RefreshBot: logs: %w", err)
	}
	d.store.Dispatch(BotLogsReceived{Logs: logs})
	return nil
}

// RecentTrades lee el journal. Sin journal devuelve vacío.
func (d *Dashboard) RecentTrades(ctx context.Context, limit int) ([]domain.TradeRecord, error) {
	if d.journal == nil {
		return nil, nil
	}
	recs, err := d.journal.RecentTrades(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("dashboard.RecentTrades: %w", err)
	}
	return recs, nil
}

func (d *Dashboard) record(ctx context.Context, rec domain.TradeRecord) {
	if d.journal == nil {
		return
	}
	if err := d.journal.RecordTrade(ctx, rec); err != nil {
		slog.Warn("journal error", "action", rec.Action, "err", err)
	}
}
