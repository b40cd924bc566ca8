package backend

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alejandrodnm/xtrader/internal/domain"
	"github.com/shopspring/decimal"
)

// mapContract convierte un contrato raw. Acepta tanto la forma del broker
// (underlying, buy_price, is_sold) como la resumida del backend.
func mapContract(raw contractDTO) domain.Contract {
	c := domain.Contract{
		ID:           string(raw.ContractID),
		Symbol:       firstNonEmpty(raw.Underlying, raw.Symbol),
		ContractType: raw.ContractType,
		Stake:        firstValid(raw.BuyPrice, raw.Stake),
		Payout:       firstValid(raw.Payout),
		Profit:       firstValid(raw.Profit),
		Status:       domain.ContractOpen,
	}
	switch strings.ToLower(raw.Status) {
	case "won", "lost", "sold", "closed":
		c.Status = domain.ContractClosed
	}
	if raw.IsSold {
		c.Status = domain.ContractClosed
	}
	if raw.PurchaseTime > 0 {
		c.PurchasedAt = time.Unix(raw.PurchaseTime, 0).UTC()
	}
	return c
}

// mapSignal convierte la respuesta del endpoint de señales.
func mapSignal(symbol string, raw signalResponse, now time.Time) domain.Signal {
	pred, ok := domain.ParsePrediction(firstNonEmpty(raw.Prediction, raw.Signal))
	reason := raw.Reason
	if reason == "" && raw.Recommendation != "" {
		reason = "Recommendation: " + raw.Recommendation
	}
	if !ok && reason == "" {
		reason = "unrecognised prediction"
	}

	sig := domain.Signal{
		Symbol:        firstNonEmpty(raw.Symbol, symbol),
		Prediction:    pred,
		Confidence:    domain.ClampConfidence(raw.Confidence),
		Reason:        reason,
		DurationTicks: raw.Duration,
		FetchedAt:     now,
	}
	if raw.StakeRecommendation.Valid {
		sig.StakeHint = raw.StakeRecommendation.Decimal
	}
	for _, f := range raw.Factors {
		sig.Factors = append(sig.Factors, mapFactor(f))
	}
	return sig
}

// mapFactor acepta value numérico o string.
func mapFactor(raw factorDTO) domain.Factor {
	f := domain.Factor{Name: raw.Name, Weight: raw.Weight}
	var n float64
	if err := json.Unmarshal(raw.Value, &n); err == nil {
		f.Value = n
		f.Label = strconv.FormatFloat(n, 'f', 1, 64)
		return f
	}
	var s string
	if err := json.Unmarshal(raw.Value, &s); err == nil {
		f.Label = s
	}
	return f
}

// mapDigits convierte el snapshot de analytics y calcula los dígitos
// calientes/fríos, que el backend no devuelve.
func mapDigits(symbol string, raw digitsResponse, now time.Time) domain.DigitAnalytics {
	a := domain.DigitAnalytics{
		Symbol:     firstNonEmpty(raw.Symbol, symbol),
		Even:       raw.EvenOdd["even"],
		Odd:        raw.EvenOdd["odd"],
		Over:       raw.OverUnder["over"],
		Under:      raw.OverUnder["under"],
		TotalTicks: raw.TotalTicks,
		LastDigits: append([]int(nil), raw.LastDigits...),
		At:         now,
	}

	total := 0
	for k, v := range raw.DigitFrequency {
		d, err := strconv.Atoi(k)
		if err != nil || d < 0 || d > 9 {
			continue
		}
		a.Frequency[d] = v
		total += v
	}
	if a.TotalTicks == 0 {
		a.TotalTicks = total
	}

	for d := 0; d < 10; d++ {
		if p, ok := raw.DigitPercentages[strconv.Itoa(d)]; ok {
			a.Percentages[d] = p
		} else if a.TotalTicks > 0 {
			a.Percentages[d] = float64(a.Frequency[d]) / float64(a.TotalTicks) * 100
		}
	}

	a.Hot, a.Cold = domain.HotCold(a.Frequency)

	for _, p := range raw.Patterns {
		a.Patterns = append(a.Patterns, domain.Pattern{
			Type:       p.Type,
			Digit:      p.Digit,
			Length:     p.Length,
			Pattern:    p.Pattern,
			Confidence: p.Confidence,
		})
	}
	return a
}

func mapProtector(raw capitalProtectorResponse) domain.CapitalProtector {
	p := domain.CapitalProtector{
		Active:            raw.Active,
		ConsecutiveLosses: raw.ConsecutiveLosses,
		TotalLossToday:    firstValid(raw.TotalLossToday),
	}
	if raw.Reason != nil {
		p.Reason = *raw.Reason
	}
	return p
}

func mapMeter(raw riskMeterResponse) domain.RiskMeter {
	m := domain.RiskMeter{
		Stake:      raw.Stake,
		Balance:    raw.Balance,
		Percentage: raw.Percentage,
		Level:      domain.RiskLevel(strings.ToLower(raw.RiskLevel)),
	}
	if m.Level == "" {
		m.Level = domain.ClassifyRisk(raw.Percentage)
	}
	return m
}

func mapTrader(raw traderDTO) domain.Trader {
	name := firstNonEmpty(raw.Username, raw.Name)
	return domain.Trader{
		ID:        firstNonEmpty(string(raw.ID), name),
		Username:  name,
		WinRate:   raw.WinRate,
		Followers: raw.Followers,
		Profit:    firstValid(raw.Profit),
		RiskScore: raw.RiskScore,
	}
}

func mapStrategy(raw strategyDTO) domain.Strategy {
	return domain.Strategy{
		ID:          firstNonEmpty(string(raw.ID), raw.Name),
		Name:        raw.Name,
		Author:      raw.Author,
		Description: raw.Description,
		Price:       firstValid(raw.Price),
		WinRate:     raw.WinRate,
		Subscribers: raw.Subscribers,
		Risk:        raw.Risk,
	}
}

func mapLeaderboardRow(raw leaderboardDTO, idx int) domain.LeaderboardRow {
	rank := raw.Rank
	if rank == 0 {
		rank = idx + 1
	}
	return domain.LeaderboardRow{
		Rank:     rank,
		Username: raw.Username,
		Profit:   firstValid(raw.Profit),
		WinRate:  raw.WinRate,
		Trades:   raw.Trades,
	}
}

func mapBot(raw botDTO, templateID string) domain.Bot {
	return domain.Bot{
		ID:         raw.BotID,
		TemplateID: firstNonEmpty(templateID, raw.Strategy.Type),
		Name:       raw.Name,
		Status:     domain.BotStatus(strings.ToUpper(raw.Status)),
		Stats: domain.BotStats{
			Trades: raw.Stats.Trades,
			Wins:   raw.Stats.Wins,
			Losses: raw.Stats.Losses,
			Profit: firstValid(raw.Stats.Profit),
		},
	}
}

func mapBotLog(raw botLogDTO) domain.BotLogEntry {
	e := domain.BotLogEntry{
		Event:  firstNonEmpty(raw.Event, raw.Action),
		Stake:  firstValid(raw.Stake),
		Result: raw.Result,
		Profit: firstValid(raw.Profit),
	}
	// El backend usa isoformat() sin zona horaria.
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999"} {
		if t, err := time.Parse(layout, raw.Time); err == nil {
			e.Time = t
			break
		}
	}
	return e
}

// unwrapList decodifica una lista que puede venir sola o envuelta en
// {"<key>": [...]}, según la versión del endpoint.
func unwrapList(raw json.RawMessage, key string, out any) error {
	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, "[") {
		return json.Unmarshal(raw, out)
	}
	var env map[string]json.RawMessage
	if err := json.Unmarshal(raw, &env); err != nil {
		return err
	}
	inner, ok := env[key]
	if !ok {
		return fmt.Errorf("missing %q in response", key)
	}
	return json.Unmarshal(inner, out)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstValid(vals ...decimal.NullDecimal) decimal.Decimal {
	for _, v := range vals {
		if v.Valid {
			return v.Decimal
		}
	}
	return decimal.Zero
}
