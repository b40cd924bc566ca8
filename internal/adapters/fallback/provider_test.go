package fallback_test

import (
	"testing"

	"github.com/alejandrodnm/xtrader/internal/adapters/fallback"
	"github.com/alejandrodnm/xtrader/internal/domain"
	"github.com/alejandrodnm/xtrader/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ports.FallbackProvider = (*fallback.Provider)(nil)

func TestTraders_Literal(t *testing.T) {
	got := fallback.New(1).Traders()
	require.Len(t, got, 2)
	assert.Equal(t, "ProTrader99", got[0].Username)
	assert.Equal(t, "SignalMaster", got[1].Username)
}

func TestTraders_ReturnsFreshCopies(t *testing.T) {
	p := fallback.New(1)
	first := p.Traders()
	first[0].Username = "mutated"
	assert.Equal(t, "ProTrader99", p.Traders()[0].Username)
}

func TestStrategies_MirrorBotTemplates(t *testing.T) {
	got := fallback.New(1).Strategies()
	require.Len(t, got, len(domain.BotTemplates))
	for i, tpl := range domain.BotTemplates {
		assert.Equal(t, tpl.ID, got[i].ID)
		assert.Equal(t, tpl.Name, got[i].Name)
	}
}

func TestLeaderboard_FiveRanked(t *testing.T) {
	rows := fallback.New(1).Leaderboard()
	require.Len(t, rows, 5)
	for i, r := range rows {
		assert.Equal(t, i+1, r.Rank)
	}
}

func TestSignal_SameSeedSameSequence(t *testing.T) {
	a, b := fallback.New(42), fallback.New(42)
	for i := 0; i < 20; i++ {
		sa, sb := a.Signal("R_100"), b.Signal("R_100")
		assert.Equal(t, sa.Prediction, sb.Prediction)
		assert.Equal(t, sa.Confidence, sb.Confidence)
	}
}

func TestSignal_CallOrPutFlagged(t *testing.T) {
	p := fallback.New(7)
	seen := map[domain.Prediction]bool{}
	for i := 0; i < 100; i++ {
		s := p.Signal("R_50")
		assert.True(t, s.Fallback)
		assert.Equal(t, "R_50", s.Symbol)
		assert.Contains(t, []domain.Prediction{domain.PredictionCall, domain.PredictionPut}, s.Prediction)
		assert.GreaterOrEqual(t, s.Confidence, 0.55)
		assert.Less(t, s.Confidence, 0.75)
		seen[s.Prediction] = true
	}
	assert.Len(t, seen, 2, "en 100 tiradas salen las dos direcciones")
}

func TestDigitAnalytics_Consistent(t *testing.T) {
	a := fallback.New(1).DigitAnalytics("R_10")
	assert.True(t, a.Fallback)
	assert.Equal(t, 100, a.TotalTicks)
	assert.Equal(t, a.TotalTicks, a.Even+a.Odd)
	assert.Equal(t, []int{5, 2, 0}, a.Hot)
	assert.Equal(t, []int{6, 3, 1}, a.Cold)
	assert.InDelta(t, 13.0, a.Percentages[5], 1e-9)
	assert.Len(t, a.LastDigits, 20)
}

func TestDigitAnalytics_HeatmapFromLastDigits(t *testing.T) {
	a := fallback.New(1).DigitAnalytics("R_10")
	require.Len(t, a.Heatmap, 2)
	assert.Equal(t, []int{5, 2, 0, 9, 5, 3, 7, 2, 4, 5}, a.Heatmap[0].Digits)
	assert.Equal(t, 2, a.Heatmap[0].Over)
	assert.Equal(t, 8, a.Heatmap[0].Under)
	assert.Equal(t, 1, a.Heatmap[1].Row)
	assert.Equal(t, 3, a.Heatmap[1].Over)
}
