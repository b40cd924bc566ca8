package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestPayout_TenDollars(t *testing.T) {
	assert.Equal(t, "$19.50", FormatUSD(Payout(dec("10.00"))))
}

func TestPayout_RoundsToCents(t *testing.T) {
	cases := map[string]string{
		"0.35":  "0.68", // 0.6825
		"1":     "1.95",
		"1.01":  "1.97", // 1.9695
		"3.33":  "6.49", // 6.4935
		"250.5": "488.48",
	}
	for stake, want := range cases {
		assert.Equal(t, want, Payout(dec(stake)).StringFixed(2), "stake %s", stake)
	}
}

func TestValidateStake(t *testing.T) {
	require.NoError(t, ValidateStake(dec("0.35")))
	require.NoError(t, ValidateStake(dec("10")))

	err := ValidateStake(dec("0.34"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStakeTooLow))
}

// --- Prediction ---

func TestParsePrediction(t *testing.T) {
	cases := map[string]Prediction{
		"CALL":       PredictionCall,
		"put":        PredictionPut,
		"DIGITOVER":  PredictionOver,
		"DIGITUNDER": PredictionUnder,
		"DIGITODD":   PredictionOdd,
		"EVEN":       PredictionEven,
		"WAIT":       PredictionWait,
	}
	for in, want := range cases {
		got, ok := ParsePrediction(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	got, ok := ParsePrediction("SIDEWAYS")
	assert.False(t, ok)
	assert.Equal(t, PredictionWait, got)
}

func TestPrediction_ContractType(t *testing.T) {
	ct, err := PredictionOver.ContractType()
	require.NoError(t, err)
	assert.Equal(t, "DIGITOVER", ct)

	ct, err = PredictionCall.ContractType()
	require.NoError(t, err)
	assert.Equal(t, "CALL", ct)

	_, err = PredictionWait.ContractType()
	assert.ErrorIs(t, err, ErrNotTradable)
}

func TestClampConfidence(t *testing.T) {
	assert.Equal(t, 0.0, ClampConfidence(-0.2))
	assert.Equal(t, 1.0, ClampConfidence(1.4))
	assert.Equal(t, 0.75, ClampConfidence(0.75))
}

// --- Quotes ---

func TestNewQuote_ChangePercent(t *testing.T) {
	prev := NewQuote("R_100", dec("100"), nil, time.Now())
	assert.True(t, prev.ChangePercent.IsZero())

	q := NewQuote("R_100", dec("101.5"), &prev, time.Now())
	assert.Equal(t, "1.5", q.ChangePercent.String())
}

func TestNewQuote_DifferentSymbolIgnoresPrevious(t *testing.T) {
	prev := NewQuote("R_10", dec("50"), nil, time.Now())
	q := NewQuote("R_100", dec("101.5"), &prev, time.Now())
	assert.True(t, q.ChangePercent.IsZero())
}

// --- Analytics ---

func TestHotCold(t *testing.T) {
	freq := [10]int{5, 9, 1, 7, 3, 3, 8, 0, 2, 4}
	hot, cold := HotCold(freq)
	assert.Equal(t, []int{1, 6, 3}, hot)
	assert.Equal(t, []int{7, 2, 8}, cold)
}

func TestClassifyRisk(t *testing.T) {
	assert.Equal(t, RiskLow, ClassifyRisk(dec("1.99")))
	assert.Equal(t, RiskMedium, ClassifyRisk(dec("2")))
	assert.Equal(t, RiskHigh, ClassifyRisk(dec("5")))
}

func TestViewState_CloneIsDeep(t *testing.T) {
	v := NewViewState(DefaultMarket, dec("1"))
	v.Prices["R_100"] = dec("10")
	v.Contracts = []Contract{{ID: "1"}}
	v.Signal = &Signal{Factors: []Factor{{Name: "trend"}}}

	c := v.Clone()
	c.Prices["R_100"] = dec("11")
	c.Contracts[0].ID = "2"
	c.Signal.Factors[0].Name = "other"

	assert.Equal(t, "10", v.Prices["R_100"].String())
	assert.Equal(t, "1", v.Contracts[0].ID)
	assert.Equal(t, "trend", v.Signal.Factors[0].Name)
}

func TestTemplateByID(t *testing.T) {
	tpl, err := TemplateByID("rsi")
	require.NoError(t, err)
	assert.Equal(t, "RSI Mean Reversion", tpl.Name)

	_, err = TemplateByID("grid")
	assert.ErrorIs(t, err, ErrUnknownTemplate)
}
