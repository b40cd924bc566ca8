package backend

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/shopspring/decimal"
)

// DTOs raw del backend. Solo se usan dentro de este paquete.
// La conversión a domain entities se hace en mapping.go.

// flexString acepta string o número (los IDs de contrato del broker son
// enteros, los del backend strings).
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if string(b) == "null" {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

// flexBool acepta bool o 0/1.
type flexBool bool

func (f *flexBool) UnmarshalJSON(b []byte) error {
	switch s := string(bytes.TrimSpace(b)); s {
	case "null", "":
		return nil
	case "true", "false":
		v, _ := strconv.ParseBool(s)
		*f = flexBool(v)
		return nil
	default:
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		*f = n != 0
		return nil
	}
}

// --- auth / account ---

type authRequest struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
}

type authResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	UserID  string `json:"user_id"`
	Token   string `json:"token"`
}

type accountResponse struct {
	Balance         decimal.Decimal `json:"balance"`
	Currency        string          `json:"currency"`
	ActiveContracts int             `json:"active_contracts"`
	TotalTrades     int             `json:"total_trades"`
}

// --- trading ---

type contractDTO struct {
	ContractID   flexString          `json:"contract_id"`
	Underlying   string              `json:"underlying"`
	Symbol       string              `json:"symbol"`
	ContractType string              `json:"contract_type"`
	BuyPrice     decimal.NullDecimal `json:"buy_price"`
	Stake        decimal.NullDecimal `json:"stake"`
	Payout       decimal.NullDecimal `json:"payout"`
	Profit       decimal.NullDecimal `json:"profit"`
	IsSold       flexBool            `json:"is_sold"`
	Status       string              `json:"status"`
	PurchaseTime int64               `json:"purchase_time"`
}

type activeContractsResponse struct {
	Contracts []contractDTO `json:"contracts"`
}

// Los importes van como float: el backend los pasa tal cual al broker, que
// espera números JSON.
type buyRequest struct {
	ClientID     string  `json:"client_id"`
	UserID       string  `json:"user_id"`
	Symbol       string  `json:"symbol"`
	ContractType string  `json:"contract_type"`
	Stake        float64 `json:"stake"`
	Duration     int     `json:"duration"`
	DurationUnit string  `json:"duration_unit"`
}

type buyResponse struct {
	Success  bool         `json:"success"`
	Contract *contractDTO `json:"contract"`
}

type sellRequest struct {
	UserID     string `json:"user_id"`
	ContractID string `json:"contract_id"`
}

type successResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// --- markets / signals / analytics ---

type livePricesResponse struct {
	Prices map[string]decimal.Decimal `json:"prices"`
}

type factorDTO struct {
	Name   string          `json:"name"`
	Value  json.RawMessage `json:"value"`
	Weight float64         `json:"weight"`
}

// signalResponse cubre las dos formas del endpoint: la v1 (prediction +
// recommendation + factors) y la smart (signal + reason).
type signalResponse struct {
	Symbol              string              `json:"symbol"`
	Prediction          string              `json:"prediction"`
	Signal              string              `json:"signal"`
	Confidence          float64             `json:"confidence"`
	Reason              string              `json:"reason"`
	Recommendation      string              `json:"recommendation"`
	Factors             []factorDTO         `json:"factors"`
	Duration            int                 `json:"duration"`
	StakeRecommendation decimal.NullDecimal `json:"stake_recommendation"`
}

type patternDTO struct {
	Type       string  `json:"type"`
	Digit      int     `json:"digit"`
	Length     int     `json:"length"`
	Pattern    string  `json:"pattern"`
	Confidence float64 `json:"confidence"`
}

type digitsResponse struct {
	Symbol           string             `json:"symbol"`
	DigitFrequency   map[string]int     `json:"digit_frequency"`
	DigitPercentages map[string]float64 `json:"digit_percentages"`
	EvenOdd          map[string]int     `json:"even_odd_ratio"`
	OverUnder        map[string]int     `json:"over_under_5"`
	TotalTicks       int                `json:"total_ticks"`
	Patterns         []patternDTO       `json:"patterns"`
	LastDigits       []int              `json:"last_20_digits"`
}

type heatmapRowDTO struct {
	Row        int   `json:"row"`
	Digits     []int `json:"digits"`
	OverCount  int   `json:"over_count"`
	UnderCount int   `json:"under_count"`
}

type heatmapResponse struct {
	Symbol  string          `json:"symbol"`
	Heatmap []heatmapRowDTO `json:"heatmap"`
}

type probabilityResponse struct {
	Symbol       string  `json:"symbol"`
	ContractType string  `json:"contract_type"`
	Probability  float64 `json:"probability"`
	Confidence   string  `json:"confidence"`
	SampleSize   int     `json:"sample_size"`
}

// --- risk ---

type capitalProtectorResponse struct {
	Active            bool                `json:"active"`
	ConsecutiveLosses int                 `json:"consecutive_losses"`
	TotalLossToday    decimal.NullDecimal `json:"total_loss_today"`
	Reason            *string             `json:"reason"`
}

type riskMeterResponse struct {
	Stake      decimal.Decimal `json:"stake"`
	Balance    decimal.Decimal `json:"balance"`
	Percentage decimal.Decimal `json:"percentage"`
	RiskLevel  string          `json:"risk_level"`
}

// --- community ---

type traderDTO struct {
	ID        flexString          `json:"id"`
	Username  string              `json:"username"`
	Name      string              `json:"name"`
	WinRate   float64             `json:"win_rate"`
	Followers int                 `json:"followers"`
	Profit    decimal.NullDecimal `json:"profit"`
	RiskScore int                 `json:"risk_score"`
}

type strategyDTO struct {
	ID          flexString          `json:"id"`
	Name        string              `json:"name"`
	Author      string              `json:"author"`
	Description string              `json:"description"`
	Price       decimal.NullDecimal `json:"price"`
	WinRate     float64             `json:"win_rate"`
	Subscribers int                 `json:"subscribers"`
	Risk        string              `json:"risk"`
}

type leaderboardDTO struct {
	Rank     int                 `json:"rank"`
	Username string              `json:"username"`
	Profit   decimal.NullDecimal `json:"profit"`
	WinRate  float64             `json:"win_rate"`
	Trades   int                 `json:"trades"`
}

// --- bots ---

type botStrategyDTO struct {
	Type string `json:"type"`
}

type botConfigDTO struct {
	MaxTrades  int     `json:"max_trades"`
	StopLoss   float64 `json:"stop_loss"`
	TakeProfit float64 `json:"take_profit"`
	Stake      float64 `json:"stake"`
}

type createBotRequest struct {
	UserID   string         `json:"user_id"`
	Name     string         `json:"name"`
	Strategy botStrategyDTO `json:"strategy"`
	Config   botConfigDTO   `json:"config"`
}

type botStatsDTO struct {
	Trades int                 `json:"trades"`
	Wins   int                 `json:"wins"`
	Losses int                 `json:"losses"`
	Profit decimal.NullDecimal `json:"profit"`
}

type botDTO struct {
	BotID    string         `json:"bot_id"`
	Name     string         `json:"name"`
	Status   string         `json:"status"`
	Strategy botStrategyDTO `json:"strategy"`
	Stats    botStatsDTO    `json:"stats"`
}

type createBotResponse struct {
	Success bool   `json:"success"`
	Bot     botDTO `json:"bot"`
}

type botLogDTO struct {
	Time   string              `json:"time"`
	Event  string              `json:"event"`
	Action string              `json:"action"`
	Stake  decimal.NullDecimal `json:"stake"`
	Result string              `json:"result"`
	Profit decimal.NullDecimal `json:"profit"`
}

type botLogsResponse struct {
	Logs []botLogDTO `json:"logs"`
}
