package domain

import "github.com/shopspring/decimal"

// CapitalProtector indica si el backend recomienda dejar de operar.
type CapitalProtector struct {
	Active            bool
	ConsecutiveLosses int
	TotalLossToday    decimal.Decimal
	Reason            string
}

// RiskLevel clasifica el porcentaje de la cuenta en riesgo por trade.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// RiskMeter es el porcentaje del balance expuesto con el stake actual.
type RiskMeter struct {
	Stake      decimal.Decimal
	Balance    decimal.Decimal
	Percentage decimal.Decimal
	Level      RiskLevel
}

// ClassifyRisk replica los umbrales del backend: <2% bajo, <5% medio.
func ClassifyRisk(pct decimal.Decimal) RiskLevel {
	switch {
	case pct.LessThan(decimal.NewFromInt(2)):
		return RiskLow
	case pct.LessThan(decimal.NewFromInt(5)):
		return RiskMedium
	}
	return RiskHigh
}
