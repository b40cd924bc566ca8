package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// payoutMultiplier es el retorno bruto de un contrato ganador (95% de profit).
	payoutMultiplier = decimal.RequireFromString("1.95")

	// MinStake es el stake mínimo que acepta el backend.
	MinStake = decimal.RequireFromString("0.35")
)

// Payout devuelve el pago potencial para un stake, redondeado a centavos.
func Payout(stake decimal.Decimal) decimal.Decimal {
	return stake.Mul(payoutMultiplier).Round(2)
}

// FormatUSD formatea un importe como "$19.50".
func FormatUSD(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

// ValidateStake rechaza stakes por debajo del mínimo.
func ValidateStake(stake decimal.Decimal) error {
	if stake.LessThan(MinStake) {
		return fmt.Errorf("%w: %s < %s", ErrStakeTooLow, stake.StringFixed(2), MinStake.StringFixed(2))
	}
	return nil
}
