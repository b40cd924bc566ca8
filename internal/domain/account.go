package domain

import "github.com/shopspring/decimal"

// Account es el resumen de cuenta que devuelve el backend.
type Account struct {
	UserID          string
	Balance         decimal.Decimal
	Currency        string
	ActiveContracts int
	TotalTrades     int
}
