package domain

import "github.com/shopspring/decimal"

// Trader es un perfil de copy-trading. Solo lectura.
type Trader struct {
	ID        string
	Username  string
	WinRate   float64 // porcentaje
	Followers int
	Profit    decimal.Decimal
	RiskScore int // 1 (bajo) .. 10 (alto)
}

// Strategy es una estrategia publicada en el marketplace.
type Strategy struct {
	ID          string
	Name        string
	Author      string
	Description string
	Price       decimal.Decimal
	WinRate     float64
	Subscribers int
	Risk        string
}

// LeaderboardRow es una fila del ranking de la comunidad.
type LeaderboardRow struct {
	Rank     int
	Username string
	Profit   decimal.Decimal
	WinRate  float64
	Trades   int
}
