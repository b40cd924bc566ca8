package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ContractStatus es el estado de una posición en el backend.
type ContractStatus string

const (
	ContractOpen   ContractStatus = "open"
	ContractClosed ContractStatus = "closed"
)

// Contract es una posición abierta o cerrada que el cliente sigue.
type Contract struct {
	ID           string
	Symbol       string
	ContractType string
	Stake        decimal.Decimal
	Payout       decimal.Decimal
	Profit       decimal.Decimal
	Status       ContractStatus
	PurchasedAt  time.Time
}

// Defaults de duración de contrato que usa el panel de trading.
const (
	DefaultDuration     = 5
	DefaultDurationUnit = "t" // ticks
)

// TradeRequest es la compra que se envía al backend.
type TradeRequest struct {
	ClientID     string // UUID local, sirve para correlacionar con el journal
	UserID       string
	Symbol       string
	Direction    Prediction
	ContractType string
	Stake        decimal.Decimal
	Duration     int
	DurationUnit string
}

// TradeResult es la respuesta del backend a una compra.
type TradeResult struct {
	Success  bool
	Contract *Contract
	Error    string
}

// TradeRecord es el registro de auditoría de un intento de trade o venta.
type TradeRecord struct {
	ID         string
	Action     string // "buy" | "sell"
	UserID     string
	Symbol     string
	Direction  string
	Stake      decimal.Decimal
	ContractID string
	Success    bool
	Error      string
	At         time.Time
}
