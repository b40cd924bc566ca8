package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Prediction es la dirección que recomienda una señal.
type Prediction string

const (
	PredictionCall  Prediction = "CALL"
	PredictionPut   Prediction = "PUT"
	PredictionOver  Prediction = "OVER"
	PredictionUnder Prediction = "UNDER"
	PredictionOdd   Prediction = "ODD"
	PredictionEven  Prediction = "EVEN"
	PredictionWait  Prediction = "WAIT"
)

// ParsePrediction acepta tanto la forma corta (OVER) como el tipo de contrato
// del backend (DIGITOVER). Lo desconocido se interpreta como WAIT.
func ParsePrediction(s string) (Prediction, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	s = strings.TrimPrefix(s, "DIGIT")
	switch p := Prediction(s); p {
	case PredictionCall, PredictionPut, PredictionOver, PredictionUnder,
		PredictionOdd, PredictionEven, PredictionWait:
		return p, true
	}
	return PredictionWait, false
}

// ContractType devuelve el tipo de contrato del backend para la dirección.
func (p Prediction) ContractType() (string, error) {
	switch p {
	case PredictionCall, PredictionPut:
		return string(p), nil
	case PredictionOver, PredictionUnder, PredictionOdd, PredictionEven:
		return "DIGIT" + string(p), nil
	}
	return "", ErrNotTradable
}

// Factor es uno de los inputs que pesaron en la señal.
type Factor struct {
	Name   string
	Value  float64
	Label  string // cuando el backend devuelve un valor no numérico
	Weight float64
}

// Signal es la predicción del backend para un mercado. Se reemplaza entera en
// cada fetch, nunca se mezcla con la anterior.
type Signal struct {
	Symbol        string
	Prediction    Prediction
	Confidence    float64 // 0..1
	Reason        string
	Factors       []Factor
	DurationTicks int
	StakeHint     decimal.Decimal
	Fallback      bool // true si viene del proveedor offline
	FetchedAt     time.Time
}

// ConfidencePct devuelve la confianza en porcentaje entero.
func (s Signal) ConfidencePct() int {
	return int(s.Confidence*100 + 0.5)
}

// ClampConfidence normaliza la confianza al rango [0,1].
func ClampConfidence(c float64) float64 {
	switch {
	case c < 0:
		return 0
	case c > 1:
		return 1
	}
	return c
}
