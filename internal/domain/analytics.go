package domain

import (
	"sort"
	"time"
)

// hotColdSize es cuántos dígitos se listan como calientes/fríos.
const hotColdSize = 3

// Pattern es un patrón detectado en los últimos dígitos.
type Pattern struct {
	Type       string // "streak" | "alternating"
	Digit      int
	Length     int
	Pattern    string
	Confidence float64
}

// DigitAnalytics es el snapshot de frecuencia de último dígito de un símbolo.
type DigitAnalytics struct {
	Symbol      string
	Frequency   [10]int
	Percentages [10]float64
	Even, Odd   int
	Over, Under int
	TotalTicks  int
	Hot         []int
	Cold        []int
	Patterns    []Pattern
	LastDigits  []int
	Heatmap     []HeatmapRow
	Fallback    bool
	At          time.Time
}

// HotCold devuelve los dígitos más y menos frecuentes. A igual frecuencia
// gana el dígito menor, para que el resultado sea estable.
func HotCold(freq [10]int) (hot, cold []int) {
	digits := make([]int, 10)
	for i := range digits {
		digits[i] = i
	}
	sort.SliceStable(digits, func(i, j int) bool {
		return freq[digits[i]] > freq[digits[j]]
	})
	hot = append([]int(nil), digits[:hotColdSize]...)

	sort.SliceStable(digits, func(i, j int) bool {
		if freq[digits[i]] == freq[digits[j]] {
			return digits[i] < digits[j]
		}
		return freq[digits[i]] < freq[digits[j]]
	})
	cold = append([]int(nil), digits[:hotColdSize]...)
	return hot, cold
}

// Probability es la estimación del backend para un tipo de contrato.
type Probability struct {
	Symbol       string
	ContractType string
	Probability  float64
	Confidence   string // low | medium | high
	SampleSize   int
}

// heatmapRows es cuántas filas de diez dígitos muestra el heatmap.
const heatmapRows = 10

// HeatmapRow es una fila de diez dígitos consecutivos con su reparto
// over/under. Over cuenta dígitos > 5; Under el resto.
type HeatmapRow struct {
	Row    int
	Digits []int
	Over   int
	Under  int
}

// BuildHeatmap parte los dígitos en filas completas de diez y devuelve las
// últimas diez filas. Los dígitos sobrantes al final se ignoran.
func BuildHeatmap(digits []int) []HeatmapRow {
	var rows []HeatmapRow
	for i := 0; i+10 <= len(digits); i += 10 {
		row := HeatmapRow{Row: i / 10, Digits: append([]int(nil), digits[i:i+10]...)}
		for _, d := range row.Digits {
			if d > 5 {
				row.Over++
			} else {
				row.Under++
			}
		}
		rows = append(rows, row)
	}
	if len(rows) > heatmapRows {
		rows = rows[len(rows)-heatmapRows:]
	}
	return rows
}
