package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RaceResult is the outcome of a two player race.
type RaceResult struct {
	ID           uuid.UUID     `json:"id"`
	CircuitIndex int           `json:"circuitIndex"`
	WeatherScore int           `json:"weatherScore"`
	Player1      CarAttributes `json:"player1"`
	Player2      CarAttributes `json:"player2"`
	Player1Time  int64         `json:"player1Time"` // ms
	Player2Time  int64         `json:"player2Time"` // ms
	Player1Laps  []int         `json:"player1Laps,omitempty"`
	Player2Laps  []int         `json:"player2Laps,omitempty"`
	Packed       string        `json:"combinedResult"`
	PackedHex    string        `json:"encodedHex"`
	CreatedAt    time.Time     `json:"createdAt"`
}

// Winner returns 1 or 2 for the faster player, 0 on a tie.
func (r *RaceResult) Winner() int {
	switch {
	case r.Player1Time < r.Player2Time:
		return 1
	case r.Player2Time < r.Player1Time:
		return 2
	default:
		return 0
	}
}

// FormatMillis renders a millisecond duration as seconds with three decimals.
func FormatMillis(ms int64) string {
	return decimal.New(ms, -3).StringFixed(3)
}
