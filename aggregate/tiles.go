package aggregate

import (
	"fmt"
	"math"
)

type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
	Flat Direction = "flat"
)

// Tile is one executive summary card: today's count against yesterday's.
type Tile struct {
	Key       string    `json:"key"`
	Label     string    `json:"label"`
	Value     int       `json:"value"`
	Previous  int       `json:"previous"`
	Percent   float64   `json:"percent"`
	Direction Direction `json:"direction"`
	// Good drives the colouring. Only a rise in completed repairs is good.
	Good  bool   `json:"good"`
	Trend string `json:"trend"`
}

func NewTile(key, label string, current, previous int, higherIsBetter bool) Tile {
	pct := Delta(current, previous)

	dir := Flat
	switch {
	case pct > 0:
		dir = Up
	case pct < 0:
		dir = Down
	}

	good := pct <= 0
	if higherIsBetter {
		good = pct >= 0
	}

	return Tile{
		Key:       key,
		Label:     label,
		Value:     current,
		Previous:  previous,
		Percent:   Round2(pct),
		Direction: dir,
		Good:      good,
		Trend:     TrendText(pct),
	}
}

// TrendText renders "+12.5%" for rises and "12.5%" for falls; the arrow carries the sign.
func TrendText(pct float64) string {
	sign := ""
	if pct > 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s%.1f%%", sign, math.Abs(pct))
}
