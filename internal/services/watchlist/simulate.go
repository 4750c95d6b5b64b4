package watchlist

import (
	"math/rand"

	"github.com/hyuoka/workpal/internal/models"
	"github.com/hyuoka/workpal/internal/signals"
)

// Simulation parameters. With no API key configured each symbol gets a
// synthetic random-walk history so the dashboard and the alert loop
// stay exercisable offline.
const (
	simBaseMin    = 1000.0
	simBaseSpan   = 10000.0 // base price in [1000, 11000)
	simJitter     = 250.0   // per-step move in [-250, 250)
	simSampleSize = historyLimit
)

// simulate synthesizes a full WatchedSymbol for the given ticker.
func (s *Service) simulate(symbol string) *models.WatchedSymbol {
	base := simBaseMin + rand.Float64()*simBaseSpan

	history := make([]float64, simSampleSize)
	price := base
	for i := range history {
		price += (rand.Float64() - 0.5) * 2 * simJitter
		if price < 1 {
			price = 1
		}
		history[i] = price
	}

	current := history[len(history)-1]
	previous := history[len(history)-2]
	change, changePct := signals.Change(current, previous)

	return &models.WatchedSymbol{
		Symbol:        symbol,
		Price:         current,
		Change:        change,
		ChangePercent: changePct,
		History:       history,
		MA25:          signals.MA25(history),
		Simulated:     true,
		UpdatedAt:     s.now(),
	}
}
