package monitor

import (
	"fmt"
	"sort"

	"github.com/hyuoka/workpal/internal/models"
	"github.com/hyuoka/workpal/internal/signals"
)

// ma25Tolerance is the touch band as a fraction of the current price.
const ma25Tolerance = 0.005

// kindOrder fixes the evaluation order when a symbol carries alerts of
// several kinds.
var kindOrder = map[string]int{
	models.AlertPriceAbove: 0,
	models.AlertPriceBelow: 1,
	models.AlertMA25Touch:  2,
}

// sortForEvaluation orders alerts by kind, then by creation time, so a
// cycle always evaluates them in a stable order.
func sortForEvaluation(alerts []models.Alert) {
	sort.SliceStable(alerts, func(i, j int) bool {
		oi, oj := kindOrder[alerts[i].Kind], kindOrder[alerts[j].Kind]
		if oi != oj {
			return oi < oj
		}
		return alerts[i].CreatedAt.Before(alerts[j].CreatedAt)
	})
}

// evaluate checks one alert against the symbol's current state and
// returns the notification text when the condition holds. Inactive
// alerts never match. A ma25_touch alert with no MA25 yet is skipped.
func evaluate(alert *models.Alert, symbol *models.WatchedSymbol) (bool, string) {
	if !alert.Active {
		return false, ""
	}

	switch alert.Kind {
	case models.AlertPriceAbove:
		if symbol.Price >= alert.Target {
			return true, fmt.Sprintf("%s reached %.2f (target %.2f)", symbol.Symbol, symbol.Price, alert.Target)
		}
	case models.AlertPriceBelow:
		if symbol.Price <= alert.Target {
			return true, fmt.Sprintf("%s fell to %.2f (target %.2f)", symbol.Symbol, symbol.Price, alert.Target)
		}
	case models.AlertMA25Touch:
		if symbol.MA25 == nil {
			return false, ""
		}
		if signals.WithinBand(symbol.Price, *symbol.MA25, ma25Tolerance) {
			return true, fmt.Sprintf("%s touched its 25-day average %.2f (price %.2f)", symbol.Symbol, *symbol.MA25, symbol.Price)
		}
	}
	return false, ""
}
