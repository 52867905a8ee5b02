package rates

import (
	"math"
	"time"

	"github.com/Mathoholic/exchange-updater/internal/clients/xrates"
	"github.com/Mathoholic/exchange-updater/internal/entity/series"
)

type codeResolver interface {
	Resolve(name string) (string, bool)
}

// Reshaper pivots a currency-indexed rates table into a single date-indexed row.
type Reshaper struct {
	codes codeResolver
}

func NewReshaper(codes codeResolver) *Reshaper {
	return &Reshaper{codes: codes}
}

// Reshape drops names the resolver does not know and rates that are not finite.
// The returned row is empty when nothing usable is left.
func (r *Reshaper) Reshape(raw xrates.Table, date time.Time) series.Row {
	row := series.Row{
		Date:  date.Format(series.DateLayout),
		Rates: make(map[string]float64, len(raw)),
	}
	for name, rate := range raw {
		code, ok := r.codes.Resolve(name)
		if !ok || math.IsNaN(rate) || math.IsInf(rate, 0) {
			continue
		}
		row.Rates[code] = rate
	}
	return row
}
