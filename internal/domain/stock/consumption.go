package stock

import (
	"time"

	"github.com/shopspring/decimal"
)

// Unload es la proyección mínima de un movimiento UNLOAD para estimar consumo.
type Unload struct {
	Date     time.Time
	Quantity decimal.Decimal // con signo como en el ledger (negativa)
}

// AverageMonthlyConsumption estima el consumo mensual medio de un artículo en
// la ventana móvil de 365 días antes de now: agrupa los UNLOAD por mes
// calendario (YYYY-MM), suma la magnitud por mes y promedia sobre los meses
// que tuvieron al menos un scarico. Los meses sin actividad NO cuentan en el
// denominador. Devuelve 0 si no hubo scarichi en la ventana. 4 decimales.
func AverageMonthlyConsumption(unloads []Unload, now time.Time) decimal.Decimal {
	from := now.AddDate(0, 0, -365)

	perMonth := make(map[string]decimal.Decimal)
	for _, u := range unloads {
		if u.Date.Before(from) || u.Date.After(now) {
			continue
		}
		month := u.Date.Format("2006-01")
		perMonth[month] = perMonth[month].Add(u.Quantity.Abs())
	}

	if len(perMonth) == 0 {
		return decimal.Zero
	}

	total := decimal.Zero
	for _, q := range perMonth {
		total = total.Add(q)
	}
	return total.Div(decimal.NewFromInt(int64(len(perMonth)))).Round(4)
}
