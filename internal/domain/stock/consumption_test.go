package stock_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/alcafoods/magazzino-api/internal/domain/stock"
)

// now fijo para que los buckets mensuales sean deterministas.
var testNow = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

// ──────────────────────────────────────────────────────────────────────────────
// AverageMonthlyConsumption
// ──────────────────────────────────────────────────────────────────────────────

// Tres meses con scarichi (30, 20, 10) y el resto sin actividad:
// la media divide solo entre los meses activos → 60/3 = 20.0000.
func TestAverageMonthlyConsumption_ExcluyeMesesInactivos(t *testing.T) {
	unloads := []stock.Unload{
		{Date: time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC), Quantity: d("-30")},
		{Date: time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC), Quantity: d("-20")},
		{Date: time.Date(2026, 5, 20, 0, 0, 0, 0, time.UTC), Quantity: d("-10")},
	}
	avg := stock.AverageMonthlyConsumption(unloads, testNow)
	assert.True(t, d("20.0000").Equal(avg), "esperado 20.0000, obtenido %s", avg)
}

// Varios scarichi del mismo mes se suman en un solo bucket.
func TestAverageMonthlyConsumption_AgrupaPorMes(t *testing.T) {
	unloads := []stock.Unload{
		{Date: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), Quantity: d("-5")},
		{Date: time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC), Quantity: d("-7")},
		{Date: time.Date(2026, 4, 28, 0, 0, 0, 0, time.UTC), Quantity: d("-8")},
	}
	avg := stock.AverageMonthlyConsumption(unloads, testNow)
	assert.True(t, d("20.0000").Equal(avg), "un solo mes activo: 20 en total, obtenido %s", avg)
}

// Los scarichi anteriores a la ventana de 365 días no cuentan.
func TestAverageMonthlyConsumption_VentanaMovil365(t *testing.T) {
	unloads := []stock.Unload{
		// Fuera de ventana: más de 365 días antes de testNow
		{Date: testNow.AddDate(0, 0, -400), Quantity: d("-1000")},
		// Dentro de ventana
		{Date: testNow.AddDate(0, 0, -30), Quantity: d("-12")},
	}
	avg := stock.AverageMonthlyConsumption(unloads, testNow)
	assert.True(t, d("12.0000").Equal(avg), "solo el scarico en ventana debe contar: %s", avg)
}

// Sin scarichi en la ventana el consumo es cero (no nil, no error).
func TestAverageMonthlyConsumption_SinScarichi_Cero(t *testing.T) {
	assert.True(t, stock.AverageMonthlyConsumption(nil, testNow).IsZero())
	old := []stock.Unload{{Date: testNow.AddDate(-2, 0, 0), Quantity: d("-50")}}
	assert.True(t, stock.AverageMonthlyConsumption(old, testNow).IsZero())
}

// Las cantidades llegan con el signo del ledger (negativas); la media usa magnitudes.
func TestAverageMonthlyConsumption_UsaMagnitud(t *testing.T) {
	unloads := []stock.Unload{
		{Date: time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC), Quantity: d("-9")},
	}
	avg := stock.AverageMonthlyConsumption(unloads, testNow)
	assert.True(t, avg.IsPositive(), "el consumo medio se expresa en positivo")
	assert.True(t, d("9.0000").Equal(avg))
}
