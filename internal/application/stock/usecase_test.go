package stock_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appstock "github.com/alcafoods/magazzino-api/internal/application/stock"
	"github.com/alcafoods/magazzino-api/internal/domain"
	"github.com/alcafoods/magazzino-api/internal/domain/entity"
	"github.com/alcafoods/magazzino-api/internal/infrastructure/memory"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func dp(s string) *decimal.Decimal {
	v := d(s)
	return &v
}

// mapCache implementación en memoria del cache de valoración para los tests.
type mapCache struct {
	mu      sync.Mutex
	entries map[string]*decimal.Decimal
	hits    int
}

func newMapCache() *mapCache {
	return &mapCache{entries: make(map[string]*decimal.Decimal)}
}

func (c *mapCache) Get(_ context.Context, article, version string) (*decimal.Decimal, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	price, ok := c.entries[article+"|"+version]
	if ok {
		c.hits++
	}
	return price, ok
}

func (c *mapCache) Set(_ context.Context, article, version string, price *decimal.Decimal) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[article+"|"+version] = price
}

type stockFixture struct {
	uc        *appstock.UseCase
	movements *memory.MovementRepo
	cache     *mapCache
}

func newStockFixture(t *testing.T, safetyStock *decimal.Decimal) *stockFixture {
	t.Helper()
	articles := memory.NewArticleRepo()
	articles.Add(&entity.Article{Code: "CON-05", Description: "Concentrato", UnitMeasure: "KG", SafetyStock: safetyStock})
	movements := memory.NewMovementRepo(articles)
	cache := newMapCache()
	return &stockFixture{
		uc:        appstock.NewUseCase(articles, movements, cache),
		movements: movements,
		cache:     cache,
	}
}

func (f *stockFixture) addMovement(t *testing.T, kind, qty string, price *decimal.Decimal, date time.Time) {
	t.Helper()
	require.NoError(t, f.movements.Create(context.Background(), &entity.Movement{
		Kind: kind, Article: "CON-05", LotID: "ALCA000001",
		Site: "ALCAMO", Area: "SECCO", Quantity: d(qty), UnitPrice: price,
		EffectiveDate: date, EffectiveTime: "09:00:00",
	}))
}

// ──────────────────────────────────────────────────────────────────────────────
// Costo medio y cache versionado
// ──────────────────────────────────────────────────────────────────────────────

// La segunda consulta con el ledger sin cambios sale del cache; un movimiento
// nuevo cambia la versión y fuerza el recálculo.
func TestAverageCost_CacheVersionadoPorMovimiento(t *testing.T) {
	f := newStockFixture(t, nil)
	ctx := context.Background()
	f.addMovement(t, entity.MovementLoad, "10", dp("2.00"), time.Now())

	first, err := f.uc.AverageCost(ctx, "CON-05")
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.True(t, d("2.0000").Equal(*first))
	assert.Equal(t, 0, f.cache.hits, "la primera consulta es un miss")

	second, err := f.uc.AverageCost(ctx, "CON-05")
	require.NoError(t, err)
	assert.True(t, first.Equal(*second))
	assert.Equal(t, 1, f.cache.hits, "ledger sin cambios: hit de cache")

	// Movimiento nuevo → versión nueva → miss y recálculo
	f.addMovement(t, entity.MovementLoad, "10", dp("4.00"), time.Now())
	third, err := f.uc.AverageCost(ctx, "CON-05")
	require.NoError(t, err)
	assert.True(t, d("3.0000").Equal(*third))
	assert.Equal(t, 1, f.cache.hits, "la versión nueva no puede ser hit")
}

// Artículo sin carichi con precio: costo medio nil, también cacheable.
func TestAverageCost_NilCacheable(t *testing.T) {
	f := newStockFixture(t, nil)
	ctx := context.Background()

	price, err := f.uc.AverageCost(ctx, "CON-05")
	require.NoError(t, err)
	assert.Nil(t, price)

	price, err = f.uc.AverageCost(ctx, "CON-05")
	require.NoError(t, err)
	assert.Nil(t, price)
	assert.Equal(t, 1, f.cache.hits, "el nil también se cachea")
}

// ──────────────────────────────────────────────────────────────────────────────
// Estado de artículo: target y señal
// ──────────────────────────────────────────────────────────────────────────────

// Scorta minima 50 y consumo medio 80 → target 80; giacenza 60 → deficit 20.
func TestStatus_TargetYDeficit(t *testing.T) {
	scorta := d("50")
	f := newStockFixture(t, &scorta)
	ctx := context.Background()
	now := time.Now()

	// Giacenza: 140 cargadas, 80 consumidas el mes pasado → 60 a mano.
	// Consumo: un solo mes activo con 80 → media mensual 80.
	f.addMovement(t, entity.MovementLoad, "140", dp("1.00"), now.AddDate(0, -2, 0))
	f.addMovement(t, entity.MovementUnload, "-80", nil, now.AddDate(0, -1, 0))

	status, err := f.uc.Status(ctx, "CON-05")
	require.NoError(t, err)
	assert.True(t, d("60").Equal(status.OnHand))
	assert.True(t, d("80.0000").Equal(status.AvgMonthly))
	assert.True(t, d("80.0000").Equal(status.Target), "target = max(50, 80)")
	assert.True(t, d("20.0000").Equal(status.Signal.Deficit), "deficit = 80 - 60")
	assert.False(t, status.Signal.Balanced)
}

// Sin consumo la scorta minima manda sobre el target.
func TestStatus_ScortaMinimaComoTarget(t *testing.T) {
	scorta := d("50")
	f := newStockFixture(t, &scorta)
	f.addMovement(t, entity.MovementLoad, "70", dp("1.00"), time.Now())

	status, err := f.uc.Status(context.Background(), "CON-05")
	require.NoError(t, err)
	assert.True(t, status.AvgMonthly.IsZero())
	assert.True(t, d("50").Equal(status.Target))
	assert.True(t, d("20").Equal(status.Signal.Surplus), "70 - 50 = 20 de surplus")
}

func TestStatus_ArticoloDesconocido(t *testing.T) {
	f := newStockFixture(t, nil)
	_, err := f.uc.Status(context.Background(), "NO-EXISTE")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Vista de giacenze
// ──────────────────────────────────────────────────────────────────────────────

// La señal de cada fila compara la giacenza TOTAL del artículo con su target,
// no la de la fila: el surplus de una sede no es deficit en otra.
func TestBalances_SenalPorArticuloGlobal(t *testing.T) {
	f := newStockFixture(t, nil)
	ctx := context.Background()
	now := time.Now()

	f.addMovement(t, entity.MovementLoad, "30", dp("2.00"), now)
	require.NoError(t, f.movements.Create(ctx, &entity.Movement{
		Kind: entity.MovementLoad, Article: "CON-05", LotID: "ALCA000002",
		Site: "PALERMO", Area: "FRESCO", Quantity: d("10"), UnitPrice: dp("2.00"),
		EffectiveDate: now, EffectiveTime: "10:00:00",
	}))

	rows, err := f.uc.Balances(ctx, "", "", "")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, row := range rows {
		assert.True(t, d("2.0000").Equal(*row.AverageCost), "la valoración es global por artículo")
		assert.True(t, d("40").Equal(row.Signal.Surplus), "la señal usa la giacenza total (40)")
	}
}
