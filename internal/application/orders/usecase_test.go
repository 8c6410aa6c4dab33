package orders_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alcafoods/magazzino-api/internal/application/orders"
	appstock "github.com/alcafoods/magazzino-api/internal/application/stock"
	"github.com/alcafoods/magazzino-api/internal/domain"
	"github.com/alcafoods/magazzino-api/internal/domain/entity"
	"github.com/alcafoods/magazzino-api/internal/infrastructure/memory"
)

type orderFixture struct {
	uc        *orders.UseCase
	movements *memory.MovementRepo
	lots      *memory.LotRepo
	orders    *memory.OrderRepo
	events    *memory.RecorderPublisher
}

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

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	articles := memory.NewArticleRepo()
	articles.Add(&entity.Article{Code: "FAR-00", Description: "Farina 00", UnitMeasure: "KG"})
	articles.Add(&entity.Article{Code: "SAL-FI", Description: "Sale fino", UnitMeasure: "KG"})
	locations := memory.NewLocationRepo()
	locations.Add(&entity.Location{Site: "ALCAMO", Area: "SECCO"})
	lotRepo := memory.NewLotRepo()
	movements := memory.NewMovementRepo(articles)
	orderRepo := memory.NewOrderRepo()
	events := memory.NewRecorderPublisher()
	txRunner := memory.NewTxRunner(movements, lotRepo, memory.NewTransferRepo(), orderRepo, memory.NewInventoryRepo())
	stockUC := appstock.NewUseCase(articles, movements, nil)
	return &orderFixture{
		uc:        orders.NewUseCase(txRunner, articles, locations, orderRepo, movements, stockUC, events),
		movements: movements,
		lots:      lotRepo,
		orders:    orderRepo,
		events:    events,
	}
}

// seedLoad carga stock con precio para que el artículo tenga costo medio.
func (f *orderFixture) seedLoad(t *testing.T, article, qty, price string) {
	t.Helper()
	require.NoError(t, f.movements.Create(context.Background(), &entity.Movement{
		Kind: entity.MovementLoad, Article: article, LotID: "ALCA000099",
		Site: "ALCAMO", Area: "SECCO", Quantity: d(qty), UnitPrice: dp(price),
		EffectiveDate: time.Now(), EffectiveTime: "07:00:00",
	}))
}

func orderWith(lines ...orders.LineInput) orders.CreateInput {
	return orders.CreateInput{Number: "ORD-2026-001", Supplier: "Molino Riggi", Lines: lines}
}

// ──────────────────────────────────────────────────────────────────────────────
// Creación y snapshot de precio
// ──────────────────────────────────────────────────────────────────────────────

// La riga congela el costo medio del momento: los carichi posteriores no lo mueven.
func TestCreate_SnapshotCongelado(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	f.seedLoad(t, "FAR-00", "10", "2.00")
	f.seedLoad(t, "FAR-00", "5", "5.00") // media = 3.0000

	created, err := f.uc.Create(ctx, orderWith(orders.LineInput{Article: "FAR-00", OrderedQty: d("100")}))
	require.NoError(t, err)
	require.Len(t, created.Lines, 1)
	require.NotNil(t, created.Lines[0].PriceSnapshot)
	assert.True(t, d("3.0000").Equal(*created.Lines[0].PriceSnapshot))

	// Un carico posterior muy caro no toca el snapshot persistido
	f.seedLoad(t, "FAR-00", "100", "50.00")
	line, err := f.orders.GetLine(ctx, created.Lines[0].ID)
	require.NoError(t, err)
	assert.True(t, d("3.0000").Equal(*line.PriceSnapshot), "el snapshot no se recalcula nunca")
}

// Artículo sin carichi con precio: el snapshot queda nil, no cero.
func TestCreate_SnapshotNilSinCostoMedio(t *testing.T) {
	f := newOrderFixture(t)
	created, err := f.uc.Create(context.Background(), orderWith(orders.LineInput{Article: "SAL-FI", OrderedQty: d("40")}))
	require.NoError(t, err)
	assert.Nil(t, created.Lines[0].PriceSnapshot)
}

func TestCreate_SinRighe(t *testing.T) {
	f := newOrderFixture(t)
	_, err := f.uc.Create(context.Background(), orderWith())
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCreate_ArticoloDesconocido(t *testing.T) {
	f := newOrderFixture(t)
	_, err := f.uc.Create(context.Background(), orderWith(orders.LineInput{Article: "NO-EXISTE", OrderedQty: d("1")}))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Residuo de evasione
// ──────────────────────────────────────────────────────────────────────────────

// Riga de 100 con carichi de 40 y 30 → residuo 30. El estado es derivado del
// ledger, no hay columna de estado que pueda desincronizarse.
func TestResiduals_DerivadosDelLedger(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	created, err := f.uc.Create(ctx, orderWith(orders.LineInput{Article: "FAR-00", OrderedQty: d("100")}))
	require.NoError(t, err)
	lineID := created.Lines[0].ID

	_, err = f.uc.FulfillReceipt(ctx, orders.ReceiptInput{
		OrderID: created.Order.ID, Site: "ALCAMO", Area: "SECCO",
		Lines: []orders.ReceiptLine{{
			OrderLineID: lineID, Quantity: d("40"), SupplierLot: "R-1",
			Expiry: time.Date(2027, 1, 31, 0, 0, 0, 0, time.UTC), UnitPrice: dp("2.10"),
		}},
	})
	require.NoError(t, err)
	_, err = f.uc.FulfillReceipt(ctx, orders.ReceiptInput{
		OrderID: created.Order.ID, Site: "ALCAMO", Area: "SECCO",
		Lines: []orders.ReceiptLine{{
			OrderLineID: lineID, Quantity: d("30"), SupplierLot: "R-2",
			Expiry: time.Date(2027, 2, 28, 0, 0, 0, 0, time.UTC), UnitPrice: dp("2.15"),
		}},
	})
	require.NoError(t, err)

	residuals, err := f.uc.Residuals(ctx, created.Order.ID)
	require.NoError(t, err)
	require.Len(t, residuals, 1)
	assert.True(t, d("70").Equal(residuals[0].Received))
	assert.True(t, d("30").Equal(residuals[0].Residual), "100 - 40 - 30 = 30")
}

// Riga sin carichi: residuo igual a la cantidad ordenada.
func TestResiduals_SinCarichi(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	created, err := f.uc.Create(ctx, orderWith(orders.LineInput{Article: "FAR-00", OrderedQty: d("25")}))
	require.NoError(t, err)

	residuals, err := f.uc.Residuals(ctx, created.Order.ID)
	require.NoError(t, err)
	require.Len(t, residuals, 1)
	assert.True(t, residuals[0].Received.IsZero())
	assert.True(t, d("25").Equal(residuals[0].Residual))
}

// ──────────────────────────────────────────────────────────────────────────────
// Evasione de ricevimenti
// ──────────────────────────────────────────────────────────────────────────────

// El ricevimento crea el lote si no existe y enlaza el carico a la riga d'ordine.
func TestFulfillReceipt_CreaLotYEnlazaCarico(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	created, err := f.uc.Create(ctx, orderWith(orders.LineInput{Article: "FAR-00", OrderedQty: d("50")}))
	require.NoError(t, err)
	lineID := created.Lines[0].ID

	result, err := f.uc.FulfillReceipt(ctx, orders.ReceiptInput{
		OrderID: created.Order.ID, Site: "ALCAMO", Area: "SECCO",
		Lines: []orders.ReceiptLine{{
			OrderLineID: lineID, Quantity: d("50"), SupplierLot: "R-7",
			Expiry: time.Date(2027, 5, 31, 0, 0, 0, 0, time.UTC), UnitPrice: dp("1.95"),
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.MovementsCreated)
	assert.Equal(t, 1, result.LotsCreated)

	all := f.movements.All()
	require.Len(t, all, 1)
	assert.Equal(t, entity.MovementLoad, all[0].Kind)
	require.NotNil(t, all[0].OrderLineID)
	assert.Equal(t, lineID, *all[0].OrderLineID)
}

// La riga sin precio se carga igualmente y levanta el evento de prezzo da definire.
func TestFulfillReceipt_SinPrecioNotifica(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	created, err := f.uc.Create(ctx, orderWith(orders.LineInput{Article: "FAR-00", OrderedQty: d("50")}))
	require.NoError(t, err)

	result, err := f.uc.FulfillReceipt(ctx, orders.ReceiptInput{
		OrderID: created.Order.ID, Site: "ALCAMO", Area: "SECCO",
		Lines: []orders.ReceiptLine{{
			OrderLineID: created.Lines[0].ID, Quantity: d("50"), SupplierLot: "R-8",
			Expiry: time.Date(2027, 5, 31, 0, 0, 0, 0, time.UTC),
		}},
	})
	require.NoError(t, err, "el camión no espera al ufficio: el carico entra sin precio")
	assert.Equal(t, 1, result.MovementsCreated)

	var kinds []string
	for _, ev := range f.events.Events() {
		kinds = append(kinds, ev.Kind)
	}
	assert.Contains(t, kinds, domain.EventPriceToDefine)

	// Un carico sin precio no participa en la valoración
	loads, err := f.movements.PricedLoads(ctx, "FAR-00")
	require.NoError(t, err)
	assert.Empty(t, loads)
}

// Las righe con cantidad cero se saltan; un ricevimento solo de ceros es inválido.
func TestFulfillReceipt_CantidadCero(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	created, err := f.uc.Create(ctx, orderWith(orders.LineInput{Article: "FAR-00", OrderedQty: d("50")}))
	require.NoError(t, err)

	_, err = f.uc.FulfillReceipt(ctx, orders.ReceiptInput{
		OrderID: created.Order.ID, Site: "ALCAMO", Area: "SECCO",
		Lines: []orders.ReceiptLine{{OrderLineID: created.Lines[0].ID, Quantity: d("0")}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, f.movements.All())
}

// Una riga de otro ordine no puede evadirse contra este.
func TestFulfillReceipt_RigaAjena(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	first, err := f.uc.Create(ctx, orderWith(orders.LineInput{Article: "FAR-00", OrderedQty: d("10")}))
	require.NoError(t, err)
	second, err := f.uc.Create(ctx, orders.CreateInput{
		Number: "ORD-2026-002", Supplier: "Molino Riggi",
		Lines: []orders.LineInput{{Article: "SAL-FI", OrderedQty: d("5")}},
	})
	require.NoError(t, err)

	_, err = f.uc.FulfillReceipt(ctx, orders.ReceiptInput{
		OrderID: first.Order.ID, Site: "ALCAMO", Area: "SECCO",
		Lines: []orders.ReceiptLine{{
			OrderLineID: second.Lines[0].ID, Quantity: d("5"), SupplierLot: "X-1",
			Expiry: time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC),
		}},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// Dos ricevimenti con el mismo lotto fornitore y scadenza reusan el lote.
func TestFulfillReceipt_ReusaLotExistente(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	created, err := f.uc.Create(ctx, orderWith(orders.LineInput{Article: "FAR-00", OrderedQty: d("100")}))
	require.NoError(t, err)

	receipt := func(qty string) (*orders.ReceiptResult, error) {
		return f.uc.FulfillReceipt(ctx, orders.ReceiptInput{
			OrderID: created.Order.ID, Site: "ALCAMO", Area: "SECCO",
			Lines: []orders.ReceiptLine{{
				OrderLineID: created.Lines[0].ID, Quantity: d(qty), SupplierLot: "R-9",
				Expiry: time.Date(2027, 8, 31, 0, 0, 0, 0, time.UTC), UnitPrice: dp("2.00"),
			}},
		})
	}
	first, err := receipt("60")
	require.NoError(t, err)
	assert.Equal(t, 1, first.LotsCreated)
	second, err := receipt("40")
	require.NoError(t, err)
	assert.Equal(t, 0, second.LotsCreated, "la misma tripla reusa el lote")

	all := f.movements.All()
	require.Len(t, all, 2)
	assert.Equal(t, all[0].LotID, all[1].LotID)
}
