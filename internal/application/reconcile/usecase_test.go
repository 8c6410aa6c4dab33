package reconcile_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alcafoods/magazzino-api/internal/application/reconcile"
	"github.com/alcafoods/magazzino-api/internal/domain"
	"github.com/alcafoods/magazzino-api/internal/domain/entity"
	"github.com/alcafoods/magazzino-api/internal/infrastructure/memory"
)

type reconcileFixture struct {
	uc        *reconcile.UseCase
	movements *memory.MovementRepo
	events    *memory.RecorderPublisher
}

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

// newReconcileFixture crea el fixture con una giacenza teórica de 100 uds del
// artículo POM-01 (lote ALCA000001) en ALCAMO/SECCO.
func newReconcileFixture(t *testing.T) *reconcileFixture {
	t.Helper()
	ctx := context.Background()

	articles := memory.NewArticleRepo()
	articles.Add(&entity.Article{Code: "POM-01", Description: "Pomodoro pelato", UnitMeasure: "KG"})
	locations := memory.NewLocationRepo()
	locations.Add(&entity.Location{Site: "ALCAMO", Area: "SECCO"})
	movements := memory.NewMovementRepo(articles)
	price := d("1.50")
	require.NoError(t, movements.Create(ctx, &entity.Movement{
		Kind: entity.MovementLoad, Article: "POM-01", LotID: "ALCA000001",
		Site: "ALCAMO", Area: "SECCO", Quantity: d("100"), UnitPrice: &price,
		EffectiveDate: time.Now(), EffectiveTime: "06:00:00",
	}))
	inventories := memory.NewInventoryRepo()
	events := memory.NewRecorderPublisher()
	txRunner := memory.NewTxRunner(movements, memory.NewLotRepo(), memory.NewTransferRepo(), memory.NewOrderRepo(), inventories)
	return &reconcileFixture{
		uc:        reconcile.NewUseCase(txRunner, locations, inventories, events),
		movements: movements,
		events:    events,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Apertura y conteo
// ──────────────────────────────────────────────────────────────────────────────

// Al abrir la sesión se fotografía la giacenza teórica por (artículo, lote).
func TestOpen_SnapshotTeorico(t *testing.T) {
	f := newReconcileFixture(t)
	view, err := f.uc.Open(context.Background(), "ALCAMO", "SECCO", "inventario mensile", "u-1")
	require.NoError(t, err)
	require.Len(t, view.Lines, 1)
	assert.Equal(t, "POM-01", view.Lines[0].Article)
	assert.Equal(t, "ALCA000001", view.Lines[0].LotID)
	assert.True(t, d("100").Equal(view.Lines[0].Theoretical))
	assert.Nil(t, view.Lines[0].Counted, "las righe nacen sin conteo")
	assert.True(t, view.Session.Open())
}

func TestOpen_UbicacionDesconocida(t *testing.T) {
	f := newReconcileFixture(t)
	_, err := f.uc.Open(context.Background(), "TRAPANI", "SECCO", "", "u-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRecordCount_ConteoNegativo(t *testing.T) {
	f := newReconcileFixture(t)
	view, err := f.uc.Open(context.Background(), "ALCAMO", "SECCO", "", "u-1")
	require.NoError(t, err)
	err = f.uc.RecordCount(context.Background(), view.Session.ID, view.Lines[0].ID, d("-1"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Envío y correctivos
// ──────────────────────────────────────────────────────────────────────────────

// Teórico 100, contado 92 → un único UNLOAD correctivo de -8, sin precio.
func TestSubmit_CorrectivoPorDiferencia(t *testing.T) {
	f := newReconcileFixture(t)
	ctx := context.Background()
	view, err := f.uc.Open(ctx, "ALCAMO", "SECCO", "", "u-1")
	require.NoError(t, err)
	require.NoError(t, f.uc.RecordCount(ctx, view.Session.ID, view.Lines[0].ID, d("92")))

	result, err := f.uc.Submit(ctx, view.Session.ID, "u-1")
	require.NoError(t, err)
	require.Len(t, result.Correctives, 1)
	assert.True(t, d("-8").Equal(result.Correctives[0].Difference))

	all := f.movements.All()
	require.Len(t, all, 2, "carico inicial + correctivo")
	corrective := all[1]
	assert.Equal(t, entity.MovementUnload, corrective.Kind)
	assert.True(t, d("-8").Equal(corrective.Quantity))
	assert.Nil(t, corrective.UnitPrice, "el correctivo no es una compra: sin precio")

	onHand, err := f.movements.BalanceOf(ctx, "POM-01", "ALCAMO", "SECCO")
	require.NoError(t, err)
	assert.True(t, d("92").Equal(onHand), "el ledger converge al conteo físico")
}

// Contado mayor que el teórico → correctivo LOAD positivo.
func TestSubmit_SobranteEmiteCarico(t *testing.T) {
	f := newReconcileFixture(t)
	ctx := context.Background()
	view, err := f.uc.Open(ctx, "ALCAMO", "SECCO", "", "u-1")
	require.NoError(t, err)
	require.NoError(t, f.uc.RecordCount(ctx, view.Session.ID, view.Lines[0].ID, d("105")))

	result, err := f.uc.Submit(ctx, view.Session.ID, "u-1")
	require.NoError(t, err)
	require.Len(t, result.Correctives, 1)
	assert.True(t, d("5").Equal(result.Correctives[0].Difference))
	assert.Equal(t, entity.MovementLoad, f.movements.All()[1].Kind)
}

// Contado igual al teórico → ningún correctivo.
func TestSubmit_SinDiferenciaSinCorrectivo(t *testing.T) {
	f := newReconcileFixture(t)
	ctx := context.Background()
	view, err := f.uc.Open(ctx, "ALCAMO", "SECCO", "", "u-1")
	require.NoError(t, err)
	require.NoError(t, f.uc.RecordCount(ctx, view.Session.ID, view.Lines[0].ID, d("100")))

	result, err := f.uc.Submit(ctx, view.Session.ID, "u-1")
	require.NoError(t, err)
	assert.Empty(t, result.Correctives)
	assert.Len(t, f.movements.All(), 1, "solo el carico inicial")
}

// Riga no contada: se salta. No contar NO es contar cero.
func TestSubmit_RigaNoContadaSeSalta(t *testing.T) {
	f := newReconcileFixture(t)
	ctx := context.Background()
	view, err := f.uc.Open(ctx, "ALCAMO", "SECCO", "", "u-1")
	require.NoError(t, err)

	result, err := f.uc.Submit(ctx, view.Session.ID, "u-1")
	require.NoError(t, err)
	assert.Empty(t, result.Correctives, "sin conteos no hay correctivos")
}

// Contar cero sí es un conteo: el correctivo vacía la giacenza del lote.
func TestSubmit_ConteoCeroEsConteo(t *testing.T) {
	f := newReconcileFixture(t)
	ctx := context.Background()
	view, err := f.uc.Open(ctx, "ALCAMO", "SECCO", "", "u-1")
	require.NoError(t, err)
	require.NoError(t, f.uc.RecordCount(ctx, view.Session.ID, view.Lines[0].ID, d("0")))

	result, err := f.uc.Submit(ctx, view.Session.ID, "u-1")
	require.NoError(t, err)
	require.Len(t, result.Correctives, 1)
	assert.True(t, d("-100").Equal(result.Correctives[0].Difference))
}

// ──────────────────────────────────────────────────────────────────────────────
// At-most-once
// ──────────────────────────────────────────────────────────────────────────────

// El segundo envío de la misma sesión falla y no duplica correctivos.
func TestSubmit_AtMostOnce(t *testing.T) {
	f := newReconcileFixture(t)
	ctx := context.Background()
	view, err := f.uc.Open(ctx, "ALCAMO", "SECCO", "", "u-1")
	require.NoError(t, err)
	require.NoError(t, f.uc.RecordCount(ctx, view.Session.ID, view.Lines[0].ID, d("90")))

	_, err = f.uc.Submit(ctx, view.Session.ID, "u-1")
	require.NoError(t, err)
	_, err = f.uc.Submit(ctx, view.Session.ID, "u-1")
	assert.ErrorIs(t, err, domain.ErrAlreadySubmitted)

	assert.Len(t, f.movements.All(), 2, "el reenvío no debe duplicar el correctivo")

	submitted := 0
	for _, ev := range f.events.Events() {
		if ev.Kind == domain.EventInventorySubmitted {
			submitted++
		}
	}
	assert.Equal(t, 1, submitted)
}

// Tras el envío la sesión es inmutable: los conteos se rechazan.
func TestRecordCount_SesionEnviada(t *testing.T) {
	f := newReconcileFixture(t)
	ctx := context.Background()
	view, err := f.uc.Open(ctx, "ALCAMO", "SECCO", "", "u-1")
	require.NoError(t, err)
	_, err = f.uc.Submit(ctx, view.Session.ID, "u-1")
	require.NoError(t, err)

	err = f.uc.RecordCount(ctx, view.Session.ID, view.Lines[0].ID, d("50"))
	assert.ErrorIs(t, err, domain.ErrAlreadySubmitted)
}
