package lots_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alcafoods/magazzino-api/internal/application/lots"
	"github.com/alcafoods/magazzino-api/internal/domain"
	"github.com/alcafoods/magazzino-api/internal/domain/entity"
	"github.com/alcafoods/magazzino-api/internal/infrastructure/memory"
)

func newLotFixture() (*lots.UseCase, *memory.LotRepo, *memory.ArticleRepo) {
	articles := memory.NewArticleRepo()
	articles.Add(&entity.Article{Code: "FAR-00", Description: "Farina 00", UnitMeasure: "KG"})
	lotRepo := memory.NewLotRepo()
	txRunner := memory.NewTxRunner(memory.NewMovementRepo(articles), lotRepo, memory.NewTransferRepo(), memory.NewOrderRepo(), memory.NewInventoryRepo())
	return lots.NewUseCase(txRunner, lotRepo, articles), lotRepo, articles
}

func expiry(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

// ──────────────────────────────────────────────────────────────────────────────
// Emisión de BATCH_ID
// ──────────────────────────────────────────────────────────────────────────────

// El BATCH_ID emitido tiene el formato ALCA + 6 cifras con padding.
func TestIssue_FormatoALCA(t *testing.T) {
	uc, _, _ := newLotFixture()
	id, err := uc.Issue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ALCA000001", id)
}

// Emisiones sucesivas producen ids distintos y estrictamente crecientes
// (también lexicográficamente, gracias al padding fijo).
func TestIssue_MonotonoCreciente(t *testing.T) {
	uc, _, _ := newLotFixture()
	ctx := context.Background()

	var prev string
	seen := make(map[string]bool)
	for i := 0; i < 25; i++ {
		id, err := uc.Issue(ctx)
		require.NoError(t, err)
		assert.False(t, seen[id], "id repetido: %s", id)
		seen[id] = true
		if prev != "" {
			assert.Greater(t, id, prev, "los ids deben crecer: %s después de %s", id, prev)
		}
		prev = id
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Creación de lotes
// ──────────────────────────────────────────────────────────────────────────────

func TestCreate_LotConIdentidadEmitida(t *testing.T) {
	uc, _, _ := newLotFixture()
	lot, err := uc.Create(context.Background(), lots.CreateInput{
		Article:     "FAR-00",
		SupplierLot: "L-2026-017",
		Expiry:      expiry("2026-12-31"),
	})
	require.NoError(t, err)
	assert.Equal(t, "ALCA000001", lot.ID)
	assert.Equal(t, int64(1), lot.InternalSeq)
	assert.Equal(t, "FAR-00", lot.Article)
}

// La misma tripla (artículo, lotto fornitore, scadenza) es un duplicado: 409,
// distinguible de los errores de validación.
func TestCreate_TriplaDuplicada(t *testing.T) {
	uc, _, _ := newLotFixture()
	ctx := context.Background()
	in := lots.CreateInput{Article: "FAR-00", SupplierLot: "L-1", Expiry: expiry("2027-01-31")}

	_, err := uc.Create(ctx, in)
	require.NoError(t, err)
	_, err = uc.Create(ctx, in)
	assert.ErrorIs(t, err, domain.ErrDuplicateLot)
}

// Mismo lotto fornitore pero scadenza distinta NO es duplicado: es otro lote.
func TestCreate_MismaEtiquetaScadenzaDistinta(t *testing.T) {
	uc, _, _ := newLotFixture()
	ctx := context.Background()

	first, err := uc.Create(ctx, lots.CreateInput{Article: "FAR-00", SupplierLot: "L-1", Expiry: expiry("2027-01-31")})
	require.NoError(t, err)
	second, err := uc.Create(ctx, lots.CreateInput{Article: "FAR-00", SupplierLot: "L-1", Expiry: expiry("2027-02-28")})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestCreate_ArticoloDesconocido(t *testing.T) {
	uc, _, _ := newLotFixture()
	_, err := uc.Create(context.Background(), lots.CreateInput{
		Article:     "NO-EXISTE",
		SupplierLot: "L-1",
		Expiry:      expiry("2027-01-31"),
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// FindOrCreate y Resolve
// ──────────────────────────────────────────────────────────────────────────────

// FindOrCreate devuelve el lote existente sin emitir identidad nueva.
func TestFindOrCreate_ReusaLotExistente(t *testing.T) {
	_, lotRepo, _ := newLotFixture()
	ctx := context.Background()

	first, created, err := lots.FindOrCreate(ctx, lotRepo, "FAR-00", "L-9", expiry("2026-10-01"))
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := lots.FindOrCreate(ctx, lotRepo, "FAR-00", "L-9", expiry("2026-10-01"))
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
}

// racingLotRepo simula un ricevimento concurrente: justo antes de cada insert,
// otro writer registra la misma tripla y gana la carrera. Ejercita el contrato
// del puerto: el duplicado devuelve ErrDuplicateLot sin invalidar la
// transacción, así que la relectura posterior debe encontrar al ganador.
type racingLotRepo struct {
	*memory.LotRepo
	winner *entity.Lot
}

func (r *racingLotRepo) Create(ctx context.Context, lot *entity.Lot) error {
	if r.winner != nil {
		w := r.winner
		r.winner = nil
		if err := r.LotRepo.Create(ctx, w); err != nil {
			return err
		}
	}
	return r.LotRepo.Create(ctx, lot)
}

// Si otro writer crea la misma tripla entre el find y el insert, FindOrCreate
// relee dentro de la misma transacción y devuelve el lote ganador en vez de
// propagar el duplicado.
func TestFindOrCreate_CarreraDevuelveElGanador(t *testing.T) {
	ctx := context.Background()
	scadenza := expiry("2026-11-30")
	winner := &entity.Lot{
		ID: "ALCA000099", InternalSeq: 99, Article: "FAR-00",
		SupplierLot: "L-7", Expiry: scadenza, CreatedAt: time.Now(),
	}
	repo := &racingLotRepo{LotRepo: memory.NewLotRepo(), winner: winner}

	lot, createdNew, err := lots.FindOrCreate(ctx, repo, "FAR-00", "L-7", scadenza)
	require.NoError(t, err, "el duplicado concurrente no debe propagarse")
	assert.False(t, createdNew)
	assert.Equal(t, "ALCA000099", lot.ID, "debe devolverse el lote del writer ganador")

	// El repo sigue usable tras el conflicto: el insert duplicado no lo invalida
	again, err := repo.FindByTriple(ctx, "FAR-00", "L-7", scadenza)
	require.NoError(t, err)
	require.NotNil(t, again)
	assert.Equal(t, "ALCA000099", again.ID)
}

func TestResolve_BatchIDDesconocido(t *testing.T) {
	uc, _, _ := newLotFixture()
	_, err := uc.Resolve(context.Background(), "ALCA999999")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// Resolve devuelve el payload de trazabilidad completo: lote + artículo.
func TestResolve_PayloadTrazabilidad(t *testing.T) {
	uc, _, _ := newLotFixture()
	ctx := context.Background()

	lot, err := uc.Create(ctx, lots.CreateInput{Article: "FAR-00", SupplierLot: "L-3", Expiry: expiry("2026-09-15")})
	require.NoError(t, err)

	resolved, err := uc.Resolve(ctx, lot.ID)
	require.NoError(t, err)
	assert.Equal(t, lot.ID, resolved.Lot.ID)
	require.NotNil(t, resolved.Article)
	assert.Equal(t, "Farina 00", resolved.Article.Description)
}
