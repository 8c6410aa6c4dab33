// Package memory implementa los puertos de persistencia en memoria.
// Se usa en los tests de los casos de uso: mismo contrato que los adaptadores
// de PostgreSQL (incluidos los errores sentinela), sin base de datos.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/alcafoods/magazzino-api/internal/application/ports"
	"github.com/alcafoods/magazzino-api/internal/domain"
	"github.com/alcafoods/magazzino-api/internal/domain/entity"
	"github.com/alcafoods/magazzino-api/internal/domain/repository"
	"github.com/alcafoods/magazzino-api/internal/domain/stock"
)

// ── Artículos ─────────────────────────────────────────────────────────────────

// ArticleRepo catálogo de artículos en memoria.
type ArticleRepo struct {
	mu       sync.RWMutex
	articles map[string]*entity.Article
}

// NewArticleRepo construye el repo vacío.
func NewArticleRepo() *ArticleRepo {
	return &ArticleRepo{articles: make(map[string]*entity.Article)}
}

// Add registra un artículo (seed de test).
func (r *ArticleRepo) Add(a *entity.Article) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.articles[a.Code] = a
}

func (r *ArticleRepo) GetByCode(_ context.Context, code string) (*entity.Article, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.articles[code], nil
}

func (r *ArticleRepo) List(_ context.Context, includeArchived bool, limit, offset int) ([]*entity.Article, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var list []*entity.Article
	for _, a := range r.articles {
		if a.Archived && !includeArchived {
			continue
		}
		list = append(list, a)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Code < list[j].Code })
	if offset >= len(list) {
		return nil, nil
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list, nil
}

// ── Ubicaciones ───────────────────────────────────────────────────────────────

// LocationRepo ubicaciones en memoria.
type LocationRepo struct {
	mu        sync.RWMutex
	locations map[string]*entity.Location
}

// NewLocationRepo construye el repo vacío.
func NewLocationRepo() *LocationRepo {
	return &LocationRepo{locations: make(map[string]*entity.Location)}
}

func locationKey(site, area string) string { return site + "|" + area }

// Add registra una ubicación (seed de test).
func (r *LocationRepo) Add(l *entity.Location) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.locations[locationKey(l.Site, l.Area)] = l
}

func (r *LocationRepo) Get(_ context.Context, site, area string) (*entity.Location, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.locations[locationKey(site, area)], nil
}

func (r *LocationRepo) List(_ context.Context) ([]*entity.Location, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var list []*entity.Location
	for _, l := range r.locations {
		list = append(list, l)
	}
	sort.Slice(list, func(i, j int) bool {
		return locationKey(list[i].Site, list[i].Area) < locationKey(list[j].Site, list[j].Area)
	})
	return list, nil
}

// ── Lotes ─────────────────────────────────────────────────────────────────────

// LotRepo lotes en memoria con secuencia monótona propia.
type LotRepo struct {
	mu       sync.Mutex
	seq      int64
	byID     map[string]*entity.Lot
	byTriple map[string]*entity.Lot
}

// NewLotRepo construye el repo vacío.
func NewLotRepo() *LotRepo {
	return &LotRepo{byID: make(map[string]*entity.Lot), byTriple: make(map[string]*entity.Lot)}
}

func tripleKey(article, supplierLot string, expiry time.Time) string {
	return strings.Join([]string{article, supplierLot, expiry.Format("2006-01-02")}, "|")
}

func (r *LotRepo) NextSeq(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	return r.seq, nil
}

func (r *LotRepo) Create(_ context.Context, lot *entity.Lot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byTriple[tripleKey(lot.Article, lot.SupplierLot, lot.Expiry)]; ok {
		return fmt.Errorf("create lot: %w", domain.ErrDuplicateLot)
	}
	if _, ok := r.byID[lot.ID]; ok {
		return fmt.Errorf("create lot: %w", domain.ErrConflict)
	}
	r.byID[lot.ID] = lot
	r.byTriple[tripleKey(lot.Article, lot.SupplierLot, lot.Expiry)] = lot
	return nil
}

func (r *LotRepo) GetByID(_ context.Context, id string) (*entity.Lot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byID[id], nil
}

// GetForUpdate lee el lote sin lock propio: la exclusión la da el TxRunner en
// memoria, que serializa las transacciones completas.
func (r *LotRepo) GetForUpdate(ctx context.Context, id string) (*entity.Lot, error) {
	return r.GetByID(ctx, id)
}

func (r *LotRepo) FindByTriple(_ context.Context, article, supplierLot string, expiry time.Time) (*entity.Lot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byTriple[tripleKey(article, supplierLot, expiry)], nil
}

func (r *LotRepo) ListByArticle(_ context.Context, article string) ([]*entity.Lot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var list []*entity.Lot
	for _, lot := range r.byID {
		if lot.Article == article {
			list = append(list, lot)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].InternalSeq < list[j].InternalSeq })
	return list, nil
}

// ── Ledger de movimientos ─────────────────────────────────────────────────────

// MovementRepo ledger append-only en memoria. articles es opcional y solo se
// usa para resolver la unidad de medida en LotBalancesAt.
type MovementRepo struct {
	mu        sync.Mutex
	movements []*entity.Movement
	articles  *ArticleRepo
}

// NewMovementRepo construye el ledger vacío. articles puede ser nil.
func NewMovementRepo(articles *ArticleRepo) *MovementRepo {
	return &MovementRepo{articles: articles}
}

func (r *MovementRepo) Create(_ context.Context, m *entity.Movement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	r.movements = append(r.movements, m)
	return nil
}

// All devuelve una copia del ledger completo (aserciones de test).
func (r *MovementRepo) All() []*entity.Movement {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*entity.Movement, len(r.movements))
	copy(out, r.movements)
	return out
}

func (r *MovementRepo) List(_ context.Context, f repository.MovementFilter) ([]*entity.Movement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var list []*entity.Movement
	for _, m := range r.movements {
		if f.Article != "" && m.Article != f.Article {
			continue
		}
		if f.Site != "" && m.Site != f.Site {
			continue
		}
		if f.Area != "" && m.Area != f.Area {
			continue
		}
		if f.LotID != "" && m.LotID != f.LotID {
			continue
		}
		if f.Kind != "" && m.Kind != f.Kind {
			continue
		}
		if f.From != nil && m.EffectiveDate.Before(*f.From) {
			continue
		}
		if f.To != nil && m.EffectiveDate.After(*f.To) {
			continue
		}
		list = append(list, m)
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].EffectiveDate.Equal(list[j].EffectiveDate) {
			return list[i].EffectiveDate.After(list[j].EffectiveDate)
		}
		return list[i].EffectiveTime > list[j].EffectiveTime
	})
	if f.Limit > 0 && f.Limit < len(list) {
		list = list[:f.Limit]
	}
	return list, nil
}

func (r *MovementRepo) BalanceOf(_ context.Context, article, site, area string) (decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sum := decimal.Zero
	for _, m := range r.movements {
		if m.Article == article && m.Site == site && m.Area == area {
			sum = sum.Add(m.Quantity)
		}
	}
	return sum, nil
}

func (r *MovementRepo) LotBalanceOf(_ context.Context, article, lotID, site, area string) (decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sum := decimal.Zero
	for _, m := range r.movements {
		if m.Article == article && m.LotID == lotID && m.Site == site && m.Area == area {
			sum = sum.Add(m.Quantity)
		}
	}
	return sum, nil
}

func (r *MovementRepo) BalancesFor(ctx context.Context, article string) ([]repository.LocationBalance, error) {
	return r.Balances(ctx, article, "", "")
}

func (r *MovementRepo) Balances(_ context.Context, article, site, area string) ([]repository.LocationBalance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sums := make(map[string]*repository.LocationBalance)
	for _, m := range r.movements {
		if article != "" && m.Article != article {
			continue
		}
		if site != "" && m.Site != site {
			continue
		}
		if area != "" && m.Area != area {
			continue
		}
		key := strings.Join([]string{m.Article, m.Site, m.Area}, "|")
		b, ok := sums[key]
		if !ok {
			b = &repository.LocationBalance{Article: m.Article, Site: m.Site, Area: m.Area}
			sums[key] = b
		}
		b.OnHand = b.OnHand.Add(m.Quantity)
	}
	var list []repository.LocationBalance
	for _, b := range sums {
		list = append(list, *b)
	}
	sort.Slice(list, func(i, j int) bool {
		ki := strings.Join([]string{list[i].Article, list[i].Site, list[i].Area}, "|")
		kj := strings.Join([]string{list[j].Article, list[j].Site, list[j].Area}, "|")
		return ki < kj
	})
	return list, nil
}

func (r *MovementRepo) LotBalancesAt(ctx context.Context, site, area string) ([]repository.LotBalance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sums := make(map[string]*repository.LotBalance)
	for _, m := range r.movements {
		if m.Site != site || m.Area != area {
			continue
		}
		key := m.Article + "|" + m.LotID
		b, ok := sums[key]
		if !ok {
			b = &repository.LotBalance{Article: m.Article, LotID: m.LotID}
			sums[key] = b
		}
		b.OnHand = b.OnHand.Add(m.Quantity)
	}
	var list []repository.LotBalance
	for _, b := range sums {
		if b.OnHand.IsZero() {
			continue
		}
		if r.articles != nil {
			if a, _ := r.articles.GetByCode(ctx, b.Article); a != nil {
				b.UnitMeasure = a.UnitMeasure
			}
		}
		list = append(list, *b)
	}
	sort.Slice(list, func(i, j int) bool {
		ki := list[i].Article + "|" + list[i].LotID
		kj := list[j].Article + "|" + list[j].LotID
		return ki < kj
	})
	return list, nil
}

func (r *MovementRepo) PricedLoads(_ context.Context, article string) ([]stock.PricedLoad, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var list []stock.PricedLoad
	for _, m := range r.movements {
		if m.Article == article && m.Kind == entity.MovementLoad && m.UnitPrice != nil {
			list = append(list, stock.PricedLoad{Quantity: m.Quantity, UnitPrice: *m.UnitPrice})
		}
	}
	return list, nil
}

func (r *MovementRepo) UnloadsSince(_ context.Context, article string, from time.Time) ([]stock.Unload, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var list []stock.Unload
	for _, m := range r.movements {
		if m.Article == article && m.Kind == entity.MovementUnload && !m.EffectiveDate.Before(from) {
			list = append(list, stock.Unload{Date: m.EffectiveDate, Quantity: m.Quantity})
		}
	}
	return list, nil
}

func (r *MovementRepo) LatestMovementID(_ context.Context, article string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.movements) - 1; i >= 0; i-- {
		if r.movements[i].Article == article {
			return r.movements[i].ID, nil
		}
	}
	return "", nil
}

func (r *MovementRepo) ReceivedByOrderLines(_ context.Context, lineIDs []int64) (map[int64]decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	wanted := make(map[int64]bool, len(lineIDs))
	for _, id := range lineIDs {
		wanted[id] = true
	}
	result := make(map[int64]decimal.Decimal)
	for _, m := range r.movements {
		if m.Kind != entity.MovementLoad || m.OrderLineID == nil || !wanted[*m.OrderLineID] {
			continue
		}
		result[*m.OrderLineID] = result[*m.OrderLineID].Add(m.Quantity)
	}
	return result, nil
}

// ── Trasferimenti ─────────────────────────────────────────────────────────────

// TransferRepo trasferimenti en memoria.
type TransferRepo struct {
	mu        sync.Mutex
	transfers map[string]*entity.Transfer
	order     []string
}

// NewTransferRepo construye el repo vacío.
func NewTransferRepo() *TransferRepo {
	return &TransferRepo{transfers: make(map[string]*entity.Transfer)}
}

func (r *TransferRepo) Create(_ context.Context, t *entity.Transfer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.transfers[t.ID]; ok {
		return fmt.Errorf("create transfer: %w", domain.ErrConflict)
	}
	r.transfers[t.ID] = t
	r.order = append(r.order, t.ID)
	return nil
}

func (r *TransferRepo) GetByID(_ context.Context, id string) (*entity.Transfer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.transfers[id], nil
}

func (r *TransferRepo) List(_ context.Context, f repository.TransferFilter) ([]*entity.Transfer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var list []*entity.Transfer
	for _, id := range r.order {
		t := r.transfers[id]
		if f.Article != "" && t.Article != f.Article {
			continue
		}
		if f.FromSite != "" && t.FromSite != f.FromSite {
			continue
		}
		if f.ToSite != "" && t.ToSite != f.ToSite {
			continue
		}
		if f.From != nil && t.EffectiveDate.Before(*f.From) {
			continue
		}
		if f.To != nil && t.EffectiveDate.After(*f.To) {
			continue
		}
		list = append(list, t)
	}
	return list, nil
}

// ── Ordini ────────────────────────────────────────────────────────────────────

// OrderRepo ordini en memoria con ids autoincrementales.
type OrderRepo struct {
	mu      sync.Mutex
	nextID  int64
	orders  map[int64]*entity.Order
	lines   map[int64]*entity.OrderLine
	byOrder map[int64][]int64
}

// NewOrderRepo construye el repo vacío.
func NewOrderRepo() *OrderRepo {
	return &OrderRepo{
		orders:  make(map[int64]*entity.Order),
		lines:   make(map[int64]*entity.OrderLine),
		byOrder: make(map[int64][]int64),
	}
}

func (r *OrderRepo) CreateHeader(_ context.Context, order *entity.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	order.ID = r.nextID
	r.orders[order.ID] = order
	return nil
}

func (r *OrderRepo) CreateLine(_ context.Context, line *entity.OrderLine) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[line.OrderID]; !ok {
		return fmt.Errorf("create order line: %w", domain.ErrNotFound)
	}
	r.nextID++
	line.ID = r.nextID
	r.lines[line.ID] = line
	r.byOrder[line.OrderID] = append(r.byOrder[line.OrderID], line.ID)
	return nil
}

func (r *OrderRepo) GetByID(_ context.Context, id int64) (*entity.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.orders[id], nil
}

func (r *OrderRepo) GetLine(_ context.Context, lineID int64) (*entity.OrderLine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lines[lineID], nil
}

func (r *OrderRepo) ListLines(_ context.Context, orderID int64) ([]*entity.OrderLine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var list []*entity.OrderLine
	for _, id := range r.byOrder[orderID] {
		list = append(list, r.lines[id])
	}
	return list, nil
}

// ── Inventario ────────────────────────────────────────────────────────────────

// InventoryRepo sesiones de inventario en memoria.
type InventoryRepo struct {
	mu        sync.Mutex
	nextID    int64
	sessions  map[int64]*entity.InventorySession
	lines     map[int64]*entity.InventoryLine
	bySession map[int64][]int64
}

// NewInventoryRepo construye el repo vacío.
func NewInventoryRepo() *InventoryRepo {
	return &InventoryRepo{
		sessions:  make(map[int64]*entity.InventorySession),
		lines:     make(map[int64]*entity.InventoryLine),
		bySession: make(map[int64][]int64),
	}
}

func (r *InventoryRepo) CreateSession(_ context.Context, s *entity.InventorySession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	s.ID = r.nextID
	r.sessions[s.ID] = s
	return nil
}

func (r *InventoryRepo) CreateLine(_ context.Context, l *entity.InventoryLine) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[l.SessionID]; !ok {
		return fmt.Errorf("create inventory line: %w", domain.ErrNotFound)
	}
	r.nextID++
	l.ID = r.nextID
	r.lines[l.ID] = l
	r.bySession[l.SessionID] = append(r.bySession[l.SessionID], l.ID)
	return nil
}

func (r *InventoryRepo) GetSession(_ context.Context, id int64) (*entity.InventorySession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions[id], nil
}

func (r *InventoryRepo) ListSessions(_ context.Context, site, area string, onlyOpen bool) ([]*entity.InventorySession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var list []*entity.InventorySession
	for _, s := range r.sessions {
		if site != "" && s.Site != site {
			continue
		}
		if area != "" && s.Area != area {
			continue
		}
		if onlyOpen && !s.Open() {
			continue
		}
		list = append(list, s)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (r *InventoryRepo) ListLines(_ context.Context, sessionID int64) ([]*entity.InventoryLine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var list []*entity.InventoryLine
	for _, id := range r.bySession[sessionID] {
		list = append(list, r.lines[id])
	}
	return list, nil
}

func (r *InventoryRepo) GetLine(_ context.Context, sessionID, lineID int64) (*entity.InventoryLine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l := r.lines[lineID]
	if l == nil || l.SessionID != sessionID {
		return nil, nil
	}
	return l, nil
}

func (r *InventoryRepo) UpdateCount(_ context.Context, lineID int64, counted decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l := r.lines[lineID]
	if l == nil {
		return fmt.Errorf("update count: %w", domain.ErrNotFound)
	}
	l.Counted = &counted
	return nil
}

// ClaimSubmission marca la sesión como enviada solo si sigue abierta. Mismo
// contrato at-most-once que el UPDATE condicional de PostgreSQL.
func (r *InventoryRepo) ClaimSubmission(_ context.Context, sessionID int64, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.sessions[sessionID]
	if s == nil {
		return false, fmt.Errorf("claim submission: %w", domain.ErrNotFound)
	}
	if s.SubmittedAt != nil {
		return false, nil
	}
	s.SubmittedAt = &at
	return true, nil
}

// ── TxRunner y publisher ──────────────────────────────────────────────────────

// TxRunner pasa los repos en memoria tal cual: no simula rollback, y serializa
// las transacciones completas con un mutex (el equivalente grueso del lock por
// fila de FOR UPDATE). Suficiente para los tests de casos de uso, que asertan
// sobre el ledger resultante.
type TxRunner struct {
	mu    sync.Mutex
	Repos ports.TxRepos
}

// NewTxRunner agrupa los repos en memoria como unidad transaccional.
func NewTxRunner(movements *MovementRepo, lots *LotRepo, transfers *TransferRepo, orders *OrderRepo, inventories *InventoryRepo) *TxRunner {
	return &TxRunner{Repos: ports.TxRepos{
		Movements:   movements,
		Lots:        lots,
		Transfers:   transfers,
		Orders:      orders,
		Inventories: inventories,
	}}
}

func (t *TxRunner) Run(_ context.Context, fn func(repos ports.TxRepos) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return fn(t.Repos)
}

// RecorderPublisher acumula los eventos publicados (aserciones de test).
type RecorderPublisher struct {
	mu     sync.Mutex
	events []domain.Event
}

// NewRecorderPublisher construye el recorder vacío.
func NewRecorderPublisher() *RecorderPublisher {
	return &RecorderPublisher{}
}

func (p *RecorderPublisher) Publish(_ context.Context, event domain.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

// Events devuelve una copia de los eventos publicados.
func (p *RecorderPublisher) Events() []domain.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.Event, len(p.events))
	copy(out, p.events)
	return out
}

// Comprobaciones de contrato en compile-time.
var (
	_ repository.ArticleRepository   = (*ArticleRepo)(nil)
	_ repository.LocationRepository  = (*LocationRepo)(nil)
	_ repository.LotRepository       = (*LotRepo)(nil)
	_ repository.MovementRepository  = (*MovementRepo)(nil)
	_ repository.TransferRepository  = (*TransferRepo)(nil)
	_ repository.OrderRepository     = (*OrderRepo)(nil)
	_ repository.InventoryRepository = (*InventoryRepo)(nil)
	_ ports.TxRunner                 = (*TxRunner)(nil)
	_ repository.EventPublisher      = (*RecorderPublisher)(nil)
)
