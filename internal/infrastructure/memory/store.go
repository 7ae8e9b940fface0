// Package memory implementa los puertos de repositorio en memoria, con transacciones
// por snapshot: si la función de la tx retorna error, el estado vuelve al snapshot.
// Se usa en pruebas de los casos de uso.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/sublirex/inventario-api/internal/application/inventory"
	"github.com/sublirex/inventario-api/internal/application/purchasing"
	"github.com/sublirex/inventario-api/internal/domain/entity"
	"github.com/sublirex/inventario-api/internal/domain/repository"
)

var (
	_ inventory.TxRunner          = (*Store)(nil)
	_ purchasing.PurchaseTxRunner = (*Store)(nil)
)

// ErrInjected es el error devuelto por las fallas programadas con FailMovementAt.
var ErrInjected = errors.New("memory: falla inyectada")

// StockKey identifica una fila de stock.
type StockKey struct {
	ProductID   string
	WarehouseID string
}

type state struct {
	purchases  map[string]entity.Purchase
	items      map[string][]entity.PurchaseItem
	stock      map[StockKey]decimal.Decimal
	movements  []entity.StockMovement
	products   map[string]entity.Product
	warehouses map[string]entity.Warehouse
	suppliers  map[string]entity.Supplier
	users      map[string]entity.User
}

func newState() state {
	return state{
		purchases:  make(map[string]entity.Purchase),
		items:      make(map[string][]entity.PurchaseItem),
		stock:      make(map[StockKey]decimal.Decimal),
		products:   make(map[string]entity.Product),
		warehouses: make(map[string]entity.Warehouse),
		suppliers:  make(map[string]entity.Supplier),
		users:      make(map[string]entity.User),
	}
}

func (s state) clone() state {
	c := newState()
	for k, v := range s.purchases {
		c.purchases[k] = v
	}
	for k, v := range s.items {
		c.items[k] = append([]entity.PurchaseItem(nil), v...)
	}
	for k, v := range s.stock {
		c.stock[k] = v
	}
	c.movements = append([]entity.StockMovement(nil), s.movements...)
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.warehouses {
		c.warehouses[k] = v
	}
	for k, v := range s.suppliers {
		c.suppliers[k] = v
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	return c
}

// Store base de datos en memoria. Las transacciones se serializan con un mutex.
type Store struct {
	mu sync.Mutex
	st state

	// failMovementAt > 0 hace fallar la N-ésima inserción de movimiento dentro de la próxima tx.
	failMovementAt int
	movementWrites int
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{st: newState()}
}

// FailMovementAt programa una falla en la n-ésima inserción de movimiento de la próxima transacción.
func (s *Store) FailMovementAt(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failMovementAt = n
}

func (s *Store) begin() state {
	s.movementWrites = 0
	return s.st.clone()
}

func (s *Store) finish(snapshot state, err error) error {
	s.failMovementAt = 0
	if err != nil {
		s.st = snapshot
	}
	return err
}

// Run implementa inventory.TxRunner.
func (s *Store) Run(ctx context.Context, fn func(
	stockRepo repository.StockRepository,
	movRepo repository.StockMovementRepository,
) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.begin()
	return s.finish(snap, fn(stockRepo{s}, movementRepo{s}))
}

// RunPurchase implementa purchasing.PurchaseTxRunner.
func (s *Store) RunPurchase(ctx context.Context, fn func(
	purchaseRepo repository.PurchaseRepository,
	stockRepo repository.StockRepository,
	movRepo repository.StockMovementRepository,
) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.begin()
	return s.finish(snap, fn(purchaseRepo{s}, stockRepo{s}, movementRepo{s}))
}

// Purchases devuelve un repositorio de compras fuera de transacción.
func (s *Store) Purchases() repository.PurchaseRepository { return lockedPurchaseRepo{s} }

// Stock devuelve un repositorio de stock fuera de transacción.
func (s *Store) Stock() repository.StockRepository { return lockedStockRepo{s} }

// Products devuelve el repositorio de productos.
func (s *Store) Products() repository.ProductRepository { return productRepo{s} }

// Warehouses devuelve el repositorio de bodegas.
func (s *Store) Warehouses() repository.WarehouseRepository { return warehouseRepo{s} }

// Suppliers devuelve el repositorio de proveedores.
func (s *Store) Suppliers() repository.SupplierRepository { return supplierRepo{s} }

// Users devuelve el repositorio de usuarios.
func (s *Store) Users() repository.UserRepository { return userRepo{s} }

// Reports devuelve el repositorio de reportes.
func (s *Store) Reports() repository.ReportRepository { return reportRepo{s} }

// AddUser registra un usuario (para pruebas de login).
func (s *Store) AddUser(u entity.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.users[u.ID] = u
}

// StockOf devuelve la cantidad en stock del par producto/bodega (cero si no existe).
func (s *Store) StockOf(productID, warehouseID string) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.stock[StockKey{productID, warehouseID}]
}

// StockRows devuelve una copia de todas las filas de stock.
func (s *Store) StockRows() map[StockKey]decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[StockKey]decimal.Decimal, len(s.st.stock))
	for k, v := range s.st.stock {
		out[k] = v
	}
	return out
}

// Movements devuelve una copia del kardex en orden de inserción.
func (s *Store) Movements() []entity.StockMovement {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entity.StockMovement(nil), s.st.movements...)
}

// MovementsBySource devuelve los movimientos de un documento origen.
func (s *Store) MovementsBySource(sourceType, sourceID string) []entity.StockMovement {
	var out []entity.StockMovement
	for _, m := range s.Movements() {
		if m.SourceType == sourceType && m.SourceID == sourceID {
			out = append(out, m)
		}
	}
	return out
}

// Purchase devuelve la cabecera guardada y si existe.
func (s *Store) Purchase(id string) (entity.Purchase, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.st.purchases[id]
	return p, ok
}

// Items devuelve las líneas guardadas de una compra.
func (s *Store) Items(purchaseID string) []entity.PurchaseItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entity.PurchaseItem(nil), s.st.items[purchaseID]...)
}

// PurchaseCount devuelve el número de compras guardadas.
func (s *Store) PurchaseCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.st.purchases)
}

// LedgerBalance suma con signo los movimientos del kardex por producto/bodega.
func (s *Store) LedgerBalance() map[StockKey]decimal.Decimal {
	out := make(map[StockKey]decimal.Decimal)
	for _, m := range s.Movements() {
		k := StockKey{m.ProductID, m.WarehouseID}
		out[k] = out[k].Add(m.SignedQuantity())
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
