// Package checkout turns a cart into a committed sale on the inventory API.
//
// The API has no multi-row transaction endpoint, so the sequencer drives the
// sale as a client-side saga: post the purchase header, post every line item
// in parallel, patch each variant's stock, then re-fetch the catalog and
// clear the cart. If any line item fails, everything already written is
// compensated (line items and header deleted) and the cart is handed back
// untouched so the cashier can retry.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/licorgest/licorgest/internal/api"
	"github.com/licorgest/licorgest/internal/cart"
	"github.com/licorgest/licorgest/internal/catalog"
	"github.com/licorgest/licorgest/internal/identity"
	"github.com/licorgest/licorgest/pkg/logger"
	"github.com/licorgest/licorgest/pkg/metrics"
	"github.com/licorgest/licorgest/pkg/money"
	"github.com/licorgest/licorgest/pkg/workerpool"
	"github.com/licorgest/licorgest/pkg/ws"
)

// Rejection reasons for carts that never reach the API.
var (
	ErrEmptyCart  = errors.New("checkout: cart is empty")
	ErrNoIdentity = errors.New("checkout: no user identity could be resolved")
)

// Backend is the slice of the API client the sequencer drives.
type Backend interface {
	CreatePurchase(ctx context.Context, p api.Purchase) (api.Purchase, error)
	DeletePurchase(ctx context.Context, id int64) error
	CreateLineItem(ctx context.Context, li api.LineItem) (api.LineItem, error)
	DeleteLineItem(ctx context.Context, id int64) error
	PatchStock(ctx context.Context, id int64, stock int) error
}

// Result summarizes a committed sale.
type Result struct {
	PurchaseID int64       `json:"purchase_id"`
	Total      money.Cents `json:"-"`
	TotalText  string      `json:"total"`
	Items      int         `json:"items"`
	UserID     int64       `json:"user_id"`
	UserSource string      `json:"user_source"`
}

// Sequencer submits carts against the inventory API.
type Sequencer struct {
	backend Backend
	store   *catalog.Store
	pool    *workerpool.Pool
	hub     *ws.Hub
	audit   interface {
		Info(msg string, args ...any)
		Warn(msg string, args ...any)
	}
	now func() time.Time
}

// Option configures a Sequencer.
type Option func(*Sequencer)

// WithHub sets the WebSocket hub notified after a committed sale.
func WithHub(h *ws.Hub) Option { return func(s *Sequencer) { s.hub = h } }

// WithClock overrides the purchase-date clock. Used by tests.
func WithClock(now func() time.Time) Option { return func(s *Sequencer) { s.now = now } }

// New builds a sequencer. workers bounds the concurrent line-item posts.
func New(backend Backend, store *catalog.Store, workers int, opts ...Option) *Sequencer {
	s := &Sequencer{
		backend: backend,
		store:   store,
		pool:    workerpool.New(workers),
		audit:   logger.Audit(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Close releases the line-item worker pool.
func (s *Sequencer) Close() { s.pool.Shutdown() }

// Submit runs the full checkout sequence for c on behalf of who.
//
// Regardless of outcome the catalog is re-fetched at the end, so the shelf
// reflects whatever the API now believes. On success the cart is cleared;
// on failure it is unlocked with its contents intact.
func (s *Sequencer) Submit(ctx context.Context, c *cart.Cart, who identity.Resolution) (Result, error) {
	start := time.Now()

	lines, err := s.guard(c, who)
	if err != nil {
		metrics.CheckoutsTotal.WithLabelValues("rejected").Inc()
		return Result{}, err
	}

	result, err := s.commit(ctx, lines, who)

	// Always converge on the API's view, even after a failed sale.
	if _, rerr := s.store.Refresh(ctx); rerr != nil {
		logger.Warn("checkout: post-submit catalog refresh failed", "error", rerr)
	}

	if err != nil {
		c.Unfreeze()
		metrics.CheckoutsTotal.WithLabelValues("failed").Inc()
		s.audit.Warn("checkout failed",
			"user_id", who.UserID, "user_source", who.Source, "error", err.Error())
		return Result{}, err
	}

	c.CommitClear()
	metrics.CheckoutsTotal.WithLabelValues("committed").Inc()
	metrics.CheckoutDuration.Observe(time.Since(start).Seconds())

	s.audit.Info("checkout committed",
		"purchase_id", result.PurchaseID,
		"total", result.TotalText,
		"items", result.Items,
		"user_id", who.UserID,
		"user_source", who.Source)

	if s.hub != nil {
		s.hub.BroadcastEvent("stock_changed", map[string]interface{}{
			"purchase_id": result.PurchaseID,
			"items":       result.Items,
		})
	}

	return result, nil
}

// guard validates preconditions and freezes the cart for submission.
func (s *Sequencer) guard(c *cart.Cart, who identity.Resolution) ([]cart.Line, error) {
	if c.Empty() {
		return nil, ErrEmptyCart
	}
	if !who.Resolved() {
		return nil, ErrNoIdentity
	}
	lines, err := c.Freeze()
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}
	return lines, nil
}

func (s *Sequencer) commit(ctx context.Context, lines []cart.Line, who identity.Resolution) (Result, error) {
	var total money.Cents
	for _, l := range lines {
		total += l.Subtotal()
	}

	purchase, err := s.backend.CreatePurchase(ctx, api.Purchase{
		Fecha:     s.now().Format("2006-01-02"),
		Total:     total.Float(),
		IDUsuario: who.UserID,
	})
	if err != nil {
		return Result{}, fmt.Errorf("checkout: create purchase: %w", err)
	}

	created, err := s.postLineItems(ctx, purchase.ID, lines)
	if err != nil {
		s.compensate(ctx, purchase.ID, created)
		return Result{}, err
	}

	// Stock patches come after the sale is durable. A patch failure is
	// logged but does not void the sale; the post-submit re-fetch picks up
	// whatever level the API settled on.
	for _, l := range lines {
		if err := s.backend.PatchStock(ctx, l.VariantID, l.Stock-l.Qty); err != nil {
			logger.Warn("checkout: stock patch failed",
				"variant_id", l.VariantID, "error", err)
		}
	}

	return Result{
		PurchaseID: purchase.ID,
		Total:      total,
		TotalText:  total.String(),
		Items:      len(lines),
		UserID:     who.UserID,
		UserSource: who.Source,
	}, nil
}

// postLineItems writes all sale lines in parallel and returns the ids that
// made it, along with the first error encountered.
func (s *Sequencer) postLineItems(ctx context.Context, purchaseID int64, lines []cart.Line) ([]int64, error) {
	var (
		mu       sync.Mutex
		created  []int64
		firstErr error
		wg       sync.WaitGroup
	)

	for _, l := range lines {
		l := l
		wg.Add(1)
		task := func() {
			defer wg.Done()
			item, err := s.backend.CreateLineItem(ctx, api.LineItem{
				Cantidad:   l.Qty,
				Subtotal:   l.Subtotal().Float(),
				IDCompra:   purchaseID,
				IDVariante: l.VariantID,
			})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = fmt.Errorf("checkout: line item for variant %d: %w", l.VariantID, err)
				}
				return
			}
			created = append(created, item.ID)
		}
		if err := s.pool.SubmitWait(task); err != nil {
			wg.Done()
			mu.Lock()
			if firstErr == nil {
				firstErr = fmt.Errorf("checkout: submit line item task: %w", err)
			}
			mu.Unlock()
		}
	}

	wg.Wait()
	return created, firstErr
}

// compensate undoes a partially written sale: every line item that made it,
// then the purchase header. Compensation errors are logged, not returned;
// the sale is already being reported as failed.
func (s *Sequencer) compensate(ctx context.Context, purchaseID int64, lineItemIDs []int64) {
	for _, id := range lineItemIDs {
		if err := s.backend.DeleteLineItem(ctx, id); err != nil {
			logger.Warn("checkout: compensation delete line item failed",
				"line_item_id", id, "error", err)
		}
	}
	if err := s.backend.DeletePurchase(ctx, purchaseID); err != nil {
		logger.Warn("checkout: compensation delete purchase failed",
			"purchase_id", purchaseID, "error", err)
	}
	logger.Info("checkout: compensated partial sale",
		"purchase_id", purchaseID, "line_items_removed", len(lineItemIDs))
}
