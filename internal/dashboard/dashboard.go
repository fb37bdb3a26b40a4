// Package dashboard aggregates sales and stock figures for the admin view.
package dashboard

import (
	"context"
	"fmt"

	"github.com/licorgest/licorgest/internal/api"
	"github.com/licorgest/licorgest/internal/catalog"
	"github.com/licorgest/licorgest/pkg/collection"
	"github.com/licorgest/licorgest/pkg/money"
)

// LowStockThreshold marks variants that need restocking.
const LowStockThreshold = 5

// Backend is the slice of the API client the dashboard reads from.
type Backend interface {
	ListPurchases(ctx context.Context) ([]api.Purchase, error)
	ListLineItems(ctx context.Context) ([]api.LineItem, error)
}

// DaySales is total revenue for one calendar day.
type DaySales struct {
	Date      string  `json:"date"`
	Total     float64 `json:"total"`
	Purchases int     `json:"purchases"`
}

// VariantSales is units sold for one variant.
type VariantSales struct {
	VariantID int64   `json:"variant_id"`
	Name      string  `json:"name"`
	Units     int     `json:"units"`
	Revenue   float64 `json:"revenue"`
}

// StockAlert is a variant at or below the restock threshold.
type StockAlert struct {
	VariantID int64  `json:"variant_id"`
	Name      string `json:"name"`
	Stock     int    `json:"stock"`
}

// Summary is the complete dashboard payload.
type Summary struct {
	TotalRevenue   float64        `json:"total_revenue"`
	TotalPurchases int            `json:"total_purchases"`
	SalesByDay     []DaySales     `json:"sales_by_day"`
	TopVariants    []VariantSales `json:"top_variants"`
	LowStock       []StockAlert   `json:"low_stock"`
}

// Service computes dashboard aggregates.
type Service struct {
	backend Backend
	store   *catalog.Store
}

func NewService(backend Backend, store *catalog.Store) *Service {
	return &Service{backend: backend, store: store}
}

// Summary builds the full dashboard from purchases, line items and the
// current catalog snapshot. topN bounds the best-seller list.
func (s *Service) Summary(ctx context.Context, topN int) (Summary, error) {
	purchases, err := s.backend.ListPurchases(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("dashboard: list purchases: %w", err)
	}
	items, err := s.backend.ListLineItems(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("dashboard: list line items: %w", err)
	}

	return Summary{
		TotalRevenue:   round2(collection.Sum(purchases, func(p api.Purchase) float64 { return p.Total })),
		TotalPurchases: len(purchases),
		SalesByDay:     salesByDay(purchases),
		TopVariants:    s.topVariants(items, topN),
		LowStock:       s.lowStock(),
	}, nil
}

func salesByDay(purchases []api.Purchase) []DaySales {
	byDay := collection.GroupBy(purchases, func(p api.Purchase) string { return p.Fecha })

	out := make([]DaySales, 0, len(byDay))
	for date, ps := range byDay {
		out = append(out, DaySales{
			Date:      date,
			Total:     round2(collection.Sum(ps, func(p api.Purchase) float64 { return p.Total })),
			Purchases: len(ps),
		})
	}
	return collection.SortBy(out, func(a, b DaySales) bool { return a.Date < b.Date })
}

func (s *Service) topVariants(items []api.LineItem, topN int) []VariantSales {
	snap := s.store.Snapshot()
	byVariant := collection.GroupBy(items, func(li api.LineItem) string {
		return fmt.Sprintf("%d", li.IDVariante)
	})

	out := make([]VariantSales, 0, len(byVariant))
	for _, group := range byVariant {
		id := group[0].IDVariante
		name := fmt.Sprintf("variante %d", id)
		if v, ok := snap.Get(id); ok && v.Name() != "" {
			name = v.Name()
		}
		out = append(out, VariantSales{
			VariantID: id,
			Name:      name,
			Units:     collection.Sum(group, func(li api.LineItem) int { return li.Cantidad }),
			Revenue:   round2(collection.Sum(group, func(li api.LineItem) float64 { return li.Subtotal })),
		})
	}

	collection.SortBy(out, func(a, b VariantSales) bool {
		if a.Units != b.Units {
			return a.Units > b.Units
		}
		return a.VariantID < b.VariantID
	})
	if topN > 0 && len(out) > topN {
		out = out[:topN]
	}
	return out
}

func (s *Service) lowStock() []StockAlert {
	snap := s.store.Snapshot()
	low := collection.Filter(snap.Variants, func(v api.Variant) bool {
		return v.Stock <= LowStockThreshold
	})
	alerts := collection.Map(low, func(v api.Variant) StockAlert {
		return StockAlert{VariantID: v.ID, Name: v.Name(), Stock: v.Stock}
	})
	return collection.SortBy(alerts, func(a, b StockAlert) bool {
		if a.Stock != b.Stock {
			return a.Stock < b.Stock
		}
		return a.VariantID < b.VariantID
	})
}

func round2(v float64) float64 {
	return money.FromFloat(v).Float()
}
