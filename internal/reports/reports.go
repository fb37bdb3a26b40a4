// Package reports generates CSV exports from the inventory API and keeps a
// local ledger of everything generated.
//
// The ledger is the only durable state the POS owns; report files land on
// the configured storage disk and their metadata in a sqlite database, so
// the reports screen can list past exports without re-querying the API.
package reports

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/licorgest/licorgest/internal/api"
	"github.com/licorgest/licorgest/internal/catalog"
	"github.com/licorgest/licorgest/pkg/collection"
	"github.com/licorgest/licorgest/pkg/logger"
	"github.com/licorgest/licorgest/pkg/storage"
)

// Report types recorded in the ledger.
const (
	TypeSales = "sales"
	TypeStock = "stock"
)

// Report is one generated export in the ledger.
type Report struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Type        string    `gorm:"size:32;not null;index" json:"type"`
	Path        string    `gorm:"size:512;not null" json:"path"`
	SizeBytes   int64     `json:"size_bytes"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Backend is the slice of the API client reports read from.
type Backend interface {
	ListPurchases(ctx context.Context) ([]api.Purchase, error)
	ListLineItems(ctx context.Context) ([]api.LineItem, error)
}

// Service generates exports and manages the ledger.
type Service struct {
	db      *gorm.DB
	backend Backend
	store   *catalog.Store
	now     func() time.Time
}

// Open connects the sqlite ledger at dsn and migrates the schema.
func Open(dsn string, backend Backend, store *catalog.Store) (*Service, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("reports: open ledger: %w", err)
	}
	if err := db.AutoMigrate(&Report{}); err != nil {
		return nil, fmt.Errorf("reports: migrate ledger: %w", err)
	}
	return &Service{db: db, backend: backend, store: store, now: time.Now}, nil
}

// List returns ledger entries, newest first.
func (s *Service) List() ([]Report, error) {
	var out []Report
	if err := s.db.Order("generated_at desc").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("reports: list: %w", err)
	}
	return out, nil
}

// Delete removes a ledger entry and its file.
func (s *Service) Delete(id uint) error {
	var r Report
	if err := s.db.First(&r, id).Error; err != nil {
		return fmt.Errorf("reports: find %d: %w", id, err)
	}
	if err := storage.Delete(r.Path); err != nil {
		logger.Warn("reports: delete file failed", "path", r.Path, "error", err)
	}
	if err := s.db.Delete(&Report{}, id).Error; err != nil {
		return fmt.Errorf("reports: delete %d: %w", id, err)
	}
	return nil
}

// File returns the stored bytes of a generated report.
func (s *Service) File(id uint) (Report, []byte, error) {
	var r Report
	if err := s.db.First(&r, id).Error; err != nil {
		return Report{}, nil, fmt.Errorf("reports: find %d: %w", id, err)
	}
	raw, err := storage.Get(r.Path)
	if err != nil {
		return Report{}, nil, fmt.Errorf("reports: read %s: %w", r.Path, err)
	}
	return r, raw, nil
}

// GenerateSales exports purchases between from and to (inclusive, both
// YYYY-MM-DD) with their line items, writes the CSV to storage, and records
// it in the ledger.
func (s *Service) GenerateSales(ctx context.Context, from, to string) (Report, error) {
	purchases, err := s.backend.ListPurchases(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("reports: list purchases: %w", err)
	}
	items, err := s.backend.ListLineItems(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("reports: list line items: %w", err)
	}

	inRange := collection.Filter(purchases, func(p api.Purchase) bool {
		return (from == "" || p.Fecha >= from) && (to == "" || p.Fecha <= to)
	})
	collection.SortBy(inRange, func(a, b api.Purchase) bool {
		if a.Fecha != b.Fecha {
			return a.Fecha < b.Fecha
		}
		return a.ID < b.ID
	})

	byPurchase := collection.GroupBy(items, func(li api.LineItem) string {
		return strconv.FormatInt(li.IDCompra, 10)
	})
	snap := s.store.Snapshot()

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Write([]string{"fecha", "compra_id", "usuario_id", "variante", "cantidad", "subtotal", "total_compra"})
	for _, p := range inRange {
		lines := byPurchase[strconv.FormatInt(p.ID, 10)]
		if len(lines) == 0 {
			w.Write([]string{p.Fecha, i64(p.ID), i64(p.IDUsuario), "", "", "", f2(p.Total)})
			continue
		}
		for _, li := range lines {
			name := i64(li.IDVariante)
			if v, ok := snap.Get(li.IDVariante); ok && v.Name() != "" {
				name = v.Name()
			}
			w.Write([]string{
				p.Fecha, i64(p.ID), i64(p.IDUsuario),
				name, strconv.Itoa(li.Cantidad), f2(li.Subtotal), f2(p.Total),
			})
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return Report{}, fmt.Errorf("reports: write csv: %w", err)
	}

	name := fmt.Sprintf("ventas_%s_%s", orAll(from), orAll(to))
	return s.save(name, TypeSales, buf.Bytes())
}

// GenerateStock exports the current catalog snapshot as a stock listing.
func (s *Service) GenerateStock(ctx context.Context) (Report, error) {
	snap := s.store.Snapshot()
	if len(snap.Variants) == 0 {
		if _, err := s.store.Refresh(ctx); err != nil {
			return Report{}, fmt.Errorf("reports: refresh catalog: %w", err)
		}
		snap = s.store.Snapshot()
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Write([]string{"variante_id", "producto", "categoria", "presentacion", "precio", "stock"})
	for _, v := range snap.Variants {
		w.Write([]string{
			i64(v.ID), v.Name(), v.CategoryName(), v.Cantidad, f2(v.Precio), strconv.Itoa(v.Stock),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return Report{}, fmt.Errorf("reports: write csv: %w", err)
	}

	return s.save("stock", TypeStock, buf.Bytes())
}

func (s *Service) save(name, reportType string, content []byte) (Report, error) {
	generated := s.now()
	path := fmt.Sprintf("reports/%s_%s.csv", name, generated.Format("20060102_150405"))

	if err := storage.Put(path, content); err != nil {
		return Report{}, fmt.Errorf("reports: store %s: %w", path, err)
	}

	r := Report{
		Name:        name,
		Type:        reportType,
		Path:        path,
		SizeBytes:   int64(len(content)),
		GeneratedAt: generated,
	}
	if err := s.db.Create(&r).Error; err != nil {
		return Report{}, fmt.Errorf("reports: record %s: %w", path, err)
	}

	logger.Info("reports: generated", "type", reportType, "path", path, "bytes", r.SizeBytes)
	return r, nil
}

func i64(v int64) string  { return strconv.FormatInt(v, 10) }
func f2(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }

func orAll(s string) string {
	if s == "" {
		return "todo"
	}
	return s
}
