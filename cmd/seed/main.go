// Package main provides a CLI tool for creating the schema and loading demo
// purchasing data.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"supplyscope/internal/config"
	"supplyscope/internal/core/id"
	"supplyscope/internal/core/types"
	"supplyscope/internal/domain/batch"
	"supplyscope/internal/domain/catalogs/product"
	"supplyscope/internal/domain/catalogs/supplier"
	"supplyscope/internal/infrastructure/storage/postgres"
	"supplyscope/internal/infrastructure/storage/postgres/batch_repo"
	"supplyscope/internal/infrastructure/storage/postgres/catalog_repo"
	"supplyscope/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalw("failed to load config", "error", err)
	}

	ctx := context.Background()

	poolCfg := postgres.DefaultPoolConfig(cfg.Database.URL)
	poolCfg.AppName = "supplyscope-seed"
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	if err := postgres.ApplySchema(ctx, pool); err != nil {
		log.Fatalw("failed to apply schema", "error", err)
	}
	log.Info("schema applied")

	if os.Getenv("SEED_DEMO_DATA") != "true" {
		log.Info("SEED_DEMO_DATA not set, skipping demo data")
		return
	}

	txm := postgres.NewTxManager(pool)
	suppliers := catalog_repo.NewSupplierRepo(txm)

	existing, err := suppliers.List(ctx, true)
	if err != nil {
		log.Fatalw("failed to list suppliers", "error", err)
	}
	if len(existing) > 0 {
		log.Infow("demo data already present", "suppliers", len(existing))
		return
	}

	data := buildDemoData(time.Now().UTC())

	err = txm.RunInTransaction(ctx, func(ctx context.Context) error {
		for _, s := range data.suppliers {
			if err := suppliers.Create(ctx, s); err != nil {
				return fmt.Errorf("create supplier %q: %w", s.Name, err)
			}
		}
		products := catalog_repo.NewProductRepo(txm)
		for _, p := range data.products {
			if err := products.Create(ctx, p); err != nil {
				return fmt.Errorf("create product %q: %w", p.Name, err)
			}
		}
		n, err := batch_repo.NewBatchRepo(txm).CreateMany(ctx, data.batches)
		if err != nil {
			return fmt.Errorf("load batches: %w", err)
		}
		log.Infow("batches loaded", "count", n)
		return nil
	})
	if err != nil {
		log.Fatalw("failed to seed demo data", "error", err)
	}

	log.Infow("seeding completed successfully",
		"suppliers", len(data.suppliers),
		"products", len(data.products),
	)
}

type demoData struct {
	suppliers []*supplier.Supplier
	products  []*product.Product
	batches   []batch.Batch
}

// supplierProfile drives how a demo supplier's history looks.
type supplierProfile struct {
	name     string
	email    string
	orders   int
	lateDays int // delivery delay applied to every third order
	pending  bool
	deleted  bool
}

var profiles = []supplierProfile{
	{name: "Acme Produce", email: "orders@acme.example", orders: 10},
	{name: "Fresh Farms", email: "sales@freshfarms.example", orders: 8, lateDays: 5, pending: true},
	{name: "Harbor Foods", email: "hello@harbor.example", orders: 2, pending: true},
	{name: "Northwind Dairy", email: "supply@northwind.example", orders: 6, lateDays: 2},
	{name: "Legacy Goods", orders: 4, deleted: true},
}

var productNames = []string{"Tomatoes", "Olive Oil", "Mozzarella", "Basil", "Flour"}

func buildDemoData(now time.Time) demoData {
	var d demoData
	for _, name := range productNames {
		d.products = append(d.products, product.NewProduct(name))
	}

	receipt := 1000
	for si, prof := range profiles {
		s := supplier.NewSupplier(prof.name)
		s.CreatedAt = now.AddDate(-1, 0, 0)
		s.UpdatedAt = s.CreatedAt
		if prof.email != "" {
			email := prof.email
			s.Email = &email
		}
		if prof.deleted {
			s.MarkDeleted()
		}
		d.suppliers = append(d.suppliers, s)

		for o := 0; o < prof.orders; o++ {
			receipt++
			created := now.AddDate(0, -prof.orders+o, -si)
			lines := 1 + (o+si)%3
			for l := 0; l < lines; l++ {
				p := d.products[(o+l+si)%len(d.products)]
				d.batches = append(d.batches, completedBatch(s.ID, p.ID, created, receipt, o, l, prof.lateDays))
			}
		}

		if prof.pending {
			receipt++
			created := now.AddDate(0, 0, -2)
			expected := created.AddDate(0, 0, 7)
			d.batches = append(d.batches, batch.Batch{
				ID:                   id.New(),
				SupplierID:           s.ID,
				ProductID:            d.products[si%len(d.products)].ID,
				QuantityReceived:     50,
				QuantityRemaining:    50,
				CostPrice:            types.ValidMoney(types.MustMoney("12.40")),
				Status:               batch.StatusPending,
				CreatedAt:            &created,
				ExpectedDeliveryDate: &expected,
				Notes:                fmt.Sprintf("Receipt: RCPT-%d", receipt),
			})
		}
	}
	return d
}

func completedBatch(supplierID, productID id.ID, created time.Time, receipt, order, line, lateDays int) batch.Batch {
	expected := created.AddDate(0, 0, 4)
	received := expected
	if lateDays > 0 && order%3 == 2 {
		received = expected.AddDate(0, 0, lateDays)
	}

	qty := 20 + 10*line + order
	remaining := 0
	status := batch.StatusInactive
	if order%2 == 0 {
		remaining = qty / 2
		status = batch.StatusActive
	}

	notes := fmt.Sprintf("Receipt: RCPT-%d", receipt)
	if line > 0 {
		notes = fmt.Sprintf("Receipt: RCPT-%d | line %d", receipt, line+1)
	}

	return batch.Batch{
		ID:                   id.New(),
		SupplierID:           supplierID,
		ProductID:            productID,
		QuantityReceived:     qty,
		QuantityRemaining:    remaining,
		CostPrice:            types.ValidMoney(types.NewMoneyFromInt(int64(15 + 5*line))),
		Status:               status,
		CreatedAt:            &created,
		ExpectedDeliveryDate: &expected,
		DateReceived:         &received,
		Notes:                notes,
	}
}
