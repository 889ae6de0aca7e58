//go:build integration
// +build integration

package benchmarks

import (
	"context"
	"fmt"
	"testing"

	"github.com/ammerola/optica-pos/internal/adapters/db"
	"github.com/ammerola/optica-pos/internal/core/domain"
	"github.com/ammerola/optica-pos/internal/core/services"
	"github.com/ammerola/optica-pos/test/helpers"
)

func BenchmarkCreateSale(b *testing.B) {
	testDB := helpers.SetupTestDB(b)
	pool := testDB.PgxPool
	logger := helpers.TestLogger()

	catalog := db.NewCatalogRepository(testDB.Database, logger)
	ledger := db.NewInventoryLedger(testDB.Database, logger)
	sales := services.NewSaleService(services.SaleDeps{
		Tx:      testDB.Database,
		Catalog: catalog,
		Ledger:  ledger,
		Sales:   db.NewSaleRepository(testDB.Database, logger),
		Outbox:  db.NewOutbox(testDB.Database, logger),
	}, logger)

	userID := helpers.SeedUser(b, pool, domain.RoleEmployee, "Bench", "bench@optica.local")
	actor := domain.Actor{ID: userID, Name: "Bench", Role: domain.RoleEmployee}
	cash := helpers.PaymentMethodID(b, pool, "cash")

	products := make([]int64, 8)
	for i := range products {
		products[i] = helpers.SeedProduct(b, pool, fmt.Sprintf("BENCH-%d", i), helpers.Dec("120.00"), 1_000_000)
	}
	ctx := context.Background()

	b.Run("SingleLine", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, err := sales.CreateSale(ctx, actor, &domain.SaleRequest{
				PaymentMethodID: cash,
				Items:           []domain.LineRequest{{ProductID: products[i%len(products)], Quantity: 1}},
			}, "")
			if err != nil {
				b.Fatal(err)
			}
		}
	})

	b.Run("ParallelContended", func(b *testing.B) {
		b.RunParallel(func(pb *testing.PB) {
			for pb.Next() {
				_, err := sales.CreateSale(ctx, actor, &domain.SaleRequest{
					PaymentMethodID: cash,
					Items: []domain.LineRequest{
						{ProductID: products[0], Quantity: 1},
						{ProductID: products[1], Quantity: 1},
					},
				}, "")
				if err != nil {
					b.Error(err)
					return
				}
			}
		})
	})
}
