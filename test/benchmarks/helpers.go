// test/benchmarks/helpers.go
package benchmarks

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx/v3"

	"github.com/ammerola/optica-pos/internal/core/domain"
)

// benchmarkCart builds a cart of n lines spread over n/2 products, with a
// line discount on every third line.
func benchmarkCart(n int) *domain.SaleRequest {
	amount := decimal.RequireFromString("5.00")
	percent := decimal.RequireFromString("10")

	req := &domain.SaleRequest{
		PaymentMethodID: 1,
		DiscountType:    "percent",
		DiscountValue:   &percent,
		Items:           make([]domain.LineRequest, n),
	}
	for i := range req.Items {
		price := decimal.NewFromInt(int64(100 + i*7)).Div(decimal.NewFromInt(3)).Round(2)
		line := domain.LineRequest{
			ProductID: int64(i/2 + 1),
			Quantity:  1 + i%3,
			UnitPrice: &price,
		}
		if i%3 == 0 {
			line.ItemDiscountType = "amount"
			line.ItemDiscountValue = &amount
		}
		req.Items[i] = line
	}
	return req
}

// priceLines converts a cart into pricing input
func priceLines(b *testing.B, n int) ([]domain.PriceLine, domain.Discount) {
	b.Helper()
	cart, err := benchmarkCart(n).Validate()
	if err != nil {
		b.Fatalf("invalid benchmark cart: %v", err)
	}
	return cart.PriceLines(), cart.OrderDiscount
}

// writeBenchmarkCatalog saves an xlsx catalog with rows products
func writeBenchmarkCatalog(b *testing.B, rows int) string {
	b.Helper()

	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Catalogo")
	if err != nil {
		b.Fatal(err)
	}
	header := sheet.AddRow()
	for _, h := range []string{"sku", "name", "category_code", "buy_price", "sale_price", "min_stock", "initial_stock"} {
		header.AddCell().SetString(h)
	}
	categories := []string{"ARM", "LEN", "LC", "ACC"}
	for i := 0; i < rows; i++ {
		row := sheet.AddRow()
		row.AddCell().SetString(fmt.Sprintf("SKU-%05d", i))
		row.AddCell().SetString(fmt.Sprintf("Producto %d", i))
		row.AddCell().SetString(categories[i%len(categories)])
		row.AddCell().SetString(fmt.Sprintf("$%d.50", 100+i%900))
		row.AddCell().SetString(fmt.Sprintf("%d", 250+i%900))
		row.AddCell().SetString(fmt.Sprintf("%d", i%5))
		row.AddCell().SetString(fmt.Sprintf("%d", i%20))
	}

	path := filepath.Join(b.TempDir(), "catalogo.xlsx")
	if err := f.Save(path); err != nil {
		b.Fatal(err)
	}
	return path
}
