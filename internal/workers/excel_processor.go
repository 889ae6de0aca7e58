// internal/workers/excel_processor.go
package workers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx/v3"

	"github.com/ammerola/optica-pos/internal/core/domain"
	"github.com/ammerola/optica-pos/internal/core/ports"
	"github.com/ammerola/optica-pos/internal/core/services"
)

// ImportMovementNote is the note on movements created by a catalog import
const ImportMovementNote = "Importación de catálogo"

// Catalog sheet columns, in order
const (
	colSKU = iota
	colName
	colCategory
	colBuyPrice
	colSalePrice
	colMinStock
	colInitialStock
	catalogColumns
)

var (
	// ErrInvalidCatalog is returned for files that are not readable xlsx
	ErrInvalidCatalog = errors.New("invalid catalog file")
	// ErrTooManyRows is returned when a sheet exceeds the configured row limit
	ErrTooManyRows = errors.New("catalog sheet has too many rows")
)

// ImportRow is one parsed line of a catalog sheet
type ImportRow struct {
	Line         int
	SKU          string
	Name         string
	CategoryCode string
	BuyPrice     decimal.Decimal
	SalePrice    decimal.Decimal
	MinStock     int
	InitialStock int
}

// apply copies the row's editable fields onto p. An empty category keeps
// the current one.
func (r ImportRow) apply(p *domain.Product) {
	p.Name = r.Name
	if r.CategoryCode != "" {
		p.CategoryCode = r.CategoryCode
	}
	p.BuyPrice = r.BuyPrice
	p.SalePrice = r.SalePrice
	p.MinStock = r.MinStock
}

// RowError explains why a line was skipped
type RowError struct {
	Line int
	Err  error
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Line, e.Err)
}

// ImportResult summarises one import
type ImportResult struct {
	Created int
	Updated int
	Skipped int
	Errors  []RowError
}

// CatalogImportProcessor upserts products from xlsx sheets
type CatalogImportProcessor struct {
	tx      ports.Transactor
	catalog ports.CatalogRepository
	ledger  ports.InventoryLedger
	cache   ports.CacheRepository
	maxRows int
	logger  *slog.Logger
}

// NewCatalogImportProcessor creates a new import processor. cache may be nil.
func NewCatalogImportProcessor(tx ports.Transactor, catalog ports.CatalogRepository, ledger ports.InventoryLedger,
	cache ports.CacheRepository, maxRows int, logger *slog.Logger) *CatalogImportProcessor {
	return &CatalogImportProcessor{
		tx:      tx,
		catalog: catalog,
		ledger:  ledger,
		cache:   cache,
		maxRows: maxRows,
		logger:  logger.With(slog.String("processor", "catalog_import")),
	}
}

// ProcessImport handles catalog:import tasks
func (p *CatalogImportProcessor) ProcessImport(ctx context.Context, t *asynq.Task) error {
	var payload CatalogImportPayload
	if err := decodePayload(t, &payload); err != nil {
		return err
	}

	log := p.logger.With(slog.String("job_id", payload.JobID))
	log.InfoContext(ctx, "processing catalog file", slog.String("file_path", payload.FilePath))

	rows, rowErrs, err := ParseCatalogSheet(payload.FilePath, p.maxRows)
	if err != nil {
		if errors.Is(err, ErrInvalidCatalog) || errors.Is(err, ErrTooManyRows) {
			p.removeFile(ctx, payload.FilePath)
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		return err
	}

	result, err := p.Import(ctx, payload.ActorID, rows)
	if err != nil {
		return fmt.Errorf("catalog import %s failed: %w", payload.JobID, err)
	}
	result.Skipped += len(rowErrs)
	result.Errors = append(rowErrs, result.Errors...)

	p.removeFile(ctx, payload.FilePath)

	for _, re := range result.Errors {
		log.WarnContext(ctx, "catalog row skipped",
			slog.Int("row", re.Line),
			slog.String("error", re.Err.Error()))
	}
	log.InfoContext(ctx, "catalog import completed",
		slog.Int("created", result.Created),
		slog.Int("updated", result.Updated),
		slog.Int("skipped", result.Skipped))
	return nil
}

// Import upserts rows by SKU. New products get their initial stock as a
// manual movement; existing products only have their fields updated.
// Rows failing validation are skipped. Any other error aborts the import,
// and a retry picks up where it stopped because processed SKUs now exist.
func (p *CatalogImportProcessor) Import(ctx context.Context, actorID int64, rows []ImportRow) (ImportResult, error) {
	var result ImportResult
	touched := false

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		var existing *domain.Product
		var err error
		if row.SKU == "" {
			err = domain.NewValidationError("sku", "sku is required")
		} else {
			existing, err = p.catalog.FindProductBySKU(ctx, row.SKU)
		}
		switch {
		case err == nil:
			err = p.update(ctx, existing, row)
			if err == nil {
				result.Updated++
			}
		case errors.Is(err, domain.ErrNotFound):
			err = p.create(ctx, actorID, row)
			if err == nil {
				result.Created++
			}
		}

		if err != nil {
			if domain.IsValidation(err) || errors.Is(err, domain.ErrConflict) {
				result.Skipped++
				result.Errors = append(result.Errors, RowError{Line: row.Line, Err: err})
				continue
			}
			if touched {
				p.invalidate(ctx)
			}
			return result, fmt.Errorf("row %d: %w", row.Line, err)
		}
		touched = true
	}

	if touched {
		p.invalidate(ctx)
	}
	return result, nil
}

func (p *CatalogImportProcessor) create(ctx context.Context, actorID int64, row ImportRow) error {
	product := &domain.Product{SKU: row.SKU, Active: true}
	row.apply(product)
	if err := product.Validate(); err != nil {
		return err
	}

	return p.tx.Transaction(ctx, func(tx pgx.Tx) error {
		if err := p.catalog.CreateProduct(ctx, tx, product); err != nil {
			return err
		}
		if err := p.ledger.EnsureTracked(ctx, tx, product.ID); err != nil {
			return err
		}
		if row.InitialStock == 0 {
			return nil
		}
		if _, err := p.ledger.LockAndRead(ctx, tx, product.ID); err != nil {
			return err
		}
		_, err := p.ledger.Adjust(ctx, tx, product.ID, row.InitialStock, domain.ManualMovement(actorID, ImportMovementNote))
		return err
	})
}

func (p *CatalogImportProcessor) update(ctx context.Context, product *domain.Product, row ImportRow) error {
	row.apply(product)
	if err := product.Validate(); err != nil {
		return err
	}
	return p.catalog.UpdateProduct(ctx, product)
}

func (p *CatalogImportProcessor) invalidate(ctx context.Context) {
	if p.cache == nil {
		return
	}
	if err := p.cache.DeletePattern(context.WithoutCancel(ctx), services.InventoryCachePattern); err != nil {
		p.logger.WarnContext(ctx, "failed to invalidate inventory cache",
			slog.String("error", err.Error()))
	}
}

func (p *CatalogImportProcessor) removeFile(ctx context.Context, path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		p.logger.WarnContext(ctx, "failed to remove catalog file",
			slog.String("file_path", path),
			slog.String("error", err.Error()))
	}
}

// ParseCatalogSheet reads the first sheet of an xlsx file. A leading header
// row and blank rows are ignored. Lines that cannot be parsed are returned
// as row errors. maxRows <= 0 disables the row limit.
func ParseCatalogSheet(path string, maxRows int) ([]ImportRow, []RowError, error) {
	file, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	if len(file.Sheets) == 0 {
		return nil, nil, fmt.Errorf("%w: no sheets", ErrInvalidCatalog)
	}

	var rows []ImportRow
	var rowErrs []RowError

	err = file.Sheets[0].ForEachRow(func(r *xlsx.Row) error {
		line := r.GetCoordinate() + 1
		cells := readCells(r)
		if isBlank(cells) {
			return nil
		}
		if line == 1 && strings.EqualFold(cells[colSKU], "sku") {
			return nil
		}
		if maxRows > 0 && len(rows)+len(rowErrs) >= maxRows {
			return fmt.Errorf("more than %d rows: %w", maxRows, ErrTooManyRows)
		}

		row, err := parseRow(line, cells)
		if err != nil {
			rowErrs = append(rowErrs, RowError{Line: line, Err: err})
			return nil
		}
		rows = append(rows, row)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return rows, rowErrs, nil
}

func readCells(r *xlsx.Row) [catalogColumns]string {
	var cells [catalogColumns]string
	for i := range cells {
		if c := r.GetCell(i); c != nil {
			cells[i] = strings.TrimSpace(c.String())
		}
	}
	return cells
}

func isBlank(cells [catalogColumns]string) bool {
	for _, c := range cells {
		if c != "" {
			return false
		}
	}
	return true
}

func parseRow(line int, c [catalogColumns]string) (ImportRow, error) {
	row := ImportRow{
		Line:         line,
		SKU:          c[colSKU],
		Name:         c[colName],
		CategoryCode: c[colCategory],
	}

	var err error
	if row.BuyPrice, err = parseAmount(c[colBuyPrice]); err != nil {
		return row, domain.NewValidationError("buy_price", "invalid amount %q", c[colBuyPrice])
	}
	if row.SalePrice, err = parseAmount(c[colSalePrice]); err != nil {
		return row, domain.NewValidationError("sale_price", "invalid amount %q", c[colSalePrice])
	}
	if row.MinStock, err = parseCount(c[colMinStock]); err != nil {
		return row, domain.NewValidationError("min_stock", "invalid quantity %q", c[colMinStock])
	}
	if row.InitialStock, err = parseCount(c[colInitialStock]); err != nil {
		return row, domain.NewValidationError("initial_stock", "invalid quantity %q", c[colInitialStock])
	}
	return row, nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.NewReplacer("$", "", ",", "", " ", "").Replace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

// parseCount accepts whole, non-negative numbers. Spreadsheets often store
// them as floats, so "3.0" is fine.
func parseCount(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, err
	}
	if !d.IsInteger() || d.IsNegative() {
		return 0, fmt.Errorf("not a whole non-negative number")
	}
	return int(d.IntPart()), nil
}
