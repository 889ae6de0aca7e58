// internal/workers/notifications_processor.go
package workers

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hibiken/asynq"

	"github.com/ammerola/optica-pos/internal/core/domain"
	"github.com/ammerola/optica-pos/internal/core/ports"
)

// EmailQueue enqueues outgoing mail
type EmailQueue interface {
	EnqueueEmail(ctx context.Context, email EmailPayload) error
}

// LowStockProcessor turns stock checks into notification emails
type LowStockProcessor struct {
	ledger     ports.InventoryLedger
	emails     EmailQueue
	recipients []string
	logger     *slog.Logger
}

// NewLowStockProcessor creates a processor mailing recipients. With no
// recipients the checks are skipped.
func NewLowStockProcessor(ledger ports.InventoryLedger, emails EmailQueue, recipients []string, logger *slog.Logger) *LowStockProcessor {
	return &LowStockProcessor{
		ledger:     ledger,
		emails:     emails,
		recipients: recipients,
		logger:     logger.With(slog.String("processor", "low_stock")),
	}
}

// CheckLowStock handles inventory:low_stock_check tasks
func (p *LowStockProcessor) CheckLowStock(ctx context.Context, t *asynq.Task) error {
	var payload LowStockPayload
	if err := decodePayload(t, &payload); err != nil {
		return err
	}
	if len(p.recipients) == 0 || len(payload.ProductIDs) == 0 {
		p.logger.DebugContext(ctx, "low stock check skipped")
		return nil
	}

	levels, err := p.ledger.StockLevels(ctx, payload.ProductIDs)
	if err != nil {
		return fmt.Errorf("failed to read stock levels: %w", err)
	}

	var critical []domain.InventoryView
	for _, v := range levels {
		if domain.IsCritical(v.Stock, v.MinStock) {
			critical = append(critical, v)
		}
	}
	if len(critical) == 0 {
		return nil
	}

	p.logger.InfoContext(ctx, "critical stock detected", slog.Int("products", len(critical)))

	return p.emails.EnqueueEmail(ctx, EmailPayload{
		To:      p.recipients,
		Subject: fmt.Sprintf("Stock bajo: %d producto(s)", len(critical)),
		Body:    lowStockBody(critical),
	})
}

func lowStockBody(views []domain.InventoryView) string {
	var b strings.Builder
	b.WriteString("Los siguientes productos están en o por debajo del stock mínimo:\n\n")
	for _, v := range views {
		fmt.Fprintf(&b, "%s - %s: stock %d (mínimo %d)\n", v.SKU, v.Name, v.Stock, v.MinStock)
	}
	return b.String()
}

// EmailProcessor delivers notification:email tasks
type EmailProcessor struct {
	mailer ports.Mailer
	logger *slog.Logger
}

// NewEmailProcessor creates a new email processor
func NewEmailProcessor(mailer ports.Mailer, logger *slog.Logger) *EmailProcessor {
	return &EmailProcessor{
		mailer: mailer,
		logger: logger.With(slog.String("processor", "notification")),
	}
}

// SendEmail sends the message in the task payload
func (p *EmailProcessor) SendEmail(ctx context.Context, t *asynq.Task) error {
	var payload EmailPayload
	if err := decodePayload(t, &payload); err != nil {
		return err
	}
	if len(payload.To) == 0 {
		return fmt.Errorf("email without recipients: %w", asynq.SkipRetry)
	}

	p.logger.InfoContext(ctx, "sending email",
		slog.Any("to", payload.To),
		slog.String("subject", payload.Subject))

	return p.mailer.Send(ctx, payload.To, payload.Subject, payload.Body)
}
