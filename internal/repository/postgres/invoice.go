package postgres

import (
	"context"

	"github.com/aiteamhq/billsync/internal/domain/invoice"
	"github.com/aiteamhq/billsync/internal/logger"
	"github.com/aiteamhq/billsync/internal/postgres"
)

type invoiceRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewInvoiceRepository(db *postgres.DB, logger *logger.Logger) invoice.Repository {
	return &invoiceRepository{db: db, logger: logger}
}

func (r *invoiceRepository) Upsert(ctx context.Context, inv *invoice.Invoice) (*invoice.Invoice, error) {
	query := `
		INSERT INTO invoices (
			id,
			subscription_id,
			invoice_number,
			stripe_invoice_id,
			subtotal,
			tax,
			discount,
			total_amount,
			currency,
			status,
			issued_at,
			due_at,
			paid_at,
			line_items,
			invoice_pdf_url,
			created_at,
			updated_at
		) VALUES (
			:id,
			:subscription_id,
			:invoice_number,
			:stripe_invoice_id,
			:subtotal,
			:tax,
			:discount,
			:total_amount,
			:currency,
			:status,
			:issued_at,
			:due_at,
			:paid_at,
			:line_items,
			:invoice_pdf_url,
			:created_at,
			:updated_at
		)
		ON CONFLICT (stripe_invoice_id) DO UPDATE SET
			subscription_id = EXCLUDED.subscription_id,
			invoice_number = EXCLUDED.invoice_number,
			subtotal = EXCLUDED.subtotal,
			tax = EXCLUDED.tax,
			discount = EXCLUDED.discount,
			total_amount = EXCLUDED.total_amount,
			currency = EXCLUDED.currency,
			status = EXCLUDED.status,
			issued_at = EXCLUDED.issued_at,
			due_at = EXCLUDED.due_at,
			paid_at = EXCLUDED.paid_at,
			line_items = EXCLUDED.line_items,
			invoice_pdf_url = EXCLUDED.invoice_pdf_url,
			updated_at = EXCLUDED.updated_at
		RETURNING *
	`

	r.logger.Debugw("upserting invoice",
		"stripe_invoice_id", inv.StripeInvoiceID,
		"subscription_id", inv.SubscriptionID,
		"total_amount", inv.TotalAmount.String(),
	)

	var stored invoice.Invoice
	if err := r.db.NamedGetContext(ctx, &stored, query, inv); err != nil {
		return nil, wrapQueryError(err, "invoice", map[string]any{
			"stripe_invoice_id": inv.StripeInvoiceID,
		})
	}
	return &stored, nil
}

func (r *invoiceRepository) GetByStripeID(ctx context.Context, stripeInvoiceID string) (*invoice.Invoice, error) {
	query := `SELECT * FROM invoices WHERE stripe_invoice_id = $1`

	var inv invoice.Invoice
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &inv, query, stripeInvoiceID); err != nil {
		return nil, wrapQueryError(err, "invoice", map[string]any{
			"stripe_invoice_id": stripeInvoiceID,
		})
	}
	return &inv, nil
}
