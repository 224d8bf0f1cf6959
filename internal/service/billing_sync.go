package service

import (
	"context"
	"time"

	"github.com/aiteamhq/billsync/internal/domain/invoice"
	"github.com/aiteamhq/billsync/internal/domain/subscription"
	ierr "github.com/aiteamhq/billsync/internal/errors"
	"github.com/aiteamhq/billsync/internal/integration/stripe"
	"github.com/aiteamhq/billsync/internal/types"
	"github.com/samber/lo"
)

// BillingSyncService applies verified Stripe events to the local store. Every
// handler is keyed by the Stripe identifier and safe to replay.
type BillingSyncService interface {
	// SyncSubscription upserts the subscription from created/updated events
	SyncSubscription(ctx context.Context, payload *stripe.SubscriptionPayload) error

	// RecordInvoicePayment mirrors a paid invoice and resets usage on renewal
	RecordInvoicePayment(ctx context.Context, payload *stripe.InvoicePayload) error

	// MarkPaymentFailed moves the subscription to past_due
	MarkPaymentFailed(ctx context.Context, payload *stripe.InvoicePayload) error

	// CancelSubscription moves the subscription to cancelled
	CancelSubscription(ctx context.Context, payload *stripe.SubscriptionPayload) error

	// MirrorCustomer copies the customer's name and phone onto the matching profile
	MirrorCustomer(ctx context.Context, payload *stripe.CustomerPayload) error
}

type billingSyncService struct {
	ServiceParams
	resolver ResolverService
}

func NewBillingSyncService(params ServiceParams, resolver ResolverService) BillingSyncService {
	return &billingSyncService{
		ServiceParams: params,
		resolver:      resolver,
	}
}

func (s *billingSyncService) SyncSubscription(ctx context.Context, payload *stripe.SubscriptionPayload) error {
	userID, err := s.resolver.ResolveUserByCustomer(ctx, payload.Customer.String())
	if err != nil {
		return err
	}

	planPrice, err := s.resolver.ResolvePlanByPrice(ctx, payload.PriceID())
	if err != nil {
		return err
	}

	cycle, ok := types.BillingCycleFromInterval(payload.Interval())
	if !ok {
		cycle = planPrice.BillingCycle
	}

	status := types.SubscriptionStatusFromStripe(payload.Status)
	now := time.Now().UTC()

	sub := &subscription.Subscription{
		ID:                   types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SUBSCRIPTION),
		UserID:               userID,
		PlanID:               planPrice.PlanID,
		StripeSubscriptionID: payload.ID,
		StripeCustomerID:     payload.Customer.String(),
		Status:               status,
		BillingCycle:         cycle,
		CurrentPeriodStart:   payload.PeriodStart(),
		CurrentPeriodEnd:     payload.PeriodEnd(),
		Usage:                types.UsageCounters{},
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if status == types.SubscriptionStatusCancelled {
		sub.CancelledAt = lo.ToPtr(payload.CancelledAtTime())
		sub.EndedAt = lo.ToPtr(payload.EndedAtTime())
	}

	stored, err := s.SubRepo.Upsert(ctx, sub)
	if err != nil {
		return err
	}

	if stored.IsCancelled() && status != types.SubscriptionStatusCancelled {
		s.Logger.Infow("subscription already cancelled, status change ignored",
			"stripe_subscription_id", payload.ID,
			"stripe_status", payload.Status)
	}

	s.Logger.Infow("subscription synced",
		"subscription_id", stored.ID,
		"stripe_subscription_id", stored.StripeSubscriptionID,
		"user_id", stored.UserID,
		"plan_id", stored.PlanID,
		"status", stored.Status)

	s.publish(ctx, types.BillingEventSubscriptionSynced, stored, "")
	return nil
}

func (s *billingSyncService) RecordInvoicePayment(ctx context.Context, payload *stripe.InvoicePayload) error {
	stripeSubID := payload.SubscriptionID()
	if stripeSubID == "" {
		s.Logger.Infow("invoice not tied to a subscription, skipping",
			"stripe_invoice_id", payload.ID)
		return nil
	}

	sub, err := s.loadOrFetchSubscription(ctx, stripeSubID)
	if err != nil {
		return err
	}

	inv := buildInvoice(sub, payload)

	var (
		stored *invoice.Invoice
		reset  bool
	)
	err = s.DB.WithTx(ctx, func(ctx context.Context) error {
		var err error
		stored, err = s.InvoiceRepo.Upsert(ctx, inv)
		if err != nil {
			return err
		}

		if !payload.IsRenewal() {
			return nil
		}

		reset, err = s.SubRepo.ResetUsage(ctx, stripeSubID, payload.PeriodStartTime(), payload.PeriodEndTime())
		return err
	})
	if err != nil {
		return err
	}

	s.Logger.Infow("invoice recorded",
		"invoice_id", stored.ID,
		"stripe_invoice_id", stored.StripeInvoiceID,
		"stripe_subscription_id", stripeSubID,
		"total_amount", stored.TotalAmount.String(),
		"currency", stored.Currency)
	s.publish(ctx, types.BillingEventInvoiceRecorded, sub, stored.StripeInvoiceID)

	if payload.IsRenewal() {
		if reset {
			s.Logger.Infow("usage reset for new billing period",
				"stripe_subscription_id", stripeSubID,
				"period_start", payload.PeriodStartTime(),
				"period_end", payload.PeriodEndTime())
			s.publish(ctx, types.BillingEventUsageReset, sub, stored.StripeInvoiceID)
		} else {
			s.Logger.Debugw("usage already reset for period",
				"stripe_subscription_id", stripeSubID,
				"period_start", payload.PeriodStartTime())
		}
	}

	return nil
}

func (s *billingSyncService) MarkPaymentFailed(ctx context.Context, payload *stripe.InvoicePayload) error {
	stripeSubID := payload.SubscriptionID()
	if stripeSubID == "" {
		s.Logger.Infow("failed invoice not tied to a subscription, skipping",
			"stripe_invoice_id", payload.ID)
		return nil
	}

	sub, err := s.SubRepo.GetByStripeID(ctx, stripeSubID)
	if err != nil {
		if ierr.IsNotFound(err) {
			s.Logger.Warnw("payment failed for unknown subscription, skipping",
				"stripe_subscription_id", stripeSubID,
				"stripe_invoice_id", payload.ID)
			return nil
		}
		return err
	}

	if sub.IsCancelled() {
		s.Logger.Infow("payment failed for cancelled subscription, skipping",
			"stripe_subscription_id", stripeSubID)
		return nil
	}

	updated, err := s.SubRepo.UpdateStatus(ctx, stripeSubID, types.SubscriptionStatusPastDue)
	if err != nil {
		return err
	}
	if !updated {
		return nil
	}

	s.Logger.Warnw("subscription marked past due",
		"subscription_id", sub.ID,
		"stripe_subscription_id", stripeSubID,
		"user_id", sub.UserID,
		"stripe_invoice_id", payload.ID)

	sub.Status = types.SubscriptionStatusPastDue
	s.publish(ctx, types.BillingEventSubscriptionPastDue, sub, payload.ID)
	return nil
}

func (s *billingSyncService) CancelSubscription(ctx context.Context, payload *stripe.SubscriptionPayload) error {
	cancelledAt := payload.CancelledAtTime()
	endedAt := payload.EndedAtTime()

	if err := s.SubRepo.Cancel(ctx, payload.ID, cancelledAt, endedAt); err != nil {
		if ierr.IsNotFound(err) {
			return ierr.WithError(err).
				WithHintf("Subscription %s is not mirrored locally", payload.ID).
				Mark(ierr.ErrNotFound)
		}
		return err
	}

	sub, err := s.SubRepo.GetByStripeID(ctx, payload.ID)
	if err != nil {
		return err
	}

	s.Logger.Infow("subscription cancelled",
		"subscription_id", sub.ID,
		"stripe_subscription_id", payload.ID,
		"user_id", sub.UserID,
		"cancelled_at", cancelledAt)

	s.publish(ctx, types.BillingEventSubscriptionCancelled, sub, "")
	return nil
}

func (s *billingSyncService) MirrorCustomer(ctx context.Context, payload *stripe.CustomerPayload) error {
	if payload.Deleted || payload.Email == "" {
		s.Logger.Debugw("customer has no email, nothing to mirror",
			"stripe_customer_id", payload.ID)
		return nil
	}

	p, err := s.ProfileRepo.GetByEmail(ctx, payload.Email)
	if err != nil {
		if ierr.IsNotFound(err) {
			s.Logger.Infow("no profile for customer, skipping",
				"stripe_customer_id", payload.ID)
			return nil
		}
		return err
	}

	if !p.ApplyContact(payload.Name, payload.Phone) {
		return nil
	}
	p.UpdatedAt = time.Now().UTC()

	if err := s.ProfileRepo.UpdateContact(ctx, p); err != nil {
		return err
	}

	s.Logger.Infow("profile contact updated from customer",
		"profile_id", p.ID,
		"stripe_customer_id", payload.ID)
	return nil
}

// loadOrFetchSubscription returns the local row for an invoice's subscription.
// A subscription we have not seen yet is pulled from Stripe and synced first.
func (s *billingSyncService) loadOrFetchSubscription(ctx context.Context, stripeSubID string) (*subscription.Subscription, error) {
	sub, err := s.SubRepo.GetByStripeID(ctx, stripeSubID)
	if err == nil {
		return sub, nil
	}
	if !ierr.IsNotFound(err) {
		return nil, err
	}

	s.Logger.Infow("invoice references unknown subscription, fetching from stripe",
		"stripe_subscription_id", stripeSubID)

	remote, err := s.StripeGateway.GetSubscription(ctx, stripeSubID)
	if err != nil {
		return nil, err
	}
	if err := s.SyncSubscription(ctx, remote); err != nil {
		return nil, err
	}

	return s.SubRepo.GetByStripeID(ctx, stripeSubID)
}

func buildInvoice(sub *subscription.Subscription, payload *stripe.InvoicePayload) *invoice.Invoice {
	now := time.Now().UTC()

	status := types.InvoiceStatus(payload.Status)
	if status == "" {
		status = types.InvoiceStatusPaid
	}

	lines := lo.Map(payload.Lines.Data, func(l stripe.InvoiceLine, _ int) types.InvoiceLineItem {
		return types.InvoiceLineItem{
			Description: l.Description,
			Amount:      types.FromMinorUnits(l.Amount, payload.Currency),
			Quantity:    l.Quantity,
			PriceID:     l.PriceID(),
		}
	})

	return &invoice.Invoice{
		ID:              types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE),
		SubscriptionID:  sub.ID,
		InvoiceNumber:   payload.Number,
		StripeInvoiceID: payload.ID,
		Subtotal:        types.FromMinorUnits(payload.Subtotal, payload.Currency),
		Tax:             types.FromMinorUnits(payload.TaxAmount(), payload.Currency),
		Discount:        types.FromMinorUnits(payload.DiscountAmount(), payload.Currency),
		TotalAmount:     types.FromMinorUnits(payload.Total, payload.Currency),
		Currency:        payload.Currency,
		Status:          status,
		IssuedAt:        payload.IssuedAt(),
		DueAt:           payload.DueAt(),
		PaidAt:          payload.PaidAt(),
		LineItems:       lines,
		InvoicePDFURL:   payload.InvoicePDF,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// publish emits a billing event after a committed write. Delivery problems
// are logged and never fail the webhook.
func (s *billingSyncService) publish(ctx context.Context, name types.BillingEventName, sub *subscription.Subscription, stripeInvoiceID string) {
	event := types.NewBillingEvent(name)
	event.UserID = sub.UserID
	event.SubscriptionID = sub.ID
	event.StripeSubscriptionID = sub.StripeSubscriptionID
	event.StripeInvoiceID = stripeInvoiceID

	if err := s.EventPublisher.Publish(ctx, event); err != nil {
		s.Logger.Errorw("failed to publish billing event",
			"event_name", name,
			"stripe_subscription_id", sub.StripeSubscriptionID,
			"error", err)
	}
}
