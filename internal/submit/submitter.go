// Package submit turns a finished wizard session into durable records:
// a CRM lead, a persisted quote row, and the follow-up notifications.
package submit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"doorquote/internal/catalog"
	"doorquote/internal/pricing"
	"doorquote/internal/quote"
	"doorquote/internal/storage"
	"doorquote/internal/wizard"
	"doorquote/pkg/crm"
)

// LeadService registers contacts with the CRM.
type LeadService interface {
	CreateLead(ctx context.Context, req crm.LeadRequest) (string, error)
}

// QuoteStore persists submitted quotes.
type QuoteStore interface {
	SaveQuote(ctx context.Context, quote storage.Quote) (int64, error)
}

// CustomerNotifier sends the customer their confirmation.
type CustomerNotifier interface {
	SendQuoteConfirmation(ctx context.Context, quote storage.Quote) error
}

// InternalNotifier alerts the sales channel about a new quote.
type InternalNotifier interface {
	NotifyNewQuote(ctx context.Context, quote storage.Quote) error
}

// Result carries the identifiers a successful submission produced.
type Result struct {
	LeadID  string
	QuoteID string
}

type Submitter struct {
	leads    LeadService
	quotes   QuoteStore
	customer CustomerNotifier
	internal InternalNotifier
	registry *catalog.Registry
	rates    pricing.Rates
	logger   *zap.Logger
}

// Options wires the submitter's collaborators. Customer and Internal
// may be left nil to disable the respective notification.
type Options struct {
	Leads    LeadService
	Quotes   QuoteStore
	Customer CustomerNotifier
	Internal InternalNotifier
	Registry *catalog.Registry
	Rates    pricing.Rates
	Logger   *zap.Logger
}

func New(opts Options) *Submitter {
	return &Submitter{
		leads:    opts.Leads,
		quotes:   opts.Quotes,
		customer: opts.Customer,
		internal: opts.Internal,
		registry: opts.Registry,
		rates:    opts.Rates,
		logger:   opts.Logger,
	}
}

var ErrNoItems = errors.New("quote has no items")

// Submit registers the lead if the session has none yet, persists the
// quote, and kicks off notifications. Lead intake failure is logged and
// tolerated; losing the quote itself is the only fatal outcome.
// Notifications run detached so a slow SMTP or Telegram round trip
// never blocks the response.
func (s *Submitter) Submit(ctx context.Context, state wizard.State) (Result, error) {
	if len(state.Items) == 0 {
		return Result{}, ErrNoItems
	}

	leadID := state.LeadID
	if leadID == "" {
		id, err := s.leads.CreateLead(ctx, leadRequest(state))
		if err != nil {
			s.logger.Warn("Lead intake failed, continuing without lead id",
				zap.Error(err))
		} else {
			leadID = id
		}
	}

	record, err := s.buildRecord(state, leadID)
	if err != nil {
		return Result{}, err
	}

	quoteID, err := s.quotes.SaveQuote(ctx, record)
	if err != nil {
		return Result{}, fmt.Errorf("save quote: %w", err)
	}
	record.ID = quoteID

	s.logger.Info("quote submitted",
		zap.Int64("quote_id", quoteID),
		zap.String("lead_id", leadID),
		zap.Float64("grand_total", record.GrandTotal))

	notifyCtx := context.WithoutCancel(ctx)
	if s.customer != nil {
		go func() {
			if err := s.customer.SendQuoteConfirmation(notifyCtx, record); err != nil {
				s.logger.Error("Customer confirmation failed",
					zap.Int64("quote_id", quoteID),
					zap.Error(err))
			}
		}()
	}
	if s.internal != nil {
		go func() {
			if err := s.internal.NotifyNewQuote(notifyCtx, record); err != nil {
				s.logger.Error("Sales channel alert failed",
					zap.Int64("quote_id", quoteID),
					zap.Error(err))
			}
		}()
	}

	return Result{
		LeadID:  leadID,
		QuoteID: strconv.FormatInt(quoteID, 10),
	}, nil
}

func leadRequest(state wizard.State) crm.LeadRequest {
	return crm.LeadRequest{
		Name:         state.Contact.Name,
		Email:        state.Contact.Email,
		Phone:        quote.NormalizePhoneNumber(state.Contact.Phone),
		Zip:          state.Contact.Zip,
		CustomerType: state.Contact.CustomerType,
		Timeline:     state.Contact.Timeline,
		Source:       state.Contact.Source,
		ReferralCode: state.Contact.ReferralCode,
	}
}

// buildRecord flattens the session into the persisted shape: headline
// fields from the first item for list views, the full item detail as
// JSON, totals computed fresh from the catalog.
func (s *Submitter) buildRecord(state wizard.State, leadID string) (storage.Quote, error) {
	totals := pricing.QuoteTotals(state.Items, state.Services, s.registry, s.rates)

	lineItems := make([]quote.LineItem, 0, len(state.Items))
	for _, item := range state.Items {
		product, _ := s.registry.Lookup(item.ProductSlug)
		lineItems = append(lineItems, item.LineItem(product))
	}
	items, err := json.Marshal(lineItems)
	if err != nil {
		return storage.Quote{}, fmt.Errorf("marshal items: %w", err)
	}

	first := state.Items[0]
	doorType := first.ProductSlug
	if product, ok := s.registry.Lookup(first.ProductSlug); ok {
		doorType = product.Name
	}

	return storage.Quote{
		LeadID:    leadID,
		Name:      state.Contact.Name,
		Email:     state.Contact.Email,
		Phone:     quote.NormalizePhoneNumber(state.Contact.Phone),
		Zip:       state.Contact.Zip,
		DoorType:  doorType,
		Color:     first.ExteriorFinish,
		GlassType: first.GlassType,
		Size:      fmt.Sprintf("%g x %g in", first.Width, first.Height),
		ItemCount: len(state.Items),
		Items:     items,

		Subtotal:         totals.Subtotal,
		DeliveryType:     state.Services.DeliveryType,
		DeliveryCost:     totals.DeliveryCost,
		InstallationCost: totals.InstallationCost,
		Tax:              totals.Tax,
		GrandTotal:       totals.GrandTotal,

		Status:    "new",
		CreatedAt: time.Now().UTC(),
	}, nil
}
