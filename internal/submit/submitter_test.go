package submit

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"doorquote/internal/catalog"
	"doorquote/internal/pricing"
	"doorquote/internal/quote"
	"doorquote/internal/storage"
	"doorquote/internal/wizard"
	"doorquote/pkg/crm"
)

type fakeLeads struct {
	req  crm.LeadRequest
	id   string
	err  error
	hits int
}

func (f *fakeLeads) CreateLead(ctx context.Context, req crm.LeadRequest) (string, error) {
	f.hits++
	f.req = req
	return f.id, f.err
}

type fakeQuotes struct {
	saved storage.Quote
	id    int64
	err   error
}

func (f *fakeQuotes) SaveQuote(ctx context.Context, q storage.Quote) (int64, error) {
	f.saved = q
	return f.id, f.err
}

type fakeNotifier struct {
	got chan storage.Quote
	err error
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{got: make(chan storage.Quote, 1)}
}

func (f *fakeNotifier) SendQuoteConfirmation(ctx context.Context, q storage.Quote) error {
	f.got <- q
	return f.err
}

func (f *fakeNotifier) NotifyNewQuote(ctx context.Context, q storage.Quote) error {
	f.got <- q
	return f.err
}

func submittableState() wizard.State {
	st := wizard.NewState()
	st.Contact = quote.ContactInfo{
		Name:  "Dana Whitfield",
		Email: "dana@example.com",
		Phone: "(415) 555-0134",
		Zip:   "94110",
	}
	item := quote.NewItem("sliding")
	item.Width = 120
	item.Height = 96
	item.ExteriorFinish = "matte-black"
	item.GlassType = "low-e"
	item.HardwareFinish = "matte-black"
	item.PanelCount = 3
	item.PanelLayout = "OXO"
	st.Items = []quote.Item{item}
	st.Services = quote.ServiceOptions{DeliveryType: quote.DeliveryRegular, Installation: true}
	st.Step = wizard.StepSummary
	return st
}

func newTestSubmitter(leads *fakeLeads, quotes *fakeQuotes, customer, internal *fakeNotifier) *Submitter {
	opts := Options{
		Leads:    leads,
		Quotes:   quotes,
		Registry: catalog.Default(),
		Rates:    pricing.DefaultRates(),
		Logger:   zap.NewNop(),
	}
	if customer != nil {
		opts.Customer = customer
	}
	if internal != nil {
		opts.Internal = internal
	}
	return New(opts)
}

func TestSubmitHappyPath(t *testing.T) {
	leads := &fakeLeads{id: "lead-81"}
	quotes := &fakeQuotes{id: 204}
	customer := newFakeNotifier()
	internal := newFakeNotifier()
	s := newTestSubmitter(leads, quotes, customer, internal)

	res, err := s.Submit(context.Background(), submittableState())
	require.NoError(t, err)
	assert.Equal(t, "lead-81", res.LeadID)
	assert.Equal(t, "204", res.QuoteID)

	assert.Equal(t, "Dana Whitfield", leads.req.Name)
	assert.Equal(t, "+14155550134", leads.req.Phone, "phone is normalized for the CRM")

	saved := quotes.saved
	assert.Equal(t, "lead-81", saved.LeadID)
	assert.Equal(t, "Sliding Glass Door", saved.DoorType)
	assert.Equal(t, "matte-black", saved.Color)
	assert.Equal(t, "low-e", saved.GlassType)
	assert.Equal(t, "120 x 96 in", saved.Size)
	assert.Equal(t, 1, saved.ItemCount)

	var items []quote.LineItem
	require.NoError(t, json.Unmarshal(saved.Items, &items))
	require.Len(t, items, 1)
	assert.Equal(t, "Sliding Glass Door", items[0].Name)
	assert.Contains(t, items[0].Description, "120 x 96 in")
	assert.Contains(t, items[0].Description, "low-e glass")

	// 4000 base + 150*3 low-e glass
	assert.Equal(t, 4450.0, saved.Subtotal)
	assert.Equal(t, 800.0, saved.DeliveryCost)
	assert.Equal(t, 1750.0, saved.InstallationCost)
	assert.InDelta(t, 0.08*(4450+800+1750), saved.Tax, 1e-9)
	assert.Equal(t, "new", saved.Status)
	assert.False(t, saved.CreatedAt.IsZero())

	for name, ch := range map[string]chan storage.Quote{"customer": customer.got, "internal": internal.got} {
		select {
		case got := <-ch:
			assert.Equal(t, int64(204), got.ID, "%s notification carries the saved id", name)
		case <-time.After(2 * time.Second):
			t.Fatalf("%s notification never fired", name)
		}
	}
}

func TestSubmitRejectsEmptyQuote(t *testing.T) {
	s := newTestSubmitter(&fakeLeads{}, &fakeQuotes{}, nil, nil)
	st := wizard.NewState()

	_, err := s.Submit(context.Background(), st)
	assert.ErrorIs(t, err, ErrNoItems)
}

func TestSubmitReusesExistingLead(t *testing.T) {
	leads := &fakeLeads{id: "lead-should-not-be-used"}
	quotes := &fakeQuotes{id: 1}
	s := newTestSubmitter(leads, quotes, nil, nil)

	st := submittableState()
	st.LeadID = "lead-81"

	res, err := s.Submit(context.Background(), st)
	require.NoError(t, err)
	assert.Equal(t, "lead-81", res.LeadID)
	assert.Zero(t, leads.hits, "an existing lead must not be re-registered")
}

func TestSubmitToleratesLeadFailure(t *testing.T) {
	leads := &fakeLeads{err: errors.New("crm down")}
	quotes := &fakeQuotes{id: 7}
	s := newTestSubmitter(leads, quotes, nil, nil)

	res, err := s.Submit(context.Background(), submittableState())
	require.NoError(t, err, "losing the lead must not lose the quote")
	assert.Empty(t, res.LeadID)
	assert.Equal(t, "7", res.QuoteID)
	assert.Empty(t, quotes.saved.LeadID)
}

func TestSubmitSurfacesQuoteSaveFailure(t *testing.T) {
	quotes := &fakeQuotes{err: errors.New("db down")}
	customer := newFakeNotifier()
	s := newTestSubmitter(&fakeLeads{id: "lead-81"}, quotes, customer, nil)

	_, err := s.Submit(context.Background(), submittableState())
	require.Error(t, err)

	select {
	case <-customer.got:
		t.Fatal("no notification may fire for a failed save")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestSubmitWithNilNotifiers(t *testing.T) {
	s := newTestSubmitter(&fakeLeads{id: "l"}, &fakeQuotes{id: 1}, nil, nil)
	_, err := s.Submit(context.Background(), submittableState())
	assert.NoError(t, err)
}
