package wizard

import (
	"doorquote/internal/catalog"
	"doorquote/internal/pricing"
	"doorquote/internal/quote"
)

// Reducer applies actions to wizard states. It holds only the immutable
// product registry, so Reduce stays a pure function of (state, action).
type Reducer struct {
	registry *catalog.Registry
}

// NewReducer creates a reducer over the given product registry.
func NewReducer(registry *catalog.Registry) *Reducer {
	return &Reducer{registry: registry}
}

// Reduce returns the state after applying the action. Unknown actions
// return the state unchanged.
func (r *Reducer) Reduce(s State, a Action) State {
	switch a := a.(type) {
	case SetContactField:
		return setContactField(s, a.Field, a.Value)
	case SetStep:
		return r.setStep(s, a.Step)
	case SetLeadID:
		s.LeadID = a.ID
		return s
	case SelectProduct:
		return r.selectProduct(s, a.Slug)
	case UpdateCurrentItem:
		return r.updateCurrentItem(s, a.Patch)
	case SaveCurrentItem:
		return r.saveCurrentItem(s)
	case EditItem:
		return editItem(s, a.Index)
	case DuplicateItem:
		return duplicateItem(s, a.Index)
	case RemoveItem:
		return removeItem(s, a.Index)
	case AddAnotherItem:
		return addAnotherItem(s)
	case SetServices:
		s.Services = a.Services
		return s
	case SetQuoteID:
		s.QuoteID = a.ID
		return s
	case SetSubmitting:
		s.Submitting = a.Submitting
		return s
	case SetError:
		s.Error = a.Message
		return s
	case Reset:
		return NewState()
	default:
		return s
	}
}

func setContactField(s State, field, value string) State {
	switch field {
	case "name":
		s.Contact.Name = value
	case "email":
		s.Contact.Email = value
	case "phone":
		s.Contact.Phone = value
	case "zip":
		s.Contact.Zip = value
	case "customer_type":
		s.Contact.CustomerType = value
	case "timeline":
		s.Contact.Timeline = value
	case "source":
		s.Contact.Source = value
	case "referral_code":
		s.Contact.ReferralCode = value
	}
	return s
}

// setStep enforces the step gates: contact must validate before leaving
// step 1, step 3 needs an in-progress item, and the summary is
// unreachable with zero items.
func (r *Reducer) setStep(s State, step Step) State {
	if step < StepContact || step > StepConfirmation {
		return s
	}

	if s.Step == StepContact && step > StepContact {
		if errs := s.Contact.Validate(); len(errs) > 0 {
			s.FieldErrors = errs
			return s
		}
	}

	if step == StepConfigure && s.EditingIndex < 0 {
		step = StepProductSelection
	}
	if step == StepSummary && len(s.Items) == 0 {
		step = StepProductSelection
	}

	s.Step = step
	s.FieldErrors = nil
	return s
}

func (r *Reducer) selectProduct(s State, slug string) State {
	if _, ok := r.registry.Lookup(slug); !ok {
		return s
	}

	if item, editing := s.CurrentItem(); editing {
		// Repoint the open item at the new product. Panel constraints
		// differ between families, so panel state cannot carry over.
		item.ProductSlug = slug
		item.PanelCount = 0
		item.PanelLayout = ""
		item.SystemType = ""
		s.Items = cloneItems(s.Items)
		s.Items[s.EditingIndex] = r.refresh(item)
		s.Step = StepConfigure
		s.FieldErrors = nil
		return s
	}

	s.Items = append(cloneItems(s.Items), r.refresh(quote.NewItem(slug)))
	s.EditingIndex = len(s.Items) - 1
	s.Step = StepConfigure
	s.FieldErrors = nil
	return s
}

func (r *Reducer) updateCurrentItem(s State, patch quote.ItemPatch) State {
	item, editing := s.CurrentItem()
	if !editing {
		return s
	}

	s.Items = cloneItems(s.Items)
	s.Items[s.EditingIndex] = r.refresh(item.Apply(patch))
	return s
}

func (r *Reducer) saveCurrentItem(s State) State {
	item, editing := s.CurrentItem()
	if !editing {
		return s
	}

	if errs := quote.Validate(item, r.registry); len(errs) > 0 {
		s.FieldErrors = errs
		return s
	}

	s.EditingIndex = -1
	s.FieldErrors = nil
	s.Step = StepSummary
	return s
}

func editItem(s State, index int) State {
	if index < 0 || index >= len(s.Items) {
		return s
	}
	s.EditingIndex = index
	s.Step = StepConfigure
	s.FieldErrors = nil
	return s
}

func duplicateItem(s State, index int) State {
	if index < 0 || index >= len(s.Items) {
		return s
	}
	s.Items = append(cloneItems(s.Items), s.Items[index].Clone())
	return s
}

func removeItem(s State, index int) State {
	if index < 0 || index >= len(s.Items) {
		return s
	}

	items := make([]quote.Item, 0, len(s.Items)-1)
	items = append(items, s.Items[:index]...)
	items = append(items, s.Items[index+1:]...)
	s.Items = items

	switch {
	case s.EditingIndex == index:
		s.EditingIndex = -1
	case s.EditingIndex > index:
		s.EditingIndex--
	}

	if len(s.Items) == 0 {
		s.EditingIndex = -1
		s.Step = StepProductSelection
	}
	return normalize(s)
}

func addAnotherItem(s State) State {
	s.EditingIndex = -1
	return normalize(s)
}

// normalize restores the step reachability invariant: the configure step
// always has an in-progress item.
func normalize(s State) State {
	if s.Step == StepConfigure && s.EditingIndex < 0 {
		s.Step = StepProductSelection
	}
	return s
}

// refresh recomputes the memoized projections (glass modifier, item
// total) after any field write. Items pointing at an unresolvable
// product price to zero.
func (r *Reducer) refresh(item quote.Item) quote.Item {
	product, ok := r.registry.Lookup(item.ProductSlug)
	if !ok {
		item.GlassModifier = 0
		item.Total = 0
		return item
	}
	item.GlassModifier = product.GlassModifier(item.GlassType)
	item.Total = pricing.ItemTotal(item, product)
	return item
}

// Totals computes the quote-level totals for the state's items and
// service selections.
func (r *Reducer) Totals(s State, rates pricing.Rates) pricing.Totals {
	return pricing.QuoteTotals(s.Items, s.Services, r.registry, rates)
}
