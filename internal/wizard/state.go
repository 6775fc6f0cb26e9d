// Package wizard implements the step-gated quote configuration flow as a
// reducer over an immutable state value: UI steps dispatch actions, every
// transition returns a fresh state, and derived item pricing stays current
// within the same transition that invalidates it.
package wizard

import (
	"doorquote/internal/quote"
)

// Step numbers the wizard screens.
type Step int

const (
	StepContact Step = iota + 1
	StepProductSelection
	StepConfigure
	StepSummary
	StepConfirmation
)

// State owns everything one quoting session accumulates. It is never
// persisted directly; only the derived submission payload leaves the
// process.
type State struct {
	Contact quote.ContactInfo `json:"contact"`

	Items []quote.Item `json:"items"`
	// EditingIndex is the item currently being configured, -1 when none.
	EditingIndex int `json:"editing_index"`

	Services quote.ServiceOptions `json:"services"`

	Step       Step   `json:"step"`
	Submitting bool   `json:"submitting"`
	Error      string `json:"error,omitempty"`
	// FieldErrors carries inline validation messages for the current screen.
	FieldErrors map[string]string `json:"field_errors,omitempty"`

	LeadID  string `json:"lead_id,omitempty"`
	QuoteID string `json:"quote_id,omitempty"`
}

// NewState returns the initial empty state for a fresh session.
func NewState() State {
	return State{
		EditingIndex: -1,
		Step:         StepContact,
		Services:     quote.ServiceOptions{DeliveryType: quote.DeliveryNone},
	}
}

// CurrentItem returns the in-progress item, if any.
func (s State) CurrentItem() (quote.Item, bool) {
	if s.EditingIndex < 0 || s.EditingIndex >= len(s.Items) {
		return quote.Item{}, false
	}
	return s.Items[s.EditingIndex], true
}

func cloneItems(items []quote.Item) []quote.Item {
	if items == nil {
		return nil
	}
	out := make([]quote.Item, len(items))
	copy(out, items)
	return out
}
