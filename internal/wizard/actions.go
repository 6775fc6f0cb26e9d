package wizard

import (
	"encoding/json"
	"fmt"

	"doorquote/internal/quote"
)

// Action is the tagged union of wizard transitions. Unknown actions and
// out-of-range indexes are no-ops, never failures.
type Action interface{ isAction() }

// SetContactField writes one contact intake field.
type SetContactField struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// SetStep navigates to a wizard step, subject to the step gates.
type SetStep struct {
	Step Step `json:"step"`
}

// SetLeadID records the externally-assigned lead identifier.
type SetLeadID struct {
	ID string `json:"id"`
}

// SelectProduct starts a new in-progress item for the product, or repoints
// the currently-edited item when one is open.
type SelectProduct struct {
	Slug string `json:"slug"`
}

// UpdateCurrentItem merges partial fields into the in-progress item.
type UpdateCurrentItem struct {
	Patch quote.ItemPatch `json:"patch"`
}

// SaveCurrentItem validates and commits the in-progress item.
type SaveCurrentItem struct{}

// EditItem reopens an existing item for editing.
type EditItem struct {
	Index int `json:"index"`
}

// DuplicateItem clones the item at Index under a new id, appended last.
type DuplicateItem struct {
	Index int `json:"index"`
}

// RemoveItem deletes the item at Index.
type RemoveItem struct {
	Index int `json:"index"`
}

// AddAnotherItem clears the in-progress index so the next product
// selection starts a fresh item.
type AddAnotherItem struct{}

// SetServices writes the quote-level delivery and installation choices.
type SetServices struct {
	Services quote.ServiceOptions `json:"services"`
}

// SetQuoteID records the externally-assigned quote identifier.
type SetQuoteID struct {
	ID string `json:"id"`
}

// SetSubmitting toggles the submission-in-progress flag.
type SetSubmitting struct {
	Submitting bool `json:"submitting"`
}

// SetError records the top-level error message.
type SetError struct {
	Message string `json:"message"`
}

// Reset returns the wizard to its initial empty state.
type Reset struct{}

func (SetContactField) isAction()   {}
func (SetStep) isAction()           {}
func (SetLeadID) isAction()         {}
func (SelectProduct) isAction()     {}
func (UpdateCurrentItem) isAction() {}
func (SaveCurrentItem) isAction()   {}
func (EditItem) isAction()          {}
func (DuplicateItem) isAction()     {}
func (RemoveItem) isAction()        {}
func (AddAnotherItem) isAction()    {}
func (SetServices) isAction()       {}
func (SetQuoteID) isAction()        {}
func (SetSubmitting) isAction()     {}
func (SetError) isAction()          {}
func (Reset) isAction()             {}

// Decode maps a wire action to its typed form. Unrecognized types decode
// to nil with no error so transports can treat them as no-ops.
func Decode(actionType string, payload json.RawMessage) (Action, error) {
	unmarshal := func(v any) error {
		if len(payload) == 0 {
			return nil
		}
		if err := json.Unmarshal(payload, v); err != nil {
			return fmt.Errorf("decode %s action: %w", actionType, err)
		}
		return nil
	}

	switch actionType {
	case "set_contact_field":
		var a SetContactField
		return a, unmarshal(&a)
	case "set_step":
		var a SetStep
		return a, unmarshal(&a)
	case "set_lead_id":
		var a SetLeadID
		return a, unmarshal(&a)
	case "select_product":
		var a SelectProduct
		return a, unmarshal(&a)
	case "update_current_item":
		var a UpdateCurrentItem
		return a, unmarshal(&a)
	case "save_current_item":
		return SaveCurrentItem{}, nil
	case "edit_item":
		var a EditItem
		return a, unmarshal(&a)
	case "duplicate_item":
		var a DuplicateItem
		return a, unmarshal(&a)
	case "remove_item":
		var a RemoveItem
		return a, unmarshal(&a)
	case "add_another_item":
		return AddAnotherItem{}, nil
	case "set_services":
		var a SetServices
		return a, unmarshal(&a)
	case "set_quote_id":
		var a SetQuoteID
		return a, unmarshal(&a)
	case "set_submitting":
		var a SetSubmitting
		return a, unmarshal(&a)
	case "set_error":
		var a SetError
		return a, unmarshal(&a)
	case "reset":
		return Reset{}, nil
	default:
		return nil, nil
	}
}
