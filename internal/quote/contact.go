package quote

import (
	"regexp"
	"strings"
	"unicode"
)

// ContactInfo is the customer intake collected on the first wizard step.
type ContactInfo struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Zip          string `json:"zip"`
	CustomerType string `json:"customer_type"`
	Timeline     string `json:"timeline"`
	Source       string `json:"source"`
	ReferralCode string `json:"referral_code,omitempty"`
}

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Validate returns a field-to-message map; empty means valid.
func (c ContactInfo) Validate() map[string]string {
	errs := make(map[string]string)

	if strings.TrimSpace(c.Name) == "" {
		errs["name"] = "name is required"
	}
	if strings.TrimSpace(c.Email) == "" {
		errs["email"] = "email is required"
	} else if !emailPattern.MatchString(c.Email) {
		errs["email"] = "enter a valid email address"
	}
	if strings.TrimSpace(c.Phone) == "" {
		errs["phone"] = "phone number is required"
	} else if !IsValidPhoneNumber(c.Phone) {
		errs["phone"] = "enter a valid phone number"
	}
	if !isValidZip(c.Zip) {
		errs["zip"] = "enter a 5-digit ZIP code"
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func isValidZip(zip string) bool {
	if len(zip) != 5 {
		return false
	}
	for _, r := range zip {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// NormalizePhoneNumber strips formatting and applies the +1 country code
// to bare 10-digit US numbers.
func NormalizePhoneNumber(phone string) string {
	cleaned := digitsOnly(phone)

	if len(cleaned) == 10 {
		return "+1" + cleaned
	}
	if len(cleaned) == 11 && strings.HasPrefix(cleaned, "1") {
		return "+" + cleaned
	}
	if strings.HasPrefix(strings.TrimSpace(phone), "+") {
		return "+" + cleaned
	}
	return cleaned
}

// IsValidPhoneNumber accepts 10-15 digit numbers and rejects obviously
// fake input.
func IsValidPhoneNumber(phone string) bool {
	cleaned := digitsOnly(phone)

	if len(cleaned) < 10 || len(cleaned) > 15 {
		return false
	}

	badNumbers := map[string]bool{
		"0000000000": true,
		"1111111111": true,
		"1234567890": true,
		"9999999999": true,
		"0123456789": true,
	}
	if badNumbers[cleaned] || badNumbers[strings.TrimPrefix(cleaned, "1")] {
		return false
	}

	return true
}

func digitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
}
