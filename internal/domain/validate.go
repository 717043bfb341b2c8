package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// DateLayout is the wire format for all mandate and billing dates
const DateLayout = "2006-01-02"

// MaxMandateWindowDays bounds the UPI OTM debit window
const MaxMandateWindowDays = 14

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// NormalizePhone strips non-digits and truncates to ten digits, the same
// correction the input layer applies before validation
func NormalizePhone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	s := b.String()
	if len(s) > 10 {
		s = s[:10]
	}
	return s
}

// ValidatePhone requires exactly ten digits once normalized. Empty passes
// here; required-field checks catch it separately.
func ValidatePhone(phone string) error {
	p := NormalizePhone(phone)
	if p == "" {
		return nil
	}
	if len(p) != 10 {
		return NewValidationError(FieldPhone,
			fmt.Sprintf("phone number must be exactly 10 digits (got %d)", len(p)))
	}
	return nil
}

// ValidateEmail applies the permissive address shape check; empty passes
func ValidateEmail(email string) error {
	if email == "" {
		return nil
	}
	if !emailPattern.MatchString(email) {
		return NewValidationError(FieldEmail, "invalid email address")
	}
	return nil
}

// ValidateStartDate rejects mandate/billing start dates in the past,
// comparing calendar days in the given location
func ValidateStartDate(start string, now time.Time) error {
	if start == "" {
		return nil
	}
	d, err := time.ParseInLocation(DateLayout, start, now.Location())
	if err != nil {
		return NewValidationError(FieldPaymentStartDate,
			fmt.Sprintf("invalid date %q, want YYYY-MM-DD", start))
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if d.Before(today) {
		return NewValidationError(FieldPaymentStartDate,
			"payment start date cannot be in the past")
	}
	return nil
}

// ValidateMandateWindow enforces the UPI OTM window: end not before start,
// and at most MaxMandateWindowDays after it (exactly 14 days passes). On a
// too-long window it returns the clamped end date (start + 7 days) alongside
// the error, matching the auto-correcting input behavior; the action still
// fails and must be re-triggered.
func ValidateMandateWindow(start, end string) (correctedEnd string, err error) {
	if start == "" || end == "" {
		return end, nil
	}
	s, perr := time.Parse(DateLayout, start)
	if perr != nil {
		return end, NewValidationError(FieldPaymentStartDate,
			fmt.Sprintf("invalid date %q, want YYYY-MM-DD", start))
	}
	e, perr := time.Parse(DateLayout, end)
	if perr != nil {
		return end, NewValidationError(FieldPaymentEndDate,
			fmt.Sprintf("invalid date %q, want YYYY-MM-DD", end))
	}
	if e.Before(s) {
		return start, NewDomainError(ErrorCodeValidationDateWindow,
			"payment end date cannot be before the start date")
	}
	days := int(e.Sub(s).Hours() / 24)
	if days > MaxMandateWindowDays {
		clamped := s.AddDate(0, 0, 7).Format(DateLayout)
		return clamped, NewDomainError(ErrorCodeValidationDateWindow,
			fmt.Sprintf("payment end date cannot be more than %d days from the start date (got %d days)",
				MaxMandateWindowDays, days))
	}
	return end, nil
}
