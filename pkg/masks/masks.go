// Package masks hides card and account numbers for display.
package masks

import (
	"regexp"
	"strings"

	"github.com/bcaldwell/bankreport/pkg/diagnostics"
)

const (
	UnknownCard    = "unknown card"
	UnknownAccount = "unknown account"
	AccountLabel   = "Account"

	component = "masks"
)

type Kind int

const (
	Card Kind = iota
	Account
)

func (k Kind) String() string {
	if k == Account {
		return "account"
	}
	return "card"
}

// accountMarkers are compared against the lower-cased text.
var accountMarkers = []string{"account", "счет", "счёт"}

var (
	maskedCard        = regexp.MustCompile(`^(.*?)\s*(\d{4} \d{2}\*\* \*{4} \d{4})$`)
	maskedPartialCard = regexp.MustCompile(`^(.*?)\s*(\d{6}\*{6}\d{4})$`)
)

type Masker struct {
	rec diagnostics.Recorder
}

func New(rec diagnostics.Recorder) *Masker {
	if rec == nil {
		rec = diagnostics.Nop
	}
	return &Masker{rec: rec}
}

// Classify guesses whether text names an account or a card. Text carrying an
// account marker, or a bare run of at least 10 digits that is not exactly 16
// long, is an account. Everything else is treated as a card.
func Classify(text string) Kind {
	text = strings.TrimSpace(text)
	if hasAccountMarker(text) {
		return Account
	}

	digits := digitsOf(text)
	if len(digits) == len(text) && len(digits) >= 10 && len(digits) != 16 {
		return Account
	}

	return Card
}

// Mask never fails: input that cannot be masked safely is returned unchanged
// and a warning is recorded. Masking an already masked value returns the same
// mask.
func (m *Masker) Mask(raw string) string {
	text := strings.TrimSpace(raw)
	if text == "" {
		m.rec.Warn(component, "empty identifier", nil)
		return UnknownCard
	}

	if masked, ok := alreadyMasked(text); ok {
		return masked
	}

	if Classify(text) == Account {
		return m.MaskAccount(text)
	}
	return m.MaskCard(text)
}

// MaskCard renders a card as "LABEL XXXX XX** **** XXXX". Card numbers with
// 10 to 15 digits get the shorter "XXXXXX******XXXX" form.
func (m *Masker) MaskCard(raw string) string {
	text := strings.TrimSpace(raw)
	if text == "" {
		m.rec.Warn(component, "empty card number", nil)
		return UnknownCard
	}

	if masked, ok := alreadyMasked(text); ok {
		return masked
	}

	label, number := splitLabel(text)
	digits := digitsOf(number)

	var masked string
	switch {
	case len(digits) >= 16:
		d := digits[len(digits)-16:]
		masked = d[:4] + " " + d[4:6] + "** **** " + d[12:]
	case len(digits) >= 10:
		masked = digits[:6] + "******" + digits[len(digits)-4:]
	default:
		m.rec.Warn(component, "not enough digits to mask card", map[string]interface{}{"digits": len(digits)})
		return text
	}

	return join(label, masked)
}

// MaskAccount renders an account as "Account **XXXX". An existing label is
// kept in place of the default one.
func (m *Masker) MaskAccount(raw string) string {
	text := strings.TrimSpace(raw)
	if text == "" {
		m.rec.Warn(component, "empty account number", nil)
		return UnknownAccount
	}

	label, number := splitLabel(text)
	digits := digitsOf(number)
	if len(digits) < 4 {
		m.rec.Warn(component, "not enough digits to mask account", map[string]interface{}{"digits": len(digits)})
		return text
	}

	if !hasAccountMarker(label) {
		label = join(label, AccountLabel)
	}

	return label + " **" + digits[len(digits)-4:]
}

func alreadyMasked(text string) (string, bool) {
	if m := maskedCard.FindStringSubmatch(text); m != nil {
		return join(strings.TrimSpace(m[1]), m[2]), true
	}
	if maskedPartialCard.MatchString(text) {
		return text, true
	}
	return "", false
}

// splitLabel separates the leading non-numeric label from the number. Mask
// characters count as part of the number.
func splitLabel(text string) (string, string) {
	i := strings.IndexFunc(text, func(r rune) bool {
		return isDigit(r) || r == '*'
	})
	if i < 0 {
		return text, ""
	}
	return strings.TrimSpace(text[:i]), text[i:]
}

func hasAccountMarker(text string) bool {
	lower := strings.ToLower(text)
	for _, marker := range accountMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func digitsOf(s string) string {
	var b strings.Builder
	for _, r := range s {
		if isDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func join(label, number string) string {
	if label == "" {
		return number
	}
	return label + " " + number
}
