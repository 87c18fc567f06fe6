package respond

import (
	"fmt"
	"net/http"
	"net/mail"
	"strconv"
	"strings"
)

// Validator collects field errors in request order.
type Validator struct {
	errs []FieldError
}

func (v *Validator) Add(field, message string) {
	v.errs = append(v.errs, FieldError{Field: field, Message: message})
}

func (v *Validator) Check(ok bool, field, message string) {
	if !ok {
		v.Add(field, message)
	}
}

func (v *Validator) Errors() []FieldError { return v.errs }

func (v *Validator) Valid() bool { return len(v.errs) == 0 }

// NormalizeEmail trims and lower-cases an address, reporting whether it is well formed.
func NormalizeEmail(raw string) (string, bool) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", false
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email[strings.Index(email, "@"):], ".") {
		return email, false
	}
	return email, true
}

// IntQuery reads an optional integer query parameter bounded to [min, max].
// Out-of-range or malformed values are recorded against the field and def is returned.
func (v *Validator) IntQuery(r *http.Request, name string, def, min, max int) int {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < min || n > max {
		v.Add(name, fmt.Sprintf("must be an integer between %d and %d", min, max))
		return def
	}
	return n
}
