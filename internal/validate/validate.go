// Package validate checks raw form input for the user add/edit forms.
//
// Every validator takes a single field value and returns a human-readable
// message, or the empty string when the value is acceptable.
package validate

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/msomdec/user-roster/internal/domain"
)

const (
	MinAge = 1
	MaxAge = 150

	// PhoneDigits is the length of a national (NANP style) phone number.
	PhoneDigits = 10
)

const (
	MsgRequired     = "This field is required."
	MsgAlphabetical = "Only letters and spaces are allowed."
	MsgAgeNumber    = "Age must be a whole number."
	MsgAgeRange     = "Age must be between 1 and 150."
	MsgPhone        = "Phone number must be 10 digits and cannot start with 0 or 1."
)

// NANP area codes never start with 0 or 1, which also keeps the number
// intact when stored as an integer.
var rePhone = regexp.MustCompile(`^[2-9][0-9]{9}$`)

// Required fails when the trimmed value is empty.
func Required(value string) string {
	if strings.TrimSpace(value) == "" {
		return MsgRequired
	}
	return ""
}

// Alphabetical fails when the value is empty or contains anything other
// than letters and whitespace.
func Alphabetical(value string) string {
	if msg := Required(value); msg != "" {
		return msg
	}
	for _, r := range value {
		if !unicode.IsLetter(r) && !unicode.IsSpace(r) {
			return MsgAlphabetical
		}
	}
	return ""
}

// Age fails when the value is empty, not an integer, or outside MinAge..MaxAge.
func Age(value string) string {
	if msg := Required(value); msg != "" {
		return msg
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return MsgAgeNumber
	}
	if n < MinAge || n > MaxAge {
		return MsgAgeRange
	}
	return ""
}

// MobileNumber fails when the value is empty or is not a PhoneDigits long
// national number.
func MobileNumber(value string) string {
	if msg := Required(value); msg != "" {
		return msg
	}
	if !rePhone.MatchString(strings.TrimSpace(value)) {
		return MsgPhone
	}
	return ""
}

// Form validates the fields in a fixed order (first name, last name, age,
// phone) and stops at the first failure. Only that field's message is set.
// When every field passes it returns empty errors and true.
func Form(f domain.UserForm) (domain.FieldErrors, bool) {
	var errs domain.FieldErrors

	if msg := Alphabetical(f.FirstName); msg != "" {
		errs.FirstName = msg
		return errs, false
	}
	if msg := Alphabetical(f.LastName); msg != "" {
		errs.LastName = msg
		return errs, false
	}
	if msg := Age(f.Age); msg != "" {
		errs.Age = msg
		return errs, false
	}
	if msg := MobileNumber(f.PhoneNumber); msg != "" {
		errs.PhoneNumber = msg
		return errs, false
	}
	return errs, true
}

// Input validates an already-typed payload with the same rules as Form.
func Input(in domain.UserInput) error {
	errs, ok := Form(domain.FormFromInput(in))
	if ok {
		return nil
	}
	return errs.Err()
}
