// Package phone normalizes Belarusian phone numbers to the canonical
// +375 (XX) XXX-XX-XX form.
package phone

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalid = errors.New("invalid phone number")

// digits strips everything that is not an ASCII digit.
func digits(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Normalize validates raw against the three accepted patterns and rewrites
// it to canonical form:
//
//	375XXXXXXXXX (12 digits): taken as is
//	80XXXXXXXXX  (11 digits): 80 replaced with 375
//	29XXXXXXX    (9 digits):  375 prepended
//
// Anything else is rejected with ErrInvalid and must be re-prompted.
func Normalize(raw string) (string, error) {
	cleaned := digits(raw)

	switch {
	case strings.HasPrefix(cleaned, "375") && len(cleaned) == 12:
		// already in country-code form
	case strings.HasPrefix(cleaned, "80") && len(cleaned) == 11:
		cleaned = "375" + cleaned[2:]
	case strings.HasPrefix(cleaned, "29") && len(cleaned) == 9:
		cleaned = "375" + cleaned
	default:
		return "", ErrInvalid
	}

	return fmt.Sprintf("+375 (%s) %s-%s-%s",
		cleaned[3:5], cleaned[5:8], cleaned[8:10], cleaned[10:]), nil
}
