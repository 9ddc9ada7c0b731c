package ipv4

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Classification is the address type shown next to a lookup result
type Classification string

const (
	Private Classification = "private"
	Public  Classification = "public"
)

// ValidationTag is the go-playground/validator tag backed by IsValid
const ValidationTag = "dottedquad"

// dottedQuad matches four dot-separated groups of one to three digits.
// Leading zeros pass on purpose ("010.1.1.1" is accepted); only the numeric
// range is checked afterwards.
var dottedQuad = regexp.MustCompile(`^(\d{1,3}\.){3}\d{1,3}$`)

// IsValid reports whether candidate is a dotted-quad IPv4 literal
// The caller is expected to trim whitespace first.
func IsValid(candidate string) bool {
	_, ok := Parse(candidate)
	return ok
}

// IsPrivate reports whether address falls in 10/8, 172.16/12, 192.168/16
// or the loopback block 127/8. Addresses that are not a valid dotted quad
// are never private.
func IsPrivate(address string) bool {
	octets, ok := Parse(address)
	if !ok {
		return false
	}

	switch {
	case octets[0] == 10:
		return true
	case octets[0] == 172 && octets[1] >= 16 && octets[1] <= 31:
		return true
	case octets[0] == 192 && octets[1] == 168:
		return true
	case octets[0] == 127:
		return true
	}
	return false
}

// Classify maps an address to its display classification
func Classify(address string) Classification {
	if IsPrivate(address) {
		return Private
	}
	return Public
}

// RegisterValidation installs the dottedquad tag on v
func RegisterValidation(v *validator.Validate) error {
	return v.RegisterValidation(ValidationTag, func(fl validator.FieldLevel) bool {
		return IsValid(fl.Field().String())
	})
}

// Parse returns the four octets of a dotted quad, accepting leading zeros
// ("008.008.008.008" yields 8, 8, 8, 8).
func Parse(s string) ([4]int, bool) {
	var octets [4]int
	if !dottedQuad.MatchString(s) {
		return octets, false
	}

	for i, part := range strings.Split(s, ".") {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 || n > 255 {
			return octets, false
		}
		octets[i] = n
	}
	return octets, true
}
