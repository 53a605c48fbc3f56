package validator

import (
	"fmt"
	"net/mail"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"
)

// E.164: leading plus, up to 15 digits, no leading zero.
var phoneRegex = regexp.MustCompile(`^\+[1-9]\d{6,14}$`)

// Required validates that a string is not empty after trimming whitespace.
func Required(field, value string) Rule {
	return Rule{
		Check: func() bool {
			return strings.TrimSpace(value) != ""
		},
		Error: ValidationError{Field: field, Message: "field is required"},
	}
}

// RequiredOneOf passes when at least one of the values is non-blank.
func RequiredOneOf(field string, values ...string) Rule {
	return Rule{
		Check: func() bool {
			return slices.ContainsFunc(values, func(v string) bool {
				return strings.TrimSpace(v) != ""
			})
		},
		Error: ValidationError{Field: field, Message: "at least one value is required"},
	}
}

// ExactlyOne passes when exactly one of the values is non-blank.
func ExactlyOne(field string, values ...string) Rule {
	return Rule{
		Check: func() bool {
			n := 0
			for _, v := range values {
				if strings.TrimSpace(v) != "" {
					n++
				}
			}
			return n == 1
		},
		Error: ValidationError{Field: field, Message: "exactly one value must be set"},
	}
}

// MaxLen validates the rune count of a string.
func MaxLen(field, value string, max int) Rule {
	return Rule{
		Check: func() bool {
			return utf8.RuneCountInString(value) <= max
		},
		Error: ValidationError{Field: field, Message: fmt.Sprintf("must be at most %d characters long", max)},
	}
}

// MaxBytes validates the encoded size of a payload.
func MaxBytes(field string, size, max int) Rule {
	return Rule{
		Check: func() bool {
			return size <= max
		},
		Error: ValidationError{Field: field, Message: fmt.Sprintf("must be at most %d bytes, got %d", max, size)},
	}
}

// RequiredSlice validates that a slice has at least one element.
func RequiredSlice[T any](field string, value []T) Rule {
	return Rule{
		Check: func() bool {
			return len(value) > 0
		},
		Error: ValidationError{Field: field, Message: "field is required"},
	}
}

// MaxCount validates an item count against an upper bound.
func MaxCount(field string, count, max int) Rule {
	return Rule{
		Check: func() bool {
			return count <= max
		},
		Error: ValidationError{Field: field, Message: fmt.Sprintf("must have at most %d items", max)},
	}
}

// OneOf validates that value is one of the allowed values. Empty values pass;
// combine with Required when the field is mandatory.
func OneOf[T comparable](field string, value T, allowed ...T) Rule {
	return Rule{
		Check: func() bool {
			var zero T
			return value == zero || slices.Contains(allowed, value)
		},
		Error: ValidationError{Field: field, Message: fmt.Sprintf("must be one of %v", allowed)},
	}
}

// ValidEmail validates an address per RFC 5322, requiring a dotted domain.
// Display-name forms ("Jane <jane@example.com>") are accepted.
func ValidEmail(field, value string) Rule {
	return Rule{
		Check: func() bool {
			return isEmail(value)
		},
		Error: ValidationError{Field: field, Message: "must be a valid email address"},
	}
}

// ValidEmails validates every address in the list. Empty lists pass.
func ValidEmails(field string, values []string) Rule {
	return Rule{
		Check: func() bool {
			for _, v := range values {
				if !isEmail(v) {
					return false
				}
			}
			return true
		},
		Error: ValidationError{Field: field, Message: "must contain only valid email addresses"},
	}
}

// ValidPhone validates an E.164 phone number such as +14155550100.
func ValidPhone(field, value string) Rule {
	return Rule{
		Check: func() bool {
			return phoneRegex.MatchString(strings.TrimPrefix(value, "whatsapp:"))
		},
		Error: ValidationError{Field: field, Message: "must be a valid phone number in E.164 format"},
	}
}

func isEmail(value string) bool {
	if strings.TrimSpace(value) == "" {
		return false
	}

	addr, err := mail.ParseAddress(value)
	if err != nil {
		return false
	}

	local, domain, ok := strings.Cut(addr.Address, "@")
	if !ok || local == "" {
		return false
	}
	if !strings.Contains(domain, ".") || strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") {
		return false
	}
	for part := range strings.SplitSeq(domain, ".") {
		if part == "" {
			return false
		}
	}
	return true
}

// Optional skips rule when value is blank.
func Optional(value string, rule Rule) Rule {
	return Rule{
		Check: func() bool {
			return strings.TrimSpace(value) == "" || rule.Check()
		},
		Error: rule.Error,
	}
}
