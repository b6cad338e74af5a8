package validate

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// v is the shared validator/v10 instance backing the primitive rules that
// map onto a tag.
var v = validator.New()

// NotEmpty fails when the value is absent or an empty string.
func NotEmpty(msg string) Rule {
	return func(_ context.Context, _ *Request, _ string, value any) error {
		s, ok := value.(string)
		if !ok || s == "" {
			return errors.New(msg)
		}

		return nil
	}
}

// IsString fails when the value is present but not a string.
func IsString(msg string) Rule {
	return func(_ context.Context, _ *Request, _ string, value any) error {
		if _, ok := value.(string); !ok {
			return errors.New(msg)
		}

		return nil
	}
}

// Tag validates a string value against a validator/v10 tag such as "email"
// or "url", with a fixed message.
func Tag(tag, msg string) Rule {
	return func(_ context.Context, _ *Request, _ string, value any) error {
		s, ok := value.(string)
		if !ok {
			return errors.New(msg)
		}

		if err := v.Var(s, tag); err != nil {
			return errors.New(msg)
		}

		return nil
	}
}

// Email validates an email address.
func Email(msg string) Rule {
	return Tag("email", msg)
}

// URL validates an absolute URL.
func URL(msg string) Rule {
	return Tag("url", msg)
}

// Length bounds the rune length of a string value.
func Length(min, max int, msg string) Rule {
	return func(_ context.Context, _ *Request, _ string, value any) error {
		s, ok := value.(string)
		if !ok {
			return errors.New(msg)
		}

		n := len([]rune(s))
		if n < min || n > max {
			return errors.New(msg)
		}

		return nil
	}
}

// StrongPassword requires at least one lowercase, one uppercase, one digit
// and one symbol.
func StrongPassword(msg string) Rule {
	return func(_ context.Context, _ *Request, _ string, value any) error {
		s, ok := value.(string)
		if !ok {
			return errors.New(msg)
		}

		var lower, upper, digit, symbol bool
		for _, r := range s {
			switch {
			case unicode.IsLower(r):
				lower = true
			case unicode.IsUpper(r):
				upper = true
			case unicode.IsDigit(r):
				digit = true
			default:
				symbol = true
			}
		}

		if !lower || !upper || !digit || !symbol {
			return errors.New(msg)
		}

		return nil
	}
}

// ISO8601 validates an RFC 3339 / ISO 8601 timestamp.
func ISO8601(msg string) Rule {
	return func(_ context.Context, _ *Request, _ string, value any) error {
		s, ok := value.(string)
		if !ok {
			return errors.New(msg)
		}

		if _, err := time.Parse(time.RFC3339, s); err != nil {
			return errors.New(msg)
		}

		return nil
	}
}

// MatchesField fails unless the value equals another body field, used by
// confirm-password rules which are parameterized by the field they must
// equal.
func MatchesField(other, msg string) Rule {
	return func(_ context.Context, r *Request, _ string, value any) error {
		if value != r.body[other] {
			return errors.New(msg)
		}

		return nil
	}
}

// ObjectIDHex fails unless the value is a valid ObjectID hex string.
func ObjectIDHex(msg string) Rule {
	return func(_ context.Context, _ *Request, _ string, value any) error {
		s, ok := value.(string)
		if !ok {
			return errors.New(msg)
		}

		if _, err := bson.ObjectIDFromHex(s); err != nil {
			return errors.New(msg)
		}

		return nil
	}
}

// StringSlice converts a decoded JSON array to []string, failing when any
// element is not a string.
func StringSlice(value any) ([]string, error) {
	raw, ok := value.([]any)
	if !ok {
		return nil, fmt.Errorf("not an array")
	}

	out := make([]string, 0, len(raw))
	for _, item := range raw {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("not an array of strings")
		}
		out = append(out, s)
	}

	return out, nil
}

// AsInt coerces a decoded body value to int. JSON numbers decode as
// float64, so enum-like fields go through this before comparison.
func AsInt(value any) (int, bool) {
	switch n := value.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	default:
		return 0, false
	}
}
