package validate

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vasapolrittideah/twitter-api/pkg/apperror"
)

func jsonRequest(t *testing.T, body string) *Request {
	t.Helper()

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))

	req, err := NewRequest(r)
	require.NoError(t, err)

	return req
}

func TestNewRequestRejectsInvalidJSON(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{not json"))

	_, err := NewRequest(r)
	require.Error(t, err)

	var fieldErrors Errors
	require.ErrorAs(t, err, &fieldErrors)
	assert.Contains(t, fieldErrors, "body")
}

func TestSchemaCollectsOneErrorPerField(t *testing.T) {
	t.Parallel()

	schema := Schema{
		Body("name", NotEmpty("Name is required"), Length(5, 100, "Name length must be from 5 to 100")),
		Body("email", NotEmpty("Email is required"), Email("Email is invalid")),
	}

	req := jsonRequest(t, `{"name": "", "email": "not-an-email"}`)

	err := schema.Run(context.Background(), req)
	require.Error(t, err)

	var fieldErrors Errors
	require.ErrorAs(t, err, &fieldErrors)

	// First failing rule per field wins; later rules do not overwrite it.
	assert.Equal(t, Errors{
		"name":  "Name is required",
		"email": "Email is invalid",
	}, fieldErrors)
}

func TestSchemaShortCircuitsOnTerminalError(t *testing.T) {
	t.Parallel()

	terminal := apperror.Unauthorized("Used refresh token or not exist")

	ran := false
	schema := Schema{
		Body("refresh_token", func(context.Context, *Request, string, any) error {
			return terminal
		}),
		Body("name", func(context.Context, *Request, string, any) error {
			ran = true
			return errors.New("never aggregated")
		}),
	}

	req := jsonRequest(t, `{"refresh_token": "x", "name": "y"}`)

	err := schema.Run(context.Background(), req)

	var appErr *apperror.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusUnauthorized, appErr.Status)
	assert.False(t, ran)
}

func TestSchemaSkipsAbsentOptionalField(t *testing.T) {
	t.Parallel()

	schema := Schema{
		OptionalBody("bio", func(context.Context, *Request, string, any) error {
			return errors.New("should not run")
		}),
	}

	req := jsonRequest(t, `{}`)

	require.NoError(t, schema.Run(context.Background(), req))
}

func TestSchemaRunsPresentOptionalField(t *testing.T) {
	t.Parallel()

	schema := Schema{
		OptionalBody("bio", IsString("Bio must be a string")),
	}

	req := jsonRequest(t, `{"bio": 42}`)

	err := schema.Run(context.Background(), req)

	var fieldErrors Errors
	require.ErrorAs(t, err, &fieldErrors)
	assert.Equal(t, "Bio must be a string", fieldErrors["bio"])
}

func TestMatchesField(t *testing.T) {
	t.Parallel()

	schema := Schema{
		Body("confirm_password", MatchesField("password", "Confirm password must be the same as password")),
	}

	req := jsonRequest(t, `{"password": "Abc123!x", "confirm_password": "Abc123!x"}`)
	require.NoError(t, schema.Run(context.Background(), req))

	req = jsonRequest(t, `{"password": "Abc123!x", "confirm_password": "different"}`)
	err := schema.Run(context.Background(), req)

	var fieldErrors Errors
	require.ErrorAs(t, err, &fieldErrors)
	assert.Equal(t, "Confirm password must be the same as password", fieldErrors["confirm_password"])
}

func TestStrongPassword(t *testing.T) {
	t.Parallel()

	rule := StrongPassword("weak")

	cases := map[string]bool{
		"Abc123!x":  true,
		"alllower1": false,
		"ALLUPPER1": false,
		"NoDigits!": false,
		"NoSymb0l":  false,
	}

	for password, ok := range cases {
		err := rule(context.Background(), nil, "password", password)
		if ok {
			assert.NoError(t, err, password)
		} else {
			assert.Error(t, err, password)
		}
	}
}

func TestISO8601(t *testing.T) {
	t.Parallel()

	rule := ISO8601("bad date")

	assert.NoError(t, rule(context.Background(), nil, "date_of_birth", "2000-01-02T15:04:05Z"))
	assert.Error(t, rule(context.Background(), nil, "date_of_birth", "02/01/2000"))
	assert.Error(t, rule(context.Background(), nil, "date_of_birth", 20000102))
}

func TestAsIntCoercesJSONNumbers(t *testing.T) {
	t.Parallel()

	// JSON numbers arrive as float64.
	n, ok := AsInt(float64(7))
	require.True(t, ok)
	assert.Equal(t, 7, n)

	n, ok = AsInt(3)
	require.True(t, ok)
	assert.Equal(t, 3, n)

	_, ok = AsInt("7")
	assert.False(t, ok)
}

func TestErrorsMessageIsStable(t *testing.T) {
	t.Parallel()

	fieldErrors := Errors{"b": "second", "a": "first"}

	// Sorted by field name so the rendering is deterministic.
	assert.Equal(t, "a: first; b: second", fieldErrors.Error())
}

func TestRequestStash(t *testing.T) {
	t.Parallel()

	req := jsonRequest(t, `{}`)

	req.Set("user", "stashed")

	value, ok := req.Get("user")
	require.True(t, ok)
	assert.Equal(t, "stashed", value)

	_, ok = req.Get("missing")
	assert.False(t, ok)
}

func TestContextRoundtrip(t *testing.T) {
	t.Parallel()

	req := jsonRequest(t, `{}`)

	ctx := WithRequest(context.Background(), req)
	assert.Same(t, req, FromContext(ctx))
	assert.Nil(t, FromContext(context.Background()))
}
