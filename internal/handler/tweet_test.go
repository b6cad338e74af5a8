package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vasapolrittideah/twitter-api/internal/message"
	"github.com/vasapolrittideah/twitter-api/internal/validate"
)

func runCreateTweetSchema(t *testing.T, body string) error {
	t.Helper()

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req, err := validate.NewRequest(r)
	require.NoError(t, err)

	return createTweetSchema().Run(r.Context(), req)
}

func TestCreateTweetSchemaRejectsUnknownEnums(t *testing.T) {
	t.Parallel()

	err := runCreateTweetSchema(t, `{
		"type": 9,
		"audience": 4,
		"parent_id": null,
		"content": "hello",
		"hashtags": [],
		"mentions": [],
		"medias": []
	}`)

	var fieldErrors validate.Errors
	require.ErrorAs(t, err, &fieldErrors)
	assert.Equal(t, message.InvalidTweetType, fieldErrors["type"])
	assert.Equal(t, message.InvalidTweetAudience, fieldErrors["audience"])
}

func TestCreateTweetSchemaChecksMentionIDs(t *testing.T) {
	t.Parallel()

	err := runCreateTweetSchema(t, `{
		"type": 0,
		"audience": 0,
		"parent_id": null,
		"content": "hello",
		"hashtags": [],
		"mentions": ["not-an-object-id"],
		"medias": []
	}`)

	var fieldErrors validate.Errors
	require.ErrorAs(t, err, &fieldErrors)
	assert.Equal(t, message.MentionsMustBeUserIDs, fieldErrors["mentions"])
}

func TestCreateTweetSchemaChecksParentID(t *testing.T) {
	t.Parallel()

	// A comment must point at a real-looking tweet id.
	err := runCreateTweetSchema(t, `{
		"type": 2,
		"audience": 0,
		"parent_id": "not-an-object-id",
		"content": "hello",
		"hashtags": [],
		"mentions": [],
		"medias": []
	}`)

	var fieldErrors validate.Errors
	require.ErrorAs(t, err, &fieldErrors)
	assert.Equal(t, message.ParentIDMustBeValidTweetID, fieldErrors["parent_id"])

	// A plain tweet carries no parent at all.
	err = runCreateTweetSchema(t, `{
		"type": 0,
		"audience": 0,
		"parent_id": "689224a1b2c3d4e5f6a7b8c9",
		"content": "hello",
		"hashtags": [],
		"mentions": [],
		"medias": []
	}`)

	require.ErrorAs(t, err, &fieldErrors)
	assert.Equal(t, message.ParentIDMustBeNull, fieldErrors["parent_id"])
}
