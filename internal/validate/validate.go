// Package validate implements the declarative request-validation pipeline
// that gates every mutating endpoint. A schema is an ordered list of fields,
// each with an ordered rule chain. Rules are plain functions; a rule that
// returns an ordinary error records a recoverable per-field failure, while a
// rule that returns an *apperror.Error aborts the whole run and becomes the
// terminal response for the request. The distinction is made purely by error
// kind, never by field name or rule position.
package validate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/vasapolrittideah/twitter-api/pkg/apperror"
)

// Errors aggregates recoverable validation failures, one message per field.
// It is rendered as the `errors` object of a 422 response.
type Errors map[string]string

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+e[field])
	}

	return strings.Join(parts, "; ")
}

// Source tells a field where its value comes from.
type Source int

const (
	SourceBody Source = iota
	SourceParam
	SourceQuery
)

// Rule checks one value. Rules run in declared order and the first failure
// stops the chain for that field. A rule may stash side effects (decoded
// claims, a matched database record) on the Request for the handler to
// reuse.
type Rule func(ctx context.Context, r *Request, field string, value any) error

// Field declares the rule chain for one named input.
type Field struct {
	Name     string
	Source   Source
	Optional bool
	Rules    []Rule
}

// Body declares a required body field.
func Body(name string, rules ...Rule) Field {
	return Field{Name: name, Source: SourceBody, Rules: rules}
}

// OptionalBody declares a body field whose rules run only when it is
// present, used by partial-update endpoints.
func OptionalBody(name string, rules ...Rule) Field {
	return Field{Name: name, Source: SourceBody, Optional: true, Rules: rules}
}

// Param declares a URL parameter field.
func Param(name string, rules ...Rule) Field {
	return Field{Name: name, Source: SourceParam, Rules: rules}
}

// Query declares a required query-string field.
func Query(name string, rules ...Rule) Field {
	return Field{Name: name, Source: SourceQuery, Rules: rules}
}

// Schema is the declarative rule set for one endpoint.
type Schema []Field

// Run executes all rules for all fields against the request, collecting the
// first recoverable failure per field. A non-recoverable *apperror.Error
// short-circuits immediately and is returned as-is; otherwise a non-empty
// Errors map is returned, or nil when everything passed.
func (s Schema) Run(ctx context.Context, r *Request) error {
	fieldErrors := Errors{}

	for _, field := range s {
		value, present := r.Lookup(field.Name, field.Source)
		if !present && field.Optional {
			continue
		}

		for _, rule := range field.Rules {
			err := rule(ctx, r, field.Name, value)
			if err == nil {
				continue
			}

			var appErr *apperror.Error
			if errors.As(err, &appErr) {
				return appErr
			}

			fieldErrors[field.Name] = err.Error()
			break
		}
	}

	if len(fieldErrors) > 0 {
		return fieldErrors
	}

	return nil
}

// Request is the per-request view the pipeline operates on: the decoded JSON
// body, URL parameters, the query string, and a stash for values that rules
// attach for the handler.
type Request struct {
	body  map[string]any
	http  *http.Request
	stash map[string]any
}

// NewRequest decodes the request body (when there is one) and wraps the
// request for the pipeline. A syntactically invalid JSON body is a
// recoverable failure on the pseudo-field "body".
func NewRequest(r *http.Request) (*Request, error) {
	req := &Request{
		body:  map[string]any{},
		http:  r,
		stash: map[string]any{},
	}

	if r.Body != nil && r.Body != http.NoBody {
		if err := json.NewDecoder(r.Body).Decode(&req.body); err != nil {
			return nil, Errors{"body": "Body must be valid JSON"}
		}
	}

	return req, nil
}

// Lookup resolves a field value from its declared source.
func (r *Request) Lookup(name string, source Source) (any, bool) {
	switch source {
	case SourceBody:
		value, ok := r.body[name]
		return value, ok
	case SourceParam:
		value := chi.URLParam(r.http, name)
		return value, value != ""
	case SourceQuery:
		value := r.http.URL.Query().Get(name)
		return value, value != ""
	default:
		return nil, false
	}
}

// BodyString returns a body field as a string, or "" when absent or not a
// string.
func (r *Request) BodyString(name string) string {
	s, _ := r.body[name].(string)
	return s
}

// BodyValue returns the raw decoded body field.
func (r *Request) BodyValue(name string) (any, bool) {
	value, ok := r.body[name]
	return value, ok
}

// Set stashes a value produced by a rule for the handler to pick up.
func (r *Request) Set(key string, value any) {
	r.stash[key] = value
}

// Get returns a stashed value.
func (r *Request) Get(key string) (any, bool) {
	value, ok := r.stash[key]
	return value, ok
}

type contextKey struct{}

var requestKey = contextKey{}

// WithRequest attaches the validated request to a context.
func WithRequest(ctx context.Context, r *Request) context.Context {
	return context.WithValue(ctx, requestKey, r)
}

// FromContext returns the validated request attached by the validation
// middleware, or nil.
func FromContext(ctx context.Context) *Request {
	r, _ := ctx.Value(requestKey).(*Request)
	return r
}
