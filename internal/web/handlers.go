package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/schema"
	"github.com/willemschots/accounts/internal/account"
	"github.com/willemschots/accounts/internal/errorz"
)

// maxBodySize limits the size of JSON request bodies.
const maxBodySize = 1 << 20

// jsonBody decodes the JSON request body into a value of type IN.
func jsonBody[IN any](r *http.Request) (IN, error) {
	var in IN

	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodySize))
	err := dec.Decode(&in)
	if err != nil {
		return in, errorz.InvalidInput{errorz.Keyed{
			Key: "body",
			Err: fmt.Errorf("invalid JSON: %w", err),
		}}
	}

	return in, nil
}

// formBody decodes the submitted form into a value of type IN.
func formBody[IN any](s *Server, r *http.Request) (IN, error) {
	var in IN
	err := r.ParseForm()
	if err != nil {
		return in, err
	}

	// Remove the CSRF token from the form, it won't need to be mapped
	// to any target types and the decoder will fail on it.
	r.PostForm.Del(csrfTokenField)

	err = s.decoder.Decode(&in, r.PostForm)
	return in, decodeError(err)
}

func decodeError(err error) error {
	if err == nil {
		return nil
	}

	var multiErr schema.MultiError
	if errors.As(err, &multiErr) {
		var invalidInput errorz.InvalidInput
		for key, e := range multiErr {
			invalidInput = append(invalidInput, errorz.Keyed{
				Key: key,
				Err: e,
			})
		}

		return invalidInput
	}

	return err
}

// pathID parses the {id} path value. Ids that are not numbers are invalid
// input, numbers that can't be an account id are not found.
func pathID(r *http.Request) (int, error) {
	raw := r.PathValue("id")

	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errorz.InvalidInput{errorz.Keyed{
			Key: "id",
			Err: fmt.Errorf("invalid id %q", raw),
		}}
	}

	if id < 1 {
		return 0, fmt.Errorf("account %d: %w", id, errorz.ErrNotFound)
	}

	return id, nil
}

func pathValue(name string) func(*http.Request) (string, error) {
	return func(r *http.Request) (string, error) {
		return r.PathValue(name), nil
	}
}

func queryValue(name string) func(*http.Request) (string, error) {
	return func(r *http.Request) (string, error) {
		return r.URL.Query().Get(name), nil
	}
}

// idSubmission is a submission for the account with ID.
type idSubmission struct {
	ID  int
	Sub account.Submission
}

func jsonIDSubmission(r *http.Request) (idSubmission, error) {
	id, err := pathID(r)
	if err != nil {
		return idSubmission{}, err
	}

	sub, err := jsonBody[account.Submission](r)
	if err != nil {
		return idSubmission{}, err
	}

	return idSubmission{ID: id, Sub: sub}, nil
}

func (s *Server) formIDSubmission(r *http.Request) (idSubmission, error) {
	id, err := pathID(r)
	if err != nil {
		return idSubmission{}, err
	}

	sub, err := formBody[account.Submission](s, r)
	if err != nil {
		return idSubmission{}, err
	}

	return idSubmission{ID: id, Sub: sub}, nil
}

func (s *Server) updateAccount(ctx context.Context, in idSubmission) (account.View, error) {
	return s.deps.Accounts.Update(ctx, in.ID, in.Sub)
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

// errorBody is the JSON body of every failed API request.
type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func (s *Server) handleError(w http.ResponseWriter, r *http.Request, err error) {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		s.handleAPIError(w, r, err)
		return
	}

	var (
		invalidInput errorz.InvalidInput
		duplicate    errorz.Duplicate
	)

	switch {
	case errors.Is(err, errorz.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.As(err, &invalidInput):
		http.Error(w, "invalid input", http.StatusBadRequest)
	case errors.As(err, &duplicate):
		http.Error(w, duplicate.Error(), http.StatusConflict)
	default:
		s.loggerFor(r).Error("internal server error", "url", r.URL.String(), "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

func (s *Server) handleAPIError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		invalidInput errorz.InvalidInput
		duplicate    errorz.Duplicate
		status       int
		body         errorBody
	)

	switch {
	case errors.As(err, &invalidInput):
		status = http.StatusBadRequest
		body = errorBody{Error: "validation failed", Fields: invalidInput.Fields()}
	case errors.As(err, &duplicate):
		status = http.StatusConflict
		body = errorBody{Error: duplicate.Error(), Fields: map[string]string{duplicate.Key: duplicate.Error()}}
	case errors.Is(err, errorz.ErrNotFound):
		status = http.StatusNotFound
		body = errorBody{Error: err.Error()}
	default:
		s.loggerFor(r).Error("internal server error", "url", r.URL.String(), "error", err)
		status = http.StatusInternalServerError
		body = errorBody{Error: "internal server error"}
	}

	err = writeJSON(w, status, body)
	if err != nil {
		s.loggerFor(r).Error("failed to write error response", "url", r.URL.String(), "error", err)
	}
}
