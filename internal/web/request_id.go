package web

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
)

const (
	requestIDHeader        = "X-Request-ID"
	requestIDCtxKey ctxKey = "_requestID"
)

// requestIDMiddleware tags every request with an id that is returned in the
// X-Request-ID header and added to log lines. A valid UUID sent by the
// client is reused, anything else is replaced by a new one.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(r.Header.Get(requestIDHeader))
		if err != nil {
			id = uuid.New()
		}

		w.Header().Set(requestIDHeader, id.String())

		ctx := context.WithValue(r.Context(), requestIDCtxKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// loggerFor returns the server logger annotated with the request id.
func (s *Server) loggerFor(r *http.Request) *slog.Logger {
	id, ok := r.Context().Value(requestIDCtxKey).(uuid.UUID)
	if !ok {
		return s.deps.Logger
	}

	return s.deps.Logger.With("requestId", id.String())
}
