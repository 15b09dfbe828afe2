package web

import (
	"context"
	"errors"
	"net/http"

	"github.com/willemschots/accounts/internal/web/sessions"
)

// sessionMiddleware loads the session and injects it in the request context.
// Sessions only hold flash messages, so a session that can not be decoded
// (for example after a key rotation) is replaced by a new one.
func sessionMiddleware(srv *Server) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := srv.deps.SessionStore.Get(r)
			if err != nil {
				srv.loggerFor(r).Warn("discarding invalid session", "error", err)
			}

			if sess == nil {
				srv.handleError(w, r, errors.New("failed to create session"))
				return
			}

			ctx := ctxWithSession(r.Context(), sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

type ctxKey string

const sessionCtxKey ctxKey = "_session"

func ctxWithSession(ctx context.Context, sess *sessions.Session) context.Context {
	return context.WithValue(ctx, sessionCtxKey, sess)
}

func sessionFromCtx(ctx context.Context) (*sessions.Session, error) {
	sess, ok := ctx.Value(sessionCtxKey).(*sessions.Session)
	if !ok {
		return nil, errors.New("could not get session from context")
	}

	return sess, nil
}

// redirectWithFlash adds a flash message to the session and redirects to url.
func (s *Server) redirectWithFlash(w http.ResponseWriter, r *http.Request, url, kind, msg string) error {
	sess, err := sessionFromCtx(r.Context())
	if err != nil {
		return err
	}

	sess.AddFlash(kind, msg)
	err = s.deps.SessionStore.Save(r, w, sess)
	if err != nil {
		return err
	}

	http.Redirect(w, r, url, http.StatusFound)
	return nil
}
