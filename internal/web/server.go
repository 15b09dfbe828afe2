package web

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/cors"
	"github.com/gorilla/csrf"
	"github.com/gorilla/schema"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/willemschots/accounts/internal/account"
	"github.com/willemschots/accounts/internal/krypto"
	"github.com/willemschots/accounts/internal/metrics"
	"github.com/willemschots/accounts/internal/web/sessions"
)

const (
	csrfTokenCookieName = "accounts-csrf"
	csrfTokenField      = "csrf_token"
)

// ViewRenderer renders named views with the given data.
type ViewRenderer interface {
	Render(w io.Writer, name string, data any) error
}

// ServerDeps are the dependencies for the server.
type ServerDeps struct {
	Logger       *slog.Logger
	ViewRenderer ViewRenderer
	Accounts     *account.Service
	SessionStore *sessions.Store
	DistFS       http.FileSystem
	Metrics      *metrics.Metrics
	Gatherer     prometheus.Gatherer
}

// ServerConfig is the configuration for the server.
type ServerConfig struct {
	CSRFKey      krypto.Key
	SecureCookie bool
	CORSOrigins  []string
}

type Server struct {
	deps    *ServerDeps
	pages   *http.ServeMux
	api     *http.ServeMux
	decoder *schema.Decoder
	handler http.Handler
}

func NewServer(deps *ServerDeps, cfg ServerConfig) *Server {
	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)

	s := &Server{
		deps:    deps,
		pages:   http.NewServeMux(),
		api:     http.NewServeMux(),
		decoder: decoder,
	}

	s.registerAPI()
	s.registerPages()

	// Only the pages are CSRF protected, the API is meant for
	// other origins and does not use cookies.
	csrfMW := csrf.Protect(
		cfg.CSRFKey.SecretValue(),
		csrf.CookieName(csrfTokenCookieName),
		csrf.FieldName(csrfTokenField),
		csrf.Secure(cfg.SecureCookie),
		csrf.Path("/"),
	)

	corsMW := cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{requestIDHeader},
		MaxAge:         3600,
	})

	root := http.NewServeMux()
	root.Handle("/api/", corsMW(s.api))
	root.Handle("GET /metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	root.Handle("/static/", http.StripPrefix("/static/", http.FileServer(deps.DistFS)))
	root.Handle("/", chain(s.pages,
		plaintext(!cfg.SecureCookie),
		csrfMW,
		sessionMiddleware(s),
	))

	s.handler = deps.Metrics.InstrumentHandler(requestIDMiddleware(root))

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// registerAPI registers the JSON API endpoints.
//
// Most endpoints are created using the map functions, these return handlers that
// map between HTTP requests, target functions and HTTP responses.
func (s *Server) registerAPI() {
	accounts := s.deps.Accounts

	{
		h := mapBoth(s, accounts.Register)
		h.response(func(r result[account.Submission, account.View]) error {
			return writeJSON(r.w, http.StatusCreated, r.out)
		})

		s.api.Handle("POST /api/users/register", h)
	}

	s.api.Handle("GET /api/users", mapResponse(s, accounts.List))
	s.api.Handle("GET /api/users/active", mapResponse(s, accounts.ListActive))
	s.api.Handle("GET /api/users/search", mapBoth(s, accounts.Search).request(queryValue("term")))

	s.api.Handle("GET /api/users/{id}", mapBoth(s, accounts.Get).request(pathID))
	s.api.Handle("GET /api/users/email/{email}", mapBoth(s, accounts.GetByEmail).request(pathValue("email")))
	s.api.Handle("GET /api/users/username/{username}", mapBoth(s, accounts.GetByUsername).request(pathValue("username")))

	s.api.Handle("PUT /api/users/{id}", mapBoth(s, s.updateAccount).request(jsonIDSubmission))
	s.api.Handle("PATCH /api/users/{id}/deactivate", mapRequest(s, accounts.Deactivate).request(pathID))
	s.api.Handle("DELETE /api/users/{id}", mapRequest(s, accounts.Delete).request(pathID))

	s.api.Handle("GET /api/users/check/email/{email}", mapBoth(s, accounts.EmailExists).request(pathValue("email")))
	s.api.Handle("GET /api/users/check/username/{username}", mapBoth(s, accounts.UsernameExists).request(pathValue("username")))
}

// registerPages registers the server rendered HTML pages.
func (s *Server) registerPages() {
	accounts := s.deps.Accounts

	s.pages.Handle("GET /{$}", s.staticHandler("index"))

	// Registration endpoints.
	s.pages.Handle("GET /register", s.dataHandler("registration-form", newFormData(0, account.Submission{})))
	{
		h := mapBoth(s, accounts.Register)
		h.request(func(r *http.Request) (account.Submission, error) {
			return formBody[account.Submission](s, r)
		})
		h.response(func(r result[account.Submission, account.View]) error {
			msg := fmt.Sprintf("Registration successful! Welcome, %s!", r.out.FirstName)
			return r.s.redirectWithFlash(r.w, r.r, "/registration-success", sessions.FlashSuccess, msg)
		})
		h.onFail(func(f failure[account.Submission]) bool {
			return f.s.rerenderForm(f.w, f.r, "registration-form", 0, f.in, f.err)
		})

		s.pages.Handle("POST /register", h)
	}
	s.pages.Handle("GET /registration-success", s.staticHandler("registration-success"))

	// User list, optionally filtered by name.
	{
		h := mapBoth(s, accounts.Search)
		h.request(queryValue("term"))
		h.response(func(r result[string, []account.View]) error {
			return r.s.writeView(r.w, r.r, http.StatusOK, "user-list", listData{Term: r.in, Users: r.out})
		})

		s.pages.Handle("GET /users", h)
	}

	// User details.
	{
		h := mapBoth(s, accounts.Get)
		h.request(pathID)
		h.response(func(r result[int, account.View]) error {
			return r.s.writeView(r.w, r.r, http.StatusOK, "user-details", r.out)
		})
		h.onFail(redirectNotFound[int])

		s.pages.Handle("GET /users/{id}", h)
	}

	// Edit user endpoints.
	{
		h := mapBoth(s, accounts.Get)
		h.request(pathID)
		h.response(func(r result[int, account.View]) error {
			return r.s.writeView(r.w, r.r, http.StatusOK, "edit-user", newFormData(r.in, formOf(r.out)))
		})
		h.onFail(redirectNotFound[int])

		s.pages.Handle("GET /users/{id}/edit", h)
	}
	{
		h := mapBoth(s, s.updateAccount)
		h.request(s.formIDSubmission)
		h.response(func(r result[idSubmission, account.View]) error {
			url := fmt.Sprintf("/users/%d", r.out.ID)
			return r.s.redirectWithFlash(r.w, r.r, url, sessions.FlashSuccess, "User updated successfully!")
		})
		h.onFail(func(f failure[idSubmission]) bool {
			if redirectNotFound(f) {
				return true
			}
			return f.s.rerenderForm(f.w, f.r, "edit-user", f.in.ID, f.in.Sub, f.err)
		})

		s.pages.Handle("POST /users/{id}/edit", h)
	}

	// Deactivate and delete endpoints.
	{
		h := mapRequest(s, accounts.Deactivate)
		h.request(pathID)
		h.response(func(r result[int, struct{}]) error {
			url := fmt.Sprintf("/users/%d", r.in)
			return r.s.redirectWithFlash(r.w, r.r, url, sessions.FlashSuccess, "User deactivated successfully!")
		})
		h.onFail(redirectNotFound[int])

		s.pages.Handle("POST /users/{id}/deactivate", h)
	}
	{
		h := mapRequest(s, accounts.Delete)
		h.request(pathID)
		h.response(func(r result[int, struct{}]) error {
			return r.s.redirectWithFlash(r.w, r.r, "/users", sessions.FlashSuccess, "User deleted successfully!")
		})
		h.onFail(redirectNotFound[int])

		s.pages.Handle("POST /users/{id}/delete", h)
	}
}

// chain wraps h with the middlewares, the first middleware is the outermost.
func chain(h http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

// plaintext marks requests as plain HTTP for the CSRF middleware, which
// otherwise assumes TLS and requires a matching Referer header.
func plaintext(enabled bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !enabled {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
		})
	}
}
