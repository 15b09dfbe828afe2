package sessions

import (
	"net/http"

	"github.com/gorilla/sessions"
)

const CookieName = "accounts-session"

type Store struct {
	store sessions.Store
}

func NewStore(store sessions.Store) *Store {
	return &Store{store: store}
}

// NewCookieStore creates a store that keeps sessions in cookies signed
// (and encrypted) with keyPairs, see sessions.NewCookieStore.
func NewCookieStore(secure bool, keyPairs ...[]byte) *Store {
	cs := sessions.NewCookieStore(keyPairs...)
	cs.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400,
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	return NewStore(cs)
}

// Get returns the session of r. When the session cookie can't be decoded
// Get returns a new session along with the error.
func (s *Store) Get(r *http.Request) (*Session, error) {
	base, err := s.store.Get(r, CookieName)
	if base == nil {
		return nil, err
	}

	return &Session{base: base}, err
}

func (s *Store) Save(r *http.Request, w http.ResponseWriter, sess *Session) error {
	err := s.store.Save(r, w, sess.base)
	if err != nil {
		return err
	}

	sess.needsSave = false
	return nil
}
