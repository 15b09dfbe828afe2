package web

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/gorilla/csrf"
	"github.com/willemschots/accounts/internal"
	"github.com/willemschots/accounts/internal/account"
	"github.com/willemschots/accounts/internal/errorz"
	"github.com/willemschots/accounts/internal/web/sessions"
)

// viewData is passed to every rendered view.
type viewData struct {
	Version       string
	CSRFFieldName string
	CSRFToken     string
	Successes     []string
	Errors        []string
	Data          any
}

// formData is the data of the registration and edit forms.
type formData struct {
	ID      int
	Form    account.Submission
	Errors  map[string]string
	Message string
	Genders []account.Gender
}

// listData is the data of the user list.
type listData struct {
	Term  string
	Users []account.View
}

func newFormData(id int, sub account.Submission) formData {
	return formData{
		ID:      id,
		Form:    sub,
		Errors:  map[string]string{},
		Genders: account.Genders,
	}
}

// formOf prefills a form with the current values of an account.
// Password fields are left blank, so the password is kept on submit.
func formOf(v account.View) account.Submission {
	return account.Submission{
		FirstName:   v.FirstName,
		LastName:    v.LastName,
		Username:    v.Username,
		Email:       v.Email.String(),
		PhoneNumber: v.PhoneNumber,
		DateOfBirth: v.DateOfBirth.String(),
		Gender:      string(v.Gender),
		Address:     v.Address,
		City:        v.City,
		State:       v.State,
		PostalCode:  v.PostalCode,
		Country:     v.Country,
	}
}

func (s *Server) staticHandler(name string) http.HandlerFunc {
	return s.dataHandler(name, nil)
}

func (s *Server) dataHandler(name string, data any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := s.writeView(w, r, http.StatusOK, name, data)
		if err != nil {
			s.handleError(w, r, err)
			return
		}
	}
}

// writeView renders the named view with data. The flashes in the session
// are shown, and removed from the session.
func (s *Server) writeView(w http.ResponseWriter, r *http.Request, status int, name string, data any) error {
	sess, err := sessionFromCtx(r.Context())
	if err != nil {
		return err
	}

	vd := viewData{
		Version:       internal.AppVersion(),
		CSRFFieldName: csrfTokenField,
		CSRFToken:     csrf.Token(r),
		Successes:     sess.ConsumeFlashes(sessions.FlashSuccess),
		Errors:        sess.ConsumeFlashes(sessions.FlashError),
		Data:          data,
	}

	var buf bytes.Buffer
	err = s.deps.ViewRenderer.Render(&buf, name, vd)
	if err != nil {
		return err
	}

	if sess.NeedsSave() {
		err = s.deps.SessionStore.Save(r, w, sess)
		if err != nil {
			return err
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err = buf.WriteTo(w)
	return err
}

// rerenderForm shows the named form again with the submitted values when err
// is caused by the submission. It reports whether it handled err.
func (s *Server) rerenderForm(w http.ResponseWriter, r *http.Request, name string, id int, sub account.Submission, err error) bool {
	var (
		invalidInput errorz.InvalidInput
		duplicate    errorz.Duplicate
	)

	data := newFormData(id, sub)

	switch {
	case errors.As(err, &invalidInput):
		data.Errors = invalidInput.Fields()
		data.Message = "Please correct the errors below."
	case errors.As(err, &duplicate):
		data.Errors[duplicate.Key] = duplicate.Error()
		data.Message = duplicate.Error()
	default:
		return false
	}

	err = s.writeView(w, r, http.StatusUnprocessableEntity, name, data)
	if err != nil {
		s.handleError(w, r, err)
	}

	return true
}

// redirectNotFound sends the user back to the list when the account does not exist.
func redirectNotFound[IN any](f failure[IN]) bool {
	if !errors.Is(f.err, errorz.ErrNotFound) {
		return false
	}

	err := f.s.redirectWithFlash(f.w, f.r, "/users", sessions.FlashError, "User not found")
	if err != nil {
		f.s.handleError(f.w, f.r, err)
	}

	return true
}
