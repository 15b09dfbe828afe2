package account

import (
	"time"

	"github.com/willemschots/accounts/internal/email"
)

// View is the outward facing projection of an Account. It holds every
// field of Account except the password hash.
type View struct {
	ID            int           `json:"userId"`
	FirstName     string        `json:"firstName"`
	LastName      string        `json:"lastName"`
	Username      string        `json:"username"`
	Email         email.Address `json:"email"`
	PhoneNumber   string        `json:"phoneNumber"`
	DateOfBirth   Date          `json:"dateOfBirth"`
	Gender        Gender        `json:"gender"`
	Address       string        `json:"address"`
	City          string        `json:"city"`
	State         string        `json:"state"`
	PostalCode    string        `json:"postalCode"`
	Country       string        `json:"country"`
	IsActive      bool          `json:"isActive"`
	EmailVerified bool          `json:"emailVerified"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// ViewOf projects a onto a View. New Account fields must be added here
// explicitly, or be listed as sensitive in the tests.
func ViewOf(a Account) View {
	return View{
		ID:            a.ID,
		FirstName:     a.FirstName,
		LastName:      a.LastName,
		Username:      a.Username,
		Email:         a.Email,
		PhoneNumber:   a.PhoneNumber,
		DateOfBirth:   a.DateOfBirth,
		Gender:        a.Gender,
		Address:       a.Address,
		City:          a.City,
		State:         a.State,
		PostalCode:    a.PostalCode,
		Country:       a.Country,
		IsActive:      a.IsActive,
		EmailVerified: a.EmailVerified,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

// ViewsOf projects every account onto a View, keeping the order.
func ViewsOf(accounts []Account) []View {
	views := make([]View, 0, len(accounts))
	for _, a := range accounts {
		views = append(views, ViewOf(a))
	}
	return views
}

// FullName joins the first and last name.
func (v View) FullName() string {
	return v.FirstName + " " + v.LastName
}
