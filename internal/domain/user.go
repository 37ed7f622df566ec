// Package domain contains entity without logic, just meta-data
package domain

type UserID string

const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"
)

// Profile is the slice of a user record the matching core needs.
// It is loaded once on connect and cached on the session; the token
// balance here is a gate for entering the queue, the ledger is the
// source of truth for the actual debit.
type Profile struct {
	UserID       UserID `json:"userId"`
	Name         string `json:"name"`
	Age          int    `json:"age"`
	Gender       string `json:"gender"`
	Country      string `json:"country"`
	Premium      bool   `json:"premium"`
	TokenBalance int64  `json:"-"`
}

// PublicProfile is what a matched partner gets to see.
type PublicProfile struct {
	UserID  UserID `json:"userId"`
	Name    string `json:"name"`
	Age     int    `json:"age"`
	Gender  string `json:"gender"`
	Country string `json:"country"`
}

func (p Profile) Public() PublicProfile {
	return PublicProfile{
		UserID:  p.UserID,
		Name:    p.Name,
		Age:     p.Age,
		Gender:  p.Gender,
		Country: p.Country,
	}
}
