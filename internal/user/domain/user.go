package domain

import "time"

type ID string

type User struct {
	ID           ID
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	Profile      Profile
}

type Profile struct {
	Name        string
	Surname     string
	Affiliation string
	Orcid       string
}

// DisplayName is what templates show for a logged-in user.
func (u User) DisplayName() string {
	if u.Profile.Name == "" {
		return u.Email
	}
	return u.Profile.Name + " " + u.Profile.Surname
}
