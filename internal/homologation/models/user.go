package models

import "strings"

// User is an account that can hold grants on homologations. It is read-only here.
type User struct {
	ID     string `json:"id"`
	Prenom string `json:"prenom,omitempty"`
	Nom    string `json:"nom,omitempty"`
	Email  string `json:"email"`
}

// DisplayName falls back to the email when no name is known.
func (u User) DisplayName() string {
	name := strings.TrimSpace(u.Prenom + " " + u.Nom)
	if name == "" {
		return u.Email
	}
	return name
}
