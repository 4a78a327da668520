// Package models holds the server-side records shared by repositories and
// services.
package models

import "time"

// User is an identity record. It is owned by the identity store; the token
// lifecycle only reads it.
type User struct {
	ID         string
	Identity   string
	Name       string
	SecretHash []byte
	CreatedAt  time.Time
}

// Profile is the public view of a User.
type Profile struct {
	ID       string `json:"id"`
	Identity string `json:"identity"`
	Name     string `json:"name"`
}

func (u *User) Profile() *Profile {
	return &Profile{ID: u.ID, Identity: u.Identity, Name: u.Name}
}
