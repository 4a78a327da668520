// Package models defines client-side data models used by the gophauth CLI.
package models

// Profile is the signed-in user as reported by the server.
type Profile struct {
	ID       string
	Identity string
	Name     string
}

func (p *Profile) String() string {
	return p.Name + " <" + p.Identity + "> (id " + p.ID + ")"
}
