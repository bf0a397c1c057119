package models

// Identity is the authenticated caller as supplied by the upstream identity
// provider. Only the email is needed; a nil *Identity means no one is
// signed in.
type Identity struct {
	Email string `json:"email"`
}
