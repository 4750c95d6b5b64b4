package models

import "time"

// Profile is the signed-in Google account identity.
type Profile struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture string `json:"picture,omitempty"`
}

// Session is the server-side sign-in state. Token is the Google bearer
// token passed through to the workspace clients.
type Session struct {
	Token      string    `json:"token"`
	Profile    Profile   `json:"profile"`
	SignedInAt time.Time `json:"signed_in_at"`
}

// SessionStatus is the public view of the session, without the token.
type SessionStatus struct {
	SignedIn bool     `json:"signed_in"`
	Profile  *Profile `json:"profile,omitempty"`
}
