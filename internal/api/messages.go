// Package api is the wire contract shared by the server and the client:
// request/response messages, the gRPC service description and its client
// stub. Messages travel as JSON on both the gRPC and the HTTP transport.
package api

type LoginRequest struct {
	Identity string `json:"identity"`
	Secret   string `json:"secret"`
}

type LoginResponse struct {
	AccessToken  string   `json:"accessToken"`
	RenewalToken string   `json:"renewalToken"`
	Profile      *Profile `json:"profile"`
}

type RenewRequest struct {
	RenewalToken string `json:"renewalToken"`
}

type RenewResponse struct {
	AccessToken string `json:"accessToken"`
}

type ProfileRequest struct{}

type Profile struct {
	ID       string `json:"id"`
	Identity string `json:"identity"`
	Name     string `json:"name"`
}

type LogoutRequest struct {
	RenewalToken string `json:"renewalToken,omitempty"`
}

type LogoutResponse struct {
	Message string `json:"message"`
}

type PingRequest struct{}

type PingResponse struct {
	Status string `json:"status"`
}

// ErrorResponse is the HTTP error body.
type ErrorResponse struct {
	Error string `json:"error"`
}
