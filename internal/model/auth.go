package model

// Credential headers carried by every authenticated request.
const (
	HeaderClientToken    = "X-Client-Token"
	HeaderServerPassword = "X-Server-Password"
)
