package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAuthenticator(t *testing.T) {
	auth := NewAuthenticator("s3cret")

	tests := []struct {
		name     string
		token    string
		password string
		wantErr  error
	}{
		{name: "valid", token: "owner", password: "s3cret"},
		{name: "missing token", token: "", password: "s3cret", wantErr: ErrAuthMissing},
		{name: "missing password", token: "owner", password: "", wantErr: ErrAuthMissing},
		{name: "wrong password", token: "owner", password: "guess", wantErr: ErrAuthInvalid},
		{name: "prefix of password", token: "owner", password: "s3c", wantErr: ErrAuthInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			owner, err := auth.Authenticate(tt.token, tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, owner)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.token, owner)
			}
		})
	}
}

func TestAuthenticator_EmptyServerPassword(t *testing.T) {
	_, err := NewAuthenticator("").Authenticate("owner", "anything")
	assert.ErrorIs(t, err, ErrAuthInvalid)
}
