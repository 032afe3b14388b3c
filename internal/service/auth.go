package service

import (
	"github.com/clerk/clerk-sdk-go/v2"
	"github.com/deppfellow/orgdir/internal/server"
)

// AuthService configures the Clerk SDK used by the sync endpoint.
type AuthService struct {
	server  *server.Server
	enabled bool
}

func NewAuthService(s *server.Server) *AuthService {
	key := s.Config.Auth.SecretKey
	if key != "" {
		clerk.SetKey(key)
	}
	return &AuthService{
		server:  s,
		enabled: key != "",
	}
}

// Enabled reports whether a Clerk secret key was configured.
func (a *AuthService) Enabled() bool {
	return a.enabled
}
