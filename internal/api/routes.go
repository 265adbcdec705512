package api

import (
	"fmt"
	"time"

	"github.com/mhutton/relay-api/internal/domain"
	"github.com/mhutton/relay-api/internal/pipeline"
)

// Rate limit budgets for the unauthenticated endpoints, counted per client
// address. Registration is tighter because it writes to the user table.
var (
	loginLimit    = pipeline.RateLimit{Key: "login", Window: time.Minute, MaxRequests: 20}
	registerLimit = pipeline.RateLimit{Key: "register", Window: time.Minute, MaxRequests: 10}
)

// loginSchema deliberately allows any non-empty password so that accounts
// created under older policy rules can still reach the credential check.
var loginSchema = pipeline.ValidateSchema{
	Target: pipeline.TargetBody,
	Schema: pipeline.Schema{
		"username": {Type: pipeline.TypeString, Required: true, MinLen: 1, MaxLen: domain.MaxUsernameLength},
		"password": {Type: pipeline.TypeString, Required: true, MinLen: 1, MaxLen: domain.MaxPasswordLength},
	},
}

var registerSchema = pipeline.ValidateSchema{
	Target: pipeline.TargetBody,
	Schema: pipeline.Schema{
		"username": {Type: pipeline.TypeString, Required: true, MinLen: domain.MinUsernameLength, MaxLen: domain.MaxUsernameLength},
		"password": {Type: pipeline.TypeString, Required: true, MinLen: domain.MinPasswordLength, MaxLen: domain.MaxPasswordLength},
		"role":     {Type: pipeline.TypeString},
	},
}

var userIDSchema = pipeline.ValidateSchema{
	Target: pipeline.TargetParams,
	Schema: pipeline.Schema{
		"id": {Type: pipeline.TypeString, Required: true, MinLen: 36, MaxLen: 36},
	},
}

var searchSchema = pipeline.ValidateSchema{
	Target: pipeline.TargetQuery,
	Schema: pipeline.Schema{
		"q":     {Type: pipeline.TypeString, Required: true, MinLen: 2, MaxLen: 128},
		"limit": {Type: pipeline.TypeInt, Min: pipeline.Num(1), Max: pipeline.Num(100)},
	},
}

var listSchema = pipeline.ValidateSchema{
	Target: pipeline.TargetQuery,
	Schema: pipeline.Schema{
		"role":  {Type: pipeline.TypeString},
		"limit": {Type: pipeline.TypeInt, Min: pipeline.Num(1), Max: pipeline.Num(100)},
	},
}

// RegisterRoutes declares every endpoint of the API on the registry.
// Requirements run in the order they are listed: rate limits precede body
// validation on the public endpoints so that malformed requests still
// count against the caller's budget.
func RegisterRoutes(reg *pipeline.Registry, authHandler *AuthHandler, userHandler *UserHandler) error {
	routes := []struct {
		method       string
		pattern      string
		handler      pipeline.Handler
		requirements []pipeline.Requirement
	}{
		{
			method:       "POST",
			pattern:      "/auth/login",
			handler:      authHandler.Login,
			requirements: []pipeline.Requirement{loginLimit, loginSchema},
		},
		{
			method:       "POST",
			pattern:      "/auth/register",
			handler:      authHandler.Register,
			requirements: []pipeline.Requirement{registerLimit, registerSchema},
		},
		{
			method:       "GET",
			pattern:      "/users",
			handler:      userHandler.List,
			requirements: []pipeline.Requirement{pipeline.RequireAuth{}, listSchema},
		},
		{
			method:       "GET",
			pattern:      "/users/search",
			handler:      userHandler.Search,
			requirements: []pipeline.Requirement{pipeline.RequireAuth{}, searchSchema},
		},
		{
			method:       "GET",
			pattern:      "/users/{id}",
			handler:      userHandler.Get,
			requirements: []pipeline.Requirement{pipeline.RequireAuth{}, userIDSchema},
		},
	}

	for _, r := range routes {
		if err := reg.Handle(r.method, r.pattern, r.handler, r.requirements...); err != nil {
			return fmt.Errorf("registering %s %s: %w", r.method, r.pattern, err)
		}
	}
	return nil
}
