package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/mhutton/relay-api/internal/domain"
	"github.com/mhutton/relay-api/internal/pipeline"
	"github.com/mhutton/relay-api/internal/service/auth"
	"github.com/mhutton/relay-api/internal/store"
)

// AuthHandler implements the authentication endpoints.
type AuthHandler struct {
	users  store.UserStore
	tokens auth.TokenService
	hasher auth.PasswordHasher
}

// NewAuthHandler creates an AuthHandler with the given dependencies.
func NewAuthHandler(users store.UserStore, tokens auth.TokenService, hasher auth.PasswordHasher) *AuthHandler {
	return &AuthHandler{
		users:  users,
		tokens: tokens,
		hasher: hasher,
	}
}

// Login authenticates a username and password and issues an access token.
// Unknown usernames and wrong passwords are indistinguishable to the
// client.
func (h *AuthHandler) Login(ctx context.Context, req *pipeline.Request) (any, error) {
	var body LoginRequest
	if err := decodeBody(req, &body); err != nil {
		return nil, err
	}

	user, err := h.users.GetByUsername(ctx, body.Username)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, pipeline.Unauthorized("invalid credentials")
		}
		return nil, fmt.Errorf("login: fetching user: %w", err)
	}

	if err := h.hasher.Compare(user.HashedPassword, body.Password); err != nil {
		return nil, pipeline.Unauthorized("invalid credentials")
	}

	token, err := h.tokens.Issue(ctx, auth.Identity{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
	})
	if err != nil {
		return nil, fmt.Errorf("login: issuing token: %w", err)
	}

	return AuthResponse{Token: token, User: newUserResponse(*user)}, nil
}

// Register creates a new account and logs it in. The username must be
// unique; the plaintext password is hashed before anything is stored.
func (h *AuthHandler) Register(ctx context.Context, req *pipeline.Request) (any, error) {
	var body RegisterRequest
	if err := decodeBody(req, &body); err != nil {
		return nil, err
	}

	user, err := domain.NewUser(body.Username, body.Password, body.Role)
	if err != nil {
		return nil, domainValidationError(err)
	}

	hashed, err := h.hasher.Hash(user.Password)
	if err != nil {
		return nil, fmt.Errorf("register: hashing password: %w", err)
	}
	user.HashedPassword = hashed
	user.Password = ""

	if err := h.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrUsernameExists) {
			return nil, pipeline.AlreadyExists("username")
		}
		return nil, fmt.Errorf("register: creating user: %w", err)
	}

	token, err := h.tokens.Issue(ctx, auth.Identity{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
	})
	if err != nil {
		return nil, fmt.Errorf("register: issuing token: %w", err)
	}

	return pipeline.Result{
		Status: http.StatusCreated,
		Data:   AuthResponse{Token: token, User: newUserResponse(*user)},
	}, nil
}
