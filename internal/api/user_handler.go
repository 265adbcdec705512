package api

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mhutton/relay-api/internal/pipeline"
	"github.com/mhutton/relay-api/internal/store"
)

// defaultListLimit caps user listings when the client does not ask for a
// specific page size.
const defaultListLimit = 20

// UserHandler implements the user lookup endpoints. All of them sit behind
// the auth requirement.
type UserHandler struct {
	users store.UserStore
}

// NewUserHandler creates a UserHandler backed by the given store.
func NewUserHandler(users store.UserStore) *UserHandler {
	return &UserHandler{users: users}
}

// Get returns a single user by id.
func (h *UserHandler) Get(ctx context.Context, req *pipeline.Request) (any, error) {
	id, err := uuid.Parse(req.Params["id"])
	if err != nil {
		return nil, pipeline.Validation([]pipeline.FieldError{
			{Field: "id", Message: "must be a valid UUID"},
		})
	}

	user, err := h.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, pipeline.NotFound("user")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	return newUserResponse(*user), nil
}

// Search returns users whose username contains the query string.
func (h *UserHandler) Search(ctx context.Context, req *pipeline.Request) (any, error) {
	users, err := h.users.List(ctx, store.UserFilter{
		Query: req.Query.Get("q"),
		Limit: queryLimit(req, defaultListLimit),
	})
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}

	return newUserListResponse(users), nil
}

// List returns users, optionally filtered by role.
func (h *UserHandler) List(ctx context.Context, req *pipeline.Request) (any, error) {
	users, err := h.users.List(ctx, store.UserFilter{
		Role:  req.Query.Get("role"),
		Limit: queryLimit(req, defaultListLimit),
	})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	return newUserListResponse(users), nil
}
