package service

import (
	"context"
	"net/http"

	"github.com/verte-zerg/challenger/internal/api"
	"github.com/verte-zerg/challenger/internal/model"
)

// UserService logs users in by nickname.
type UserService struct {
	client *api.Client
}

// NewUserService returns a UserService backed by client.
func NewUserService(client *api.Client) *UserService {
	return &UserService{client: client}
}

// Login registers or fetches the user with the given nickname.
func (s *UserService) Login(ctx context.Context, username string) (model.User, error) {
	resp, err := api.Request[userResponse](ctx, s.client, http.MethodPost, "users", loginRequest{Username: username})
	if err != nil {
		return model.User{}, err
	}
	return model.User{ID: resp.ID, Username: resp.Username}, nil
}
