package restdb

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/newrise0410/piano-academy-app-sub002/core/user"
)

type userRepository struct {
	client *Client
}

func NewUserRepository(client *Client) user.Repository {
	return &userRepository{client: client}
}

func (repo *userRepository) CheckEmailUniqueness(ctx context.Context, email string, excludedUsers ...user.User) error {
	params := url.Values{"email": {email}}
	for _, ex := range excludedUsers {
		params.Add("excludeId", ex.ID)
	}
	var res struct {
		Available bool `json:"available"`
	}
	if err := repo.client.do(ctx, http.MethodGet, "/auth/email-available", params, nil, &res); err != nil {
		return err
	}
	if !res.Available {
		return user.ErrEmailExists
	}
	return nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	var created user.User
	err := repo.client.do(ctx, http.MethodPost, "/users", nil, usr, &created)
	return created, err
}

func (repo *userRepository) QueryAllUsers(ctx context.Context) ([]user.User, error) {
	var users []user.User
	err := repo.client.do(ctx, http.MethodGet, "/users", nil, nil, &users)
	return users, err
}

func (repo *userRepository) GetUserByID(ctx context.Context, id string) (user.User, error) {
	var usr user.User
	if err := repo.client.do(ctx, http.MethodGet, "/users/"+id, nil, nil, &usr); err != nil {
		return user.User{}, mapNotFound(err, user.ErrNotFound)
	}
	return usr, nil
}

func (repo *userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	params := url.Values{"email": {email}}
	var users []user.User
	if err := repo.client.do(ctx, http.MethodGet, "/users", params, nil, &users); err != nil {
		return user.User{}, err
	}
	if len(users) == 0 {
		return user.User{}, user.ErrNotFound
	}
	return users[0], nil
}

func (repo *userRepository) UpdateUser(ctx context.Context, id string, up user.UpdateUser) (user.User, error) {
	var usr user.User
	if err := repo.client.do(ctx, http.MethodPatch, "/users/"+id, nil, up, &usr); err != nil {
		return user.User{}, mapNotFound(err, user.ErrNotFound)
	}
	return usr, nil
}

func (repo *userRepository) SetUserPassword(ctx context.Context, id string, hash []byte) error {
	body := map[string][]byte{"passwordHash": hash}
	err := repo.client.do(ctx, http.MethodPut, "/users/"+id+"/password", nil, body, nil)
	return mapNotFound(err, user.ErrNotFound)
}

func (repo *userRepository) SetLastLogin(ctx context.Context, id string, at time.Time) (user.User, error) {
	var usr user.User
	body := map[string]time.Time{"lastLogin": at}
	if err := repo.client.do(ctx, http.MethodPut, "/users/"+id+"/last-login", nil, body, &usr); err != nil {
		return user.User{}, mapNotFound(err, user.ErrNotFound)
	}
	return usr, nil
}

func (repo *userRepository) DeleteUser(ctx context.Context, id string) error {
	err := repo.client.do(ctx, http.MethodDelete, "/users/"+id, nil, nil, nil)
	return mapNotFound(err, user.ErrNotFound)
}
