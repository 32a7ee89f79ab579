package wrapblox

import (
	"context"
	"fmt"
	"net/http"

	pkgerrs "github.com/jamesprial/go-wrapblox/pkg/errors"
	"github.com/jamesprial/go-wrapblox/pkg/types"
	"github.com/jamesprial/go-wrapblox/pkg/validation"
)

// GetUser returns the account with the given id.
func (c *Client) GetUser(ctx context.Context, userID int64) (*types.User, error) {
	return c.getUser(ctx, userID, nil)
}

func (c *Client) getUser(ctx context.Context, userID int64, opts *types.RequestOptions) (*types.User, error) {
	if userID <= 0 {
		return nil, &pkgerrs.ConfigurationError{Field: "userID", Message: "user id must be positive"}
	}
	user, err := fetchInto[types.User](ctx, c, "get user", http.MethodGet, Users, fmt.Sprintf("/users/%d", userID), opts)
	if err != nil {
		return nil, err
	}
	if err := validation.ValidateUser(user); err != nil {
		return nil, &pkgerrs.ParseError{Operation: "get user", Err: err}
	}
	return user, nil
}

type usernameLookupRequest struct {
	Usernames          []string `json:"usernames"`
	ExcludeBannedUsers bool     `json:"excludeBannedUsers"`
}

// LookupUser resolves a username to the full account.
// It returns ErrNotFound when no account has that name.
func (c *Client) LookupUser(ctx context.Context, username string) (*types.User, error) {
	if err := validation.ValidateUsername(username); err != nil {
		return nil, &pkgerrs.ConfigurationError{Field: "username", Message: err.Error()}
	}

	resp, err := fetchInto[types.DataResponse[types.UserLookup]](ctx, c, "lookup user", http.MethodPost, Users, "/usernames/users", &types.RequestOptions{
		Body: usernameLookupRequest{Usernames: []string{username}},
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, &pkgerrs.ClientError{Operation: "lookup user " + username, Err: ErrNotFound}
	}

	return c.GetUser(ctx, resp.Data[0].ID)
}

// GetUsernameHistory returns previous usernames of an account, newest first.
func (c *Client) GetUsernameHistory(ctx context.Context, userID int64, policy *types.PagingPolicy) ([]string, error) {
	entries, err := fetchListInto[types.UsernameHistoryEntry](ctx, c, "get username history", Users,
		fmt.Sprintf("/users/%d/username-history", userID), nil, policy)
	if err != nil {
		return nil, err
	}

	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return names, nil
}
