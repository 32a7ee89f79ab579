package wrapblox

import (
	"context"
	"fmt"
	"net/http"

	pkgerrs "github.com/jamesprial/go-wrapblox/pkg/errors"
	"github.com/jamesprial/go-wrapblox/pkg/types"
)

// GetFriends returns the friend list of an account.
func (c *Client) GetFriends(ctx context.Context, userID int64) ([]types.Friend, error) {
	resp, err := fetchInto[types.DataResponse[types.Friend]](ctx, c, "get friends", http.MethodGet, Friends, fmt.Sprintf("/users/%d/friends", userID), nil)
	if err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// GetFriendCount returns the number of friends of an account.
func (c *Client) GetFriendCount(ctx context.Context, userID int64) (int, error) {
	resp, err := fetchInto[types.CountResponse](ctx, c, "get friend count", http.MethodGet, Friends, fmt.Sprintf("/users/%d/friends/count", userID), nil)
	if err != nil {
		return 0, err
	}
	return resp.Count, nil
}

// GetFriendRequests returns pending friend requests for the logged-in account.
// The response is never cached since it changes with every accept or decline.
func (c *Client) GetFriendRequests(ctx context.Context, policy *types.PagingPolicy) ([]types.FriendRequest, error) {
	if err := c.requireSession("get friend requests"); err != nil {
		return nil, err
	}
	return fetchListInto[types.FriendRequest](ctx, c, "get friend requests", Friends, "/my/friend-requests",
		&types.RequestOptions{BypassCache: true}, policy)
}

// AcceptFriendRequest accepts a pending request from userID.
func (c *Client) AcceptFriendRequest(ctx context.Context, userID int64) error {
	return c.answerFriendRequest(ctx, userID, "accept")
}

// DeclineFriendRequest declines a pending request from userID.
func (c *Client) DeclineFriendRequest(ctx context.Context, userID int64) error {
	return c.answerFriendRequest(ctx, userID, "decline")
}

func (c *Client) answerFriendRequest(ctx context.Context, userID int64, verb string) error {
	operation := verb + " friend request"
	if err := c.requireSession(operation); err != nil {
		return err
	}

	_, err := c.dispatcher.Fetch(ctx, http.MethodPost, Friends, fmt.Sprintf("/users/%d/%s-friend-request", userID, verb), nil)
	if err != nil {
		return &pkgerrs.ClientError{Operation: operation, Err: err}
	}
	return nil
}
