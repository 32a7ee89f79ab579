package wrapblox

import (
	"context"
	"fmt"
	"net/http"

	pkgerrs "github.com/jamesprial/go-wrapblox/pkg/errors"
	"github.com/jamesprial/go-wrapblox/pkg/types"
)

// GetBadge returns the badge with the given id.
func (c *Client) GetBadge(ctx context.Context, badgeID int64) (*types.Badge, error) {
	if badgeID <= 0 {
		return nil, &pkgerrs.ConfigurationError{Field: "badgeID", Message: "badge id must be positive"}
	}
	return fetchInto[types.Badge](ctx, c, "get badge", http.MethodGet, Badges, fmt.Sprintf("/badges/%d", badgeID), nil)
}

// GetUserBadges returns badges awarded to an account.
func (c *Client) GetUserBadges(ctx context.Context, userID int64, policy *types.PagingPolicy) ([]types.Badge, error) {
	return fetchListInto[types.Badge](ctx, c, "get user badges", Badges, fmt.Sprintf("/users/%d/badges", userID), nil, policy)
}

// NewUserBadgeIterator walks the badges awarded to an account lazily, page by page.
func (c *Client) NewUserBadgeIterator(ctx context.Context, userID int64) *ListIterator[types.Badge] {
	return NewListIterator[types.Badge](ctx, c, Badges, fmt.Sprintf("/users/%d/badges", userID), nil)
}
