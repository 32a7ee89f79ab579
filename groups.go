package wrapblox

import (
	"context"
	"fmt"
	"net/http"

	pkgerrs "github.com/jamesprial/go-wrapblox/pkg/errors"
	"github.com/jamesprial/go-wrapblox/pkg/types"
)

// GetGroup returns the group with the given id, or ErrNotFound if the
// lookup matched nothing.
func (c *Client) GetGroup(ctx context.Context, groupID int64) (*types.Group, error) {
	if groupID <= 0 {
		return nil, &pkgerrs.ConfigurationError{Field: "groupID", Message: "group id must be positive"}
	}

	resp, err := fetchInto[types.DataResponse[types.Group]](ctx, c, "get group", http.MethodGet, GroupsV2, "/groups", &types.RequestOptions{
		Query: types.Params{"groupIds": groupID},
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, &pkgerrs.ClientError{Operation: fmt.Sprintf("get group %d", groupID), Err: ErrNotFound}
	}
	return &resp.Data[0], nil
}

// GetGroupRoles returns the roles of a group ordered by rank.
func (c *Client) GetGroupRoles(ctx context.Context, groupID int64) ([]types.Role, error) {
	resp, err := fetchInto[types.GroupRoles](ctx, c, "get group roles", http.MethodGet, Groups, fmt.Sprintf("/groups/%d/roles", groupID), nil)
	if err != nil {
		return nil, err
	}
	return resp.Roles, nil
}
