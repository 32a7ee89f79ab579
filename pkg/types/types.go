package types

import (
	"time"

	"github.com/goccy/go-json"
)

// Page is the cursor envelope returned by every paginated endpoint.
type Page struct {
	PreviousPageCursor *string           `json:"previousPageCursor"`
	NextPageCursor     *string           `json:"nextPageCursor"`
	Data               []json.RawMessage `json:"data"`
}

// NextCursor returns the next-page cursor, or "" when this is the last page.
func (p *Page) NextCursor() string {
	if p == nil || p.NextPageCursor == nil {
		return ""
	}
	return *p.NextPageCursor
}

// DataResponse is the {"data": [...]} wrapper used by lookup endpoints.
type DataResponse[T any] struct {
	Data []T `json:"data"`
}

// CountResponse is the {"count": n} body of the *-count endpoints.
type CountResponse struct {
	Count int `json:"count"`
}

// User is a platform account.
type User struct {
	ID                     int64     `json:"id"`
	Name                   string    `json:"name"`
	DisplayName            string    `json:"displayName"`
	Description            string    `json:"description"`
	HasVerifiedBadge       bool      `json:"hasVerifiedBadge"`
	ExternalAppDisplayName string    `json:"externalAppDisplayName,omitempty"`
	IsBanned               bool      `json:"isBanned"`
	Created                time.Time `json:"created"`
}

// AccountAge returns the number of whole days since the account was created, rounded up.
func (u *User) AccountAge(now time.Time) int {
	if u == nil || u.Created.IsZero() {
		return 0
	}
	days := now.Sub(u.Created).Hours() / 24
	whole := int(days)
	if days > float64(whole) {
		whole++
	}
	return whole
}

// AuthenticatedUser is the minimal body returned by /users/authenticated.
type AuthenticatedUser struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
}

// UserLookup is one match from a username lookup.
type UserLookup struct {
	RequestedUsername string `json:"requestedUsername"`
	ID                int64  `json:"id"`
	Name              string `json:"name"`
	DisplayName       string `json:"displayName"`
	HasVerifiedBadge  bool   `json:"hasVerifiedBadge"`
}

// UsernameHistoryEntry is one previous username.
type UsernameHistoryEntry struct {
	Name string `json:"name"`
}

// Friend is a user as seen from another user's friend list.
type Friend struct {
	User
	FriendFrequentScore int  `json:"friendFrequentScore"`
	IsOnline            bool `json:"isOnline"`
	IsDeleted           bool `json:"isDeleted"`
}

// FriendRequest is a pending incoming friend request.
type FriendRequest struct {
	User
	FriendRequest struct {
		SenderID int64     `json:"senderId"`
		SentAt   time.Time `json:"sentAt"`
	} `json:"friendRequest"`
}

// BadgeStatistics holds award counters for a badge.
type BadgeStatistics struct {
	PastDayAwardedCount int     `json:"pastDayAwardedCount"`
	AwardedCount        int     `json:"awardedCount"`
	WinRatePercentage   float64 `json:"winRatePercentage"`
}

// BadgeUniverse identifies the experience that awards a badge.
type BadgeUniverse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	RootPlaceID int64  `json:"rootPlaceId"`
}

// Badge is an awardable badge.
type Badge struct {
	ID                 int64           `json:"id"`
	Name               string          `json:"name"`
	DisplayName        string          `json:"displayName"`
	Description        string          `json:"description"`
	DisplayDescription string          `json:"displayDescription"`
	IconImageID        int64           `json:"iconImageId"`
	DisplayIconImageID int64           `json:"displayIconImageId"`
	Created            time.Time       `json:"created"`
	Updated            time.Time       `json:"updated"`
	Statistics         BadgeStatistics `json:"statistics"`
	AwardingUniverse   BadgeUniverse   `json:"awardingUniverse"`
	Enabled            bool            `json:"enabled"`
}

// GroupUser is the compact user shape embedded in group payloads.
type GroupUser struct {
	BuildersClubMembershipType int    `json:"buildersClubMembershipType"`
	HasVerifiedBadge           bool   `json:"hasVerifiedBadge"`
	UserID                     int64  `json:"userId"`
	Username                   string `json:"username"`
	DisplayName                string `json:"displayName"`
}

// GroupShout is the pinned message on a group page.
type GroupShout struct {
	Body    string    `json:"body"`
	Poster  GroupUser `json:"poster"`
	Created time.Time `json:"created"`
	Updated time.Time `json:"updated"`
}

// Group is a community group.
type Group struct {
	ID                 int64       `json:"id"`
	Name               string      `json:"name"`
	Description        string      `json:"description"`
	Owner              *GroupUser  `json:"owner"`
	Shout              *GroupShout `json:"shout"`
	MemberCount        int         `json:"memberCount"`
	IsBuildersClubOnly bool        `json:"isBuildersClubOnly"`
	PublicEntryAllowed bool        `json:"publicEntryAllowed"`
	IsLocked           bool        `json:"isLocked"`
	HasVerifiedBadge   bool        `json:"hasVerifiedBadge"`
}

// Role is a rank inside a group.
type Role struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Rank        int    `json:"rank"`
	MemberCount int    `json:"memberCount"`
}

// GroupRoles is the body of /groups/{id}/roles.
type GroupRoles struct {
	GroupID int64  `json:"groupId"`
	Roles   []Role `json:"roles"`
}
