package internal

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	pkgerrs "github.com/jamesprial/go-wrapblox/pkg/errors"
)

// API group names understood by the default endpoint table.
const (
	Users           = "Users"
	Thumbnails      = "Thumbnails"
	Friends         = "Friends"
	Presence        = "Presence"
	Groups          = "Groups"
	GroupsV2        = "GroupsV2"
	Games           = "Games"
	GamesV2         = "GamesV2"
	Badges          = "Badges"
	BadgesV2        = "BadgesV2"
	Inventory       = "Inventory"
	InventoryV2     = "InventoryV2"
	AccountSettings = "AccountSettings"
	PremiumFeatures = "PremiumFeatures"
	Auth            = "Auth"
	AuthV2          = "AuthV2"
	AuthV3          = "AuthV3"
	Avatar          = "Avatar"
	AvatarV2        = "AvatarV2"
	AvatarV3        = "AvatarV3"
)

var defaultEndpoints = map[string]string{
	Users:           "https://users.roblox.com/v1",
	Thumbnails:      "https://thumbnails.roblox.com/v1",
	Friends:         "https://friends.roblox.com/v1",
	Presence:        "https://presence.roblox.com",
	Groups:          "https://groups.roblox.com/v1",
	GroupsV2:        "https://groups.roblox.com/v2",
	Games:           "https://games.roblox.com/v1",
	GamesV2:         "https://games.roblox.com/v2",
	Badges:          "https://badges.roblox.com/v1",
	BadgesV2:        "https://badges.roblox.com/v2",
	Inventory:       "https://inventory.roblox.com/v1",
	InventoryV2:     "https://inventory.roblox.com/v2",
	AccountSettings: "https://accountsettings.roblox.com/v1",
	PremiumFeatures: "https://premiumfeatures.roblox.com/v1",
	Auth:            "https://auth.roblox.com/v1",
	AuthV2:          "https://auth.roblox.com/v2",
	AuthV3:          "https://auth.roblox.com/v3",
	Avatar:          "https://avatar.roblox.com/v1",
	AvatarV2:        "https://avatar.roblox.com/v2",
	AvatarV3:        "https://avatar.roblox.com/v3",
}

// EndpointTable maps API group names to base URLs. It is read-only once built.
type EndpointTable struct {
	bases map[string]string
}

// NewEndpointTable returns the default table with overrides applied on top.
// Override base URLs lose any trailing slash so that paths can be appended directly.
func NewEndpointTable(overrides map[string]string) (*EndpointTable, error) {
	bases := maps.Clone(defaultEndpoints)
	for name, base := range overrides {
		if name == "" {
			return nil, &pkgerrs.ConfigurationError{Field: "endpoints", Message: "api group name cannot be empty"}
		}
		if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
			return nil, &pkgerrs.ConfigurationError{Field: "endpoints", Message: fmt.Sprintf("base URL for %q must be http or https, got %q", name, base)}
		}
		bases[name] = strings.TrimRight(base, "/")
	}
	return &EndpointTable{bases: bases}, nil
}

// Resolve returns the base URL for apiGroup.
func (t *EndpointTable) Resolve(apiGroup string) (string, error) {
	base, ok := t.bases[apiGroup]
	if !ok {
		return "", &pkgerrs.ConfigurationError{Field: "apiGroup", Message: fmt.Sprintf("unknown api group %q", apiGroup)}
	}
	return base, nil
}

// Names returns the known group names in sorted order.
func (t *EndpointTable) Names() []string {
	return slices.Sorted(maps.Keys(t.bases))
}
