package test_generators

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/jamesprial/go-wrapblox/pkg/types"
	"github.com/jamesprial/go-wrapblox/test_helpers"
)

// BadgeGenerator generates realistic badges for testing
type BadgeGenerator struct {
	rand      *rand.Rand
	nextID    int64
	adjective []string
	noun      []string
	universes []types.BadgeUniverse
}

// NewBadgeGenerator creates a new badge generator. A zero seed uses the clock.
func NewBadgeGenerator(seed int64) *BadgeGenerator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &BadgeGenerator{
		rand:      rand.New(rand.NewSource(seed)),
		nextID:    2124400000,
		adjective: []string{"Golden", "Secret", "First", "Speedy", "Legendary", "Hidden", "Friendly", "Lucky"},
		noun:      []string{"Visit", "Explorer", "Champion", "Builder", "Collector", "Survivor", "Winner", "Egg"},
		universes: []types.BadgeUniverse{
			{ID: 13058, Name: "Natural Disaster Survival", RootPlaceID: 189707},
			{ID: 66654135, Name: "Murder Mystery 2", RootPlaceID: 142823291},
			{ID: 383310974, Name: "Adopt Me!", RootPlaceID: 920587237},
			{ID: 994732206, Name: "Blox Fruits", RootPlaceID: 2753915549},
		},
	}
}

// GenerateBadge creates one badge with a unique, increasing id.
func (bg *BadgeGenerator) GenerateBadge() types.Badge {
	bg.nextID++
	name := fmt.Sprintf("%s %s", bg.randElement(bg.adjective), bg.randElement(bg.noun))
	created := time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(bg.rand.Intn(3000)) * 24 * time.Hour)
	awarded := bg.rand.Intn(5_000_000)

	return types.Badge{
		ID:                 bg.nextID,
		Name:               name,
		DisplayName:        name,
		Description:        "Awarded for " + name,
		DisplayDescription: "Awarded for " + name,
		IconImageID:        bg.rand.Int63n(1 << 32),
		DisplayIconImageID: bg.rand.Int63n(1 << 32),
		Created:            created,
		Updated:            created.Add(time.Duration(bg.rand.Intn(365)) * 24 * time.Hour),
		Statistics: types.BadgeStatistics{
			PastDayAwardedCount: bg.rand.Intn(awarded/100 + 1),
			AwardedCount:        awarded,
			WinRatePercentage:   bg.rand.Float64(),
		},
		AwardingUniverse: bg.universes[bg.rand.Intn(len(bg.universes))],
		Enabled:          true,
	}
}

// GenerateBadges creates n badges.
func (bg *BadgeGenerator) GenerateBadges(n int) []types.Badge {
	badges := make([]types.Badge, n)
	for i := range badges {
		badges[i] = bg.GenerateBadge()
	}
	return badges
}

// Pages splits badges into mock page responses of perPage items linked by
// cursors "page-2", "page-3" and so on. The last page carries no cursor.
func Pages(badges []types.Badge, perPage int) []*test_helpers.MockResponse {
	if len(badges) == 0 {
		return []*test_helpers.MockResponse{test_helpers.Page("")}
	}

	var pages []*test_helpers.MockResponse
	for start, n := 0, 1; start < len(badges); start, n = start+perPage, n+1 {
		end := min(start+perPage, len(badges))

		next := ""
		if end < len(badges) {
			next = fmt.Sprintf("page-%d", n+1)
		}

		items := make([]any, 0, end-start)
		for _, b := range badges[start:end] {
			items = append(items, b)
		}
		pages = append(pages, test_helpers.Page(next, items...))
	}
	return pages
}

func (bg *BadgeGenerator) randElement(items []string) string {
	return items[bg.rand.Intn(len(items))]
}
