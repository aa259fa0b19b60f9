package badge

import (
	"fmt"

	"github.com/jwalitptl/memory-api/internal/model"
)

// Tier is one threshold of a category
type Tier struct {
	Category  model.BadgeCategory
	Threshold int
}

// Type is the code stored on the badge row, e.g. LIKE_20
func (t Tier) Type() string {
	return fmt.Sprintf("%s_%d", t.Category, t.Threshold)
}

func (t Tier) Name() string {
	return fmt.Sprintf("%s %d", categoryLabels[t.Category], t.Threshold)
}

var categoryLabels = map[model.BadgeCategory]string{
	model.BadgeCategoryLike:   "Likes",
	model.BadgeCategoryMember: "Members",
	model.BadgeCategoryMemory: "Memories",
}

// Thresholds per category in ascending order
var Thresholds = map[model.BadgeCategory][]int{
	model.BadgeCategoryLike:   {20, 40, 60, 80, 100},
	model.BadgeCategoryMember: {10, 20, 30, 40, 50},
	model.BadgeCategoryMemory: {10, 20, 30, 40, 50},
}

// categories fixes the evaluation order
var categories = []model.BadgeCategory{
	model.BadgeCategoryLike,
	model.BadgeCategoryMember,
	model.BadgeCategoryMemory,
}

// HighestTier returns the largest tier of category whose threshold is at most
// value. ok is false when value satisfies no tier.
func HighestTier(category model.BadgeCategory, value int) (Tier, bool) {
	thresholds := Thresholds[category]
	for i := len(thresholds) - 1; i >= 0; i-- {
		if value >= thresholds[i] {
			return Tier{Category: category, Threshold: thresholds[i]}, true
		}
	}
	return Tier{}, false
}

// IsTierType reports whether code is one of the evaluator's tier codes
func IsTierType(code string) bool {
	for _, category := range categories {
		for _, threshold := range Thresholds[category] {
			if (Tier{Category: category, Threshold: threshold}).Type() == code {
				return true
			}
		}
	}
	return false
}

func metricFor(category model.BadgeCategory, m *model.GroupMetrics) int {
	switch category {
	case model.BadgeCategoryLike:
		return m.TotalLikes()
	case model.BadgeCategoryMember:
		return m.MemberCount
	case model.BadgeCategoryMemory:
		return m.PostCount
	}
	return 0
}
