package processing

import (
	"strings"

	"github.com/spacesedan/honestreviews/internal/utils"
)

// EnforceBudget collapses whitespace and hard-truncates to maxChars runes.
// Applying it twice gives the same result as applying it once.
func EnforceBudget(raw string, maxChars int) string {
	bounded := utils.TruncateRunes(utils.CollapseWhitespace(raw), maxChars)
	return strings.TrimRight(bounded, " ")
}
