package nlp

import (
	"strings"

	"github.com/campus-buddy/backend/internal/catalog"
)

const OtherCategory = "Other"

// SuggestCategory scores each category by how often its keyword terms occur
// in description and returns the best one, or "Other" when nothing scores.
// Ties go to the category listed first. Hyphens are ignored on both sides so
// "Wi-Fi" and "wifi" agree.
func SuggestCategory(description string, categories catalog.Table) string {
	desc := foldTerm(description)

	maxScore := 0
	suggested := OtherCategory
	for _, cat := range categories {
		score := 0
		for _, term := range strings.Split(cat.Keywords, ",") {
			term = foldTerm(term)
			if term == "" {
				continue
			}
			score += strings.Count(desc, term)
		}
		if score > maxScore {
			maxScore = score
			suggested = cat.Name
		}
	}

	return suggested
}

func foldTerm(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "")
}
