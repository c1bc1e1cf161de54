package nlp

type Priority string

const (
	PriorityUrgent   Priority = "Urgent"
	PriorityStandard Priority = "Standard"
)

// UrgentKeywords is matched as plain substrings, so "help" also fires on
// "helpful" and "unhelpful". The heuristic is deliberately cheap.
var UrgentKeywords = []string{
	"urgent", "immediately", "asap", "emergency",
	"help", "critical", "unsafe", "danger", "important", "right away",
}

type PriorityDetector struct {
	keywords *keywordSet
}

func NewPriorityDetector(keywords []string) *PriorityDetector {
	return &PriorityDetector{keywords: newKeywordSet(keywords)}
}

// Detect returns Urgent when any keyword occurs in text.
func (d *PriorityDetector) Detect(text string) Priority {
	if d.keywords.any(text) {
		return PriorityUrgent
	}
	return PriorityStandard
}
