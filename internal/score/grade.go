package score

// Grade is a letter grade derived from the final score.
type Grade string

// Priority is the remediation urgency derived from the final score.
type Priority string

const (
	PriorityUrgent Priority = "URGENT"
	PriorityHigh   Priority = "HIGH"
	PriorityMedium Priority = "MEDIUM"
	PriorityLow    Priority = "LOW"
)

// GradeF is awarded below every threshold in GradeScale.
const GradeF Grade = "F"

// GradeStep is one row of GradeScale.
type GradeStep struct {
	Min   float64
	Grade Grade
}

// GradeScale is scanned from the highest bound down; the first bound the
// score reaches wins. Keep it sorted descending.
var GradeScale = []GradeStep{
	{94, "A+"},
	{87, "A"},
	{80, "A-"},
	{77, "B+"},
	{73, "B"},
	{70, "B-"},
	{67, "C+"},
	{63, "C"},
	{60, "C-"},
}

// PriorityStep is one row of PriorityScale.
type PriorityStep struct {
	Below    float64
	Priority Priority
}

// PriorityScale is scanned from the lowest bound up; a score belongs to the
// first tier whose bound it is strictly below.
var PriorityScale = []PriorityStep{
	{60, PriorityUrgent},
	{75, PriorityHigh},
	{85, PriorityMedium},
}

// GradeFor maps a final score to its letter grade.
func GradeFor(final float64) Grade {
	for _, step := range GradeScale {
		if final >= step.Min {
			return step.Grade
		}
	}
	return GradeF
}

// PriorityFor maps a final score to its priority tier.
func PriorityFor(final float64) Priority {
	for _, step := range PriorityScale {
		if final < step.Below {
			return step.Priority
		}
	}
	return PriorityLow
}

// Classify returns the grade and priority for a final score.
func Classify(final float64) (Grade, Priority) {
	return GradeFor(final), PriorityFor(final)
}
