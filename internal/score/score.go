// Package score turns extracted page signals into category sub-scores, a
// weighted final score, a letter grade, a priority tier and an ordered list
// of remediation issues. Everything here is pure and safe for concurrent use.
package score

import "github.com/hyperifyio/geoanalyzer/internal/extract"

// Issue is a remediation suggestion for one failed rule.
type Issue struct {
	Description string `json:"description"`
	Effort      Effort `json:"effort"`
}

// Result is the complete outcome of scoring one page.
type Result struct {
	TechnicalScore int      `json:"technicalScore"`
	StructureScore int      `json:"structureScore"`
	AuthorityScore int      `json:"authorityScore"`
	FinalScore     float64  `json:"finalScore"`
	Grade          Grade    `json:"grade"`
	Priority       Priority `json:"priority"`
	Issues         []Issue  `json:"issues"`
}

// SubScore returns the sub-score recorded for c.
func (r Result) SubScore(c Category) int {
	switch c {
	case Technical:
		return r.TechnicalScore
	case Structure:
		return r.StructureScore
	case Authority:
		return r.AuthorityScore
	}
	return 0
}

// Score evaluates every rule against s in table order.
func Score(s extract.Signals) Result {
	sub := make(map[Category]int, len(Categories))
	issues := make([]Issue, 0, len(Rules))
	for _, r := range Rules {
		if r.Pass(s) {
			sub[r.Category] += r.Points
			continue
		}
		if r.Issue != "" {
			issues = append(issues, Issue{Description: r.Issue, Effort: r.Effort})
		}
	}
	res := Result{
		TechnicalScore: sub[Technical],
		StructureScore: sub[Structure],
		AuthorityScore: sub[Authority],
		Issues:         issues,
	}
	res.FinalScore = Final(res.TechnicalScore, res.StructureScore, res.AuthorityScore)
	res.Grade, res.Priority = Classify(res.FinalScore)
	return res
}

// Final combines the sub-scores with Weights and rounds to one decimal,
// ties to even. The sum is kept in hundredths of a point as an integer so
// only true ties (a remainder of exactly 5) take the even branch.
func Final(technical, structure, authority int) float64 {
	hundredths := technical*Weights[Technical] + structure*Weights[Structure] + authority*Weights[Authority]
	tenths, rem := hundredths/10, hundredths%10
	if rem > 5 || (rem == 5 && tenths%2 == 1) {
		tenths++
	}
	return float64(tenths) / 10
}
