package score

import "github.com/hyperifyio/geoanalyzer/internal/extract"

// Category groups rules into the three weighted sub-scores.
type Category string

const (
	Technical Category = "technical"
	Structure Category = "structure"
	Authority Category = "authority"
)

// Categories lists the categories in evaluation order.
var Categories = []Category{Technical, Structure, Authority}

// Weights are the per-category multipliers of the final score, expressed in
// percent so the final score can be computed without float drift.
var Weights = map[Category]int{
	Technical: 40,
	Structure: 35,
	Authority: 25,
}

// Effort is a coarse remediation cost attached to an issue.
type Effort string

const (
	Quick    Effort = "Quick"
	Moderate Effort = "Moderate"
	Major    Effort = "Major"
)

// minExternalLinks is the exclusive lower bound for the outbound-link rule.
const minExternalLinks = 8

// Rule awards Points to its Category when Pass holds. Otherwise Issue (if
// non-empty) is reported with the given Effort.
type Rule struct {
	Signal   string
	Category Category
	Points   int
	Issue    string
	Effort   Effort
	Pass     func(extract.Signals) bool
}

// Rules is the fixed scoring table. Order matters: it is the order issues are
// reported in, technical first, then structure, then authority.
var Rules = []Rule{
	{
		Signal: extract.SignalStructuredData, Category: Technical, Points: 35,
		Issue: "No JSON-LD structured data", Effort: Quick,
		Pass: func(s extract.Signals) bool { return s.HasStructuredData },
	},
	{
		Signal: extract.SignalSemanticSectioning, Category: Technical, Points: 20,
		Issue: "Limited semantic HTML", Effort: Moderate,
		Pass: func(s extract.Signals) bool { return s.HasSemanticSectioning },
	},
	{
		Signal: extract.SignalHeadingStructure, Category: Technical, Points: 20,
		Issue: "Fix heading hierarchy", Effort: Moderate,
		Pass: func(s extract.Signals) bool { return s.HasGoodHeadingStructure },
	},
	{
		Signal: extract.SignalRecentDate, Category: Technical, Points: 15,
		Issue: "Add publish/update date", Effort: Quick,
		Pass: func(s extract.Signals) bool { return s.HasRecentDateMention },
	},
	{
		Signal: extract.SignalParagraphLength, Category: Technical, Points: 10,
		Pass: func(s extract.Signals) bool { return s.HasReasonableParagraphLength },
	},
	{
		Signal: extract.SignalTabularContent, Category: Structure, Points: 40,
		Issue: "Add spec/comparison tables", Effort: Moderate,
		Pass: func(s extract.Signals) bool { return s.HasTabularOrDefinitionContent },
	},
	{
		Signal: extract.SignalListContent, Category: Structure, Points: 25,
		Issue: "Use bullet/numbered lists", Effort: Quick,
		Pass: func(s extract.Signals) bool { return s.HasListContent },
	},
	{
		Signal: extract.SignalFAQ, Category: Structure, Points: 35,
		Issue: "Add FAQ section", Effort: Moderate,
		Pass: func(s extract.Signals) bool { return s.MentionsFAQ },
	},
	{
		Signal: extract.SignalAuthorCredential, Category: Authority, Points: 40,
		Issue: "Add author byline + credentials", Effort: Quick,
		Pass: func(s extract.Signals) bool { return s.MentionsAuthorCredential },
	},
	{
		Signal: extract.SignalExternalLinkCount, Category: Authority, Points: 35,
		Issue: "Link to reputable sources", Effort: Moderate,
		Pass: func(s extract.Signals) bool { return s.ExternalLinkCount > minExternalLinks },
	},
	{
		Signal: extract.SignalTrustBadge, Category: Authority, Points: 25,
		Pass: func(s extract.Signals) bool { return s.HasTrustBadgeImage },
	},
}
