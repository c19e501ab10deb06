package score

import (
	"math"
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/hyperifyio/geoanalyzer/internal/extract"
)

// signalsFromMask sets the ten boolean signals from the low bits of mask, in
// rule order, and uses links as the external link count.
func signalsFromMask(mask int, links int) extract.Signals {
	bit := func(i int) bool { return mask&(1<<i) != 0 }
	return extract.Signals{
		HasStructuredData:             bit(0),
		HasSemanticSectioning:         bit(1),
		HasGoodHeadingStructure:       bit(2),
		HasRecentDateMention:          bit(3),
		HasReasonableParagraphLength:  bit(4),
		HasTabularOrDefinitionContent: bit(5),
		HasListContent:                bit(6),
		MentionsFAQ:                   bit(7),
		MentionsAuthorCredential:      bit(8),
		HasTrustBadgeImage:            bit(9),
		ExternalLinkCount:             links,
	}
}

func allPass() extract.Signals { return signalsFromMask(1<<10-1, 10) }

func TestRules_CategoryMaximaAreOneHundred(t *testing.T) {
	sums := map[Category]int{}
	for _, r := range Rules {
		sums[r.Category] += r.Points
	}
	for _, c := range Categories {
		if sums[c] != 100 {
			t.Fatalf("expected %s rules to sum to 100, got %d", c, sums[c])
		}
	}
	total := 0
	for _, c := range Categories {
		total += Weights[c]
	}
	if total != 100 {
		t.Fatalf("expected weights to sum to 100, got %d", total)
	}
}

func TestRules_OrderedByCategoryAndCoverEverySignal(t *testing.T) {
	rank := map[Category]int{Technical: 0, Structure: 1, Authority: 2}
	last := 0
	names := make([]string, 0, len(Rules))
	for _, r := range Rules {
		if rank[r.Category] < last {
			t.Fatalf("rule %s breaks category order", r.Signal)
		}
		last = rank[r.Category]
		names = append(names, r.Signal)
		if r.Issue == "" && r.Effort != "" {
			t.Fatalf("rule %s has an effort but no issue text", r.Signal)
		}
	}
	if diff := cmp.Diff(extract.SignalNames(), names); diff != "" {
		t.Fatalf("rules do not cover signals in order (-want +got):\n%s", diff)
	}
}

func TestScore_AllRulesPass(t *testing.T) {
	got := Score(allPass())
	want := Result{
		TechnicalScore: 100,
		StructureScore: 100,
		AuthorityScore: 100,
		FinalScore:     100.0,
		Grade:          "A+",
		Priority:       PriorityLow,
		Issues:         []Issue{},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("result mismatch (-want +got):\n%s", diff)
	}
}

func TestScore_AllRulesFail(t *testing.T) {
	got := Score(extract.Signals{})
	want := Result{
		FinalScore: 0,
		Grade:      GradeF,
		Priority:   PriorityUrgent,
		Issues: []Issue{
			{"No JSON-LD structured data", Quick},
			{"Limited semantic HTML", Moderate},
			{"Fix heading hierarchy", Moderate},
			{"Add publish/update date", Quick},
			{"Add spec/comparison tables", Moderate},
			{"Use bullet/numbered lists", Quick},
			{"Add FAQ section", Moderate},
			{"Add author byline + credentials", Quick},
			{"Link to reputable sources", Moderate},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("result mismatch (-want +got):\n%s", diff)
	}
}

func TestScore_EmptyPageScenario(t *testing.T) {
	got := Score(extract.FromHTML([]byte(""), "https://example.com/", extract.Options{}))
	if got.TechnicalScore != 0 || got.StructureScore != 0 || got.AuthorityScore != 0 {
		t.Fatalf("unexpected sub-scores: %+v", got)
	}
	if got.FinalScore != 0.0 || got.Grade != GradeF || got.Priority != PriorityUrgent {
		t.Fatalf("unexpected final/grade/priority: %v %s %s", got.FinalScore, got.Grade, got.Priority)
	}
	if len(got.Issues) != 9 {
		t.Fatalf("expected every issue-bearing rule to fail, got %d issues", len(got.Issues))
	}
}

func TestScore_ExternalLinksMustExceedEight(t *testing.T) {
	for _, tc := range []struct {
		links int
		pts   int
		issue bool
	}{
		{0, 0, true},
		{8, 0, true},
		{9, 35, false},
	} {
		s := extract.Signals{ExternalLinkCount: tc.links}
		got := Score(s)
		if got.AuthorityScore != tc.pts {
			t.Fatalf("links=%d: expected authority %d, got %d", tc.links, tc.pts, got.AuthorityScore)
		}
		found := false
		for _, is := range got.Issues {
			if is.Description == "Link to reputable sources" {
				found = true
			}
		}
		if found != tc.issue {
			t.Fatalf("links=%d: expected issue present=%v, got %v", tc.links, tc.issue, found)
		}
	}
}

func TestScore_NoIssueRulesOnlyAffectPoints(t *testing.T) {
	s := allPass()
	s.HasReasonableParagraphLength = false
	s.HasTrustBadgeImage = false
	got := Score(s)
	if len(got.Issues) != 0 {
		t.Fatalf("expected no issues, got %v", got.Issues)
	}
	if got.TechnicalScore != 90 || got.AuthorityScore != 75 {
		t.Fatalf("expected technical 90 and authority 75, got %d and %d", got.TechnicalScore, got.AuthorityScore)
	}
	// 90*0.40 + 100*0.35 + 75*0.25 = 36 + 35 + 18.75 = 89.75
	if got.FinalScore != 89.8 {
		t.Fatalf("expected 89.8, got %v", got.FinalScore)
	}
}

// Exhaustive over every boolean combination and three link counts.
func TestScore_Properties(t *testing.T) {
	order := map[string]int{}
	for i, r := range Rules {
		if r.Issue != "" {
			order[r.Issue] = i
		}
	}
	for mask := 0; mask < 1<<10; mask++ {
		for _, links := range []int{0, 8, 9} {
			s := signalsFromMask(mask, links)
			r := Score(s)
			for _, c := range Categories {
				if v := r.SubScore(c); v < 0 || v > 100 {
					t.Fatalf("mask=%b: %s sub-score %d out of range", mask, c, v)
				}
			}
			exact := float64(r.TechnicalScore)*0.40 + float64(r.StructureScore)*0.35 + float64(r.AuthorityScore)*0.25
			if math.Abs(r.FinalScore-exact) > 0.05+1e-9 {
				t.Fatalf("mask=%b: final %v too far from %v", mask, r.FinalScore, exact)
			}
			if tenths := r.FinalScore * 10; math.Abs(tenths-math.Round(tenths)) > 1e-9 {
				t.Fatalf("mask=%b: final %v has more than one decimal", mask, r.FinalScore)
			}
			allFail := mask == 0 && links <= 8
			if (r.FinalScore == 0) != allFail {
				t.Fatalf("mask=%b links=%d: final==0 is %v, all-fail is %v", mask, links, r.FinalScore == 0, allFail)
			}
			allOK := mask == 1<<10-1 && links > 8
			if (r.FinalScore == 100) != allOK {
				t.Fatalf("mask=%b links=%d: final==100 is %v, all-pass is %v", mask, links, r.FinalScore == 100, allOK)
			}
			prev := -1
			for _, is := range r.Issues {
				idx, ok := order[is.Description]
				if !ok || idx <= prev {
					t.Fatalf("mask=%b: issues out of table order: %v", mask, r.Issues)
				}
				prev = idx
			}
			g, p := Classify(r.FinalScore)
			if g != r.Grade || p != r.Priority {
				t.Fatalf("mask=%b: result classification differs from Classify", mask)
			}
		}
	}
}

func TestFinal_RoundsTiesToEven(t *testing.T) {
	cases := []struct {
		t, s, a int
		want    float64
	}{
		{0, 0, 0, 0},
		{100, 100, 100, 100},
		{35, 0, 0, 14},
		{0, 25, 0, 8.8},    // 8.75
		{0, 0, 35, 8.8},    // 8.75
		{100, 65, 0, 62.8}, // 62.75
		{55, 40, 40, 46},
		{15, 0, 25, 12.2}, // 12.25
		{0, 0, 25, 6.2},   // 6.25
		{0, 35, 0, 12.2},  // 12.25
		{0, 75, 0, 26.2},  // 26.25
		{90, 100, 75, 89.8},
	}
	for _, c := range cases {
		if got := Final(c.t, c.s, c.a); got != c.want {
			t.Fatalf("Final(%d,%d,%d): expected %v, got %v", c.t, c.s, c.a, c.want, got)
		}
	}
}

// reachable returns every sub-score a category can take.
func reachable(c Category) []int {
	seen := map[int]bool{0: true}
	for _, r := range Rules {
		if r.Category != c {
			continue
		}
		next := map[int]bool{}
		for v := range seen {
			next[v] = true
			next[v+r.Points] = true
		}
		seen = next
	}
	out := make([]int, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	return out
}

// The float expression rounded with correct decimal conversion (ties to
// even on the exact binary value) agrees with Final on every reachable input.
func TestFinal_MatchesFloatRounding(t *testing.T) {
	for _, tech := range reachable(Technical) {
		for _, st := range reachable(Structure) {
			for _, au := range reachable(Authority) {
				// Explicit conversions keep the products from being fused.
				x := float64(float64(tech)*0.4) + float64(float64(st)*0.35) + float64(float64(au)*0.25)
				want, err := strconv.ParseFloat(strconv.FormatFloat(x, 'f', 1, 64), 64)
				if err != nil {
					t.Fatal(err)
				}
				if got := Final(tech, st, au); got != want {
					t.Fatalf("Final(%d,%d,%d): expected %v, got %v", tech, st, au, want, got)
				}
			}
		}
	}
}
