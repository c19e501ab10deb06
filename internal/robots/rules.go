package robots

import (
	"bufio"
	"regexp"
	"strings"
	"time"
)

// Rules is a parsed robots.txt.
type Rules struct {
	Groups []Group
	// DenyAll is set when the file could not be obtained for a reason that
	// must be read as "keep out" (server errors, auth walls, timeouts).
	DenyAll bool
}

// Group is one User-agent block.
type Group struct {
	Agents     []string
	Allow      []string
	Disallow   []string
	CrawlDelay time.Duration
}

// Parse reads robots.txt text. Unknown directives and malformed lines are
// ignored.
func Parse(text string) Rules {
	sc := bufio.NewScanner(strings.NewReader(text))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var (
		groups  []Group
		cur     Group
		hasRule bool
	)
	flush := func() {
		if len(cur.Agents) > 0 {
			groups = append(groups, cur)
		}
		cur = Group{}
		hasRule = false
	}
	for sc.Scan() {
		line := sc.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		key, val, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		val = strings.TrimSpace(val)
		switch key {
		case "user-agent", "useragent":
			// A user-agent line after rules starts a new group; consecutive
			// user-agent lines share one.
			if hasRule {
				flush()
			}
			cur.Agents = append(cur.Agents, strings.ToLower(val))
		case "allow":
			cur.Allow = append(cur.Allow, val)
			hasRule = true
		case "disallow":
			cur.Disallow = append(cur.Disallow, val)
			hasRule = true
		case "crawl-delay", "crawldelay":
			if d, err := time.ParseDuration(val + "s"); err == nil && d >= 0 {
				cur.CrawlDelay = d
			}
			hasRule = true
		}
	}
	flush()
	return Rules{Groups: groups}
}

// IsAllowed reports whether path (query included) may be fetched by
// userAgent. The most specific matching directive wins and Allow wins ties.
// No matching directive means allowed.
func (r Rules) IsAllowed(userAgent string, path string) bool {
	if r.DenyAll {
		return false
	}
	g := r.group(userAgent)
	if g == nil {
		return true
	}
	if path == "" {
		path = "/"
	}
	best, allow := -1, true
	consider := func(patterns []string, isAllow bool) {
		for _, p := range patterns {
			if p == "" || !match(p, path) {
				continue
			}
			s := specificity(p)
			if s > best || (s == best && isAllow) {
				best, allow = s, isAllow
			}
		}
	}
	consider(g.Disallow, false)
	consider(g.Allow, true)
	return allow
}

// CrawlDelay returns the delay requested of userAgent, or zero.
func (r Rules) CrawlDelay(userAgent string) time.Duration {
	if g := r.group(userAgent); g != nil {
		return g.CrawlDelay
	}
	return 0
}

// group picks the group whose agent token is the longest substring of
// userAgent. "*" matches anything but loses to every named token.
func (r Rules) group(userAgent string) *Group {
	ua := strings.ToLower(userAgent)
	best, idx := -1, -1
	for i, g := range r.Groups {
		for _, a := range g.Agents {
			score := -1
			switch {
			case a == "*":
				score = 0
			case a != "" && strings.Contains(ua, a):
				score = len(a)
			}
			if score > best {
				best, idx = score, i
			}
		}
	}
	if idx < 0 {
		return nil
	}
	return &r.Groups[idx]
}

// match applies a robots path pattern: anchored at the start, '*' matches
// any run of characters and a trailing '$' anchors the end.
func match(pattern, path string) bool {
	if !strings.ContainsAny(pattern, "*$") {
		return strings.HasPrefix(path, pattern)
	}
	anchored := strings.HasSuffix(pattern, "$")
	pattern = strings.TrimSuffix(pattern, "$")
	parts := strings.Split(pattern, "*")
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}
	expr := "^" + strings.Join(parts, ".*")
	if anchored {
		expr += "$"
	}
	re, err := regexp.Compile(expr)
	return err == nil && re.MatchString(path)
}

func specificity(pattern string) int {
	return len(strings.ReplaceAll(strings.TrimSuffix(pattern, "$"), "*", ""))
}
