package search

import (
	"regexp"
	"strings"

	"github.com/poiesic/boardsearch/core"
	"github.com/poiesic/boardsearch/query"
)

// termMatcher matches one classified term against lower-cased text.
type termMatcher struct {
	text string
	re   *regexp.Regexp // non-nil when whole-word matching is on
}

func newTermMatcher(t query.Term, policy core.SearchPolicy) termMatcher {
	m := termMatcher{text: t.Text}
	// Phrases already encode their own word adjacency; whole-word wrapping
	// applies to plain words only.
	if policy.MatchWholeWords && !t.Phrase {
		m.re = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(t.Text) + `\b`)
	}
	return m
}

// count returns the number of occurrences in text. Text must be lower-cased.
func (m termMatcher) count(text string) int {
	if m.re != nil {
		return len(m.re.FindAllStringIndex(text, -1))
	}
	return strings.Count(text, m.text)
}

func (m termMatcher) matches(text string) bool {
	if m.re != nil {
		return m.re.MatchString(text)
	}
	return strings.Contains(text, m.text)
}

// groupPredicate evaluates one OrGroup against a message: AND over
// included terms, AND-NOT over excluded terms.
type groupPredicate struct {
	include []termMatcher
	exclude []termMatcher
}

func newGroupPredicate(g query.OrGroup, policy core.SearchPolicy) groupPredicate {
	p := groupPredicate{
		include: make([]termMatcher, 0, len(g.Include)),
		exclude: make([]termMatcher, 0, len(g.Exclude)),
	}
	for _, t := range g.Include {
		p.include = append(p.include, newTermMatcher(t, policy))
	}
	for _, t := range g.Exclude {
		p.exclude = append(p.exclude, newTermMatcher(t, policy))
	}
	return p
}

// match evaluates the predicate. When subjectOnly is set only the subject
// field is considered. Returns the total included-term occurrence count and
// whether any included term hit the subject.
func (p groupPredicate) match(msg *core.Message, subjectOnly bool) (matchCount int, subjectHit bool, ok bool) {
	subject := strings.ToLower(msg.Subject)
	body := ""
	if !subjectOnly {
		body = strings.ToLower(msg.Body)
	}

	for _, m := range p.include {
		inSubject := m.count(subject)
		inBody := 0
		if !subjectOnly {
			inBody = m.count(body)
		}
		if inSubject+inBody == 0 {
			return 0, false, false
		}
		matchCount += inSubject + inBody
		if inSubject > 0 {
			subjectHit = true
		}
	}
	for _, m := range p.exclude {
		if m.matches(subject) || (!subjectOnly && m.matches(body)) {
			return 0, false, false
		}
	}
	return matchCount, subjectHit, true
}

// messagePredicate ORs a set of group predicates.
type messagePredicate struct {
	groups []groupPredicate
}

func newMessagePredicate(groups []query.OrGroup, policy core.SearchPolicy) messagePredicate {
	p := messagePredicate{groups: make([]groupPredicate, 0, len(groups))}
	for _, g := range groups {
		p.groups = append(p.groups, newGroupPredicate(g, policy))
	}
	return p
}

func (p messagePredicate) match(msg *core.Message, subjectOnly bool) (matchCount int, subjectHit bool, ok bool) {
	for _, g := range p.groups {
		count, subj, hit := g.match(msg, subjectOnly)
		if hit {
			return count, subj, true
		}
	}
	return 0, false, false
}
