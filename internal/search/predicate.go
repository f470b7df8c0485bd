// Package search answers which enterprises match a text query and a domain
// selection, and runs debounced query streams where the latest query wins.
package search

import (
	"strings"

	"github.com/businessbook/directory/internal/models"
)

// Scope selects the empty-query policy of a call site.
type Scope string

const (
	// ScopeHome browses: no criteria means the whole catalog.
	ScopeHome Scope = "home"
	// ScopeSearch waits for input: no criteria means no results.
	ScopeSearch Scope = "search"
)

// ParseScope maps a wire value to a Scope, defaulting to ScopeSearch.
func ParseScope(s string) Scope {
	if Scope(strings.ToLower(strings.TrimSpace(s))) == ScopeHome {
		return ScopeHome
	}
	return ScopeSearch
}

// Criteria is a text query plus a set of selected domain ids.
type Criteria struct {
	Text      string   `json:"text"`
	DomainIDs []string `json:"domain_ids"`
}

// Normalize trims the text and drops blank and duplicate domain ids.
func (c Criteria) Normalize() Criteria {
	out := Criteria{Text: strings.TrimSpace(c.Text)}
	seen := make(map[string]struct{}, len(c.DomainIDs))
	for _, id := range c.DomainIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out.DomainIDs = append(out.DomainIDs, id)
	}
	return out
}

// IsEmpty reports whether neither text nor domains are set (after normalizing).
func (c Criteria) IsEmpty() bool {
	n := c.Normalize()
	return n.Text == "" && len(n.DomainIDs) == 0
}

// Matcher is a compiled Criteria.
type Matcher struct {
	text    string
	domains map[string]struct{}
}

// Compile prepares c for repeated matching.
func Compile(c Criteria) Matcher {
	n := c.Normalize()
	m := Matcher{text: strings.ToLower(n.Text)}
	if len(n.DomainIDs) > 0 {
		m.domains = make(map[string]struct{}, len(n.DomainIDs))
		for _, id := range n.DomainIDs {
			m.domains[id] = struct{}{}
		}
	}
	return m
}

// Match is the text predicate AND the domain predicate.
func (m Matcher) Match(e models.Enterprise) bool {
	return m.matchText(e) && m.matchDomains(e)
}

func (m Matcher) matchText(e models.Enterprise) bool {
	if m.text == "" {
		return true
	}
	if strings.Contains(strings.ToLower(e.LongName), m.text) ||
		strings.Contains(strings.ToLower(e.Description), m.text) {
		return true
	}
	for _, k := range e.Keywords {
		if strings.Contains(strings.ToLower(k), m.text) {
			return true
		}
	}
	return false
}

// matchDomains is a union filter: any selected domain is enough.
func (m Matcher) matchDomains(e models.Enterprise) bool {
	if len(m.domains) == 0 {
		return true
	}
	for _, id := range e.BusinessDomains {
		if _, ok := m.domains[id]; ok {
			return true
		}
	}
	return false
}

// Filter returns the enterprises matching c, preserving order. The result is
// never nil so it encodes as an empty JSON array.
func Filter(list []models.Enterprise, c Criteria) []models.Enterprise {
	m := Compile(c)
	out := make([]models.Enterprise, 0, len(list))
	for _, e := range list {
		if m.Match(e) {
			out = append(out, e)
		}
	}
	return out
}

// Apply evaluates c against a snapshot under the empty-query policy of scope.
func Apply(scope Scope, list []models.Enterprise, c Criteria) []models.Enterprise {
	if c.IsEmpty() {
		if scope == ScopeSearch {
			return []models.Enterprise{}
		}
		return append(make([]models.Enterprise, 0, len(list)), list...)
	}
	return Filter(list, c)
}
