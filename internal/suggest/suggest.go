// Package suggest guesses a project's type from its name and description by
// keyword lookup. There is no model behind it: the same input always yields
// the same answer.
package suggest

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

// Project types, in tie-break order.
const (
	Residential    = "residential"
	Commercial     = "commercial"
	Industrial     = "industrial"
	Infrastructure = "infrastructure"
	Renovation     = "renovation"
	Landscaping    = "landscaping"
)

// fullConfidenceMatches is the keyword count at which confidence reaches 1.
const fullConfidenceMatches = 3

type keywordSet struct {
	projectType string
	keywords    []string
}

var table = []keywordSet{
	{Residential, []string{"house", "home", "residential", "apartment", "condo", "townhouse", "duplex", "villa", "bungalow", "dwelling", "cottage"}},
	{Commercial, []string{"office", "retail", "store", "shop", "mall", "restaurant", "hotel", "commercial", "bank", "showroom"}},
	{Industrial, []string{"factory", "plant", "warehouse", "manufacturing", "industrial", "refinery", "mill", "depot", "workshop"}},
	{Infrastructure, []string{"road", "bridge", "highway", "tunnel", "railway", "rail", "pipeline", "sewer", "dam", "airport", "infrastructure", "utility"}},
	{Renovation, []string{"renovation", "renovate", "remodel", "refurbish", "restore", "restoration", "retrofit", "upgrade", "repair", "makeover"}},
	{Landscaping, []string{"landscape", "landscaping", "garden", "park", "lawn", "patio", "irrigation", "hardscape", "yard", "deck"}},
}

// Types lists every type the matcher can return, in table order.
func Types() []string {
	out := make([]string, len(table))
	for i, set := range table {
		out[i] = set.projectType
	}
	return out
}

// IsType reports whether s is one of Types.
func IsType(s string) bool {
	for _, set := range table {
		if set.projectType == s {
			return true
		}
	}
	return false
}

// Suggestion is the matcher's verdict. ProjectType is empty when nothing matched.
type Suggestion struct {
	ProjectType     string
	Confidence      float64
	MatchedKeywords []string
}

// ProjectType scores name and description against each type's keywords.
// The type with the most distinct keyword hits wins, earlier types winning
// ties. A renovation keyword in the name overrides the count.
func ProjectType(name, description string) Suggestion {
	words := wordSet(name + " " + description)
	titleWords := wordSet(name)

	best := -1
	var bestMatches []string
	var renovationMatches []string
	renovationInTitle := false

	for i, set := range table {
		matches := match(set.keywords, words)
		if set.projectType == Renovation {
			renovationMatches = matches
			renovationInTitle = len(match(set.keywords, titleWords)) > 0
		}
		if len(matches) > len(bestMatches) {
			best, bestMatches = i, matches
		}
	}

	if renovationInTitle {
		return newSuggestion(Renovation, renovationMatches)
	}
	if best < 0 {
		return Suggestion{MatchedKeywords: []string{}}
	}
	return newSuggestion(table[best].projectType, bestMatches)
}

func newSuggestion(projectType string, matches []string) Suggestion {
	confidence := float64(len(matches)) / fullConfidenceMatches
	if confidence > 1 {
		confidence = 1
	}
	return Suggestion{ProjectType: projectType, Confidence: confidence, MatchedKeywords: matches}
}

// match returns the keywords present in words, in keyword order. A keyword
// also matches its simple plural ("offices", "bridges").
func match(keywords []string, words map[string]struct{}) []string {
	var out []string
	for _, kw := range keywords {
		if has(words, kw) || has(words, kw+"s") || has(words, kw+"es") {
			out = append(out, kw)
		}
	}
	return out
}

func has(words map[string]struct{}, w string) bool {
	_, ok := words[w]
	return ok
}

func wordSet(text string) map[string]struct{} {
	folded := cases.Fold().String(text)
	fields := strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}
