package utils

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// connectors left dangling once a date phrase is cut out of a sentence
var connectors = []string{"at", "on", "from", "for", "by", "in", "-", ","}

// strips spaces and dangling connectors, title-cases words, removes trailing period
func CleanupString(s string) string {
	words := strings.Fields(s)
	for len(words) > 0 && isConnector(words[len(words)-1]) {
		words = words[:len(words)-1]
	}
	for len(words) > 0 && isConnector(words[0]) {
		words = words[1:]
	}
	s = strings.Join(words, " ")
	s = strings.TrimSuffix(s, ".")
	return cases.Title(language.English).String(s)
}

func isConnector(word string) bool {
	word = strings.ToLower(word)
	for _, c := range connectors {
		if word == c {
			return true
		}
	}
	return false
}
