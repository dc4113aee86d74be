package verification

import (
	"regexp"
	"strings"
)

var nonWordChars = regexp.MustCompile(`[^\w\s]`)

// titlesAndSuffixes are stripped before comparison so "Dr. John Doe Jr."
// matches "John Doe".
var titlesAndSuffixes = map[string]bool{
	"MR": true, "MRS": true, "MS": true, "DR": true, "PROF": true,
	"JR": true, "SR": true, "II": true, "III": true, "IV": true,
}

// Weights for combining character-level similarity with whole-word overlap.
const (
	characterWeight = 0.7
	wordWeight      = 0.3
)

// NormalizeName uppercases, strips punctuation, collapses whitespace, and
// removes titles and generational suffixes.
func NormalizeName(name string) string {
	if name == "" {
		return ""
	}
	normalized := nonWordChars.ReplaceAllString(strings.ToUpper(name), "")
	words := strings.Fields(normalized)
	filtered := words[:0]
	for _, word := range words {
		if !titlesAndSuffixes[word] {
			filtered = append(filtered, word)
		}
	}
	return strings.Join(filtered, " ")
}

// FuzzyNameMatch scores the certificate name against the profile name. The
// combined score blends character similarity with the fraction of profile
// words present in the extracted name; threshold decides the match.
func FuzzyNameMatch(extractedName, profileName string, threshold float64) NameMatch {
	if extractedName == "" || profileName == "" {
		return NameMatch{Error: "One or both names are empty"}
	}

	extractedNorm := NormalizeName(extractedName)
	profileNorm := NormalizeName(profileName)

	similarity := sequenceRatio(extractedNorm, profileNorm)

	profileWords := toSet(strings.Fields(profileNorm))
	extractedWords := toSet(strings.Fields(extractedNorm))
	wordMatchRatio := 0.0
	if len(profileWords) > 0 {
		shared := 0
		for word := range profileWords {
			if extractedWords[word] {
				shared++
			}
		}
		wordMatchRatio = float64(shared) / float64(len(profileWords))
	}

	combined := similarity*characterWeight + wordMatchRatio*wordWeight

	return NameMatch{
		IsMatch:             combined >= threshold,
		SimilarityScore:     combined,
		CharacterSimilarity: similarity,
		WordMatchRatio:      wordMatchRatio,
		ExtractedNormalized: extractedNorm,
		ProfileNormalized:   profileNorm,
	}
}

func toSet(words []string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}
