package sentiment

import (
	"regexp"
	"strings"
)

// Lexicon holds the domain keyword rules that override the model.
// The sets are Spanish and tuned for Bolivian news; swap the lexicon to
// localize the classifier without touching its control flow.
type Lexicon struct {
	negative []*regexp.Regexp
	positive []*regexp.Regexp
}

// termPattern compiles a whole-word match for a term.
// regexp's \b is ASCII-only and misfires on accented endings ("falleció"),
// so the boundary is spelled out with unicode letter/digit classes.
func termPattern(term string) *regexp.Regexp {
	escaped := regexp.QuoteMeta(strings.ToLower(term))
	return regexp.MustCompile(`(?:^|[^\p{L}\p{N}])` + escaped + `(?:$|[^\p{L}\p{N}])`)
}

func compileTerms(terms []string) []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, 0, len(terms))
	for _, term := range terms {
		patterns = append(patterns, termPattern(term))
	}
	return patterns
}

// NewLexicon compiles keyword sets into whole-word matchers
func NewLexicon(negative, positive []string) *Lexicon {
	return &Lexicon{
		negative: compileTerms(negative),
		positive: compileTerms(positive),
	}
}

// CountNegative returns how many negative terms occur in the lower-cased text
func (l *Lexicon) CountNegative(textLower string) int {
	return countMatches(l.negative, textLower)
}

// CountPositive returns how many positive terms occur in the lower-cased text
func (l *Lexicon) CountPositive(textLower string) int {
	return countMatches(l.positive, textLower)
}

func countMatches(patterns []*regexp.Regexp, textLower string) int {
	count := 0
	for _, p := range patterns {
		if p.MatchString(textLower) {
			count++
		}
	}
	return count
}

// DefaultLexicon returns the Bolivian news keyword sets
func DefaultLexicon() *Lexicon {
	return NewLexicon(defaultNegativeTerms(), defaultPositiveTerms())
}

func defaultNegativeTerms() []string {
	return []string{
		"muerte", "falleció", "fallecimiento", "accidente", "tragedia",
		"bloqueo", "protesta", "enfrentamiento", "represión", "huelga",
		"inundación", "desastre", "crisis", "delincuencia", "corrupción",
		"violencia", "robo", "asesinato", "homicidio", "secuestro",
		"pandemia", "fallece", "se accidentó", "muerto", "herido",
		"víctima", "victimas", "víctimas", "ataque", "amenaza",
		"denuncia", "conflicto", "feminicidio", "abuso", "abuso sexual",
		"violencia de género",
	}
}

func defaultPositiveTerms() []string {
	return []string{
		"ganó", "triunfo", "campeón", "clasificó", "acuerdo",
		"celebración", "inauguración", "construcción", "crecimiento",
		"paz", "seguridad", "desarrollo", "progreso", "mejora",
		"éxito", "victoria", "inauguró", "concluyó", "completó",
		"superó", "logro", "récord", "premio", "reconocimiento",
		"avance", "beneficio", "esperanza", "solución",
	}
}
