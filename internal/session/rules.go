package session

import (
	"regexp"
	"strings"

	"github.com/Zinko5/newsbot/pkg/models"
)

// Intent rules are declarative pattern tables over the lower-cased question.
// Keeping them as data makes them testable in isolation and lets the whole
// set be swapped for another locale without touching control flow.

// followUpRules match questions that refer back to previously shown articles
var followUpRules = []*regexp.Regexp{
	// ordinal or numbered references: "sobre la primera", "en la 2"
	regexp.MustCompile(`(?:sobre|en|de) l[ao]s? (\d+|primer[ao]?|segund[ao]|tercer[ao]?|cuart[ao]|quint[ao])`),
	// explicit article references: "la noticia 3", "el artículo dos"
	regexp.MustCompile(`(?:noticia|nota|art[ií]culo)s? (\d+|un[ao]|dos|tres|primer[ao]?|segund[ao]|tercer[ao]?)`),
	// deepening cues
	regexp.MustCompile(`profundiza|ampl[ií]a|m[áa]s sobre|cu[ée]ntame m[áa]s|dame m[áa]s detalles`),
	// continuation cues
	regexp.MustCompile(`qu[ée] pas[óo] con|^y l[ao]s? |^y el `),
}

// IsFollowUp reports whether the question refers to prior context
func IsFollowUp(question string) bool {
	q := strings.ToLower(strings.TrimSpace(question))
	for _, rule := range followUpRules {
		if rule.MatchString(q) {
			return true
		}
	}
	return false
}

// sentimentQueryWords maps trigger words to the sentiment being asked for
var sentimentQueryWords = []struct {
	words []string
	label models.Sentiment
}{
	{[]string{"positiva", "positivas", "buena", "buenas", "alegre", "alegres"}, models.SentimentPositive},
	{[]string{"negativa", "negativas", "mala", "malas", "triste", "tristes"}, models.SentimentNegative},
	{[]string{"neutral", "neutrales", "normal", "normales"}, models.SentimentNeutral},
}

// DetectSentimentQuery returns the requested sentiment label, or "" when the
// question is not a sentiment-filter query
func DetectSentimentQuery(question string) models.Sentiment {
	q := strings.ToLower(question)
	for _, entry := range sentimentQueryWords {
		for _, w := range entry.words {
			if strings.Contains(q, w) {
				return entry.label
			}
		}
	}
	return ""
}

// IsSentimentSummaryQuery reports whether the user asked for the overall
// sentiment breakdown rather than a filtered listing
func IsSentimentSummaryQuery(question string) bool {
	q := strings.ToLower(question)
	return strings.Contains(q, "resumen de sentimientos") ||
		strings.Contains(q, "resumen de los sentimientos")
}
