package ai

import (
	"fmt"
	"strings"

	"github.com/Zinko5/newsbot/pkg/models"
)

// maxContentChars bounds each article body embedded in the prompt
const maxContentChars = 500

// PromptInput carries everything the prompt builders need for one turn
type PromptInput struct {
	Question     string
	Articles     []models.Article
	PriorContext []models.Article
	FollowUp     bool
	Stats        models.SentimentStats
	Weather      *models.WeatherReport
}

// BuildSystemPrompt renders the system instructions for the news assistant
func BuildSystemPrompt(in PromptInput) string {
	var b strings.Builder

	b.WriteString("Eres un asistente de noticias bolivianas.\n")
	b.WriteString("Reglas:\n")
	b.WriteString("- Responde SOLO con información de las noticias proporcionadas\n")
	b.WriteString("- NO inventes datos\n")
	b.WriteString("- MANTÉN los nombres propios exactos (ej: 'Edmand' no es 'Edmundo')\n")

	if in.FollowUp && len(in.PriorContext) > 0 {
		b.WriteString("- La pregunta continúa la conversación: prioriza las NOTICIAS VISTAS ANTERIORMENTE\n")
	} else {
		b.WriteString("- Basa tu respuesta en los RESULTADOS ACTUALES\n")
	}

	if in.Stats.Total > 0 {
		fmt.Fprintf(&b, "- Panorama de sentimientos del día: %d positivas, %d neutrales, %d negativas de %d noticias\n",
			in.Stats.Positive, in.Stats.Neutral, in.Stats.Negative, in.Stats.Total)
	}

	if in.Weather != nil {
		fmt.Fprintf(&b, "- Clima actual en %s: %.1f°C, %s %s\n",
			in.Weather.City, in.Weather.Temperature, in.Weather.Condition, in.Weather.Icon)
	}

	b.WriteString("- Sé conciso y responde en español\n")
	b.WriteString("- Termina invitando a seguir preguntando\n")

	return b.String()
}

// BuildUserPrompt renders the user turn with both article sets labeled
func BuildUserPrompt(in PromptInput) string {
	var b strings.Builder

	if len(in.Articles) > 0 {
		b.WriteString("RESULTADOS ACTUALES:\n")
		writeArticles(&b, in.Articles)
	}

	if in.FollowUp && len(in.PriorContext) > 0 {
		b.WriteString("\nNOTICIAS VISTAS ANTERIORMENTE:\n")
		writeArticles(&b, in.PriorContext)
	}

	fmt.Fprintf(&b, "\nPREGUNTA: %s\n\n", in.Question)
	b.WriteString("Responde basándote solo en las noticias. Respeta los nombres propios y no inventes datos.")

	return b.String()
}

func writeArticles(b *strings.Builder, articles []models.Article) {
	for i, a := range articles {
		if i >= 3 {
			break
		}
		fmt.Fprintf(b, "\nNOTICIA %d:\n", i+1)
		fmt.Fprintf(b, "Título: %s\n", a.Title)
		fmt.Fprintf(b, "Contenido: %s\n", truncate(a.Content, maxContentChars))
		if a.IsEnriched() {
			fmt.Fprintf(b, "Sentimiento: %s (%s)\n", a.Sentiment, a.SentimentConfidence)
		}
	}
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
