package rules

import (
	"fmt"

	"github.com/HendryAvila/moodmate/internal/mood"
)

var greetingTable = map[mood.Mood]string{
	mood.Energetic: "Quelle énergie aujourd'hui ! On en fait quelque chose de bien.",
	mood.Normal:    "Prêt·e pour une journée tranquille et efficace ?",
	mood.Tired:     "Journée douce aujourd'hui. On fait le minimum, et c'est très bien.",
	mood.Stressed:  "On respire. On va découper tout ça en petits morceaux.",
	mood.Sad:       "Je suis là. On avance à ton rythme, sans pression.",
}

// Greeting builds the home-screen greeting for the given hour (0..23).
// The chronotype only changes the phrasing around the user's peak time.
func Greeting(m mood.Mood, c mood.Chronotype, name string, hour int) string {
	salutation := "Bonjour"
	switch {
	case hour >= 18 || hour < 5:
		salutation = "Bonsoir"
	case hour >= 12:
		salutation = "Bon après-midi"
	}
	if name != "" {
		salutation += " " + name
	}

	body, ok := greetingTable[m]
	if !ok {
		body = greetingTable[mood.Normal]
	}

	return fmt.Sprintf("%s ! %s%s", salutation, body, peakHint(c, hour))
}

func peakHint(c mood.Chronotype, hour int) string {
	switch c {
	case mood.Morning:
		if hour >= 6 && hour < 11 {
			return " C'est ton meilleur moment de la journée."
		}
		if hour >= 20 {
			return " Ta journée est faite, pense à ralentir."
		}
	case mood.Evening:
		if hour >= 17 && hour < 22 {
			return " Ton énergie arrive, profites-en."
		}
		if hour < 10 && hour >= 5 {
			return " Démarrage en douceur, ton pic viendra plus tard."
		}
	}
	return ""
}

var fallbackTable = map[mood.Mood]string{
	mood.Energetic: "Je n'arrive pas à me connecter pour l'instant, mais garde cet élan ! Note ton idée, on y revient dans un moment.",
	mood.Normal:    "Je n'arrive pas à me connecter pour l'instant. Réessaie dans quelques minutes.",
	mood.Tired:     "La connexion ne répond pas. Ce n'est pas grave : repose-toi, on en reparle plus tard.",
	mood.Stressed:  "Je n'arrive pas à répondre tout de suite. Prends une grande respiration, ce n'est qu'un petit contretemps.",
	mood.Sad:       "Je n'arrive pas à me connecter, mais je reste là. Prends soin de toi en attendant.",
}

// FallbackMessage is what the assistant says when the LLM is unreachable.
func FallbackMessage(m mood.Mood) string {
	if s, ok := fallbackTable[m]; ok {
		return s
	}
	return fallbackTable[mood.Normal]
}
