// Package rules holds the static rule tables and template generators that
// adapt the assistant to the user's mood, chronotype and challenges.
//
// Everything here is a pure function of its inputs. Nothing is learned or
// inferred; the tables are hand-written copy.
package rules

import (
	"sort"

	"github.com/HendryAvila/moodmate/internal/mood"
)

// Area is a life area the app can put forward.
type Area string

const (
	AreaTasks    Area = "tasks"
	AreaHealth   Area = "health"
	AreaFinance  Area = "finance"
	AreaCleaning Area = "cleaning"
	AreaCooking  Area = "cooking"
	AreaSocial   Area = "social"
	AreaRest     Area = "rest"
)

// Priority is one weighted suggestion for the current mood.
type Priority struct {
	Area   Area   `json:"area"`
	Weight int    `json:"weight"` // 1..10
	Tip    string `json:"tip"`
}

var priorityTable = map[mood.Mood][]Priority{
	mood.Energetic: {
		{AreaTasks, 9, "Profite de l'élan pour attaquer la tâche que tu repousses."},
		{AreaCleaning, 7, "Un rangement express de 15 minutes, pas plus."},
		{AreaFinance, 6, "Bon moment pour faire le point sur ton budget."},
		{AreaCooking, 5, "Prépare un repas en avance pour les jours plus lents."},
		{AreaRest, 3, "Pense quand même à faire une pause."},
	},
	mood.Normal: {
		{AreaTasks, 7, "Choisis trois tâches, pas plus."},
		{AreaHealth, 6, "Vérifie que tu as pris tes médicaments."},
		{AreaCleaning, 5, "Une petite tâche ménagère suffit."},
		{AreaFinance, 5, "Note tes dépenses du jour."},
		{AreaSocial, 4, "Envoie un message à quelqu'un que tu apprécies."},
	},
	mood.Tired: {
		{AreaRest, 9, "Le repos est une tâche productive aujourd'hui."},
		{AreaHealth, 8, "Bois de l'eau et mange quelque chose de simple."},
		{AreaCooking, 5, "Un repas sans effort, c'est parfait."},
		{AreaTasks, 3, "Une seule micro-tâche, si tu en as envie."},
	},
	mood.Stressed: {
		{AreaHealth, 9, "Trois respirations lentes avant toute chose."},
		{AreaTasks, 6, "Écris tout ce qui t'encombre, puis choisis une seule chose."},
		{AreaRest, 6, "Une pause de cinq minutes loin des écrans."},
		{AreaFinance, 2, "Évite les achats impulsifs aujourd'hui."},
	},
	mood.Sad: {
		{AreaSocial, 8, "Parle à quelqu'un de confiance, même brièvement."},
		{AreaHealth, 8, "Sors prendre l'air quelques minutes si tu peux."},
		{AreaRest, 7, "Sois doux avec toi-même."},
		{AreaTasks, 2, "Rien n'est urgent au point de passer avant toi."},
	},
}

// Priorities returns the suggestions for m, highest weight first.
// Unknown moods get the Normal table.
func Priorities(m mood.Mood) []Priority {
	src, ok := priorityTable[m]
	if !ok {
		src = priorityTable[mood.Normal]
	}
	out := make([]Priority, len(src))
	copy(out, src)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Weight > out[j].Weight })
	return out
}

// EffortBudget is how many minutes of effortful work a single suggestion
// should ask for in mood m.
func EffortBudget(m mood.Mood) int {
	switch m {
	case mood.Energetic:
		return 60
	case mood.Normal:
		return 30
	case mood.Stressed:
		return 15
	case mood.Tired, mood.Sad:
		return 10
	default:
		return 30
	}
}

// Effort levels used by recipes and checklists.
const (
	EffortLow    = "low"
	EffortMedium = "medium"
	EffortHigh   = "high"
)

// AllowedEffort reports whether an activity of the given effort level
// suits mood m.
func AllowedEffort(m mood.Mood, effort string) bool {
	switch m {
	case mood.Energetic:
		return true
	case mood.Normal:
		return effort != EffortHigh
	default:
		return effort == EffortLow || effort == ""
	}
}
