package rules

import (
	"github.com/HendryAvila/moodmate/internal/mood"
	"github.com/HendryAvila/moodmate/internal/profile"
)

var chronotypeTips = map[mood.Chronotype]string{
	mood.Morning:  "Planifie tes tâches importantes avant midi, c'est là que tu es le plus efficace.",
	mood.Evening:  "Garde les matinées légères et place les tâches exigeantes en fin de journée.",
	mood.Flexible: "Observe à quels moments tu te sens le plus concentré·e et protège-les.",
}

var challengeTips = map[string]string{
	profile.ChallengeFocus:         "Essaie des sessions de 15 minutes avec un minuteur visible.",
	profile.ChallengeTimeBlindness: "Ajoute un rappel 10 minutes avant chaque rendez-vous.",
	profile.ChallengeImpulsivity:   "Attends 24 heures avant tout achat non prévu.",
	profile.ChallengeOrganization:  "Une checklist par routine évite d'avoir à tout retenir.",
	profile.ChallengeEmotions:      "Noter ton humeur chaque jour aide à repérer ce qui te fait du bien.",
	profile.ChallengeSleep:         "Une heure fixe de coucher stabilise ton énergie du lendemain.",
	profile.ChallengeMotivation:    "Commence par la plus petite étape possible, même deux minutes comptent.",
}

// AnalyticsTips returns the personalized tips shown next to analytics:
// one for the chronotype, then one per known challenge in profile order.
func AnalyticsTips(c mood.Chronotype, challenges []string) []string {
	tips := []string{}
	if t, ok := chronotypeTips[c]; ok {
		tips = append(tips, t)
	} else {
		tips = append(tips, chronotypeTips[mood.Flexible])
	}
	for _, ch := range challenges {
		if t, ok := challengeTips[ch]; ok {
			tips = append(tips, t)
		}
	}
	return tips
}

// Template is a ready-made checklist.
type Template struct {
	Name     string   `json:"name"`
	Category string   `json:"category"`
	Items    []string `json:"items"`
}

var baseTemplates = []Template{
	{"Routine du matin", "routine", []string{"Boire un verre d'eau", "Prendre mes médicaments", "M'habiller", "Regarder mon agenda"}},
	{"Avant de sortir", "routine", []string{"Clés", "Téléphone", "Portefeuille", "Chargeur"}},
	{"Routine du soir", "routine", []string{"Préparer mes affaires pour demain", "Poser le téléphone", "Me brosser les dents"}},
}

var challengeTemplates = map[string]Template{
	profile.ChallengeTimeBlindness: {"Préparer un rendez-vous", "planning", []string{"Vérifier l'heure et l'adresse", "Calculer le trajet", "Mettre une alarme de départ", "Partir 10 minutes en avance"}},
	profile.ChallengeImpulsivity:   {"Avant un achat", "finance", []string{"En ai-je vraiment besoin ?", "Est-ce dans mon budget ?", "Puis-je attendre 24 heures ?"}},
	profile.ChallengeOrganization:  {"Reset de la maison", "cleaning", []string{"Vaisselle", "Surfaces dégagées", "Linge en route", "Poubelles"}},
	profile.ChallengeFocus:         {"Session de travail", "focus", []string{"Choisir une seule tâche", "Téléphone hors de vue", "Minuteur 15 minutes", "Pause de 5 minutes"}},
	profile.ChallengeSleep:         {"Coucher apaisé", "health", []string{"Écrans éteints", "Lumière tamisée", "Noter ce qui me trotte dans la tête"}},
}

// ChecklistTemplates returns the base templates plus one per matching
// challenge, in profile order.
func ChecklistTemplates(challenges []string) []Template {
	out := make([]Template, 0, len(baseTemplates)+len(challenges))
	out = append(out, baseTemplates...)
	seen := map[string]bool{}
	for _, ch := range challenges {
		if t, ok := challengeTemplates[ch]; ok && !seen[ch] {
			seen[ch] = true
			out = append(out, t)
		}
	}
	return out
}

// FindTemplate looks a template up by name among those available for
// the given challenges.
func FindTemplate(name string, challenges []string) (Template, bool) {
	for _, t := range ChecklistTemplates(challenges) {
		if t.Name == name {
			return t, true
		}
	}
	return Template{}, false
}
