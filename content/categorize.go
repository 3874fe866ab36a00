package content

import "strings"

type categoryRule struct {
	category string
	keywords []string
}

// Keywords match as plain substrings of the lowercased text, so "ex" also
// matches inside "texte".
var categoryRules = []categoryRule{
	{
		category: "Masculinité & sensibilité",
		keywords: []string{"homme", "masculin", "virilité", "père", "garçon", "papa"},
	},
	{
		category: "Relations",
		keywords: []string{
			"relation", "couple", "amour", "anniversaire", "rupture", "dépendance",
			"attachement", "anxieux", "évitant", "toxique", "ex", "rencontre", "appli",
			"dating", "mère", "maman", "parents", "copine", "conjoint", "mari",
		},
	},
	{
		category: "Santé mentale",
		keywords: []string{
			"thérapie", "psy", "mental", "dépression", "burnout", "angoisse", "stress",
			"bien-être", "bonheur", "joie", "tristesse", "colère", "hpi", "hpe", "zèbre",
			"voyage", "sens",
		},
	},
	{
		category: "Hypersensibilité",
		keywords: []string{"hypersensib", "sensibili", "émotion", "overthinking", "pensée", "cerveau"},
	},
}

// DetermineCategories returns every category whose keywords appear in the
// title or description, in rule order.
func DetermineCategories(title, description string) []string {
	text := strings.ToLower(title + " " + description)
	matched := []string{}
	for _, rule := range categoryRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(text, keyword) {
				matched = append(matched, rule.category)
				break
			}
		}
	}
	return matched
}
