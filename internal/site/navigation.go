// Package site holds the public site taxonomy and the routes derived from it.
package site

import "strings"

// DefaultBaseURL is used when no site URL is configured.
const DefaultBaseURL = "https://attitude-emoi-platform.vercel.app"

// NavSubItem is a leaf link under a blog section.
type NavSubItem struct {
	Label string `json:"label"`
	Href  string `json:"href"`
}

// Slug is the last path segment of Href.
func (s NavSubItem) Slug() string {
	trimmed := strings.TrimRight(s.Href, "/")
	if idx := strings.LastIndex(trimmed, "/"); idx >= 0 {
		return trimmed[idx+1:]
	}
	return trimmed
}

// NavSection is a blog category. Article categories match on Label.
type NavSection struct {
	Label    string       `json:"label"`
	Href     string       `json:"href"`
	Slug     string       `json:"slug"`
	SubItems []NavSubItem `json:"subItems"`
}

// NavItem is a top-level menu entry, optionally holding blog sections.
type NavItem struct {
	Label    string       `json:"label"`
	Href     string       `json:"href"`
	Sections []NavSection `json:"sections,omitempty"`
}

var navigation = []NavItem{
	{
		Label: "Blog",
		Href:  "/blog",
		Sections: []NavSection{
			{
				Label: "Hypersensibilité",
				Href:  "/blog/hypersensibilite",
				Slug:  "hypersensibilite",
				SubItems: []NavSubItem{
					{Label: "Vivre l'hypersensibilité", Href: "/blog/hypersensibilite/vivre-hypersensibilite"},
					{Label: "Les signes principaux", Href: "/blog/hypersensibilite/signes"},
					{Label: "Masculinité et sensibilité", Href: "/blog/hypersensibilite/masculinite-sensibilite"},
				},
			},
			{
				Label: "Relations",
				Href:  "/blog/relations-et-attachement",
				Slug:  "relations-et-attachement",
				SubItems: []NavSubItem{
					{Label: "Attachement anxieux", Href: "/blog/relations-et-attachement/attachement-anxieux"},
					{Label: "Dépendance affective", Href: "/blog/relations-et-attachement/dependance-affective"},
					{Label: "Relations amoureuses", Href: "/blog/relations-et-attachement/amour"},
					{Label: "Relations familiales", Href: "/blog/relations-et-attachement/famille"},
				},
			},
			{
				Label: "Santé mentale",
				Href:  "/blog/sante-mentale",
				Slug:  "sante-mentale",
				SubItems: []NavSubItem{
					{Label: "Le pouvoir des animaux", Href: "/blog/sante-mentale/animaux"},
					{Label: "Faire une thérapie", Href: "/blog/sante-mentale/therapie"},
					{Label: "Voyager seul", Href: "/blog/sante-mentale/voyage-solo"},
					{Label: "Donner du sens à sa vie", Href: "/blog/sante-mentale/sens-vie"},
				},
			},
		},
	},
	{Label: "Podcast", Href: "/podcast"},
	{Label: "À propos", Href: "/a-propos"},
}

// Navigation returns a copy of the site menu.
func Navigation() []NavItem {
	out := make([]NavItem, len(navigation))
	for i, item := range navigation {
		out[i] = item
		if item.Sections != nil {
			out[i].Sections = make([]NavSection, len(item.Sections))
			for j, section := range item.Sections {
				out[i].Sections[j] = section
				out[i].Sections[j].SubItems = append([]NavSubItem(nil), section.SubItems...)
			}
		}
	}
	return out
}

// Sections flattens the blog sections of every menu entry.
func Sections() []NavSection {
	var sections []NavSection
	for _, item := range Navigation() {
		sections = append(sections, item.Sections...)
	}
	return sections
}

// FindSection looks a section up by its label.
func FindSection(label string) (NavSection, bool) {
	for _, section := range Sections() {
		if section.Label == label {
			return section, true
		}
	}
	return NavSection{}, false
}
