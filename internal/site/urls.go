package site

import "github.com/flohusson/attitude-emoi/content"

// ArticleURL is the public path of an article. Known categories nest under
// their blog section, and a known sub-category adds one more segment.
// Anything else falls back to /articles/<slug>.
func ArticleURL(article content.Article) string {
	section, ok := FindSection(article.Category)
	if !ok || section.Slug == "" {
		return "/articles/" + article.Slug
	}
	url := "/blog/" + section.Slug
	if article.SubCategory != "" {
		for _, sub := range section.SubItems {
			if sub.Label == article.SubCategory {
				url += "/" + sub.Slug()
				break
			}
		}
	}
	return url + "/" + article.Slug
}

// EpisodeURL is the public path of an episode.
func EpisodeURL(episode content.Episode) string {
	return "/podcast/" + episode.Slug
}
