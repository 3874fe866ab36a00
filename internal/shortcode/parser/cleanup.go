package parser

import "regexp"

type replacement struct {
	pattern *regexp.Regexp
	with    string
}

// Rich-text editors wrap accordion markers in headings and line breaks.
// These rules run in order and leave the marker itself intact.
var accordionWrappers = []replacement{
	{regexp.MustCompile(`(?i)<h3[^>]*>\s*<br>\s*\[accordion`), "[accordion"},
	{regexp.MustCompile(`(?i)<h3[^>]*>\s*\[accordion`), "[accordion"},
	{regexp.MustCompile(`(?i)\[/accordion\]\s*<br>\s*</h3>`), "[/accordion]"},
	{regexp.MustCompile(`(?i)\[/accordion\]\s*</h3>`), "[/accordion]"},
	{regexp.MustCompile(`(?i)\[accordion([^>]+)\]\s*<br>`), "[accordion${1}]"},
	{regexp.MustCompile(`(?i)<br>\s*\[/accordion\]`), "[/accordion]"},
	{regexp.MustCompile(`###\s*\[accordion`), "[accordion"},
}

var spanWrapper = regexp.MustCompile(`(?i)^\s*<span[^>]*>(.*?)</span>\s*$`)

// StripAccordionWrappers removes heading and line-break markup around
// accordion markers. It reports how many wrappers were removed.
func StripAccordionWrappers(src string) (string, int) {
	removed := 0
	for _, rule := range accordionWrappers {
		matches := rule.pattern.FindAllStringIndex(src, -1)
		if len(matches) == 0 {
			continue
		}
		removed += len(matches)
		src = rule.pattern.ReplaceAllString(src, rule.with)
	}
	return src, removed
}

// UnwrapSpan returns the inner text when answer is entirely wrapped in one
// span element. Anything else comes back unchanged.
func UnwrapSpan(answer string) string {
	return spanWrapper.ReplaceAllString(answer, "${1}")
}
