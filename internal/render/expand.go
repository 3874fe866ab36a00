package render

import (
	"bytes"
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/flohusson/attitude-emoi/pkg/interfaces"
)

type segmentKind int

const (
	segmentHTML segmentKind = iota
	segmentItem
)

type segment struct {
	kind segmentKind
	html string
}

// frame collects the output of one nesting level: the document root or an
// open component.
type frame struct {
	name     string
	attrs    map[string]string
	raw      string
	segments []segment
}

func (f *frame) write(kind segmentKind, s string) {
	f.segments = append(f.segments, segment{kind: kind, html: s})
}

// expander replaces component tags in HTML with their rendered templates.
type expander struct {
	components *ComponentRegistry
	sanitizer  interfaces.ShortcodeSanitizer
}

// expand walks src with the x/net/html tokenizer. Unknown tags and text are
// copied byte for byte. A component left open at the end of the input is
// emitted verbatim.
func (e *expander) expand(src string) (string, error) {
	z := html.NewTokenizer(strings.NewReader(src))
	stack := []*frame{{}}
	top := func() *frame { return stack[len(stack)-1] }

	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if err := z.Err(); err != io.EOF {
				return "", err
			}
			break
		}
		raw := string(z.Raw())

		switch tt {
		case html.StartTagToken, html.SelfClosingTagToken:
			name := rawTagName(raw)
			if !e.components.Has(name) {
				top().write(segmentHTML, raw)
				continue
			}
			attrs := tagAttrs(z)
			if tt == html.SelfClosingTagToken {
				out, err := e.render(name, attrs, "")
				if err != nil {
					return "", err
				}
				top().write(kindFor(name), out)
				continue
			}
			stack = append(stack, &frame{name: name, attrs: attrs, raw: raw})

		case html.EndTagToken:
			name := rawTagName(raw)
			if len(stack) == 1 || top().name != name {
				top().write(segmentHTML, raw)
				continue
			}
			closed := top()
			stack = stack[:len(stack)-1]
			inner := joinSegments(balanceParagraphs(closed.segments), closed.name != ComponentAccordion, e)
			out, err := e.render(closed.name, closed.attrs, inner)
			if err != nil {
				return "", err
			}
			top().write(kindFor(closed.name), out)

		default:
			top().write(segmentHTML, raw)
		}
	}

	// unclosed components fall back to their source text
	for len(stack) > 1 {
		open := top()
		stack = stack[:len(stack)-1]
		top().write(segmentHTML, open.raw)
		top().segments = append(top().segments, open.segments...)
	}
	return joinSegments(stack[0].segments, true, e), nil
}

func (e *expander) render(name string, attrs map[string]string, inner string) (string, error) {
	def, _ := e.components.Get(name)
	if e.sanitizer != nil {
		for key := range attrs {
			if err := e.sanitizer.ValidateAttributes(map[string]string{key: attrs[key]}); err != nil {
				delete(attrs, key)
			}
		}
		for _, key := range def.URLAttrs {
			if err := e.sanitizer.ValidateURL(attrs[key]); err != nil {
				// an unsafe link keeps its label, unsafe media disappears
				if name == ComponentButton {
					return inner, nil
				}
				return "", nil
			}
		}
	}
	out, err := e.components.Render(name, attrs, inner)
	if err != nil {
		return "", err
	}
	if e.sanitizer != nil {
		return e.sanitizer.Sanitize(out)
	}
	return out, nil
}

func kindFor(name string) segmentKind {
	if name == ComponentAccordionItem {
		return segmentItem
	}
	return segmentHTML
}

// joinSegments concatenates a level's output. With group set, each run of
// accordion items separated only by whitespace or paragraph boundaries is
// wrapped in one Accordion container, and a paragraph holding nothing but
// the run is dropped.
func joinSegments(segments []segment, group bool, e *expander) string {
	var b strings.Builder
	for i := 0; i < len(segments); i++ {
		seg := segments[i]
		if seg.kind != segmentItem || !group {
			b.WriteString(seg.html)
			continue
		}

		items := []string{seg.html}
		last := i
		for j := i + 1; j < len(segments); j++ {
			if segments[j].kind == segmentItem {
				if !balancedGlue(segments[last+1 : j]) {
					break
				}
				items = append(items, segments[j].html)
				last = j
				continue
			}
			if !isGlue(segments[j].html) {
				break
			}
		}

		wrapped, err := e.components.Render(ComponentAccordion, nil, strings.Join(items, ""))
		if err != nil {
			wrapped = strings.Join(items, "")
		}

		// drop <p> ... </p> around a paragraph made only of items
		before := b.String()
		trimmed := strings.TrimRight(before, " \t\r\n")
		after := firstNonSpace(segments[last+1:])
		if strings.HasSuffix(trimmed, "<p>") && after >= 0 && segments[last+1+after].html == "</p>" {
			b.Reset()
			b.WriteString(strings.TrimSuffix(trimmed, "<p>"))
			b.WriteString(wrapped)
			i = last + 1 + after
			continue
		}
		b.WriteString(wrapped)
		i = last
	}
	return b.String()
}

// balanceParagraphs repairs the paragraph tags of a component body that
// spans a blank line. Markdown closes the paragraph the opening tag sits in
// and opens a new one before the closing tag, so the body starts with an
// orphan </p> or ends with an unclosed <p>.
func balanceParagraphs(segments []segment) []segment {
	if last := lastNonSpace(segments); last >= 0 && strings.TrimSpace(segments[last].html) == "<p>" {
		segments = segments[:last]
	}
	if first := firstNonSpace(segments); first >= 0 && strings.TrimSpace(segments[first].html) == "</p>" {
		segments = segments[first+1:]
	}

	depth, orphans := 0, 0
	for _, seg := range segments {
		if seg.kind != segmentHTML {
			continue
		}
		switch strings.TrimSpace(seg.html) {
		case "<p>":
			depth++
		case "</p>":
			if depth == 0 {
				orphans++
				continue
			}
			depth--
		}
	}
	if depth == 0 && orphans == 0 {
		return segments
	}

	out := make([]segment, 0, len(segments)+depth+orphans)
	for range orphans {
		out = append(out, segment{kind: segmentHTML, html: "<p>"})
	}
	out = append(out, segments...)
	for range depth {
		out = append(out, segment{kind: segmentHTML, html: "</p>"})
	}
	return out
}

func isGlue(s string) bool {
	t := strings.TrimSpace(s)
	return t == "" || t == "<p>" || t == "</p>"
}

// balancedGlue reports whether the segments between two items are
// whitespace plus matched </p><p> pairs.
func balancedGlue(segments []segment) bool {
	depth := 0
	for _, seg := range segments {
		switch strings.TrimSpace(seg.html) {
		case "":
		case "</p>":
			depth--
		case "<p>":
			if depth >= 0 {
				return false
			}
			depth++
		default:
			return false
		}
	}
	return depth == 0
}

func firstNonSpace(segments []segment) int {
	for i, seg := range segments {
		if strings.TrimSpace(seg.html) != "" {
			return i
		}
	}
	return -1
}

func lastNonSpace(segments []segment) int {
	for i := len(segments) - 1; i >= 0; i-- {
		if strings.TrimSpace(segments[i].html) != "" {
			return i
		}
	}
	return -1
}

// rawTagName reads the tag name with its original case. The tokenizer
// lower-cases names, and component names are case-sensitive.
func rawTagName(raw string) string {
	s := strings.TrimPrefix(raw, "<")
	s = strings.TrimPrefix(s, "/")
	end := strings.IndexFunc(s, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\f' || r == '/' || r == '>'
	})
	if end < 0 {
		return s
	}
	return s[:end]
}

func tagAttrs(z *html.Tokenizer) map[string]string {
	attrs := map[string]string{}
	for {
		key, val, more := z.TagAttr()
		if len(key) > 0 {
			attrs[string(bytes.ToLower(key))] = string(val)
		}
		if !more {
			break
		}
	}
	return attrs
}
