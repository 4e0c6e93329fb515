package display

import (
	"html"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

type SegmentKind int

const (
	SegmentText SegmentKind = iota
	SegmentLink
	SegmentBold
)

// Segment is one run of inline text in a default bubble.
type Segment struct {
	Kind SegmentKind
	Text string
	URL  string
}

// LineKind tells plain lines apart from list items.
type LineKind int

const (
	LinePlain LineKind = iota
	LineBullet
	LineNumbered
)

type Line struct {
	Kind     LineKind
	Marker   string
	Segments []Segment
}

var (
	markdownLinkRe = regexp.MustCompile(`\[([^\]]+)\]\((https?://[^\s)]+)\)`)
	bareURLRe      = regexp.MustCompile(`https?://[^\s<>()\[\]]+`)
	boldRe         = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	numberedRe     = regexp.MustCompile(`^(\d+)\.\s+`)
	htmlTagRe      = regexp.MustCompile(`(?i)<(p|br|a|ul|ol|li|div|b|strong|h[1-6])[\s/>]`)
)

// ParseLines splits content into lines and classifies list items.
func ParseLines(content string) []Line {
	var out []Line
	for _, raw := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(raw)
		line := Line{Kind: LinePlain}
		switch {
		case strings.HasPrefix(trimmed, "- "), strings.HasPrefix(trimmed, "* "), strings.HasPrefix(trimmed, "• "):
			line.Kind = LineBullet
			line.Marker = "•"
			_, rest, _ := strings.Cut(trimmed, " ")
			trimmed = strings.TrimSpace(rest)
		default:
			if m := numberedRe.FindStringSubmatch(trimmed); m != nil {
				line.Kind = LineNumbered
				line.Marker = m[1] + "."
				trimmed = trimmed[len(m[0]):]
			}
		}
		line.Segments = ParseInline(trimmed)
		out = append(out, line)
	}
	return out
}

// ParseInline splits s into text, link and bold runs. Markdown links win
// over bare URLs that overlap them.
func ParseInline(s string) []Segment {
	var out []Segment
	for s != "" {
		kind, loc := nextInline(s)
		if loc == nil {
			out = appendText(out, s)
			break
		}
		out = appendText(out, s[:loc[0]])
		match := s[loc[0]:loc[1]]
		switch kind {
		case SegmentLink:
			if m := markdownLinkRe.FindStringSubmatch(match); m != nil {
				out = append(out, Segment{Kind: SegmentLink, Text: m[1], URL: m[2]})
			} else {
				url := strings.TrimRight(match, ".,;:!?")
				out = append(out, Segment{Kind: SegmentLink, Text: url, URL: url})
				loc[1] = loc[0] + len(url)
			}
		case SegmentBold:
			out = append(out, Segment{Kind: SegmentBold, Text: boldRe.FindStringSubmatch(match)[1]})
		}
		s = s[loc[1]:]
	}
	return out
}

func nextInline(s string) (SegmentKind, []int) {
	best, kind := []int(nil), SegmentText
	try := func(re *regexp.Regexp, k SegmentKind) {
		loc := re.FindStringIndex(s)
		if loc != nil && (best == nil || loc[0] < best[0]) {
			best, kind = loc, k
		}
	}
	try(markdownLinkRe, SegmentLink)
	try(bareURLRe, SegmentLink)
	try(boldRe, SegmentBold)
	return kind, best
}

func appendText(out []Segment, s string) []Segment {
	if s == "" {
		return out
	}
	return append(out, Segment{Kind: SegmentText, Text: s})
}

// LooksLikeHTML reports whether content carries markup worth stripping.
func LooksLikeHTML(content string) bool {
	return htmlTagRe.MatchString(content)
}

// HTMLToText reduces markup to plain lines, keeping anchors as markdown
// links and list items as bullets so ParseLines can pick them up again.
func HTMLToText(content string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return content
	}

	doc.Find("a").Each(func(i int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		label := strings.TrimSpace(s.Text())
		if !ok || !strings.HasPrefix(href, "http") {
			s.ReplaceWithHtml(html.EscapeString(label))
			return
		}
		if label == "" {
			label = href
		}
		s.ReplaceWithHtml(html.EscapeString("[" + label + "](" + href + ")"))
	})
	doc.Find("b, strong").Each(func(i int, s *goquery.Selection) {
		s.ReplaceWithHtml(html.EscapeString("**" + s.Text() + "**"))
	})
	doc.Find("li").Each(func(i int, s *goquery.Selection) {
		s.PrependHtml("\n- ")
	})
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("p, div, ul, ol, h1, h2, h3, h4, h5, h6").Each(func(i int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})

	var lines []string
	for _, line := range strings.Split(doc.Text(), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
