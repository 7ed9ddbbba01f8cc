package inkwell

import (
	"net/url"
	"path"
	"regexp"
	"strings"
	"unicode"
)

// Slugify converts a name or title to a URL-safe slug.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	prev := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prev = false
		default:
			if !prev && b.Len() > 0 {
				b.WriteByte('-')
				prev = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

const excerptLength = 200

var (
	reHTMLTag    = regexp.MustCompile(`<[^>]*>`)
	reWhitespace = regexp.MustCompile(`\s+`)
)

// MakeExcerpt derives a listing excerpt from post content: markup is
// stripped, whitespace collapsed, and the text truncated to 200
// characters with a trailing ellipsis.
func MakeExcerpt(content string) string {
	if content == "" {
		return ""
	}
	text := StripTags(RenderHTML(content))
	text = strings.TrimSpace(reWhitespace.ReplaceAllString(text, " "))
	if text == "" {
		return ""
	}
	runes := []rune(text)
	if len(runes) > excerptLength {
		runes = runes[:excerptLength]
	}
	return strings.TrimRightFunc(string(runes), unicode.IsSpace) + "..."
}

// StripTags removes HTML tags, leaving the text content.
func StripTags(s string) string {
	return reHTMLTag.ReplaceAllString(s, "")
}

// BuildURL joins a base URL with path segments, ensuring a trailing slash.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if len(pathSegments) > 0 && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// FilterEmpty removes empty/whitespace-only strings from a slice.
func FilterEmpty(vals []string) []string {
	var out []string
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			out = append(out, s)
		}
	}
	return out
}
