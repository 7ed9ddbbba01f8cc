package inkwell

import (
	"strings"
	"testing"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Hello World", "hello-world"},
		{"  Spaces  Around  ", "spaces-around"},
		{"Go 1.22 Released!", "go-1-22-released"},
		{"already-a-slug", "already-a-slug"},
		{"UPPER case", "upper-case"},
		{"trailing punctuation...", "trailing-punctuation"},
		{"!!!", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := Slugify(tc.in); got != tc.want {
			t.Errorf("Slugify(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestMakeExcerpt(t *testing.T) {
	got := MakeExcerpt("# Title\n\nPlain *emphasis* text")
	if got != "Title Plain emphasis text..." {
		t.Errorf("got %q", got)
	}

	long := strings.Repeat("word ", 100)
	got = MakeExcerpt(long)
	if !strings.HasSuffix(got, "...") {
		t.Errorf("missing ellipsis: %q", got)
	}
	if n := len([]rune(strings.TrimSuffix(got, "..."))); n > 200 {
		t.Errorf("excerpt body is %d runes, want <= 200", n)
	}

	if got := MakeExcerpt(""); got != "" {
		t.Errorf("empty content: got %q, want empty", got)
	}
}

func TestStripTags(t *testing.T) {
	got := StripTags(`<p>Hello <a href="/x">link</a></p>`)
	if got != "Hello link" {
		t.Errorf("got %q", got)
	}
}

func TestBuildURL(t *testing.T) {
	cases := []struct {
		base string
		segs []string
		want string
	}{
		{"https://example.com", []string{"post", "my-slug"}, "https://example.com/post/my-slug/"},
		{"https://example.com/blog", []string{"tag", "go"}, "https://example.com/blog/tag/go/"},
		{"https://example.com", nil, "https://example.com"},
	}
	for _, tc := range cases {
		if got := BuildURL(tc.base, tc.segs...); got != tc.want {
			t.Errorf("BuildURL(%q, %v) = %q, want %q", tc.base, tc.segs, got, tc.want)
		}
	}
}

func TestFilterEmpty(t *testing.T) {
	got := FilterEmpty([]string{"a", "", "  ", "b"})
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("got %v, want [a b]", got)
	}
}

func TestRenderHTML(t *testing.T) {
	got := RenderHTML("**bold** and [link](https://example.com)")
	if !strings.Contains(got, "<strong>bold</strong>") {
		t.Errorf("bold not rendered: %q", got)
	}
	if !strings.Contains(got, `href="https://example.com"`) {
		t.Errorf("link not rendered: %q", got)
	}
}
