package extract

import (
	"strings"
	"testing"
)

func TestTextStripsMarkup(t *testing.T) {
	t.Parallel()

	html := `<!DOCTYPE html>
	<html><head><style>p { color: red; }</style></head>
	<body>
	  <h1>Converted   Document</h1>
	  <p>First paragraph with <b>inline</b> markup.</p>
	  <script>console.log("skip me")</script>
	  <ul><li>Item one</li><li>Item two</li></ul>
	</body></html>`

	got, err := Text(html)
	if err != nil {
		t.Fatalf("Text error: %v", err)
	}

	if strings.Contains(got, "skip me") || strings.Contains(got, "color: red") {
		t.Fatalf("script/style content leaked: %q", got)
	}
	if !strings.Contains(got, "Converted Document") {
		t.Fatalf("heading missing or whitespace not collapsed: %q", got)
	}
	if !strings.Contains(got, "First paragraph with inline markup.") {
		t.Fatalf("paragraph text missing: %q", got)
	}
	if !strings.Contains(got, "Item one") || !strings.Contains(got, "Item two") {
		t.Fatalf("list items missing: %q", got)
	}
}

func TestTextWithoutBlockStructure(t *testing.T) {
	t.Parallel()

	got, err := Text("<html><body>just   some text</body></html>")
	if err != nil {
		t.Fatalf("Text error: %v", err)
	}
	if got != "just some text" {
		t.Fatalf("unexpected text: %q", got)
	}
}

func TestLooksLikeHTML(t *testing.T) {
	t.Parallel()

	cases := []struct {
		content string
		want    bool
	}{
		{"<!DOCTYPE html><html></html>", true},
		{"  <p>hello</p>", true},
		{"<div class=\"preview\">x</div>", true},
		{"plain text document", false},
		{"x < y and y > z", false},
	}

	for _, tc := range cases {
		if got := LooksLikeHTML(tc.content); got != tc.want {
			t.Fatalf("LooksLikeHTML(%q) = %v, want %v", tc.content, got, tc.want)
		}
	}
}
