package htmlsanitize_test

import (
	"strings"
	"testing"

	"github.com/dalemusser/docthrough/internal/app/system/htmlsanitize"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"plain text", "Hello, World!", "Hello, World!"},
		{"safe formatting", "<p><strong>Bold</strong> and <em>italic</em></p>", "<p><strong>Bold</strong> and <em>italic</em></p>"},
		{"script removed", "<p>Hello</p><script>alert('xss')</script>", "<p>Hello</p>"},
		{"code block kept", "<pre><code>func main() {}</code></pre>", "<pre><code>func main() {}</code></pre>"},
		{"headings kept", "<h1>Intro</h1><h2>Usage</h2>", "<h1>Intro</h1><h2>Usage</h2>"},
		{"lists kept", "<ul><li>one</li><li>two</li></ul>", "<ul><li>one</li><li>two</li></ul>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := htmlsanitize.Sanitize(tt.input); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitize_StripsDangerousMarkup(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		mustNot string
	}{
		{"onclick", `<button onclick="alert('xss')">Click</button>`, "onclick"},
		{"javascript href", `<a href="javascript:alert('xss')">x</a>`, "javascript:"},
		{"iframe", `<p>Content</p><iframe src="https://evil.com"></iframe>`, "iframe"},
		{"onerror", `<img src="x" onerror="alert('xss')">`, "onerror"},
		{"form", `<form action="/submit"><input type="text" name="data"></form>`, "<input"},
		{"data url", `<img src="data:text/html,<script>alert('xss')</script>">`, "data:text/html"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := htmlsanitize.Sanitize(tt.input); strings.Contains(got, tt.mustNot) {
				t.Errorf("Sanitize(%q) = %q, still contains %q", tt.input, got, tt.mustNot)
			}
		})
	}
}

func TestSanitize_KeepsTableLayout(t *testing.T) {
	input := `<table class="api"><tr><td colspan="2" rowspan="2">Cell</td></tr></table>`
	got := htmlsanitize.Sanitize(input)
	for _, want := range []string{`class="api"`, `colspan="2"`, `rowspan="2"`} {
		if !strings.Contains(got, want) {
			t.Errorf("Sanitize() = %q, missing %q", got, want)
		}
	}
}

func TestIsPlainText(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"", true},
		{"Hello", true},
		{"5 < 10", true},
		{"5 > 3", true},
		{"<p>Hello</p>", false},
	}
	for _, tt := range tests {
		if got := htmlsanitize.IsPlainText(tt.in); got != tt.want {
			t.Errorf("IsPlainText(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestPlainTextToHTML(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"Hello", "<p>Hello</p>"},
		{"Line 1\nLine 2", "<p>Line 1<br>Line 2</p>"},
		{"A & B", "<p>A &amp; B</p>"},
		{"<b>", "<p>&lt;b&gt;</p>"},
	}
	for _, tt := range tests {
		if got := htmlsanitize.PlainTextToHTML(tt.in); got != tt.want {
			t.Errorf("PlainTextToHTML(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBody(t *testing.T) {
	if got := htmlsanitize.Body("  first\nsecond  "); got != "<p>first<br>second</p>" {
		t.Errorf("Body(plain) = %q", got)
	}
	if got := htmlsanitize.Body("<p>ok</p><script>x()</script>"); got != "<p>ok</p>" {
		t.Errorf("Body(html) = %q", got)
	}
	if got := htmlsanitize.Body("   "); got != "" {
		t.Errorf("Body(blank) = %q", got)
	}
}

func TestText(t *testing.T) {
	if got := htmlsanitize.Text(" <b>React</b> Hooks "); got != "React Hooks" {
		t.Errorf("Text() = %q", got)
	}
}

func TestText_KeepsAmpersand(t *testing.T) {
	if got := htmlsanitize.Text("Tips & Tricks"); got != "Tips & Tricks" {
		t.Errorf("Text() = %q", got)
	}
}
