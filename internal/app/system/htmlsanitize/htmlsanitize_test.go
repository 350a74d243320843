package htmlsanitize

import (
	"strings"
	"testing"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		want  string
		avoid string
	}{
		{"strips script", `<p>hi</p><script>alert(1)</script>`, "<p>hi</p>", "<script"},
		{"keeps table", `<table><tr><td>v</td></tr></table>`, "<td>v</td>", ""},
		{"strips event handler", `<b onclick="x()">bold</b>`, "<b>bold</b>", "onclick"},
		{"keeps headings", `<h2>Title</h2>`, "<h2>Title</h2>", ""},
		{"empty", "", "", "<"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sanitize(tt.in)
			if tt.want != "" && !strings.Contains(got, tt.want) {
				t.Errorf("Sanitize(%q) = %q, want it to contain %q", tt.in, got, tt.want)
			}
			if tt.avoid != "" && strings.Contains(got, tt.avoid) {
				t.Errorf("Sanitize(%q) = %q, must not contain %q", tt.in, got, tt.avoid)
			}
		})
	}
}

func TestIsPlainText(t *testing.T) {
	if !IsPlainText("just words, 1 < 2") {
		t.Error("text with a lone < should count as plain text")
	}
	if IsPlainText("<p>markup</p>") {
		t.Error("markup should not count as plain text")
	}
	if !IsPlainText("") {
		t.Error("empty content is plain text")
	}
}
