package markdown

import "testing"

func TestEscapeV2(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "plain text", want: "plain text"},
		{in: "Acme Corp. is hiring!", want: `Acme Corp\. is hiring\!`},
		{in: "a_b*c[d](e)", want: `a\_b\*c\[d\]\(e\)`},
		{in: `C:\path`, want: `C:\\path`},
		{in: "1-2 > 0 #tag", want: `1\-2 \> 0 \#tag`},
		{in: "Привет, мир.", want: `Привет, мир\.`},
		{in: "abc-…0000", want: `abc\-…0000`},
		{in: "日本語 (テスト) 🚀!", want: `日本語 \(テスト\) 🚀\!`},
	}

	for _, tt := range tests {
		if got := EscapeV2(tt.in); got != tt.want {
			t.Fatalf("EscapeV2(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEscapeLinkURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "https://example.com/post/1", want: "https://example.com/post/1"},
		{in: "https://en.wikipedia.org/wiki/Go_(language)", want: `https://en.wikipedia.org/wiki/Go_(language\)`},
		{in: `https://example.com/a\b`, want: `https://example.com/a\\b`},
	}

	for _, tt := range tests {
		if got := EscapeLinkURL(tt.in); got != tt.want {
			t.Fatalf("EscapeLinkURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
