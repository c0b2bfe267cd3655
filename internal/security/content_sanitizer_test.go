package security

import (
	"strings"
	"testing"
)

func TestSanitizeRemovesScript(t *testing.T) {
	s := NewContentSanitizer()

	input := `<p>촉촉한 바스크 치즈케이크</p><script>alert("xss")</script>`
	got := s.Sanitize(input)

	if strings.Contains(got, "<script") {
		t.Errorf("script tag must be removed: %s", got)
	}
	if !strings.Contains(got, "<p>촉촉한 바스크 치즈케이크</p>") {
		t.Errorf("allowed content must survive: %s", got)
	}
}

func TestSanitizeRemovesEventAttributes(t *testing.T) {
	s := NewContentSanitizer()

	got := s.Sanitize(`<p onclick="steal()">설명</p>`)

	if strings.Contains(got, "onclick") {
		t.Errorf("on* attributes must be removed: %s", got)
	}
}

func TestSanitizeRemovesIframe(t *testing.T) {
	s := NewContentSanitizer()

	got := s.Sanitize(`<iframe src="https://evil.example.com"></iframe><h2>재료 안내</h2>`)

	if strings.Contains(got, "<iframe") {
		t.Errorf("iframe must be removed: %s", got)
	}
	if !strings.Contains(got, "<h2>재료 안내</h2>") {
		t.Errorf("h2 must survive: %s", got)
	}
}

func TestSanitizeImageSchemes(t *testing.T) {
	s := NewContentSanitizer()

	tests := []struct {
		name    string
		input   string
		wantImg bool
	}{
		{"https allowed", `<img src="https://cdn.example.com/cake.jpg" alt="케이크">`, true},
		{"http rejected", `<img src="http://cdn.example.com/cake.jpg">`, false},
		{"javascript rejected", `<img src="javascript:alert(1)">`, false},
		{"data rejected", `<img src="data:image/png;base64,AAAA">`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Sanitize(tt.input)
			hasImg := strings.Contains(got, "<img")
			if hasImg != tt.wantImg {
				t.Errorf("Sanitize(%q) = %q, want img present=%v", tt.input, got, tt.wantImg)
			}
		})
	}
}

func TestSanitizeAddsLinkProtection(t *testing.T) {
	s := NewContentSanitizer()

	got := s.Sanitize(`<a href="https://bakehouse.example.com/notice">공지</a>`)

	if !strings.Contains(got, `target="_blank"`) {
		t.Errorf("target=_blank must be added: %s", got)
	}
	if !strings.Contains(got, "noopener") || !strings.Contains(got, "noreferrer") {
		t.Errorf("rel noopener noreferrer must be added: %s", got)
	}
}

func TestSanitizeEmptyInput(t *testing.T) {
	s := NewContentSanitizer()

	if got := s.Sanitize(""); got != "" {
		t.Errorf("empty input must return empty output, got %q", got)
	}
}

func TestSanitizeIdempotent(t *testing.T) {
	s := NewContentSanitizer()

	input := `<p>초코 <strong>생크림</strong> 케이크</p><script>x</script>`
	once := s.Sanitize(input)
	twice := s.Sanitize(once)

	if once != twice {
		t.Errorf("sanitize must be idempotent: %q != %q", once, twice)
	}
}
