// Package security 는 애플리케이션의 보안 기능을 제공한다.
//
// ContentSanitizerService 는 상품 상세 설명의 HTML을 새니타이즈해
// XSS 등의 위험으로부터 이용자를 보호한다. bluemonday의 허용 리스트
// 기반 정책으로 안전한 태그와 속성만 통과시킨다.
package security

import (
	"net/url"

	"github.com/microcosm-cc/bluemonday"
)

// ContentSanitizerService 는 HTML 새니타이즈 기능의 인터페이스.
// 상품 상세 설명(detailContent)의 저장 전에 사용된다.
type ContentSanitizerService interface {
	// Sanitize 는 HTML을 새니타이즈해 안전한 HTML을 반환한다.
	// 허용 태그(p, br, a, ul, ol, li, blockquote, strong, em, h2, h3, img)만
	// 통과시키고 script, iframe, style 태그와 on* 이벤트 속성을 제거한다.
	// img의 src는 https 스킴만 허용된다.
	// a 태그에는 target="_blank"와 rel="noopener noreferrer"가 자동 부여된다.
	// 빈 문자열 입력에는 빈 문자열을 반환하며, 같은 입력에는 항상
	// 같은 출력을 반환한다(멱등).
	Sanitize(rawHTML string) string
}

type contentSanitizer struct {
	policy *bluemonday.Policy
}

// NewContentSanitizer 는 ContentSanitizerService의 새 인스턴스를 생성한다.
// 정책 내용:
//   - 허용 태그: p, br, a, ul, ol, li, blockquote, strong, em, h2, h3, img
//   - 금지 태그: script, iframe, style 및 모든 on* 이벤트 속성
//   - img의 src: https 스킴만 허용
//   - a 태그: target="_blank" 와 rel="noopener noreferrer" 자동 부여
func NewContentSanitizer() *contentSanitizer {
	p := bluemonday.NewPolicy()

	// 허용 리스트에 넣지 않은 태그(script, iframe, style 등)는 자동 제거된다.
	// on* 이벤트 속성은 bluemonday 기본 정책에서 허용되지 않는다.
	p.AllowElements(
		"p", "br", "ul", "ol", "li",
		"blockquote", "strong", "em",
		"h2", "h3",
	)

	// 링크는 절대 URL만 허용하고, 새 창 열기와 referrer 차단을 강제한다.
	p.AllowAttrs("href").OnElements("a")
	p.AllowRelativeURLs(false)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	p.RequireNoReferrerOnLinks(true)

	// 상세 설명 속 이미지는 https만 허용한다. http, javascript, data 스킴 거부.
	p.AllowAttrs("src").OnElements("img")
	p.AllowAttrs("alt").OnElements("img")
	p.AllowURLSchemeWithCustomPolicy("https", func(u *url.URL) bool {
		return true
	})

	return &contentSanitizer{
		policy: p,
	}
}

// Sanitize 는 HTML을 새니타이즈해 안전한 HTML을 반환한다.
func (s *contentSanitizer) Sanitize(rawHTML string) string {
	return s.policy.Sanitize(rawHTML)
}
