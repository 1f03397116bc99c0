package presenter

import "strings"

const (
	KakaoSeeMorePadding = 500
	KakaoZeroWidthSpace = "\u200b"
)

// 카카오톡 '전체보기'용 제로폭 문자를 채워 메시지를 확장.
func ApplyKakaoSeeMorePadding(text, instruction string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}

	message := strings.TrimSpace(instruction)

	var builder strings.Builder
	builder.Grow(len(text) + KakaoSeeMorePadding*len(KakaoZeroWidthSpace) + len(message) + 2)

	if message != "" {
		builder.WriteString(message)
	}
	builder.WriteString(strings.Repeat(KakaoZeroWidthSpace, KakaoSeeMorePadding))
	if !strings.HasPrefix(text, "\n") {
		builder.WriteByte('\n')
	}
	builder.WriteString(text)

	return builder.String()
}

// 첫 줄의 헤더를 '전체보기' 지침으로 올리고 본문에서는 제거한다.
func ApplySeeMoreWithHeader(text, fallback string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}
	header, body, found := strings.Cut(text, "\n")
	if !found || strings.TrimSpace(header) == "" {
		return ApplyKakaoSeeMorePadding(text, fallback)
	}
	return ApplyKakaoSeeMorePadding(strings.TrimLeft(body, "\r\n"), header)
}
