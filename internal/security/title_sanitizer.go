package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// TitleSanitizerService はタイトルのマークアップ除去機能のインターフェースを定義する。
// フィード由来のタイトルにはHTMLタグが混入することがあり、
// タイトルはプレーンテキストとして保存する必要がある。
// 本文（body）はフィードの値をそのまま保存するため、ここでは処理しない。
type TitleSanitizerService interface {
	// StripMarkup は入力からすべてのHTMLタグを除去しプレーンテキストを返す。
	// HTMLエンティティはデコードされ、前後の空白は除去される。
	// 同一入力に対して常に同一出力を返す（冪等）。
	StripMarkup(raw string) string
}

// titleSanitizer はTitleSanitizerServiceの実装。
// bluemondayのStrictPolicy（全タグ除去）を保持し、スレッドセーフに処理を行う。
type titleSanitizer struct {
	policy *bluemonday.Policy
}

// NewTitleSanitizer はTitleSanitizerServiceの新しいインスタンスを生成する。
func NewTitleSanitizer() *titleSanitizer {
	return &titleSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// StripMarkup は入力からすべてのHTMLタグを除去しプレーンテキストを返す。
// StrictPolicyはタグを除去した上でエンティティをエスケープして返すため、
// 保存用のプレーンテキストとしてhtml.UnescapeStringでデコードし直す。
func (s *titleSanitizer) StripMarkup(raw string) string {
	stripped := s.policy.Sanitize(raw)
	return strings.TrimSpace(html.UnescapeString(stripped))
}

// compile-time interface check
var _ TitleSanitizerService = (*titleSanitizer)(nil)
