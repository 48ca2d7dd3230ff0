package model

import (
	"errors"
	"fmt"
)

// ErrDuplicatePost は同一GUIDの記事が既に存在することを示すセンチネルエラー。
// posts.guidのUNIQUE制約違反をリポジトリ層がこのエラーに変換する。
// 重複判定の最終的な権威はこの制約であり、事前チェックはあくまで高速パスにすぎない。
var ErrDuplicatePost = errors.New("同一GUIDの記事が既に存在します")

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: validation, feed, artwork, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeInvalidURL      = "INVALID_URL"
	ErrCodeSSRFBlocked     = "SSRF_BLOCKED"
	ErrCodeFetchFailed     = "FETCH_FAILED"
	ErrCodeParseFailed     = "PARSE_FAILED"
	ErrCodeFeedNotDetected = "FEED_NOT_DETECTED"
	ErrCodeFeedURLNotSet   = "FEED_URL_NOT_SET"
	ErrCodeArtworkFailed   = "ARTWORK_FAILED"
	ErrCodeStoreFailed     = "STORE_FAILED"
)

// NewInvalidURLError は無効なURLエラーを生成する。
func NewInvalidURLError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidURL,
		Message:  fmt.Sprintf("無効なURLです: %s", reason),
		Category: "validation",
		Action:   "正しいURL形式（http:// または https:// で始まるURL）を入力してください。",
	}
}

// NewSSRFBlockedError はSSRFブロックエラーを生成する。
func NewSSRFBlockedError() *APIError {
	return &APIError{
		Code:     ErrCodeSSRFBlocked,
		Message:  "セキュリティポリシーにより、指定されたURLへのアクセスがブロックされました。",
		Category: "validation",
		Action:   "公開されているWebサイトのURLを入力してください。ローカルネットワークやプライベートIPへのアクセスは許可されていません。",
	}
}

// NewFetchFailedError はフィードフェッチ失敗エラーを生成する。
func NewFetchFailedError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeFetchFailed,
		Message:  fmt.Sprintf("フィードの取得に失敗しました: %s", reason),
		Category: "feed",
		Action:   "フィードURLが正しいか確認し、しばらく待ってから再度お試しください。",
	}
}

// NewParseFailedError はフィードパース失敗エラーを生成する。
func NewParseFailedError() *APIError {
	return &APIError{
		Code:     ErrCodeParseFailed,
		Message:  "フィードの解析に失敗しました。",
		Category: "feed",
		Action:   "有効なRSS/Atomフィードかどうか確認してください。",
	}
}

// NewFeedNotDetectedError はフィード未検出エラーを生成する。
func NewFeedNotDetectedError(url string) *APIError {
	return &APIError{
		Code:     ErrCodeFeedNotDetected,
		Message:  fmt.Sprintf("指定されたURLからRSS/Atomフィードを検出できませんでした: %s", url),
		Category: "feed",
		Action:   "RSSフィードのURLを直接入力するか、フィードが公開されているページのURLを確認してください。",
	}
}

// NewFeedURLNotSetError はフィードURL未設定エラーを生成する。
func NewFeedURLNotSetError() *APIError {
	return &APIError{
		Code:     ErrCodeFeedURLNotSet,
		Message:  "フィードURLが設定されていません。",
		Category: "validation",
		Action:   "先に設定画面でポッドキャストのフィードURLを保存してください。",
	}
}

// NewArtworkFailedError はアートワーク取得失敗エラーを生成する。
// サムネイルはベストエフォートであり、このエラーはインポート自体を失敗させない。
func NewArtworkFailedError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeArtworkFailed,
		Message:  fmt.Sprintf("アートワークの取得に失敗しました: %s", reason),
		Category: "artwork",
		Action:   "記事はサムネイルなしでインポートされています。後から手動で画像を設定できます。",
	}
}

// NewStoreFailedError はストア障害エラーを生成する。
func NewStoreFailedError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeStoreFailed,
		Message:  fmt.Sprintf("データベース操作に失敗しました: %s", reason),
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}
