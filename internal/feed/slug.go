package feed

import "strings"

// Slugify はシーズンラベル等の文字列をスラグに正規化する。
// 小文字化した上で、英数字以外の連続をハイフン1つに置き換え、前後のハイフンを除去する。
// 例: "Season 1" → "season-1", "  S2 / Extra!! " → "s2-extra"
func Slugify(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	prevSep := true // 先頭のセパレータを抑制する
	for _, r := range strings.ToLower(s) {
		isAlnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if isAlnum {
			b.WriteRune(r)
			prevSep = false
			continue
		}
		if !prevSep {
			b.WriteByte('-')
			prevSep = true
		}
	}

	return strings.TrimSuffix(b.String(), "-")
}
