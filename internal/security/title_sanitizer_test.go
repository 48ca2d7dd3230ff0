package security

import "testing"

func TestStripMarkup(t *testing.T) {
	sanitizer := NewTitleSanitizer()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "プレーンテキストはそのまま",
			input: "第12回 Goの並行処理",
			want:  "第12回 Goの並行処理",
		},
		{
			name:  "タグを除去する",
			input: "<b>第12回</b> Goの<em>並行処理</em>",
			want:  "第12回 Goの並行処理",
		},
		{
			name:  "scriptタグと中身を除去する",
			input: "タイトル<script>alert('x')</script>",
			want:  "タイトル",
		},
		{
			name:  "HTMLエンティティをデコードする",
			input: "Tips &amp; Tricks",
			want:  "Tips & Tricks",
		},
		{
			name:  "前後の空白を除去する",
			input: "  タイトル  ",
			want:  "タイトル",
		},
		{
			name:  "空文字列",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizer.StripMarkup(tt.input); got != tt.want {
				t.Errorf("StripMarkup(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// TestStripMarkup_Idempotent は同一入力に対して常に同一出力を返すことを検証する。
func TestStripMarkup_Idempotent(t *testing.T) {
	sanitizer := NewTitleSanitizer()

	input := "<p>第1回 <b>はじめに</b></p>"
	first := sanitizer.StripMarkup(input)
	second := sanitizer.StripMarkup(first)

	if first != second {
		t.Errorf("expected idempotent output, got %q then %q", first, second)
	}
}
