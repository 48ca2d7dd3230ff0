package feed

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "小文字化", input: "Season", want: "season"},
		{name: "空白はハイフンになる", input: "Season 1", want: "season-1"},
		{name: "連続する記号は1つのハイフンにまとめる", input: "Season -- 1!", want: "season-1"},
		{name: "先頭と末尾のハイフンは除去する", input: " Season 1 ", want: "season-1"},
		{name: "数字のみ", input: "2", want: "2"},
		{name: "空文字列", input: "", want: ""},
		{name: "記号のみ", input: "!!!", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Slugify(tt.input); got != tt.want {
				t.Errorf("Slugify(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
