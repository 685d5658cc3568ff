package imitation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{name: "punctuation split", in: "hello, world!", want: []string{"hello", ",", "world", "!"}},
		{name: "apostrophe pulls trailing letters", in: "don't stop", want: []string{"don", "'t", "stop"}},
		{name: "punctuation glued to next word", in: "hello,world", want: []string{"hello", ",world"}},
		{name: "underscore and digits", in: "snake_case 42x", want: []string{"snake_case", "42x"}},
		{name: "leading punctuation run", in: "...and then", want: []string{"...and", "then"}},
		{name: "unicode letters", in: "héllo wörld", want: []string{"héllo", "wörld"}},
		{name: "superscript is not a digit", in: "x² y", want: []string{"x", "²", "y"}},
		{name: "vulgar fraction is not a digit", in: "½cup 3cups", want: []string{"½cup", "3cups"}},
		{name: "non-ascii decimal digits", in: "٣x", want: []string{"٣x"}},
		{name: "mixed whitespace", in: " a\t\nb  ", want: []string{"a", "b"}},
		{name: "empty", in: "", want: []string{}},
		{name: "only whitespace", in: "   \t", want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.in)
			if len(tt.want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTokenize_NeverEmpty(t *testing.T) {
	for _, tok := range Tokenize("a , ; b!? 'x' -- __ 9") {
		assert.NotEmpty(t, tok)
	}
}
