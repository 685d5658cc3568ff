package imitation

import "regexp"

// A run of word characters wins; otherwise the longest run of non-space
// characters is taken, so "don't" splits into "don" and "'t". Only decimal
// digits count as word characters; "x²" splits into "x" and "²".
var tokenPattern = regexp.MustCompile(`[\p{L}\p{M}\p{Nd}\p{Pc}]+|\S+`)

// Tokenize splits text into non-empty tokens in order of appearance.
func Tokenize(text string) []string {
	matches := tokenPattern.FindAllString(text, -1)
	tokens := matches[:0]
	for _, m := range matches {
		if m != "" {
			tokens = append(tokens, m)
		}
	}
	return tokens
}
