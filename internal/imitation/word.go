package imitation

type wordKind uint8

const (
	kindToken wordKind = iota
	kindStart
	kindEnd
)

// Word is a node of a user's transition graph: either a real token or one of
// the two message boundary sentinels.
type Word struct {
	kind wordKind
	text string
}

var (
	// Start precedes the first token of every message.
	Start = Word{kind: kindStart}
	// End follows the last token of every message.
	End = Word{kind: kindEnd}
)

// Token wraps tokenizer output as a Word.
func Token(text string) Word {
	return Word{kind: kindToken, text: text}
}

func (w Word) IsStart() bool { return w.kind == kindStart }
func (w Word) IsEnd() bool { return w.kind == kindEnd }
func (w Word) IsToken() bool { return w.kind == kindToken }

// Text returns the token text; sentinels have none.
func (w Word) Text() string {
	if w.kind != kindToken {
		return ""
	}
	return w.text
}

func (w Word) String() string {
	switch w.kind {
	case kindStart:
		return "<start>"
	case kindEnd:
		return "<end>"
	default:
		return w.text
	}
}

// Column encoding: an empty string stands for Start in word_from and for End
// in word_to. Tokens are never empty, so the two spaces do not collide.

func encodeFrom(w Word) (string, error) {
	switch {
	case w.kind == kindStart:
		return "", nil
	case w.kind == kindToken && w.text != "":
		return w.text, nil
	case w.kind == kindEnd:
		return "", ErrSentinelPosition
	default:
		return "", ErrEmptyToken
	}
}

func encodeTo(w Word) (string, error) {
	switch {
	case w.kind == kindEnd:
		return "", nil
	case w.kind == kindToken && w.text != "":
		return w.text, nil
	case w.kind == kindStart:
		return "", ErrSentinelPosition
	default:
		return "", ErrEmptyToken
	}
}

func decodeTo(s string) Word {
	if s == "" {
		return End
	}
	return Token(s)
}
