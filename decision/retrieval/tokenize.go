package retrieval

import (
	"unicode"
	"unicode/utf8"

	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/analysis/token/stop"
)

// minTokenRunes drops single-character tokens.
const minTokenRunes = 2

// Tokenizer turns text into lowercase word tokens with English stop words removed.
type Tokenizer struct {
	stop *stop.StopTokensFilter
}

// NewTokenizer loads the English stop list.
func NewTokenizer() (*Tokenizer, error) {
	words := analysis.NewTokenMap()
	if err := words.LoadBytes(en.EnglishStopWords); err != nil {
		return nil, err
	}
	return &Tokenizer{stop: stop.NewStopTokensFilter(words)}, nil
}

// Tokens splits on anything that is not a letter, digit or underscore.
func (t *Tokenizer) Tokens(text string) []string {
	stream := make(analysis.TokenStream, 0, len(text)/5)
	start := -1
	pos := 1

	flush := func(end int) {
		if start < 0 {
			return
		}
		word := []rune(text[start:end])
		if len(word) >= minTokenRunes {
			for i, r := range word {
				word[i] = unicode.ToLower(r)
			}
			stream = append(stream, &analysis.Token{
				Term:     []byte(string(word)),
				Start:    start,
				End:      end,
				Position: pos,
				Type:     analysis.AlphaNumeric,
			})
			pos++
		}
		start = -1
	}

	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if isWordRune(r) {
			if start < 0 {
				start = i
			}
		} else {
			flush(i)
		}
		i += size
	}
	flush(len(text))

	stream = t.stop.Filter(stream)
	out := make([]string, 0, len(stream))
	for _, tok := range stream {
		out = append(out, string(tok.Term))
	}
	return out
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
