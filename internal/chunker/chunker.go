// Package chunker splits long text into segments a speech provider accepts in one request.
//
// Text is cut at sentence boundaries first, then at clause boundaries, then at word
// boundaries, and every segment ends in terminal punctuation so it can be synthesized on
// its own. All functions are pure: the same input always yields the same chunks.
package chunker

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxChunkLength is the default maximum number of characters in a chunk.
const MaxChunkLength = 1000

var ErrIndexOutOfRange = errors.New("chunk index out of range")

var (
	sentenceEnd = regexp.MustCompile(`[.!?]+\s+`)
	clauseEnd   = regexp.MustCompile(`[,;:]+\s+`)
)

type Chunk struct {
	Content string `json:"content"`
	Index   int    `json:"index"`
}

// Chunker binds the split functions to one length limit.
type Chunker struct {
	MaxLength int
}

func New(maxLen int) Chunker {
	return Chunker{MaxLength: normalizeLimit(maxLen)}
}

func (c Chunker) Chunk(text string) []Chunk { return Split(text, c.MaxLength) }

func (c Chunker) Count(text string) int { return Count(text, c.MaxLength) }

func (c Chunker) At(text string, index int) (Chunk, error) { return At(text, c.MaxLength, index) }

// Split returns the ordered chunks for text. A maxLen of zero or less means MaxChunkLength.
func Split(text string, maxLen int) []Chunk {
	parts := splitSentences(text, normalizeLimit(maxLen))
	chunks := make([]Chunk, len(parts))
	for i, p := range parts {
		chunks[i] = Chunk{Content: p, Index: i}
	}
	return chunks
}

// Count reports how many chunks Split produces for the same input.
func Count(text string, maxLen int) int {
	return len(splitSentences(text, normalizeLimit(maxLen)))
}

// At returns the chunk at index, or ErrIndexOutOfRange.
func At(text string, maxLen int, index int) (Chunk, error) {
	parts := splitSentences(text, normalizeLimit(maxLen))
	if index < 0 || index >= len(parts) {
		return Chunk{}, fmt.Errorf("%w: index %d, total chunks %d", ErrIndexOutOfRange, index, len(parts))
	}
	return Chunk{Content: parts[index], Index: index}, nil
}

func normalizeLimit(maxLen int) int {
	if maxLen <= 0 {
		return MaxChunkLength
	}
	return maxLen
}

func splitSentences(text string, limit int) []string {
	var chunks []string
	var buf strings.Builder

	flush := func() {
		if buf.Len() > 0 {
			chunks = append(chunks, buf.String())
			buf.Reset()
		}
	}

	for _, sentence := range splitKeepingDelimiter(text, sentenceEnd) {
		sentence = terminate(strings.TrimSpace(sentence))
		if sentence == "" {
			continue
		}

		size := charLen(sentence)
		if size > limit {
			flush()
			chunks = append(chunks, splitClauses(sentence, limit)...)
			continue
		}

		if buf.Len() > 0 && charLen(buf.String())+1+size > limit {
			flush()
		}
		if buf.Len() > 0 {
			buf.WriteByte(' ')
		}
		buf.WriteString(sentence)
	}
	flush()

	return chunks
}

func splitClauses(sentence string, limit int) []string {
	var chunks []string
	current := ""

	for _, clause := range clauseEnd.Split(sentence, -1) {
		clause = strings.TrimSpace(clause)
		if clause == "" {
			continue
		}

		if current != "" && charLen(terminate(current+", "+clause)) > limit {
			chunks = append(chunks, terminate(current))
			current = ""
		}

		if charLen(terminate(clause)) > limit {
			if current != "" {
				chunks = append(chunks, terminate(current))
				current = ""
			}
			chunks = append(chunks, splitWords(clause, limit)...)
			continue
		}

		if current == "" {
			current = clause
		} else {
			current += ", " + clause
		}
	}

	if current != "" {
		chunks = append(chunks, terminate(current))
	}
	return chunks
}

func splitWords(text string, limit int) []string {
	var chunks []string
	current := ""

	for _, word := range strings.Fields(text) {
		if charLen(terminate(word)) > limit {
			// a single word this long cannot be split further; emit it untouched
			if current != "" {
				chunks = append(chunks, terminate(current))
				current = ""
			}
			chunks = append(chunks, word)
			continue
		}

		if current != "" && charLen(terminate(current+" "+word)) > limit {
			chunks = append(chunks, terminate(current))
			current = ""
		}

		if current == "" {
			current = word
		} else {
			current += " " + word
		}
	}

	if current != "" {
		chunks = append(chunks, terminate(current))
	}
	return chunks
}

// splitKeepingDelimiter cuts text after every match of re, leaving the matched
// punctuation on the left-hand piece.
func splitKeepingDelimiter(text string, re *regexp.Regexp) []string {
	var parts []string
	start := 0
	for _, m := range re.FindAllStringIndex(text, -1) {
		parts = append(parts, text[start:m[1]])
		start = m[1]
	}
	if start < len(text) {
		parts = append(parts, text[start:])
	}
	return parts
}

// HasTerminalPunctuation reports whether s ends in '.', '!' or '?'.
func HasTerminalPunctuation(s string) bool {
	return strings.HasSuffix(s, ".") || strings.HasSuffix(s, "!") || strings.HasSuffix(s, "?")
}

func terminate(s string) string {
	if s == "" || HasTerminalPunctuation(s) {
		return s
	}
	return s + "."
}

func charLen(s string) int {
	return utf8.RuneCountInString(s)
}
