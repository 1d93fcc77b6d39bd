package segment

import (
	"regexp"
	"strings"
)

// Default chunking configuration, overridable per call and via
// CHUNK_TOKENS / OVERLAP_TOKENS at the call sites.
const (
	DefaultChunkTokens   = 800
	DefaultOverlapTokens = 200
)

// Options controls how text is packed into chunks. Token counts are
// whitespace-delimited word counts, not model tokenizer counts; the
// approximation is part of the contract and must not be "fixed".
type Options struct {
	ChunkTokens   int
	OverlapTokens int
}

func (o Options) normalized() Options {
	if o.ChunkTokens <= 0 {
		o.ChunkTokens = DefaultChunkTokens
	}
	if o.OverlapTokens < 0 {
		o.OverlapTokens = 0
	}
	return o
}

// Piece is one emitted chunk of text with its approximate token count.
type Piece struct {
	Content string
	Tokens  int
}

// A sentence is a run of non-terminal characters followed by one or more
// terminal marks, or a trailing run without terminal punctuation.
var sentenceRe = regexp.MustCompile(`[^.!?;]+[.!?;]+|[^.!?;]+`)

// CountTokens approximates the token count of s as its whitespace-delimited
// word count.
func CountTokens(s string) int {
	return len(strings.Fields(s))
}

// SplitSentences scans text into sentences, each retaining its terminal
// punctuation. Whitespace-only fragments are dropped.
func SplitSentences(text string) []string {
	matches := sentenceRe.FindAllString(text, -1)
	sentences := make([]string, 0, len(matches))
	for _, m := range matches {
		m = strings.TrimSpace(m)
		if m != "" {
			sentences = append(sentences, m)
		}
	}
	return sentences
}

// Chunk splits text into token-bounded pieces. Sentences are greedily
// packed while the budget holds; on overflow the closed chunk's trailing
// OverlapTokens words seed the next chunk. If the seed plus the
// overflowing sentence would itself exceed the budget, the seed is
// discarded and the sentence starts the chunk alone, so a sentence is
// never dropped or truncated on this path. When no sentence structure is
// found, or the sentence path produced a malformed piece, the text is
// re-chunked with fixed word windows instead.
func Chunk(text string, opts Options) []Piece {
	opts = opts.normalized()
	if strings.TrimSpace(text) == "" {
		return nil
	}

	sentences := SplitSentences(text)
	if len(sentences) == 0 {
		return windowChunks(text, opts)
	}

	pieces := packSentences(sentences, opts)
	for _, p := range pieces {
		if p.Tokens == 0 || strings.TrimSpace(p.Content) == "" {
			return windowChunks(text, opts)
		}
	}
	return pieces
}

func packSentences(sentences []string, opts Options) []Piece {
	var pieces []Piece
	var current []string
	currentTokens := 0

	emit := func() {
		if len(current) == 0 {
			return
		}
		content := strings.Join(current, " ")
		pieces = append(pieces, Piece{Content: content, Tokens: CountTokens(content)})
	}

	for _, sentence := range sentences {
		sentenceTokens := CountTokens(sentence)
		if len(current) > 0 && currentTokens+sentenceTokens > opts.ChunkTokens {
			emit()
			seed := overlapSeed(strings.Join(current, " "), opts.OverlapTokens)
			seedTokens := CountTokens(seed)
			if seed != "" && seedTokens+sentenceTokens <= opts.ChunkTokens {
				current = []string{seed, sentence}
				currentTokens = seedTokens + sentenceTokens
			} else {
				current = []string{sentence}
				currentTokens = sentenceTokens
			}
			continue
		}
		current = append(current, sentence)
		currentTokens += sentenceTokens
	}
	emit()

	return pieces
}

// overlapSeed returns the last overlap words of content, or fewer when the
// content is shorter.
func overlapSeed(content string, overlap int) string {
	if overlap <= 0 {
		return ""
	}
	words := strings.Fields(content)
	if len(words) > overlap {
		words = words[len(words)-overlap:]
	}
	return strings.Join(words, " ")
}

// windowChunks is the fallback path: fixed word windows of ChunkTokens
// words advancing by ChunkTokens-OverlapTokens, clamped so the window
// always advances.
func windowChunks(text string, opts Options) []Piece {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	stride := opts.ChunkTokens - opts.OverlapTokens
	if stride < 1 {
		stride = 1
	}

	var pieces []Piece
	for start := 0; start < len(words); start += stride {
		end := min(start+opts.ChunkTokens, len(words))
		window := words[start:end]
		pieces = append(pieces, Piece{
			Content: strings.Join(window, " "),
			Tokens:  len(window),
		})
		if end == len(words) {
			break
		}
	}
	return pieces
}
