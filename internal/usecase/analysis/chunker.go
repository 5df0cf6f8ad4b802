package analysis

import "strings"

// reservedTokens is headroom kept free in each chunk for the system prompt
// and the model's response.
const reservedTokens = 1000

// estimateTokens approximates the token count of English text at roughly four
// characters per token. Exact usage comes back from the provider per request;
// the estimate only sizes chunks and paces the limiter.
func estimateTokens(text string) int {
	if text == "" {
		return 0
	}
	n := len(text) / 4
	if n == 0 {
		return 1
	}
	return n
}

// chunker splits text into pieces that fit a model request budget.
type chunker struct {
	maxTokens int
}

func newChunker(maxTokensPerRequest int) *chunker {
	return &chunker{maxTokens: maxTokensPerRequest}
}

// budget is the usable token count per chunk after the reserve.
func (c *chunker) budget() int {
	b := c.maxTokens - reservedTokens
	if b < 1 {
		b = 1
	}
	return b
}

// split cuts text into chunks under the per-request budget. Sentences are the
// unit of splitting; a single oversized sentence falls back to word splitting.
func (c *chunker) split(text string) []string {
	budget := c.budget()

	var (
		chunks        []string
		current       []string
		currentTokens int
	)

	flush := func() {
		if len(current) > 0 {
			chunks = append(chunks, strings.Join(current, ". ")+".")
			current = nil
			currentTokens = 0
		}
	}

	for _, sentence := range strings.Split(text, ". ") {
		sentence = strings.TrimSuffix(sentence, ".")
		if sentence == "" {
			continue
		}
		tokens := estimateTokens(sentence)

		if tokens > budget {
			flush()
			chunks = append(chunks, c.splitWords(sentence, budget)...)
			continue
		}

		if currentTokens+tokens > budget {
			flush()
		}
		current = append(current, sentence)
		currentTokens += tokens
	}
	flush()

	return chunks
}

// splitWords splits an oversized sentence on word boundaries.
func (c *chunker) splitWords(sentence string, budget int) []string {
	var (
		chunks        []string
		current       []string
		currentTokens int
	)

	for _, word := range strings.Fields(sentence) {
		tokens := estimateTokens(word)
		if currentTokens+tokens > budget && len(current) > 0 {
			chunks = append(chunks, strings.Join(current, " "))
			current = nil
			currentTokens = 0
		}
		current = append(current, word)
		currentTokens += tokens
	}
	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, " "))
	}

	return chunks
}
