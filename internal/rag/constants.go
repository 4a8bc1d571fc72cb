package rag

// Retrieval defaults. The similarity floor is deliberately low to keep recall
// high on sparse corpora; the prompt rules compensate for marginal matches.
const (
	// DefaultTopK is the number of chunks retrieved per query.
	DefaultTopK = 5

	// DefaultMinSimilarity is the cosine similarity floor applied after
	// top-K truncation.
	DefaultMinSimilarity = 0.3

	// maxEmbedChars bounds embedder input to the provider's limit.
	maxEmbedChars = 8000

	// minContentChars is the minimum chunk content length for a chunk to
	// contribute context text and a citation.
	minContentChars = 50
)

// chunkFiles maps a domain to its pre-computed embedding dataset under the
// data directory. Domains without a dataset load an empty store.
var chunkFiles = map[string]string{
	"rcc": "IS_456_2000_v2_with_embeddings.json",
}

// ragDomains are the domains retrieval is enabled for.
var ragDomains = map[string]struct{}{
	"rcc":     {},
	"steel":   {},
	"general": {},
}

// DomainSupported reports whether retrieval is enabled for the domain.
func DomainSupported(domain string) bool {
	_, ok := ragDomains[domain]
	return ok
}
