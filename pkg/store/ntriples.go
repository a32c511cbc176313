package store

import "strings"

// NTriplesSerializer writes one statement per line with full IRIs, in the
// graph's sorted order.
type NTriplesSerializer struct{}

// NewNTriplesSerializer creates an NTriplesSerializer.
func NewNTriplesSerializer() *NTriplesSerializer {
	return &NTriplesSerializer{}
}

// Serialize converts all triples in the store to N-Triples.
func (serializer *NTriplesSerializer) Serialize(graph *TripleStore) string {
	var builder strings.Builder
	for _, triple := range graph.All() {
		builder.WriteString(triple.String())
		builder.WriteString("\n")
	}
	return builder.String()
}
