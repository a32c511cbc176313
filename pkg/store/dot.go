package store

import (
	"fmt"
	"strings"
)

// DOTSerializer renders the graph for Graphviz. Subjects become nodes
// labelled with their rdfs:label; IRI-valued properties other than rdf:type
// become edges. Literal properties are omitted.
type DOTSerializer struct {
	graphName string
}

// NewDOTSerializer creates a DOTSerializer.
func NewDOTSerializer() *DOTSerializer {
	return &DOTSerializer{graphName: "UnitGraph"}
}

// Serialize converts the store to DOT.
func (serializer *DOTSerializer) Serialize(graph *TripleStore) string {
	var builder strings.Builder

	fmt.Fprintf(&builder, "digraph %s {\n", serializer.graphName)
	builder.WriteString("  rankdir=LR;\n")
	builder.WriteString("  node [shape=box];\n\n")

	subjects := graph.Subjects()
	for _, subject := range subjects {
		fmt.Fprintf(&builder, "  %s [label=%s];\n", dotQuote(subject), dotQuote(nodeLabel(graph, subject)))
	}

	edges := 0
	for _, triple := range graph.All() {
		if triple.Predicate == RDFType || !IsIRI(triple.Object) {
			continue
		}
		if edges == 0 {
			builder.WriteString("\n")
		}
		edges++
		fmt.Fprintf(&builder, "  %s -> %s [label=%s];\n",
			dotQuote(triple.Subject), dotQuote(triple.Object), dotQuote(localName(triple.Predicate)))
	}

	builder.WriteString("}\n")
	return builder.String()
}

func nodeLabel(graph *TripleStore, subject string) string {
	if label := graph.GetOne(subject, RDFSLabel); label != "" {
		return label
	}
	return localName(subject)
}

// localName returns the part of an IRI after the last '#' or '/'.
func localName(iri string) string {
	if index := strings.LastIndexAny(iri, "#/"); index >= 0 && index < len(iri)-1 {
		return iri[index+1:]
	}
	return iri
}

func dotQuote(value string) string {
	return "\"" + strings.ReplaceAll(strings.ReplaceAll(value, "\\", "\\\\"), "\"", "\\\"") + "\""
}
