package store

import (
	"fmt"
	"strings"
)

// TurtleSerializer converts a TripleStore into Turtle. Prefix declarations
// come from the graph's namespace bindings plus any WithPrefix options.
type TurtleSerializer struct {
	extra     []PrefixMapping
	skipGraph bool
}

// TurtleOption is a functional option for configuring the TurtleSerializer.
type TurtleOption func(*TurtleSerializer)

// NewTurtleSerializer creates a TurtleSerializer.
func NewTurtleSerializer(options ...TurtleOption) *TurtleSerializer {
	serializer := &TurtleSerializer{}
	for _, option := range options {
		option(serializer)
	}
	return serializer
}

// WithPrefix adds or overrides a prefix mapping.
func WithPrefix(prefix, namespace string) TurtleOption {
	return func(serializer *TurtleSerializer) {
		serializer.extra = append(serializer.extra, PrefixMapping{Prefix: prefix, Namespace: namespace})
	}
}

// WithoutGraphPrefixes ignores the graph's namespace bindings.
func WithoutGraphPrefixes() TurtleOption {
	return func(serializer *TurtleSerializer) {
		serializer.skipGraph = true
	}
}

// Serialize converts all triples in the store to Turtle.
func (serializer *TurtleSerializer) Serialize(graph *TripleStore) string {
	var builder strings.Builder
	prefixes := newPrefixTable(graph, serializer.skipGraph, serializer.extra)

	for _, mapping := range prefixes.mappings {
		fmt.Fprintf(&builder, "@prefix %s: <%s> .\n", mapping.Prefix, escapeIRI(mapping.Namespace))
	}
	if len(prefixes.mappings) > 0 {
		builder.WriteString("\n")
	}

	subjectGroups := groupBySubject(graph)
	for subjectIndex, subject := range sortedKeys(subjectGroups) {
		if subjectIndex > 0 {
			builder.WriteString("\n")
		}
		writeTurtleSubject(&builder, prefixes, subject, subjectGroups[subject])
	}

	return builder.String()
}

func writeTurtleSubject(builder *strings.Builder, prefixes *prefixTable, subject string, predicateObjects map[string][]string) {
	builder.WriteString(turtleResource(prefixes, subject))

	for predicateIndex, predicate := range sortPredicatesTypeFirst(predicateObjects) {
		if predicateIndex == 0 {
			builder.WriteString(" ")
		} else {
			builder.WriteString(" ;\n    ")
		}

		if predicate == RDFType {
			builder.WriteString("a")
		} else {
			builder.WriteString(turtleResource(prefixes, predicate))
		}

		for objectIndex, object := range predicateObjects[predicate] {
			if objectIndex > 0 {
				builder.WriteString(" ,\n        ")
			} else {
				builder.WriteString(" ")
			}
			builder.WriteString(turtleObject(prefixes, object))
		}
	}

	builder.WriteString(" .\n")
}

func turtleResource(prefixes *prefixTable, iri string) string {
	if compacted, ok := prefixes.compact(iri); ok {
		return compacted
	}
	return "<" + escapeIRI(iri) + ">"
}

func turtleObject(prefixes *prefixTable, object string) string {
	if IsIRI(object) {
		return turtleResource(prefixes, object)
	}
	if value, datatype, ok := ParseTypedLiteral(object); ok {
		return "\"" + escapeLiteralString(value) + "\"^^" + turtleResource(prefixes, datatype)
	}
	return "\"" + escapeLiteralString(object) + "\""
}
