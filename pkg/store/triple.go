package store

import (
	"fmt"
	"strings"
)

// Triple is an RDF statement. Subject and Predicate are absolute IRIs. Object
// is an absolute IRI, a typed literal built with TypedLiteral, or any other
// string, which is read as a plain literal.
type Triple struct {
	Subject   string
	Predicate string
	Object    string
}

// NewTriple creates a new triple with the given components.
func NewTriple(subject, predicate, object string) Triple {
	return Triple{
		Subject:   subject,
		Predicate: predicate,
		Object:    object,
	}
}

// Equals checks if two triples have identical components.
func (t Triple) Equals(other Triple) bool {
	return t == other
}

// IsValid returns true if all components are non-empty.
func (t Triple) IsValid() bool {
	return t.Subject != "" && t.Predicate != "" && t.Object != ""
}

// String returns the triple as one N-Triples statement.
func (t Triple) String() string {
	return fmt.Sprintf("<%s> <%s> %s .", escapeIRI(t.Subject), escapeIRI(t.Predicate), ntriplesObject(t.Object))
}

// less orders triples by subject, then predicate, then object.
func (t Triple) less(other Triple) bool {
	if t.Subject != other.Subject {
		return t.Subject < other.Subject
	}
	if t.Predicate != other.Predicate {
		return t.Predicate < other.Predicate
	}
	return t.Object < other.Object
}

// TriplePattern matches triples. Empty components are wildcards.
type TriplePattern struct {
	Subject   string
	Predicate string
	Object    string
}

// Matches checks if a triple matches this pattern.
func (p TriplePattern) Matches(t Triple) bool {
	return (p.Subject == "" || p.Subject == t.Subject) &&
		(p.Predicate == "" || p.Predicate == t.Predicate) &&
		(p.Object == "" || p.Object == t.Object)
}

const typedLiteralSeparator = "\"^^"

// TypedLiteral encodes a literal with an explicit datatype IRI, e.g.
// TypedLiteral("2", XSDInteger) for "2"^^xsd:integer.
func TypedLiteral(value, datatype string) string {
	return "\"" + value + typedLiteralSeparator + datatype
}

// ParseTypedLiteral decodes an object produced by TypedLiteral.
func ParseTypedLiteral(object string) (value, datatype string, ok bool) {
	if !strings.HasPrefix(object, "\"") {
		return "", "", false
	}
	index := strings.LastIndex(object, typedLiteralSeparator)
	if index <= 0 {
		return "", "", false
	}
	datatype = object[index+len(typedLiteralSeparator):]
	if !IsIRI(datatype) {
		return "", "", false
	}
	return object[1:index], datatype, true
}

// IsIRI reports whether value is an absolute IRI.
func IsIRI(value string) bool {
	return strings.HasPrefix(value, "http://") ||
		strings.HasPrefix(value, "https://") ||
		strings.HasPrefix(value, "urn:")
}
