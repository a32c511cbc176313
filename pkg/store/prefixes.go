package store

import (
	"sort"
	"strings"
)

// prefixTable compacts and expands IRIs against a set of prefix mappings.
type prefixTable struct {
	mappings       []PrefixMapping
	namespaceIndex map[string]string // prefix -> namespace
}

// newPrefixTable starts from the graph bindings (unless skipGraph is set) and
// applies extra mappings on top, later mappings overriding earlier ones.
func newPrefixTable(graph *TripleStore, skipGraph bool, extra []PrefixMapping) *prefixTable {
	table := &prefixTable{namespaceIndex: make(map[string]string)}
	if !skipGraph {
		for _, mapping := range graph.Namespaces() {
			table.namespaceIndex[mapping.Prefix] = mapping.Namespace
		}
	}
	for _, mapping := range extra {
		table.namespaceIndex[mapping.Prefix] = mapping.Namespace
	}

	for _, prefix := range sortedKeys(table.namespaceIndex) {
		table.mappings = append(table.mappings, PrefixMapping{Prefix: prefix, Namespace: table.namespaceIndex[prefix]})
	}
	return table
}

// split returns the prefix and local name of iri using the longest matching
// namespace whose remainder satisfies validLocal.
func (table *prefixTable) split(iri string, validLocal func(string) bool) (string, string, bool) {
	bestPrefix := ""
	bestNamespace := ""
	for _, mapping := range table.mappings {
		if !strings.HasPrefix(iri, mapping.Namespace) || len(mapping.Namespace) <= len(bestNamespace) {
			continue
		}
		if validLocal(iri[len(mapping.Namespace):]) {
			bestPrefix = mapping.Prefix
			bestNamespace = mapping.Namespace
		}
	}
	if bestNamespace == "" {
		return "", "", false
	}
	return bestPrefix, iri[len(bestNamespace):], true
}

// compact returns "prefix:local" for iri, or iri itself when no binding fits.
func (table *prefixTable) compact(iri string) (string, bool) {
	prefix, local, ok := table.split(iri, isValidLocalName)
	if !ok {
		return iri, false
	}
	return prefix + ":" + local, true
}

// expand turns "prefix:local" back into an IRI.
func (table *prefixTable) expand(name string) string {
	if IsIRI(name) {
		return name
	}
	if colon := strings.Index(name, ":"); colon > 0 {
		if namespace, ok := table.namespaceIndex[name[:colon]]; ok {
			return namespace + name[colon+1:]
		}
	}
	return name
}

// isValidLocalName accepts the subset of Turtle PN_LOCAL used by unit codes:
// letters, digits, '_', '-' and inner '.'.
func isValidLocalName(local string) bool {
	if local == "" || local[len(local)-1] == '.' || local[0] == '.' || local[0] == '-' {
		return false
	}
	for _, char := range local {
		switch {
		case char >= 'a' && char <= 'z', char >= 'A' && char <= 'Z', char >= '0' && char <= '9':
		case char == '_' || char == '-' || char == '.':
		default:
			return false
		}
	}
	return true
}

// groupBySubject maps subject -> predicate -> objects, objects sorted.
func groupBySubject(graph *TripleStore) map[string]map[string][]string {
	groups := make(map[string]map[string][]string)
	for _, triple := range graph.All() {
		predicates, ok := groups[triple.Subject]
		if !ok {
			predicates = make(map[string][]string)
			groups[triple.Subject] = predicates
		}
		predicates[triple.Predicate] = append(predicates[triple.Predicate], triple.Object)
	}
	return groups
}

// sortPredicatesTypeFirst sorts predicates with rdf:type first, then alphabetically.
func sortPredicatesTypeFirst(predicateObjects map[string][]string) []string {
	predicates := make([]string, 0, len(predicateObjects))
	for predicate := range predicateObjects {
		predicates = append(predicates, predicate)
	}
	sort.Slice(predicates, func(i, j int) bool {
		if (predicates[i] == RDFType) != (predicates[j] == RDFType) {
			return predicates[i] == RDFType
		}
		return predicates[i] < predicates[j]
	})
	return predicates
}

// escapeLiteralString escapes special characters of a quoted literal.
func escapeLiteralString(value string) string {
	var builder strings.Builder
	builder.Grow(len(value) + len(value)/8)

	for _, char := range value {
		switch char {
		case '\\':
			builder.WriteString(`\\`)
		case '"':
			builder.WriteString(`\"`)
		case '\n':
			builder.WriteString(`\n`)
		case '\r':
			builder.WriteString(`\r`)
		case '\t':
			builder.WriteString(`\t`)
		default:
			builder.WriteRune(char)
		}
	}

	return builder.String()
}

// escapeIRI escapes characters not allowed in IRIs within angle brackets.
func escapeIRI(iri string) string {
	var builder strings.Builder
	builder.Grow(len(iri))

	for _, char := range iri {
		switch char {
		case '<', '>', '"', ' ', '{', '}', '|', '^', '`', '\\':
			builder.WriteString(`\u00`)
			builder.WriteString(strings.ToUpper(hexByte(byte(char))))
		default:
			builder.WriteRune(char)
		}
	}

	return builder.String()
}

func hexByte(value byte) string {
	const digits = "0123456789abcdef"
	return string([]byte{digits[value>>4], digits[value&0x0f]})
}

// ntriplesObject renders an object with full IRIs only.
func ntriplesObject(object string) string {
	if IsIRI(object) {
		return "<" + escapeIRI(object) + ">"
	}
	if value, datatype, ok := ParseTypedLiteral(object); ok {
		return "\"" + escapeLiteralString(value) + "\"^^<" + escapeIRI(datatype) + ">"
	}
	return "\"" + escapeLiteralString(object) + "\""
}
