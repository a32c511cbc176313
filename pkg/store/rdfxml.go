package store

import (
	"fmt"
	"strconv"
	"strings"
)

// RDFXMLSerializer converts a TripleStore into RDF/XML. Predicates must be
// written as qualified element names; a predicate whose namespace is not
// bound on the graph gets a generated ns<N> prefix.
type RDFXMLSerializer struct {
	extra []PrefixMapping
}

// RDFXMLOption is a functional option for configuring the RDFXMLSerializer.
type RDFXMLOption func(*RDFXMLSerializer)

// NewRDFXMLSerializer creates an RDFXMLSerializer.
func NewRDFXMLSerializer(options ...RDFXMLOption) *RDFXMLSerializer {
	serializer := &RDFXMLSerializer{}
	for _, option := range options {
		option(serializer)
	}
	return serializer
}

// WithRDFXMLPrefix adds or overrides a namespace prefix mapping.
func WithRDFXMLPrefix(prefix, namespace string) RDFXMLOption {
	return func(serializer *RDFXMLSerializer) {
		serializer.extra = append(serializer.extra, PrefixMapping{Prefix: prefix, Namespace: namespace})
	}
}

// Serialize converts all triples in the store to RDF/XML.
func (serializer *RDFXMLSerializer) Serialize(graph *TripleStore) string {
	extra := append([]PrefixMapping{{Prefix: PrefixRDF, Namespace: NamespaceRDF}}, serializer.extra...)
	prefixes := newPrefixTable(graph, false, extra)
	prefixes = withGeneratedPrefixes(prefixes, graph.Predicates())

	var builder strings.Builder
	builder.WriteString("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	builder.WriteString("<rdf:RDF")
	for _, mapping := range prefixes.mappings {
		fmt.Fprintf(&builder, "\n    xmlns:%s=\"%s\"", mapping.Prefix, escapeXMLAttribute(mapping.Namespace))
	}
	builder.WriteString(">\n")

	subjectGroups := groupBySubject(graph)
	for _, subject := range sortedKeys(subjectGroups) {
		writeDescription(&builder, prefixes, subject, subjectGroups[subject])
	}

	builder.WriteString("</rdf:RDF>\n")
	return builder.String()
}

// withGeneratedPrefixes binds ns0, ns1, ... for predicate namespaces that
// have no usable prefix yet.
func withGeneratedPrefixes(prefixes *prefixTable, predicates []string) *prefixTable {
	next := 0
	for _, predicate := range predicates {
		if _, _, ok := prefixes.split(predicate, isXMLName); ok {
			continue
		}
		cut := strings.LastIndexAny(predicate, "#/")
		if cut < 0 || !isXMLName(predicate[cut+1:]) {
			continue
		}

		var prefix string
		for {
			prefix = "ns" + strconv.Itoa(next)
			next++
			if _, taken := prefixes.namespaceIndex[prefix]; !taken {
				break
			}
		}

		namespace := predicate[:cut+1]
		prefixes.namespaceIndex[prefix] = namespace
		prefixes.mappings = append(prefixes.mappings, PrefixMapping{Prefix: prefix, Namespace: namespace})
	}
	return prefixes
}

func writeDescription(builder *strings.Builder, prefixes *prefixTable, subject string, predicateObjects map[string][]string) {
	builder.WriteString("\n")
	fmt.Fprintf(builder, "  <rdf:Description rdf:about=\"%s\">\n", escapeXMLAttribute(subject))

	for _, predicate := range sortPredicatesTypeFirst(predicateObjects) {
		element := predicate
		if prefix, local, ok := prefixes.split(predicate, isXMLName); ok {
			element = prefix + ":" + local
		}

		for _, object := range predicateObjects[predicate] {
			switch value, datatype, typed := ParseTypedLiteral(object); {
			case IsIRI(object):
				fmt.Fprintf(builder, "    <%s rdf:resource=\"%s\"/>\n", element, escapeXMLAttribute(object))
			case typed:
				fmt.Fprintf(builder, "    <%s rdf:datatype=\"%s\">%s</%s>\n",
					element, escapeXMLAttribute(datatype), escapeXMLText(value), element)
			default:
				fmt.Fprintf(builder, "    <%s>%s</%s>\n", element, escapeXMLText(object), element)
			}
		}
	}

	builder.WriteString("  </rdf:Description>\n")
}

// isXMLName accepts local names usable after a prefix in an element name.
func isXMLName(local string) bool {
	if local == "" {
		return false
	}
	for index, char := range local {
		switch {
		case char >= 'a' && char <= 'z', char >= 'A' && char <= 'Z', char == '_':
		case index > 0 && (char >= '0' && char <= '9' || char == '-' || char == '.'):
		default:
			return false
		}
	}
	return true
}

// escapeXMLText escapes characters that are special in XML text content.
func escapeXMLText(text string) string {
	replacer := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return replacer.Replace(text)
}

// escapeXMLAttribute escapes characters that are special in XML attribute values.
func escapeXMLAttribute(text string) string {
	replacer := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", "\"", "&quot;")
	return replacer.Replace(text)
}
