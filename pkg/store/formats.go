package store

import (
	"fmt"
	"sort"
	"strings"
)

// Format names a serialization.
type Format string

const (
	FormatTurtle   Format = "turtle"
	FormatJSONLD   Format = "jsonld"
	FormatNTriples Format = "ntriples"
	FormatRDFXML   Format = "rdfxml"
	FormatDOT      Format = "dot"
)

// FormatInfo provides metadata about an export format.
type FormatInfo struct {
	Name        Format
	MIMEType    string
	Extension   string
	Description string
}

// FormatRegistry contains metadata for all supported formats.
var FormatRegistry = map[Format]FormatInfo{
	FormatTurtle: {
		Name:        FormatTurtle,
		MIMEType:    "text/turtle",
		Extension:   ".ttl",
		Description: "Turtle - Terse RDF Triple Language",
	},
	FormatJSONLD: {
		Name:        FormatJSONLD,
		MIMEType:    "application/ld+json",
		Extension:   ".jsonld",
		Description: "JSON-LD - JSON for Linked Data",
	},
	FormatNTriples: {
		Name:        FormatNTriples,
		MIMEType:    "application/n-triples",
		Extension:   ".nt",
		Description: "N-Triples - Line-based RDF format",
	},
	FormatRDFXML: {
		Name:        FormatRDFXML,
		MIMEType:    "application/rdf+xml",
		Extension:   ".rdf",
		Description: "RDF/XML - XML serialization of RDF",
	},
	FormatDOT: {
		Name:        FormatDOT,
		MIMEType:    "text/vnd.graphviz",
		Extension:   ".dot",
		Description: "DOT - Graphviz graph description",
	},
}

var formatAliases = map[string]Format{
	"ttl":     FormatTurtle,
	"json-ld": FormatJSONLD,
	"nt":      FormatNTriples,
	"xml":     FormatRDFXML,
	"rdf":     FormatRDFXML,
}

// UnknownFormatError reports an export format that is not registered.
type UnknownFormatError struct {
	Name string
}

func (e *UnknownFormatError) Error() string {
	return fmt.Sprintf("'%s' is not a valid export format.", e.Name)
}

// ParseFormat resolves a format name or alias, ignoring case.
func ParseFormat(name string) (Format, error) {
	lowered := strings.ToLower(strings.TrimSpace(name))
	if format, ok := formatAliases[lowered]; ok {
		return format, nil
	}
	if _, ok := FormatRegistry[Format(lowered)]; ok {
		return Format(lowered), nil
	}
	return "", &UnknownFormatError{Name: name}
}

// GetFormatInfo returns metadata for a format.
func GetFormatInfo(format Format) (FormatInfo, bool) {
	info, ok := FormatRegistry[format]
	return info, ok
}

// FormatNames lists the registered format names, sorted.
func FormatNames() []string {
	names := make([]string, 0, len(FormatRegistry))
	for format := range FormatRegistry {
		names = append(names, string(format))
	}
	sort.Strings(names)
	return names
}

// Serialize renders graph in format. JSON-LD options are applied only to
// the JSON-LD serializer.
func Serialize(graph *TripleStore, format Format, jsonldOptions ...JSONLDOption) ([]byte, error) {
	switch format {
	case FormatTurtle:
		return []byte(NewTurtleSerializer().Serialize(graph)), nil
	case FormatJSONLD:
		return NewJSONLDSerializer(jsonldOptions...).Serialize(graph)
	case FormatNTriples:
		return []byte(NewNTriplesSerializer().Serialize(graph)), nil
	case FormatRDFXML:
		return []byte(NewRDFXMLSerializer().Serialize(graph)), nil
	case FormatDOT:
		return []byte(NewDOTSerializer().Serialize(graph)), nil
	default:
		return nil, &UnknownFormatError{Name: string(format)}
	}
}
