// Package store provides an in-memory RDF graph, the vocabulary of the unit
// individuals it holds, and serializers for Turtle, JSON-LD, N-Triples,
// RDF/XML and Graphviz DOT.
package store

import "strings"

// Standard namespace IRIs.
const (
	NamespaceRDF  = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	NamespaceRDFS = "http://www.w3.org/2000/01/rdf-schema#"
	NamespaceOWL  = "http://www.w3.org/2002/07/owl#"
	NamespaceXSD  = "http://www.w3.org/2001/XMLSchema#"
)

// DefaultBaseIRI is the namespace of unit individuals and unit predicates.
const DefaultBaseIRI = "https://w3id.org/units/"

// Namespace prefixes bound on every unit graph.
const (
	PrefixRDF   = "rdf"
	PrefixRDFS  = "rdfs"
	PrefixOWL   = "owl"
	PrefixXSD   = "xsd"
	PrefixUnits = "units"
)

// Standard terms.
const (
	RDFType            = NamespaceRDF + "type"
	RDFSLabel          = NamespaceRDFS + "label"
	OWLNamedIndividual = NamespaceOWL + "NamedIndividual"
	XSDInteger         = NamespaceXSD + "integer"
	XSDString          = NamespaceXSD + "string"
)

// Local names of the unit predicates, relative to the base IRI.
const (
	LocalUCUMCode       = "UCUM_code"
	LocalSICode         = "SI_code"
	LocalDerivedFrom    = "derivedFrom"
	LocalExponentSuffix = "_exponent"
)

// Vocabulary builds subject and predicate IRIs under one base IRI.
type Vocabulary struct {
	baseIRI string
}

// NewVocabulary creates a vocabulary rooted at baseIRI. An empty base
// selects DefaultBaseIRI.
func NewVocabulary(baseIRI string) Vocabulary {
	if baseIRI == "" {
		baseIRI = DefaultBaseIRI
	}
	return Vocabulary{baseIRI: baseIRI}
}

// Base returns the base IRI.
func (v Vocabulary) Base() string {
	return v.baseIRI
}

// Individual returns the subject IRI for a canonical code.
func (v Vocabulary) Individual(code string) string {
	return v.baseIRI + code
}

// Code recovers the canonical code from an individual IRI.
func (v Vocabulary) Code(iri string) (string, bool) {
	if !strings.HasPrefix(iri, v.baseIRI) || len(iri) == len(v.baseIRI) {
		return "", false
	}
	return iri[len(v.baseIRI):], true
}

// UCUMCode is the predicate holding the code as supplied.
func (v Vocabulary) UCUMCode() string {
	return v.baseIRI + LocalUCUMCode
}

// SICode is the predicate holding the canonical code.
func (v Vocabulary) SICode() string {
	return v.baseIRI + LocalSICode
}

// Exponent is the predicate for the exponent of the named dimension, e.g.
// units:length_exponent.
func (v Vocabulary) Exponent(dimension string) string {
	return v.baseIRI + dimension + LocalExponentSuffix
}

// DerivedFrom links an individual to the SI base-unit individuals it is
// built from.
func (v Vocabulary) DerivedFrom() string {
	return v.baseIRI + LocalDerivedFrom
}

// BindStandard binds rdf, rdfs, owl, xsd and the units prefix on graph.
func (v Vocabulary) BindStandard(graph *TripleStore) {
	graph.Bind(PrefixRDF, NamespaceRDF)
	graph.Bind(PrefixRDFS, NamespaceRDFS)
	graph.Bind(PrefixOWL, NamespaceOWL)
	graph.Bind(PrefixXSD, NamespaceXSD)
	graph.Bind(PrefixUnits, v.baseIRI)
}
