package store

import (
	"strings"
	"testing"
)

// --- Output tests ---

func TestTurtleSerializer_Serialize(t *testing.T) {
	expected := `@prefix owl: <http://www.w3.org/2002/07/owl#> .
@prefix rdf: <http://www.w3.org/1999/02/22-rdf-syntax-ns#> .
@prefix rdfs: <http://www.w3.org/2000/01/rdf-schema#> .
@prefix units: <https://w3id.org/units/> .
@prefix xsd: <http://www.w3.org/2001/XMLSchema#> .

units:m.s-1 a owl:NamedIndividual ;
    rdfs:label "m.s-1" ;
    units:SI_code "m.s-1" ;
    units:UCUM_code "m/s" ;
    units:length_exponent "1"^^xsd:integer ;
    units:time_exponent "-1"^^xsd:integer .
`

	output := NewTurtleSerializer().Serialize(newTestGraph())
	if output != expected {
		t.Errorf("Unexpected Turtle output:\n%s\nwant:\n%s", output, expected)
	}
}

func TestTurtleSerializer_Deterministic(t *testing.T) {
	serializer := NewTurtleSerializer()
	first := serializer.Serialize(newTestGraph())
	for attempt := 0; attempt < 10; attempt++ {
		if output := serializer.Serialize(newTestGraph()); output != first {
			t.Fatalf("Serialization differs on attempt %d", attempt)
		}
	}
}

func TestTurtleSerializer_MultipleSubjects(t *testing.T) {
	graph := newTestGraph()
	graph.Add(testBase+"kg", RDFType, OWLNamedIndividual)

	output := NewTurtleSerializer().Serialize(graph)

	kgIndex := strings.Index(output, "units:kg a owl:NamedIndividual .")
	msIndex := strings.Index(output, "units:m.s-1 a owl:NamedIndividual")
	if kgIndex < 0 || msIndex < 0 {
		t.Fatalf("Missing subject blocks:\n%s", output)
	}
	if kgIndex > msIndex {
		t.Error("Subjects should be written in sorted order")
	}
	if !strings.Contains(output, ".\n\nunits:m.s-1") {
		t.Error("Subject blocks should be separated by a blank line")
	}
}

// --- Prefix tests ---

func TestTurtleSerializer_WithoutGraphPrefixes(t *testing.T) {
	output := NewTurtleSerializer(WithoutGraphPrefixes()).Serialize(newTestGraph())

	if strings.Contains(output, "@prefix") {
		t.Errorf("Expected no prefix declarations:\n%s", output)
	}
	if !strings.Contains(output, "<https://w3id.org/units/m.s-1> a <http://www.w3.org/2002/07/owl#NamedIndividual>") {
		t.Errorf("Expected full IRIs:\n%s", output)
	}
	if !strings.Contains(output, `"1"^^<http://www.w3.org/2001/XMLSchema#integer>`) {
		t.Errorf("Expected full datatype IRI:\n%s", output)
	}
}

func TestTurtleSerializer_WithPrefix(t *testing.T) {
	graph := NewTripleStore()
	graph.Add("https://example.org/vocab#kelvin", RDFSLabel, "K")

	output := NewTurtleSerializer(WithPrefix("ex", "https://example.org/vocab#")).Serialize(graph)

	if !strings.Contains(output, "@prefix ex: <https://example.org/vocab#> .") {
		t.Errorf("Missing custom prefix:\n%s", output)
	}
	if !strings.Contains(output, "ex:kelvin <http://www.w3.org/2000/01/rdf-schema#label> \"K\" .") {
		t.Errorf("Expected compacted subject:\n%s", output)
	}
}

func TestTurtleSerializer_UncompactableLocalName(t *testing.T) {
	graph := NewTripleStore()
	NewVocabulary(testBase).BindStandard(graph)
	graph.Add(testBase+"1.", RDFType, OWLNamedIndividual)

	output := NewTurtleSerializer().Serialize(graph)
	if !strings.Contains(output, "<https://w3id.org/units/1.> a owl:NamedIndividual .") {
		t.Errorf("A local name ending in '.' must stay a full IRI:\n%s", output)
	}
}

// --- Escaping tests ---

func TestTurtleSerializer_EscapesLiterals(t *testing.T) {
	graph := NewTripleStore()
	graph.Add(testSubject, RDFSLabel, "line\none \"two\"\\")

	output := NewTurtleSerializer().Serialize(graph)
	if !strings.Contains(output, `"line\none \"two\"\\"`) {
		t.Errorf("Literal not escaped:\n%s", output)
	}
}

func TestEscapeIRI(t *testing.T) {
	if got := escapeIRI("https://example.org/a b<c>"); got != `https://example.org/a\u0020b\u003Cc\u003E` {
		t.Errorf("escapeIRI = %s", got)
	}
}

func TestIsValidLocalName(t *testing.T) {
	testCases := map[string]bool{
		"m.s-1":           true,
		"kg.m2.s-2":       true,
		"1":               true,
		"UCUM_code":       true,
		"":                false,
		"m.":              false,
		".m":              false,
		"-1":              false,
		"a/b":             false,
		"with space":      false,
		"time_exponent":   true,
		"NamedIndividual": true,
	}
	for local, expected := range testCases {
		if got := isValidLocalName(local); got != expected {
			t.Errorf("isValidLocalName(%q) = %v, want %v", local, got, expected)
		}
	}
}
