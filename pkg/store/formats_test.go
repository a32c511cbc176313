package store

import (
	"errors"
	"strings"
	"testing"
)

func TestParseFormat(t *testing.T) {
	testCases := []struct {
		name     string
		expected Format
	}{
		{"turtle", FormatTurtle},
		{"ttl", FormatTurtle},
		{"TTL", FormatTurtle},
		{"jsonld", FormatJSONLD},
		{"json-ld", FormatJSONLD},
		{"ntriples", FormatNTriples},
		{"nt", FormatNTriples},
		{"rdfxml", FormatRDFXML},
		{"xml", FormatRDFXML},
		{"dot", FormatDOT},
	}

	for _, testCase := range testCases {
		format, err := ParseFormat(testCase.name)
		if err != nil {
			t.Errorf("ParseFormat(%q) failed: %v", testCase.name, err)
			continue
		}
		if format != testCase.expected {
			t.Errorf("ParseFormat(%q) = %s, want %s", testCase.name, format, testCase.expected)
		}
	}
}

func TestParseFormat_Unknown(t *testing.T) {
	_, err := ParseFormat("csv")
	if err == nil {
		t.Fatal("Expected error for unknown format")
	}

	var unknown *UnknownFormatError
	if !errors.As(err, &unknown) {
		t.Fatalf("Expected *UnknownFormatError, got %T", err)
	}
	if err.Error() != "'csv' is not a valid export format." {
		t.Errorf("Unexpected message: %s", err.Error())
	}
}

func TestFormatRegistry(t *testing.T) {
	for _, name := range FormatNames() {
		info, ok := GetFormatInfo(Format(name))
		if !ok {
			t.Errorf("Missing info for %s", name)
			continue
		}
		if info.MIMEType == "" || !strings.HasPrefix(info.Extension, ".") {
			t.Errorf("Incomplete info for %s: %+v", name, info)
		}
	}

	info, _ := GetFormatInfo(FormatTurtle)
	if info.MIMEType != "text/turtle" || info.Extension != ".ttl" {
		t.Errorf("Unexpected turtle info: %+v", info)
	}
	info, _ = GetFormatInfo(FormatJSONLD)
	if info.MIMEType != "application/ld+json" {
		t.Errorf("Unexpected JSON-LD info: %+v", info)
	}
}

func TestSerialize_Dispatch(t *testing.T) {
	graph := newTestGraph()

	testCases := []struct {
		format   Format
		contains string
	}{
		{FormatTurtle, "@prefix units: <https://w3id.org/units/> ."},
		{FormatJSONLD, `"@context"`},
		{FormatNTriples, `<https://w3id.org/units/m.s-1> <https://w3id.org/units/UCUM_code> "m/s" .`},
		{FormatRDFXML, "<rdf:RDF"},
		{FormatDOT, "digraph UnitGraph {"},
	}

	for _, testCase := range testCases {
		t.Run(string(testCase.format), func(t *testing.T) {
			data, err := Serialize(graph, testCase.format)
			if err != nil {
				t.Fatalf("Serialize failed: %v", err)
			}
			if !strings.Contains(string(data), testCase.contains) {
				t.Errorf("Expected %q in:\n%s", testCase.contains, data)
			}
		})
	}

	if _, err := Serialize(graph, Format("yaml")); err == nil {
		t.Error("Expected error for unknown format")
	}
}

func TestSerialize_ExpandedJSONLD(t *testing.T) {
	data, err := Serialize(newTestGraph(), FormatJSONLD, WithExpandedForm())
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	if strings.Contains(string(data), "@context") {
		t.Error("Expanded JSON-LD must not carry a context")
	}
}

func TestNTriplesSerializer_Serialize(t *testing.T) {
	output := NewNTriplesSerializer().Serialize(newTestGraph())
	lines := strings.Split(strings.TrimSuffix(output, "\n"), "\n")

	if len(lines) != 6 {
		t.Fatalf("Expected 6 lines, got %d:\n%s", len(lines), output)
	}
	if lines[0] != "<https://w3id.org/units/m.s-1> <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://www.w3.org/2002/07/owl#NamedIndividual> ." {
		t.Errorf("Unexpected first line: %s", lines[0])
	}
	for _, line := range lines {
		if !strings.HasSuffix(line, " .") {
			t.Errorf("Line not terminated: %s", line)
		}
	}
}

func TestDOTSerializer_Serialize(t *testing.T) {
	graph := newTestGraph()
	vocabulary := NewVocabulary(testBase)
	graph.Add(testSubject, vocabulary.DerivedFrom(), testBase+"m")
	graph.Add(testBase+"m", RDFSLabel, "m")

	output := NewDOTSerializer().Serialize(graph)

	expectedFragments := []string{
		`"https://w3id.org/units/m.s-1" [label="m.s-1"];`,
		`"https://w3id.org/units/m" [label="m"];`,
		`"https://w3id.org/units/m.s-1" -> "https://w3id.org/units/m" [label="derivedFrom"];`,
	}
	for _, fragment := range expectedFragments {
		if !strings.Contains(output, fragment) {
			t.Errorf("Missing %q in:\n%s", fragment, output)
		}
	}
	if strings.Contains(output, "NamedIndividual") {
		t.Error("rdf:type must not be drawn as an edge")
	}
}
