package store

import (
	"encoding/json"
)

// JSONLDContext is a JSON-LD @context document.
type JSONLDContext map[string]interface{}

// JSONLDDocument is a compact JSON-LD document.
type JSONLDDocument struct {
	Context JSONLDContext            `json:"@context,omitempty"`
	Graph   []map[string]interface{} `json:"@graph"`
}

// JSONLDSerializer converts a TripleStore into JSON-LD. The compact form
// carries an @context built from the graph's namespace bindings.
type JSONLDSerializer struct {
	extra       []PrefixMapping
	compactForm bool
}

// JSONLDOption is a functional option for configuring the JSONLDSerializer.
type JSONLDOption func(*JSONLDSerializer)

// NewJSONLDSerializer creates a JSONLDSerializer producing compact output.
func NewJSONLDSerializer(options ...JSONLDOption) *JSONLDSerializer {
	serializer := &JSONLDSerializer{compactForm: true}
	for _, option := range options {
		option(serializer)
	}
	return serializer
}

// WithJSONLDPrefix adds or overrides a context prefix.
func WithJSONLDPrefix(prefix, namespace string) JSONLDOption {
	return func(serializer *JSONLDSerializer) {
		serializer.extra = append(serializer.extra, PrefixMapping{Prefix: prefix, Namespace: namespace})
	}
}

// WithExpandedForm configures the serializer to output expanded JSON-LD.
func WithExpandedForm() JSONLDOption {
	return func(serializer *JSONLDSerializer) {
		serializer.compactForm = false
	}
}

// BuildContext returns the @context for graph: one entry per namespace.
func (serializer *JSONLDSerializer) BuildContext(graph *TripleStore) JSONLDContext {
	prefixes := newPrefixTable(graph, false, serializer.extra)
	context := make(JSONLDContext, len(prefixes.mappings))
	for _, mapping := range prefixes.mappings {
		context[mapping.Prefix] = mapping.Namespace
	}
	return context
}

// Serialize converts all triples in the store to indented JSON-LD.
func (serializer *JSONLDSerializer) Serialize(graph *TripleStore) ([]byte, error) {
	subjectGroups := groupBySubject(graph)
	subjects := sortedKeys(subjectGroups)

	if !serializer.compactForm {
		nodes := make([]map[string]interface{}, 0, len(subjects))
		for _, subject := range subjects {
			nodes = append(nodes, expandedNode(subject, subjectGroups[subject]))
		}
		return json.MarshalIndent(nodes, "", "  ")
	}

	prefixes := newPrefixTable(graph, false, serializer.extra)
	document := JSONLDDocument{
		Context: serializer.BuildContext(graph),
		Graph:   make([]map[string]interface{}, 0, len(subjects)),
	}
	for _, subject := range subjects {
		document.Graph = append(document.Graph, compactNode(prefixes, subject, subjectGroups[subject]))
	}
	return json.MarshalIndent(document, "", "  ")
}

// SerializeToString returns the JSON-LD as a string.
func (serializer *JSONLDSerializer) SerializeToString(graph *TripleStore) (string, error) {
	data, err := serializer.Serialize(graph)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func compactNode(prefixes *prefixTable, subject string, predicateObjects map[string][]string) map[string]interface{} {
	node := map[string]interface{}{
		"@id": compactIRI(prefixes, subject),
	}

	for _, predicate := range sortPredicatesTypeFirst(predicateObjects) {
		objects := predicateObjects[predicate]

		if predicate == RDFType {
			types := make([]string, len(objects))
			for index, object := range objects {
				types[index] = compactIRI(prefixes, object)
			}
			if len(types) == 1 {
				node["@type"] = types[0]
			} else {
				node["@type"] = types
			}
			continue
		}

		values := make([]interface{}, len(objects))
		for index, object := range objects {
			values[index] = compactValue(prefixes, object)
		}
		key := compactIRI(prefixes, predicate)
		if len(values) == 1 {
			node[key] = values[0]
		} else {
			node[key] = values
		}
	}

	return node
}

func compactIRI(prefixes *prefixTable, iri string) string {
	compacted, _ := prefixes.compact(iri)
	return compacted
}

func compactValue(prefixes *prefixTable, object string) interface{} {
	if IsIRI(object) {
		return map[string]string{"@id": compactIRI(prefixes, object)}
	}
	if value, datatype, ok := ParseTypedLiteral(object); ok {
		return map[string]string{"@value": value, "@type": compactIRI(prefixes, datatype)}
	}
	return object
}

func expandedNode(subject string, predicateObjects map[string][]string) map[string]interface{} {
	node := map[string]interface{}{
		"@id": subject,
	}

	for _, predicate := range sortPredicatesTypeFirst(predicateObjects) {
		objects := predicateObjects[predicate]

		if predicate == RDFType {
			node["@type"] = objects
			continue
		}

		values := make([]map[string]string, len(objects))
		for index, object := range objects {
			switch value, datatype, typed := ParseTypedLiteral(object); {
			case IsIRI(object):
				values[index] = map[string]string{"@id": object}
			case typed:
				values[index] = map[string]string{"@value": value, "@type": datatype}
			default:
				values[index] = map[string]string{"@value": object}
			}
		}
		node[predicate] = values
	}

	return node
}
