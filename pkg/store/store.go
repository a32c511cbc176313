package store

import (
	"fmt"
	"sort"
	"sync"
)

// index is a three-level map: first -> second -> third.
type index map[string]map[string]map[string]struct{}

func (idx index) add(first, second, third string) {
	level, ok := idx[first]
	if !ok {
		level = make(map[string]map[string]struct{})
		idx[first] = level
	}
	leaves, ok := level[second]
	if !ok {
		leaves = make(map[string]struct{})
		level[second] = leaves
	}
	leaves[third] = struct{}{}
}

func (idx index) remove(first, second, third string) {
	level, ok := idx[first]
	if !ok {
		return
	}
	if leaves, ok := level[second]; ok {
		delete(leaves, third)
		if len(leaves) == 0 {
			delete(level, second)
		}
	}
	if len(level) == 0 {
		delete(idx, first)
	}
}

func (idx index) has(first, second, third string) bool {
	_, ok := idx[first][second][third]
	return ok
}

// PrefixMapping associates a short prefix label with its namespace IRI.
type PrefixMapping struct {
	Prefix    string
	Namespace string
}

// TripleStore is an in-memory RDF graph with three indexes:
//   - SPO: find facts about a subject
//   - POS: find subjects with property=value
//   - OSP: find subjects pointing to an object
//
// It also carries the namespace prefixes serializers use to compact IRIs.
type TripleStore struct {
	mu sync.RWMutex

	spo index
	pos index
	osp index

	count      int
	namespaces map[string]string
}

// NewTripleStore creates an empty store.
func NewTripleStore() *TripleStore {
	return &TripleStore{
		spo:        make(index),
		pos:        make(index),
		osp:        make(index),
		namespaces: make(map[string]string),
	}
}

// Add inserts a triple. Adding a triple that already exists is a no-op.
func (ts *TripleStore) Add(subject, predicate, object string) error {
	if subject == "" || predicate == "" || object == "" {
		return fmt.Errorf("triple components cannot be empty")
	}

	ts.mu.Lock()
	defer ts.mu.Unlock()

	ts.addUnsafe(subject, predicate, object)
	return nil
}

// AddTriple inserts a Triple struct into the store.
func (ts *TripleStore) AddTriple(triple Triple) error {
	return ts.Add(triple.Subject, triple.Predicate, triple.Object)
}

// BulkAdd inserts triples under a single lock. Invalid triples are skipped.
func (ts *TripleStore) BulkAdd(triples []Triple) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	for _, triple := range triples {
		if !triple.IsValid() {
			continue
		}
		ts.addUnsafe(triple.Subject, triple.Predicate, triple.Object)
	}
}

func (ts *TripleStore) addUnsafe(subject, predicate, object string) {
	if ts.spo.has(subject, predicate, object) {
		return
	}
	ts.spo.add(subject, predicate, object)
	ts.pos.add(predicate, object, subject)
	ts.osp.add(object, subject, predicate)
	ts.count++
}

// MergeFrom copies every triple and namespace binding of source into the
// store and returns the number of new triples. Existing bindings win.
func (ts *TripleStore) MergeFrom(source *TripleStore) int {
	triples := source.All()
	mappings := source.Namespaces()

	previousCount := ts.Count()
	ts.BulkAdd(triples)

	ts.mu.Lock()
	for _, mapping := range mappings {
		if _, bound := ts.namespaces[mapping.Prefix]; !bound {
			ts.namespaces[mapping.Prefix] = mapping.Namespace
		}
	}
	ts.mu.Unlock()

	return ts.Count() - previousCount
}

// Bind associates prefix with namespace, replacing any previous binding.
func (ts *TripleStore) Bind(prefix, namespace string) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.namespaces[prefix] = namespace
}

// Namespace returns the namespace bound to prefix.
func (ts *TripleStore) Namespace(prefix string) (string, bool) {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	namespace, ok := ts.namespaces[prefix]
	return namespace, ok
}

// Namespaces returns the prefix bindings sorted by prefix.
func (ts *TripleStore) Namespaces() []PrefixMapping {
	ts.mu.RLock()
	defer ts.mu.RUnlock()

	mappings := make([]PrefixMapping, 0, len(ts.namespaces))
	for prefix, namespace := range ts.namespaces {
		mappings = append(mappings, PrefixMapping{Prefix: prefix, Namespace: namespace})
	}
	sort.Slice(mappings, func(i, j int) bool {
		return mappings[i].Prefix < mappings[j].Prefix
	})
	return mappings
}

// Find returns the triples matching the pattern in sorted order. Use "" as
// a wildcard.
func (ts *TripleStore) Find(subject, predicate, object string) []Triple {
	ts.mu.RLock()
	results := ts.findUnsafe(subject, predicate, object)
	ts.mu.RUnlock()

	sort.Slice(results, func(i, j int) bool {
		return results[i].less(results[j])
	})
	return results
}

// Exists checks if a specific triple exists in the store.
func (ts *TripleStore) Exists(subject, predicate, object string) bool {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	return ts.spo.has(subject, predicate, object)
}

// Get returns every property of subject as predicate -> sorted objects.
func (ts *TripleStore) Get(subject string) map[string][]string {
	ts.mu.RLock()
	defer ts.mu.RUnlock()

	result := make(map[string][]string)
	for predicate, objects := range ts.spo[subject] {
		result[predicate] = sortedSet(objects)
	}
	return result
}

// GetOne returns the smallest object for a subject-predicate pair, or "".
func (ts *TripleStore) GetOne(subject, predicate string) string {
	ts.mu.RLock()
	defer ts.mu.RUnlock()

	objects := sortedSet(ts.spo[subject][predicate])
	if len(objects) == 0 {
		return ""
	}
	return objects[0]
}

// Delete removes matching triples and returns how many were removed.
func (ts *TripleStore) Delete(subject, predicate, object string) int {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	matches := ts.findUnsafe(subject, predicate, object)
	for _, triple := range matches {
		ts.spo.remove(triple.Subject, triple.Predicate, triple.Object)
		ts.pos.remove(triple.Predicate, triple.Object, triple.Subject)
		ts.osp.remove(triple.Object, triple.Subject, triple.Predicate)
		ts.count--
	}
	return len(matches)
}

// Count returns the total number of triples in the store.
func (ts *TripleStore) Count() int {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	return ts.count
}

// Subjects returns all unique subjects, sorted.
func (ts *TripleStore) Subjects() []string {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	return sortedKeys(ts.spo)
}

// Predicates returns all unique predicates, sorted.
func (ts *TripleStore) Predicates() []string {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	return sortedKeys(ts.pos)
}

// All returns every triple ordered by subject, predicate and object, so
// serializations of equal graphs are byte-identical.
func (ts *TripleStore) All() []Triple {
	return ts.Find("", "", "")
}

// String returns a short summary of the store.
func (ts *TripleStore) String() string {
	ts.mu.RLock()
	defer ts.mu.RUnlock()

	return fmt.Sprintf("TripleStore{triples: %d, subjects: %d, predicates: %d, objects: %d}",
		ts.count, len(ts.spo), len(ts.pos), len(ts.osp))
}

// findUnsafe picks the most specific index for the bound components.
func (ts *TripleStore) findUnsafe(subject, predicate, object string) []Triple {
	var results []Triple
	pattern := TriplePattern{Subject: subject, Predicate: predicate, Object: object}

	switch {
	case subject != "":
		for p, objects := range ts.spo[subject] {
			for o := range objects {
				if pattern.Matches(Triple{subject, p, o}) {
					results = append(results, Triple{subject, p, o})
				}
			}
		}
	case predicate != "":
		for o, subjects := range ts.pos[predicate] {
			if object != "" && o != object {
				continue
			}
			for s := range subjects {
				results = append(results, Triple{s, predicate, o})
			}
		}
	case object != "":
		for s, predicates := range ts.osp[object] {
			for p := range predicates {
				results = append(results, Triple{s, p, object})
			}
		}
	default:
		for s, predicates := range ts.spo {
			for p, objects := range predicates {
				for o := range objects {
					results = append(results, Triple{s, p, o})
				}
			}
		}
	}

	return results
}

func sortedSet(set map[string]struct{}) []string {
	values := make([]string, 0, len(set))
	for value := range set {
		values = append(values, value)
	}
	sort.Strings(values)
	return values
}

// sortedKeys returns the keys of a map sorted alphabetically.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
