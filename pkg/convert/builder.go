// Package convert turns UCUM codes into OWL named individuals. Each distinct
// canonical SI form becomes one subject; every code that reduces to it is
// recorded on that subject.
package convert

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/ontodev/units-demo/pkg/store"
	"github.com/ontodev/units-demo/pkg/ucum"
)

// Builder converts codes into a shared graph. It holds no per-conversion
// state and may be used concurrently.
type Builder struct {
	engine          *ucum.Engine
	vocabulary      store.Vocabulary
	failOnError     bool
	derivationLinks bool
	logger          *slog.Logger
	metrics         *Metrics
}

// Option configures a Builder.
type Option func(*Builder)

// WithBaseIRI sets the namespace of subjects and unit predicates.
func WithBaseIRI(base string) Option {
	return func(builder *Builder) {
		builder.vocabulary = store.NewVocabulary(base)
	}
}

// WithFailOnError selects between aborting on the first invalid code (true,
// the default) and skipping invalid codes.
func WithFailOnError(failOnError bool) Option {
	return func(builder *Builder) {
		builder.failOnError = failOnError
	}
}

// WithDerivationLinks adds units:derivedFrom links from each individual to
// the SI base-unit individuals of its non-zero dimensions.
func WithDerivationLinks(enabled bool) Option {
	return func(builder *Builder) {
		builder.derivationLinks = enabled
	}
}

// WithLogger sets the logger used for skipped codes.
func WithLogger(logger *slog.Logger) Option {
	return func(builder *Builder) {
		builder.logger = logger
	}
}

// WithMetrics records every conversion in metrics.
func WithMetrics(metrics *Metrics) Option {
	return func(builder *Builder) {
		builder.metrics = metrics
	}
}

// NewBuilder creates a builder that canonicalizes with engine.
func NewBuilder(engine *ucum.Engine, options ...Option) *Builder {
	builder := &Builder{
		engine:      engine,
		vocabulary:  store.NewVocabulary(store.DefaultBaseIRI),
		failOnError: true,
		logger:      slog.Default(),
	}
	for _, option := range options {
		option(builder)
	}
	if builder.logger == nil {
		builder.logger = slog.Default()
	}
	return builder
}

// Vocabulary returns the IRI vocabulary of the builder.
func (b *Builder) Vocabulary() store.Vocabulary {
	return b.vocabulary
}

// NewGraph returns an empty graph with the standard prefixes bound.
func (b *Builder) NewGraph() *store.TripleStore {
	graph := store.NewTripleStore()
	b.vocabulary.BindStandard(graph)
	return graph
}

// Result is the outcome of a batch conversion.
type Result struct {
	Graph *store.TripleStore

	// Codes lists the successfully converted inputs in input order.
	Codes []string

	// Subjects maps each converted input to its subject IRI.
	Subjects map[string]string

	// Canonical maps each converted input to its canonical form.
	Canonical map[string]*ucum.Canonical

	// Skipped aggregates the failures of skipped inputs. It is nil when
	// every input converted.
	Skipped *multierror.Error
}

// SkippedCount returns the number of inputs that failed.
func (r *Result) SkippedCount() int {
	if r.Skipped == nil {
		return 0
	}
	return len(r.Skipped.Errors)
}

// InputError ties a conversion failure to the input that caused it.
type InputError struct {
	Code string
	Err  error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("'%s' is not a valid UCUM code: %v", e.Code, e.Err)
}

func (e *InputError) Unwrap() error {
	return e.Err
}

// Convert canonicalizes every code and adds one individual per distinct
// canonical form to a new graph. With fail-on-error the first failure is
// returned as an *InputError and no result is produced; otherwise failing codes are
// logged, collected in Result.Skipped and the rest still convert.
func (b *Builder) Convert(codes []string) (*Result, error) {
	result := &Result{
		Graph:     b.NewGraph(),
		Subjects:  make(map[string]string, len(codes)),
		Canonical: make(map[string]*ucum.Canonical, len(codes)),
	}

	for _, code := range codes {
		canonical, err := b.Canonicalize(code)
		if err != nil {
			if b.failOnError {
				return nil, &InputError{Code: code, Err: err}
			}
			b.logger.Warn("Skipping invalid UCUM code",
				slog.String("code", code),
				slog.String("kind", ucum.Kind(err)),
				slog.String("error", err.Error()))
			result.Skipped = multierror.Append(result.Skipped, &InputError{Code: code, Err: err})
			continue
		}

		subject, err := b.AddIndividual(result.Graph, code, canonical)
		if err != nil {
			if b.failOnError {
				return nil, &InputError{Code: code, Err: err}
			}
			b.logger.Warn("Skipping unrecordable UCUM code",
				slog.String("code", code),
				slog.String("error", err.Error()))
			result.Skipped = multierror.Append(result.Skipped, &InputError{Code: code, Err: err})
			continue
		}

		if _, seen := result.Subjects[code]; !seen {
			result.Codes = append(result.Codes, code)
		}
		result.Subjects[code] = subject
		result.Canonical[code] = canonical
	}

	return result, nil
}

// Canonicalize converts one code and records the outcome in the metrics.
func (b *Builder) Canonicalize(code string) (*ucum.Canonical, error) {
	start := time.Now()
	canonical, err := b.engine.Canonicalize(code)
	b.metrics.Observe(ucum.Kind(err), time.Since(start))
	return canonical, err
}

// ErrEmptyCode is returned when an individual would carry an empty UCUM_code.
var ErrEmptyCode = errors.New("UCUM code is empty")

// AddIndividual adds the triples describing canonical to graph and returns
// the subject IRI. original is recorded as supplied. Adding a second code
// with the same canonical form only adds its UCUM_code value.
func (b *Builder) AddIndividual(graph *store.TripleStore, original string, canonical *ucum.Canonical) (string, error) {
	if original == "" {
		return "", ErrEmptyCode
	}
	subject := b.vocabulary.Individual(canonical.Code)

	var result *multierror.Error
	add := func(s, p, o string) {
		if err := graph.Add(s, p, o); err != nil {
			result = multierror.Append(result, err)
		}
	}

	add(subject, store.RDFType, store.OWLNamedIndividual)
	add(subject, b.vocabulary.UCUMCode(), original)
	add(subject, b.vocabulary.SICode(), canonical.Code)
	add(subject, store.RDFSLabel, canonical.Code)

	for _, entry := range canonical.Dimensions.Entries() {
		add(subject, b.vocabulary.Exponent(entry.Dimension.Name()),
			store.TypedLiteral(strconv.Itoa(entry.Exponent), store.XSDInteger))

		baseUnit := b.vocabulary.Individual(entry.Dimension.Symbol())
		if b.derivationLinks && baseUnit != subject {
			add(subject, b.vocabulary.DerivedFrom(), baseUnit)
			add(baseUnit, store.RDFType, store.OWLNamedIndividual)
			add(baseUnit, store.RDFSLabel, entry.Dimension.Symbol())
		}
	}

	return subject, result.ErrorOrNil()
}

// BuildIndividual returns a new graph holding the individual for one code.
func BuildIndividual(original string, canonical *ucum.Canonical, base string) (*store.TripleStore, error) {
	builder := &Builder{vocabulary: store.NewVocabulary(base), logger: slog.Default()}
	graph := builder.NewGraph()
	if _, err := builder.AddIndividual(graph, original, canonical); err != nil {
		return nil, err
	}
	return graph, nil
}

// SubjectCode recovers the canonical code from a subject IRI under base.
func SubjectCode(iri, base string) (string, bool) {
	return store.NewVocabulary(base).Code(iri)
}
