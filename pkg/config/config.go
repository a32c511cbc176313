// Package config provides configuration loading and validation for the ucum
// command.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config represents the complete ucum configuration
type Config struct {
	// BaseIRI is the namespace of generated individuals and unit predicates.
	// It must end in '/' or '#'.
	BaseIRI string `yaml:"base_iri" validate:"required,url,namespace"`
	// FailOnError aborts a batch on the first invalid code.
	FailOnError bool `yaml:"fail_on_error"`
	// DerivationLinks adds units:derivedFrom links to SI base units.
	DerivationLinks bool `yaml:"derivation_links"`
	// Format is the default export format.
	Format string `yaml:"format" validate:"required,oneof=turtle ttl jsonld json-ld ntriples nt rdfxml xml rdf dot"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" validate:"required,oneof=debug info warn error"`
	// MaxDepth bounds derived-unit resolution chains.
	MaxDepth int `yaml:"max_depth" validate:"min=1,max=1024"`
	// TablesDir holds user unit tables overlaid onto the embedded table.
	TablesDir string `yaml:"tables_dir"`
	// MetricsFile, when set, receives conversion metrics in the Prometheus
	// text format after each run.
	MetricsFile string `yaml:"metrics_file"`
}

// DefaultConfig returns a Config with the documented defaults
func DefaultConfig() *Config {
	return &Config{
		BaseIRI:         "https://w3id.org/units/",
		FailOnError:     true,
		DerivationLinks: false,
		Format:          "turtle",
		LogLevel:        "info",
		MaxDepth:        32,
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// namespace: the IRI ends where a local name can be appended.
	v.RegisterValidation("namespace", func(level validator.FieldLevel) bool {
		value := level.Field().String()
		return strings.HasSuffix(value, "/") || strings.HasSuffix(value, "#")
	})
	return v
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("validating config: %w", err)
	}

	messages := make([]string, 0, len(validationErrors))
	for _, fieldError := range validationErrors {
		messages = append(messages, describe(fieldError))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(messages, "; "))
}

func describe(fieldError validator.FieldError) string {
	switch fieldError.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fieldError.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", fieldError.Field(), fieldError.Param(), fmt.Sprint(fieldError.Value()))
	case "min", "max":
		return fmt.Sprintf("%s must be %s %s, got %v", fieldError.Field(), map[string]string{"min": ">=", "max": "<="}[fieldError.Tag()], fieldError.Param(), fieldError.Value())
	case "url":
		return fmt.Sprintf("%s must be an absolute IRI, got %q", fieldError.Field(), fmt.Sprint(fieldError.Value()))
	case "namespace":
		return fmt.Sprintf("%s must end in '/' or '#', got %q", fieldError.Field(), fmt.Sprint(fieldError.Value()))
	default:
		return fmt.Sprintf("%s failed %q validation", fieldError.Field(), fieldError.Tag())
	}
}

// LoadFromFile loads configuration from a YAML file on top of the defaults
func LoadFromFile(path string) (*Config, error) {
	config := DefaultConfig()
	if err := config.overlayFile(path); err != nil {
		return nil, err
	}
	return config, nil
}

// overlayFile decodes path onto c. Keys absent from the file keep their
// current values.
func (c *Config) overlayFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
