package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// defaultEnvFile is read when no files are given explicitly. A missing default
// file is not an error.
const defaultEnvFile = ".env"

// Option configures a single Load call.
type Option func(*options)

type options struct {
	files    []string
	prefix   string
	environ  map[string]string
	required bool
}

// WithEnvFiles reads the given dotenv files instead of the default ".env".
// Unlike the default file, explicitly listed files must exist.
func WithEnvFiles(files ...string) Option {
	return func(o *options) {
		o.files = append(o.files, files...)
	}
}

// WithPrefix prepends prefix to every env tag of the target struct.
func WithPrefix(prefix string) Option {
	return func(o *options) {
		o.prefix = prefix
	}
}

// WithEnvironment replaces the process environment as the source of values.
// Intended for tests and for embedding the loader in tools.
func WithEnvironment(environ map[string]string) Option {
	return func(o *options) {
		o.environ = environ
	}
}

// WithRequiredIfNoDefault makes every field without envDefault required.
func WithRequiredIfNoDefault() Option {
	return func(o *options) {
		o.required = true
	}
}

// Load parses configuration of type T from the environment and returns it by value.
//
// Values from dotenv files never override variables already present in the
// process environment, and the process environment itself is left untouched:
// file values are merged into the lookup map handed to the parser.
//
// Example:
//
//	type StorageConfig struct {
//		Root  string   `env:"DOC_LOCATION_STORE" envDefault:"./assets/docs"`
//		Types []string `env:"FILE_TYPES" envDefault:".pdf,.txt" envSeparator:","`
//	}
//
//	cfg, err := config.Load[StorageConfig]()
func Load[T any](opts ...Option) (T, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	environ := o.environ
	if environ == nil {
		environ = toMap(os.Environ())
	}

	fileValues, err := readEnvFiles(o.files)
	if err != nil {
		var zero T
		return zero, err
	}
	merged := make(map[string]string, len(environ)+len(fileValues))
	for k, v := range fileValues {
		merged[k] = v
	}
	for k, v := range environ {
		merged[k] = v
	}

	cfg, err := env.ParseAsWithOptions[T](env.Options{
		Environment:     merged,
		Prefix:          o.prefix,
		RequiredIfNoDef: o.required,
	})
	if err != nil {
		var zero T
		return zero, errors.Join(ErrParsingConfig, err)
	}

	return cfg, nil
}

// MustLoad works like Load but panics if configuration loading fails.
// This is useful for configurations that are required for the application to start.
func MustLoad[T any](opts ...Option) T {
	cfg, err := Load[T](opts...)
	if err != nil {
		panic(fmt.Sprintf("Failed to load required configuration: %v", err))
	}
	return cfg
}

func readEnvFiles(files []string) (map[string]string, error) {
	if len(files) == 0 {
		values, err := godotenv.Read(defaultEnvFile)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, nil
			}
			return nil, fmt.Errorf("%w: %s: %v", ErrReadingEnvFile, defaultEnvFile, err)
		}
		return values, nil
	}

	values, err := godotenv.Read(files...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadingEnvFile, err)
	}
	return values, nil
}

func toMap(environ []string) map[string]string {
	m := make(map[string]string, len(environ))
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		m[k] = v
	}
	return m
}
