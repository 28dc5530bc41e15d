// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// DotEnv represents a Source backed by an environment definition
// file (e.g. ".env"). The file's variables are exported to the
// current process environment, in addition to being applied to the
// config store, so components which read their settings directly
// from environment variables (e.g. OTLP exporters) observe them too.
type DotEnv struct {
	path string
}

// FromDotEnv returns a Source which will apply its config from
// the environment definition file at the given path.
func FromDotEnv(path string) DotEnv {
	return DotEnv{path: path}
}

// DotEnvError occurs if the environment definition file can not
// be read or parsed.
type DotEnvError struct {
	Path  string
	Cause error
}

// Error implements the error interface.
func (e DotEnvError) Error() string {
	return fmt.Sprintf("failed to load environment file %q: %s", e.Path, e.Cause)
}

// Unwrap implements the implicit interface used by errors.Is and errors.As.
func (e DotEnvError) Unwrap() error {
	return e.Cause
}

// Apply implements the Source interface.
func (src DotEnv) Apply(store Store) error {
	vars, err := godotenv.Read(src.path)
	if err != nil {
		return DotEnvError{Path: src.path, Cause: err}
	}

	m := make(Map, len(vars))
	for k, v := range vars {
		// Values already present in the process environment win,
		// matching godotenv.Load semantics.
		if _, ok := os.LookupEnv(k); !ok {
			err = os.Setenv(k, v)
			if err != nil {
				return DotEnvError{Path: src.path, Cause: err}
			}
		}
		m[k] = v
	}
	return m.Apply(store)
}
