// Package kv holds the flat KEY=VALUE configuration that declares tracked
// dependencies.
//
// The input files are written so they stay parsable by POSIX sh, make, ini
// and TOML at the same time:
//
//	HYPER_GH_PROJECT="hyperium/hyper"
//	HYPER_GH_TAG_PREFIX="v"
//	HYPER_GH_VERSION_REQ=">=0.14, <1"
//	HYPER_GH_VERSION="0.14.26"
//
// Parsing goes through the TOML decoder, so quoting and duplicate-key rules
// are TOML's. Values are read back through typed accessors that tell a
// missing key apart from a value of the wrong type.
package kv

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/BurntSushi/toml"

	apperr "github.com/bjoernmichaelsen/ghdepup/pkg/errors"
)

var (
	// ErrMissingKey is returned when a key is not present in the store.
	ErrMissingKey = errors.New("missing key")

	// ErrWrongType is matched by every *TypeError.
	ErrWrongType = errors.New("wrong type")
)

// TypeError reports a key whose value has an unexpected type.
type TypeError struct {
	Key  string
	Want string
	Got  any
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("key %s: want %s, got %T", e.Key, e.Want, e.Got)
}

// Is makes errors.Is(err, ErrWrongType) true for every *TypeError.
func (e *TypeError) Is(target error) bool { return target == ErrWrongType }

// Store is a read-only view over decoded configuration values.
type Store struct {
	values map[string]any
}

// New wraps values in a Store. The map is copied.
func New(values map[string]any) Store {
	m := make(map[string]any, len(values))
	for k, v := range values {
		m[k] = v
	}
	return Store{values: m}
}

// Parse decodes flat configuration text.
func Parse(data []byte) (Store, error) {
	if !utf8.Valid(data) {
		return Store{}, apperr.New(apperr.ErrCodeInvalidEncoding, "config is not valid utf8")
	}
	values := make(map[string]any)
	if _, err := toml.Decode(string(data), &values); err != nil {
		return Store{}, apperr.Wrap(apperr.ErrCodeInvalidConfig, err, "config can't be parsed")
	}
	return Store{values: values}, nil
}

// ReadFiles reads every path, joins the contents with newlines and parses
// the result as one document.
func ReadFiles(paths ...string) (Store, error) {
	var buf []byte
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return Store{}, apperr.Wrap(apperr.ErrCodeReadConfig, err, "error reading config file %s", p)
		}
		buf = append(buf, data...)
		buf = append(buf, '\n')
	}
	return Parse(buf)
}

// Len returns the number of keys.
func (s Store) Len() int { return len(s.values) }

// Has reports whether key is present.
func (s Store) Has(key string) bool {
	_, ok := s.values[key]
	return ok
}

// String returns the string value of key.
// The error is ErrMissingKey or a *TypeError.
func (s Store) String(key string) (string, error) {
	v, ok := s.values[key]
	if !ok {
		return "", fmt.Errorf("key %s: %w", key, ErrMissingKey)
	}
	str, ok := v.(string)
	if !ok {
		return "", &TypeError{Key: key, Want: "string", Got: v}
	}
	return str, nil
}

// StringOr returns the string value of key, or def when the key is missing
// or not a string.
func (s Store) StringOr(key, def string) string {
	if v, err := s.String(key); err == nil {
		return v
	}
	return def
}

// Keys returns all keys in sorted order.
func (s Store) Keys() []string {
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// KeysWithSuffix returns the sorted keys ending in suffix.
func (s Store) KeysWithSuffix(suffix string) []string {
	var keys []string
	for _, k := range s.Keys() {
		if strings.HasSuffix(k, suffix) {
			keys = append(keys, k)
		}
	}
	return keys
}
