// Package statement rehydrates query builders from YAML or JSON documents.
//
// A document names its statement kind; a fixed factory table maps each kind
// to the function that builds the corresponding query builder.
package statement

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pthm/sqlast/pkg/query"
)

// Kind identifies the statement a document describes.
type Kind int

const (
	KindSelect Kind = iota + 1
	KindInsert
	KindUpdate
	KindDelete
)

var (
	// ErrUnknownKind is returned for documents with a missing or unknown kind.
	ErrUnknownKind = errors.New("sqlast: unknown statement kind")
	// ErrInvalidDocument wraps every problem found while decoding a document.
	ErrInvalidDocument = errors.New("sqlast: invalid statement document")
)

var kindNames = map[Kind]string{
	KindSelect: "select",
	KindInsert: "insert",
	KindUpdate: "update",
	KindDelete: "delete",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind resolves a kind name, ignoring case.
func ParseKind(name string) (Kind, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, name)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// factory builds the statement for one kind.
type factory func(d *Document, o buildOptions) (query.Statement, error)

// factories is the complete kind table. Nothing registers into it at runtime.
var factories = map[Kind]factory{
	KindSelect: buildSelect,
	KindInsert: buildInsert,
	KindUpdate: buildUpdate,
	KindDelete: buildDelete,
}
