package statement

import (
	"bytes"
	"encoding/json"
	"fmt"

	"sigs.k8s.io/yaml"

	"github.com/pthm/sqlast/pkg/dialect"
	"github.com/pthm/sqlast/pkg/query"
)

// Document describes one statement. Fields that do not apply to the kind
// are ignored.
type Document struct {
	Kind    Kind             `json:"kind"`
	Name    string           `json:"name,omitempty"`
	Dialect *dialect.Dialect `json:"dialect,omitempty"`
	Table   TableSpec        `json:"table"`

	Distinct bool       `json:"distinct,omitempty"`
	Select   []ExprSpec `json:"select,omitempty"`
	Joins    []JoinSpec `json:"joins,omitempty"`
	Where    []ExprSpec `json:"where,omitempty"`
	GroupBy  []ExprSpec `json:"group_by,omitempty"`
	Having   []ExprSpec `json:"having,omitempty"`
	OrderBy  []ExprSpec `json:"order_by,omitempty"`
	Limit    *int       `json:"limit,omitempty"`
	Offset   *int       `json:"offset,omitempty"`

	Columns   []string         `json:"columns,omitempty"`
	Rows      [][]any          `json:"rows,omitempty"`
	NamedRows []map[string]any `json:"named_rows,omitempty"`
	Returning []ExprSpec       `json:"returning,omitempty"`

	Set []SetSpec `json:"set,omitempty"`

	// Params holds default values for keyed parameters.
	Params map[string]any `json:"params,omitempty"`
}

// TableSpec describes a FROM, JOIN or target source. Exactly one of Name,
// Subquery or Unnest is set.
type TableSpec struct {
	Name     string     `json:"name,omitempty"`
	Schema   string     `json:"schema,omitempty"`
	Alias    string     `json:"alias,omitempty"`
	Columns  []string   `json:"columns,omitempty"`
	Subquery *Document  `json:"subquery,omitempty"`
	Unnest   []ExprSpec `json:"unnest,omitempty"`
}

// JoinSpec describes one join.
type JoinSpec struct {
	How   string     `json:"how,omitempty"`
	Table TableSpec  `json:"table"`
	On    []ExprSpec `json:"on,omitempty"`
}

// SetSpec describes one UPDATE assignment.
type SetSpec struct {
	Column string    `json:"column"`
	Value  any       `json:"value,omitempty"`
	Null   bool      `json:"null,omitempty"`
	Param  string    `json:"param,omitempty"`
	Expr   *ExprSpec `json:"expr,omitempty"`
}

// Parse decodes one or more documents separated by "---" lines. YAML and
// JSON are both accepted.
func Parse(data []byte) ([]*Document, error) {
	var docs []*Document
	for i, chunk := range splitDocuments(data) {
		var d Document
		if err := yaml.Unmarshal(chunk, &d, useNumber); err != nil {
			return nil, fmt.Errorf("%w: document %d: %w", ErrInvalidDocument, i+1, err)
		}
		if d.Kind == 0 {
			return nil, fmt.Errorf("%w: document %d has no kind", ErrUnknownKind, i+1)
		}
		d.normalize()
		docs = append(docs, &d)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: no documents", ErrInvalidDocument)
	}
	return docs, nil
}

func useNumber(d *json.Decoder) *json.Decoder {
	d.UseNumber()
	return d
}

func splitDocuments(data []byte) [][]byte {
	var out [][]byte
	for _, chunk := range bytes.Split(data, []byte("\n---")) {
		chunk = bytes.TrimPrefix(bytes.TrimSpace(chunk), []byte("---"))
		if len(bytes.TrimSpace(chunk)) > 0 {
			out = append(out, chunk)
		}
	}
	return out
}

// normalize converts decoded JSON numbers into Go integers or floats.
func (d *Document) normalize() {
	for _, row := range d.Rows {
		for i := range row {
			row[i] = normalizeValue(row[i])
		}
	}
	for _, row := range d.NamedRows {
		for k, v := range row {
			row[k] = normalizeValue(v)
		}
	}
	for k, v := range d.Params {
		d.Params[k] = normalizeValue(v)
	}
	for i := range d.Set {
		d.Set[i].Value = normalizeValue(d.Set[i].Value)
	}
}

// Build constructs the statement described by d. The document's own
// dialect wins over fallback.
func (d *Document) Build(fallback dialect.Dialect) (query.Statement, error) {
	f, ok := factories[d.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, d.Kind)
	}
	o := buildOptions{dialect: fallback}
	if d.Dialect != nil {
		o.dialect = *d.Dialect
	}
	stmt, err := f(d, o)
	if err != nil {
		return nil, err
	}
	return stmt, stmt.Err()
}

// Label returns the document name, or its kind when unnamed.
func (d *Document) Label() string {
	if d.Name != "" {
		return d.Name
	}
	return d.Kind.String()
}
