package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/pthm/sqlast/pkg/dialect"
	"github.com/pthm/sqlast/pkg/query"
	"github.com/pthm/sqlast/pkg/statement"
)

// paramFlags holds the parameter flags shared by render and exec.
type paramFlags struct {
	assignments []string
	json        string
}

func (p *paramFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&p.assignments, "param", "p", nil, "bind a keyed parameter (key=value, repeatable)")
	cmd.Flags().StringVar(&p.json, "params", "", "bind keyed parameters from a JSON object")
}

// values merges JSON parameters with key=value assignments; assignments win.
func (p *paramFlags) values() (map[string]any, error) {
	var fromJSON map[string]any
	if p.json != "" {
		var err error
		if fromJSON, err = statement.ParseParamsJSON([]byte(p.json)); err != nil {
			return nil, err
		}
	}
	fromFlags, err := statement.ParseAssignments(p.assignments)
	if err != nil {
		return nil, err
	}
	return statement.MergeParams(fromJSON, fromFlags), nil
}

// readDocuments loads statement documents from path, or stdin for "-".
func readDocuments(cmd *cobra.Command, path string) ([]*statement.Document, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return statement.Parse(data)
}

// compiledDocument is one document built and compiled for a dialect.
type compiledDocument struct {
	doc      *statement.Document
	stmt     query.Statement
	compiled *query.Compiled
}

func compileDocuments(docs []*statement.Document, d dialect.Dialect) ([]compiledDocument, error) {
	out := make([]compiledDocument, 0, len(docs))
	for _, doc := range docs {
		stmt, err := doc.Build(d)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", doc.Label(), err)
		}
		c, err := stmt.Compile()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", doc.Label(), err)
		}
		out = append(out, compiledDocument{doc: doc, stmt: stmt, compiled: c})
	}
	return out, nil
}

// paramsFor picks the values a compiled document expects: the document's
// own defaults overlaid with the command-line values.
func (c compiledDocument) paramsFor(given map[string]any) (map[string]any, []string) {
	all := statement.MergeParams(c.doc.Params, given)
	keys := c.compiled.Keys()
	picked := make(map[string]any, len(keys))
	var missing []string
	for _, k := range keys {
		v, ok := all[k]
		if !ok {
			missing = append(missing, k)
			continue
		}
		picked[k] = v
	}
	return picked, missing
}

// rendered is the printable form of one compiled document.
type rendered struct {
	Name    string   `json:"name"`
	Kind    string   `json:"kind"`
	Dialect string   `json:"dialect"`
	SQL     string   `json:"sql"`
	Keys    []string `json:"keys,omitempty"`
	Args    []any    `json:"args,omitempty"`
	Unbound []string `json:"unbound,omitempty"`
}

func renderDocuments(docs []compiledDocument, given map[string]any) ([]rendered, error) {
	out := make([]rendered, 0, len(docs))
	for _, c := range docs {
		r := rendered{
			Name:    c.doc.Label(),
			Kind:    c.doc.Kind.String(),
			Dialect: c.compiled.Dialect.String(),
			SQL:     c.compiled.SQL,
			Keys:    c.compiled.Keys(),
		}
		params, missing := c.paramsFor(given)
		if len(missing) > 0 {
			r.Unbound = missing
		} else {
			args, err := c.compiled.Params(params)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", r.Name, err)
			}
			r.Args = args
		}
		out = append(out, r)
	}
	return out, nil
}

// writeOutput prints v as JSON or YAML, or calls text for the text format.
func writeOutput(w io.Writer, format string, v any, text func(io.Writer) error) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		out, err := yaml.Marshal(v)
		if err != nil {
			return err
		}
		_, err = w.Write(out)
		return err
	default:
		return text(w)
	}
}

func writeRenderedText(w io.Writer, rs []rendered) error {
	for i, r := range rs {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "-- %s (%s, %s)\n%s;\n", r.Name, r.Kind, r.Dialect, r.SQL)
		switch {
		case len(r.Unbound) > 0:
			fmt.Fprintf(w, "-- unbound: %v\n", r.Unbound)
		case len(r.Args) > 0:
			fmt.Fprintf(w, "-- args: %s\n", formatArgs(r.Args))
		}
	}
	return nil
}

func formatArgs(args []any) string {
	parts := make([]string, len(args))
	for i, a := range args {
		switch v := a.(type) {
		case nil:
			parts[i] = "NULL"
		case string:
			parts[i] = fmt.Sprintf("%q", v)
		default:
			parts[i] = fmt.Sprint(v)
		}
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
