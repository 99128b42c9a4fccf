package query

import (
	"slices"
	"strings"

	"github.com/pthm/sqlast/pkg/dialect"
)

// Statement is a builder that compiles to a complete SQL statement.
type Statement interface {
	Term
	Compile() (*Compiled, error)
	Err() error
}

// Compiled is the immutable result of compiling a statement: the SQL text
// and the order in which bound values must be passed to the driver. It may
// be bound any number of times and from several goroutines.
type Compiled struct {
	SQL     string
	Dialect dialect.Dialect

	slots      []slot
	keys       []string
	positional int
}

type slot struct {
	named bool
	key   string
	pos   int
}

// String returns the SQL text.
func (c *Compiled) String() string { return c.SQL }

// Placeholders returns the number of placeholder slots in the SQL text.
func (c *Compiled) Placeholders() int { return len(c.slots) }

// Keys returns the keyed parameters the statement expects, sorted.
func (c *Compiled) Keys() []string { return slices.Clone(c.keys) }

// Positional returns the number of positional values the statement expects.
func (c *Compiled) Positional() int { return c.positional }

// Params binds keyed values. The key set must match Keys exactly.
func (c *Compiled) Params(values map[string]any) ([]any, error) {
	return c.Bind(values)
}

// BoundValues binds positional values given in registration order.
func (c *Compiled) BoundValues(values ...any) ([]any, error) {
	return c.Bind(nil, values...)
}

// Bind returns the driver arguments for the statement, one per placeholder
// slot, in the order the SQL text references them.
func (c *Compiled) Bind(named map[string]any, positional ...any) ([]any, error) {
	var missing, unexpected []string
	for _, k := range c.keys {
		if _, ok := named[k]; !ok {
			missing = append(missing, k)
		}
	}
	for k := range named {
		if _, ok := slices.BinarySearch(c.keys, k); !ok {
			unexpected = append(unexpected, k)
		}
	}
	if len(missing) > 0 || len(unexpected) > 0 {
		slices.Sort(unexpected)
		return nil, newError(ErrParamMismatch, "missing [%s], unexpected [%s]",
			strings.Join(missing, ", "), strings.Join(unexpected, ", "))
	}
	if len(positional) != c.positional {
		return nil, newError(ErrParamMismatch, "expected %d positional values, got %d",
			c.positional, len(positional))
	}

	args := make([]any, len(c.slots))
	for i, s := range c.slots {
		if s.named {
			args[i] = named[s.key]
		} else {
			args[i] = positional[s.pos]
		}
	}
	return args, nil
}

// CompileTerm renders a standalone term.
func CompileTerm(t Term, d dialect.Dialect) (*Compiled, error) {
	return compile(t, d, nil)
}

func compile(t Term, d dialect.Dialect, own *binders) (*Compiled, error) {
	if err := errOf(t); err != nil {
		return nil, err
	}
	w := newWriter(d)
	if own != nil {
		own.register(w)
	}
	w.WriteTerm(t)
	if w.err != nil {
		return nil, w.err
	}

	offsets := make(map[*ParameterList]int, len(w.lists))
	total := 0
	for _, l := range w.lists {
		offsets[l] = total
		total += l.n
	}

	c := &Compiled{
		SQL:        w.String(),
		Dialect:    d,
		slots:      make([]slot, len(w.slots)),
		positional: total,
	}
	for i, k := range w.slots {
		if k.list == nil {
			c.slots[i] = slot{named: true, key: k.key}
		} else {
			c.slots[i] = slot{pos: offsets[k.list] + k.index}
		}
	}
	for k := range w.keys {
		c.keys = append(c.keys, k)
	}
	slices.Sort(c.keys)
	return c, nil
}
