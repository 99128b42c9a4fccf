package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/pthm/sqlast/internal/cli"
	"github.com/pthm/sqlast/pkg/dbexec"
	"github.com/pthm/sqlast/pkg/dialect"
	"github.com/pthm/sqlast/pkg/statement"
)

var (
	execDB     string
	execFormat string
	execDryRun bool
	execParams paramFlags
)

var execCmd = &cobra.Command{
	Use:   "exec FILE",
	Short: "Run statement documents against PostgreSQL",
	Long: `Compile every statement document in FILE for PostgreSQL, bind its keyed
parameters, and run it against the configured database. Statements run in
document order; the first failure stops the run.

Documents that pin another dialect are rejected.`,
	Example: `  # Run with the configured database
  sqlast exec queries.yaml --param user_id=42

  # Run with an explicit connection string and JSON parameters
  sqlast exec queries.yaml --db postgres://localhost/app --params '{"status":"active"}'

  # Show what would run
  sqlast exec queries.yaml --dry-run`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		given, err := execParams.values()
		if err != nil {
			return cli.StatementError("parsing parameters", err)
		}
		docs, err := readDocuments(cmd, args[0])
		if err != nil {
			return cli.StatementError("loading documents", err)
		}
		compiled, err := compileDocuments(docs, dialect.Postgres)
		if err != nil {
			return cli.StatementError("compiling", err)
		}

		if execDryRun {
			out, err := renderDocuments(compiled, given)
			if err != nil {
				return cli.StatementError("binding", err)
			}
			return writeOutput(cmd.OutOrStdout(), resolveString(execFormat, cfg.Render.Format), out, func(w io.Writer) error {
				return writeRenderedText(w, out)
			})
		}

		dsn := execDB
		if dsn == "" {
			dsn, err = cfg.DSN()
			if err != nil {
				return cli.ConfigError("resolving database connection", err)
			}
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		db, err := dbexec.Open(ctx, cfg.Database.Driver, dsn)
		if err != nil {
			return cli.DatabaseError("connecting to database", err)
		}
		defer func() { _ = db.Close() }()

		results, err := runDocuments(ctx, dbexec.NewRunner(db, dbexec.WithLogger(logger)), compiled, given)
		if err != nil {
			return err
		}
		return writeOutput(cmd.OutOrStdout(), resolveString(execFormat, cfg.Render.Format), results, func(w io.Writer) error {
			return writeResultsText(w, results)
		})
	},
}

// execResult pairs a document label with its outcome.
type execResult struct {
	Name string `json:"name"`
	*dbexec.Result
}

func runDocuments(ctx context.Context, r *dbexec.Runner, docs []compiledDocument, given map[string]any) ([]execResult, error) {
	out := make([]execResult, 0, len(docs))
	for _, c := range docs {
		name := c.doc.Label()
		params, missing := c.paramsFor(given)
		if len(missing) > 0 {
			return out, cli.StatementError(name, fmt.Errorf("%w: no value for %v", statement.ErrInvalidDocument, missing))
		}
		res, err := r.Run(ctx, c.stmt, params)
		if err != nil {
			if dbexec.IsDatabaseError(err) {
				return out, cli.DatabaseError(name, err)
			}
			return out, cli.StatementError(name, err)
		}
		log := statementLogger(name)
		log.Info().Int64("rows_affected", res.RowsAffected).Msg("executed")
		out = append(out, execResult{Name: name, Result: res})
	}
	return out, nil
}

func writeResultsText(w io.Writer, results []execResult) error {
	for i, r := range results {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "-- %s: %d row(s)\n", r.Name, r.RowsAffected)
		for _, row := range r.Rows {
			for j, col := range r.Columns {
				if j > 0 {
					fmt.Fprint(w, "\t")
				}
				fmt.Fprintf(w, "%s=%v", col, row[col])
			}
			fmt.Fprintln(w)
		}
	}
	return nil
}

func init() {
	execCmd.Flags().StringVar(&execDB, "db", "", "database URL (default: config)")
	execCmd.Flags().StringVarP(&execFormat, "format", "f", "", "output format: text, json or yaml (default: config)")
	execCmd.Flags().BoolVar(&execDryRun, "dry-run", false, "print the SQL and arguments without connecting")
	execParams.register(execCmd)
}
