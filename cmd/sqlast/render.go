package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/pthm/sqlast/internal/cli"
	"github.com/pthm/sqlast/pkg/dialect"
)

var (
	renderDialect string
	renderFormat  string
	renderParams  paramFlags
)

var renderCmd = &cobra.Command{
	Use:   "render FILE",
	Short: "Print compiled SQL and bound arguments",
	Long: `Build every statement document in FILE, compile it for the selected dialect,
and print the SQL text. When every keyed parameter has a value, from the
document's params block or from --param/--params, the bound arguments are
printed in placeholder order.`,
	Example: `  # Render for PostgreSQL
  sqlast render queries.yaml

  # Render for SQL Server with a bound parameter
  sqlast render queries.yaml --dialect sqlserver --param status=active

  # Read documents from stdin and print JSON
  cat queries.yaml | sqlast render - --format json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := dialect.Parse(resolveString(renderDialect, cfg.Dialect))
		if err != nil {
			return cli.ConfigError("resolving dialect", err)
		}
		given, err := renderParams.values()
		if err != nil {
			return cli.StatementError("parsing parameters", err)
		}

		docs, err := readDocuments(cmd, args[0])
		if err != nil {
			return cli.StatementError("loading documents", err)
		}
		compiled, err := compileDocuments(docs, d)
		if err != nil {
			return cli.StatementError("compiling", err)
		}
		out, err := renderDocuments(compiled, given)
		if err != nil {
			return cli.StatementError("binding", err)
		}
		logger.Info().Int("documents", len(out)).Str("dialect", d.String()).Msg("rendered")

		format := resolveString(renderFormat, cfg.Render.Format)
		return writeOutput(cmd.OutOrStdout(), format, out, func(w io.Writer) error {
			return writeRenderedText(w, out)
		})
	},
}

func init() {
	renderCmd.Flags().StringVarP(&renderDialect, "dialect", "d", "", "target dialect: postgres or sqlserver (default: config)")
	renderCmd.Flags().StringVarP(&renderFormat, "format", "f", "", "output format: text, json or yaml (default: config)")
	renderParams.register(renderCmd)
}
