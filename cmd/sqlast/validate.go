package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pthm/sqlast/internal/cli"
	"github.com/pthm/sqlast/pkg/dialect"
)

var validateDialects []string

var validateCmd = &cobra.Command{
	Use:   "validate FILE",
	Short: "Check statement documents compile",
	Long: `Build and compile every statement document in FILE for each requested
dialect. Structural problems such as a missing WHERE on UPDATE, HAVING without
GROUP BY, or a join of the same table twice are reported with exit code 3.`,
	Example: `  # Validate against the configured dialect
  sqlast validate queries.yaml

  # Validate against both dialects
  sqlast validate queries.yaml --dialect postgres --dialect sqlserver`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		names := validateDialects
		if len(names) == 0 {
			names = []string{cfg.Dialect}
		}

		docs, err := readDocuments(cmd, args[0])
		if err != nil {
			return cli.StatementError("loading documents", err)
		}

		for _, name := range names {
			d, err := dialect.Parse(name)
			if err != nil {
				return cli.ConfigError("resolving dialect", err)
			}
			compiled, err := compileDocuments(docs, d)
			if err != nil {
				return cli.StatementError(fmt.Sprintf("validating for %s", d), err)
			}
			for _, c := range compiled {
				log := statementLogger(c.doc.Label())
				log.Debug().
					Str("dialect", d.String()).
					Int("placeholders", c.compiled.Placeholders()).
					Strs("keys", c.compiled.Keys()).
					Msg("compiled")
			}
		}

		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "%d statement(s) valid for %v\n", len(docs), names)
		}
		return nil
	},
}

func init() {
	validateCmd.Flags().StringArrayVarP(&validateDialects, "dialect", "d", nil, "dialect to validate against (repeatable, default: config)")
}
