package cmd

import (
	"github.com/fbz-tec/pgxdump/core/validation"
	"github.com/fbz-tec/pgxdump/internal/logger"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a query against the safety gate without executing it",
	Long: `Run the SQL safety gate standalone: single statement, SELECT only,
no data-modification keywords, bounded length. No database connection
is opened.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sqlText, err := resolveSQL()
		if err != nil {
			return err
		}
		if err := validation.ValidateQuery(sqlText); err != nil {
			return err
		}
		logger.Success("Query passed validation")
		return nil
	},
}

func init() {
	validateCmd.Flags().SortFlags = false
	validateCmd.Flags().StringVarP(&sqlQuery, "sql", "s", "", "SQL query to validate")
	validateCmd.Flags().StringVarP(&sqlFile, "sql-file", "F", "", "Path to a file containing the SQL query")

	validateCmd.MarkFlagsMutuallyExclusive("sql", "sql-file")
	validateCmd.MarkFlagsOneRequired("sql", "sql-file")
}
