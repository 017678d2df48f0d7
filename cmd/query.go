package cmd

import (
	"fmt"

	"github.com/fbz-tec/pgxdump/internal/logger"
	"github.com/spf13/cobra"
)

var (
	sqlQuery   string
	sqlFile    string
	exportName string
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Export the result of a custom SELECT query",
	Long: `Run a caller-supplied SELECT and stream its result set into split
output files. The query must pass the read-only safety gate: single
statement, SELECT only, no data-modification keywords.

The statement timeout for custom queries is double the configured base
timeout, since ad-hoc queries tend to be heavier than table scans.`,
	RunE: runQueryExport,
}

func init() {
	queryCmd.Flags().SortFlags = false
	queryCmd.Flags().StringVarP(&sqlQuery, "sql", "s", "", "SQL SELECT query to execute")
	queryCmd.Flags().StringVarP(&sqlFile, "sql-file", "F", "", "Path to a file containing the SQL SELECT query")
	queryCmd.Flags().StringVarP(&exportName, "name", "N", "", "Export name used in generated filenames (required)")

	queryCmd.MarkFlagsMutuallyExclusive("sql", "sql-file")
	queryCmd.MarkFlagsOneRequired("sql", "sql-file")
	_ = queryCmd.MarkFlagRequired("name")
}

func runQueryExport(cmd *cobra.Command, args []string) error {
	sqlText, err := resolveSQL()
	if err != nil {
		return err
	}

	cfg, err := loadExportConfig()
	if err != nil {
		return err
	}

	svc, store, err := newService(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			logger.Warn("Error closing database connection: %v", cerr)
		}
	}()

	res, err := svc.ExportCustomQuery(cmd.Context(), sqlText, exportName)
	if err != nil {
		return err
	}

	reportResult(res)
	return nil
}

func resolveSQL() (string, error) {
	if sqlFile != "" {
		content, err := readSQLFromFile(sqlFile)
		if err != nil {
			return "", fmt.Errorf("failed to read SQL file %s: %w", sqlFile, err)
		}
		return content, nil
	}
	return sqlQuery, nil
}
