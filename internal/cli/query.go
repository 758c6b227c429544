package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/applycrypto/engine/internal/query"
)

var (
	queryTable string
	queryLayer string
	queryFile  string
)

// queryCmd exposes the latest run's table_access_info.json through a
// small set of canned lookups, rather than requiring the caller to grep
// the JSON artifact directly.
var queryCmd = &cobra.Command{
	Use:   "query [project-dir]",
	Short: "Query the latest analysis run's table access info",
	Long: `Load table_access_info.json from the most recent analyze run and
run a canned lookup against it: --table, --layer, or --file. At most
one may be given. With none, lists every table name found.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().StringVar(&queryTable, "table", "", "list every access row for this table")
	queryCmd.Flags().StringVar(&queryLayer, "layer", "", "list every access row for this architectural layer")
	queryCmd.Flags().StringVar(&queryFile, "file", "", "list every table this file is recorded as accessing")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	root, err := resolveProjectArg(args)
	if err != nil {
		return err
	}

	store, err := query.OpenFromArtifact(root)
	if err != nil {
		return fmt.Errorf("open query store: %w", err)
	}
	defer store.Close()

	selected := 0
	for _, v := range []string{queryTable, queryLayer, queryFile} {
		if v != "" {
			selected++
		}
	}
	if selected > 1 {
		return fmt.Errorf("only one of --table, --layer, --file may be given")
	}

	switch {
	case queryTable != "":
		rows, err := store.ByTable(queryTable)
		if err != nil {
			return err
		}
		printRows(rows)
	case queryLayer != "":
		rows, err := store.ByLayer(queryLayer)
		if err != nil {
			return err
		}
		printRows(rows)
	case queryFile != "":
		rows, err := store.ByFile(queryFile)
		if err != nil {
			return err
		}
		printRows(rows)
	default:
		names, err := store.Tables()
		if err != nil {
			return err
		}
		for _, n := range names {
			fmt.Println(n)
		}
	}
	return nil
}

func printRows(rows []query.Row) {
	if len(rows) == 0 {
		fmt.Fprintln(os.Stderr, "no matching rows")
		return
	}
	fmt.Printf("%-20s %-15s %-10s %-12s %s\n", "TABLE", "LAYER", "COLUMN", "QUERY_TYPE", "FILE")
	for _, r := range rows {
		fmt.Printf("%-20s %-15s %-10s %-12s %s\n", r.TableName, r.Layer, r.ColumnName, r.QueryType, r.FilePath)
	}
}
