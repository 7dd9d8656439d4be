package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ashwinyue/datamimic/internal/model"
	"github.com/ashwinyue/datamimic/internal/service/profiler"
)

func newProfileCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "profile <file.csv>",
		Short: "Print the inferred column profile of a CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}

			p := profiler.Analyze(string(data))
			out := struct {
				RowCount    int                `json:"rowCount"`
				ColumnCount int                `json:"columnCount"`
				Columns     []model.ColumnInfo `json:"columns"`
			}{
				RowCount:    p.RowCount,
				ColumnCount: p.ColumnCount(),
				Columns:     p.Columns,
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
}
