package cmd

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hazemfarra/argus/internal/records"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show record and embedding counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		eng, database, err := openEngine(context.Background(), cfg, false)
		if err != nil {
			return err
		}
		defer database.Close()

		st := eng.Status()
		fmt.Printf("Database:  %s\n", cfg.DBPath)
		fmt.Printf("Index:     %s\n", cfg.Index)
		fmt.Printf("Records:   %d\n", st.RecordCount)
		fmt.Printf("Embedded:  %d\n", st.VectorCount)
		if st.VectorCount < st.RecordCount {
			fmt.Printf("           %d record(s) pending embedding; they will be retried on the next refresh\n",
				st.RecordCount-st.VectorCount)
		}

		if len(st.Kinds) > 0 {
			kinds := make([]string, 0, len(st.Kinds))
			for k := range st.Kinds {
				kinds = append(kinds, string(k))
			}
			sort.Strings(kinds)
			fmt.Println("By kind:")
			for _, k := range kinds {
				fmt.Printf("  %-20s %d\n", k, st.Kinds[records.Kind(k)])
			}
		}
		if len(st.Owners) > 0 {
			fmt.Printf("Owners:    %s\n", strings.Join(st.Owners, ", "))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
