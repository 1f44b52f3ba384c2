package commands

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"bookshelf/cmd/bookshelf/output"
	"bookshelf/pkg/models"
)

var statsYear int

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show dashboard counts and lendings per month",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "/dashboard/stats"
		if statsYear > 0 {
			path += "?year=" + strconv.Itoa(statsYear)
		}

		var s models.DashboardStats
		if _, err := newClient().do(cmd.Context(), http.MethodGet, path, nil, &s); err != nil {
			return fmt.Errorf("stats: %w", err)
		}
		if jsonOut {
			return printJSON(s)
		}

		output.Field("Books", fmt.Sprintf("%d total, %d available, %d lent, %d overdue",
			s.Books.Total, s.Books.Available, s.Books.Lent, s.Books.Overdue))
		output.Field("Lendings", fmt.Sprintf("%d total, %d active, %d overdue",
			s.Lendings.Total, s.Lendings.Active, s.Lendings.Overdue))
		fmt.Println()

		rows := make([][]string, 0, len(s.ChartData.Labels))
		for i, label := range s.ChartData.Labels {
			n := s.ChartData.Values[i]
			rows = append(rows, []string{label, strconv.Itoa(n), strings.Repeat("#", n)})
		}
		return output.Table(os.Stdout, []string{"month", "lent", ""}, rows)
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().IntVar(&statsYear, "year", 0, "calendar year (default current)")
}
