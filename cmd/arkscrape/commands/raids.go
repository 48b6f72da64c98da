package commands

import (
	"fmt"
	"os"
	"strings"

	"arkscrape/internal/raids"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(raidsCmd)
}

var raidsCmd = &cobra.Command{
	Use:   "raids",
	Short: "Prints every boss, gate and difficulty the scraper knows about.",
	Run: func(cmd *cobra.Command, args []string) {
		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Boss", "Gate", "Difficulties", "Encounter names"})

		for _, r := range raids.All() {
			gate := "-"
			difficulties := "-"
			if !r.Guardian() {
				gate = fmt.Sprintf("G%d", r.Gate)
				ds := make([]string, len(r.Difficulties))
				for i, d := range r.Difficulties {
					ds[i] = string(d)
				}
				difficulties = strings.Join(ds, ", ")
			}
			t.AppendRow(table.Row{r.Boss, gate, difficulties, strings.Join(r.Names, "\n")})
		}

		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}
