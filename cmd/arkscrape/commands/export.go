package commands

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"arkscrape/internal/encounter"
	"arkscrape/internal/logsapi"
	"arkscrape/internal/logstore"

	"github.com/spf13/cobra"
)

var (
	exportForm *string
	exportOut  *string
)

func init() {
	exportForm = exportCmd.Flags().String("form", "short", "Projection to export: long or short")
	exportOut = exportCmd.Flags().String("out", "", "Output file (defaults to <cache key>.csv)")
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export BOSS [GATE] [DIFFICULTY]",
	Short: "Exports a stored table as CSV in the long or short projection.",
	Args:  cobra.RangeArgs(1, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		if *exportForm != "long" && *exportForm != "short" {
			return fmt.Errorf("form should be 'long' or 'short', got %q", *exportForm)
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		selections, err := resolveSelections(args)
		if err != nil {
			return err
		}
		if len(selections) != 1 {
			return fmt.Errorf("export takes a single boss, not `all`")
		}
		sel := selections[0]

		f, err := logsapi.NewFilter(sel.Boss, sel.Gate, sel.Difficulty)
		if err != nil {
			return err
		}
		key := f.CacheKey()
		path := logstore.PathFor(cfg.DataDir, key)
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("no stored table for %s (expected %s)", sel, path)
		}
		store, err := logstore.Open(path)
		if err != nil {
			return err
		}
		defer store.Close()

		rows, err := store.Rows(cmd.Context())
		if err != nil {
			return err
		}

		out := *exportOut
		if out == "" {
			out = key + ".csv"
		}
		outFile, err := os.Create(out)
		if err != nil {
			return err
		}
		defer outFile.Close()

		w := csv.NewWriter(outFile)
		if err := writeCSV(w, rows, *exportForm == "short"); err != nil {
			return err
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return err
		}

		slog.Info("exported table", "rows", len(rows), "form", *exportForm, "out", out)
		return nil
	},
}

func writeCSV(w *csv.Writer, rows []encounter.Row, short bool) error {
	if short {
		err := w.Write([]string{
			"id", "name", "spec", "gearScore", "dps", "percent", "timestamp",
			"duration", "isDead", "weird", "arkPassiveActive", "isLocalPlayer", "hasSpec",
		})
		if err != nil {
			return err
		}
		for _, r := range rows {
			s := r.Short()
			err := w.Write([]string{
				strconv.FormatInt(s.ID, 10),
				s.Name,
				s.Spec,
				formatFloat(s.GearScore),
				formatFloat(s.Dps),
				formatFloat(s.Percent),
				strconv.FormatInt(s.Timestamp, 10),
				strconv.FormatInt(s.Duration, 10),
				strconv.FormatBool(s.IsDead),
				strconv.FormatBool(s.Weird),
				strconv.FormatBool(s.ArkPassiveActive),
				strconv.FormatBool(s.IsLocalPlayer),
				strconv.FormatBool(s.HasSpec),
			})
			if err != nil {
				return err
			}
		}
		return nil
	}

	err := w.Write([]string{
		"id", "uploadedAt", "boss", "difficulty", "timestamp", "duration",
		"version", "localPlayer", "region", "totalDamageDealt", "totalDps",
		"minGearScore", "maxGearScore", "name", "class", "spec", "dps",
		"percent", "gearScore", "isDead", "deaths", "arkPassiveActive",
		"weird", "hasSpec",
	})
	if err != nil {
		return err
	}
	for _, r := range rows {
		err := w.Write([]string{
			strconv.FormatInt(r.ID, 10),
			r.UploadedAt.Format("2006-01-02T15:04:05Z07:00"),
			r.Boss,
			r.Difficulty,
			strconv.FormatInt(r.Timestamp, 10),
			strconv.FormatInt(r.Duration, 10),
			r.Version,
			r.LocalPlayer,
			r.Region,
			strconv.FormatInt(r.TotalDamageDealt, 10),
			formatFloat(r.TotalDps),
			formatFloat(r.MinGearScore),
			formatFloat(r.MaxGearScore),
			r.Name,
			r.Class,
			r.Spec,
			formatFloat(r.Dps),
			formatFloat(r.Percent),
			formatFloat(r.GearScore),
			strconv.FormatBool(r.IsDead),
			strconv.Itoa(r.Deaths),
			strconv.FormatBool(r.ArkPassiveActive),
			strconv.FormatBool(r.Weird),
			strconv.FormatBool(r.HasSpec),
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
