/*
Copyright © 2025 Ambor <saltbo@foxmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"compress/gzip"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/eslsoft/kyoshi/internal/adapter/catalog"
	"github.com/eslsoft/kyoshi/internal/infrastructure/config"
)

const (
	exportCurriculumOutputKey = "curriculum.export.output"
	exportCurriculumGzipKey   = "curriculum.export.gzip"
	exportCurriculumDaysKey   = "curriculum.export.days"
)

var exportCurriculumCmd = &cobra.Command{
	Use:   "export-curriculum",
	Short: "Export the curriculum as a YAML stream",
	Long:  "Writes the loaded curriculum as one YAML document per day, suitable for review or re-splitting into a catalog directory.",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		outputPath := viper.GetString(exportCurriculumOutputKey)
		gzipEnabled := viper.GetBool(exportCurriculumGzipKey)
		dayFilter := daysFromConfig(exportCurriculumDaysKey)

		if outputPath == "" {
			outputPath = defaultCurriculumFilename(gzipEnabled)
		}
		if !gzipEnabled && outputPath != "-" && strings.HasSuffix(strings.ToLower(outputPath), ".gz") {
			gzipEnabled = true
		}

		cat, err := catalog.NewFileCatalog(cfg.Catalog.Dir)
		if err != nil {
			return fmt.Errorf("load curriculum: %w", err)
		}

		var (
			writer   = cmd.OutOrStdout()
			closeFns []func() error
		)

		if outputPath != "-" {
			if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
				return fmt.Errorf("create output directory: %w", err)
			}
			file, openErr := os.Create(outputPath)
			if openErr != nil {
				return fmt.Errorf("create export file: %w", openErr)
			}
			writer = file
			closeFns = append(closeFns, file.Close)
		}

		if gzipEnabled {
			gz := gzip.NewWriter(writer)
			writer = gz
			closeFns = append([]func() error{gz.Close}, closeFns...)
		}

		defer func() {
			for _, closer := range closeFns {
				if cerr := closer(); cerr != nil && err == nil {
					err = cerr
				}
			}
		}()

		enc := yaml.NewEncoder(writer)
		enc.SetIndent(2)

		exported := 0
		for _, day := range cat.Days() {
			if len(dayFilter) > 0 && !containsDay(dayFilter, day.DayNumber) {
				continue
			}
			if err := enc.Encode(day); err != nil {
				return fmt.Errorf("encode day %d: %w", day.DayNumber, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "exported day %d: %s\n", day.DayNumber, day.Title)
			exported++
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("flush export: %w", err)
		}

		if outputPath == "-" {
			cmd.Printf("export complete: %d days to stdout\n", exported)
		} else {
			cmd.Printf("export complete: %d days to %s\n", exported, outputPath)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCurriculumCmd)

	exportCurriculumCmd.Flags().StringP("output", "o", "", "export file path, use - for stdout")
	exportCurriculumCmd.Flags().Bool("gzip", false, "gzip the output")
	exportCurriculumCmd.Flags().StringSlice("days", nil, "export only these day numbers, comma separated or repeated")

	bindExportCurriculumConfig()
}

func defaultCurriculumFilename(gzipEnabled bool) string {
	ts := time.Now().UTC().Format("20060102-150405")
	filename := fmt.Sprintf("kyoshi-curriculum-%s.yaml", ts)
	if gzipEnabled {
		filename += ".gz"
	}
	return filename
}

func bindExportCurriculumConfig() {
	bindFlagToViper(exportOutputKey, exportCurriculumCmd.Flags().Lookup("output"))
	bindFlagToViper(exportGzipKey, exportCurriculumCmd.Flags().Lookup("gzip"))
	bindFlagToViper(exportCurriculumDaysKey, exportCurriculumCmd.Flags().Lookup("days"))
}
