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
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	adapterrepo "github.com/eslsoft/kyoshi/internal/adapter/repository"
	"github.com/eslsoft/kyoshi/internal/infrastructure/config"
	"github.com/eslsoft/kyoshi/internal/infrastructure/database"
	"github.com/eslsoft/kyoshi/internal/repository"
)

const (
	exportChatKey   = "progress.export.chat"
	exportOutputKey = "progress.export.output"
	exportGzipKey   = "progress.export.gzip"

	// exportPageSize is the largest page the repositories serve in one call.
	exportPageSize = 500
)

// progressRecord is one NDJSON line of a progress dump.
type progressRecord struct {
	Table string `json:"table"`
	Data  any    `json:"data"`
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a learner's progress as NDJSON",
	Long:  "Dumps a learner's item mastery, word progress, profile and lesson completions as one JSON object per line.",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		ctx := cmd.Context()

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		chatID := viper.GetString(exportChatKey)
		outputPath := viper.GetString(exportOutputKey)
		gzipEnabled := viper.GetBool(exportGzipKey)

		if chatID == "" {
			return fmt.Errorf("--chat is required")
		}
		if outputPath == "" {
			outputPath = defaultProgressFilename(chatID, gzipEnabled)
		}
		if !gzipEnabled && outputPath != "-" && strings.HasSuffix(strings.ToLower(outputPath), ".gz") {
			gzipEnabled = true
		}

		db, cleanup, err := database.NewConnection(cfg)
		if err != nil {
			return fmt.Errorf("db connect: %w", err)
		}
		defer cleanup()

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

		total, err := dumpProgress(ctx, db, chatID, writer)
		if err != nil {
			return err
		}

		if outputPath == "-" {
			cmd.Printf("export complete: %d records to stdout\n", total)
		} else {
			cmd.Printf("export complete: %d records to %s\n", total, outputPath)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringP("chat", "c", "", "chat id whose progress to export")
	exportCmd.Flags().StringP("output", "o", "", "export file path, use - for stdout")
	exportCmd.Flags().Bool("gzip", false, "gzip the output")

	bindExportConfig()
}

func bindExportConfig() {
	bindFlagToViper(exportChatKey, exportCmd.Flags().Lookup("chat"))
	bindFlagToViper(exportOutputKey, exportCmd.Flags().Lookup("output"))
	bindFlagToViper(exportGzipKey, exportCmd.Flags().Lookup("gzip"))
}

func defaultProgressFilename(chatID string, gzipEnabled bool) string {
	ts := time.Now().UTC().Format("20060102-150405")
	filename := fmt.Sprintf("kyoshi-progress-%s-%s.jsonl", chatID, ts)
	if gzipEnabled {
		filename += ".gz"
	}
	return filename
}

// dumpProgress writes every durable record of one learner as NDJSON and
// returns how many lines it wrote.
func dumpProgress(ctx context.Context, db *database.DB, chatID string, w io.Writer) (int, error) {
	enc := json.NewEncoder(w)
	total := 0
	write := func(table string, data any) error {
		if err := enc.Encode(progressRecord{Table: table, Data: data}); err != nil {
			return fmt.Errorf("encode %s record: %w", table, err)
		}
		total++
		return nil
	}

	learners := adapterrepo.NewLearnerRepository(db)
	profile, err := learners.Profile(ctx, chatID)
	if err != nil {
		return total, fmt.Errorf("load profile: %w", err)
	}
	if profile != nil {
		if err := write("learner_profiles", profile); err != nil {
			return total, err
		}
	}

	masteryRepo := adapterrepo.NewMasteryRepository(db)
	for page := (repository.Pagination{PageNo: 1, PageSize: exportPageSize}); ; page.PageNo++ {
		mastery, err := masteryRepo.List(ctx, chatID, page)
		if err != nil {
			return total, fmt.Errorf("load mastery: %w", err)
		}
		for i := range mastery {
			if err := write("item_mastery", &mastery[i]); err != nil {
				return total, err
			}
		}
		if len(mastery) < exportPageSize {
			break
		}
	}

	words, err := adapterrepo.NewWordProgressRepository(db).ListAll(ctx, chatID)
	if err != nil {
		return total, fmt.Errorf("load word progress: %w", err)
	}
	for i := range words {
		if err := write("word_progress", &words[i]); err != nil {
			return total, err
		}
	}

	for page := (repository.Pagination{PageNo: 1, PageSize: exportPageSize}); ; page.PageNo++ {
		completions, err := learners.Completions(ctx, chatID, page)
		if err != nil {
			return total, fmt.Errorf("load completions: %w", err)
		}
		for i := range completions {
			if err := write("lesson_completions", &completions[i]); err != nil {
				return total, err
			}
		}
		if len(completions) < exportPageSize {
			break
		}
	}

	return total, nil
}
