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
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/eslsoft/kyoshi/internal/adapter/catalog"
	"github.com/eslsoft/kyoshi/internal/infrastructure/config"
	"github.com/eslsoft/kyoshi/internal/infrastructure/database"
)

// dbInitCmd creates the progress tables and optionally checks the curriculum
var dbInitCmd = &cobra.Command{
	Use:   "db-init",
	Short: "Create or upgrade the database schema",
	Long:  "Applies the schema migrations for mastery, word progress and learner profiles. Note: go-sqlite3 needs CGO_ENABLED=1 builds. Use --check-catalog to also validate the curriculum directory.",
	RunE: func(cmd *cobra.Command, args []string) error {
		checkCatalog, _ := cmd.Flags().GetBool("check-catalog")

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		db, cleanup, err := database.NewConnection(cfg)
		if err != nil {
			return fmt.Errorf("db connect: %w", err)
		}
		defer cleanup()

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()
		if err := db.Migrate(ctx); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		cmd.Printf("database schema up to date (%s)\n", db.Driver())

		if checkCatalog {
			cat, err := catalog.NewFileCatalog(cfg.Catalog.Dir)
			if err != nil {
				return fmt.Errorf("validate curriculum: %w", err)
			}
			cmd.Printf("curriculum ok: %d days in %s\n", len(cat.Days()), cfg.Catalog.Dir)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dbInitCmd)
	dbInitCmd.Flags().Bool("check-catalog", false, "also validate the configured curriculum directory")
}
