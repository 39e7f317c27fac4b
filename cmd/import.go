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
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/eslsoft/kyoshi/internal/adapter/catalog"
	"github.com/eslsoft/kyoshi/internal/infrastructure/config"
)

const (
	importInputKey = "curriculum.import.input"
	importForceKey = "curriculum.import.force"
)

var importCmd = &cobra.Command{
	Use:   "import-curriculum",
	Short: "Validate and install a curriculum directory",
	Long:  "Loads every day file in the source directory, rejects the set if any file is malformed and only then copies it into the configured catalog directory.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		inputDir := viper.GetString(importInputKey)
		force := viper.GetBool(importForceKey)
		if inputDir == "" {
			return fmt.Errorf("--input is required")
		}

		// Validation before any copy: a half-installed curriculum is worse
		// than a rejected one.
		src, err := catalog.NewFileCatalog(inputDir)
		if err != nil {
			return fmt.Errorf("validate curriculum: %w", err)
		}
		if len(src.Days()) == 0 {
			return fmt.Errorf("no day files found in %s", inputDir)
		}

		copied, err := installCurriculum(inputDir, cfg.Catalog.Dir, force)
		if err != nil {
			return err
		}

		cmd.Printf("imported %d days (%d files) into %s\n", len(src.Days()), copied, cfg.Catalog.Dir)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringP("input", "i", "", "source curriculum directory")
	importCmd.Flags().Bool("force", false, "overwrite files already present in the catalog directory")

	bindImportConfig()
}

func bindImportConfig() {
	bindFlagToViper(importInputKey, importCmd.Flags().Lookup("input"))
	bindFlagToViper(importForceKey, importCmd.Flags().Lookup("force"))
}

// installCurriculum copies the recognized curriculum files from srcDir into
// dstDir and returns how many were written.
func installCurriculum(srcDir, dstDir string, force bool) (int, error) {
	names, err := curriculumFiles(srcDir)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return 0, fmt.Errorf("create catalog directory: %w", err)
	}

	copied := 0
	for _, name := range names {
		dst := filepath.Join(dstDir, name)
		if !force {
			if _, err := os.Stat(dst); err == nil {
				return copied, fmt.Errorf("%s already exists, use --force to overwrite", dst)
			}
		}
		if err := copyFile(filepath.Join(srcDir, name), dst); err != nil {
			return copied, err
		}
		copied++
	}
	return copied, nil
}

// curriculumFiles lists the base names a catalog directory is built from:
// every day_*.yaml plus lessons.yaml and words.yaml when present.
func curriculumFiles(dir string) ([]string, error) {
	dayFiles, err := filepath.Glob(filepath.Join(dir, "day_*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("list day files: %w", err)
	}
	names := make([]string, 0, len(dayFiles)+2)
	for _, path := range dayFiles {
		names = append(names, filepath.Base(path))
	}
	for _, optional := range []string{"lessons.yaml", "words.yaml"} {
		if _, err := os.Stat(filepath.Join(dir, optional)); err == nil {
			names = append(names, optional)
		}
	}
	return names, nil
}

func copyFile(src, dst string) (err error) {
	in, err := os.Open(filepath.Clean(src))
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy %s: %w", src, err)
	}
	return nil
}
