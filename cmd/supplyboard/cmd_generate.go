package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/laiyunwu/casestudy12/internal/dataset"
)

var generateFlags struct {
	out  string
	xlsx bool
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write example datasets for both cases",
	Long: `Writes the generated datasets the server falls back to as example
files: case1_example (historical sales) and case2_example (supply and
demand tables). Use them as upload templates or as seeds for your own
data.`,
	RunE: runGenerate,
}

func init() {
	f := generateCmd.Flags()
	f.StringVar(&generateFlags.out, "out", ".", "Output directory")
	f.BoolVar(&generateFlags.xlsx, "xlsx", false, "Also write XLSX workbooks")
}

type datasetFile struct {
	name  string
	write func(io.Writer) error
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	case1 := dataset.MockCase1()
	case2 := dataset.MockCase2()

	files := []datasetFile{
		{"case1_example.csv", func(w io.Writer) error { return dataset.WriteCase1CSV(w, case1) }},
		{"case2_example.csv", func(w io.Writer) error { return dataset.WriteCase2CSV(w, case2) }},
	}
	if generateFlags.xlsx {
		files = append(files,
			datasetFile{"case1_example.xlsx", func(w io.Writer) error { return dataset.WriteCase1XLSX(w, case1) }},
			datasetFile{"case2_example.xlsx", func(w io.Writer) error { return dataset.WriteCase2XLSX(w, case2) }},
		)
	}

	for _, file := range files {
		path := filepath.Join(generateFlags.out, file.name)
		if err := writeDatasetFile(path, file.write); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "wrote", path)
	}
	return nil
}

func writeDatasetFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close() // nolint:errcheck
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
