package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/vocabot/internal/config"
	"github.com/example/vocabot/internal/excel"
)

var (
	importSheet    string
	importStartRow int
	importWords    string
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Merge words from an Excel or CSV file into words.json",
	Long: `Import words from an .xlsx or .csv file. Columns A to I hold word,
translation, part of speech, level, prefixes, suffixes, singular/plural,
examples (separated by "|") and synonyms (separated by ",").

Existing entries keep the fields the file leaves empty.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVar(&importSheet, "sheet", "", "sheet to read (default first sheet)")
	importCmd.Flags().IntVar(&importStartRow, "start-row", 2, "first data row, 1-based")
	importCmd.Flags().StringVar(&importWords, "words", "", "words.json to update (default <data_dir>/words.json from --config or DATA_DIR)")
}

func runImport(cmd *cobra.Command, args []string) error {
	appCfg, err := config.Resolve(envFile, configFile)
	if err != nil {
		return err
	}

	wordsPath := importWords
	if wordsPath == "" {
		wordsPath = appCfg.WordsFile()
	}

	cfg := excel.DefaultImportConfig()
	cfg.FilePath = args[0]
	cfg.WordsPath = wordsPath
	cfg.SheetName = importSheet
	cfg.StartRow = importStartRow

	result, err := excel.ImportWords(cfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Processed: %d\nCreated: %d\nUpdated: %d\nSkipped: %d\n",
		result.TotalProcessed, result.Created, result.Updated, result.Skipped)
	for _, e := range result.Errors {
		fmt.Fprintf(out, "  %s\n", e)
	}
	fmt.Fprintf(out, "Saved to %s\n", wordsPath)
	return nil
}
