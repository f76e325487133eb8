package excel

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/example/vocabot/internal/dictionary"
	"github.com/example/vocabot/pkg/models"
)

// ImportConfig defines the import configuration
type ImportConfig struct {
	FilePath             string // Path to the Excel or CSV file
	WordsPath            string // words.json to merge into
	WordColumn           string // Column with the word
	TranslationColumn    string // Column with the translation
	PartOfSpeechColumn   string // Column with the part of speech
	LevelColumn          string // Column with the CEFR level
	PrefixesColumn       string // Column with comma separated prefixes
	SuffixesColumn       string // Column with comma separated suffixes
	SingularPluralColumn string // Column with the singular/plural forms
	ExamplesColumn       string // Column with "|" separated examples
	SynonymsColumn       string // Column with comma separated synonyms
	SheetName            string // Name of the sheet to import, first sheet when empty
	StartRow             int    // The row to start importing from (1-based index)
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		WordColumn:           "A",
		TranslationColumn:    "B",
		PartOfSpeechColumn:   "C",
		LevelColumn:          "D",
		PrefixesColumn:       "E",
		SuffixesColumn:       "F",
		SingularPluralColumn: "G",
		ExamplesColumn:       "H",
		SynonymsColumn:       "I",
		StartRow:             2, // By default, start from the second row (skip header)
	}
}

// ImportResult holds the result of an import operation
type ImportResult struct {
	TotalProcessed int
	Created        int
	Updated        int
	Skipped        int
	Errors         []string
}

// ImportWords imports words from an Excel or CSV file and merges them into config.WordsPath
func ImportWords(config ImportConfig) (*ImportResult, error) {
	if config.WordsPath == "" {
		return nil, fmt.Errorf("words path is required")
	}
	if config.StartRow < 1 {
		config.StartRow = 1
	}

	words, err := dictionary.LoadWords(config.WordsPath)
	if err != nil {
		return nil, err
	}

	var rows [][]string
	if strings.ToLower(filepath.Ext(config.FilePath)) == ".csv" {
		rows, err = readCSV(config.FilePath)
	} else {
		rows, err = readExcel(config.FilePath, config.SheetName)
	}
	if err != nil {
		return nil, err
	}

	index, _ := dictionary.IndexWords(words)
	result := &ImportResult{Errors: make([]string, 0)}
	for i, row := range rows {
		// Skip header rows
		if i < config.StartRow-1 {
			continue
		}
		if isBlank(row) {
			continue
		}

		result.TotalProcessed++
		if err := processRow(row, config, words, index, result); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", i+1, err))
		}
	}

	if result.Created+result.Updated > 0 {
		if err := dictionary.WriteWords(config.WordsPath, words); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// readExcel returns all rows of the sheet
func readExcel(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}
	return rows, nil
}

// readCSV returns all records of a CSV file
func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.LazyQuotes = true

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %w", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// processRow merges one row into words. Rows match existing entries
// case-insensitively; new entries keep the spelling of the sheet.
func processRow(row []string, config ImportConfig, words map[string]models.WordInfo, index map[string]string, result *ImportResult) error {
	cell := func(column string) string {
		if column == "" {
			return ""
		}
		if idx := columnToIndex(column); idx >= 0 && idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	word := cleanWord(cell(config.WordColumn))
	if word == "" {
		return fmt.Errorf("word cannot be empty")
	}

	incoming := models.WordInfo{
		Translation:    cell(config.TranslationColumn),
		PartOfSpeech:   cell(config.PartOfSpeechColumn),
		Level:          strings.ToUpper(cell(config.LevelColumn)),
		Prefixes:       splitList(cell(config.PrefixesColumn), ","),
		Suffixes:       splitList(cell(config.SuffixesColumn), ","),
		SingularPlural: cell(config.SingularPluralColumn),
		Examples:       splitList(cell(config.ExamplesColumn), "|"),
		Synonyms:       splitList(cell(config.SynonymsColumn), ","),
	}

	key, found := index[strings.ToLower(word)]
	if !found {
		if incoming.Translation == "" {
			return fmt.Errorf("translation cannot be empty")
		}
		words[word] = incoming
		index[strings.ToLower(word)] = word
		result.Created++
		return nil
	}

	existing := words[key]
	merged := merge(existing, incoming)
	if reflect.DeepEqual(merged, existing) {
		result.Skipped++
		return nil
	}
	words[key] = merged
	result.Updated++
	return nil
}

// merge overlays the non-empty fields of b onto a
func merge(a, b models.WordInfo) models.WordInfo {
	str := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	list := func(dst *[]string, v []string) {
		if len(v) > 0 {
			*dst = v
		}
	}
	str(&a.Translation, b.Translation)
	str(&a.PartOfSpeech, b.PartOfSpeech)
	str(&a.Level, b.Level)
	str(&a.Definition, b.Definition)
	str(&a.SingularPlural, b.SingularPlural)
	list(&a.Prefixes, b.Prefixes)
	list(&a.Suffixes, b.Suffixes)
	list(&a.Examples, b.Examples)
	list(&a.Synonyms, b.Synonyms)
	return a
}

// cleanWord drops trailing details in parentheses, e.g. "go (went, gone)"
func cleanWord(word string) string {
	if i := strings.Index(word, "("); i > 0 {
		return strings.TrimSpace(word[:i])
	}
	return strings.TrimSpace(word)
}

func splitList(s, sep string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, sep) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// Helper function to convert Excel column letter to index
func columnToIndex(column string) int {
	column = strings.ToUpper(column)
	index := 0
	for i := 0; i < len(column); i++ {
		index = index*26 + int(column[i]-'A'+1)
	}
	return index - 1
}
