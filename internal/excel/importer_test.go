package excel

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/example/vocabot/internal/dictionary"
	"github.com/example/vocabot/pkg/models"
)

func TestColumnToIndex(t *testing.T) {
	assert.Equal(t, 0, columnToIndex("A"))
	assert.Equal(t, 8, columnToIndex("i"))
	assert.Equal(t, 26, columnToIndex("AA"))
}

func TestCleanWord(t *testing.T) {
	assert.Equal(t, "go", cleanWord(" go (went, gone)"))
	assert.Equal(t, "apple", cleanWord("apple "))
}

func writeWorkbook(t *testing.T, path string, rows [][]interface{}) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	require.NoError(t, f.SaveAs(path))
}

func TestImportWords_Excel(t *testing.T) {
	dir := t.TempDir()
	xlsx := filepath.Join(dir, "words.xlsx")
	wordsPath := filepath.Join(dir, "data", "words.json")

	writeWorkbook(t, xlsx, [][]interface{}{
		{"word", "translation", "pos", "level", "prefixes", "suffixes", "singular/plural", "examples", "synonyms"},
		{"Apple", "olma", "noun", "a1", "", "", "apple/apples", "I eat an apple.|Apples are red.", "pome"},
		{"go (went, gone)", "bormoq", "verb", "A1"},
		{"", "bo'sh"},
		{"ghost"},
	})

	cfg := DefaultImportConfig()
	cfg.FilePath = xlsx
	cfg.WordsPath = wordsPath

	result, err := ImportWords(cfg)
	require.NoError(t, err)
	assert.Equal(t, 4, result.TotalProcessed)
	assert.Equal(t, 2, result.Created)
	assert.Len(t, result.Errors, 2)

	words, err := dictionary.LoadWords(wordsPath)
	require.NoError(t, err)
	assert.Equal(t, models.WordInfo{
		Translation:    "olma",
		PartOfSpeech:   "noun",
		Level:          "A1",
		SingularPlural: "apple/apples",
		Examples:       []string{"I eat an apple.", "Apples are red."},
		Synonyms:       []string{"pome"},
	}, words["Apple"])
	assert.Equal(t, "bormoq", words["go"].Translation)
}

func TestImportWords_CSVMergesIntoExisting(t *testing.T) {
	dir := t.TempDir()
	wordsPath := filepath.Join(dir, "words.json")
	require.NoError(t, dictionary.WriteWords(wordsPath, map[string]models.WordInfo{
		"Apple": {Translation: "olma", Level: "A1"},
		"book":  {Translation: "kitob"},
	}))

	csvPath := filepath.Join(dir, "words.csv")
	csv := "word,translation,pos,level\n" +
		"apple,,noun,\n" +
		"book,kitob,,\n" +
		"house,uy,noun,A1\n"
	require.NoError(t, os.WriteFile(csvPath, []byte(csv), 0o644))

	cfg := DefaultImportConfig()
	cfg.FilePath = csvPath
	cfg.WordsPath = wordsPath

	result, err := ImportWords(cfg)
	require.NoError(t, err)
	assert.Equal(t, 3, result.TotalProcessed)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 1, result.Updated)
	assert.Equal(t, 1, result.Skipped)
	assert.Empty(t, result.Errors)

	words, err := dictionary.LoadWords(wordsPath)
	require.NoError(t, err)
	// the existing spelling is kept for matched words
	assert.Equal(t, models.WordInfo{Translation: "olma", Level: "A1", PartOfSpeech: "noun"}, words["Apple"])
	assert.NotContains(t, words, "apple")
	assert.Equal(t, "uy", words["house"].Translation)
}

func TestImportWords_MissingFile(t *testing.T) {
	cfg := DefaultImportConfig()
	cfg.FilePath = filepath.Join(t.TempDir(), "nope.xlsx")
	cfg.WordsPath = filepath.Join(t.TempDir(), "words.json")

	_, err := ImportWords(cfg)
	assert.Error(t, err)
}
