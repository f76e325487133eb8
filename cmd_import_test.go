package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/vocabot/internal/dictionary"
)

func TestImportCommand_UsesConfigDataDir(t *testing.T) {
	dir := t.TempDir()
	dataDir := filepath.Join(dir, "data")
	cfgPath := filepath.Join(dir, "vocabot.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(fmt.Sprintf("data_dir: %q\n", dataDir)), 0o644))
	csvPath := filepath.Join(dir, "words.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("word,translation\napple,olma\n"), 0o644))

	for _, k := range []string{"DATA_DIR", "VOCABOT_CONFIG", "PORT"} {
		t.Setenv(k, "")
	}
	t.Cleanup(func() {
		envFile, configFile, importWords = ".env", "", ""
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
	})

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"import", csvPath, "--config", cfgPath, "--env-file", ""})
	require.NoError(t, rootCmd.Execute())

	wordsPath := filepath.Join(dataDir, "words.json")
	words, err := dictionary.LoadWords(wordsPath)
	require.NoError(t, err)
	assert.Equal(t, "olma", words["apple"].Translation)
	assert.Contains(t, out.String(), "Created: 1")
	assert.Contains(t, out.String(), wordsPath)
}
