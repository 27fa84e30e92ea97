package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"linehistory/csv"
)

// resetFlags puts every flag of cmd and its children back to its default so
// tests do not leak values into each other through the package globals.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	logger = zap.NewNop()
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func generateSmall(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "history.txt")
	out, err := execute(t, "generate", "--out", path, "--days", "3", "--chats", "2", "--multiline", "2")
	require.NoError(t, err)
	assert.Equal(t, path+": 3 days, 9 chats, 21 lines\n", out)
	return path
}

func TestGenerateCmd(t *testing.T) {
	path := generateSmall(t)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "[LINE] xxxのトーク履歴\n保存日時：2024/01/01 00:00\n\n2024/01/01(Mon)\n"))
	assert.Equal(t, 21, strings.Count(string(data), "\n"))
}

func TestGenerateCmdWorkload(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "fixture.txt")
	workload := filepath.Join(dir, "workload.json")
	require.NoError(t, os.WriteFile(workload, []byte(`{
		"output": "`+filepath.ToSlash(out)+`",
		"generate": {"days": 2, "chats_per_day": 1, "start": "2024-03-01", "japanese_weekdays": true}
	}`), 0644))

	_, err := execute(t, "generate", "-w", workload, "--chats", "3")
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "2024/03/02(土)\n00:00\tNAME\tMESSAGE\n00:01\tNAME\tMESSAGE\n00:02\tNAME\tMESSAGE\n")
	assert.NotContains(t, string(data), "2024/03/03")
}

func TestSearchCmds(t *testing.T) {
	path := generateSmall(t)

	out, err := execute(t, "search", "date", "2024/01/02", "-f", path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "2024/01/02(Tue)\n00:00\tNAME\tMESSAGE\n00:01\tNAME\tMESSAGE\n"))

	out, err = execute(t, "search", "keyword", "LINE 1", "-f", path)
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(out, "\tNAME\t\"MESSAGE LINE 0"))

	out, err = execute(t, "search", "random", "--seed", "7", "-f", path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "2024/01/0"))

	_, err = execute(t, "search", "date", "2024-01-02", "-f", path)
	assert.Error(t, err)

	_, err = execute(t, "search", "date", "2030/01/01", "-f", path)
	assert.Error(t, err)
}

func TestCalendarCmd(t *testing.T) {
	path := generateSmall(t)

	out, err := execute(t, "calendar", "-f", path, "--year", "2024", "--month", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "January")
	assert.Contains(t, out, "[1 ][2 ][3 ] 4  ")

	out, err = execute(t, "calendar", "-f", path, "--year", "2024", "--marker", "parens")
	require.NoError(t, err)
	assert.Contains(t, out, "(1 )")
	assert.Contains(t, out, "December")

	_, err = execute(t, "calendar", "-f", path, "--marker", "stars")
	assert.Error(t, err)
}

func TestExportCmd(t *testing.T) {
	path := generateSmall(t)
	dir := t.TempDir()

	out, err := execute(t, "export", "-f", path, "--outdir", dir, "--outfile", "chats", "--append-date=false")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "chats.csv")+"\n", out)

	records, err := csv.ReadCSV(filepath.Join(dir, "chats.csv"))
	require.NoError(t, err)
	assert.Len(t, records, 10)

	// a CSV export reads back as a history
	out, err = execute(t, "search", "date", "2024/01/03", "-f", filepath.Join(dir, "chats.csv"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "2024/01/03(Wed)\n"))
}

func TestLoadAndQueryCmds(t *testing.T) {
	path := generateSmall(t)
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "chats.db")
	t.Setenv("DB_TYPE", "sqlite")
	t.Setenv("DB_NAME", dbPath)

	out, err := execute(t, "load", "-f", path)
	require.NoError(t, err)
	assert.Equal(t, dbPath+"\t9\tok\n", out)

	out, err = execute(t, "query", "SELECT count(*) AS n FROM chats", "--outdir", dir, "--outfile", "count", "--append-date=false")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "count.csv")+"\n", out)

	data, err := os.ReadFile(filepath.Join(dir, "count.csv"))
	require.NoError(t, err)
	assert.Equal(t, "n\n9\n", string(data))

	_, err = execute(t, "query")
	assert.Error(t, err)
}
