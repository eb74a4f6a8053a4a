package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/civictriage/internal/triage"
)

// runCLI executes the root command with fresh flags, viper state and HOME
func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	return runCLIWithHome(t, t.TempDir(), args...)
}

func runCLIWithHome(t *testing.T, home string, args ...string) (string, string, error) {
	t.Helper()

	t.Setenv("HOME", home)
	viper.Reset()
	bindFlags()
	resetFlags(rootCmd)

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.PersistentFlags().VisitAll(reset)
	cmd.Flags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// storeArgs points the command at a csv store inside a temp dir
func storeArgs(t *testing.T) (string, []string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "complaints.csv")
	return path, []string{"--store", "csv", "--dsn", path, "--no-cache"}
}

type complaintOut struct {
	ID           int64  `json:"complaint_id"`
	Category     string `json:"category"`
	Severity     string `json:"severity"`
	Location     string `json:"location"`
	UrgencyScore int    `json:"urgency_score"`
	Date         string `json:"date"`
	Status       string `json:"resolution_status"`
}

func TestVersion(t *testing.T) {
	out, _, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "civictriage "+Version+"\n", out)
}

func TestSubmit_StoresAndNumbers(t *testing.T) {
	path, flags := storeArgs(t)

	out, _, err := runCLI(t, append([]string{"submit", "--json",
		"Power outage in the hospital area since last night. This is critical."}, flags...)...)
	require.NoError(t, err)

	var first complaintOut
	require.NoError(t, json.Unmarshal([]byte(out), &first))
	assert.Equal(t, int64(1001), first.ID)
	assert.Equal(t, "Electricity", first.Category)
	assert.Equal(t, "Critical", first.Severity)
	assert.Contains(t, first.Location, "hospital")
	assert.Equal(t, 10, first.UrgencyScore)
	assert.Equal(t, "Pending", first.Status)

	out, _, err = runCLI(t, append([]string{"submit", "--json", "--location", "Ward 12", "water", "pipe", "leak"}, flags...)...)
	require.NoError(t, err)

	var second complaintOut
	require.NoError(t, json.Unmarshal([]byte(out), &second))
	assert.Equal(t, int64(1002), second.ID)
	assert.Equal(t, "Water", second.Category)
	assert.Equal(t, "Ward 12", second.Location)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(string(data), "\n"), "header plus two records")
}

func TestSubmit_Explain(t *testing.T) {
	_, flags := storeArgs(t)

	out, _, err := runCLI(t, append([]string{"submit", "--explain", "There is a leak in the pipe"}, flags...)...)
	require.NoError(t, err)

	assert.Contains(t, out, "Complaint #1001")
	assert.Contains(t, out, "Urgency:      5/10")
	assert.Contains(t, out, `matched "leak"`)
	assert.Contains(t, out, "urgency 5 = max(1, round(10 *")
}

func TestSubmit_EmptyDescription(t *testing.T) {
	path, flags := storeArgs(t)

	_, _, err := runCLI(t, append([]string{"submit", "   "}, flags...)...)
	require.Error(t, err)
	assert.True(t, errors.Is(err, triage.ErrValidation))

	data, _ := os.ReadFile(path)
	assert.LessOrEqual(t, strings.Count(string(data), "\n"), 1, "no record written")
}

func TestSubmit_DryRunDoesNotStore(t *testing.T) {
	path, flags := storeArgs(t)

	out, _, err := runCLI(t, append([]string{"submit", "--dry-run", "stray dog bite near the school"}, flags...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "Complaint (not stored)")
	assert.Contains(t, out, "Animal Control")

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestSubmit_UnknownProvider(t *testing.T) {
	_, flags := storeArgs(t)

	_, _, err := runCLI(t, append([]string{"submit", "--provider", "magic", "water leak"}, flags...)...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown classifier provider")
}

func TestSubmit_MissingAPIKey(t *testing.T) {
	_, flags := storeArgs(t)
	t.Setenv("OPENAI_API_KEY", "")

	_, _, err := runCLI(t, append([]string{"submit", "--provider", "openai", "water leak"}, flags...)...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key is required")
}

func TestList_SortedAndLimited(t *testing.T) {
	_, flags := storeArgs(t)

	for _, d := range []string{
		"something vague happened",
		"Power outage in the hospital area since last night. This is critical.",
		"There is a leak in the pipe",
	} {
		_, _, err := runCLI(t, append([]string{"submit", d}, flags...)...)
		require.NoError(t, err)
	}

	out, _, err := runCLI(t, append([]string{"list", "--json"}, flags...)...)
	require.NoError(t, err)

	var all []complaintOut
	require.NoError(t, json.Unmarshal([]byte(out), &all))
	require.Len(t, all, 3)
	assert.Equal(t, int64(1002), all[0].ID)
	assert.Equal(t, int64(1003), all[1].ID)
	assert.Equal(t, int64(1001), all[2].ID)

	out, _, err = runCLI(t, append([]string{"list", "--json", "--limit", "1"}, flags...)...)
	require.NoError(t, err)
	var limited []complaintOut
	require.NoError(t, json.Unmarshal([]byte(out), &limited))
	require.Len(t, limited, 1)
	assert.Equal(t, int64(1002), limited[0].ID)

	out, _, err = runCLI(t, append([]string{"list"}, flags...)...)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.True(t, strings.HasPrefix(lines[1], "1002"))
}

func TestList_Empty(t *testing.T) {
	_, flags := storeArgs(t)

	out, _, err := runCLI(t, append([]string{"list", "--json"}, flags...)...)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", out)

	out, _, err = runCLI(t, append([]string{"list"}, flags...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "No complaints stored.")
}

func TestList_NegativeLimit(t *testing.T) {
	_, flags := storeArgs(t)
	_, _, err := runCLI(t, append([]string{"list", "--limit", "-1"}, flags...)...)
	require.Error(t, err)
}

func TestBatch(t *testing.T) {
	_, flags := storeArgs(t)

	input := filepath.Join(t.TempDir(), "complaints.txt")
	content := strings.Join([]string{
		"# ward 12 intake",
		"water pipe leak near the school",
		"",
		"stray dog bite\tMarket Road",
		"water pipe leak near the school",
		"huge pothole on the main road",
	}, "\n")
	require.NoError(t, os.WriteFile(input, []byte(content), 0644))

	out, stderr, err := runCLI(t, append([]string{"batch", input, "--concurrency", "2", "--json"}, flags...)...)
	require.NoError(t, err)
	assert.Contains(t, stderr, "Loaded 3 complaints")
	assert.Contains(t, stderr, "Stored:    3")

	var stored []complaintOut
	require.NoError(t, json.Unmarshal([]byte(out), &stored))
	require.Len(t, stored, 3)
	assert.Equal(t, "Water", stored[0].Category)
	assert.Equal(t, "Animal Control", stored[1].Category)
	assert.Equal(t, "Market Road", stored[1].Location)
	assert.Equal(t, "Roads", stored[2].Category)

	ids := map[int64]bool{}
	for _, c := range stored {
		ids[c.ID] = true
	}
	assert.Equal(t, map[int64]bool{1001: true, 1002: true, 1003: true}, ids)
}

func TestBatch_MissingFile(t *testing.T) {
	_, flags := storeArgs(t)
	_, _, err := runCLI(t, append([]string{"batch", filepath.Join(t.TempDir(), "nope.txt")}, flags...)...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read complaints")
}

func TestClassify(t *testing.T) {
	out, _, err := runCLI(t, "classify", "--no-cache", "--json", "Water", "pipes", "are", "leaking")
	require.NoError(t, err)

	var got classifyOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "lexicon", got.Provider)
	assert.Equal(t, "Water", string(got.Category))
	assert.NotEmpty(t, got.Labels)
	assert.False(t, got.Cached)
	assert.NotContains(t, got.Normalized, "are")
}

func TestClassify_NoMatch(t *testing.T) {
	out, _, err := runCLI(t, "classify", "--no-cache", "something vague happened")
	require.NoError(t, err)
	assert.Contains(t, out, "(no label matched)")
	assert.Contains(t, out, "Category:    Unknown (0.00)")
}

func TestClassify_VerboseCacheSummary(t *testing.T) {
	t.Setenv("CIVICTRIAGE_CACHE_DISK_DIR", t.TempDir())

	_, stderr, err := runCLI(t, "classify", "-v", "water pipe leak")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Cache:        memory+disk, 0 hits, 1 misses")

	// A fresh run finds the ranking on disk
	out, stderr, err := runCLI(t, "classify", "-v", "water pipe leak")
	require.NoError(t, err)
	assert.Contains(t, out, "Cached:      yes")
	assert.Contains(t, stderr, "Cache:        memory+disk, 1 hits, 0 misses")

	_, stderr, err = runCLI(t, "classify", "-v", "--no-cache", "water pipe leak")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Cache:        disabled")
}

func TestConfigInitAndShow(t *testing.T) {
	home := t.TempDir()

	out, _, err := runCLIWithHome(t, home, "config", "init")
	require.NoError(t, err)
	configPath := filepath.Join(home, ".civictriage", "config.yaml")
	assert.Contains(t, out, configPath)

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "provider: lexicon")
	assert.Contains(t, string(data), "OPENAI_API_KEY")

	_, _, err = runCLIWithHome(t, home, "config", "init")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	t.Setenv("CIVICTRIAGE_STORAGE_DRIVER", "sqlite")
	out, stderr, err := runCLIWithHome(t, home, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, stderr, configPath)
	assert.Contains(t, out, "driver: sqlite")
	assert.Contains(t, out, "memory_ttl: 1h0m0s")
}

func TestConfigFileValues(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(`
classifier:
  provider: ollama
  model: llama3.2
cache:
  memory_ttl: 2h
concurrency:
  workers: 9
`), 0644))
	t.Setenv("OLLAMA_BASE_URL", "http://ollama.internal:11434")

	_, _, err := runCLI(t, "config", "show", "--config", configPath, "--model", "qwen2.5")
	require.NoError(t, err)

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "ollama", cfg.Classifier.Provider)
	assert.Equal(t, "qwen2.5", cfg.Classifier.Model, "flag beats config file")
	assert.Equal(t, "http://ollama.internal:11434", cfg.Classifier.BaseURL)
	assert.Equal(t, 9, cfg.Concurrency.Workers)
	assert.Equal(t, "2h0m0s", cfg.Cache.MemoryTTL.String())
	assert.Equal(t, "csv", cfg.Storage.Driver, "default kept")
}
