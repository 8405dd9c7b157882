package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/jdgilhuly/go_text_analyzer/analysistest"
	"github.com/jdgilhuly/go_text_analyzer/pkg/analysis"
	"github.com/jdgilhuly/go_text_analyzer/pkg/registry"
)

const (
	teslaHeadline  = "Tesla Reports Record Q4 Earnings, Beating Analyst Expectations"
	sentimentReply = `{"sentiment":{"positive":0.85,"neutral":0.1,"negative":0.05},"explanation":"Record earnings."}`
)

func execute(t *testing.T, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

// writeConfig writes a config whose services all point at fake servers
// answering with reply, and returns its path and the output directory.
func writeConfig(t *testing.T, reply analysistest.HTTPReply) (cfgPath, outDir string) {
	t.Helper()
	dir := t.TempDir()
	outDir = filepath.Join(dir, "results")
	chat := analysistest.NewChatServer(t, reply).URL

	cfg := map[string]any{
		"api_keys": map[string]any{
			"claude": map[string]any{"key": "sk-ant", "model": "claude-3-5-sonnet-20240620",
				"base_url": analysistest.NewMessagesServer(t, reply).URL},
			"openai": map[string]any{"key": "sk-oai", "model": "gpt-3.5-turbo", "base_url": chat},
			"sonar":  map[string]any{"key": "pplx", "model": "sonar", "base_url": chat},
			"xai":    map[string]any{"key": "xai", "model": "grok-2-latest", "base_url": chat},
		},
		"output_settings": map[string]any{"dir": outDir, "format": "text", "color": false},
		"logging":         map[string]any{"level": "error", "format": "console"},
	}
	data, err := yaml.Marshal(cfg)
	require.NoError(t, err)
	cfgPath = filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, data, 0o644))
	return cfgPath, outDir
}

func TestInit_ScaffoldsProject(t *testing.T) {
	dir := t.TempDir()

	out, _, err := execute(t, "", "init", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "created "+filepath.Join(dir, "config.yaml"))

	for _, p := range []string{"config.yaml", ".env.example", "suites/example.yaml", "prompts", "results"} {
		_, err := os.Stat(filepath.Join(dir, p))
		assert.NoError(t, err, p)
	}

	out, _, err = execute(t, "", "init", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "skipped "+filepath.Join(dir, "config.yaml"))
}

func TestInit_ExampleSuiteValidates(t *testing.T) {
	dir := t.TempDir()
	_, _, err := execute(t, "", "init", "--dir", dir)
	require.NoError(t, err)

	t.Setenv("ANTHROPIC_API_KEY", "a")
	t.Setenv("OPENAI_API_KEY", "b")
	t.Setenv("SONAR_API_KEY", "c")
	t.Setenv("XAI_API_KEY", "d")

	out, _, err := execute(t, "", "validate",
		"--config", filepath.Join(dir, "config.yaml"),
		"--suite", filepath.Join(dir, "suites", "example.yaml"))
	require.NoError(t, err)
	assert.Contains(t, out, `Suite "headlines" is valid (3 cases).`)
	assert.Contains(t, out, "is valid.")
}

func TestValidate_MissingKeys(t *testing.T) {
	dir := t.TempDir()
	_, _, err := execute(t, "", "init", "--dir", dir)
	require.NoError(t, err)

	for _, v := range []string{"ANTHROPIC_API_KEY", "OPENAI_API_KEY", "SONAR_API_KEY", "XAI_API_KEY"} {
		t.Setenv(v, "")
	}

	_, _, err = execute(t, "", "validate", "--config", filepath.Join(dir, "config.yaml"))
	var cfgErr *analysis.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, err.Error(), "ANTHROPIC_API_KEY")
}

func TestValidate_MissingFile(t *testing.T) {
	_, _, err := execute(t, "", "validate", "--config", filepath.Join(t.TempDir(), "nope.yaml"))
	var cfgErr *analysis.ConfigError
	require.ErrorAs(t, err, &cfgErr)
}

func TestRun_Text(t *testing.T) {
	cfgPath, _ := writeConfig(t, analysistest.HTTPReply{Content: sentimentReply})

	out, _, err := execute(t, "", "run", "--config", cfgPath, "--provider", "claude", "--text", teslaHeadline)
	require.NoError(t, err)
	assert.Contains(t, out, "Claude · Sentiment Analysis")
	assert.Contains(t, out, "Positive")
	assert.Contains(t, out, "Dominant: positive")
	assert.Contains(t, out, "Explanation: Record earnings.")
}

func TestRun_StdinJSONAndSave(t *testing.T) {
	cfgPath, outDir := writeConfig(t, analysistest.HTTPReply{Content: sentimentReply})

	out, errOut, err := execute(t, teslaHeadline+"\n", "run", "--config", cfgPath,
		"-p", "xAI", "-t", "sentiment", "--format", "json", "--save")
	require.NoError(t, err)

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &rec))
	assert.Equal(t, "xAI", rec["provider"])
	assert.Equal(t, "Sentiment Analysis", rec["capability"])
	assert.Equal(t, teslaHeadline+"\n", rec["text"])

	files, err := filepath.Glob(filepath.Join(outDir, "*-xai-sentiment.json"))
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Contains(t, errOut, "Saved to "+files[0])

	shown, _, err := execute(t, "", "show", "--no-color", files[0])
	require.NoError(t, err)
	assert.Contains(t, shown, "Text: "+teslaHeadline)
	assert.Contains(t, shown, "xAI · Sentiment Analysis")
}

func TestRun_FromFile(t *testing.T) {
	cfgPath, _ := writeConfig(t, analysistest.HTTPReply{Content: sentimentReply})
	textPath := filepath.Join(t.TempDir(), "headline.txt")
	require.NoError(t, os.WriteFile(textPath, []byte(teslaHeadline), 0o644))

	out, _, err := execute(t, "", "run", "--config", cfgPath, "-p", "Sonar", "--file", textPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Sonar · Sentiment Analysis")
}

func TestRun_Rejections(t *testing.T) {
	cfgPath, _ := writeConfig(t, analysistest.HTTPReply{Content: sentimentReply})

	tests := []struct {
		name    string
		stdin   string
		args    []string
		wantErr string
	}{
		{"empty text", "   \n", []string{"--provider", "Claude"}, registry.ErrEmptyText.Error()},
		{"unknown provider", "", []string{"--provider", "Gemini", "--text", "x"}, "API client Gemini not implemented"},
		{"unknown type", "", []string{"--type", "Summarization", "--text", "x"}, "Unknown analysis type: Summarization"},
		{"bad format", "", []string{"--format", "xml", "--text", "x"}, `unknown format "xml"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"run", "--config", cfgPath}, tt.args...)
			_, _, err := execute(t, tt.stdin, args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRun_ProviderFailure(t *testing.T) {
	cfgPath, _ := writeConfig(t, analysistest.HTTPReply{Status: 500, Content: "overloaded"})

	out, _, err := execute(t, "", "run", "--config", cfgPath, "--text", teslaHeadline)
	require.True(t, errors.Is(err, errAnalysisFailed))
	assert.Contains(t, out, "Error:")
	assert.Contains(t, out, "overloaded")
}

func writeSuite(t *testing.T, expect string) string {
	t.Helper()
	s := map[string]any{
		"name":       "headlines",
		"provider":   "Claude",
		"capability": "Sentiment Analysis",
		"cases": []map[string]any{
			{"name": "tesla", "text": teslaHeadline, "expect_dominant": expect, "tags": []string{"earnings"}},
			{"name": "apple", "text": "Apple Maintains Market Position", "tags": []string{"supply"}},
		},
	}
	data, err := yaml.Marshal(s)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "suite.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestBatch_PassesAndSaves(t *testing.T) {
	cfgPath, outDir := writeConfig(t, analysistest.HTTPReply{Content: sentimentReply})
	suitePath := writeSuite(t, "positive")

	out, errOut, err := execute(t, "", "batch", suitePath, "--config", cfgPath, "--provider", "ChatGPT", "--save")
	require.NoError(t, err)
	assert.Contains(t, out, "tesla")
	assert.Contains(t, out, "apple")
	assert.Contains(t, errOut, "[1/2] tesla ok")
	assert.Contains(t, errOut, "[2/2] apple ok")

	files, err := filepath.Glob(filepath.Join(outDir, "*-batch-headlines.json"))
	require.NoError(t, err)
	require.Len(t, files, 1)

	shown, _, err := execute(t, "", "show", "--no-color", files[0])
	require.NoError(t, err)
	assert.Contains(t, shown, "tesla")
}

func TestDiff_TwoProviders(t *testing.T) {
	cfgPath, outDir := writeConfig(t, analysistest.HTTPReply{Content: sentimentReply})
	suitePath := writeSuite(t, "positive")

	a := filepath.Join(outDir, "claude.json")
	b := filepath.Join(outDir, "xai.json")
	_, _, err := execute(t, "", "batch", suitePath, "--config", cfgPath, "--output", a)
	require.NoError(t, err)
	_, _, err = execute(t, "", "batch", suitePath, "--config", cfgPath, "-p", "xAI", "--output", b)
	require.NoError(t, err)

	out, _, err := execute(t, "", "diff", a, b)
	require.NoError(t, err)
	assert.Contains(t, out, "A: Claude")
	assert.Contains(t, out, "B: xAI")
	assert.Contains(t, out, "2 unchanged")
	assert.Contains(t, out, "2 agree")

	out, _, err = execute(t, "", "diff", a, b, "--format", "json", "--filter", "regressed")
	require.NoError(t, err)
	var dr struct {
		Cases []any `json:"cases"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &dr))
	assert.Empty(t, dr.Cases)
}

func TestBatch_TagFilterAndJSON(t *testing.T) {
	cfgPath, _ := writeConfig(t, analysistest.HTTPReply{Content: sentimentReply})
	suitePath := writeSuite(t, "positive")

	out, _, err := execute(t, "", "batch", suitePath, "--config", cfgPath, "--tag", "supply", "--format", "json")
	require.NoError(t, err)

	var summary struct {
		Provider string `json:"provider"`
		Stats    struct {
			TotalCases int `json:"total_cases"`
		} `json:"stats"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.Equal(t, "Claude", summary.Provider)
	assert.Equal(t, 1, summary.Stats.TotalCases)
}

func TestBatch_FailedExpectation(t *testing.T) {
	cfgPath, _ := writeConfig(t, analysistest.HTTPReply{Content: sentimentReply})
	suitePath := writeSuite(t, "negative")

	_, _, err := execute(t, "", "batch", suitePath, "--config", cfgPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 cases did not pass")
}

func TestBatch_Directory(t *testing.T) {
	cfgPath, outDir := writeConfig(t, analysistest.HTTPReply{Content: sentimentReply})
	dir := t.TempDir()
	for _, name := range []string{"earnings", "layoffs"} {
		data, err := yaml.Marshal(map[string]any{
			"name":       name,
			"provider":   "Sonar",
			"capability": "sentiment",
			"cases":      []map[string]any{{"name": name + "-1", "text": teslaHeadline}},
		})
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, name+".yaml"), data, 0o644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	out, _, err := execute(t, "", "batch", dir, "--config", cfgPath, "--format", "json", "--save")
	require.NoError(t, err)

	var summaries []struct {
		SuiteName string `json:"suite_name"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &summaries))
	require.Len(t, summaries, 2)
	assert.Equal(t, "earnings", summaries[0].SuiteName)
	assert.Equal(t, "layoffs", summaries[1].SuiteName)

	files, err := filepath.Glob(filepath.Join(outDir, "*-batch-*.json"))
	require.NoError(t, err)
	assert.Len(t, files, 2)

	_, _, err = execute(t, "", "batch", dir, "--config", cfgPath, "--output", filepath.Join(outDir, "x.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--output needs a single suite file")
}

func TestBatch_InvalidSuite(t *testing.T) {
	cfgPath, _ := writeConfig(t, analysistest.HTTPReply{Content: sentimentReply})
	suitePath := writeSuite(t, "positive")

	_, _, err := execute(t, "", "batch", suitePath, "--config", cfgPath, "--type", "Summarization")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid suite")
}

func TestList(t *testing.T) {
	cfgPath, _ := writeConfig(t, analysistest.HTTPReply{Content: sentimentReply})

	out, _, err := execute(t, "", "list", "capabilities")
	require.NoError(t, err)
	for _, c := range analysis.All() {
		assert.Contains(t, out, c.String())
		assert.Contains(t, out, c.Slug())
	}

	out, _, err = execute(t, "", "list", "providers", "--config", cfgPath)
	require.NoError(t, err)
	for _, name := range []string{"Claude", "ChatGPT", "Sonar", "xAI", "grok-2-latest"} {
		assert.Contains(t, out, name)
	}

	out, _, err = execute(t, "", "list", "prompts", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Named Entity Recognition")
}
