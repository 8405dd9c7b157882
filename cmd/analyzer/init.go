package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// --- init command ---

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold a new analyzer project",
		Long: `Create config.yaml, a .env.example, prompts/, suites/example.yaml and results/.

Existing files are left untouched.`,
		Args: cobra.NoArgs,
		RunE: runInit,
	}
	cmd.Flags().String("dir", ".", "Directory to initialize")
	return cmd
}

func runInit(cmd *cobra.Command, args []string) error {
	root, _ := cmd.Flags().GetString("dir")
	out := cmd.OutOrStdout()

	for _, d := range []string{"prompts", "suites", "results"} {
		path := filepath.Join(root, d)
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", path, err)
		}
		fmt.Fprintf(out, "  created %s/\n", path)
	}

	if err := writeYAML(out, filepath.Join(root, "config.yaml"), exampleConfig()); err != nil {
		return err
	}
	if err := writeFile(out, filepath.Join(root, ".env.example"), exampleEnv); err != nil {
		return err
	}
	if err := writeYAML(out, filepath.Join(root, "suites", "example.yaml"), exampleSuite()); err != nil {
		return err
	}

	fmt.Fprintln(out, "\nAnalyzer project initialized. Set your API keys, then run 'analyzer validate'.")
	return nil
}

func writeYAML(w io.Writer, path string, data any) error {
	out, err := yaml.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", path, err)
	}
	return writeFile(w, path, string(out))
}

func writeFile(w io.Writer, path, content string) error {
	if _, err := os.Stat(path); err == nil {
		fmt.Fprintf(w, "  skipped %s (already exists)\n", path)
		return nil
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	fmt.Fprintf(w, "  created %s\n", path)
	return nil
}

const exampleEnv = `ANTHROPIC_API_KEY=
OPENAI_API_KEY=
SONAR_API_KEY=
XAI_API_KEY=
`

func exampleConfig() map[string]any {
	return map[string]any{
		"api_keys": map[string]any{
			"claude": map[string]any{
				"api_key_env": "ANTHROPIC_API_KEY",
				"model":       "claude-3-5-sonnet-20240620",
			},
			"openai": map[string]any{
				"api_key_env": "OPENAI_API_KEY",
				"model":       "gpt-3.5-turbo",
			},
			"sonar": map[string]any{
				"api_key_env": "SONAR_API_KEY",
				"model":       "sonar",
				"base_url":    "https://api.perplexity.ai",
			},
			"xai": map[string]any{
				"api_key_env": "XAI_API_KEY",
				"model":       "grok-2-latest",
				"base_url":    "https://api.x.ai/v1",
			},
		},
		"model_settings": map[string]any{
			"max_tokens":  1000,
			"temperature": 0,
		},
		"analysis_settings": map[string]any{
			"prompts_dir": "prompts",
		},
		"output_settings": map[string]any{
			"dir":    "results",
			"format": "text",
			"color":  true,
		},
		"logging": map[string]any{
			"level":  "info",
			"format": "console",
		},
	}
}

func exampleSuite() map[string]any {
	return map[string]any{
		"name":        "headlines",
		"description": "Financial headline sentiment",
		"provider":    "Claude",
		"capability":  "Sentiment Analysis",
		"cases": []map[string]any{
			{
				"name":            "tesla-earnings",
				"text":            "Tesla Reports Record Q4 Earnings, Beating Analyst Expectations",
				"expect_dominant": "positive",
				"tags":            []string{"earnings"},
			},
			{
				"name":            "meta-layoffs",
				"text":            "Meta Announces 10% Workforce Reduction Amid Cost-Cutting Measures",
				"expect_dominant": "negative",
				"tags":            []string{"workforce"},
			},
			{
				"name": "apple-chips",
				"text": "Apple Maintains Market Position Despite Industry-Wide Chip Shortage",
				"tags": []string{"supply-chain"},
			},
		},
	}
}
