package canon

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *Config {
	cfg := DefaultConfig()
	cfg.Groups = []Group{
		{Canonical: "postgresql", Variants: []string{"postgres", "psql"}},
		{Canonical: "machine learning", Variants: []string{"ml"}},
		{Canonical: "kubernetes", Variants: []string{"k8s"}},
	}
	return cfg
}

func TestCanonicalizeTerm(t *testing.T) {
	c := New(testConfig())

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases and trims", "  PyTorch  ", "pytorch"},
		{"keeps plus and hash", "C++ / C#", "c++ c#"},
		{"splits slash", "frontend/backend", "frontend backend"},
		{"splits dash", "front-end", "front end"},
		{"separator exception stays joined", "CI/CD", "ci/cd"},
		{"variant maps to canonical", "Postgres", "postgresql"},
		{"canonical maps to itself", "PostgreSQL", "postgresql"},
		{"drops stray punctuation", "react, (hooks)", "react hooks"},
		{"collapses whitespace", "data   pipelines", "data pipelines"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.CanonicalizeTerm(tt.in))
		})
	}
}

func TestCanonicalizeText(t *testing.T) {
	c := New(testConfig())

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"single word variant at boundary", "used k8s in prod", "used kubernetes in prod"},
		{"variant not replaced inside word", "worked on k8sops", "worked on k8sops"},
		{"multi word left intact", "machine learning models", "machine learning models"},
		{"short variant needs boundaries", "html and ml models", "html and machine learning models"},
		{"mixed punctuation", "Built APIs (REST); deployed to k8s!", "built apis rest deployed to kubernetes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.CanonicalizeText(tt.in))
		})
	}
}

func TestCanonicalizeTextIdempotent(t *testing.T) {
	c := New(testConfig())

	inputs := []string{
		"Deployed Postgres and k8s to AWS",
		"C++ developer, CI/CD pipelines",
		"  plain   text  ",
		"",
	}

	for _, in := range inputs {
		once := c.CanonicalizeText(in)
		assert.Equal(t, once, c.CanonicalizeText(once), "input %q", in)
	}
}

func TestContainsTerm(t *testing.T) {
	assert.True(t, ContainsTerm("built rest apis in go", "go"))
	assert.False(t, ContainsTerm("searched google daily", "go"))
	assert.True(t, ContainsTerm("c++ services", "c++"))
	assert.True(t, ContainsTerm("tuned postgresql indexes", "postgresql"))
	assert.True(t, ContainsTerm("distributed data pipelines", "data pipelines"))
	assert.False(t, ContainsTerm("pipelined", "pipeline"))
	assert.False(t, ContainsTerm("anything", ""))
}

func TestLoadConfig(t *testing.T) {
	t.Run("empty path returns defaults", func(t *testing.T) {
		cfg, err := LoadConfig("")
		require.NoError(t, err)
		assert.Equal(t, "+#./-", cfg.Options.KeepChars)
		assert.True(t, cfg.Options.CollapseWhitespace)
	})

	t.Run("missing file returns defaults", func(t *testing.T) {
		cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.json"))
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig().Options, cfg.Options)
	})

	t.Run("valid file is parsed", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "canon.json")
		content := `{
			"schema_version": "canon_config_v1",
			"options": {"keep_chars": "+#", "slash_to_space": false},
			"canon_groups": [{"canonical": "go", "variants": ["golang"]}]
		}`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, "+#", cfg.Options.KeepChars)
		assert.False(t, cfg.Options.SlashToSpace)
		// Omitted options keep their defaults.
		assert.True(t, cfg.Options.CollapseWhitespace)
		require.Len(t, cfg.Groups, 1)
		assert.Equal(t, "go", cfg.Groups[0].Canonical)
	})

	t.Run("wrong schema version fails", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "canon.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"schema_version": "v99"}`), 0o644))

		_, err := LoadConfig(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "schema_version")
	})

	t.Run("malformed JSON fails", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "canon.json")
		require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o644))

		_, err := LoadConfig(path)
		require.Error(t, err)
	})
}
