package matching

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pinkpig777/agentic-resume-tailor/internal/canon"
	"github.com/pinkpig777/agentic-resume-tailor/internal/types"
)

func newTestMatcher() *Matcher {
	canonCfg := canon.DefaultConfig()
	canonCfg.Groups = []canon.Group{
		{Canonical: "postgresql", Variants: []string{"postgres"}},
	}
	famCfg := &FamilyConfig{
		SchemaVersion: FamiliesSchemaVersion,
		Families: []Family{
			{Generic: "cloud platform", SatisfiedBy: []string{"aws", "gcp", "azure"}},
			{Generic: "relational database", SatisfiedBy: []string{"postgresql", "mysql"}},
		},
	}
	return NewMatcher(canon.New(canonCfg), famCfg)
}

func frags(texts map[string]string) []types.Fragment {
	out := make([]types.Fragment, 0, len(texts))
	// Fixed iteration order keeps test output deterministic.
	for _, id := range []string{"b1", "b2", "b3", "b4"} {
		if txt, ok := texts[id]; ok {
			out = append(out, types.Fragment{ID: id, Text: txt})
		}
	}
	return out
}

func TestMatchExactTier(t *testing.T) {
	m := newTestMatcher()

	evs := m.Match(
		[]types.Keyword{{Raw: "Python", Canonical: "python", Category: types.KeywordMustHave}},
		frags(map[string]string{
			"b1": `Built \textbf{Python} ETL pipelines`,
			"b2": "Wrote Go services",
		}),
	)

	require.Len(t, evs, 1)
	assert.Equal(t, types.TierExact, evs[0].Tier)
	assert.Equal(t, "python", evs[0].Keyword)
	assert.Equal(t, "python", evs[0].SatisfiedBy)
	assert.Equal(t, []string{"b1"}, evs[0].BulletIDs)
}

func TestMatchExactBeatsFamily(t *testing.T) {
	m := newTestMatcher()

	// "cloud platform" appears literally, so the exact tier wins even though
	// the family tier would also fire on "aws".
	evs := m.Match(
		[]types.Keyword{{Canonical: "cloud platform"}},
		frags(map[string]string{"b1": "Designed a cloud platform on AWS"}),
	)

	require.Len(t, evs, 1)
	assert.Equal(t, types.TierExact, evs[0].Tier)
}

func TestMatchFamilyTier(t *testing.T) {
	m := newTestMatcher()

	evs := m.Match(
		[]types.Keyword{{Canonical: "cloud platform"}},
		frags(map[string]string{
			"b1": "Migrated workloads to GCP",
			"b2": "Deployed services on AWS Lambda",
		}),
	)

	require.Len(t, evs, 1)
	assert.Equal(t, types.TierFamily, evs[0].Tier)
	// Registration order decides: aws is tested before gcp.
	assert.Equal(t, "aws", evs[0].SatisfiedBy)
	assert.Equal(t, []string{"b2"}, evs[0].BulletIDs)
}

func TestMatchFamilyThroughVariant(t *testing.T) {
	m := newTestMatcher()

	// The fragment says "Postgres"; the canonicalizer maps it to
	// "postgresql", which satisfies the family generic.
	evs := m.Match(
		[]types.Keyword{{Canonical: "relational database"}},
		frags(map[string]string{"b1": "Tuned Postgres query plans"}),
	)

	require.Len(t, evs, 1)
	assert.Equal(t, types.TierFamily, evs[0].Tier)
	assert.Equal(t, "postgresql", evs[0].SatisfiedBy)
}

func TestMatchSubstringTier(t *testing.T) {
	m := newTestMatcher()

	tests := []struct {
		name    string
		keyword string
		text    string
		tier    types.MatchTier
	}{
		{"long token matches inside word", "kubernetes", "kubernetes-native tooling", types.TierExact},
		{"long token substring", "microservices", "built 12 microservices2 last year", types.TierSubstring},
		{"short token never substring", "go", "searched google daily", types.TierNone},
		{"token with punctuation never substring", "node.js", "nodejs everywhere", types.TierNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			evs := m.Match(
				[]types.Keyword{{Canonical: tt.keyword}},
				frags(map[string]string{"b1": tt.text}),
			)
			require.Len(t, evs, 1)
			assert.Equal(t, tt.tier, evs[0].Tier)
		})
	}
}

func TestMatchNoneTier(t *testing.T) {
	m := newTestMatcher()

	evs := m.Match(
		[]types.Keyword{{Canonical: "terraform"}},
		frags(map[string]string{"b1": "Wrote Go services"}),
	)

	require.Len(t, evs, 1)
	assert.Equal(t, types.TierNone, evs[0].Tier)
	assert.Empty(t, evs[0].BulletIDs)
	assert.Empty(t, evs[0].SatisfiedBy)
}

func TestMatchExactRoundTrip(t *testing.T) {
	// A fragment containing the exact canonical phrase always yields exact
	// evidence citing that fragment.
	m := newTestMatcher()

	kw := types.Keyword{Raw: "CI/CD", Canonical: "ci/cd"}
	evs := m.Match([]types.Keyword{kw}, frags(map[string]string{
		"b1": "Automated ci/cd pipelines for 14 teams",
	}))

	require.Len(t, evs, 1)
	assert.Equal(t, types.TierExact, evs[0].Tier)
	assert.Equal(t, []string{"b1"}, evs[0].BulletIDs)
}

func TestLoadFamilyConfig(t *testing.T) {
	t.Run("missing file returns empty registry", func(t *testing.T) {
		cfg, err := LoadFamilyConfig(filepath.Join(t.TempDir(), "nope.json"))
		require.NoError(t, err)
		assert.Empty(t, cfg.Families)
	})

	t.Run("wrong schema version fails", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "families.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"schema_version":"families_v0"}`), 0o644))
		_, err := LoadFamilyConfig(path)
		require.Error(t, err)
	})

	t.Run("valid file is parsed", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "families.json")
		content := `{"schema_version":"families_v1","families":[{"generic":"message broker","satisfied_by":["kafka","rabbitmq"]}]}`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		cfg, err := LoadFamilyConfig(path)
		require.NoError(t, err)
		require.Len(t, cfg.Families, 1)
		assert.Equal(t, "message broker", cfg.Families[0].Generic)
	})
}
