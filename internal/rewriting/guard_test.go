package rewriting

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pinkpig777/agentic-resume-tailor/internal/canon"
	"github.com/pinkpig777/agentic-resume-tailor/internal/types"
)

type stubAgent struct {
	proposals map[string]string
	err       error
	calls     int
}

func (s *stubAgent) Rewrite(ctx context.Context, profile *types.TargetProfile, bullets []AgentBullet, constraints Constraints) (map[string]string, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.proposals, nil
}

func allowed(terms ...string) map[string]struct{} {
	allow := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		allow[t] = struct{}{}
	}
	return allow
}

func TestValidateRewrite(t *testing.T) {
	tests := []struct {
		name       string
		original   string
		rewritten  string
		allow      map[string]struct{}
		wantOK     bool
		violations []string
	}{
		{
			name:      "identical text passes",
			original:  "Reduced latency by 40% using Redis",
			rewritten: "Reduced latency by 40% using Redis",
			wantOK:    true,
		},
		{
			name:       "new number rejected",
			original:   "Reduced latency using Redis",
			rewritten:  "Reduced latency by 40% using Redis",
			wantOK:     false,
			violations: []string{ViolationNewNumbers},
		},
		{
			name:       "new tool rejected",
			original:   "Reduced latency for the API",
			rewritten:  "Reduced latency for the API with node.js",
			wantOK:     false,
			violations: []string{ViolationNewTools},
		},
		{
			name:      "tool on allowlist passes",
			original:  "Reduced latency for the API",
			rewritten: "Reduced latency for the API with node.js",
			allow:     allowed("node.js"),
			wantOK:    true,
		},
		{
			name:      "equivalent number forms pass",
			original:  "Cut costs by 10.50%",
			rewritten: "Cut costs by 10.5%",
			wantOK:    true,
		},
		{
			name:       "changed number value rejected",
			original:   "Cut costs by 10.50%",
			rewritten:  "Cut costs by 12.5%",
			wantOK:     false,
			violations: []string{ViolationNewNumbers, ViolationNewTools},
		},
		{
			name:       "unbalanced braces rejected",
			original:   "Built \\textbf{core} services",
			rewritten:  "Built \\textbf{core services",
			wantOK:     false,
			violations: []string{ViolationUnbalancedBraces},
		},
		{
			name:       "dangling backslash rejected",
			original:   "Built core services",
			rewritten:  "Built core services \\",
			wantOK:     false,
			violations: []string{ViolationDanglingBackslash},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ValidateRewrite(tc.original, tc.rewritten, tc.allow)
			assert.Equal(t, tc.wantOK, got.OK)
			for _, v := range tc.violations {
				assert.Contains(t, got.Violations, v)
			}
		})
	}
}

func TestRewriteNewNumberAlwaysFallsBack(t *testing.T) {
	original := "Improved the deployment pipeline for backend services at scale"
	agent := &stubAgent{proposals: map[string]string{
		"exp:a:0": "Improved the deployment pipeline by 75% for backend services",
	}}
	guard := NewGuard(DefaultConstraints(), agent)

	bullets := []types.Candidate{{BulletID: "exp:a:0", Text: original}}
	allowlists := BuildAllowlists(bullets, nil)
	finalTexts, decisions := guard.RewriteBullets(context.Background(), nil, bullets, allowlists)

	assert.Equal(t, original, finalTexts["exp:a:0"])
	require.Len(t, decisions, 1)
	assert.True(t, decisions[0].FallbackUsed)
	assert.False(t, decisions[0].Changed)
	assert.Contains(t, decisions[0].Validation.Violations, ViolationNewNumbers)
	assert.Contains(t, decisions[0].Validation.NewNumbers, "75")
}

func TestRewriteAcceptsValidAgentProposal(t *testing.T) {
	original := "Was responsible for improving the deployment pipeline for backend services"
	proposal := "Improved the deployment pipeline for backend services end to end"
	agent := &stubAgent{proposals: map[string]string{"exp:a:0": proposal}}
	guard := NewGuard(DefaultConstraints(), agent)

	bullets := []types.Candidate{{BulletID: "exp:a:0", Text: original}}
	finalTexts, decisions := guard.RewriteBullets(context.Background(), nil, bullets, BuildAllowlists(bullets, nil))

	assert.Equal(t, proposal, finalTexts["exp:a:0"])
	require.Len(t, decisions, 1)
	assert.True(t, decisions[0].Changed)
	assert.False(t, decisions[0].FallbackUsed)
	assert.True(t, decisions[0].Validation.OK)
}

func TestRewriteAgentFailureFallsBackToLocalRules(t *testing.T) {
	original := "Responsible for maintaining the primary ingestion service for the data platform"
	agent := &stubAgent{err: errors.New("model unavailable")}
	guard := NewGuard(DefaultConstraints(), agent)

	bullets := []types.Candidate{{BulletID: "exp:a:0", Text: original}}
	finalTexts, decisions := guard.RewriteBullets(context.Background(), nil, bullets, BuildAllowlists(bullets, nil))

	assert.Equal(t, 1, agent.calls)
	assert.Equal(t, "maintaining the primary ingestion service for the data platform", finalTexts["exp:a:0"])
	require.Len(t, decisions, 1)
	assert.True(t, decisions[0].Changed)
}

func TestRewriteSemanticDriftFallsBack(t *testing.T) {
	original := "Improved the deployment pipeline for backend services at scale"
	agent := &stubAgent{proposals: map[string]string{
		"exp:a:0": "An entirely unrelated sentence about gardening and birdwatching trips",
	}}
	guard := NewGuard(DefaultConstraints(), agent)

	bullets := []types.Candidate{{BulletID: "exp:a:0", Text: original}}
	finalTexts, decisions := guard.RewriteBullets(context.Background(), nil, bullets, BuildAllowlists(bullets, nil))

	assert.Equal(t, original, finalTexts["exp:a:0"])
	require.Len(t, decisions, 1)
	assert.Contains(t, decisions[0].Validation.Violations, ViolationSemanticDrift)
}

func TestRewriteDisabledPassesOriginalsThrough(t *testing.T) {
	agent := &stubAgent{proposals: map[string]string{"exp:a:0": "anything"}}
	constraints := DefaultConstraints()
	constraints.Enabled = false
	guard := NewGuard(constraints, agent)

	bullets := []types.Candidate{{BulletID: "exp:a:0", Text: "short"}}
	finalTexts, decisions := guard.RewriteBullets(context.Background(), nil, bullets, nil)

	assert.Zero(t, agent.calls)
	assert.Equal(t, "short", finalTexts["exp:a:0"])
	require.Len(t, decisions, 1)
	assert.True(t, decisions[0].Validation.OK)
}

func TestApplyLocalRules(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{
			name: "strips bullet marker and lead-in",
			in:   "- Responsible for running the batch jobs",
			max:  220,
			want: "running the batch jobs",
		},
		{
			name: "collapses whitespace",
			in:   "Built   the\tcore   service",
			max:  220,
			want: "Built the core service",
		},
		{
			name: "drops parentheticals when too long",
			in:   "Built the ingestion service (originally a prototype from the hack week) for the data team",
			max:  60,
			want: "Built the ingestion service for the data team",
		},
		{
			name: "truncates at clause boundary when still too long",
			in:   "Built the ingestion service for the data team; also maintained the legacy importer and its scheduler",
			max:  60,
			want: "Built the ingestion service for the data team",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ApplyLocalRules(tc.in, tc.max))
		})
	}
}

func TestBuildAllowlistsExpandsCanonVariants(t *testing.T) {
	groups := []canon.Group{
		{Canonical: "kubernetes", Variants: []string{"k8s"}},
	}
	bullets := []types.Candidate{{BulletID: "exp:a:0", Text: "Ran k8s clusters in production"}}
	allowlists := BuildAllowlists(bullets, groups)

	allow := allowlists["exp:a:0"]
	require.NotNil(t, allow)
	assert.Contains(t, allow, "k8s")
	assert.Contains(t, allow, "kubernetes")
	assert.NotContains(t, allow, "terraform")
}
