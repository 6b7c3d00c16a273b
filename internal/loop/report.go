package loop

import (
	"time"

	"github.com/google/uuid"

	"github.com/pinkpig777/agentic-resume-tailor/internal/types"
)

// BuildReport assembles the per-run artifact from a loop result. The report
// is self-contained so rendering and UI collaborators need nothing else.
func BuildReport(result *types.LoopResult, profile *types.TargetProfile) *types.RunReport {
	report := &types.RunReport{
		RunID:              uuid.NewString(),
		CreatedAt:          time.Now().UTC(),
		ProfileUsed:        result.ProfileUsed,
		BestIterationIndex: result.BestIterationIndex,
		SelectedIDs:        result.BestSelectedIDs,
		Score:              result.BestScore,
		Evidence:           result.BestEvidence,
		RewriteDecisions:   result.BestRewriteDecisions,
		Iterations:         result.Iterations,
	}
	if profile != nil {
		report.RoleTitle = profile.RoleTitle
	}
	if result.BestScore != nil {
		report.FinalScore = result.BestScore.FinalScore
	}

	report.Bullets = make([]types.ReportBullet, 0, len(result.BestSelected))
	for _, cand := range result.BestSelected {
		text := cand.Text
		rewritten := false
		if final, ok := result.BestRewrites[cand.BulletID]; ok {
			rewritten = final != cand.Text
			text = final
		}
		report.Bullets = append(report.Bullets, types.ReportBullet{
			BulletID:   cand.BulletID,
			Source:     cand.Source,
			Text:       text,
			QuantBonus: cand.QuantBonus,
			Rewritten:  rewritten,
		})
	}
	return report
}
