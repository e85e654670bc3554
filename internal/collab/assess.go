package collab

import (
	"github.com/Tweenwrld/basix-marketplace/internal/models"
)

// Per-dimension assessments. Each takes the two contexts and returns a
// score in [0,1]; they are total functions and never fail. A dimension
// with no usable signal scores neutral rather than zero so that sparse
// contexts are not punished across the board.

func assessTechnicalCompatibility(a, b *models.Context) float64 {
	ea, eb := toSet(a.ExpertiseAreas), toSet(b.ExpertiseAreas)
	if len(ea) == 0 || len(eb) == 0 {
		return 0.5
	}
	j := jaccard(ea, eb)
	overlap := float64(len(intersect(ea, eb))) / float64(maxInt(len(ea), len(eb)))
	return clamp01(0.6*j + 0.4*overlap)
}

func assessStrategicAlignment(a, b *models.Context) float64 {
	ga, gb := toSet(a.StrategicGoals), toSet(b.StrategicGoals)
	if len(ga) == 0 || len(gb) == 0 {
		return 0.5
	}
	shared := float64(len(intersect(ga, gb))) / float64(maxInt(len(ga), len(gb)))
	// Same project stage makes joint planning easier.
	stageBonus := 0.0
	if a.ProjectStage != "" && a.ProjectStage == b.ProjectStage {
		stageBonus = 0.15
	}
	return clamp01(0.85*shared + stageBonus + 0.1)
}

func assessResourceComplementarity(a, b *models.Context) float64 {
	wa, wb := a.Resources.FundingTier.Weight(), b.Resources.FundingTier.Weight()
	// Combined capacity, normalized against two high-tier parties.
	capacity := float64(wa+wb) / 6.0
	// A funding gap is a complement: one side fills what the other lacks.
	gap := float64(absInt(wa-wb)) / 2.0
	team := 0.5
	if a.Resources.TeamSize > 0 && b.Resources.TeamSize > 0 {
		combined := a.Resources.TeamSize + b.Resources.TeamSize
		team = clamp01(float64(combined) / 12.0)
	}
	return clamp01(0.45*capacity + 0.25*gap + 0.3*team)
}

func assessMarketSynergy(a, b *models.Context) float64 {
	ma, mb := toSet(a.TargetMarkets), toSet(b.TargetMarkets)
	if len(ma) == 0 || len(mb) == 0 {
		return 0.4
	}
	shared := float64(len(intersect(ma, mb))) / float64(maxInt(len(ma), len(mb)))
	reach := float64(len(union(ma, mb))) / float64(len(ma)+len(mb))
	return clamp01(0.6*shared + 0.4*reach)
}

func assessInnovationPotential(a, b *models.Context) float64 {
	ea, eb := toSet(a.ExpertiseAreas), toSet(b.ExpertiseAreas)
	score := 0.3
	if len(ea) > 0 && len(eb) > 0 {
		// Disjoint expertise drives cross-pollination.
		u := union(ea, eb)
		sym := len(u) - len(intersect(ea, eb))
		score = 0.6 * float64(sym) / float64(len(u))
	}
	if a.InnovationRecord {
		score += 0.2
	}
	if b.InnovationRecord {
		score += 0.2
	}
	return clamp01(score)
}

func assessExecutionFeasibility(a, b *models.Context) float64 {
	track := (a.SuccessRate + b.SuccessRate) / 2.0
	depth := clamp01(float64(len(a.History)+len(b.History)) / 10.0)
	timing := 0.0
	switch {
	case a.TimelineUrgency != "" && a.TimelineUrgency == b.TimelineUrgency:
		timing = 1.0
	case a.TimelineUrgency == "" || b.TimelineUrgency == "":
		timing = 0.5
	}
	return clamp01(0.5*track + 0.3*depth + 0.2*timing)
}

func assessLegalCompatibility(a, b *models.Context) float64 {
	score := 0.85
	switch {
	case a.HasIPPortfolio && b.HasIPPortfolio:
		// Two portfolios mean overlap review before anything is signed.
		score = 0.5
	case a.HasIPPortfolio || b.HasIPPortfolio:
		score = 0.75
	}
	if a.Location != "" && a.Location == b.Location {
		score += 0.1
	}
	return clamp01(score)
}

func assessCollaborationRisk(a, b *models.Context) float64 {
	risk := 0.05
	if len(a.History) == 0 || len(b.History) == 0 {
		risk += 0.3
	}
	if a.Location != "" && b.Location != "" && a.Location != b.Location {
		risk += 0.2
	}
	if a.Resources.FundingTier == models.FundingLow || a.Resources.FundingTier == "" {
		risk += 0.2
	}
	if a.TimelineUrgency != "" && b.TimelineUrgency != "" && a.TimelineUrgency != b.TimelineUrgency {
		risk += 0.15
	}
	if a.HasIPPortfolio && b.HasIPPortfolio {
		risk += 0.15
	}
	return clamp01(risk)
}

// calculateMetrics runs all eight assessments. Dimensions are independent:
// a nil context yields the all-defaults vector rather than a partial one.
func calculateMetrics(a, b *models.Context) Metrics {
	if a == nil || b == nil {
		return Metrics{}
	}
	return Metrics{
		TechnicalCompatibility:  assessTechnicalCompatibility(a, b),
		StrategicAlignment:      assessStrategicAlignment(a, b),
		ResourceComplementarity: assessResourceComplementarity(a, b),
		MarketSynergy:           assessMarketSynergy(a, b),
		InnovationPotential:     assessInnovationPotential(a, b),
		ExecutionFeasibility:    assessExecutionFeasibility(a, b),
		LegalCompatibility:      assessLegalCompatibility(a, b),
		RiskAssessment:          assessCollaborationRisk(a, b),
	}
}

// Set helpers shared by the assessments and the scorer.

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		if item != "" {
			set[item] = true
		}
	}
	return set
}

func intersect(a, b map[string]bool) map[string]bool {
	out := make(map[string]bool)
	for k := range a {
		if b[k] {
			out[k] = true
		}
	}
	return out
}

func union(a, b map[string]bool) map[string]bool {
	out := make(map[string]bool, len(a)+len(b))
	for k := range a {
		out[k] = true
	}
	for k := range b {
		out[k] = true
	}
	return out
}

func difference(a, b map[string]bool) map[string]bool {
	out := make(map[string]bool)
	for k := range a {
		if !b[k] {
			out[k] = true
		}
	}
	return out
}

func jaccard(a, b map[string]bool) float64 {
	u := union(a, b)
	if len(u) == 0 {
		return 0
	}
	return float64(len(intersect(a, b))) / float64(len(u))
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
