package collab

// Metrics is the eight-dimension collaboration score vector. All fields
// are always populated in [0,1]; a failed assessment contributes 0.
type Metrics struct {
	TechnicalCompatibility  float64 `json:"technical_compatibility"`
	StrategicAlignment      float64 `json:"strategic_alignment"`
	ResourceComplementarity float64 `json:"resource_complementarity"`
	MarketSynergy           float64 `json:"market_synergy"`
	InnovationPotential     float64 `json:"innovation_potential"`
	ExecutionFeasibility    float64 `json:"execution_feasibility"`
	LegalCompatibility      float64 `json:"legal_compatibility"`
	RiskAssessment          float64 `json:"risk_assessment"`
}

// Aggregate weights. Risk carries a deliberately small negative weight:
// high risk barely penalizes the overall score.
const (
	weightTechnical  = 0.20
	weightStrategic  = 0.18
	weightResource   = 0.15
	weightMarket     = 0.15
	weightInnovation = 0.12
	weightExecution  = 0.10
	weightLegal      = 0.08
	weightRisk       = 0.02
)

// Overall computes the weighted aggregate score, clamped to [0,1].
func (m Metrics) Overall() float64 {
	score := m.TechnicalCompatibility*weightTechnical +
		m.StrategicAlignment*weightStrategic +
		m.ResourceComplementarity*weightResource +
		m.MarketSynergy*weightMarket +
		m.InnovationPotential*weightInnovation +
		m.ExecutionFeasibility*weightExecution +
		m.LegalCompatibility*weightLegal
	score -= m.RiskAssessment * weightRisk
	return clamp01(score)
}

// positives returns the seven positively weighted dimensions, used by the
// confidence consistency factor.
func (m Metrics) positives() []float64 {
	return []float64{
		m.TechnicalCompatibility,
		m.StrategicAlignment,
		m.ResourceComplementarity,
		m.MarketSynergy,
		m.InnovationPotential,
		m.ExecutionFeasibility,
		m.LegalCompatibility,
	}
}

// Map flattens the metrics into the named form exchanged with the rule
// engine.
func (m Metrics) Map() map[string]float64 {
	return map[string]float64{
		"technical_compatibility":  m.TechnicalCompatibility,
		"strategic_alignment":      m.StrategicAlignment,
		"resource_complementarity": m.ResourceComplementarity,
		"market_synergy":           m.MarketSynergy,
		"innovation_potential":     m.InnovationPotential,
		"execution_feasibility":    m.ExecutionFeasibility,
		"legal_compatibility":      m.LegalCompatibility,
		"risk_assessment":          m.RiskAssessment,
	}
}

// ScoreLevel is the qualitative tier derived from the overall score.
type ScoreLevel string

const (
	ScoreExcellent ScoreLevel = "excellent"
	ScoreVeryGood  ScoreLevel = "very_good"
	ScoreGood      ScoreLevel = "good"
	ScoreModerate  ScoreLevel = "moderate"
	ScoreWeak      ScoreLevel = "weak"
	ScorePoor      ScoreLevel = "poor"
)

// Description returns the human-readable tier description.
func (s ScoreLevel) Description() string {
	switch s {
	case ScoreExcellent:
		return "Excellent match with high synergy potential"
	case ScoreVeryGood:
		return "Very good compatibility with strong alignment"
	case ScoreGood:
		return "Good match with moderate synergy"
	case ScoreModerate:
		return "Moderate compatibility requiring assessment"
	case ScoreWeak:
		return "Weak match with limited potential"
	default:
		return "Poor compatibility, not recommended"
	}
}

// ScoreFromOverall maps an overall score to its tier. The six bands are
// contiguous over [0,1]; anything outside falls back to poor.
func ScoreFromOverall(score float64) ScoreLevel {
	if score < 0.0 || score > 1.0 {
		return ScorePoor
	}
	switch {
	case score >= 0.90:
		return ScoreExcellent
	case score >= 0.80:
		return ScoreVeryGood
	case score >= 0.70:
		return ScoreGood
	case score >= 0.60:
		return ScoreModerate
	case score >= 0.40:
		return ScoreWeak
	default:
		return ScorePoor
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
