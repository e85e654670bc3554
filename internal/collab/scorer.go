package collab

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Tweenwrld/basix-marketplace/internal/models"
)

// Validator reports how well past outcomes between two parties back the
// scoring approach. Implemented by the history store; a nil Validator
// falls back to the neutral prior.
type Validator interface {
	ValidationScore(ctx context.Context, requesterID, partnerID string) float64
}

const defaultValidationScore = 0.8

// Scorer computes a full Recommendation for one (requester, candidate)
// pair. It is stateless: every call is a pure function of the two
// contexts plus the historical-validation lookup.
type Scorer struct {
	validator Validator
}

// NewScorer creates a bilateral scorer. validator may be nil.
func NewScorer(validator Validator) *Scorer {
	return &Scorer{validator: validator}
}

// Score produces the Recommendation for a pair. Both contexts must be
// non-nil; per-dimension assessment failures surface as zeroed dimensions,
// never as errors.
func (s *Scorer) Score(ctx context.Context, requester, candidate *models.Context) (*Recommendation, error) {
	if requester == nil || candidate == nil {
		return nil, fmt.Errorf("score pair: missing context")
	}

	metrics := calculateMetrics(requester, candidate)
	overall := metrics.Overall()

	rec := &Recommendation{
		ID:                uuid.NewString(),
		PartnerID:         candidate.UserID,
		PartnerName:       candidate.Name,
		ProjectID:         candidate.ProjectID,
		AssetIDs:          candidate.AssetIDs,
		Metrics:           metrics,
		ScoreLevel:        ScoreFromOverall(overall),
		Reasoning:         buildReasoning(requester, candidate, metrics),
		RiskFactors:       assessRiskFactors(requester, candidate),
		SuccessIndicators: identifySuccessIndicators(requester, candidate),
		Structure:         suggestStructure(requester, candidate, metrics),
		Timeline:          timelineTargets(metrics),
		Resources:         estimateResources(metrics),
		Confidence:        s.confidence(ctx, metrics, requester, candidate),
		CreatedAt:         time.Now().UTC(),
	}
	return rec, nil
}

// buildReasoning assembles human-readable reasoning from threshold
// crossings. The list is never empty: with no threshold fired it falls
// back to a generic phrase.
func buildReasoning(requester, candidate *models.Context, m Metrics) []string {
	var reasoning []string

	if m.TechnicalCompatibility > 0.8 {
		reasoning = append(reasoning, fmt.Sprintf(
			"Strong technical alignment with %.1f%% compatibility score", m.TechnicalCompatibility*100))
	} else if m.TechnicalCompatibility > 0.6 {
		reasoning = append(reasoning, fmt.Sprintf(
			"Good technical compatibility (%.1f%%) with complementary skills", m.TechnicalCompatibility*100))
	}
	if m.StrategicAlignment > 0.7 {
		reasoning = append(reasoning, "Strategic goals are well-aligned for mutual benefit")
	}
	if m.ResourceComplementarity > 0.8 {
		reasoning = append(reasoning, "Excellent resource complementarity reduces individual risk and cost")
	}
	if m.MarketSynergy > 0.7 {
		reasoning = append(reasoning, "Strong market synergy potential for expanded reach")
	}
	if m.InnovationPotential > 0.75 {
		reasoning = append(reasoning, "High potential for breakthrough innovation through collaboration")
	}

	if len(requester.ExpertiseAreas) > 0 && len(candidate.ExpertiseAreas) > 0 {
		overlap := sortedKeys(intersect(toSet(requester.ExpertiseAreas), toSet(candidate.ExpertiseAreas)))
		if len(overlap) > 0 {
			if len(overlap) > 3 {
				overlap = overlap[:3]
			}
			reasoning = append(reasoning, "Shared expertise in: "+strings.Join(overlap, ", "))
		}
	}

	if len(reasoning) == 0 {
		reasoning = append(reasoning, "Recommendation based on comprehensive AI analysis")
	}
	return reasoning
}

// assessRiskFactors flags the known bilateral risk conditions. The list
// may legitimately be empty for a well-matched pair.
func assessRiskFactors(requester, candidate *models.Context) []string {
	var risks []string

	if requester.HasIPPortfolio && candidate.HasIPPortfolio {
		risks = append(risks, "Potential IP overlap requires careful legal review")
	}
	if requester.Location != "" && candidate.Location != "" && requester.Location != candidate.Location {
		risks = append(risks, "Geographic separation may impact collaboration efficiency")
	}
	if len(requester.History) == 0 || len(candidate.History) == 0 {
		risks = append(risks, "Limited collaboration experience for one or both parties")
	}
	// Missing tier counts as low: unknown funding constrains scope the
	// same way declared low funding does.
	if requester.Resources.FundingTier == models.FundingLow || requester.Resources.FundingTier == "" {
		risks = append(risks, "Limited funding may constrain collaboration scope")
	}
	if requester.TimelineUrgency != "" && candidate.TimelineUrgency != "" &&
		requester.TimelineUrgency != candidate.TimelineUrgency {
		risks = append(risks, "Timeline preferences may not align")
	}
	return risks
}

// identifySuccessIndicators lists the positive bilateral signals, falling
// back to a generic phrase when none fire.
func identifySuccessIndicators(requester, candidate *models.Context) []string {
	var indicators []string

	if requester.SuccessRate > 0.8 && candidate.SuccessRate > 0.8 {
		indicators = append(indicators, "Both parties have excellent collaboration track records")
	} else if (requester.SuccessRate+candidate.SuccessRate)/2 > 0.7 {
		indicators = append(indicators, "Strong combined collaboration experience")
	}

	ea, eb := toSet(requester.ExpertiseAreas), toSet(candidate.ExpertiseAreas)
	if len(ea) > 0 && len(eb) > 0 {
		shared := intersect(ea, eb)
		sym := len(union(ea, eb)) - len(shared)
		if sym > len(shared) {
			indicators = append(indicators, "Complementary expertise creates synergistic potential")
		}
	}

	markets := sortedKeys(intersect(toSet(requester.TargetMarkets), toSet(candidate.TargetMarkets)))
	if len(markets) > 0 {
		if len(markets) > 2 {
			markets = markets[:2]
		}
		indicators = append(indicators, "Aligned target markets: "+strings.Join(markets, ", "))
	}

	if requester.Resources.FundingTier == models.FundingHigh || candidate.Resources.FundingTier == models.FundingHigh {
		indicators = append(indicators, "Strong financial capacity supports collaboration execution")
	}
	if requester.InnovationRecord && candidate.InnovationRecord {
		indicators = append(indicators, "Both parties have proven innovation capabilities")
	}

	if len(indicators) == 0 {
		indicators = append(indicators, "Collaboration shows positive potential")
	}
	return indicators
}

// suggestStructure derives the partnership shape from the metric vector.
// Type checks run in priority order, first match wins; governance is
// refined independently by execution feasibility bands.
func suggestStructure(requester, candidate *models.Context, m Metrics) CollaborationStructure {
	structure := CollaborationStructure{
		Type:            "strategic_partnership",
		GovernanceModel: "joint_steering_committee",
		IPArrangement:   "shared_development",
	}

	if m.TechnicalCompatibility > 0.8 && m.InnovationPotential > 0.8 {
		structure.Type = "joint_innovation_partnership"
		structure.IPArrangement = "co_development_with_shared_ip"
	} else if m.ResourceComplementarity > 0.8 {
		structure.Type = "resource_sharing_partnership"
		structure.IPArrangement = "licensed_collaboration"
	} else if m.MarketSynergy > 0.8 {
		structure.Type = "market_expansion_alliance"
		structure.IPArrangement = "cross_licensing"
	}

	switch {
	case m.ExecutionFeasibility > 0.8:
		structure.GovernanceModel = "integrated_project_management"
	case m.ExecutionFeasibility > 0.6:
		structure.GovernanceModel = "coordinated_workstreams"
	default:
		structure.GovernanceModel = "milestone_based_checkpoints"
	}

	structure.ResourceSharing = ResourceSharing{
		FundingSplit:   suggestFundingSplit(requester.Resources, candidate.Resources),
		ExpertiseAreas: allocateExpertise(requester, candidate),
		Infrastructure: map[string]string{
			"development_environment": "shared_cloud_infrastructure",
			"testing_facilities":      "mutual_access_agreement",
			"data_storage":            "federated_secure_storage",
			"communication_platform":  "dedicated_collaboration_suite",
		},
	}

	ipProtection := "separate_ip_tracks"
	if m.InnovationPotential > 0.7 {
		ipProtection = "joint_patent_strategy"
	}
	structure.RiskMitigation = RiskMitigation{
		IPProtection:          ipProtection,
		PerformanceMonitoring: "quarterly_reviews",
		ExitStrategy:          "defined_termination_conditions",
		DisputeResolution:     "mediation_first_arbitration_backup",
	}

	structure.SuccessMetrics = StructureSuccessSet{
		TechnicalMilestones: technicalMilestones(m),
		BusinessObjectives:  businessObjectives(requester),
		TimelineTargets:     timelineTargets(m),
		ROIExpectations:     roiExpectations(m),
	}
	return structure
}

// suggestFundingSplit allocates shares proportionally to funding tier
// weight. Truncation happens per side, so the two shares can sum to 99;
// downstream consumers treat the split as indicative, not exact.
func suggestFundingSplit(requester, candidate models.ResourceCapacity) FundingSplit {
	uw := requester.FundingTier.Weight()
	cw := candidate.FundingTier.Weight()
	total := uw + cw
	return FundingSplit{
		UserPercentage:      int(float64(uw) / float64(total) * 100),
		CandidatePercentage: int(float64(cw) / float64(total) * 100),
	}
}

func allocateExpertise(requester, candidate *models.Context) ExpertiseAllocation {
	ea, eb := toSet(requester.ExpertiseAreas), toSet(candidate.ExpertiseAreas)
	return ExpertiseAllocation{
		Shared:        sortedKeys(intersect(ea, eb)),
		UserLead:      sortedKeys(difference(ea, eb)),
		CandidateLead: sortedKeys(difference(eb, ea)),
	}
}

func technicalMilestones(m Metrics) []Milestone {
	var milestones []Milestone
	if m.TechnicalCompatibility > 0.7 {
		milestones = append(milestones,
			Milestone{Name: "Technical Architecture Alignment", TimelineMonths: 1, Critical: true},
			Milestone{Name: "Proof of Concept Integration", TimelineMonths: 3, Critical: true},
			Milestone{Name: "Alpha Release", TimelineMonths: 6, Critical: false},
		)
	}
	if m.InnovationPotential > 0.7 {
		milestones = append(milestones,
			Milestone{Name: "Innovation Breakthrough Demonstration", TimelineMonths: 8, Critical: true})
	}
	return milestones
}

func businessObjectives(requester *models.Context) []Objective {
	objectives := []Objective{
		{Objective: "Market Entry Acceleration", SuccessCriteria: "Reduce time-to-market by 30%"},
		{Objective: "Cost Optimization", SuccessCriteria: "Achieve 20% cost reduction through synergies"},
		{Objective: "Innovation Leadership", SuccessCriteria: "Deliver breakthrough solution"},
	}
	if toSet(requester.StrategicGoals)["market_expansion"] {
		objectives = append(objectives, Objective{
			Objective:       "Geographic Expansion",
			SuccessCriteria: "Enter 3 new markets within 18 months",
		})
	}
	return objectives
}

// timelineTargets shortens or stretches the 12-month baseline by
// execution feasibility band. Higher feasibility means a shorter total.
func timelineTargets(m Metrics) TimelineEstimate {
	base := 12
	if m.ExecutionFeasibility > 0.8 {
		base = int(float64(base) * 0.8)
	} else if m.ExecutionFeasibility < 0.6 {
		base = int(float64(base) * 1.3)
	}
	return TimelineEstimate{
		PlanningMonths:     maxInt(1, base/6),
		DevelopmentMonths:  base / 2,
		TestingMonths:      base / 4,
		MarketLaunchMonths: base / 8,
		TotalMonths:        base,
	}
}

// roiExpectations scales the baseline 1.5x return by market synergy and
// innovation potential; higher synergy means a higher target multiplier.
func roiExpectations(m Metrics) ROIExpectations {
	const baseROI = 1.5
	multiplier := 1 + m.MarketSynergy*0.5 + m.InnovationPotential*0.3
	target := baseROI * multiplier
	return ROIExpectations{
		MinimumROI:          baseROI,
		TargetROI:           target,
		BestCaseROI:         target * 1.5,
		PaybackPeriodMonths: int(24 / multiplier),
		RevenueProjection:   "detailed_financial_model_required",
	}
}

func estimateResources(m Metrics) ResourceEstimate {
	complexity := 1.0
	if m.TechnicalCompatibility < 0.7 {
		complexity += 0.3
	}
	if m.InnovationPotential > 0.8 {
		complexity += 0.2
	}
	return ResourceEstimate{
		TeamSize: int(5 * complexity),
		BudgetEstimate: map[string]int{
			"development":    int(500000 * complexity),
			"infrastructure": int(100000 * complexity),
			"marketing":      int(200000 * complexity),
			"contingency":    int(150000 * complexity),
		},
		ExpertiseNeeds: []string{
			"project_management",
			"technical_integration",
			"business_development",
			"legal_coordination",
		},
		InfrastructureNeeds: []string{
			"collaboration_platform",
			"shared_development_environment",
			"secure_communication_channels",
			"progress_tracking_system",
		},
	}
}

// confidence blends context completeness, metric consistency, historical
// validation and the overall score. Clamped to at most 1.0.
func (s *Scorer) confidence(ctx context.Context, m Metrics, requester, candidate *models.Context) float64 {
	completeness := (requester.Completeness() + candidate.Completeness()) / 2.0
	consistency := math.Max(0, 1-stddev(m.positives()))

	validation := defaultValidationScore
	if s.validator != nil {
		validation = s.validator.ValidationScore(ctx, requester.UserID, candidate.UserID)
	}

	total := completeness*0.2 + consistency*0.3 + validation*0.3 + m.Overall()*0.2
	return math.Min(1.0, total)
}

// SuccessProbability estimates the chance a collaboration succeeds, as a
// weighted blend of the positive dimensions minus a risk adjustment.
// Clamped to [0.1, 0.95]: never certain, never hopeless.
func SuccessProbability(m Metrics) float64 {
	p := m.StrategicAlignment*0.25 +
		m.ExecutionFeasibility*0.20 +
		m.TechnicalCompatibility*0.15 +
		m.ResourceComplementarity*0.15 +
		m.MarketSynergy*0.10 +
		m.InnovationPotential*0.10 +
		m.LegalCompatibility*0.05
	p -= m.RiskAssessment * 0.2
	return math.Max(0.1, math.Min(0.95, p))
}

// stddev is the population standard deviation.
func stddev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var mean float64
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	var variance float64
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	return math.Sqrt(variance / float64(len(values)))
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

