package collab

import (
	"time"
)

// Recommendation is a fully scored collaboration opportunity. It is
// created fresh per scoring request and immutable once the rule-engine
// adjustment pass completes.
type Recommendation struct {
	ID                string                 `json:"id"`
	PartnerID         string                 `json:"partner_id"`
	PartnerName       string                 `json:"partner_name"`
	ProjectID         string                 `json:"project_id,omitempty"`
	AssetIDs          []string               `json:"asset_ids,omitempty"`
	Metrics           Metrics                `json:"metrics"`
	ScoreLevel        ScoreLevel             `json:"score_level"`
	Reasoning         []string               `json:"reasoning"`
	RiskFactors       []string               `json:"risk_factors"`
	SuccessIndicators []string               `json:"success_indicators"`
	Structure         CollaborationStructure `json:"suggested_structure"`
	Timeline          TimelineEstimate       `json:"timeline_estimate"`
	Resources         ResourceEstimate       `json:"resource_requirements"`
	RuleInsights      []string               `json:"rule_insights,omitempty"`
	Confidence        float64                `json:"confidence"`
	CreatedAt         time.Time              `json:"created_at"`
}

// CollaborationStructure is the suggested partnership shape.
type CollaborationStructure struct {
	Type            string              `json:"collaboration_type"`
	GovernanceModel string              `json:"governance_model"`
	IPArrangement   string              `json:"ip_arrangement"`
	ResourceSharing ResourceSharing     `json:"resource_sharing"`
	RiskMitigation  RiskMitigation      `json:"risk_mitigation"`
	SuccessMetrics  StructureSuccessSet `json:"success_metrics"`
}

// ResourceSharing is the suggested split of funding, expertise and
// infrastructure between the two parties.
type ResourceSharing struct {
	FundingSplit   FundingSplit        `json:"funding_split"`
	ExpertiseAreas ExpertiseAllocation `json:"expertise_areas"`
	Infrastructure map[string]string   `json:"infrastructure"`
}

// FundingSplit carries percentage shares weighted by funding tier.
// Percentages are truncated independently and may sum to 99.
type FundingSplit struct {
	UserPercentage      int `json:"user_percentage"`
	CandidatePercentage int `json:"candidate_percentage"`
}

// ExpertiseAllocation assigns expertise areas to leads.
type ExpertiseAllocation struct {
	Shared        []string `json:"shared_responsibility"`
	UserLead      []string `json:"user_lead_areas"`
	CandidateLead []string `json:"candidate_lead_areas"`
}

// RiskMitigation names the contractual guardrails.
type RiskMitigation struct {
	IPProtection          string `json:"ip_protection"`
	PerformanceMonitoring string `json:"performance_monitoring"`
	ExitStrategy          string `json:"exit_strategy"`
	DisputeResolution     string `json:"dispute_resolution"`
}

// StructureSuccessSet collects milestone, objective and return targets.
type StructureSuccessSet struct {
	TechnicalMilestones []Milestone      `json:"technical_milestones"`
	BusinessObjectives  []Objective      `json:"business_objectives"`
	TimelineTargets     TimelineEstimate `json:"timeline_targets"`
	ROIExpectations     ROIExpectations  `json:"roi_expectations"`
}

// Milestone is one technical checkpoint.
type Milestone struct {
	Name           string `json:"name"`
	TimelineMonths int    `json:"timeline_months"`
	Critical       bool   `json:"critical"`
}

// Objective is one business objective with its success criteria.
type Objective struct {
	Objective       string `json:"objective"`
	SuccessCriteria string `json:"success_criteria"`
}

// TimelineEstimate maps collaboration phases to months.
type TimelineEstimate struct {
	PlanningMonths     int `json:"planning_phase_months"`
	DevelopmentMonths  int `json:"development_phase_months"`
	TestingMonths      int `json:"testing_phase_months"`
	MarketLaunchMonths int `json:"market_launch_months"`
	TotalMonths        int `json:"total_timeline_months"`
}

// ROIExpectations carries return targets derived from market synergy and
// innovation potential.
type ROIExpectations struct {
	MinimumROI          float64 `json:"minimum_roi"`
	TargetROI           float64 `json:"target_roi"`
	BestCaseROI         float64 `json:"best_case_roi"`
	PaybackPeriodMonths int     `json:"payback_period_months"`
	RevenueProjection   string  `json:"revenue_projection"`
}

// ResourceEstimate is the projected resourcing for a collaboration.
type ResourceEstimate struct {
	TeamSize            int            `json:"team_size"`
	BudgetEstimate      map[string]int `json:"budget_estimate"`
	ExpertiseNeeds      []string       `json:"expertise_requirements"`
	InfrastructureNeeds []string       `json:"infrastructure_needs"`
}
