package rules

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Condition gates a rule on a single named metric. Exactly one of Above
// or Below should be set; a rule with neither never fires.
type Condition struct {
	Metric string   `yaml:"metric"`
	Above  *float64 `yaml:"above,omitempty"`
	Below  *float64 `yaml:"below,omitempty"`
}

func (c Condition) matches(metrics map[string]float64) bool {
	value, ok := metrics[c.Metric]
	if !ok {
		return false
	}
	switch {
	case c.Above != nil:
		return value > *c.Above
	case c.Below != nil:
		return value < *c.Below
	default:
		return false
	}
}

// EvaluationRule contributes reasoning, a suggested deal term, or a risk
// to a collaboration request evaluation when its condition fires.
type EvaluationRule struct {
	Condition `yaml:",inline"`
	Reasoning string `yaml:"reasoning,omitempty"`
	Risk      string `yaml:"risk,omitempty"`
	TermKey   string `yaml:"term_key,omitempty"`
	TermValue string `yaml:"term_value,omitempty"`
}

// OptimizationRule contributes an insight and a confidence adjustment to
// a ranked recommendation when its condition fires.
type OptimizationRule struct {
	Condition  `yaml:",inline"`
	Insight    string  `yaml:"insight"`
	Adjustment float64 `yaml:"adjustment"`
}

// KnowledgeBase is one loaded rule file.
type KnowledgeBase struct {
	Evaluation   []EvaluationRule   `yaml:"evaluation"`
	Optimization []OptimizationRule `yaml:"optimization"`
}

const collaborationRuleFile = "collaboration.yaml"

// LoadKnowledgeBase reads the collaboration rule file from dir. A missing
// file falls back to the compiled-in defaults; a malformed one is an error
// so a broken deployment is noticed rather than silently downgraded.
func LoadKnowledgeBase(dir string) (*KnowledgeBase, error) {
	if dir == "" {
		return defaultKnowledgeBase(), nil
	}
	raw, err := os.ReadFile(filepath.Join(dir, collaborationRuleFile))
	if err != nil {
		if os.IsNotExist(err) {
			return defaultKnowledgeBase(), nil
		}
		return nil, fmt.Errorf("read rule file: %w", err)
	}
	var kb KnowledgeBase
	if err := yaml.Unmarshal(raw, &kb); err != nil {
		return nil, fmt.Errorf("parse %s: %w", collaborationRuleFile, err)
	}
	if len(kb.Evaluation) == 0 && len(kb.Optimization) == 0 {
		return defaultKnowledgeBase(), nil
	}
	return &kb, nil
}

func ptr(v float64) *float64 { return &v }

func defaultKnowledgeBase() *KnowledgeBase {
	return &KnowledgeBase{
		Evaluation: []EvaluationRule{
			{
				Condition: Condition{Metric: "technical_compatibility", Above: ptr(0.8)},
				Reasoning: "Technical profiles are strongly compatible",
			},
			{
				Condition: Condition{Metric: "strategic_alignment", Above: ptr(0.7)},
				Reasoning: "Strategic goals point in the same direction",
			},
			{
				Condition: Condition{Metric: "resource_complementarity", Above: ptr(0.7)},
				Reasoning: "Resource profiles fill each other's gaps",
				TermKey:   "resource_sharing",
				TermValue: "shared_pool",
			},
			{
				Condition: Condition{Metric: "execution_feasibility", Below: ptr(0.5)},
				Risk:      "Execution capacity looks thin for the proposed scope",
				TermKey:   "pilot_phase",
				TermValue: "3_months",
			},
			{
				Condition: Condition{Metric: "legal_compatibility", Below: ptr(0.6)},
				Risk:      "IP positions may conflict without a licensing agreement",
				TermKey:   "ip_arrangement",
				TermValue: "cross_licensing",
			},
			{
				Condition: Condition{Metric: "risk_assessment", Above: ptr(0.5)},
				Risk:      "Overall partnership risk is elevated",
				TermKey:   "review_cadence",
				TermValue: "monthly",
			},
		},
		Optimization: []OptimizationRule{
			{
				Condition:  Condition{Metric: "strategic_alignment", Above: ptr(0.8)},
				Insight:    "Strong strategic fit detected by rule analysis",
				Adjustment: 0.05,
			},
			{
				Condition:  Condition{Metric: "innovation_potential", Above: ptr(0.75)},
				Insight:    "Combined expertise opens joint innovation opportunities",
				Adjustment: 0.03,
			},
			{
				Condition:  Condition{Metric: "market_synergy", Above: ptr(0.7)},
				Insight:    "Market positions reinforce each other",
				Adjustment: 0.02,
			},
			{
				Condition:  Condition{Metric: "risk_assessment", Above: ptr(0.5)},
				Insight:    "Risk profile warrants a phased engagement",
				Adjustment: -0.05,
			},
			{
				Condition:  Condition{Metric: "execution_feasibility", Below: ptr(0.5)},
				Insight:    "Execution signals suggest starting with a small scope",
				Adjustment: -0.03,
			},
		},
	}
}
