package rules

import (
	"sort"
)

// Creator is a marketplace participant considered for a joint asset.
type Creator struct {
	ID         string   `json:"id"`
	Skills     []string `json:"skills"`
	Region     string   `json:"region"`
	Reputation float64  `json:"reputation"` // 0-100
}

// Contribution is one unit of work toward a joint asset.
type Contribution struct {
	ContributorID string  `json:"contributor_id"`
	Type          string  `json:"type"` // code, design, content, marketing, funding
	EffortHours   float64 `json:"effort_hours"`
	QualityScore  float64 `json:"quality_score"` // 0-1
}

// CreatorMatch is one ranked result of MatchCreators.
type CreatorMatch struct {
	CreatorID     string  `json:"creator_id"`
	MatchScore    float64 `json:"match_score"`
	SkillsMatched int     `json:"skills_matched"`
}

const (
	maxCreatorMatches   = 5
	minMatchReputation  = 50.0
	crossRegionalBonus  = 1.25
	crossRegionalFloor  = 0.5
	defaultSkillWeight  = 0.5
	defaultContribValue = 0.5
)

var contributionWeights = map[string]float64{
	"code":      1.0,
	"design":    0.8,
	"content":   0.7,
	"marketing": 0.6,
	"funding":   1.2,
}

// MatchCreators ranks creators against a set of required skills. Only
// creators with at least one matching skill and a reputation above the
// floor qualify; the top five are returned by descending match score.
func MatchCreators(creators []Creator, requiredSkills []string) []CreatorMatch {
	required := make(map[string]bool, len(requiredSkills))
	for _, s := range requiredSkills {
		required[s] = true
	}

	var matches []CreatorMatch
	for _, creator := range creators {
		matched := 0
		for _, skill := range creator.Skills {
			if required[skill] {
				matched++
			}
		}
		if matched == 0 || creator.Reputation <= minMatchReputation {
			continue
		}
		matches = append(matches, CreatorMatch{
			CreatorID:     creator.ID,
			MatchScore:    float64(matched) * creator.Reputation / 100,
			SkillsMatched: matched,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].MatchScore > matches[j].MatchScore
	})
	if len(matches) > maxCreatorMatches {
		matches = matches[:maxCreatorMatches]
	}
	return matches
}

// OptimizeOwnership derives ownership percentages from skill value against
// market needs plus valued contributions. The result sums to 100 whenever
// any creator carries value; an all-zero input yields an empty map.
func OptimizeOwnership(creators []Creator, contributions []Contribution, marketNeeds []string) map[string]float64 {
	if len(creators) == 0 {
		return map[string]float64{}
	}

	skillValues := skillWeights(creators, marketNeeds)
	contribValues := contributionValues(contributions)

	total := 0.0
	perCreator := make(map[string]float64, len(creators))
	for _, creator := range creators {
		v := skillValues[creator.ID] + contribValues[creator.ID]
		perCreator[creator.ID] = v
		total += v
	}
	if total == 0 {
		return map[string]float64{}
	}

	splits := make(map[string]float64, len(creators))
	for id, v := range perCreator {
		splits[id] = v / total * 100
	}
	return splits
}

// skillWeights values each creator's skills: needs listed later carry more
// weight, off-need skills count half, and reputation scales the total.
func skillWeights(creators []Creator, marketNeeds []string) map[string]float64 {
	needWeights := make(map[string]float64, len(marketNeeds))
	for i, need := range marketNeeds {
		needWeights[need] = 1.0 + float64(i)*0.2
	}

	weights := make(map[string]float64, len(creators))
	for _, creator := range creators {
		value := 0.0
		for _, skill := range creator.Skills {
			if w, ok := needWeights[skill]; ok {
				value += w
			} else {
				value += defaultSkillWeight
			}
		}
		weights[creator.ID] = value * creator.Reputation / 100
	}
	return weights
}

func contributionValues(contributions []Contribution) map[string]float64 {
	values := make(map[string]float64)
	for _, contrib := range contributions {
		base, ok := contributionWeights[contrib.Type]
		if !ok {
			base = defaultContribValue
		}
		values[contrib.ContributorID] += base * contrib.EffortHours * contrib.QualityScore
	}
	return values
}

// StructureQuality summarizes how healthy a proposed ownership structure is.
type StructureQuality struct {
	DiversityScore     float64 `json:"diversity_score"`
	SkillDiversity     float64 `json:"skill_diversity"`
	TrustScore         float64 `json:"trust_score"`
	BalanceScore       float64 `json:"balance_score"`
	CrossRegionalBonus float64 `json:"cross_regional_bonus"`
	Overall            float64 `json:"overall"`
}

// CollaborationQuality scores a creator group and its ownership split on
// regional diversity, skill spread, trust, and ownership balance. Balance
// uses the Gini complement, so an even split scores 1. Groups spanning
// regions earn the cross-regional bonus on the overall score, capped at 1.
func CollaborationQuality(creators []Creator, ownership map[string]float64) StructureQuality {
	if len(creators) == 0 || len(ownership) == 0 {
		return StructureQuality{CrossRegionalBonus: 1.0}
	}

	regions := make(map[string]bool)
	skills := make(map[string]bool)
	reputationSum := 0.0
	for _, c := range creators {
		region := c.Region
		if region == "" {
			region = "Global"
		}
		regions[region] = true
		for _, s := range c.Skills {
			skills[s] = true
		}
		reputationSum += c.Reputation
	}

	q := StructureQuality{
		DiversityScore: minFloat(float64(len(regions))/float64(len(creators)), 1.0),
		SkillDiversity: float64(len(skills)) / float64(len(creators)),
		TrustScore:     reputationSum / float64(len(creators)) / 100,
		BalanceScore:   giniComplement(ownershipValues(ownership)),
	}
	q.CrossRegionalBonus = 1.0
	if q.DiversityScore > crossRegionalFloor {
		q.CrossRegionalBonus = crossRegionalBonus
	}
	q.Overall = minFloat((q.DiversityScore*0.3+q.BalanceScore*0.4+q.TrustScore*0.3)*q.CrossRegionalBonus, 1.0)
	return q
}

func ownershipValues(ownership map[string]float64) []float64 {
	values := make([]float64, 0, len(ownership))
	for _, v := range ownership {
		values = append(values, v)
	}
	return values
}

// giniComplement returns 1 minus the Gini coefficient of values.
func giniComplement(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	cumTotal := 0.0
	running := 0.0
	for _, v := range sorted {
		running += v
		cumTotal += running
	}
	if running == 0 {
		return 0
	}
	gini := float64(n+1)/float64(n) - 2*cumTotal/(float64(n)*running)
	return 1 - gini
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
