package models

import (
	"time"
)

// FundingTier classifies a party's funding capacity.
type FundingTier string

const (
	FundingLow    FundingTier = "low"
	FundingMedium FundingTier = "medium"
	FundingHigh   FundingTier = "high"
)

// Weight returns the relative weight used for funding-split suggestions.
// Unknown tiers count as medium.
func (f FundingTier) Weight() int {
	switch f {
	case FundingLow:
		return 1
	case FundingHigh:
		return 3
	default:
		return 2
	}
}

// CollabRecord is one prior collaboration of a user.
type CollabRecord struct {
	PartnerID      string `json:"partner_id" db:"partner_id"`
	Status         string `json:"status" db:"status"` // "completed", "active", "cancelled"
	DurationMonths int    `json:"duration_months" db:"duration_months"`
}

// ResourceCapacity describes what a party can commit to a collaboration.
type ResourceCapacity struct {
	FundingTier FundingTier `json:"funding_tier"`
	TeamSize    int         `json:"team_size"`
}

// Context is a snapshot of a user's/project's attributes relevant to
// collaboration scoring. Built on demand from the catalogue store and
// cached with a short TTL keyed by (user id, project id).
type Context struct {
	UserID             string           `json:"user_id"`
	Name               string           `json:"name"`
	ProjectID          string           `json:"project_id,omitempty"`
	AssetIDs           []string         `json:"asset_ids,omitempty"`
	ExpertiseAreas     []string         `json:"expertise_areas"`
	StrategicGoals     []string         `json:"strategic_goals"`
	History            []CollabRecord   `json:"collaboration_history"`
	Resources          ResourceCapacity `json:"resource_capacity"`
	Location           string           `json:"geographic_location"`
	TargetMarkets      []string         `json:"target_markets"`
	TimelineUrgency    string           `json:"timeline_urgency,omitempty"` // "low", "normal", "high"
	SuccessRate        float64          `json:"success_rate"`               // [0,1]
	HasIPPortfolio     bool             `json:"has_ip_portfolio"`
	InnovationRecord   bool             `json:"innovation_track_record"`
	ProjectStage       string           `json:"project_stage,omitempty"`
	ProjectDescription string           `json:"project_description,omitempty"`
	BuiltAt            time.Time        `json:"built_at"`
}

// Completeness returns the fraction of the five expected context fields
// that are populated: expertise, history, resources, goals, location.
func (c *Context) Completeness() float64 {
	if c == nil {
		return 0
	}
	present := 0
	if len(c.ExpertiseAreas) > 0 {
		present++
	}
	if len(c.History) > 0 {
		present++
	}
	if c.Resources.TeamSize > 0 || c.Resources.FundingTier != "" {
		present++
	}
	if len(c.StrategicGoals) > 0 {
		present++
	}
	if c.Location != "" {
		present++
	}
	return float64(present) / 5.0
}

// CollaborationRequest is an incoming bilateral collaboration proposal.
type CollaborationRequest struct {
	ID              string    `json:"id"`
	InitiatorID     string    `json:"initiator_id"`
	TargetUserID    string    `json:"target_user_id"`
	ProjectID       string    `json:"project_id,omitempty"`
	TargetProjectID string    `json:"target_project_id,omitempty"`
	AssetIDs        []string  `json:"asset_ids,omitempty"`
	Message         string    `json:"message,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// StrategicCriteria are the merged filter criteria forwarded to the
// candidate source by the strategic discovery strategy.
type StrategicCriteria struct {
	Domains         []string          `json:"domain_alignment"`
	Stage           string            `json:"collaboration_stage"`
	Geography       string            `json:"geographic_preference"`
	ResourceNeeds   string            `json:"resource_needs"`
	TimelineUrgency string            `json:"timeline_constraints"`
	Overrides       map[string]string `json:"overrides,omitempty"`
}

// CatalogueDoc is one entry of the semantic text catalogue (an IP asset or
// a project listing).
type CatalogueDoc struct {
	Type            string   `json:"type" db:"doc_type"` // "asset" or "project"
	ID              string   `json:"id" db:"id"`
	OwnerID         string   `json:"owner_id" db:"owner_id"`
	Domain          string   `json:"domain" db:"domain"`
	TechnologyAreas []string `json:"technology_areas"`
	Title           string   `json:"title" db:"title"`
	Description     string   `json:"description" db:"description"`
}

// Text flattens a catalogue doc into the text compared by the semantic
// matcher, mirroring how user text profiles are assembled.
func (d CatalogueDoc) Text() string {
	out := d.Title + " " + d.Description
	for _, t := range d.TechnologyAreas {
		out += " " + t
	}
	if d.Domain != "" {
		out += " " + d.Domain
	}
	return out
}

// Transaction is a marketplace trade record consumed by market analytics.
type Transaction struct {
	ID        string    `json:"id" db:"id"`
	AssetID   string    `json:"asset_id" db:"asset_id"`
	AssetType string    `json:"asset_type" db:"asset_type"`
	Price     float64   `json:"price" db:"price"`
	Volume    float64   `json:"volume" db:"volume"`
	Timestamp time.Time `json:"timestamp" db:"ts"`
}

// Asset is a marketplace IP asset listing.
type Asset struct {
	ID                string   `json:"id" db:"id"`
	OwnerID           string   `json:"owner_id" db:"owner_id"`
	Type              string   `json:"asset_type" db:"asset_type"` // "NFT", "Phygital", "Digital", "RealWorldAsset"
	Price             float64  `json:"price" db:"price"`
	UtilityFeatures   []string `json:"utility_features"`
	CreatorReputation float64  `json:"creator_reputation" db:"creator_reputation"` // [0,100]
}
