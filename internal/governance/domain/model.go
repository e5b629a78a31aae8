package domain

import "time"

// Artefact is a governed knowledge record. Status and trust level move
// together: an artefact is Trusted exactly while its status is Trusted.
type Artefact struct {
	ID              int64      `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Status          string     `json:"status"`
	TrustLevel      string     `json:"trust_level"`
	Confidentiality string     `json:"confidentiality"`
	Category        *string    `json:"category,omitempty"`
	CreatedOn       time.Time  `json:"created_on"`
	ReviewDueOn     time.Time  `json:"review_due_on"`
	OwnerID         int64      `json:"owner_id"`
	ProjectID       *int64     `json:"project_id,omitempty"`
	WorkspaceID     *int64     `json:"workspace_id,omitempty"`
}

// Artefact status values
const (
	StatusDraft         = "Draft"
	StatusPendingReview = "PendingReview"
	StatusTrusted       = "Trusted"
	StatusRetired       = "Retired"
)

// Trust levels
const (
	TrustUntrusted = "Untrusted"
	TrustTrusted   = "Trusted"
)

// Confidentiality values
const (
	ConfidentialityInternal           = "Internal"
	ConfidentialityClientConfidential = "ClientConfidential"
	ConfidentialityRestricted         = "Restricted"
)

// Review decisions
const (
	DecisionApprove  = "approve"
	DecisionReject   = "reject"
	DecisionRetire   = "retire"
	DecisionOutdated = "outdated"
)

// Quality flag types and severities
const (
	FlagDuplicate   = "Duplicate"
	FlagOutdated    = "Outdated"
	FlagPoorQuality = "PoorQuality"

	SeverityLow    = "Low"
	SeverityMedium = "Medium"
	SeverityHigh   = "High"
)

// GovernanceRule is a per-category policy record. A category with no matching
// rule is inadmissible for new artefacts. MandatoryMetadata is carried as
// data and not validated against artefact fields.
type GovernanceRule struct {
	ID                      int64   `json:"id"`
	Name                    string  `json:"name"`
	ArtefactCategory        string  `json:"artefact_category"`
	MaxReviewIntervalMonths *int    `json:"max_review_interval_months,omitempty"`
	RetentionYears          *int    `json:"retention_years,omitempty"`
	MandatoryMetadata       *string `json:"mandatory_metadata,omitempty"`
}

// QualityFlag annotates an artefact (Duplicate, Outdated, ...). Flags
// accumulate and are never removed by the governance engine.
type QualityFlag struct {
	ID                  int64     `json:"id"`
	ArtefactID          int64     `json:"artefact_id"`
	Type                string    `json:"type"`
	Severity            string    `json:"severity"`
	CreatedOn           time.Time `json:"created_on"`
	ReferenceArtefactID *int64    `json:"reference_artefact_id,omitempty"`
}

// GovernanceAction is an append-only audit record of a review decision.
type GovernanceAction struct {
	ID         int64     `json:"id"`
	ArtefactID int64     `json:"artefact_id"`
	ReviewerID int64     `json:"reviewer_id"`
	Action     string    `json:"action"`
	Comments   string    `json:"comments"`
	CreatedOn  time.Time `json:"created_on"`
}

// AdmitRequest is the validated input for artefact creation.
type AdmitRequest struct {
	Title           string
	Description     string
	Confidentiality string
	Category        *string
	ReviewDueOn     time.Time
	TagIDs          []int64
	ProjectID       *int64
	WorkspaceID     *int64
	OwnerID         int64
}

// DecideRequest is the validated input for a review decision.
type DecideRequest struct {
	ArtefactID int64
	ReviewerID int64
	Decision   string
	Comments   string
}

// DecideResult reports the state an artefact was left in by a decision.
type DecideResult struct {
	Status     string
	TrustLevel string
	Decision   string
}

func ValidConfidentiality(v string) bool {
	return v == ConfidentialityInternal ||
		v == ConfidentialityClientConfidential ||
		v == ConfidentialityRestricted
}

func ValidDecision(v string) bool {
	return v == DecisionApprove ||
		v == DecisionReject ||
		v == DecisionRetire ||
		v == DecisionOutdated
}
