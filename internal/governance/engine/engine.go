package engine

import (
	"context"
	"strings"
	"time"

	"github.com/velion-digital/dkn-backend/internal/governance/domain"
)

// Engine applies the artefact governance lifecycle: admission of new
// artefacts and review decisions on existing ones. All rule evaluation
// happens inside a single store transaction per operation, so a failed
// precondition never leaves a partial write behind.
type Engine struct {
	store Store
	now   func() time.Time
}

func New(store Store) *Engine {
	return &Engine{store: store, now: time.Now}
}

// NewWithClock is for tests that need a fixed date.
func NewWithClock(store Store, now func() time.Time) *Engine {
	return &Engine{store: store, now: now}
}

// Admit validates a creation request and persists the artefact, its tag
// links and a binding row for every governance rule matching the category at
// this moment. The binding is a snapshot: later catalog edits do not touch
// existing artefacts. Nothing is audited at creation; audit begins at first
// review.
func (e *Engine) Admit(ctx context.Context, req domain.AdmitRequest) (*domain.Artefact, error) {
	if strings.TrimSpace(req.Title) == "" || req.Confidentiality == "" || req.ReviewDueOn.IsZero() {
		return nil, domain.Validationf("Title, confidentiality and reviewDueOn are required.")
	}
	if !domain.ValidConfidentiality(req.Confidentiality) {
		return nil, domain.Validationf("Unknown confidentiality level.")
	}
	if len(req.TagIDs) == 0 {
		return nil, domain.Validationf("At least one tag is required.")
	}

	artefact := &domain.Artefact{
		Title:           strings.TrimSpace(req.Title),
		Description:     req.Description,
		Status:          domain.StatusPendingReview,
		TrustLevel:      domain.TrustUntrusted,
		Confidentiality: req.Confidentiality,
		Category:        req.Category,
		CreatedOn:       e.today(),
		ReviewDueOn:     req.ReviewDueOn,
		OwnerID:         req.OwnerID,
		ProjectID:       req.ProjectID,
		WorkspaceID:     req.WorkspaceID,
	}

	err := e.store.InTx(ctx, func(tx Tx) error {
		rules, err := tx.RulesForCategory(ctx, req.Category)
		if err != nil {
			return err
		}
		if len(rules) == 0 {
			return domain.Validationf("No governance rule exists for this artefact category. Choose a valid category.")
		}

		id, err := tx.InsertArtefact(ctx, artefact)
		if err != nil {
			return err
		}
		artefact.ID = id

		if err := tx.LinkTags(ctx, id, req.TagIDs); err != nil {
			return err
		}

		ruleIDs := make([]int64, 0, len(rules))
		for _, r := range rules {
			ruleIDs = append(ruleIDs, r.ID)
		}
		return tx.BindRules(ctx, id, ruleIDs)
	})
	if err != nil {
		return nil, err
	}

	return artefact, nil
}

// Decide evaluates a review decision against the fixed policy and applies
// it. The artefact row is locked for the duration of the transaction; the
// state change and the audit append commit together or not at all.
//
// There is deliberately no current-state guard: re-approving an already
// Trusted artefact succeeds and simply re-logs an action.
func (e *Engine) Decide(ctx context.Context, req domain.DecideRequest) (*domain.DecideResult, error) {
	var result *domain.DecideResult

	err := e.store.InTx(ctx, func(tx Tx) error {
		artefact, err := tx.GetArtefactForUpdate(ctx, req.ArtefactID)
		if err != nil {
			return err
		}

		// Governance independence applies to every decision kind, before
		// any decision-specific check.
		if artefact.OwnerID == req.ReviewerID {
			return domain.Policyf("Governance independence: reviewers cannot govern their own artefacts.")
		}

		newStatus := artefact.Status
		newTrust := artefact.TrustLevel

		switch req.Decision {
		case domain.DecisionApprove:
			if artefact.ProjectID == nil && artefact.WorkspaceID == nil {
				return domain.Policyf("Cannot approve: artefact not linked to project or workspace.")
			}
			dupes, err := tx.CountFlags(ctx, artefact.ID, domain.FlagDuplicate)
			if err != nil {
				return err
			}
			if dupes > 0 {
				return domain.Policyf("Cannot approve: artefact is marked as Duplicate.")
			}
			newStatus = domain.StatusTrusted
			newTrust = domain.TrustTrusted

		case domain.DecisionReject:
			newStatus = domain.StatusDraft
			newTrust = domain.TrustUntrusted

		case domain.DecisionRetire:
			newStatus = domain.StatusRetired
			newTrust = domain.TrustUntrusted

		case domain.DecisionOutdated:
			// Status and trust stay as they are; the decision is recorded
			// as a quality flag plus the audit row.
			flag := &domain.QualityFlag{
				ArtefactID: artefact.ID,
				Type:       domain.FlagOutdated,
				Severity:   domain.SeverityMedium,
				CreatedOn:  e.today(),
			}
			if err := tx.InsertFlag(ctx, flag); err != nil {
				return err
			}

		default:
			return domain.Validationf("Unsupported decision.")
		}

		if newStatus != artefact.Status || newTrust != artefact.TrustLevel {
			if err := tx.UpdateArtefactState(ctx, artefact.ID, newStatus, newTrust); err != nil {
				return err
			}
		}

		action := &domain.GovernanceAction{
			ArtefactID: artefact.ID,
			ReviewerID: req.ReviewerID,
			Action:     req.Decision,
			Comments:   req.Comments,
			CreatedOn:  e.today(),
		}
		if err := tx.AppendAction(ctx, action); err != nil {
			return err
		}

		result = &domain.DecideResult{
			Status:     newStatus,
			TrustLevel: newTrust,
			Decision:   req.Decision,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (e *Engine) today() time.Time {
	return e.now().UTC().Truncate(24 * time.Hour)
}
