package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velion-digital/dkn-backend/internal/auth"
	"github.com/velion-digital/dkn-backend/internal/governance/domain"
	"github.com/velion-digital/dkn-backend/internal/governance/store"
)

type fakeDecider struct {
	lastReq domain.DecideRequest
	result  *domain.DecideResult
	err     error
}

func (f *fakeDecider) Decide(ctx context.Context, req domain.DecideRequest) (*domain.DecideResult, error) {
	f.lastReq = req
	return f.result, f.err
}

type fakeCatalog struct {
	rules   []domain.GovernanceRule
	pending []store.PendingArtefact
	err     error
}

func (f *fakeCatalog) ListRules(ctx context.Context) ([]domain.GovernanceRule, error) {
	return f.rules, f.err
}

func (f *fakeCatalog) ListPending(ctx context.Context) ([]store.PendingArtefact, error) {
	return f.pending, f.err
}

func setup(decider Decider, catalog Catalog) (*gin.Engine, *auth.TokenIssuer) {
	gin.SetMode(gin.TestMode)
	issuer := auth.NewTokenIssuer("test-secret", time.Hour)

	r := gin.New()
	group := r.Group("/api/governance")
	group.Use(auth.Required(issuer))
	Register(group, decider, catalog)

	return r, issuer
}

func tokenFor(t *testing.T, issuer *auth.TokenIssuer, id int64, role string) string {
	t.Helper()
	token, err := issuer.Issue(&auth.Consultant{ID: id, Name: "Reviewer", Email: "r@velion.com", Role: role})
	require.NoError(t, err)
	return token
}

func do(r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestReview_Success(t *testing.T) {
	decider := &fakeDecider{result: &domain.DecideResult{
		Status: domain.StatusTrusted, TrustLevel: domain.TrustTrusted, Decision: domain.DecisionApprove,
	}}
	r, issuer := setup(decider, &fakeCatalog{})
	token := tokenFor(t, issuer, 2, auth.RoleKnowledgeChampion)

	rr := do(r, http.MethodPost, "/api/governance/artefacts/5/review", token,
		gin.H{"decision": "approve", "comments": "looks good"})

	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Success    bool   `json:"success"`
		Status     string `json:"status"`
		TrustLevel string `json:"trustLevel"`
		Decision   string `json:"decision"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, domain.StatusTrusted, resp.Status)
	assert.Equal(t, domain.TrustTrusted, resp.TrustLevel)
	assert.Equal(t, domain.DecisionApprove, resp.Decision)

	assert.Equal(t, int64(5), decider.lastReq.ArtefactID)
	assert.Equal(t, int64(2), decider.lastReq.ReviewerID, "reviewer comes from the token, not the body")
	assert.Equal(t, "looks good", decider.lastReq.Comments)
}

func TestReview_PolicyViolationIs400(t *testing.T) {
	decider := &fakeDecider{err: domain.Policyf("Governance independence: reviewers cannot govern their own artefacts.")}
	r, issuer := setup(decider, &fakeCatalog{})
	token := tokenFor(t, issuer, 1, auth.RoleGovCouncil)

	rr := do(r, http.MethodPost, "/api/governance/artefacts/5/review", token, gin.H{"decision": "approve"})

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "Governance independence")
}

func TestReview_UnsupportedDecisionIs400(t *testing.T) {
	decider := &fakeDecider{err: domain.Validationf("Unsupported decision.")}
	r, issuer := setup(decider, &fakeCatalog{})
	token := tokenFor(t, issuer, 2, auth.RoleGovCouncil)

	rr := do(r, http.MethodPost, "/api/governance/artefacts/5/review", token, gin.H{"decision": "escalate"})

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "Unsupported decision")
}

func TestReview_NotFoundIs404(t *testing.T) {
	decider := &fakeDecider{err: domain.ErrArtefactNotFound}
	r, issuer := setup(decider, &fakeCatalog{})
	token := tokenFor(t, issuer, 2, auth.RoleKnowledgeChampion)

	rr := do(r, http.MethodPost, "/api/governance/artefacts/99/review", token, gin.H{"decision": "approve"})

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestReview_StorageFailureIsGeneric500(t *testing.T) {
	decider := &fakeDecider{err: context.DeadlineExceeded}
	r, issuer := setup(decider, &fakeCatalog{})
	token := tokenFor(t, issuer, 2, auth.RoleKnowledgeChampion)

	rr := do(r, http.MethodPost, "/api/governance/artefacts/5/review", token, gin.H{"decision": "approve"})

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), "Internal server error")
	assert.NotContains(t, rr.Body.String(), "deadline", "internal detail must not leak")
}

func TestReview_InvalidArtefactID(t *testing.T) {
	r, issuer := setup(&fakeDecider{}, &fakeCatalog{})
	token := tokenFor(t, issuer, 2, auth.RoleKnowledgeChampion)

	rr := do(r, http.MethodPost, "/api/governance/artefacts/abc/review", token, gin.H{"decision": "approve"})

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGovernanceRoutes_RoleGate(t *testing.T) {
	r, issuer := setup(&fakeDecider{}, &fakeCatalog{})
	token := tokenFor(t, issuer, 3, auth.RoleConsultant)

	for _, route := range []struct {
		method, path string
	}{
		{http.MethodGet, "/api/governance/rules"},
		{http.MethodGet, "/api/governance/pending-artefacts"},
		{http.MethodPost, "/api/governance/artefacts/1/review"},
	} {
		rr := do(r, route.method, route.path, token, gin.H{"decision": "approve"})
		assert.Equal(t, http.StatusForbidden, rr.Code, "%s %s", route.method, route.path)
	}
}

func TestGovernanceRoutes_RequireToken(t *testing.T) {
	r, _ := setup(&fakeDecider{}, &fakeCatalog{})

	rr := do(r, http.MethodGet, "/api/governance/rules", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestListRules(t *testing.T) {
	catalog := &fakeCatalog{rules: []domain.GovernanceRule{
		{ID: 1, Name: "Cloud Playbook Standard", ArtefactCategory: "Cloud"},
	}}
	r, issuer := setup(&fakeDecider{}, catalog)
	token := tokenFor(t, issuer, 2, auth.RoleGovCouncil)

	rr := do(r, http.MethodGet, "/api/governance/rules", token, nil)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Cloud Playbook Standard")
}

func TestListPending(t *testing.T) {
	catalog := &fakeCatalog{pending: []store.PendingArtefact{
		{ID: 4, Title: "DevOps Handbook", Status: domain.StatusPendingReview, OwnerName: "Alice Wong"},
	}}
	r, issuer := setup(&fakeDecider{}, catalog)
	token := tokenFor(t, issuer, 2, auth.RoleKnowledgeChampion)

	rr := do(r, http.MethodGet, "/api/governance/pending-artefacts", token, nil)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "DevOps Handbook")
	assert.Contains(t, rr.Body.String(), "Alice Wong")
}
