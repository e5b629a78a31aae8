package artefacts

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
)

type fakeAdmitter struct {
	lastReq  domain.AdmitRequest
	artefact *domain.Artefact
	err      error
}

func (f *fakeAdmitter) Admit(ctx context.Context, req domain.AdmitRequest) (*domain.Artefact, error) {
	f.lastReq = req
	return f.artefact, f.err
}

func setup(admitter Admitter) (*gin.Engine, string) {
	gin.SetMode(gin.TestMode)
	issuer := auth.NewTokenIssuer("test-secret", time.Hour)

	r := gin.New()
	group := r.Group("/api/artefacts")
	group.Use(auth.Required(issuer))
	Register(group, NewRepo(nil), admitter)

	token, _ := issuer.Issue(&auth.Consultant{ID: 1, Name: "Alice Wong", Email: "a@velion.com", Role: auth.RoleConsultant})
	return r, token
}

func post(r *gin.Engine, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	_ = json.NewEncoder(&buf).Encode(body)
	req := httptest.NewRequest(http.MethodPost, "/api/artefacts", &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func validBody() gin.H {
	return gin.H{
		"title":           "X",
		"confidentiality": "Internal",
		"reviewDueOn":     "2026-01-01",
		"category":        "Cloud",
		"tagIds":          []int64{1},
	}
}

func TestCreate_Success(t *testing.T) {
	admitter := &fakeAdmitter{artefact: &domain.Artefact{ID: 42, Status: domain.StatusPendingReview}}
	r, token := setup(admitter)

	rr := post(r, token, validBody())

	require.Equal(t, http.StatusCreated, rr.Code)

	var resp struct {
		ID      int64  `json:"id"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, int64(42), resp.ID)
	assert.Contains(t, resp.Message, "pending review")

	assert.Equal(t, int64(1), admitter.lastReq.OwnerID, "owner comes from the token")
	assert.Equal(t, "X", admitter.lastReq.Title)
	require.NotNil(t, admitter.lastReq.Category)
	assert.Equal(t, "Cloud", *admitter.lastReq.Category)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), admitter.lastReq.ReviewDueOn)
}

func TestCreate_MissingRequiredFields(t *testing.T) {
	for _, field := range []string{"title", "confidentiality", "reviewDueOn"} {
		t.Run(field, func(t *testing.T) {
			admitter := &fakeAdmitter{}
			r, token := setup(admitter)

			body := validBody()
			delete(body, field)
			rr := post(r, token, body)

			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Zero(t, admitter.lastReq.OwnerID, "engine must not be reached")
		})
	}
}

func TestCreate_BadDate(t *testing.T) {
	r, token := setup(&fakeAdmitter{})

	body := validBody()
	body["reviewDueOn"] = "January 1st"
	rr := post(r, token, body)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "YYYY-MM-DD")
}

func TestCreate_EngineValidationIs400(t *testing.T) {
	admitter := &fakeAdmitter{err: domain.Validationf("No governance rule exists for this artefact category. Choose a valid category.")}
	r, token := setup(admitter)

	body := validBody()
	body["category"] = "Nonexistent"
	rr := post(r, token, body)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "No governance rule")
}

func TestCreate_StorageFailureIsGeneric500(t *testing.T) {
	admitter := &fakeAdmitter{err: context.DeadlineExceeded}
	r, token := setup(admitter)

	rr := post(r, token, validBody())

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), "Internal server error")
}

func TestCreate_RequiresAuth(t *testing.T) {
	r, _ := setup(&fakeAdmitter{})

	var buf bytes.Buffer
	_ = json.NewEncoder(&buf).Encode(validBody())
	req := httptest.NewRequest(http.MethodPost, "/api/artefacts", &buf)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
