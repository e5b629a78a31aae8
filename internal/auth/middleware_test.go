package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(issuer *TokenIssuer, roles ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	group := r.Group("/protected")
	group.Use(Required(issuer))
	if len(roles) > 0 {
		group.Use(RequireRole(roles...))
	}
	group.GET("", func(c *gin.Context) {
		claims := CurrentUser(c)
		c.JSON(http.StatusOK, gin.H{"id": claims.UserID, "role": claims.Role})
	})
	return r
}

func doGet(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestRequired_MissingHeader(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	r := setupRouter(issuer)

	rr := doGet(r, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRequired_MalformedHeader(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	r := setupRouter(issuer)

	rr := doGet(r, "Basic abc123")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRequired_InvalidToken(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	r := setupRouter(issuer)

	rr := doGet(r, "Bearer bogus")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRequired_ValidToken(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	r := setupRouter(issuer)

	token, err := issuer.Issue(testConsultant())
	require.NoError(t, err)

	rr := doGet(r, "Bearer "+token)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"id":2`)
}

func TestRequireRole_Allowed(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	r := setupRouter(issuer, GovernanceRoles...)

	token, err := issuer.Issue(testConsultant())
	require.NoError(t, err)

	rr := doGet(r, "Bearer "+token)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRequireRole_Forbidden(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	r := setupRouter(issuer, GovernanceRoles...)

	plain := testConsultant()
	plain.Role = RoleConsultant
	token, err := issuer.Issue(plain)
	require.NoError(t, err)

	rr := doGet(r, "Bearer "+token)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Contains(t, rr.Body.String(), "Forbidden for role Consultant")
}
