package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConsultant() *Consultant {
	return &Consultant{
		ID:       2,
		Name:     "Ben Kumar",
		Email:    "ben.kumar@velion.com",
		Role:     RoleKnowledgeChampion,
		OfficeID: 1,
		RegionID: 1,
	}
}

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", 8*time.Hour)

	token, err := issuer.Issue(testConsultant())
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := issuer.Verify(token)
	require.NoError(t, err)

	assert.Equal(t, int64(2), claims.UserID)
	assert.Equal(t, "Ben Kumar", claims.Name)
	assert.Equal(t, "ben.kumar@velion.com", claims.Email)
	assert.Equal(t, RoleKnowledgeChampion, claims.Role)
	assert.Equal(t, int64(1), claims.RegionID)
	assert.Equal(t, int64(1), claims.OfficeID)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", -time.Minute)

	token, err := issuer.Issue(testConsultant())
	require.NoError(t, err)

	_, err = issuer.Verify(token)
	assert.Error(t, err)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	other := NewTokenIssuer("other-secret", time.Hour)

	token, err := issuer.Issue(testConsultant())
	require.NoError(t, err)

	_, err = other.Verify(token)
	assert.Error(t, err)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)

	_, err := issuer.Verify("not-a-token")
	assert.Error(t, err)
}
