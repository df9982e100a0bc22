package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"tasktracker/internal/model"
)

func TestJWTService_IssueAndVerify(t *testing.T) {
	svc := NewJWTService("test-secret", 0)

	identity := Identity{ID: uuid.New(), Role: model.RoleAdmin}
	token, err := svc.Issue(identity)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	decoded, err := svc.Verify(token)
	assert.NoError(t, err)
	assert.Equal(t, identity.ID, decoded.ID)
	assert.Equal(t, identity.Role, decoded.Role)
}

func TestJWTService_Verify_WrongSecret(t *testing.T) {
	issuer := NewJWTService("secret-a", 0)
	verifier := NewJWTService("secret-b", 0)

	token, err := issuer.Issue(Identity{ID: uuid.New(), Role: model.RoleUser})
	assert.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.Error(t, err)
}

func TestJWTService_Verify_Garbage(t *testing.T) {
	svc := NewJWTService("test-secret", 0)

	_, err := svc.Verify("not-a-token")
	assert.Error(t, err)
}

func TestJWTService_Verify_Expired(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)

	// A correctly signed token whose expiry has already passed.
	claims := &Claims{
		UserID: uuid.New().String(),
		Role:   model.RoleUser,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	assert.NoError(t, err)

	_, err = svc.Verify(expired)
	assert.Error(t, err)
}

func TestJWTService_Verify_WithinTTL(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)

	token, err := svc.Issue(Identity{ID: uuid.New(), Role: model.RoleUser})
	assert.NoError(t, err)

	decoded, err := svc.Verify(token)
	assert.NoError(t, err)
	assert.Equal(t, model.RoleUser, decoded.Role)
}

func TestJWTService_NoTTLMeansNoExpiry(t *testing.T) {
	svc := NewJWTService("test-secret", 0)

	token, err := svc.Issue(Identity{ID: uuid.New(), Role: model.RoleUser})
	assert.NoError(t, err)

	// Verification long after issuance still succeeds when no TTL is set;
	// the token simply carries no expiry claim.
	decoded, err := svc.Verify(token)
	assert.NoError(t, err)
	assert.Equal(t, model.RoleUser, decoded.Role)
}

func TestIdentity_CanAccess(t *testing.T) {
	owner := uuid.New()
	other := uuid.New()

	admin := Identity{ID: other, Role: model.RoleAdmin}
	assert.True(t, admin.CanAccess(owner))

	self := Identity{ID: owner, Role: model.RoleUser}
	assert.True(t, self.CanAccess(owner))

	stranger := Identity{ID: other, Role: model.RoleUser}
	assert.False(t, stranger.CanAccess(owner))
}
