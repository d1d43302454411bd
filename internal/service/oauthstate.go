package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"galaxyco.ai/api-server/internal/model"
)

// ErrInvalidState covers malformed, tampered, or expired OAuth state tokens.
var ErrInvalidState = errors.New("invalid oauth state")

const stateTTL = 10 * time.Minute

// stateClaims is the signed payload round-tripped through the provider's
// authorize redirect. Signing (HS256) replaces the plain base64 blob the
// platform used before: the state is now tamper-evident.
type stateClaims struct {
	WorkspaceID string `json:"workspace_id"`
	Provider    string `json:"provider"`
	Nonce       string `json:"nonce"`
	jwt.RegisteredClaims
}

type stateSigner struct {
	secret []byte
}

func newStateSigner(secret []byte) *stateSigner {
	return &stateSigner{secret: secret}
}

func (s *stateSigner) Sign(workspaceID uuid.UUID, provider model.Provider) (string, error) {
	if len(s.secret) == 0 {
		return "", fmt.Errorf("state signing secret is not configured")
	}

	now := time.Now()
	claims := stateClaims{
		WorkspaceID: workspaceID.String(),
		Provider:    string(provider),
		Nonce:       uuid.NewString(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(stateTTL)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing state: %w", err)
	}
	return token, nil
}

// Verify fails closed: wrong signature, wrong algorithm, expiry, or an
// unparseable workspace id all yield ErrInvalidState.
func (s *stateSigner) Verify(state string) (uuid.UUID, model.Provider, error) {
	if len(s.secret) == 0 {
		return uuid.Nil, "", fmt.Errorf("state signing secret is not configured")
	}

	var claims stateClaims
	_, err := jwt.ParseWithClaims(state, &claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return uuid.Nil, "", ErrInvalidState
	}

	workspaceID, err := uuid.Parse(claims.WorkspaceID)
	if err != nil {
		return uuid.Nil, "", ErrInvalidState
	}
	provider := model.Provider(claims.Provider)
	if !provider.Valid() {
		return uuid.Nil, "", ErrInvalidState
	}

	return workspaceID, provider, nil
}
