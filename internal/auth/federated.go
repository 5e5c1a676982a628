package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/timelyapp/timely/internal/model"
)

// Challenge carries the nonce pair for one federated sign-in attempt. The
// hashed form goes to the provider; the raw form never leaves the client
// until the final exchange.
type Challenge struct {
	RawNonce    string
	HashedNonce string
}

// BeginFederated mints a fresh nonce challenge.
func BeginFederated() (Challenge, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return Challenge{}, fmt.Errorf("%w: nonce generation: %v", model.ErrFederatedAuth, err)
	}
	raw := hex.EncodeToString(buf)
	sum := sha256.Sum256([]byte(raw))
	return Challenge{RawNonce: raw, HashedNonce: hex.EncodeToString(sum[:])}, nil
}

// CompleteFederated checks the provider credential against the challenge
// and exchanges it for a session. The credential's nonce claim must equal
// the raw nonce; the signature itself is verified server-side by the
// identity service, not here.
func (s *Service) CompleteFederated(ctx context.Context, credential string, ch Challenge) error {
	if err := verifyNonceClaim(credential, ch.RawNonce); err != nil {
		return err
	}

	var out sessionResponse
	resp, err := s.rc.R().
		SetContext(ctx).
		SetBody(map[string]string{"credential": credential, "rawNonce": ch.RawNonce}).
		SetResult(&out).
		Post("/api/auth/federated")
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrFederatedAuth, err)
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("%w: identity service returned %d", model.ErrFederatedAuth, resp.StatusCode())
	}
	if out.UserID == "" {
		return fmt.Errorf("%w: response missing user id", model.ErrFederatedAuth)
	}
	s.setSession(out.toSession())
	return nil
}

func verifyNonceClaim(credential, rawNonce string) error {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(credential, claims); err != nil {
		return fmt.Errorf("%w: malformed credential: %v", model.ErrFederatedAuth, err)
	}
	nonce, _ := claims["nonce"].(string)
	if nonce == "" || nonce != rawNonce {
		return fmt.Errorf("%w: nonce mismatch", model.ErrFederatedAuth)
	}
	return nil
}
