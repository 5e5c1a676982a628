package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// ErrAuthenticationFailed is returned when the Zoom token exchange is
// rejected or its response cannot be parsed. Callers must not attempt to
// create a meeting without a valid token.
var ErrAuthenticationFailed = errors.New("zoom authentication failed")

// tokenSafetyMargin is how close to expiry a cached token is still trusted.
const tokenSafetyMargin = 5 * time.Minute

// ZoomTokenSource caches a server-to-server OAuth bearer token and refreshes
// it via the account-credentials exchange. The refresh path is guarded by a
// singleflight group so concurrent callers over an expired cache share one
// endpoint call.
type ZoomTokenSource struct {
	rc        *resty.Client
	accountID string
	log       zerolog.Logger

	mu     sync.Mutex
	token  string
	expiry time.Time

	group singleflight.Group

	now func() time.Time // swapped in tests
}

// NewZoomTokenSource constructs the token manager. tokenURL is the full
// OAuth token endpoint; clientID/clientSecret form the Basic credentials.
func NewZoomTokenSource(tokenURL, accountID, clientID, clientSecret string, timeout time.Duration, log zerolog.Logger) *ZoomTokenSource {
	rc := resty.New().
		SetBaseURL(tokenURL).
		SetBasicAuth(clientID, clientSecret).
		SetTimeout(timeout)
	return &ZoomTokenSource{
		rc:        rc,
		accountID: accountID,
		log:       log.With().Str("provider", zoomProviderName).Logger(),
		now:       time.Now,
	}
}

type zoomTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	Scope       string `json:"scope"`
}

// Token returns the cached token while its expiry is more than the safety
// margin away; otherwise it performs a single client-credentials exchange.
func (z *ZoomTokenSource) Token(ctx context.Context) (string, error) {
	if tok, ok := z.cached(); ok {
		return tok, nil
	}
	v, err, _ := z.group.Do("token", func() (interface{}, error) {
		// A caller queued behind a completed refresh takes the fresh token
		// instead of triggering another exchange.
		if tok, ok := z.cached(); ok {
			return tok, nil
		}
		return z.refresh(ctx)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (z *ZoomTokenSource) cached() (string, bool) {
	z.mu.Lock()
	defer z.mu.Unlock()
	if z.token != "" && z.expiry.After(z.now().Add(tokenSafetyMargin)) {
		return z.token, true
	}
	return "", false
}

// refresh performs exactly one exchange; no retry.
func (z *ZoomTokenSource) refresh(ctx context.Context) (string, error) {
	var out zoomTokenResponse
	resp, err := z.rc.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/x-www-form-urlencoded").
		SetFormData(map[string]string{
			"grant_type": "account_credentials",
			"account_id": z.accountID,
		}).
		SetResult(&out).
		Post("")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAuthenticationFailed, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("%w: token endpoint status %d", ErrAuthenticationFailed, resp.StatusCode())
	}
	if out.AccessToken == "" || out.ExpiresIn <= 0 {
		return "", fmt.Errorf("%w: malformed token response", ErrAuthenticationFailed)
	}

	z.mu.Lock()
	z.token = out.AccessToken
	z.expiry = z.now().Add(time.Duration(out.ExpiresIn) * time.Second)
	z.mu.Unlock()

	z.log.Debug().Time("expiry", z.expiry).Msg("zoom access token refreshed")
	return out.AccessToken, nil
}
