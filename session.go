package epicmix

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/go-querystring/query"
	"go.uber.org/zap"
)

const (
	modeAuthenticate = "authenticate"
	modeToken        = "token"
)

// tokenParser only reads claims; EpicMix does not publish a verification key.
var tokenParser = jwt.NewParser()

type sessionStore struct {
	sync.Mutex

	current *Session
}

// Session is the state returned by a successful authentication.
// It is replaced as a whole on every refresh.
type Session struct {
	raw         json.RawMessage
	accessToken string
	expiresAt   time.Time
}

// AccessToken returns the bearer token sent with API requests.
func (s Session) AccessToken() string {
	return s.accessToken
}

// ExpiresAt returns the expiry of the access token when it is a JWT carrying
// an exp claim. The value is informational; refreshes are driven by 401s.
func (s Session) ExpiresAt() (time.Time, bool) {
	return s.expiresAt, !s.expiresAt.IsZero()
}

// Raw returns a copy of the opaque session object as returned by the server.
func (s Session) Raw() json.RawMessage {
	return bytes.Clone(s.raw)
}

type authParams struct {
	Env  string `url:"env"`
	Mode string `url:"mode"`
	Lang string `url:"lang"`
}

type authResponse struct {
	Specific json.RawMessage `json:"specific"`
}

// UnmarshalJSON implements the [json.Unmarshaler] interface.
func (r *authResponse) UnmarshalJSON(data []byte) error {
	type alias authResponse
	return decodeEnvelope(data, "authentication response", (*alias)(r))
}

// Authenticate performs the authentication handshake. The first call logs in
// with the rider's credentials; later calls exchange the current session for
// a fresh one.
func (c *Client) Authenticate(ctx context.Context) error {
	c.session.Lock()
	defer c.session.Unlock()

	mode := modeAuthenticate
	var body any = c.creds
	if c.session.current != nil {
		mode = modeToken
		body = c.session.current.raw
	}

	log := c.logger.With(
		zap.String("mode", mode),
		zap.String("username", maskUsername(c.creds.Username)),
	)

	sess, err := c.authenticate(ctx, mode, body)
	if err != nil {
		c.metrics.observeAuth(mode, "error")
		log.Warn("epicmix.auth.failed", zap.Error(err))
		return fmt.Errorf("%w: %w", ErrAuthentication, err)
	}

	c.session.current = sess
	c.metrics.observeAuth(mode, "ok")

	fields := []zap.Field{}
	if exp, ok := sess.ExpiresAt(); ok {
		fields = append(fields, zap.Time("expires_at", exp))
	}
	log.Info("epicmix.auth.authenticated", fields...)

	return nil
}

func (c *Client) authenticate(ctx context.Context, mode string, body any) (*Session, error) {
	params, err := query.Values(authParams{Env: c.env, Mode: mode, Lang: c.lang})
	if err != nil {
		return nil, err
	}

	req, err := c.newRequest(ctx, http.MethodPost, c.authURL, params, body)
	if err != nil {
		return nil, err
	}

	var resp authResponse
	if err := c.doJSON(req, mode, &resp); err != nil {
		return nil, err
	}

	return newSession(resp.Specific)
}

// Session returns the current session, if the client has authenticated.
func (c *Client) Session() (Session, bool) {
	c.session.Lock()
	defer c.session.Unlock()

	if c.session.current == nil {
		return Session{}, false
	}
	return *c.session.current, true
}

// bearer returns the Authorization header value for the current session.
func (c *Client) bearer() string {
	c.session.Lock()
	defer c.session.Unlock()

	if c.session.current == nil {
		return ""
	}
	return "Bearer " + c.session.current.accessToken
}

// newSession extracts the access token from the opaque session object.
func newSession(raw json.RawMessage) (*Session, error) {
	var specific struct {
		TokenResponse struct {
			AccessToken string `json:"accessToken"`
		} `json:"tokenResponse"`
	}
	if err := json.Unmarshal(raw, &specific); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}

	if specific.TokenResponse.AccessToken == "" {
		return nil, ErrNoAccessToken
	}

	s := &Session{
		raw:         bytes.Clone(raw),
		accessToken: specific.TokenResponse.AccessToken,
	}
	if exp, ok := tokenExpiry(s.accessToken); ok {
		s.expiresAt = exp
	}

	return s, nil
}

// tokenExpiry reads the exp claim of a JWT without verifying its signature.
func tokenExpiry(token string) (time.Time, bool) {
	var claims jwt.RegisteredClaims
	if _, _, err := tokenParser.ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}

	return claims.ExpiresAt.Time, true
}

// maskUsername hides most of a username before it is logged.
func maskUsername(username string) string {
	if username == "" {
		return ""
	}

	local, domain, found := strings.Cut(username, "@")
	if local == "" {
		return "***@" + domain
	}
	masked := string([]rune(local)[:1]) + "***"
	if found {
		masked += "@" + domain
	}

	return masked
}
