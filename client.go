package epicmix

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"runtime"
	"runtime/debug"
	"time"

	"go.uber.org/zap"
)

const (
	// AuthURL is the official authentication endpoint.
	AuthURL = "https://bridge.mountain.live/passerelles/clients/Vail/authentication/v3/authentication.php"
	// APIURL is the official proxy endpoint all stats queries go through.
	APIURL = "https://bridge.mountain.live/passerelles/clients/Vail/proxy.php"

	// DefaultEnvironment is the environment tag sent with every request.
	DefaultEnvironment = "PROD"
	// DefaultLanguage is the language sent to the authentication endpoint.
	DefaultLanguage = "en"

	modulePath = "thde.io/epicmix"
)

var (
	// ErrAuthentication is returned when the authentication handshake fails.
	ErrAuthentication = errors.New("authentication failed")
	// ErrNoAccessToken is returned when an authentication response carries no access token.
	ErrNoAccessToken = errors.New("no access token in authentication response")
	// ErrMissingField is returned when a response lacks a required field.
	ErrMissingField = errors.New("missing field")
	// ErrUnknownField is returned when a record contains an unexpected field.
	ErrUnknownField = errors.New("unknown field")
)

// Credentials is the username/password pair sent on the first authentication.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Client holds the state needed to call the EpicMix API.
// Use [New] to create a new client.
type Client struct {
	authURL *url.URL
	apiURL  *url.URL

	env        string
	lang       string
	httpClient *http.Client
	userAgent  string

	logger  *zap.Logger
	metrics *Metrics

	creds   Credentials
	session *sessionStore
}

// ClientOption configures a Client before use.
type ClientOption func(*Client)

// WithAuthURL sets a custom authentication endpoint.
func WithAuthURL(authURL *url.URL) ClientOption {
	return func(c *Client) {
		c.authURL = authURL
	}
}

// WithAPIURL sets a custom proxy endpoint.
func WithAPIURL(apiURL *url.URL) ClientOption {
	return func(c *Client) {
		c.apiURL = apiURL
	}
}

// WithHTTPClient sets a custom HTTP client.
// The client may be shared with other code; epicmix never closes it.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithEnvironment sets the environment tag sent with every request.
func WithEnvironment(env string) ClientOption {
	return func(c *Client) {
		c.env = env
	}
}

// WithLanguage sets the language sent to the authentication endpoint.
func WithLanguage(lang string) ClientOption {
	return func(c *Client) {
		c.lang = lang
	}
}

// WithUserAgent sets a custom User-Agent header for API requests.
func WithUserAgent(userAgent string) ClientOption {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithLogger sets the logger used for request and authentication events.
func WithLogger(logger *zap.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithMetrics enables prometheus instrumentation. See [NewMetrics].
func WithMetrics(m *Metrics) ClientOption {
	return func(c *Client) {
		c.metrics = m
	}
}

// New creates an EpicMix API client for the given rider and authenticates
// immediately. The returned error matches [ErrAuthentication] when the
// handshake is rejected.
func New(ctx context.Context, username, password string, opts ...ClientOption) (*Client, error) {
	authURL, _ := url.Parse(AuthURL)
	apiURL, _ := url.Parse(APIURL)

	c := &Client{
		authURL: authURL,
		apiURL:  apiURL,
		env:     DefaultEnvironment,
		lang:    DefaultLanguage,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		creds:   Credentials{Username: username, Password: password},
		session: &sessionStore{},
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.userAgent == "" {
		c.userAgent = userAgent()
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}

	if err := c.Authenticate(ctx); err != nil {
		return nil, err
	}

	return c, nil
}

// version returns the module version of the epicmix package.
// It returns "devel" if built without module version information.
func version() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "devel"
	}

	for _, dep := range info.Deps {
		if dep.Path == modulePath {
			if dep.Version == "(devel)" {
				return "devel"
			}

			return dep.Version
		}
	}

	if info.Main.Path == modulePath {
		if info.Main.Version != "(devel)" {
			return info.Main.Version
		}
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" && len(setting.Value) >= 7 {
				return "devel+" + setting.Value[:7]
			}
		}
	}

	return "devel"
}

// userAgent returns the default User-Agent string for this package.
func userAgent() string {
	return fmt.Sprintf(
		"go-epicmix/%s (%s; %s/%s)",
		version(),
		runtime.Version(),
		runtime.GOOS,
		runtime.GOARCH,
	)
}
