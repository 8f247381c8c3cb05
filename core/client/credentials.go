package client

import (
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// Session is an authenticated farm API session. The access token is a JWT
// issued by the auth service's oauth password grant.
type Session struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// Credentials keeps the session of one monitoring run and re-logs in
// shortly before the token expires.
type Credentials struct {
	client       Client
	clientID     string
	clientSecret string
	username     string
	password     string

	mu      sync.Mutex
	session Session
	expiry  time.Time

	now func() time.Time
}

// expiryMargin is how long before the token expiry a new login is forced.
const expiryMargin = time.Minute

// NewCredentials returns a credential store. clientID/clientSecret are the
// oauth client pair of the dashboard application; username/password are the
// operator's.
func NewCredentials(c Client, clientID, clientSecret, username, password string) *Credentials {
	return &Credentials{
		client:       c,
		clientID:     clientID,
		clientSecret: clientSecret,
		username:     username,
		password:     password,
		now:          time.Now,
	}
}

// Token returns a valid access token, logging in if the stored session is
// absent or about to expire.
func (cr *Credentials) Token() (string, error) {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	if cr.session.AccessToken != "" && cr.now().Before(cr.expiry.Add(-expiryMargin)) {
		return cr.session.AccessToken, nil
	}

	session, err := cr.login()
	if err != nil {
		return "", err
	}
	cr.session = session
	cr.expiry = tokenExpiry(session, cr.now())
	return session.AccessToken, nil
}

func (cr *Credentials) login() (Session, error) {
	values := url.Values{}
	values.Set("username", cr.username)
	values.Set("password", cr.password)
	values.Set("grant_type", "password")

	session := Session{}
	basic := cr.client.WithHeader("Authorization", basicAuth(cr.clientID, cr.clientSecret))
	status, err := basic.RawPostForm("/auth/oauth/token", values, &session)
	if err != nil {
		return Session{}, fmt.Errorf("login failed: %w", err)
	}
	if status != http.StatusOK || session.AccessToken == "" {
		return Session{}, fmt.Errorf("login failed: no token in response (status %d)", status)
	}
	return session, nil
}

// tokenExpiry reads the exp claim of the token without verifying the
// signature; verification is the server's job, the client only needs to
// know when to renew. Falls back to expires_in, then to a conservative
// five minutes.
func tokenExpiry(session Session, now time.Time) time.Time {
	claims := jwt.RegisteredClaims{}
	_, _, err := jwt.NewParser().ParseUnverified(session.AccessToken, &claims)
	if err == nil && claims.ExpiresAt != nil {
		return claims.ExpiresAt.Time
	}
	if session.ExpiresIn > 0 {
		return now.Add(time.Duration(session.ExpiresIn) * time.Second)
	}
	return now.Add(5 * time.Minute)
}

func basicAuth(user, password string) string {
	r, _ := http.NewRequest(http.MethodGet, "/", nil)
	r.SetBasicAuth(user, password)
	return r.Header.Get("Authorization")
}
