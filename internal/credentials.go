package internal

import (
	"sync"
)

const sessionCookieName = ".ROBLOSECURITY"

// Credentials holds the session cookie, CSRF token and API key used by a
// Dispatcher. All fields may be replaced at any time; readers see the latest write.
type Credentials struct {
	mu           sync.RWMutex
	sessionToken string
	csrfToken    string
	apiKey       string
}

// NewCredentials returns credentials seeded with an optional session token and API key.
func NewCredentials(sessionToken, apiKey string) *Credentials {
	return &Credentials{sessionToken: sessionToken, apiKey: apiKey}
}

func (c *Credentials) SessionToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sessionToken
}

func (c *Credentials) SetSessionToken(token string) {
	c.mu.Lock()
	c.sessionToken = token
	c.mu.Unlock()
}

func (c *Credentials) CSRFToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.csrfToken
}

func (c *Credentials) APIKey() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.apiKey
}

// ObserveCSRF records a token seen on a response. An absent token is always
// filled. A held token is replaced only when the response was rejected with
// 403, since that is how the upstream signals a rotated token. It reports
// whether the stored token changed.
func (c *Credentials) ObserveCSRF(token string, forbidden bool) bool {
	if token == "" {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case c.csrfToken == "":
		c.csrfToken = token
		return true
	case forbidden && c.csrfToken != token:
		c.csrfToken = token
		return true
	default:
		return false
	}
}

// sessionCookie renders the Cookie header value for token.
func sessionCookie(token string) string {
	return sessionCookieName + "=" + token
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
