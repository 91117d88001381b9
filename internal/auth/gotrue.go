package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Provider is the external identity service. It owns credentials; this side
// only keeps the returned session.
type Provider interface {
	SignIn(ctx context.Context, email, password string) (*Session, error)
	// SignUp returns a nil session when the provider wants the address
	// confirmed out of band first
	SignUp(ctx context.Context, email, password string) (*Session, error)
	Refresh(ctx context.Context, refreshToken string) (*Session, error)
	SignOut(ctx context.Context, accessToken string) error
	AuthorizeURL(provider, redirectTo string) string
}

// ProviderError carries the identity provider's own message
type ProviderError struct {
	Status  int
	Message string
}

func (e *ProviderError) Error() string {
	return e.Message
}

// GoTrue talks to a GoTrue-compatible auth endpoint under /auth/v1
type GoTrue struct {
	baseURL    string
	anonKey    string
	httpClient *http.Client
	now        func() time.Time
}

// NewGoTrue creates a client for the project at baseURL
func NewGoTrue(baseURL, anonKey string) *GoTrue {
	return &GoTrue{
		baseURL:    strings.TrimRight(baseURL, "/"),
		anonKey:    anonKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		now:        time.Now,
	}
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	ExpiresAt    int64  `json:"expires_at"`
	User         *struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`

	// Sign-up without auto-confirm returns the bare user
	ID    string `json:"id"`
	Email string `json:"email"`
}

func (g *GoTrue) SignIn(ctx context.Context, email, password string) (*Session, error) {
	var resp tokenResponse
	err := g.post(ctx, "/auth/v1/token?grant_type=password", "", map[string]string{
		"email":    email,
		"password": password,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return g.session(resp)
}

func (g *GoTrue) SignUp(ctx context.Context, email, password string) (*Session, error) {
	var resp tokenResponse
	err := g.post(ctx, "/auth/v1/signup", "", map[string]string{
		"email":    email,
		"password": password,
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.AccessToken == "" {
		return nil, nil
	}
	return g.session(resp)
}

func (g *GoTrue) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	var resp tokenResponse
	err := g.post(ctx, "/auth/v1/token?grant_type=refresh_token", "", map[string]string{
		"refresh_token": refreshToken,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return g.session(resp)
}

func (g *GoTrue) SignOut(ctx context.Context, accessToken string) error {
	return g.post(ctx, "/auth/v1/logout", accessToken, nil, nil)
}

// AuthorizeURL is where the user completes single sign-on. The provider
// redirects back to redirectTo with the session in the URL fragment.
func (g *GoTrue) AuthorizeURL(provider, redirectTo string) string {
	q := url.Values{}
	q.Set("provider", provider)
	if redirectTo != "" {
		q.Set("redirect_to", redirectTo)
	}
	return g.baseURL + "/auth/v1/authorize?" + q.Encode()
}

func (g *GoTrue) post(ctx context.Context, path, bearer string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if g.anonKey != "" {
		req.Header.Set("apikey", g.anonKey)
	}
	if bearer == "" {
		bearer = g.anonKey
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return &ProviderError{Status: resp.StatusCode, Message: providerMessage(respBody, resp.Status)}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// providerMessage picks the human readable message out of the error body
func providerMessage(body []byte, status string) string {
	var e struct {
		ErrorDescription string `json:"error_description"`
		Msg              string `json:"msg"`
		Message          string `json:"message"`
		Error            string `json:"error"`
	}
	if json.Unmarshal(body, &e) == nil {
		for _, m := range []string{e.ErrorDescription, e.Msg, e.Message, e.Error} {
			if m != "" {
				return m
			}
		}
	}
	if s := strings.TrimSpace(string(body)); s != "" {
		return s
	}
	return status
}

func (g *GoTrue) session(resp tokenResponse) (*Session, error) {
	if resp.AccessToken == "" {
		return nil, fmt.Errorf("provider returned no access token")
	}

	s := &Session{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
	}
	switch {
	case resp.ExpiresAt > 0:
		s.ExpiresAt = time.Unix(resp.ExpiresAt, 0)
	case resp.ExpiresIn > 0:
		s.ExpiresAt = g.now().Add(time.Duration(resp.ExpiresIn) * time.Second)
	}
	if resp.User != nil {
		s.UserID = resp.User.ID
		s.Email = resp.User.Email
	}
	return fillFromToken(s)
}

// SessionFromRedirect reads the session the provider put in the fragment of
// the single sign-on redirect
func SessionFromRedirect(rawURL string, now time.Time) (*Session, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redirect: %w", err)
	}

	frag := u.Fragment
	if frag == "" {
		frag = u.RawQuery
	}
	values, err := url.ParseQuery(frag)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redirect: %w", err)
	}

	if desc := values.Get("error_description"); desc != "" {
		return nil, &ProviderError{Message: desc}
	}

	s := &Session{
		AccessToken:  values.Get("access_token"),
		RefreshToken: values.Get("refresh_token"),
	}
	if s.AccessToken == "" {
		return nil, fmt.Errorf("redirect carries no access token")
	}
	if at, err := strconv.ParseInt(values.Get("expires_at"), 10, 64); err == nil && at > 0 {
		s.ExpiresAt = time.Unix(at, 0)
	} else if in, err := strconv.ParseInt(values.Get("expires_in"), 10, 64); err == nil && in > 0 {
		s.ExpiresAt = now.Add(time.Duration(in) * time.Second)
	}
	return fillFromToken(s)
}

// fillFromToken completes user id and email from the token's claims
func fillFromToken(s *Session) (*Session, error) {
	if s.UserID != "" && s.Email != "" {
		return s, nil
	}
	claims, err := ParseClaims(s.AccessToken, "")
	if err != nil {
		if s.UserID != "" {
			return s, nil
		}
		return nil, err
	}
	if s.UserID == "" {
		s.UserID = claims.Subject
	}
	if s.Email == "" {
		s.Email = claims.Email
	}
	if s.ExpiresAt.IsZero() {
		s.ExpiresAt = claims.ExpiresAt
	}
	return s, nil
}
