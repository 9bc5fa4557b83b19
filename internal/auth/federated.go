// ABOUTME: Federated (Google OAuth2) authentication strategy
// ABOUTME: Drives the redirect handshake and maps provider ids to local users

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/veilnote/veilnote/internal/store"
)

// googleUserinfoURL is Google's OpenID Connect userinfo endpoint.
const googleUserinfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

// exchangeTimeout bounds the provider round-trips during the callback.
const exchangeTimeout = 15 * time.Second

// ProfileFetcher retrieves the provider's stable subject id using a client
// authorized with the exchanged access token. Injectable for tests.
type ProfileFetcher interface {
	Fetch(ctx context.Context, client *http.Client) (subject string, err error)
}

// googleProfile fetches the subject id from Google's userinfo endpoint.
type googleProfile struct {
	url string
}

func (g *googleProfile) Fetch(ctx context.Context, client *http.Client) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.url, nil)
	if err != nil {
		return "", err
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("userinfo returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}

	var profile struct {
		Sub string `json:"sub"`
	}
	if err := json.Unmarshal(body, &profile); err != nil {
		return "", fmt.Errorf("decoding userinfo: %w", err)
	}
	if profile.Sub == "" {
		return "", errors.New("userinfo missing sub claim")
	}

	return profile.Sub, nil
}

// FederatedConfig holds provider credentials for the federated strategy.
type FederatedConfig struct {
	ClientID     string
	ClientSecret string
	CallbackURL  string
}

// Federated authenticates users through Google's authorization-code flow and
// maps the provider's subject id to a local account.
type Federated struct {
	oauth   *oauth2.Config
	users   store.UserStore
	states  *StateSigner
	profile ProfileFetcher
	logger  *slog.Logger
}

// NewFederated creates a federated strategy. The state signer provides the
// anti-forgery check across the two handshake phases.
func NewFederated(cfg FederatedConfig, users store.UserStore, states *StateSigner) *Federated {
	return &Federated{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.CallbackURL,
			Scopes:       []string{"openid", "profile"},
			Endpoint:     google.Endpoint,
		},
		users:   users,
		states:  states,
		profile: &googleProfile{url: googleUserinfoURL},
		logger:  slog.Default().With("component", "auth"),
	}
}

// Begin returns the provider authorization URL to redirect the client to.
// No local state is created; the state parameter is self-contained.
func (f *Federated) Begin() (string, error) {
	state, err := f.states.Issue()
	if err != nil {
		return "", err
	}
	return f.oauth.AuthCodeURL(state), nil
}

// Complete finishes the handshake: verifies the state, exchanges the
// authorization code, fetches the profile subject, and finds or creates the
// matching local user. No lock is held across the provider round-trips.
func (f *Federated) Complete(ctx context.Context, code, state string) (*store.User, error) {
	if err := f.states.Verify(state); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, exchangeTimeout)
	defer cancel()

	token, err := f.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderExchangeFailed, err)
	}

	subject, err := f.profile.Fetch(ctx, f.oauth.Client(ctx, token))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderExchangeFailed, err)
	}

	user, err := f.users.FindOrCreateByGoogleID(ctx, subject)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	f.logger.Info("federated login completed", "user_id", user.ID)
	return user, nil
}
