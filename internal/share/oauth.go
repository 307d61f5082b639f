// Package share hands exported ledgers to the user: an upload to Google
// Drive when authorized, otherwise the system file opener.
package share

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
)

// ErrNotAuthorized means no Drive token has been stored yet.
var ErrNotAuthorized = errors.New("google drive is not authorized")

// DriveConfig holds the OAuth2 client and upload settings.
type DriveConfig struct {
	ClientID     string
	ClientSecret string
	TokenFile    string // where the token is saved
	FolderID     string
	CallbackAddr string
}

// DefaultCallbackAddr is where the local OAuth callback server listens.
const DefaultCallbackAddr = "localhost:8080"

// Configured reports whether OAuth client credentials are present.
func (c DriveConfig) Configured() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

func (c DriveConfig) oauthConfig() *oauth2.Config {
	addr := c.CallbackAddr
	if addr == "" {
		addr = DefaultCallbackAddr
	}
	return &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  "http://" + addr + "/callback",
		Scopes:       []string{drive.DriveFileScope},
	}
}

// Authenticate runs the browser OAuth2 flow and stores the token.
// The user has five minutes to finish it.
func Authenticate(ctx context.Context, cfg DriveConfig) (*oauth2.Token, error) {
	if !cfg.Configured() {
		return nil, fmt.Errorf("share.drive.client_id and share.drive.client_secret are required")
	}
	oauthConfig := cfg.oauthConfig()
	state := uuid.NewString()

	codeChan := make(chan string, 1)
	errorChan := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" || r.URL.Query().Get("state") != state {
			select {
			case errorChan <- fmt.Errorf("no valid authorization code received"):
			default:
			}
			_, _ = fmt.Fprint(w, `<html><body>
				<h1>Authentication Failed</h1>
				<p>No authorization code received. Please try again.</p>
			</body></html>`)
			return
		}

		select {
		case codeChan <- code:
		default:
		}
		_, _ = fmt.Fprint(w, `<html><body>
			<h1>Authentication Successful!</h1>
			<p>You can close this window and return to the terminal.</p>
			<script>window.setTimeout(function(){window.close();}, 3000);</script>
		</body></html>`)
	})

	listener, err := net.Listen("tcp", redirectHost(oauthConfig.RedirectURL))
	if err != nil {
		return nil, fmt.Errorf("failed to start callback server: %w", err)
	}
	server := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errorChan <- fmt.Errorf("callback server failed: %w", err)
		}
	}()
	defer func() {
		if err := server.Shutdown(context.WithoutCancel(ctx)); err != nil {
			slog.Warn("Error shutting down callback server", "error", err)
		}
	}()

	authURL := oauthConfig.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)

	slog.Info("Google Drive authentication required")
	slog.Info("Please visit this URL to authenticate", "url", authURL)
	slog.Info("Waiting for authentication...")

	var authCode string
	select {
	case authCode = <-codeChan:
		slog.Info("Received authorization code")
	case err := <-errorChan:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(5 * time.Minute):
		return nil, fmt.Errorf("authentication timeout - no response received within 5 minutes")
	}

	token, err := oauthConfig.Exchange(ctx, authCode)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	if cfg.TokenFile != "" {
		if err := saveToken(cfg.TokenFile, token); err != nil {
			return nil, err
		}
		slog.Info("Token saved successfully", "file", cfg.TokenFile)
	}
	return token, nil
}

func redirectHost(redirectURL string) string {
	u, err := url.Parse(redirectURL)
	if err != nil {
		return DefaultCallbackAddr
	}
	return u.Host
}

// LoadToken loads a token from file.
func LoadToken(tokenFile string) (*oauth2.Token, error) {
	f, err := os.Open(tokenFile) // #nosec G304
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	token := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(token); err != nil {
		return nil, fmt.Errorf("failed to decode token: %w", err)
	}
	return token, nil
}

// saveToken saves a token to file, readable by the owner only.
func saveToken(path string, token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600) // #nosec G304
	if err != nil {
		return fmt.Errorf("failed to create token file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := json.NewEncoder(f).Encode(token); err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	return nil
}

// savingTokenSource persists refreshed tokens.
type savingTokenSource struct {
	base oauth2.TokenSource
	last *oauth2.Token
	path string
}

func (s *savingTokenSource) Token() (*oauth2.Token, error) {
	token, err := s.base.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}
	if s.path != "" && (s.last == nil || token.AccessToken != s.last.AccessToken) {
		if err := saveToken(s.path, token); err != nil {
			slog.Warn("Failed to save refreshed token", "error", err)
		}
	}
	s.last = token
	return token, nil
}

// AuthorizedClient returns an HTTP client using the stored token. It
// never starts the interactive flow; without a token it returns
// ErrNotAuthorized.
func AuthorizedClient(ctx context.Context, cfg DriveConfig) (*http.Client, error) {
	if !cfg.Configured() || cfg.TokenFile == "" {
		return nil, ErrNotAuthorized
	}
	token, err := LoadToken(cfg.TokenFile)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotAuthorized
	}
	if err != nil {
		return nil, err
	}

	source := &savingTokenSource{
		base: cfg.oauthConfig().TokenSource(ctx, token),
		last: token,
		path: cfg.TokenFile,
	}
	return oauth2.NewClient(ctx, oauth2.ReuseTokenSource(token, source)), nil
}
