package gapi

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/exec"
	"runtime"

	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
)

var (
	// ErrSecretFile means the client secret file is missing or malformed.
	ErrSecretFile = errors.New("client secret file is missing or malformed")

	// ErrTokenLoad means a token file exists but could not be parsed.
	ErrTokenLoad = errors.New("token file could not be loaded")

	// ErrAuthFailed means interactive consent did not produce a token.
	ErrAuthFailed = errors.New("authorization failed")

	// ErrUploadFailed means the remote API accepted the upload call but
	// returned no usable video ID.
	ErrUploadFailed = errors.New("upload returned no video ID")

	// ErrSheetAppend means a sheet-stage call failed. The upload the row was
	// meant to record is not rolled back.
	ErrSheetAppend = errors.New("sheet append failed")
)

// scopes requested during consent: upload videos and edit spreadsheets.
var scopes = []string{
	"https://www.googleapis.com/auth/youtube.upload",
	"https://www.googleapis.com/auth/spreadsheets",
}

// secretFile mirrors the "installed application" JSON from the Google
// developer console.
type secretFile struct {
	Installed struct {
		ClientID     string `json:"client_id"`
		ClientSecret string `json:"client_secret"`
	} `json:"installed"`
}

// Service builds authenticated clients from a user-supplied client secret
// file and a persisted token file.
type Service struct {
	SecretFile string
	TokenFile  string
	SheetID    string
	SheetTitle string

	logger Logger

	// openURL launches the consent page in a browser; replaced in tests.
	openURL func(url string) error
}

// NewService creates a Google API service handle. The token file need not
// exist yet; first use runs interactive consent and creates it.
func NewService(secretFile, tokenFile, sheetID, sheetTitle string, logger Logger) *Service {
	return &Service{
		SecretFile: secretFile,
		TokenFile:  tokenFile,
		SheetID:    sheetID,
		SheetTitle: sheetTitle,
		logger:     logger,
		openURL:    openBrowser,
	}
}

// Authorize loads the persisted token, or runs interactive consent when no
// token file exists, and returns a client for the upload and sheet stages.
// The token is not checked for expiry locally; a stale token is refreshed by
// the OAuth transport, or rejected by the remote API, on first use.
func (s *Service) Authorize(ctx context.Context) (*Client, error) {
	conf, err := parseSecret(s.SecretFile)
	if err != nil {
		return nil, err
	}

	token, err := s.loadToken()
	if errors.Is(err, os.ErrNotExist) {
		token, err = s.consent(ctx, conf)
	}
	if err != nil {
		return nil, err
	}

	return &Client{
		httpClient: conf.Client(ctx, token),
		sheetID:    s.SheetID,
		sheetTitle: s.SheetTitle,
		logger:     s.logger,
	}, nil
}

// DeleteToken removes the persisted token file, forcing interactive consent
// on the next cycle. A missing file is not an error.
func (s *Service) DeleteToken() error {
	if err := os.Remove(s.TokenFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete token file: %w", err)
	}
	return nil
}

// parseSecret reads the two required fields from the secret file and builds
// the OAuth config.
func parseSecret(path string) (*oauth2.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSecretFile, err)
	}

	var secret secretFile
	if err := json.Unmarshal(data, &secret); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSecretFile, err)
	}
	if secret.Installed.ClientID == "" || secret.Installed.ClientSecret == "" {
		return nil, fmt.Errorf("%w: client_id and client_secret are required", ErrSecretFile)
	}

	return &oauth2.Config{
		ClientID:     secret.Installed.ClientID,
		ClientSecret: secret.Installed.ClientSecret,
		Endpoint:     googleoauth.Endpoint,
		Scopes:       scopes,
	}, nil
}

// loadToken reads the persisted token. A missing file is reported as
// os.ErrNotExist so the caller can fall back to interactive consent; any
// other failure is ErrTokenLoad.
func (s *Service) loadToken() (*oauth2.Token, error) {
	data, err := os.ReadFile(s.TokenFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenLoad, err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenLoad, err)
	}
	return &token, nil
}

// consent runs the browser-based consent flow against a loopback callback
// listener, exchanges the authorization code, and persists the token before
// returning it.
func (s *Service) consent(ctx context.Context, conf *oauth2.Config) (*oauth2.Token, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("%w: callback listener: %v", ErrAuthFailed, err)
	}
	defer ln.Close()

	conf.RedirectURL = fmt.Sprintf("http://%s/", ln.Addr().String())

	stateBytes := make([]byte, 16)
	if _, err := rand.Read(stateBytes); err != nil {
		return nil, fmt.Errorf("%w: state nonce: %v", ErrAuthFailed, err)
	}
	state := hex.EncodeToString(stateBytes)

	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)
	srv := &http.Server{Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		code := q.Get("code")
		if code == "" {
			errCh <- fmt.Errorf("%w: consent denied: %s", ErrAuthFailed, q.Get("error"))
			http.Error(w, "Authorization failed. You can close this window.", http.StatusBadRequest)
			return
		}
		// Only the callback for the consent page we opened carries the nonce
		if q.Get("state") != state {
			errCh <- fmt.Errorf("%w: state mismatch in callback", ErrAuthFailed)
			http.Error(w, "Authorization failed. You can close this window.", http.StatusBadRequest)
			return
		}
		fmt.Fprintln(w, "Authorization complete. You can close this window.")
		codeCh <- code
	})}
	go srv.Serve(ln)
	defer srv.Close()

	authURL := conf.AuthCodeURL(state, oauth2.AccessTypeOffline)
	s.logger.Printf("Waiting for consent, open this page in your browser: %s", authURL)
	if err := s.openURL(authURL); err != nil {
		s.logger.Debugf("Could not launch browser: %v", err)
	}

	var code string
	select {
	case code = <-codeCh:
	case err := <-errCh:
		return nil, err
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", ErrAuthFailed, ctx.Err())
	}

	token, err := conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthFailed, err)
	}

	if err := s.saveToken(token); err != nil {
		return nil, err
	}
	return token, nil
}

func (s *Service) saveToken(token *oauth2.Token) error {
	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("marshal token: %w", err)
	}
	if err := os.WriteFile(s.TokenFile, data, 0600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	return nil
}

// openBrowser launches the default browser based on OS
func openBrowser(url string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	default:
		return exec.Command("xdg-open", url).Start()
	}
}
