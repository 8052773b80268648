package auth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tgienger/tkrm/internal/logger"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// IdentityProvider obtains a credential for the backend's login endpoint.
// prompt receives a URL the user has to open, for providers that need one.
type IdentityProvider interface {
	Name() string
	Credential(ctx context.Context, hint string, prompt func(authURL string)) (string, error)
}

// DevProvider issues "dev:<email>" credentials understood by the dev server
type DevProvider struct{}

func (DevProvider) Name() string { return "dev" }

func (DevProvider) Credential(_ context.Context, hint string, _ func(string)) (string, error) {
	email := strings.TrimSpace(hint)
	if email == "" {
		return "", errors.New("an email address is required")
	}
	return "dev:" + email, nil
}

// GoogleProvider runs the OAuth 2.0 authorization code flow against Google
// with a loopback redirect and returns the resulting ID token.
type GoogleProvider struct {
	config  *oauth2.Config
	port    string
	timeout time.Duration
}

var googleScopes = []string{"openid", "email", "profile"}

// NewGoogleProvider reads a client secrets file downloaded from the Google
// Cloud console. The redirect URL is forced onto the loopback port.
func NewGoogleProvider(clientSecretsFile, port string) (*GoogleProvider, error) {
	b, err := os.ReadFile(clientSecretsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read client secret file %s: %w", clientSecretsFile, err)
	}

	config, err := google.ConfigFromJSON(b, googleScopes...)
	if err != nil {
		return nil, fmt.Errorf("unable to parse client secret file to config: %w", err)
	}
	config.RedirectURL = fmt.Sprintf("http://localhost:%s/oauth2callback", port)

	return &GoogleProvider{config: config, port: port, timeout: 5 * time.Minute}, nil
}

func (p *GoogleProvider) Name() string { return "google" }

func (p *GoogleProvider) Credential(ctx context.Context, hint string, prompt func(string)) (string, error) {
	listener, err := net.Listen("tcp", "localhost:"+p.port)
	if err != nil {
		return "", fmt.Errorf("failed to start listener on port %s: %w", p.port, err)
	}
	defer listener.Close()

	state := uuid.NewString()
	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)

	server := &http.Server{
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("state") != state {
				http.Error(w, "State mismatch", http.StatusBadRequest)
				return
			}
			code := r.URL.Query().Get("code")
			if code == "" {
				http.Error(w, "Authorization code not found", http.StatusBadRequest)
				select {
				case errCh <- errors.New("authorization code not found in redirect URL"):
				default:
				}
				return
			}
			fmt.Fprintf(w, "Signed in. You can close this window and return to the terminal.")
			select {
			case codeCh <- code:
			default:
			}
		}),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			select {
			case errCh <- fmt.Errorf("callback server: %w", err):
			default:
			}
		}
	}()
	defer server.Close()

	opts := []oauth2.AuthCodeOption{oauth2.SetAuthURLParam("prompt", "select_account")}
	if hint = strings.TrimSpace(hint); hint != "" {
		opts = append(opts, oauth2.SetAuthURLParam("login_hint", hint))
	}
	authURL := p.config.AuthCodeURL(state, opts...)
	logger.Info("identity: waiting for google authorization", zap.String("redirect", p.config.RedirectURL))
	if prompt != nil {
		prompt(authURL)
	}

	timer := time.NewTimer(p.timeout)
	defer timer.Stop()

	select {
	case code := <-codeCh:
		tok, err := p.config.Exchange(ctx, code)
		if err != nil {
			return "", fmt.Errorf("unable to retrieve token from Google: %w", err)
		}
		idToken, _ := tok.Extra("id_token").(string)
		if idToken == "" {
			return "", errors.New("google did not return an id token")
		}
		return idToken, nil
	case err := <-errCh:
		return "", err
	case <-ctx.Done():
		return "", ctx.Err()
	case <-timer.C:
		return "", errors.New("authorization timed out, please try again")
	}
}

// RedirectURL is the loopback address registered with Google
func (p *GoogleProvider) RedirectURL() *url.URL {
	u, _ := url.Parse(p.config.RedirectURL)
	return u
}
