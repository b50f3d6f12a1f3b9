package jwtx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/aussiebroadwan/flagtree/pkg/slogx"
)

// maxJWKSBytes bounds the size of a JWKS document we are willing to read.
const maxJWKSBytes = 1 << 20

// JWKSFetcher keeps a KeySet in sync with a remote or on-disk JWKS.
//
// Source is either an http(s) URL, typically the auth service's
// /.well-known/jwks.json, or a path to a JSON file (a "file://" prefix is
// accepted).
type JWKSFetcher struct {
	Source string
	Keys   *KeySet
	Client *http.Client
}

// NewJWKSFetcher returns a fetcher that loads source into keys.
func NewJWKSFetcher(source string, keys *KeySet) *JWKSFetcher {
	return &JWKSFetcher{
		Source: source,
		Keys:   keys,
		Client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Refresh fetches the JWKS once and replaces the KeySet contents.
func (f *JWKSFetcher) Refresh(ctx context.Context) error {
	if f.Source == "" {
		return errors.New("jwtx: no JWKS source configured")
	}

	var (
		raw []byte
		err error
	)
	if strings.HasPrefix(f.Source, "http://") || strings.HasPrefix(f.Source, "https://") {
		raw, err = f.fetchHTTP(ctx)
	} else {
		raw, err = os.ReadFile(strings.TrimPrefix(f.Source, "file://"))
	}
	if err != nil {
		return fmt.Errorf("jwtx: load JWKS: %w", err)
	}

	var jwks JWKS
	if err := json.Unmarshal(raw, &jwks); err != nil {
		return fmt.Errorf("jwtx: decode JWKS: %w", err)
	}
	if len(jwks.Keys) == 0 {
		return errors.New("jwtx: JWKS contains no keys")
	}
	return f.Keys.ResetFromJWKS(jwks)
}

func (f *JWKSFetcher) fetchHTTP(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.Source, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxJWKSBytes))
}

// Run refreshes every interval until ctx is cancelled. Failures are logged
// and the previously loaded keys stay in place.
func (f *JWKSFetcher) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	log := slogx.FromContext(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := f.Refresh(ctx); err != nil {
				log.Warn("jwks refresh failed", "source", f.Source, "error", err)
				continue
			}
			log.Debug("jwks refreshed", "keys", len(f.Keys.JWKS().Keys))
		}
	}
}
