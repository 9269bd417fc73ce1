package binary

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/ZebulonRouseFrantzich/hcdl/internal/release"
	"github.com/ZebulonRouseFrantzich/hcdl/internal/shasums"
	"github.com/ZebulonRouseFrantzich/hcdl/internal/testutil"
)

// releaseServer mimics the releases and checkpoint endpoints for one
// product version.
type releaseServer struct {
	*httptest.Server

	mu       sync.Mutex
	requests []string
}

func (s *releaseServer) requested(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.requests {
		if p == path {
			return true
		}
	}
	return false
}

func newReleaseServer(t *testing.T, signer *testutil.Signer, tamperManifest bool) (*releaseServer, []byte) {
	t.Helper()

	archive := buildTestZip(t, map[string]zipEntry{
		"consul": {content: "consul binary", mode: 0755},
	})
	sum := sha256.Sum256(archive)

	manifest := []byte(fmt.Sprintf("%s  consul_1.9.0_linux_amd64.zip\n", hex.EncodeToString(sum[:])))
	signature := signer.Sign(manifest)

	if tamperManifest {
		manifest = []byte("0000000000000000000000000000000000000000000000000000000000000000  consul_1.9.0_linux_amd64.zip\n")
	}

	s := &releaseServer{}
	mux := http.NewServeMux()

	mux.HandleFunc("/checkpoint/consul", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(release.Check{Product: "consul", CurrentVersion: "1.9.0"})
	})

	mux.HandleFunc("/releases/consul/1.9.0/index.json", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(release.ProductVersion{
			Name:             "consul",
			Version:          "1.9.0",
			Shasums:          "consul_1.9.0_SHA256SUMS",
			ShasumsSignature: "consul_1.9.0_SHA256SUMS.sig",
			Builds: []release.Build{{
				Arch:     "amd64",
				OS:       "linux",
				Filename: "consul_1.9.0_linux_amd64.zip",
				URL:      s.URL + "/releases/consul/1.9.0/consul_1.9.0_linux_amd64.zip",
			}},
		})
	})

	mux.HandleFunc("/releases/consul/1.9.0/consul_1.9.0_SHA256SUMS", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(manifest)
	})

	mux.HandleFunc("/releases/consul/1.9.0/consul_1.9.0_SHA256SUMS.sig", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(signature)
	})

	mux.HandleFunc("/releases/consul/1.9.0/consul_1.9.0_linux_amd64.zip", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(archive)
	})

	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, r.URL.Path)
		s.mu.Unlock()
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(s.Close)

	return s, archive
}

func newIntegrationManager(t *testing.T, s *releaseServer, signer *testutil.Signer) *Manager {
	t.Helper()

	keyring, err := ReadKeyring(signer.ArmoredPublicKey())
	if err != nil {
		t.Fatalf("failed to read keyring: %v", err)
	}

	verifier, err := NewGPGVerifier(keyring)
	if err != nil {
		t.Fatalf("NewGPGVerifier() error = %v", err)
	}

	downloader := NewDownloader(WithRetries(0))

	client := release.New(
		release.WithHTTPClient(downloader.HTTPClient()),
		release.WithReleasesURL(s.URL+"/releases/"),
		release.WithCheckpointURL(s.URL+"/checkpoint/"),
	)

	m, err := NewManager(Config{
		Releases:   client,
		Downloader: downloader,
		Verifier:   verifier,
		TempDir:    t.TempDir(),
	})
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}

	return m
}

func TestManagerIntegration(t *testing.T) {
	signer := testutil.NewSigner(t)
	s, _ := newReleaseServer(t, signer, false)
	m := newIntegrationManager(t, s, signer)

	installDir := t.TempDir()
	result, err := m.Run(context.Background(), Options{
		Product:         "consul",
		Version:         release.LatestVersion,
		OS:              "linux",
		Arch:            "amd64",
		InstallDir:      installDir,
		VerifySignature: true,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if result.Version != "1.9.0" {
		t.Errorf("Version = %q, want 1.9.0", result.Version)
	}
	if result.SignedBy != signer.KeyID() {
		t.Errorf("SignedBy = %q, want %q", result.SignedBy, signer.KeyID())
	}
	if result.Checksum != shasums.OK {
		t.Errorf("Checksum = %v, want OK", result.Checksum)
	}

	content, err := os.ReadFile(filepath.Join(installDir, "consul"))
	if err != nil {
		t.Fatalf("binary not installed: %v", err)
	}
	if string(content) != "consul binary" {
		t.Errorf("installed content = %q", content)
	}
}

func TestManagerIntegrationTamperedManifest(t *testing.T) {
	signer := testutil.NewSigner(t)
	s, _ := newReleaseServer(t, signer, true)
	m := newIntegrationManager(t, s, signer)

	installDir := t.TempDir()
	_, err := m.Run(context.Background(), Options{
		Product:         "consul",
		Version:         "1.9.0",
		OS:              "linux",
		Arch:            "amd64",
		InstallDir:      installDir,
		VerifySignature: true,
	})
	if !errors.Is(err, ErrSignatureInvalid) {
		t.Fatalf("expected ErrSignatureInvalid, got %v", err)
	}

	if s.requested("/releases/consul/1.9.0/consul_1.9.0_linux_amd64.zip") {
		t.Error("archive downloaded from an unauthenticated manifest")
	}

	if _, err := os.Stat(filepath.Join(installDir, "consul")); err == nil {
		t.Error("binary installed from an unauthenticated manifest")
	}
}

func TestManagerIntegrationUntrustedKey(t *testing.T) {
	signer := testutil.NewSigner(t)
	s, _ := newReleaseServer(t, signer, false)
	m := newIntegrationManager(t, s, testutil.NewSigner(t))

	_, err := m.Run(context.Background(), Options{
		Product:         "consul",
		Version:         "1.9.0",
		OS:              "linux",
		Arch:            "amd64",
		InstallDir:      t.TempDir(),
		VerifySignature: true,
	})
	if !errors.Is(err, ErrSignatureInvalid) {
		t.Fatalf("expected ErrSignatureInvalid, got %v", err)
	}
}
