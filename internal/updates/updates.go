// Package updates checks whether a newer release of the linker exists.
// Sources are queried over HTTP with short timeouts and the combined result
// is cached on disk so repeated runs stay offline.
package updates

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/zeebo/blake3"
)

const (
	githubLatestURL = "https://api.github.com/repos/danshapiro/codexlink/releases/latest"
	proxyLatestURL  = "https://proxy.golang.org/github.com/danshapiro/codexlink/@latest"

	cacheFileName   = "update_check.bin"
	defaultCacheTTL = 6 * time.Hour
	fetchTimeout    = 3 * time.Second
)

// SourceResult is the answer from one update source. Err is informational;
// a failed source never fails the check.
type SourceResult struct {
	Name    string `msgpack:"name"`
	Version string `msgpack:"version"`
	URL     string `msgpack:"url"`
	Err     string `msgpack:"err"`
}

// Result aggregates all queried sources.
type Result struct {
	CurrentVersion string
	Sources        []SourceResult
	Newer          []SourceResult
	FromCache      bool
}

// Checker fetches and caches release information. The HTTP client and URLs
// are fields so tests can point it at local servers.
type Checker struct {
	Client    *http.Client
	GitHubURL string
	ProxyURL  string
	CacheTTL  time.Duration
	Now       func() time.Time
}

func NewChecker() *Checker {
	return &Checker{
		Client:    &http.Client{Timeout: fetchTimeout},
		GitHubURL: githubLatestURL,
		ProxyURL:  proxyLatestURL,
		CacheTTL:  defaultCacheTTL,
		Now:       time.Now,
	}
}

// Check returns update information for currentVersion, consulting the cache
// under home unless force is set. Network failures degrade to per-source
// errors; Check itself only fails on impossible cache paths.
func (c *Checker) Check(ctx context.Context, home, currentVersion string, force bool) Result {
	cachePath := filepath.Join(home, cacheFileName)
	fp := cacheFingerprint(currentVersion, c.GitHubURL, c.ProxyURL)

	if !force {
		if cached, ok := c.loadCache(cachePath, fp); ok {
			return c.assemble(currentVersion, cached, true)
		}
	}

	sources := []SourceResult{
		c.fetchGitHub(ctx),
		c.fetchProxy(ctx),
	}
	c.saveCache(cachePath, fp, sources)
	return c.assemble(currentVersion, sources, false)
}

func (c *Checker) assemble(current string, sources []SourceResult, fromCache bool) Result {
	res := Result{CurrentVersion: current, Sources: sources, FromCache: fromCache}
	for _, s := range sources {
		if s.Version != "" && IsNewer(current, s.Version) {
			res.Newer = append(res.Newer, s)
		}
	}
	return res
}

func (c *Checker) fetchGitHub(ctx context.Context) SourceResult {
	res := SourceResult{Name: "github"}
	var payload struct {
		TagName string `json:"tag_name"`
		Name    string `json:"name"`
		HTMLURL string `json:"html_url"`
	}
	if err := c.getJSON(ctx, c.GitHubURL, &payload); err != nil {
		res.Err = err.Error()
		return res
	}
	res.Version = strings.TrimSpace(payload.TagName)
	if res.Version == "" {
		res.Version = strings.TrimSpace(payload.Name)
	}
	res.URL = payload.HTMLURL
	return res
}

func (c *Checker) fetchProxy(ctx context.Context) SourceResult {
	res := SourceResult{Name: "goproxy"}
	var payload struct {
		Version string `json:"Version"`
	}
	if err := c.getJSON(ctx, c.ProxyURL, &payload); err != nil {
		res.Err = err.Error()
		return res
	}
	res.Version = strings.TrimSpace(payload.Version)
	res.URL = "https://pkg.go.dev/github.com/danshapiro/codexlink"
	return res
}

func (c *Checker) getJSON(ctx context.Context, url string, into any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := c.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	return json.Unmarshal(body, into)
}

// cacheFile is the on-disk shape, msgpack-encoded.
type cacheFile struct {
	CheckedAt   time.Time      `msgpack:"checked_at"`
	Fingerprint string         `msgpack:"fingerprint"`
	Sources     []SourceResult `msgpack:"sources"`
}

// cacheFingerprint ties a cache to the version and source set that produced
// it; a mismatch invalidates the cache even inside the TTL.
func cacheFingerprint(parts ...string) string {
	sum := blake3.Sum256([]byte(strings.Join(parts, "\x00")))
	return hex.EncodeToString(sum[:8])
}

func (c *Checker) loadCache(path, fingerprint string) ([]SourceResult, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	var cf cacheFile
	if err := msgpack.Unmarshal(data, &cf); err != nil {
		return nil, false
	}
	if cf.Fingerprint != fingerprint {
		return nil, false
	}
	if c.Now().Sub(cf.CheckedAt) > c.CacheTTL {
		return nil, false
	}
	if len(cf.Sources) == 0 {
		return nil, false
	}
	return cf.Sources, true
}

func (c *Checker) saveCache(path, fingerprint string, sources []SourceResult) {
	data, err := msgpack.Marshal(cacheFile{
		CheckedAt:   c.Now(),
		Fingerprint: fingerprint,
		Sources:     sources,
	})
	if err != nil {
		return
	}
	// Best effort: a failed cache write never surfaces to the user.
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return
	}
	_ = os.WriteFile(path, data, 0o644)
}
