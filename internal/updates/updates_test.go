package updates

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestIsNewer(t *testing.T) {
	cases := []struct {
		current, candidate string
		want               bool
	}{
		{"1.0.0", "1.0.1", true},
		{"1.0.0", "1.1", true},
		{"1.2", "1.2.1", true},
		{"v1.2.3", "v1.2.3", false},
		{"2.0.0", "1.9.9", false},
		{"1.2.3", "1.2.3-rc1", false},
		{"", "0.1.0", true},
		{"1.0.0", "", false},
		{"1.0.0", "garbage", false},
	}
	for _, tc := range cases {
		if got := IsNewer(tc.current, tc.candidate); got != tc.want {
			t.Fatalf("IsNewer(%q, %q) = %v, want %v", tc.current, tc.candidate, got, tc.want)
		}
	}
}

func testChecker(githubURL, proxyURL string) *Checker {
	c := NewChecker()
	c.GitHubURL = githubURL
	c.ProxyURL = proxyURL
	return c
}

func TestCheckFindsNewerRelease(t *testing.T) {
	gh := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"tag_name":"v1.4.0","html_url":"https://example.com/rel"}`))
	}))
	defer gh.Close()
	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Version":"v1.3.9"}`))
	}))
	defer proxy.Close()

	res := testChecker(gh.URL, proxy.URL).Check(context.Background(), t.TempDir(), "1.3.0", false)
	if res.FromCache {
		t.Fatal("first check claimed cache")
	}
	if len(res.Newer) != 2 {
		t.Fatalf("newer sources = %+v, want both", res.Newer)
	}
}

func TestCheckUsesCacheInsideTTL(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(`{"tag_name":"v1.0.0"}`))
	}))
	defer srv.Close()

	home := t.TempDir()
	c := testChecker(srv.URL, srv.URL)

	c.Check(context.Background(), home, "1.0.0", false)
	first := hits.Load()
	res := c.Check(context.Background(), home, "1.0.0", false)
	if hits.Load() != first {
		t.Fatal("second check hit the network inside the TTL")
	}
	if !res.FromCache {
		t.Fatal("second check not marked as cached")
	}
}

func TestCheckForceBypassesCache(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(`{"tag_name":"v1.0.0"}`))
	}))
	defer srv.Close()

	home := t.TempDir()
	c := testChecker(srv.URL, srv.URL)
	c.Check(context.Background(), home, "1.0.0", false)
	before := hits.Load()
	c.Check(context.Background(), home, "1.0.0", true)
	if hits.Load() == before {
		t.Fatal("force check did not refetch")
	}
}

func TestCacheExpiresAfterTTL(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(`{"tag_name":"v1.0.0"}`))
	}))
	defer srv.Close()

	home := t.TempDir()
	c := testChecker(srv.URL, srv.URL)
	now := time.Now()
	c.Now = func() time.Time { return now }
	c.Check(context.Background(), home, "1.0.0", false)

	c.Now = func() time.Time { return now.Add(7 * time.Hour) }
	before := hits.Load()
	c.Check(context.Background(), home, "1.0.0", false)
	if hits.Load() == before {
		t.Fatal("stale cache was reused past the TTL")
	}
}

func TestCacheInvalidatedByVersionChange(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"tag_name":"v2.0.0"}`))
	}))
	defer srv.Close()

	home := t.TempDir()
	c := testChecker(srv.URL, srv.URL)
	c.Check(context.Background(), home, "1.0.0", false)

	res := c.Check(context.Background(), home, "1.5.0", false)
	if res.FromCache {
		t.Fatal("cache keyed to another version was reused")
	}
}

func TestNetworkFailureIsPerSource(t *testing.T) {
	gh := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusForbidden)
	}))
	defer gh.Close()
	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Version":"v9.9.9"}`))
	}))
	defer proxy.Close()

	res := testChecker(gh.URL, proxy.URL).Check(context.Background(), t.TempDir(), "1.0.0", false)
	var ghRes, proxyRes SourceResult
	for _, s := range res.Sources {
		switch s.Name {
		case "github":
			ghRes = s
		case "goproxy":
			proxyRes = s
		}
	}
	if ghRes.Err == "" {
		t.Fatal("github failure not reported")
	}
	if proxyRes.Version != "v9.9.9" {
		t.Fatalf("healthy source lost: %+v", proxyRes)
	}
	if len(res.Newer) != 1 {
		t.Fatalf("newer = %+v, want just the proxy result", res.Newer)
	}
}
