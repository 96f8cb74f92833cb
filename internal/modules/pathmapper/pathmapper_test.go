package pathmapper

import (
	"errors"
	"strings"
	"testing"
)

func TestDerive(t *testing.T) {
	tests := []struct {
		name         string
		url          string
		expectDomain string
		expectFile   string
		expectErr    bool
	}{
		{
			name:         "path and query",
			url:          "https://Example.com/Blog/Post-1?x=1",
			expectDomain: "example.com",
			expectFile:   "blog_post-1_x=1.md",
		},
		{
			name:         "empty path",
			url:          "https://example.com",
			expectDomain: "example.com",
			expectFile:   "index.md",
		},
		{
			name:         "root path",
			url:          "https://example.com/",
			expectDomain: "example.com",
			expectFile:   "index.md",
		},
		{
			name:         "www grouped with apex",
			url:          "https://www.example.com/about",
			expectDomain: "example.com",
			expectFile:   "about.md",
		},
		{
			name:         "subdomain grouped under registrable domain",
			url:          "https://docs.example.co.uk/api/v2",
			expectDomain: "example.co.uk",
			expectFile:   "api_v2.md",
		},
		{
			name:         "port dropped",
			url:          "https://example.com:8443/health",
			expectDomain: "example.com",
			expectFile:   "health.md",
		},
		{
			name:         "missing scheme gets default",
			url:          "example.com/docs/setup",
			expectDomain: "example.com",
			expectFile:   "docs_setup.md",
		},
		{
			name:         "illegal filename characters replaced",
			url:          "https://example.com/a:b*c",
			expectDomain: "example.com",
			expectFile:   "a_b_c.md",
		},
		{
			name:         "unsafe characters stay percent-escaped",
			url:          `https://example.com/file"name`,
			expectDomain: "example.com",
			expectFile:   "file%22name.md",
		},
		{
			name:         "host without public suffix",
			url:          "http://localhost:8080/admin",
			expectDomain: "localhost",
			expectFile:   "admin.md",
		},
		{
			name:         "IP literal host",
			url:          "http://192.168.0.1/status",
			expectDomain: "192.168.0.1",
			expectFile:   "status.md",
		},
		{
			name:      "empty input",
			url:       "",
			expectErr: true,
		},
		{
			name:      "no host",
			url:       "https://",
			expectErr: true,
		},
		{
			name:      "unparsable",
			url:       "https://exa mple.com/path",
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mapped, err := Derive(tt.url)

			if tt.expectErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !errors.Is(err, ErrInvalidURL) {
					t.Errorf("expected ErrInvalidURL, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if mapped.Domain != tt.expectDomain {
				t.Errorf("expected domain %q, got %q", tt.expectDomain, mapped.Domain)
			}
			if mapped.Filename != tt.expectFile {
				t.Errorf("expected filename %q, got %q", tt.expectFile, mapped.Filename)
			}
		})
	}
}

func TestDerive_Deterministic(t *testing.T) {
	url := "https://example.com/some/deep/path?a=1&b=2"

	first, err := Derive(url)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := Derive(url)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first != second {
		t.Errorf("expected identical results, got %+v and %+v", first, second)
	}
}

func TestDerive_PercentEncodingKeptApart(t *testing.T) {
	encoded, err := Derive("https://example.com/a%2Fb")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	plain, err := Derive("https://example.com/a/b")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if encoded.Filename == plain.Filename {
		t.Errorf("expected distinct filenames, both got %q", encoded.Filename)
	}
}

func TestDerive_LongPathTruncated(t *testing.T) {
	prefix := strings.Repeat("a", 240)
	first, err := Derive("https://example.com/" + prefix + "x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := Derive("https://example.com/" + prefix + "y")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, m := range []Mapped{first, second} {
		if len(m.Filename) > maxFilenameBytes {
			t.Errorf("filename exceeds %d bytes: %d", maxFilenameBytes, len(m.Filename))
		}
		if !strings.HasSuffix(m.Filename, ".md") {
			t.Errorf("expected .md extension, got %q", m.Filename)
		}
	}

	// The distinguishing tail is cut off, so the hash suffix must keep the
	// two URLs apart.
	if first.Filename == second.Filename {
		t.Errorf("expected distinct filenames after truncation, both got %q", first.Filename)
	}
}

func TestDerive_NoTraversalSegments(t *testing.T) {
	urls := []string{
		"https://example.com/../../etc/passwd",
		"https://example.com/a/../b",
		"https://example.com/..%2f..%2fsecret",
	}

	for _, url := range urls {
		mapped, err := Derive(url)
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", url, err)
		}
		if strings.Contains(mapped.Filename, "/") || strings.Contains(mapped.Filename, `\`) {
			t.Errorf("filename contains separator: %q", mapped.Filename)
		}
		for _, segment := range strings.Split(mapped.RelPath(), "/") {
			if segment == ".." {
				t.Errorf("relative path contains traversal segment: %q", mapped.RelPath())
			}
		}
	}
}

func TestResolve(t *testing.T) {
	seen := make(map[string]string)

	// Two distinct URLs sanitizing to the same name.
	first, err := Derive("https://example.com/a/b")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := Derive("https://example.com/a:b")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Filename != second.Filename {
		t.Fatalf("test setup expects colliding filenames, got %q and %q", first.Filename, second.Filename)
	}

	resolved, collided := Resolve(first, "https://example.com/a/b", seen)
	if collided {
		t.Error("first claim should not collide")
	}
	if resolved != first {
		t.Errorf("first claim should keep its path, got %+v", resolved)
	}

	// Same URL again keeps the same path (idempotent output location).
	again, collided := Resolve(first, "https://example.com/a/b", seen)
	if collided || again != first {
		t.Errorf("same URL must resolve to the same path, got %+v (collided=%v)", again, collided)
	}

	// A different URL on the same path gets a deterministic hash suffix.
	disambiguated, collided := Resolve(second, "https://example.com/a:b", seen)
	if !collided {
		t.Error("expected collision for distinct URL on claimed path")
	}
	if disambiguated.Filename == second.Filename {
		t.Error("expected disambiguated filename to differ")
	}
	expected := "a_b_" + Hash("https://example.com/a:b") + ".md"
	if disambiguated.Filename != expected {
		t.Errorf("expected %q, got %q", expected, disambiguated.Filename)
	}
}
