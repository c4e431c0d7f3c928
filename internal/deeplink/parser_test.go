package deeplink

import (
	"strings"
	"testing"
)

func TestParse_Table(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantPath   string
		wantParams map[string]string
	}{
		{
			name:       "empty string is root",
			input:      "",
			wantPath:   "/",
			wantParams: map[string]string{},
		},
		{
			name:       "custom scheme host folds into path",
			input:      "myapp://product/123",
			wantPath:   "/product/123",
			wantParams: map[string]string{},
		},
		{
			name:       "custom scheme host with query",
			input:      "myapp://product?id=42",
			wantPath:   "/product",
			wantParams: map[string]string{"id": "42"},
		},
		{
			name:       "https keeps only the path",
			input:      "https://example.com/a/b?x=1",
			wantPath:   "/a/b",
			wantParams: map[string]string{"x": "1"},
		},
		{
			name:       "custom scheme trailing slash collapsed",
			input:      "myapp://settings/",
			wantPath:   "/settings",
			wantParams: map[string]string{},
		},
		{
			name:       "bare path gains leading slash",
			input:      "product/123",
			wantPath:   "/product/123",
			wantParams: map[string]string{},
		},
		{
			name:       "http root",
			input:      "http://example.com",
			wantPath:   "/",
			wantParams: map[string]string{},
		},
		{
			name:       "multiple query params",
			input:      "myapp://search?q=shoes&page=2",
			wantPath:   "/search",
			wantParams: map[string]string{"q": "shoes", "page": "2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.input)
			if got.Path != tt.wantPath {
				t.Errorf("Parse(%q).Path = %q, want %q", tt.input, got.Path, tt.wantPath)
			}
			if len(got.QueryParams) != len(tt.wantParams) {
				t.Fatalf("Parse(%q).QueryParams = %v, want %v", tt.input, got.QueryParams, tt.wantParams)
			}
			for k, v := range tt.wantParams {
				if got.QueryParams[k] != v {
					t.Errorf("Parse(%q).QueryParams[%q] = %q, want %q", tt.input, k, got.QueryParams[k], v)
				}
			}
		})
	}
}

func TestParse_NeverEmitsSchemeSeparator(t *testing.T) {
	inputs := []string{
		"myapp://product/123",
		"myapp:///a://b",
		"weird://host/x://y",
		"https://example.com/redirect?to=https://evil.com",
		"://",
		"a://b://c",
		string([]byte{0x7f}) + "://x", // unparsable control character
	}

	for _, input := range inputs {
		got := Parse(input)
		if strings.Contains(got.Path, "://") {
			t.Errorf("Parse(%q).Path = %q contains scheme separator", input, got.Path)
		}
		if !strings.HasPrefix(got.Path, "/") {
			t.Errorf("Parse(%q).Path = %q missing leading slash", input, got.Path)
		}
	}
}

func TestNormalizeRoute_Idempotent(t *testing.T) {
	inputs := []string{
		"", "/", "//", "///a", "product", "/product/123",
		"café", "cafe\u0301", "a://b", "  spaced  ",
	}

	for _, s := range inputs {
		once := NormalizeRoute(s)
		twice := NormalizeRoute(once)
		if once != twice {
			t.Errorf("NormalizeRoute not idempotent for %q: %q != %q", s, once, twice)
		}
		if !strings.HasPrefix(once, "/") {
			t.Errorf("NormalizeRoute(%q) = %q missing leading slash", s, once)
		}
		if strings.HasPrefix(once, "//") {
			t.Errorf("NormalizeRoute(%q) = %q has duplicate leading slash", s, once)
		}
	}
}

func TestNormalizeRoute_UnicodeEquivalence(t *testing.T) {
	composed := NormalizeRoute("/café")
	decomposed := NormalizeRoute("/cafe\u0301")
	if composed != decomposed {
		t.Errorf("NFC-equivalent routes differ: %q vs %q", composed, decomposed)
	}
}
