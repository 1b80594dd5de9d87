package detector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWhatCMSDetect(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("key"); got != "test-key" {
			t.Errorf("expected api key in query, got %q", got)
		}
		if got := r.URL.Query().Get("url"); got != "example.com" {
			t.Errorf("expected bare host in query, got %q", got)
		}
		w.Write([]byte(`{
			"result": {"code": 200, "msg": "Success"},
			"results": [
				{"name": "WordPress", "version": "6.2", "categories": ["CMS", "Blog"], "id": "1", "url": "/c/1"},
				{"name": "PHP", "version": "", "categories": ["Programming Language"], "id": "2", "url": ""}
			]
		}`))
	}))
	defer server.Close()

	d, err := NewWhatCMSDetector("test-key", server.URL, server.Client())
	if err != nil {
		t.Fatalf("constructor failed: %v", err)
	}

	detections, err := d.Detect(context.Background(), Target{URL: "https://example.com"})
	if err != nil {
		t.Fatalf("detect failed: %v", err)
	}
	if len(detections) != 2 {
		t.Fatalf("expected 2 detections, got %d", len(detections))
	}

	wp := detections[0]
	if wp.Name != "WordPress" || wp.Confidence != 95 || wp.Category != "CMS" {
		t.Errorf("unexpected wordpress detection: %+v", wp)
	}
	if len(wp.Versions) != 1 || wp.Versions[0] != "6.2" {
		t.Errorf("unexpected versions: %v", wp.Versions)
	}
	if wp.Website != "https://whatcms.org/c/1" {
		t.Errorf("unexpected website: %q", wp.Website)
	}
	if len(wp.Evidence) != 1 || wp.Evidence[0].Field != "whatcms_api" {
		t.Errorf("unexpected evidence: %v", wp.Evidence)
	}

	if detections[1].Versions != nil {
		t.Errorf("empty version must not be recorded: %v", detections[1].Versions)
	}
}

func TestWhatCMSAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result": {"code": 120, "msg": "API key invalid"}}`))
	}))
	defer server.Close()

	d, err := NewWhatCMSDetector("bad-key", server.URL, server.Client())
	if err != nil {
		t.Fatalf("constructor failed: %v", err)
	}

	if _, err := d.Detect(context.Background(), Target{URL: "https://example.com"}); err == nil {
		t.Fatal("expected API-level error to surface")
	}
}

func TestWhatCMSRequiresKey(t *testing.T) {
	if _, err := NewWhatCMSDetector("", "", nil); err == nil {
		t.Fatal("expected error for missing API key")
	}
}

func TestPrimaryCategory(t *testing.T) {
	cases := []struct {
		in   []string
		want string
	}{
		{nil, "Unknown"},
		{[]string{"Blog", "CMS"}, "CMS"},
		{[]string{"Database", "Programming Language"}, "Programming Language"},
		{[]string{"CDN", "Analytics"}, "CDN"},
	}
	for _, tc := range cases {
		if got := primaryCategory(tc.in); got != tc.want {
			t.Errorf("primaryCategory(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
