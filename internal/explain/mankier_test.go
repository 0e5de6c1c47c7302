package explain

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLookup_Found(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query().Get("q")
		_, _ = w.Write([]byte("ls - list directory contents\n  -l  use a long listing format\n\nmankier.com\n"))
	}))
	defer srv.Close()

	text, found, err := NewClientWithBaseURL(srv.URL).Lookup(context.Background(), "ls -l")
	if err != nil {
		t.Fatal(err)
	}
	if !found {
		t.Fatal("want found")
	}
	if gotPath != "/api/explain/" {
		t.Errorf("path = %q", gotPath)
	}
	if gotQuery != "ls -l" {
		t.Errorf("query = %q", gotQuery)
	}
	want := "ls - list directory contents\n  -l  use a long listing format"
	if text != want {
		t.Errorf("text = %q, want %q", text, want)
	}
}

func TestLookup_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, found, err := NewClientWithBaseURL(srv.URL).Lookup(context.Background(), "frobnicate")
	if err != nil {
		t.Fatal(err)
	}
	if found {
		t.Error("404 must map to not found, not an error")
	}
}

func TestLookup_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, _, err := NewClientWithBaseURL(srv.URL).Lookup(context.Background(), "ls")
	if err == nil {
		t.Fatal("expected error for HTTP 500")
	}
}

func TestLookup_EmptyAfterAttribution(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Nothing but the attribution tail.
		_, _ = w.Write([]byte("\nmankier.com\n"))
	}))
	defer srv.Close()

	_, found, err := NewClientWithBaseURL(srv.URL).Lookup(context.Background(), "ls")
	if err != nil {
		t.Fatal(err)
	}
	if found {
		t.Error("attribution-only body should report not found")
	}
}

func TestStripAttribution(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"two trailing lines removed", "body\n\nmankier.com\n", "body"},
		{"single line untouched", "only\n", "only"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripAttribution(tt.in); got != tt.want {
				t.Errorf("stripAttribution(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
