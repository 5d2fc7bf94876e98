package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestHTTPFetcher_FetchEvent(t *testing.T) {
	tests := []struct {
		name       string
		html       string
		statusCode int
		wantError  bool
		wantTitle  string
		wantCover  string
	}{
		{
			name: "page with cover image",
			html: `<html><head><title> Summer Party </title></head><body>
				<img data-imgperflogname="profileCoverPhoto" src="https://scontent.example/c.jpg">
				</body></html>`,
			statusCode: http.StatusOK,
			wantTitle:  "Summer Party",
			wantCover:  "https://scontent.example/c.jpg",
		},
		{
			name:       "page without cover image",
			html:       `<html><head><title>Quiz Night</title></head><body></body></html>`,
			statusCode: http.StatusOK,
			wantTitle:  "Quiz Night",
		},
		{
			name:       "HTTP error",
			statusCode: http.StatusNotFound,
			wantError:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if userAgent := r.Header.Get("User-Agent"); !strings.Contains(userAgent, "fb-events") {
					t.Errorf("User-Agent = %q, should contain 'fb-events'", userAgent)
				}
				if r.URL.Path != "/events/123/" {
					t.Errorf("path = %q, want /events/123/", r.URL.Path)
				}
				w.WriteHeader(tt.statusCode)
				w.Write([]byte(tt.html))
			}))
			defer server.Close()

			f := NewHTTPFetcher(server.URL+"/", "fb-events-test", 5*time.Second)
			page, err := f.FetchEvent(context.Background(), "123")

			if tt.wantError {
				if err == nil {
					t.Error("FetchEvent() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("FetchEvent() unexpected error: %v", err)
			}

			if page.ID != "123" {
				t.Errorf("ID = %q, want 123", page.ID)
			}
			if page.Title != tt.wantTitle {
				t.Errorf("Title = %q, want %q", page.Title, tt.wantTitle)
			}
			if page.Source != tt.html {
				t.Error("Source is not the page body")
			}
			switch {
			case tt.wantCover == "" && page.CoverImageURL != nil:
				t.Errorf("CoverImageURL = %q, want nil", *page.CoverImageURL)
			case tt.wantCover != "" && (page.CoverImageURL == nil || *page.CoverImageURL != tt.wantCover):
				t.Errorf("CoverImageURL = %v, want %q", page.CoverImageURL, tt.wantCover)
			}
		})
	}
}

func TestHTTPFetcher_FetchProfile(t *testing.T) {
	body := `<a href="https://www.facebook.com/events/1/">x</a>`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/someclub/upcoming_hosted_events" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(body))
	}))
	defer server.Close()

	f := NewHTTPFetcher(server.URL, "fb-events-test", 5*time.Second)
	page, err := f.FetchProfile(context.Background(), "someclub")
	if err != nil {
		t.Fatalf("FetchProfile() error: %v", err)
	}
	if page.Profile != "someclub" || page.Prerender != body || page.Postrender != body {
		t.Errorf("FetchProfile() = %+v", page)
	}
}

func TestURLs(t *testing.T) {
	if got := EventURL("https://www.facebook.com", "42"); got != "https://www.facebook.com/events/42/" {
		t.Errorf("EventURL() = %q", got)
	}
	if got := ProfileEventsURL("https://www.facebook.com", "club"); got != "https://www.facebook.com/club/upcoming_hosted_events" {
		t.Errorf("ProfileEventsURL() = %q", got)
	}
}
