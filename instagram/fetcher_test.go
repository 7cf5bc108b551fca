package instagram

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestImageURLsFiltersVideos(t *testing.T) {
	children := []MediaChild{
		{ID: "1", MediaType: "IMAGE", MediaURL: "https://cdn/a.jpg"},
		{ID: "2", MediaType: "VIDEO", MediaURL: "https://cdn/b.mp4"},
		{ID: "3", MediaType: "IMAGE", MediaURL: "https://cdn/c.jpg"},
	}

	urls := ImageURLs(children)
	if len(urls) != 2 || urls[0] != "https://cdn/a.jpg" || urls[1] != "https://cdn/c.jpg" {
		t.Fatalf("urls = %v, want [a.jpg c.jpg] in order", urls)
	}
}

func TestImageURLsAllVideo(t *testing.T) {
	children := []MediaChild{
		{ID: "1", MediaType: "VIDEO", MediaURL: "https://cdn/b.mp4"},
	}
	if urls := ImageURLs(children); len(urls) != 0 {
		t.Fatalf("urls = %v, want none", urls)
	}
}

func TestFetchMediaRequiresToken(t *testing.T) {
	f := NewGraphFetcher("", time.Second)
	if _, _, err := f.FetchMedia(context.Background(), "123"); err == nil {
		t.Fatal("expected error without access token")
	}
}

func TestFetchMediaImage(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":"123","caption":"#ERFCalendar","media_type":"IMAGE","media_url":"https://cdn/a.jpg","permalink":"https://instagram.com/p/x","timestamp":"2026-03-01T12:00:00+0000"}`)
	}))
	defer ts.Close()

	f := NewGraphFetcher("token", time.Second)
	f.BaseURL = ts.URL

	media, urls, err := f.FetchMedia(context.Background(), "123")
	if err != nil {
		t.Fatalf("FetchMedia: %v", err)
	}
	if media.Permalink != "https://instagram.com/p/x" {
		t.Errorf("permalink = %q", media.Permalink)
	}
	if len(urls) != 1 || urls[0] != "https://cdn/a.jpg" {
		t.Errorf("urls = %v", urls)
	}
}

func TestFetchMediaAlbum(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "/children") {
			fmt.Fprint(w, `{"data":[{"id":"a","media_type":"IMAGE","media_url":"https://cdn/a.jpg"},{"id":"b","media_type":"VIDEO","media_url":"https://cdn/b.mp4"},{"id":"c","media_type":"IMAGE","media_url":"https://cdn/c.jpg"}]}`)
			return
		}
		fmt.Fprint(w, `{"id":"456","media_type":"CAROUSEL_ALBUM","permalink":"https://instagram.com/p/y"}`)
	}))
	defer ts.Close()

	f := NewGraphFetcher("token", time.Second)
	f.BaseURL = ts.URL

	_, urls, err := f.FetchMedia(context.Background(), "456")
	if err != nil {
		t.Fatalf("FetchMedia: %v", err)
	}
	if len(urls) != 2 || urls[0] != "https://cdn/a.jpg" || urls[1] != "https://cdn/c.jpg" {
		t.Errorf("urls = %v, want image children only", urls)
	}
}

func TestFetchMediaUnsupportedType(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":"789","media_type":"VIDEO","media_url":"https://cdn/v.mp4"}`)
	}))
	defer ts.Close()

	f := NewGraphFetcher("token", time.Second)
	f.BaseURL = ts.URL

	if _, _, err := f.FetchMedia(context.Background(), "789"); err == nil {
		t.Fatal("expected error for video post")
	}
}
