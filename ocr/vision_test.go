package ocr

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestExtractText(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"responses":[{"textAnnotations":[{"description":"WORKSHOP\nMarch 13th"},{"description":"WORKSHOP"}]}]}`)
	}))
	defer ts.Close()

	c := NewClient("key", time.Second)
	c.BaseURL = ts.URL

	text, err := c.ExtractText(context.Background(), "https://cdn/flyer.jpg")
	if err != nil {
		t.Fatalf("ExtractText: %v", err)
	}
	if text != "WORKSHOP\nMarch 13th" {
		t.Errorf("text = %q, want the first (full) annotation", text)
	}
}

func TestExtractTextNoText(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"responses":[{}]}`)
	}))
	defer ts.Close()

	c := NewClient("key", time.Second)
	c.BaseURL = ts.URL

	text, err := c.ExtractText(context.Background(), "https://cdn/blank.jpg")
	if err != nil {
		t.Fatalf("ExtractText: %v", err)
	}
	if text != "" {
		t.Errorf("text = %q, want empty", text)
	}
}

func TestExtractTextServiceError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"responses":[{"error":{"message":"quota exceeded"}}]}`)
	}))
	defer ts.Close()

	c := NewClient("key", time.Second)
	c.BaseURL = ts.URL

	if _, err := c.ExtractText(context.Background(), "https://cdn/flyer.jpg"); err == nil {
		t.Fatal("expected error")
	}
}

func TestExtractTextRequiresKey(t *testing.T) {
	c := NewClient("", time.Second)
	if _, err := c.ExtractText(context.Background(), "https://cdn/flyer.jpg"); err == nil {
		t.Fatal("expected error without api key")
	}
}
