package instagram

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"erfworld/models"
)

func testHandler(fetcher *fakeFetcher, extractor *fakeOCR, uploader *fakeUploader, writer *fakeWriter) *Handler {
	return NewHandler("verify-me", "app-secret", testImporter(fetcher, extractor, uploader, writer))
}

func TestVerifyChallenge(t *testing.T) {
	h := testHandler(&fakeFetcher{}, &fakeOCR{}, &fakeUploader{}, &fakeWriter{})

	req := httptest.NewRequest(http.MethodGet,
		"/api/instagram/webhook?hub.mode=subscribe&hub.verify_token=verify-me&hub.challenge=challenge123", nil)
	rec := httptest.NewRecorder()
	h.Verify(rec, req, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Body.String() != "challenge123" {
		t.Errorf("body = %q, want the challenge echoed verbatim", rec.Body.String())
	}
}

func TestVerifyRejectsBadToken(t *testing.T) {
	h := testHandler(&fakeFetcher{}, &fakeOCR{}, &fakeUploader{}, &fakeWriter{})

	req := httptest.NewRequest(http.MethodGet,
		"/api/instagram/webhook?hub.mode=subscribe&hub.verify_token=wrong&hub.challenge=challenge123", nil)
	rec := httptest.NewRecorder()
	h.Verify(rec, req, nil)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func deliver(t *testing.T, h *Handler, body string, sign bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/instagram/webhook", strings.NewReader(body))
	if sign {
		req.Header.Set("x-hub-signature-256", signBody([]byte(body), h.AppSecret))
	}
	rec := httptest.NewRecorder()
	h.Receive(rec, req, nil)
	return rec
}

func TestReceiveRejectsBadSignature(t *testing.T) {
	fetcher := &fakeFetcher{}
	h := testHandler(fetcher, &fakeOCR{}, &fakeUploader{}, &fakeWriter{})

	rec := deliver(t, h, `{"entry":[]}`, false)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if fetcher.calls != 0 {
		t.Error("pipeline must not run on an unauthenticated delivery")
	}
}

func TestReceiveMalformedPayload(t *testing.T) {
	h := testHandler(&fakeFetcher{}, &fakeOCR{}, &fakeUploader{}, &fakeWriter{})

	rec := deliver(t, h, `{"entry":`, true)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}

func TestReceiveMissingHashtagShortCircuits(t *testing.T) {
	fetcher := &fakeFetcher{}
	extractor := &fakeOCR{}
	uploader := &fakeUploader{}
	writer := &fakeWriter{}
	h := testHandler(fetcher, extractor, uploader, writer)

	body := `{"entry":[{"changes":[{"field":"media","value":{"id":"123","caption":"no marker here"}}]}]}`
	rec := deliver(t, h, body, true)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if fetcher.calls != 0 || extractor.calls != 0 || uploader.calls != 0 || len(writer.created) != 0 {
		t.Error("a post without the calendar hashtag must touch nothing")
	}
}

func TestReceiveImportsTaggedPost(t *testing.T) {
	fetcher := &fakeFetcher{
		media: &Media{ID: "123", MediaType: "IMAGE", Permalink: "https://instagram.com/p/x"},
		urls:  []string{"https://cdn/a.jpg"},
	}
	extractor := &fakeOCR{text: "OPEN STUDIO\nMarch 20, 2026 at 6pm\n349 Suydam St"}
	uploader := &fakeUploader{refs: []models.AssetRef{{Key: "a", URL: "https://assets/a.jpg"}}}
	writer := &fakeWriter{}
	h := testHandler(fetcher, extractor, uploader, writer)

	body := `{"entry":[{"changes":[{"field":"media","value":{"id":"123","caption":"flyer up #ERFCalendar"}}]}]}`
	rec := deliver(t, h, body, true)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if len(writer.created) != 1 {
		t.Fatalf("created %d events, want 1", len(writer.created))
	}
	if writer.created[0].Slug != "instagram-123" {
		t.Errorf("slug = %q", writer.created[0].Slug)
	}
}

func TestReceiveHashtagIsCaseInsensitive(t *testing.T) {
	fetcher := &fakeFetcher{
		media: &Media{ID: "321", MediaType: "IMAGE"},
		urls:  []string{"https://cdn/a.jpg"},
	}
	extractor := &fakeOCR{text: "SHOW"}
	uploader := &fakeUploader{refs: []models.AssetRef{{Key: "a", URL: "https://assets/a.jpg"}}}
	writer := &fakeWriter{}
	h := testHandler(fetcher, extractor, uploader, writer)

	body := `{"entry":[{"changes":[{"field":"media","value":{"id":"321","caption":"tonight #erfcalendar"}}]}]}`
	rec := deliver(t, h, body, true)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if len(writer.created) != 1 || writer.created[0].Slug != "instagram-321" {
		t.Errorf("created = %+v, want instagram-321", writer.created)
	}
}

func TestReceiveSiblingFailureIsIsolated(t *testing.T) {
	// first change fails at fetch, second is not a media change, third succeeds
	fetcher := &fakeFetcher{
		media:  &Media{ID: "ok", MediaType: "IMAGE"},
		urls:   []string{"https://cdn/a.jpg"},
		failID: "x1",
	}
	extractor := &fakeOCR{text: "SHOW"}
	uploader := &fakeUploader{refs: []models.AssetRef{{Key: "a", URL: "https://assets/a.jpg"}}}
	writer := &fakeWriter{}
	h := testHandler(fetcher, extractor, uploader, writer)

	body := `{"entry":[{"changes":[` +
		`{"field":"media","value":{"id":"x1","caption":"#ERFCalendar"}},` +
		`{"field":"comments","value":{"id":"x2","caption":"#ERFCalendar"}},` +
		`{"field":"media","value":{"id":"x3","caption":"#ERFCalendar"}}]}]}`
	rec := deliver(t, h, body, true)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	// both media changes went through the pipeline, the comments change did not
	if fetcher.calls != 2 {
		t.Errorf("fetcher calls = %d, want 2", fetcher.calls)
	}
	// x1 failed at fetch, x3 still produced its record
	if len(writer.created) != 1 || writer.created[0].Slug != "instagram-x3" {
		t.Errorf("created = %+v, want just instagram-x3", writer.created)
	}
}
