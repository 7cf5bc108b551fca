package instagram

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"time"

	"erfworld/events"
	"erfworld/utils"

	"github.com/julienschmidt/httprouter"
)

// Handler receives the Instagram webhook and exposes the manual import
// endpoint for staff.
type Handler struct {
	VerifyToken string
	AppSecret   string
	Importer    *Importer
	ItemTimeout time.Duration
}

func NewHandler(verifyToken, appSecret string, importer *Importer) *Handler {
	return &Handler{
		VerifyToken: verifyToken,
		AppSecret:   appSecret,
		Importer:    importer,
		ItemTimeout: 2 * time.Minute,
	}
}

// webhookPayload is the typed shape of a delivery. Decoding up front turns
// malformed payloads into a 500 at the boundary instead of a crash mid-pipeline.
type webhookPayload struct {
	Entry []webhookEntry `json:"entry"`
}

type webhookEntry struct {
	Changes []webhookChange `json:"changes"`
}

type webhookChange struct {
	Field string       `json:"field"`
	Value webhookMedia `json:"value"`
}

type webhookMedia struct {
	ID      string `json:"id"`
	Caption string `json:"caption"`
}

// Verify answers the subscription handshake.
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	q := r.URL.Query()
	mode := q.Get("hub.mode")
	token := q.Get("hub.verify_token")
	challenge := q.Get("hub.challenge")

	if mode == "subscribe" && token != "" && token == h.VerifyToken {
		log.Println("instagram webhook verified")
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, challenge)
		return
	}

	log.Println("instagram webhook verification failed")
	utils.RespondWithError(w, http.StatusForbidden, "Forbidden")
}

// Receive handles a delivery: authenticate, decode, then run each media
// change through the pipeline. One change failing never stops its siblings,
// and the response is 200 regardless of per-item outcomes.
func (h *Handler) Receive(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if h.AppSecret != "" {
		signature := r.Header.Get("x-hub-signature-256")
		if !ValidateSignature(signature, body, h.AppSecret) {
			log.Println("invalid instagram webhook signature")
			utils.RespondWithError(w, http.StatusUnauthorized, "Invalid signature")
			return
		}
	}

	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		log.Println("malformed instagram webhook payload:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			if change.Field != "media" || change.Value.ID == "" {
				continue
			}
			h.processChange(change.Value)
		}
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true})
}

func (h *Handler) processChange(media webhookMedia) {
	// hashtags are case-insensitive on the platform
	if !utils.ContainsIgnoreCase(media.Caption, CalendarHashtag) {
		log.Printf("instagram post %s does not have %s, skipping", media.ID, CalendarHashtag)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.ItemTimeout)
	defer cancel()

	if err := h.Importer.ProcessMedia(ctx, media.ID); err != nil {
		log.Printf("error processing instagram post %s: %v", media.ID, err)
	}
}

// Import re-runs the pipeline for one post, bypassing the hashtag gate.
// Staff only.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	mediaID := ps.ByName("mediaid")
	if mediaID == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Media id is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.ItemTimeout)
	defer cancel()

	if err := h.Importer.ProcessMedia(ctx, mediaID); err != nil {
		log.Printf("manual import of %s failed: %v", mediaID, err)
		utils.RespondWithError(w, http.StatusBadGateway, "Import failed")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"imported": true, "slug": events.SlugForInstagram(mediaID)})
}
