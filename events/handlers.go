package events

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"erfworld/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/mongo"
)

// Handler serves the calendar read API and the staff delete endpoint.
type Handler struct {
	Store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{Store: store}
}

// GetEvents lists events, optionally narrowed by month/year and location.
func (h *Handler) GetEvents(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	skip, limit := utils.ParsePagination(r, 50, 200)

	var filter ListFilter
	q := r.URL.Query()
	if yearStr, monthStr := q.Get("year"), q.Get("month"); yearStr != "" && monthStr != "" {
		year, errY := strconv.Atoi(yearStr)
		month, errM := strconv.Atoi(monthStr)
		if errY != nil || errM != nil || month < 1 || month > 12 {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid month/year")
			return
		}
		filter.Year = year
		filter.Month = time.Month(month)
	}
	filter.Location = q.Get("location")

	results, total, err := h.Store.List(ctx, filter, skip, limit)
	if err != nil {
		log.Println("List events error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch events")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"events":     results,
		"eventCount": total,
	})
}

func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	event, err := h.Store.GetBySlug(ctx, ps.ByName("slug"))
	if err == mongo.ErrNoDocuments {
		utils.RespondWithError(w, http.StatusNotFound, "Event not found")
		return
	}
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch event")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, event)
}

// DeleteEvent removes an event by slug. Staff only.
func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	err := h.Store.DeleteBySlug(ctx, ps.ByName("slug"))
	if err == mongo.ErrNoDocuments {
		utils.RespondWithError(w, http.StatusNotFound, "Event not found")
		return
	}
	if err != nil {
		log.Println("Delete event error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to delete event")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"deleted": true})
}
