package qr

import (
	"encoding/json"
	"log"
	"net/http"

	"erfworld/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
)

// Handler exposes token issue/verify plus QR rendering.
type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

type issueRequest struct {
	CustomerID           string `json:"customerId"`
	CustomerName         string `json:"customerName"`
	MembershipType       string `json:"membershipType"`
	MembershipExpiryDate string `json:"membershipExpiryDate"`
}

// GenerateToken mints a fresh 3-minute token for the member's QR display.
func (h *Handler) GenerateToken(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req issueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	token, err := h.Svc.Issue(req.CustomerID, req.CustomerName, req.MembershipType, req.MembershipExpiryDate)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"token": token})
}

type verifyRequest struct {
	Token string `json:"token"`
}

// VerifyToken renders the access decision. Invalidity is a normal 200
// outcome; only transport or encoding failures surface as errors.
func (h *Handler) VerifyToken(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Token is required")
		return
	}

	claims, ok := h.Svc.Verify(req.Token)
	if !ok {
		utils.RespondWithJSON(w, http.StatusOK, utils.M{
			"valid": false,
			"error": "Invalid or expired QR code",
		})
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"valid":                true,
		"customerName":         claims.CustomerName,
		"customerId":           claims.CustomerID,
		"membershipType":       claims.MembershipType,
		"membershipExpiryDate": claims.MembershipExpiryDate,
	})
}

// QRImage renders a token as a PNG for clients that want a server-drawn code.
func (h *Handler) QRImage(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	token := r.URL.Query().Get("token")
	if token == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Token is required")
		return
	}

	png, err := qrcode.Encode(token, qrcode.Medium, 256)
	if err != nil {
		log.Println("qr encode error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate QR code")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}
