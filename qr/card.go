package qr

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"erfworld/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"
)

// MembershipCard renders a printable PDF card with the member's details and a
// freshly issued QR token.
func (h *Handler) MembershipCard(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
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

	qrPNG, err := qrcode.Encode(token, qrcode.Medium, 256)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate QR code")
		return
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "ERF WORLD Membership")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 12)
	pdf.Cell(0, 10, fmt.Sprintf("Name: %s", req.CustomerName))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Membership: %s", req.MembershipType))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Valid until: %s", req.MembershipExpiryDate))
	pdf.Ln(12)

	imageOpts := gofpdf.ImageOptions{
		ImageType: "PNG",
	}
	pdf.RegisterImageOptionsReader("qr", imageOpts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 150, 40, 40, 40, false, imageOpts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate PDF")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=membership-"+req.CustomerID+".pdf")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
