package auth

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"erfworld/middleware"
	"erfworld/models"
	"erfworld/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

const sessionTTL = 24 * time.Hour

// Handler signs staff members in. Accounts live in the staff collection and
// are created out of band.
type Handler struct {
	Staff  *mongo.Collection
	Secret []byte
}

func NewHandler(staff *mongo.Collection, secret []byte) *Handler {
	return &Handler{Staff: staff, Secret: secret}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" || req.Password == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var staff models.StaffUser
	err := h.Staff.FindOne(ctx, bson.M{"_id": req.Username}).Decode(&staff)
	if err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(staff.PasswordHash), []byte(req.Password)) != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	now := time.Now()
	claims := &middleware.Claims{
		Username: staff.Username,
		Role:     staff.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(sessionTTL)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.Secret)
	if err != nil {
		log.Println("staff token signing error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to sign token")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"token": token})
}

// HashPassword is used by provisioning scripts when creating staff accounts.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
