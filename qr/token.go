package qr

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenValidity bounds how long a rendered QR code stays usable. The client
// re-requests a token on this cadence, so a screenshot goes stale fast.
const TokenValidity = 3 * time.Minute

// Claims is the full membership snapshot a door scanner needs. The token is
// the sole source of truth at verification time; no live membership lookup
// happens behind it.
type Claims struct {
	CustomerID           string `json:"customerId"`
	CustomerName         string `json:"customerName"`
	MembershipType       string `json:"membershipType"`
	MembershipExpiryDate string `json:"membershipExpiryDate"`
	jwt.RegisteredClaims
}

// Service issues and verifies QR access tokens with a single shared secret.
type Service struct {
	secret []byte
	now    func() time.Time
}

func NewService(secret []byte) *Service {
	return &Service{
		secret: secret,
		now:    time.Now,
	}
}

// Issue signs a token for the member. All fields are required; missing data is
// a caller error caught before signing.
func (s *Service) Issue(customerID, customerName, membershipType, membershipExpiry string) (string, error) {
	if customerID == "" || customerName == "" || membershipType == "" || membershipExpiry == "" {
		return "", fmt.Errorf("missing required fields")
	}

	now := s.now()
	claims := &Claims{
		CustomerID:           customerID,
		CustomerName:         customerName,
		MembershipType:       membershipType,
		MembershipExpiryDate: membershipExpiry,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenValidity)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify validates signature and expiry. Expired, forged, and malformed all
// collapse into the same false result; the caller never learns which.
func (s *Service) Verify(tokenString string) (*Claims, bool) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return nil, false
	}
	return claims, true
}

// RemainingSeconds reports seconds until expiry; 0 for an invalid token.
func (s *Service) RemainingSeconds(tokenString string) int64 {
	claims, ok := s.Verify(tokenString)
	if !ok || claims.ExpiresAt == nil {
		return 0
	}
	remaining := claims.ExpiresAt.Unix() - s.now().Unix()
	if remaining < 0 {
		return 0
	}
	return remaining
}
