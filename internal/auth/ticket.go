// internal/auth/ticket.go
package auth

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const ticketIssuer = "tabletop"

var (
	privateKey ed25519.PrivateKey
	publicKey  ed25519.PublicKey

	// ticketTTL is how long a ticket stays valid (0 => no exp claim).
	ticketTTL time.Duration

	ErrWrongRoom = errors.New("ticket was issued for another room")
)

// TicketClaims bind a connection id and nickname to one room.
type TicketClaims struct {
	Room     string `json:"room"`
	Nickname string `json:"nickname,omitempty"`
	jwt.RegisteredClaims
}

// Init generates a fresh ed25519 key pair at runtime. Tickets issued before a restart stop
// verifying, which is fine for short-lived join tickets.
func Init(ttl time.Duration) error {
	var err error
	publicKey, privateKey, err = ed25519.GenerateKey(nil)
	if err != nil {
		return fmt.Errorf("failed to generate ed25519 key pair: %w", err)
	}
	ticketTTL = ttl
	return nil
}

// InitFromPath reads raw ed25519 private/public keys from file so several nodes share them.
func InitFromPath(privatePath, publicPath string, ttl time.Duration) error {
	privateKeyData, err := os.ReadFile(privatePath)
	if err != nil {
		return fmt.Errorf("failed to read private key file: %w", err)
	}
	publicKeyData, err := os.ReadFile(publicPath)
	if err != nil {
		return fmt.Errorf("failed to read public key file: %w", err)
	}
	if len(privateKeyData) != ed25519.PrivateKeySize || len(publicKeyData) != ed25519.PublicKeySize {
		return fmt.Errorf("ed25519 key files have the wrong size")
	}

	privateKey = ed25519.PrivateKey(privateKeyData)
	publicKey = ed25519.PublicKey(publicKeyData)
	ticketTTL = ttl
	return nil
}

// CreateTicket signs a ticket for room. The subject is a fresh connection id that the room
// socket will use as the player id.
func CreateTicket(room, nickname string) (string, string, error) {
	if privateKey == nil {
		return "", "", fmt.Errorf("ticket keys not initialized")
	}
	connID := uuid.NewString()
	now := time.Now()
	claims := TicketClaims{
		Room:     room,
		Nickname: nickname,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  connID,
			Issuer:   ticketIssuer,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if ticketTTL > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ticketTTL))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	signed, err := token.SignedString(privateKey)
	if err != nil {
		return "", "", err
	}
	return signed, connID, nil
}

// AuthenticateTicket verifies a ticket string for room and returns its claims.
func AuthenticateTicket(tokenString, room string) (*TicketClaims, error) {
	claims := &TicketClaims{}
	t, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodEd25519); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return publicKey, nil
	}, jwt.WithIssuer(ticketIssuer))
	if err != nil {
		return nil, fmt.Errorf("jwt parse error: %w", err)
	}
	if !t.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("missing sub in jwt")
	}
	if claims.Room != room {
		return nil, ErrWrongRoom
	}
	return claims, nil
}
