package testutil

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"

	"github.com/campuslink/campuslink/core/application"
	"github.com/campuslink/campuslink/core/event"
)

func CreateEvent(
	t *testing.T,
	repo event.Repository,
	name, category, organizedBy, adminEmail string,
	createdAt ...time.Time,
) event.Event {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	e, err := repo.CreateEvent(context.Background(), event.Event{
		Name:        name,
		Category:    category,
		About:       "About " + name,
		Date:        tstamp.Format("2006-01-02"),
		Email:       adminEmail,
		OrganizedBy: organizedBy,
		AdminEmail:  adminEmail,
		CreatedAt:   tstamp,
		UpdatedAt:   tstamp,
	})
	if err != nil {
		t.Fatalf("createEvent() failed: %v", err)
	}
	return e
}

func CreateApplication(
	t *testing.T,
	repo application.Repository,
	e event.Event,
	userEmail string,
	status application.Status,
) application.Application {
	tstamp := time.Now().UTC()
	app, err := repo.CreateApplication(context.Background(), application.Application{
		ID:        application.Key(userEmail, e.ID),
		EventID:   e.ID,
		EventName: e.Name,
		UserEmail: userEmail,
		Status:    status,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	})
	if err != nil {
		t.Fatalf("createApplication() failed: %v", err)
	}
	return app
}

// Signer issues RS256 identity tokens like the identity provider does.
type Signer struct {
	key       *rsa.PrivateKey
	Issuer    string
	PublicPEM string
}

func NewSigner(t *testing.T, issuer string) *Signer {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generating key failed: %v", err)
	}
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		t.Fatalf("marshalling public key failed: %v", err)
	}
	pub := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})
	return &Signer{key: key, Issuer: issuer, PublicPEM: string(pub)}
}

// Token signs a token for subject/email, valid for ttl (expired when ttl is negative).
func (s *Signer) Token(t *testing.T, subject, email string, ttl time.Duration) string {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub":   subject,
		"email": email,
		"iss":   s.Issuer,
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(s.key)
	if err != nil {
		t.Fatalf("signing token failed: %v", err)
	}
	return token
}
