package session

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Teknovat/farm-tracker-sub001/internal/models"
	"github.com/Teknovat/farm-tracker-sub001/internal/security"
)

// CookieName is the HTTP-only cookie carrying the signed session token.
const CookieName = "farm_session"

// Claims are the session contents stored in the signed token. FarmID and
// Role are zero until the user selects a farm.
type Claims struct {
	jwt.RegisteredClaims
	UserID int64       `json:"uid"`
	FarmID int64       `json:"fid,omitempty"`
	Role   models.Role `json:"role,omitempty"`
}

// Manager issues, verifies and refreshes session tokens. Tokens are
// HS256-signed with a single process-wide secret loaded at startup.
type Manager struct {
	secret   []byte
	duration time.Duration
}

// NewManager creates a session manager. duration is the sliding session
// lifetime applied on every issue and refresh.
func NewManager(secret string, duration time.Duration) *Manager {
	return &Manager{secret: []byte(secret), duration: duration}
}

// Create signs a new session token and stores it as an HTTP-only cookie.
// farmID and role may be zero when the user has not selected a farm yet.
func (m *Manager) Create(w http.ResponseWriter, r *http.Request, userID, farmID int64, role models.Role) error {
	expiresAt := time.Now().Add(m.duration)

	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		UserID: userID,
		FarmID: farmID,
		Role:   role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return err
	}

	http.SetCookie(w, security.CreateSessionCookie(r, CookieName, signed, expiresAt))
	return nil
}

// Verify decodes and validates the session cookie. It returns nil on a
// missing cookie, a bad signature or an expired token; callers treat nil
// as "unauthenticated".
func (m *Manager) Verify(r *http.Request) *Claims {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}

	parser := jwt.NewParser(jwt.WithValidMethods([]string{"HS256"}))
	claims := &Claims{}

	parsedToken, err := parser.ParseWithClaims(cookie.Value, claims, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	if err != nil || !parsedToken.Valid {
		return nil
	}

	return claims
}

// Refresh slides the session expiry forward by re-issuing the token. A
// request without a valid session is left unmodified.
func (m *Manager) Refresh(w http.ResponseWriter, r *http.Request) *Claims {
	claims := m.Verify(r)
	if claims == nil {
		return nil
	}

	if err := m.Create(w, r, claims.UserID, claims.FarmID, claims.Role); err != nil {
		// Keep the existing session; it is still valid until its expiry
		return claims
	}
	return claims
}

// Clear removes the session cookie.
func (m *Manager) Clear(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, security.CreateDeleteCookie(r, CookieName))
}
