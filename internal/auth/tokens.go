package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt"
)

// Claims carried by access tokens issued by the account service.
type Claims struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
	jwt.StandardClaims
}

var (
	ErrMissingToken = errors.New("auth: authorization header missing or invalid")
	ErrInvalidToken = errors.New("auth: invalid token")
)

// Manager validates access tokens and maps roles to moderator privilege.
type Manager struct {
	signingKey     []byte
	moderatorRoles map[string]struct{}
}

// NewManager constructs a Manager. Roles in moderatorRoles are treated as
// moderators (curators) by the review module.
func NewManager(signingKey string, moderatorRoles []string) (*Manager, error) {
	if signingKey == "" {
		return nil, errors.New("empty signing key")
	}
	roles := make(map[string]struct{}, len(moderatorRoles))
	for _, r := range moderatorRoles {
		r = strings.ToLower(strings.TrimSpace(r))
		if r != "" {
			roles[r] = struct{}{}
		}
	}
	return &Manager{signingKey: []byte(signingKey), moderatorRoles: roles}, nil
}

// NewAccessToken signs a token for userID with role.
func (m *Manager) NewAccessToken(userID int64, role string, ttl time.Duration) (string, error) {
	claims := &Claims{
		UserID: userID,
		Role:   role,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(ttl).Unix(),
			IssuedAt:  time.Now().Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.signingKey)
}

// Parse validates accessToken and returns the actor it identifies.
func (m *Manager) Parse(accessToken string) (Actor, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(accessToken, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.signingKey, nil
	})
	if err != nil || !token.Valid {
		return Actor{}, ErrInvalidToken
	}
	if claims.UserID <= 0 {
		return Actor{}, ErrInvalidToken
	}
	return Actor{
		ID:          claims.UserID,
		Role:        claims.Role,
		IsModerator: m.IsModeratorRole(claims.Role),
	}, nil
}

// IsModeratorRole reports whether role grants moderator privilege.
func (m *Manager) IsModeratorRole(role string) bool {
	_, ok := m.moderatorRoles[strings.ToLower(role)]
	return ok
}

// CurrentActor resolves the actor from the request's bearer token.
func (m *Manager) CurrentActor(r *http.Request) (Actor, error) {
	header := r.Header.Get("Authorization")
	if header == "" || !strings.HasPrefix(header, "Bearer ") {
		return Actor{}, ErrMissingToken
	}
	return m.Parse(strings.TrimPrefix(header, "Bearer "))
}
