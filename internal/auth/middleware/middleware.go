package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const CookieName = "whosthat_session"

// AuthService signs and verifies the anonymous player tokens that carry a
// session id. Players never log in; the token only keeps a browser attached
// to its game.
type AuthService struct {
	hmac []byte
	ttl  time.Duration
	now  func() time.Time
}

func NewAuthService(secret string, ttl time.Duration) *AuthService {
	return &AuthService{hmac: []byte(secret), ttl: ttl, now: time.Now}
}

type Claims struct {
	jwt.RegisteredClaims
}

func (a *AuthService) IssueJWT(sessionID string) (string, error) {
	now := a.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "whosthat",
			Subject:   sessionID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(a.hmac)
}

// Parse returns the session id carried by a valid token.
func (a *AuthService) Parse(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return a.hmac, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer("whosthat"),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return "", err
	}
	c, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || c.Subject == "" {
		return "", errors.New("invalid session token")
	}
	return c.Subject, nil
}

// SessionMiddleware attaches the player's session id to the request context.
// A missing, expired or forged cookie starts a fresh session and sets a new
// cookie.
func SessionMiddleware(a *AuthService, secure bool, logger *zap.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
				if sid, err := a.Parse(c.Value); err == nil {
					next.ServeHTTP(w, r.WithContext(WithSessionID(r.Context(), sid)))
					return
				}
			}

			sid := uuid.NewString()
			tok, err := a.IssueJWT(sid)
			if err != nil {
				logger.Error("issue session token", zap.Error(err))
				http.Error(w, "issue token", http.StatusInternalServerError)
				return
			}
			http.SetCookie(w, &http.Cookie{
				Name:     CookieName,
				Value:    tok,
				Path:     "/",
				HttpOnly: true,
				Secure:   secure,
				SameSite: http.SameSiteLaxMode,
				Expires:  a.now().Add(a.ttl),
			})
			next.ServeHTTP(w, r.WithContext(WithSessionID(r.Context(), sid)))
		})
	}
}
