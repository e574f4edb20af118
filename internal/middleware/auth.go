// Package middleware содержит HTTP middleware магазина.
package middleware

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mmeshcher/vinayak-store/internal/model"
)

type contextKey string

const identityKey contextKey = "identity"

const (
	authCookieName = "auth_token"
	authCookieTTL  = 365 * 24 * time.Hour
)

// AuthMiddleware определяет пользователя по подписанному cookie.
type AuthMiddleware struct {
	secretKey []byte
}

// NewAuthMiddleware создаёт новый экземпляр AuthMiddleware с указанным секретным ключом.
// При пустом ключе генерируется случайный, и cookie теряют силу после перезапуска.
func NewAuthMiddleware(secret string) *AuthMiddleware {
	key := []byte(secret)
	if len(key) == 0 {
		randomKey := make([]byte, 32)
		if _, err := rand.Read(randomKey); err == nil {
			key = randomKey
		} else {
			key = []byte("default-secret-key")
		}
	}

	return &AuthMiddleware{
		secretKey: key,
	}
}

// Identify кладёт в контекст идентичность из cookie. Без корректного cookie покупатель считается гостем.
func (a *AuthMiddleware) Identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		who := model.Guest()
		if cookie, err := r.Cookie(authCookieName); err == nil {
			if parsed, ok := a.parseCookie(cookie.Value); ok {
				who = parsed
			}
		}

		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), who)))
	})
}

// RequireUser пропускает только вошедших пользователей.
func (a *AuthMiddleware) RequireUser(next http.Handler) http.Handler {
	return a.Identify(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if IdentityFromContext(r.Context()).IsGuest() {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	}))
}

// RequireAdmin пропускает только администраторов.
func (a *AuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return a.RequireUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !IdentityFromContext(r.Context()).IsAdmin() {
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	}))
}

// SetAuthCookie устанавливает cookie авторизации для пользователя.
func (a *AuthMiddleware) SetAuthCookie(w http.ResponseWriter, who model.Identity) {
	cookie := &http.Cookie{
		Name:     authCookieName,
		Value:    a.sign(who.UserID + ":" + string(who.Role) + ":" + base64.RawURLEncoding.EncodeToString([]byte(who.Login))),
		Path:     "/",
		Expires:  time.Now().Add(authCookieTTL),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	http.SetCookie(w, cookie)
}

func (a *AuthMiddleware) sign(payload string) string {
	mac := hmac.New(sha256.New, a.secretKey)
	mac.Write([]byte(payload))
	return payload + "." + hex.EncodeToString(mac.Sum(nil))
}

func (a *AuthMiddleware) parseCookie(cookieValue string) (model.Identity, bool) {
	parts := strings.Split(cookieValue, ".")
	if len(parts) != 2 {
		return model.Identity{}, false
	}

	expected := a.sign(parts[0])
	if !hmac.Equal([]byte(cookieValue), []byte(expected)) {
		return model.Identity{}, false
	}

	fields := strings.Split(parts[0], ":")
	if len(fields) != 3 {
		return model.Identity{}, false
	}
	idStr, role := fields[0], fields[1]
	login, err := base64.RawURLEncoding.DecodeString(fields[2])
	if err != nil {
		return model.Identity{}, false
	}
	if _, err := strconv.ParseInt(idStr, 10, 64); err != nil {
		return model.Identity{}, false
	}

	switch model.Role(role) {
	case model.RoleUser, model.RoleAdmin:
	default:
		return model.Identity{}, false
	}

	return model.Identity{UserID: idStr, Login: string(login), Role: model.Role(role)}, true
}

// WithIdentity возвращает контекст с идентичностью покупателя.
func WithIdentity(ctx context.Context, who model.Identity) context.Context {
	return context.WithValue(ctx, identityKey, who)
}

// IdentityFromContext извлекает идентичность покупателя. Без неё покупатель считается гостем.
func IdentityFromContext(ctx context.Context) model.Identity {
	if who, ok := ctx.Value(identityKey).(model.Identity); ok {
		return who
	}
	return model.Guest()
}
