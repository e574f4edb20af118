package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const deviceKey contextKey = "device"

const (
	deviceCookieName = "device_id"
	deviceCookieTTL  = 2 * 365 * 24 * time.Hour
)

// DeviceSession закрепляет за браузером идентификатор устройства, к которому привязана корзина.
// Отсутствующий или повреждённый идентификатор заменяется новым.
func DeviceSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var deviceID string
		if cookie, err := r.Cookie(deviceCookieName); err == nil {
			if id, err := uuid.Parse(cookie.Value); err == nil {
				deviceID = id.String()
			}
		}

		if deviceID == "" {
			deviceID = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     deviceCookieName,
				Value:    deviceID,
				Path:     "/",
				Expires:  time.Now().Add(deviceCookieTTL),
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}

		next.ServeHTTP(w, r.WithContext(WithDeviceID(r.Context(), deviceID)))
	})
}

// DeviceIDFromContext извлекает идентификатор устройства из контекста запроса.
func DeviceIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(deviceKey).(string)
	return id, ok && id != ""
}

// WithDeviceID возвращает контекст с идентификатором устройства.
func WithDeviceID(ctx context.Context, deviceID string) context.Context {
	return context.WithValue(ctx, deviceKey, deviceID)
}
