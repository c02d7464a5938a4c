package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type contextKey string

const (
	ProfileIDKey contextKey = "profileID"

	ProfileHeader = "X-Profile-ID"
	ProfileCookie = "atelier_profile"
	// ProfileQuery identifies the profile on websocket upgrades, where browsers cannot set headers.
	ProfileQuery = "profile"

	profileCookieMaxAge = 365 * 24 * time.Hour
)

// Profile resolves the browser profile a request acts for. The id is read from the
// X-Profile-ID header, the profile query parameter or the atelier_profile cookie, in
// that order. A request without one gets a fresh id, returned as a cookie and header.
func Profile(logger *zap.Logger, secureCookie bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get(ProfileHeader)
			if raw == "" {
				raw = r.URL.Query().Get(ProfileQuery)
			}
			if raw == "" {
				if cookie, err := r.Cookie(ProfileCookie); err == nil {
					raw = cookie.Value
				}
			}

			var profileID uuid.UUID
			if raw == "" {
				profileID = uuid.New()
				http.SetCookie(w, &http.Cookie{
					Name:     ProfileCookie,
					Value:    profileID.String(),
					Path:     "/",
					MaxAge:   int(profileCookieMaxAge.Seconds()),
					HttpOnly: true,
					Secure:   secureCookie,
					SameSite: http.SameSiteLaxMode,
				})
			} else {
				parsed, err := uuid.Parse(raw)
				if err != nil {
					logger.Warn("invalid profile id", zap.String("profileID", raw), zap.Error(err))
					http.Error(w, "Invalid profile ID", http.StatusBadRequest)
					return
				}
				profileID = parsed
			}

			w.Header().Set(ProfileHeader, profileID.String())
			ctx := context.WithValue(r.Context(), ProfileIDKey, profileID.String())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetProfileID(ctx context.Context) (string, bool) {
	profileID, ok := ctx.Value(ProfileIDKey).(string)
	return profileID, ok
}
