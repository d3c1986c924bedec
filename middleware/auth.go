package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"

	"github.com/Dosada05/tournament-client/models"
)

type contextKey string

const viewerContextKey contextKey = "viewer"

var errMissingToken = errors.New("missing bearer token")

// Authenticate извлекает токен из заголовка Authorization и кладет Viewer в
// контекст. Если secret пустой, подпись не проверяется: токен все равно
// проверит удаленный сервис при первом же запросе.
func Authenticate(secret string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, err := bearerToken(r)
			if err != nil {
				writeUnauthorized(w, err.Error())
				return
			}

			claims, err := parseClaims(raw, secret)
			if err != nil {
				logger.Debug("token rejected", slog.Any("error", err))
				writeUnauthorized(w, "invalid or expired token")
				return
			}

			viewer, err := viewerFromClaims(raw, claims)
			if err != nil {
				writeUnauthorized(w, err.Error())
				return
			}

			ctx := WithViewer(r.Context(), viewer)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, error) {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if h == "" {
		// браузерный WebSocket не умеет слать заголовки
		if q := strings.TrimSpace(r.URL.Query().Get("token")); q != "" {
			return q, nil
		}
		return "", errMissingToken
	}
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", errMissingToken
	}
	return strings.TrimSpace(token), nil
}

func parseClaims(raw, secret string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	if secret == "" {
		if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
			return nil, err
		}
		// срок действия проверяем и без подписи
		if err := claims.Valid(); err != nil {
			return nil, err
		}
		return claims, nil
	}

	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// WithViewer returns ctx carrying v.
func WithViewer(ctx context.Context, v models.Viewer) context.Context {
	return context.WithValue(ctx, viewerContextKey, v)
}

func ViewerFromContext(ctx context.Context) (models.Viewer, bool) {
	v, ok := ctx.Value(viewerContextKey).(models.Viewer)
	return v, ok
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="tournament-client"`)
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
