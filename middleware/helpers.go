package middleware

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v4"

	"github.com/Dosada05/tournament-client/models"
	"github.com/Dosada05/tournament-client/utils"
)

// Определяем константы для имен JWT claims
const (
	jwtClaimSubject     = "sub" // удаленный сервис кладет сюда email
	jwtClaimEmail       = "email"
	jwtClaimRole        = "role"
	jwtClaimRoles       = "roles"
	jwtClaimIsOrganizer = "isOrganizer"
)

func viewerFromClaims(raw string, claims jwt.MapClaims) (models.Viewer, error) {
	identity := claimString(claims, jwtClaimEmail)
	if !utils.IsValidEmail(identity) {
		identity = claimString(claims, jwtClaimSubject)
	}
	if identity == "" {
		return models.Viewer{}, errors.New("token has no subject")
	}
	return models.Viewer{
		Token:     raw,
		Identity:  identity,
		Organizer: isOrganizerClaim(claims),
	}, nil
}

func claimString(claims jwt.MapClaims, name string) string {
	v, ok := claims[name]
	if !ok || v == nil {
		return ""
	}
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case float64:
		return fmt.Sprintf("%.0f", s)
	}
	return ""
}

// isOrganizerClaim понимает role: "ORGANIZER", roles: ["ORGANIZER", ...] и isOrganizer: true.
func isOrganizerClaim(claims jwt.MapClaims) bool {
	if b, ok := claims[jwtClaimIsOrganizer].(bool); ok && b {
		return true
	}
	if models.NormalizeRole(strings.TrimPrefix(strings.ToUpper(claimString(claims, jwtClaimRole)), "ROLE_")) == models.RoleOrganizer {
		return true
	}
	roles, ok := claims[jwtClaimRoles].([]interface{})
	if !ok {
		return false
	}
	for _, r := range roles {
		s, ok := r.(string)
		if !ok {
			continue
		}
		if models.NormalizeRole(strings.TrimPrefix(strings.ToUpper(s), "ROLE_")) == models.RoleOrganizer {
			return true
		}
	}
	return false
}
