package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/tutoringco/portal-api/internal/middleware"
	"github.com/tutoringco/portal-api/internal/models"
	"github.com/tutoringco/portal-api/internal/service"
	appErrors "github.com/tutoringco/portal-api/pkg/errors"
	"github.com/tutoringco/portal-api/pkg/response"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// resolveTutorUsername maps the authenticated user to their tutor profile.
// It writes the error response itself when resolution fails.
func resolveTutorUsername(c *gin.Context, tutors *service.TutorService) (string, bool) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return "", false
	}
	profile, err := tutors.ProfileForUser(c.Request.Context(), claims.UserID)
	if err != nil {
		if fromErr := appErrors.FromError(err); fromErr != nil && fromErr.Code == appErrors.ErrNotFound.Code {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "no tutor profile for this account"))
			return "", false
		}
		response.Error(c, err)
		return "", false
	}
	return profile.Username, true
}
