package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"robolab-portal/pkg/database"
	pkgerrors "robolab-portal/pkg/errors"
	"robolab-portal/pkg/jwt"
	"robolab-portal/pkg/response"
	"robolab-portal/pkg/validate"
)

// MustGetUserID reads the user_id set by the JWT middleware. When it is
// missing a 401 is written and ok is false; the caller should return.
func MustGetUserID(c *gin.Context) (string, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		response.Unauthorized(c, response.CodeUnauthorized, "not authenticated")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, response.CodeUnauthorized, "not authenticated")
		return "", false
	}
	return s, true
}

// tokenInfo returns the JTI and remaining lifetime of the session token.
func tokenInfo(c *gin.Context) (string, time.Duration) {
	v, ok := c.Get("claims")
	if !ok {
		return "", 0
	}
	claims, ok := v.(*jwt.Claims)
	if !ok {
		return "", 0
	}
	return claims.ID, claims.RemainingTTL()
}

// bindError writes a 400 for a binding failure, listing offending fields
// when the error came from the validator.
func bindError(c *gin.Context, err error) {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		response.Error(c, http.StatusRequestEntityTooLarge, response.CodeBodyTooLarge, "request body too large")
		return
	}
	if fields, ok := validate.Fields(err); ok {
		response.FieldErrors(c, fields)
		return
	}
	response.BadRequest(c, response.CodeValidation, "invalid request body")
}

// storeError translates a storage failure into its response. It reports
// false when err is not a recognized storage failure.
func storeError(c *gin.Context, err error) bool {
	if errors.Is(err, database.ErrSchemaMismatch) {
		response.ErrorWithDetails(c, http.StatusInternalServerError, response.CodeSchemaMismatch,
			"database schema is out of date", database.Remediation)
		return true
	}

	var se *pkgerrors.StoreError
	if !errors.As(pkgerrors.Classify(err), &se) {
		return false
	}
	switch se.Kind {
	case pkgerrors.KindConnectivity:
		response.ServiceUnavailable(c, se.Message)
	case pkgerrors.KindPermission:
		response.ErrorWithDetails(c, http.StatusForbidden, response.CodeForbidden,
			"the database refused the operation", se.Message)
	case pkgerrors.KindMissingTable, pkgerrors.KindMissingColumn:
		response.ErrorWithDetails(c, http.StatusInternalServerError, response.CodeSchemaMismatch,
			"database schema is out of date", se.Message)
	case pkgerrors.KindDuplicate:
		response.Conflict(c, response.CodeConflict, se.Message)
	case pkgerrors.KindNotFound:
		response.NotFound(c, response.CodeNotFound, se.Message)
	default:
		return false
	}
	return true
}
