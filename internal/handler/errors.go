package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gbif/occurrence-annotation/dao/store"
	"github.com/gbif/occurrence-annotation/internal/resputil"
	"github.com/gbif/occurrence-annotation/pkg/rulefilter"
)

// handleStoreError translates store and filter errors to HTTP responses:
// validation 400, forbidden 403, not-found 404, invalid lifecycle state
// 409, anything else 500.
func handleStoreError(c *gin.Context, err error) {
	var verr *rulefilter.ValidationError
	switch {
	case errors.As(err, &verr):
		resputil.HTTPError(c, http.StatusBadRequest, verr.Error(), resputil.InvalidRequest)
	case errors.Is(err, store.ErrNotFound):
		resputil.HTTPError(c, http.StatusNotFound, err.Error(), resputil.ResourceNotFound)
	case errors.Is(err, store.ErrForbidden):
		resputil.HTTPError(c, http.StatusForbidden, err.Error(), resputil.UserNotAllowed)
	case errors.Is(err, store.ErrInvalidState):
		resputil.HTTPError(c, http.StatusConflict, err.Error(), resputil.InvalidResourceState)
	default:
		resputil.Error(c, err.Error(), resputil.NotSpecified)
	}
}
