package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/eventstock/eventstock/internal/api/middleware"
	"github.com/eventstock/eventstock/internal/core/collection"
	"github.com/eventstock/eventstock/internal/core/pricing"
	"github.com/eventstock/eventstock/internal/core/project"
	"github.com/eventstock/eventstock/internal/core/validation"
	"github.com/eventstock/eventstock/internal/core/view"
)

var (
	notFoundErrors = []error{
		view.ErrUnknownCollection,
		collection.ErrNotFound,
		project.ErrProductNotAssigned,
	}
	conflictErrors = []error{
		collection.ErrAlreadyExists,
		pricing.ErrDuplicateLineItem,
		project.ErrProductAlreadyAdded,
	}
	badRequestErrors = []error{
		collection.ErrDuplicateID,
		collection.ErrImmutableID,
		view.ErrInvalidFilter,
		pricing.ErrUnknownStatus,
		pricing.ErrInvalidTier,
		pricing.ErrIndexOutOfRange,
		pricing.ErrEmptyProductRef,
		pricing.ErrMalformedOrder,
		project.ErrUnknownProduct,
		project.ErrInvalidQuantity,
	}
)

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// respondError maps service errors to HTTP answers.
func respondError(c *gin.Context, err error) {
	switch {
	case validation.IsValidationError(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "details": validation.GetValidationErrors(err)})
	case isAny(err, notFoundErrors):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case isAny(err, conflictErrors):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case isAny(err, badRequestErrors):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		zap.L().Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// setPersisted reports whether the mutation reached the store. The change is
// applied either way.
func setPersisted(c *gin.Context, persisted bool) {
	c.Header(middleware.HeaderPersisted, strconv.FormatBool(persisted))
}

// intParam reads a non-negative integer path parameter.
func intParam(c *gin.Context, name string) (int, bool) {
	n, err := strconv.Atoi(c.Param(name))
	if err != nil || n < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return n, true
}
