package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/petpal-dev/petpal/middleware"
	"github.com/petpal-dev/petpal/services"
	"github.com/petpal-dev/petpal/utils"
)

func getUserID(ctx *gin.Context) (string, bool) {
	id := middleware.UserID(ctx)
	return id, id != ""
}

// respondServiceError maps service sentinels onto envelope codes. Unknown
// errors become a 500 with a generic message so internals never leak.
func respondServiceError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrUserNotFound):
		utils.Error(ctx, http.StatusNotFound, 40410, "user not found")
	case errors.Is(err, services.ErrUserDisabled):
		utils.Error(ctx, http.StatusForbidden, 40310, "account disabled")
	case errors.Is(err, services.ErrPetNotFound):
		utils.Error(ctx, http.StatusNotFound, 40420, "pet not found")
	case errors.Is(err, services.ErrPetLimitReached):
		utils.Error(ctx, http.StatusBadRequest, 40020, "pet limit reached")
	case errors.Is(err, services.ErrInvalidInteraction):
		utils.Error(ctx, http.StatusBadRequest, 40021, "invalid interaction type")
	case errors.Is(err, services.ErrAlreadyCheckedIn):
		utils.Error(ctx, http.StatusBadRequest, 40030, "already checked in on this date")
	case errors.Is(err, services.ErrDateInFuture):
		utils.Error(ctx, http.StatusBadRequest, 40031, "date must be in the past")
	case errors.Is(err, services.ErrDateTooOld):
		utils.Error(ctx, http.StatusBadRequest, 40032, "date is beyond the make-up window")
	case errors.Is(err, services.ErrInsufficientPoints):
		utils.Error(ctx, http.StatusBadRequest, 40033, "insufficient points")
	case errors.Is(err, services.ErrItemNotFound):
		utils.Error(ctx, http.StatusNotFound, 40440, "shop item not found")
	case errors.Is(err, services.ErrNotPurchasable):
		utils.Error(ctx, http.StatusBadRequest, 40040, "item cannot be purchased")
	case errors.Is(err, services.ErrInsufficientStock):
		utils.Error(ctx, http.StatusBadRequest, 40041, "insufficient stock")
	case errors.Is(err, services.ErrLimitExceeded):
		utils.Error(ctx, http.StatusBadRequest, 40042, "purchase limit exceeded")
	case errors.Is(err, services.ErrPurchaseNotFound):
		utils.Error(ctx, http.StatusNotFound, 40441, "purchase not found")
	case errors.Is(err, services.ErrNotCancellable):
		utils.Error(ctx, http.StatusBadRequest, 40043, "purchase cannot be cancelled")
	case errors.Is(err, services.ErrNotRefundable):
		utils.Error(ctx, http.StatusBadRequest, 40044, "purchase cannot be refunded")
	default:
		if utils.Sugar != nil {
			utils.Sugar.Errorw("unhandled service error", "path", ctx.FullPath(), "err", err)
		}
		utils.Error(ctx, http.StatusInternalServerError, 50000, "internal server error")
	}
}
