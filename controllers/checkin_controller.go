package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/petpal-dev/petpal/services"
	"github.com/petpal-dev/petpal/utils"
)

// CheckInController handles the daily check-in flow.
type CheckInController struct {
	checkins *services.CheckInService
}

// NewCheckInController creates a new controller instance.
func NewCheckInController(checkins *services.CheckInService) *CheckInController {
	return &CheckInController{checkins: checkins}
}

type checkInRequest struct {
	Notes string `json:"notes"`
}

// CheckIn records today's check-in. Checking in twice is not an error; the
// response carries success=false with the existing record.
func (c *CheckInController) CheckIn(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	var req checkInRequest
	_ = ctx.ShouldBindJSON(&req)

	result, err := c.checkins.CheckIn(userID, utils.SanitizeText(req.Notes))
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.Success(ctx, result)
}

// Status reports whether the user checked in today and the current streak.
func (c *CheckInController) Status(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	status, err := c.checkins.Status(userID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.Success(ctx, status)
}

// Calendar returns the checked days of one month.
func (c *CheckInController) Calendar(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	now := time.Now()
	year, _ := strconv.Atoi(ctx.DefaultQuery("year", strconv.Itoa(now.Year())))
	month, _ := strconv.Atoi(ctx.DefaultQuery("month", strconv.Itoa(int(now.Month()))))
	if month < 1 || month > 12 {
		utils.Error(ctx, http.StatusBadRequest, 40034, "invalid month")
		return
	}
	days, err := c.checkins.Calendar(userID, year, time.Month(month))
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{
		"year":  year,
		"month": month,
		"days":  days,
	})
}

type makeupRequest struct {
	Date  string `json:"date" binding:"required"` // YYYY-MM-DD
	Notes string `json:"notes"`
}

// MakeUp fills a missed day within the last week, for a point cost.
func (c *CheckInController) MakeUp(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	var req makeupRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40035, "date is required")
		return
	}
	date, err := time.ParseInLocation("2006-01-02", req.Date, time.Local)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40036, "invalid date format, expected YYYY-MM-DD")
		return
	}
	result, err := c.checkins.MakeUp(userID, date, utils.SanitizeText(req.Notes))
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.Success(ctx, result)
}

// History lists past check-ins, newest first.
func (c *CheckInController) History(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(ctx.DefaultQuery("page_size", "20"))
	records, total, err := c.checkins.History(userID, page, pageSize)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{
		"items": records,
		"total": total,
		"page":  page,
	})
}
