package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/petpal-dev/petpal/config"
	"github.com/petpal-dev/petpal/middleware"
	"github.com/petpal-dev/petpal/services"
	"github.com/petpal-dev/petpal/utils"
)

// AuthController handles WeChat mini-program login and session endpoints.
type AuthController struct {
	users *services.UserService
}

// NewAuthController creates a new controller instance.
func NewAuthController(users *services.UserService) *AuthController {
	return &AuthController{users: users}
}

type loginRequest struct {
	Code string `json:"code" binding:"required"`
}

// Login exchanges a wx.login code for a session token, creating the account
// on first login.
func (a *AuthController) Login(ctx *gin.Context) {
	var req loginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "code is required")
		return
	}

	session, err := utils.WechatCode2Session(ctx.Request.Context(), req.Code)
	if err != nil {
		utils.Sugar.Warnw("wechat login failed", "err", err)
		utils.Error(ctx, http.StatusUnauthorized, 40106, "wechat login failed")
		return
	}

	user, created, err := a.users.FindOrCreateByOpenID(session.OpenID, session.UnionID, ctx.ClientIP())
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	ttl := time.Duration(config.Get().TokenTTLHours) * time.Hour
	token, err := utils.GenerateToken(user.ID, user.OpenID, ttl)
	if err != nil {
		utils.Sugar.Errorw("token generation failed", "err", err)
		utils.Error(ctx, http.StatusInternalServerError, 50010, "failed to issue token")
		return
	}

	utils.Success(ctx, gin.H{
		"token":      token,
		"expires_in": int(ttl.Seconds()),
		"is_new":     created,
		"user":       user,
	})
}

// Logout revokes the current token until its natural expiration.
func (a *AuthController) Logout(ctx *gin.Context) {
	token := ctx.GetString(middleware.ContextTokenKey)
	if token != "" {
		if claims, err := utils.ParseToken(token); err == nil && claims.ExpiresAt != nil {
			utils.BlacklistToken(token, claims.ExpiresAt.Time)
		}
	}
	utils.Success(ctx, gin.H{"message": "logged out"})
}

// Me returns the authenticated user's profile.
func (a *AuthController) Me(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	user, err := a.users.GetByID(userID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.Success(ctx, user)
}

type profileRequest struct {
	Nickname *string    `json:"nickname"`
	Avatar   *string    `json:"avatar"`
	Gender   *string    `json:"gender"`
	Birthday *time.Time `json:"birthday"`
}

// UpdateProfile edits the authenticated user's profile fields.
func (a *AuthController) UpdateProfile(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	var req profileRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40002, "invalid request body")
		return
	}
	if req.Nickname != nil {
		clean := utils.SanitizeText(*req.Nickname)
		req.Nickname = &clean
	}
	user, err := a.users.UpdateProfile(userID, services.ProfileUpdate{
		Nickname: req.Nickname,
		Avatar:   req.Avatar,
		Gender:   req.Gender,
		Birthday: req.Birthday,
	})
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.Success(ctx, user)
}

// UserController exposes aggregate user statistics.
type UserController struct {
	users *services.UserService
}

// NewUserController creates a new controller instance.
func NewUserController(users *services.UserService) *UserController {
	return &UserController{users: users}
}

// Stats returns the dashboard counters for the authenticated user.
func (u *UserController) Stats(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	stats, err := u.users.Stats(userID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.Success(ctx, stats)
}
