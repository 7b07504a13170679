package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/restapp/backend/internal/logging"
	"github.com/restapp/backend/internal/model"
	"github.com/restapp/backend/internal/service"
)

type UserHandler struct {
	avatars *service.AvatarService
	log     logging.Logger
}

func NewUserHandler(avatars *service.AvatarService, log logging.Logger) *UserHandler {
	return &UserHandler{avatars: avatars, log: log}
}

// UpdateAvatar godoc
// @Summary Upload a new avatar
// @Tags users
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Image"
// @Param width query int false "Width (100-1000)" default(250)
// @Param height query int false "Height (100-1000)" default(250)
// @Success 200 {object} model.AvatarResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Failure 502 {object} model.ErrorResponse
// @Router /users/avatar [patch]
func (h *UserHandler) UpdateAvatar(c *gin.Context) {
	identity := GetIdentity(c)
	if identity == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	width, ok := avatarDimension(c, "width")
	if !ok {
		return
	}
	height, ok := avatarDimension(c, "height")
	if !ok {
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid file"})
		return
	}
	defer file.Close()

	avatarURL, err := h.avatars.UpdateAvatar(c.Request.Context(), identity.UserID, file, width, height)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		case errors.Is(err, service.ErrUploadFailed):
			h.log.Error(c.Request.Context(), "avatar upload failed", "user_id", identity.UserID, "error", err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "upload failed"})
		default:
			h.log.Error(c.Request.Context(), "avatar update failed", "user_id", identity.UserID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		}
		return
	}

	c.JSON(http.StatusOK, model.AvatarResponse{AvatarURL: avatarURL})
}

func avatarDimension(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return service.DefaultAvatarSize, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < service.MinAvatarSize || v > service.MaxAvatarSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": name + " must be between 100 and 1000"})
		return 0, false
	}
	return v, true
}
