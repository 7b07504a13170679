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

type ContactHandler struct {
	svc *service.ContactService
	log logging.Logger
}

func NewContactHandler(svc *service.ContactService, log logging.Logger) *ContactHandler {
	return &ContactHandler{svc: svc, log: log}
}

// CreateContact godoc
// @Summary Create a contact
// @Tags contacts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.ContactRequest true "Contact"
// @Success 201 {object} model.Contact
// @Failure 400 {object} model.ErrorResponse
// @Failure 409 {object} model.ErrorResponse
// @Router /contacts [post]
func (h *ContactHandler) CreateContact(c *gin.Context) {
	identity := GetIdentity(c)
	var req model.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	contact, err := h.svc.Create(c.Request.Context(), identity.UserID, req)
	if err != nil {
		h.writeContactError(c, err)
		return
	}
	c.JSON(http.StatusCreated, contact)
}

// ListContacts godoc
// @Summary List contacts
// @Tags contacts
// @Produce json
// @Security BearerAuth
// @Param name query string false "First or last name contains"
// @Param email query string false "Email contains"
// @Success 200 {array} model.Contact
// @Router /contacts [get]
func (h *ContactHandler) ListContacts(c *gin.Context) {
	identity := GetIdentity(c)
	var filter model.ContactFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	contacts, err := h.svc.List(c.Request.Context(), identity.UserID, filter)
	if err != nil {
		h.writeContactError(c, err)
		return
	}
	if contacts == nil {
		contacts = []model.Contact{}
	}
	c.JSON(http.StatusOK, contacts)
}

// GetContact godoc
// @Summary Get a contact
// @Tags contacts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Contact ID"
// @Success 200 {object} model.Contact
// @Failure 404 {object} model.ErrorResponse
// @Router /contacts/{id} [get]
func (h *ContactHandler) GetContact(c *gin.Context) {
	identity := GetIdentity(c)
	id, ok := contactID(c)
	if !ok {
		return
	}

	contact, err := h.svc.Get(c.Request.Context(), identity.UserID, id)
	if err != nil {
		h.writeContactError(c, err)
		return
	}
	c.JSON(http.StatusOK, contact)
}

// UpdateContact godoc
// @Summary Update a contact
// @Tags contacts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Contact ID"
// @Param request body model.ContactRequest true "Contact"
// @Success 200 {object} model.Contact
// @Failure 400 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Failure 409 {object} model.ErrorResponse
// @Router /contacts/{id} [put]
func (h *ContactHandler) UpdateContact(c *gin.Context) {
	identity := GetIdentity(c)
	id, ok := contactID(c)
	if !ok {
		return
	}
	var req model.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	contact, err := h.svc.Update(c.Request.Context(), identity.UserID, id, req)
	if err != nil {
		h.writeContactError(c, err)
		return
	}
	c.JSON(http.StatusOK, contact)
}

// DeleteContact godoc
// @Summary Delete a contact
// @Tags contacts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Contact ID"
// @Success 200 {object} model.DeleteResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /contacts/{id} [delete]
func (h *ContactHandler) DeleteContact(c *gin.Context) {
	identity := GetIdentity(c)
	id, ok := contactID(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), identity.UserID, id); err != nil {
		h.writeContactError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.DeleteResponse{Detail: "Contact deleted"})
}

func contactID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contact id"})
		return 0, false
	}
	return id, true
}

func (h *ContactHandler) writeContactError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Contact not found"})
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "Contact with such email already exists."})
	default:
		h.log.Error(c.Request.Context(), "contact request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
	}
}
