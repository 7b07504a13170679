package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/swaggo/swag"

	"github.com/restapp/backend/internal/model"
)

// MetaHandler serves the unauthenticated liveness and API description routes.
type MetaHandler struct {
	spec *swag.Spec
}

func NewMetaHandler(spec *swag.Spec) *MetaHandler {
	return &MetaHandler{spec: spec}
}

func (h *MetaHandler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, model.PingResponse{Message: "pong"})
}

// Root identifies the running service by its OpenAPI title and version.
func (h *MetaHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, model.RootResponse{
		Status:  "ok",
		Message: h.spec.Title + " is running",
		Version: h.spec.Version,
	})
}

func (h *MetaHandler) OpenAPI(c *gin.Context) {
	c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(h.spec.ReadDoc()))
}
