package handler

import (
	"net/http"

	"timsbridge/internal/middleware"
	"timsbridge/internal/service"
	"timsbridge/pkg/response"

	"github.com/gin-gonic/gin"
)

type DeviceSetupHandler struct {
	setupService service.DeviceSetupService
	secret       []byte
}

func NewDeviceSetupHandler(setupService service.DeviceSetupService, secret []byte) *DeviceSetupHandler {
	return &DeviceSetupHandler{setupService: setupService, secret: secret}
}

func (h *DeviceSetupHandler) RegisterRoutes(router *gin.RouterGroup) {
	setup := router.Group("/api/tims/setup")
	{
		setup.GET("", middleware.RequireRole(h.secret, middleware.RoleAdmin, middleware.RoleAccountant), h.GetSetup)
		setup.PUT("", middleware.RequireRole(h.secret, middleware.RoleAdmin), h.UpdateSetup)
		setup.POST("/test-connection", middleware.RequireRole(h.secret, middleware.RoleAdmin), h.TestConnection)
	}
}

// GetSetup returns the TIMS device setup
// @Summary      Get device setup
// @Tags         tims
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=model.DeviceSetup}
// @Router       /api/tims/setup [get]
func (h *DeviceSetupHandler) GetSetup(c *gin.Context) {
	setup, err := h.setupService.GetSetup(c.Request.Context())
	if err != nil {
		writeError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, setup))
}

// UpdateSetup patches the TIMS device setup
// @Summary      Update device setup
// @Description  Updates the device address, till, serial number and sending flags. Omitted fields are unchanged.
// @Tags         tims
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.UpdateDeviceSetupRequest  true  "Device setup fields"
// @Success      200      {object}  response.Response{data=model.DeviceSetup}
// @Failure      400      {object}  response.Response
// @Router       /api/tims/setup [put]
func (h *DeviceSetupHandler) UpdateSetup(c *gin.Context) {
	var req service.UpdateDeviceSetupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	setup, err := h.setupService.UpdateSetup(c.Request.Context(), req, middleware.Actor(c))
	if err != nil {
		writeError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, setup))
}

// TestConnection checks that the device accepts TCP connections
// @Summary      Test device connection
// @Description  Dials the device and stores Active or Inactive on the setup. An unreachable device is reported in the body with success=false.
// @Tags         tims
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.TestConnectionRequest  true  "Device address"
// @Success      200      {object}  response.Response{data=service.ProbeResult}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/tims/setup/test-connection [post]
func (h *DeviceSetupHandler) TestConnection(c *gin.Context) {
	var req service.TestConnectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	result, err := h.setupService.TestConnection(c.Request.Context(), req, middleware.Actor(c))
	if err != nil {
		writeError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}
