package handler

import (
	"net/http"

	"proptax/internal/middleware"
	"proptax/internal/service"
	"proptax/pkg/pagination"
	"proptax/pkg/response"

	"github.com/gin-gonic/gin"
)

type TaxConfigHandler struct {
	configService service.TaxConfigService
}

func NewTaxConfigHandler(configService service.TaxConfigService) *TaxConfigHandler {
	return &TaxConfigHandler{configService: configService}
}

func (h *TaxConfigHandler) RegisterRoutes(router *gin.RouterGroup) {
	configs := router.Group("/api/tax-configs")
	configs.Use(middleware.RequireRole("admin", "manager", "staff"))
	{
		configs.GET("", h.ListTaxConfigs)
		configs.GET("/:id", h.GetTaxConfig)
	}

	configAdmin := router.Group("/api/tax-configs")
	configAdmin.Use(middleware.RequireRole("admin", "manager"))
	{
		configAdmin.POST("", h.CreateTaxConfig)
		configAdmin.PUT("/:id", h.UpdateTaxConfig)
		configAdmin.DELETE("/:id", h.DeleteTaxConfig)
	}
}

// ListTaxConfigs handles GET /api/tax-configs with pagination
// @Summary      List tax configs
// @Description  Retrieves a paginated list of versioned tax configuration values
// @Tags         tax-configs
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Number of items per page (default 10)"
// @Success      200    {object}  response.Response{data=object}
// @Failure      500    {object}  response.Response
// @Router       /api/tax-configs [get]
func (h *TaxConfigHandler) ListTaxConfigs(c *gin.Context) {
	params := pagination.Parse(c)

	configs, total, err := h.configService.ListTaxConfigs(c.Request.Context(), params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, "configs", configs, response.ListMeta{
		Total: total,
		Page:  params.Page,
		Limit: params.Limit,
	}))
}

// GetTaxConfig handles GET /api/tax-configs/:id
// @Summary      Get tax config by ID
// @Tags         tax-configs
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Tax Config ID"
// @Success      200  {object}  response.Response{data=service.TaxConfigResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/tax-configs/{id} [get]
func (h *TaxConfigHandler) GetTaxConfig(c *gin.Context) {
	config, err := h.configService.GetTaxConfig(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, config))
}

// CreateTaxConfig handles POST /api/tax-configs
// @Summary      Create tax config
// @Description  Creates a versioned configuration value after validating it against its declared type
// @Tags         tax-configs
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.TaxConfigRequest  true  "Tax Config Payload"
// @Success      201      {object}  response.Response{data=service.TaxConfigResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/tax-configs [post]
func (h *TaxConfigHandler) CreateTaxConfig(c *gin.Context) {
	var req service.TaxConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	config, err := h.configService.CreateTaxConfig(c.Request.Context(), req, currentUserID(c))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, config))
}

// UpdateTaxConfig handles PUT /api/tax-configs/:id
// @Summary      Update tax config
// @Tags         tax-configs
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                    true  "Tax Config ID"
// @Param        payload  body      service.TaxConfigRequest  true  "Tax Config Payload"
// @Success      200      {object}  response.Response{data=service.TaxConfigResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/tax-configs/{id} [put]
func (h *TaxConfigHandler) UpdateTaxConfig(c *gin.Context) {
	var req service.TaxConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	config, err := h.configService.UpdateTaxConfig(c.Request.Context(), c.Param("id"), req, currentUserID(c))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, config))
}

// DeleteTaxConfig handles DELETE /api/tax-configs/:id
// @Summary      Delete tax config
// @Tags         tax-configs
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Tax Config ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/tax-configs/{id} [delete]
func (h *TaxConfigHandler) DeleteTaxConfig(c *gin.Context) {
	if err := h.configService.DeleteTaxConfig(c.Request.Context(), c.Param("id"), currentUserID(c)); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Tax config deleted successfully"))
}
