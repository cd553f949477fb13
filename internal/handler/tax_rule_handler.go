package handler

import (
	"net/http"

	"proptax/internal/middleware"
	"proptax/internal/service"
	"proptax/pkg/pagination"
	"proptax/pkg/response"

	"github.com/gin-gonic/gin"
)

type TaxRuleHandler struct {
	ruleService service.TaxRuleService
}

func NewTaxRuleHandler(ruleService service.TaxRuleService) *TaxRuleHandler {
	return &TaxRuleHandler{ruleService: ruleService}
}

func (h *TaxRuleHandler) RegisterRoutes(router *gin.RouterGroup) {
	rules := router.Group("/api/tax-rules")
	rules.Use(middleware.RequireRole("admin", "manager", "staff"))
	{
		rules.GET("", h.ListTaxRules)
		rules.GET("/:id", h.GetTaxRule)
	}

	// Mutations require elevated roles
	ruleAdmin := router.Group("/api/tax-rules")
	ruleAdmin.Use(middleware.RequireRole("admin", "manager"))
	{
		ruleAdmin.POST("", h.CreateTaxRule)
		ruleAdmin.PUT("/:id", h.UpdateTaxRule)
		ruleAdmin.DELETE("/:id", h.DeleteTaxRule)
	}

	categories := router.Group("/api/tax-categories")
	categories.Use(middleware.RequireRole("admin", "manager", "staff"))
	{
		categories.GET("", h.ListCategories)
	}

	categoryAdmin := router.Group("/api/tax-categories")
	categoryAdmin.Use(middleware.RequireRole("admin", "manager"))
	{
		categoryAdmin.POST("", h.CreateCategory)
		categoryAdmin.PUT("/:id", h.UpdateCategory)
		categoryAdmin.DELETE("/:id", h.DeleteCategory)
	}
}

// currentUserID extracts the authenticated user's id set by the auth middleware
func currentUserID(c *gin.Context) string {
	if v, exists := c.Get("userID"); exists {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// ListTaxRules handles GET /api/tax-rules with pagination
// @Summary      List tax rules
// @Description  Retrieves a paginated list of tax rules ordered by priority
// @Tags         tax-rules
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Number of items per page (default 10)"
// @Success      200    {object}  response.Response{data=object}
// @Failure      500    {object}  response.Response
// @Router       /api/tax-rules [get]
func (h *TaxRuleHandler) ListTaxRules(c *gin.Context) {
	params := pagination.Parse(c)

	rules, total, err := h.ruleService.ListTaxRules(c.Request.Context(), params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, "rules", rules, response.ListMeta{
		Total: total,
		Page:  params.Page,
		Limit: params.Limit,
	}))
}

// GetTaxRule handles GET /api/tax-rules/:id
// @Summary      Get tax rule by ID
// @Tags         tax-rules
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Tax Rule ID"
// @Success      200  {object}  response.Response{data=service.TaxRuleResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/tax-rules/{id} [get]
func (h *TaxRuleHandler) GetTaxRule(c *gin.Context) {
	rule, err := h.ruleService.GetTaxRule(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, rule))
}

// CreateTaxRule handles POST /api/tax-rules
// @Summary      Create tax rule
// @Description  Creates a tax rule with its condition and action documents
// @Tags         tax-rules
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.TaxRuleRequest  true  "Tax Rule Payload"
// @Success      201      {object}  response.Response{data=service.TaxRuleResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/tax-rules [post]
func (h *TaxRuleHandler) CreateTaxRule(c *gin.Context) {
	var req service.TaxRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	rule, err := h.ruleService.CreateTaxRule(c.Request.Context(), req, currentUserID(c))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, rule))
}

// UpdateTaxRule handles PUT /api/tax-rules/:id
// @Summary      Update tax rule
// @Tags         tax-rules
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                  true  "Tax Rule ID"
// @Param        payload  body      service.TaxRuleRequest  true  "Tax Rule Payload"
// @Success      200      {object}  response.Response{data=service.TaxRuleResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/tax-rules/{id} [put]
func (h *TaxRuleHandler) UpdateTaxRule(c *gin.Context) {
	var req service.TaxRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	rule, err := h.ruleService.UpdateTaxRule(c.Request.Context(), c.Param("id"), req, currentUserID(c))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, rule))
}

// DeleteTaxRule handles DELETE /api/tax-rules/:id
// @Summary      Delete tax rule
// @Tags         tax-rules
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Tax Rule ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/tax-rules/{id} [delete]
func (h *TaxRuleHandler) DeleteTaxRule(c *gin.Context) {
	if err := h.ruleService.DeleteTaxRule(c.Request.Context(), c.Param("id"), currentUserID(c)); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Tax rule deleted successfully"))
}

// ListCategories handles GET /api/tax-categories
// @Summary      List tax rule categories
// @Tags         tax-categories
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]service.TaxRuleCategoryResponse}
// @Failure      500  {object}  response.Response
// @Router       /api/tax-categories [get]
func (h *TaxRuleHandler) ListCategories(c *gin.Context) {
	categories, err := h.ruleService.ListCategories(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, categories))
}

// CreateCategory handles POST /api/tax-categories
// @Summary      Create tax rule category
// @Tags         tax-categories
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.TaxRuleCategoryRequest  true  "Category Payload"
// @Success      201      {object}  response.Response{data=service.TaxRuleCategoryResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/tax-categories [post]
func (h *TaxRuleHandler) CreateCategory(c *gin.Context) {
	var req service.TaxRuleCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	category, err := h.ruleService.CreateCategory(c.Request.Context(), req, currentUserID(c))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, category))
}

// UpdateCategory handles PUT /api/tax-categories/:id
// @Summary      Update tax rule category
// @Tags         tax-categories
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                          true  "Category ID"
// @Param        payload  body      service.TaxRuleCategoryRequest  true  "Category Payload"
// @Success      200      {object}  response.Response{data=service.TaxRuleCategoryResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/tax-categories/{id} [put]
func (h *TaxRuleHandler) UpdateCategory(c *gin.Context) {
	var req service.TaxRuleCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	category, err := h.ruleService.UpdateCategory(c.Request.Context(), c.Param("id"), req, currentUserID(c))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, category))
}

// DeleteCategory handles DELETE /api/tax-categories/:id
// @Summary      Delete tax rule category
// @Tags         tax-categories
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Category ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/tax-categories/{id} [delete]
func (h *TaxRuleHandler) DeleteCategory(c *gin.Context) {
	if err := h.ruleService.DeleteCategory(c.Request.Context(), c.Param("id"), currentUserID(c)); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Category deleted successfully"))
}
