package handler

import (
	"net/http"

	"proptax/internal/middleware"
	"proptax/internal/service"
	"proptax/pkg/response"

	"github.com/gin-gonic/gin"
)

type EvaluationHandler struct {
	evalService service.EvaluationService
}

func NewEvaluationHandler(evalService service.EvaluationService) *EvaluationHandler {
	return &EvaluationHandler{evalService: evalService}
}

func (h *EvaluationHandler) RegisterRoutes(router *gin.RouterGroup) {
	engine := router.Group("/api/tax-engine")
	engine.Use(middleware.RequireRole("admin", "manager", "staff"))
	{
		engine.POST("/evaluate", h.Evaluate)
	}
}

// Evaluate handles POST /api/tax-engine/evaluate
// @Summary      Evaluate tax rules
// @Description  Runs every applicable active tax rule against the supplied context and returns the accumulated results. Individual rule failures are reported in the errors list without aborting the evaluation.
// @Tags         tax-engine
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.EvaluateRequest  true  "Evaluation Context"
// @Success      200      {object}  response.Response{data=engine.Output}
// @Failure      400      {object}  response.Response
// @Failure      500      {object}  response.Response
// @Router       /api/tax-engine/evaluate [post]
func (h *EvaluationHandler) Evaluate(c *gin.Context) {
	var req service.EvaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	out, err := h.evalService.Evaluate(c.Request.Context(), req, currentUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, out))
}
