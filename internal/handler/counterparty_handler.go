package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"supercrm/internal/domain"
	"supercrm/internal/service"
)

// CounterpartyHandler handles counterparty endpoints.
type CounterpartyHandler struct {
	counterpartyService service.CounterpartyService
}

// NewCounterpartyHandler creates a new CounterpartyHandler.
func NewCounterpartyHandler(counterpartyService service.CounterpartyService) *CounterpartyHandler {
	return &CounterpartyHandler{counterpartyService: counterpartyService}
}

// Create handles POST /api/v1/counterparties
// @Summary Create a counterparty
// @Description State code and PAN are derived from the GSTIN when one is given
// @Tags counterparties
// @Accept json
// @Produce json
// @Param request body service.CreateCounterpartyInput true "Counterparty details"
// @Success 201 {object} APIResponse{data=domain.Counterparty} "Counterparty created"
// @Failure 400 {object} APIResponse "Invalid request"
// @Failure 401 {object} APIResponse "Unauthorized"
// @Failure 403 {object} APIResponse "Insufficient role"
// @Security BearerAuth
// @Router /counterparties [post]
func (h *CounterpartyHandler) Create(c *gin.Context) {
	var input service.CreateCounterpartyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	cp, err := h.counterpartyService.Create(c.Request.Context(), input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, cp)
}

// List handles GET /api/v1/counterparties?kind=vendor
// @Summary List counterparties
// @Tags counterparties
// @Produce json
// @Param kind query string false "contact, freelancer, contractor or vendor"
// @Param offset query int false "Offset for pagination" default(0)
// @Param limit query int false "Limit for pagination (max 100)" default(20)
// @Success 200 {object} APIResponse{data=[]domain.Counterparty,meta=PagMeta} "List of counterparties"
// @Failure 401 {object} APIResponse "Unauthorized"
// @Security BearerAuth
// @Router /counterparties [get]
func (h *CounterpartyHandler) List(c *gin.Context) {
	offset, limit := parsePagination(c)
	kind := domain.CounterpartyKind(c.Query("kind"))

	cps, total, err := h.counterpartyService.List(c.Request.Context(), kind, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, cps, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/counterparties/:id
// @Summary Get counterparty by ID
// @Tags counterparties
// @Produce json
// @Param id path string true "Counterparty ID (UUID)"
// @Success 200 {object} APIResponse{data=domain.Counterparty} "Counterparty details"
// @Failure 400 {object} APIResponse "Invalid ID"
// @Failure 401 {object} APIResponse "Unauthorized"
// @Failure 404 {object} APIResponse "Counterparty not found"
// @Security BearerAuth
// @Router /counterparties/{id} [get]
func (h *CounterpartyHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid counterparty ID")
		return
	}

	cp, err := h.counterpartyService.GetByID(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, cp)
}
