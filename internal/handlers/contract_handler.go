package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sjperalta/arrendando-api/internal/models"
	"github.com/sjperalta/arrendando-api/internal/services"
)

type ContractHandler struct {
	*ResourceHandler[models.Contract, *models.Contract]
	contractService *services.ContractService
}

func NewContractHandler(contractService *services.ContractService) *ContractHandler {
	return &ContractHandler{
		ResourceHandler: NewResourceHandler[models.Contract, *models.Contract](contractService, ResourceOptions[*models.Contract]{
			Key:     "contrato",
			Label:   "Contrato",
			Filters: []string{"estado", "inquilinoId", "inmuebleId", "inquilinoNombre"},
			Prepare: func(ct *models.Contract) {
				// Associations are read-only; only the ids are written
				ct.Inquilino = nil
				ct.Inmueble = nil
				ct.Estado = strings.ToUpper(strings.TrimSpace(ct.Estado))
			},
		}),
		contractService: contractService,
	}
}

// @Summary List Active Contracts
// @Description ACTIVO contracts ordered by nearest end date
// @Tags Contracts
// @Produce json
// @Success 200 {array} models.Contract
// @Security BearerAuth
// @Router /contratos/activos [get]
func (h *ContractHandler) Active(c *gin.Context) {
	contracts, err := h.contractService.FindActive(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if contracts == nil {
		contracts = []models.Contract{}
	}
	c.JSON(http.StatusOK, contracts)
}

// @Summary List Expiring Contracts
// @Description Running contracts whose fechaFin falls within the next days
// @Tags Contracts
// @Produce json
// @Param days path int true "Days ahead"
// @Success 200 {array} models.Contract
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /contratos/proximos-vencer/{days} [get]
func (h *ContractHandler) Expiring(c *gin.Context) {
	days, err := strconv.Atoi(c.Param("days"))
	if err != nil {
		badRequest(c, "el número de días debe ser un entero")
		return
	}
	contracts, err := h.contractService.FindExpiring(c.Request.Context(), days)
	if err != nil {
		respondError(c, err)
		return
	}
	if contracts == nil {
		contracts = []models.Contract{}
	}
	c.JSON(http.StatusOK, contracts)
}

// @Summary Generate Payment Schedule
// @Description Create one PENDIENTE payment per month of the contract, skipping months already covered
// @Tags Contracts
// @Produce json
// @Param id path string true "Contract ID"
// @Success 201 {array} models.Payment
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /contratos/{id}/pagos/generar [post]
func (h *ContractHandler) GeneratePayments(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	payments, err := h.contractService.GeneratePayments(c.Request.Context(), actor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, payments)
}
