package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sjperalta/arrendando-api/internal/models"
	"github.com/sjperalta/arrendando-api/internal/repository"
	"github.com/sjperalta/arrendando-api/internal/services"
	"github.com/sjperalta/arrendando-api/pkg/finance"
)

type PaymentHandler struct {
	paymentService *services.PaymentService
}

func NewPaymentHandler(paymentService *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// paymentFilter reads the estado, contratoId, fechaDesde and fechaHasta query parameters
func paymentFilter(c *gin.Context) (repository.PaymentFilter, error) {
	filter := repository.PaymentFilter{
		Estado: strings.ToUpper(strings.TrimSpace(c.Query("estado"))),
	}
	if raw := strings.TrimSpace(c.Query("contratoId")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return filter, fmt.Errorf("contratoId inválido")
		}
		filter.ContratoID = &id
	}
	for param, dst := range map[string]**finance.Date{
		"fechaDesde": &filter.FechaDesde,
		"fechaHasta": &filter.FechaHasta,
	} {
		raw := strings.TrimSpace(c.Query(param))
		if raw == "" {
			continue
		}
		d, err := finance.ParseDate(raw)
		if err != nil {
			return filter, fmt.Errorf("%s: %w", param, err)
		}
		*dst = &d
	}
	return filter, nil
}

func toResponses(payments []models.Payment) []models.PaymentResponse {
	out := make([]models.PaymentResponse, len(payments))
	for i := range payments {
		out[i] = payments[i].ToResponse()
	}
	return out
}

// @Summary List Payments
// @Description Payments matching the filters, as a plain array
// @Tags Payments
// @Produce json
// @Param estado query string false "PENDIENTE, PARCIAL, PAGADO or VENCIDO"
// @Param contratoId query string false "Contract ID"
// @Param fechaDesde query string false "Due on or after (YYYY-MM-DD)"
// @Param fechaHasta query string false "Due on or before (YYYY-MM-DD)"
// @Success 200 {array} models.PaymentResponse
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /pagos [get]
func (h *PaymentHandler) Index(c *gin.Context) {
	filter, err := paymentFilter(c)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	payments, err := h.paymentService.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponses(payments))
}

// @Summary Payment Statistics
// @Description Totals, counts per estado and collected percentage over the filtered payments
// @Tags Payments
// @Produce json
// @Param estado query string false "Estado"
// @Param contratoId query string false "Contract ID"
// @Param fechaDesde query string false "Due on or after (YYYY-MM-DD)"
// @Param fechaHasta query string false "Due on or before (YYYY-MM-DD)"
// @Success 200 {object} finance.Stats
// @Security BearerAuth
// @Router /pagos/estadisticas [get]
func (h *PaymentHandler) Stats(c *gin.Context) {
	filter, err := paymentFilter(c)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	stats, err := h.paymentService.Stats(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// @Summary Payments by Contract
// @Tags Payments
// @Produce json
// @Param contratoId path string true "Contract ID"
// @Success 200 {array} models.PaymentResponse
// @Security BearerAuth
// @Router /pagos/contrato/{contratoId} [get]
func (h *PaymentHandler) ByContract(c *gin.Context) {
	id, ok := pathID(c, "contratoId")
	if !ok {
		return
	}
	payments, err := h.paymentService.FindByContract(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponses(payments))
}

// @Summary Get Payment
// @Tags Payments
// @Produce json
// @Param id path string true "Payment ID"
// @Success 200 {object} models.PaymentResponse
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /pagos/{id} [get]
func (h *PaymentHandler) Show(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	payment, err := h.paymentService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, payment.ToResponse())
}

// @Summary Create Payment
// @Description Record an expected payment; its estado follows from montoAbonado
// @Tags Payments
// @Accept json
// @Produce json
// @Param request body services.CreatePaymentInput true "Payment Data"
// @Success 201 {object} models.PaymentResponse
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /pagos [post]
func (h *PaymentHandler) Create(c *gin.Context) {
	var req services.CreatePaymentInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, bindingMessage(err))
		return
	}
	payment, err := h.paymentService.Create(c.Request.Context(), actor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, payment.ToResponse())
}

// @Summary Update Payment
// @Description Change the due date or total of a payment that is not PAGADO
// @Tags Payments
// @Accept json
// @Produce json
// @Param id path string true "Payment ID"
// @Param request body services.UpdatePaymentInput true "Fields to change"
// @Success 200 {object} models.PaymentResponse
// @Failure 400 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /pagos/{id} [patch]
func (h *PaymentHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req services.UpdatePaymentInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, bindingMessage(err))
		return
	}
	payment, err := h.paymentService.Update(c.Request.Context(), actor(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, payment.ToResponse())
}

// @Summary Register Abono
// @Description Apply a partial or final payment. Reaching montoTotal marks the payment PAGADO.
// @Tags Payments
// @Accept json
// @Produce json
// @Param id path string true "Payment ID"
// @Param request body services.AbonoInput true "Abono"
// @Success 200 {object} models.PaymentResponse
// @Failure 400 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /pagos/{id}/abono [patch]
func (h *PaymentHandler) Abono(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req services.AbonoInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, bindingMessage(err))
		return
	}
	payment, err := h.paymentService.Abonar(c.Request.Context(), actor(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, payment.ToResponse())
}

// @Summary Delete Payment
// @Tags Payments
// @Produce json
// @Param id path string true "Payment ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /pagos/{id} [delete]
func (h *PaymentHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.paymentService.Delete(c.Request.Context(), actor(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Pago eliminado"})
}
