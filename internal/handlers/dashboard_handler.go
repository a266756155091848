package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sjperalta/arrendando-api/internal/services"
	"github.com/sjperalta/arrendando-api/pkg/logger"
)

type DashboardHandler struct {
	dashboardService *services.DashboardService
}

func NewDashboardHandler(dashboardService *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// @Summary Dashboard Stats
// @Description User, tenant, property and contract counters plus the occupancy rate
// @Tags Dashboard
// @Produce json
// @Success 200 {object} models.DashboardStats
// @Security BearerAuth
// @Router /dashboard/stats [get]
func (h *DashboardHandler) Stats(c *gin.Context) {
	stats, err := h.dashboardService.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

type ContactHandler struct {
	emailService *services.EmailService
}

func NewContactHandler(emailService *services.EmailService) *ContactHandler {
	return &ContactHandler{emailService: emailService}
}

// @Summary Send Contact Email
// @Description Forwards the public contact form to the configured inbox. Delivery failures are reported in the body with status 200.
// @Tags Contact
// @Accept json
// @Produce json
// @Param request body services.ContactInput true "Contact form"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Router /contact/send-email [post]
func (h *ContactHandler) SendEmail(c *gin.Context) {
	var req services.ContactInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, bindingMessage(err))
		return
	}

	if err := h.emailService.SendContact(c.Request.Context(), req); err != nil {
		logger.Error("[Contact] Failed to send email", "from", req.Email, "error", err)
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "Error al enviar el email"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Email enviado exitosamente"})
}
