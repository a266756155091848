package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sjperalta/arrendando-api/internal/models"
	"github.com/sjperalta/arrendando-api/internal/services"
)

type TenantHandler struct {
	*ResourceHandler[models.Tenant, *models.Tenant]
	tenantService *services.TenantService
}

func NewTenantHandler(tenantService *services.TenantService) *TenantHandler {
	return &TenantHandler{
		ResourceHandler: NewResourceHandler[models.Tenant, *models.Tenant](tenantService, ResourceOptions[*models.Tenant]{
			Key:         "inquilino",
			Label:       "Inquilino",
			Filters:     []string{"ciudad", "isActive"},
			ActiveField: "isActive",
			Prepare: func(t *models.Tenant) {
				t.Correo = strings.ToLower(strings.TrimSpace(t.Correo))
				t.Cedula = strings.TrimSpace(t.Cedula)
			},
		}),
		tenantService: tenantService,
	}
}

// @Summary Get Tenant by Cedula
// @Description Look up a tenant by national ID
// @Tags Tenants
// @Produce json
// @Param cedula path string true "Cédula"
// @Success 200 {object} models.Tenant
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /tenants/cedula/{cedula} [get]
func (h *TenantHandler) ByCedula(c *gin.Context) {
	tenant, err := h.tenantService.FindByCedula(c.Request.Context(), strings.TrimSpace(c.Param("cedula")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tenant)
}

// @Summary Get Tenant by Email
// @Description Look up a tenant by email, case-insensitively
// @Tags Tenants
// @Produce json
// @Param correo path string true "Correo"
// @Success 200 {object} models.Tenant
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /tenants/email/{correo} [get]
func (h *TenantHandler) ByCorreo(c *gin.Context) {
	tenant, err := h.tenantService.FindByCorreo(c.Request.Context(), strings.TrimSpace(c.Param("correo")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tenant)
}
