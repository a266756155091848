package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sjperalta/arrendando-api/internal/models"
	"github.com/sjperalta/arrendando-api/internal/services"
)

type PropertyHandler struct {
	*ResourceHandler[models.Property, *models.Property]
	propertyService *services.PropertyService
}

func NewPropertyHandler(propertyService *services.PropertyService) *PropertyHandler {
	return &PropertyHandler{
		ResourceHandler: NewResourceHandler[models.Property, *models.Property](propertyService, ResourceOptions[*models.Property]{
			Key:         "inmueble",
			Label:       "Inmueble",
			Filters:     []string{"disponible"},
			ActiveField: "disponible",
			Prepare: func(p *models.Property) {
				p.Direccion = strings.TrimSpace(p.Direccion)
			},
		}),
		propertyService: propertyService,
	}
}

// @Summary List Properties by Address
// @Description Paginated properties whose address contains the given text
// @Tags Properties
// @Produce json
// @Param direccion path string true "Dirección (fragmento)"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(10)
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /properties/address/{direccion} [get]
func (h *PropertyHandler) ByAddress(c *gin.Context) {
	query := listQuery(c)
	properties, total, err := h.propertyService.ListByAddress(c.Request.Context(), strings.TrimSpace(c.Param("direccion")), query)
	if err != nil {
		respondError(c, err)
		return
	}
	paginated(c, query, properties, total)
}
