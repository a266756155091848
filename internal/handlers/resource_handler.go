package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sjperalta/arrendando-api/internal/models"
	"github.com/sjperalta/arrendando-api/internal/repository"
	"github.com/sjperalta/arrendando-api/internal/services"
)

// resourceService is the CRUD surface ResourceHandler drives
type resourceService[T any] interface {
	List(ctx context.Context, query *repository.ListQuery) ([]T, int64, error)
	Get(ctx context.Context, id uuid.UUID) (*T, error)
	Create(ctx context.Context, actor services.Actor, entity *T) error
	Update(ctx context.Context, actor services.Actor, entity *T) error
	Delete(ctx context.Context, actor services.Actor, id uuid.UUID) error
}

// activator is implemented by services whose records can be toggled
type activator[T any] interface {
	SetActive(ctx context.Context, actor services.Actor, id uuid.UUID, active bool) (*T, error)
}

// ResourceOptions configures one ResourceHandler
type ResourceOptions[P any] struct {
	// Key is the wrapper accepted around request bodies, e.g. "inquilino"
	Key string
	// Label names the record in messages, e.g. "Inquilino"
	Label string
	// Filters are the query parameters forwarded to the repository
	Filters []string
	// ActiveField is the body field read by Activate ("isActive" or "disponible")
	ActiveField string
	// Prepare runs on the bound record before Create and Update
	Prepare func(entity P)
}

// ResourceHandler serves list, search, show, create, update, delete and
// activate for one entity.
type ResourceHandler[T any, P models.EntityPtr[T]] struct {
	service   resourceService[T]
	activator activator[T]
	opts      ResourceOptions[P]
}

// NewResourceHandler creates a handler over service. Activate is served only
// when service also implements SetActive.
func NewResourceHandler[T any, P models.EntityPtr[T]](service resourceService[T], opts ResourceOptions[P]) *ResourceHandler[T, P] {
	h := &ResourceHandler[T, P]{service: service, opts: opts}
	if a, ok := service.(activator[T]); ok {
		h.activator = a
	}
	return h
}

// List returns one page of records as {data,total,page,limit,totalPages}
func (h *ResourceHandler[T, P]) List(c *gin.Context) {
	query := listQuery(c, h.opts.Filters...)
	items, total, err := h.service.List(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}
	paginated(c, query, items, total)
}

// Search is List under the /search path the console calls with its filters
func (h *ResourceHandler[T, P]) Search(c *gin.Context) {
	h.List(c)
}

func (h *ResourceHandler[T, P]) Show(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	entity, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entity)
}

// Create binds a new record on top of the model defaults. Identity and
// timestamps are always assigned by the server.
func (h *ResourceHandler[T, P]) Create(c *gin.Context) {
	entity := P(new(T))
	if d, ok := any(entity).(models.Defaulter); ok {
		d.ApplyDefaults()
	}
	if err := BindNestedOrFlat(c, h.opts.Key, entity); err != nil {
		badRequest(c, bindingMessage(err))
		return
	}
	*entity.EntityBase() = models.Base{}
	if h.opts.Prepare != nil {
		h.opts.Prepare(entity)
	}

	if err := h.service.Create(c.Request.Context(), actor(c), (*T)(entity)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entity)
}

// Update merges the body onto the stored record
func (h *ResourceHandler[T, P]) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	current, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	entity := P(current)
	base := *entity.EntityBase()
	if err := BindNestedOrFlat(c, h.opts.Key, entity); err != nil {
		badRequest(c, bindingMessage(err))
		return
	}
	*entity.EntityBase() = base
	if h.opts.Prepare != nil {
		h.opts.Prepare(entity)
	}

	if err := h.service.Update(c.Request.Context(), actor(c), current); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, current)
}

func (h *ResourceHandler[T, P]) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), actor(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": h.opts.Label + " eliminado"})
}

// Activate sets the record's active flag from {"<ActiveField>": bool}
func (h *ResourceHandler[T, P]) Activate(c *gin.Context) {
	if h.activator == nil || h.opts.ActiveField == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "operación no disponible"})
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var body map[string]*bool
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, bindingMessage(err))
		return
	}
	active, found := body[h.opts.ActiveField]
	if !found || active == nil {
		badRequest(c, "el campo "+h.opts.ActiveField+" es obligatorio")
		return
	}

	entity, err := h.activator.SetActive(c.Request.Context(), actor(c), id, *active)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entity)
}
