package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sjperalta/arrendando-api/internal/middleware"
	"github.com/sjperalta/arrendando-api/internal/repository"
	"github.com/sjperalta/arrendando-api/internal/services"
	"github.com/sjperalta/arrendando-api/pkg/logger"
)

// maxPerPage caps the limit query parameter
const maxPerPage = 100

// statusFor maps a service error onto its HTTP status
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrDuplicate),
		errors.Is(err, services.ErrInUse),
		errors.Is(err, services.ErrContractLocked):
		return http.StatusConflict
	case errors.Is(err, services.ErrInvalidState):
		return http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrValidation),
		errors.Is(err, services.ErrInvalidDateRange),
		errors.Is(err, services.ErrInvalidRecoveryCode),
		errors.Is(err, services.ErrInvalidPassword):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrInactiveAccount),
		errors.Is(err, services.ErrInvalidToken),
		errors.Is(err, services.ErrExpiredToken),
		errors.Is(err, services.ErrUnauthorized):
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

// respondError writes {"error": msg} with the status matching err.
// Internal errors are logged and hidden behind a generic message.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		logger.Error("[HTTP] Request failed", "path", c.FullPath(), "error", err)
		c.JSON(status, gin.H{"error": "Error interno del servidor"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

// actor identifies the authenticated caller for auditing
func actor(c *gin.Context) services.Actor {
	a := services.Actor{IP: c.ClientIP(), UserAgent: c.Request.UserAgent()}
	if id, ok := middleware.GetUserID(c); ok {
		a.UserID = &id
	}
	return a
}

// pathID parses a UUID path parameter, answering 400 when malformed
func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		badRequest(c, "identificador inválido")
		return uuid.Nil, false
	}
	return id, true
}

// listQuery reads page, limit, search and sorting plus the given filter keys
func listQuery(c *gin.Context, filters ...string) *repository.ListQuery {
	query := repository.NewListQuery()
	if page, err := strconv.Atoi(c.Query("page")); err == nil && page > 0 {
		query.Page = page
	}
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil && limit > 0 {
		query.PerPage = min(limit, maxPerPage)
	}
	query.Search = strings.TrimSpace(c.Query("search"))
	query.SortBy = c.Query("sortBy")
	query.SortDir = c.Query("sortDir")
	for _, key := range filters {
		if v := strings.TrimSpace(c.Query(key)); v != "" {
			query.Filters[key] = v
		}
	}
	return query
}

// Page is the envelope of every paginated listing
type Page[T any] struct {
	Data       []T   `json:"data"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
}

func paginated[T any](c *gin.Context, query *repository.ListQuery, items []T, total int64) {
	if items == nil {
		items = []T{}
	}
	c.JSON(http.StatusOK, Page[T]{
		Data:       items,
		Total:      total,
		Page:       query.Page,
		Limit:      query.PerPage,
		TotalPages: query.TotalPages(total),
	})
}
