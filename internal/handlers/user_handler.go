package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sjperalta/arrendando-api/internal/models"
	"github.com/sjperalta/arrendando-api/internal/services"
)

// UserHandler serves /auth/users. Accounts are created with a password, so
// Create goes through UserService.CreateUser instead of the generic flow.
type UserHandler struct {
	*ResourceHandler[models.User, *models.User]
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		ResourceHandler: NewResourceHandler[models.User, *models.User](userService, ResourceOptions[*models.User]{
			Key:         "user",
			Label:       "Usuario",
			Filters:     []string{"role", "isActive"},
			ActiveField: "isActive",
			Prepare: func(u *models.User) {
				u.Email = strings.ToLower(strings.TrimSpace(u.Email))
			},
		}),
		userService: userService,
	}
}

// @Summary Create User
// @Description Create a console account (Admin)
// @Tags Users
// @Accept json
// @Produce json
// @Param request body services.CreateUserInput true "User Data"
// @Success 201 {object} models.User
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Security BearerAuth
// @Router /auth/users [post]
func (h *UserHandler) Create(c *gin.Context) {
	var req services.CreateUserInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, bindingMessage(err))
		return
	}

	user, err := h.userService.CreateUser(c.Request.Context(), actor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}
