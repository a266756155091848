package services

import (
	"context"
	"errors"
	"testing"

	"github.com/resend/resend-go/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sjperalta/arrendando-api/internal/config"
	"github.com/sjperalta/arrendando-api/internal/models"
	"github.com/sjperalta/arrendando-api/pkg/logger"
)

func TestEmailService_checkEmailPreconditions(t *testing.T) {
	logger.Setup("test", "info")

	// Test case 1: Email notifications disabled
	cfg := &config.Config{
		EnableEmailNotifications: false,
	}
	service := NewEmailService(cfg)

	ok, err := service.checkEmailPreconditions("test@example.com", "test operation")
	assert.False(t, ok, "Should return false when notifications are disabled")
	assert.Nil(t, err, "Should not return error when notifications are disabled")

	// Test case 2: Email configured and valid
	cfg = &config.Config{
		EnableEmailNotifications: true,
		ResendAPIKey:             "test_key",
		FromEmail:                "from@example.com",
	}
	service = NewEmailService(cfg)

	ok, err = service.checkEmailPreconditions("test@example.com", "test operation")
	assert.True(t, ok, "Should return true when properly configured")
	assert.Nil(t, err, "Should not return error when properly configured")

	// Test case 3: Email not configured (missing key)
	cfg = &config.Config{
		EnableEmailNotifications: true,
		ResendAPIKey:             "",
		FromEmail:                "from@example.com",
	}
	service = NewEmailService(cfg)

	ok, err = service.checkEmailPreconditions("test@example.com", "test operation")
	assert.False(t, ok, "Should return false when config is missing")
	assert.Error(t, err, "Should return error when config is missing")
	assert.Contains(t, err.Error(), "RESEND_API_KEY is not set")

	// Test case 4: Empty address
	cfg = &config.Config{
		EnableEmailNotifications: true,
		ResendAPIKey:             "test_key",
		FromEmail:                "from@example.com",
	}
	service = NewEmailService(cfg)

	ok, err = service.checkEmailPreconditions("  ", "test operation")
	assert.False(t, ok, "Should return false when email is empty")
	assert.Error(t, err, "Should return error when email is empty")
	assert.Equal(t, "email address is empty", err.Error())
}

func newCapturingEmailService(cfg *config.Config) (*EmailService, *[]*resend.SendEmailRequest) {
	service := NewEmailService(cfg)
	var sent []*resend.SendEmailRequest
	service.send = func(ctx context.Context, params *resend.SendEmailRequest) error {
		sent = append(sent, params)
		return nil
	}
	return service, &sent
}

func enabledEmailConfig() *config.Config {
	return &config.Config{
		EnableEmailNotifications: true,
		ResendAPIKey:             "test_key",
		FromEmail:                "from@example.com",
		ContactEmail:             "contacto@example.com",
	}
}

func TestEmailService_SendContact(t *testing.T) {
	service, sent := newCapturingEmailService(enabledEmailConfig())

	err := service.SendContact(context.Background(), ContactInput{
		Name:    "Ana López",
		Email:   "ana@example.com",
		Message: "¿Tienen apartamentos disponibles?",
	})
	require.NoError(t, err)
	require.Len(t, *sent, 1)

	msg := (*sent)[0]
	assert.Equal(t, []string{"contacto@example.com"}, msg.To)
	assert.Equal(t, "from@example.com", msg.From)
	assert.Contains(t, msg.Subject, "Ana López")
	assert.Contains(t, msg.Html, "ana@example.com")
}

func TestEmailService_SendContact_Disabled(t *testing.T) {
	cfg := enabledEmailConfig()
	cfg.EnableEmailNotifications = false
	service, sent := newCapturingEmailService(cfg)

	err := service.SendContact(context.Background(), ContactInput{Name: "Ana", Email: "ana@example.com", Message: "hola"})
	assert.ErrorIs(t, err, ErrEmailDisabled)
	assert.Empty(t, *sent)
}

func TestEmailService_SendContact_DeliveryFailure(t *testing.T) {
	service := NewEmailService(enabledEmailConfig())
	service.send = func(ctx context.Context, params *resend.SendEmailRequest) error {
		return errors.New("resend unavailable")
	}

	err := service.SendContact(context.Background(), ContactInput{Name: "Ana", Email: "ana@example.com", Message: "hola"})
	assert.EqualError(t, err, "resend unavailable")
}

func TestEmailService_SendRecoveryCode(t *testing.T) {
	service, sent := newCapturingEmailService(enabledEmailConfig())
	user := &models.User{FirstName: "Luis", LastName: "Mejía", Email: "luis@example.com"}

	require.NoError(t, service.SendRecoveryCode(context.Background(), user, "482913"))
	require.Len(t, *sent, 1)
	assert.Equal(t, []string{"luis@example.com"}, (*sent)[0].To)
	assert.Contains(t, (*sent)[0].Html, "482913")
}

func TestEmailService_SendContractExpiring(t *testing.T) {
	service, sent := newCapturingEmailService(enabledEmailConfig())
	contract := &models.Contract{
		FechaFin:     date("2025-03-31"),
		CanonMensual: decimal.RequireFromString("8500"),
		Inquilino:    &models.Tenant{Nombres: "María", Apellidos: "Reyes", Correo: "maria@example.com"},
		Inmueble:     &models.Property{Direccion: "Col. Palmira, casa 12"},
	}

	require.NoError(t, service.SendContractExpiring(context.Background(), contract, 15))
	require.Len(t, *sent, 1)
	html := (*sent)[0].Html
	assert.Contains(t, html, "31/03/2025")
	assert.Contains(t, html, "8500.00")
	assert.Contains(t, html, "Col. Palmira, casa 12")
}

func TestEmailService_SendContractExpiring_NoTenant(t *testing.T) {
	service, sent := newCapturingEmailService(enabledEmailConfig())

	require.NoError(t, service.SendContractExpiring(context.Background(), &models.Contract{}, 10))
	assert.Empty(t, *sent)
}
