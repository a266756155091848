package services

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/resend/resend-go/v2"

	"github.com/sjperalta/arrendando-api/internal/config"
	"github.com/sjperalta/arrendando-api/internal/models"
	"github.com/sjperalta/arrendando-api/pkg/logger"
)

//go:embed templates/email/*.html
var emailTemplates embed.FS

// ErrEmailDisabled is returned by operations that must deliver when notifications are turned off
var ErrEmailDisabled = errors.New("el envío de correos está deshabilitado")

type EmailService struct {
	config       *config.Config
	resendClient *resend.Client
	send         func(ctx context.Context, params *resend.SendEmailRequest) error
}

func NewEmailService(cfg *config.Config) *EmailService {
	s := &EmailService{
		config:       cfg,
		resendClient: resend.NewClient(cfg.ResendAPIKey),
	}
	s.send = func(ctx context.Context, params *resend.SendEmailRequest) error {
		_, err := s.resendClient.Emails.Send(params)
		return err
	}
	return s
}

// checkEmailPreconditions reports whether mail for operation can be sent to.
// Disabled notifications skip silently; missing configuration is an error.
func (s *EmailService) checkEmailPreconditions(to, operation string) (bool, error) {
	if !s.config.EnableEmailNotifications {
		logger.Debug("[Email] Notifications disabled, skipping", "operation", operation)
		return false, nil
	}
	if !s.config.EmailConfigured() {
		return false, fmt.Errorf("cannot send %s: RESEND_API_KEY is not set", operation)
	}
	if strings.TrimSpace(to) == "" {
		return false, errors.New("email address is empty")
	}
	return true, nil
}

func (s *EmailService) deliver(ctx context.Context, to, subject, templateName string, data interface{}) error {
	body, err := s.renderTemplate(templateName, data)
	if err != nil {
		return err
	}

	params := &resend.SendEmailRequest{
		From:    s.config.FromEmail,
		To:      []string{to},
		Subject: subject,
		Html:    body,
	}
	if err := s.send(ctx, params); err != nil {
		logger.Error(fmt.Sprintf("Failed to send email to %s: %v", to, err))
		return err
	}

	logger.Info(fmt.Sprintf("📧 [Email Sent] To: %s | Subject: %s", to, subject))
	return nil
}

// SendRecoveryCode emails a password recovery code
func (s *EmailService) SendRecoveryCode(ctx context.Context, user *models.User, code string) error {
	ok, err := s.checkEmailPreconditions(user.Email, "recovery code")
	if !ok {
		return err
	}

	data := struct {
		Name    string
		Code    string
		Minutes int
	}{
		Name:    user.FullName(),
		Code:    code,
		Minutes: int(RecoveryCodeTTL / time.Minute),
	}
	return s.deliver(ctx, user.Email, "Código de recuperación de contraseña", "reset_code.html", data)
}

// ContactInput is the body of POST /contact/send-email
type ContactInput struct {
	Name    string `json:"name" binding:"required,max=100"`
	Email   string `json:"email" binding:"required,email"`
	Message string `json:"message" binding:"required,max=5000"`
}

// SendContact forwards a contact form message to the configured inbox.
// Unlike lifecycle notices it fails when email is disabled.
func (s *EmailService) SendContact(ctx context.Context, input ContactInput) error {
	ok, err := s.checkEmailPreconditions(s.config.ContactEmail, "contact email")
	if err != nil {
		return err
	}
	if !ok {
		return ErrEmailDisabled
	}

	data := struct {
		Name       string
		Email      string
		Message    string
		ReceivedAt string
	}{
		Name:       input.Name,
		Email:      input.Email,
		Message:    input.Message,
		ReceivedAt: time.Now().Format("02/01/2006 15:04"),
	}
	return s.deliver(ctx, s.config.ContactEmail, "Nuevo mensaje de contacto de "+input.Name, "contact.html", data)
}

// SendContractExpiring reminds the tenant that the lease ends soon
func (s *EmailService) SendContractExpiring(ctx context.Context, contract *models.Contract, days int) error {
	if contract.Inquilino == nil {
		return nil
	}
	ok, err := s.checkEmailPreconditions(contract.Inquilino.Correo, "contract expiring")
	if !ok {
		return err
	}

	direccion := ""
	if contract.Inmueble != nil {
		direccion = contract.Inmueble.Direccion
	}
	data := struct {
		Name      string
		Direccion string
		FechaFin  string
		Days      int
		Canon     string
	}{
		Name:      contract.Inquilino.FullName(),
		Direccion: direccion,
		FechaFin:  contract.FechaFin.Format("02/01/2006"),
		Days:      days,
		Canon:     contract.CanonMensual.StringFixed(2),
	}
	return s.deliver(ctx, contract.Inquilino.Correo, "Su contrato está próximo a vencer", "contract_expiring.html", data)
}

func (s *EmailService) renderTemplate(name string, data interface{}) (string, error) {
	tmpl, err := template.ParseFS(emailTemplates, "templates/email/"+name)
	if err != nil {
		return "", fmt.Errorf("failed to parse template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}

	return buf.String(), nil
}
