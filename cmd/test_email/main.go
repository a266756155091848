package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/sjperalta/arrendando-api/internal/config"
	"github.com/sjperalta/arrendando-api/internal/models"
	"github.com/sjperalta/arrendando-api/internal/services"
	"github.com/sjperalta/arrendando-api/pkg/finance"
	"github.com/sjperalta/arrendando-api/pkg/logger"
)

func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger.Setup("development", "debug")

	if !cfg.EmailConfigured() {
		log.Fatal("RESEND_API_KEY and FROM_EMAIL must be set")
	}
	cfg.EnableEmailNotifications = true

	emailService := services.NewEmailService(cfg)

	toEmail := os.Getenv("TEST_EMAIL_TO")
	if toEmail == "" {
		toEmail = "test@example.com"
		log.Println("TEST_EMAIL_TO not set, using test@example.com. Emails might fail if the domain is not verified.")
	}
	if cfg.ContactEmail == "" {
		cfg.ContactEmail = toEmail
	}
	ctx := context.Background()

	user := &models.User{FirstName: "Test", LastName: "User", Email: toEmail}
	log.Printf("Sending Recovery Code email to %s...", toEmail)
	if err := emailService.SendRecoveryCode(ctx, user, "123456"); err != nil {
		log.Fatalf("Failed to send Recovery Code email: %v", err)
	}
	log.Println("Recovery Code email sent successfully!")

	contract := &models.Contract{
		FechaFin:     finance.NewDate(time.Now().AddDate(0, 0, 30)),
		CanonMensual: decimal.NewFromInt(450),
		Inquilino:    &models.Tenant{Nombres: "Test", Apellidos: "Inquilino", Correo: toEmail},
		Inmueble:     &models.Property{Direccion: "Av. Siempre Viva 742"},
	}
	log.Printf("Sending Contract Expiring email to %s...", toEmail)
	if err := emailService.SendContractExpiring(ctx, contract, 30); err != nil {
		log.Fatalf("Failed to send Contract Expiring email: %v", err)
	}
	log.Println("Contract Expiring email sent successfully!")

	log.Printf("Sending Contact email to %s...", cfg.ContactEmail)
	err = emailService.SendContact(ctx, services.ContactInput{
		Name:    "Test User",
		Email:   toEmail,
		Message: "Mensaje de prueba del formulario de contacto",
	})
	if err != nil {
		log.Fatalf("Failed to send Contact email: %v", err)
	}
	log.Println("Contact email sent successfully!")
}
