package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sjperalta/arrendando-api/internal/models"
	"github.com/sjperalta/arrendando-api/internal/repository"
	"github.com/sjperalta/arrendando-api/pkg/finance"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newPaymentFixture(payments ...*models.Payment) (*PaymentService, *mockPaymentRepo, *mockContractRepo) {
	repo := newMockPaymentRepo(payments...)
	contracts := newMockContractRepo()
	service := NewPaymentService(repo, contracts, nil, nil)
	service.now = fixedNow("2025-03-10")
	return service, repo, contracts
}

func payment(estado, total, abonado, due string) *models.Payment {
	return &models.Payment{
		Base:              models.Base{ID: uuid.New()},
		MontoTotal:        dec(total),
		MontoAbonado:      dec(abonado),
		Estado:            estado,
		FechaPagoEsperada: date(due),
		ContratoID:        uuid.New(),
	}
}

func TestPaymentService_Abonar(t *testing.T) {
	tests := []struct {
		name        string
		estado      string
		abonado     string
		monto       string
		wantEstado  string
		wantAbonado string
		wantErr     error
		wantFecha   bool
	}{
		{"partial from pendiente", models.PaymentEstadoPendiente, "0", "400", models.PaymentEstadoParcial, "400", nil, false},
		{"completes parcial", models.PaymentEstadoParcial, "400", "600", models.PaymentEstadoPagado, "1000", nil, true},
		{"vencido short stays vencido", models.PaymentEstadoVencido, "0", "300", models.PaymentEstadoVencido, "300", nil, false},
		{"vencido completed", models.PaymentEstadoVencido, "300", "700", models.PaymentEstadoPagado, "1000", nil, true},
		{"overpayment", models.PaymentEstadoParcial, "400", "600.01", "", "", ErrValidation, false},
		{"zero amount", models.PaymentEstadoPendiente, "0", "0", "", "", ErrValidation, false},
		{"already paid", models.PaymentEstadoPagado, "1000", "1", "", "", ErrInvalidState, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := payment(tt.estado, "1000", tt.abonado, "2025-03-01")
			service, repo, _ := newPaymentFixture(p)

			got, err := service.Abonar(context.Background(), Actor{}, p.ID, AbonoInput{Monto: dec(tt.monto)})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, repo.updated)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantEstado, got.Estado)
			assert.True(t, got.MontoAbonado.Equal(dec(tt.wantAbonado)), "abonado %s", got.MontoAbonado)
			if tt.wantFecha {
				require.NotNil(t, got.FechaPagoReal)
				assert.Equal(t, "2025-03-10", got.FechaPagoReal.String())
			} else {
				assert.Nil(t, got.FechaPagoReal)
			}
		})
	}
}

func TestPaymentService_Abonar_UsesGivenDate(t *testing.T) {
	p := payment(models.PaymentEstadoPendiente, "500", "0", "2025-03-01")
	service, _, _ := newPaymentFixture(p)
	fecha := date("2025-03-05")

	got, err := service.Abonar(context.Background(), Actor{}, p.ID, AbonoInput{Monto: dec("500"), FechaPago: &fecha})
	require.NoError(t, err)
	assert.Equal(t, "2025-03-05", got.FechaPagoReal.String())
}

func TestPaymentService_Update_PagadoRefused(t *testing.T) {
	p := payment(models.PaymentEstadoPagado, "1000", "1000", "2025-03-01")
	service, repo, _ := newPaymentFixture(p)
	total := dec("1200")

	_, err := service.Update(context.Background(), Actor{}, p.ID, UpdatePaymentInput{MontoTotal: &total})
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Empty(t, repo.updated)
}

func TestPaymentService_Update_TotalBelowAbonado(t *testing.T) {
	p := payment(models.PaymentEstadoParcial, "1000", "600", "2025-03-01")
	service, _, _ := newPaymentFixture(p)
	total := dec("500")

	_, err := service.Update(context.Background(), Actor{}, p.ID, UpdatePaymentInput{MontoTotal: &total})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestPaymentService_Update_TotalEqualToAbonadoCompletes(t *testing.T) {
	p := payment(models.PaymentEstadoParcial, "1000", "600", "2025-03-01")
	service, _, _ := newPaymentFixture(p)
	total := dec("600")

	got, err := service.Update(context.Background(), Actor{}, p.ID, UpdatePaymentInput{MontoTotal: &total})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentEstadoPagado, got.Estado)
	assert.NotNil(t, got.FechaPagoReal)
}

func TestPaymentService_Update_Reprogramar(t *testing.T) {
	tests := []struct {
		name       string
		abonado    string
		fecha      string
		wantEstado string
	}{
		{"future date without abonos", "0", "2025-04-01", models.PaymentEstadoPendiente},
		{"future date with abonos", "250", "2025-04-01", models.PaymentEstadoParcial},
		{"today counts as future", "0", "2025-03-10", models.PaymentEstadoPendiente},
		{"still past stays vencido", "0", "2025-03-05", models.PaymentEstadoVencido},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := payment(models.PaymentEstadoVencido, "1000", tt.abonado, "2025-02-01")
			service, _, _ := newPaymentFixture(p)
			fecha := date(tt.fecha)

			got, err := service.Update(context.Background(), Actor{}, p.ID, UpdatePaymentInput{FechaPagoEsperada: &fecha})
			require.NoError(t, err)
			assert.Equal(t, tt.wantEstado, got.Estado)
			assert.Equal(t, tt.fecha, got.FechaPagoEsperada.String())
		})
	}
}

func TestPaymentService_Create(t *testing.T) {
	service, repo, contracts := newPaymentFixture()
	contract := &models.Contract{Base: models.Base{ID: uuid.New()}}
	contracts.contracts[contract.ID] = contract
	abonado := dec("200")

	got, err := service.Create(context.Background(), Actor{}, CreatePaymentInput{
		ContratoID:        contract.ID,
		MontoTotal:        dec("800"),
		MontoAbonado:      &abonado,
		FechaPagoEsperada: date("2025-04-01"),
	})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentEstadoParcial, got.Estado)
	assert.True(t, got.MontoAbonado.Equal(abonado))
	assert.Len(t, repo.payments, 1)
}

func TestPaymentService_Create_Validation(t *testing.T) {
	service, _, contracts := newPaymentFixture()
	contract := &models.Contract{Base: models.Base{ID: uuid.New()}}
	contracts.contracts[contract.ID] = contract
	over := dec("900")

	tests := []struct {
		name  string
		input CreatePaymentInput
	}{
		{"zero total", CreatePaymentInput{ContratoID: contract.ID, MontoTotal: decimal.Zero, FechaPagoEsperada: date("2025-04-01")}},
		{"missing due date", CreatePaymentInput{ContratoID: contract.ID, MontoTotal: dec("100")}},
		{"unknown contract", CreatePaymentInput{ContratoID: uuid.New(), MontoTotal: dec("100"), FechaPagoEsperada: date("2025-04-01")}},
		{"abonado above total", CreatePaymentInput{ContratoID: contract.ID, MontoTotal: dec("800"), MontoAbonado: &over, FechaPagoEsperada: date("2025-04-01")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Create(context.Background(), Actor{}, tt.input)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestPaymentService_List_Validation(t *testing.T) {
	service, _, _ := newPaymentFixture()
	from, to := date("2025-05-01"), date("2025-04-01")

	_, err := service.List(context.Background(), repository.PaymentFilter{Estado: "ANULADO"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = service.List(context.Background(), repository.PaymentFilter{FechaDesde: &from, FechaHasta: &to})
	assert.ErrorIs(t, err, ErrInvalidDateRange)
}

func TestPaymentService_MarkOverdue(t *testing.T) {
	service, repo, _ := newPaymentFixture()
	repo.overdue = []models.Payment{
		*payment(models.PaymentEstadoPendiente, "1000", "0", "2025-03-01"),
		*payment(models.PaymentEstadoParcial, "1000", "400", "2025-03-01"),
	}

	n, err := service.MarkOverdue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, repo.updated, 2)
	for _, p := range repo.updated {
		assert.Equal(t, models.PaymentEstadoVencido, p.Estado)
	}
	assert.True(t, repo.updated[1].MontoAbonado.Equal(dec("400")))
}

func TestPaymentService_Stats(t *testing.T) {
	service, _, _ := newPaymentFixture()
	service.repo = &listingPaymentRepo{
		mockPaymentRepo: newMockPaymentRepo(),
		rows: []models.Payment{
			*payment(models.PaymentEstadoPagado, "1000", "1000", "2025-01-01"),
			*payment(models.PaymentEstadoParcial, "1000", "250", "2025-02-01"),
		},
	}

	stats, err := service.Stats(context.Background(), repository.PaymentFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalPagos)
	assert.Equal(t, 1, stats.PagosCompletados)
	assert.Equal(t, 1, stats.PagosParciales)
	assert.Equal(t, finance.ComputeStats(models.FinancePayments(service.repo.(*listingPaymentRepo).rows)), stats)
}

type listingPaymentRepo struct {
	*mockPaymentRepo
	rows []models.Payment
}

func (m *listingPaymentRepo) List(ctx context.Context, filter repository.PaymentFilter) ([]models.Payment, error) {
	return m.rows, nil
}
