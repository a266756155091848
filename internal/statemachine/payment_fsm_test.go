package statemachine

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sjperalta/arrendando-api/internal/models"
	"github.com/sjperalta/arrendando-api/pkg/finance"
)

func newPayment(estado, total, abonado string) *models.Payment {
	return &models.Payment{
		Estado:            estado,
		MontoTotal:        decimal.RequireFromString(total),
		MontoAbonado:      decimal.RequireFromString(abonado),
		FechaPagoEsperada: finance.NewDate(mustDate("2024-03-05")),
	}
}

func TestPaymentFSM_Abonar(t *testing.T) {
	ctx := context.Background()
	fecha, _ := finance.ParseDate("2024-03-10")

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
		{"partial from pending", models.PaymentEstadoPendiente, "0", "400", models.PaymentEstadoParcial, "400", nil, false},
		{"partial stays partial", models.PaymentEstadoParcial, "400", "100", models.PaymentEstadoParcial, "500", nil, false},
		{"completes exact total", models.PaymentEstadoParcial, "400", "600", models.PaymentEstadoPagado, "1000", nil, true},
		{"overdue partial stays overdue", models.PaymentEstadoVencido, "0", "300", models.PaymentEstadoVencido, "300", nil, false},
		{"overdue completes", models.PaymentEstadoVencido, "300", "700", models.PaymentEstadoPagado, "1000", nil, true},
		{"overpayment refused", models.PaymentEstadoParcial, "400", "600.01", models.PaymentEstadoParcial, "400", ErrOverpayment, false},
		{"zero refused", models.PaymentEstadoPendiente, "0", "0", models.PaymentEstadoPendiente, "0", ErrInvalidAmount, false},
		{"negative refused", models.PaymentEstadoPendiente, "0", "-5", models.PaymentEstadoPendiente, "0", ErrInvalidAmount, false},
		{"paid refuses abono", models.PaymentEstadoPagado, "1000", "1", models.PaymentEstadoPagado, "1000", ErrInvalidTransition, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newPayment(tt.estado, "1000", tt.abonado)
			err := NewPaymentFSM(p).Abonar(ctx, decimal.RequireFromString(tt.monto), fecha)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantEstado, p.Estado)
			assert.True(t, decimal.RequireFromString(tt.wantAbonado).Equal(p.MontoAbonado), "abonado %s", p.MontoAbonado)
			if tt.wantFecha {
				require.NotNil(t, p.FechaPagoReal)
				assert.Equal(t, "2024-03-10", p.FechaPagoReal.String())
			} else {
				assert.Nil(t, p.FechaPagoReal)
			}
		})
	}
}

func TestPaymentFSM_Vencer(t *testing.T) {
	ctx := context.Background()

	for _, estado := range []string{models.PaymentEstadoPendiente, models.PaymentEstadoParcial} {
		p := newPayment(estado, "100", "0")
		require.NoError(t, NewPaymentFSM(p).Vencer(ctx))
		assert.Equal(t, models.PaymentEstadoVencido, p.Estado)
	}

	paid := newPayment(models.PaymentEstadoPagado, "100", "100")
	assert.ErrorIs(t, NewPaymentFSM(paid).Vencer(ctx), ErrInvalidTransition)
	assert.Equal(t, models.PaymentEstadoPagado, paid.Estado)
}

func TestPaymentFSM_Reprogramar(t *testing.T) {
	ctx := context.Background()
	today, _ := finance.ParseDate("2024-04-01")
	future, _ := finance.ParseDate("2024-04-15")
	past, _ := finance.ParseDate("2024-03-20")

	t.Run("overdue without abonos returns to pending", func(t *testing.T) {
		p := newPayment(models.PaymentEstadoVencido, "100", "0")
		require.NoError(t, NewPaymentFSM(p).Reprogramar(ctx, future, today))
		assert.Equal(t, models.PaymentEstadoPendiente, p.Estado)
		assert.Equal(t, future, p.FechaPagoEsperada)
	})

	t.Run("overdue with abonos returns to partial", func(t *testing.T) {
		p := newPayment(models.PaymentEstadoVencido, "100", "40")
		require.NoError(t, NewPaymentFSM(p).Reprogramar(ctx, today, today))
		assert.Equal(t, models.PaymentEstadoParcial, p.Estado)
	})

	t.Run("past date keeps overdue", func(t *testing.T) {
		p := newPayment(models.PaymentEstadoVencido, "100", "0")
		require.NoError(t, NewPaymentFSM(p).Reprogramar(ctx, past, today))
		assert.Equal(t, models.PaymentEstadoVencido, p.Estado)
		assert.Equal(t, past, p.FechaPagoEsperada)
	})

	t.Run("pending only moves the date", func(t *testing.T) {
		p := newPayment(models.PaymentEstadoPendiente, "100", "0")
		require.NoError(t, NewPaymentFSM(p).Reprogramar(ctx, future, today))
		assert.Equal(t, models.PaymentEstadoPendiente, p.Estado)
	})

	t.Run("paid is refused", func(t *testing.T) {
		p := newPayment(models.PaymentEstadoPagado, "100", "100")
		assert.ErrorIs(t, NewPaymentFSM(p).Reprogramar(ctx, future, today), ErrInvalidTransition)
	})
}
