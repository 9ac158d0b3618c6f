package adaptor

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"tour-booking/internal/data/entity"
	"tour-booking/internal/gateway"
	"tour-booking/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type stubPaymentService struct {
	stripeErr error
	momoErr   error
}

func (s *stubPaymentService) OpenPayment(ctx context.Context, booking *entity.Booking) (string, error) {
	return "", nil
}

func (s *stubPaymentService) ReleaseBooking(ctx context.Context, bookingID uuid.UUID) error {
	return nil
}

func (s *stubPaymentService) HandleStripeWebhook(ctx context.Context, payload []byte, signature string) error {
	return s.stripeErr
}

func (s *stubPaymentService) HandleMoMoIPN(ctx context.Context, callback gateway.MoMoIPNRequest) error {
	return s.momoErr
}

func (s *stubPaymentService) UpdatePaymentStatus(ctx context.Context, bookingID uuid.UUID, status entity.PaymentStatus) error {
	return nil
}

func (s *stubPaymentService) StartExpirySweeper(ctx context.Context) {}

func postStripeWebhook(service usecase.PaymentService) *httptest.ResponseRecorder {
	handler := NewPaymentHandler(service, zap.NewNop())
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/stripe", strings.NewReader(`{}`))
	req.Header.Set("Stripe-Signature", "t=1,v1=abc")
	rec := httptest.NewRecorder()
	handler.StripeWebhook(rec, req)
	return rec
}

func TestStripeWebhookAcknowledgment(t *testing.T) {
	t.Run("verified event is acknowledged", func(t *testing.T) {
		rec := postStripeWebhook(&stubPaymentService{})
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"received":true`)
	})

	t.Run("internal failure after verification still gets a 2xx", func(t *testing.T) {
		rec := postStripeWebhook(&stubPaymentService{
			stripeErr: fmt.Errorf("find booking: connection refused"),
		})
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"received":true`)
	})

	t.Run("bad signature is refused", func(t *testing.T) {
		rec := postStripeWebhook(&stubPaymentService{
			stripeErr: fmt.Errorf("%w: bad header", usecase.ErrInvalidSignature),
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestMoMoIPNAcknowledgment(t *testing.T) {
	handler := NewPaymentHandler(&stubPaymentService{
		momoErr: fmt.Errorf("find booking: connection refused"),
	}, zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/momo",
		strings.NewReader(`{"orderId":"TOUR-X","resultCode":0,"signature":"abc"}`))
	rec := httptest.NewRecorder()
	handler.MoMoIPN(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"received":true`)
}
