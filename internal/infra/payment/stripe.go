package payment

import (
	"context"
	"encoding/json"
	"strconv"

	"shop/internal/usecase"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/paymentintent"
	"github.com/stripe/stripe-go/v82/webhook"
)

// Stripe実装のPaymentGateway。
type StripeGateway struct {
	currency      string
	webhookSecret string
}

// DI
func NewStripeGateway(secretKey string, webhookSecret string, currency string) *StripeGateway {
	stripe.Key = secretKey

	return &StripeGateway{
		currency:      currency,
		webhookSecret: webhookSecret,
	}
}

// payment intentを作成する。
// metadataはWebhookで注文へ戻すための相関キー。
func (g *StripeGateway) CreateIntent(ctx context.Context, amount int64, metadata map[string]string) (usecase.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(g.currency),
	}
	params.Context = ctx

	//同一リクエストの再送で二重にintentを作らない
	params.IdempotencyKey = stripe.String(uuid.NewString())

	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	pi, err := paymentintent.New(params)
	if err != nil {
		return usecase.PaymentIntent{}, err
	}

	return usecase.PaymentIntent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
	}, nil
}

// Stripe-Signatureヘッダを検証してイベントを復元する。
func (g *StripeGateway) ConstructEvent(payload []byte, sigHeader string) (usecase.PaymentEvent, error) {
	ev, err := webhook.ConstructEvent(payload, sigHeader, g.webhookSecret)
	if err != nil {
		return usecase.PaymentEvent{}, err
	}

	out := usecase.PaymentEvent{Type: string(ev.Type)}

	//payment_intent系以外はmetadataが無いのでtypeだけ返す
	var pi stripe.PaymentIntent
	if err := json.Unmarshal(ev.Data.Raw, &pi); err != nil {
		return out, nil
	}

	if v, ok := pi.Metadata["order_id"]; ok {
		out.OrderID, _ = strconv.ParseInt(v, 10, 64)
	}
	if v, ok := pi.Metadata["user_id"]; ok {
		out.UserID, _ = strconv.ParseInt(v, 10, 64)
	}

	return out, nil
}
