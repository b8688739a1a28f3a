package notifications

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/luestilo/estilo-backend/pkg/config"
)

// Sender delivers text messages to a phone number. The WhatsApp client
// satisfies it.
type Sender interface {
	SendText(ctx context.Context, to, message string) error
	SendTemplate(ctx context.Context, to, templateName string, params []string) error
}

// Service formats the customer-facing notification messages and delegates
// delivery to the sender. Delivery failures surface to the caller but never
// roll back the domain operation that triggered them.
type Service struct {
	sender      Sender
	frontendURL string
}

// NewService constructs a notification service.
func NewService(sender Sender, frontend config.FrontendConfig) (*Service, error) {
	if sender == nil {
		return nil, fmt.Errorf("notification sender is required")
	}
	return &Service{
		sender:      sender,
		frontendURL: strings.TrimRight(frontend.BaseURL, "/"),
	}, nil
}

// SendText forwards a raw text message.
func (s *Service) SendText(ctx context.Context, to, message string) error {
	return s.sender.SendText(ctx, to, message)
}

// SendTemplate forwards a pre-approved template message.
func (s *Service) SendTemplate(ctx context.Context, to, templateName string, params []string) error {
	return s.sender.SendTemplate(ctx, to, templateName, params)
}

// NotifyOrderStatus tells the customer their order changed status.
func (s *Service) NotifyOrderStatus(ctx context.Context, to, clientName, orderNumber, status string) error {
	message := fmt.Sprintf(
		"Olá %s! Seu pedido #%s foi atualizado.\nStatus atual: %s\nAcompanhe seu pedido em: %s/orders/%s",
		clientName, orderNumber, status, s.frontendURL, orderNumber,
	)
	return s.sender.SendText(ctx, to, message)
}

// NotifyPayment confirms a received payment.
func (s *Service) NotifyPayment(ctx context.Context, to, clientName, orderNumber string, amount decimal.Decimal, paymentMethod string) error {
	message := fmt.Sprintf(
		"Olá %s! Recebemos seu pagamento.\nPedido: #%s\nValor: R$ %s\nMétodo: %s\nObrigado pela preferência!",
		clientName, orderNumber, amount.StringFixed(2), paymentMethod,
	)
	return s.sender.SendText(ctx, to, message)
}

// NotifyShipping shares the carrier and tracking code for a shipped order.
func (s *Service) NotifyShipping(ctx context.Context, to, clientName, orderNumber, trackingCode, carrier string) error {
	message := fmt.Sprintf(
		"Olá %s! Seu pedido #%s foi enviado.\nTransportadora: %s\nCódigo de rastreio: %s\nAcompanhe seu pedido em: %s/orders/%s",
		clientName, orderNumber, carrier, trackingCode, s.frontendURL, orderNumber,
	)
	return s.sender.SendText(ctx, to, message)
}

// NotifyPromotion announces a promotion with its validity date.
func (s *Service) NotifyPromotion(ctx context.Context, to, clientName, title, description, validUntil string) error {
	message := fmt.Sprintf(
		"Olá %s! Temos uma promoção especial para você!\nPromoção: %s\n%s\nVálido até: %s\nAcesse: %s/promotions",
		clientName, title, description, validUntil, s.frontendURL,
	)
	return s.sender.SendText(ctx, to, message)
}
