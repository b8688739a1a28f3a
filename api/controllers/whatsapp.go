package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/luestilo/estilo-backend/api/responses"
	"github.com/luestilo/estilo-backend/api/validators"
	"github.com/luestilo/estilo-backend/internal/clients"
	"github.com/luestilo/estilo-backend/internal/notifications"
	pkgerrors "github.com/luestilo/estilo-backend/pkg/errors"
	"github.com/luestilo/estilo-backend/pkg/logger"
)

func notifierReady(notifier *notifications.Service) error {
	if notifier == nil {
		return pkgerrors.New(pkgerrors.CodeUpstream, "whatsapp integration is not configured")
	}
	return nil
}

type sendMessageRequest struct {
	ClientID uuid.UUID `json:"client_id" validate:"required"`
	Message  string    `json:"message" validate:"required"`
}

type sendTemplateRequest struct {
	ClientID       uuid.UUID `json:"client_id" validate:"required"`
	TemplateName   string    `json:"template_name" validate:"required"`
	TemplateParams []string  `json:"template_params,omitempty"`
}

type orderNotificationRequest struct {
	ClientID    uuid.UUID `json:"client_id" validate:"required"`
	OrderNumber string    `json:"order_number" validate:"required"`
	Status      string    `json:"status" validate:"required"`
}

type paymentNotificationRequest struct {
	ClientID      uuid.UUID       `json:"client_id" validate:"required"`
	OrderNumber   string          `json:"order_number" validate:"required"`
	Amount        decimal.Decimal `json:"amount" validate:"required"`
	PaymentMethod string          `json:"payment_method" validate:"required"`
}

type shippingNotificationRequest struct {
	ClientID     uuid.UUID `json:"client_id" validate:"required"`
	OrderNumber  string    `json:"order_number" validate:"required"`
	TrackingCode string    `json:"tracking_code" validate:"required"`
	Carrier      string    `json:"carrier" validate:"required"`
}

type promotionNotificationRequest struct {
	ClientID             uuid.UUID `json:"client_id" validate:"required"`
	PromotionTitle       string    `json:"promotion_title" validate:"required"`
	PromotionDescription string    `json:"promotion_description" validate:"required"`
	ValidUntil           string    `json:"valid_until" validate:"required"`
}

// WhatsAppSend forwards a raw text message to the client's phone.
func WhatsAppSend(notifier *notifications.Service, clientsSvc *clients.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := notifierReady(notifier); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body sendMessageRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		client, err := clientsSvc.Get(r.Context(), body.ClientID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := notifier.SendText(r.Context(), client.Phone, body.Message); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "sent"})
	}
}

// WhatsAppSendTemplate forwards a pre-approved template message.
func WhatsAppSendTemplate(notifier *notifications.Service, clientsSvc *clients.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := notifierReady(notifier); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body sendTemplateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		client, err := clientsSvc.Get(r.Context(), body.ClientID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := notifier.SendTemplate(r.Context(), client.Phone, body.TemplateName, body.TemplateParams); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "sent"})
	}
}

// WhatsAppNotifyOrder notifies a client about an order status change.
func WhatsAppNotifyOrder(notifier *notifications.Service, clientsSvc *clients.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := notifierReady(notifier); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body orderNotificationRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		client, err := clientsSvc.Get(r.Context(), body.ClientID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := notifier.NotifyOrderStatus(r.Context(), client.Phone, client.Name, body.OrderNumber, body.Status); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "sent"})
	}
}

// WhatsAppNotifyPayment confirms a payment to the client.
func WhatsAppNotifyPayment(notifier *notifications.Service, clientsSvc *clients.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := notifierReady(notifier); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body paymentNotificationRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		client, err := clientsSvc.Get(r.Context(), body.ClientID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := notifier.NotifyPayment(r.Context(), client.Phone, client.Name, body.OrderNumber, body.Amount, body.PaymentMethod); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "sent"})
	}
}

// WhatsAppNotifyShipping shares tracking details with the client.
func WhatsAppNotifyShipping(notifier *notifications.Service, clientsSvc *clients.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := notifierReady(notifier); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body shippingNotificationRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		client, err := clientsSvc.Get(r.Context(), body.ClientID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := notifier.NotifyShipping(r.Context(), client.Phone, client.Name, body.OrderNumber, body.TrackingCode, body.Carrier); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "sent"})
	}
}

// WhatsAppNotifyPromotion announces a promotion to the client.
func WhatsAppNotifyPromotion(notifier *notifications.Service, clientsSvc *clients.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := notifierReady(notifier); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body promotionNotificationRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		client, err := clientsSvc.Get(r.Context(), body.ClientID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := notifier.NotifyPromotion(r.Context(), client.Phone, client.Name, body.PromotionTitle, body.PromotionDescription, body.ValidUntil); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "sent"})
	}
}
