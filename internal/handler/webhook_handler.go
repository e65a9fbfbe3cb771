package handler

import (
	"io"
	"net/http"

	"shop/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 決済プロバイダからのWebhook受け口。認証は署名検証のみ。
type WebhookHandler struct {
	uc *usecase.WebhookUsecase
}

func NewWebhookHandler(uc *usecase.WebhookUsecase) *WebhookHandler {
	return &WebhookHandler{uc: uc}
}

func (h *WebhookHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/webhooks/payment", h.receive)
}

func (h *WebhookHandler) receive(c echo.Context) error {
	// 署名検証は生のbodyに対して行うので、Bindせずに読む
	payload, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	sig := c.Request().Header.Get("Stripe-Signature")

	if err := h.uc.HandleEvent(c.Request().Context(), payload, sig); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "received"})
}
