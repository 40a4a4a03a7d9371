package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/lesson-scheduler/internal/payment"
)

// WebhookHandler recebe as notificações do gateway. O corpo só diz qual
// pagamento mudou; o estado real é sempre buscado de volta no gateway.
type WebhookHandler struct {
	orchestrator *payment.Orchestrator
	logger       *zap.Logger
}

func NewWebhookHandler(orchestrator *payment.Orchestrator, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{orchestrator: orchestrator, logger: logger}
}

type webhookBody struct {
	ID     flexibleID `json:"id"`
	Type   string     `json:"type"`
	Action string     `json:"action"`
	Data   struct {
		ID flexibleID `json:"id"`
	} `json:"data"`
}

// flexibleID aceita número ou string.
type flexibleID string

func (f *flexibleID) UnmarshalJSON(b []byte) error {
	*f = flexibleID(strings.Trim(string(b), `"`))
	return nil
}

func (h *WebhookHandler) Handle(c *gin.Context) {
	var body webhookBody
	_ = c.ShouldBindJSON(&body)

	kind := body.Type
	if kind == "" {
		kind = c.Query("type")
	}
	ref := string(body.Data.ID)
	if ref == "" {
		ref = c.Query("data.id")
	}

	if kind != "payment" || ref == "" {
		c.Status(http.StatusNoContent)
		return
	}
	if _, err := strconv.Atoi(ref); err != nil {
		c.Status(http.StatusNoContent)
		return
	}

	id := string(body.ID)
	if id == "" {
		id = c.GetHeader("X-Request-Id")
	}

	outcome, err := h.orchestrator.HandleNotification(c.Request.Context(), payment.Notification{
		ID:  id,
		Ref: ref,
	})
	if err != nil {
		h.logger.Warn("payment notification failed",
			zap.String("ref", ref),
			zap.String("outcome", string(outcome)),
			zap.Error(err),
		)
		// 5xx faz o gateway reenviar
		c.JSON(http.StatusInternalServerError, gin.H{"status": string(outcome)})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": string(outcome)})
}
