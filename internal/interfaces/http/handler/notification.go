package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	billingapp "github.com/rentdesk/backend/internal/application/billing"
)

// NotificationHandler exposes the reminder computation endpoints
type NotificationHandler struct {
	BaseHandler
	notificationService *billingapp.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notificationService *billingapp.NotificationService) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
	}
}

// ListReminders computes the reminder batch due on a given day for the
// acting office. The batch is recomputed from due dates on every call, so
// repeating the request yields the same result; the delivery layer is
// expected to deduplicate.
func (h *NotificationHandler) ListReminders(c *gin.Context) {
	officeID, err := getOfficeID(c)
	if err != nil {
		h.BadRequest(c, "Invalid office ID")
		return
	}

	day := time.Now().UTC()
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			h.BadRequest(c, "Invalid date, expected YYYY-MM-DD")
			return
		}
		day = parsed
	}

	reminders, err := h.notificationService.CollectReminders(c.Request.Context(), officeID, day)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, reminders)
}
