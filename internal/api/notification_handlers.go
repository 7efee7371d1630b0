package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/applytrack/applytrack-server/internal/notify"
)

func (s *Server) registerNotificationRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listNotifications",
		Method:      http.MethodGet,
		Path:        "/api/v1/notifications",
		Summary:     "List notifications",
		Description: "Returns the visible notification and the backing queue",
		Tags:        []string{"Notifications"},
		Security:    []map[string][]string{{"user": {}}},
	}, s.handleListNotifications)

	huma.Register(s.api, huma.Operation{
		OperationID: "undoNotification",
		Method:      http.MethodPost,
		Path:        "/api/v1/notifications/{id}/undo",
		Summary:     "Undo notification",
		Description: "Runs the inverse of the mutation this notification reports",
		Tags:        []string{"Notifications"},
		Security:    []map[string][]string{{"user": {}}},
	}, s.handleUndoNotification)

	huma.Register(s.api, huma.Operation{
		OperationID: "dismissNotification",
		Method:      http.MethodDelete,
		Path:        "/api/v1/notifications/{id}",
		Summary:     "Dismiss notification",
		Description: "Removes a notification without undoing anything",
		Tags:        []string{"Notifications"},
		Security:    []map[string][]string{{"user": {}}},
	}, s.handleDismissNotification)
}

// === DTOs ===

// ListNotificationsInput contains parameters for listing notifications.
type ListNotificationsInput struct {
	UserID string `header:"X-User-ID"`
}

// NotificationResponse contains notification data in API responses.
type NotificationResponse struct {
	ID        string    `json:"id" doc:"Notification ID"`
	Message   string    `json:"message" doc:"Display message"`
	Level     string    `json:"level" doc:"Severity: info, success, warning, or error"`
	Undoable  bool      `json:"undoable" doc:"Whether the reported mutation can be undone"`
	CreatedAt time.Time `json:"created_at" doc:"Creation time"`
	ExpiresAt time.Time `json:"expires_at" doc:"When the notification stops being actionable"`
}

// ListNotificationsResponse contains the queue state.
type ListNotificationsResponse struct {
	Current *NotificationResponse  `json:"current,omitempty" doc:"The single visible notification"`
	Queue   []NotificationResponse `json:"queue" doc:"All pending notifications, visible first"`
}

// ListNotificationsOutput wraps the list response for Huma.
type ListNotificationsOutput struct {
	Body ListNotificationsResponse
}

// NotificationActionInput identifies one notification.
type NotificationActionInput struct {
	UserID string `header:"X-User-ID"`
	ID     string `path:"id" doc:"Notification ID"`
}

func toNotificationResponse(n *notify.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		Message:   n.Message,
		Level:     string(n.Level),
		Undoable:  n.Undoable,
		CreatedAt: n.CreatedAt,
		ExpiresAt: n.ExpiresAt,
	}
}

// === Handlers ===

func (s *Server) handleListNotifications(ctx context.Context, input *ListNotificationsInput) (*ListNotificationsOutput, error) {
	userID, err := requireUser(input.UserID)
	if err != nil {
		return nil, err
	}

	queue := s.services.Notify.List(userID)
	resp := ListNotificationsResponse{
		Queue: make([]NotificationResponse, len(queue)),
	}
	for i, n := range queue {
		resp.Queue[i] = toNotificationResponse(n)
	}
	if len(resp.Queue) > 0 {
		resp.Current = &resp.Queue[0]
	}

	return &ListNotificationsOutput{Body: resp}, nil
}

func (s *Server) handleUndoNotification(ctx context.Context, input *NotificationActionInput) (*MessageOutput, error) {
	userID, err := requireUser(input.UserID)
	if err != nil {
		return nil, err
	}

	if err := s.services.Notify.Undo(ctx, userID, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Action undone"}}, nil
}

func (s *Server) handleDismissNotification(ctx context.Context, input *NotificationActionInput) (*MessageOutput, error) {
	userID, err := requireUser(input.UserID)
	if err != nil {
		return nil, err
	}

	s.services.Notify.Dismiss(userID, input.ID)

	return &MessageOutput{Body: MessageResponse{Message: "Notification dismissed"}}, nil
}
