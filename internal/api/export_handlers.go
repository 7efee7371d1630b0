package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/applytrack/applytrack-server/internal/backup"
)

func (s *Server) registerExportRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "exportUserData",
		Method:      http.MethodGet,
		Path:        "/api/v1/export",
		Summary:     "Export user data",
		Description: "Returns a portable snapshot of all data owned by the user",
		Tags:        []string{"Export"},
		Security:    []map[string][]string{{"user": {}}},
	}, s.handleExportUserData)
}

// === DTOs ===

// ExportInput contains parameters for exporting user data.
type ExportInput struct {
	UserID string `header:"X-User-ID"`
}

// ExportOutput wraps the snapshot for Huma.
type ExportOutput struct {
	Body *backup.Snapshot
}

// === Handlers ===

func (s *Server) handleExportUserData(ctx context.Context, input *ExportInput) (*ExportOutput, error) {
	userID, err := requireUser(input.UserID)
	if err != nil {
		return nil, err
	}

	snap, err := s.services.Export.Export(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &ExportOutput{Body: snap}, nil
}
