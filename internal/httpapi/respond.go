package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	domainregistry "mcpgate/internal/domain/registry"
	"mcpgate/internal/ports"
	"mcpgate/internal/usecase/registry"
)

type errorResponse struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}

// writeServiceError maps registry service failures onto the API error shape.
// Proxy resolution uses its own wording and is handled at the proxy handler.
func writeServiceError(w http.ResponseWriter, err error) {
	var validation *registry.ValidationError
	switch {
	case errors.As(err, &validation):
		writeError(w, http.StatusUnprocessableEntity, validation.Message)
	case errors.Is(err, ports.ErrServerNotFound):
		writeError(w, http.StatusNotFound, "Server not found")
	case errors.Is(err, ports.ErrDuplicateCanonicalID):
		writeError(w, http.StatusConflict, "Server already registered")
	case errors.Is(err, domainregistry.ErrInvalidScanOutput):
		writeError(w, http.StatusBadRequest, "Invalid JSON in scanOutput")
	case errors.Is(err, domainregistry.ErrInvalidAdminAction):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
