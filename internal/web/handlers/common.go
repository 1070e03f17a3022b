package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/kozaktomas/frushion/internal/constants"
	"github.com/kozaktomas/frushion/internal/database"
	"github.com/kozaktomas/frushion/internal/frame"
)

// errInvalidRequestBody is a shared error message for invalid JSON request bodies.
const errInvalidRequestBody = "invalid request body"

// sanitizeForLog removes newlines and carriage returns to prevent log injection.
func sanitizeForLog(s string) string {
	return strings.NewReplacer("\n", "", "\r", "").Replace(s)
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// readFormImage decodes the image uploaded in the given multipart field.
func readFormImage(r *http.Request, field string) (*frame.Frame, error) {
	if err := r.ParseMultipartForm(constants.MaxUploadSize); err != nil {
		return nil, errors.New("failed to parse multipart form")
	}
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, fmt.Errorf("no %s file provided", field)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, constants.MaxUploadSize))
	if err != nil {
		return nil, errors.New("failed to read uploaded file")
	}
	f, err := frame.Decode(data, header.Filename)
	if err != nil {
		return nil, errors.New("invalid image data")
	}
	return f, nil
}

// HealthCheck handles the health check endpoint. An unreachable analysis store makes it fail.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	if !database.IsInitialized() {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), constants.HealthCheckTimeout)
	defer cancel()
	storage := database.BackendName()
	if err := database.Ping(ctx); err != nil {
		log.Printf("Health check: %s storage unreachable: %v", storage, err)
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":  "unavailable",
			"storage": storage,
			"error":   "storage unreachable",
		})
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok", "storage": storage})
}
