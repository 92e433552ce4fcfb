package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/legalaid/internal/interfaces"
)

const secretsPath = "/api/secrets/"

// CredentialResolver reports where a named credential currently resolves from
type CredentialResolver interface {
	Resolve(ctx context.Context, name string) (string, string, error)
}

// SecretsHandler manages the API keys held in the secret store
type SecretsHandler struct {
	store       interfaces.KeyValueStorage
	credentials CredentialResolver
	names       []string
	logger      arbor.ILogger
}

// NewSecretsHandler creates a secrets handler. names are the credential names reported by StatusHandler.
func NewSecretsHandler(store interfaces.KeyValueStorage, credentials CredentialResolver, names []string, logger arbor.ILogger) *SecretsHandler {
	return &SecretsHandler{
		store:       store,
		credentials: credentials,
		names:       names,
		logger:      logger,
	}
}

// ListSecretsHandler handles GET /api/secrets - lists stored secrets with masked values
func (h *SecretsHandler) ListSecretsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	pairs, err := h.store.List(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list secrets")
		WriteError(w, http.StatusInternalServerError, "Failed to list secrets")
		return
	}

	sanitized := make([]map[string]interface{}, len(pairs))
	for i, pair := range pairs {
		sanitized[i] = map[string]interface{}{
			"key":         pair.Key,
			"value":       maskValue(pair.Value),
			"description": pair.Description,
			"created_at":  pair.CreatedAt,
			"updated_at":  pair.UpdatedAt,
		}
	}

	h.logger.Debug().Int("count", len(pairs)).Msg("Listed secrets")
	WriteJSON(w, http.StatusOK, sanitized)
}

// UpdateSecretHandler handles PUT /api/secrets/{key} - upserts a secret
func (h *SecretsHandler) UpdateSecretHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "PUT") {
		return
	}

	key, ok := h.keyFromPath(w, r)
	if !ok {
		return
	}

	var req struct {
		Value       string `json:"value"`
		Description string `json:"description"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Value) == "" {
		WriteError(w, http.StatusBadRequest, "Value is required")
		return
	}

	created, err := h.store.Upsert(r.Context(), key, strings.TrimSpace(req.Value), req.Description)
	if err != nil {
		h.logger.Error().Err(err).Str("key", key).Msg("Failed to upsert secret")
		WriteError(w, http.StatusInternalServerError, "Failed to store secret")
		return
	}

	statusCode := http.StatusOK
	message := "Secret updated successfully"
	if created {
		statusCode = http.StatusCreated
		message = "Secret created successfully"
	}
	h.logger.Info().Str("key", key).Bool("created", created).Msg("Secret stored")

	WriteJSON(w, statusCode, map[string]interface{}{
		"status":  "success",
		"message": message,
		"key":     key,
		"created": created,
	})
}

// DeleteSecretHandler handles DELETE /api/secrets/{key}
func (h *SecretsHandler) DeleteSecretHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "DELETE") {
		return
	}

	key, ok := h.keyFromPath(w, r)
	if !ok {
		return
	}

	if err := h.store.Delete(r.Context(), key); err != nil {
		if errors.Is(err, interfaces.ErrKeyNotFound) {
			WriteError(w, http.StatusNotFound, "Key not found")
			return
		}
		h.logger.Error().Err(err).Str("key", key).Msg("Failed to delete secret")
		WriteError(w, http.StatusInternalServerError, "Failed to delete secret")
		return
	}

	h.logger.Info().Str("key", key).Msg("Secret deleted")
	WriteSuccess(w, "Secret deleted successfully")
}

// StatusHandler handles GET /api/credentials - which source each credential resolves from.
// Values are never returned.
func (h *SecretsHandler) StatusHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	status := make([]map[string]interface{}, 0, len(h.names))
	for _, name := range h.names {
		_, source, err := h.credentials.Resolve(r.Context(), name)
		status = append(status, map[string]interface{}{
			"name":       name,
			"configured": err == nil,
			"source":     source,
		})
	}
	WriteJSON(w, http.StatusOK, status)
}

func (h *SecretsHandler) keyFromPath(w http.ResponseWriter, r *http.Request) (string, bool) {
	encodedKey := strings.TrimPrefix(r.URL.Path, secretsPath)

	key, err := url.QueryUnescape(encodedKey)
	if err != nil {
		h.logger.Error().Err(err).Str("encoded_key", encodedKey).Msg("Failed to decode key")
		WriteError(w, http.StatusBadRequest, "Invalid key encoding")
		return "", false
	}
	if key == "" {
		WriteError(w, http.StatusBadRequest, "Missing key parameter")
		return "", false
	}
	return key, true
}

// maskValue masks secret values for API responses
// If length < 8: returns "••••••••"
// Otherwise: returns first 4 chars + "..." + last 4 chars (e.g., "sk-1...xyz9")
func maskValue(value string) string {
	if len(value) < 8 {
		return "••••••••"
	}

	return value[:4] + "..." + value[len(value)-4:]
}
