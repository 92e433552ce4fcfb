package server

import (
	"net/http"
	"sort"
	"strings"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// API routes - Sessions (display-name login, language)
	mux.HandleFunc("/api/session", byMethod(map[string]http.HandlerFunc{
		"POST":   s.app.SessionHandler.CreateSessionHandler, // login
		"DELETE": s.app.SessionHandler.DeleteSessionHandler, // logout
	}))
	mux.HandleFunc("/api/session/language", s.app.SessionHandler.LanguageHandler) // PUT
	mux.HandleFunc("/api/languages", s.app.SessionHandler.LanguagesHandler)       // GET

	// API routes - Chat
	mux.HandleFunc("/api/chat", s.app.ChatHandler.ChatHandler)
	mux.HandleFunc("/api/chat/detail", s.app.ChatHandler.DetailHandler)
	mux.HandleFunc("/api/history", s.app.ChatHandler.HistoryHandler)
	mux.HandleFunc("/api/history.csv", s.app.ChatHandler.HistoryCSVHandler)

	// API routes - Documents
	mux.HandleFunc("/api/documents/analyze", s.app.DocumentHandler.AnalyzeHandler)
	mux.HandleFunc("/api/documents/report", s.app.DocumentHandler.ReportHandler)

	// API routes - Secrets (only with a secret store)
	if s.app.SecretsHandler != nil {
		mux.HandleFunc("/api/secrets", s.app.SecretsHandler.ListSecretsHandler)
		mux.HandleFunc("/api/secrets/", byMethod(map[string]http.HandlerFunc{
			"PUT":    s.app.SecretsHandler.UpdateSecretHandler,
			"DELETE": s.app.SecretsHandler.DeleteSecretHandler,
		}))
		mux.HandleFunc("/api/credentials", s.app.SecretsHandler.StatusHandler)
	}

	// API routes - System
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)
	mux.HandleFunc("/api/health", s.app.APIHandler.HealthHandler)

	// 404 handler for unmatched API routes
	mux.HandleFunc("/api/", s.app.APIHandler.NotFoundHandler)

	return mux
}

// byMethod dispatches on the request method. Unlisted methods get 405 with an
// Allow header naming the accepted ones.
func byMethod(routes map[string]http.HandlerFunc) http.HandlerFunc {
	allowed := make([]string, 0, len(routes))
	for method := range routes {
		allowed = append(allowed, method)
	}
	sort.Strings(allowed)
	allow := strings.Join(allowed, ", ")

	return func(w http.ResponseWriter, r *http.Request) {
		handler, ok := routes[r.Method]
		if !ok {
			w.Header().Set("Allow", allow)
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		handler(w, r)
	}
}
