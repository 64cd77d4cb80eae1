package api

import (
	"github.com/gorilla/mux"

	"github.com/kidspark/kidspark-engine/internal/api/recovery"
	"github.com/kidspark/kidspark-engine/internal/services"
)

// NewRouter creates the HTTP router with all API routes.
func NewRouter(svc *services.ConversationService) *mux.Router {
	router := mux.NewRouter()

	// Global middlewares
	router.Use(recovery.Middleware)

	healthHandler := NewHealthHandler()
	convHandler := NewConversationHandler(svc)

	// Health endpoint
	router.HandleFunc("/api/health", healthHandler.CheckHealth).Methods("GET")

	// Conversation lifecycle
	router.HandleFunc("/api/users/{userId}/conversations", convHandler.StartConversation).Methods("POST")
	router.HandleFunc("/api/users/{userId}/conversations", convHandler.ListConversations).Methods("GET")
	router.HandleFunc("/api/conversations/{conversationId:[0-9a-fA-F-]{36}}", convHandler.GetConversation).Methods("GET")
	router.HandleFunc("/api/conversations/{conversationId:[0-9a-fA-F-]{36}}/complete", convHandler.CompleteConversation).Methods("POST")
	router.HandleFunc("/api/conversations/{conversationId:[0-9a-fA-F-]{36}}/archive", convHandler.ArchiveConversation).Methods("POST")

	// Turns and transcript
	router.HandleFunc("/api/conversations/{conversationId:[0-9a-fA-F-]{36}}/messages", convHandler.PostMessage).Methods("POST")
	router.HandleFunc("/api/conversations/{conversationId:[0-9a-fA-F-]{36}}/messages", convHandler.ListMessages).Methods("GET")

	// Recommendation audit trail
	router.HandleFunc("/api/conversations/{conversationId:[0-9a-fA-F-]{36}}/recommendations", convHandler.ListRecommendations).Methods("GET")

	return router
}
