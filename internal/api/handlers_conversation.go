package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/kidspark/kidspark-engine/internal/api/respond"
	"github.com/kidspark/kidspark-engine/internal/api/validate"
	"github.com/kidspark/kidspark-engine/internal/model"
	"github.com/kidspark/kidspark-engine/internal/services"
)

// ConversationHandler is a thin HTTP transport over ConversationService.
type ConversationHandler struct {
	svc *services.ConversationService
}

func NewConversationHandler(svc *services.ConversationService) *ConversationHandler {
	return &ConversationHandler{svc: svc}
}

// startResponse bundles the new conversation with the greeting turn so a
// client can render the first prompt without a second round trip.
type startResponse struct {
	Conversation *model.Conversation  `json:"conversation"`
	Turn         *services.TurnResult `json:"turn"`
}

// StartConversation POST /api/users/{userId}/conversations
func (h *ConversationHandler) StartConversation(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	if err := validate.UserID(userID); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	conv, turn, err := h.svc.StartConversation(r.Context(), userID)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, startResponse{Conversation: conv, Turn: turn})
}

// ListConversations GET /api/users/{userId}/conversations
func (h *ConversationHandler) ListConversations(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	if err := validate.UserID(userID); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	convs, err := h.svc.ListConversations(r.Context(), userID)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	if convs == nil {
		convs = []*model.Conversation{}
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"conversations": convs, "count": len(convs)})
}

// GetConversation GET /api/conversations/{conversationId}
func (h *ConversationHandler) GetConversation(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["conversationId"]
	conv, err := h.svc.GetConversation(r.Context(), id)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, conv)
}

type turnRequestBody struct {
	Content  string `json:"content"`
	Location *struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	} `json:"location,omitempty"`
}

// PostMessage POST /api/conversations/{conversationId}/messages
func (h *ConversationHandler) PostMessage(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["conversationId"]
	var body turnRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	if err := validate.TurnContent(body.Content); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	req := services.TurnRequest{ConversationID: id, Content: body.Content}
	if body.Location != nil {
		if err := validate.Coordinates(body.Location.Lat, body.Location.Lng); err != nil {
			respond.WriteBadRequest(w, err.Error())
			return
		}
		req.Location = &model.LatLng{Lat: body.Location.Lat, Lng: body.Location.Lng}
	}
	turn, err := h.svc.HandleTurn(r.Context(), req)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, turn)
}

// ListMessages GET /api/conversations/{conversationId}/messages
func (h *ConversationHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["conversationId"]
	req := model.ListMessagesRequest{ConversationID: id}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respond.WriteBadRequest(w, "limit must be a positive integer")
			return
		}
		req.Limit = n
	}
	msgs, err := h.svc.ListMessages(r.Context(), req)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	if msgs == nil {
		msgs = []*model.ChatMessage{}
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"messages": msgs, "count": len(msgs)})
}

// ListRecommendations GET /api/conversations/{conversationId}/recommendations
func (h *ConversationHandler) ListRecommendations(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["conversationId"]
	recs, err := h.svc.ListRecommendations(r.Context(), id)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	if recs == nil {
		recs = []*model.Recommendation{}
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"recommendations": recs, "count": len(recs)})
}

// CompleteConversation POST /api/conversations/{conversationId}/complete
func (h *ConversationHandler) CompleteConversation(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["conversationId"]
	if err := h.svc.CompleteConversation(r.Context(), id); err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ArchiveConversation POST /api/conversations/{conversationId}/archive
func (h *ConversationHandler) ArchiveConversation(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["conversationId"]
	if err := h.svc.ArchiveConversation(r.Context(), id); err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
