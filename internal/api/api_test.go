package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kidspark/kidspark-engine/internal/catalog"
	"github.com/kidspark/kidspark-engine/internal/model"
	"github.com/kidspark/kidspark-engine/internal/services"
	"github.com/kidspark/kidspark-engine/internal/store"
	"github.com/kidspark/kidspark-engine/internal/store/sqlite"
)

var (
	apiStore  store.Store
	apiServer *httptest.Server
)

// TestMain sets up a real store and HTTP server shared by the API tests.
func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "api-test-*")
	if err != nil {
		fmt.Printf("Failed to create temp dir: %v\n", err)
		os.Exit(1)
	}

	apiStore, err = sqlite.New(filepath.Join(dir, "api-test.db"))
	if err != nil {
		fmt.Printf("Failed to open store: %v\n", err)
		os.Exit(1)
	}

	svc := services.NewConversationService(apiStore, catalog.NewStoreSource(apiStore))
	apiServer = httptest.NewServer(NewRouter(svc))

	code := m.Run()

	apiServer.Close()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

func seedActivities(t *testing.T) {
	t.Helper()
	ctx := t.Context()
	for _, a := range []model.Activity{
		{ActivityID: "museum", Name: "Science Museum", AgeMin: 3, AgeMax: 12, IsIndoor: true, IsFree: true, AverageRating: 4.7},
		{ActivityID: "zoo", Name: "City Zoo", AgeMin: 1, AgeMax: 14, IsOutdoor: true, PriceMax: 18, AverageRating: 4.4},
	} {
		a := a
		require.NoError(t, apiStore.Activities().Upsert(ctx, &a))
	}
}

func postJSON(t *testing.T, path string, body interface{}) *http.Response {
	t.Helper()
	buf := &bytes.Buffer{}
	require.NoError(t, json.NewEncoder(buf).Encode(body))
	resp, err := http.Post(apiServer.URL+path, "application/json", buf)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func startConversation(t *testing.T, userID string) (string, map[string]interface{}) {
	t.Helper()
	resp := postJSON(t, "/api/users/"+userID+"/conversations", map[string]string{})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var body struct {
		Conversation model.Conversation     `json:"conversation"`
		Turn         map[string]interface{} `json:"turn"`
	}
	decode(t, resp, &body)
	require.NotEmpty(t, body.Conversation.ConversationID)
	return body.Conversation.ConversationID, body.Turn
}

func TestStartConversation_ReturnsGreetingTurn(t *testing.T) {
	id, turn := startConversation(t, "api_user1")
	assert.Len(t, id, 36, "conversation id should be a UUID")
	msgs, ok := turn["messages"].([]interface{})
	require.True(t, ok, "greeting turn must carry messages")
	assert.NotEmpty(t, msgs)
	assert.NotEmpty(t, turn["quickReplies"], "age quick replies expected")
}

func TestStartConversation_InvalidUserID(t *testing.T) {
	resp := postJSON(t, "/api/users/Bad%20User/conversations", map[string]string{})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetConversation_NotFound(t *testing.T) {
	resp, err := http.Get(apiServer.URL + "/api/conversations/00000000-0000-0000-0000-000000000000")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestFullDialogue_EndsWithRecommendations(t *testing.T) {
	seedActivities(t)
	id, _ := startConversation(t, "api_user2")

	var turn services.TurnResult
	for _, input := range []string{"4", "science, animals", "indoor", "free"} {
		resp := postJSON(t, "/api/conversations/"+id+"/messages", map[string]string{"content": input})
		require.Equal(t, http.StatusOK, resp.StatusCode, "turn %q", input)
		turn = services.TurnResult{}
		decode(t, resp, &turn)
	}

	require.NotEmpty(t, turn.Recommendations)
	assert.Equal(t, "museum", turn.Recommendations[0].Activity.ActivityID)
	assert.Equal(t, 1.0, turn.Recommendations[0].Score)

	// Transcript has both user and assistant rows.
	resp, err := http.Get(apiServer.URL + "/api/conversations/" + id + "/messages")
	require.NoError(t, err)
	var transcript struct {
		Messages []*model.ChatMessage `json:"messages"`
		Count    int                  `json:"count"`
	}
	decode(t, resp, &transcript)
	assert.Greater(t, transcript.Count, 4)

	// Audit rows are queryable afterwards.
	resp, err = http.Get(apiServer.URL + "/api/conversations/" + id + "/recommendations")
	require.NoError(t, err)
	var recs struct {
		Recommendations []*model.Recommendation `json:"recommendations"`
		Count           int                     `json:"count"`
	}
	decode(t, resp, &recs)
	require.NotZero(t, recs.Count)
	assert.Equal(t, "museum", recs.Recommendations[0].ActivityID)
}

func TestPostMessage_LocationChangesRanking(t *testing.T) {
	ctx := t.Context()
	for _, a := range []model.Activity{
		{ActivityID: "park-near", Name: "Near Park", AgeMin: 1, AgeMax: 12, IsIndoor: true, IsOutdoor: true, IsFree: true, Location: model.LatLng{Lat: 52.5, Lng: 13.4}},
		{ActivityID: "park-far", Name: "Far Park", AgeMin: 1, AgeMax: 12, IsIndoor: true, IsOutdoor: true, IsFree: true, Location: model.LatLng{Lat: 48.14, Lng: 11.58}},
	} {
		a := a
		require.NoError(t, apiStore.Activities().Upsert(ctx, &a))
	}

	id, _ := startConversation(t, "api_user3")
	loc := map[string]float64{"lat": 52.52, "lng": 13.405}
	var turn services.TurnResult
	for _, input := range []string{"5", "unsure", "both", "free"} {
		resp := postJSON(t, "/api/conversations/"+id+"/messages", map[string]interface{}{"content": input, "location": loc})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		turn = services.TurnResult{}
		decode(t, resp, &turn)
	}
	require.NotEmpty(t, turn.Recommendations)
	assert.Equal(t, "park-near", turn.Recommendations[0].Activity.ActivityID)
}

func TestPostMessage_InvalidCoordinatesRejected(t *testing.T) {
	id, _ := startConversation(t, "api_user4")
	resp := postJSON(t, "/api/conversations/"+id+"/messages", map[string]interface{}{
		"content":  "4",
		"location": map[string]float64{"lat": 120, "lng": 0},
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestArchive_ThenTurnConflicts(t *testing.T) {
	id, _ := startConversation(t, "api_user5")

	resp := postJSON(t, "/api/conversations/"+id+"/archive", map[string]string{})
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = postJSON(t, "/api/conversations/"+id+"/messages", map[string]string{"content": "4"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// A second archive is also a conflict.
	resp = postJSON(t, "/api/conversations/"+id+"/archive", map[string]string{})
	resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestListConversations_ScopedToUser(t *testing.T) {
	id, _ := startConversation(t, "api_user6")
	_, _ = startConversation(t, "api_user7")

	resp, err := http.Get(apiServer.URL + "/api/users/api_user6/conversations")
	require.NoError(t, err)
	var body struct {
		Conversations []*model.Conversation `json:"conversations"`
		Count         int                   `json:"count"`
	}
	decode(t, resp, &body)
	require.Equal(t, 1, body.Count)
	assert.Equal(t, id, body.Conversations[0].ConversationID)
	assert.Equal(t, "api_user6", body.Conversations[0].UserID)
}
