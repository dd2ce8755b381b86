package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
)

// serverMessage is the union of everything the server sends, for decoding
// in tests.
type serverMessage struct {
	Type    string          `json:"type"`
	ID      string          `json:"id"`
	Value   json.RawMessage `json:"value"`
	Message string          `json:"message"`
}

func setupTestServer() (*Server, string, func()) {
	s := &Server{
		connectionManager: NewConnectionManager(),
		identityManager:   NewIdentityManager(),
		lobbyManager:      NewLobbyManager(),
		channels:          NewChannelStore(),
		rateLimiter:       NewRateLimiter(100, time.Second),
	}

	server := httptest.NewServer(s.RegisterRoutes())
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/websocket"

	return s, url, server.Close
}

func sendEnvelope(t *testing.T, ctx context.Context, conn *websocket.Conn, msg ClientMessage) {
	t.Helper()
	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("Failed to marshal envelope: %v", err)
	}
	if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
		t.Fatalf("Failed to send envelope: %v", err)
	}
}

func readMessage(t *testing.T, ctx context.Context, conn *websocket.Conn) serverMessage {
	t.Helper()
	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("Failed to read message: %v", err)
	}
	var msg serverMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("Failed to parse message %q: %v", data, err)
	}
	return msg
}

// readInit drains messages until the init for the given channel arrives.
func readInit(t *testing.T, ctx context.Context, conn *websocket.Conn, id string) serverMessage {
	t.Helper()
	for i := 0; i < 64; i++ {
		msg := readMessage(t, ctx, conn)
		if msg.Type == "init" && msg.ID == id {
			return msg
		}
	}
	t.Fatalf("No init for '%s' within 64 messages", id)
	return serverMessage{}
}

func createUser(t *testing.T, ctx context.Context, conn *websocket.Conn, name string) UserInfo {
	t.Helper()
	sendEnvelope(t, ctx, conn, ClientMessage{
		Type:    "startevent",
		ID:      "start_createuser",
		Payload: json.RawMessage(`{"playerName":"` + name + `"}`),
	})
	msg := readInit(t, ctx, conn, "user")
	var info UserInfo
	if err := json.Unmarshal(msg.Value, &info); err != nil {
		t.Fatalf("Failed to parse user info: %v", err)
	}
	return info
}

func TestRootHandler(t *testing.T) {
	assert := assert.New(t)

	_, url, cleanup := setupTestServer()
	defer cleanup()

	base := strings.Replace(strings.TrimSuffix(url, "/websocket"), "ws", "http", 1)
	resp, err := http.Get(base + "/")
	assert.NoError(err)
	defer resp.Body.Close()

	assert.Equal(http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	assert.NoError(err)
	assert.JSONEq(`{"message":"monopolis server"}`, string(body))
}

func TestHealthHandler(t *testing.T) {
	assert := assert.New(t)

	s := &Server{}
	server := httptest.NewServer(http.HandlerFunc(s.healthHandler))
	defer server.Close()

	resp, err := http.Get(server.URL)
	assert.NoError(err)
	defer resp.Body.Close()

	assert.Equal(http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	assert.NoError(err)
	assert.JSONEq(`{"status":"up"}`, string(body))
}

func TestCORSMiddleware(t *testing.T) {
	assert := assert.New(t)

	s := &Server{}
	handler := s.corsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodOptions, "/", nil))
	assert.Equal(http.StatusNoContent, recorder.Code)
	assert.Equal("*", recorder.Header().Get("Access-Control-Allow-Origin"))

	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(http.StatusOK, recorder.Code)
	assert.Equal("*", recorder.Header().Get("Access-Control-Allow-Origin"))
}

func TestWebSocketPingPong(t *testing.T) {
	assert := assert.New(t)

	ctx := context.Background()
	_, url, cleanup := setupTestServer()
	defer cleanup()

	conn, _, err := websocket.Dial(ctx, url, nil)
	assert.NoError(err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	sendEnvelope(t, ctx, conn, ClientMessage{Type: "ping"})
	assert.Equal("pong", readMessage(t, ctx, conn).Type)
}

func TestWebSocketInvalidJSON(t *testing.T) {
	assert := assert.New(t)

	ctx := context.Background()
	_, url, cleanup := setupTestServer()
	defer cleanup()

	conn, _, err := websocket.Dial(ctx, url, nil)
	assert.NoError(err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	assert.NoError(conn.Write(ctx, websocket.MessageText, []byte("junk")))

	msg := readMessage(t, ctx, conn)
	assert.Equal("error", msg.Type)
	assert.Contains(msg.Message, "MALFORMED_ENVELOPE")

	// the connection survives a bad message
	sendEnvelope(t, ctx, conn, ClientMessage{Type: "ping"})
	assert.Equal("pong", readMessage(t, ctx, conn).Type)
}

func TestWebSocketUnknownEnvelopeType(t *testing.T) {
	assert := assert.New(t)

	ctx := context.Background()
	_, url, cleanup := setupTestServer()
	defer cleanup()

	conn, _, err := websocket.Dial(ctx, url, nil)
	assert.NoError(err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	sendEnvelope(t, ctx, conn, ClientMessage{Type: "subscribe", ID: "lobbyList"})

	msg := readMessage(t, ctx, conn)
	assert.Equal("error", msg.Type)
	assert.Contains(msg.Message, "INVALID_MESSAGE_TYPE")
}

func TestWebSocketCreateUser(t *testing.T) {
	assert := assert.New(t)

	ctx := context.Background()
	_, url, cleanup := setupTestServer()
	defer cleanup()

	conn, _, err := websocket.Dial(ctx, url, nil)
	assert.NoError(err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	info := createUser(t, ctx, conn, "Anna")
	assert.NotEmpty(info.LocalID)
	assert.Equal("Anna", info.PlayerName)

	// a pre-lobby user is subscribed to the global listing
	listing := readInit(t, ctx, conn, "lobbyList")
	assert.JSONEq(`[]`, string(listing.Value))
}

func TestWebSocketEventRequiresUser(t *testing.T) {
	assert := assert.New(t)

	ctx := context.Background()
	_, url, cleanup := setupTestServer()
	defer cleanup()

	conn, _, err := websocket.Dial(ctx, url, nil)
	assert.NoError(err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	sendEnvelope(t, ctx, conn, ClientMessage{Type: "event", ID: "monopolis_requestdiceroll"})

	msg := readMessage(t, ctx, conn)
	assert.Equal("error", msg.Type)
	assert.Contains(msg.Message, "NOT_REGISTERED")
}

func TestWebSocketLobbyCreateReplaysChannels(t *testing.T) {
	assert := assert.New(t)

	ctx := context.Background()
	_, url, cleanup := setupTestServer()
	defer cleanup()

	conn, _, err := websocket.Dial(ctx, url, nil)
	assert.NoError(err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	createUser(t, ctx, conn, "Anna")
	readInit(t, ctx, conn, "lobbyList")

	sendEnvelope(t, ctx, conn, ClientMessage{
		Type:    "startevent",
		ID:      "start_lobbycreate",
		Payload: json.RawMessage(`{"lobbyName":"Friday Night"}`),
	})

	lobbyInit := readInit(t, ctx, conn, "lobbyId")
	var lobbyID string
	assert.NoError(json.Unmarshal(lobbyInit.Value, &lobbyID))
	assert.NoError(ValidateLobbyID(lobbyID))

	turn := readInit(t, ctx, conn, "monopolis:current_turn")
	assert.Contains(string(turn.Value), `"type":"lobby"`)
}

func TestWebSocketLobbySetupEvents(t *testing.T) {
	assert := assert.New(t)

	ctx := context.Background()
	s, url, cleanup := setupTestServer()
	defer cleanup()

	conn, _, err := websocket.Dial(ctx, url, nil)
	assert.NoError(err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	createUser(t, ctx, conn, "Anna")
	readInit(t, ctx, conn, "lobbyList")
	sendEnvelope(t, ctx, conn, ClientMessage{
		Type:    "startevent",
		ID:      "start_lobbycreate",
		Payload: json.RawMessage(`{"lobbyName":"Friday Night"}`),
	})
	lobbyInit := readInit(t, ctx, conn, "lobbyId")
	var lobbyID string
	assert.NoError(json.Unmarshal(lobbyInit.Value, &lobbyID))

	sendEnvelope(t, ctx, conn, ClientMessage{
		Type:    "event",
		ID:      "lobby_addteam",
		Payload: json.RawMessage(`{"teamName":"Hats"}`),
	})

	// the publish lands as a change on the lobbyData channel
	for i := 0; i < 64; i++ {
		msg := readMessage(t, ctx, conn)
		if msg.Type == "" && msg.ID == "monopolis:lobbyData" {
			assert.Contains(string(msg.Value), "Hats")
			break
		}
		if i == 63 {
			t.Fatal("No lobbyData change received")
		}
	}

	lobby, err := s.lobbyManager.Get(lobbyID)
	assert.NoError(err)
	assert.Len(lobby.Game.Lobby.Teams, 1)
}

func TestWebSocketResume(t *testing.T) {
	assert := assert.New(t)

	ctx := context.Background()
	_, url, cleanup := setupTestServer()
	defer cleanup()

	first, _, err := websocket.Dial(ctx, url, nil)
	assert.NoError(err)

	info := createUser(t, ctx, first, "Anna")
	readInit(t, ctx, first, "lobbyList")
	sendEnvelope(t, ctx, first, ClientMessage{
		Type:    "startevent",
		ID:      "start_lobbycreate",
		Payload: json.RawMessage(`{"lobbyName":"Friday Night"}`),
	})
	lobbyInit := readInit(t, ctx, first, "lobbyId")
	var lobbyID string
	assert.NoError(json.Unmarshal(lobbyInit.Value, &lobbyID))

	// connection drops
	first.Close(websocket.StatusNormalClosure, "")
	time.Sleep(50 * time.Millisecond)

	second, _, err := websocket.Dial(ctx, url, nil)
	assert.NoError(err)
	defer second.Close(websocket.StatusNormalClosure, "")

	sendEnvelope(t, ctx, second, ClientMessage{Type: "resume", LocalID: info.LocalID})

	userInit := readInit(t, ctx, second, "user")
	var resumed UserInfo
	assert.NoError(json.Unmarshal(userInit.Value, &resumed))
	assert.Equal(info.LocalID, resumed.LocalID)
	assert.Equal(lobbyID, resumed.LobbyID, "resume reattaches to the same lobby")

	turn := readInit(t, ctx, second, "monopolis:current_turn")
	assert.Contains(string(turn.Value), `"type":"lobby"`)
}

func TestWebSocketResumeUnknownIdentity(t *testing.T) {
	assert := assert.New(t)

	ctx := context.Background()
	_, url, cleanup := setupTestServer()
	defer cleanup()

	conn, _, err := websocket.Dial(ctx, url, nil)
	assert.NoError(err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	sendEnvelope(t, ctx, conn, ClientMessage{Type: "resume", LocalID: "nobody"})

	msg := readMessage(t, ctx, conn)
	assert.Equal("error", msg.Type)
	assert.Contains(msg.Message, "UNKNOWN_IDENTITY")
}

func TestWebSocketRateLimiting(t *testing.T) {
	assert := assert.New(t)

	ctx := context.Background()
	s, url, cleanup := setupTestServer()
	defer cleanup()
	s.rateLimiter = NewRateLimiter(2, time.Minute)

	conn, _, err := websocket.Dial(ctx, url, nil)
	assert.NoError(err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	sendEnvelope(t, ctx, conn, ClientMessage{Type: "ping"})
	sendEnvelope(t, ctx, conn, ClientMessage{Type: "ping"})
	sendEnvelope(t, ctx, conn, ClientMessage{Type: "ping"})

	assert.Equal("pong", readMessage(t, ctx, conn).Type)
	assert.Equal("pong", readMessage(t, ctx, conn).Type)

	msg := readMessage(t, ctx, conn)
	assert.Equal("error", msg.Type)
	assert.Contains(msg.Message, "RATE_LIMITED")
}
