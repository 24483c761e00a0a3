package ws

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/mentorlink/notifier/internal/auth"
	"github.com/mentorlink/notifier/internal/hub"
	"github.com/mentorlink/notifier/internal/presence"
	"github.com/mentorlink/notifier/internal/room"
)

const (
	testSecret = "test-secret"
	testHeader = "X-Auth-Token"
)

func newTestServer(t *testing.T) (*httptest.Server, *hub.Hub, *presence.Registry) {
	t.Helper()
	logger := zap.NewNop()
	registry := presence.NewRegistry(logger)
	h := hub.NewHub(registry, logger)
	handler := NewHandler(
		auth.NewAuthenticator(testSecret, logger),
		h,
		testHeader,
		8,
		nil,
		logger,
	)
	server := httptest.NewServer(http.HandlerFunc(handler.Handle))
	t.Cleanup(server.Close)
	t.Cleanup(h.Stop)
	return server, h, registry
}

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func signedToken(t *testing.T, userID, role string) string {
	t.Helper()
	claims := &auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Role: role,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

func dial(t *testing.T, server *httptest.Server, token string) *websocket.Conn {
	t.Helper()
	header := http.Header{}
	header.Set(testHeader, token)
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL(server), header)
	if err != nil {
		t.Fatalf("handshake failed: %v", err)
	}
	resp.Body.Close()
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestHandle_RefusesMissingToken(t *testing.T) {
	server, _, _ := newTestServer(t)

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(server), nil)
	if err == nil {
		t.Fatal("handshake without a credential must be refused")
	}
	if resp == nil {
		t.Fatal("expected an HTTP response for the refused handshake")
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestHandle_RefusesInvalidToken(t *testing.T) {
	server, _, registry := newTestServer(t)

	header := http.Header{}
	header.Set(testHeader, "not-a-token")
	_, resp, err := websocket.DefaultDialer.Dial(wsURL(server), header)
	if err == nil {
		t.Fatal("handshake with a malformed credential must be refused")
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	if registry.IsLive("7") {
		t.Error("a refused handshake must leave no presence state")
	}
}

func TestHandle_AdmitsAndAutoJoins(t *testing.T) {
	server, h, registry := newTestServer(t)

	dial(t, server, signedToken(t, "7", "student"))

	waitFor(t, "admission", func() bool { return registry.IsLive("7") })
	if h.MemberCount(room.ForUser("7")) != 1 {
		t.Error("connection must be a member of its own user room")
	}
	if h.MemberCount(room.ForRole("student")) != 1 {
		t.Error("connection must be a member of its role room")
	}
}

func TestHandle_TokenViaQueryParameter(t *testing.T) {
	server, _, registry := newTestServer(t)

	token := signedToken(t, "7", "student")
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL(server)+"?token="+token, nil)
	if err != nil {
		t.Fatalf("handshake with query credential failed: %v", err)
	}
	resp.Body.Close()
	defer conn.Close()

	waitFor(t, "admission", func() bool { return registry.IsLive("7") })
}

func TestHandle_SubscribeAndReceive(t *testing.T) {
	server, h, registry := newTestServer(t)

	conn := dial(t, server, signedToken(t, "7", "student"))
	waitFor(t, "admission", func() bool { return registry.IsLive("7") })

	err := conn.WriteJSON(SubscribeRequest{
		Message: Message{Event: EventSubscribeStudent},
		ID:      "7",
	})
	if err != nil {
		t.Fatalf("failed to send subscribe request: %v", err)
	}
	waitFor(t, "room join", func() bool {
		return h.MemberCount(room.ForStudent("7")) == 1
	})

	payload := []byte(`{"event":"doubt:created","data":{"doubtId":"12"}}`)
	h.Broadcast(payload, []room.Address{room.ForStudent("7")})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, received, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("failed to read delivered event: %v", err)
	}
	if string(received) != string(payload) {
		t.Errorf("delivered %s, want %s", received, payload)
	}
}

func TestHandle_UnauthorizedSubscribeIgnored(t *testing.T) {
	server, h, registry := newTestServer(t)

	conn := dial(t, server, signedToken(t, "7", "student"))
	waitFor(t, "admission", func() bool { return registry.IsLive("7") })

	err := conn.WriteJSON(SubscribeRequest{
		Message: Message{Event: EventSubscribeStudent},
		ID:      "9",
	})
	if err != nil {
		t.Fatalf("failed to send subscribe request: %v", err)
	}

	time.Sleep(200 * time.Millisecond)
	if h.MemberCount(room.ForStudent("9")) != 0 {
		t.Error("a join for another student's room must be silently ignored")
	}
}

func TestHandle_DisconnectCleansUp(t *testing.T) {
	server, h, registry := newTestServer(t)

	conn := dial(t, server, signedToken(t, "3", "mentor"))
	waitFor(t, "admission", func() bool { return registry.IsLive("3") })

	conn.Close()

	waitFor(t, "cleanup", func() bool { return !registry.IsLive("3") })
	if h.MemberCount(room.ForUser("3")) != 0 {
		t.Error("disconnected connection must be absent from every room")
	}
}
