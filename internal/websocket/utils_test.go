package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/websocket"
)

// dialTestConn upgrades a loopback connection and returns the wrapped server
// side plus the raw client side.
func dialTestConn(t *testing.T) (*Conn, *websocket.Conn) {
	t.Helper()

	upgrader := websocket.Upgrader{}
	serverSide := make(chan *websocket.Conn, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		serverSide <- c
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	conn := Wrap(<-serverSide)
	t.Cleanup(func() { conn.Close() })
	return conn, client
}

func TestConnSerializesConcurrentWrites(t *testing.T) {
	conn, client := dialTestConn(t)

	// Pongs and notifications are written from different goroutines in the
	// live handler. Hammer the connection from several writers at once;
	// without the write lock gorilla panics on the concurrent write.
	const writers = 8
	const perWriter = 25

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				var err error
				if w%2 == 0 {
					err = conn.WriteTyped(PongResponse{Event: EventPong})
				} else {
					err = conn.WriteTyped(NotificationResponse{
						Event: EventNotification,
						Name:  "certificate.uploaded",
					})
				}
				if err != nil {
					t.Errorf("WriteTyped: %v", err)
					return
				}
			}
		}(w)
	}

	for i := 0; i < writers*perWriter; i++ {
		var frame map[string]interface{}
		if err := client.ReadJSON(&frame); err != nil {
			t.Fatalf("frame %d unreadable: %v", i, err)
		}
		event, _ := frame["event"].(string)
		if event != string(EventPong) && event != string(EventNotification) {
			t.Fatalf("frame %d has event %q", i, event)
		}
	}

	wg.Wait()
}

func TestConnReadAndWriteTypes(t *testing.T) {
	conn, client := dialTestConn(t)

	if err := client.WriteJSON(RequestEnvelope{Action: ActionPing}); err != nil {
		t.Fatalf("client write: %v", err)
	}

	var env RequestEnvelope
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if env.Action != ActionPing {
		t.Errorf("action = %q, want ping", env.Action)
	}

	if err := conn.WriteError("bad payload"); err != nil {
		t.Fatalf("WriteError: %v", err)
	}
	var errResp ErrorResponse
	if err := client.ReadJSON(&errResp); err != nil {
		t.Fatalf("client read: %v", err)
	}
	if errResp.Event != EventError || errResp.Error != "bad payload" {
		t.Errorf("error frame = %+v", errResp)
	}
}
