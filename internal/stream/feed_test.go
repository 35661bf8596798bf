package stream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
)

// wsServer upgrades each connection, records the subscribe command, and
// replays the given frames.
func wsServer(t *testing.T, frames []string, gotSub chan<- subscribeCmd) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		defer conn.Close()

		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var cmd subscribeCmd
		if err := json.Unmarshal(data, &cmd); err != nil {
			t.Errorf("bad subscribe command: %v", err)
			return
		}
		select {
		case gotSub <- cmd:
		default:
		}

		for _, f := range frames {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(f)); err != nil {
				return
			}
		}
		// Hold the connection open until the client goes away.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
}

func TestFeedSubscribesAndDelivers(t *testing.T) {
	gotSub := make(chan subscribeCmd, 1)
	srv := wsServer(t, []string{
		`{"type":"observation","station":"KORD","observed_ts":1705320000000000,"temp_c":-3.5}`,
	}, gotSub)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	feed := NewFeed(FeedConfig{
		URL:      url,
		Stations: []string{"KORD", "KMDW"},
	}, nil)

	if err := feed.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	select {
	case cmd := <-gotSub:
		if cmd.Type != "subscribe" || len(cmd.Stations) != 2 {
			t.Errorf("subscribe = %+v", cmd)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no subscribe command received")
	}

	select {
	case msg := <-feed.Messages():
		if !strings.Contains(string(msg.Data), `"station":"KORD"`) {
			t.Errorf("message = %s", msg.Data)
		}
		if msg.ReceivedAt.IsZero() {
			t.Error("ReceivedAt not stamped")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no message delivered")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := feed.Stop(ctx); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
}

func TestFeedStopBeforeConnect(t *testing.T) {
	feed := NewFeed(FeedConfig{URL: "ws://127.0.0.1:1"}, nil)

	if err := feed.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := feed.Stop(ctx); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	if _, ok := <-feed.Messages(); ok {
		t.Error("Messages should be closed after Stop")
	}

	if err := feed.Start(context.Background()); err != ErrAlreadyClosed {
		t.Errorf("Start after Stop = %v, want ErrAlreadyClosed", err)
	}
}
