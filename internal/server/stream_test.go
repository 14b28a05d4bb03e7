package server

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

func streamQuery(c creds) string {
	return "?" + url.Values{"player": {c.PlayerID}, "token": {c.Token}}.Encode()
}

func TestEventStream(t *testing.T) {
	e := newTestEnv(t)
	code, players, s := e.started(t)
	cur := players[s.CurrentPlayerID]

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, e.srv.URL+"/api/sessions/"+code+"/events"+streamQuery(cur), nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content-type = %q", ct)
	}

	events := make(chan SessionView)
	go func() {
		sc := bufio.NewScanner(resp.Body)
		sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
		for sc.Scan() {
			data, ok := strings.CutPrefix(sc.Text(), "data: ")
			if !ok {
				continue
			}
			var v SessionView
			if json.Unmarshal([]byte(data), &v) == nil {
				select {
				case events <- v:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	next := func() SessionView {
		t.Helper()
		select {
		case v := <-events:
			return v
		case <-ctx.Done():
			t.Fatal("timed out waiting for event")
			return SessionView{}
		}
	}

	first := next()
	if first.Code != code || first.Phase != "wait_roll" {
		t.Fatalf("first event = %+v", first)
	}
	connected := false
	for _, p := range first.Players {
		if p.ID == cur.PlayerID {
			connected = p.Connected
		}
	}
	if !connected {
		t.Error("streaming player not marked connected")
	}

	if status, data := e.do(t, http.MethodPost, "/api/sessions/"+code+"/roll", nil, &cur); status != http.StatusOK {
		t.Fatalf("roll: %d %s", status, data)
	}
	if v := next(); v.Phase != "choose_direction" || v.Version <= first.Version {
		t.Errorf("after roll: phase %s version %d", v.Phase, v.Version)
	}
}

func TestEventStreamRejectsBadToken(t *testing.T) {
	e := newTestEnv(t)
	code, players, s := e.started(t)
	bad := players[s.CurrentPlayerID]
	bad.Token = "nope"

	status, _ := e.do(t, http.MethodGet, "/api/sessions/"+code+"/events"+streamQuery(bad), nil, nil)
	if status != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", status)
	}
}

func TestWebSocketStream(t *testing.T) {
	e := newTestEnv(t)
	code, players, s := e.started(t)
	cur := players[s.CurrentPlayerID]

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := "ws" + strings.TrimPrefix(e.srv.URL, "http") + "/api/sessions/" + code + "/ws" + streamQuery(cur)
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.CloseNow()

	var first SessionView
	if err := wsjson.Read(ctx, conn, &first); err != nil {
		t.Fatalf("read: %v", err)
	}
	if first.Code != code {
		t.Fatalf("first view = %+v", first)
	}

	if status, data := e.do(t, http.MethodPost, "/api/sessions/"+code+"/roll", nil, &cur); status != http.StatusOK {
		t.Fatalf("roll: %d %s", status, data)
	}
	var update SessionView
	if err := wsjson.Read(ctx, conn, &update); err != nil {
		t.Fatalf("read update: %v", err)
	}
	if update.Phase != "choose_direction" {
		t.Errorf("phase = %s", update.Phase)
	}

	conn.Close(websocket.StatusNormalClosure, "done")

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		sess, err := e.engine.Session(ctx, code)
		if err != nil {
			t.Fatal(err)
		}
		if !sess.Players[cur.PlayerID].Connected {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Error("player still connected after closing the stream")
}
