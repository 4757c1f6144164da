package notify

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type publishedMsg struct {
	subject string
	data    []byte
}

// fakeNATSServer speaks enough of the NATS client protocol for a single
// connection: it sends INFO, answers PING with PONG and captures PUB payloads.
func fakeNATSServer(t *testing.T) (string, <-chan publishedMsg) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	msgs := make(chan publishedMsg, 8)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer func() { _ = conn.Close() }()

		_, _ = io.WriteString(conn, `INFO {"server_id":"test","version":"2.10.0","proto":1,"max_payload":1048576}`+"\r\n")
		r := bufio.NewReader(conn)
		for {
			line, err := r.ReadString('\n')
			if err != nil {
				return
			}
			line = strings.TrimRight(line, "\r\n")
			switch {
			case strings.HasPrefix(line, "PING"):
				if _, err := io.WriteString(conn, "PONG\r\n"); err != nil {
					return
				}
			case strings.HasPrefix(line, "PUB "):
				fields := strings.Fields(line)
				size, err := strconv.Atoi(fields[len(fields)-1])
				if err != nil {
					return
				}
				payload := make([]byte, size+2)
				if _, err := io.ReadFull(r, payload); err != nil {
					return
				}
				msgs <- publishedMsg{subject: fields[1], data: payload[:size]}
			}
		}
	}()
	return "nats://" + ln.Addr().String(), msgs
}

func TestNATSPublisherPublishDrift(t *testing.T) {
	url, msgs := fakeNATSServer(t)

	p, err := NewNATSPublisher(url, "backupstate.drift", slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	require.NoError(t, p.PublishDrift(ctx, DriftEvent{
		RunID:       "run-1",
		AddedTables: []string{"audit_log"},
	}))

	select {
	case msg := <-msgs:
		assert.Equal(t, "backupstate.drift", msg.subject)
		var ev DriftEvent
		require.NoError(t, json.Unmarshal(msg.data, &ev))
		assert.Equal(t, "run-1", ev.RunID)
		assert.Equal(t, []string{"audit_log"}, ev.AddedTables)
	case <-time.After(2 * time.Second):
		t.Fatal("drift event was not published")
	}
}

func TestFlushContextKeepsExistingDeadline(t *testing.T) {
	deadline := time.Now().Add(time.Minute)
	parent, cancel := context.WithDeadline(t.Context(), deadline)
	defer cancel()

	ctx, release := flushContext(parent)
	defer release()
	got, ok := ctx.Deadline()
	require.True(t, ok)
	assert.Equal(t, deadline, got)

	bounded, release2 := flushContext(context.Background())
	defer release2()
	_, ok = bounded.Deadline()
	assert.True(t, ok)
}
