package http

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/broilr/pkg/adapters/memory"
	"github.com/aretw0/broilr/pkg/domain"
	"github.com/aretw0/broilr/pkg/speech"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialVoice(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	ws, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(url, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { ws.Close() })
	return ws
}

// readUntil reads frames until match returns true.
func readUntil(t *testing.T, ws *websocket.Conn, match func(VoiceFrame) bool) VoiceFrame {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		var f VoiceFrame
		require.NoError(t, ws.ReadJSON(&f))
		if match(f) {
			return f
		}
	}
}

func TestVoice_TranscriptDrivesConversation(t *testing.T) {
	observed := make(chan speech.Transition, 64)
	ts := newTestServer(t, memory.NewBackend(), WithVoiceObserver(func(tr speech.Transition) {
		select {
		case observed <- tr:
		default:
		}
	}))
	conv := create(t, ts)
	ws := dialVoice(t, ts.URL+"/conversations/"+conv.ID+"/voice")

	require.NoError(t, ws.WriteJSON(VoiceFrame{Type: FrameArm}))
	readUntil(t, ws, func(f VoiceFrame) bool { return f.Type == FrameStart })
	readUntil(t, ws, func(f VoiceFrame) bool { return f.Type == FrameState && f.State == "capturing" })

	require.NoError(t, ws.WriteJSON(VoiceFrame{Type: FrameResult, Text: "I want something new"}))
	reply := readUntil(t, ws, func(f VoiceFrame) bool { return f.Type == FrameReply })
	assert.Equal(t, domain.StageDish, reply.Stage)

	require.NoError(t, ws.WriteJSON(VoiceFrame{Type: FrameDisarm}))
	readUntil(t, ws, func(f VoiceFrame) bool { return f.Type == FrameState && f.State == "idle" })

	first := <-observed
	assert.Equal(t, speech.StateCapturing, first.To)
}

func TestVoice_UnknownFrame(t *testing.T) {
	ts := newTestServer(t, memory.NewBackend())
	conv := create(t, ts)
	ws := dialVoice(t, ts.URL+"/conversations/"+conv.ID+"/voice")

	require.NoError(t, ws.WriteJSON(VoiceFrame{Type: "shout"}))
	f := readUntil(t, ws, func(f VoiceFrame) bool { return f.Type == FrameError })
	assert.Contains(t, f.Text, "shout")
}

func TestVoice_UnknownConversation(t *testing.T) {
	ts := newTestServer(t, memory.NewBackend())
	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/conversations/nope/voice", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
