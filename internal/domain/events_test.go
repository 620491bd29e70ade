package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEvent_Join(t *testing.T) {
	ev, err := DecodeEvent([]byte(`{"type":"join","roomId":"general","userId":"u1","username":"alice"}`))
	require.NoError(t, err)

	join, ok := ev.(JoinEvent)
	require.True(t, ok)
	assert.Equal(t, JoinEvent{RoomID: "general", UserID: "u1", Username: "alice"}, join)
	assert.Equal(t, EventTypeJoin, ev.Type())
	assert.Equal(t, "general", ev.Room())
}

func TestDecodeEvent_Message(t *testing.T) {
	ev, err := DecodeEvent([]byte(`{"type":"message","roomId":"general","userId":"u1","username":"alice","content":"hi","encrypted":true}`))
	require.NoError(t, err)

	msg, ok := ev.(MessageEvent)
	require.True(t, ok)
	assert.Equal(t, "hi", msg.Content)
	assert.True(t, msg.Encrypted)
	assert.Equal(t, "alice", msg.Username)
}

func TestDecodeEvent_MessageEncryptedDefaultsFalse(t *testing.T) {
	ev, err := DecodeEvent([]byte(`{"type":"message","roomId":"general","userId":"u1","content":"hi"}`))
	require.NoError(t, err)
	assert.False(t, ev.(MessageEvent).Encrypted)
}

func TestDecodeEvent_MessageEmptyContentIsKept(t *testing.T) {
	ev, err := DecodeEvent([]byte(`{"type":"message","roomId":"general","userId":"u1","username":"alice","content":""}`))
	require.NoError(t, err)

	msg, ok := ev.(MessageEvent)
	require.True(t, ok)
	assert.Equal(t, "", msg.Content)

	out, err := EncodeEvent(msg)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"message","roomId":"general","userId":"u1","username":"alice","content":"","encrypted":false}`, string(out))
}

func TestDecodeEvent_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"not json", `hello`},
		{"empty object", `{}`},
		{"unknown type", `{"type":"typing","roomId":"general","userId":"u1"}`},
		{"client leave", `{"type":"leave","roomId":"general","userId":"u1","username":""}`},
		{"join without room", `{"type":"join","userId":"u1","username":"alice"}`},
		{"join without user", `{"type":"join","roomId":"general","username":"alice"}`},
		{"join without username", `{"type":"join","roomId":"general","userId":"u1"}`},
		{"message without content", `{"type":"message","roomId":"general","userId":"u1"}`},
		{"message with null content", `{"type":"message","roomId":"general","userId":"u1","content":null}`},
		{"wrong field type", `{"type":"join","roomId":42,"userId":"u1","username":"alice"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := DecodeEvent([]byte(tt.payload))
			assert.ErrorIs(t, err, ErrMalformedEvent)
			assert.Nil(t, ev)
		})
	}
}

func TestEncodeEvent_JoinOmitsMessageFields(t *testing.T) {
	data, err := EncodeEvent(JoinEvent{RoomID: "general", UserID: "u1", Username: "alice"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"join","roomId":"general","userId":"u1","username":"alice"}`, string(data))
}

func TestEncodeEvent_MessageCarriesEncryptedFalse(t *testing.T) {
	data, err := EncodeEvent(MessageEvent{RoomID: "general", UserID: "u1", Username: "alice", Content: "hi"})
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"type":"message","roomId":"general","userId":"u1","username":"alice","content":"hi","encrypted":false}`,
		string(data))
}

func TestEncodeEvent_LeaveHasEmptyUsername(t *testing.T) {
	data, err := EncodeEvent(LeaveEvent{RoomID: "general", UserID: "u2"})
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "leave", raw["type"])
	assert.Equal(t, "", raw["username"])
	assert.NotContains(t, raw, "content")
	assert.NotContains(t, raw, "encrypted")
}
