package protocol

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeOmitsUnchangedFields(t *testing.T) {
	msg := Message{
		Code:   CodeState,
		Player: "alice",
		Data: Update{
			TopMessage: "轮到你了",
		},
	}
	data, err := Encode(msg)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(data), "\n"))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	inner := decoded["data"].(map[string]any)
	_, hasIndex := inner["my_index"]
	assert.False(t, hasIndex)
	assert.Equal(t, "轮到你了", inner["top_message"])
}

func TestEncodeIncludesExplicitZero(t *testing.T) {
	msg := Message{
		Code: CodeState,
		Data: Update{
			MyIndex: IntPtr(0),
			State:   IntPtr(StateWaiting),
		},
	}
	data, err := Encode(msg)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	inner := decoded["data"].(map[string]any)
	assert.Equal(t, float64(0), inner["my_index"])
	assert.Equal(t, float64(0), inner["state"])
}

func TestCommandReaderReadsOneChunk(t *testing.T) {
	r := NewCommandReader(strings.NewReader("♥3 ♠3  \n"))
	cmd, err := r.ReadCommand()
	require.NoError(t, err)
	assert.Equal(t, "♥3 ♠3", cmd)
}

func TestCommandReaderRejectsEmbeddedNewline(t *testing.T) {
	r := NewCommandReader(strings.NewReader("♥3\n♠3"))
	_, err := r.ReadCommand()
	assert.Error(t, err)
}

func TestDecodeUpdateRoundTrips(t *testing.T) {
	msg := Message{
		Code: CodeState,
		Data: Update{
			NameList:      []string{"alice", "bob"},
			CardCountList: []int{17, 17, 17},
		},
	}
	data, err := Encode(msg)
	require.NoError(t, err)

	var decoded Message
	require.NoError(t, json.Unmarshal(data, &decoded))
	update, err := DecodeUpdate(decoded)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, update.NameList)
	assert.Equal(t, []int{17, 17, 17}, update.CardCountList)
}
