package nostr

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeReqShape(t *testing.T) {
	t.Parallel()
	data, err := EncodeReq("sub-1", Filter{Kinds: []int{KindLongForm, KindLongFormDraft}})
	require.NoError(t, err)

	var parts []json.RawMessage
	require.NoError(t, json.Unmarshal(data, &parts))
	require.Len(t, parts, 3)
	assert.Equal(t, `"REQ"`, string(parts[0]))
	assert.Equal(t, `"sub-1"`, string(parts[1]))
	assert.JSONEq(t, `{"kinds":[30023,30024]}`, string(parts[2]))
}

func TestEncodeEventShape(t *testing.T) {
	t.Parallel()
	ev := &Event{ID: "id1", Kind: KindNote, Tags: [][]string{}, Content: "hi"}
	data, err := EncodeEvent(ev)
	require.NoError(t, err)

	var parts []json.RawMessage
	require.NoError(t, json.Unmarshal(data, &parts))
	require.Len(t, parts, 2)
	assert.Equal(t, `"EVENT"`, string(parts[0]))

	var got Event
	require.NoError(t, json.Unmarshal(parts[1], &got))
	assert.Equal(t, "id1", got.ID)
	assert.Equal(t, "hi", got.Content)
}

func TestDecodeEventFrame(t *testing.T) {
	t.Parallel()
	raw := `["EVENT","sub-1",{"id":"abc","pubkey":"pk","created_at":1000,"kind":30023,"tags":[["d","hi"]],"content":"x","sig":"s"}]`
	f, err := DecodeFrame([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, FrameEvent, f.Type)
	assert.Equal(t, "sub-1", f.SubID)
	require.NotNil(t, f.Event)
	assert.Equal(t, "abc", f.Event.ID)
	assert.Equal(t, 30023, f.Event.Kind)
}

func TestDecodeEOSEFrame(t *testing.T) {
	t.Parallel()
	f, err := DecodeFrame([]byte(`["EOSE","sub-9"]`))
	require.NoError(t, err)
	assert.Equal(t, FrameEOSE, f.Type)
	assert.Equal(t, "sub-9", f.SubID)
}

func TestDecodeOKFrame(t *testing.T) {
	t.Parallel()
	f, err := DecodeFrame([]byte(`["OK","ev1",true,""]`))
	require.NoError(t, err)
	assert.Equal(t, FrameOK, f.Type)
	assert.Equal(t, "ev1", f.EventID)
	assert.True(t, f.OK)

	f, err = DecodeFrame([]byte(`["OK","ev2",false,"blocked: not allowed"]`))
	require.NoError(t, err)
	assert.False(t, f.OK)
	assert.Equal(t, "blocked: not allowed", f.Message)
}

func TestDecodeNoticeFrame(t *testing.T) {
	t.Parallel()
	f, err := DecodeFrame([]byte(`["NOTICE","slow down"]`))
	require.NoError(t, err)
	assert.Equal(t, FrameNotice, f.Type)
	assert.Equal(t, "slow down", f.Message)
}

func TestDecodeMalformedFrames(t *testing.T) {
	t.Parallel()
	for _, raw := range []string{
		`{"not":"an array"}`,
		`[]`,
		`["EVENT","sub-only"]`,
		`["EOSE"]`,
		`["OK","ev1"]`,
		`["WHAT","ever"]`,
	} {
		_, err := DecodeFrame([]byte(raw))
		assert.Error(t, err, "frame %s should not decode", raw)
	}
}
