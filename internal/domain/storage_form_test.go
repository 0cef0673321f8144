package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleScan() GuildScan {
	g := NewGuildScan()
	g.Put("P1", "General", "C1", ChannelRecord{ChannelName: "chat", LastMsgTimestamp: 10})
	g.Put("P1", "General", "C2", ChannelRecord{ChannelName: "memes", Status: true, MessageID: "M2", LastMsgTimestamp: 100, ArchiveTimestamp: 3700})
	g.Put("P2", "Events", "C3", ChannelRecord{ChannelName: "old", Archived: true})
	g.Put(UngroupedID, UngroupedName, "C4", ChannelRecord{ChannelName: "loose"})
	return g
}

func TestStorageFormRoundTrip(t *testing.T) {
	x := sampleScan()
	got := FromStorageForm(ToStorageForm(x), nil)
	assert.Equal(t, x, got)
}

func TestStorageFormRoundTripThroughJSON(t *testing.T) {
	x := sampleScan()
	raw, err := json.Marshal(ToStorageForm(x))
	require.NoError(t, err)

	var stored []StoredCategory
	require.NoError(t, json.Unmarshal(raw, &stored))
	assert.Equal(t, x, FromStorageForm(stored, nil))
}

func TestStorageFormIsFlatAndSorted(t *testing.T) {
	out := ToStorageForm(sampleScan())
	require.Len(t, out, 3)
	assert.Equal(t, "P1", out[0].ParentID)
	assert.Equal(t, "P2", out[1].ParentID)
	assert.Equal(t, UngroupedID, out[2].ParentID)
	require.Len(t, out[0].Channels, 2)
	assert.Equal(t, "C1", out[0].Channels[0].ChannelID)
	assert.Equal(t, "C2", out[0].Channels[1].ChannelID)
}

func TestFromStorageFormUnknownCategory(t *testing.T) {
	stored := ToStorageForm(sampleScan())
	known := map[string]string{"P1": "General (renamed)"}

	g := FromStorageForm(stored, known)

	assert.Equal(t, "General (renamed)", g.Categories["P1"].ParentName)
	_, stillP2 := g.Categories["P2"]
	assert.False(t, stillP2)

	unknown, ok := g.Categories[UnknownCategoryID]
	require.True(t, ok)
	assert.Equal(t, UnknownCategoryName, unknown.ParentName)
	assert.Contains(t, unknown.Channels, "C3")

	assert.Contains(t, g.Categories[UngroupedID].Channels, "C4")
	assert.Equal(t, 4, g.Len())
}

func TestFromStorageFormEmpty(t *testing.T) {
	g := FromStorageForm(nil, nil)
	assert.NotNil(t, g.Categories)
	assert.Equal(t, 0, g.Len())
}
