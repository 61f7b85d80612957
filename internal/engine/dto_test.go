package engine

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMonitorDTOMarshalsDistinctGeometryKeys guards against the struct
// tag on a multi-name field declaration silently applying to every
// name in the group: Monitor's X/Y/Width/Height must each carry their
// own wire key, not collapse onto a single duplicated one.
func TestMonitorDTOMarshalsDistinctGeometryKeys(t *testing.T) {
	e, _ := newTestEngine(t)
	mon := e.monitors()[0]

	dto := ToDTO(mon, nil)
	data, err := json.Marshal(dto)
	require.NoError(t, err)

	var wire map[string]any
	require.NoError(t, json.Unmarshal(data, &wire))

	assert.Equal(t, 0.0, wire["x"])
	assert.Equal(t, 0.0, wire["y"])
	assert.Equal(t, 1920.0, wire["width"])
	assert.Equal(t, 1080.0, wire["height"])

	workingRect, ok := wire["working_rect"].(map[string]any)
	require.True(t, ok, "working_rect should be present as an object")
	assert.Equal(t, 1920.0, workingRect["width"])
	assert.Equal(t, 1080.0, workingRect["height"])
}

// TestWindowDTOMarshalsDistinctBorderDeltaKeys guards the same defect
// in RectDeltaDTO: border_delta's four sides must not collapse onto a
// single duplicated "left" key.
func TestWindowDTOMarshalsDistinctBorderDeltaKeys(t *testing.T) {
	e, _ := newTestEngine(t)
	w := manage(t, e, "a")

	wc, ok := e.findWindow(w.Handle())
	require.True(t, ok)

	dto := ToDTO(wc, nil)
	dto.BorderDelta = &RectDeltaDTO{Left: 1, Top: 2, Right: 3, Bottom: 4}

	data, err := json.Marshal(dto)
	require.NoError(t, err)

	var wire map[string]any
	require.NoError(t, json.Unmarshal(data, &wire))

	borderDelta, ok := wire["border_delta"].(map[string]any)
	require.True(t, ok, "border_delta should be present as an object")
	assert.Equal(t, 1.0, borderDelta["left"])
	assert.Equal(t, 2.0, borderDelta["top"])
	assert.Equal(t, 3.0, borderDelta["right"])
	assert.Equal(t, 4.0, borderDelta["bottom"])
}
