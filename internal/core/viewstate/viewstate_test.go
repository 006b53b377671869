package viewstate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventstock/eventstock/internal/core/query"
)

func TestMode(t *testing.T) {
	m := ListingMode()
	assert.Equal(t, Listing, m.Kind())
	assert.False(t, m.FormOpen())
	_, ok := m.Record()
	assert.False(t, ok)

	assert.True(t, CreatingMode().FormOpen())

	r := query.Record{"id": float64(3), "nazwa": "Róża"}
	m = EditingMode(r)
	r["nazwa"] = "Tulipan"

	got, ok := m.Record()
	require.True(t, ok)
	assert.Equal(t, "Róża", got["nazwa"], "mode keeps its own copy")
	assert.Equal(t, "editing", m.Kind().String())
}

func TestSortState_Toggle(t *testing.T) {
	var s SortState

	s = s.Toggle("cena")
	assert.Equal(t, SortState{Key: "cena", Direction: query.Ascending}, s)

	s = s.Toggle("cena")
	assert.Equal(t, query.Descending, s.Direction)

	s = s.Toggle("cena")
	assert.Equal(t, query.Ascending, s.Direction)

	s = s.Toggle("cena").Toggle("nazwa")
	assert.Equal(t, SortState{Key: "nazwa", Direction: query.Ascending}, s)

	q := s.Apply(query.Query{SearchText: "róż"})
	assert.Equal(t, "nazwa", q.SortKey)
	assert.Equal(t, "róż", q.SearchText)
}

func TestImageViewer_Zoom(t *testing.T) {
	v := OpenImage("kwiaty/roza.jpg", "Róża")
	assert.True(t, v.Open)
	assert.Equal(t, 1.0, v.Zoom)

	for i := 0; i < 20; i++ {
		v = v.ZoomIn()
	}
	assert.Equal(t, MaxZoom, v.Zoom)

	for i := 0; i < 20; i++ {
		v = v.ZoomOut()
	}
	assert.Equal(t, MinZoom, v.Zoom)

	assert.Equal(t, 0.5, v.ZoomIn().Zoom)
}

func TestImageViewer_Rotation(t *testing.T) {
	v := OpenImage("a.png", "")

	var seen []int
	for i := 0; i < 4; i++ {
		v = v.RotateRight()
		seen = append(seen, v.Rotation)
	}
	assert.Equal(t, []int{90, 180, 270, 0}, seen)

	assert.Equal(t, 270, v.RotateLeft().Rotation)
}

func TestImageViewer_ResetAndClose(t *testing.T) {
	v := OpenImage("a.png", "A").ZoomIn().RotateRight()

	reset := v.Reset()
	assert.Equal(t, 1.0, reset.Zoom)
	assert.Equal(t, 0, reset.Rotation)
	assert.True(t, reset.Open)
	assert.Equal(t, "a.png", reset.Ref)

	assert.Equal(t, ImageViewer{}, v.Close())
}
