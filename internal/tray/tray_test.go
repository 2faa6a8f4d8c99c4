package tray

import (
	"bytes"
	"encoding/binary"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIconIsPNGInICO(t *testing.T) {
	ico := getIcon()
	require.Greater(t, len(ico), 22)

	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(ico[2:4]), "icon type")
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(ico[4:6]), "image count")

	size := binary.LittleEndian.Uint32(ico[14:18])
	offset := binary.LittleEndian.Uint32(ico[18:22])
	require.Equal(t, uint32(22), offset)
	require.Equal(t, int(size), len(ico)-22)

	img, err := png.Decode(bytes.NewReader(ico[offset:]))
	require.NoError(t, err)
	assert.Equal(t, 16, img.Bounds().Dx())
}

func TestMenuStateBeforeRun(t *testing.T) {
	tr := New("Rotation", "idle")
	toggle := tr.AddMenuItem("Start Rotation", nil)
	tr.AddSeparator()
	sel := tr.AddMenuItem("Select combo1", nil)

	tr.SetItemTitle(toggle, "Stop Rotation")
	tr.SetItemChecked(sel, true)

	// separators and unknown ids are ignored
	tr.SetItemTitle(1, "ignored")
	tr.SetItemChecked(42, true)

	assert.Equal(t, "Stop Rotation", tr.items[toggle].Title)
	assert.True(t, tr.items[sel].Checked)
	assert.Nil(t, tr.items[1])
}
