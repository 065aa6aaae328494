package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func sampleViews() []itemView {
	return []itemView{
		{
			Title:     "Harbour at dusk",
			URL:       "https://www.flickr.com/photos/someone/1/",
			Date:      "May 1, 2024",
			Thumbnail: `<a href="https://www.flickr.com/photos/someone/1/"><img src="1_m.jpg" /></a>`,
		},
		{
			Title: "Morning fog",
			URL:   "https://www.flickr.com/photos/someone/2/",
			Date:  "April 29, 2024",
		},
	}
}

func TestWriteItemsText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeItems(&buf, "text", sampleViews()))

	assert.Equal(t,
		"May 1, 2024  Harbour at dusk\n  https://www.flickr.com/photos/someone/1/\n"+
			"April 29, 2024  Morning fog\n  https://www.flickr.com/photos/someone/2/\n",
		buf.String(),
	)
}

func TestWriteItemsYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeItems(&buf, "yaml", sampleViews()))

	var got []itemView
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, sampleViews(), got)
	assert.NotContains(t, buf.String(), "description:")
}

func TestWriteItemsUnknownFormat(t *testing.T) {
	assert.Error(t, writeItems(&bytes.Buffer{}, "json", nil))
}

func TestRootCommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range newRootCmd().Commands() {
		names[c.Name()] = true
	}

	for _, want := range []string{"serve", "render", "items", "clear", "options"} {
		assert.True(t, names[want], "missing command %s", want)
	}
}
