package ui

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
)

func TestPrintTable(t *testing.T) {
	pterm.DisableColor()
	defer pterm.EnableColor()

	var buf bytes.Buffer

	PrintTable([][]string{
		{"Domain", "Time"},
		{"github.com", "1h"},
	}, &buf)

	out := buf.String()

	assert.Contains(t, out, "Domain")
	assert.Contains(t, out, "github.com")
}

func TestProgressBar(t *testing.T) {
	pterm.DisableColor()
	defer pterm.EnableColor()

	testCases := []struct {
		Percent float64
		Filled  int
	}{
		{0, 0},
		{50, 5},
		{100, 10},
		{250, 10},
		{-5, 0},
	}

	for _, tc := range testCases {
		bar := ProgressBar(tc.Percent, 10)

		assert.Equal(t, tc.Filled, strings.Count(bar, "█"), tc.Percent)
		assert.Equal(t, 10-tc.Filled, strings.Count(bar, "░"), tc.Percent)
	}
}

func TestIsTerminal(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "out")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	assert.False(t, IsTerminal(f))
}
