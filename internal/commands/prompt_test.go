package commands

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsk(t *testing.T) {
	var out bytes.Buffer
	p := newPrompter(strings.NewReader("  hello  \n"), &out)

	answer, err := p.ask("Say something", "")
	require.NoError(t, err)
	assert.Equal(t, "hello", answer)
	assert.Contains(t, out.String(), "Say something: ")
}

func TestAskDefault(t *testing.T) {
	var out bytes.Buffer
	p := newPrompter(strings.NewReader("\n"), &out)

	answer, err := p.ask("Reference", "Split withdrawal")
	require.NoError(t, err)
	assert.Equal(t, "Split withdrawal", answer)
	assert.Contains(t, out.String(), "[Split withdrawal]")
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		name  string
		input string
		def   bool
		want  bool
	}{
		{"yes", "y\n", false, true},
		{"yes word", "YES\n", false, true},
		{"no", "n\n", true, false},
		{"empty takes default true", "\n", true, true},
		{"empty takes default false", "\n", false, false},
		{"garbage is no", "maybe\n", true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newPrompter(strings.NewReader(tt.input), &bytes.Buffer{})
			got, err := p.confirm("Proceed?", tt.def)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestChoose(t *testing.T) {
	var out bytes.Buffer
	p := newPrompter(strings.NewReader("2\n"), &out)

	idx, err := p.choose("Pick one", []string{"first", "second", "third"})
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
	assert.Contains(t, out.String(), "1. first")
	assert.Contains(t, out.String(), "3. third")
}

func TestChooseRetriesInvalidInput(t *testing.T) {
	var out bytes.Buffer
	p := newPrompter(strings.NewReader("nope\n9\n1\n"), &out)

	idx, err := p.choose("Pick one", []string{"only", "two"})
	require.NoError(t, err)
	assert.Equal(t, 0, idx)
	assert.Contains(t, out.String(), "between 1 and 2")
}
