package ui

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func plain(t *testing.T, assumeYes bool) (*UI, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var out, errOut bytes.Buffer
	no := false
	return New(Options{Out: &out, Err: &errOut, AssumeYes: assumeYes, Color: &no, Interactive: &no}), &out, &errOut
}

func TestNew_NonTerminal(t *testing.T) {
	var out bytes.Buffer
	u := New(Options{Out: &out, Err: &out})
	assert.False(t, u.Interactive(), "a buffer is not a terminal")
	assert.False(t, u.color)
	assert.Nil(t, u.Progress())
}

func TestStyles_Plain(t *testing.T) {
	u, _, _ := plain(t, false)
	assert.Equal(t, "node", u.App("node"))
	assert.Equal(t, "22.0.0", u.Version("22.0.0"))
	assert.Equal(t, "/tmp", u.Path("/tmp"))
}

func TestTable(t *testing.T) {
	u, out, _ := plain(t, false)
	require.NoError(t, u.Table([]string{"App", "Version"}, [][]string{{"node", "22.0.0"}, {"deno", "2.0.0"}}))

	s := out.String()
	assert.Contains(t, s, "App")
	assert.Contains(t, s, "node")
	assert.Contains(t, s, "22.0.0")
	assert.Contains(t, s, "deno")
}

func TestConfirm(t *testing.T) {
	u, _, _ := plain(t, true)
	assert.NoError(t, u.Confirm("proceed?"))

	u, _, _ = plain(t, false)
	assert.ErrorIs(t, u.Confirm("proceed?"), ErrNonInteractive)
}

func TestMessages(t *testing.T) {
	u, out, errOut := plain(t, false)
	u.Println("hello")
	u.Notice("%s is up to date", "node")
	u.Warn("careful")
	u.Error(errors.New("boom"))

	assert.Equal(t, "hello\n", out.String())
	assert.Equal(t, "node is up to date\nwarning: careful\nError: boom\n", errOut.String())
}
