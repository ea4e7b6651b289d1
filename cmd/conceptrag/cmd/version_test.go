package cmd

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCmd_PrintsVersionString(t *testing.T) {
	rootCmd := NewRootCmd()
	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"version"})

	require.NoError(t, rootCmd.Execute())
	assert.NotEmpty(t, buf.String())
}

func TestVersionCmd_JSONFlag_IsValidJSON(t *testing.T) {
	rootCmd := NewRootCmd()
	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"version", "--json"})

	require.NoError(t, rootCmd.Execute())
	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
}

func TestVersionCmd_ShortFlag_PrintsOnlyVersion(t *testing.T) {
	rootCmd := NewRootCmd()
	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"version", "--short"})

	require.NoError(t, rootCmd.Execute())
	assert.NotContains(t, buf.String(), " ")
}
