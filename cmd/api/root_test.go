package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandTree(t *testing.T) {
	cmd, _, err := rootCmd.Find([]string{"migrate", "down"})
	require.NoError(t, err)
	assert.Equal(t, "down", cmd.Name())

	steps := cmd.Flags().Lookup("steps")
	require.NotNil(t, steps)
	assert.Equal(t, "1", steps.DefValue)

	cmd, _, err = rootCmd.Find([]string{"serve"})
	require.NoError(t, err)
	assert.NotNil(t, cmd.Flags().Lookup("migrate"))
	assert.NotNil(t, rootCmd.Flags().Lookup("migrate"))
}
