package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui"
)

func TestTUICmd_RequiresServices(t *testing.T) {
	SetServices(nil)

	_, err := runCommand(t, "", "tui")
	require.Error(t, err)
	assert.ErrorIs(t, err, tui.ErrMissingSearchService)
}
