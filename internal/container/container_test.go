package container

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pixbatch/internal/config"
	"pixbatch/internal/database"
)

func TestNew(t *testing.T) {
	db, err := database.Initialize(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { database.Close(db) })

	cfg := config.Default()
	cfg.WorkspaceDir = t.TempDir()

	c := New(cfg, db, nil)

	assert.Same(t, cfg, c.GetConfig())
	assert.NotNil(t, c.GetBatchService())
	assert.NotNil(t, c.GetPDFService())
	assert.Contains(t, c.GetRegistry().Names(), "compress_pdf")
	assert.Len(t, c.GetBatchService().Operations(), 9)

	workspace, err := c.GetPreferencesService().GetWorkspace()
	require.NoError(t, err)
	assert.Equal(t, cfg.WorkspaceDir, workspace)
}
