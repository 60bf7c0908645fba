package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/gewnthar/visabulletin/models"
)

func TestRenderStatus(t *testing.T) {
	eb2 := "2023-02-15"
	meta := models.NewErrorMetadata(time.Date(2026, 10, 16, 6, 0, 0, 0, time.UTC),
		"https://example.com/bulletin", errors.New("failed to fetch: HTTP status 503"))
	snap := &models.BulletinSnapshot{
		ActionDates: models.NewPresentationRows([]models.VisaCategoryRow{{Category: "EB-2", ChinaCurrent: &eb2}}),
		Metadata:    &meta,
		SyncStatus:  meta.SyncStatus,
	}

	var buf bytes.Buffer
	renderStatus(&buf, snap)
	out := buf.String()

	assert.Contains(t, out, "error")
	assert.Contains(t, out, "HTTP status 503")
	assert.Contains(t, out, "2026-10-16 06:00:00 UTC")
	assert.Contains(t, out, "EB-2")
	assert.Contains(t, out, "2023-02-15")
	assert.Contains(t, out, "(no rows)")
}

func TestResolveConfigPath(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	assert.NoError(t, err)
	assert.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })

	configPath = ""
	assert.Equal(t, "", resolveConfigPath())

	assert.NoError(t, os.MkdirAll(filepath.Join(dir, "config"), 0o755))
	assert.NoError(t, os.WriteFile(filepath.Join(dir, defaultConfigPath), []byte("server:\n  port: \"9000\"\n"), 0o644))
	assert.Equal(t, defaultConfigPath, resolveConfigPath())

	configPath = "custom.yaml"
	t.Cleanup(func() { configPath = "" })
	assert.Equal(t, "custom.yaml", resolveConfigPath())
}
