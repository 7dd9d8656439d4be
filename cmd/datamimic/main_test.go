package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashwinyue/datamimic/internal/config"
	"github.com/ashwinyue/datamimic/internal/database"
	"github.com/ashwinyue/datamimic/internal/model"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeSQLiteConfig(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "datamimic.db")
	cfgPath := filepath.Join(dir, "config.yaml")
	content := fmt.Sprintf(`database:
  driver: sqlite
  path: %s
log:
  level: error
`, dbPath)
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o644))
	return cfgPath, dbPath
}

func TestProfileCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "people.csv")
	require.NoError(t, os.WriteFile(path, []byte("age,city\n34,NYC\n29,LA\n51,SF\n"), 0o644))

	out, err := runCLI(t, "profile", path)
	require.NoError(t, err)

	var got struct {
		RowCount    int                `json:"rowCount"`
		ColumnCount int                `json:"columnCount"`
		Columns     []model.ColumnInfo `json:"columns"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 3, got.RowCount)
	assert.Equal(t, 2, got.ColumnCount)
	assert.Equal(t, []model.ColumnInfo{
		{Name: "age", Type: model.ColumnTypeNumeric},
		{Name: "city", Type: model.ColumnTypeCategorical},
	}, got.Columns)
}

func TestProfileCommand_MissingFile(t *testing.T) {
	_, err := runCLI(t, "profile", filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
}

func TestReconcileCommand(t *testing.T) {
	cfgPath, _ := writeSQLiteConfig(t)

	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)
	db, err := database.New(cfg)
	require.NoError(t, err)

	dataset := &model.Dataset{Name: "d.csv", OriginalFilename: "d.csv", FileData: "a\n1"}
	require.NoError(t, db.Create(dataset).Error)
	stale := &model.Generation{DatasetID: dataset.ID, ModelType: model.SynthesisModelCopula, Status: model.GenerationStatusProcessing}
	require.NoError(t, db.Create(stale).Error)
	require.NoError(t, db.Close())

	out, err := runCLI(t, "--config", cfgPath, "reconcile")
	require.NoError(t, err)
	assert.Contains(t, out, "Reconciled 1 generation(s)")

	db, err = database.New(cfg)
	require.NoError(t, err)
	defer db.Close()

	var got model.Generation
	require.NoError(t, db.Where("id = ?", stale.ID).First(&got).Error)
	assert.Equal(t, model.GenerationStatusFailed, got.Status)
	require.NotNil(t, got.ErrorMessage)
	assert.Equal(t, "interrupted before completion", *got.ErrorMessage)
}

func TestReconcileCommand_BadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database:\n  driver: oracle\n"), 0o644))

	_, err := runCLI(t, "--config", path, "reconcile")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load config")
}

func TestDrainTimeout(t *testing.T) {
	assert.Equal(t, shutdownTimeout, drainTimeout(0))
	assert.Equal(t, 10*time.Minute+shutdownTimeout, drainTimeout(10*time.Minute))
}
