package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kavak-agent/internal/service"
)

const watchHeader = "id,brand,model,year,km,price\n"

func TestCatalogWatcher_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.csv")
	require.NoError(t, os.WriteFile(path, []byte(watchHeader+"1,Nissan,Versa,2020,1000,200000\n"), 0o644))

	holder := service.NewCatalogHolder(nil)
	w, err := NewCatalogWatcher(path, holder, nil)
	require.NoError(t, err)
	defer w.Close()
	w.debounce = 50 * time.Millisecond

	require.NoError(t, w.Reload())
	<-w.Reloaded()
	assert.Equal(t, 1, holder.Current().Len())
	before := holder.Current()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	require.NoError(t, os.WriteFile(path, []byte(watchHeader+
		"1,Nissan,Versa,2020,1000,200000\n"+
		"2,Toyota,Yaris,2019,5000,230000\n"), 0o644))

	select {
	case <-w.Reloaded():
	case <-time.After(5 * time.Second):
		t.Fatal("catalog was not reloaded")
	}
	assert.Equal(t, 2, holder.Current().Len())
	// the pinned snapshot is untouched
	assert.Equal(t, 1, before.Len())
	_, ok := holder.Current().Get("2")
	assert.True(t, ok)
}

func TestCatalogWatcher_BadFileKeepsSnapshot(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.csv")
	require.NoError(t, os.WriteFile(path, []byte(watchHeader+"1,Nissan,Versa,2020,1000,200000\n"), 0o644))

	holder := service.NewCatalogHolder(nil)
	w, err := NewCatalogWatcher(path, holder, nil)
	require.NoError(t, err)
	defer w.Close()
	require.NoError(t, w.Reload())

	require.NoError(t, os.WriteFile(path, []byte("nothing useful\n"), 0o644))
	assert.Error(t, w.Reload())
	assert.Equal(t, 1, holder.Current().Len())
}

func TestNewCatalogWatcher_MissingDir(t *testing.T) {
	_, err := NewCatalogWatcher(filepath.Join(t.TempDir(), "nope", "catalog.csv"), service.NewCatalogHolder(nil), nil)
	assert.Error(t, err)
}
