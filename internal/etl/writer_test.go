package etl

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BartekS5/mysql2sqlite/pkg/models"
)

func TestWriterSerializesConcurrentPages(t *testing.T) {
	loader := newMemLoader()
	loader.delay = 5 * time.Millisecond
	obs := newRecordingObserver()
	w := NewWriter(loader, obs)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			page := &models.Page{Table: "t", Index: i, Columns: []string{"id"},
				Rows: []models.Row{{"id": models.Integer(int64(i))}}}
			assert.NoError(t, w.WritePage(context.Background(), page))
		}(i)
	}
	wg.Wait()

	assert.EqualValues(t, 1, loader.inFlight.max.Load())
	assert.Len(t, loader.rows("t"), 8)
	assert.Equal(t, 8, obs.written)
}

func TestWriterWrapsLoaderFailure(t *testing.T) {
	loader := newMemLoader()
	loader.writeErr = func(*models.Page) error { return errors.New("disk full") }
	obs := newRecordingObserver()

	err := NewWriter(loader, obs).WritePage(context.Background(), &models.Page{Table: "logs", Index: 3})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrWrite)

	var merr *MigrationError
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, "logs", merr.Table)
	assert.Equal(t, 3, merr.Page)
	assert.Zero(t, obs.written, "failed pages are not reported as written")
}
