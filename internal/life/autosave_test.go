package life

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAutosaverSavesOnRequest(t *testing.T) {
	c, _ := newTestCompanion(t)
	p := &memProvider{}
	a := NewAutosaver(c, p, 0)
	a.Start(context.Background())
	defer a.Stop()

	a.Request()
	require.Eventually(t, func() bool { return p.count() >= 1 }, time.Second, 5*time.Millisecond)

	saves, failures := a.Counts()
	assert.GreaterOrEqual(t, saves, 1)
	assert.Zero(t, failures)
}

func TestAutosaverRespectsInterval(t *testing.T) {
	c, _ := newTestCompanion(t)
	p := &memProvider{}
	a := NewAutosaver(c, p, time.Hour)
	a.Start(context.Background())

	for i := 0; i < 10; i++ {
		a.Request()
	}
	a.Stop()
	assert.Zero(t, p.count())
}

func TestAutosaverRequestNeverBlocks(t *testing.T) {
	c, _ := newTestCompanion(t)
	a := NewAutosaver(c, &memProvider{}, time.Hour)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			a.Request()
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Request blocked without a running loop")
	}
}

func TestAutosaverFlushFailure(t *testing.T) {
	c, _ := newTestCompanion(t)
	boom := errors.New("read-only filesystem")
	a := NewAutosaver(c, &memProvider{saveErr: boom}, time.Hour)

	assert.ErrorIs(t, a.Flush(context.Background()), boom)
	saves, failures := a.Counts()
	assert.Zero(t, saves)
	assert.Equal(t, 1, failures)
}

func TestAutosaverStopWithoutStart(t *testing.T) {
	c, _ := newTestCompanion(t)
	NewAutosaver(c, &memProvider{}, time.Second).Stop()
}
