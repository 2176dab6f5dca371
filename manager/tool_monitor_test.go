package manager

import (
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"aigateway/metrics"
)

func TestToolMonitor_TrackCounts(t *testing.T) {
	tm := NewToolMonitor([]string{"whisper"}, time.Second)
	defer tm.Shutdown()

	done1 := tm.Track("whisper")
	done2 := tm.Track("whisper")

	running, completed := tm.Snapshot("whisper")
	assert.Equal(t, 2, running)
	assert.Equal(t, 0, completed)
	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.ToolsInFlight.WithLabelValues("whisper")))

	done1()
	done1() // second call is a no-op
	done2()

	running, completed = tm.Snapshot("whisper")
	assert.Equal(t, 0, running)
	assert.Equal(t, 2, completed)
	assert.Equal(t, float64(0), testutil.ToFloat64(metrics.ToolsInFlight.WithLabelValues("whisper")))
}

func TestToolMonitor_UnknownToolGetsEntry(t *testing.T) {
	tm := NewToolMonitor(nil, time.Second)
	defer tm.Shutdown()

	tm.Track("pandoc")()

	running, completed := tm.Snapshot("pandoc")
	assert.Equal(t, 0, running)
	assert.Equal(t, 1, completed)
}

func TestToolMonitor_ConcurrentTracking(t *testing.T) {
	tm := NewToolMonitor([]string{"festival"}, 10*time.Millisecond)
	defer tm.Shutdown()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release := tm.Track("festival")
			time.Sleep(time.Millisecond)
			release()
		}()
	}
	wg.Wait()

	running, completed := tm.Snapshot("festival")
	assert.Equal(t, 0, running)
	assert.Equal(t, 50, completed)
}

func TestToolMonitor_ShutdownIsIdempotent(t *testing.T) {
	tm := NewToolMonitor(nil, time.Second)
	tm.Shutdown()
	tm.Shutdown()
}
