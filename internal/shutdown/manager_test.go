package shutdown

import (
	"sync"
	"testing"
	"time"

	"mask-mender/internal/logger"

	"github.com/stretchr/testify/assert"
)

type recorder struct {
	mu    sync.Mutex
	order []string
}

func (r *recorder) add(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.order = append(r.order, name)
}

type component struct {
	name  string
	rec   *recorder
	delay time.Duration
}

func (c component) Shutdown() {
	time.Sleep(c.delay)
	c.rec.add(c.name)
}

func TestShutdownReverseOrderOnce(t *testing.T) {
	rec := &recorder{}
	m := NewManager(logger.Nop(), time.Second)
	m.Register("workspace", component{name: "workspace", rec: rec})
	m.Register("tracker", component{name: "tracker", rec: rec})

	m.Shutdown()
	m.Shutdown()

	assert.Equal(t, []string{"tracker", "workspace"}, rec.order)
	assert.Error(t, m.Context().Err())
	select {
	case <-m.Done():
	default:
		t.Fatal("done channel not closed")
	}
}

func TestShutdownTimeoutMovesOn(t *testing.T) {
	rec := &recorder{}
	m := NewManager(logger.Nop(), 10*time.Millisecond)
	m.Register("fast", component{name: "fast", rec: rec})
	m.Register("slow", component{name: "slow", rec: rec, delay: 200 * time.Millisecond})

	start := time.Now()
	m.Shutdown()

	assert.Less(t, time.Since(start), 150*time.Millisecond)
	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Equal(t, []string{"fast"}, rec.order)
}
