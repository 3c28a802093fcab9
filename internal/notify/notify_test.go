package notify

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishStampsAndStores(t *testing.T) {
	bus := NewBus(8, time.Minute)
	n := bus.Publish(Notice{Audience: "a", Title: "hi"})

	assert.NotEmpty(t, n.ID)
	assert.False(t, n.At.IsZero())
	assert.Equal(t, KindInfo, n.Kind)
	assert.Equal(t, []Notice{n}, bus.Recent("a"))
	assert.Empty(t, bus.Recent("b"))
}

func TestTakeDrainsOnlyAudience(t *testing.T) {
	bus := NewBus(8, time.Minute)
	base := time.Now()
	first := bus.Publish(Notice{Audience: "a", Title: "1", At: base})
	second := bus.Publish(Notice{Audience: "a", Title: "2", At: base.Add(time.Millisecond)})
	other := bus.Publish(Notice{Audience: "b", Title: "3", At: base})

	assert.Equal(t, []Notice{first, second}, bus.Take("a"))
	assert.Empty(t, bus.Take("a"))
	assert.Equal(t, []Notice{other}, bus.Recent("b"))
}

func TestCapacityBoundsDisplay(t *testing.T) {
	bus := NewBus(2, time.Minute)
	for i := 0; i < 5; i++ {
		bus.Publish(Notice{Audience: "a"})
	}
	assert.Equal(t, 2, bus.Len())
}

func TestNoticesExpire(t *testing.T) {
	bus := NewBus(8, 20*time.Millisecond)
	bus.Publish(Error("gone", "soon"))
	require.Eventually(t, func() bool { return bus.Len() == 0 }, time.Second, 5*time.Millisecond)
}

func TestSubscribeFanOut(t *testing.T) {
	bus := NewBus(8, time.Minute)

	var mu sync.Mutex
	var got []string
	cancelA := bus.Subscribe(func(n Notice) {
		mu.Lock()
		got = append(got, "a:"+n.Title)
		mu.Unlock()
	})
	cancelB := bus.Subscribe(func(n Notice) {
		mu.Lock()
		got = append(got, "b:"+n.Title)
		mu.Unlock()
	})

	bus.Publish(Success("one", ""))
	cancelA()
	cancelA()
	bus.Publish(Success("two", ""))
	cancelB()
	bus.Publish(Success("three", ""))

	assert.ElementsMatch(t, []string{"a:one", "b:one", "b:two"}, got)
}
