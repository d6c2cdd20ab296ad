// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package event

import (
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestSubscribePublish(t *testing.T) {
	bus := NewEventBus(nil)
	defer bus.Stop()
	_, ch := bus.Subscribe("test.event")
	bus.Publish("test.event", NewEvent("test.event", "payload"))
	evt := <-ch
	assert.Equal(t, EventType("test.event"), evt.Type)
	assert.Equal(t, "payload", evt.Data)
}

func TestPublishNoSubscribers(t *testing.T) {
	bus := NewEventBus(prometheus.NewRegistry())
	defer bus.Stop()
	// Publishing without subscribers must not block or panic
	bus.Publish("test.event", NewEvent("test.event", nil))
}

func TestSubscribeFunc(t *testing.T) {
	bus := NewEventBus(nil)
	var wg sync.WaitGroup
	wg.Add(2)
	var mu sync.Mutex
	var received []any
	bus.SubscribeFunc("test.event", func(evt Event) {
		mu.Lock()
		received = append(received, evt.Data)
		mu.Unlock()
		wg.Done()
	})
	bus.Publish("test.event", NewEvent("test.event", 1))
	bus.Publish("test.event", NewEvent("test.event", 2))
	wg.Wait()
	bus.Stop()
	mu.Lock()
	defer mu.Unlock()
	require.Len(t, received, 2)
	assert.ElementsMatch(t, []any{1, 2}, received)
}

func TestUnsubscribe(t *testing.T) {
	bus := NewEventBus(nil)
	defer bus.Stop()
	subId, ch := bus.Subscribe("test.event")
	bus.Unsubscribe("test.event", subId)
	_, ok := <-ch
	assert.False(t, ok)
	// Unsubscribing twice is a no-op
	bus.Unsubscribe("test.event", subId)
}

func TestTypeIsolation(t *testing.T) {
	bus := NewEventBus(nil)
	defer bus.Stop()
	_, chA := bus.Subscribe("type.a")
	bus.Publish("type.b", NewEvent("type.b", nil))
	select {
	case <-chA:
		t.Fatal("received event for unsubscribed type")
	default:
	}
}
