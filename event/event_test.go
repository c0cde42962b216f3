// Copyright 2025 Blink Labs Software
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

package event_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/blinklabs-io/trustledger/event"
	"github.com/blinklabs-io/trustledger/internal/test/testutil"
	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const testEvtType event.EventType = "test.event"

func receive(t *testing.T, ch <-chan event.Event) event.Event {
	t.Helper()
	return testutil.RequireReceive(t, ch, time.Second, "event")
}

func TestEventBusSingleSubscriber(t *testing.T) {
	eb := event.NewEventBus(nil, nil)
	defer eb.Stop()
	_, subCh := eb.Subscribe(testEvtType)
	eb.Publish(testEvtType, event.NewEvent(testEvtType, 999))
	evt := receive(t, subCh)
	assert.Equal(t, testEvtType, evt.Type)
	assert.Equal(t, 999, evt.Data)
}

func TestEventBusMultipleSubscribers(t *testing.T) {
	eb := event.NewEventBus(nil, nil)
	defer eb.Stop()
	_, sub1Ch := eb.Subscribe(testEvtType)
	_, sub2Ch := eb.Subscribe(testEvtType)
	eb.Publish(testEvtType, event.NewEvent(testEvtType, "data"))
	assert.Equal(t, "data", receive(t, sub1Ch).Data)
	assert.Equal(t, "data", receive(t, sub2Ch).Data)
}

func TestEventBusOtherTypeNotDelivered(t *testing.T) {
	eb := event.NewEventBus(nil, nil)
	defer eb.Stop()
	_, subCh := eb.Subscribe(testEvtType)
	eb.Publish("other.event", event.NewEvent("other.event", 1))
	testutil.RequireNoReceive(
		t,
		subCh,
		50*time.Millisecond,
		"event of another type",
	)
}

func TestEventBusUnsubscribe(t *testing.T) {
	eb := event.NewEventBus(nil, nil)
	defer eb.Stop()
	subId, subCh := eb.Subscribe(testEvtType)
	eb.Unsubscribe(testEvtType, subId)
	eb.Publish(testEvtType, event.NewEvent(testEvtType, 1))
	select {
	case _, ok := <-subCh:
		require.False(t, ok, "received unexpected event")
	case <-time.After(1 * time.Second):
		t.Fatal("subscriber channel was not closed after Unsubscribe")
	}
}

func TestEventBusSubscribeFunc(t *testing.T) {
	eb := event.NewEventBus(nil, nil)
	var count atomic.Int32
	eb.SubscribeFunc(testEvtType, func(evt event.Event) {
		count.Add(1)
	})
	for range 3 {
		eb.Publish(testEvtType, event.NewEvent(testEvtType, nil))
	}
	require.Eventually(
		t,
		func() bool { return count.Load() == 3 },
		time.Second,
		10*time.Millisecond,
	)
	// Stop ends the handler goroutine
	eb.Stop()
}

func TestEventBusPublishAsync(t *testing.T) {
	eb := event.NewEventBus(nil, nil)
	_, subCh := eb.Subscribe(testEvtType)
	require.True(t, eb.PublishAsync(testEvtType, event.NewEvent(testEvtType, 7)))
	assert.Equal(t, 7, receive(t, subCh).Data)
	eb.Stop()
	assert.False(t, eb.PublishAsync(testEvtType, event.NewEvent(testEvtType, 8)))
	// A second Stop is a no-op
	eb.Stop()
}

func TestEventBusMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	eb := event.NewEventBus(reg, nil)
	defer eb.Stop()
	subId, subCh := eb.Subscribe(testEvtType)
	eb.Publish(testEvtType, event.NewEvent(testEvtType, 1))
	receive(t, subCh)
	eb.Unsubscribe(testEvtType, subId)
	count, err := promtestutil.GatherAndCount(reg, "trustledger_event_events_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
