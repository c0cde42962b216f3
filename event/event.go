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

// Package event delivers committed ledger events to in-process subscribers
package event

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	EventQueueSize      = 100
	AsyncQueueSize      = 1000
	AsyncWorkerPoolSize = 4
)

type EventType string

type EventSubscriberId int

type EventHandlerFunc func(Event)

type Event struct {
	Timestamp time.Time
	Data      any
	Type      EventType
}

func NewEvent(eventType EventType, eventData any) Event {
	return Event{
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      eventData,
	}
}

type asyncEvent struct {
	eventType EventType
	event     Event
}

// subscriber wraps a buffered channel. Deliver blocks while the buffer is
// full, so slow subscribers apply backpressure to the publisher
type subscriber struct {
	ch     chan Event
	mu     sync.RWMutex
	closed bool
}

func newSubscriber(buffer int) *subscriber {
	return &subscriber{
		ch: make(chan Event, buffer),
	}
}

func (s *subscriber) deliver(evt Event) {
	// The read lock is held for the send so that close waits for it
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return
	}
	s.ch <- evt
}

func (s *subscriber) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.ch)
}

type EventBus struct {
	subscribers map[EventType]map[EventSubscriberId]*subscriber
	metrics     *eventMetrics
	logger      *slog.Logger
	asyncQueue  chan asyncEvent
	stopCh      chan struct{}
	asyncWg     sync.WaitGroup
	lastSubId   EventSubscriberId
	mu          sync.RWMutex
	stopMu      sync.RWMutex
	stopped     bool
}

// NewEventBus creates a new EventBus and starts its async worker pool
func NewEventBus(
	promRegistry prometheus.Registerer,
	logger *slog.Logger,
) *EventBus {
	if logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	e := &EventBus{
		subscribers: make(map[EventType]map[EventSubscriberId]*subscriber),
		logger:      logger,
		asyncQueue:  make(chan asyncEvent, AsyncQueueSize),
		stopCh:      make(chan struct{}),
	}
	if promRegistry != nil {
		e.initMetrics(promRegistry)
	}
	for range AsyncWorkerPoolSize {
		e.asyncWg.Add(1)
		go e.asyncWorker()
	}
	return e
}

func (e *EventBus) asyncWorker() {
	defer e.asyncWg.Done()
	for {
		select {
		case <-e.stopCh:
			return
		case ae := <-e.asyncQueue:
			e.Publish(ae.eventType, ae.event)
		}
	}
}

// Subscribe allows a consumer to receive events of a particular type via a channel
func (e *EventBus) Subscribe(
	eventType EventType,
) (EventSubscriberId, <-chan Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	sub := newSubscriber(EventQueueSize)
	e.lastSubId++
	subId := e.lastSubId
	if _, ok := e.subscribers[eventType]; !ok {
		e.subscribers[eventType] = make(map[EventSubscriberId]*subscriber)
	}
	e.subscribers[eventType][subId] = sub
	if e.metrics != nil {
		e.metrics.subscribers.WithLabelValues(string(eventType)).Inc()
	}
	return subId, sub.ch
}

// SubscribeFunc allows a consumer to receive events of a particular type via a
// callback function. The callback runs on its own goroutine until the
// subscription ends
func (e *EventBus) SubscribeFunc(
	eventType EventType,
	handlerFunc EventHandlerFunc,
) EventSubscriberId {
	subId, evtCh := e.Subscribe(eventType)
	go func() {
		for evt := range evtCh {
			handlerFunc(evt)
		}
	}()
	return subId
}

// Unsubscribe stops delivery of events for a particular type for an existing subscriber
func (e *EventBus) Unsubscribe(eventType EventType, subId EventSubscriberId) {
	e.mu.Lock()
	var sub *subscriber
	if evtTypeSubs, ok := e.subscribers[eventType]; ok {
		if tmpSub, ok := evtTypeSubs[subId]; ok {
			sub = tmpSub
			delete(evtTypeSubs, subId)
			if len(evtTypeSubs) == 0 {
				delete(e.subscribers, eventType)
			}
			if e.metrics != nil {
				e.metrics.subscribers.WithLabelValues(string(eventType)).Dec()
			}
		}
	}
	e.mu.Unlock()
	if sub != nil {
		sub.close()
	}
}

// Publish sends an event of a particular type to all subscribers
func (e *EventBus) Publish(eventType EventType, evt Event) {
	e.mu.RLock()
	subs := make([]*subscriber, 0, len(e.subscribers[eventType]))
	for _, sub := range e.subscribers[eventType] {
		subs = append(subs, sub)
	}
	e.mu.RUnlock()
	for _, sub := range subs {
		sub.deliver(evt)
	}
	if e.metrics != nil {
		e.metrics.eventsTotal.WithLabelValues(string(eventType)).Inc()
	}
}

// PublishAsync enqueues an event for delivery by the worker pool. Ordering
// between events published this way is not preserved. Returns false if the
// EventBus is stopped or the queue is full
func (e *EventBus) PublishAsync(eventType EventType, evt Event) bool {
	e.stopMu.RLock()
	defer e.stopMu.RUnlock()
	if e.stopped {
		return false
	}
	select {
	case e.asyncQueue <- asyncEvent{eventType: eventType, event: evt}:
		return true
	default:
		e.logger.Warn(
			"async event queue full, dropping event",
			"component", "event",
			"type", eventType,
		)
		if e.metrics != nil {
			e.metrics.droppedTotal.WithLabelValues(string(eventType)).Inc()
		}
		return false
	}
}

// Stop shuts down the worker pool and closes every subscriber channel, which
// ends SubscribeFunc goroutines. Calling Stop more than once is safe
func (e *EventBus) Stop() {
	e.stopMu.Lock()
	if e.stopped {
		e.stopMu.Unlock()
		return
	}
	e.stopped = true
	close(e.stopCh)
	e.stopMu.Unlock()
	e.asyncWg.Wait()

	e.mu.Lock()
	subsCopy := e.subscribers
	e.subscribers = make(map[EventType]map[EventSubscriberId]*subscriber)
	e.mu.Unlock()
	for _, evtTypeSubs := range subsCopy {
		for _, sub := range evtTypeSubs {
			sub.close()
		}
	}
	if e.metrics != nil {
		e.metrics.subscribers.Reset()
	}
}

func (e EventType) String() string {
	return string(e)
}

func (e Event) String() string {
	return fmt.Sprintf("%s@%s", e.Type, e.Timestamp.Format(time.RFC3339Nano))
}
