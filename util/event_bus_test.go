// util/event_bus_test.go

package util_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	logger "github.com/prevet-io/prevet/logging"
	"github.com/prevet-io/prevet/util"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "prevet-test")
	if err != nil {
		panic(err)
	}
	logger.InitLogger(dir)
	code := m.Run()
	os.RemoveAll(dir)
	os.Exit(code)
}

func TestEventBusDeliversToSubscribers(t *testing.T) {
	eventBus := util.NewEventBus()
	received := make(chan util.Event, 2)

	eventBus.Subscribe(util.EventDecisionChecked, func(ctx context.Context, event util.Event) error {
		received <- event
		return nil
	})
	eventBus.Subscribe(util.EventDecisionChecked, func(ctx context.Context, event util.Event) error {
		received <- event
		return nil
	})

	eventBus.Publish(context.Background(), util.EventDecisionChecked, "payload")

	for i := 0; i < 2; i++ {
		select {
		case event := <-received:
			assert.Equal(t, util.EventDecisionChecked, event.Type)
			assert.Equal(t, "payload", event.Payload)
		case <-time.After(time.Second):
			t.Fatal("event not delivered")
		}
	}
}

func TestEventBusIgnoresUnknownTopics(t *testing.T) {
	eventBus := util.NewEventBus()
	received := make(chan util.Event, 1)

	eventBus.Subscribe(util.EventDecisionChecked, func(ctx context.Context, event util.Event) error {
		received <- event
		return nil
	})

	eventBus.Publish(context.Background(), util.EventDeclarationRegistered, "payload")

	select {
	case <-received:
		t.Fatal("handler should not receive events for other topics")
	case <-time.After(50 * time.Millisecond):
	}
}
