package worker

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"catalog/internal/logger"
	"catalog/internal/worker/processors"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHandler struct {
	mu     sync.Mutex
	events []Event
	done   chan struct{}
	err    error
}

func newRecordingHandler() *recordingHandler {
	return &recordingHandler{done: make(chan struct{}, 10)}
}

func (h *recordingHandler) Process(ctx context.Context, event Event) error {
	h.mu.Lock()
	h.events = append(h.events, event)
	h.mu.Unlock()
	h.done <- struct{}{}
	return h.err
}

func (h *recordingHandler) types() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.events))
	for i, e := range h.events {
		out[i] = e.Type
	}
	return out
}

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return w.err
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

type fakeReader struct {
	msgs []kafka.Message
}

func (r *fakeReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	if len(r.msgs) == 0 {
		return kafka.Message{}, io.EOF
	}
	m := r.msgs[0]
	r.msgs = r.msgs[1:]
	return m, nil
}

func (r *fakeReader) Close() error { return nil }

func TestLocalDispatcher_DetachesFromCaller(t *testing.T) {
	h := newRecordingHandler()
	d := NewLocalDispatcher(h, logger.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, d.Dispatch(ctx, processors.NewEvent(processors.EventOptimizeAll, "", nil)))
	cancel()

	select {
	case <-h.done:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not run")
	}
	assert.Equal(t, []string{processors.EventOptimizeAll}, h.types())
}

func TestKafkaDispatcher_PublishesJSON(t *testing.T) {
	w := &fakeWriter{}
	d := &KafkaDispatcher{writer: w, topic: "catalog-jobs", logger: logger.NewNop()}

	event := processors.NewEvent(processors.EventPushLatest, "12", nil)
	require.NoError(t, d.Dispatch(context.Background(), event))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, processors.EventPushLatest, string(w.msgs[0].Key))

	var decoded Event
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &decoded))
	assert.Equal(t, "12", decoded.ProductID)

	w.err = errors.New("broker down")
	assert.ErrorContains(t, d.Dispatch(context.Background(), event), "broker down")

	require.NoError(t, d.Close())
	assert.True(t, w.closed)
}

func TestWorker_ConsumesUntilReaderCloses(t *testing.T) {
	syncMsg, _ := json.Marshal(processors.NewEvent(processors.EventSync, "", map[string]interface{}{"limit": 5}))
	push, _ := json.Marshal(processors.NewEvent(processors.EventPushLatest, "1", nil))

	h := newRecordingHandler()
	h.err = errors.New("ignored")
	w := &Worker{
		logger:  logger.NewNop(),
		handler: h,
		reader: &fakeReader{msgs: []kafka.Message{
			{Value: syncMsg},
			{Value: []byte("not json")},
			{Value: push},
		}},
	}

	w.Start(context.Background())
	assert.Equal(t, []string{processors.EventSync, processors.EventPushLatest}, h.types())
}

func TestSyncScheduler(t *testing.T) {
	h := newRecordingHandler()
	d := NewLocalDispatcher(h, logger.NewNop())

	assert.NoError(t, NewSyncScheduler("", d, 20, logger.NewNop()).Start())
	assert.Error(t, NewSyncScheduler("not a schedule", d, 20, logger.NewNop()).Start())

	s := NewSyncScheduler("@every 1h", d, 15, logger.NewNop())
	require.NoError(t, s.Start())
	defer s.Stop()

	s.enqueue()
	select {
	case <-h.done:
	case <-time.After(2 * time.Second):
		t.Fatal("sync was not dispatched")
	}
	require.Len(t, h.events, 1)
	assert.Equal(t, 15, h.events[0].Data["limit"])
}
