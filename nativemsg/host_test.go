package nativemsg

import (
	"bytes"
	"context"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayoisaiah/diary/engine"
	"github.com/ayoisaiah/diary/internal/models"
	"github.com/ayoisaiah/diary/tracker"
)

type submitter struct {
	mu     sync.Mutex
	events []engine.Event
	err    error
}

func (s *submitter) Submit(_ context.Context, ev engine.Event) (engine.Reply, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = append(s.events, ev)

	if _, ok := ev.(engine.GoalStatus); ok {
		return engine.Reply{OK: true, Goal: &models.Goal{Type: models.GoalFocus}}, s.err
	}

	return engine.Reply{OK: true}, s.err
}

func readReplies(t *testing.T, b []byte) []engine.Reply {
	t.Helper()

	r := NewReader(bytes.NewReader(b))

	var replies []engine.Reply

	for {
		var reply engine.Reply

		err := r.Read(&reply)
		if err == io.EOF {
			return replies
		}

		require.NoError(t, err)

		replies = append(replies, reply)
	}
}

func TestServe(t *testing.T) {
	var in []byte
	in = append(in, frame(`{"type":"tab_activated","tab_id":3,"url":"https://go.dev/"}`)...)
	in = append(in, frame(`{"type":"warp"}`)...)
	in = append(in, frame(`{not json`)...)
	in = append(in, frame(`{"type":"goal_status"}`)...)

	var out bytes.Buffer

	sub := &submitter{}

	err := Serve(context.Background(), bytes.NewReader(in), &out, sub, nil)
	require.NoError(t, err)

	require.Len(t, sub.events, 2)
	assert.Equal(t, engine.Browser{Event: tracker.TabActivated{
		TabID: 3,
		URL:   "https://go.dev/",
	}}, sub.events[0])
	assert.Equal(t, engine.GoalStatus{}, sub.events[1])

	replies := readReplies(t, out.Bytes())
	require.Len(t, replies, 4)

	assert.True(t, replies[0].OK)
	assert.False(t, replies[1].OK)
	assert.Contains(t, replies[1].Error, "warp")
	assert.False(t, replies[2].OK)
	assert.NotEmpty(t, replies[2].Error)
	require.NotNil(t, replies[3].Goal)
	assert.Equal(t, models.GoalFocus, replies[3].Goal.Type)
}

func TestServeStopsOnSubmitError(t *testing.T) {
	sub := &submitter{err: engine.ErrStopped}

	err := Serve(
		context.Background(),
		bytes.NewReader(frame(`{"type":"export"}`)),
		io.Discard,
		sub,
		nil,
	)

	assert.ErrorIs(t, err, engine.ErrStopped)
}

func TestServeTruncatedStream(t *testing.T) {
	in := frame(`{"type":"export"}`)

	err := Serve(
		context.Background(),
		bytes.NewReader(in[:len(in)-3]),
		io.Discard,
		&submitter{},
		nil,
	)

	assert.ErrorIs(t, err, errTruncated)
}

func TestServeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pr, pw := io.Pipe()
	defer pw.Close()

	err := Serve(ctx, pr, io.Discard, &submitter{}, nil)
	assert.NoError(t, err)
}
