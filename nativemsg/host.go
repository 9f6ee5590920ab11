package nativemsg

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"

	"github.com/ayoisaiah/diary/engine"
)

// Submitter delivers an event to the dispatcher and returns its reply.
type Submitter interface {
	Submit(ctx context.Context, ev engine.Event) (engine.Reply, error)
}

type frameResult struct {
	err   error
	frame []byte
}

// Serve reads messages from r, submits the decoded events to sub, and writes
// one reply per message to w. It returns nil when r reaches EOF or ctx is
// cancelled. Malformed messages are answered with an error reply; a broken
// frame ends the session since the stream can no longer be trusted.
func Serve(
	ctx context.Context,
	r io.Reader,
	w io.Writer,
	sub Submitter,
	logger *slog.Logger,
) error {
	if logger == nil {
		logger = slog.Default()
	}

	reader := NewReader(r)
	writer := NewWriter(w)

	frames := make(chan frameResult)

	go func() {
		for {
			b, err := reader.ReadFrame()

			select {
			case frames <- frameResult{frame: b, err: err}:
			case <-ctx.Done():
				return
			}

			if err != nil {
				return
			}
		}
	}()

	for {
		var res frameResult

		select {
		case <-ctx.Done():
			return nil
		case res = <-frames:
		}

		if res.err != nil {
			if errors.Is(res.err, io.EOF) {
				logger.Info("browser closed the connection")
				return nil
			}

			return res.err
		}

		reply, err := handle(ctx, res.frame, sub)
		if err != nil {
			return err
		}

		if !reply.OK {
			logger.Warn("message rejected", "error", reply.Error)
		}

		if err := writer.Write(reply); err != nil {
			return err
		}
	}
}

// handle decodes a single message and submits it.
func handle(ctx context.Context, frame []byte, sub Submitter) (engine.Reply, error) {
	var msg engine.Message

	if err := json.Unmarshal(frame, &msg); err != nil {
		return engine.Reply{Error: err.Error()}, nil
	}

	ev, err := msg.Event()
	if err != nil {
		return engine.Reply{Error: err.Error()}, nil
	}

	return sub.Submit(ctx, ev)
}
