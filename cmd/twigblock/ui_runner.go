package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"twigblock/internal/pipeline"
	"twigblock/internal/ui"
)

type outcome[T any] struct {
	result T
	err    error
}

// runWithUI runs op in the background and renders its progress events
// until op returns.
func runWithUI[T any](ctx context.Context, title string, req *pipeline.Request, op func(context.Context, *pipeline.Request) (T, error)) (T, error) {
	if req == nil {
		var zero T
		return zero, fmt.Errorf("missing request")
	}
	events := make(chan pipeline.Event, 256)
	outcomeCh := make(chan outcome[T], 1)

	go func() {
		reqCopy := *req
		reqCopy.Progress = pipeline.ChannelSink{Ch: events}
		res, err := op(ctx, &reqCopy)
		outcomeCh <- outcome[T]{result: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, nil, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout), tea.WithContext(ctx))
	_, uiErr := program.Run()
	if uiErr != nil {
		// drain so the worker never blocks on a full channel
		go func() {
			for range events {
			}
		}()
	}
	out := <-outcomeCh
	if uiErr != nil && out.err == nil {
		return out.result, uiErr
	}
	return out.result, out.err
}

// run executes op with or without the progress UI.
func run[T any](ctx context.Context, s *settings, title string, req *pipeline.Request, op func(context.Context, *pipeline.Request) (T, error)) (T, error) {
	if s.useUI {
		return runWithUI(ctx, title, req, op)
	}
	return op(ctx, req)
}
