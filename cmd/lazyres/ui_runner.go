package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"lazyres/internal/driver"
	"lazyres/internal/phase"
	"lazyres/internal/resolve"
	"lazyres/internal/ui"
)

type batchOutcome struct {
	session *driver.Session
	result  driver.BatchResult
	err     error
}

// runBatchWithUI opens and resolves paths while a progress view renders
// the driver's events.
func runBatchWithUI(ctx context.Context, title string, paths []string, opts driver.Options, to phase.Phase, reqOpts []resolve.RequestOption) (*driver.Session, driver.BatchResult, error) {
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan batchOutcome, 1)

	go func() {
		opts.Progress = driver.ChannelSink{Ch: events}
		var out batchOutcome
		out.session, out.err = driver.Open(ctx, paths, opts)
		if out.err == nil {
			watchSession(out.session)
			out.result, out.err = out.session.ResolveAll(ctx, to, reqOpts...)
		}
		outcomeCh <- out
		close(events)
	}()

	model := ui.NewProgressModel(title, paths, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	// the model may quit early on ctrl-c; keep draining so the batch never blocks
	go func() {
		for range events {
		}
	}()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.session, outcome.result, uiErr
	}
	return outcome.session, outcome.result, outcome.err
}
