package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/casualjim/courier/pkg/stdx"
	"github.com/casualjim/courier/sink"
	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"
)

// consoleSurface is the local chat surface: a MessageSink that paints
// incremental updates onto the terminal and an AlertSink that prints
// monitoring notifications. Updates carry the full accumulated content, so
// only the unseen suffix of each update is printed.
type consoleSurface struct {
	mu      sync.Mutex
	w       io.Writer
	printed map[string]int
	pretty  bool
	glam    *glamour.TermRenderer
}

func newConsoleSurface(w io.Writer) *consoleSurface {
	return &consoleSurface{
		w:       w,
		printed: make(map[string]int),
		glam:    stdx.Must1(glamour.NewTermRenderer(glamour.WithAutoStyle())),
	}
}

func (c *consoleSurface) Update(ctx context.Context, channelID, messageID, content string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pretty {
		// Pretty mode repaints the whole answer at the end instead.
		return nil
	}

	seen := c.printed[messageID]
	if len(content) > seen {
		fmt.Fprint(c.w, content[seen:])
		c.printed[messageID] = len(content)
	}
	return nil
}

func (c *consoleSurface) Notify(ctx context.Context, title, message, channelID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	fmt.Fprintf(c.w, "\n%s %s: %s\n", color.YellowString("⚠"), color.YellowString(title), message)
	return nil
}

// Finish closes out one streamed message: a trailing newline in raw mode, a
// full markdown repaint in pretty mode.
func (c *consoleSurface) Finish(messageID, answer string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.printed, messageID)
	if !c.pretty {
		fmt.Fprintln(c.w)
		return
	}

	out, err := c.glam.Render(answer)
	if err != nil {
		fmt.Fprintln(c.w, answer)
		return
	}
	fmt.Fprintln(c.w, out)
}

func (c *consoleSurface) TogglePretty() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pretty = !c.pretty
}

func (c *consoleSurface) Pretty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pretty
}

// fanoutMessages delivers each update to every sink, keeping going past
// failures.
type fanoutMessages []sink.MessageSink

func (f fanoutMessages) Update(ctx context.Context, channelID, messageID, content string) error {
	var errs []error
	for _, s := range f {
		if err := s.Update(ctx, channelID, messageID, content); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// fanoutAlerts delivers each alert to every sink, keeping going past
// failures.
type fanoutAlerts []sink.AlertSink

func (f fanoutAlerts) Notify(ctx context.Context, title, message, channelID string) error {
	var errs []error
	for _, s := range f {
		if err := s.Notify(ctx, title, message, channelID); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
