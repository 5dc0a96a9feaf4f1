package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

const spinnerInterval = 100 * time.Millisecond

var spinnerFrames = []string{"|", "/", "-", "\\"} //nolint:gochecknoglobals // fixed animation frames

// progress draws a single-line spinner to out until finish is called.
type progress struct {
	out      io.Writer
	label    string
	interval time.Duration
	quit     chan struct{}
	exited   chan struct{}
	once     sync.Once
}

func newProgress(out io.Writer, label string) (p *progress) {
	p = &progress{
		out:      out,
		label:    label,
		interval: spinnerInterval,
		quit:     make(chan struct{}),
		exited:   make(chan struct{}),
	}
	return p
}

func (p *progress) run() {
	go func() {
		defer close(p.exited)

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		_, _ = fmt.Fprintf(p.out, "%s ", p.label)
		for frame := 0; ; frame++ {
			select {
			case <-p.quit:
				_, _ = fmt.Fprintf(p.out, "\r%s\r", strings.Repeat(" ", len(p.label)+2))
				return
			case <-ticker.C:
				_, _ = fmt.Fprintf(p.out, "\r%s %s", p.label, spinnerFrames[frame%len(spinnerFrames)])
			}
		}
	}()
}

// finish stops the animation and clears the line. Safe to call more than once.
func (p *progress) finish() {
	p.once.Do(func() {
		close(p.quit)
		<-p.exited
	})
}

// withSpinner runs fn behind a spinner on out unless verbose output is on.
func withSpinner(out io.Writer, label string, fn func() error) (err error) {
	if getVerbose() {
		_, _ = fmt.Fprintln(out, label)
		err = fn()
		return err
	}

	p := newProgress(out, label)
	p.run()
	defer p.finish()

	err = fn()
	return err
}

func stdoutSpinner(label string, fn func() error) (err error) {
	err = withSpinner(os.Stdout, label, fn)
	return err
}
