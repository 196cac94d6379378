package cli

import (
	"fmt"
	"time"

	"github.com/briandowns/spinner"
)

// Progress shows a spinner while a release runs. In quiet mode every call
// is a no-op so scripted invocations stay clean.
type Progress struct {
	spinner *spinner.Spinner
	quiet   bool
}

// NewProgress creates a progress indicator. Quiet disables all output.
func NewProgress(quiet bool) *Progress {
	return &Progress{quiet: quiet}
}

// Start begins the spinner with the given message.
func (p *Progress) Start(msg string) {
	if p.quiet {
		return
	}
	p.spinner = spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	p.spinner.Suffix = " " + msg
	p.spinner.Start()
}

// Update changes the message without restarting the spinner.
func (p *Progress) Update(msg string) {
	if p.quiet || p.spinner == nil {
		return
	}
	p.spinner.Suffix = " " + msg
}

// Succeed stops the spinner and prints a success line.
func (p *Progress) Succeed(msg string) {
	p.finish(FormatSuccess(msg))
}

// Fail stops the spinner and prints a failure line.
func (p *Progress) Fail(msg string) {
	p.finish(FormatError(fmt.Errorf("%s", msg)))
}

// Stop halts the spinner without printing anything.
func (p *Progress) Stop() {
	if p.quiet || p.spinner == nil {
		return
	}
	p.spinner.Stop()
	p.spinner = nil
}

func (p *Progress) finish(line string) {
	if p.quiet {
		return
	}
	if p.spinner != nil {
		p.spinner.FinalMSG = line + "\n"
		p.spinner.Stop()
		p.spinner = nil
		return
	}
	fmt.Println(line)
}
