// Package cliui implements pkg/events.Sink with pterm, the terminal UI
// library morler-codai's cmd package drives its spinners and prompts
// through.
package cliui

import (
	"sync"

	"github.com/pterm/pterm"

	"github.com/nullptr-dev/trailindex/pkg/events"
)

// Sink is the default events.Sink for cmd/trailindex: status lines and
// the finish-parsing loader render as a pterm spinner, ShowStatusDialog
// and Confirm as pterm's interactive printers and select prompt.
type Sink struct {
	mu          sync.Mutex
	errorCount  int
	spinner     *pterm.SpinnerPrinter
	licenseGate func(fn func())
}

// New returns a Sink. licenseGate, if non-nil, is called instead of
// invoking fn immediately from DispatchWhenLicenseValid — wire it to a
// real license check; nil means "always valid", matching
// events.NopSink's behavior.
func New(licenseGate func(fn func())) *Sink {
	return &Sink{licenseGate: licenseGate}
}

func (s *Sink) ClearErrorCount() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errorCount = 0
}

func (s *Sink) FinishedParsing() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.spinner != nil {
		s.spinner.Success("Indexing finished")
		s.spinner = nil
	}
	if s.errorCount > 0 {
		pterm.Warning.Printfln("finished with %d error(s)", s.errorCount)
	}
}

func (s *Sink) Status(text string, isError, showLoader bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if isError {
		s.errorCount++
		pterm.Error.Println(text)
		return
	}

	if !showLoader {
		pterm.Info.Println(text)
		return
	}

	if s.spinner == nil {
		spinner, _ := pterm.DefaultSpinner.
			WithStyle(pterm.NewStyle(pterm.FgCyan)).
			WithRemoveWhenDone(true).
			Start(text)
		s.spinner = spinner
		return
	}
	s.spinner.UpdateText(text)
}

func (s *Sink) Refresh() {
	s.mu.Lock()
	spinner := s.spinner
	s.spinner = nil
	s.mu.Unlock()

	if spinner != nil {
		spinner.Stop()
	}
	pterm.Success.Println("project refreshed")
}

func (s *Sink) ShowStatusDialog(title, text string) {
	pterm.DefaultSection.Println(title)
	pterm.Println(text)
}

// Confirm shows an interactive select prompt over options and returns
// the chosen index, matching events.Sink's contract.
func (s *Sink) Confirm(question string, options []string) int {
	if len(options) == 0 {
		return 0
	}
	choice, err := pterm.DefaultInteractiveSelect.
		WithOptions(options).
		WithDefaultText(question).
		Show()
	if err != nil {
		return 0
	}
	for i, opt := range options {
		if opt == choice {
			return i
		}
	}
	return 0
}

func (s *Sink) DispatchWhenLicenseValid(fn func()) {
	if fn == nil {
		return
	}
	if s.licenseGate != nil {
		s.licenseGate(fn)
		return
	}
	fn()
}

var _ events.Sink = (*Sink)(nil)
