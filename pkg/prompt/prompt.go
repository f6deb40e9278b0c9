// Package prompt turns Document_displayAlert calls into a blocking terminal
// question and maps the answer onto Zotero's dialog button codes.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
)

// Outcome is the user's three-way answer to an alert.
type Outcome int

const (
	Confirm Outcome = iota
	Deny
	Dismiss
)

// Icon codes as sent by Zotero, with the label shown to the user.
const (
	IconStop = iota
	IconNotice
	IconCaution
	IconHint
)

var iconLabels = map[int]string{
	IconStop:    "stop",
	IconNotice:  "note",
	IconCaution: "warn",
	IconHint:    "hint",
}

// Button-set codes select which dialog Zotero thinks it is showing; each has
// its own outcome-to-code table.
const (
	ButtonsOKCancel    = 1
	ButtonsYesNo       = 2
	ButtonsYesNoCancel = 3
)

// buttonCode maps an outcome to the code Zotero expects for the given
// button set. The Yes/No/Cancel table (yes=2, no=1, cancel=0) matches
// Zotero's three-button dialogs; the two-button sets collapse deny and
// dismiss onto 0; anything else is a plain OK dialog where every path
// means "acknowledged".
func buttonCode(buttons int, outcome Outcome) int {
	switch buttons {
	case ButtonsOKCancel, ButtonsYesNo:
		if outcome == Confirm {
			return 1
		}
		return 0
	case ButtonsYesNoCancel:
		switch outcome {
		case Confirm:
			return 2
		case Deny:
			return 1
		default:
			return 0
		}
	default:
		return 1
	}
}

// Adapter answers alerts by asking the user. Ask blocks until the user
// answers; the dispatch loop waits with it.
type Adapter struct {
	// Ask poses the question and returns the user's choice. Implementations
	// must not let an interrupt escape: a user interrupt during the prompt
	// is an answer (Dismiss), not a reason to abort the protocol exchange.
	Ask func(question string) Outcome
}

// Alert implements the dispatcher's Alerter.
func (a *Adapter) Alert(text string, icon, buttons int) int {
	label, ok := iconLabels[icon]
	if !ok {
		label = iconLabels[IconNotice]
	}
	outcome := a.Ask(fmt.Sprintf("[%s] %s", label, text))
	return buttonCode(buttons, outcome)
}

// NewTerminal returns an adapter that prompts on out and reads a y/n answer
// from in. A SIGINT delivered while the prompt is open is swallowed and
// treated as Dismiss, so it cannot tear down the dispatch cycle around it.
//
// One long-lived goroutine owns the reader and feeds a line channel; each
// prompt selects on that channel. A prompt dismissed by interrupt therefore
// leaves no goroutine behind on the reader, and an answer typed for a
// dismissed prompt is discarded before the next one is shown.
func NewTerminal(in io.Reader, out io.Writer) *Adapter {
	reader := bufio.NewReader(in)
	lines := make(chan string)
	go func() {
		defer close(lines)
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				return
			}
			lines <- line
		}
	}()

	// Ask runs on the single dispatch goroutine, so plain closure state is
	// enough to remember that the previous prompt was dismissed mid-answer.
	interrupted := false
	return &Adapter{
		Ask: func(question string) Outcome {
			interrupt := make(chan os.Signal, 1)
			signal.Notify(interrupt, os.Interrupt)
			defer signal.Stop(interrupt)

			if interrupted {
				interrupted = false
				// Drop the answer typed for the dismissed prompt, if the
				// user finished it.
				select {
				case <-lines:
				default:
				}
			}

			fmt.Fprintf(out, "%s [y/n] ", question)

			select {
			case line, ok := <-lines:
				if !ok {
					return Dismiss
				}
				switch strings.ToLower(strings.TrimSpace(line)) {
				case "y", "yes":
					return Confirm
				default:
					return Deny
				}
			case <-interrupt:
				interrupted = true
				fmt.Fprintln(out)
				return Dismiss
			}
		},
	}
}
