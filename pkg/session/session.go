// Package session drives the interactive loop that gates reporting and the
// optional email notification behind a small protocol of confirmations.
package session

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nyuappdev/dining-audit/internal/utils"
	"github.com/nyuappdev/dining-audit/pkg/recon"
	"github.com/nyuappdev/dining-audit/pkg/report"
)

// State enumerates every position in the session dialog. Transitions only
// happen inside HandleLine, so illegal ones simply cannot occur.
type State int

const (
	StateConfiguring State = iota
	StateStandard
	StateWillRerun
	StateWillReceiveEmail
	StateWillConfirmEmail
	StateWillRememberEmail
	StateWillDisableEmail
	StateWillForgetEmail
	StateWillAutoSendEmails
)

const reportSubject = "dining-audit error report"

// Controller owns the session: it triggers runs, answers commands, walks
// the email sub-dialog, and persists every preference change. All methods
// must be called from a single goroutine; the auto-rerun timer only posts
// to a channel the owning loop consumes.
type Controller struct {
	Out    io.Writer
	Cfg    *Config
	Store  Store
	Mailer Mailer
	Runner func() *recon.RunState

	state       State
	run         *recon.RunState
	runCount    int
	pendingAddr string
	rerunTimer  *time.Timer
	timerC      chan struct{}
}

func NewController(out io.Writer, cfg *Config, store Store, mailer Mailer, runner func() *recon.RunState) *Controller {
	return &Controller{
		Out:    out,
		Cfg:    cfg,
		Store:  store,
		Mailer: mailer,
		Runner: runner,
		state:  StateConfiguring,
		timerC: make(chan struct{}, 1),
	}
}

func (c *Controller) State() State { return c.state }

// RunCount reports how many pipeline passes have happened. The input loop
// uses it to discard keystrokes that arrived while a run was in flight.
func (c *Controller) RunCount() int { return c.runCount }

// CurrentRun returns the state of the most recent pass.
func (c *Controller) CurrentRun() *recon.RunState { return c.run }

// AutoRerunC delivers at most one pending auto-rerun request.
func (c *Controller) AutoRerunC() <-chan struct{} { return c.timerC }

// Start performs the initial run and enters the standard prompt.
func (c *Controller) Start() {
	c.doRun()
}

// Rerun discards the previous RunState and runs the whole pipeline again.
func (c *Controller) Rerun() {
	c.stopTimer()
	fmt.Fprintln(c.Out, "rerunning all checks")
	c.doRun()
}

func (c *Controller) doRun() {
	c.state = StateConfiguring
	c.runCount++
	c.run = c.Runner()
	c.finishRun()
	c.state = StateStandard
	c.prompt()
}

func (c *Controller) finishRun() {
	if c.run.Fatal {
		fmt.Fprintln(c.Out, "fatal error occurred; no results are available (l shows the log)")
	} else {
		fmt.Fprintf(c.Out, "run complete: %d names classified, %d error/warning lines\n",
			len(c.run.Names()), len(c.run.Transcript))
	}

	if !c.run.Fatal && c.Cfg.AutoSend == TriYes && c.Cfg.Email != "" && len(c.run.Transcript) > 0 {
		c.sendReport(c.Cfg.Email)
	}

	if c.Cfg.DevMode && c.Cfg.RerunIntervalMinutes > 0 {
		c.armTimer()
	}
}

// HandleLine processes one line of operator input. Input arriving before
// the current run completes is dropped.
func (c *Controller) HandleLine(line string) {
	if c.run == nil || !c.run.Completed || c.state == StateConfiguring {
		return
	}

	in := strings.TrimSpace(line)
	switch c.state {
	case StateStandard:
		c.handleStandard(in)
	case StateWillRerun:
		c.handleWillRerun(in)
	case StateWillReceiveEmail:
		c.handleReceiveEmail(in)
	case StateWillConfirmEmail:
		c.handleConfirmEmail(in)
	case StateWillRememberEmail:
		c.handleRememberEmail(in)
	case StateWillDisableEmail:
		c.handleDisableEmail(in)
	case StateWillForgetEmail:
		c.handleForgetEmail(in)
	case StateWillAutoSendEmails:
		c.handleAutoSendEmails(in)
	}
}

func (c *Controller) handleStandard(in string) {
	switch in {
	case "p":
		c.showResults(recon.StatusPassed)
	case "x":
		c.showResults(recon.StatusXMLError)
	case "m":
		c.showResults(recon.StatusMenuError)
	case "s":
		c.showResults(recon.StatusSiteError)
	case "e":
		c.showExcess()
	case "t":
		c.showTable()
	case "g":
		fmt.Fprint(c.Out, report.Glossary())
		c.prompt()
	case "h":
		fmt.Fprint(c.Out, report.Help())
		c.prompt()
	case "l":
		c.showErrorLog()
	case "r":
		c.state = StateWillRerun
		c.prompt()
	case "d":
		if c.Cfg.AutoSend == TriYes {
			c.state = StateWillDisableEmail
			c.prompt()
		} else {
			fmt.Fprintln(c.Out, "auto-send is not enabled")
			c.prompt()
		}
	case "f":
		if c.Cfg.Email != "" {
			c.state = StateWillForgetEmail
			c.prompt()
		} else {
			fmt.Fprintln(c.Out, "no email address is remembered")
			c.prompt()
		}
	default:
		fmt.Fprintf(c.Out, "unrecognized command %q (h for help)\n", in)
		c.prompt()
	}
}

func (c *Controller) showResults(s recon.Status) {
	if c.run.Fatal {
		fmt.Fprintln(c.Out, "fatal error occurred during the last run; no results are available")
	} else {
		fmt.Fprint(c.Out, report.View(c.run, s))
	}
	c.prompt()
}

func (c *Controller) showExcess() {
	if c.run.Fatal {
		fmt.Fprintln(c.Out, "fatal error occurred during the last run; no results are available")
	} else {
		fmt.Fprint(c.Out, report.ExcessView(c.run))
	}
	c.prompt()
}

func (c *Controller) showTable() {
	if c.run.Fatal {
		fmt.Fprintln(c.Out, "fatal error occurred during the last run; no results are available")
	} else {
		fmt.Fprint(c.Out, report.Table(c.run))
	}
	c.prompt()
}

// showErrorLog prints the transcript and, depending on the persisted
// preference, silently auto-sends it, stops, or opens the email dialog.
func (c *Controller) showErrorLog() {
	if len(c.run.Transcript) == 0 {
		fmt.Fprintln(c.Out, "no errors or warnings were recorded")
		c.prompt()
		return
	}

	for _, line := range c.run.Transcript {
		fmt.Fprintln(c.Out, line)
	}

	switch {
	case c.Cfg.AutoSend == TriNo:
		c.prompt()
	case c.Cfg.AutoSend == TriYes && c.Cfg.Email != "":
		c.sendReport(c.Cfg.Email)
		c.prompt()
	case c.Cfg.Email != "":
		c.pendingAddr = c.Cfg.Email
		c.state = StateWillConfirmEmail
		c.prompt()
	default:
		c.state = StateWillReceiveEmail
		c.prompt()
	}
}

func (c *Controller) handleWillRerun(in string) {
	switch parseYN(in) {
	case answerYes:
		c.Rerun()
	case answerNo:
		c.toStandard()
	default:
		c.invalidYN()
	}
}

func (c *Controller) handleReceiveEmail(in string) {
	if in == "" {
		fmt.Fprintln(c.Out, "canceled")
		c.toStandard()
		return
	}
	if !ValidAddress(in) {
		fmt.Fprintf(c.Out, "%q is not a valid email address\n", in)
		c.prompt()
		return
	}
	c.pendingAddr = in
	c.state = StateWillConfirmEmail
	c.prompt()
}

func (c *Controller) handleConfirmEmail(in string) {
	switch parseYN(in) {
	case answerYes:
		c.sendReport(c.pendingAddr)
		c.afterSend()
	case answerNo:
		c.state = StateWillReceiveEmail
		c.prompt()
	default:
		c.invalidYN()
	}
}

// afterSend walks the follow-up questions: remember the address, then
// (first time only) whether to auto-send after every run.
func (c *Controller) afterSend() {
	switch c.Cfg.RememberEmail {
	case TriUnset:
		c.state = StateWillRememberEmail
		c.prompt()
	case TriYes:
		if c.Cfg.Email != c.pendingAddr {
			c.Cfg.Email = c.pendingAddr
			c.save()
		}
		c.maybeAskAutoSend()
	default:
		c.toStandard()
	}
}

func (c *Controller) maybeAskAutoSend() {
	if c.Cfg.AutoSend == TriUnset && c.Cfg.Email != "" {
		c.state = StateWillAutoSendEmails
		c.prompt()
		return
	}
	c.toStandard()
}

func (c *Controller) handleRememberEmail(in string) {
	switch parseYN(in) {
	case answerYes:
		c.Cfg.RememberEmail = TriYes
		c.Cfg.Email = c.pendingAddr
		c.save()
		c.maybeAskAutoSend()
	case answerNo:
		c.Cfg.RememberEmail = TriNo
		c.save()
		c.toStandard()
	default:
		c.invalidYN()
	}
}

func (c *Controller) handleDisableEmail(in string) {
	switch parseYN(in) {
	case answerYes:
		c.Cfg.AutoSend = TriNo
		c.save()
		fmt.Fprintln(c.Out, "auto-send disabled")
		c.toStandard()
	case answerNo:
		c.toStandard()
	default:
		c.invalidYN()
	}
}

func (c *Controller) handleForgetEmail(in string) {
	switch parseYN(in) {
	case answerYes:
		c.Cfg.Email = ""
		c.Cfg.RememberEmail = TriUnset
		c.save()
		fmt.Fprintln(c.Out, "address forgotten")
		c.toStandard()
	case answerNo:
		c.toStandard()
	default:
		c.invalidYN()
	}
}

func (c *Controller) handleAutoSendEmails(in string) {
	switch parseYN(in) {
	case answerYes:
		c.Cfg.AutoSend = TriYes
		c.save()
		fmt.Fprintln(c.Out, "the error log will be emailed automatically after every run")
		c.toStandard()
	case answerNo:
		c.Cfg.AutoSend = TriNo
		c.save()
		c.toStandard()
	default:
		c.invalidYN()
	}
}

func (c *Controller) sendReport(to string) {
	body := ComposeReport(c.run.Transcript, time.Now())
	if err := c.Mailer.Send(to, reportSubject, body); err != nil {
		utils.Log.Errorf("report email to %s failed: %v", to, err)
		fmt.Fprintf(c.Out, "could not send the report to %s\n", to)
		return
	}
	utils.Log.Infof("report emailed to %s", to)
	fmt.Fprintf(c.Out, "report sent to %s\n", to)
}

func (c *Controller) save() {
	if err := c.Store.Save(c.Cfg); err != nil {
		utils.Log.Errorf("saving preferences failed: %v", err)
	}
}

func (c *Controller) toStandard() {
	c.state = StateStandard
	c.prompt()
}

func (c *Controller) invalidYN() {
	fmt.Fprintln(c.Out, `please answer "y" or "n"`)
	c.prompt()
}

func (c *Controller) prompt() {
	switch c.state {
	case StateStandard:
		fmt.Fprint(c.Out, "enter a command (h for help): ")
	case StateWillRerun:
		fmt.Fprint(c.Out, "rerun all checks? (y/n): ")
	case StateWillReceiveEmail:
		fmt.Fprint(c.Out, "enter an email address for the report (blank to cancel): ")
	case StateWillConfirmEmail:
		fmt.Fprintf(c.Out, "send the report to %s? (y/n): ", c.pendingAddr)
	case StateWillRememberEmail:
		fmt.Fprintf(c.Out, "remember %s for future reports? (y/n): ", c.pendingAddr)
	case StateWillDisableEmail:
		fmt.Fprint(c.Out, "stop auto-sending the error log? (y/n): ")
	case StateWillForgetEmail:
		fmt.Fprintf(c.Out, "forget %s? (y/n): ", c.Cfg.Email)
	case StateWillAutoSendEmails:
		fmt.Fprint(c.Out, "automatically email the error log after every run? (y/n): ")
	}
}

func (c *Controller) armTimer() {
	c.stopTimer()
	d := time.Duration(c.Cfg.RerunIntervalMinutes) * time.Minute
	c.rerunTimer = time.AfterFunc(d, func() {
		select {
		case c.timerC <- struct{}{}:
		default:
		}
	})
}

func (c *Controller) stopTimer() {
	if c.rerunTimer != nil {
		c.rerunTimer.Stop()
		c.rerunTimer = nil
	}
	// The timer may have fired before Stop; discard the stale request so
	// a manual rerun is not followed by an automatic one.
	select {
	case <-c.timerC:
	default:
	}
}

type answer int

const (
	answerInvalid answer = iota
	answerYes
	answerNo
)

func parseYN(in string) answer {
	switch strings.ToLower(in) {
	case "y", "yes":
		return answerYes
	case "n", "no":
		return answerNo
	}
	return answerInvalid
}
