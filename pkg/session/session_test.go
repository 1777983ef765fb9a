package session

import (
	"bytes"
	"strings"
	"testing"

	"github.com/nyuappdev/dining-audit/pkg/recon"
)

type memStore struct {
	saved int
	last  Config
}

func (s *memStore) Load() (*Config, error) {
	cfg := s.last
	return &cfg, nil
}

func (s *memStore) Save(cfg *Config) error {
	s.saved++
	s.last = *cfg
	return nil
}

type fakeMailer struct {
	sent []string // "to|subject"
	body string
	fail bool
}

func (m *fakeMailer) Send(to, subject, htmlBody string) error {
	if m.fail {
		return errSendFailed
	}
	m.sent = append(m.sent, to+"|"+subject)
	m.body = htmlBody
	return nil
}

var errSendFailed = &sendError{}

type sendError struct{}

func (*sendError) Error() string { return "send failed" }

func healthyRun() *recon.RunState {
	run := recon.NewRunState()
	run.Record("Kimmel", recon.StatusPassed)
	run.Transcript = []string{"[WARN] Upstein: not listed on the dining page"}
	run.Completed = true
	return run
}

func fatalRun() *recon.RunState {
	run := recon.NewRunState()
	run.Transcript = []string{"[ERROR] locations.xml load failed: no <location> entries"}
	run.Completed = true
	run.Fatal = true
	return run
}

type harness struct {
	out    *bytes.Buffer
	store  *memStore
	mailer *fakeMailer
	ctl    *Controller
}

func newHarness(cfg Config, runner func() *recon.RunState) *harness {
	h := &harness{
		out:    &bytes.Buffer{},
		store:  &memStore{last: cfg},
		mailer: &fakeMailer{},
	}
	c := cfg
	h.ctl = NewController(h.out, &c, h.store, h.mailer, runner)
	h.ctl.Start()
	h.out.Reset()
	return h
}

func (h *harness) input(t *testing.T, lines ...string) string {
	t.Helper()
	h.out.Reset()
	for _, line := range lines {
		h.ctl.HandleLine(line)
	}
	return h.out.String()
}

func TestBogusCommandReprompts(t *testing.T) {
	h := newHarness(Config{}, healthyRun)

	got := h.input(t, "bogus")
	if !strings.Contains(got, `unrecognized command "bogus"`) {
		t.Fatalf("expected the invalid-command line, got:\n%s", got)
	}
	if !strings.Contains(got, "enter a command") {
		t.Fatalf("expected the standard prompt again, got:\n%s", got)
	}
	if h.ctl.State() != StateStandard || h.ctl.RunCount() != 1 {
		t.Fatal("bogus input must not change state or trigger a run")
	}
}

func TestFatalRunGatesReports(t *testing.T) {
	h := newHarness(Config{}, fatalRun)

	for _, cmdKey := range []string{"p", "x", "m", "s", "e", "t"} {
		got := h.input(t, cmdKey)
		if !strings.Contains(got, "fatal error occurred") {
			t.Fatalf("command %q should report the fatal error, got:\n%s", cmdKey, got)
		}
	}

	// The log remains inspectable.
	got := h.input(t, "l")
	if !strings.Contains(got, "locations.xml load failed") {
		t.Fatalf("error log should still show the fatal line, got:\n%s", got)
	}
}

func TestRerunConfirmation(t *testing.T) {
	h := newHarness(Config{}, healthyRun)

	h.input(t, "r", "n")
	if h.ctl.RunCount() != 1 {
		t.Fatal("declined rerun must not run the pipeline")
	}

	got := h.input(t, "r", "maybe")
	if !strings.Contains(got, `"y" or "n"`) {
		t.Fatalf("invalid confirmation should re-prompt, got:\n%s", got)
	}
	if h.ctl.State() != StateWillRerun {
		t.Fatal("invalid confirmation must not advance the state")
	}

	h.input(t, "y")
	if h.ctl.RunCount() != 2 {
		t.Fatalf("confirmed rerun should run again, count=%d", h.ctl.RunCount())
	}
	if h.ctl.State() != StateStandard {
		t.Fatal("controller should be back at the standard prompt")
	}
}

func TestEmailDialogFullWalk(t *testing.T) {
	h := newHarness(Config{}, healthyRun)

	got := h.input(t, "l")
	if !strings.Contains(got, "enter an email address") {
		t.Fatalf("expected the address prompt after the log, got:\n%s", got)
	}

	got = h.input(t, "not-an-address")
	if !strings.Contains(got, "not a valid email address") {
		t.Fatalf("expected a validation error, got:\n%s", got)
	}
	if h.ctl.State() != StateWillReceiveEmail {
		t.Fatal("invalid address must re-issue the same prompt")
	}

	h.input(t, "ops@sub.nyu.edu")
	if h.ctl.State() != StateWillConfirmEmail {
		t.Fatal("valid address should move to confirmation")
	}

	h.input(t, "y") // send
	if len(h.mailer.sent) != 1 || !strings.HasPrefix(h.mailer.sent[0], "ops@sub.nyu.edu|") {
		t.Fatalf("expected one report email, got %v", h.mailer.sent)
	}
	if h.ctl.State() != StateWillRememberEmail {
		t.Fatal("first send should ask to remember the address")
	}

	h.input(t, "y") // remember
	if h.store.last.Email != "ops@sub.nyu.edu" || h.store.last.RememberEmail != TriYes {
		t.Fatalf("remember answer not persisted: %+v", h.store.last)
	}
	if h.ctl.State() != StateWillAutoSendEmails {
		t.Fatal("first remembered address should ask about auto-send")
	}

	h.input(t, "y") // auto-send
	if h.store.last.AutoSend != TriYes {
		t.Fatalf("auto-send answer not persisted: %+v", h.store.last)
	}
	if h.ctl.State() != StateStandard {
		t.Fatal("dialog should end back at the standard prompt")
	}
}

func TestEmailDialogCancel(t *testing.T) {
	h := newHarness(Config{}, healthyRun)

	h.input(t, "l")
	got := h.input(t, "")
	if !strings.Contains(got, "canceled") {
		t.Fatalf("blank address should cancel, got:\n%s", got)
	}
	if h.ctl.State() != StateStandard || len(h.mailer.sent) != 0 {
		t.Fatal("cancel must send nothing and return to standard")
	}
}

func TestConfirmNoReturnsToAddressPrompt(t *testing.T) {
	h := newHarness(Config{}, healthyRun)

	h.input(t, "l", "ops@nyu.edu", "n")
	if h.ctl.State() != StateWillReceiveEmail {
		t.Fatal("declining the confirmation should re-open the address prompt")
	}
}

func TestAutoSendSkipsDialog(t *testing.T) {
	cfg := Config{AutoSend: TriYes, RememberEmail: TriYes, Email: "ops@nyu.edu"}
	h := newHarness(cfg, healthyRun)

	// Start() already auto-sent once because the transcript is non-empty.
	if len(h.mailer.sent) != 1 {
		t.Fatalf("expected the post-run auto-send, got %v", h.mailer.sent)
	}

	h.input(t, "l")
	if len(h.mailer.sent) != 2 {
		t.Fatalf("expected a silent send after viewing the log, got %v", h.mailer.sent)
	}
	if h.ctl.State() != StateStandard {
		t.Fatal("auto-send must not open the dialog")
	}
}

func TestAutoSendNeverAsks(t *testing.T) {
	cfg := Config{AutoSend: TriNo}
	h := newHarness(cfg, healthyRun)

	got := h.input(t, "l")
	if strings.Contains(got, "email address") {
		t.Fatalf("auto-send=no must not open the dialog, got:\n%s", got)
	}
	if len(h.mailer.sent) != 0 {
		t.Fatal("auto-send=no must not send anything")
	}
}

func TestRememberedAddressOffersConfirmOnly(t *testing.T) {
	cfg := Config{RememberEmail: TriYes, Email: "ops@nyu.edu"}
	h := newHarness(cfg, healthyRun)

	got := h.input(t, "l")
	if !strings.Contains(got, "send the report to ops@nyu.edu?") {
		t.Fatalf("expected the remembered-address confirmation, got:\n%s", got)
	}

	h.input(t, "y")
	if len(h.mailer.sent) != 1 {
		t.Fatalf("expected one send, got %v", h.mailer.sent)
	}
}

func TestForgetEmail(t *testing.T) {
	cfg := Config{RememberEmail: TriYes, Email: "ops@nyu.edu"}
	h := newHarness(cfg, healthyRun)

	got := h.input(t, "f", "y")
	if !strings.Contains(got, "address forgotten") {
		t.Fatalf("expected the forget acknowledgement, got:\n%s", got)
	}
	if h.store.last.Email != "" || h.store.last.RememberEmail != TriUnset {
		t.Fatalf("forget not persisted: %+v", h.store.last)
	}
}

func TestDisableAutoSend(t *testing.T) {
	cfg := Config{AutoSend: TriYes, RememberEmail: TriYes, Email: "ops@nyu.edu"}
	h := newHarness(cfg, healthyRun)

	h.input(t, "d", "y")
	if h.store.last.AutoSend != TriNo {
		t.Fatalf("disable not persisted: %+v", h.store.last)
	}
	if h.store.last.Email != "ops@nyu.edu" {
		t.Fatal("disabling auto-send must keep the remembered address")
	}
}

func TestSendFailureIsNotFatal(t *testing.T) {
	h := newHarness(Config{}, healthyRun)
	h.mailer.fail = true

	got := h.input(t, "l", "ops@nyu.edu", "y")
	if !strings.Contains(got, "could not send the report") {
		t.Fatalf("expected the send-failure line, got:\n%s", got)
	}
	if h.ctl.State() == StateConfiguring {
		t.Fatal("a failed send must leave the session usable")
	}
}

func TestManualRerunDiscardsPendingAutoRerun(t *testing.T) {
	h := newHarness(Config{}, healthyRun)

	// Simulate a timer that fired just before the operator asked to rerun.
	h.ctl.timerC <- struct{}{}

	h.input(t, "r", "y")
	if h.ctl.RunCount() != 2 {
		t.Fatalf("expected exactly the manual rerun, count=%d", h.ctl.RunCount())
	}

	select {
	case <-h.ctl.AutoRerunC():
		t.Fatal("stale auto-rerun signal survived the manual rerun")
	default:
	}
}

func TestInputIgnoredBeforeFirstRun(t *testing.T) {
	out := &bytes.Buffer{}
	store := &memStore{}
	cfg := Config{}
	ctl := NewController(out, &cfg, store, &fakeMailer{}, healthyRun)

	ctl.HandleLine("p")
	if out.Len() != 0 {
		t.Fatalf("input before the first run must be ignored, got:\n%s", out.String())
	}
}
