package frontend

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	pipelinex "github.com/tanpawarit/crew-assistants/agent/pipeline"
)

type fakeRunner struct {
	mu       sync.Mutex
	kickoffs []string
	output   string
	err      error
}

func (f *fakeRunner) Run(_ context.Context, kickoff string) (pipelinex.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.kickoffs = append(f.kickoffs, kickoff)
	if f.err != nil {
		return pipelinex.Result{}, f.err
	}
	return pipelinex.Result{Output: f.output}, nil
}

func (f *fakeRunner) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.kickoffs)
}

func newYork(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	return loc
}

func TestBookingFormKickoff(t *testing.T) {
	t.Parallel()

	got, err := BookingForm{
		PatientName: " Jane Doe ",
		Reason:      "checkup",
		Date:        "2025-06-23",
		Time:        "10:00",
		Specialty:   "Cardiology",
	}.Kickoff(newYork(t))
	if err != nil {
		t.Fatalf("Kickoff() error = %v", err)
	}

	want := "Patient Name: Jane Doe\nReason for Visit: checkup\nPreferred Appointment Date/Time: 2025-06-23T10:00:00-04:00\nPreferred Doctor Specialty: Cardiology"
	if got != want {
		t.Fatalf("Kickoff() = %q, want %q", got, want)
	}
}

func TestBookingFormRejectsBadInput(t *testing.T) {
	t.Parallel()

	base := BookingForm{PatientName: "A", Reason: "B", Date: "2025-06-23", Time: "09:00", Specialty: "General"}
	cases := map[string]struct {
		mutate func(*BookingForm)
		want   error
	}{
		"time out of range": {func(f *BookingForm) { f.Time = "25:99" }, ErrInvalidTime},
		"minute too large":  {func(f *BookingForm) { f.Time = "10:60" }, ErrInvalidTime},
		"no colon":          {func(f *BookingForm) { f.Time = "1000" }, ErrInvalidTime},
		"bad date":          {func(f *BookingForm) { f.Date = "23/06/2025" }, ErrInvalidDate},
		"missing name":      {func(f *BookingForm) { f.PatientName = "  " }, ErrMissingField},
	}
	for name, tc := range cases {
		f := base
		tc.mutate(&f)
		if _, err := f.Kickoff(time.UTC); !errors.Is(err, tc.want) {
			t.Fatalf("%s: Kickoff() error = %v, want %v", name, err, tc.want)
		}
	}
}

func TestParseClockAcceptsSingleDigitHour(t *testing.T) {
	t.Parallel()

	h, m, err := ParseClock("9:05")
	if err != nil || h != 9 || m != 5 {
		t.Fatalf("ParseClock() = %d, %d, %v", h, m, err)
	}
}

func TestCombineRejectsSkippedDSTTime(t *testing.T) {
	t.Parallel()

	loc := newYork(t)
	if _, err := Combine("2025-03-09", "02:30", loc); !errors.Is(err, ErrNonexistentTime) {
		t.Fatalf("expected ErrNonexistentTime, got %v", err)
	}
	at, err := Combine("2025-03-09", "03:30", loc)
	if err != nil {
		t.Fatalf("Combine() error = %v", err)
	}
	if got := at.Format("2006-01-02T15:04:05-07:00"); got != "2025-03-09T03:30:00-04:00" {
		t.Fatalf("Combine() = %s", got)
	}
}

func TestMessageIsUserFacing(t *testing.T) {
	t.Parallel()

	_, err := BookingForm{PatientName: "A", Reason: "B", Date: "2025-06-23", Time: "25:99", Specialty: "C"}.Kickoff(time.UTC)
	if got := Message(err); got != "Invalid time format. Please use HH:MM (e.g., 09:00)." {
		t.Fatalf("Message() = %q", got)
	}
	if err.Error() != "invalid time" {
		t.Fatalf("error string = %q, want lower-case sentinel text", err.Error())
	}
	if got := Message(errors.New("other")); got != "Invalid input." {
		t.Fatalf("Message(unknown) = %q", got)
	}
}

func TestSchedulerTerminalRepromptsSkippedDSTTime(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{output: "ok"}
	in := strings.NewReader("Jane\ncheckup\n2025-03-09\n02:30\n03:30\nGeneral\n")
	var out bytes.Buffer

	if err := RunSchedulerTerminal(context.Background(), runner, newYork(t), in, &out); err != nil {
		t.Fatalf("RunSchedulerTerminal() error = %v", err)
	}
	if !strings.Contains(out.String(), "does not exist") {
		t.Fatalf("expected DST re-prompt, got %q", out.String())
	}
	if runner.calls() != 1 || !strings.Contains(runner.kickoffs[0], "2025-03-09T03:30:00-04:00") {
		t.Fatalf("unexpected kickoffs: %v", runner.kickoffs)
	}
}

func TestTerminalsStopOnCancelWhileWaitingForInput(t *testing.T) {
	t.Parallel()

	pr, pw := io.Pipe()
	defer pw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 2)
	go func() { done <- RunNewsTerminal(ctx, &fakeRunner{}, pr, io.Discard) }()
	go func() { done <- RunSchedulerTerminal(ctx, &fakeRunner{}, time.UTC, pr, io.Discard) }()
	cancel()

	for i := 0; i < 2; i++ {
		select {
		case err := <-done:
			if !errors.Is(err, context.Canceled) {
				t.Fatalf("expected context.Canceled, got %v", err)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("terminal did not return after cancellation")
		}
	}
}

func TestSchedulerTerminalRunsOnce(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{output: "Appointment confirmed."}
	in := strings.NewReader("Jane Doe\ncheckup\n2025/06/23\n2025-06-23\n25:99\n10:00\nCardiology\n")
	var out bytes.Buffer

	if err := RunSchedulerTerminal(context.Background(), runner, newYork(t), in, &out); err != nil {
		t.Fatalf("RunSchedulerTerminal() error = %v", err)
	}
	if runner.calls() != 1 {
		t.Fatalf("expected 1 run, got %d", runner.calls())
	}
	if !strings.Contains(runner.kickoffs[0], "2025-06-23T10:00:00-04:00") {
		t.Fatalf("unexpected kickoff: %q", runner.kickoffs[0])
	}
	text := out.String()
	if !strings.Contains(text, "Invalid date format") || !strings.Contains(text, "Invalid time format") {
		t.Fatalf("expected re-prompt messages, got %q", text)
	}
	if !strings.Contains(text, "Appointment confirmed.") {
		t.Fatalf("expected final result in output, got %q", text)
	}
}

func TestSchedulerTerminalMalformedTimeNeverRuns(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{}
	in := strings.NewReader("Jane Doe\ncheckup\n2025-06-23\n25:99\n")

	err := RunSchedulerTerminal(context.Background(), runner, time.UTC, in, io.Discard)
	if !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF, got %v", err)
	}
	if runner.calls() != 0 {
		t.Fatalf("expected no runs, got %d", runner.calls())
	}
}

func TestSchedulerTerminalEmptyNameAborts(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{}
	err := RunSchedulerTerminal(context.Background(), runner, time.UTC, strings.NewReader("\n"), io.Discard)
	if !errors.Is(err, ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
	if runner.calls() != 0 {
		t.Fatalf("expected no runs, got %d", runner.calls())
	}
}

func TestSchedulerTerminalReportsFailure(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{err: errors.New("upstream down")}
	in := strings.NewReader("Jane\ncheckup\n2025-06-23\n10:00\nGeneral\n")
	var out bytes.Buffer

	if err := RunSchedulerTerminal(context.Background(), runner, time.UTC, in, &out); err == nil {
		t.Fatalf("expected error")
	}
	if strings.Contains(out.String(), "upstream down") {
		t.Fatalf("raw error leaked to user: %q", out.String())
	}
	if !strings.Contains(out.String(), "An error occurred") {
		t.Fatalf("expected generic failure message, got %q", out.String())
	}
}

func TestNewsTerminalLoop(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{output: "Tech summary"}
	in := strings.NewReader("latest tech news\n\nQuit\nfinance\n")
	var out bytes.Buffer

	if err := RunNewsTerminal(context.Background(), runner, in, &out); err != nil {
		t.Fatalf("RunNewsTerminal() error = %v", err)
	}
	if runner.calls() != 1 || runner.kickoffs[0] != "latest tech news" {
		t.Fatalf("unexpected runs: %v", runner.kickoffs)
	}
	if !strings.Contains(out.String(), "News Curator: Tech summary") {
		t.Fatalf("expected summary, got %q", out.String())
	}
	if !strings.Contains(out.String(), "Goodbye") {
		t.Fatalf("expected goodbye, got %q", out.String())
	}
}

func TestNewsTerminalContinuesAfterFailure(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{err: errors.New("boom")}
	in := strings.NewReader("tech\nhealth\n")
	var out bytes.Buffer

	if err := RunNewsTerminal(context.Background(), runner, in, &out); err != nil {
		t.Fatalf("RunNewsTerminal() error = %v", err)
	}
	if runner.calls() != 2 {
		t.Fatalf("expected 2 runs, got %d", runner.calls())
	}
}

func TestSchedulerWebDefaultsDateToTomorrow(t *testing.T) {
	t.Parallel()

	web := NewSchedulerWeb(&fakeRunner{}, time.UTC)
	web.now = func() time.Time { return time.Date(2025, 6, 22, 15, 0, 0, 0, time.UTC) }

	rec := httptest.NewRecorder()
	web.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `value="2025-06-23"`) {
		t.Fatalf("expected tomorrow's date in form, got %s", rec.Body.String())
	}
}

func postForm(web *SchedulerWeb, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	web.Handler().ServeHTTP(rec, req)
	return rec
}

func TestSchedulerWebRejectsMalformedTime(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{}
	web := NewSchedulerWeb(runner, time.UTC)

	rec := postForm(web, url.Values{
		"patient_name": {"Jane"},
		"reason":       {"checkup"},
		"date":         {"2025-06-23"},
		"time":         {"25:99"},
		"specialty":    {"General"},
	})

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Invalid time format") {
		t.Fatalf("expected inline error, got %s", rec.Body.String())
	}
	if runner.calls() != 0 {
		t.Fatalf("expected no runs, got %d", runner.calls())
	}
}

func TestSchedulerWebShowsResult(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{output: "Booked <ok>"}
	web := NewSchedulerWeb(runner, newYork(t))

	rec := postForm(web, url.Values{
		"patient_name": {"Jane"},
		"reason":       {"checkup"},
		"date":         {"2025-06-23"},
		"time":         {"10:00"},
		"specialty":    {"Cardiology"},
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Booked &lt;ok&gt;") {
		t.Fatalf("expected escaped result, got %s", rec.Body.String())
	}
	if runner.calls() != 1 || !strings.Contains(runner.kickoffs[0], "2025-06-23T10:00:00-04:00") {
		t.Fatalf("unexpected kickoffs: %v", runner.kickoffs)
	}
}

func TestSchedulerWebHidesPipelineError(t *testing.T) {
	t.Parallel()

	web := NewSchedulerWeb(&fakeRunner{err: errors.New("secret detail")}, time.UTC)
	rec := postForm(web, url.Values{
		"patient_name": {"Jane"},
		"reason":       {"checkup"},
		"date":         {"2025-06-23"},
		"time":         {"10:00"},
		"specialty":    {"General"},
	})

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "secret detail") {
		t.Fatalf("raw error leaked: %s", rec.Body.String())
	}
}
