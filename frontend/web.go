package frontend

import (
	"context"
	"html/template"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

var pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Hospital Appointment Scheduler</title></head>
<body>
<h1>Hospital Appointment Scheduler</h1>
<p>Book your appointment with our AI assistant.</p>
<form method="post" action="/">
  <label>Patient Name <input type="text" name="patient_name" value="{{.Form.PatientName}}"></label><br>
  <label>Reason for Visit <textarea name="reason">{{.Form.Reason}}</textarea></label><br>
  <label>Preferred Date (YYYY-MM-DD) <input type="text" name="date" value="{{.Form.Date}}"></label><br>
  <label>Preferred Time (HH:MM) <input type="text" name="time" value="{{.Form.Time}}"></label><br>
  <label>Preferred Doctor Specialty <input type="text" name="specialty" value="{{.Form.Specialty}}"></label><br>
  <button type="submit">Schedule Appointment</button>
</form>
{{if .Error}}<p class="error">{{.Error}}</p>{{end}}
{{if .Result}}<h2>Result</h2><pre class="result">{{.Result}}</pre>{{end}}
</body>
</html>
`))

type page struct {
	Form   BookingForm
	Error  string
	Result string
}

// SchedulerWeb serves the booking form. Submissions run one at a time.
type SchedulerWeb struct {
	runner Runner
	loc    *time.Location
	now    func() time.Time
	mu     sync.Mutex
}

func NewSchedulerWeb(runner Runner, loc *time.Location) *SchedulerWeb {
	return &SchedulerWeb{runner: runner, loc: loc, now: time.Now}
}

func (s *SchedulerWeb) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.form)
	mux.HandleFunc("POST /{$}", s.submit)
	return mux
}

func (s *SchedulerWeb) form(w http.ResponseWriter, r *http.Request) {
	tomorrow := s.now().In(s.loc).AddDate(0, 0, 1)
	s.render(w, http.StatusOK, page{Form: BookingForm{
		Date: tomorrow.Format(DateLayout),
		Time: "10:00",
	}})
}

func (s *SchedulerWeb) submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	f := BookingForm{
		PatientName: r.PostForm.Get("patient_name"),
		Reason:      r.PostForm.Get("reason"),
		Date:        r.PostForm.Get("date"),
		Time:        r.PostForm.Get("time"),
		Specialty:   r.PostForm.Get("specialty"),
	}

	kickoff, err := f.Kickoff(s.loc)
	if err != nil {
		s.render(w, http.StatusUnprocessableEntity, page{Form: f, Error: Message(err)})
		return
	}

	s.mu.Lock()
	res, err := s.runner.Run(r.Context(), kickoff)
	s.mu.Unlock()
	if err != nil {
		log.Error().Err(err).Str("patient", f.PatientName).Msg("scheduler pipeline failed")
		s.render(w, http.StatusInternalServerError, page{Form: f, Error: "An error occurred while scheduling your appointment. Please try again later."})
		return
	}
	s.render(w, http.StatusOK, page{Form: f, Result: res.Output})
}

func (s *SchedulerWeb) render(w http.ResponseWriter, status int, p page) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pageTmpl.Execute(w, p); err != nil {
		log.Error().Err(err).Msg("render scheduler page")
	}
}

// Serve runs the form on addr until ctx is cancelled.
func (s *SchedulerWeb) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	log.Info().Str("addr", addr).Msg("scheduler web form listening")

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
