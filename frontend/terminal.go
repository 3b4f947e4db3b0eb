package frontend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// ErrAborted reports that the user left a required field empty.
var ErrAborted = errors.New("session aborted")

type prompter struct {
	ctx context.Context
	in  *lineReader
	out io.Writer
}

func (p prompter) ask(question string) (string, error) {
	fmt.Fprint(p.out, question)
	line, err := p.in.next(p.ctx)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// RunSchedulerTerminal collects one appointment request interactively and
// runs the scheduler pipeline once. Bad dates and times are re-prompted; an
// empty required field ends the session without running the pipeline.
func RunSchedulerTerminal(ctx context.Context, runner Runner, loc *time.Location, in io.Reader, out io.Writer) error {
	p := prompter{ctx: ctx, in: newLineReader(ctx, in), out: out}

	fmt.Fprintln(out, "\n--- Hospital Appointment Scheduler (Terminal Mode) ---")

	name, err := p.ask("Enter Patient Name: ")
	if err != nil {
		return err
	}
	if name == "" {
		fmt.Fprintln(out, "Patient Name cannot be empty. Exiting.")
		return ErrAborted
	}

	reason, err := p.ask("Enter Reason for visit / Desired Service: ")
	if err != nil {
		return err
	}
	if reason == "" {
		fmt.Fprintln(out, "Reason for visit cannot be empty. Exiting.")
		return ErrAborted
	}

	var date string
	for {
		date, err = p.ask("Enter Preferred Date (YYYY-MM-DD, e.g., 2025-06-25): ")
		if err != nil {
			return err
		}
		_, perr := ParseDate(date)
		if perr == nil {
			break
		}
		fmt.Fprintln(out, Message(perr))
	}

	var clock string
	for {
		clock, err = p.ask("Enter Preferred Time (HH:MM, e.g., 09:00 or 14:30): ")
		if err != nil {
			return err
		}
		_, perr := Combine(date, clock, loc)
		if perr == nil {
			break
		}
		fmt.Fprintln(out, Message(perr))
	}

	specialty, err := p.ask("Enter Preferred Doctor Specialty (e.g., Cardiology, Pediatrics, General): ")
	if err != nil {
		return err
	}
	if specialty == "" {
		fmt.Fprintln(out, "Doctor Specialty cannot be empty. Exiting.")
		return ErrAborted
	}

	kickoff, err := BookingForm{
		PatientName: name,
		Reason:      reason,
		Date:        date,
		Time:        clock,
		Specialty:   specialty,
	}.Kickoff(loc)
	if err != nil {
		fmt.Fprintln(out, Message(err))
		return err
	}

	fmt.Fprintln(out, "\n--- Input provided to the AI Agent ---")
	fmt.Fprintln(out, kickoff)
	fmt.Fprintln(out, "---------------------------------------")

	res, err := runner.Run(ctx, kickoff)
	if err != nil {
		log.Error().Err(err).Msg("scheduler pipeline failed")
		fmt.Fprintln(out, "\nERROR: An error occurred while scheduling your appointment. Please try again later.")
		return err
	}

	fmt.Fprintln(out, "\n\n########################")
	fmt.Fprintln(out, "## Here is the Final Result from the AI Agent")
	fmt.Fprintln(out, "########################")
	fmt.Fprintln(out)
	fmt.Fprintln(out, res.Output)
	fmt.Fprintln(out, "\n--- End of Crew Execution ---")
	return nil
}
