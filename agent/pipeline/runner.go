package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/crew-assistants/agent/contract"
)

type Config struct {
	MaxAttempts  int           `envconfig:"MAX_ATTEMPTS" split_words:"true" default:"2"`
	RetryBackoff time.Duration `envconfig:"RETRY_BACKOFF" split_words:"true" default:"1s"`
}

type StepOutput struct {
	TaskID   string        `json:"task_id"`
	RoleID   string        `json:"role_id"`
	Output   string        `json:"output"`
	Attempts int           `json:"attempts"`
	Duration time.Duration `json:"duration"`
}

type Result struct {
	Output string       `json:"output"`
	Steps  []StepOutput `json:"steps"`
}

// Runner executes a pipeline's tasks strictly in declared order, one
// completion per task, feeding predecessor outputs forward as context.
type Runner struct {
	pipeline    contractx.Pipeline
	completer   contractx.Completer
	maxAttempts int
	backoff     time.Duration

	sleep func(ctx context.Context, d time.Duration) error
	now   func() time.Time
}

func New(p contractx.Pipeline, completer contractx.Completer, cfg Config) (*Runner, error) {
	if completer == nil {
		return nil, errors.New("completer is required")
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	backoff := cfg.RetryBackoff
	if backoff < 0 {
		backoff = 0
	}

	return &Runner{
		pipeline:    p,
		completer:   completer,
		maxAttempts: maxAttempts,
		backoff:     backoff,
		sleep:       sleepContext,
		now:         time.Now,
	}, nil
}

func (r *Runner) Name() string {
	return r.pipeline.Name
}

// Run executes every task and returns the final task's output. Any task
// failure aborts the run; no partial result is returned.
func (r *Runner) Run(ctx context.Context, kickoff string) (Result, error) {
	if strings.TrimSpace(kickoff) == "" {
		return Result{}, fmt.Errorf("%w: kickoff input is empty", contractx.ErrValidation)
	}

	logger := log.With().Str("pipeline", r.pipeline.Name).Logger()
	outputs := make(map[string]string, len(r.pipeline.Tasks))
	steps := make([]StepOutput, 0, len(r.pipeline.Tasks))

	for i, task := range r.pipeline.Tasks {
		role, _ := r.pipeline.RoleFor(task)
		if role.ID == "" {
			role.ID = task.Role
		}

		req := contractx.CompletionRequest{
			Role:    role,
			Task:    task,
			Context: buildContext(i == 0, kickoff, task, outputs),
		}

		started := r.now()
		logger.Debug().Str("task", task.ID).Str("role", role.ID).Msg("task started")

		out, attempts, err := r.complete(ctx, req)
		if err != nil {
			logger.Error().Err(err).Str("task", task.ID).Int("attempts", attempts).Msg("task failed")
			return Result{}, fmt.Errorf("task %s: %w", task.ID, err)
		}

		elapsed := r.now().Sub(started)
		logger.Info().Str("task", task.ID).Str("role", role.ID).Int("attempts", attempts).Dur("elapsed", elapsed).Msg("task finished")

		outputs[task.ID] = out
		steps = append(steps, StepOutput{
			TaskID:   task.ID,
			RoleID:   role.ID,
			Output:   out,
			Attempts: attempts,
			Duration: elapsed,
		})
	}

	return Result{
		Output: steps[len(steps)-1].Output,
		Steps:  steps,
	}, nil
}

func (r *Runner) complete(ctx context.Context, req contractx.CompletionRequest) (string, int, error) {
	for attempt := 1; ; attempt++ {
		out, err := r.completer.Complete(ctx, req)
		if err == nil {
			if strings.TrimSpace(out) != "" {
				return out, attempt, nil
			}
			err = fmt.Errorf("%w: empty output", contractx.ErrSchemaViolation)
		}

		if attempt >= r.maxAttempts || !retryable(ctx, err) {
			return "", attempt, err
		}

		log.Warn().Err(err).Str("task", req.Task.ID).Int("attempt", attempt).Msg("retrying task")
		if serr := r.sleep(ctx, r.backoff*time.Duration(attempt)); serr != nil {
			return "", attempt, serr
		}
	}
}

func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil || errors.Is(err, contractx.ErrToolApplied) {
		return false
	}
	return errors.Is(err, contractx.ErrModelInvoke) || errors.Is(err, contractx.ErrSchemaViolation)
}

// buildContext joins the kickoff input (first task only) with the verbatim
// outputs of the task's predecessors, in declared order.
func buildContext(first bool, kickoff string, task contractx.Task, outputs map[string]string) string {
	parts := make([]string, 0, len(task.Context)+1)
	if first {
		parts = append(parts, kickoff)
	}
	for _, dep := range task.Context {
		parts = append(parts, fmt.Sprintf("Output of task %s:\n%s", dep, outputs[dep]))
	}
	return strings.Join(parts, "\n\n")
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
