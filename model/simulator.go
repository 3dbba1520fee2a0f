package model

import (
	"context"
	"sync"
	"time"

	"github.com/hupe1980/litertlm/logging"
)

// SimulationPrefix starts every unscripted simulator reply.
const SimulationPrefix = "Editor Simulation: This is a response to: "

// SimulationDelay is the latency of the on-device model the simulator is
// typically configured to mimic.
const SimulationDelay = 1500 * time.Millisecond

// SimulatorOptions configures a Simulator.
type SimulatorOptions struct {
	Name string
	// Delay is waited before every reply. Zero replies immediately.
	Delay  time.Duration
	Logger logging.Logger
}

// Simulator is a deterministic in-process Generator.
//
// Unscripted prompts are echoed with SimulationPrefix; tool results are
// echoed as prefix + function name + result. Scripted replies registered with
// AddResponse take precedence and can contain function call blocks, which
// makes the simulator suitable for driving tool-calling loops in tests.
type Simulator struct {
	mu        sync.Mutex
	info      Info
	delay     time.Duration
	responses map[string]string
	errs      []error
	prompts   []string
	closed    bool
	logger    logging.Logger
}

// NewSimulator constructs a Simulator.
func NewSimulator(optFns ...func(o *SimulatorOptions)) *Simulator {
	opts := SimulatorOptions{Name: "editor-simulation", Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Simulator{
		info:      Info{Name: opts.Name, Provider: "simulator", SupportsTools: true},
		delay:     opts.Delay,
		responses: make(map[string]string),
		logger:    logging.OrNoOp(opts.Logger),
	}
}

// AddResponse registers a canned reply for an input. For tool results the
// input is function name + result.
func (s *Simulator) AddResponse(input, response string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[input] = response
}

// FailNext makes the next reply fail with err. Queued errors are consumed in
// order.
func (s *Simulator) FailNext(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs = append(s.errs, err)
}

// Prompts returns every input received since construction or the last Reset.
func (s *Simulator) Prompts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.prompts...)
}

// Generate implements Generator.
func (s *Simulator) Generate(ctx context.Context, prompt string) (string, error) {
	return s.reply(ctx, prompt)
}

// SubmitToolResult implements Generator.
func (s *Simulator) SubmitToolResult(ctx context.Context, functionName, result string) (string, error) {
	return s.reply(ctx, functionName+result)
}

// Reset implements Generator; it forgets recorded prompts.
func (s *Simulator) Reset(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.prompts = nil
	return nil
}

// Close implements Generator.
func (s *Simulator) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Info implements Generator.
func (s *Simulator) Info() Info { return s.info }

func (s *Simulator) reply(ctx context.Context, input string) (string, error) {
	if s.delay > 0 {
		timer := time.NewTimer(s.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return "", ErrClosed
	}

	s.prompts = append(s.prompts, input)

	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		s.logger.Warn("model.simulator.failed", "error", err.Error())
		return "", err
	}

	if resp, ok := s.responses[input]; ok {
		return resp, nil
	}
	return SimulationPrefix + input, nil
}
