package tool

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hupe1980/litertlm/logging"
	"github.com/hupe1980/litertlm/parser"
	"golang.org/x/sync/errgroup"
)

// InvokeFunc answers one function call with a JSON result.
type InvokeFunc func(ctx context.Context, call parser.FunctionCall) string

// Result is the outcome of one executed function call.
type Result struct {
	ID       string
	Call     parser.FunctionCall
	Output   string
	Duration time.Duration
}

// ExecutorConfig configures an Executor.
type ExecutorConfig struct {
	MaxParallel    int  // 0 or <1 => no explicit limit (len(calls))
	PreserveOrder  bool // if true, results follow the order of the calls
	LogStartEvents bool // log a start line per call
	Logger         logging.Logger
}

// Executor runs a batch of function calls, possibly in parallel. With
// MaxParallel 1 the calls run in order on the caller's goroutine. It never
// panics: a panicking invoke yields an error document as output. Calls not
// yet started when ctx is cancelled are skipped and have no Result.
type Executor struct {
	cfg    ExecutorConfig
	logger logging.Logger
}

// NewExecutor constructs an executor with the given config.
func NewExecutor(cfg ExecutorConfig) *Executor {
	return &Executor{cfg: cfg, logger: logging.OrNoOp(cfg.Logger)}
}

// Execute runs calls through invoke and returns their results.
func (e *Executor) Execute(ctx context.Context, calls []parser.FunctionCall, invoke InvokeFunc) []Result {
	n := len(calls)
	if n == 0 {
		return nil
	}

	// Fast path: a single call or a serial executor runs inline, in order.
	if n == 1 || e.cfg.MaxParallel == 1 {
		results := make([]Result, 0, n)
		for _, call := range calls {
			if ctx.Err() != nil {
				break
			}
			results = append(results, e.run(ctx, call, invoke))
		}
		return results
	}

	maxPar := e.cfg.MaxParallel
	if maxPar <= 0 || maxPar > n {
		maxPar = n
	}

	var (
		mu      sync.Mutex
		ordered = make([]Result, n)
		results = make([]Result, 0, n)
	)

	g := new(errgroup.Group)
	g.SetLimit(maxPar)

	batchStart := time.Now()
	for i, call := range calls {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			res := e.run(ctx, call, invoke)
			if e.cfg.PreserveOrder {
				ordered[i] = res
				return nil
			}
			mu.Lock()
			results = append(results, res)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	if e.cfg.PreserveOrder {
		for _, res := range ordered {
			if res.ID != "" {
				results = append(results, res)
			}
		}
	}

	e.logger.Debug(
		"tool.batch.complete",
		"count", n,
		"executed", len(results),
		"parallelism", maxPar,
		"preserve_order", e.cfg.PreserveOrder,
		"duration_ms", time.Since(batchStart).Milliseconds(),
	)

	return results
}

func (e *Executor) run(ctx context.Context, call parser.FunctionCall, invoke InvokeFunc) (res Result) {
	res = Result{ID: uuid.NewString(), Call: call}

	if e.cfg.LogStartEvents {
		e.logger.Info("tool.function.start", "function", call.Name, "function_call_id", res.ID)
	}

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("tool.function.panic", "function", call.Name, "recover", r)
			res.Output = errorDocument(NewToolError(call.Name, fmt.Sprintf("panic: %v", r), CodePanic))
		}
		res.Duration = time.Since(start)
		e.logger.Info(
			"tool.function.executed",
			"function", call.Name,
			"function_call_id", res.ID,
			"duration_ms", res.Duration.Milliseconds(),
		)
	}()

	res.Output = invoke(ctx, call)

	return res
}
