package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tjfontaine/react-app-plugin/internal/core/ports"
)

const tracerName = "github.com/tjfontaine/react-app-plugin/internal/pipeline"

// Rule is one step of the configuration pipeline. When gates the step;
// a nil When always fires.
type Rule struct {
	Name  string
	Order int
	When  func(api ports.API) bool
	Apply func(ctx context.Context, api ports.API) error
}

// Executor runs rules sequentially in Order. Rules with equal Order keep
// their declaration order.
type Executor struct {
	rules  []Rule
	tracer trace.Tracer
}

// NewExecutor creates an executor from rules.
func NewExecutor(rules ...Rule) *Executor {
	sorted := make([]Rule, len(rules))
	copy(sorted, rules)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Order < sorted[j].Order
	})

	return &Executor{
		rules:  sorted,
		tracer: otel.Tracer(tracerName),
	}
}

// Rules returns the rules in execution order.
func (e *Executor) Rules() []Rule {
	out := make([]Rule, len(e.rules))
	copy(out, e.rules)
	return out
}

// Run evaluates every rule against api. The first failing rule stops the
// run; its error is returned as a *RuleError.
func (e *Executor) Run(ctx context.Context, api ports.API) error {
	logger := api.Logger()

	for _, r := range e.rules {
		if err := ctx.Err(); err != nil {
			return &RuleError{Rule: r.Name, Err: err}
		}

		rctx, span := e.tracer.Start(ctx, "pipeline."+r.Name)

		if r.When != nil && !r.When(api) {
			span.SetAttributes(attribute.Bool("pipeline.skipped", true))
			span.End()
			logger.Debug("pipeline rule skipped", slog.String("rule", r.Name))
			continue
		}

		if err := r.Apply(rctx, api); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			span.End()
			return &RuleError{Rule: r.Name, Err: err}
		}

		span.End()
		logger.Debug("pipeline rule applied", slog.String("rule", r.Name))
	}

	return nil
}

// RuleError is returned when a pipeline rule fails.
type RuleError struct {
	Rule string
	Err  error
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("pipeline rule %s: %v", e.Rule, e.Err)
}

func (e *RuleError) Unwrap() error { return e.Err }

// FailedRule returns the name of the rule that produced err, if any.
func FailedRule(err error) (string, bool) {
	var re *RuleError
	if errors.As(err, &re) {
		return re.Rule, true
	}
	return "", false
}
