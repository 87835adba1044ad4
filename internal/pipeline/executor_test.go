package pipeline

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/tjfontaine/react-app-plugin/internal/core/domain"
	"github.com/tjfontaine/react-app-plugin/internal/core/ports"
	"github.com/tjfontaine/react-app-plugin/internal/host"
)

func newTestHost(t *testing.T) *host.Host {
	t.Helper()
	h, err := host.New(host.WithCommand(domain.CommandBuild), host.WithRootDir(t.TempDir()))
	if err != nil {
		t.Fatalf("host.New: %v", err)
	}
	return h
}

// recordingRule returns a rule that appends its name to calls.
func recordingRule(name string, order int, calls *[]string) Rule {
	return Rule{
		Name:  name,
		Order: order,
		Apply: func(ctx context.Context, api ports.API) error {
			*calls = append(*calls, name)
			return nil
		},
	}
}

func TestExecutor_Empty(t *testing.T) {
	e := NewExecutor()
	if err := e.Run(context.Background(), newTestHost(t)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestExecutor_Order(t *testing.T) {
	var calls []string
	e := NewExecutor(
		recordingRule("third", 30, &calls),
		recordingRule("first", 10, &calls),
		recordingRule("second-a", 20, &calls),
		recordingRule("second-b", 20, &calls),
	)

	if err := e.Run(context.Background(), newTestHost(t)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"first", "second-a", "second-b", "third"}
	if !reflect.DeepEqual(calls, want) {
		t.Errorf("calls = %v, want %v", calls, want)
	}
}

func TestExecutor_WhenSkips(t *testing.T) {
	var calls []string
	skipped := recordingRule("skipped", 10, &calls)
	skipped.When = func(api ports.API) bool { return false }
	fired := recordingRule("fired", 20, &calls)
	fired.When = func(api ports.API) bool { return true }

	e := NewExecutor(skipped, fired)
	if err := e.Run(context.Background(), newTestHost(t)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(calls, []string{"fired"}) {
		t.Errorf("calls = %v, want [fired]", calls)
	}
}

func TestExecutor_LaterPredicatesSeeEarlierWrites(t *testing.T) {
	var calls []string
	writer := Rule{
		Name:  "writer",
		Order: 10,
		Apply: func(ctx context.Context, api ports.API) error {
			api.SetValue("FLAG", true)
			return nil
		},
	}
	reader := recordingRule("reader", 20, &calls)
	reader.When = func(api ports.API) bool { return api.GetValue("FLAG") == true }

	if err := NewExecutor(reader, writer).Run(context.Background(), newTestHost(t)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(calls) != 1 {
		t.Errorf("reader did not fire after writer: %v", calls)
	}
}

func TestExecutor_ErrorStops(t *testing.T) {
	boom := errors.New("boom")
	var calls []string
	failing := Rule{
		Name:  "failing",
		Order: 10,
		Apply: func(ctx context.Context, api ports.API) error { return boom },
	}

	e := NewExecutor(failing, recordingRule("after", 20, &calls))
	err := e.Run(context.Background(), newTestHost(t))
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, boom) {
		t.Errorf("error %v does not wrap cause", err)
	}
	name, ok := FailedRule(err)
	if !ok || name != "failing" {
		t.Errorf("FailedRule = %q, %v; want failing, true", name, ok)
	}
	if len(calls) != 0 {
		t.Errorf("rules after a failure ran: %v", calls)
	}
}

func TestExecutor_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls []string
	err := NewExecutor(recordingRule("never", 10, &calls)).Run(ctx, newTestHost(t))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(calls) != 0 {
		t.Errorf("rule ran after cancel: %v", calls)
	}
}

func TestFailedRule_NotRuleError(t *testing.T) {
	if _, ok := FailedRule(errors.New("plain")); ok {
		t.Error("expected false for a plain error")
	}
}
