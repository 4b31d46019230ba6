package script

import (
	"strings"
	"sync"
	"testing"
	"time"
)

func TestEvaluateEmptySource(t *testing.T) {
	for _, src := range []string{"", "   \n\t  \n  "} {
		d, evalErrs, err := NewEngine().Evaluate(src)
		if err != nil {
			t.Fatalf("unexpected fatal error: %v", err)
		}
		if len(evalErrs) > 0 {
			t.Fatalf("unexpected eval errors: %v", evalErrs)
		}
		if d == nil || len(d.Prisms) != 0 {
			t.Errorf("Evaluate(%q) = %+v, want empty design", src, d)
		}
	}
}

func TestEvaluatePlainArithmetic(t *testing.T) {
	source := `
(def x 10)
(def y 20)
(+ x y)
`
	d, evalErrs, err := NewEngine().Evaluate(source)
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("unexpected eval errors: %v", evalErrs)
	}
	if d == nil || len(d.Prisms) != 0 {
		t.Error("expected an empty design")
	}
}

func TestEvaluateSyntaxError(t *testing.T) {
	d, evalErrs, err := NewEngine().Evaluate("(+ 1 2")
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if d != nil {
		t.Fatal("expected nil design on syntax error")
	}
	if len(evalErrs) == 0 || evalErrs[0].Message == "" {
		t.Fatalf("expected a non-empty eval error, got %v", evalErrs)
	}
}

func TestEvaluateUndefinedSymbol(t *testing.T) {
	d, evalErrs, err := NewEngine().Evaluate("(+ 1 undefined-symbol)")
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if d != nil {
		t.Fatal("expected nil design on eval error")
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected at least one eval error for undefined symbol")
	}
}

func TestEvalErrorImplementsError(t *testing.T) {
	var err error = EvalError{Line: 5, Message: "something went wrong"}
	if got := err.Error(); got != "line 5: something went wrong" {
		t.Errorf("Error() = %q", got)
	}
	if got := (EvalError{Message: "no location"}).Error(); got != "no location" {
		t.Errorf("Error() = %q", got)
	}
}

func TestEvaluateDeterministic(t *testing.T) {
	eng := NewEngine()
	src := `(prism "a" :footprint (rect 0 0 2 2) :top 1)`
	for i := 0; i < 3; i++ {
		d, evalErrs, err := eng.Evaluate(src)
		if err != nil || len(evalErrs) > 0 {
			t.Fatalf("run %d: err=%v evalErrs=%v", i, err, evalErrs)
		}
		if got := d.Names(); len(got) != 1 || got[0] != "a" {
			t.Errorf("run %d: names = %v, want [a]", i, got)
		}
	}
}

func TestEvaluateConcurrentEngines(t *testing.T) {
	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := NewEngine().Evaluate(`(prism "a" :footprint (rect 0 0 1 1) :top 1)`)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Errorf("unexpected fatal error: %v", err)
		}
	}
}

// ---------------------------------------------------------------------------
// Timeout and generation tests
// ---------------------------------------------------------------------------

func TestWaitWithTimeout(t *testing.T) {
	if testing.Short() {
		t.Skip("waits for the full evaluation timeout")
	}
	var mu sync.Mutex
	gen := uint64(1)
	ch := make(chan evalResult) // never sends

	done := make(chan error, 1)
	go func() {
		_, _, err := waitWithTimeout(ch, 1, &mu, &gen)
		done <- err
	}()

	select {
	case err := <-done:
		if err == nil || !strings.Contains(err.Error(), "timed out") {
			t.Errorf("expected timeout error, got: %v", err)
		}
	case <-time.After(EvalTimeout + 2*time.Second):
		t.Fatal("test itself timed out waiting for evaluation timeout")
	}
}

func TestWaitDiscardsStaleGeneration(t *testing.T) {
	var mu sync.Mutex
	gen := uint64(2)

	ch := make(chan evalResult, 1)
	ch <- evalResult{design: &Design{}}

	_, _, err := waitWithTimeout(ch, 1, &mu, &gen)
	if err == nil || !strings.Contains(err.Error(), "superseded") {
		t.Errorf("expected superseded error, got: %v", err)
	}
}

func TestWaitReturnsCurrentResult(t *testing.T) {
	var mu sync.Mutex
	gen := uint64(3)

	want := &Design{}
	ch := make(chan evalResult, 1)
	ch <- evalResult{design: want, errors: []EvalError{{Message: "x"}}}

	d, evalErrs, err := waitWithTimeout(ch, 3, &mu, &gen)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d != want || len(evalErrs) != 1 {
		t.Errorf("got (%p, %v), want (%p, 1 error)", d, evalErrs, want)
	}
}

// ---------------------------------------------------------------------------
// Error parsing tests
// ---------------------------------------------------------------------------

type errString string

func (e errString) Error() string { return string(e) }

func TestParseZygomysError(t *testing.T) {
	tests := []struct {
		name     string
		msg      string
		wantLine int
		wantMsg  string
	}{
		{"error on line", "Error on line 5: unexpected token\n", 5, "unexpected token"},
		{"lowercase", "error on line 12: missing paren", 12, "missing paren"},
		{"short form", "line 3: bad form", 3, "bad form"},
		{"no line info", "some generic error", 0, "some generic error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := parseZygomysError(errString(tt.msg))
			if len(errs) != 1 {
				t.Fatalf("got %d errors, want 1", len(errs))
			}
			if errs[0].Line != tt.wantLine {
				t.Errorf("line = %d, want %d", errs[0].Line, tt.wantLine)
			}
			if !strings.Contains(errs[0].Message, tt.wantMsg) {
				t.Errorf("message = %q, want containing %q", errs[0].Message, tt.wantMsg)
			}
		})
	}
}
