package acquisition

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listOp(fetch func(ctx context.Context) ([]string, error)) Operation[[]string] {
	return Operation[[]string]{
		Name:    "test operation",
		Kind:    KindList,
		Fetch:   fetch,
		IsEmpty: func(v []string) bool { return len(v) == 0 },
		Empty:   func() []string { return []string{} },
	}
}

func TestDoReturnsFirstSuccess(t *testing.T) {
	e := NewExecutor(3, time.Millisecond, testLogger())

	attempts := 0
	result := Do(context.Background(), e, listOp(func(ctx context.Context) ([]string, error) {
		attempts++
		return []string{"golang"}, nil
	}))

	assert.Equal(t, 1, attempts, "a successful first attempt should not retry")
	assert.Equal(t, []string{"golang"}, result)
}

func TestDoExhaustsBudgetOnPersistentRateLimit(t *testing.T) {
	e := NewExecutor(3, time.Millisecond, testLogger())

	attempts := 0
	result := Do(context.Background(), e, listOp(func(ctx context.Context) ([]string, error) {
		attempts++
		return nil, errors.New("429 Too Many Requests")
	}))

	assert.Equal(t, 3, attempts, "budget counts total attempts")
	assert.NotNil(t, result)
	assert.Empty(t, result)
}

func TestDoRetriesNonRateLimitErrorsIdentically(t *testing.T) {
	e := NewExecutor(4, time.Millisecond, testLogger())

	attempts := 0
	result := Do(context.Background(), e, listOp(func(ctx context.Context) ([]string, error) {
		attempts++
		return nil, errors.New("connection reset by peer")
	}))

	assert.Equal(t, 4, attempts)
	assert.Empty(t, result)
}

func TestDoRetriesEmptyResults(t *testing.T) {
	e := NewExecutor(3, time.Millisecond, testLogger())

	attempts := 0
	result := Do(context.Background(), e, listOp(func(ctx context.Context) ([]string, error) {
		attempts++
		if attempts == 1 {
			return []string{}, nil
		}
		return []string{"rust"}, nil
	}))

	assert.Equal(t, 2, attempts, "empty first result should be retried, success should stop")
	assert.Equal(t, []string{"rust"}, result)
}

func TestDoExhaustsBudgetOnAlwaysEmptyResults(t *testing.T) {
	e := NewExecutor(3, time.Millisecond, testLogger())

	attempts := 0
	result := Do(context.Background(), e, Operation[map[string]int]{
		Name: "mapping operation",
		Kind: KindMapping,
		Fetch: func(ctx context.Context) (map[string]int, error) {
			attempts++
			return map[string]int{}, nil
		},
		IsEmpty: func(m map[string]int) bool { return len(m) == 0 },
		Empty:   func() map[string]int { return map[string]int{} },
	})

	assert.Equal(t, 3, attempts)
	require.NotNil(t, result, "canonical empty mapping must be usable, not nil")
	assert.Empty(t, result)
}

func TestDoBackoffDoublesBetweenAttempts(t *testing.T) {
	e := NewExecutor(3, 20*time.Millisecond, testLogger())

	var stamps []time.Time
	Do(context.Background(), e, listOp(func(ctx context.Context) ([]string, error) {
		stamps = append(stamps, time.Now())
		return nil, errors.New("429")
	}))

	require.Len(t, stamps, 3)

	// Sleeps of base*2 then base*4 precede the second and third attempts.
	first := stamps[1].Sub(stamps[0])
	second := stamps[2].Sub(stamps[1])
	assert.GreaterOrEqual(t, first, 40*time.Millisecond)
	assert.GreaterOrEqual(t, second, 80*time.Millisecond)
	assert.Greater(t, second, first)
}

func TestDoReturnsEmptyWhenCanceledDuringBackoff(t *testing.T) {
	e := NewExecutor(5, 10*time.Second, testLogger())

	ctx, cancel := context.WithCancel(context.Background())

	attempts := 0
	done := make(chan []string, 1)
	go func() {
		done <- Do(ctx, e, listOp(func(ctx context.Context) ([]string, error) {
			attempts++
			return nil, errors.New("temporarily unreachable")
		}))
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case result := <-done:
		assert.Equal(t, 1, attempts, "cancellation during the first backoff sleep should prevent attempt two")
		assert.Empty(t, result)
	case <-time.After(2 * time.Second):
		t.Fatal("Do did not return after context cancellation")
	}
}

func TestClassifyRateLimitMarkers(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want failureClass
	}{
		{"status code", errors.New("request failed with status 429"), failureRateLimited},
		{"phrase", errors.New("Too Many Requests"), failureRateLimited},
		{"uppercase phrase", errors.New("blocked: TOO MANY REQUESTS from client"), failureRateLimited},
		{"embedded code", errors.New("the widget returned 429 after redirect"), failureRateLimited},
		{"timeout", errors.New("context deadline exceeded"), failureTransient},
		{"reset", errors.New("connection reset by peer"), failureTransient},
		{"dns", errors.New("no such host"), failureTransient},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, classify(tc.err))
		})
	}
}
