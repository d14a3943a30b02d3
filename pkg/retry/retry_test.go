package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig(maxRetries int) *Config {
	return &Config{
		MaxRetries:      maxRetries,
		InitialInterval: time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
		Multiplier:      2.0,
	}
}

func TestNew_FillsDefaults(t *testing.T) {
	r := New(&Config{JitterFactor: 3})

	assert.Equal(t, 50*time.Millisecond, r.config.InitialInterval)
	assert.Equal(t, 2*time.Second, r.config.MaxInterval)
	assert.Equal(t, 2.0, r.config.Multiplier)
	assert.Equal(t, 1.0, r.config.JitterFactor)

	require.NotNil(t, New(nil))
}

func TestRetrier_Do_Success(t *testing.T) {
	calls := 0
	result := New(fastConfig(3)).Do(context.Background(), func(ctx context.Context) error {
		calls++
		return nil
	})

	assert.NoError(t, result.Err)
	assert.Equal(t, 1, result.Attempts)
	assert.Equal(t, 1, calls)
}

func TestRetrier_Do_SuccessAfterRetries(t *testing.T) {
	calls := 0
	result := New(fastConfig(3)).Do(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("conflict")
		}
		return nil
	})

	assert.NoError(t, result.Err)
	assert.Equal(t, 3, result.Attempts)
}

func TestRetrier_Do_MaxRetriesExceeded(t *testing.T) {
	boom := errors.New("boom")
	result := New(fastConfig(2)).Do(context.Background(), func(ctx context.Context) error {
		return boom
	})

	assert.ErrorIs(t, result.Err, ErrMaxRetriesExceeded)
	assert.ErrorIs(t, result.LastError, boom)
	assert.Equal(t, 3, result.Attempts)
}

func TestRetrier_Do_PermanentError(t *testing.T) {
	boom := errors.New("not found")
	result := New(fastConfig(5)).Do(context.Background(), func(ctx context.Context) error {
		return Permanent(boom)
	})

	assert.ErrorIs(t, result.Err, boom)
	assert.Equal(t, 1, result.Attempts)
}

func TestRetrier_Do_RetryIf(t *testing.T) {
	conflict := errors.New("conflict")
	other := errors.New("other")

	cfg := fastConfig(5)
	cfg.RetryIf = func(err error) bool { return errors.Is(err, conflict) }

	calls := 0
	result := New(cfg).Do(context.Background(), func(ctx context.Context) error {
		calls++
		if calls == 1 {
			return conflict
		}
		return other
	})

	assert.ErrorIs(t, result.Err, other)
	assert.Equal(t, 2, result.Attempts)
}

func TestRetrier_Do_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := New(fastConfig(3)).Do(ctx, func(ctx context.Context) error {
		t.Fatal("operation should not run")
		return nil
	})

	assert.ErrorIs(t, result.Err, ErrContextCanceled)
}

func TestRetrier_DoWithCallback(t *testing.T) {
	var attempts []int
	result := New(fastConfig(2)).DoWithCallback(context.Background(), func(ctx context.Context) error {
		return errors.New("fail")
	}, func(attempt int, err error, next time.Duration) {
		attempts = append(attempts, attempt)
	})

	assert.Error(t, result.Err)
	assert.Equal(t, []int{1, 2}, attempts)
}

func TestCalculateInterval_Capped(t *testing.T) {
	r := New(&Config{InitialInterval: 10 * time.Millisecond, MaxInterval: 30 * time.Millisecond, Multiplier: 2})

	assert.Equal(t, 10*time.Millisecond, r.calculateInterval(0))
	assert.Equal(t, 20*time.Millisecond, r.calculateInterval(1))
	assert.Equal(t, 30*time.Millisecond, r.calculateInterval(2))
	assert.Equal(t, 30*time.Millisecond, r.calculateInterval(6))
}

func TestDo_ConvenienceFunction(t *testing.T) {
	result := Do(context.Background(), fastConfig(0), func(ctx context.Context) error { return nil })
	assert.NoError(t, result.Err)
}
