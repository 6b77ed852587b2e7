package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

type hintedError struct{ wait time.Duration }

func (e hintedError) Error() string                 { return "slow down" }
func (e hintedError) RetryAfterHint() time.Duration { return e.wait }

func fastConfig(retries int) Config {
	return Config{
		MaxRetries:   retries,
		InitialDelay: 10 * time.Millisecond,
		MaxDelay:     100 * time.Millisecond,
		Multiplier:   2.0,
	}
}

// TestDo tests basic retry logic.
func TestDo(t *testing.T) {
	t.Run("Success on first attempt", func(t *testing.T) {
		attempts := 0
		err := Do(context.Background(), DefaultConfig(), func() error {
			attempts++
			return nil
		})

		if err != nil {
			t.Errorf("Expected no error, got: %v", err)
		}
		if attempts != 1 {
			t.Errorf("Expected 1 attempt, got %d", attempts)
		}
	})

	t.Run("Success after retries", func(t *testing.T) {
		attempts := 0
		err := Do(context.Background(), fastConfig(3), func() error {
			attempts++
			if attempts < 3 {
				return errors.New("temporary error")
			}
			return nil
		})

		if err != nil {
			t.Errorf("Expected no error, got: %v", err)
		}
		if attempts != 3 {
			t.Errorf("Expected 3 attempts, got %d", attempts)
		}
	})

	t.Run("Max retries exceeded", func(t *testing.T) {
		attempts := 0
		err := Do(context.Background(), fastConfig(3), func() error {
			attempts++
			return errors.New("persistent error")
		})

		if err == nil {
			t.Error("Expected error after max retries")
		}
		// initial + 3 retries
		if attempts != 4 {
			t.Errorf("Expected 4 attempts (initial + 3 retries), got %d", attempts)
		}
	})

	t.Run("Context already cancelled", func(t *testing.T) {
		attempts := 0
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := Do(ctx, DefaultConfig(), func() error {
			attempts++
			return errors.New("error")
		})

		if !errors.Is(err, context.Canceled) {
			t.Errorf("Expected context.Canceled error, got: %v", err)
		}
		if attempts != 0 {
			t.Errorf("Expected no attempts, got %d", attempts)
		}
	})

	t.Run("Context timeout during retry", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		cfg := Config{
			MaxRetries:   10,
			InitialDelay: 100 * time.Millisecond, // longer than the timeout
			MaxDelay:     time.Second,
			Multiplier:   2.0,
		}

		start := time.Now()
		err := Do(ctx, cfg, func() error { return errors.New("error") })
		elapsed := time.Since(start)

		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("Expected deadline error, got: %v", err)
		}
		if elapsed > 200*time.Millisecond {
			t.Errorf("Expected quick timeout, took %v", elapsed)
		}
	})

	t.Run("Max delay cap", func(t *testing.T) {
		attempts := 0
		cfg := Config{
			MaxRetries:   10,
			InitialDelay: 10 * time.Millisecond,
			MaxDelay:     20 * time.Millisecond,
			Multiplier:   2.0,
		}

		start := time.Now()
		err := Do(context.Background(), cfg, func() error {
			attempts++
			if attempts < 5 {
				return errors.New("error")
			}
			return nil
		})
		elapsed := time.Since(start)

		if err != nil {
			t.Errorf("Expected no error, got: %v", err)
		}
		// uncapped: 10+20+40+80ms, capped: 10+20+20+20ms
		if elapsed > 120*time.Millisecond {
			t.Errorf("Expected max delay cap to limit total time, took %v", elapsed)
		}
	})

	t.Run("Retry hint is respected", func(t *testing.T) {
		attempts := 0
		cfg := fastConfig(1)
		cfg.RespectRetryAfter = true

		start := time.Now()
		err := Do(context.Background(), cfg, func() error {
			attempts++
			if attempts == 1 {
				return hintedError{wait: 60 * time.Millisecond}
			}
			return nil
		})
		elapsed := time.Since(start)

		if err != nil {
			t.Errorf("Expected no error, got: %v", err)
		}
		if elapsed < 60*time.Millisecond {
			t.Errorf("Expected to wait for the hint, only waited %v", elapsed)
		}
	})
}

// TestDoResult tests retry with result return.
func TestDoResult(t *testing.T) {
	t.Run("Success with result", func(t *testing.T) {
		attempts := 0
		result, err := DoResult(context.Background(), fastConfig(3), func() (string, error) {
			attempts++
			if attempts < 2 {
				return "", errors.New("temporary error")
			}
			return "success", nil
		})

		if err != nil {
			t.Errorf("Expected no error, got: %v", err)
		}
		if result != "success" {
			t.Errorf("Expected result 'success', got %s", result)
		}
	})

	t.Run("Failure preserves error", func(t *testing.T) {
		expected := errors.New("specific error message")
		result, err := DoResult(context.Background(), fastConfig(1), func() (int, error) {
			return 0, expected
		})

		if !errors.Is(err, expected) {
			t.Errorf("Expected error to be preserved, got: %v", err)
		}
		if result != 0 {
			t.Errorf("Expected zero value (0), got %d", result)
		}
	})
}

// TestDefaultConfig tests default configuration.
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.MaxRetries != 3 {
		t.Errorf("Expected MaxRetries 3, got %d", cfg.MaxRetries)
	}
	if cfg.InitialDelay != time.Second {
		t.Errorf("Expected InitialDelay 1s, got %v", cfg.InitialDelay)
	}
	if cfg.MaxDelay != 60*time.Second {
		t.Errorf("Expected MaxDelay 60s, got %v", cfg.MaxDelay)
	}
	if !cfg.RespectRetryAfter {
		t.Error("Expected RespectRetryAfter enabled by default")
	}
}
