package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassifiedError(t *testing.T) {
	t.Run("Basic error creation", func(t *testing.T) {
		err := NewError(CategoryConfig, "invalid configuration").
			WithSeverity(SeverityFatal).
			WithContext("file", "taskboard.yaml").
			Build()

		require.Equal(t, CategoryConfig, err.Category())
		require.Equal(t, SeverityFatal, err.Severity())
		require.Equal(t, "invalid configuration", err.Message())

		file, exists := err.Context().GetString("file")
		require.True(t, exists)
		require.Equal(t, "taskboard.yaml", file)
	})

	t.Run("Error detection through wrapping", func(t *testing.T) {
		err := fmt.Errorf("loading: %w", ConfigError("bad storage backend").Build())

		require.True(t, IsClassified(err))
		require.True(t, HasCategory(err, CategoryConfig))
		require.True(t, HasSeverity(err, SeverityFatal))
		require.Equal(t, CategoryConfig, GetCategory(err))
	})

	t.Run("Unclassified errors default to internal", func(t *testing.T) {
		require.Equal(t, CategoryInternal, GetCategory(stderrors.New("boom")))
		require.False(t, IsClassified(stderrors.New("boom")))
	})
}

func TestErrorBuilder(t *testing.T) {
	t.Run("Fluent API", func(t *testing.T) {
		original := stderrors.New("disk full")
		err := WrapError(original, CategoryStorage, "write slot failed").
			Warning().
			Retryable().
			WithContext("slot_key", "task-storage").
			Build()

		require.Equal(t, CategoryStorage, err.Category())
		require.Equal(t, SeverityWarning, err.Severity())
		require.Equal(t, RetryBackoff, err.RetryStrategy())
		require.True(t, err.CanRetry())
		require.ErrorIs(t, err, original)
		require.Contains(t, err.Error(), "disk full")
	})

	t.Run("Sentinel matching", func(t *testing.T) {
		sentinel := EventStoreError("failed to append event").Build()
		err := fmt.Errorf("recording: %w", EventStoreError("failed to append event").WithCause(stderrors.New("locked")).Build())

		require.ErrorIs(t, err, sentinel)
	})

	t.Run("WithContext does not mutate the original", func(t *testing.T) {
		base := NotFoundError("task").Build()
		derived := base.WithContext("task_id", "abc")

		_, ok := base.Context().Get("task_id")
		require.False(t, ok)
		id, ok := derived.Context().GetString("task_id")
		require.True(t, ok)
		require.Equal(t, "abc", id)
	})

	t.Run("User action errors are not retryable", func(t *testing.T) {
		require.False(t, ValidationError("title is required").Build().CanRetry())
		require.True(t, StorageError("slot unavailable").Build().CanRetry())
	})
}
