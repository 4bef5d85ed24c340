package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProgressBar(t *testing.T) {
	t.Run("determinate progress bar with known total", func(t *testing.T) {
		total := 100
		description := DescFetching

		bar := NewProgressBar(total, description)

		require.NotNil(t, bar)
		assert.NotNil(t, bar)
	})

	t.Run("indeterminate progress bar with unknown total", func(t *testing.T) {
		total := -1
		description := DescResolving

		bar := NewProgressBar(total, description)

		require.NotNil(t, bar)
		assert.NotNil(t, bar)
	})

	t.Run("zero total", func(t *testing.T) {
		total := 0
		description := DescMaterializing

		bar := NewProgressBar(total, description)

		require.NotNil(t, bar)
		assert.NotNil(t, bar)
	})
}

func TestProgressBarDescriptions(t *testing.T) {
	t.Run("DescResolving constant", func(t *testing.T) {
		assert.Equal(t, "Resolving", DescResolving)
	})

	t.Run("DescFetching constant", func(t *testing.T) {
		assert.Equal(t, "Fetching", DescFetching)
	})

	t.Run("DescMaterializing constant", func(t *testing.T) {
		assert.Equal(t, "Materializing", DescMaterializing)
	})
}

func TestProgressBarOperations(t *testing.T) {
	t.Run("add to determinate bar", func(t *testing.T) {
		total := 10
		bar := NewProgressBar(total, DescResolving)

		require.NotNil(t, bar)

		// Adding should not panic
		assert.NotPanics(t, func() {
			bar.Add(1)
			bar.Add(5)
		})
	})

	t.Run("finish determinate bar", func(t *testing.T) {
		total := 10
		bar := NewProgressBar(total, DescFetching)

		require.NotNil(t, bar)

		// Finish should not panic
		assert.NotPanics(t, func() {
			bar.Finish()
		})
	})

	t.Run("add to indeterminate bar", func(t *testing.T) {
		total := -1
		bar := NewProgressBar(total, DescResolving)

		require.NotNil(t, bar)

		// Adding should not panic
		assert.NotPanics(t, func() {
			bar.Add(1)
			bar.Add(5)
		})
	})
}
