package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/devopslab/labseed/domain"
)

func TestRefreshForecastDates(t *testing.T) {
	t.Parallel()

	today := time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC)

	t.Run("should replace every in-range date with today", func(t *testing.T) {
		t.Parallel()

		// given
		text := `{"start":"2023-05-01","end":"2019-12-31"}`

		// when
		result := domain.RefreshForecastDates(text, today)

		// then
		assert.Equal(t, `{"start":"2024-06-15","end":"2024-06-15"}`, result)
	})

	t.Run("should leave dates outside the 2000-2029 window unchanged", func(t *testing.T) {
		t.Parallel()

		// given
		text := `{"future":"2031-01-01","past":"1999-12-31"}`

		// when
		result := domain.RefreshForecastDates(text, today)

		// then
		assert.Equal(t, text, result)
	})

	t.Run("should rewrite dates embedded in arbitrary text", func(t *testing.T) {
		t.Parallel()

		// given
		text := "delivered on 2021-03-09, reviewed 2028-11-30"

		// when
		result := domain.RefreshForecastDates(text, today)

		// then
		assert.Equal(t, "delivered on 2024-06-15, reviewed 2024-06-15", result)
	})

	t.Run("should preserve the document length", func(t *testing.T) {
		t.Parallel()

		// given
		text := `{"a":"2020-01-01","b":[1,2,3],"c":"plain"}`

		// when
		result := domain.RefreshForecastDates(text, today)

		// then
		assert.Len(t, result, len(text))
	})

	t.Run("should return text without dates untouched", func(t *testing.T) {
		t.Parallel()

		// given
		text := `{"no":"dates","here":42}`

		// when
		result := domain.RefreshForecastDates(text, today)

		// then
		assert.Equal(t, text, result)
	})
}
