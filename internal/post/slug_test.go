// SPDX-License-Identifier: MIT

package post

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeSlug(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"rails-routing", "rails-routing"},
		{"Rails Routing", "rails-routing"},
		{"café-culture", "cafe-culture"},
		{"Ünïcödé Tïtle", "unicode-title"},
		{"double--hyphen", "double-hyphen"},
		{"trailing-", "trailing"},
		{"-leading", "leading"},
		{"with_underscores_and.dots", "with-underscores-and-dots"},
		{"2015 year review", "2015-year-review"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := NormalizeSlug(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeSlug_NoUsableCharacters(t *testing.T) {
	for _, input := range []string{"", "---", "!!!"} {
		_, err := NormalizeSlug(input)
		assert.Error(t, err, input)
	}
}

func TestNormalizeSlug_Idempotent(t *testing.T) {
	first, err := NormalizeSlug("Café Culture!")
	require.NoError(t, err)
	second, err := NormalizeSlug(first)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
