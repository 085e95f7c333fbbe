package slug

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMake(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"simple", "Electronics", "electronics"},
		{"spaces become hyphens", "Fresh Produce", "fresh-produce"},
		{"special characters stripped", "Coffee & Tea!", "coffee-tea"},
		{"whitespace runs collapse", "Home   Decor", "home-decor"},
		{"hyphen runs collapse", "Pre--Owned", "pre-owned"},
		{"leading and trailing trimmed", "  -Spices-  ", "spices"},
		{"mixed case", "Food & Beverages", "food-beverages"},
		{"digits survive", "Top 10 Picks", "top-10-picks"},
		{"only special characters", "!!!", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Make(tc.in))
		})
	}
}

func TestWithSuffix(t *testing.T) {
	got := WithSuffix("coffee-tea")

	assert.True(t, strings.HasPrefix(got, "coffee-tea-"))
	assert.Greater(t, len(got), len("coffee-tea-"))
}
