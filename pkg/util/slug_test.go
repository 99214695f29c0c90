package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"Simple name", "Oud Royal", "oud-royal"},
		{"Mixed case and digits", "Aqua 100ml EDP", "aqua-100ml-edp"},
		{"Collapses separators", "Rose  -  Noir", "rose-noir"},
		{"Drops symbols", "L'Ambre d'Or!", "lambre-dor"},
		{"Underscores and slashes", "eau_de/parfum", "eau-de-parfum"},
		{"Trims hyphens", " -Musk- ", "musk"},
		{"Empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.in))
		})
	}
}

func TestUniqueSlug(t *testing.T) {
	taken := map[string]bool{"oud-royal": true, "oud-royal-2": true}
	exists := func(slug string) (bool, error) {
		return taken[slug], nil
	}

	slug, err := UniqueSlug("Oud Royal", exists)
	require.NoError(t, err)
	assert.Equal(t, "oud-royal-3", slug)

	slug, err = UniqueSlug("Rose Noir", exists)
	require.NoError(t, err)
	assert.Equal(t, "rose-noir", slug)
}

func TestUniqueSlug_EmptyName(t *testing.T) {
	exists := func(string) (bool, error) { return false, nil }

	slug, err := UniqueSlug("!!!", exists)
	require.NoError(t, err)
	assert.Equal(t, "item", slug)
}
