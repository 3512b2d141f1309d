package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"spaces", "Red Shoe", "red-shoe"},
		{"already slug", "red-shoe", "red-shoe"},
		{"punctuation", "Apple iPhone 15, Pro!", "apple-iphone-15-pro"},
		{"surrounding spaces", "  Blue   Jeans  ", "blue-jeans"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.title))
		})
	}
}
