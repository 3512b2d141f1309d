package util

import "github.com/gosimple/slug"

// Slugify строит slug товара из названия: "Red Shoe" -> "red-shoe"
func Slugify(title string) string {
	return slug.Make(title)
}
