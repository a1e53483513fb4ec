package model

import "math/rand/v2"

// ColumnColors is the palette new columns draw their display color from.
var ColumnColors = []string{
	"#FF5733",
	"#33FF57",
	"#3357FF",
	"#F1C40F",
	"#9B59B6",
	"#E67E22",
	"#1ABC9C",
	"#E74C3C",
	"#2ECC71",
	"#34495E",
}

// RandomColumnColor picks a display color for a newly created column.
func RandomColumnColor() string {
	return ColumnColors[rand.IntN(len(ColumnColors))]
}
