package config

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// titleCaser turns a roster key into a presentable label when the config
// omits one ("cassiy" -> "Cassiy").
var titleCaser = cases.Title(language.Und)
