package entity

import (
	"fmt"
	"strings"
)

// Level names one tier of the hierarchy.
type Level string

const (
	LevelBook       Level = "book"
	LevelWord       Level = "word"
	LevelDefinition Level = "definition"
	LevelExample    Level = "example"
)

const (
	placeholderWordPrefix       = "TempWord_"
	placeholderDefinitionPrefix = "TempDefinition_"
	placeholderExamplePrefix    = "TempExample_"
)

// PlaceholderWord returns the marker text for an unauthored word.
func PlaceholderWord(id int64) string { return fmt.Sprintf("%s%d", placeholderWordPrefix, id) }

// PlaceholderDefinition returns the marker text for an unauthored definition.
func PlaceholderDefinition(id int64) string {
	return fmt.Sprintf("%s%d", placeholderDefinitionPrefix, id)
}

// PlaceholderExample returns the marker text for an unauthored example.
func PlaceholderExample(id int64) string { return fmt.Sprintf("%s%d", placeholderExamplePrefix, id) }

// IsPlaceholder reports whether text still carries a placeholder marker of any level.
func IsPlaceholder(text string) bool {
	t := strings.TrimSpace(text)
	return strings.HasPrefix(t, placeholderWordPrefix) ||
		strings.HasPrefix(t, placeholderDefinitionPrefix) ||
		strings.HasPrefix(t, placeholderExamplePrefix)
}
