package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommandDefinitions(t *testing.T) {
	defs := GetCommandDefinitions()
	names := make([]string, 0, len(defs))
	for _, d := range defs {
		assert.NotEmpty(t, d.Description, d.Name)
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{"stats", "archive_date", "import_status", "ping"}, names)

	archive := (&ArchiveDateCommand{}).Definition()
	assert.True(t, archive.Options[0].Required)
	assert.True(t, archive.Options[1].Autocomplete)
}
