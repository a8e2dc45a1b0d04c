package archive

import (
	"fmt"
	"strings"
)

var nameReplacer = strings.NewReplacer("/", "_", "\\", "_", "\x00", "")

// Filename returns the export filename for a project.
func Filename(name, id string) string {
	short := id
	if len(short) > 5 {
		short = short[:5]
	}
	name = nameReplacer.Replace(strings.TrimSpace(name))
	if name == "" || name == "." || name == ".." {
		name = "project"
	}
	return fmt.Sprintf("Archive_%s_%s.json", name, short)
}
