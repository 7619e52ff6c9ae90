package source

import (
	"fmt"
	"strings"
)

// UnregisteredSourceError reports JSON files under files_dir that no
// manifest source matches. In strict mode they fail the build instead of
// being silently skipped.
type UnregisteredSourceError struct {
	Dir   string
	Paths []string
}

func (e *UnregisteredSourceError) Error() string {
	return fmt.Sprintf("%d file(s) in %s are not registered in the manifest: %s",
		len(e.Paths), e.Dir, strings.Join(e.Paths, ", "))
}
