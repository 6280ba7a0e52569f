package blob

import (
	"strings"
	"testing"

	"citycore/testutil"
)

func TestPersisterStaysBelowCore(t *testing.T) {
	testutil.AssertNoDirectImports(t, ".", func(path string) bool {
		return path == "citycore/internal/core" || strings.HasPrefix(path, "citycore/internal/adapters")
	}, "persisters are wired by core and must not import it")
}
