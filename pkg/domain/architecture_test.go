package domain

import (
	"testing"

	"citycore/testutil"
)

// The domain layer is shared by the transport, the CLI and every persister, so
// it stays free of internal packages and third-party modules.
func TestDomainDoesNotImportInternal(t *testing.T) {
	testutil.AssertNoDirectImports(t, ".", testutil.InternalImportForbidden, "domain must not depend on internal packages")
}

func TestDomainDependsOnStandardLibraryOnly(t *testing.T) {
	if testing.Short() {
		t.Skip("package loading shells out to the go command")
	}
	testutil.AssertNoTransitiveDependency(t, ".", testutil.ThirdPartyImportForbidden, "domain must only use the standard library")
}
