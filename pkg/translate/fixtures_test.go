package translate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/qgen/quadlet-gen/pkg/quadtest"
	"github.com/qgen/quadlet-gen/pkg/resolve"
	"github.com/qgen/quadlet-gen/pkg/unitfile"
)

// runFixture parses testdata/name, resolves any "depends-on" siblings into
// a fakeResolver alongside name itself, translates it with kind's
// translator, and runs the fixture's own "## " directives against the
// result, mirroring the concrete scenarios named for the container
// translator.
func runFixture(t *testing.T, name string, kind Translator) {
	t.Helper()

	path := filepath.Join("testdata", name)
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	directives, err := quadtest.ParseDirectives(data)
	require.NoError(t, err)

	src, err := unitfile.Parse(name, data)
	require.NoError(t, err)

	units := []*resolve.UnitInfo{unitInfoFor(name)}
	for _, dep := range quadtest.DependsOn(directives) {
		units = append(units, unitInfoFor(dep))
	}
	resolver := newFakeResolver(units...)

	out, _, err := kind.Translate(newTestContext(resolver), src)
	require.NoError(t, err)

	if msg := quadtest.Run(directives, out); msg != "" {
		t.Fatalf("fixture %s: %s", name, msg)
	}
}

func TestFixtureUserRoot1IdMapCoverage(t *testing.T) {
	runFixture(t, "user-root1.container", ContainerTranslator{})
}

func TestFixtureNoRemapUser2HostMappedIdMap(t *testing.T) {
	runFixture(t, "noremapuser2.container", ContainerTranslator{})
}

func TestFixtureMountBindQuotePreserved(t *testing.T) {
	runFixture(t, "mount-bind.container", ContainerTranslator{})
}

func TestFixtureMountVolumeResolvesSibling(t *testing.T) {
	runFixture(t, "mount-volume.container", ContainerTranslator{})
}

func TestFixturePublishPortPassesThroughSpecifier(t *testing.T) {
	runFixture(t, "publishport.container", ContainerTranslator{})
}

func TestFixtureExposeHostPortRange(t *testing.T) {
	runFixture(t, "expose-range.container", ContainerTranslator{})
}
