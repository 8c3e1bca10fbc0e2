package generator

import (
	"io"

	"github.com/coreos/go-systemd/v22/unit"
	"github.com/qgen/quadlet-gen/pkg/unitfile"
)

// serialize renders a generated Unit to systemd unit-file syntax via
// go-systemd/v22/unit. Unlike pkg/unitfile's own hand-written serializer
// (kept for round-tripping *source* units and their comments), the units
// this produces are generated fresh with no comments to preserve, so
// go-systemd's own Serialize is the right tool for the job.
func serialize(u *unitfile.Unit) []byte {
	var opts []*unit.UnitOption
	for _, section := range u.Sections {
		for _, entry := range section.Entries {
			opts = append(opts, unit.NewUnitOption(section.Name, entry.Key, entry.Value))
		}
	}
	data, err := io.ReadAll(unit.Serialize(opts))
	if err != nil {
		// Serialize's Reader never fails; a non-nil error here means the
		// go-systemd contract changed underneath us.
		panic(err)
	}
	return data
}
