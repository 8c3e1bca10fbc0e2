package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sliceSource is a fixed in-memory UnitSource for Run tests.
type sliceSource struct {
	files []struct {
		path string
		data []byte
	}
	idx int
}

func newSliceSource(units map[string]string) *sliceSource {
	s := &sliceSource{}
	for path, data := range units {
		s.files = append(s.files, struct {
			path string
			data []byte
		}{path, []byte(data)})
	}
	return s
}

func (s *sliceSource) Next() (string, []byte, bool, error) {
	if s.idx >= len(s.files) {
		return "", nil, false, nil
	}
	f := s.files[s.idx]
	s.idx++
	return f.path, f.data, true, nil
}

// mapSink records every write in memory.
type mapSink struct {
	written map[string][]byte
}

func newMapSink() *mapSink {
	return &mapSink{written: make(map[string][]byte)}
}

func (s *mapSink) Write(path string, data []byte) error {
	s.written[path] = data
	return nil
}

func TestRunTranslatesContainerUnit(t *testing.T) {
	src := newSliceSource(map[string]string{
		"app.container": "[Container]\nImage=docker.io/library/nginx\n",
	})
	sink := newMapSink()

	result, err := Run(src, sink, Options{})
	require.NoError(t, err)
	require.Len(t, result.Outcomes, 1)
	assert.NoError(t, result.Outcomes[0].Err)
	assert.Equal(t, "app.service", result.Outcomes[0].ServiceName)
	assert.Contains(t, sink.written, "app.service")
	assert.Contains(t, string(sink.written["app.service"]), "ExecStart")
}

func TestRunCollectsPerUnitFailureWithoutAbortingOthers(t *testing.T) {
	src := newSliceSource(map[string]string{
		"broken.container": "[Container]\n",
		"app.container":    "[Container]\nImage=nginx\n",
	})
	sink := newMapSink()

	result, err := Run(src, sink, Options{})
	require.NoError(t, err)
	require.Len(t, result.Outcomes, 2)

	failed := result.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, "broken.container", failed[0].SourcePath)
	assert.Contains(t, sink.written, "app.service")
}

func TestRunContainerBeforePodOrderingPopulatesWantsBefore(t *testing.T) {
	src := newSliceSource(map[string]string{
		"web.container": "[Container]\nImage=nginx\nPod=mypod.pod\n",
		"mypod.pod":     "[Pod]\n",
	})
	sink := newMapSink()

	result, err := Run(src, sink, Options{})
	require.NoError(t, err)
	for _, o := range result.Outcomes {
		require.NoError(t, o.Err, o.SourcePath)
	}

	podUnit := string(sink.written["mypod-pod.service"])
	assert.Contains(t, podUnit, "Wants=web.service")
	assert.Contains(t, podUnit, "Before=web.service")
}

func TestRunSkipsParseErrorAndContinues(t *testing.T) {
	src := newSliceSource(map[string]string{
		"bad.container": string([]byte{0xff, 0xfe}),
		"app.container": "[Container]\nImage=nginx\n",
	})
	sink := newMapSink()

	result, err := Run(src, sink, Options{})
	require.NoError(t, err)
	failed := result.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, "bad.container", failed[0].SourcePath)
	assert.Contains(t, sink.written, "app.service")
}

type erroringSource struct{}

func (erroringSource) Next() (string, []byte, bool, error) {
	return "", nil, false, assert.AnError
}

func TestRunPropagatesCatastrophicSourceError(t *testing.T) {
	_, err := Run(erroringSource{}, newMapSink(), Options{})
	require.Error(t, err)
}
