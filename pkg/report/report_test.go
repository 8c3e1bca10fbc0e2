package report

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/qgen/quadlet-gen/pkg/generator"
)

func TestPrintListsSuccessAndFailureRows(t *testing.T) {
	result := &generator.Result{
		Outcomes: []generator.Outcome{
			{SourcePath: "app.container", ServiceName: "app.service"},
			{SourcePath: "broken.container", Err: errors.New("missing Image=")},
		},
	}

	var buf bytes.Buffer
	Print(&buf, result)

	out := buf.String()
	assert.Contains(t, out, "app.container")
	assert.Contains(t, out, "app.service")
	assert.Contains(t, out, "broken.container")
	assert.Contains(t, out, "missing Image=")
}

func TestPrintListsWarningsSeparately(t *testing.T) {
	result := &generator.Result{
		Outcomes: []generator.Outcome{
			{SourcePath: "app.container", ServiceName: "app.service", Warnings: []string{"unsupported key ignored"}},
		},
	}

	var buf bytes.Buffer
	Print(&buf, result)

	assert.Contains(t, buf.String(), "unsupported key ignored")
}
