package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	for _, valid := range []string{"table", "json", "YAML", "wide", ""} {
		_, err := ParseFormat(valid)
		assert.NoError(t, err, valid)
	}

	_, err := ParseFormat("xml")
	assert.Error(t, err)
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	err := NewFormatter(FormatJSON).Format(&buf, map[string]string{"file": "a.conf"})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"file": "a.conf"`)
}

func TestYAMLFormatter(t *testing.T) {
	var buf bytes.Buffer
	err := NewFormatter(FormatYAML).Format(&buf, map[string]string{"file": "a.conf"})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "file: a.conf")
}

func TestTableFormatterWithData(t *testing.T) {
	var buf bytes.Buffer
	data := Data{
		Headers: []string{"Range", "Name", "Status"},
		Rows: [][]string{
			{"2-5", "aliases", "ok"},
			{"8-12", "prompt", "modified"},
		},
	}
	err := NewFormatter(FormatTable).Format(&buf, data)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "aliases")
	assert.Contains(t, out, "modified")
}

func TestTableFormatterStructSlice(t *testing.T) {
	rows := []struct {
		File   string `json:"file"`
		Status string `json:"status"`
	}{
		{File: "a.conf", Status: "modified"},
		{File: "b.sh", Status: "unmanaged"},
	}

	var buf bytes.Buffer
	err := NewFormatter(FormatTable).Format(&buf, rows)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "a.conf")
	// json tags become title-cased headers
	assert.True(t, strings.Contains(out, "File") || strings.Contains(out, "FILE"))
}
