package logtool

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Veraticus/fpm-logcheck/pkg/config"
	"github.com/Veraticus/fpm-logcheck/pkg/reader"
	"github.com/Veraticus/fpm-logcheck/pkg/testutil"
	"github.com/Veraticus/fpm-logcheck/pkg/types"
)

var stderrPrefix = testutil.ChildPrefix(types.Warning, "unconfined", "stderr", 42)

func newTool(t *testing.T, lines ...string) (*Tool, *reader.Memory, *bytes.Buffer) {
	t.Helper()
	mem := reader.NewMemory(lines...)
	tool := New(config.DefaultConfig(), mem)
	out := &bytes.Buffer{}
	tool.SetOutput(out)
	return tool, mem, out
}

func requireKind(t *testing.T, err error, kind types.Kind) *types.CheckError {
	t.Helper()
	var ce *types.CheckError
	require.ErrorAs(t, err, &ce)
	require.Equal(t, kind, ce.Kind, ce.Message)
	return ce
}
