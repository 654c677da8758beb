package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/fpm-logcheck/pkg/types"
)

func TestExpand(t *testing.T) {
	tests := []struct {
		name     string
		message  string
		expected string
	}{
		{name: "plain", message: "ready to handle connections", expected: `ready to handle connections`},
		{name: "metacharacters quoted", message: "Terminating ...", expected: `Terminating \.\.\.`},
		{name: "int wildcard", message: "pid %d", expected: `pid \d+`},
		{name: "string wildcard", message: `"%s"`, expected: `"[^\r\n]+"`},
		{name: "trailing percent", message: "100%", expected: `100%`},
		{name: "unknown verb", message: "%x%d", expected: `%x\d+`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Expand(tt.message))
		})
	}
}

func TestEntry(t *testing.T) {
	re, err := Entry(types.Notice, "", `using inherited socket fd=%d, "%s"`)
	require.NoError(t, err)

	assert.True(t, re.MatchString(`[15-Oct-2026 10:04:05] NOTICE: using inherited socket fd=7, "abc"`))
	assert.True(t, re.MatchString(`NOTICE: using inherited socket fd=7, "abc"`))
	assert.True(t, re.MatchString(`[15-Oct-2026 10:04:05.123456] NOTICE: pid 12, fpm_sockets_init_main(), line 403: using inherited socket fd=7, "abc"`))
	assert.False(t, re.MatchString(`[15-Oct-2026 10:04:05] NOTICE: using inherited socket fd=seven, "abc"`))
	assert.False(t, re.MatchString(`[15-Oct-2026 10:04:05] WARNING: using inherited socket fd=7, "abc"`))
}

func TestEntryWithPool(t *testing.T) {
	re, err := Entry(types.Warning, "www.1", "child %d exited")
	require.NoError(t, err)

	assert.True(t, re.MatchString(`[15-Oct-2026 10:04:05] WARNING: [pool www.1] child 33 exited`))
	assert.False(t, re.MatchString(`[15-Oct-2026 10:04:05] WARNING: [pool wwwx1] child 33 exited`))
	assert.False(t, re.MatchString(`[15-Oct-2026 10:04:05] WARNING: child 33 exited`))
}

func TestWrapped(t *testing.T) {
	re, err := Wrapped(types.Warning, "unconfined", Stderr)
	require.NoError(t, err)

	m := re.FindStringSubmatch(`[15-Oct-2026 10:04:05] WARNING: [pool unconfined] child 5 said into stderr: "abc", pipe is closed`)
	require.NotNil(t, m)
	assert.Equal(t, "abc", m[1])
	assert.Equal(t, ", pipe is closed", m[2])

	assert.Nil(t, re.FindStringSubmatch(`[15-Oct-2026 10:04:05] WARNING: [pool unconfined] child 5 said into stdout: "abc"`))

	stdout, err := Wrapped(types.Warning, "unconfined", Stdout)
	require.NoError(t, err)
	assert.True(t, stdout.MatchString(`[15-Oct-2026 10:04:05] WARNING: [pool unconfined] child 5 said into stdout: "abc"`))
}

func TestTruncated(t *testing.T) {
	re, err := Truncated()
	require.NoError(t, err)

	m := re.FindStringSubmatchIndex("PHP message: abcdef...")
	require.NotNil(t, m)
	assert.Equal(t, "abcdef", "PHP message: abcdef..."[m[2]:m[3]])
	assert.GreaterOrEqual(t, m[4], 0)

	m = re.FindStringSubmatchIndex("PHP message: abcdef")
	require.NotNil(t, m)
	assert.Equal(t, "abcdef", "PHP message: abcdef"[m[2]:m[3]])
	assert.Equal(t, -1, m[4])
}

func TestActual(t *testing.T) {
	re, err := Actual()
	require.NoError(t, err)

	m := re.FindStringSubmatch(`[15-Oct-2026 10:04:05] ERROR: something broke`)
	require.NotNil(t, m)
	assert.Equal(t, "ERROR", m[1])
	assert.Equal(t, "something broke", m[2])

	assert.False(t, re.MatchString(`[15-Oct-2026 10:04:05] DEBUG: chatter`))
}
