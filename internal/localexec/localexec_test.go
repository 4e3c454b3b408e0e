package localexec

import (
	"testing"

	"github.com/benthomasson/ftl-go/internal/module"
	"github.com/stretchr/testify/require"
)

func TestRunOldStyleArgtest(t *testing.T) {
	script := `#!/bin/sh
printf '{"more_args": "%s"}' "$(cat "$1")"
`
	desc := &module.Descriptor{
		Name:  "argtest",
		Bytes: []byte(script),
		Style: module.StyleOldStyle,
	}

	result, err := Run(map[string]any{}, desc, map[string]any{"somekey": "somevalue"}, "/bin/sh")
	require.NoError(t, err)
	require.Equal(t, "somekey=somevalue", result["more_args"])
}

func TestRunNewStyleEcho(t *testing.T) {
	script := `#!/bin/sh
# AnsibleModule( marker for classification
cat <<'EOF'
{"args": ["ok"]}
EOF
`
	desc := &module.Descriptor{
		Name:  "argtest",
		Bytes: []byte(script),
		Style: module.StyleNewStyle,
	}

	result, err := Run(map[string]any{}, desc, map[string]any{"k": "v"}, "/bin/sh")
	require.NoError(t, err)
	require.Equal(t, []any{"ok"}, result["args"])
}

func TestRunReturnsRawOnNonJSONOutput(t *testing.T) {
	script := "#!/bin/sh\necho not-json\n"
	desc := &module.Descriptor{Name: "broken", Bytes: []byte(script), Style: module.StyleOldStyle}

	result, err := Run(map[string]any{}, desc, nil, "/bin/sh")
	require.NoError(t, err)
	require.Equal(t, "not-json\n", result["error"])
}
