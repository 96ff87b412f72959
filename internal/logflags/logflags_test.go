package logflags

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func TestFlagsUseEnvPrefix(t *testing.T) {
	flags := NewKlogFlagSet("SDAT_TEST")
	require.NotEmpty(t, flags)

	names := map[string][]string{}
	for _, f := range flags {
		switch f := f.(type) {
		case *cli.IntFlag:
			names[f.Name] = f.EnvVars
		case *cli.StringFlag:
			names[f.Name] = f.EnvVars
		case *cli.BoolFlag:
			names[f.Name] = f.EnvVars
		}
	}

	assert.Equal(t, []string{"SDAT_TEST_V"}, names["v"])
	assert.Equal(t, []string{"SDAT_TEST_LOG_FILE"}, names["log_file"])
	assert.Contains(t, names, "logtostderr")
}
