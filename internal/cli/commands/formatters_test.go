package commands

import (
	"bytes"
	"context"
	"testing"

	"github.com/leapstack-labs/lintstream/pkg/formatter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormattersCommand(t *testing.T) {
	cmd := NewFormattersCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs(nil)

	require.NoError(t, cmd.Execute())

	for _, name := range formatter.Names() {
		assert.Contains(t, out.String(), name)
	}
	assert.Contains(t, out.String(), "yes")
}

func TestEnginesCommand(t *testing.T) {
	cmd := NewEnginesCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs(nil)

	require.NoError(t, cmd.ExecuteContext(context.Background()))

	assert.Contains(t, out.String(), "builtin")
	assert.Contains(t, out.String(), "eslintrc, flat")
}
