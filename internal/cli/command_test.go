package cli

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeafCommandBuild(t *testing.T) {
	cmd := LeafCommand{
		Use:   "test",
		Short: "A test command",
		Args:  cobra.NoArgs,
		BoolFlags: []BoolFlag{
			{Name: "plain", Usage: "disable colors"},
		},
		StrFlags: []StringFlag{
			{Name: "locale", Usage: "locale", Default: "pl"},
		},
		IntFlags: []IntFlag{
			{Name: "month", Usage: "month", Default: 3},
		},
		RunE: func(cmd *cobra.Command, args []string) error { return nil },
	}.Build()

	assert.Equal(t, "test", cmd.Use)
	assert.NotNil(t, cmd.RunE)

	plain := cmd.Flags().Lookup("plain")
	require.NotNil(t, plain)
	assert.Equal(t, "false", plain.DefValue)

	locale := cmd.Flags().Lookup("locale")
	require.NotNil(t, locale)
	assert.Equal(t, "pl", locale.DefValue)

	month := cmd.Flags().Lookup("month")
	require.NotNil(t, month)
	assert.Equal(t, "3", month.DefValue)
}

func TestRootCommands(t *testing.T) {
	names := []string{}
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}

	assert.Subset(t, names, []string{"month", "next", "prev"})
}
