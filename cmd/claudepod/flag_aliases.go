package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// sessionFlagAliases accepts the API surface's session_id spelling on the
// command line.
var sessionFlagAliases = map[string]string{
	"session_id": "session",
	"session-id": "session",
}

func init() {
	addSessionFlagAliases(startCmd, statusCmd, outputCmd, cancelCmd, jobsCmd)
}

func addSessionFlagAliases(cmds ...*cobra.Command) {
	for _, cmd := range cmds {
		setFlagAliases(cmd.Flags(), sessionFlagAliases)
	}
}

func setFlagAliases(flags *pflag.FlagSet, aliases map[string]string) {
	if len(aliases) == 0 {
		return
	}

	normalize := flags.GetNormalizeFunc()
	flags.SetNormalizeFunc(func(f *pflag.FlagSet, name string) pflag.NormalizedName {
		if alias, ok := aliases[name]; ok {
			name = alias
		}
		return normalize(f, name)
	})
}
