// Package listflags holds flags shared by the read-only commands.
package listflags

import "github.com/spf13/cobra"

// AddJSONFlag adds a shared --json flag bound to target.
func AddJSONFlag(cmd *cobra.Command, target *bool) {
	cmd.Flags().BoolVar(target, "json", false, "Output as JSON")
}
