package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for rebrand
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rebrand <new_identifier>",
		Short: "Rename a project template's placeholder package",
		Long: `Rebrand renames a project scaffold's placeholder package identifier
to the one you supply: it moves src/<old> to src/<new> (preserving git
history where possible), renames files whose names contain the old
identifier, and rewrites text file contents.

The identifier must start with a letter and contain only letters,
digits, and underscores.

Exit code: 0 on success (including the already-renamed no-op case),
1 on invalid arguments or a failed run.`,
		Version: Version,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("accepts exactly one argument, received %d\nusage: rebrand <new_identifier> (e.g. rebrand widget)", len(args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := optionsFromFlags(cmd)
			if err != nil {
				return err
			}
			return runRename(cmd.Context(), args[0], opts, cmd.OutOrStdout())
		},
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
	}

	cmd.Flags().String("old", "", "Old identifier to replace (default from config, project_name)")
	cmd.Flags().String("config", "", "Path to config file (default: .rebrand.yaml)")
	cmd.Flags().String("src", "", "Source directory containing the package subtree (default from config, src)")
	cmd.Flags().Bool("dry-run", false, "Print the planned operations without changing anything")
	cmd.Flags().String("log-level", "", "Logging verbosity (trace, debug, info, warn, error)")

	return cmd
}
