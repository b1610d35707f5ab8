package cli

import (
	"fmt"

	"github.com/artpar/crumbs/internal/cookies/csvstore"
	"github.com/artpar/crumbs/internal/cookies/sqlite"
	"github.com/spf13/cobra"
)

// NewImportCommand creates the import command.
func NewImportCommand(root *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import SQLITE_DB",
		Short: "Import cookies from a SQLite cookie database",
		Long:  "Copy every cookie from a SQLite cookie database written by earlier releases into the cookie file. Existing cookies with the same name, domain and path are replaced. Nothing is written if any cookie lacks a domain or path.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, root, args[0])
		},
	}
}

func runImport(cmd *cobra.Command, root *RootOptions, dbPath string) error {
	imported, err := sqlite.ReadAll(cmd.Context(), dbPath)
	if err != nil {
		return err
	}

	for _, c := range imported {
		if c.Domain == "" || c.Path == "" {
			return fmt.Errorf("import %s: %w", c.Key(), csvstore.ErrInvalidKey)
		}
	}

	s, err := root.open(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	for _, c := range imported {
		if err := s.store.Set(cmd.Context(), c); err != nil {
			return fmt.Errorf("import %s: %w", c.Key(), err)
		}
	}

	s.logger.Info("cookies imported", "source", dbPath, "count", len(imported))
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d cookies from %s\n", len(imported), dbPath)
	return nil
}
