package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/artpar/crumbs/internal/cookies"
	"github.com/atotto/clipboard"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

// SetOptions holds options for the set command.
type SetOptions struct {
	Domain   string
	Path     string
	Expires  string
	MaxAge   int
	Secure   bool
	HttpOnly bool
	HostOnly bool
}

// NewSetCommand creates the set command.
func NewSetCommand(root *RootOptions) *cobra.Command {
	opts := &SetOptions{}

	cmd := &cobra.Command{
		Use:   "set NAME VALUE",
		Short: "Store a cookie",
		Long:  "Store a cookie, replacing any cookie with the same name, domain and path.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSet(cmd, root, opts, args[0], args[1])
		},
	}

	cmd.Flags().StringVarP(&opts.Domain, "domain", "d", "", "Cookie domain (required)")
	cmd.Flags().StringVarP(&opts.Path, "path", "p", "/", "Cookie path")
	cmd.Flags().StringVar(&opts.Expires, "expires", "", "Expiry as RFC 3339 or HTTP date")
	cmd.Flags().IntVar(&opts.MaxAge, "max-age", 0, "Max-Age in seconds")
	cmd.Flags().BoolVar(&opts.Secure, "secure", false, "Mark cookie Secure")
	cmd.Flags().BoolVar(&opts.HttpOnly, "http-only", false, "Mark cookie HttpOnly")
	cmd.Flags().BoolVar(&opts.HostOnly, "host-only", false, "Mark cookie host-only")
	_ = cmd.MarkFlagRequired("domain")

	return cmd
}

func runSet(cmd *cobra.Command, root *RootOptions, opts *SetOptions, name, value string) error {
	expires, err := parseExpires(opts.Expires)
	if err != nil {
		return err
	}

	s, err := root.open(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	now := time.Now()
	c := &cookies.Cookie{
		Name:           name,
		Value:          value,
		Domain:         opts.Domain,
		Path:           opts.Path,
		Expires:        expires,
		MaxAge:         opts.MaxAge,
		Secure:         opts.Secure,
		HttpOnly:       opts.HttpOnly,
		HostOnly:       opts.HostOnly,
		CreatedAt:      now,
		LastAccessedAt: now,
	}
	if err := s.store.Set(cmd.Context(), c); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Stored %s\n", c.Key())
	return nil
}

// parseExpires accepts RFC 3339 or an HTTP date. Empty means no expiry.
func parseExpires(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := http.ParseTime(s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid expiry %q: use RFC 3339 or HTTP date format", s)
}

// GetOptions holds options for the get command.
type GetOptions struct {
	JSON bool
	Copy bool
}

// NewGetCommand creates the get command.
func NewGetCommand(root *RootOptions) *cobra.Command {
	opts := &GetOptions{}

	cmd := &cobra.Command{
		Use:   "get NAME DOMAIN [PATH]",
		Short: "Print a cookie value",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(cmd, root, opts, args)
		},
	}

	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Output the full cookie as JSON")
	cmd.Flags().BoolVarP(&opts.Copy, "copy", "c", false, "Copy the value to the clipboard")

	return cmd
}

func runGet(cmd *cobra.Command, root *RootOptions, opts *GetOptions, args []string) error {
	name, domain, path := keyArgs(args)

	s, err := root.open(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	c, err := s.store.Get(cmd.Context(), name, domain, path)
	if err != nil {
		return err
	}

	if opts.Copy {
		if err := clipboard.WriteAll(c.Value); err != nil {
			return fmt.Errorf("failed to copy to clipboard: %w", err)
		}
	}

	if opts.JSON {
		return writeJSON(cmd, c)
	}
	fmt.Fprintln(cmd.OutOrStdout(), c.Value)
	return nil
}

// ListOptions holds options for the list command.
type ListOptions struct {
	Domain string
	JSON   bool
}

// NewListCommand creates the list command.
func NewListCommand(root *RootOptions) *cobra.Command {
	opts := &ListOptions{}

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stored cookies",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, root, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Domain, "domain", "d", "", "Only show cookies for this domain")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Output as JSON")

	return cmd
}

func runList(cmd *cobra.Command, root *RootOptions, opts *ListOptions) error {
	s, err := root.open(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	all, err := s.store.List(cmd.Context())
	if err != nil {
		return err
	}

	list := make([]*cookies.Cookie, 0, len(all))
	for _, c := range all {
		if opts.Domain == "" || c.Domain == opts.Domain {
			list = append(list, c)
		}
	}
	sortCookies(list)

	if opts.JSON {
		return writeJSON(cmd, list)
	}

	out := cmd.OutOrStdout()
	if len(list) == 0 {
		fmt.Fprintln(out, "No cookies stored.")
		return nil
	}
	fmt.Fprintln(out, renderTable(list))
	return nil
}

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

func renderTable(list []*cookies.Cookie) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("NAME", "DOMAIN", "PATH", "VALUE", "EXPIRES", "FLAGS").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	for _, c := range list {
		expires := "session"
		if !c.IsSession() {
			expires = c.Expires.UTC().Format(time.RFC3339)
		}
		t.Row(c.Name, c.Domain, c.Path, truncate(c.Value, 40), expires, flags(c))
	}
	return t.Render()
}

func flags(c *cookies.Cookie) string {
	var f []string
	if c.Secure {
		f = append(f, "secure")
	}
	if c.HttpOnly {
		f = append(f, "httponly")
	}
	if c.HostOnly {
		f = append(f, "hostonly")
	}
	if c.IsExpired() {
		f = append(f, "expired")
	}
	return strings.Join(f, ",")
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func sortCookies(list []*cookies.Cookie) {
	sort.Slice(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if a.Domain != b.Domain {
			return a.Domain < b.Domain
		}
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		return a.Name < b.Name
	})
}

// NewRemoveCommand creates the rm command.
func NewRemoveCommand(root *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "rm NAME DOMAIN [PATH]",
		Aliases: []string{"remove"},
		Short:   "Remove a cookie",
		Args:    cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, domain, path := keyArgs(args)

			s, err := root.open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.store.Delete(cmd.Context(), name, domain, path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", cookies.Key{Name: name, Domain: domain, Path: path})
			return nil
		},
	}
}

// NewClearCommand creates the clear command.
func NewClearCommand(root *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cookie and delete the cookie file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := root.open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			// A corrupt file cannot be counted but must still be clearable.
			count, countErr := s.store.Count(cmd.Context())
			if err := s.store.Clear(cmd.Context()); err != nil {
				return err
			}
			if countErr != nil {
				fmt.Fprintln(cmd.OutOrStdout(), "Removed cookie file")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d cookies\n", count)
			return nil
		},
	}
}

// keyArgs splits NAME DOMAIN [PATH]; the path defaults to "/".
func keyArgs(args []string) (name, domain, path string) {
	path = "/"
	if len(args) > 2 {
		path = args[2]
	}
	return args[0], args[1], path
}

func writeJSON(cmd *cobra.Command, v any) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
