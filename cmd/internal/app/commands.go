package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"orchard/cmd/catalog"
	"orchard/cmd/internal/auth/client"
	"orchard/cmd/internal/guard"

	"github.com/spf13/cobra"
)

// NewRootCmd builds the orchard CLI command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "orchard",
		Short:         "Orchard Store admin client",
		Long:          "Command-line client for the Orchard Store admin API: sessions, route checks, and catalog utilities.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	root.AddCommand(
		newLoginCmd(),
		newLogoutCmd(),
		newWhoamiCmd(),
		newStatusCmd(),
		newSlugCmd(),
		newSKUCmd(),
		newVariantsCmd(),
	)

	return root
}

// withApp loads config, builds the runtime, and hands it to fn.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *App) error) error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}

	a, err := New(cfg, NewLogger(cfg.LogLevel, cfg.LogFormat))
	if err != nil {
		return err
	}

	return fn(cmd.Context(), a)
}

func newLoginCmd() *cobra.Command {
	var (
		email    string
		password string
		remember bool
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate against the Orchard API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *App) error {
				if err := a.Session().Login(ctx, email, password, remember); err != nil {
					switch {
					case errors.Is(err, client.ErrInvalidCredentials):
						return errors.New("login rejected: email or password is incorrect")
					case errors.Is(err, client.ErrNetworkUnavailable):
						return errors.New("login failed: API unreachable")
					}
					return err
				}

				snap := a.Store().Snapshot()
				if snap.User != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", snap.User.Email)
				}
				if !remember {
					fmt.Fprintln(cmd.OutOrStdout(), "Session is memory-only; it ends with this process.")
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email (required)")
	cmd.Flags().StringVar(&password, "password", "", "account password (required)")
	cmd.Flags().BoolVar(&remember, "remember", true, "persist the session across runs")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session and clear stored credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *App) error {
				// Restore any stored session first so the backend call is
				// authenticated; logout itself never fails.
				_ = a.Session().Initialize(ctx)
				a.Session().Logout(ctx)
				fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
				return nil
			})
		},
	}
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session's user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *App) error {
				if err := a.Session().Initialize(ctx); err != nil {
					if errors.Is(err, client.ErrNetworkUnavailable) {
						return errors.New("cannot verify session: API unreachable")
					}
					return err
				}

				snap := a.Store().Snapshot()
				if !snap.Authenticated || snap.User == nil {
					return errors.New("not logged in")
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "User:        %s\n", snap.User.Email)
				fmt.Fprintf(out, "Name:        %s\n", snap.User.FullName)
				fmt.Fprintf(out, "Roles:       %s\n", strings.Join(snap.User.Roles, ", "))
				fmt.Fprintf(out, "Authorities: %s\n", strings.Join(snap.User.Authorities, ", "))
				fmt.Fprintf(out, "Device:      %s\n", a.DeviceID())
				return nil
			})
		},
	}
}

func newStatusCmd() *cobra.Command {
	var (
		path  string
		roles []string
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Evaluate the navigation guard for a route",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *App) error {
				// The guard never blocks on the network; an unreachable API
				// simply leaves the session anonymous.
				_ = a.Session().Initialize(ctx)

				res := a.Guard().Evaluate(a.Store().Snapshot(), path, roles...)

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Decision: %s\n", res.Decision)
				switch res.Decision {
				case guard.Redirect:
					fmt.Fprintf(out, "Target:   %s\n", res.Target)
					fmt.Fprintf(out, "ReturnTo: %s\n", res.ReturnTo)
				case guard.Deny:
					fmt.Fprintf(out, "Required: %s\n", strings.Join(roles, ", "))
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&path, "path", "/", "route to evaluate")
	cmd.Flags().StringSliceVar(&roles, "role", nil, "role(s) the route requires")

	return cmd
}

func newSlugCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "slug <text>...",
		Short: "Generate a URL slug from product text",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), catalog.Slug(strings.Join(args, " ")))
			return nil
		},
	}
}

func newSKUCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sku <brand> <product> [variant]...",
		Short: "Generate a SKU from brand, product, and variant parts",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), catalog.SKU(args[0], args[1], args[2:]...))
			return nil
		},
	}
}

func newVariantsCmd() *cobra.Command {
	var axes []string

	cmd := &cobra.Command{
		Use:   "variants --axis key=v1,v2 [--axis key=v1,v2]...",
		Short: "Expand variant axes into the full combination list",
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := parseAxes(axes)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, v := range catalog.ExpandVariants(parsed) {
				parts := make([]string, 0, len(v))
				for _, a := range parsed {
					if val, ok := v[a.Key]; ok {
						parts = append(parts, fmt.Sprintf("%s=%s", a.Key, val))
					}
				}
				fmt.Fprintln(out, strings.Join(parts, " "))
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&axes, "axis", nil, "variant axis as key=value,value")
	_ = cmd.MarkFlagRequired("axis")

	return cmd
}

func parseAxes(raw []string) ([]catalog.Axis, error) {
	axes := make([]catalog.Axis, 0, len(raw))
	for _, r := range raw {
		key, vals, ok := strings.Cut(r, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("malformed axis %q: want key=value,value", r)
		}
		axes = append(axes, catalog.Axis{
			Key:    catalog.AttributeKey(key),
			Values: strings.Split(vals, ","),
		})
	}
	return axes, nil
}
