package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/kgview/pkg/errors"
	"github.com/matzehuels/kgview/pkg/menu"
	"github.com/matzehuels/kgview/pkg/store"
)

// consoleMenu is the knowledge-base console navigation. `auth status`
// resolves the landing page for the saved permissions against it.
var consoleMenu = []menu.Item{
	{Index: "knowledge", Path: "/knowledge", Perm: "knowledge.view", Children: []menu.Item{
		{Index: "knowledge-graph", Path: "/knowledge/graph", Perm: "knowledge.graph"},
		{Index: "knowledge-qa", Path: "/knowledge/qa", Perm: "knowledge.qa"},
	}},
	{Index: "model", Path: "/model", Perm: "model.view"},
	{Index: "settings", Perm: "settings", Children: []menu.Item{
		{Index: "settings-users", Path: "/settings/users", Perm: "settings.users"},
		{Index: "settings-org", Path: "/settings/org", Perm: "settings.org"},
	}},
}

// openState loads the persisted client state from the state directory.
func (c *CLI) openState(ctx context.Context) (*store.Store, error) {
	dir, err := store.DefaultStateDir()
	if err != nil {
		return nil, err
	}
	kv, err := store.NewFileKV(dir)
	if err != nil {
		return nil, err
	}
	return store.NewDefault(ctx, kv, store.WithLogger(c.Logger))
}

// authCommand creates the auth command with subcommands.
func (c *CLI) authCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the backend login",
		Long: `Save the backend access token and permissions used by --kb commands.

State is stored in ~/.config/kgview/state/. A token set in the config file
or KGVIEW_API_TOKEN takes precedence.`,
	}

	cmd.AddCommand(c.authLoginCommand())
	cmd.AddCommand(c.authLogoutCommand())
	cmd.AddCommand(c.authStatusCommand())

	return cmd
}

func (c *CLI) authLoginCommand() *cobra.Command {
	var (
		token    string
		perms    []string
		permType string
	)
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Save an access token",
		Long: `Save an access token for the knowledge-base backend.

Without --token the token is read from stdin, so it stays out of shell history:
  pbpaste | kgview auth login`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if token == "" {
				line, err := bufio.NewReader(os.Stdin).ReadString('\n')
				if err != nil && line == "" {
					return errors.New(errors.ErrCodeInvalidInput, "no token given")
				}
				token = strings.TrimSpace(line)
			}
			if token == "" {
				return errors.New(errors.ErrCodeInvalidInput, "no token given")
			}

			st, err := c.openState(ctx)
			if err != nil {
				return fmt.Errorf("open state: %w", err)
			}
			if err := st.Commit(ctx, store.SetToken, token); err != nil {
				return err
			}
			if len(perms) > 0 {
				if err := st.Commit(ctx, store.SetPermissions, perms); err != nil {
					return err
				}
				if err := st.Commit(ctx, store.SetPermissionType, permType); err != nil {
					return err
				}
			}
			printSuccess("Logged in")
			if len(perms) > 0 {
				printDetail("%d permissions (%s)", len(perms), permType)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "access token (default: read from stdin)")
	cmd.Flags().StringSliceVar(&perms, "perm", nil, "granted permission, repeatable")
	cmd.Flags().StringVar(&permType, "perm-type", "personal", "permission scope saved with the permissions")
	return cmd
}

func (c *CLI) authLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the saved token and permissions",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := c.openState(ctx)
			if err != nil {
				return fmt.Errorf("open state: %w", err)
			}
			if err := st.Commit(ctx, store.ClearUser, nil); err != nil {
				return err
			}
			if err := st.Commit(ctx, store.ClearPermissionType, nil); err != nil {
				return err
			}
			printSuccess("Logged out")
			return nil
		},
	}
}

func (c *CLI) authStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the saved login",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := c.openState(ctx)
			if err != nil {
				return fmt.Errorf("open state: %w", err)
			}
			tok := store.Token(st)
			if tok == "" && c.Config.API.Token == "" {
				printInfo("Not logged in")
				printNextStep("Log in", appName+" auth login --token <token>")
				return nil
			}
			if c.Config.API.Token != "" {
				printKeyValue("Token", maskToken(c.Config.API.Token)+StyleDim.Render(" (config)"))
			} else {
				printKeyValue("Token", maskToken(tok))
			}

			perms := store.Permissions(st)
			printKeyValue("Permissions", fmt.Sprint(len(perms)))
			if t, _ := st.Get(store.ModuleApp, "permissionType"); t != nil && t != "" {
				printKeyValue("Scope", fmt.Sprint(t))
			}
			printKeyValue("Home", menu.FirstPermittedPath(consoleMenu, perms))
			return nil
		},
	}
}

// maskToken keeps the first and last four characters.
func maskToken(tok string) string {
	if len(tok) <= 8 {
		return strings.Repeat("*", len(tok))
	}
	return tok[:4] + strings.Repeat("*", len(tok)-8) + tok[len(tok)-4:]
}
