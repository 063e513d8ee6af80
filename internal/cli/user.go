package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/sunrise-events/sunrise/internal/entities"
)

func newUserCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}
	cmd.AddCommand(newUserCreateCommand(a), newUserTierCommand(a))
	return cmd
}

type userCreateOptions struct {
	username string
	email    string
	password string
	role     string
}

func newUserCreateCommand(a *app) *cobra.Command {
	var opts userCreateOptions

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user",
		Long:  "Create a user. Without --password the password is read from the terminal.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runUserCreate(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.username, "username", "", "login name (required)")
	cmd.Flags().StringVar(&opts.email, "email", "", "email address (required)")
	cmd.Flags().StringVar(&opts.password, "password", "", "password, prompted for when omitted")
	cmd.Flags().StringVar(&opts.role, "role", string(entities.UserRoleMember), "admin, member or viewer")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func (a *app) runUserCreate(cmd *cobra.Command, opts userCreateOptions) error {
	password := opts.password
	if password == "" {
		var err error
		password, err = promptPassword(cmd.InOrStdin(), cmd.ErrOrStderr())
		if err != nil {
			return err
		}
	}

	services, closeFn, err := a.openServices()
	if err != nil {
		return err
	}
	defer closeFn()

	user, err := services.Auth.CreateUser(cmd.Context(), opts.username, opts.email, password, entities.UserRole(opts.role))
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created %s user %q with ID %d\n", user.Role, user.Username, user.ID)
	return nil
}

// promptPassword reads a password twice without echo. It refuses to read
// from anything but a terminal.
func promptPassword(in io.Reader, out io.Writer) (string, error) {
	f, ok := in.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return "", errors.New("--password is required when stdin is not a terminal")
	}

	read := func(prompt string) (string, error) {
		fmt.Fprint(out, prompt)
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(out)
		return strings.TrimSpace(string(b)), err
	}

	password, err := read("Password: ")
	if err != nil {
		return "", err
	}
	confirm, err := read("Confirm password: ")
	if err != nil {
		return "", err
	}
	if password != confirm {
		return "", errors.New("passwords do not match")
	}
	return password, nil
}

func newUserTierCommand(a *app) *cobra.Command {
	var (
		userID uint
		tier   string
	)

	cmd := &cobra.Command{
		Use:     "tier",
		Short:   "Move a user onto a subscription tier",
		Example: "  sunrise user tier --user 3 --tier pro",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			services, closeFn, err := a.openServices()
			if err != nil {
				return err
			}
			defer closeFn()

			ctx := cmd.Context()
			if _, err := services.Users.GetUserByID(ctx, userID); err != nil {
				return fmt.Errorf("user %d: %w", userID, err)
			}
			if err := services.Subscriptions.SetTier(ctx, userID, entities.Tier(tier)); err != nil {
				return err
			}
			services.Audit.LogSettings(userID, "tier_change", "Subscription tier set to "+tier)

			limit := services.Subscriptions.MaxContacts(entities.Tier(tier))
			limitText := fmt.Sprint(limit)
			if limit < 0 {
				limitText = "unlimited"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "User %d is now on the %s tier (%s contacts)\n", userID, tier, limitText)
			return nil
		},
	}

	cmd.Flags().UintVar(&userID, "user", 0, "user ID (required)")
	cmd.Flags().StringVar(&tier, "tier", "", "free, basic, pro or enterprise (required)")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("tier")

	return cmd
}
