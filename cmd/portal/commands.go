package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	errs "github.com/careplanhq/portal-client/internal/errors"
	"github.com/careplanhq/portal-client/internal/utils"
	"github.com/careplanhq/portal-client/plans"
	"github.com/careplanhq/portal-client/profile"
	"github.com/careplanhq/portal-client/session"
)

// View paths the guard evaluates. The CLI has no browser router; these name
// the protected surfaces the same way the web client does.
const (
	routeLogin   = "/login"
	routeProfile = "/profile"
	routePlans   = "/plans"
)

const profileWait = 5 * time.Second

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "portal",
		Short:         "Practice Portal command line client",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			displayAppname(a.cfg.GetAppName())
			return cmd.Help()
		},
	}

	root.AddCommand(
		newLoginCommand(a),
		newLogoutCommand(a),
		newWhoamiCommand(a),
		newProfileCommand(a),
		newPlansCommand(a),
	)
	return root
}

// requireView gates a command on the guard's decision for a view path.
func (a *app) requireView(path string) error {
	decision := a.guard.Evaluate(a.store.Snapshot(), path)
	if decision.Allow {
		return nil
	}
	return fmt.Errorf("you are not signed in, run 'portal login' first")
}

// waitForProfile polls until the in-flight profile fetch resolves either way.
// Views tolerate a nil profile; the CLI just prefers printing a name.
func waitForProfile(store *session.Store, timeout time.Duration) session.Snapshot {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		snap := store.Snapshot()
		if snap.State() != session.StateAuthenticating {
			return snap
		}
		time.Sleep(50 * time.Millisecond)
	}
	return store.Snapshot()
}

func newLoginCommand(a *app) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the portal",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := a.api.LoginWithCredentials(cmd.Context(), email, password)
			if err != nil {
				if errs.Is(err, errs.ErrUnauthorized) {
					return fmt.Errorf("invalid email or password")
				}
				return err
			}

			a.store.Login(cmd.Context(), token)
			snap := waitForProfile(a.store, profileWait)

			switch snap.State() {
			case session.StateAuthenticated:
				fmt.Printf("Signed in as %s (%s)\n", snap.User.Name, roleName(snap.User.RoleID))
			case session.StateAuthenticating:
				fmt.Println("Signed in; profile is still loading.")
			default:
				return fmt.Errorf("sign-in did not stick, the profile fetch failed")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newLogoutCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored token",
		RunE: func(cmd *cobra.Command, args []string) error {
			a.store.Logout()
			fmt.Println("Signed out.")
			return nil
		},
	}
}

func newWhoamiCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireView(routeProfile); err != nil {
				return err
			}

			a.store.FetchUser(cmd.Context())
			snap := a.store.Snapshot()
			if snap.User == nil {
				return fmt.Errorf("session is no longer valid, run 'portal login'")
			}

			fmt.Printf("%s <%s>\n", snap.User.Name, snap.User.Email)
			fmt.Printf("Role: %s\n", roleName(snap.User.RoleID))
			if snap.User.HasOffice() {
				fmt.Printf("Office: %d\n", utils.Value(snap.User.OfficeID))
			}
			if code := utils.Value(snap.User.JoinCode); code != "" {
				fmt.Printf("Join code: %s\n", code)
			}
			return nil
		},
	}
}

func newProfileCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage the signed-in user's profile",
	}
	cmd.AddCommand(newProfileUpdateCommand(a))
	return cmd
}

func newProfileUpdateCommand(a *app) *cobra.Command {
	var req profile.UpdateRequest

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update name, email or password",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireView(routeProfile); err != nil {
				return err
			}

			updated, err := a.api.UpdateProfile(cmd.Context(), req)
			if err != nil {
				if req.ChangesPassword() && errs.Is(err, errs.ErrUnauthorized) {
					// The carve-out: a rejected password change keeps the
					// session alive, the caller just retries.
					return fmt.Errorf("current password was not accepted, you are still signed in")
				}
				return err
			}

			fmt.Printf("Profile updated: %s <%s>\n", updated.Name, updated.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Name, "name", "", "new display name")
	cmd.Flags().StringVar(&req.Email, "email", "", "new email address")
	cmd.Flags().StringVar(&req.Password, "password", "", "new password")
	cmd.Flags().StringVar(&req.CurrentPassword, "current-password", "", "current password, required when changing the password")
	return cmd
}

func newPlansCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plans",
		Short: "Work with therapy plans",
	}
	cmd.AddCommand(
		newPlansListCommand(a),
		newPlansShowCommand(a),
		newPlansCreateCommand(a),
		newPlansCloseCommand(a),
	)
	return cmd
}

func newPlansListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List visible therapy plans",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireView(routePlans); err != nil {
				return err
			}

			all, err := a.plans.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(all) == 0 {
				fmt.Println("No plans.")
				return nil
			}
			for _, p := range all {
				fmt.Printf("%s  %-10s  %s (fee %s)\n", p.ID, p.Status, p.Title, p.SessionFee.StringFixed(2))
			}
			return nil
		},
	}
}

func newPlansShowCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <plan-id>",
		Short: "Show one therapy plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireView(routePlans); err != nil {
				return err
			}

			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid plan id %q", args[0])
			}
			p, err := a.plans.Get(cmd.Context(), id)
			if err != nil {
				return err
			}

			fmt.Printf("%s\n", p.Title)
			fmt.Printf("Status: %s  Fee: %s\n", p.Status, p.SessionFee.StringFixed(2))
			for _, goal := range p.Goals {
				fmt.Printf("- %s\n", goal)
			}
			return nil
		},
	}
}

func newPlansCreateCommand(a *app) *cobra.Command {
	var (
		clientID int64
		title    string
		goals    []string
		fee      string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a therapy plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireView(routePlans); err != nil {
				return err
			}

			sessionFee := decimal.Zero
			if fee != "" {
				var err error
				sessionFee, err = decimal.NewFromString(fee)
				if err != nil {
					return fmt.Errorf("invalid fee %q", fee)
				}
			}

			created, err := a.plans.Create(cmd.Context(), plans.CreateRequest{
				ClientID:   clientID,
				Title:      title,
				Goals:      goals,
				SessionFee: sessionFee,
			})
			if err != nil {
				return err
			}

			fmt.Printf("Created plan %s\n", created.ID)
			return nil
		},
	}

	cmd.Flags().Int64Var(&clientID, "client-id", 0, "client the plan is for")
	cmd.Flags().StringVar(&title, "title", "", "plan title")
	cmd.Flags().StringArrayVar(&goals, "goal", nil, "plan goal, repeatable")
	cmd.Flags().StringVar(&fee, "fee", "", "per-session fee")
	_ = cmd.MarkFlagRequired("client-id")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func newPlansCloseCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "close <plan-id>",
		Short: "Mark a therapy plan completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireView(routePlans); err != nil {
				return err
			}

			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid plan id %q", args[0])
			}
			p, err := a.plans.Close(cmd.Context(), id)
			if err != nil {
				return err
			}

			fmt.Printf("Plan %s is now %s\n", p.ID, p.Status)
			return nil
		},
	}
}

func roleName(r profile.Role) string {
	switch r {
	case profile.RoleAdmin:
		return "admin"
	case profile.RoleCareProvider:
		return "care provider"
	case profile.RoleClient:
		return "client"
	default:
		return fmt.Sprintf("role %d", r)
	}
}
