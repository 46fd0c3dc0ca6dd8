package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/naveenspark/busline/pkg/client"
	"github.com/naveenspark/busline/pkg/domain"
)

const (
	msgLoginSuccess     = "Login successful"
	msgUserNotFound     = "User not Found"
	msgUnexpectedError  = "An unexpected error occurred"
	msgRegisterSuccess  = "Registration successful. Please log in."
	msgRegisterFailed   = "Unknown error occurred."
	msgConfirmPassword  = "Please confirm your password"
	msgLoggedOut        = "Logged out"
	defaultRegisterRole = domain.RoleUser
)

func newLoginCmd(a *app) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store a session",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if n, err := a.manager.TakeNotice(ctx); err != nil {
				a.logger.Warn("read notice failed", "error", err)
			} else if n != "" {
				fmt.Fprintln(out, n)
			}

			var err error
			if email == "" {
				if email, err = a.readLine(cmd, "Email: "); err != nil {
					return err
				}
			}
			if password == "" {
				if password, err = a.readPassword(cmd, "Password: "); err != nil {
					return err
				}
			}

			req := client.LoginRequest{Email: email, Password: password}
			if err := req.Validate(); err != nil {
				return fmt.Errorf("please fill in: %w", err)
			}

			res, err := a.client.Login(ctx, req)
			if err != nil {
				a.logger.Warn("login failed", "error", err)
				return errors.New(loginFailure(err))
			}
			role := res.User.Role
			if role == "" {
				role = domain.RoleUser
			}
			s, err := a.manager.Start(ctx, res.Token, role)
			if err != nil {
				a.logger.Error("save session failed", "error", err)
				return errors.New(msgUnexpectedError)
			}

			msg := res.Message
			if msg == "" {
				msg = msgLoginSuccess
			}
			fmt.Fprintln(out, msg)
			fmt.Fprintf(out, "Session valid until %s\n", s.ExpiresAt().Local().Format("2006-01-02 15:04"))
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password (prompted when empty)")
	return cmd
}

// loginFailure maps a login error to the message shown to the user.
func loginFailure(err error) string {
	if errors.Is(err, client.ErrUnexpectedResponse) {
		return msgUnexpectedError
	}
	return msgUserNotFound
}

func newRegisterCmd(a *app) *cobra.Command {
	var req client.RegisterRequest

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			prompts := []struct {
				label string
				dst   *string
			}{
				{"First name: ", &req.Name},
				{"Last name: ", &req.LastName},
				{"Email: ", &req.Email},
				{"Phone: ", &req.Phone},
			}
			for _, p := range prompts {
				if *p.dst != "" {
					continue
				}
				v, err := a.readLine(cmd, p.label)
				if err != nil {
					return err
				}
				*p.dst = v
			}
			if req.Role == domain.RoleOperator && req.CompanyName == "" {
				v, err := a.readLine(cmd, "Company name: ")
				if err != nil {
					return err
				}
				req.CompanyName = v
			}
			if req.Role != domain.RoleOperator {
				req.CompanyName = ""
			}

			confirm := req.Password
			if req.Password == "" {
				var err error
				if req.Password, err = a.readPassword(cmd, "Password: "); err != nil {
					return err
				}
				if confirm, err = a.readPassword(cmd, "Confirm password: "); err != nil {
					return err
				}
			}
			switch domain.PasswordMatch(req.Password, confirm) {
			case "":
				return errors.New(msgConfirmPassword)
			case domain.PasswordsMismatch:
				return errors.New(domain.PasswordsMismatch)
			}

			if err := req.Validate(); err != nil {
				return fmt.Errorf("please check: %w", err)
			}

			msg, err := a.client.Register(cmd.Context(), req)
			if err != nil {
				a.logger.Warn("register failed", "error", err)
				return errors.New(client.ErrorMessage(err, msgRegisterFailed))
			}
			if msg == "" {
				msg = msgRegisterSuccess
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&req.Name, "name", "", "First name")
	f.StringVar(&req.LastName, "last-name", "", "Last name")
	f.StringVar(&req.Email, "email", "", "Email")
	f.StringVar(&req.Phone, "phone", "", "10-digit phone number")
	f.StringVar(&req.CompanyName, "company", "", "Company name (operators only)")
	f.StringVar(&req.Role, "role", defaultRegisterRole, "Account role: user or operator")
	f.StringVar(&req.Password, "password", "", "Password (prompted twice when empty)")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if s, err := a.manager.Load(ctx); err == nil && s.Token != "" {
				if err := a.client.WithToken(s.Token).Logout(ctx); err != nil {
					a.logger.Warn("remote logout failed", "error", err)
				}
			}
			if err := a.manager.Clear(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), msgLoggedOut)
			return nil
		},
	}
}
