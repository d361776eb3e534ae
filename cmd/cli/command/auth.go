package command

import (
	"fmt"

	"github.com/spf13/cobra"

	"reviewhub/cmd/cli/authentication"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authentication commands",
	Long:  `Sign up, exchange the mailed confirmation code for a token, and log out.`,
}

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Request a confirmation code by email",
	RunE: func(cmd *cobra.Command, args []string) error {
		username, _ := cmd.Flags().GetString("username")
		email, _ := cmd.Flags().GetString("email")

		ctx, cancel := commandContext(cmd)
		defer cancel()

		resp, err := newClient().Signup(ctx, username, email)
		if err != nil {
			return fmt.Errorf("signup failed: %w", err)
		}

		success("Confirmation code sent to %s", resp.Email)
		fmt.Printf("Run: reviewhub auth token -u %s -c <code>\n", resp.Username)
		return nil
	},
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Exchange a confirmation code for an access token",
	RunE: func(cmd *cobra.Command, args []string) error {
		username, _ := cmd.Flags().GetString("username")
		code, _ := cmd.Flags().GetString("code")

		ctx, cancel := commandContext(cmd)
		defer cancel()

		tok, err := newClient().Token(ctx, username, code)
		if err != nil {
			return fmt.Errorf("token exchange failed: %w", err)
		}

		if err := authentication.StoreToken(&authentication.StoredCredentials{
			Token:    tok,
			Username: username,
			APIURL:   apiURL,
		}); err != nil {
			return fmt.Errorf("could not store token: %w", err)
		}

		success("Logged in as %s", username)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored access token",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := authentication.DeleteToken(); err != nil {
			return err
		}
		success("Logged out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the profile behind the stored token",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := authenticatedClient()
		if err != nil {
			return err
		}

		ctx, cancel := commandContext(cmd)
		defer cancel()

		me, err := c.Me(ctx)
		if err != nil {
			return err
		}

		heading("%s", me.Username)
		fmt.Printf("Email: %s\n", me.Email)
		fmt.Printf("Role:  %s\n", me.Role)
		if me.Bio != "" {
			fmt.Printf("Bio:   %s\n", me.Bio)
		}
		return nil
	},
}

func init() {
	authCmd.AddCommand(signupCmd, tokenCmd, logoutCmd, whoamiCmd)

	signupCmd.Flags().StringP("username", "u", "", "username for the new account")
	signupCmd.Flags().StringP("email", "e", "", "email the confirmation code is sent to")
	_ = signupCmd.MarkFlagRequired("username")
	_ = signupCmd.MarkFlagRequired("email")

	tokenCmd.Flags().StringP("username", "u", "", "account username")
	tokenCmd.Flags().StringP("code", "c", "", "confirmation code from the email")
	_ = tokenCmd.MarkFlagRequired("username")
	_ = tokenCmd.MarkFlagRequired("code")
}
