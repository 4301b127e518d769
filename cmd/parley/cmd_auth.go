package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"parley/internal/models"

	"github.com/spf13/cobra"
)

var password string

var loginCmd = &cobra.Command{
	Use:   "login <username>",
	Short: "Log in and persist the session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pass, err := resolvePassword()
		if err != nil {
			return err
		}
		sess, err := sessions.Login(cmd.Context(), models.Credentials{
			Username: args[0],
			Password: pass,
		})
		if err != nil {
			return describeErr(err)
		}
		fmt.Printf("Logged in as %s\n", sess.User.Username)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out and discard the persisted session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sessions.Logout(cmd.Context())
		fmt.Println("Logged out")
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:   "register <username>",
	Short: "Create an account and log in",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pass, err := resolvePassword()
		if err != nil {
			return err
		}
		sess, err := sessions.CreateAccount(cmd.Context(), models.Credentials{
			Username: args[0],
			Password: pass,
		})
		if err != nil {
			return describeErr(err)
		}
		fmt.Printf("Account created, logged in as %s\n", sess.User.Username)
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sess := sessions.Current()
		if !sess.IsAuthenticated {
			fmt.Println("Not logged in")
			return nil
		}
		role := "member"
		if sess.User.IsAdmin == 1 {
			role = "admin"
		}
		fmt.Printf("%s (#%d, %s)\n", sess.User.Username, sess.User.ID, role)
		return nil
	},
}

func resolvePassword() (string, error) {
	if password != "" {
		return password, nil
	}
	fmt.Fprint(os.Stderr, "Password: ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	pass := strings.TrimRight(line, "\r\n")
	if pass == "" {
		return "", fmt.Errorf("password must not be empty")
	}
	return pass, nil
}

// describeErr rewrites an expired-session error into an actionable message;
// everything else passes through untouched.
func describeErr(err error) error {
	if models.IsAuthRequired(err) {
		return fmt.Errorf("you are not logged in (run `parley login`): %w", err)
	}
	return err
}
