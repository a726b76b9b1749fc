package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and sync progress with the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := buildEnv(cmd)
		if err != nil {
			return err
		}
		defer env.close()

		email, password, err := promptCredentials(false)
		if err != nil {
			return err
		}

		token, err := env.client.Login(cmd.Context(), email, password)
		if err != nil {
			return fmt.Errorf("login: %w", err)
		}
		env.auth.SetSession(token, email)
		env.load(cmd.Context())

		fmt.Println("Logged in as", email)
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := buildEnv(cmd)
		if err != nil {
			return err
		}
		defer env.close()

		name, err := promptLine("Name: ")
		if err != nil {
			return err
		}
		email, password, err := promptCredentials(true)
		if err != nil {
			return err
		}

		if err := env.client.Register(cmd.Context(), name, email, password); err != nil {
			return fmt.Errorf("register: %w", err)
		}
		token, err := env.client.Login(cmd.Context(), email, password)
		if err != nil {
			return fmt.Errorf("login after register: %w", err)
		}
		env.auth.SetSession(token, email)

		fmt.Println("Account created. Logged in as", email)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the saved session",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := buildEnv(cmd)
		if err != nil {
			return err
		}
		defer env.close()

		env.auth.Clear()
		fmt.Println("Logged out.")
		return nil
	},
}

func promptLine(prompt string) (string, error) {
	fmt.Print(prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// promptCredentials reads an email and a hidden password from the
// terminal. confirm asks for the password twice.
func promptCredentials(confirm bool) (email, password string, err error) {
	email, err = promptLine("Email: ")
	if err != nil {
		return "", "", err
	}

	fmt.Print("Password: ")
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", "", err
	}
	password = string(raw)

	if confirm {
		fmt.Print("Repeat password: ")
		again, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return "", "", err
		}
		if string(again) != password {
			return "", "", fmt.Errorf("passwords do not match")
		}
	}
	return email, password, nil
}
