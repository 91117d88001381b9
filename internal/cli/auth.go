package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"syscall"

	"github.com/existflow/neocount/internal/auth"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage your NeoCount account",
	Long:  `Sign in to the hosted identity provider so events are stored with your account.`,
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in with email and password",
	RunE:  runLogin,
}

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create a new account",
	RunE:  runSignup,
}

var ssoCmd = &cobra.Command{
	Use:   "sso",
	Short: "Log in with Google",
	Long: `Print the Google sign in page, then paste the address the browser was
redirected to once sign in completes.`,
	RunE: runSSO,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out and forget the saved session",
	RunE:  runLogout,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show who is signed in",
	RunE:  runStatus,
}

var (
	authEmail    string
	ssoProvider  string
	ssoRedirect  string
	authPassword string // for scripts; prompts when empty
)

func init() {
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(signupCmd)
	authCmd.AddCommand(ssoCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(statusCmd)

	for _, c := range []*cobra.Command{loginCmd, signupCmd} {
		c.Flags().StringVar(&authEmail, "email", "", "Account email")
		c.Flags().StringVar(&authPassword, "password", "", "Account password (prompted when omitted)")
	}
	ssoCmd.Flags().StringVar(&ssoProvider, "provider", "google", "Identity provider")
	ssoCmd.Flags().StringVar(&ssoRedirect, "redirect", "", "Redirected address (prompted when omitted)")
}

// identityGate opens the runtime and requires an identity provider
func identityGate() (*runtime, *auth.Gate, error) {
	rt, err := openRuntime(cfg)
	if err != nil {
		return nil, nil, err
	}
	if rt.gate == nil {
		rt.Close()
		return nil, nil, errIdentityNotConfigured
	}
	return rt, rt.gate, nil
}

// credentials reads email and password from flags or the terminal
func credentials(cmd *cobra.Command, confirm bool) (string, string, error) {
	reader := bufio.NewReader(cmd.InOrStdin())
	out := cmd.OutOrStdout()

	email := strings.TrimSpace(authEmail)
	if email == "" {
		fmt.Fprint(out, "Email: ")
		line, _ := reader.ReadString('\n')
		email = strings.TrimSpace(line)
	}

	password := authPassword
	if password == "" {
		var err error
		if password, err = readPassword(out, reader, "Password: "); err != nil {
			return "", "", err
		}
		if confirm {
			again, err := readPassword(out, reader, "Confirm Password: ")
			if err != nil {
				return "", "", err
			}
			if again != password {
				return "", "", errors.New("passwords do not match")
			}
		}
	}
	return email, password, nil
}

// readPassword hides input on a terminal and falls back to a plain line
func readPassword(out io.Writer, reader *bufio.Reader, prompt string) (string, error) {
	fmt.Fprint(out, prompt)
	if term.IsTerminal(int(syscall.Stdin)) {
		b, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Fprintln(out)
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(b), nil
	}
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func runLogin(cmd *cobra.Command, args []string) error {
	rt, gate, err := identityGate()
	if err != nil {
		return err
	}
	defer rt.Close()

	email, password, err := credentials(cmd, false)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), "🔄 Logging in...")
	if err := gate.SignIn(context.Background(), email, password); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), "✅ Logged in successfully!")
	return nil
}

func runSignup(cmd *cobra.Command, args []string) error {
	rt, gate, err := identityGate()
	if err != nil {
		return err
	}
	defer rt.Close()

	email, password, err := credentials(cmd, true)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), "🔄 Creating account...")
	message, err := gate.SignUp(context.Background(), email, password)
	if err != nil {
		return err
	}
	if message != "" {
		fmt.Fprintln(cmd.OutOrStdout(), "📬 "+message)
		return nil
	}

	fmt.Fprintln(cmd.OutOrStdout(), "✅ Account created and logged in!")
	return nil
}

func runSSO(cmd *cobra.Command, args []string) error {
	rt, gate, err := identityGate()
	if err != nil {
		return err
	}
	defer rt.Close()

	out := cmd.OutOrStdout()
	redirect := strings.TrimSpace(ssoRedirect)
	if redirect == "" {
		fmt.Fprintln(out, "Open this page to sign in:")
		fmt.Fprintln(out, "  "+gate.AuthorizeURL(ssoProvider, cfg.Identity.RedirectURL))
		fmt.Fprint(out, "\nPaste the address you were redirected to: ")
		line, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		redirect = strings.TrimSpace(line)
	}
	if redirect == "" {
		return errors.New("redirect address required")
	}

	if err := gate.AdoptRedirect(redirect); err != nil {
		return err
	}
	fmt.Fprintln(out, "✅ Logged in successfully!")
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	rt, gate, err := identityGate()
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx := context.Background()
	if gate.Bootstrap(ctx) != auth.SignedIn {
		fmt.Fprintln(cmd.OutOrStdout(), "Not logged in.")
		return nil
	}

	fmt.Fprintln(cmd.OutOrStdout(), "🔄 Logging out...")
	if err := gate.SignOut(ctx); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), "✅ Logged out successfully.")
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Storage: %s\n", cfg.Storage)

	rt, gate, err := identityGate()
	if errors.Is(err, errIdentityNotConfigured) {
		fmt.Fprintln(out, "Identity: not configured")
		return nil
	}
	if err != nil {
		return err
	}
	defer rt.Close()

	if gate.Bootstrap(context.Background()) != auth.SignedIn {
		fmt.Fprintln(out, "Identity: signed out")
		return nil
	}
	s := gate.Session()
	fmt.Fprintf(out, "Identity: signed in as %s (%s)\n", s.Email, s.UserID)
	if !s.ExpiresAt.IsZero() {
		fmt.Fprintf(out, "Session expires: %s\n", s.ExpiresAt.Local().Format("2006-01-02 15:04"))
	}
	return nil
}

