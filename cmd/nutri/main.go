package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"nutri-go/internal/app"
	"nutri-go/internal/config"
	"nutri-go/internal/model"
	"nutri-go/internal/nutri"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads .env and the config file from the default locations.
func loadConfig() (*config.Config, string, error) {
	if err := app.LoadDotEnv(); err != nil {
		return nil, "", err
	}

	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, "", fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, "", fmt.Errorf("reading config: %w", err)
	}
	return cfg, defaults["config_path"], nil
}

// newApp reads the config, creates an App and restores the stored session.
// The caller must defer app.Close().
// operation identifies the CLI command being run (e.g. "Analyze", "Sync").
// returnURL is the payment return URL, or empty.
func newApp(ctx context.Context, operation, returnURL string) (*app.App, error) {
	cfg, _, err := loadConfig()
	if err != nil {
		return nil, err
	}

	a, err := app.NewApp(ctx, cfg, operation)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}
	a.OnNotify(printNotification)

	if _, err := a.Bootstrap(ctx, returnURL); err != nil {
		a.Close()
		return nil, fmt.Errorf("restoring session: %w", err)
	}
	return a, nil
}

func printNotification(n model.Notification) {
	fmt.Printf("[%s] %s\n", n.Kind, n.Message)
	if n.Details == "" {
		return
	}
	for _, line := range strings.Split(n.Details, "\n") {
		fmt.Printf("    %s\n", line)
	}
}

var rootCmd = &cobra.Command{
	Use:          "nutri",
	Short:        "Meal analysis with daily quota and plan sync",
	SilenceUsage: true,
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults["base_dir"])
		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
		fmt.Println("Set the status, sync and checkout endpoints before logging in.")
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, path, err := loadConfig()
		if err != nil {
			return err
		}

		fmt.Printf("Configuration from %s:\n\n", path)
		fmt.Printf("Base Dir:    %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:     %s\n", cfg.LogDir)
		fmt.Printf("Store:       %s\n", cfg.Store.Type)
		fmt.Printf("Encryption:  %s\n", cfg.Encryption.Type)
		fmt.Printf("Status URL:  %s\n", cfg.Endpoints.Status)
		fmt.Printf("Sync URL:    %s\n", cfg.Endpoints.Sync)
		fmt.Printf("Checkout:    %s\n", cfg.Endpoints.Checkout)
		fmt.Printf("Fallback:    %s\n", cfg.Delivery.Fallback)
		fmt.Printf("Model:       %s\n", cfg.Inference.Model)
		fmt.Printf("Max History: %d\n", cfg.History.MaxEntries)
		return nil
	},
}

var configKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage encryption keys",
}

var configKeysInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate the key pair used to encrypt stored records",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}

		passphrase, err := app.ReadNewPassphrase()
		if err != nil {
			return err
		}
		if err := app.InitKeys(cfg.Encryption, passphrase); err != nil {
			return err
		}

		fmt.Printf("Keys written to %s and %s\n", cfg.Encryption.PublicKeyPath, cfg.Encryption.PrivateKeyPath)
		return nil
	},
}

// session commands
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in on this device",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		name, _ := cmd.Flags().GetString("name")

		ctx := cmd.Context()
		a, err := newApp(ctx, "Login", "")
		if err != nil {
			return err
		}
		defer a.Close()

		user, err := a.Login(ctx, email, name)
		if err != nil {
			return fmt.Errorf("login failed: %w", err)
		}

		fmt.Printf("Signed in as %s <%s> (%s)\n", user.Name, user.Email, user.ID)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and clear local history",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), "Logout", "")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Logout(); err != nil {
			return fmt.Errorf("logout failed: %w", err)
		}
		fmt.Println("Signed out.")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show plan and remaining analyses",
	RunE: func(cmd *cobra.Command, args []string) error {
		payment, _ := cmd.Flags().GetString("payment")
		returnURL, _ := cmd.Flags().GetString("return-url")

		ctx := cmd.Context()
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		a, err := app.NewApp(ctx, cfg, "Status")
		if err != nil {
			return fmt.Errorf("initializing app: %w", err)
		}
		defer a.Close()
		a.OnNotify(printNotification)

		if returnURL == "" && payment != "" {
			returnURL = a.PaymentReturnURL(payment)
		}
		if _, err := a.Bootstrap(ctx, returnURL); err != nil {
			return fmt.Errorf("restoring session: %w", err)
		}

		summary, err := a.Status()
		if errors.Is(err, nutri.ErrNotAuthenticated) {
			fmt.Println("Not signed in. Run 'nutri login'.")
			return nil
		}
		if err != nil {
			return err
		}

		fmt.Printf("User:  %s <%s>\n", summary.User.Name, summary.User.Email)
		fmt.Printf("ID:    %s\n", summary.User.ID)
		fmt.Printf("Plan:  %s\n", summary.User.Plan)
		if summary.Unlimited {
			fmt.Println("Today: unlimited analyses")
		} else {
			fmt.Printf("Today: %d of %d free analyses left\n", summary.Remaining, nutri.MaxFreeUses)
		}
		return nil
	},
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze [DESCRIPTION]",
	Short: "Estimate calories and macros of a meal",
	RunE: func(cmd *cobra.Command, args []string) error {
		text, _ := cmd.Flags().GetString("text")
		image, _ := cmd.Flags().GetString("image")
		if text == "" && len(args) > 0 {
			text = strings.Join(args, " ")
		}

		ctx := cmd.Context()
		a, err := newApp(ctx, "Analyze", "")
		if err != nil {
			return err
		}
		defer a.Close()

		entry, err := a.Analyze(ctx, text, image)
		if errors.Is(err, nutri.ErrQuotaExceeded) {
			fmt.Println("Daily free analyses used up. Run 'nutri upgrade' for unlimited analyses.")
			return nil
		}
		if err != nil {
			return err
		}

		printEntry(*entry)
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View past analyses",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp(cmd.Context(), "History", "")
		if err != nil {
			return err
		}
		defer a.Close()

		entries := a.History(limit)
		if len(entries) == 0 {
			fmt.Println("No analyses recorded.")
			return nil
		}
		for _, e := range entries {
			fmt.Printf("%s  %-30s  %6.0f kcal  P %.0fg  C %.0fg  F %.0fg\n",
				e.Timestamp.Local().Format("2006-01-02 15:04"),
				e.Data.FoodName,
				e.Data.Calories,
				e.Data.Protein,
				e.Data.Carbs,
				e.Data.Fat,
			)
		}
		return nil
	},
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Reconcile the plan with the status endpoint",
	RunE: func(cmd *cobra.Command, args []string) error {
		watch, _ := cmd.Flags().GetDuration("watch")

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx, "Sync", "")
		if err != nil {
			return err
		}
		defer a.Close()

		if watch > 0 {
			fmt.Printf("Syncing every %s, press Ctrl-C to stop.\n", watch)
			return a.Watch(ctx, watch)
		}

		plan, err := a.Sync(ctx)
		if err != nil {
			return fmt.Errorf("sync failed: %w", err)
		}
		fmt.Printf("Plan: %s\n", plan)
		return nil
	},
}

var upgradeCmd = &cobra.Command{
	Use:   "upgrade",
	Short: "Start a checkout for the PRO plan",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, "Upgrade", "")
		if err != nil {
			return err
		}
		defer a.Close()

		checkoutURL, err := a.Upgrade(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Complete the payment at:\n  %s\n", checkoutURL)
		fmt.Println("Then run 'nutri status --payment success'.")
		return nil
	},
}

func printEntry(e model.HistoryEntry) {
	fmt.Printf("%s\n", e.Data.FoodName)
	fmt.Printf("  Calories: %.0f kcal\n", e.Data.Calories)
	fmt.Printf("  Protein:  %.1f g\n", e.Data.Protein)
	fmt.Printf("  Carbs:    %.1f g\n", e.Data.Carbs)
	fmt.Printf("  Fat:      %.1f g\n", e.Data.Fat)
	if e.Data.Notes != "" {
		fmt.Printf("  Notes:    %s\n", e.Data.Notes)
	}
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configKeysCmd)
	configKeysCmd.AddCommand(configKeysInitCmd)

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(loginCmd)
	loginCmd.Flags().String("email", "", "Email address (defaults to the configured profile)")
	loginCmd.Flags().String("name", "", "Display name (defaults to the configured profile)")
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().String("payment", "", "Payment status the checkout page returned with (e.g. success)")
	statusCmd.Flags().String("return-url", "", "Full URL the checkout page redirected to")
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringP("text", "t", "", "Meal description")
	analyzeCmd.Flags().StringP("image", "i", "", "Path to a photo of the meal")
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 20, "Maximum number of entries to show (0 for all)")
	rootCmd.AddCommand(syncCmd)
	syncCmd.Flags().Duration("watch", 0, "Keep syncing at this interval until interrupted")
	rootCmd.AddCommand(upgradeCmd)
}
