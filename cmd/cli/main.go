package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/iho/tokengate/internal/domain"
	"github.com/iho/tokengate/internal/infrastructure/auth"
	"github.com/iho/tokengate/internal/infrastructure/postgres"
)

var (
	baseURL string
	timeout time.Duration
	token   string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "tokengate-cli",
		Short: "TokenGate CLI tool",
		Long:  `A command line interface for interacting with the TokenGate API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the TokenGate API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")
	rootCmd.PersistentFlags().StringVar(&token, "token", os.Getenv("TOKENGATE_TOKEN"), "Bearer token")

	balanceCmd := &cobra.Command{
		Use:   "balance <account-id>",
		Short: "Show an account balance",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			getJSON("/api/v1/accounts/" + args[0] + "/balance")
		},
	}

	entriesCmd := &cobra.Command{
		Use:   "entries <account-id>",
		Short: "List ledger entries for an account",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			getJSON("/api/v1/accounts/" + args[0] + "/entries")
		},
	}

	var webhookSecret string
	topupCmd := &cobra.Command{
		Use:   "topup <account-id> <amount>",
		Short: "Credit an account via the payment webhook",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			amount, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				fmt.Printf("Invalid amount %q: %v\n", args[1], err)
				os.Exit(1)
			}
			topUp(args[0], amount, webhookSecret)
		},
	}
	topupCmd.Flags().StringVar(&webhookSecret, "secret", os.Getenv("WEBHOOK_SECRET"), "Webhook shared secret")

	var mintRole string
	var mintTTL time.Duration
	mintCmd := &cobra.Command{
		Use:   "mint-token <account-id> <email>",
		Short: "Mint a development bearer token",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			mintToken(args[0], args[1], mintRole, mintTTL)
		},
	}
	mintCmd.Flags().StringVar(&mintRole, "role", "user", "Role claim (user or admin)")
	mintCmd.Flags().DurationVar(&mintTTL, "ttl", 24*time.Hour, "Token lifetime")

	migrateCmd := &cobra.Command{
		Use:   "migrate [up|down]",
		Short: "Run database migrations",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			runMigrations(args[0])
		},
	}

	rootCmd.AddCommand(balanceCmd, entriesCmd, topupCmd, mintCmd, migrateCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func getJSON(path string) {
	client := &http.Client{Timeout: timeout}

	req, err := http.NewRequest(http.MethodGet, baseURL+path, nil)
	if err != nil {
		fmt.Printf("Error building request: %v\n", err)
		os.Exit(1)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		fmt.Printf("Request failed (Status: %d)\nResponse: %s\n", resp.StatusCode, string(body))
		os.Exit(1)
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, body, "", "  "); err != nil {
		fmt.Println(string(body))
		return
	}
	fmt.Println(pretty.String())
}

func topUp(accountID string, amount int64, secret string) {
	client := &http.Client{Timeout: timeout}

	payload, _ := json.Marshal(map[string]any{
		"identity": accountID,
		"amount":   amount,
	})

	req, err := http.NewRequest(http.MethodPost, baseURL+"/webhooks/payment", bytes.NewReader(payload))
	if err != nil {
		fmt.Printf("Error building request: %v\n", err)
		os.Exit(1)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Webhook-Secret", secret)

	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		fmt.Printf("Top-up failed (Status: %d)\nResponse: %s\n", resp.StatusCode, string(body))
		os.Exit(1)
	}

	fmt.Printf("Top-up applied\n%s\n", string(body))
}

func mintToken(accountID, email, role string, ttl time.Duration) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		fmt.Println("JWT_SECRET must be set")
		os.Exit(1)
	}

	caller := domain.Caller{ID: accountID, Email: email, Role: domain.Role(role)}
	if !caller.Role.IsValid() {
		fmt.Printf("Invalid role %q\n", role)
		os.Exit(1)
	}

	signed, err := auth.NewJWTVerifier(secret).Sign(caller, ttl)
	if err != nil {
		fmt.Printf("Failed to sign token: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(signed)
}

func runMigrations(direction string) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		fmt.Println("DATABASE_URL must be set")
		os.Exit(1)
	}

	migrationsPath := os.Getenv("MIGRATIONS_PATH")
	if migrationsPath == "" {
		migrationsPath = "internal/infrastructure/postgres/migrations"
	}

	var err error
	switch direction {
	case "up":
		err = postgres.RunMigrations(dbURL, migrationsPath)
	case "down":
		err = postgres.RunMigrationsDown(dbURL, migrationsPath)
	default:
		fmt.Printf("Unknown direction %q, expected up or down\n", direction)
		os.Exit(1)
	}
	if err != nil {
		fmt.Printf("Migration failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Migrations applied")
}
