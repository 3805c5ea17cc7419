package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"trader-portfolio-api/internal/config"
	"trader-portfolio-api/internal/handlers"
	"trader-portfolio-api/internal/middleware"
	"trader-portfolio-api/pkg/lambda"
	"trader-portfolio-api/pkg/server"

	"github.com/aws/aws-lambda-go/events"
	"github.com/spf13/cobra"
)

type CommandOptions func(*cobra.Command) error

func WithOutput(w io.Writer) CommandOptions {
	return func(cmd *cobra.Command) error {
		cmd.SetOut(w)
		cmd.SetErr(w)
		return nil
	}
}

// Main runs the local invocation tool with args
func Main(args []string, opts ...CommandOptions) error {
	rootCmd := &cobra.Command{
		Use:   "invoke",
		Short: "Run the trader portfolio handler locally against the configured warehouse.",
	}
	rootCmd.AddCommand(
		RunCommand(),
		EventCommand(),
		TokenCommand(),
	)
	for _, opt := range opts {
		if err := opt(rootCmd); err != nil {
			return err
		}
	}
	if len(args) == 0 {
		rootCmd.Print(rootCmd.UsageString())
		return fmt.Errorf("no command provided")
	}
	rootCmd.SetArgs(args)
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	return rootCmd.Execute()
}

func addRequestFlags(cmd *cobra.Command) {
	cmd.Flags().String("category", "", "Trader category to fetch.")
	cmd.Flags().StringSlice("addresses", nil, "Trader wallet addresses, comma separated.")
	cmd.Flags().Bool("include-prices", false, "Include 24h price data.")
	cmd.Flags().String("method", "POST", "HTTP method of the generated event.")
	cmd.Flags().String("token", "", "Bearer token sent in the Authorization header.")
}

// SampleEvent builds an API Gateway REST event carrying a portfolio request
func SampleEvent(method, category string, addresses []string, includePrices bool, token string) ([]byte, error) {
	payload := map[string]any{"category": category}
	if len(addresses) > 0 {
		payload["addresses"] = addresses
	}
	if includePrices {
		payload["include_prices"] = true
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	headers := map[string]string{"Content-Type": "application/json"}
	if token != "" {
		headers["Authorization"] = "Bearer " + token
	}

	return json.MarshalIndent(events.APIGatewayProxyRequest{
		HTTPMethod: method,
		Path:       "/fetch-trader-port",
		Headers:    headers,
		Body:       string(body),
		RequestContext: events.APIGatewayProxyRequestContext{
			RequestID: fmt.Sprintf("local-%d", time.Now().UnixNano()),
		},
	}, "", "  ")
}

func eventFromFlags(cmd *cobra.Command) ([]byte, error) {
	method, _ := cmd.Flags().GetString("method")
	category, _ := cmd.Flags().GetString("category")
	addresses, _ := cmd.Flags().GetStringSlice("addresses")
	includePrices, _ := cmd.Flags().GetBool("include-prices")
	token, _ := cmd.Flags().GetString("token")
	return SampleEvent(method, category, addresses, includePrices, token)
}

func EventCommand() *cobra.Command {
	eventCmd := &cobra.Command{
		Use:          "event",
		Short:        "Print an API Gateway event for a portfolio request.",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		Example:      `invoke event --category whales --include-prices > event.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			event, err := eventFromFlags(cmd)
			if err != nil {
				return err
			}
			cmd.Println(string(event))
			return nil
		},
	}
	addRequestFlags(eventCmd)
	return eventCmd
}

func RunCommand() *cobra.Command {
	runCmd := &cobra.Command{
		Use:          "run [eventFile]",
		Short:        "Invoke the handler with an event file, or with an event built from flags.",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		Example:      `invoke run event.json
invoke run --category whales --timeout 30s`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var event []byte
			var err error
			if len(args) == 1 {
				event, err = os.ReadFile(args[0])
			} else {
				event, err = eventFromFlags(cmd)
			}
			if err != nil {
				return err
			}

			timeout, _ := cmd.Flags().GetDuration("timeout")
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			resp, err := invokeLocally(ctx, event)
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(resp.ToProxyResponse(), "", "  ")
			if err != nil {
				return err
			}
			cmd.Println(string(out))
			return nil
		},
	}
	addRequestFlags(runCmd)
	runCmd.Flags().Duration("timeout", 30*time.Second, "Invocation deadline, as the Lambda runtime would set it.")
	return runCmd
}

func invokeLocally(ctx context.Context, event []byte) (*lambda.Response, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	container, err := server.NewContainer(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize container: %w", err)
	}
	defer container.Close()

	h := handlers.NewPortfolioHandler(container.PortfolioService, container.AuthService, cfg.Server.AllowedOrigin, container.Logger)
	invoker := lambda.NewInvoker(h.HandlePortfolio, cfg.Invocation.DeadlineMargin, h.Headers(), container.Logger)
	return invoker.Invoke(ctx, event)
}

func TokenCommand() *cobra.Command {
	tokenCmd := &cobra.Command{
		Use:          "token subject",
		Short:        "Issue a bearer token signed with AUTH_JWT_SECRET.",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		Example:      `invoke token dashboard --scope portfolio:read`,
		RunE: func(cmd *cobra.Command, args []string) error {
			secret, _ := cmd.Flags().GetString("secret")
			if secret == "" {
				cfg, err := config.Load()
				if err != nil {
					return err
				}
				secret = cfg.Server.JWTSecret
			}
			ttl, _ := cmd.Flags().GetDuration("ttl")
			scope, _ := cmd.Flags().GetString("scope")

			auth := middleware.NewAuthService(&middleware.AuthConfig{JWTSecret: secret, TokenDuration: ttl})
			if !auth.Enabled() {
				return fmt.Errorf("AUTH_JWT_SECRET is not set")
			}

			token, err := auth.GenerateToken(args[0], scope)
			if err != nil {
				return err
			}
			cmd.Println(token)
			return nil
		},
	}
	tokenCmd.Flags().String("secret", "", "Signing secret, defaults to AUTH_JWT_SECRET.")
	tokenCmd.Flags().String("scope", "portfolio:read", "Scope claim of the token.")
	tokenCmd.Flags().Duration("ttl", time.Hour, "Token lifetime.")
	return tokenCmd
}
