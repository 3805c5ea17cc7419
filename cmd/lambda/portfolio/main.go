package main

import (
	"context"
	"encoding/json"

	"trader-portfolio-api/internal/handlers"
	"trader-portfolio-api/pkg/lambda"

	"github.com/aws/aws-lambda-go/events"
	awslambda "github.com/aws/aws-lambda-go/lambda"
)

var invoker *lambda.Invoker

// The container is built once per cold start and reused by warm invocations
func init() {
	container, err := lambda.GetConnectionManager().GetContainer(context.Background())
	if err != nil {
		panic("Failed to initialize container: " + err.Error())
	}

	cfg := container.Config
	portfolioHandler := handlers.NewPortfolioHandler(
		container.PortfolioService,
		container.AuthService,
		cfg.Server.AllowedOrigin,
		container.Logger,
	)

	invoker = lambda.NewInvoker(
		portfolioHandler.HandlePortfolio,
		cfg.Invocation.DeadlineMargin,
		portfolioHandler.Headers(),
		container.Logger,
	)
}

func handler(ctx context.Context, event json.RawMessage) (events.APIGatewayProxyResponse, error) {
	resp, err := invoker.Invoke(ctx, event)
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}
	return resp.ToProxyResponse(), nil
}

func main() {
	awslambda.Start(handler)
}
