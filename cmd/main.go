package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"

	"faq-agent/handler"
	"faq-agent/internal/integrations/chatapi"
	"faq-agent/internal/integrations/paramstore"
	"faq-agent/internal/repository"
	"faq-agent/internal/usecase"
)

func main() {
	ctx := context.Background()
	log := slog.Default()

	// ---- Configuration (read only here) ----
	contentTable := mustEnv("CONTENT_TABLE")
	paramPrefix := mustEnv("PARAM_PREFIX")
	chatBaseURL := mustEnv("CHAT_API_BASE_URL")

	// ---- AWS SDK config ----
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		log.Error("failed to load AWS config", "err", err)
		os.Exit(1)
	}

	// ---- Clients ----
	ssmClient, err := paramstore.New(awsssm.NewFromConfig(cfg))
	if err != nil {
		log.Error("failed to create SSM client", "err", err)
		os.Exit(1)
	}
	botCfg, err := paramstore.LoadConfig(ctx, ssmClient, paramPrefix)
	if err != nil {
		log.Error("failed to load bot config", "err", err)
		os.Exit(1)
	}

	store, err := repository.New(awsdynamodb.NewFromConfig(cfg), contentTable)
	if err != nil {
		log.Error("failed to create content store", "err", err)
		os.Exit(1)
	}
	if seeded, err := store.Seed(ctx); err != nil {
		log.Error("failed to seed content store", "err", err)
		os.Exit(1)
	} else if seeded {
		log.Info("seeded default FAQ content")
	}

	chatClient, err := chatapi.NewClient(chatBaseURL, ssmClient, paramPrefix)
	if err != nil {
		log.Error("failed to create chat client", "err", err)
		os.Exit(1)
	}

	// ---- Handler ----
	svc, err := usecase.NewService(store, chatClient, botCfg, log)
	if err != nil {
		log.Error("failed to create FAQ service", "err", err)
		os.Exit(1)
	}

	h, err := handler.NewHandler(svc, botCfg.SigningSecret, log)
	if err != nil {
		log.Error("failed to create handler", "err", err)
		os.Exit(1)
	}

	lambda.Start(h.Handle)
}

func mustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		slog.Error("required environment variable is not set", "key", key)
		os.Exit(1)
	}
	return v
}
