// Lambda entry point for the entry resolver.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/jacentio/myblog/dynamo"
	"github.com/jacentio/myblog/entry"
	"github.com/jacentio/myblog/resolver"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	cfg, err := config.LoadDefaultConfig(context.Background())
	if err != nil {
		logger.Error("load aws config", "error", err)
		os.Exit(1)
	}

	svc := entry.NewService(dynamo.New(dynamodb.NewFromConfig(cfg)), entry.DefaultConfig(), logger)

	r, err := resolver.New("entry", svc.Operations(), logger)
	if err != nil {
		logger.Error("build resolver", "error", err)
		os.Exit(1)
	}

	lambda.Start(r.Handle)
}
