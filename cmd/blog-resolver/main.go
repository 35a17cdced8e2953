// Lambda entry point for the blog resolver.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/jacentio/myblog/blog"
	"github.com/jacentio/myblog/dynamo"
	"github.com/jacentio/myblog/resolver"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	cfg, err := config.LoadDefaultConfig(context.Background())
	if err != nil {
		logger.Error("load aws config", "error", err)
		os.Exit(1)
	}

	svc := blog.NewService(dynamo.New(dynamodb.NewFromConfig(cfg)), blog.DefaultConfig(), logger)

	r, err := resolver.New("blog", svc.Operations(), logger)
	if err != nil {
		logger.Error("build resolver", "error", err)
		os.Exit(1)
	}

	lambda.Start(r.Handle)
}
