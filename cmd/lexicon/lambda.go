package main

import (
	"errors"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/spf13/cobra"

	"github.com/jacentio/lexicon/api"
	"github.com/jacentio/lexicon/internal/config"
	"github.com/jacentio/lexicon/stream"
)

func newLambdaCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "lambda",
		Short: "Serve the HTTP API as an API Gateway Lambda handler",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := a.openService(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			h := api.New(svc, a.logger)
			lambda.Start(h.Handle)
			return nil
		},
	}
}

func newStreamCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stream",
		Short: "Serve the entries-table stream handler that releases orphaned constraints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.Backend != config.BackendDynamoDB {
				return errors.New("stream requires the dynamodb backend")
			}
			s, err := a.openDynamoStore(cmd.Context())
			if err != nil {
				return err
			}

			h := stream.NewHandler(s, a.logger)
			lambda.Start(h.HandleReconcile)
			return nil
		},
	}
}
