package main

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/jacentio/lexicon/internal/config"
	"github.com/jacentio/lexicon/service"
	"github.com/jacentio/lexicon/store"
	"github.com/jacentio/lexicon/store/memstore"
	"github.com/jacentio/lexicon/store/sqlstore"
)

// openRepository builds the configured backend. The returned close function
// releases its resources.
func (a *app) openRepository(ctx context.Context) (service.Repository, func() error, error) {
	noop := func() error { return nil }

	switch a.cfg.Backend {
	case config.BackendMemory:
		return memstore.New(), noop, nil

	case config.BackendSQLite:
		db, err := sqlstore.Open(a.cfg.SQLite.Path)
		if err != nil {
			return nil, nil, err
		}
		s, err := sqlstore.New(ctx, db, a.logger)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		a.logger.Debug("sqlite backend ready", "path", a.cfg.SQLite.Path, "contains_mode", s.ContainsMode().String())
		return s, db.Close, nil

	case config.BackendDynamoDB:
		s, err := a.openDynamoStore(ctx)
		if err != nil {
			return nil, nil, err
		}
		return s, noop, nil
	}
	return nil, nil, fmt.Errorf("unknown backend %q", a.cfg.Backend)
}

func (a *app) openDynamoStore(ctx context.Context) (*store.Store, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if a.cfg.DynamoDB.Region != "" {
		opts = append(opts, awsconfig.WithRegion(a.cfg.DynamoDB.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if a.cfg.DynamoDB.Endpoint != "" {
			o.BaseEndpoint = aws.String(a.cfg.DynamoDB.Endpoint)
		}
	})
	return store.New(client, a.cfg.Store()), nil
}

func (a *app) openService(ctx context.Context) (*service.Service, func() error, error) {
	repo, closeFn, err := a.openRepository(ctx)
	if err != nil {
		return nil, nil, err
	}
	return service.New(repo, a.logger), closeFn, nil
}
