package repository

import (
	"context"
	"fmt"

	"notaFacilBot/invoice-bot/internal/repository/file"
	"notaFacilBot/invoice-bot/internal/repository/memory"
	"notaFacilBot/invoice-bot/internal/repository/postgres"
	"notaFacilBot/invoice-bot/internal/repository/s3minio"
	historyservice "notaFacilBot/invoice-bot/internal/service/history"
)

const (
	SourceFixture  = "fixture"
	SourceFile     = "file"
	SourcePostgres = "postgres"
	SourceS3       = "s3"
)

type Config struct {
	Source   string          `yaml:"source" env:"HISTORY_SOURCE" env-default:"fixture"`
	File     file.Config     `yaml:"file"`
	Postgres postgres.Config `yaml:"postgres"`
	Minio    s3minio.Config  `yaml:"minio"`
}

// New открывает источник истории. closeFn освобождает соединения.
func New(ctx context.Context, cfg Config) (repo historyservice.Repository, closeFn func(), err error) {
	const op = "repository.New"

	noop := func() {}

	switch cfg.Source {
	case SourceFixture, "":
		r, err := memory.New(memory.Fixture())
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", op, err)
		}
		return r, noop, nil

	case SourceFile:
		r, err := file.Load(cfg.File.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", op, err)
		}
		return r, noop, nil

	case SourcePostgres:
		pool, err := postgres.NewConnPool(&cfg.Postgres)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", op, err)
		}
		return postgres.New(pool), pool.Close, nil

	case SourceS3:
		client, err := s3minio.NewConn(&cfg.Minio)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", op, err)
		}
		r, err := s3minio.New(ctx, client, cfg.Minio.Bucket, cfg.Minio.Object)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", op, err)
		}
		return r, noop, nil

	default:
		return nil, nil, fmt.Errorf("%s: unknown history source %q", op, cfg.Source)
	}
}
