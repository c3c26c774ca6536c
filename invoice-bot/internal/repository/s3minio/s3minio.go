package s3minio

import (
	"context"
	"fmt"

	"notaFacilBot/invoice-bot/internal/repository/file"
	"notaFacilBot/invoice-bot/internal/repository/memory"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type Config struct {
	Host      string `yaml:"host" env:"MINIO_HOST" env-default:"localhost"`
	Port      string `yaml:"port" env:"MINIO_PORT" env-default:"9000"`
	AccessKey string `yaml:"access_key" env:"MINIO_ACCESS_KEY"`
	SecretKey string `yaml:"secret_key" env:"MINIO_SECRET_KEY"`
	UseSSL    bool   `yaml:"use_ssl" env:"MINIO_USE_SSL" env-default:"false"`
	Bucket    string `yaml:"bucket" env:"MINIO_BUCKET" env-default:"notafacil"`
	Object    string `yaml:"object" env:"MINIO_OBJECT" env-default:"history.yaml"`
}

func (c *Config) Endpoint() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

func NewConn(config *Config) (*minio.Client, error) {
	minioClient, err := minio.New(
		config.Endpoint(), &minio.Options{
			Creds: credentials.NewStaticV4(
				config.AccessKey,
				config.SecretKey,
				"",
			),
			Secure: config.UseSSL,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	found, err := minioClient.BucketExists(context.Background(), config.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", config.Bucket, err)
	}
	if !found {
		return nil, fmt.Errorf("bucket %s not found", config.Bucket)
	}

	return minioClient, nil
}

// Repository читает историю из YAML-объекта в бакете один раз при старте.
type Repository struct {
	*memory.Repository
}

func New(ctx context.Context, client *minio.Client, bucket, object string) (*Repository, error) {
	const op = "s3minio.New"

	obj, err := client.GetObject(ctx, bucket, object, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer obj.Close()

	records, err := file.Decode(obj)
	if err != nil {
		return nil, fmt.Errorf("%s: %s/%s: %w", op, bucket, object, err)
	}

	repo, err := memory.New(records)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Repository{Repository: repo}, nil
}
