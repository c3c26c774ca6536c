package history

import (
	"context"
	"fmt"
	"time"

	historyv1 "notaFacilBot/invoice-bot/pkg/api/history/v1"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

type Config struct {
	Address string        `yaml:"address" env:"HISTORY_GRPC_ADDRESS" env-default:"localhost:50061"`
	Timeout time.Duration `yaml:"timeout" env-default:"10s"`
}

type Client struct {
	client  historyv1.HistoryServiceClient
	conn    *grpc.ClientConn
	timeout time.Duration
}

func New(cfg *Config, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)

	conn, err := grpc.NewClient(cfg.Address, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to history service: %w", err)
	}

	return &Client{
		client:  historyv1.NewHistoryServiceClient(conn),
		conn:    conn,
		timeout: cfg.Timeout,
	}, nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) Filter(ctx context.Context, query string, period string) (*historyv1.FilterResponse, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := (&historyv1.FilterRequest{Query: query, Period: period}).ToStruct()
	if err != nil {
		return nil, fmt.Errorf("failed to encode filter request: %w", err)
	}

	resp, err := c.client.Filter(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to filter history: %w", err)
	}

	return historyv1.FilterResponseFromStruct(resp), nil
}
