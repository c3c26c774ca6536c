package grpcapp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"notaFacilBot/invoice-bot/internal/pkg/logger/sl"
	historyservice "notaFacilBot/invoice-bot/internal/service/history"
	historyv1 "notaFacilBot/invoice-bot/pkg/api/history/v1"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

type Config struct {
	Port string `yaml:"port" env:"GRPC_PORT" env-default:":50061"`
}

type HistorySearcher interface {
	Search(ctx context.Context, query string, period string) (historyservice.Result, error)
}

type App struct {
	log        *slog.Logger
	gRPCServer *grpc.Server
	port       string
}

type serverAPI struct {
	log     *slog.Logger
	history HistorySearcher
}

func New(log *slog.Logger, history HistorySearcher, config *Config) *App {
	gRPCServer := grpc.NewServer(
		grpc.KeepaliveParams(keepalive.ServerParameters{
			MaxConnectionIdle: 30 * time.Minute,
			Time:              30 * time.Minute,
			Timeout:           30 * time.Minute,
		}),
		grpc.KeepaliveEnforcementPolicy(keepalive.EnforcementPolicy{
			MinTime:             30 * time.Second,
			PermitWithoutStream: true,
		}),
	)

	historyv1.RegisterHistoryServiceServer(gRPCServer, &serverAPI{
		log:     log,
		history: history,
	})

	return &App{
		log:        log,
		gRPCServer: gRPCServer,
		port:       config.Port,
	}
}

// Filter применяет поиск и период к истории нот.
func (s *serverAPI) Filter(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req := historyv1.FilterRequestFromStruct(in)

	result, err := s.history.Search(ctx, req.Query, req.Period)
	if err != nil {
		if errors.Is(err, historyservice.ErrInvalidPeriod) {
			return nil, status.Error(codes.InvalidArgument, "invalid period")
		}

		s.log.Error("failed to filter history", sl.Err(err))
		return nil, status.Error(codes.Internal, "failed to filter history")
	}

	resp := &historyv1.FilterResponse{
		QueryEmpty: result.QueryEmpty,
		EmptyState: result.EmptyStateMessage(),
	}

	if result.Empty() {
		resp.EmptyStateTitle = historyservice.EmptyStateTitle
	}

	for _, v := range result.Views() {
		resp.Invoices = append(resp.Invoices, historyv1.Invoice{
			Id:             v.Id,
			Description:    v.Description,
			Client:         v.Client,
			Value:          v.Value,
			ValueFormatted: v.ValueFormatted,
			Date:           v.Date,
			DateFormatted:  v.DateFormatted,
			Status:         v.Status,
			StatusLabel:    v.StatusLabel,
		})
	}

	out, err := resp.ToStruct()
	if err != nil {
		s.log.Error("failed to encode response", sl.Err(err))
		return nil, status.Error(codes.Internal, "failed to encode response")
	}

	return out, nil
}

func (a *App) MustRun() {
	if err := a.Run(); err != nil {
		panic(err)
	}
}

func (a *App) Run() error {
	const op = "grpcapp.Run"

	l, err := net.Listen("tcp", a.port)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return a.Serve(l)
}

// Serve обслуживает уже открытый листенер.
func (a *App) Serve(l net.Listener) error {
	const op = "grpcapp.Serve"

	a.log.With(slog.String("op", op)).
		Info("grpc server started", slog.String("addr", l.Addr().String()))

	if err := a.gRPCServer.Serve(l); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (a *App) Stop() {
	const op = "grpcapp.Stop"

	a.log.With(slog.String("op", op)).Info("stopping gRPC server")

	a.gRPCServer.GracefulStop()
}
