package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/WessleyAI/wessley-fitment/engine/domain"
	"github.com/WessleyAI/wessley-fitment/engine/fitment"
	"github.com/WessleyAI/wessley-fitment/pkg/bootstrap"
	"github.com/WessleyAI/wessley-fitment/pkg/config"
	"github.com/WessleyAI/wessley-fitment/pkg/natsutil"
)

// client is one way of reaching a fitment engine.
type client interface {
	Battery(ctx context.Context, query string) (domain.FitmentResponse, error)
	Vehicles(ctx context.Context, batteryModel string) (domain.FitmentResponse, error)
	Stats(ctx context.Context) (domain.CatalogStats, error)
	Close() error
}

func defaultConnect(ctx context.Context, c *cli) (client, error) {
	if c.natsURL != "" {
		nc, err := nats.Connect(c.natsURL, nats.Name("fitmentctl"))
		if err != nil {
			return nil, fmt.Errorf("nats connect: %w", err)
		}
		return &natsClient{nc: nc}, nil
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	// engine logs stay quiet unless LOG_LEVEL=debug
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if cfg.LogLevel <= slog.LevelDebug {
		logger = cfg.NewLogger()
	}
	app, err := bootstrap.Build(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return &localClient{engine: app.Engine, closer: app.Close}, nil
}

// engine is the slice of *fitment.Engine localClient needs.
type engine interface {
	FindBatteryForVehicle(ctx context.Context, query string) domain.RankedMatches
	FindVehiclesForBattery(ctx context.Context, batteryModel string) domain.RankedMatches
	Stats(ctx context.Context) (domain.CatalogStats, error)
}

// localClient resolves in-process. Input is validated the same way the API
// validates it.
type localClient struct {
	engine engine
	closer func() error
}

func (l *localClient) Battery(ctx context.Context, query string) (domain.FitmentResponse, error) {
	req := domain.BatteryRequest{Query: query}
	if err := req.Validate(); err != nil {
		return domain.FitmentResponse{}, err
	}
	res := l.engine.FindBatteryForVehicle(ctx, query)
	return domain.FitmentResponse{Result: res, Text: fitment.FormatBatteries(res)}, nil
}

func (l *localClient) Vehicles(ctx context.Context, model string) (domain.FitmentResponse, error) {
	req := domain.VehiclesRequest{BatteryModel: model}
	if err := req.Validate(); err != nil {
		return domain.FitmentResponse{}, err
	}
	res := l.engine.FindVehiclesForBattery(ctx, model)
	return domain.FitmentResponse{Result: res, Text: fitment.FormatVehicles(res)}, nil
}

func (l *localClient) Stats(ctx context.Context) (domain.CatalogStats, error) {
	return l.engine.Stats(ctx)
}

func (l *localClient) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer()
}

// natsClient talks to the API's NATS responders.
type natsClient struct {
	nc *nats.Conn
}

func (n *natsClient) Battery(ctx context.Context, query string) (domain.FitmentResponse, error) {
	return natsutil.Request[domain.BatteryRequest, domain.FitmentResponse](ctx, n.nc, domain.SubjectBatteryForVehicle, domain.BatteryRequest{Query: query})
}

func (n *natsClient) Vehicles(ctx context.Context, model string) (domain.FitmentResponse, error) {
	return natsutil.Request[domain.VehiclesRequest, domain.FitmentResponse](ctx, n.nc, domain.SubjectVehiclesForBattery, domain.VehiclesRequest{BatteryModel: model})
}

func (n *natsClient) Stats(ctx context.Context) (domain.CatalogStats, error) {
	return natsutil.Request[struct{}, domain.CatalogStats](ctx, n.nc, domain.SubjectStats, struct{}{})
}

func (n *natsClient) Close() error {
	n.nc.Close()
	return nil
}
