package main

import (
	"context"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/WessleyAI/wessley-fitment/engine/domain"
	"github.com/WessleyAI/wessley-fitment/pkg/natsutil"
)

// natsQueue spreads requests across API replicas.
const natsQueue = "fitment-api"

// serveNATS registers the request/reply responders. On error the
// subscriptions made so far are removed.
func serveNATS(nc *nats.Conn, svc fitmentService, logger *slog.Logger) ([]*nats.Subscription, error) {
	var subs []*nats.Subscription
	add := func(sub *nats.Subscription, err error) error {
		if err != nil {
			for _, s := range subs {
				s.Unsubscribe()
			}
			return err
		}
		subs = append(subs, sub)
		return nil
	}

	if err := add(natsutil.Respond(nc, domain.SubjectBatteryForVehicle, natsQueue, logger,
		func(ctx context.Context, req domain.BatteryRequest) (domain.FitmentResponse, error) {
			return resolveBattery(ctx, svc, req)
		})); err != nil {
		return nil, err
	}
	if err := add(natsutil.Respond(nc, domain.SubjectVehiclesForBattery, natsQueue, logger,
		func(ctx context.Context, req domain.VehiclesRequest) (domain.FitmentResponse, error) {
			return resolveVehicles(ctx, svc, req)
		})); err != nil {
		return nil, err
	}
	if err := add(natsutil.Respond(nc, domain.SubjectStats, natsQueue, logger,
		func(ctx context.Context, _ struct{}) (domain.CatalogStats, error) {
			return svc.Stats(ctx)
		})); err != nil {
		return nil, err
	}
	return subs, nil
}
