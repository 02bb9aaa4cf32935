package main

import (
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const healthService = "pos.PointOfSale"

// newHealthServer returns a gRPC server exposing grpc.health.v1 for the
// service and the empty (overall) name.
func newHealthServer() (*grpc.Server, *health.Server) {
	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(healthService, healthpb.HealthCheckResponse_SERVING)

	gs := grpc.NewServer()
	healthpb.RegisterHealthServer(gs, hs)
	return gs, hs
}

func serveHealth(gs *grpc.Server, l net.Listener) error {
	if err := gs.Serve(l); err != nil && err != grpc.ErrServerStopped {
		return err
	}
	return nil
}
