// fvdemo runs one simulated face-verification enrollment against a running
// verification server and prints the outcome.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/gooddollar/facetec-go/facetec"
	"github.com/gooddollar/facetec-go/facetec/capture"
	"github.com/gooddollar/facetec-go/goodserver"
	"github.com/gooddollar/facetec-go/logging"
	"github.com/google/uuid"
)

func main() {
	serverURL := flag.String("server", "http://localhost:8080", "Base URL of the verification server")
	authSecret := flag.String("auth-secret", "", "Shared secret used to mint the access token")
	identifier := flag.String("identifier", "", "Enrollment identifier (random when empty)")
	maxRetries := flag.Int("max-retries", 3, "Capture retry budget, negative for unbounded")
	logLevel := flag.String("log-level", "info", "Log level")
	flag.Parse()

	logging.InitLogger(*logLevel)

	if *authSecret == "" {
		slog.Error("please provide the server secret using the --auth-secret flag")
		os.Exit(1)
	}

	enrollmentIdentifier := *identifier
	if enrollmentIdentifier == "" {
		enrollmentIdentifier = uuid.NewString()
	}

	accessToken, err := goodserver.CreateAccessToken([]byte(*authSecret), enrollmentIdentifier, time.Hour)
	if err != nil {
		slog.Error("failed to mint access token", "error", err)
		os.Exit(1)
	}

	simulator := capture.NewSimulator()
	module := facetec.NewModule(facetec.ModuleConfig{
		SDK:         simulator,
		Launcher:    simulator,
		Permissions: simulator,
		Events:      facetec.SinkFunc(logEvent),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if _, err := module.Initialize(*serverURL, accessToken, facetec.LicenseConfig{}).Await(ctx); err != nil {
		slog.Error("SDK initialization failed", "error", err)
		os.Exit(1)
	}

	slog.Info("starting enrollment", "identifier", enrollmentIdentifier)
	outcome, err := module.FaceVerification(enrollmentIdentifier, facetec.EnrollmentOptions{
		MaxRetries: *maxRetries,
	}).Await(ctx)

	if err != nil {
		slog.Error("enrollment failed", "error", err)
		os.Exit(1)
	}

	slog.Info("enrollment succeeded", "artifacts", outcome)
}

func logEvent(event facetec.UXEvent, body map[string]any) {
	slog.Info("ux event", "event", string(event), "body", body)
}
