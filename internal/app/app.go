package app

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"gatehouse/internal/admission"
	"gatehouse/internal/app/bootstrap"
	"gatehouse/internal/app/server"
	"gatehouse/internal/config"
	"gatehouse/internal/jobs/maintenance"
	"gatehouse/internal/support"
)

func Run() error {
	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found. Falling back to system environment variables.")
	}

	log.SetLevel(log.DebugLevel)
	settings := config.Load()

	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "block":
			return runBlockCommand(os.Args[2:])
		case "detect":
			return runDetectCommand(os.Args[2:])
		}
	}

	return serve(settings)
}

func serve(settings config.Settings) error {
	app, err := bootstrap.Setup()
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go app.Runner.Start(ctx)
	go maintenance.StartLogRetentionRoutine(ctx)

	defer func() {
		if err := support.CloseRedisClient(); err != nil {
			log.Warn("error closing redis client", "error", err)
		}
	}()

	return server.OpenRoutes(settings.BackendPort, &server.API{
		Gate:      app.Gate,
		Blocklist: app.Blocklist,
		Runner:    app.Runner,
	})
}

// runBlockCommand implements `gatehouse block <ip> [-reason text]`.
func runBlockCommand(args []string) error {
	flags := flag.NewFlagSet("block", flag.ExitOnError)
	reason := flags.String("reason", "", "Reason for blocking the IP")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() != 1 {
		return fmt.Errorf("usage: gatehouse block <ip> [-reason text]")
	}
	ip := flags.Arg(0)

	app, err := bootstrap.Setup()
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}

	result, err := app.Blocklist.Block(context.Background(), ip, *reason)
	if err != nil {
		return err
	}

	if result.Outcome == admission.BlockAlreadyExists {
		log.Warn("IP is already blocked", "ip", ip)
		return nil
	}

	// A CLI invocation runs in its own process; the running server notices
	// the new entry once its cached verdict for the IP expires, or
	// immediately via the /admin/block route.
	log.Info("Successfully blocked IP", "ip", ip, "id", result.Entry.ID)
	return nil
}

// runDetectCommand implements `gatehouse detect [-async]`. The async flag
// hands the run to a running server instance instead of executing it in this
// process, so the command returns as soon as the run is accepted.
func runDetectCommand(args []string) error {
	flags := flag.NewFlagSet("detect", flag.ExitOnError)
	async := flags.Bool("async", false, "Queue the run on the running server and return immediately")
	if err := flags.Parse(args); err != nil {
		return err
	}

	if *async {
		return queueDetection(config.Get().BackendPort)
	}

	app, err := bootstrap.Setup()
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}

	flagged, err := app.Runner.Trigger(context.Background(), false)
	if err != nil {
		return fmt.Errorf("anomaly detection failed: %w", err)
	}

	log.Info("Anomaly detection completed", "newly_flagged", flagged)
	return nil
}

func queueDetection(port int) error {
	url := fmt.Sprintf("http://localhost:%d/admin/detect?async=true", port)

	resp, err := http.Post(url, "application/json", nil)
	if err != nil {
		return fmt.Errorf("queue detection run: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("queue detection run: unexpected status %d", resp.StatusCode)
	}

	log.Info("Anomaly detection queued")
	return nil
}
