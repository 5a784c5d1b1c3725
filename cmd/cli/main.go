package main // Interactive console entry point

import (
	"os"

	"github.com/iliyamo/ticket-reservation/internal/cli"
	"github.com/iliyamo/ticket-reservation/internal/config"
	"github.com/iliyamo/ticket-reservation/internal/repository"
	"github.com/iliyamo/ticket-reservation/internal/service"
)

func main() {
	cfg := config.Load()
	log := config.NewLogger(cfg)
	log.SetOutput(os.Stderr)

	svc := service.NewReservationService(repository.NewShowRepo(), repository.NewBookingRepo())
	if err := cli.NewShell(svc, os.Stdin, os.Stdout, os.Stderr).Run(); err != nil {
		log.WithError(err).Fatal("reading input failed")
	}
}
