// seed registers a demo provider for local testing through the registration workflow.
// Idempotent: an already registered demo identity is left alone.
package main

import (
	"context"
	"errors"
	"flag"

	"provider-registration/backend/internal/config"
	"provider-registration/backend/internal/logging"
	"provider-registration/backend/internal/provider/domain"
	"provider-registration/backend/internal/provider/repository"
	"provider-registration/backend/internal/provider/service"
	"provider-registration/backend/internal/security"
)

const (
	demoEmail    = "demo.provider@example.com"
	demoPassword = "DemoPass123!"
)

func main() {
	inactive := flag.Bool("inactive", false, "Deactivate the demo provider after seeding")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		boot := logging.New("info", "console", "seed")
		boot.Fatal().Err(err).Msg("config")
	}
	log := logging.New(cfg.LogLevel, "console", "seed")

	ctx := context.Background()
	repo, conn, err := repository.OpenStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("open store")
	}
	defer conn.Close()

	years := 8
	registrar := service.NewRegistrationService(repo, security.NewHasher(cfg.BcryptCost), log)
	p, err := registrar.Register(ctx, service.RegisterInput{
		FirstName:         "Demo",
		LastName:          "Provider",
		Email:             demoEmail,
		PhoneNumber:       "+15550000001",
		Password:          demoPassword,
		Specialization:    "Family Medicine",
		LicenseNumber:     "DEMO0001",
		YearsOfExperience: &years,
		ClinicAddress: &domain.ClinicAddress{
			Street: "100 Demo Way",
			City:   "Springfield",
			State:  "IL",
			Zip:    "62701",
		},
	})
	var dup *service.DuplicateIdentityError
	switch {
	case errors.As(err, &dup):
		log.Info().Str("field", string(dup.Field)).Msg("demo provider already seeded; skipping")
		p, err = repo.FindByEmail(ctx, demoEmail)
		if err != nil || p == nil {
			log.Fatal().Err(err).Msg("demo provider lookup")
		}
	case err != nil:
		log.Fatal().Err(err).Msg("seed demo provider")
	default:
		log.Info().Str("id", p.ID).Str("email", p.Email).Msg("demo provider registered")
	}

	if *inactive && p.IsActive {
		if err := repo.SetActive(ctx, p.ID, false); err != nil {
			log.Fatal().Err(err).Msg("deactivate demo provider")
		}
		log.Info().Str("id", p.ID).Msg("demo provider deactivated")
	}
}
