package main

import (
	"context"
	"flag"
	"os"
	"time"

	"smarthire/internal/config"
	"smarthire/internal/logger"
	"smarthire/internal/service"
	"smarthire/internal/storage"
)

const sampleMessage = "Hello, I am Jane Doe. Contact me at jane@example.com or +1 222 333 4444. " +
	"I have 5 years of experience in Python and AWS."

// backfill lists every candidate once, which repairs legacy rows missing an id
// or status, then reports per-status counts and incomplete records.
func main() {
	var (
		seed    bool
		timeout time.Duration
	)
	flag.BoolVar(&seed, "seed", false, "Append a sample candidate parsed from a canned message before listing")
	flag.DurationVar(&timeout, "timeout", 2*time.Minute, "Overall deadline for the run")
	flag.Parse()

	cfg := config.LoadConfig()
	logger.Init(cfg.LogLevel, cfg.LogFormat)
	log := logger.Get()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	store, err := storage.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open candidate store")
	}

	if seed {
		parser, _ := service.NewPipeline(cfg)
		res, err := parser.Parse(ctx, sampleMessage, nil, "seed")
		if err != nil {
			log.Fatal().Err(err).Msg("failed to parse sample message")
		}
		if err := store.Append(ctx, res.Candidate); err != nil {
			log.Fatal().Err(err).Msg("failed to append sample candidate")
		}
		log.Info().Str("candidate_id", res.Candidate.CandidateID).Msg("seeded sample candidate")
	}

	all, err := store.List(ctx, storage.ListOptions{})
	if err != nil {
		log.Error().Err(err).Msg("list failed")
		os.Exit(1)
	}

	counts := make(map[storage.Status]int)
	incomplete := 0
	for _, c := range all {
		counts[c.Status]++
		if c.FullName == "" || c.Email == "" || c.Phone == "" {
			incomplete++
		}
	}

	ev := log.Info().Int("total", len(all)).Int("missing_contact_fields", incomplete)
	for _, st := range storage.Statuses {
		ev = ev.Int(string(st), counts[st])
	}
	ev.Msg("backfill run complete")
}
