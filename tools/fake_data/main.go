// Seeds a local Postgres with demo videos, scored moments and
// recommendations so the dashboard has data without running the
// collaborators.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/momentmatch/momentmatch/internal/config"
	"github.com/momentmatch/momentmatch/internal/db"
	"github.com/momentmatch/momentmatch/internal/logic"
	"github.com/momentmatch/momentmatch/internal/models"
	"github.com/momentmatch/momentmatch/internal/observability"
	"github.com/momentmatch/momentmatch/internal/recommend"
)

type seedMoment struct {
	start, end int
	text       string
	tone       models.EmotionalTone
	category   string
	confidence int
}

var demoMoments = []seedMoment{
	{10, 25, "host is excited announcing the new fitness challenge", models.ToneExcited, "entertainment", 90},
	{120, 140, "detailed review of a budget mirrorless camera", models.ToneNeutral, "product", 80},
	{300, 320, "step by step tutorial on meal prep for the week", models.TonePositive, "educational", 75},
	{560, 585, "calm discussion of index fund investing", models.ToneNeutral, "general", 70},
}

func main() {
	logger, err := observability.InitLogger("fake-data")
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	var dsn string
	flag.StringVar(&dsn, "dsn", "", "Postgres DSN")
	flag.Parse()

	cfg := config.Load()
	if dsn == "" {
		dsn = cfg.PostgresDSN
	}

	pg, err := db.InitPostgres(dsn, cfg.DBMaxOpenConns, cfg.DBMaxIdleConns, cfg.DBConnMaxLifetime, cfg.DBConnMaxIdleTime)
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect postgres: %v\n", err)
		os.Exit(1)
	}
	defer pg.Close()

	ctx := context.Background()
	video := &models.Video{
		ID:       uuid.NewString(),
		Filename: "demo-episode.mp4",
		Status:   models.StatusCompleted,
		VideoURL: "https://cdn.example.com/demo-episode.mp4",
		Duration: 640,
	}
	if err := pg.InsertVideo(ctx, video); err != nil {
		fmt.Fprintf(os.Stderr, "insert video: %v\n", err)
		os.Exit(1)
	}

	for _, sm := range demoMoments {
		quality := logic.ScoreSpot(sm.text, string(sm.tone), sm.confidence)
		moment := &models.AdMoment{
			ID:            uuid.NewString(),
			VideoID:       video.ID,
			StartTime:     sm.start,
			EndTime:       sm.end,
			Context:       sm.text,
			EmotionalTone: sm.tone,
			Category:      sm.category,
			Confidence:    sm.confidence,
			Quality:       &quality,
		}
		if err := pg.InsertAdMoment(ctx, moment); err != nil {
			fmt.Fprintf(os.Stderr, "insert moment: %v\n", err)
			os.Exit(1)
		}

		for j, rec := range recommend.FallbackRecommendations(sm.category) {
			rec.ID = uuid.NewString()
			rec.MomentID = moment.ID
			rec.Selected = j == 0
			if err := pg.InsertAdRecommendation(ctx, &rec); err != nil {
				fmt.Fprintf(os.Stderr, "insert recommendation: %v\n", err)
				os.Exit(1)
			}
		}
	}

	fmt.Printf("seeded video %s with %d moments\n", video.ID, len(demoMoments))
}
