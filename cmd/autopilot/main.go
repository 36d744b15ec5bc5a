package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"

	"go-jobpilot-automation/internal/browser"
	"go-jobpilot-automation/internal/config"
	"go-jobpilot-automation/internal/database"
	"go-jobpilot-automation/internal/dedup"
	"go-jobpilot-automation/internal/events"
	"go-jobpilot-automation/internal/filter"
	"go-jobpilot-automation/internal/llm"
	"go-jobpilot-automation/internal/models"
	"go-jobpilot-automation/internal/orchestrator"
	"go-jobpilot-automation/internal/scraper"
	"go-jobpilot-automation/internal/scraper/naukri"
)

func main() {
	//load config
	cfg := config.Load()
	log.Printf("🔧 Config loaded. Keywords: %v", cfg.Keywords)

	//load candidate profile
	profile, err := loadProfile(cfg.ProfilePath)
	if err != nil {
		log.Fatalf("❌ Failed to load candidate profile: %v", err)
	}
	log.Printf("👤 Profile loaded for %s", profile.FullName)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	//assemble event sinks: local log and the hub always, telegram when
	//configured; dashboard feeds subscribe to the hub's JSON event stream
	hub := events.NewHub()
	sinks := []*events.Sink{logSink(), hub.Sink()}
	if cfg.TelegramToken != "" && cfg.TelegramChatID != 0 {
		reporter, err := events.NewTelegramReporter(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			log.Printf("⚠️ Telegram reporter disabled: %v", err)
		} else {
			sinks = append(sinks, reporter.Sink())
			log.Println("🤖 Telegram reporter initialized.")
		}
	}
	sink := events.Combine(sinks...)

	//optional persistence
	var repo *database.Repository
	if cfg.DatabaseURL != "" {
		repo, err = database.ConnectDB(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("❌ Failed to connect to database: %v", err)
		}
		defer repo.Close()
		log.Println("🗄️ Database connected.")
	}

	log.Println("🚀 Starting JobPilot Automation...")

	//init playwright manager
	pwManager, err := browser.NewManager(cfg.Headless)
	if err != nil {
		log.Fatalf("❌ Failed to init Playwright: %v", err)
	}
	defer pwManager.Close()

	//load cookies from a previous session
	cookieFile := filepath.Join(cfg.CookiesPath, "cookies-naukri.json")
	cookies, err := browser.LoadCookies(cookieFile)
	if err != nil {
		log.Printf("⚠️ Could not load cookies: %v. Continuing.", err)
	} else {
		log.Printf("🍪 Loaded %d cookies", len(cookies))
	}

	browserCtx, err := pwManager.NewContext(cookies)
	if err != nil {
		log.Fatalf("❌ Failed to create browser context: %v", err)
	}

	page, err := browserCtx.NewPage()
	if err != nil {
		log.Fatalf("❌ Failed to create new page: %v", err)
	}
	log.Println("✅ Browser initialized successfully!")

	//initialize the site scraper
	site := naukri.NewScraper(cfg, page, sink)
	if err := site.Initialize(ctx); err != nil {
		log.Fatalf("❌ Failed to initialize %s scraper: %v", site.Name(), err)
	}

	//login: reuse the session or wait for a human
	if !site.CheckLoginStatus(ctx) {
		log.Println("🔑 Not logged in. Opening login page — please sign in.")
		if err := site.OpenLoginPage(ctx); err != nil {
			log.Fatalf("❌ Failed to open login page: %v", err)
		}
		if !site.WaitForManualLogin(ctx, cfg.LoginTimeout()) {
			log.Fatal("❌ Login was not completed in time.")
		}
	}
	log.Println("✅ Login confirmed.")

	//search
	result, err := site.SearchJobs(ctx, scraper.SearchParams{
		Keywords:         cfg.Keywords,
		Locations:        cfg.Locations,
		ExperienceYears:  cfg.ExperienceYears,
		PostedWithinDays: cfg.PostedWithinDays,
		Page:             1,
	})
	if err != nil {
		log.Fatalf("❌ Search failed: %v", err)
	}
	log.Printf("📦 Search returned %d jobs (of %d total)", len(result.Jobs), result.TotalCount)

	//filter, dedup, sort by match score
	cache := dedup.NewListingCache(cfg.CachePath)
	var queue []models.JobListing
	for _, job := range result.Jobs {
		if cache.IsSeen(job.DedupKey()) {
			continue
		}
		if !filter.ShouldIncludeJob(job, profile, cfg.PostedWithinDays) {
			continue
		}
		queue = append(queue, job)
	}
	sort.SliceStable(queue, func(i, j int) bool {
		return filter.CalculateMatchScore(queue[i], profile) > filter.CalculateMatchScore(queue[j], profile)
	})
	log.Printf("🔍 Queue after filtering: %d/%d jobs", len(queue), len(result.Jobs))

	if repo != nil {
		for i := range queue {
			if err := repo.SaveListing(ctx, &queue[i]); err != nil {
				log.Printf("⚠️ Could not persist listing: %v", err)
			}
		}
	}

	//orchestrator
	manager := orchestrator.New(
		llm.NewOpenAIClient(cfg.LLMAPIKey, cfg.LLMModel),
		sink,
		orchestrator.Options{
			MaxApplicationsPerSession: cfg.MaxApplicationsPerSession,
			ApplicationDelay:          cfg.ApplicationDelay(),
		},
	)
	manager.RegisterScraper(site)
	manager.SetProfile(profile)

	//Ctrl-C requests a cooperative stop at the next job boundary
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("🛑 Stop requested. Finishing the current application...")
		manager.Stop()
	}()

	onProgress := func(job models.JobListing, index int, outcome models.ApplyOutcome) {
		recordOutcome(ctx, repo, job, outcome)
		cache.Add([]string{job.DedupKey()})
	}

	runResult, err := manager.ProcessJobQueue(ctx, site.Name(), queue, onProgress)
	if err != nil {
		log.Fatalf("❌ Queue run refused: %v", err)
	}

	log.Printf("🏁 Run finished: %d applied, %d failed, %d skipped.",
		runResult.Applied, runResult.Failed, runResult.Skipped)
}

func loadProfile(path string) (*models.CandidateProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var profile models.CandidateProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("invalid profile JSON: %w", err)
	}
	if profile.FullName == "" {
		return nil, fmt.Errorf("profile is missing full_name")
	}
	return &profile, nil
}

func logSink() *events.Sink {
	return &events.Sink{
		OnLog: func(level, message string) {
			log.Printf("[%s] %s", level, message)
		},
		OnScreeningQuestion: func(q models.ScreeningQuestion, answer string) {
			log.Printf("❓ %s\n   💬 %s", q.Question, answer)
		},
		OnQueueProgress: func(current, total int) {
			log.Printf("▶️ Processing job %d/%d", current, total)
		},
	}
}

func recordOutcome(ctx context.Context, repo *database.Repository, job models.JobListing, outcome models.ApplyOutcome) {
	if repo == nil {
		return
	}

	appID, err := repo.CreateApplication(ctx, job)
	if err != nil {
		log.Printf("⚠️ Could not record application: %v", err)
		return
	}

	status := database.StatusFailed
	switch {
	case outcome.AlreadyApplied:
		status = database.StatusSkipped
	case outcome.Success:
		status = database.StatusApplied
	}
	if err := repo.UpdateApplicationStatus(ctx, appID, status, outcome.Error); err != nil {
		log.Printf("⚠️ Could not update application status: %v", err)
	}

	if len(outcome.ScreeningQuestions) > 0 {
		if err := repo.SaveScreeningAnswers(ctx, appID, outcome.ScreeningQuestions); err != nil {
			log.Printf("⚠️ Could not save screening answers: %v", err)
		}
	}
}
