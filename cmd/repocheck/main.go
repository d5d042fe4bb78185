// Package main provides one-shot GitHub repository health analysis.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"rugradar/internal/domain"
	"rugradar/internal/github"
	"rugradar/internal/report"
	"rugradar/internal/repohealth"
)

func main() {
	_ = godotenv.Load()

	token := flag.String("token", os.Getenv("GITHUB_TOKEN"), "GitHub API token (raises rate limits)")
	timeout := flag.Duration("timeout", 60*time.Second, "Overall lookup timeout")
	flag.Parse()

	logger := log.New(os.Stderr, "[repocheck] ", log.LstdFlags|log.Lshortfile)

	if flag.NArg() != 1 {
		logger.Fatal("usage: repocheck [flags] <repo-url>")
	}
	repoURL := flag.Arg(0)

	owner, name, err := github.ParseRepoURL(repoURL)
	if err != nil {
		logger.Fatalf("parse repo url: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	now := time.Now().UnixMilli()
	result := &domain.RepoReport{RepoURL: repoURL, GeneratedAt: now}

	metrics, err := github.NewClient(github.WithToken(*token)).GetRepoMetrics(ctx, owner, name, now)
	switch {
	case errors.Is(err, github.ErrRepoNotFound):
		// Found stays false; report renders "not found".
	case err != nil:
		result.Error = fmt.Sprintf("fetch repository metrics: %v", err)
	default:
		scored := repohealth.Score(*metrics, now)
		result.Found = true
		result.TrustScore = scored.TrustScore
		result.Grade = scored.Grade
		result.Components = scored.Components
		result.Strengths = scored.Strengths
		result.Risks = scored.Risks
	}

	fmt.Print(report.RenderRepoMarkdown(result))

	if !result.Found {
		os.Exit(1)
	}
}
