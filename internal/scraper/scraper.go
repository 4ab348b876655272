// Package scraper finds companies hiring for the configured keywords by
// driving a headless browser through Google's job search results.
package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/intersectiondata/leadflow/internal/entity"
	"github.com/intersectiondata/leadflow/internal/repository"
)

const maxListingsPerQuery = 10

// listing is one job card pulled from the results page.
type listing struct {
	Title    string `json:"title"`
	Company  string `json:"company"`
	Location string `json:"location"`
	Posted   string `json:"posted"`
}

// extractListings runs inside the page and collects the visible job cards.
const extractListings = `
(() => {
    const cards = document.querySelectorAll('div[jscontroller] li div[role="treeitem"], li[data-ved] div[role="treeitem"]');
    const out = [];
    cards.forEach(card => {
        const lines = card.innerText.split('\n').map(s => s.trim()).filter(Boolean);
        if (lines.length < 2) return;
        out.push({
            title: lines[0] || '',
            company: lines[1] || '',
            location: lines[2] || '',
            posted: lines.find(l => /ago|today|yesterday/i.test(l)) || ''
        });
    });
    return out;
})()
`

// ScrapeResult summarises one scrape cycle.
type ScrapeResult struct {
	Searches     int
	NewCompanies int
	NewJobs      int
}

// Scraper owns a headless browser session and the persistence of what it
// finds.
type Scraper struct {
	browserCtx context.Context
	cancel     context.CancelFunc
	companies  repository.CompaniesRepository
	jobs       repository.JobsRepository
	pause      time.Duration
	logger     *slog.Logger
}

// New starts a headless browser and wires the scraper.
func New(
	companies repository.CompaniesRepository,
	jobs repository.JobsRepository,
	pause time.Duration,
	logger *slog.Logger,
) *Scraper {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.UserAgent("Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, cancelCtx := chromedp.NewContext(allocCtx)

	if pause <= 0 {
		pause = 5 * time.Second
	}
	return &Scraper{
		browserCtx: browserCtx,
		cancel: func() {
			cancelCtx()
			cancelAlloc()
		},
		companies: companies,
		jobs:      jobs,
		pause:     pause,
		logger:    logger,
	}
}

// Close shuts the browser down.
func (s *Scraper) Close() {
	s.cancel()
}

// Run scrapes every keyword and location pair. Search failures are logged
// and skipped; a pause between searches keeps the request rate polite.
func (s *Scraper) Run(ctx context.Context, keywords, locations []string) (ScrapeResult, error) {
	var result ScrapeResult
	for _, keyword := range keywords {
		for _, location := range locations {
			if err := ctx.Err(); err != nil {
				return result, err
			}
			if err := s.search(ctx, keyword, location, &result); err != nil {
				s.logger.Error("scrape search", "keyword", keyword, "location", location, "error", err)
			}
			result.Searches++

			select {
			case <-ctx.Done():
				return result, ctx.Err()
			case <-time.After(s.pause):
			}
		}
	}
	s.logger.Info("scrape finished",
		"searches", result.Searches,
		"new_companies", result.NewCompanies,
		"new_jobs", result.NewJobs,
	)
	return result, nil
}

func (s *Scraper) search(ctx context.Context, keyword, location string, result *ScrapeResult) error {
	searchURL := buildSearchURL(keyword, location)
	s.logger.Info("scraping job search", "keyword", keyword, "location", location)

	runCtx, cancel := context.WithTimeout(s.browserCtx, 90*time.Second)
	defer cancel()

	var listings []listing
	err := chromedp.Run(runCtx,
		chromedp.Navigate(searchURL),
		chromedp.Sleep(3*time.Second),
		chromedp.Evaluate(extractListings, &listings),
	)
	if err != nil {
		return fmt.Errorf("drive browser: %w", err)
	}
	s.logger.Info("job cards found", "keyword", keyword, "count", len(listings))

	// Cap per-query intake; result pages repeat heavily beyond the top cards.
	if len(listings) > maxListingsPerQuery {
		listings = listings[:maxListingsPerQuery]
	}
	for _, item := range listings {
		if item.Company == "" || item.Title == "" {
			continue
		}
		if err := s.save(ctx, keyword, item, result); err != nil {
			s.logger.Error("save listing", "company", item.Company, "error", err)
		}
	}
	return nil
}

func (s *Scraper) save(ctx context.Context, keyword string, item listing, result *ScrapeResult) error {
	var location *string
	if item.Location != "" {
		location = &item.Location
	}
	company, created, err := s.companies.UpsertByName(ctx, strings.TrimSpace(item.Company), location)
	if err != nil {
		return err
	}
	if created {
		result.NewCompanies++
	}

	job := &entity.Job{
		CompanyID: company.ID,
		Title:     strings.TrimSpace(item.Title),
		Location:  location,
		Source:    "google_jobs",
		Keyword:   keyword,
	}
	if posted := strings.TrimSpace(item.Posted); posted != "" {
		job.PostedDate = &posted
	}
	inserted, err := s.jobs.InsertIfNew(ctx, job)
	if err != nil {
		return err
	}
	if inserted {
		result.NewJobs++
	}
	return nil
}

// buildSearchURL composes the Google job-search URL for one keyword and
// location pair.
func buildSearchURL(keyword, location string) string {
	query := fmt.Sprintf("%s jobs %s", keyword, location)
	params := url.Values{}
	params.Set("q", query)
	params.Set("ibp", "htl;jobs")
	return "https://www.google.com/search?" + params.Encode()
}
