package scraper

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/Zinko5/newsbot/internal/adapters/config"
	"github.com/Zinko5/newsbot/pkg/logger"
	"github.com/Zinko5/newsbot/pkg/models"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	eldeberBaseURL  = "https://eldeber.com.bo"
	listTimeout     = 15 * time.Second
	minParagraph    = 30
	summaryChars    = 200
	skipMarker      = "Lee también"
	titleSelector   = "h2.nota__titulo-item"
	articleSelector = "article.nota"
)

// bodySelectors are tried in order on an article page; the markup
// varies across sections and redesigns.
var bodySelectors = []string{
	"div.text-editor",
	"div.nota-body",
	"div.cuerpo-nota",
	"div.article-body",
	"div.content-body",
	"article",
}

// ElDeber scrapes news sections of eldeber.com.bo
type ElDeber struct {
	client    *http.Client
	limiter   *rate.Limiter
	sections  []string
	pages     int
	workers   int
	bodyLimit int
	userAgent string

	// OnProgress, when set, receives pages done out of total pages.
	OnProgress func(done, total int)
}

// NewElDeber creates new El Deber scraper
func NewElDeber(cfg *config.ScraperConfig) *ElDeber {
	return &ElDeber{
		client:    &http.Client{Timeout: listTimeout},
		limiter:   rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		sections:  cfg.Sections,
		pages:     cfg.PagesPerSection,
		workers:   cfg.Workers,
		bodyLimit: cfg.BodyLimit,
		userAgent: cfg.UserAgent,
	}
}

func (e *ElDeber) Name() string {
	return "eldeber"
}

// Fetch walks every configured section page by page and extracts the
// full text of each listed article. Page and article failures are
// logged and skipped.
func (e *ElDeber) Fetch(ctx context.Context) ([]models.Article, error) {
	type pageJob struct {
		section string
		page    int
	}

	jobs := make([]pageJob, 0, len(e.sections)*e.pages)
	for _, section := range e.sections {
		for page := 1; page <= e.pages; page++ {
			jobs = append(jobs, pageJob{section: section, page: page})
		}
	}

	var (
		mu       sync.Mutex
		articles []models.Article
		done     int64
	)

	jobCh := make(chan pageJob)
	var wg sync.WaitGroup

	workers := e.workers
	if workers < 1 {
		workers = 1
	}

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobCh {
				pageArticles, err := e.fetchPage(ctx, job.section, job.page)
				if err != nil {
					logger.Warn("page fetch failed",
						zap.String("section", job.section),
						zap.Int("page", job.page),
						zap.Error(err),
					)
				} else {
					mu.Lock()
					articles = append(articles, pageArticles...)
					mu.Unlock()
				}

				n := atomic.AddInt64(&done, 1)
				if e.OnProgress != nil {
					e.OnProgress(int(n), len(jobs))
				}
			}
		}()
	}

	for _, job := range jobs {
		select {
		case <-ctx.Done():
			close(jobCh)
			wg.Wait()
			return articles, ctx.Err()
		case jobCh <- job:
		}
	}
	close(jobCh)
	wg.Wait()

	logger.Info("✅ section scrape finished",
		zap.Int("sections", len(e.sections)),
		zap.Int("articles", len(articles)),
	)

	return articles, nil
}

// fetchPage extracts the articles listed on one section page.
func (e *ElDeber) fetchPage(ctx context.Context, section string, page int) ([]models.Article, error) {
	url := section
	if page > 1 {
		url = fmt.Sprintf("%s/%d", section, page)
	}

	doc, err := e.fetchDocument(ctx, url)
	if err != nil {
		return nil, err
	}

	sectionName := sectionName(section)
	articles := make([]models.Article, 0)

	doc.Find(articleSelector).Each(func(_ int, s *goquery.Selection) {
		title := strings.TrimSpace(s.Find(titleSelector).Text())
		href, ok := s.Find(titleSelector + " a").Attr("href")
		if title == "" || !ok {
			return
		}
		if !strings.HasPrefix(href, "http") {
			href = eldeberBaseURL + href
		}

		content, err := e.fetchBody(ctx, href)
		if err != nil {
			logger.Debug("article body fetch failed",
				zap.String("url", href),
				zap.Error(err),
			)
			return
		}
		if content == "" {
			return
		}

		articles = append(articles, models.Article{
			Title:     title,
			URL:       href,
			Content:   content,
			Summary:   cutRunes(content, summaryChars) + "...",
			Section:   sectionName,
			ScrapedAt: time.Now(),
		})
	})

	return articles, nil
}

// fetchBody extracts the readable text of a single article page.
func (e *ElDeber) fetchBody(ctx context.Context, url string) (string, error) {
	doc, err := e.fetchDocument(ctx, url)
	if err != nil {
		return "", err
	}

	var body *goquery.Selection
	for _, selector := range bodySelectors {
		found := doc.Find(selector).First()
		if found.Length() > 0 {
			body = found
			break
		}
	}
	if body == nil {
		return "", nil
	}

	paragraphs := make([]string, 0)
	body.Find("p").Each(func(_ int, p *goquery.Selection) {
		text := strings.TrimSpace(p.Text())
		if len([]rune(text)) > minParagraph && !strings.Contains(text, skipMarker) {
			paragraphs = append(paragraphs, text)
		}
	})

	return cutRunes(strings.Join(paragraphs, " "), e.bodyLimit), nil
}

func (e *ElDeber) fetchDocument(ctx context.Context, url string) (*goquery.Document, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", e.userAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error %d for %s", resp.StatusCode, url)
	}

	return goquery.NewDocumentFromReader(resp.Body)
}

// sectionName derives a display name from the last path segment of a
// section URL.
func sectionName(sectionURL string) string {
	trimmed := strings.TrimRight(sectionURL, "/")
	segment := trimmed[strings.LastIndex(trimmed, "/")+1:]
	if segment == "" {
		return ""
	}
	return strings.ToUpper(segment[:1]) + segment[1:]
}

func cutRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
