package scraper

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"

	"neuropilot/internal/domain/entity"
)

// priceSelectors are tried in order; the first element yielding a non-zero
// price wins. Ordered from most to least specific across common storefronts.
var priceSelectors = []string{
	"span[itemprop=\"price\"]",
	".product-price",
	".woocommerce-Price-amount",
	".price",
	"[class*=\"price\"]",
	"[id*=\"price\"]",
}

var promoSelectors = []string{
	".sale-badge",
	".discount",
	"[class*=\"promo\"]",
	"[class*=\"offer\"]",
}

var priceRe = regexp.MustCompile(`[\d,]+\.?\d*`)

var outOfStockMarkers = []string{
	"out of stock", "sold out", "unavailable",
	"نفذت الكمية", "غير متوفر", "نفد المخزون",
}

var lowStockMarkers = []string{
	"low stock", "only", "hurry", "limited stock",
	"كمية محدودة", "آخر قطعة", "أسرع",
}

// RodScraper fetches competitor product pages through a headless Chrome
// instance, reusing a fixed pool of pages across fetches.
type RodScraper struct {
	browser *rod.Browser
	pages   chan *rod.Page
	timeout time.Duration
	log     *zap.Logger
}

// New launches a browser and pre-opens poolSize blank pages. Callers must
// Close to release the browser.
func New(headless bool, poolSize int, timeout time.Duration, log *zap.Logger) (*RodScraper, error) {
	url, err := launcher.New().Headless(headless).Launch()
	if err != nil {
		return nil, fmt.Errorf("launch chrome: %w", err)
	}
	browser := rod.New().ControlURL(url)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect to chrome: %w", err)
	}

	if poolSize < 1 {
		poolSize = 1
	}
	pages := make(chan *rod.Page, poolSize)
	for i := 0; i < poolSize; i++ {
		page, err := browser.Page(proto.TargetCreateTarget{})
		if err != nil {
			browser.Close()
			return nil, fmt.Errorf("open page: %w", err)
		}
		pages <- page
	}

	return &RodScraper{browser: browser, pages: pages, timeout: timeout, log: log}, nil
}

func (s *RodScraper) Close() error {
	return s.browser.Close()
}

// Fetch navigates to url and extracts a snapshot of what a buyer would see:
// title, price, stock signal, and any promotion text.
func (s *RodScraper) Fetch(ctx context.Context, url string) (*entity.PageSnapshot, error) {
	var page *rod.Page
	select {
	case page = <-s.pages:
	case <-ctx.Done():
		return nil, &entity.ScrapeError{URL: url, Err: ctx.Err()}
	}
	defer func() { s.pages <- page }()

	snap, err := s.fetch(ctx, page, url)
	if err != nil {
		return nil, &entity.ScrapeError{URL: url, Err: err}
	}
	return snap, nil
}

func (s *RodScraper) fetch(ctx context.Context, page *rod.Page, url string) (*entity.PageSnapshot, error) {
	p := page.Context(ctx).Timeout(s.timeout)
	if err := p.Navigate(url); err != nil {
		return nil, fmt.Errorf("navigate: %w", err)
	}
	if err := p.WaitLoad(); err != nil {
		return nil, fmt.Errorf("wait load: %w", err)
	}

	snap := &entity.PageSnapshot{}

	if info, err := p.Info(); err == nil {
		snap.ProductTitle = strings.TrimSpace(info.Title)
	}

	snap.Price = s.extractPrice(p)
	if snap.Price == 0 {
		s.log.Debug("no price found on page", zap.String("url", url))
	}

	body := ""
	if el, err := p.Element("body"); err == nil {
		if text, err := el.Text(); err == nil {
			body = strings.ToLower(text)
		}
	}
	snap.StockStatus = classifyStock(body)
	snap.PromoText = s.extractPromotion(p)

	return snap, nil
}

func (s *RodScraper) extractPrice(p *rod.Page) float64 {
	for _, sel := range priceSelectors {
		els, err := p.Elements(sel)
		if err != nil {
			continue
		}
		for _, el := range els {
			text, err := el.Text()
			if err != nil {
				continue
			}
			if price := ParsePrice(text); price > 0 {
				return price
			}
		}
	}
	return 0
}

func (s *RodScraper) extractPromotion(p *rod.Page) string {
	for _, sel := range promoSelectors {
		el, err := p.Element(sel)
		if err != nil {
			continue
		}
		if text, err := el.Text(); err == nil {
			if trimmed := strings.TrimSpace(text); trimmed != "" {
				return trimmed
			}
		}
	}
	return ""
}

// ParsePrice pulls the first numeric token out of a price label,
// tolerating currency symbols and thousands separators.
func ParsePrice(text string) float64 {
	match := priceRe.FindString(text)
	if match == "" {
		return 0
	}
	match = strings.ReplaceAll(match, ",", "")
	price, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0
	}
	return price
}

func classifyStock(body string) entity.StockStatus {
	for _, marker := range outOfStockMarkers {
		if strings.Contains(body, marker) {
			return entity.StockOut
		}
	}
	for _, marker := range lowStockMarkers {
		if strings.Contains(body, marker) {
			return entity.StockLow
		}
	}
	return entity.StockIn
}
