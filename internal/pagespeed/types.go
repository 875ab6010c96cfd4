package pagespeed

import (
	"math"
	"strings"

	"github.com/goccy/go-json"

	"github.com/Kevdacosta07/CarbWeb/internal/carbon"
)

// Lighthouse audit identifiers.
const (
	auditFCP             = "first-contentful-paint"
	auditLCP             = "largest-contentful-paint"
	auditCLS             = "cumulative-layout-shift"
	auditTBT             = "total-blocking-time"
	auditSpeedIndex      = "speed-index"
	auditInteractive     = "interactive"
	auditResourceSummary = "resource-summary"
	auditNetworkRequests = "network-requests"
)

// summaryRollups are resource-summary rows that aggregate other rows. They
// are left out of the total and the breakdown so no byte is counted twice.
var summaryRollups = map[string]bool{
	"total":       true,
	"third-party": true,
}

type apiResponse struct {
	LighthouseResult lighthouseResult `json:"lighthouseResult"`
}

type lighthouseResult struct {
	Categories struct {
		Performance struct {
			Score *float64 `json:"score"`
		} `json:"performance"`
	} `json:"categories"`
	// Audits is decoded lazily; only a handful of the many audits are read.
	Audits map[string]json.RawMessage `json:"audits"`
}

type auditResult struct {
	NumericValue *float64     `json:"numericValue"`
	Details      auditDetails `json:"details"`
}

type auditDetails struct {
	Items []auditItem `json:"items"`
}

type auditItem struct {
	ResourceType string  `json:"resourceType"`
	TransferSize float64 `json:"transferSize"`
}

type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// resourceCategories maps Lighthouse resource types to breakdown categories.
var resourceCategories = map[string]carbon.ResourceCategory{
	"document":   carbon.CategoryHTML,
	"stylesheet": carbon.CategoryCSS,
	"script":     carbon.CategoryJavaScript,
	"image":      carbon.CategoryImage,
	"font":       carbon.CategoryFont,
}

// CategoryOf maps a Lighthouse resource type to a ResourceCategory.
func CategoryOf(resourceType string) carbon.ResourceCategory {
	if c, ok := resourceCategories[strings.ToLower(resourceType)]; ok {
		return c
	}
	return carbon.CategoryOther
}

func (r apiResponse) record() carbon.PerformanceRecord {
	lh := r.LighthouseResult

	var score int
	if s := lh.Categories.Performance.Score; s != nil {
		score = int(math.Round(*s * 100))
	}

	return carbon.PerformanceRecord{
		PerformanceScore: score,
		Metrics: carbon.Metrics{
			FirstContentfulPaintMs:   lh.numeric(auditFCP),
			LargestContentfulPaintMs: lh.numeric(auditLCP),
			CumulativeLayoutShift:    lh.numeric(auditCLS),
			TotalBlockingTimeMs:      lh.numeric(auditTBT),
			SpeedIndexMs:             lh.optional(auditSpeedIndex),
			TimeToInteractiveMs:      lh.optional(auditInteractive),
		},
		Resources: lh.resources(),
	}
}

// audit decodes one audit. Missing or malformed audits yield the zero value.
func (lh lighthouseResult) audit(id string) auditResult {
	var a auditResult
	if raw, ok := lh.Audits[id]; ok {
		_ = json.Unmarshal(raw, &a)
	}
	return a
}

func (lh lighthouseResult) numeric(id string) float64 {
	if v := lh.optional(id); v != nil {
		return *v
	}
	return 0
}

func (lh lighthouseResult) optional(id string) *float64 {
	a := lh.audit(id)
	if a.NumericValue == nil {
		return nil
	}
	return a.NumericValue
}

// resources builds the byte breakdown from resource-summary, skipping the
// rollup rows. When the summary is empty the raw network request sizes are
// used for the total and the breakdown stays zero.
func (lh lighthouseResult) resources() carbon.Resources {
	res := carbon.Resources{
		BreakdownBytes: make(map[carbon.ResourceCategory]int64, len(carbon.Categories)),
	}
	for _, c := range carbon.Categories {
		res.BreakdownBytes[c] = 0
	}

	for _, item := range lh.audit(auditResourceSummary).Details.Items {
		if summaryRollups[strings.ToLower(item.ResourceType)] {
			continue
		}
		size := int64(math.Round(item.TransferSize))
		res.BreakdownBytes[CategoryOf(item.ResourceType)] += size
		res.TotalBytes += size
	}

	requests := lh.audit(auditNetworkRequests).Details.Items
	res.RequestCount = len(requests)
	if res.TotalBytes == 0 {
		for _, item := range requests {
			res.TotalBytes += int64(math.Round(item.TransferSize))
		}
	}
	return res
}
