package handlers

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rogerio-castellano/ecommerce-analytics/internal/analytics"
	"github.com/rogerio-castellano/ecommerce-analytics/internal/report"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	dateLayout        = "2006-01-02"
	analyticsCacheKey = "analytics:sales:"
	defaultWindowDays = 30
)

const errMissingDates = "Please provide a start and end date."

// parseWindow reads start_date and end_date as YYYY-MM-DD. The end date
// covers the whole day.
func parseWindow(startStr, endStr string) (time.Time, time.Time, error) {
	start, err := time.Parse(dateLayout, startStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start_date %q, expected YYYY-MM-DD", startStr)
	}
	end, err := time.Parse(dateLayout, endStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end_date %q, expected YYYY-MM-DD", endStr)
	}
	return start, endOfDay(end), nil
}

func endOfDay(t time.Time) time.Time {
	return t.AddDate(0, 0, 1).Add(-time.Nanosecond)
}

func newSalesAnalytics(start, end time.Time) (*analytics.SalesAnalytics, error) {
	return analytics.NewSalesAnalytics(start, end, salesRepo, customerRepo, analytics.WithChurnWindow(churnWindow))
}

// SalesHandler godoc
// @Summary Revenue by category in a date range
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Param start_date query string true "Start date (YYYY-MM-DD)"
// @Param end_date query string true "End date (YYYY-MM-DD), inclusive"
// @Success 200 {array} analytics.CategoryRevenue
// @Failure 400 {object} ErrorResponse
// @Router /sales [get]
func SalesHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	startStr, endStr := q.Get("start_date"), q.Get("end_date")
	if startStr == "" || endStr == "" {
		errorJSON(w, http.StatusBadRequest, errMissingDates)
		return
	}

	start, end, err := parseWindow(startStr, endStr)
	if err != nil {
		errorJSON(w, http.StatusBadRequest, err.Error())
		return
	}
	sa, err := newSalesAnalytics(start, end)
	if err != nil {
		writeError(w, r, err)
		return
	}

	rows, err := sa.RevenueByCategory(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond(w, http.StatusOK, rows)
}

// SalesAnalyticsHandler godoc
// @Summary Revenue by category, top sellers by country and churn rate
// @Description Dates default to the last 30 days.
// @Tags analytics
// @Produce json
// @Param start_date query string false "Start date (YYYY-MM-DD)"
// @Param end_date query string false "End date (YYYY-MM-DD), inclusive"
// @Success 200 {object} SalesAnalyticsResult
// @Failure 400 {object} ErrorResponse
// @Router /sales-analytics [get]
func SalesAnalyticsHandler(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC()
	q := r.URL.Query()
	startStr, endStr := q.Get("start_date"), q.Get("end_date")
	if startStr == "" {
		startStr = now.AddDate(0, 0, -defaultWindowDays).Format(dateLayout)
	}
	if endStr == "" {
		endStr = now.Format(dateLayout)
	}

	start, end, err := parseWindow(startStr, endStr)
	if err != nil {
		errorJSON(w, http.StatusBadRequest, err.Error())
		return
	}

	key := analyticsCacheKey + startStr + ":" + endStr
	var result SalesAnalyticsResult
	if cache != nil {
		hit, err := cache.GetJSON(r.Context(), key, &result)
		if err != nil {
			logger.Warn("analytics cache read failed", zap.Error(err))
		}
		if hit {
			respond(w, http.StatusOK, result)
			return
		}
	}

	result, err = computeSalesAnalytics(r.Context(), start, end, now)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if cache != nil {
		if err := cache.SetJSON(r.Context(), key, result, cacheTTL); err != nil {
			logger.Warn("analytics cache write failed", zap.Error(err))
		}
	}
	respond(w, http.StatusOK, result)
}

func computeSalesAnalytics(ctx context.Context, start, end, now time.Time) (SalesAnalyticsResult, error) {
	sa, err := newSalesAnalytics(start, end)
	if err != nil {
		return SalesAnalyticsResult{}, err
	}

	var result SalesAnalyticsResult
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := sa.RevenueByCategory(gctx)
		result.RevenueByCategory = rows
		return err
	})
	g.Go(func() error {
		rows, err := sa.TopSellingProductsByCountry(gctx)
		result.TopSellingProducts = rows
		return err
	})
	g.Go(func() error {
		rate, err := sa.CustomerChurnRate(gctx, now)
		result.CustomerChurnRate = rate
		return err
	})
	if err := g.Wait(); err != nil {
		return SalesAnalyticsResult{}, err
	}
	return result, nil
}

// invalidateAnalytics drops cached analytics after a write that changes them.
func invalidateAnalytics(ctx context.Context) {
	if cache == nil {
		return
	}
	if err := cache.InvalidatePrefix(ctx, analyticsCacheKey); err != nil {
		logger.Warn("analytics cache invalidation failed", zap.Error(err))
	}
}

// ExportSalesHandler godoc
// @Summary Export revenue by category as an xlsx workbook
// @Tags analytics
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param start_date query string true "Start date (YYYY-MM-DD)"
// @Param end_date query string true "End date (YYYY-MM-DD), inclusive"
// @Success 200 {file} file
// @Failure 400 {object} ErrorResponse
// @Router /export-sales [get]
func ExportSalesHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	startStr, endStr := q.Get("start_date"), q.Get("end_date")
	if startStr == "" || endStr == "" {
		errorJSON(w, http.StatusBadRequest, errMissingDates)
		return
	}

	start, end, err := parseWindow(startStr, endStr)
	if err != nil {
		errorJSON(w, http.StatusBadRequest, err.Error())
		return
	}
	sa, err := newSalesAnalytics(start, end)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rows, err := sa.RevenueByCategory(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := report.WriteSalesReport(&buf, rows); err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", report.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.Filename))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		logger.Error("failed to write sales report", zap.Error(err))
	}
}
