package main

import (
	"net/http"
	"sort"
	"time"

	"osoulapi/pkg/reportmath"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// trendTarget is the per-period collection target shown alongside trend
// series until branch targets are broken down below monthly granularity.
var trendTarget = decimal.NewFromInt(400000)

// collectorDefaultTarget applies when a collector's branch has no target row
// for the requested period.
var collectorDefaultTarget = decimal.NewFromInt(150000)

func (s *Server) dashboardSummary(c *gin.Context) {
	branch := c.Query("branch")

	type portfolioStats struct {
		TotalAccounts    int64
		TotalOutstanding decimal.Decimal
		AvgDPD           decimal.Decimal
		NPLAmount        decimal.Decimal
	}
	var pf portfolioStats
	pq := s.db.Table("finance_accounts").
		Select(`COUNT(*) AS total_accounts,
			COALESCE(SUM(outstanding_amount), 0) AS total_outstanding,
			COALESCE(AVG(dpd), 0) AS avg_dpd,
			COALESCE(SUM(outstanding_amount) FILTER (WHERE dpd > 90), 0) AS npl_amount`).
		Where("dpd > 0")
	if branch != "" {
		pq = pq.Where("branch_code = ?", branch)
	}
	if err := pq.Scan(&pf).Error; err != nil {
		s.storeError(c, "dashboardSummary", err)
		return
	}

	var activeCases int64
	cq := s.db.Table("collection_cases").
		Joins("JOIN finance_accounts ON finance_accounts.id = collection_cases.account_id").
		Where("collection_cases.status IN ?", []string{"new", "in_progress"})
	if branch != "" {
		cq = cq.Where("finance_accounts.branch_code = ?", branch)
	}
	if err := cq.Count(&activeCases).Error; err != nil {
		s.storeError(c, "dashboardSummary", err)
		return
	}

	since := time.Now().AddDate(0, 0, -30)
	var collected decimal.Decimal
	colQ := s.db.Table("payment_transactions").
		Select("COALESCE(SUM(payment_amount), 0)").
		Joins("JOIN finance_accounts ON finance_accounts.id = payment_transactions.account_id").
		Where("payment_transactions.payment_date >= ? AND payment_transactions.transaction_status = ?", since, "completed")
	if branch != "" {
		colQ = colQ.Where("finance_accounts.branch_code = ?", branch)
	}
	if err := colQ.Scan(&collected).Error; err != nil {
		s.storeError(c, "dashboardSummary", err)
		return
	}

	type ptpStats struct {
		Obtained int64
		Kept     int64
	}
	var ptp ptpStats
	ptpQ := s.db.Table("collection_activities").
		Select(`COUNT(*) AS obtained,
			COUNT(*) FILTER (WHERE EXISTS (
				SELECT 1 FROM payment_transactions p
				JOIN collection_cases cc ON cc.id = collection_activities.case_id
				WHERE p.account_id = cc.account_id
				  AND p.transaction_status = 'completed'
				  AND p.payment_date >= collection_activities.activity_datetime
				  AND p.payment_date <= collection_activities.promise_date
			)) AS kept`).
		Joins("JOIN collection_cases ON collection_cases.id = collection_activities.case_id").
		Joins("JOIN finance_accounts ON finance_accounts.id = collection_cases.account_id").
		Where("collection_activities.promise_amount > 0 AND collection_activities.promise_date IS NOT NULL").
		Where("collection_activities.activity_datetime >= ?", since)
	if branch != "" {
		ptpQ = ptpQ.Where("finance_accounts.branch_code = ?", branch)
	}
	if err := ptpQ.Scan(&ptp).Error; err != nil {
		s.storeError(c, "dashboardSummary", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"portfolio": gin.H{
			"totalDelinquentAccounts":   pf.TotalAccounts,
			"totalOutstanding":          pf.TotalOutstanding,
			"totalOutstandingFormatted": reportmath.FormatSAR(pf.TotalOutstanding),
			"activeCases":               activeCases,
			"averageDpd":                pf.AvgDPD.Round(1),
		},
		"npl": gin.H{
			"amount":          pf.NPLAmount,
			"amountFormatted": reportmath.FormatSAR(pf.NPLAmount),
			"ratio":           reportmath.Percent(pf.NPLAmount, pf.TotalOutstanding),
		},
		"collections": gin.H{
			"last30Days":          collected,
			"last30DaysFormatted": reportmath.FormatSAR(collected),
			"collectionRate":      reportmath.Percent(collected, pf.TotalOutstanding),
		},
		"promisesToPay": gin.H{
			"obtained": ptp.Obtained,
			"kept":     ptp.Kept,
			"keptRate": reportmath.RatePercent(ptp.Kept, ptp.Obtained),
		},
	})
}

func trendWindow(period string, now time.Time) (time.Time, string) {
	switch period {
	case reportmath.PeriodWeekly:
		return now.AddDate(0, 0, -7*12), "week"
	case reportmath.PeriodMonthly:
		return now.AddDate(0, -12, 0), "month"
	default:
		return now.AddDate(0, 0, -30), "day"
	}
}

func (s *Server) collectionTrends(c *gin.Context) {
	period := c.Param("period")
	if !reportmath.ValidPeriod(period) {
		fail(c, http.StatusBadRequest, "period must be daily, weekly or monthly")
		return
	}
	branch := c.Query("branch")
	now := time.Now()
	start, trunc := trendWindow(period, now)

	type trendRow struct {
		Period         time.Time
		TotalCollected decimal.Decimal
		PayingAccounts int64
	}
	payQ := s.db.Table("payment_transactions").
		Select(`date_trunc(?, payment_transactions.payment_date) AS period,
			COALESCE(SUM(payment_transactions.payment_amount), 0) AS total_collected,
			COUNT(DISTINCT payment_transactions.account_id) AS paying_accounts`, trunc).
		Where("payment_transactions.payment_date >= ? AND payment_transactions.transaction_status = ?", start, "completed").
		Group("1").Order("1")
	if branch != "" {
		payQ = payQ.
			Joins("JOIN finance_accounts ON finance_accounts.id = payment_transactions.account_id").
			Where("finance_accounts.branch_code = ?", branch)
	}
	var rows []trendRow
	if err := payQ.Scan(&rows).Error; err != nil {
		s.storeError(c, "collectionTrends", err)
		return
	}

	type ptpRow struct {
		Period   time.Time
		Promises int64
	}
	ptpQ := s.db.Table("collection_activities").
		Select("date_trunc(?, collection_activities.activity_datetime) AS period, COUNT(*) AS promises", trunc).
		Where("collection_activities.activity_datetime >= ? AND collection_activities.promise_amount > 0", start).
		Group("1").Order("1")
	if branch != "" {
		ptpQ = ptpQ.
			Joins("JOIN collection_cases ON collection_cases.id = collection_activities.case_id").
			Joins("JOIN finance_accounts ON finance_accounts.id = collection_cases.account_id").
			Where("finance_accounts.branch_code = ?", branch)
	}
	var ptps []ptpRow
	err := ptpQ.Scan(&ptps).Error
	if err != nil {
		s.storeError(c, "collectionTrends", err)
		return
	}

	type trendPoint struct {
		Period         string          `json:"period"`
		TotalCollected decimal.Decimal `json:"totalCollected"`
		PayingAccounts int64           `json:"payingAccounts"`
		PromisesToPay  int64           `json:"promisesToPay"`
		Target         decimal.Decimal `json:"target"`
	}
	points := map[string]trendPoint{}
	for _, r := range rows {
		key := reportmath.PeriodKey(r.Period, period)
		points[key] = trendPoint{
			Period: key, TotalCollected: r.TotalCollected,
			PayingAccounts: r.PayingAccounts, Target: trendTarget,
		}
	}
	for _, p := range ptps {
		key := reportmath.PeriodKey(p.Period, period)
		pt, ok := points[key]
		if !ok {
			pt = trendPoint{Period: key, TotalCollected: decimal.Zero, Target: trendTarget}
		}
		pt.PromisesToPay = p.Promises
		points[key] = pt
	}

	series := reportmath.FillSeries(start, now, period,
		func(key string) (trendPoint, bool) { pt, ok := points[key]; return pt, ok },
		func(t time.Time) trendPoint {
			return trendPoint{
				Period:         reportmath.PeriodKey(t, period),
				TotalCollected: decimal.Zero,
				Target:         trendTarget,
			}
		},
	)

	c.JSON(http.StatusOK, gin.H{"period": period, "trends": series})
}

func (s *Server) agingAnalysis(c *gin.Context) {
	branch := c.Query("branch")

	// Grouped by dpd in SQL, bucketed in Go so the bucket boundaries live in
	// exactly one place.
	type dpdRow struct {
		DPD    int
		Count  int64
		Amount decimal.Decimal
	}
	var rows []dpdRow
	q := s.db.Table("finance_accounts").
		Select(`dpd, COUNT(*) AS count,
			COALESCE(SUM(outstanding_amount), 0) AS amount`).
		Group("dpd")
	if branch != "" {
		q = q.Where("branch_code = ?", branch)
	}
	if err := q.Scan(&rows).Error; err != nil {
		s.storeError(c, "agingAnalysis", err)
		return
	}

	type bucketAgg struct {
		Count  int64
		Amount decimal.Decimal
	}
	byBucket := map[string]bucketAgg{}
	total := decimal.Zero
	for _, r := range rows {
		label := reportmath.AgingBucket(r.DPD)
		agg := byBucket[label]
		agg.Count += r.Count
		agg.Amount = agg.Amount.Add(r.Amount)
		byBucket[label] = agg
		total = total.Add(r.Amount)
	}

	buckets := make([]gin.H, 0, len(reportmath.AgingBuckets))
	for _, label := range reportmath.AgingBuckets {
		r := byBucket[label]
		buckets = append(buckets, gin.H{
			"bucket":          label,
			"count":           r.Count,
			"amount":          r.Amount,
			"amountFormatted": reportmath.FormatSAR(r.Amount),
			"percentage":      reportmath.Percent(r.Amount, total),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"buckets":        buckets,
		"totalAmount":    total,
		"totalFormatted": reportmath.FormatSAR(total),
	})
}

func (s *Server) collectorPerformance(c *gin.Context) {
	branch := c.Query("branch")
	start, end := dateRange(c, 30)

	type perfRow struct {
		CollectorID      uint
		FirstName        string
		LastName         string
		CaseCount        int64
		TotalOutstanding decimal.Decimal
		TotalCollected   decimal.Decimal
		PromisesObtained int64
		PromisesKept     int64
	}

	// Pre-aggregated per-collector subqueries LEFT JOINed onto users so one
	// collector's payments never multiply their activity rows.
	caseAgg := s.db.Table("collection_cases").
		Select(`assigned_collector_id AS cid, COUNT(*) AS case_count,
			COALESCE(SUM(total_outstanding), 0) AS total_outstanding`).
		Where("assigned_collector_id IS NOT NULL").
		Group("assigned_collector_id")
	payAgg := s.db.Table("payment_transactions").
		Select("collected_by_id AS cid, COALESCE(SUM(payment_amount), 0) AS total_collected").
		Where("collected_by_id IS NOT NULL AND transaction_status = 'completed'").
		Where("payment_date BETWEEN ? AND ?", start, end).
		Group("collected_by_id")
	ptpAgg := s.db.Table("collection_activities").
		Select(`collector_id AS cid, COUNT(*) AS promises_obtained,
			COUNT(*) FILTER (WHERE EXISTS (
				SELECT 1 FROM payment_transactions p
				JOIN collection_cases cc ON cc.id = collection_activities.case_id
				WHERE p.account_id = cc.account_id
				  AND p.transaction_status = 'completed'
				  AND p.payment_date >= collection_activities.activity_datetime
				  AND p.payment_date <= collection_activities.promise_date
			)) AS promises_kept`).
		Where("collector_id IS NOT NULL AND promise_amount > 0 AND promise_date IS NOT NULL").
		Where("activity_datetime BETWEEN ? AND ?", start, end).
		Group("collector_id")

	q := s.db.Table("users").
		Select(`users.id AS collector_id, users.first_name, users.last_name,
			COALESCE(ca.case_count, 0) AS case_count,
			COALESCE(ca.total_outstanding, 0) AS total_outstanding,
			COALESCE(pa.total_collected, 0) AS total_collected,
			COALESCE(pt.promises_obtained, 0) AS promises_obtained,
			COALESCE(pt.promises_kept, 0) AS promises_kept`).
		Joins("LEFT JOIN (?) AS ca ON ca.cid = users.id", caseAgg).
		Joins("LEFT JOIN (?) AS pa ON pa.cid = users.id", payAgg).
		Joins("LEFT JOIN (?) AS pt ON pt.cid = users.id", ptpAgg).
		Where("users.role = ? AND users.is_active = ?", "collector", true).
		Order("total_collected DESC")
	if branch != "" {
		q = q.Where(`EXISTS (
			SELECT 1 FROM collection_cases k
			JOIN finance_accounts fa ON fa.id = k.account_id
			WHERE k.assigned_collector_id = users.id AND fa.branch_code = ?)`, branch)
	}

	var rows []perfRow
	if err := q.Scan(&rows).Error; err != nil {
		s.storeError(c, "collectorPerformance", err)
		return
	}

	collectors := make([]gin.H, 0, len(rows))
	for _, r := range rows {
		target := collectorDefaultTarget
		collectors = append(collectors, gin.H{
			"collectorId":      r.CollectorID,
			"collectorName":    r.FirstName + " " + r.LastName,
			"caseCount":        r.CaseCount,
			"totalOutstanding": r.TotalOutstanding,
			"totalCollected":   r.TotalCollected,
			"collectedFormatted": reportmath.FormatSAR(r.TotalCollected),
			"target":           target,
			"achievement":      reportmath.Percent(r.TotalCollected, target),
			"promisesObtained": r.PromisesObtained,
			"promisesKept":     r.PromisesKept,
			"ptpKeptRate":      reportmath.RatePercent(r.PromisesKept, r.PromisesObtained),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"startDate":  start.Format("2006-01-02"),
		"endDate":    end.Format("2006-01-02"),
		"collectors": collectors,
	})
}

func (s *Server) productNPF(c *gin.Context) {
	branch := c.Query("branch")

	type productRow struct {
		ProductType      string
		AccountCount     int64
		TotalOutstanding decimal.Decimal
		NPFAmount        decimal.Decimal `gorm:"column:npf_amount"`
	}
	var rows []productRow
	q := s.db.Table("finance_accounts").
		Select(`product_type, COUNT(*) AS account_count,
			COALESCE(SUM(outstanding_amount), 0) AS total_outstanding,
			COALESCE(SUM(outstanding_amount) FILTER (WHERE dpd > 90), 0) AS npf_amount`).
		Group("product_type")
	if branch != "" {
		q = q.Where("branch_code = ?", branch)
	}
	if err := q.Scan(&rows).Error; err != nil {
		s.storeError(c, "productNPF", err)
		return
	}

	ratios := make([]decimal.Decimal, len(rows))
	for i, r := range rows {
		ratios[i] = reportmath.Percent(r.NPFAmount, r.TotalOutstanding)
	}
	order := make([]int, len(rows))
	for i := range order {
		order[i] = i
	}
	// worst ratio first
	sort.SliceStable(order, func(a, b int) bool {
		return ratios[order[a]].GreaterThan(ratios[order[b]])
	})

	products := make([]gin.H, 0, len(rows))
	for _, i := range order {
		r := rows[i]
		products = append(products, gin.H{
			"productType":        r.ProductType,
			"accountCount":       r.AccountCount,
			"totalOutstanding":   r.TotalOutstanding,
			"npfAmount":          r.NPFAmount,
			"npfAmountFormatted": reportmath.FormatSAR(r.NPFAmount),
			"npfRatio":           ratios[i],
		})
	}

	c.JSON(http.StatusOK, gin.H{"products": products})
}
