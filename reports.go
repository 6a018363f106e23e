package main

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"osoulapi/pkg/reportmath"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

type monthlyRow struct {
	Month            int
	BranchID         uint
	BranchName       string
	BranchCode       string
	TotalCollected   decimal.Decimal
	TransactionCount int64
	TargetAmount     decimal.Decimal
}

func (s *Server) monthlyComparison(c *gin.Context) {
	year := intQuery(c, "year", time.Now().Year())
	if year < 2020 {
		fail(c, http.StatusBadRequest, "year must be 2020 or later")
		return
	}

	q := s.db.Table("collection_transactions AS t").
		Select(`EXTRACT(MONTH FROM t.transaction_date)::int AS month,
			b.id AS branch_id, b.name AS branch_name, b.code AS branch_code,
			COALESCE(SUM(t.amount), 0) AS total_collected,
			COUNT(t.id) AS transaction_count,
			COALESCE(MAX(ct.target_amount), 0) AS target_amount`).
		Joins("JOIN branches b ON b.id = t.branch_id").
		Joins(`LEFT JOIN collection_targets ct ON ct.branch_id = b.id
			AND ct.target_year = ? AND ct.target_month = EXTRACT(MONTH FROM t.transaction_date)::int`, year).
		Where("EXTRACT(YEAR FROM t.transaction_date) = ? AND t.status = ?", year, "completed").
		Group("1, b.id, b.name, b.code").
		Order("1, b.name")
	if branchID := intQuery(c, "branchId", 0); branchID > 0 {
		q = q.Where("b.id = ?", branchID)
	}

	var rows []monthlyRow
	if err := q.Scan(&rows).Error; err != nil {
		s.storeError(c, "monthlyComparison", err)
		return
	}

	months := map[string][]gin.H{}
	for _, r := range rows {
		key := time.Month(r.Month).String()
		months[key] = append(months[key], gin.H{
			"branchId":           r.BranchID,
			"branchName":         r.BranchName,
			"branchCode":         r.BranchCode,
			"totalCollected":     r.TotalCollected,
			"collectedFormatted": reportmath.FormatSAR(r.TotalCollected),
			"transactionCount":   r.TransactionCount,
			"target":             r.TargetAmount,
			"achievement":        reportmath.Percent(r.TotalCollected, r.TargetAmount),
		})
	}

	c.JSON(http.StatusOK, gin.H{"year": year, "months": months})
}

func (s *Server) quarterlyComparison(c *gin.Context) {
	year := intQuery(c, "year", time.Now().Year())
	if year < 2020 {
		fail(c, http.StatusBadRequest, "year must be 2020 or later")
		return
	}

	type quarterRow struct {
		Quarter          int
		BranchID         uint
		BranchName       string
		BranchCode       string
		TotalCollected   decimal.Decimal
		TransactionCount int64
		TargetAmount     decimal.Decimal
	}
	// Transactions and targets are aggregated separately before joining: a
	// row-level join against the three monthly target rows of a quarter would
	// multiply the transaction sums.
	txAgg := s.db.Table("collection_transactions").
		Select(`EXTRACT(QUARTER FROM transaction_date)::int AS quarter,
			branch_id,
			COALESCE(SUM(amount), 0) AS total_collected,
			COUNT(id) AS transaction_count`).
		Where("EXTRACT(YEAR FROM transaction_date) = ? AND status = ?", year, "completed").
		Group("1, branch_id")
	tgtAgg := s.db.Table("collection_targets").
		Select(`(target_month + 2) / 3 AS quarter, branch_id,
			COALESCE(SUM(target_amount), 0) AS target_amount`).
		Where("target_year = ?", year).
		Group("1, branch_id")

	q := s.db.Table("(?) AS tx", txAgg).
		Select(`tx.quarter, b.id AS branch_id, b.name AS branch_name, b.code AS branch_code,
			tx.total_collected, tx.transaction_count,
			COALESCE(tg.target_amount, 0) AS target_amount`).
		Joins("JOIN branches b ON b.id = tx.branch_id").
		Joins("LEFT JOIN (?) AS tg ON tg.branch_id = tx.branch_id AND tg.quarter = tx.quarter", tgtAgg).
		Order("tx.quarter, b.name")
	if branchID := intQuery(c, "branchId", 0); branchID > 0 {
		q = q.Where("b.id = ?", branchID)
	}

	var rows []quarterRow
	if err := q.Scan(&rows).Error; err != nil {
		s.storeError(c, "quarterlyComparison", err)
		return
	}

	quarters := map[string][]gin.H{}
	for _, r := range rows {
		key := fmt.Sprintf("Q%d", r.Quarter)
		quarters[key] = append(quarters[key], gin.H{
			"branchId":           r.BranchID,
			"branchName":         r.BranchName,
			"branchCode":         r.BranchCode,
			"totalCollected":     r.TotalCollected,
			"collectedFormatted": reportmath.FormatSAR(r.TotalCollected),
			"transactionCount":   r.TransactionCount,
			"target":             r.TargetAmount,
			"achievement":        reportmath.Percent(r.TotalCollected, r.TargetAmount),
		})
	}

	c.JSON(http.StatusOK, gin.H{"year": year, "quarters": quarters})
}

func (s *Server) branchComparison(c *gin.Context) {
	start, end := dateRange(c, 30)

	type branchRow struct {
		BranchID         uint
		BranchName       string
		BranchCode       string
		Region           string
		City             string
		TotalCollected   decimal.Decimal
		TransactionCount int64
		UniqueCustomers  int64
		ActiveDays       int64
		CollectionRank   int
	}
	q := s.db.Table("branches b").
		Select(`b.id AS branch_id, b.name AS branch_name, b.code AS branch_code,
			b.region, b.city,
			COALESCE(SUM(t.amount), 0) AS total_collected,
			COUNT(t.id) AS transaction_count,
			COUNT(DISTINCT t.customer_id) AS unique_customers,
			COUNT(DISTINCT t.transaction_date::date) AS active_days,
			DENSE_RANK() OVER (ORDER BY COALESCE(SUM(t.amount), 0) DESC) AS collection_rank`).
		Joins(`LEFT JOIN collection_transactions t ON t.branch_id = b.id
			AND t.transaction_date BETWEEN ? AND ? AND t.status = 'completed'`, start, end).
		Where("b.is_active = ?", true).
		Group("b.id, b.name, b.code, b.region, b.city").
		Order("total_collected DESC")
	if region := c.Query("region"); region != "" {
		q = q.Where("b.region = ?", region)
	}

	var rows []branchRow
	if err := q.Scan(&rows).Error; err != nil {
		s.storeError(c, "branchComparison", err)
		return
	}

	branches := make([]gin.H, 0, len(rows))
	for _, r := range rows {
		dailyAvg := decimal.Zero
		if r.ActiveDays > 0 {
			dailyAvg = r.TotalCollected.Div(decimal.NewFromInt(r.ActiveDays)).Round(2)
		}
		branches = append(branches, gin.H{
			"branchId":           r.BranchID,
			"branchName":         r.BranchName,
			"branchCode":         r.BranchCode,
			"region":             r.Region,
			"city":               r.City,
			"totalCollected":     r.TotalCollected,
			"collectedFormatted": reportmath.FormatSAR(r.TotalCollected),
			"transactionCount":   r.TransactionCount,
			"uniqueCustomers":    r.UniqueCustomers,
			"activeDays":         r.ActiveDays,
			"dailyAverage":       dailyAvg,
			"rank":               r.CollectionRank,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"startDate": start.Format("2006-01-02"),
		"endDate":   end.Format("2006-01-02"),
		"branches":  branches,
	})
}

func (s *Server) performanceTrends(c *gin.Context) {
	period := c.DefaultQuery("period", reportmath.PeriodDaily)
	if !reportmath.ValidPeriod(period) {
		fail(c, http.StatusBadRequest, "period must be daily, weekly or monthly")
		return
	}
	start, end := dateRange(c, 30)
	trunc := map[string]string{
		reportmath.PeriodDaily:   "day",
		reportmath.PeriodWeekly:  "week",
		reportmath.PeriodMonthly: "month",
	}[period]

	type trendRow struct {
		Period           time.Time
		TotalCollected   decimal.Decimal
		TransactionCount int64
		UniqueCustomers  int64
	}
	q := s.db.Table("collection_transactions").
		Select(`date_trunc(?, transaction_date) AS period,
			COALESCE(SUM(amount), 0) AS total_collected,
			COUNT(id) AS transaction_count,
			COUNT(DISTINCT customer_id) AS unique_customers`, trunc).
		Where("transaction_date BETWEEN ? AND ? AND status = ?", start, end, "completed").
		Group("1").Order("1")
	if branchID := intQuery(c, "branchId", 0); branchID > 0 {
		q = q.Where("branch_id = ?", branchID)
	}

	var rows []trendRow
	if err := q.Scan(&rows).Error; err != nil {
		s.storeError(c, "performanceTrends", err)
		return
	}

	type trendPoint struct {
		Period           string          `json:"period"`
		TotalCollected   decimal.Decimal `json:"totalCollected"`
		TransactionCount int64           `json:"transactionCount"`
		UniqueCustomers  int64           `json:"uniqueCustomers"`
	}
	points := map[string]trendPoint{}
	for _, r := range rows {
		key := reportmath.PeriodKey(r.Period, period)
		points[key] = trendPoint{
			Period: key, TotalCollected: r.TotalCollected,
			TransactionCount: r.TransactionCount, UniqueCustomers: r.UniqueCustomers,
		}
	}
	series := reportmath.FillSeries(start, end, period,
		func(key string) (trendPoint, bool) { pt, ok := points[key]; return pt, ok },
		func(t time.Time) trendPoint {
			return trendPoint{Period: reportmath.PeriodKey(t, period), TotalCollected: decimal.Zero}
		},
	)

	c.JSON(http.StatusOK, gin.H{"period": period, "trends": series})
}

func (s *Server) topPerformers(c *gin.Context) {
	start, end := dateRange(c, 30)
	limit := intQuery(c, "limit", 10)
	if limit < 1 {
		limit = 1
	}
	if limit > 50 {
		limit = 50
	}

	type branchPerf struct {
		BranchID       uint
		BranchName     string
		TotalCollected decimal.Decimal
	}
	var branches []branchPerf
	err := s.db.Table("collection_transactions t").
		Select(`b.id AS branch_id, b.name AS branch_name,
			COALESCE(SUM(t.amount), 0) AS total_collected`).
		Joins("JOIN branches b ON b.id = t.branch_id").
		Where("t.transaction_date BETWEEN ? AND ? AND t.status = ?", start, end, "completed").
		Group("b.id, b.name").
		Order("total_collected DESC").
		Limit(limit).
		Scan(&branches).Error
	if err != nil {
		s.storeError(c, "topPerformers", err)
		return
	}

	type collectorPerf struct {
		CollectorID    uint
		FirstName      string
		LastName       string
		TotalCollected decimal.Decimal
	}
	var collectors []collectorPerf
	err = s.db.Table("collection_transactions t").
		Select(`u.id AS collector_id, u.first_name, u.last_name,
			COALESCE(SUM(t.amount), 0) AS total_collected`).
		Joins("JOIN users u ON u.id = t.collector_id").
		Where("t.transaction_date BETWEEN ? AND ? AND t.status = ?", start, end, "completed").
		Group("u.id, u.first_name, u.last_name").
		Order("total_collected DESC").
		Limit(limit).
		Scan(&collectors).Error
	if err != nil {
		s.storeError(c, "topPerformers", err)
		return
	}

	branchList := make([]gin.H, 0, len(branches))
	for i, b := range branches {
		branchList = append(branchList, gin.H{
			"rank":               i + 1,
			"branchId":           b.BranchID,
			"branchName":         b.BranchName,
			"totalCollected":     b.TotalCollected,
			"collectedFormatted": reportmath.FormatSAR(b.TotalCollected),
		})
	}
	collectorList := make([]gin.H, 0, len(collectors))
	for i, cl := range collectors {
		collectorList = append(collectorList, gin.H{
			"rank":               i + 1,
			"collectorId":        cl.CollectorID,
			"collectorName":      cl.FirstName + " " + cl.LastName,
			"totalCollected":     cl.TotalCollected,
			"collectedFormatted": reportmath.FormatSAR(cl.TotalCollected),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"startDate":     start.Format("2006-01-02"),
		"endDate":       end.Format("2006-01-02"),
		"topBranches":   branchList,
		"topCollectors": collectorList,
	})
}

type periodStats struct {
	TotalCollected   decimal.Decimal
	TransactionCount int64
	UniqueCustomers  int64
	ActiveBranches   int64
	ActiveCollectors int64
}

func (s *Server) periodStats(start, end time.Time, branchID int) (periodStats, error) {
	var st periodStats
	q := s.db.Table("collection_transactions").
		Select(`COALESCE(SUM(amount), 0) AS total_collected,
			COUNT(id) AS transaction_count,
			COUNT(DISTINCT customer_id) AS unique_customers,
			COUNT(DISTINCT branch_id) AS active_branches,
			COUNT(DISTINCT collector_id) AS active_collectors`).
		Where("transaction_date BETWEEN ? AND ? AND status = ?", start, end, "completed")
	if branchID > 0 {
		q = q.Where("branch_id = ?", branchID)
	}
	err := q.Scan(&st).Error
	return st, err
}

func (s *Server) reportsSummary(c *gin.Context) {
	start, end := dateRange(c, 30)
	branchID := intQuery(c, "branchId", 0)

	current, err := s.periodStats(start, end, branchID)
	if err != nil {
		s.storeError(c, "reportsSummary", err)
		return
	}
	prevStart, prevEnd := reportmath.PreviousWindow(start, end)
	previous, err := s.periodStats(prevStart, prevEnd, branchID)
	if err != nil {
		s.storeError(c, "reportsSummary", err)
		return
	}

	avgTransaction := decimal.Zero
	if current.TransactionCount > 0 {
		avgTransaction = current.TotalCollected.Div(decimal.NewFromInt(current.TransactionCount)).Round(2)
	}

	c.JSON(http.StatusOK, gin.H{
		"startDate": start.Format("2006-01-02"),
		"endDate":   end.Format("2006-01-02"),
		"summary": gin.H{
			"totalCollected":     current.TotalCollected,
			"collectedFormatted": reportmath.FormatSAR(current.TotalCollected),
			"transactionCount":   current.TransactionCount,
			"uniqueCustomers":    current.UniqueCustomers,
			"activeBranches":     current.ActiveBranches,
			"activeCollectors":   current.ActiveCollectors,
			"averageTransaction": avgTransaction,
		},
		"comparison": gin.H{
			"previousCollected": previous.TotalCollected,
			"collectionGrowth":  reportmath.GrowthPercent(current.TotalCollected, previous.TotalCollected),
			"transactionGrowth": reportmath.GrowthPercent(
				decimal.NewFromInt(current.TransactionCount),
				decimal.NewFromInt(previous.TransactionCount)),
		},
	})
}

type exportTransaction struct {
	ID              uint
	TransactionDate time.Time
	BranchName      string
	CustomerName    string
	AccountNumber   string
	TransactionType string
	Amount          decimal.Decimal
	PaymentMethod   string
	Status          string
	ReferenceNumber string
}

func (s *Server) exportReport(c *gin.Context) {
	reportType := c.DefaultQuery("reportType", "transactions")
	format := c.DefaultQuery("format", "json")
	start, end := dateRange(c, 30)
	branchID := intQuery(c, "branchId", 0)

	var header []string
	var records [][]string

	switch reportType {
	case "transactions":
		q := s.db.Table("collection_transactions t").
			Select(`t.id, t.transaction_date, b.name AS branch_name,
				t.customer_name, t.account_number, t.transaction_type,
				t.amount, t.payment_method, t.status, t.reference_number`).
			Joins("JOIN branches b ON b.id = t.branch_id").
			Where("t.transaction_date BETWEEN ? AND ?", start, end).
			Order("t.transaction_date")
		if branchID > 0 {
			q = q.Where("t.branch_id = ?", branchID)
		}
		var rows []exportTransaction
		if err := q.Scan(&rows).Error; err != nil {
			s.storeError(c, "exportReport", err)
			return
		}
		header = []string{"ID", "Date", "Branch", "Customer", "Account", "Type", "Amount", "Method", "Status", "Reference"}
		for _, r := range rows {
			records = append(records, []string{
				strconv.FormatUint(uint64(r.ID), 10),
				r.TransactionDate.Format("2006-01-02"),
				r.BranchName, r.CustomerName, r.AccountNumber, r.TransactionType,
				r.Amount.StringFixed(2), r.PaymentMethod, r.Status, r.ReferenceNumber,
			})
		}
	case "summary":
		st, err := s.periodStats(start, end, branchID)
		if err != nil {
			s.storeError(c, "exportReport", err)
			return
		}
		header = []string{"Metric", "Value"}
		records = [][]string{
			{"Total Collected", st.TotalCollected.StringFixed(2)},
			{"Transaction Count", strconv.FormatInt(st.TransactionCount, 10)},
			{"Unique Customers", strconv.FormatInt(st.UniqueCustomers, 10)},
			{"Active Branches", strconv.FormatInt(st.ActiveBranches, 10)},
		}
	case "comparison":
		var rows []struct {
			BranchName       string
			BranchCode       string
			TotalCollected   decimal.Decimal
			TransactionCount int64
		}
		q := s.db.Table("collection_transactions t").
			Select(`b.name AS branch_name, b.code AS branch_code,
				COALESCE(SUM(t.amount), 0) AS total_collected,
				COUNT(t.id) AS transaction_count`).
			Joins("JOIN branches b ON b.id = t.branch_id").
			Where("t.transaction_date BETWEEN ? AND ? AND t.status = ?", start, end, "completed").
			Group("b.name, b.code").
			Order("total_collected DESC")
		if err := q.Scan(&rows).Error; err != nil {
			s.storeError(c, "exportReport", err)
			return
		}
		header = []string{"Branch", "Code", "Total Collected", "Transactions"}
		for _, r := range rows {
			records = append(records, []string{
				r.BranchName, r.BranchCode,
				r.TotalCollected.StringFixed(2),
				strconv.FormatInt(r.TransactionCount, 10),
			})
		}
	default:
		fail(c, http.StatusBadRequest, "reportType must be transactions, summary or comparison")
		return
	}

	filename := fmt.Sprintf("%s_%s_%s", reportType, start.Format("20060102"), end.Format("20060102"))
	switch format {
	case "json":
		out := make([]map[string]string, 0, len(records))
		for _, rec := range records {
			row := make(map[string]string, len(header))
			for i, h := range header {
				row[h] = rec[i]
			}
			out = append(out, row)
		}
		c.JSON(http.StatusOK, gin.H{"reportType": reportType, "rows": out})
	case "csv":
		var buf bytes.Buffer
		w := csv.NewWriter(&buf)
		_ = w.Write(header)
		_ = w.WriteAll(records)
		w.Flush()
		c.Header("Content-Disposition", `attachment; filename="`+filename+`.csv"`)
		c.Data(http.StatusOK, "text/csv", buf.Bytes())
	case "xlsx":
		f := excelize.NewFile()
		sheet := "Report"
		_ = f.SetSheetName("Sheet1", sheet)
		for i, h := range header {
			cell, _ := excelize.CoordinatesToCellName(i+1, 1)
			_ = f.SetCellValue(sheet, cell, h)
		}
		for rowIdx, rec := range records {
			for colIdx, v := range rec {
				cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
				_ = f.SetCellValue(sheet, cell, v)
			}
		}
		var buf bytes.Buffer
		if err := f.Write(&buf); err != nil {
			s.storeError(c, "exportReport", err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="`+filename+`.xlsx"`)
		c.Data(http.StatusOK,
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			buf.Bytes())
	default:
		fail(c, http.StatusBadRequest, "format must be json, csv or xlsx")
		return
	}
}
