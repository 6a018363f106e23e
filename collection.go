package main

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"osoulapi/models"
	"osoulapi/pkg/reportmath"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// accountSortColumns is the allow-list for the accounts listing sortBy param.
var accountSortColumns = map[string]string{
	"outstanding":     "collection_cases.total_outstanding",
	"dpd":             "finance_accounts.dpd",
	"lastPaymentDate": "collection_cases.last_payment_date",
	"customerName":    "customers.first_name",
	"status":          "collection_cases.status",
	"createdAt":       "collection_cases.created_at",
}

// accountRow is the joined projection behind the accounts listing.
type accountRow struct {
	CaseID             uint
	CaseStatus         string
	Priority           string
	TotalOutstanding   decimal.Decimal
	LastPaymentDate    *time.Time
	LastContactDate    *time.Time
	NextActionDate     *time.Time
	CaseCreatedAt      time.Time
	CustomerID         uint
	FirstName          string
	LastName           string
	FirstNameAr        string
	LastNameAr         string
	NationalID         string
	RiskCategory       string
	AccountID          uint
	ProductType        string
	OutstandingAmount  decimal.Decimal
	MonthlyInstallment decimal.Decimal
	DPD                int
	Bucket             string
	BranchCode         string
	AccountStatus      string
	CollectorFirstName string
	CollectorLastName  string
}

func (s *Server) accountQuery() *gorm.DB {
	return s.db.Table("collection_cases").
		Select(`collection_cases.id AS case_id,
			collection_cases.status AS case_status,
			collection_cases.priority,
			collection_cases.total_outstanding,
			collection_cases.last_payment_date,
			collection_cases.last_contact_date,
			collection_cases.next_action_date,
			collection_cases.created_at AS case_created_at,
			customers.id AS customer_id,
			customers.first_name, customers.last_name,
			customers.first_name_ar, customers.last_name_ar,
			customers.national_id, customers.risk_category,
			finance_accounts.id AS account_id,
			finance_accounts.product_type,
			finance_accounts.outstanding_amount,
			finance_accounts.monthly_installment,
			finance_accounts.dpd, finance_accounts.bucket,
			finance_accounts.branch_code, finance_accounts.account_status,
			collectors.first_name AS collector_first_name,
			collectors.last_name AS collector_last_name`).
		Joins("JOIN customers ON customers.id = collection_cases.customer_id").
		Joins("JOIN finance_accounts ON finance_accounts.id = collection_cases.account_id").
		Joins("LEFT JOIN users AS collectors ON collectors.id = collection_cases.assigned_collector_id")
}

func applyAccountFilters(q *gorm.DB, status, search, branch string, from, to *time.Time) *gorm.DB {
	if branch != "" {
		q = q.Where("finance_accounts.branch_code = ?", branch)
	}
	if from != nil {
		q = q.Where("collection_cases.created_at >= ?", *from)
	}
	if to != nil {
		q = q.Where("collection_cases.created_at < ?", to.AddDate(0, 0, 1))
	}
	if status != "" {
		if aliases := models.CaseStatusAlias(status); aliases != nil {
			q = q.Where("collection_cases.status IN ?", aliases)
		} else {
			q = q.Where("collection_cases.status = ?", status)
		}
	}
	if search != "" {
		like := "%" + search + "%"
		q = q.Where(`customers.first_name ILIKE ? OR customers.last_name ILIKE ?
			OR customers.first_name_ar ILIKE ? OR customers.last_name_ar ILIKE ?
			OR customers.national_id ILIKE ?`, like, like, like, like, like)
	}
	return q
}

func accountResponse(row accountRow, now time.Time) gin.H {
	collectorName := "Unassigned"
	if n := (models.User{FirstName: row.CollectorFirstName, LastName: row.CollectorLastName}).FullName(); n != "" {
		collectorName = n
	}
	customer := models.Customer{
		FirstName: row.FirstName, LastName: row.LastName,
		FirstNameAr: row.FirstNameAr, LastNameAr: row.LastNameAr,
	}
	return gin.H{
		"caseId":     row.CaseID,
		"caseNumber": caseNumber(row.CaseID),
		"customerInfo": gin.H{
			"id":           row.CustomerID,
			"name":         customer.FullName(),
			"nameAr":       customer.FullNameAr(),
			"nationalId":   row.NationalID,
			"riskCategory": row.RiskCategory,
		},
		"accountInfo": gin.H{
			"id":          row.AccountID,
			"productType": row.ProductType,
			"outstandingAmount": gin.H{
				"raw":       row.OutstandingAmount,
				"formatted": reportmath.FormatSAR(row.OutstandingAmount),
			},
			"monthlyInstallment": gin.H{
				"raw":       row.MonthlyInstallment,
				"formatted": reportmath.FormatSAR(row.MonthlyInstallment),
			},
			"dpd":           row.DPD,
			"bucket":        row.Bucket,
			"branchCode":    row.BranchCode,
			"accountStatus": row.AccountStatus,
		},
		"caseInfo": gin.H{
			"status":   row.CaseStatus,
			"priority": row.Priority,
			"totalOutstanding": gin.H{
				"raw":       row.TotalOutstanding,
				"formatted": reportmath.FormatSAR(row.TotalOutstanding),
			},
			"assignedCollector": collectorName,
			"daysOverdue":       reportmath.DaysOverdue(row.LastPaymentDate, now),
			"lastPaymentDate":   row.LastPaymentDate,
			"lastContactDate":   row.LastContactDate,
			"nextActionDate":    row.NextActionDate,
			"createdAt":         row.CaseCreatedAt,
		},
	}
}

func caseNumber(id uint) string {
	return fmt.Sprintf("CASE%05d", id)
}

func (s *Server) listAccounts(c *gin.Context) {
	page := intQuery(c, "page", 1)
	limit := intQuery(c, "limit", 20)
	status := c.Query("status")
	search := c.Query("search")
	branch := c.Query("branch")
	from := dateQuery(c, "startDate")
	to := dateQuery(c, "endDate")

	base := applyAccountFilters(s.accountQuery(), status, search, branch, from, to)

	var total int64
	countQ := applyAccountFilters(s.db.Table("collection_cases").
		Joins("JOIN customers ON customers.id = collection_cases.customer_id").
		Joins("JOIN finance_accounts ON finance_accounts.id = collection_cases.account_id"),
		status, search, branch, from, to)
	if err := countQ.Count(&total).Error; err != nil {
		s.storeError(c, "listAccounts", err)
		return
	}

	pg := reportmath.Paginate(page, limit, total)
	order := reportmath.OrderClause(accountSortColumns,
		c.Query("sortBy"), c.Query("sortOrder"), "collection_cases.created_at DESC")

	var rows []accountRow
	if err := base.Order(order).Limit(pg.RecordsPerPage).Offset(pg.Offset()).
		Scan(&rows).Error; err != nil {
		s.storeError(c, "listAccounts", err)
		return
	}

	now := time.Now()
	accounts := make([]gin.H, 0, len(rows))
	totalOutstanding := decimal.Zero
	statusCounts := map[string]int{}
	for _, row := range rows {
		accounts = append(accounts, accountResponse(row, now))
		totalOutstanding = totalOutstanding.Add(row.TotalOutstanding)
		statusCounts[row.CaseStatus]++
	}

	c.JSON(http.StatusOK, gin.H{
		"accounts":   accounts,
		"pagination": pg,
		"summary": gin.H{
			"totalCases":                total,
			"totalOutstanding":          totalOutstanding,
			"totalOutstandingFormatted": reportmath.FormatSAR(totalOutstanding),
			"statusCounts":              statusCounts,
		},
	})
}

func (s *Server) accountDetail(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var row accountRow
	err := s.accountQuery().Where("collection_cases.id = ?", id).Scan(&row).Error
	if err != nil {
		s.storeError(c, "accountDetail", err)
		return
	}
	if row.CaseID == 0 {
		fail(c, http.StatusNotFound, "collection account not found")
		return
	}

	type activityRow struct {
		ID               uint
		ActivityType     string
		ActivityResult   string
		ActivityDatetime time.Time
		PromiseAmount    decimal.Decimal
		PromiseDate      *time.Time
		Notes            string
		FirstName        string
		LastName         string
	}
	var acts []activityRow
	err = s.db.Table("collection_activities").
		Select(`collection_activities.id, collection_activities.activity_type,
			collection_activities.activity_result, collection_activities.activity_datetime,
			collection_activities.promise_amount, collection_activities.promise_date,
			collection_activities.notes, users.first_name, users.last_name`).
		Joins("LEFT JOIN users ON users.id = collection_activities.collector_id").
		Where("collection_activities.case_id = ?", id).
		Order("collection_activities.activity_datetime DESC").
		Scan(&acts).Error
	if err != nil {
		s.storeError(c, "accountDetail", err)
		return
	}

	activities := make([]gin.H, 0, len(acts))
	for _, a := range acts {
		collector := "Unassigned"
		if n := (models.User{FirstName: a.FirstName, LastName: a.LastName}).FullName(); n != "" {
			collector = n
		}
		entry := gin.H{
			"id":               a.ID,
			"activityType":     a.ActivityType,
			"activityResult":   a.ActivityResult,
			"activityDatetime": a.ActivityDatetime,
			"collectorName":    collector,
			"notes":            a.Notes,
			"promiseDate":      a.PromiseDate,
		}
		if a.PromiseAmount.IsPositive() {
			entry["promiseAmount"] = gin.H{
				"raw":       a.PromiseAmount,
				"formatted": reportmath.FormatSAR(a.PromiseAmount),
			}
		}
		activities = append(activities, entry)
	}

	var payments []models.PaymentTransaction
	err = s.db.Where("account_id = ?", row.AccountID).
		Order("payment_date DESC").Limit(10).Find(&payments).Error
	if err != nil {
		s.storeError(c, "accountDetail", err)
		return
	}
	paymentList := make([]gin.H, 0, len(payments))
	for _, p := range payments {
		paymentList = append(paymentList, gin.H{
			"id":            p.ID,
			"paymentDate":   p.PaymentDate,
			"amount":        p.PaymentAmount,
			"formatted":     reportmath.FormatSAR(p.PaymentAmount),
			"paymentMethod": p.PaymentMethod,
			"status":        p.TransactionStatus,
			"receiptNumber": p.ReceiptNumber,
		})
	}

	detail := accountResponse(row, time.Now())
	detail["activities"] = activities
	detail["recentPayments"] = paymentList
	c.JSON(http.StatusOK, detail)
}

func (s *Server) dailyReport(c *gin.Context) {
	day := time.Now()
	if t := dateQuery(c, "date"); t != nil {
		day = *t
	}
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	dayEnd := dayStart.Add(24*time.Hour - time.Second)

	type dailyActivity struct {
		ID               uint
		CaseID           uint
		ActivityType     string
		ActivityResult   string
		ActivityDatetime time.Time
		PromiseAmount    decimal.Decimal
		PromiseDate      *time.Time
		FirstName        string
		LastName         string
	}
	actQ := s.db.Table("collection_activities").
		Select(`collection_activities.id, collection_activities.case_id,
			collection_activities.activity_type, collection_activities.activity_result,
			collection_activities.activity_datetime, collection_activities.promise_amount,
			collection_activities.promise_date, users.first_name, users.last_name`).
		Joins("LEFT JOIN users ON users.id = collection_activities.collector_id").
		Where("collection_activities.activity_datetime BETWEEN ? AND ?", dayStart, dayEnd)
	payQ := s.db.Model(&models.PaymentTransaction{}).
		Where("payment_date BETWEEN ? AND ? AND transaction_status = ?", dayStart, dayEnd, "completed")
	if collector := intQuery(c, "collector", 0); collector > 0 {
		actQ = actQ.Where("collection_activities.collector_id = ?", collector)
		payQ = payQ.Where("collected_by_id = ?", collector)
	}

	var acts []dailyActivity
	if err := actQ.Order("collection_activities.activity_datetime").Scan(&acts).Error; err != nil {
		s.storeError(c, "dailyReport", err)
		return
	}
	var payments []models.PaymentTransaction
	if err := payQ.Order("payment_date").Find(&payments).Error; err != nil {
		s.storeError(c, "dailyReport", err)
		return
	}

	byType := map[string]int{}
	byResult := map[string]int{}
	ptpTotal := decimal.Zero
	ptpCount := 0
	activityList := make([]gin.H, 0, len(acts))
	for _, a := range acts {
		byType[a.ActivityType]++
		if a.ActivityResult != "" {
			byResult[a.ActivityResult]++
		}
		if a.PromiseAmount.IsPositive() {
			ptpTotal = ptpTotal.Add(a.PromiseAmount)
			ptpCount++
		}
		collector := "Unassigned"
		if n := (models.User{FirstName: a.FirstName, LastName: a.LastName}).FullName(); n != "" {
			collector = n
		}
		activityList = append(activityList, gin.H{
			"id":               a.ID,
			"caseNumber":       caseNumber(a.CaseID),
			"activityType":     a.ActivityType,
			"activityResult":   a.ActivityResult,
			"activityDatetime": a.ActivityDatetime,
			"collectorName":    collector,
			"promiseAmount":    a.PromiseAmount,
			"promiseDate":      a.PromiseDate,
		})
	}

	byMethod := map[string]int{}
	collected := decimal.Zero
	paymentList := make([]gin.H, 0, len(payments))
	for _, p := range payments {
		byMethod[p.PaymentMethod]++
		collected = collected.Add(p.PaymentAmount)
		paymentList = append(paymentList, gin.H{
			"id":            p.ID,
			"paymentDate":   p.PaymentDate,
			"amount":        p.PaymentAmount,
			"formatted":     reportmath.FormatSAR(p.PaymentAmount),
			"paymentMethod": p.PaymentMethod,
			"receiptNumber": p.ReceiptNumber,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"date": dayStart.Format("2006-01-02"),
		"summary": gin.H{
			"totalActivities":         len(acts),
			"totalPayments":           len(payments),
			"totalCollected":          collected,
			"totalCollectedFormatted": reportmath.FormatSAR(collected),
			"promisesObtained":        ptpCount,
			"promisedAmount":          ptpTotal,
			"promisedAmountFormatted": reportmath.FormatSAR(ptpTotal),
		},
		"activityBreakdown": gin.H{"byType": byType, "byResult": byResult},
		"paymentBreakdown":  gin.H{"byMethod": byMethod},
		"activities":        activityList,
		"payments":          paymentList,
	})
}

// firstOrNotFound wraps the common lookup-or-404 pattern for GORM First calls.
func (s *Server) firstOrNotFound(c *gin.Context, funcName string, dest any, query *gorm.DB) bool {
	err := query.First(dest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		fail(c, http.StatusNotFound, "not found")
		return false
	}
	if err != nil {
		s.storeError(c, funcName, err)
		return false
	}
	return true
}
