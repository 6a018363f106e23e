package main

import (
	"net/http"
	"time"

	"osoulapi/models"
	"osoulapi/pkg/reportmath"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type branchRequest struct {
	Code      string `json:"branchCode" binding:"required"`
	Name      string `json:"branchName" binding:"required"`
	Region    string `json:"region"`
	City      string `json:"city"`
	ManagerID *uint  `json:"managerId"`
}

type branchUpdateRequest struct {
	Code      *string `json:"branchCode"`
	Name      *string `json:"branchName"`
	Region    *string `json:"region"`
	City      *string `json:"city"`
	ManagerID *uint   `json:"managerId"`
	IsActive  *bool   `json:"isActive"`
}

func (s *Server) listBranches(c *gin.Context) {
	type branchRow struct {
		models.Branch
		ManagerFirstName string
		ManagerLastName  string
	}
	q := s.db.Table("branches").
		Select(`branches.*, managers.first_name AS manager_first_name,
			managers.last_name AS manager_last_name`).
		Joins("LEFT JOIN users AS managers ON managers.id = branches.manager_id").
		Order("branches.name")
	switch c.Query("isActive") {
	case "true":
		q = q.Where("branches.is_active = ?", true)
	case "false":
		q = q.Where("branches.is_active = ?", false)
	}

	var rows []branchRow
	if err := q.Scan(&rows).Error; err != nil {
		s.storeError(c, "listBranches", err)
		return
	}

	branches := make([]gin.H, 0, len(rows))
	for _, r := range rows {
		managerName := ""
		if n := (models.User{FirstName: r.ManagerFirstName, LastName: r.ManagerLastName}).FullName(); n != "" {
			managerName = n
		}
		branches = append(branches, gin.H{
			"id":          r.ID,
			"branchCode":  r.Code,
			"branchName":  r.Name,
			"region":      r.Region,
			"city":        r.City,
			"managerId":   r.ManagerID,
			"managerName": managerName,
			"isActive":    r.IsActive,
			"createdAt":   r.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"branches": branches})
}

func (s *Server) getBranch(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var branch models.Branch
	if !s.firstOrNotFound(c, "getBranch", &branch, s.db.Where("id = ?", id)) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"branch": branch})
}

func (s *Server) createBranch(c *gin.Context) {
	var req branchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "branchCode and branchName are required")
		return
	}

	branch := models.Branch{
		Code:      req.Code,
		Name:      req.Name,
		Region:    req.Region,
		City:      req.City,
		ManagerID: req.ManagerID,
		IsActive:  true,
	}
	if err := s.db.Create(&branch).Error; err != nil {
		if isUniqueConstraintError(err) {
			fail(c, http.StatusConflict, "branch code already exists")
			return
		}
		s.storeError(c, "createBranch", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"branch": branch})
}

func (s *Server) updateBranch(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req branchUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	updates := map[string]any{}
	if req.Code != nil {
		updates["code"] = *req.Code
	}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Region != nil {
		updates["region"] = *req.Region
	}
	if req.City != nil {
		updates["city"] = *req.City
	}
	if req.ManagerID != nil {
		updates["manager_id"] = *req.ManagerID
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if len(updates) == 0 {
		fail(c, http.StatusBadRequest, "no fields to update")
		return
	}

	var branch models.Branch
	if !s.firstOrNotFound(c, "updateBranch", &branch, s.db.Where("id = ?", id)) {
		return
	}
	if err := s.db.Model(&branch).Updates(updates).Error; err != nil {
		if isUniqueConstraintError(err) {
			fail(c, http.StatusConflict, "branch code already exists")
			return
		}
		s.storeError(c, "updateBranch", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"branch": branch})
}

// deleteBranch deactivates; transaction history keeps its branch FK intact.
func (s *Server) deleteBranch(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var branch models.Branch
	if !s.firstOrNotFound(c, "deleteBranch", &branch, s.db.Where("id = ?", id)) {
		return
	}
	if err := s.db.Model(&branch).Update("is_active", false).Error; err != nil {
		s.storeError(c, "deleteBranch", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "branch deactivated"})
}

func (s *Server) branchStats(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var branch models.Branch
	if !s.firstOrNotFound(c, "branchStats", &branch, s.db.Where("id = ?", id)) {
		return
	}
	start, end := dateRange(c, 30)

	type statsRow struct {
		TotalCollected   decimal.Decimal
		TransactionCount int64
		UniqueCustomers  int64
		AvgTransaction   decimal.Decimal
	}
	var st statsRow
	err := s.db.Table("collection_transactions").
		Select(`COALESCE(SUM(amount), 0) AS total_collected,
			COUNT(id) AS transaction_count,
			COUNT(DISTINCT customer_id) AS unique_customers,
			COALESCE(AVG(amount), 0) AS avg_transaction`).
		Where("branch_id = ? AND transaction_date BETWEEN ? AND ? AND status = ?",
			id, start, end, "completed").
		Scan(&st).Error
	if err != nil {
		s.storeError(c, "branchStats", err)
		return
	}

	var target decimal.Decimal
	now := time.Now()
	err = s.db.Table("collection_targets").
		Select("COALESCE(SUM(target_amount), 0)").
		Where("branch_id = ? AND target_year = ? AND target_month = ?",
			id, now.Year(), int(now.Month())).
		Scan(&target).Error
	if err != nil {
		s.storeError(c, "branchStats", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"branch":    branch,
		"startDate": start.Format("2006-01-02"),
		"endDate":   end.Format("2006-01-02"),
		"stats": gin.H{
			"totalCollected":     st.TotalCollected,
			"collectedFormatted": reportmath.FormatSAR(st.TotalCollected),
			"transactionCount":   st.TransactionCount,
			"uniqueCustomers":    st.UniqueCustomers,
			"averageTransaction": st.AvgTransaction.Round(2),
			"monthlyTarget":      target,
			"achievement":        reportmath.Percent(st.TotalCollected, target),
		},
	})
}
