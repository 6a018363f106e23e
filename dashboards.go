package main

import (
	"encoding/json"
	"errors"
	"net/http"

	"osoulapi/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type dashboardRequest struct {
	Name         string      `json:"dashboardName" binding:"required"`
	LayoutConfig models.JSON `json:"layoutConfig"`
	IsDefault    bool        `json:"isDefault"`
}

type dashboardUpdateRequest struct {
	Name         *string      `json:"dashboardName"`
	LayoutConfig *models.JSON `json:"layoutConfig"`
	IsDefault    *bool        `json:"isDefault"`
}

type widgetRequest struct {
	WidgetType  string      `json:"widgetType" binding:"required"`
	WidgetTitle string      `json:"widgetTitle" binding:"required"`
	PositionX   int         `json:"positionX" binding:"min=0"`
	PositionY   int         `json:"positionY" binding:"min=0"`
	Width       int         `json:"width" binding:"required,min=1,max=12"`
	Height      int         `json:"height" binding:"required,min=1,max=10"`
	Config      models.JSON `json:"config"`
	IsVisible   *bool       `json:"isVisible"`
}

type widgetUpdateRequest struct {
	WidgetTitle *string      `json:"widgetTitle"`
	PositionX   *int         `json:"positionX" binding:"omitempty,min=0"`
	PositionY   *int         `json:"positionY" binding:"omitempty,min=0"`
	Width       *int         `json:"width" binding:"omitempty,min=1,max=12"`
	Height      *int         `json:"height" binding:"omitempty,min=1,max=10"`
	Config      *models.JSON `json:"config"`
	IsVisible   *bool        `json:"isVisible"`
}

// ownedDashboard loads a dashboard scoped to the caller. Another user's
// dashboard is indistinguishable from a missing one.
func (s *Server) ownedDashboard(c *gin.Context, funcName string, id uint) (models.UserDashboard, bool) {
	user := s.currentUser(c)
	var dashboard models.UserDashboard
	err := s.db.Where("id = ? AND user_id = ?", id, user.ID).First(&dashboard).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		fail(c, http.StatusNotFound, "dashboard not found")
		return dashboard, false
	}
	if err != nil {
		s.storeError(c, funcName, err)
		return dashboard, false
	}
	return dashboard, true
}

func (s *Server) listDashboards(c *gin.Context) {
	user := s.currentUser(c)

	type dashboardRow struct {
		models.UserDashboard
		WidgetCount int64
	}
	var rows []dashboardRow
	err := s.db.Table("user_dashboards").
		Select(`user_dashboards.*,
			(SELECT COUNT(*) FROM dashboard_widgets w
			 WHERE w.dashboard_id = user_dashboards.id) AS widget_count`).
		Where("user_dashboards.user_id = ?", user.ID).
		Order("user_dashboards.is_default DESC, user_dashboards.created_at").
		Scan(&rows).Error
	if err != nil {
		s.storeError(c, "listDashboards", err)
		return
	}

	dashboards := make([]gin.H, 0, len(rows))
	for _, r := range rows {
		dashboards = append(dashboards, gin.H{
			"id":            r.ID,
			"dashboardName": r.Name,
			"layoutConfig":  r.LayoutConfig,
			"isDefault":     r.IsDefault,
			"widgetCount":   r.WidgetCount,
			"createdAt":     r.CreatedAt,
			"updatedAt":     r.UpdatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"dashboards": dashboards})
}

func (s *Server) getDashboard(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	dashboard, ok := s.ownedDashboard(c, "getDashboard", id)
	if !ok {
		return
	}

	var widgets []models.DashboardWidget
	err := s.db.Where("dashboard_id = ?", dashboard.ID).
		Order("position_y, position_x").
		Find(&widgets).Error
	if err != nil {
		s.storeError(c, "getDashboard", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"dashboard": dashboard, "widgets": widgets})
}

func (s *Server) createDashboard(c *gin.Context) {
	var req dashboardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "dashboardName is required")
		return
	}
	user := s.currentUser(c)

	layout := req.LayoutConfig
	if len(layout) == 0 {
		layout = models.JSON("{}")
	}
	dashboard := models.UserDashboard{
		UserID:       user.ID,
		Name:         req.Name,
		LayoutConfig: layout,
		IsDefault:    req.IsDefault,
	}

	var widgets []models.DashboardWidget
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if req.IsDefault {
			if err := tx.Model(&models.UserDashboard{}).
				Where("user_id = ?", user.ID).
				Update("is_default", false).Error; err != nil {
				return err
			}
		}
		if err := tx.Create(&dashboard).Error; err != nil {
			return err
		}
		widgets = defaultWidgets(dashboard.ID)
		return tx.Create(&widgets).Error
	})
	if err != nil {
		s.storeError(c, "createDashboard", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"dashboard": dashboard, "widgets": widgets})
}

func (s *Server) updateDashboard(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dashboardUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	dashboard, ok := s.ownedDashboard(c, "updateDashboard", id)
	if !ok {
		return
	}

	updates := map[string]any{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.LayoutConfig != nil {
		updates["layout_config"] = *req.LayoutConfig
	}
	if req.IsDefault != nil {
		updates["is_default"] = *req.IsDefault
	}
	if len(updates) == 0 {
		fail(c, http.StatusBadRequest, "no fields to update")
		return
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if req.IsDefault != nil && *req.IsDefault {
			if err := tx.Model(&models.UserDashboard{}).
				Where("user_id = ? AND id <> ?", dashboard.UserID, dashboard.ID).
				Update("is_default", false).Error; err != nil {
				return err
			}
		}
		return tx.Model(&dashboard).Updates(updates).Error
	})
	if err != nil {
		s.storeError(c, "updateDashboard", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"dashboard": dashboard})
}

// deleteDashboard removes the dashboard and its widgets in one transaction;
// widgets never survive their dashboard.
func (s *Server) deleteDashboard(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	dashboard, ok := s.ownedDashboard(c, "deleteDashboard", id)
	if !ok {
		return
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("dashboard_id = ?", dashboard.ID).
			Delete(&models.DashboardWidget{}).Error; err != nil {
			return err
		}
		return tx.Delete(&dashboard).Error
	})
	if err != nil {
		s.storeError(c, "deleteDashboard", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "dashboard deleted"})
}

func (s *Server) addWidget(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req widgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "widgetType, widgetTitle, width (1-12) and height (1-10) are required")
		return
	}
	dashboard, ok := s.ownedDashboard(c, "addWidget", id)
	if !ok {
		return
	}

	cfg := req.Config
	if len(cfg) == 0 {
		cfg = models.JSON("{}")
	}
	visible := true
	if req.IsVisible != nil {
		visible = *req.IsVisible
	}
	widget := models.DashboardWidget{
		DashboardID: dashboard.ID,
		WidgetType:  req.WidgetType,
		WidgetTitle: req.WidgetTitle,
		PositionX:   req.PositionX,
		PositionY:   req.PositionY,
		Width:       req.Width,
		Height:      req.Height,
		Config:      cfg,
		IsVisible:   visible,
	}
	if err := s.db.Create(&widget).Error; err != nil {
		s.storeError(c, "addWidget", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"widget": widget})
}

func (s *Server) ownedWidget(c *gin.Context, funcName string, dashboardID, widgetID uint) (models.DashboardWidget, bool) {
	var widget models.DashboardWidget
	if _, ok := s.ownedDashboard(c, funcName, dashboardID); !ok {
		return widget, false
	}
	err := s.db.Where("id = ? AND dashboard_id = ?", widgetID, dashboardID).First(&widget).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		fail(c, http.StatusNotFound, "widget not found")
		return widget, false
	}
	if err != nil {
		s.storeError(c, funcName, err)
		return widget, false
	}
	return widget, true
}

func (s *Server) updateWidget(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	widgetID, ok := pathID(c, "widgetId")
	if !ok {
		return
	}
	var req widgetUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	widget, ok := s.ownedWidget(c, "updateWidget", id, widgetID)
	if !ok {
		return
	}

	updates := map[string]any{}
	if req.WidgetTitle != nil {
		updates["widget_title"] = *req.WidgetTitle
	}
	if req.PositionX != nil {
		updates["position_x"] = *req.PositionX
	}
	if req.PositionY != nil {
		updates["position_y"] = *req.PositionY
	}
	if req.Width != nil {
		updates["width"] = *req.Width
	}
	if req.Height != nil {
		updates["height"] = *req.Height
	}
	if req.Config != nil {
		updates["config"] = *req.Config
	}
	if req.IsVisible != nil {
		updates["is_visible"] = *req.IsVisible
	}
	if len(updates) == 0 {
		fail(c, http.StatusBadRequest, "no fields to update")
		return
	}

	if err := s.db.Model(&widget).Updates(updates).Error; err != nil {
		s.storeError(c, "updateWidget", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"widget": widget})
}

func (s *Server) deleteWidget(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	widgetID, ok := pathID(c, "widgetId")
	if !ok {
		return
	}
	widget, ok := s.ownedWidget(c, "deleteWidget", id, widgetID)
	if !ok {
		return
	}
	if err := s.db.Delete(&widget).Error; err != nil {
		s.storeError(c, "deleteWidget", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "widget deleted"})
}

// widgetData resolves a widget's configured dataSource and answers with the
// matching report payload. Unknown sources degrade to a placeholder message
// rather than an error so a stale widget never breaks the whole dashboard.
func (s *Server) widgetData(c *gin.Context) {
	widgetID, ok := pathID(c, "widgetId")
	if !ok {
		return
	}
	user := s.currentUser(c)

	var widget models.DashboardWidget
	err := s.db.Table("dashboard_widgets").
		Select("dashboard_widgets.*").
		Joins("JOIN user_dashboards d ON d.id = dashboard_widgets.dashboard_id").
		Where("dashboard_widgets.id = ? AND d.user_id = ?", widgetID, user.ID).
		First(&widget).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		fail(c, http.StatusNotFound, "widget not found")
		return
	}
	if err != nil {
		s.storeError(c, "widgetData", err)
		return
	}

	var cfg struct {
		DataSource string `json:"dataSource"`
	}
	_ = json.Unmarshal(widget.Config, &cfg)

	switch cfg.DataSource {
	case "summary":
		s.reportsSummary(c)
	case "performance_trends":
		s.performanceTrends(c)
	case "branch_comparison":
		s.branchComparison(c)
	default:
		c.JSON(http.StatusOK, gin.H{
			"widgetId": widget.ID,
			"message":  "Data source not implemented",
		})
	}
}
