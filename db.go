package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"osoulapi/models"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openDB(cfg Config) (*gorm.DB, error) {
	if cfg.DatabaseDSN == "" {
		return nil, fmt.Errorf("DB_DSN is not set; this service requires a Postgres DSN")
	}
	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			Colorful:      false,
			LogLevel:      logger.Error,
			SlowThreshold: time.Second,
		},
	)
	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, err
	}
	if sqlDB, derr := db.DB(); derr == nil {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxLifetime(5 * time.Minute)
	}
	return db, nil
}

// closeDB releases the underlying pool; called once on shutdown.
func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Branch{},
		&models.Customer{},
		&models.FinanceAccount{},
		&models.CollectionCase{},
		&models.CollectionActivity{},
		&models.CollectionTransaction{},
		&models.PaymentTransaction{},
		&models.CollectionTarget{},
		&models.UserDashboard{},
		&models.DashboardWidget{},
	)
}

// migrateLegacyPasswords converts any plaintext credential rows left over
// from older deployments into bcrypt hashes, once, with a log line per
// account. Login itself accepts bcrypt only.
func migrateLegacyPasswords(db *gorm.DB, logg *logrus.Logger) error {
	var users []models.User
	if err := db.Where("password NOT LIKE '$2%'").Find(&users).Error; err != nil {
		return err
	}
	for _, u := range users {
		hashed, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		if err := db.Model(&models.User{}).Where("id = ?", u.ID).
			Update("password", string(hashed)).Error; err != nil {
			return err
		}
		logg.WithFields(logrus.Fields{"userId": u.ID, "email": u.Email}).
			Warn("migrated legacy plaintext password to bcrypt")
	}
	return nil
}

// seedDB loads the reference data set used by a fresh deployment: the five
// well-known accounts, five branches, this year's targets and the admin's
// default dashboard. Idempotent; all inserts run in one transaction so a
// failure never leaves a half-seeded database.
func seedDB(db *gorm.DB, logg *logrus.Logger) error {
	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		users := []models.User{
			{Email: "admin@osoul.com", Password: string(hashed), FirstName: "Admin", LastName: "User", Role: models.RoleAdmin, IsActive: true},
			{Email: "manager@osoul.com", Password: string(hashed), FirstName: "Manager", LastName: "User", Role: models.RoleManager, IsActive: true},
			{Email: "collector1@osoul.com", Password: string(hashed), FirstName: "Ahmed", LastName: "Ali", Role: models.RoleCollector, IsActive: true},
			{Email: "collector2@osoul.com", Password: string(hashed), FirstName: "Mohammed", LastName: "Hassan", Role: models.RoleCollector, IsActive: true},
			{Email: "viewer@osoul.com", Password: string(hashed), FirstName: "Viewer", LastName: "User", Role: models.RoleViewer, IsActive: true},
		}
		if err := tx.Create(&users).Error; err != nil {
			return err
		}
		admin, manager := users[0], users[1]

		branches := []models.Branch{
			{Code: "BR001", Name: "Riyadh Main Branch", Region: "Central", City: "Riyadh", ManagerID: &manager.ID, IsActive: true},
			{Code: "BR002", Name: "Jeddah Branch", Region: "Western", City: "Jeddah", ManagerID: &manager.ID, IsActive: true},
			{Code: "BR003", Name: "Dammam Branch", Region: "Eastern", City: "Dammam", ManagerID: &manager.ID, IsActive: true},
			{Code: "BR004", Name: "Riyadh North Branch", Region: "Central", City: "Riyadh", ManagerID: &manager.ID, IsActive: true},
			{Code: "BR005", Name: "Mecca Branch", Region: "Western", City: "Mecca", ManagerID: &manager.ID, IsActive: true},
		}
		if err := tx.Create(&branches).Error; err != nil {
			return err
		}

		year := time.Now().Year()
		targets := make([]models.CollectionTarget, 0, len(branches)*12)
		for _, b := range branches {
			for month := 1; month <= 12; month++ {
				targets = append(targets, models.CollectionTarget{
					BranchID:     b.ID,
					TargetMonth:  month,
					TargetYear:   year,
					TargetAmount: decimal.NewFromInt(1200000),
					CreatedByID:  &admin.ID,
				})
			}
		}
		if err := tx.Create(&targets).Error; err != nil {
			return err
		}

		dashboard := models.UserDashboard{
			UserID:       admin.ID,
			Name:         "Main Dashboard",
			IsDefault:    true,
			LayoutConfig: models.JSON("{}"),
		}
		if err := tx.Create(&dashboard).Error; err != nil {
			return err
		}
		widgets := defaultWidgets(dashboard.ID)
		if err := tx.Create(&widgets).Error; err != nil {
			return err
		}

		logg.WithField("users", len(users)).Info("seeded reference data; admin login admin@osoul.com / password123")
		return nil
	})
}

// defaultWidgets is the starter layout every new dashboard gets: four summary
// cards across the top, a trend line and a branch comparison bar below.
func defaultWidgets(dashboardID uint) []models.DashboardWidget {
	card := func(title, metric string, x int) models.DashboardWidget {
		cfg, _ := json.Marshal(map[string]string{"metric": metric, "period": "month"})
		return models.DashboardWidget{
			DashboardID: dashboardID,
			WidgetType:  "summary_card",
			WidgetTitle: title,
			PositionX:   x, PositionY: 0, Width: 3, Height: 2,
			Config:    models.JSON(cfg),
			IsVisible: true,
		}
	}
	trendCfg, _ := json.Marshal(map[string]any{
		"chartType": "line", "dataSource": "performance_trends",
		"period": "daily", "metric": "total_collected",
	})
	branchCfg, _ := json.Marshal(map[string]any{
		"chartType": "bar", "dataSource": "branch_comparison",
		"metric": "total_collected", "limit": 10,
	})
	return []models.DashboardWidget{
		card("Total Collections", "total_collected", 0),
		card("Transaction Count", "transaction_count", 3),
		card("Average Transaction", "avg_transaction", 6),
		card("Unique Customers", "unique_customers", 9),
		{
			DashboardID: dashboardID,
			WidgetType:  "line_chart",
			WidgetTitle: "Collection Trends",
			PositionX:   0, PositionY: 2, Width: 6, Height: 4,
			Config:    models.JSON(trendCfg),
			IsVisible: true,
		},
		{
			DashboardID: dashboardID,
			WidgetType:  "bar_chart",
			WidgetTitle: "Branch Comparison",
			PositionX:   6, PositionY: 2, Width: 6, Height: 4,
			Config:    models.JSON(branchCfg),
			IsVisible: true,
		},
	}
}

// isUniqueConstraintError matches Postgres duplicate-key failures surfaced
// through the driver.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "duplicate key") || strings.Contains(s, "unique constraint") || strings.Contains(s, "SQLSTATE 23505")
}
