package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"doorquote/internal/config"
	"doorquote/pkg/redis"
)

type PostgresStorage struct {
	db     *sqlx.DB
	redis  *redis.Client
	logger *zap.Logger
}

// Quote is the persisted record of a submitted quote. The first item's
// headline fields are flattened for list views; the full item detail
// rides along as JSON.
type Quote struct {
	ID     int64  `db:"id" json:"id"`
	LeadID string `db:"lead_id" json:"lead_id"`
	Name   string `db:"name" json:"name"`
	Email  string `db:"email" json:"email"`
	Phone  string `db:"phone" json:"phone"`
	Zip    string `db:"zip" json:"zip"`

	DoorType  string `db:"door_type" json:"door_type"`
	Color     string `db:"color" json:"color"`
	GlassType string `db:"glass_type" json:"glass_type"`
	Size      string `db:"size" json:"size"`
	ItemCount int    `db:"item_count" json:"item_count"`
	Items     []byte `db:"items" json:"items,omitempty"`

	Subtotal         float64 `db:"subtotal" json:"subtotal"`
	DeliveryType     string  `db:"delivery_type" json:"delivery_type"`
	DeliveryCost     float64 `db:"delivery_cost" json:"delivery_cost"`
	InstallationCost float64 `db:"installation_cost" json:"installation_cost"`
	Tax              float64 `db:"tax" json:"tax"`
	GrandTotal       float64 `db:"grand_total" json:"grand_total"`

	Status    string    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

func NewPostgresStorage(ctx context.Context, cfg config.Config, redisClient *redis.Client, logger *zap.Logger) (*PostgresStorage, error) {
	const operation = "storage.NewPostgresStorage"

	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Name,
	)

	var db *sqlx.DB
	var err error

	retryPolicy := backoff.NewExponentialBackOff()
	retryPolicy.MaxElapsedTime = 2 * time.Minute
	retryPolicy.MaxInterval = 15 * time.Second

	logger.Info("Connecting to PostgreSQL...")

	err = backoff.RetryNotify(
		func() error {
			db, err = sqlx.ConnectContext(ctx, "postgres", connStr)
			if err != nil {
				return fmt.Errorf("connect: %w", err)
			}

			if err = db.PingContext(ctx); err != nil {
				return fmt.Errorf("ping: %w", err)
			}
			return nil
		},
		retryPolicy,
		func(err error, duration time.Duration) {
			logger.Warn("PostgreSQL connection failed, retrying...",
				zap.Error(err),
				zap.Duration("next_attempt_in", duration))
		},
	)

	if err != nil {
		return nil, fmt.Errorf("%s: failed to connect after retries: %w", operation, err)
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.Database.ConnMaxIdleTime)

	logger.Info("Successfully connected to PostgreSQL")
	return &PostgresStorage{
		db:     db,
		redis:  redisClient,
		logger: logger,
	}, nil
}

func (s *PostgresStorage) SaveQuote(ctx context.Context, quote Quote) (int64, error) {
	const query = `
        INSERT INTO quotes (
            lead_id, name, email, phone, zip,
            door_type, color, glass_type, size, item_count, items,
            subtotal, delivery_type, delivery_cost, installation_cost,
            tax, grand_total, status, created_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
        RETURNING id
    `

	var quoteID int64
	err := s.db.QueryRowContext(ctx, query,
		quote.LeadID,
		quote.Name,
		quote.Email,
		quote.Phone,
		quote.Zip,
		quote.DoorType,
		quote.Color,
		quote.GlassType,
		quote.Size,
		quote.ItemCount,
		quote.Items,
		quote.Subtotal,
		quote.DeliveryType,
		quote.DeliveryCost,
		quote.InstallationCost,
		quote.Tax,
		quote.GrandTotal,
		quote.Status,
		quote.CreatedAt,
	).Scan(&quoteID)

	if err != nil {
		return 0, fmt.Errorf("failed to save quote: %w", err)
	}

	// Invalidate statistics cache
	s.redis.Del(ctx, "quote_stats")

	return quoteID, nil
}

func (s *PostgresStorage) GetQuoteByID(ctx context.Context, quoteID int64) (*Quote, error) {
	const query = `SELECT * FROM quotes WHERE id = $1`
	var quote Quote
	err := s.db.GetContext(ctx, &quote, query, quoteID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("quote not found")
		}
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}
	return &quote, nil
}

func (s *PostgresStorage) ListQuotes(ctx context.Context, limit int) ([]Quote, error) {
	const query = `SELECT * FROM quotes ORDER BY created_at DESC LIMIT $1`

	var quotes []Quote
	err := s.db.SelectContext(ctx, &quotes, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list quotes: %w", err)
	}

	return quotes, nil
}

func (s *PostgresStorage) UpdateQuoteStatus(ctx context.Context, quoteID int64, status string) error {
	const query = `UPDATE quotes SET status = $1 WHERE id = $2`

	res, err := s.db.ExecContext(ctx, query, status, quoteID)
	if err != nil {
		return fmt.Errorf("failed to update quote status: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("quote not found")
	}

	s.redis.Del(ctx, "quote_stats")
	return nil
}

type QuoteStatistics struct {
	TotalQuotes  int     `db:"total_quotes"`
	TotalRevenue float64 `db:"total_revenue"`
	TodayQuotes  int
	TodayRevenue float64
	WeekQuotes   int
	WeekRevenue  float64
	MonthQuotes  int
	MonthRevenue float64
	StatusCounts map[string]int
}

func (s *PostgresStorage) GetQuoteStatistics(ctx context.Context) (*QuoteStatistics, error) {
	cacheKey := "quote_stats"

	// Try Redis first
	if cached, err := s.redis.Get(ctx, cacheKey); err == nil {
		var stats QuoteStatistics
		if err := json.Unmarshal(cached, &stats); err == nil {
			return &stats, nil
		}
	}

	stats := &QuoteStatistics{
		StatusCounts: make(map[string]int),
	}

	type countRevenue struct {
		Count   int     `db:"count"`
		Revenue float64 `db:"revenue"`
	}

	err := s.db.GetContext(ctx, stats, `
        SELECT
            COUNT(*) as total_quotes,
            COALESCE(SUM(grand_total), 0) as total_revenue
        FROM quotes
    `)
	if err != nil {
		return nil, err
	}

	var todayStats countRevenue
	err = s.db.GetContext(ctx, &todayStats, `
        SELECT
            COUNT(*) as count,
            COALESCE(SUM(grand_total), 0) as revenue
        FROM quotes
        WHERE created_at >= CURRENT_DATE
    `)
	if err != nil {
		return nil, err
	}
	stats.TodayQuotes = todayStats.Count
	stats.TodayRevenue = todayStats.Revenue

	var weekStats countRevenue
	err = s.db.GetContext(ctx, &weekStats, `
        SELECT
            COUNT(*) as count,
            COALESCE(SUM(grand_total), 0) as revenue
        FROM quotes
        WHERE created_at >= CURRENT_DATE - INTERVAL '7 days'
    `)
	if err != nil {
		return nil, err
	}
	stats.WeekQuotes = weekStats.Count
	stats.WeekRevenue = weekStats.Revenue

	var monthStats countRevenue
	err = s.db.GetContext(ctx, &monthStats, `
        SELECT
            COUNT(*) as count,
            COALESCE(SUM(grand_total), 0) as revenue
        FROM quotes
        WHERE created_at >= CURRENT_DATE - INTERVAL '30 days'
    `)
	if err != nil {
		return nil, err
	}
	stats.MonthQuotes = monthStats.Count
	stats.MonthRevenue = monthStats.Revenue

	rows, err := s.db.QueryContext(
		ctx,
		`SELECT status, COUNT(*) as count
        FROM quotes
        GROUP BY status
        `,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get status counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		stats.StatusCounts[status] = count
	}

	if data, err := json.Marshal(stats); err == nil {
		s.redis.SetWithTTL(ctx, cacheKey, data, 1*time.Hour)
	}

	return stats, nil
}

func (s *PostgresStorage) ExportQuoteToExcel(ctx context.Context, quote Quote) (string, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet("Quote")
	if err != nil {
		return "", fmt.Errorf("failed to create sheet: %w", err)
	}

	f.SetCellValue("Quote", "A1", "Quote ID")
	f.SetCellValue("Quote", "B1", quote.ID)
	f.SetCellValue("Quote", "A2", "Lead ID")
	f.SetCellValue("Quote", "B2", quote.LeadID)
	f.SetCellValue("Quote", "A3", "Created At")
	f.SetCellValue("Quote", "B3", quote.CreatedAt.Format("2006-01-02 15:04"))

	f.SetCellValue("Quote", "A4", "Customer")
	f.SetCellValue("Quote", "B4", quote.Name)
	f.SetCellValue("Quote", "A5", "Contact")
	f.SetCellValue("Quote", "B5", fmt.Sprintf("%s / %s / %s", quote.Email, quote.Phone, quote.Zip))

	f.SetCellValue("Quote", "A7", "Configuration")
	f.SetCellValue("Quote", "A8", "Door Type")
	f.SetCellValue("Quote", "B8", quote.DoorType)
	f.SetCellValue("Quote", "A9", "Color")
	f.SetCellValue("Quote", "B9", quote.Color)
	f.SetCellValue("Quote", "A10", "Glass")
	f.SetCellValue("Quote", "B10", quote.GlassType)
	f.SetCellValue("Quote", "A11", "Size")
	f.SetCellValue("Quote", "B11", quote.Size)
	f.SetCellValue("Quote", "A12", "Items")
	f.SetCellValue("Quote", "B12", quote.ItemCount)

	f.SetCellValue("Quote", "A14", "Pricing")
	f.SetCellValue("Quote", "A15", "Subtotal")
	f.SetCellValue("Quote", "B15", quote.Subtotal)
	f.SetCellValue("Quote", "A16", "Delivery")
	f.SetCellValue("Quote", "B16", quote.DeliveryCost)
	f.SetCellValue("Quote", "A17", "Installation")
	f.SetCellValue("Quote", "B17", quote.InstallationCost)
	f.SetCellValue("Quote", "A18", "Tax")
	f.SetCellValue("Quote", "B18", quote.Tax)
	f.SetCellValue("Quote", "A19", "Grand Total")
	f.SetCellValue("Quote", "B19", quote.GrandTotal)

	style, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	f.SetCellStyle("Quote", "A1", "A19", style)

	f.SetActiveSheet(index)

	filename := fmt.Sprintf("quote_%d_%s.xlsx",
		quote.ID,
		quote.CreatedAt.Format("20060102_1504"))
	filepath := fmt.Sprintf("reports/%s", filename)

	if err := os.MkdirAll("reports", 0755); err != nil {
		return "", fmt.Errorf("failed to create reports directory: %w", err)
	}

	if err := f.SaveAs(filepath); err != nil {
		return "", fmt.Errorf("failed to save Excel file: %w", err)
	}

	return filepath, nil
}

func (s *PostgresStorage) ExportAllQuotesToExcel(ctx context.Context, filename string) (string, error) {
	const query = `SELECT * FROM quotes ORDER BY created_at DESC`
	var quotes []Quote
	err := s.db.SelectContext(ctx, &quotes, query)
	if err != nil {
		return "", fmt.Errorf("failed to fetch quotes: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet("Quotes")
	if err != nil {
		return "", fmt.Errorf("failed to create sheet: %w", err)
	}

	headers := []string{
		"ID", "Lead ID", "Name", "Email", "Phone", "Zip",
		"Door Type", "Color", "Glass", "Size", "Items",
		"Subtotal", "Delivery Type", "Delivery", "Installation",
		"Tax", "Grand Total", "Status", "Created At",
	}
	for col, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue("Quotes", cell, header)
	}

	for row, quote := range quotes {
		data := []interface{}{
			quote.ID,
			quote.LeadID,
			quote.Name,
			quote.Email,
			quote.Phone,
			quote.Zip,
			quote.DoorType,
			quote.Color,
			quote.GlassType,
			quote.Size,
			quote.ItemCount,
			quote.Subtotal,
			quote.DeliveryType,
			quote.DeliveryCost,
			quote.InstallationCost,
			quote.Tax,
			quote.GrandTotal,
			quote.Status,
			quote.CreatedAt.Format("2006-01-02 15:04"),
		}
		for col, value := range data {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue("Quotes", cell, value)
		}
	}

	f.SetActiveSheet(index)

	if err := os.MkdirAll("reports", 0755); err != nil {
		return "", fmt.Errorf("failed to create reports directory: %w", err)
	}

	filepath := fmt.Sprintf("reports/%s.xlsx", filename)
	if err := f.SaveAs(filepath); err != nil {
		return "", fmt.Errorf("failed to save Excel file: %w", err)
	}

	return filepath, nil
}

// CheckRateLimit counts hits per session and action inside a sliding
// window. Returns true when the caller is over the limit.
func (s *PostgresStorage) CheckRateLimit(ctx context.Context, sessionID string, action string, limit int64, window time.Duration) (bool, error) {
	key := fmt.Sprintf("ratelimit:%s:%s", sessionID, action)

	count, err := s.redis.Incr(ctx, key)
	if err != nil {
		return false, fmt.Errorf("failed to increment rate limit counter: %w", err)
	}

	if count == 1 {
		if _, err := s.redis.Expire(ctx, key, window); err != nil {
			return false, fmt.Errorf("failed to set rate limit window: %w", err)
		}
	}

	return count > limit, nil
}

func (s *PostgresStorage) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB exposes the raw handle for the migration runner.
func (s *PostgresStorage) DB() *sql.DB {
	return s.db.DB
}
