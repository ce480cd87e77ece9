package service

import (
	"fmt"
	"time"

	"fintrack/database"
	"fintrack/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// UncategorizedLabel groups rows whose category is null or empty.
const UncategorizedLabel = "Uncategorized"

// categoryExpr folds null and empty categories into one group.
const categoryExpr = "COALESCE(NULLIF(category, ''), '" + UncategorizedLabel + "')"

// trendThreshold percent change below which a category counts as stable
const trendThreshold = 5.0

const recentLimit = 5

// AnalyticsService read-only aggregations over income and outgoing
type AnalyticsService struct {
	store *database.Store
}

// NewAnalyticsService creates the analytics engine
func NewAnalyticsService(store *database.Store) *AnalyticsService {
	return &AnalyticsService{store: store}
}

// MonthlyTotal sum of one calendar month, _id is YYYY-MM
type MonthlyTotal struct {
	Month string  `json:"_id" gorm:"column:month"`
	Total float64 `json:"total" gorm:"column:total"`
}

// CategoryTotal sum of one outgoing category
type CategoryTotal struct {
	Category string  `json:"category" gorm:"column:category"`
	Total    float64 `json:"total" gorm:"column:total"`
}

// Dashboard overview statistics
type Dashboard struct {
	TotalIncome     float64           `json:"totalIncome"`
	TotalOutgoing   float64           `json:"totalOutgoing"`
	Balance         float64           `json:"balance"`
	RecentIncome    []models.Income   `json:"recentIncome"`
	RecentOutgoing  []models.Outgoing `json:"recentOutgoing"`
	MonthlyIncome   []MonthlyTotal    `json:"monthlyIncome"`
	MonthlyOutgoing []MonthlyTotal    `json:"monthlyOutgoing"`
}

// History rows and totals of a date range
type History struct {
	StartDate         string            `json:"startDate"`
	EndDate           string            `json:"endDate"`
	Income            []models.Income   `json:"income"`
	Outgoing          []models.Outgoing `json:"outgoing"`
	IncomeTotal       float64           `json:"incomeTotal"`
	OutgoingTotal     float64           `json:"outgoingTotal"`
	Net               float64           `json:"net"`
	CategoryBreakdown []CategoryTotal   `json:"categoryBreakdown"`
}

// Projection expected balance after one week, one month and three months
type Projection struct {
	Week        float64 `json:"week"`
	Month       float64 `json:"month"`
	ThreeMonths float64 `json:"threeMonths"`
}

// CategoryTrend recent three months of a category against the three months before
type CategoryTrend struct {
	Category      string  `json:"category"`
	Recent        float64 `json:"recent"`
	Previous      float64 `json:"previous"`
	ChangePercent float64 `json:"changePercent"`
	Direction     string  `json:"direction"`
}

// Trend directions
const (
	TrendUp      = "up"
	TrendDown    = "down"
	TrendNeutral = "neutral"
)

// Predictions inputs of the balance projection plus derived figures.
// NormalizedSubscriptionTotal converts every recurring row to a monthly amount, whatever its cycle.
type Predictions struct {
	Subscriptions               []models.Outgoing `json:"subscriptions"`
	AvgMonthlyIncome            float64           `json:"avgMonthlyIncome"`
	AvgMonthlyOutgoing          float64           `json:"avgMonthlyOutgoing"`
	RecentCategories            []CategoryTotal   `json:"recentCategories"`
	PreviousCategories          []CategoryTotal   `json:"previousCategories"`
	CurrentBalance              float64           `json:"currentBalance"`
	SubscriptionMonthlyTotal    float64           `json:"subscriptionMonthlyTotal"`
	NormalizedSubscriptionTotal float64           `json:"normalizedSubscriptionTotal"`
	Projection                  Projection        `json:"projection"`
	SavingsRate                 float64           `json:"savingsRate"`
	CategoryTrends              []CategoryTrend   `json:"categoryTrends"`
}

// Dashboard computes totals, the five newest rows of each kind and the monthly sums of
// the current calendar year.
func (s *AnalyticsService) Dashboard() (*Dashboard, error) {
	d := &Dashboard{
		RecentIncome:    []models.Income{},
		RecentOutgoing:  []models.Outgoing{},
		MonthlyIncome:   []MonthlyTotal{},
		MonthlyOutgoing: []MonthlyTotal{},
	}
	year := fmt.Sprintf("%04d", s.store.Today().Year())

	err := s.store.Read(func(db *gorm.DB) error {
		var err error
		if d.TotalIncome, err = sumAmount(db, models.KindIncome, "", nil); err != nil {
			return err
		}
		if d.TotalOutgoing, err = sumAmount(db, models.KindOutgoing, "", nil); err != nil {
			return err
		}
		if err := db.Order("createdAt DESC").Order("id ASC").Limit(recentLimit).Find(&d.RecentIncome).Error; err != nil {
			return err
		}
		if err := db.Order("createdAt DESC").Order("id ASC").Limit(recentLimit).Find(&d.RecentOutgoing).Error; err != nil {
			return err
		}
		if d.MonthlyIncome, err = monthlyTotals(db, models.KindIncome, year); err != nil {
			return err
		}
		d.MonthlyOutgoing, err = monthlyTotals(db, models.KindOutgoing, year)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}
	d.Balance = subtract(d.TotalIncome, d.TotalOutgoing)
	return d, nil
}

// History returns rows dated within [start, end], newest date first, with totals and the
// outgoing category breakdown. start after end yields an empty result.
func (s *AnalyticsService) History(start, end string) (*History, error) {
	if _, err := time.Parse(models.DateLayout, start); err != nil {
		return nil, models.Invalid("startDate", "must be a YYYY-MM-DD date")
	}
	if _, err := time.Parse(models.DateLayout, end); err != nil {
		return nil, models.Invalid("endDate", "must be a YYYY-MM-DD date")
	}

	h := &History{
		StartDate:         start,
		EndDate:           end,
		Income:            []models.Income{},
		Outgoing:          []models.Outgoing{},
		CategoryBreakdown: []CategoryTotal{},
	}
	if start > end {
		return h, nil
	}

	where := "date BETWEEN ? AND ?"
	args := []interface{}{start, end}
	err := s.store.Read(func(db *gorm.DB) error {
		var err error
		if err := db.Where(where, args...).Order("date DESC").Order("id DESC").Find(&h.Income).Error; err != nil {
			return err
		}
		if err := db.Where(where, args...).Order("date DESC").Order("id DESC").Find(&h.Outgoing).Error; err != nil {
			return err
		}
		if h.IncomeTotal, err = sumAmount(db, models.KindIncome, where, args); err != nil {
			return err
		}
		if h.OutgoingTotal, err = sumAmount(db, models.KindOutgoing, where, args); err != nil {
			return err
		}
		h.CategoryBreakdown, err = categoryTotals(db, where, args)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("history %s..%s: %w", start, end, err)
	}
	h.Net = subtract(h.IncomeTotal, h.OutgoingTotal)
	return h, nil
}

// Predictions gathers subscriptions, monthly averages, category windows and the current
// balance, then derives the projection from them.
func (s *AnalyticsService) Predictions() (*Predictions, error) {
	p := &Predictions{
		Subscriptions:      []models.Outgoing{},
		RecentCategories:   []CategoryTotal{},
		PreviousCategories: []CategoryTotal{},
	}

	today := s.store.Today()
	threeMonthsAgo := time.Date(today.Year(), today.Month()-3, 1, 0, 0, 0, 0, today.Location()).Format(models.DateLayout)
	sixMonthsAgo := time.Date(today.Year(), today.Month()-6, 1, 0, 0, 0, 0, today.Location()).Format(models.DateLayout)

	var totalIncome, totalOutgoing float64
	err := s.store.Read(func(db *gorm.DB) error {
		var err error
		if err := db.Where("recurring = 1").
			Order("(nextPaymentDate IS NULL OR nextPaymentDate = '')").
			Order("nextPaymentDate ASC").
			Order("id ASC").
			Find(&p.Subscriptions).Error; err != nil {
			return err
		}
		if p.AvgMonthlyIncome, err = monthlyAverage(db, models.KindIncome); err != nil {
			return err
		}
		if p.AvgMonthlyOutgoing, err = monthlyAverage(db, models.KindOutgoing); err != nil {
			return err
		}
		if p.RecentCategories, err = categoryTotals(db, "date >= ?", []interface{}{threeMonthsAgo}); err != nil {
			return err
		}
		if p.PreviousCategories, err = categoryTotals(db, "date >= ? AND date < ?", []interface{}{sixMonthsAgo, threeMonthsAgo}); err != nil {
			return err
		}
		if totalIncome, err = sumAmount(db, models.KindIncome, "", nil); err != nil {
			return err
		}
		totalOutgoing, err = sumAmount(db, models.KindOutgoing, "", nil)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("predictions: %w", err)
	}

	p.CurrentBalance = subtract(totalIncome, totalOutgoing)
	p.SubscriptionMonthlyTotal, p.NormalizedSubscriptionTotal = subscriptionTotals(p.Subscriptions)
	p.Projection = Project(p.CurrentBalance, p.AvgMonthlyIncome, p.AvgMonthlyOutgoing, p.SubscriptionMonthlyTotal)
	p.SavingsRate = SavingsRate(p.AvgMonthlyIncome, p.AvgMonthlyOutgoing)
	p.CategoryTrends = CategoryTrends(p.RecentCategories, p.PreviousCategories)
	return p, nil
}

// Project applies the monthly net (income - outgoing - subscriptions) to the balance;
// a week is a quarter of a month.
func Project(currentBalance, avgMonthlyIncome, avgMonthlyOutgoing, subscriptionMonthlyTotal float64) Projection {
	balance := decimal.NewFromFloat(currentBalance)
	monthlyNet := decimal.NewFromFloat(avgMonthlyIncome).
		Sub(decimal.NewFromFloat(avgMonthlyOutgoing)).
		Sub(decimal.NewFromFloat(subscriptionMonthlyTotal))
	weeklyNet := monthlyNet.Div(decimal.NewFromInt(4))

	return Projection{
		Week:        balance.Add(weeklyNet).Round(2).InexactFloat64(),
		Month:       balance.Add(monthlyNet).Round(2).InexactFloat64(),
		ThreeMonths: balance.Add(monthlyNet.Mul(decimal.NewFromInt(3))).Round(2).InexactFloat64(),
	}
}

// SavingsRate share of the average monthly income that is not spent, in percent.
func SavingsRate(avgMonthlyIncome, avgMonthlyOutgoing float64) float64 {
	if avgMonthlyIncome == 0 {
		return 0
	}
	income := decimal.NewFromFloat(avgMonthlyIncome)
	savings := income.Sub(decimal.NewFromFloat(avgMonthlyOutgoing))
	return savings.Div(income).Mul(decimal.NewFromInt(100)).Round(1).InexactFloat64()
}

// CategoryTrends compares every recent category with the previous window. Categories
// without a previous total are neutral.
func CategoryTrends(recent, previous []CategoryTotal) []CategoryTrend {
	prev := make(map[string]float64, len(previous))
	for _, c := range previous {
		prev[c.Category] = c.Total
	}

	trends := make([]CategoryTrend, 0, len(recent))
	for _, c := range recent {
		t := CategoryTrend{Category: c.Category, Recent: c.Total, Previous: prev[c.Category], Direction: TrendNeutral}
		if t.Previous != 0 {
			p := decimal.NewFromFloat(t.Previous)
			change := decimal.NewFromFloat(t.Recent).Sub(p).Div(p).Mul(decimal.NewFromInt(100)).Round(1)
			t.ChangePercent = change.InexactFloat64()
			switch {
			case t.ChangePercent > trendThreshold:
				t.Direction = TrendUp
			case t.ChangePercent < -trendThreshold:
				t.Direction = TrendDown
			}
		}
		trends = append(trends, t)
	}
	return trends
}

// subscriptionTotals returns the monthly-cycle sum used by the projection and the sum of
// all cycles normalised to a month.
func subscriptionTotals(subs []models.Outgoing) (monthly, normalized float64) {
	m, n := decimal.Zero, decimal.Zero
	for _, sub := range subs {
		amount := decimal.NewFromFloat(sub.Amount)
		cycle := models.BillingMonthly
		if sub.BillingCycle != nil && *sub.BillingCycle != "" {
			cycle = *sub.BillingCycle
		}
		if sub.BillingCycle != nil && *sub.BillingCycle == models.BillingMonthly {
			m = m.Add(amount)
		}
		n = n.Add(amount.Mul(decimal.NewFromFloat(models.MonthlyFactor(cycle))))
	}
	return m.Round(2).InexactFloat64(), n.Round(2).InexactFloat64()
}

func sumAmount(db *gorm.DB, kind models.Kind, where string, args []interface{}) (float64, error) {
	q := db.Table(kind.Table()).Select("COALESCE(SUM(amount), 0)")
	if where != "" {
		q = q.Where(where, args...)
	}
	var total float64
	if err := q.Scan(&total).Error; err != nil {
		return 0, err
	}
	return money(total), nil
}

func monthlyTotals(db *gorm.DB, kind models.Kind, year string) ([]MonthlyTotal, error) {
	rows := []MonthlyTotal{}
	err := db.Raw(`SELECT substr(date, 1, 7) AS month, SUM(amount) AS total
		FROM `+kind.Table()+`
		WHERE substr(date, 1, 4) = ?
		GROUP BY substr(date, 1, 7)
		ORDER BY month ASC`, year).Scan(&rows).Error
	for i := range rows {
		rows[i].Total = money(rows[i].Total)
	}
	return rows, err
}

func monthlyAverage(db *gorm.DB, kind models.Kind) (float64, error) {
	var avg float64
	err := db.Raw(`SELECT COALESCE(AVG(monthly_total), 0) FROM (
		SELECT SUM(amount) AS monthly_total
		FROM ` + kind.Table() + `
		GROUP BY substr(date, 1, 7)
	)`).Scan(&avg).Error
	return avg, err
}

func categoryTotals(db *gorm.DB, where string, args []interface{}) ([]CategoryTotal, error) {
	rows := []CategoryTotal{}
	err := db.Table(models.KindOutgoing.Table()).
		Select(categoryExpr+" AS category, SUM(amount) AS total").
		Where(where, args...).
		Group(categoryExpr).
		Order("total DESC").
		Order("category ASC").
		Scan(&rows).Error
	for i := range rows {
		rows[i].Total = money(rows[i].Total)
	}
	return rows, err
}

// money rounds a float sum to cents.
func money(f float64) float64 {
	return decimal.NewFromFloat(f).Round(2).InexactFloat64()
}

func subtract(a, b float64) float64 {
	return decimal.NewFromFloat(a).Sub(decimal.NewFromFloat(b)).Round(2).InexactFloat64()
}
