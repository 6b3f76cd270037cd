package services

import (
	"time"

	"gorm.io/gorm"

	"claims-management-server/models"
)

// StatsFilters narrows the claim population an aggregate runs over. The
// employee filter resolves through the employee's area, since claims are
// assigned to areas, not to individual employees.
type StatsFilters struct {
	ClientID   *uint
	EmployeeID *uint
	AreaID     *uint
	Status     string
	ClaimType  string
	StartDate  *time.Time
	EndDate    *time.Time
	Year       int
	Month      int
}

type CountBucket struct {
	Label string `json:"label"`
	Count int64  `json:"count"`
}

type MonthBucket struct {
	Month int   `json:"month"`
	Count int64 `json:"count"`
}

type KPIReport struct {
	Total              int64    `json:"total"`
	Ingresados         int64    `json:"ingresados"`
	EnProceso          int64    `json:"en_proceso"`
	Resueltos          int64    `json:"resueltos"`
	ResolutionRate     float64  `json:"resolution_rate"`
	AvgResolutionHours *float64 `json:"avg_resolution_hours"`
	AvgRating          *float64 `json:"avg_rating"`
	RatedClaims        int64    `json:"rated_claims"`
}

type RatingReport struct {
	AvgRating    *float64        `json:"avg_rating"`
	TotalRatings int64           `json:"total_ratings"`
	Distribution map[string]int64 `json:"distribution"`
}

func claimQuery(db *gorm.DB, f StatsFilters) *gorm.DB {
	q := db.Model(&models.Claim{})
	if f.ClientID != nil {
		q = q.Where("claims.created_by = ?", *f.ClientID)
	}
	if f.EmployeeID != nil {
		q = q.Where("claims.area_id IN (?)",
			db.Model(&models.User{}).Select("area_id").Where("id = ? AND area_id IS NOT NULL", *f.EmployeeID))
	}
	if f.AreaID != nil {
		q = q.Where("claims.area_id = ?", *f.AreaID)
	}
	if f.Status != "" {
		q = q.Where("claims.status = ?", f.Status)
	}
	if f.ClaimType != "" {
		q = q.Where("claims.claim_type = ?", f.ClaimType)
	}
	if f.StartDate != nil {
		q = q.Where("claims.created_at >= ?", *f.StartDate)
	}
	if f.EndDate != nil {
		q = q.Where("claims.created_at < ?", f.EndDate.AddDate(0, 0, 1))
	}
	if f.Year > 0 {
		q = q.Where("EXTRACT(YEAR FROM claims.created_at) = ?", f.Year)
	}
	if f.Month > 0 {
		q = q.Where("EXTRACT(MONTH FROM claims.created_at) = ?", f.Month)
	}
	return q
}

// ClaimsOverview returns the status totals for the dashboard header.
func ClaimsOverview(db *gorm.DB, f StatsFilters) (map[string]int64, error) {
	rows := []CountBucket{}
	err := claimQuery(db, f).
		Select("claims.status AS label, COUNT(*) AS count").
		Group("claims.status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	overview := map[string]int64{
		string(models.StatusIngresado): 0,
		string(models.StatusEnProceso): 0,
		string(models.StatusResuelto):  0,
	}
	var total int64
	for _, row := range rows {
		overview[row.Label] = row.Count
		total += row.Count
	}
	overview["total"] = total
	return overview, nil
}

// ClaimsByMonth returns one bucket per calendar month of the given year
// (current year when unset), including empty months.
func ClaimsByMonth(db *gorm.DB, f StatsFilters) ([]MonthBucket, error) {
	year := f.Year
	if year == 0 {
		year = time.Now().UTC().Year()
	}
	f.Year = year
	f.Month = 0

	rows := []MonthBucket{}
	err := claimQuery(db, f).
		Select("EXTRACT(MONTH FROM claims.created_at)::int AS month, COUNT(*) AS count").
		Group("month").
		Order("month").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	byMonth := make(map[int]int64, len(rows))
	for _, row := range rows {
		byMonth[row.Month] = row.Count
	}
	buckets := make([]MonthBucket, 12)
	for m := 1; m <= 12; m++ {
		buckets[m-1] = MonthBucket{Month: m, Count: byMonth[m]}
	}
	return buckets, nil
}

func ClaimsByStatus(db *gorm.DB, f StatsFilters) ([]CountBucket, error) {
	rows := []CountBucket{}
	err := claimQuery(db, f).
		Select("claims.status AS label, COUNT(*) AS count").
		Group("claims.status").
		Order("count DESC").
		Scan(&rows).Error
	return rows, err
}

func ClaimsByType(db *gorm.DB, f StatsFilters) ([]CountBucket, error) {
	rows := []CountBucket{}
	err := claimQuery(db, f).
		Select("claims.claim_type AS label, COUNT(*) AS count").
		Group("claims.claim_type").
		Order("count DESC").
		Scan(&rows).Error
	return rows, err
}

// ClaimsByArea groups by area name; unassigned claims bucket under "Sin área".
func ClaimsByArea(db *gorm.DB, f StatsFilters) ([]CountBucket, error) {
	rows := []CountBucket{}
	err := claimQuery(db, f).
		Joins("LEFT JOIN areas ON areas.id = claims.area_id").
		Select("COALESCE(areas.name, 'Sin área') AS label, COUNT(*) AS count").
		Group("areas.name").
		Order("count DESC").
		Scan(&rows).Error
	return rows, err
}

func ClaimsByProject(db *gorm.DB, f StatsFilters) ([]CountBucket, error) {
	rows := []CountBucket{}
	err := claimQuery(db, f).
		Joins("JOIN projects ON projects.id = claims.project_id").
		Select("projects.name AS label, COUNT(*) AS count").
		Group("projects.name").
		Order("count DESC").
		Scan(&rows).Error
	return rows, err
}

// ClaimsByEmployee counts the claims sitting in each employee's area.
func ClaimsByEmployee(db *gorm.DB, f StatsFilters) ([]CountBucket, error) {
	rows := []CountBucket{}
	err := claimQuery(db, f).
		Joins("JOIN users employees ON employees.area_id = claims.area_id AND employees.role = 'employee' AND employees.is_active").
		Select("COALESCE(NULLIF(employees.full_name, ''), employees.email) AS label, COUNT(*) AS count").
		Group("label").
		Order("count DESC").
		Scan(&rows).Error
	return rows, err
}

// AvgResolutionHours averages resolved_at - created_at over resolved claims.
// Returns nil when nothing matched.
func AvgResolutionHours(db *gorm.DB, f StatsFilters) (*float64, error) {
	var avg *float64
	err := claimQuery(db, f).
		Where("claims.resolved_at IS NOT NULL").
		Select("AVG(EXTRACT(EPOCH FROM (claims.resolved_at - claims.created_at)) / 3600.0)").
		Scan(&avg).Error
	return avg, err
}

// RatingStats summarizes client ratings with a per-star distribution.
func RatingStats(db *gorm.DB, f StatsFilters) (*RatingReport, error) {
	report := &RatingReport{Distribution: map[string]int64{"1": 0, "2": 0, "3": 0, "4": 0, "5": 0}}

	err := claimQuery(db, f).
		Where("claims.client_rating IS NOT NULL").
		Select("AVG(claims.client_rating)").
		Scan(&report.AvgRating).Error
	if err != nil {
		return nil, err
	}

	rows := []CountBucket{}
	err = claimQuery(db, f).
		Where("claims.client_rating IS NOT NULL").
		Select("claims.client_rating::text AS label, COUNT(*) AS count").
		Group("claims.client_rating").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		report.Distribution[row.Label] = row.Count
		report.TotalRatings += row.Count
	}
	return report, nil
}

// KPIs assembles the dashboard headline numbers.
func KPIs(db *gorm.DB, f StatsFilters) (*KPIReport, error) {
	overview, err := ClaimsOverview(db, f)
	if err != nil {
		return nil, err
	}

	report := &KPIReport{
		Total:      overview["total"],
		Ingresados: overview[string(models.StatusIngresado)],
		EnProceso:  overview[string(models.StatusEnProceso)],
		Resueltos:  overview[string(models.StatusResuelto)],
	}
	if report.Total > 0 {
		report.ResolutionRate = float64(report.Resueltos) / float64(report.Total)
	}

	if report.AvgResolutionHours, err = AvgResolutionHours(db, f); err != nil {
		return nil, err
	}

	ratings, err := RatingStats(db, f)
	if err != nil {
		return nil, err
	}
	report.AvgRating = ratings.AvgRating
	report.RatedClaims = ratings.TotalRatings
	return report, nil
}
