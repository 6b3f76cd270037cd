package routes

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"claims-management-server/database"
	"claims-management-server/middleware"
	"claims-management-server/services"
)

// RegisterStatisticsRoutes registers the dashboard aggregates. Every endpoint
// accepts the same filter set; clients are always pinned to their own claims.
func RegisterStatisticsRoutes(router *gin.RouterGroup) {
	stats := router.Group("/statistics")
	{
		stats.GET("", getStatsOverview)
		stats.GET("/by-month", getStatsByMonth)
		stats.GET("/by-status", getStatsByStatus)
		stats.GET("/by-type", getStatsByType)
		stats.GET("/by-area", getStatsByArea)
		stats.GET("/by-project", getStatsByProject)
		stats.GET("/by-employee", getStatsByEmployee)
		stats.GET("/kpis", getStatsKPIs)
		stats.GET("/avg-resolution-time", getStatsAvgResolution)
		stats.GET("/ratings", getStatsRatings)
	}
}

// bindStatsFilters parses the shared filter query params. A bad date or id
// aborts with a 400 and returns ok=false.
func bindStatsFilters(c *gin.Context) (services.StatsFilters, bool) {
	var f services.StatsFilters

	user, _ := middleware.CurrentUser(c)
	if user.IsClient() {
		id := user.ID
		f.ClientID = &id
	} else if clientID, ok := queryID(c, "client_id"); !ok {
		return f, false
	} else {
		f.ClientID = clientID
	}

	employeeID, ok := queryID(c, "employee_id")
	if !ok {
		return f, false
	}
	f.EmployeeID = employeeID

	areaID, ok := queryID(c, "area_id")
	if !ok {
		return f, false
	}
	f.AreaID = areaID

	f.Status = c.Query("status")
	f.ClaimType = c.Query("claim_type")

	for _, date := range []struct {
		param  string
		target **time.Time
	}{
		{"start_date", &f.StartDate},
		{"end_date", &f.EndDate},
	} {
		raw := c.Query(date.param)
		if raw == "" {
			continue
		}
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			abortDetail(c, http.StatusBadRequest, "Fecha inválida, se espera AAAA-MM-DD")
			return f, false
		}
		*date.target = &parsed
	}

	for _, number := range []struct {
		param  string
		target *int
	}{
		{"year", &f.Year},
		{"month", &f.Month},
	} {
		raw := c.Query(number.param)
		if raw == "" {
			continue
		}
		value, err := strconv.Atoi(raw)
		if err != nil || value < 0 {
			abortDetail(c, http.StatusBadRequest, "Parámetro numérico inválido")
			return f, false
		}
		*number.target = value
	}
	if f.Month > 12 {
		abortDetail(c, http.StatusBadRequest, "Mes inválido")
		return f, false
	}

	return f, true
}

func serveStats(c *gin.Context, compute func(services.StatsFilters) (any, error)) {
	filters, ok := bindStatsFilters(c)
	if !ok {
		return
	}
	result, err := compute(filters)
	if err != nil {
		log.WithError(err).Error("statistics query failed")
		abortDetail(c, http.StatusInternalServerError, "No se pudieron calcular las estadísticas")
		return
	}
	c.JSON(http.StatusOK, result)
}

func getStatsOverview(c *gin.Context) {
	serveStats(c, func(f services.StatsFilters) (any, error) {
		return services.ClaimsOverview(database.DB, f)
	})
}

func getStatsByMonth(c *gin.Context) {
	serveStats(c, func(f services.StatsFilters) (any, error) {
		return services.ClaimsByMonth(database.DB, f)
	})
}

func getStatsByStatus(c *gin.Context) {
	serveStats(c, func(f services.StatsFilters) (any, error) {
		return services.ClaimsByStatus(database.DB, f)
	})
}

func getStatsByType(c *gin.Context) {
	serveStats(c, func(f services.StatsFilters) (any, error) {
		return services.ClaimsByType(database.DB, f)
	})
}

func getStatsByArea(c *gin.Context) {
	serveStats(c, func(f services.StatsFilters) (any, error) {
		return services.ClaimsByArea(database.DB, f)
	})
}

func getStatsByProject(c *gin.Context) {
	serveStats(c, func(f services.StatsFilters) (any, error) {
		return services.ClaimsByProject(database.DB, f)
	})
}

func getStatsByEmployee(c *gin.Context) {
	serveStats(c, func(f services.StatsFilters) (any, error) {
		return services.ClaimsByEmployee(database.DB, f)
	})
}

func getStatsKPIs(c *gin.Context) {
	serveStats(c, func(f services.StatsFilters) (any, error) {
		return services.KPIs(database.DB, f)
	})
}

func getStatsAvgResolution(c *gin.Context) {
	serveStats(c, func(f services.StatsFilters) (any, error) {
		avg, err := services.AvgResolutionHours(database.DB, f)
		if err != nil {
			return nil, err
		}
		return gin.H{"avg_resolution_hours": avg}, nil
	})
}

func getStatsRatings(c *gin.Context) {
	serveStats(c, func(f services.StatsFilters) (any, error) {
		return services.RatingStats(database.DB, f)
	})
}
