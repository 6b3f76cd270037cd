package routes

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Handlers share the process-wide logger; main configures it.
var log = logrus.StandardLogger()

// Error bodies follow the backend contract: a JSON object with "detail".
func abortDetail(c *gin.Context, status int, detail string) {
	c.JSON(status, gin.H{"detail": detail})
}

func notFound(c *gin.Context) {
	c.Status(http.StatusNotFound)
}

// isUniqueViolation reports whether err is a Postgres duplicate-key error.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func paramID(c *gin.Context, name string) (uint, bool) {
	value, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		abortDetail(c, http.StatusBadRequest, "Identificador inválido")
		return 0, false
	}
	return uint(value), true
}

func queryID(c *gin.Context, name string) (*uint, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		abortDetail(c, http.StatusBadRequest, "Parámetro inválido: "+name)
		return nil, false
	}
	id := uint(value)
	return &id, true
}
