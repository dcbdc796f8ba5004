package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/airsante/airwatch/internal/airquality"
	"github.com/airsante/airwatch/internal/dataset"
	"github.com/airsante/airwatch/internal/history"
	"github.com/airsante/airwatch/internal/table"
)

var validate = validator.New()

const dateOnly = "2006-01-02"

// tableQuery holds the shared filters of the pollutant table endpoints.
type tableQuery struct {
	Departement string `form:"departement"`
	Polluant    string `form:"polluant"`
	Week        string `form:"week"`
	Start       string `form:"start" validate:"omitempty,datetime=2006-01-02"`
	End         string `form:"end" validate:"omitempty,datetime=2006-01-02"`
	Limit       int    `form:"limit" validate:"omitempty,gt=0"`
}

func (s *Server) handleDaily(c *gin.Context) {
	s.serveTable(c, dataset.Daily, airquality.ColDateStart)
}

func (s *Server) handleWeekly(c *gin.Context) {
	s.serveTable(c, dataset.Weekly, "")
}

func (s *Server) handleIQA(c *gin.Context) {
	s.serveTable(c, dataset.IQADaily, airquality.ColDateEnd)
}

// serveTable loads a dataset, applies the query filters and returns the
// matching rows. dateCol selects the column the start/end range applies to;
// the weekly dataset has none and is filtered by week label instead.
func (s *Server) serveTable(c *gin.Context, name, dateCol string) {
	var q tableQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := validate.Struct(q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	t, ok := s.readDataset(c, name)
	if !ok {
		return
	}

	filtered := filterTable(t, q, dateCol)
	if q.Limit > 0 && len(filtered.Rows) > q.Limit {
		filtered.Rows = filtered.Rows[:q.Limit]
	} else if q.Limit == 0 && len(filtered.Rows) > s.cfg.DefaultLimit {
		filtered.Rows = filtered.Rows[:s.cfg.DefaultLimit]
	}

	c.JSON(http.StatusOK, gin.H{
		"dataset": name,
		"count":   len(filtered.Rows),
		"columns": filtered.Headers,
		"rows":    filtered.Rows,
	})
}

// asthmeQuery holds the filters of the asthma endpoint.
type asthmeQuery struct {
	Departement string `form:"departement"`
	Week        string `form:"week"`
	Wide        bool   `form:"wide"`
}

// handleAsthme serves the weekly asthma-visit table, by default as the long
// (week, department, value) projection.
func (s *Server) handleAsthme(c *gin.Context) {
	var q asthmeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	t, ok := s.readDataset(c, dataset.AsthmeWeekly)
	if !ok {
		return
	}

	if q.Wide {
		c.JSON(http.StatusOK, gin.H{
			"dataset": dataset.AsthmeWeekly,
			"count":   len(t.Rows),
			"columns": t.Headers,
			"rows":    t.Rows,
		})
		return
	}

	long := history.Long(t)
	out := table.New(long.Headers...)
	for _, row := range long.Rows {
		if q.Departement != "" && !strings.EqualFold(row["departement"], q.Departement) {
			continue
		}
		if q.Week != "" && row["semaine"] != q.Week {
			continue
		}
		out.Append(row)
	}

	c.JSON(http.StatusOK, gin.H{
		"dataset": dataset.AsthmeWeekly,
		"count":   len(out.Rows),
		"columns": out.Headers,
		"rows":    out.Rows,
	})
}

func (s *Server) readDataset(c *gin.Context, name string) (*table.Table, bool) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	t, err := s.store.Read(ctx, name)
	if err != nil {
		if errors.Is(err, dataset.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "dataset not available yet"})
			return nil, false
		}
		s.logger.Error("read %s: %v", name, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read dataset"})
		return nil, false
	}
	return t, true
}

func filterTable(t *table.Table, q tableQuery, dateCol string) *table.Table {
	var start, end time.Time
	if q.Start != "" {
		start, _ = time.Parse(dateOnly, q.Start)
	}
	if q.End != "" {
		// Inclusive upper bound: the whole end day.
		end, _ = time.Parse(dateOnly, q.End)
		end = end.Add(24*time.Hour - time.Second)
	}

	out := table.New(t.Headers...)
	for _, row := range t.Rows {
		if q.Departement != "" &&
			!strings.EqualFold(row[airquality.ColDeptCode], q.Departement) &&
			!strings.EqualFold(row[airquality.ColDept], q.Departement) {
			continue
		}
		if q.Polluant != "" && !strings.EqualFold(row[airquality.ColPollutant], q.Polluant) {
			continue
		}
		if q.Week != "" && row[airquality.ColWeek] != q.Week {
			continue
		}
		if dateCol != "" && (!start.IsZero() || !end.IsZero()) {
			ts, err := time.Parse(airquality.TimeLayout, row[dateCol])
			if err != nil {
				continue
			}
			if !start.IsZero() && ts.Before(start) {
				continue
			}
			if !end.IsZero() && ts.After(end) {
				continue
			}
		}
		out.Append(row)
	}
	return out
}
