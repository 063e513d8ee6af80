package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/sunrise-events/sunrise/internal/database/contacts"
)

// AdminStats is the body of GET /admin/stats.
type AdminStats struct {
	Users              int64                    `json:"users"`
	Contacts           int64                    `json:"contacts"`
	ContactsByCategory []contacts.CategoryCount `json:"contactsByCategory"`
	ImportsLast24h     int64                    `json:"importsLast24h"`
}

type AdminController struct {
	users    UserCounter
	contacts ContactStats
	imports  ImportCounter
	excluded []uint
	now      func() time.Time
}

// NewAdminController creates the statistics controller. Users listed in
// excluded are left out of every figure.
func NewAdminController(users UserCounter, contacts ContactStats, imports ImportCounter, excluded []uint) *AdminController {
	return &AdminController{
		users:    users,
		contacts: contacts,
		imports:  imports,
		excluded: excluded,
		now:      time.Now,
	}
}

// Stats returns platform-wide counters.
// GET /admin/stats
func (ac *AdminController) Stats(c *gin.Context) {
	stats, err := ac.collect(c.Request.Context())
	if err != nil {
		respondInternalError(c, err, "admin stats")
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (ac *AdminController) collect(ctx context.Context) (AdminStats, error) {
	var stats AdminStats
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		n, err := ac.users.CountExcluding(ctx, ac.excluded)
		stats.Users = n
		return err
	})
	g.Go(func() error {
		n, err := ac.contacts.CountExcluding(ctx, ac.excluded)
		stats.Contacts = n
		return err
	})
	g.Go(func() error {
		byCategory, err := ac.contacts.CountByCategoryExcluding(ctx, ac.excluded)
		stats.ContactsByCategory = byCategory
		return err
	})
	g.Go(func() error {
		n, err := ac.imports.CountImportsSince(ctx, ac.now().Add(-24*time.Hour), ac.excluded)
		stats.ImportsLast24h = n
		return err
	})

	if err := g.Wait(); err != nil {
		return AdminStats{}, err
	}
	if stats.ContactsByCategory == nil {
		stats.ContactsByCategory = []contacts.CategoryCount{}
	}
	return stats, nil
}
