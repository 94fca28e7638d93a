// Package mockapi is a stand-in for the platform REST backend. It serves
// the same endpoints and envelopes the console expects, from in-memory
// stores, so the console can be demoed and tested without the real system.
package mockapi

import (
	"crypto/rand"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Makepad-fr/menuadmin/internal/api"
	"github.com/Makepad-fr/menuadmin/internal/model"
)

// Options configure a Server.
type Options struct {
	// Snapshot is served as is when set; otherwise Seed/Size generate data.
	Snapshot *Snapshot
	Seed     int64
	Size     int

	Admin Admin
	// Secret signs session tokens. Random when empty.
	Secret []byte
	// NoAuth serves every route without a token.
	NoAuth bool
	Logger *slog.Logger
}

type Server struct {
	engine  *gin.Engine
	admin   Admin
	secret  []byte
	noAuth  bool
	log     *slog.Logger
	metrics *metrics
	faults  faults

	Items       *Store[model.MenuItem]
	Restaurants *Store[model.Restaurant]
	Customers   *Store[model.Customer]
	Coupons     *Store[model.Coupon]
	Refunds     *Store[model.Refund]
	Legal       *Store[model.LegalPage]
}

func New(opt Options) (*Server, error) {
	snap := opt.Snapshot
	if snap == nil {
		size := opt.Size
		if size <= 0 {
			size = 24
		}
		snap = Seed(opt.Seed, size)
	}
	secret := opt.Secret
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, err
		}
	}
	if opt.Admin.Email == "" && !opt.NoAuth {
		return nil, errors.New("mockapi: admin account required unless auth is disabled")
	}
	log := opt.Logger
	if log == nil {
		log = slog.Default()
	}

	s := &Server{
		admin:       opt.Admin,
		secret:      secret,
		noAuth:      opt.NoAuth,
		log:         log,
		metrics:     newMetrics(),
		Items:       NewStore(snap.Items...),
		Restaurants: NewStore(snap.Restaurants...),
		Customers:   NewStore(snap.Customers...),
		Coupons:     NewStore(snap.Coupons...),
		Refunds:     NewStore(snap.Refunds...),
		Legal:       NewStore(snap.Legal...),
	}
	s.routes()
	return s, nil
}

// Handler returns the HTTP handler serving every route.
func (s *Server) Handler() http.Handler { return s.engine }

// Fail makes op on resource answer with code until ClearFaults. resource
// is the route name, e.g. "items", "users" or "restaurant-items".
func (s *Server) Fail(resource, op string, code int) { s.faults.set(resource, op, code) }

func (s *Server) ClearFaults() { s.faults.clear() }

// Token issues a session token for the admin account.
func (s *Server) Token() (string, error) { return s.issueToken(time.Now()) }

// Snapshot copies the current dataset.
func (s *Server) Snapshot() *Snapshot {
	return &Snapshot{
		Items:       s.Items.List(),
		Restaurants: s.Restaurants.List(),
		Customers:   s.Customers.List(),
		Coupons:     s.Coupons.List(),
		Refunds:     s.Refunds.List(),
		Legal:       s.Legal.List(),
	}
}

func (s *Server) routes() {
	g := gin.New()
	g.Use(gin.Recovery(), s.logRequest, s.metrics.middleware)

	g.GET("/metrics", gin.WrapH(s.metrics.handler()))

	root := g.Group("/api")
	root.GET("/healthz", func(ctx *gin.Context) { ctx.JSON(http.StatusOK, gin.H{"status": "OK"}) })
	root.POST("/auth/login", s.login)

	authed := root.Group("", s.requireAuth)
	authed.GET("/auth/me", s.me)
	register(s, authed, "items", "data", s.Items)
	register(s, authed, "restaurants", "data", s.Restaurants)
	register(s, authed, "users", "users", s.Customers)
	register(s, authed, "coupons", "data", s.Coupons)
	register(s, authed, "refunds", "data", s.Refunds)
	register(s, authed, "legal", "data", s.Legal)
	authed.GET("/restaurants/:id/items", s.restaurantItems)

	s.engine = g
}

// register serves list, toggle and delete for one collection. envelope is
// the key the list is wrapped in.
func register[T model.Entity[T]](s *Server, g *gin.RouterGroup, name, envelope string, st *Store[T]) {
	g.GET("/"+name, func(ctx *gin.Context) {
		if s.injected(ctx, name, OpList) {
			return
		}
		ctx.JSON(http.StatusOK, gin.H{envelope: st.List()})
	})

	g.POST("/"+name+"/toggle", func(ctx *gin.Context) {
		var p api.TogglePayload
		if err := ctx.ShouldBindJSON(&p); err != nil || p.ID == "" || p.Field == "" {
			writeError(ctx, http.StatusBadRequest, "body must be {id, field, value}")
			return
		}
		if s.injected(ctx, name, OpToggle) {
			return
		}
		updated, err := st.SetFlag(string(p.ID), p.Field, p.Value)
		switch {
		case errors.Is(err, ErrNotFound):
			writeError(ctx, http.StatusNotFound, name+" "+string(p.ID)+" does not exist")
			return
		case errors.Is(err, ErrUnknownField):
			writeError(ctx, http.StatusBadRequest, p.Field+" is not a toggleable field")
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"data": updated})
	})

	g.DELETE("/"+name+"/:id", func(ctx *gin.Context) {
		if s.injected(ctx, name, OpDelete) {
			return
		}
		id := ctx.Param("id")
		if err := st.Delete(id); err != nil {
			writeError(ctx, http.StatusNotFound, name+" "+id+" does not exist")
			return
		}
		ctx.Status(http.StatusNoContent)
	})
}

// restaurantItems answers with the restaurant's menu grouped by category.
func (s *Server) restaurantItems(ctx *gin.Context) {
	id := ctx.Param("id")
	if _, err := s.Restaurants.Get(id); err != nil {
		writeError(ctx, http.StatusNotFound, "restaurant "+id+" does not exist")
		return
	}
	if s.injected(ctx, "restaurant-items", OpList) {
		return
	}
	byCategory := map[string][]model.MenuItem{}
	for _, it := range s.Items.List() {
		if string(it.RestaurantID) != id {
			continue
		}
		cat := it.Category
		if cat == "" {
			cat = "Other"
		}
		byCategory[cat] = append(byCategory[cat], it)
	}
	ctx.JSON(http.StatusOK, gin.H{"data": byCategory})
}

func (s *Server) injected(ctx *gin.Context, resource, op string) bool {
	code, ok := s.faults.get(resource, op)
	if !ok {
		return false
	}
	s.metrics.injected.WithLabelValues(resource, op).Inc()
	writeError(ctx, code, "injected failure")
	return true
}

func (s *Server) logRequest(ctx *gin.Context) {
	start := time.Now()
	ctx.Next()
	s.log.Info("request",
		"method", ctx.Request.Method,
		"path", ctx.Request.URL.Path,
		"status", ctx.Writer.Status(),
		"request_id", ctx.GetHeader("X-Request-ID"),
		"duration", time.Since(start),
	)
}

func writeError(ctx *gin.Context, code int, msg string) {
	ctx.JSON(code, gin.H{"message": msg})
}
