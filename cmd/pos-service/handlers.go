package main

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/ordenes-pos/internal/backend"
	"github.com/MikeMC777/ordenes-pos/internal/catalog"
	"github.com/MikeMC777/ordenes-pos/internal/httpx"
	"github.com/MikeMC777/ordenes-pos/internal/journal"
	"github.com/MikeMC777/ordenes-pos/internal/logger"
	"github.com/MikeMC777/ordenes-pos/internal/order"
	"github.com/MikeMC777/ordenes-pos/internal/orderlist"
	"github.com/MikeMC777/ordenes-pos/internal/pos"
	"github.com/MikeMC777/ordenes-pos/internal/report"
)

type OpenSessionRequest struct {
	RestaurantID string `json:"restaurant_id" example:"64f1c0a2e4b0a1b2c3d4e5f6"`
}

type SelectTableRequest struct {
	TableID string `json:"table_id" binding:"required"`
}

type AddItemRequest struct {
	MenuItemID string `json:"menu_item_id" binding:"required"`
}

type ChangeQuantityRequest struct {
	Delta int `json:"delta" example:"-1"`
}

type NoteRequest struct {
	Note string `json:"note"`
}

type DetailsRequest struct {
	Notes         string `json:"notes"`
	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone"`
}

type PlaceOrderRequest struct {
	OrderType string `json:"order_type" example:"dine_in"`
}

// AmountPaid accepts a JSON number or a decimal string.
type PaymentRequest struct {
	PaymentMethod string          `json:"payment_method" binding:"required" example:"cash"`
	AmountPaid    decimal.Decimal `json:"amount_paid" swaggertype:"string" example:"3000.00"`
}

type CatalogResponse struct {
	Restaurant string             `json:"restaurant"`
	Tables     []backend.Table    `json:"tables"`
	MenuItems  []backend.MenuItem `json:"menu_items"`
	LoadedAt   time.Time          `json:"loaded_at"`
}

func newRouter(st *pos.Store, board *orderlist.Board, sales journal.Journal, defaultRestaurant string, l *logger.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), httpx.RequestID(), httpx.Logger(l))

	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	r.POST("/sessions", openSessionHandler(st, defaultRestaurant))
	s := r.Group("/sessions/:id", withSession(st))
	s.GET("", getSessionHandler())
	s.DELETE("", closeSessionHandler(st))
	s.GET("/catalog", getCatalogHandler())
	s.POST("/catalog/refresh", refreshCatalogHandler())
	s.PUT("/table", selectTableHandler())
	s.POST("/items", addItemHandler())
	s.PATCH("/items/:menuItemId", changeQuantityHandler())
	s.DELETE("/items/:menuItemId", removeItemHandler())
	s.PUT("/lines/:index/note", setNoteHandler())
	s.PUT("/details", setDetailsHandler())
	s.DELETE("/draft", clearDraftHandler())
	s.POST("/place", placeOrderHandler())
	s.POST("/checkout", checkoutHandler())
	s.POST("/payment", paymentHandler())
	s.POST("/cancel", cancelHandler())

	if board != nil {
		r.GET("/orders", orderBoardHandler(board))
	}
	r.GET("/reports/pnl", pnlHandler(sales))
	r.NoRoute(httpx.NotFound)
	return r
}

func withSession(st *pos.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, err := st.Get(c.Param("id"))
		if err != nil {
			httpx.Fail(c, http.StatusNotFound, err.Error())
			return
		}
		c.Set("session", s)
		c.Next()
	}
}

func session(c *gin.Context) *pos.Session {
	return c.MustGet("session").(*pos.Session)
}

// writeError maps the order error taxonomy onto HTTP statuses.
func writeError(c *gin.Context, err error) {
	var (
		pre    *order.PreconditionError
		val    *order.ValidationError
		remote *order.RemoteError
	)
	switch {
	case errors.As(err, &pre):
		httpx.Fail(c, http.StatusUnprocessableEntity, pre.Message)
	case errors.As(err, &val):
		details := gin.H{"field": val.Field}
		if val.Shortfall.IsPositive() {
			details["shortfall"] = val.Shortfall.StringFixed(2)
		}
		httpx.FailWith(c, http.StatusBadRequest, val.Error(), details)
	case errors.As(err, &remote):
		httpx.Fail(c, http.StatusBadGateway, remote.Error())
	case errors.Is(err, pos.ErrSessionNotFound),
		errors.Is(err, pos.ErrUnknownTable),
		errors.Is(err, pos.ErrUnknownMenuItem):
		httpx.Fail(c, http.StatusNotFound, err.Error())
	default:
		httpx.Fail(c, http.StatusInternalServerError, err.Error())
	}
}

func respondView(c *gin.Context, v pos.View, err error) {
	if err != nil {
		writeError(c, err)
		return
	}
	httpx.OK(c, http.StatusOK, v)
}

// openSessionHandler godoc
// @Summary  Open a POS session
// @Tags     sessions
// @Accept   json
// @Produce  json
// @Param    body body OpenSessionRequest false "restaurant"
// @Success  201 {object} httpx.Envelope
// @Failure  502 {object} httpx.Envelope
// @Router   /sessions [post]
func openSessionHandler(st *pos.Store, defaultRestaurant string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in OpenSessionRequest
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&in); err != nil {
				httpx.Fail(c, http.StatusBadRequest, "invalid json")
				return
			}
		}
		rest := strings.TrimSpace(in.RestaurantID)
		if rest == "" {
			rest = defaultRestaurant
		}
		s, err := st.Open(c.Request.Context(), rest)
		if err != nil {
			httpx.Fail(c, http.StatusBadGateway, err.Error())
			return
		}
		httpx.OK(c, http.StatusCreated, s.View())
	}
}

// @Summary  Current draft with totals
// @Tags     sessions
// @Produce  json
// @Param    id path string true "session id"
// @Success  200 {object} httpx.Envelope
// @Router   /sessions/{id} [get]
func getSessionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		httpx.OK(c, http.StatusOK, session(c).View())
	}
}

func closeSessionHandler(st *pos.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := st.Close(c.Param("id")); err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// @Summary  Cached catalog, optionally filtered
// @Tags     catalog
// @Produce  json
// @Param    id           path  string true  "session id"
// @Param    category     query string false "menu category"
// @Param    search       query string false "menu name/category or table number"
// @Param    active       query bool   false "active menu items only"
// @Param    table_status query string false "table status"
// @Success  200 {object} httpx.Envelope
// @Router   /sessions/{id}/catalog [get]
func getCatalogHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		snap, ok := session(c).Catalog()
		if !ok {
			httpx.Fail(c, http.StatusServiceUnavailable, catalog.ErrNotLoaded.Error())
			return
		}
		active, _ := strconv.ParseBool(c.Query("active"))
		status := backend.TableStatus(c.Query("table_status"))
		if status != "" && !status.Valid() {
			httpx.Fail(c, http.StatusBadRequest, "invalid table_status")
			return
		}
		httpx.OK(c, http.StatusOK, CatalogResponse{
			Restaurant: snap.Restaurant,
			Tables:     snap.FilterTables(catalog.TableFilter{Status: status, Search: c.Query("search")}),
			MenuItems: snap.FilterMenu(catalog.MenuFilter{
				Category:   c.Query("category"),
				Search:     c.Query("search"),
				ActiveOnly: active,
			}),
			LoadedAt: snap.LoadedAt,
		})
	}
}

func refreshCatalogHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		snap, err := session(c).RefreshCatalog(c.Request.Context())
		if err != nil {
			httpx.Fail(c, http.StatusBadGateway, err.Error())
			return
		}
		httpx.OK(c, http.StatusOK, snap)
	}
}

// @Summary  Bind the draft to a table (drops unsaved lines)
// @Tags     draft
// @Accept   json
// @Produce  json
// @Param    id   path string             true "session id"
// @Param    body body SelectTableRequest true "table"
// @Success  200 {object} httpx.Envelope
// @Failure  404 {object} httpx.Envelope
// @Router   /sessions/{id}/table [put]
func selectTableHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var in SelectTableRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			httpx.Fail(c, http.StatusBadRequest, "table_id is required")
			return
		}
		v, err := session(c).SelectTable(in.TableID)
		respondView(c, v, err)
	}
}

// @Summary  Add a menu item (increments an existing line)
// @Tags     draft
// @Accept   json
// @Produce  json
// @Param    id   path string         true "session id"
// @Param    body body AddItemRequest true "menu item"
// @Success  200 {object} httpx.Envelope
// @Failure  422 {object} httpx.Envelope
// @Router   /sessions/{id}/items [post]
func addItemHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var in AddItemRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			httpx.Fail(c, http.StatusBadRequest, "menu_item_id is required")
			return
		}
		v, err := session(c).AddItem(in.MenuItemID)
		respondView(c, v, err)
	}
}

func changeQuantityHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var in ChangeQuantityRequest
		if err := c.ShouldBindJSON(&in); err != nil || in.Delta == 0 ||
			in.Delta > order.MaxQuantity || in.Delta < -order.MaxQuantity {
			httpx.Fail(c, http.StatusBadRequest, fmt.Sprintf("delta must be a non-zero integer between -%d and %d", order.MaxQuantity, order.MaxQuantity))
			return
		}
		v, err := session(c).ChangeQuantity(c.Param("menuItemId"), in.Delta)
		respondView(c, v, err)
	}
}

func removeItemHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		v, err := session(c).RemoveItem(c.Param("menuItemId"))
		respondView(c, v, err)
	}
}

func setNoteHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		idx, err := strconv.Atoi(c.Param("index"))
		if err != nil {
			httpx.Fail(c, http.StatusBadRequest, "index must be an integer")
			return
		}
		var in NoteRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			httpx.Fail(c, http.StatusBadRequest, "invalid json")
			return
		}
		v, err := session(c).SetNote(idx, in.Note)
		respondView(c, v, err)
	}
}

func setDetailsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var in DetailsRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			httpx.Fail(c, http.StatusBadRequest, "invalid json")
			return
		}
		v, err := session(c).SetDetails(strings.TrimSpace(in.Notes), strings.TrimSpace(in.CustomerName), strings.TrimSpace(in.CustomerPhone))
		respondView(c, v, err)
	}
}

func clearDraftHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		v, err := session(c).Clear()
		respondView(c, v, err)
	}
}

// @Summary  Submit the draft to the order backend
// @Tags     checkout
// @Accept   json
// @Produce  json
// @Param    id   path string            true  "session id"
// @Param    body body PlaceOrderRequest false "order type"
// @Success  200 {object} httpx.Envelope
// @Failure  400 {object} httpx.Envelope
// @Failure  422 {object} httpx.Envelope
// @Failure  502 {object} httpx.Envelope
// @Router   /sessions/{id}/place [post]
func placeOrderHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var in PlaceOrderRequest
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&in); err != nil {
				httpx.Fail(c, http.StatusBadRequest, "invalid json")
				return
			}
		}
		v, err := session(c).PlaceOrder(c.Request.Context(), in.OrderType)
		respondView(c, v, err)
	}
}

func checkoutHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		due, err := session(c).Checkout()
		if err != nil {
			writeError(c, err)
			return
		}
		httpx.OK(c, http.StatusOK, due)
	}
}

// @Summary  Take payment for a placed order
// @Tags     checkout
// @Accept   json
// @Produce  json
// @Param    id   path string         true "session id"
// @Param    body body PaymentRequest true "payment"
// @Success  200 {object} httpx.Envelope
// @Failure  400 {object} httpx.Envelope
// @Failure  422 {object} httpx.Envelope
// @Failure  502 {object} httpx.Envelope
// @Router   /sessions/{id}/payment [post]
func paymentHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var in PaymentRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			httpx.Fail(c, http.StatusBadRequest, "payment_method is required")
			return
		}
		if in.AmountPaid.IsNegative() {
			httpx.Fail(c, http.StatusBadRequest, "amount_paid must not be negative")
			return
		}
		rc, err := session(c).CompletePayment(c.Request.Context(), order.PaymentData{
			Method:     in.PaymentMethod,
			AmountPaid: in.AmountPaid,
		})
		if err != nil {
			writeError(c, err)
			return
		}
		httpx.OK(c, http.StatusOK, rc)
	}
}

func cancelHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		v, err := session(c).Cancel(c.Request.Context())
		respondView(c, v, err)
	}
}

// @Summary  Auto-refreshed order list
// @Tags     orders
// @Produce  json
// @Param    status query string false "order status"
// @Success  200 {object} httpx.Envelope
// @Router   /orders [get]
func orderBoardHandler(board *orderlist.Board) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap, err := board.Snapshot()
		if err != nil && snap.Generation == 0 {
			httpx.Fail(c, http.StatusBadGateway, err.Error())
			return
		}
		httpx.OK(c, http.StatusOK, gin.H{
			"orders":     snap.Filter(c.Query("status")),
			"updated_at": snap.UpdatedAt,
			"stale":      err != nil,
		})
	}
}

// @Summary  Profit and loss over [from, to] (dates inclusive, UTC)
// @Tags     reports
// @Produce  json
// @Produce  text/csv
// @Param    from   query string false "YYYY-MM-DD, defaults to today"
// @Param    to     query string false "YYYY-MM-DD, defaults to from"
// @Param    format query string false "csv to export"
// @Success  200 {object} httpx.Envelope
// @Router   /reports/pnl [get]
func pnlHandler(sales journal.Journal) gin.HandlerFunc {
	return func(c *gin.Context) {
		today := time.Now().UTC().Truncate(24 * time.Hour)
		from, err := parseDay(c.Query("from"), today)
		if err != nil {
			httpx.Fail(c, http.StatusBadRequest, "from must be YYYY-MM-DD")
			return
		}
		last, err := parseDay(c.Query("to"), from)
		if err != nil || last.Before(from) {
			httpx.Fail(c, http.StatusBadRequest, "to must be YYYY-MM-DD and not before from")
			return
		}
		to := last.AddDate(0, 0, 1)

		entries, err := sales.List(c.Request.Context(), from, to)
		if err != nil {
			httpx.Fail(c, http.StatusInternalServerError, err.Error())
			return
		}
		p := report.Build(entries, from, to)

		if c.Query("format") == "csv" {
			c.Header("Content-Type", "text/csv")
			c.Header("Content-Disposition", "attachment; filename=pnl-"+from.Format("20060102")+".csv")
			c.Status(http.StatusOK)
			if err := report.WriteCSV(c.Writer, p); err != nil {
				_ = c.Error(err)
			}
			return
		}
		httpx.OK(c, http.StatusOK, p)
	}
}

func parseDay(v string, def time.Time) (time.Time, error) {
	if v == "" {
		return def, nil
	}
	return time.Parse("2006-01-02", v)
}
