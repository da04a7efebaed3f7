package realtime

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"kasuwa.GO/api"
	"kasuwa.GO/config"
	"kasuwa.GO/core/cache"
	inventoryRepo "kasuwa.GO/model/repository/inventory"
)

func init() {
	api.RegisterModule(RegisterRealtimeRoutes)
}

// AvailabilityResponse is the storefront-facing availability shape.
type AvailabilityResponse struct {
	ProductID string `json:"product_id"`
	Available int    `json:"available"`
	Status    string `json:"status"`
	Sellable  bool   `json:"sellable"`
}

// Singleton repository (created once per DB).
var (
	recordsInstance *inventoryRepo.RecordRepository
	repoOnce        sync.Once
)

func getRecords(db *gorm.DB) *inventoryRepo.RecordRepository {
	repoOnce.Do(func() {
		recordsInstance = inventoryRepo.NewRecordRepository(db)
	})
	return recordsInstance
}

func getCryptKey() string {
	return config.GetEnv("KASUWA_CRYPT_KEY", "")
}

// verifyClientSignature validates HMAC-SHA256 over the client id using
// constant-time comparison. An empty crypt key disables the check.
func verifyClientSignature(clientID, signature, cryptKey string) bool {
	if cryptKey == "" || clientID == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(cryptKey))
	mac.Write([]byte(clientID))
	expected := mac.Sum(nil)
	sig, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	return hmac.Equal(expected, sig)
}

func fetchAvailability(records *inventoryRepo.RecordRepository, productID string) (*AvailabilityResponse, error) {
	c := cache.GetInstance()
	cacheKey := "rt_availability:" + productID
	if v, ok := c.Get(cacheKey); ok {
		if resp, isResp := v.(*AvailabilityResponse); isResp {
			return resp, nil
		}
	}
	rec, err := records.Get(productID)
	if err != nil {
		return nil, err
	}
	resp := &AvailabilityResponse{
		ProductID: rec.ProductID,
		Available: rec.AvailableQuantity(),
		Status:    rec.Status,
		Sellable:  rec.Sellable(),
	}
	c.Set(cacheKey, resp, 10, []string{"product:" + productID})
	return resp, nil
}

// RegisterRealtimeRoutes sets up the storefront availability API. The paths
// are on the auth skipper list; the optional HMAC client signature is the
// only gate.
func RegisterRealtimeRoutes(apiGroup *echo.Group, db *gorm.DB) {
	g := apiGroup.Group("/realtime")

	// GET /api/realtime/availability?product_id=XXX (or product_ids=A,B,C)
	g.GET("/availability", func(c echo.Context) error {
		start := time.Now()

		clientID := c.Request().Header.Get("X-Client-ID")
		clientSig := c.Request().Header.Get("X-Client-Sig")
		cryptKey := getCryptKey()

		if cryptKey != "" && !verifyClientSignature(clientID, clientSig, cryptKey) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid signature"})
		}

		records := getRecords(db)

		if ids := c.QueryParam("product_ids"); ids != "" {
			return batchAvailability(c, records, ids, start)
		}

		productID := c.QueryParam("product_id")
		if productID == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "product_id required"})
		}

		resp, err := fetchAvailability(records, productID)
		duration := time.Since(start).Milliseconds()
		c.Response().Header().Set("X-Request-Duration-ms", strconv.FormatInt(duration, 10))
		if err != nil {
			return c.JSON(http.StatusNotFound, echo.Map{
				"error":               "product not found",
				"request_duration_ms": duration,
			})
		}
		return c.JSON(http.StatusOK, resp)
	})
}

// batchAvailability resolves up to 50 products in parallel. Unknown products
// are omitted from the result rather than failing the batch.
func batchAvailability(c echo.Context, records *inventoryRepo.RecordRepository, ids string, start time.Time) error {
	productIDs := strings.Split(ids, ",")
	if len(productIDs) > 50 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "at most 50 product_ids per request"})
	}

	results := make([]*AvailabilityResponse, len(productIDs))
	eg := new(errgroup.Group)
	eg.SetLimit(8)

	for i, id := range productIDs {
		i, id := i, strings.TrimSpace(id)
		if id == "" {
			continue
		}
		eg.Go(func() error {
			if resp, err := fetchAvailability(records, id); err == nil {
				results[i] = resp
			}
			return nil
		})
	}
	_ = eg.Wait()

	items := make([]*AvailabilityResponse, 0, len(results))
	for _, r := range results {
		if r != nil {
			items = append(items, r)
		}
	}

	duration := time.Since(start).Milliseconds()
	c.Response().Header().Set("X-Request-Duration-ms", strconv.FormatInt(duration, 10))
	return c.JSON(http.StatusOK, echo.Map{"items": items, "count": len(items)})
}
