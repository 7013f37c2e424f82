package handlers

import (
	"net/http"
	"strconv"

	"playmateserver/models"
	"playmateserver/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ListCourts returns the court directory, filtered by the query string.
func ListCourts(c *gin.Context, courts *store.CourtStore, logger *zap.Logger) {
	f := store.CourtFilter{
		Region:      c.Query("region"),
		District:    c.Query("district"),
		Search:      c.Query("search"),
		HasLighting: boolQuery(c, "hasLighting"),
		HasParking:  boolQuery(c, "hasParking"),
		HasShower:   boolQuery(c, "hasShower"),
		HasLocker:   boolQuery(c, "hasLocker"),
	}
	if v, err := strconv.Atoi(c.Query("minPrice")); err == nil {
		f.MinPrice = v
	}
	if v, err := strconv.Atoi(c.Query("maxPrice")); err == nil {
		f.MaxPrice = v
	}
	if v, err := strconv.ParseFloat(c.Query("minRating"), 64); err == nil {
		f.MinRating = v
	}
	list := courts.List(f)
	c.JSON(http.StatusOK, gin.H{"success": true, "data": list, "count": len(list)})
}

// boolQuery reads a tri-state facility flag: absent means "either".
func boolQuery(c *gin.Context, name string) *bool {
	v, present := c.GetQuery(name)
	if !present {
		return nil
	}
	b := v == "true"
	return &b
}

// SearchCourts matches name, address or description against ?q.
func SearchCourts(c *gin.Context, courts *store.CourtStore, logger *zap.Logger) {
	list := courts.Search(c.Query("q"))
	c.JSON(http.StatusOK, gin.H{"success": true, "data": list, "count": len(list)})
}

// PopularCourts returns the top-rated courts, ?limit at most (10 by
// default).
func PopularCourts(c *gin.Context, courts *store.CourtStore, logger *zap.Logger) {
	limit := 10
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 {
		limit = v
	}
	list := courts.Popular(limit)
	c.JSON(http.StatusOK, gin.H{"success": true, "data": list, "count": len(list)})
}

// CourtsByRegion lists the courts of one region.
func CourtsByRegion(c *gin.Context, courts *store.CourtStore, logger *zap.Logger) {
	list := courts.List(store.CourtFilter{Region: c.Param("region")})
	c.JSON(http.StatusOK, gin.H{"success": true, "data": list, "count": len(list)})
}

// GetCourt returns one court by ID.
func GetCourt(c *gin.Context, courts *store.CourtStore, logger *zap.Logger) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		fail(c, logger, models.ValidationError("invalid court id"))
		return
	}
	court, err := courts.Get(id)
	if err != nil {
		fail(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": court})
}
