package handlers

import (
	"trackit-api/internal/apperror"
	"trackit-api/internal/database"
	"trackit-api/internal/response"
	"trackit-api/internal/services"

	"github.com/gin-gonic/gin"
)

// CategoryRequest is shared by categories, subcategories and report
// categories. Categories historically send "category" on create and
// "categoryName" on update; both map to the title.
type CategoryRequest struct {
	Title        *string `json:"title"`
	Category     *string `json:"category"`
	CategoryName *string `json:"categoryName"`
	Description  *string `json:"description"`
}

func (r CategoryRequest) title() *string {
	for _, v := range []*string{r.Title, r.Category, r.CategoryName} {
		if v != nil {
			return v
		}
	}
	return nil
}

func (r CategoryRequest) input() services.CategoryInput {
	in := services.CategoryInput{}
	if t := r.title(); t != nil {
		in.Title = *t
	}
	if r.Description != nil {
		in.Description = *r.Description
	}
	return in
}

func (r CategoryRequest) update() services.CategoryUpdate {
	return services.CategoryUpdate{Title: r.title(), Description: r.Description}
}

type RegionRequest struct {
	Title      *string `json:"title"`
	RSS        *string `json:"rss"`
	Supervisor *string `json:"supervisor"`
}

// StationRequest accepts region as an alias of regionId.
type StationRequest struct {
	Name         *string `json:"name"`
	RegionID     *string `json:"regionId"`
	Region       *string `json:"region"`
	ManagerName  *string `json:"managerName"`
	ManagerPhone *string `json:"managerPhone"`
}

func (r StationRequest) regionID() *string {
	if r.RegionID != nil {
		return r.RegionID
	}
	return r.Region
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func bindBody(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.BadRequest(c, err)
		return false
	}
	return true
}

// Categories

// CreateCategory handles POST /api/categories/create
func CreateCategory(c *gin.Context) {
	user, ok := sessionUser(c)
	if !ok {
		return
	}
	var req CategoryRequest
	if !bindBody(c, &req) {
		return
	}
	item, err := services.NewCategoryService(database.GetDB()).Create(c.Request.Context(), req.input(), user)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, entityMessage("Category", "created"), gin.H{"category": item})
}

func GetCategories(c *gin.Context) {
	items, err := services.NewCategoryService(database.GetDB()).List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, entityMessage("Categories", "fetched"), gin.H{"categories": items})
}

func GetCategoryByID(c *gin.Context) {
	item, err := services.NewCategoryService(database.GetDB()).Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, entityMessage("Category", "fetched"), gin.H{"category": item})
}

func UpdateCategory(c *gin.Context) {
	if _, ok := sessionUser(c); !ok {
		return
	}
	var req CategoryRequest
	if !bindBody(c, &req) {
		return
	}
	item, err := services.NewCategoryService(database.GetDB()).Update(c.Request.Context(), c.Param("id"), req.update())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, entityMessage("Category", "updated"), gin.H{"category": item})
}

func DeleteCategory(c *gin.Context) {
	if _, ok := sessionUser(c); !ok {
		return
	}
	if err := services.NewCategoryService(database.GetDB()).Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, entityMessage("Category", "deleted"), nil)
}

// Subcategories

func CreateSubCategory(c *gin.Context) {
	user, ok := sessionUser(c)
	if !ok {
		return
	}
	var req CategoryRequest
	if !bindBody(c, &req) {
		return
	}
	item, err := services.NewSubCategoryService(database.GetDB()).Create(c.Request.Context(), req.input(), user)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, entityMessage("Subcategory", "created"), gin.H{"subCategory": item})
}

func GetSubCategories(c *gin.Context) {
	items, err := services.NewSubCategoryService(database.GetDB()).List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, entityMessage("Subcategories", "fetched"), gin.H{"subCategories": items})
}

func GetSubCategoryByID(c *gin.Context) {
	item, err := services.NewSubCategoryService(database.GetDB()).Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, entityMessage("Subcategory", "fetched"), gin.H{"subCategory": item})
}

func UpdateSubCategory(c *gin.Context) {
	if _, ok := sessionUser(c); !ok {
		return
	}
	var req CategoryRequest
	if !bindBody(c, &req) {
		return
	}
	item, err := services.NewSubCategoryService(database.GetDB()).Update(c.Request.Context(), c.Param("id"), req.update())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, entityMessage("Subcategory", "updated"), gin.H{"subCategory": item})
}

func DeleteSubCategory(c *gin.Context) {
	if _, ok := sessionUser(c); !ok {
		return
	}
	if err := services.NewSubCategoryService(database.GetDB()).Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, entityMessage("Subcategory", "deleted"), nil)
}

// Report categories

func CreateReportCategory(c *gin.Context) {
	user, ok := sessionUser(c)
	if !ok {
		return
	}
	var req CategoryRequest
	if !bindBody(c, &req) {
		return
	}
	item, err := services.NewReportCategoryService(database.GetDB()).Create(c.Request.Context(), req.input(), user)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, entityMessage("Report category", "created"), gin.H{"category": item})
}

func GetReportCategories(c *gin.Context) {
	items, err := services.NewReportCategoryService(database.GetDB()).List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, entityMessage("Report categories", "fetched"), gin.H{"categories": items})
}

func GetReportCategoryByID(c *gin.Context) {
	item, err := services.NewReportCategoryService(database.GetDB()).Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, entityMessage("Report category", "fetched"), gin.H{"category": item})
}

func UpdateReportCategory(c *gin.Context) {
	if _, ok := sessionUser(c); !ok {
		return
	}
	var req CategoryRequest
	if !bindBody(c, &req) {
		return
	}
	item, err := services.NewReportCategoryService(database.GetDB()).Update(c.Request.Context(), c.Param("id"), req.update())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, entityMessage("Report category", "updated"), gin.H{"category": item})
}

func DeleteReportCategory(c *gin.Context) {
	if _, ok := sessionUser(c); !ok {
		return
	}
	if err := services.NewReportCategoryService(database.GetDB()).Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, entityMessage("Report category", "deleted"), nil)
}

// Regions

func CreateRegion(c *gin.Context) {
	user, ok := sessionUser(c)
	if !ok {
		return
	}
	var req RegionRequest
	if !bindBody(c, &req) {
		return
	}
	item, err := services.NewRegionService(database.GetDB()).Create(c.Request.Context(), services.RegionInput{
		Title:      deref(req.Title),
		RSS:        deref(req.RSS),
		Supervisor: deref(req.Supervisor),
	}, user)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, entityMessage("Region", "created"), gin.H{"region": item})
}

func GetRegions(c *gin.Context) {
	items, err := services.NewRegionService(database.GetDB()).List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, entityMessage("Regions", "fetched"), gin.H{"regions": items})
}

func GetRegionByID(c *gin.Context) {
	item, err := services.NewRegionService(database.GetDB()).Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, entityMessage("Region", "fetched"), gin.H{"region": item})
}

func UpdateRegion(c *gin.Context) {
	if _, ok := sessionUser(c); !ok {
		return
	}
	var req RegionRequest
	if !bindBody(c, &req) {
		return
	}
	item, err := services.NewRegionService(database.GetDB()).Update(c.Request.Context(), c.Param("id"), services.RegionUpdate{
		Title:      req.Title,
		RSS:        req.RSS,
		Supervisor: req.Supervisor,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, entityMessage("Region", "updated"), gin.H{"region": item})
}

func DeleteRegion(c *gin.Context) {
	if _, ok := sessionUser(c); !ok {
		return
	}
	if err := services.NewRegionService(database.GetDB()).Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, entityMessage("Region", "deleted"), nil)
}

// Stations

func CreateStation(c *gin.Context) {
	user, ok := sessionUser(c)
	if !ok {
		return
	}
	var req StationRequest
	if !bindBody(c, &req) {
		return
	}
	regionID := deref(req.regionID())
	if regionID == "" {
		response.Error(c, apperror.Validation("region is required"))
		return
	}
	item, err := services.NewStationService(database.GetDB()).Create(c.Request.Context(), services.StationInput{
		Name:         deref(req.Name),
		RegionID:     regionID,
		ManagerName:  deref(req.ManagerName),
		ManagerPhone: deref(req.ManagerPhone),
	}, user)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, entityMessage("Station", "created"), gin.H{"station": item})
}

func GetStations(c *gin.Context) {
	items, err := services.NewStationService(database.GetDB()).List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, entityMessage("Stations", "fetched"), gin.H{"stations": items})
}

func GetStationByID(c *gin.Context) {
	item, err := services.NewStationService(database.GetDB()).Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, entityMessage("Station", "fetched"), gin.H{"station": item})
}

func UpdateStation(c *gin.Context) {
	if _, ok := sessionUser(c); !ok {
		return
	}
	var req StationRequest
	if !bindBody(c, &req) {
		return
	}
	item, err := services.NewStationService(database.GetDB()).Update(c.Request.Context(), c.Param("id"), services.StationUpdate{
		Name:         req.Name,
		RegionID:     req.regionID(),
		ManagerName:  req.ManagerName,
		ManagerPhone: req.ManagerPhone,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, entityMessage("Station", "updated"), gin.H{"station": item})
}

func DeleteStation(c *gin.Context) {
	if _, ok := sessionUser(c); !ok {
		return
	}
	if err := services.NewStationService(database.GetDB()).Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, entityMessage("Station", "deleted"), nil)
}
