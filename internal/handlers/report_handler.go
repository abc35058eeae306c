package handlers

import (
	"trackit-api/internal/database"
	"trackit-api/internal/models"
	"trackit-api/internal/realtime"
	"trackit-api/internal/response"
	"trackit-api/internal/services"

	"github.com/gin-gonic/gin"
)

// CreateReportRequest accepts region/reportCategory/station as aliases of
// the Id-suffixed fields.
type CreateReportRequest struct {
	Title            string              `json:"title" binding:"required"`
	RegionID         string              `json:"regionId"`
	Region           string              `json:"region"`
	ReportCategoryID string              `json:"reportCategoryId"`
	ReportCategory   string              `json:"reportCategory"`
	StationID        string              `json:"stationId"`
	Station          string              `json:"station"`
	Description      string              `json:"description"`
	Pump             string              `json:"pump"`
	Comment          string              `json:"comment"`
	Status           models.ReportStatus `json:"status"`
}

type UpdateReportRequest struct {
	Status  *models.ReportStatus `json:"status"`
	Comment *string              `json:"comment"`
	Pump    *string              `json:"pump"`
}

func reportService() *services.ReportService {
	return services.NewReportService(database.GetDB())
}

func notifyReport(eventType string, report *models.Report, actor *models.User) {
	realtime.GetHub().NotifyAll(realtime.Event{
		Type:     eventType,
		EntityID: report.ID,
		ActorID:  actor.ID,
	})
}

// CreateReport handles POST /api/reports/create
func CreateReport(c *gin.Context) {
	user, ok := sessionUser(c)
	if !ok {
		return
	}

	var req CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err)
		return
	}

	report, err := reportService().Create(c.Request.Context(), services.CreateReportInput{
		Title:            req.Title,
		RegionID:         firstNonEmpty(req.RegionID, req.Region),
		ReportCategoryID: firstNonEmpty(req.ReportCategoryID, req.ReportCategory),
		StationID:        firstNonEmpty(req.StationID, req.Station),
		Description:      req.Description,
		Pump:             req.Pump,
		Comment:          req.Comment,
		Status:           req.Status,
	}, user)
	if err != nil {
		response.Error(c, err)
		return
	}

	notifyReport(realtime.ReportCreated, report, user)
	response.Created(c, entityMessage("Report", "created"), gin.H{"report": report})
}

// GetReports handles GET /api/reports
// Optional query params: region, reportCategory, station, title, status,
// startDate, endDate (bounds on createdAt).
func GetReports(c *gin.Context) {
	filter := services.ReportFilter{
		Region:         c.Query("region"),
		ReportCategory: c.Query("reportCategory"),
		Station:        c.Query("station"),
		Title:          c.Query("title"),
		Status:         models.ReportStatus(c.Query("status")),
	}
	var err error
	if filter.StartDate, filter.EndDate, err = dateRange(c); err != nil {
		response.Error(c, err)
		return
	}

	reports, err := reportService().List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, entityMessage("Reports", "fetched"), gin.H{"reports": reports})
}

// GetReportByID handles GET /api/reports/:id
func GetReportByID(c *gin.Context) {
	report, err := reportService().Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, entityMessage("Report", "fetched"), gin.H{"report": report})
}

// UpdateReport handles PATCH /api/reports/:id
func UpdateReport(c *gin.Context) {
	user, ok := sessionUser(c)
	if !ok {
		return
	}

	var req UpdateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err)
		return
	}

	report, err := reportService().Update(c.Request.Context(), c.Param("id"), services.UpdateReportInput{
		Status:  req.Status,
		Comment: req.Comment,
		Pump:    req.Pump,
	}, user)
	if err != nil {
		response.Error(c, err)
		return
	}

	notifyReport(realtime.ReportUpdated, report, user)
	response.OK(c, entityMessage("Report", "updated"), gin.H{"report": report})
}

// DeleteReport handles DELETE /api/reports/:id
func DeleteReport(c *gin.Context) {
	user, ok := sessionUser(c)
	if !ok {
		return
	}

	report, err := reportService().Delete(c.Request.Context(), c.Param("id"), user)
	if err != nil {
		response.Error(c, err)
		return
	}

	notifyReport(realtime.ReportDeleted, report, user)
	response.OK(c, entityMessage("Report", "deleted"), nil)
}
