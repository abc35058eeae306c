package models

// ReportStatus is the lifecycle state of a field report.
type ReportStatus string

const (
	ReportOpen       ReportStatus = "Open"
	ReportInProgress ReportStatus = "In Progress"
	ReportClosed     ReportStatus = "Closed"
)

func (s ReportStatus) Valid() bool {
	switch s {
	case ReportOpen, ReportInProgress, ReportClosed:
		return true
	}
	return false
}

// Region groups stations under a supervisor.
type Region struct {
	Base
	Title      string `json:"title" gorm:"not null;uniqueIndex"`
	RSS        string `json:"rss" gorm:"column:rss"`
	Supervisor string `json:"supervisor"`
	AuthorID   string `json:"author" gorm:"column:author_id;index"`

	StationIDs []string `json:"stations" gorm:"-"`
	ReportIDs  []string `json:"reports" gorm:"-"`

	Stations []Station `json:"stationDetails,omitempty" gorm:"foreignKey:RegionID"`
}

func (Region) TableName() string {
	return "regions"
}

// Station is a site inside a region; reports are filed against stations.
type Station struct {
	Base
	Name         string `json:"name" gorm:"not null;uniqueIndex"`
	RegionID     string `json:"regionId" gorm:"column:region_id;not null;index"`
	ManagerName  string `json:"managerName" gorm:"column:manager_name;not null"`
	ManagerPhone string `json:"managerPhone" gorm:"column:manager_phone;not null"`
	AuthorID     string `json:"author" gorm:"column:author_id;index"`

	ReportIDs []string `json:"reports" gorm:"-"`

	Region *Region `json:"region,omitempty" gorm:"foreignKey:RegionID"`
}

func (Station) TableName() string {
	return "stations"
}

// ReportCategory classifies reports.
type ReportCategory struct {
	Base
	Title       string `json:"title" gorm:"not null;uniqueIndex"`
	Description string `json:"description"`
	AuthorID    string `json:"author" gorm:"column:author_id;index"`

	ReportIDs []string `json:"reports" gorm:"-"`
}

func (ReportCategory) TableName() string {
	return "report_categories"
}

// ReportStationsTable links reports to the stations they were filed against.
const ReportStationsTable = "report_stations"

// Report is an incident report for a station.
type Report struct {
	Base
	Title            string       `json:"title" gorm:"not null;index"`
	RegionID         string       `json:"regionId" gorm:"column:region_id;not null;index"`
	ReportCategoryID string       `json:"reportCategoryId" gorm:"column:report_category_id;not null;index"`
	Description      string       `json:"description"`
	Pump             string       `json:"pump"`
	Comment          string       `json:"comment"`
	Status           ReportStatus `json:"status" gorm:"not null;default:'Open';index"`
	AuthorID         string       `json:"author" gorm:"column:author_id;index"`

	StationIDs []string `json:"stationIds" gorm:"-"`

	Region         *Region         `json:"region,omitempty" gorm:"foreignKey:RegionID"`
	ReportCategory *ReportCategory `json:"reportCategory,omitempty" gorm:"foreignKey:ReportCategoryID"`
	Stations       []Station       `json:"stations,omitempty" gorm:"many2many:report_stations"`
}

func (Report) TableName() string {
	return "reports"
}
