package services

import (
	"context"
	"fmt"

	"trackit-api/internal/models"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// backref describes a derived child-id list: rows of table whose parentCol
// points at the parent, identified by childCol.
type backref struct {
	table     string
	parentCol string
	childCol  string
}

var (
	tasksByCategory    = backref{table: "tasks", parentCol: "category_id", childCol: "id"}
	tasksBySubCategory = backref{table: "tasks", parentCol: "sub_category_id", childCol: "id"}
	tasksByHandler     = backref{table: "tasks", parentCol: "handler_id", childCol: "id"}
	stationsByRegion   = backref{table: "stations", parentCol: "region_id", childCol: "id"}
	reportsByRegion    = backref{table: "reports", parentCol: "region_id", childCol: "id"}
	reportsByCategory  = backref{table: "reports", parentCol: "report_category_id", childCol: "id"}
	reportsByStation   = backref{table: models.ReportStationsTable, parentCol: "station_id", childCol: "report_id"}
	stationsByReport   = backref{table: models.ReportStationsTable, parentCol: "report_id", childCol: "station_id"}
)

type backrefRow struct {
	ParentID string
	ChildID  string
}

// load returns child ids grouped by parent id. Every requested parent gets
// a non-nil slice. IDs are creation-ordered, so sorting by id keeps the
// lists in insertion order.
func (b backref) load(ctx context.Context, db *gorm.DB, parentIDs []string) (map[string][]string, error) {
	out := make(map[string][]string, len(parentIDs))
	for _, id := range parentIDs {
		out[id] = []string{}
	}
	if len(parentIDs) == 0 {
		return out, nil
	}

	var rows []backrefRow
	err := db.WithContext(ctx).
		Table(b.table).
		Select(fmt.Sprintf("%s AS parent_id, %s AS child_id", b.parentCol, b.childCol)).
		Where(b.parentCol+" IN ?", parentIDs).
		Order(b.childCol + " asc").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("load %s by %s: %w", b.table, b.parentCol, err)
	}
	for _, r := range rows {
		out[r.ParentID] = append(out[r.ParentID], r.ChildID)
	}
	return out, nil
}

// loadAll fans out one query per backref. Must not run inside a transaction.
func loadAll(ctx context.Context, db *gorm.DB, parentIDs []string, refs ...backref) ([]map[string][]string, error) {
	results := make([]map[string][]string, len(refs))
	g, gctx := errgroup.WithContext(ctx)
	for i, ref := range refs {
		i, ref := i, ref
		g.Go(func() error {
			m, err := ref.load(gctx, db, parentIDs)
			if err != nil {
				return err
			}
			results[i] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func attachCategoryTasks(ctx context.Context, db *gorm.DB, items []models.Category) error {
	ids := make([]string, len(items))
	for i := range items {
		ids[i] = items[i].ID
	}
	m, err := tasksByCategory.load(ctx, db, ids)
	if err != nil {
		return err
	}
	for i := range items {
		items[i].TaskIDs = m[items[i].ID]
	}
	return nil
}

func attachSubCategoryTasks(ctx context.Context, db *gorm.DB, items []models.SubCategory) error {
	ids := make([]string, len(items))
	for i := range items {
		ids[i] = items[i].ID
	}
	m, err := tasksBySubCategory.load(ctx, db, ids)
	if err != nil {
		return err
	}
	for i := range items {
		items[i].TaskIDs = m[items[i].ID]
	}
	return nil
}

func attachUserTasks(ctx context.Context, db *gorm.DB, users ...*models.User) error {
	ids := make([]string, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	m, err := tasksByHandler.load(ctx, db, ids)
	if err != nil {
		return err
	}
	for _, u := range users {
		u.TaskIDs = m[u.ID]
	}
	return nil
}

func attachRegionRefs(ctx context.Context, db *gorm.DB, items []models.Region) error {
	ids := make([]string, len(items))
	for i := range items {
		ids[i] = items[i].ID
	}
	res, err := loadAll(ctx, db, ids, stationsByRegion, reportsByRegion)
	if err != nil {
		return err
	}
	for i := range items {
		items[i].StationIDs = res[0][items[i].ID]
		items[i].ReportIDs = res[1][items[i].ID]
	}
	return nil
}

func attachStationReports(ctx context.Context, db *gorm.DB, items []models.Station) error {
	ids := make([]string, len(items))
	for i := range items {
		ids[i] = items[i].ID
	}
	m, err := reportsByStation.load(ctx, db, ids)
	if err != nil {
		return err
	}
	for i := range items {
		items[i].ReportIDs = m[items[i].ID]
	}
	return nil
}

func attachReportCategoryReports(ctx context.Context, db *gorm.DB, items []models.ReportCategory) error {
	ids := make([]string, len(items))
	for i := range items {
		ids[i] = items[i].ID
	}
	m, err := reportsByCategory.load(ctx, db, ids)
	if err != nil {
		return err
	}
	for i := range items {
		items[i].ReportIDs = m[items[i].ID]
	}
	return nil
}

// attachReportStations fills StationIDs from the preloaded Stations, and
// falls back to the link table when stations were not preloaded.
func attachReportStations(ctx context.Context, db *gorm.DB, items []models.Report) error {
	missing := make([]string, 0)
	for i := range items {
		if len(items[i].Stations) > 0 {
			ids := make([]string, len(items[i].Stations))
			for j, s := range items[i].Stations {
				ids[j] = s.ID
			}
			items[i].StationIDs = ids
			continue
		}
		missing = append(missing, items[i].ID)
	}
	if len(missing) == 0 {
		return nil
	}
	m, err := stationsByReport.load(ctx, db, missing)
	if err != nil {
		return err
	}
	for i := range items {
		if ids, ok := m[items[i].ID]; ok {
			items[i].StationIDs = ids
		}
	}
	return nil
}
