// Package timesheet implements the time tracking flows on top of the
// workspace API: starting and stopping timers, daily rollup pages and the
// per category schema migration that keeps the rollup database summing every
// category that has ever been tracked.
package timesheet

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"

	"github.com/notework/timekeeper/pkg/notion/client"
	"github.com/notework/timekeeper/pkg/notion/errors"
	"github.com/notework/timekeeper/pkg/notion/properties"
	"github.com/notework/timekeeper/pkg/notion/query"
)

// Column names of the three backing databases. The per category columns
// (rollup_x, timer_x, sum_x) are derived at runtime.
const (
	titleColumn         = "name"
	activeColumn        = "active"
	stopColumn          = "stop"
	durationColumn      = "timer"
	startColumn         = "override_start"
	endColumn           = "override_end"
	createdColumn       = "dt_created"
	totalColumn         = "total"
	rollupCreatedColumn = "time_created"
	optionsTitleColumn  = "lifetime_entries"
)

const dateTitleLayout = "2006-01-02"

type Timer struct {
	PageID   string
	Category string
	URL      string
	Hours    float64
}

type Timesheet interface {
	StartTimer(ctx context.Context, category string) (*Timer, error)
	EndTimer(ctx context.Context, timerPageID string) error
	DeleteTimer(ctx context.Context, timerPageID string) error
	ActiveTimers(ctx context.Context) ([]Timer, error)

	DailyTotal(ctx context.Context, date time.Time) (float64, error)
	CreateDailyRollupPage(ctx context.Context, date time.Time) (string, error)
	WeeklyTotals(ctx context.Context) (*WeeklyReport, error)

	EntryOptions(ctx context.Context) ([]string, error)
	AddEntryOption(ctx context.Context, name string) error
	RemoveEntryOption(ctx context.Context, name string) error
	RefreshEntryOptions()
}

type tsApp struct {
	client    client.NotionClient
	timetrack *client.DatabaseHandle
	rollup    *client.DatabaseHandle
	options   *client.DatabaseHandle

	rollupID string
	location *time.Location

	// session state for the entry option list
	mu           sync.Mutex
	entryOptions []string
}

func New(c client.NotionClient, cfg *Config) (Timesheet, error) {
	location, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	timetrack, err := c.Database(cfg.Databases.Timetrack)
	if err != nil {
		return nil, fmt.Errorf("timetrack database: %w", err)
	}

	rollup, err := c.Database(cfg.Databases.Rollup)
	if err != nil {
		return nil, fmt.Errorf("rollup database: %w", err)
	}

	options, err := c.Database(cfg.Databases.Options)
	if err != nil {
		return nil, fmt.Errorf("options database: %w", err)
	}

	return &tsApp{
		client:    c,
		timetrack: timetrack,
		rollup:    rollup,
		options:   options,
		rollupID:  rollup.ID(),
		location:  location,
	}, nil
}

// StartTimer creates a timer page titled by category, migrating the schema
// on the first use of a category, and relates the page to today's rollup
// page so the daily total picks it up.
func (a *tsApp) StartTimer(ctx context.Context, category string) (*Timer, error) {
	result, err := a.client.CreatePageWithTitle(ctx, properties.DatabaseParent(a.timetrack.ID()), category)
	if err != nil {
		return nil, err
	}

	if err = a.migrateCategory(ctx, category); err != nil {
		return nil, err
	}

	now := time.Now().In(a.location)

	rollupPageID, err := a.rollupPageID(ctx, now)
	if err != nil {
		return nil, err
	}

	props, err := properties.NewProperties(
		properties.NewRelationValue([]string{rollupPageID}, properties.Named(relationColumn(category))),
		properties.NewDateValueFromTime(now, nil, properties.Named(startColumn)),
	)
	if err != nil {
		return nil, err
	}

	page, err := a.client.Page(result.PageID())
	if err != nil {
		return nil, err
	}

	if _, err = page.Update(ctx, props); err != nil {
		return nil, err
	}

	return &Timer{
		PageID:   result.PageID(),
		Category: category,
		URL:      result.URL(),
	}, nil
}

// migrateCategory adds the per category columns on first use: a dual
// relation from timetrack to the rollup database, a rollup sum column, and
// the new sum spliced into the running total formula. The splice appends to
// whatever expression is already there, mirroring how the schema grew by
// hand before it was automated.
func (a *tsApp) migrateCategory(ctx context.Context, category string) error {
	exists, err := a.timetrack.HasProperty(ctx, relationColumn(category))
	if err != nil || exists {
		return err
	}

	log := logging.GetFromContext(ctx)
	log.Info("migrating schema for new category", "category", category)

	relation, err := properties.NewDualRelationSchema(a.rollupID, syncedColumn(category),
		properties.Named(relationColumn(category)))
	if err != nil {
		return err
	}

	if _, err = a.timetrack.AddColumns(ctx, relation); err != nil {
		return err
	}

	sum, err := properties.NewRollupSchema(syncedColumn(category), durationColumn, properties.FunctionSum,
		properties.Named(sumColumn(category)))
	if err != nil {
		return err
	}

	if _, err = a.rollup.AddColumns(ctx, sum); err != nil {
		return err
	}

	entry, err := a.rollup.Retrieve(ctx)
	if err != nil {
		return err
	}

	expression, ok := entry.PropertyString(totalColumn, "formula", "expression")
	if !ok {
		return errors.NewNotFoundError(fmt.Sprintf("rollup database has no %s formula to extend", totalColumn))
	}

	expression += fmt.Sprintf(" + prop(%q)", sumColumn(category))

	_, err = a.rollup.AddColumns(ctx,
		properties.NewFormulaSchema(expression, properties.Named(totalColumn)))
	if err != nil {
		return err
	}

	// the new columns need to be visible to later HasProperty checks
	if _, err = a.timetrack.Refresh(ctx); err != nil {
		return err
	}
	_, err = a.rollup.Refresh(ctx)
	return err
}

// rollupPageID finds the rollup page titled with the given date.
func (a *tsApp) rollupPageID(ctx context.Context, date time.Time) (string, error) {
	titleID, err := a.rollup.PropertyID(ctx, titleColumn)
	if err != nil {
		return "", err
	}

	page, err := a.rollup.QueryPage(ctx, "",
		query.Where(query.Title(titleColumn, query.TextEquals(date.Format(dateTitleLayout)))),
		nil,
		client.FilterProperties(titleID),
	)
	if err != nil {
		return "", err
	}

	if len(page.Entries) == 0 {
		return "", errors.NewNotFoundError(fmt.Sprintf("no rollup page titled %s", date.Format(dateTitleLayout)))
	}

	return page.Entries[0].ID(), nil
}

// EndTimer stamps the end date and flags the timer stopped.
func (a *tsApp) EndTimer(ctx context.Context, timerPageID string) error {
	page, err := a.client.Page(timerPageID)
	if err != nil {
		return err
	}

	now := time.Now().In(a.location)

	props, err := properties.NewProperties(
		properties.NewCheckboxValue(true, properties.Named(stopColumn)),
		properties.NewDateValueFromTime(now, nil, properties.Named(endColumn)),
	)
	if err != nil {
		return err
	}

	_, err = page.Update(ctx, props)
	return err
}

// DeleteTimer clears the rollup relation before archiving the page, so the
// day's total stops counting the deleted entry.
func (a *tsApp) DeleteTimer(ctx context.Context, timerPageID string) error {
	page, err := a.client.Page(timerPageID)
	if err != nil {
		return err
	}

	entry, err := page.Retrieve(ctx)
	if err != nil {
		return err
	}

	category, ok := entry.PropertyString(titleColumn, "title", 0, "text", "content")
	if !ok {
		return errors.NewNotFoundError("timer page carries no category title")
	}

	props, err := properties.NewProperties(
		properties.NewRelationValue(nil, properties.Named(relationColumn(category))),
	)
	if err != nil {
		return err
	}

	if _, err = page.Update(ctx, props); err != nil {
		return err
	}

	block, err := a.client.Block(timerPageID)
	if err != nil {
		return err
	}

	return block.Delete(ctx)
}

// ActiveTimers lists this week's still running timers, newest first.
func (a *tsApp) ActiveTimers(ctx context.Context) ([]Timer, error) {
	page, err := a.timetrack.QueryPage(ctx, "",
		query.And(
			query.Checkbox(activeColumn, query.CheckboxEquals(true)),
			query.CreatedTime(query.DateThisWeek()),
		),
		query.SortBy(query.CreatedTimeDescending()),
	)
	if err != nil {
		return nil, err
	}

	timers := make([]Timer, 0, len(page.Entries))
	for _, entry := range page.Entries {
		timer := Timer{PageID: entry.ID(), URL: entry.URL()}
		timer.Category, _ = entry.PropertyString(titleColumn, "title", 0, "text", "content")
		timer.Hours, _ = entry.PropertyNumber(durationColumn, "formula", "number")
		timers = append(timers, timer)
	}

	return timers, nil
}

// DailyTotal reads the total formula from the rollup page titled with the
// given date.
func (a *tsApp) DailyTotal(ctx context.Context, date time.Time) (float64, error) {
	totalID, err := a.rollup.PropertyID(ctx, totalColumn)
	if err != nil {
		return 0, err
	}

	page, err := a.rollup.QueryPage(ctx, "",
		query.Where(query.Title(titleColumn, query.TextEquals(date.In(a.location).Format(dateTitleLayout)))),
		nil,
		client.FilterProperties(totalID),
	)
	if err != nil {
		return 0, err
	}

	if len(page.Entries) == 0 {
		return 0, errors.NewNotFoundError(fmt.Sprintf("no rollup page titled %s", date.Format(dateTitleLayout)))
	}

	total, ok := page.Entries[0].PropertyNumber(totalColumn, "formula", "number")
	if !ok {
		return 0, errors.NewNotFoundError("rollup page carries no total formula number")
	}

	return total, nil
}

// CreateDailyRollupPage creates the page timers relate to for the given
// date. Scheduled to run at midnight.
func (a *tsApp) CreateDailyRollupPage(ctx context.Context, date time.Time) (string, error) {
	date = date.In(a.location)

	result, err := a.client.CreatePageWithTitle(ctx,
		properties.DatabaseParent(a.rollupID), date.Format(dateTitleLayout))
	if err != nil {
		return "", err
	}

	props, err := properties.NewProperties(
		properties.NewDateValueFromTime(date, nil, properties.Named(rollupCreatedColumn)),
	)
	if err != nil {
		return "", err
	}

	page, err := a.client.Page(result.PageID())
	if err != nil {
		return "", err
	}

	_, err = page.Update(ctx, props)
	return result.PageID(), err
}

// WeeklyReport holds hours per category for each of the past seven days,
// most recent day first.
type WeeklyReport struct {
	Days  []string
	Hours map[string][]float64
}

// WeeklyTotals sums timer durations per category and day over the past
// week. One query per category and day, the way the report was originally
// assembled.
func (a *tsApp) WeeklyTotals(ctx context.Context) (*WeeklyReport, error) {
	categories, err := a.EntryOptions(ctx)
	if err != nil {
		return nil, err
	}

	report := &WeeklyReport{
		Days:  make([]string, 0, 7),
		Hours: map[string][]float64{},
	}

	now := time.Now().In(a.location)
	for delta := 1; delta <= 7; delta++ {
		report.Days = append(report.Days, now.AddDate(0, 0, -delta).Format(dateTitleLayout))
	}

	for _, category := range categories {
		hours := make([]float64, 0, 7)

		for _, day := range report.Days {
			total, err := a.categoryHoursOn(ctx, category, day)
			if err != nil {
				return nil, err
			}
			hours = append(hours, total)
		}

		report.Hours[category] = hours
	}

	return report, nil
}

func (a *tsApp) categoryHoursOn(ctx context.Context, category, day string) (float64, error) {
	page, err := a.timetrack.QueryPage(ctx, "",
		query.And(
			query.Date(createdColumn, query.DateEquals(day)),
			query.Title(titleColumn, query.TextContains(category)),
		),
		nil,
	)
	if err != nil {
		return 0, err
	}

	total := 0.0
	for _, entry := range page.Entries {
		hours, _ := entry.PropertyNumber(durationColumn, "formula", "number")
		total += hours
	}

	return total, nil
}

// EntryOptions returns the category list, queried once and cached until
// RefreshEntryOptions or a mutation clears it.
func (a *tsApp) EntryOptions(ctx context.Context) ([]string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.entryOptions != nil {
		return a.entryOptions, nil
	}

	names, err := a.queryEntryOptions(ctx)
	if err != nil {
		return nil, err
	}

	a.entryOptions = names
	return names, nil
}

func (a *tsApp) queryEntryOptions(ctx context.Context) ([]string, error) {
	result, err := a.options.Query(ctx, nil, nil)
	if err != nil {
		return nil, err
	}

	names := []string{}
	for entry := range result.Found {
		if entry == nil {
			break
		}

		if name, ok := entry.PropertyString(optionsTitleColumn, "title", 0, "text", "content"); ok {
			names = append(names, name)
		}
	}

	if result.Err != nil {
		return nil, result.Err
	}

	return names, nil
}

func (a *tsApp) AddEntryOption(ctx context.Context, name string) error {
	_, err := a.client.CreatePageWithTitle(ctx, properties.DatabaseParent(a.options.ID()), name)
	if err != nil {
		return err
	}

	a.RefreshEntryOptions()
	return nil
}

func (a *tsApp) RemoveEntryOption(ctx context.Context, name string) error {
	page, err := a.options.QueryPage(ctx, "",
		query.Where(query.Title(optionsTitleColumn, query.TextContains(name))),
		nil,
	)
	if err != nil {
		return err
	}

	if len(page.Entries) == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("no entry option named %q", name))
	}

	block, err := a.client.Block(page.Entries[0].ID())
	if err != nil {
		return err
	}

	if err = block.Delete(ctx); err != nil {
		return err
	}

	a.RefreshEntryOptions()
	return nil
}

func (a *tsApp) RefreshEntryOptions() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entryOptions = nil
}

func relationColumn(category string) string { return "rollup_" + category }
func syncedColumn(category string) string   { return "timer_" + category }
func sumColumn(category string) string      { return "sum_" + category }
