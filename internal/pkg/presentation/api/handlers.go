// Package api exposes the timekeeping flows over HTTP. Reminder delivery is
// part of this surface as well, since the external scheduler fires jobs by
// calling back into the service.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"

	"github.com/notework/timekeeper/internal/pkg/application/reminders"
	"github.com/notework/timekeeper/internal/pkg/application/timesheet"
	"github.com/notework/timekeeper/internal/pkg/infrastructure/scheduler"
	notionerrors "github.com/notework/timekeeper/pkg/notion/errors"
)

var tracer = otel.Tracer("timekeeper/api")

func RegisterHandlers(r chi.Router, app timesheet.Timesheet, svc reminders.ReminderService) {
	r.Get("/health", NewHealthHandler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/timers", func(r chi.Router) {
			r.Get("/", NewListActiveTimersHandler(app))
			r.Post("/", NewStartTimerHandler(app))
			r.Post("/{timerID}/stop", NewStopTimerHandler(app))
			r.Delete("/{timerID}", NewDeleteTimerHandler(app))
		})

		r.Route("/totals", func(r chi.Router) {
			r.Get("/daily", NewDailyTotalHandler(app))
			r.Get("/weekly", NewWeeklyTotalsHandler(app))
		})

		r.Post("/rollups", NewCreateRollupPageHandler(app))

		r.Route("/entries", func(r chi.Router) {
			r.Get("/", NewListEntryOptionsHandler(app))
			r.Post("/", NewAddEntryOptionHandler(app))
			r.Delete("/{name}", NewRemoveEntryOptionHandler(app))
		})

		r.Route("/reminders", func(r chi.Router) {
			r.Post("/", NewScheduleReminderHandler(svc))
			r.Delete("/{jobID}", NewCancelReminderHandler(svc))
			r.Post("/{jobID}/pause", NewPauseReminderHandler(svc))
			r.Post("/{jobID}/resume", NewResumeReminderHandler(svc))
		})

		r.Post("/jobs/{jobID}/deliver", NewDeliverReminderHandler(svc))
	})
}

func NewHealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}
}

type timerResponse struct {
	ID       string  `json:"id"`
	Category string  `json:"category"`
	URL      string  `json:"url,omitempty"`
	Hours    float64 `json:"hours"`
}

func NewStartTimerHandler(app timesheet.Timesheet) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error

		ctx, span := tracer.Start(r.Context(), "start-timer")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

		body := struct {
			Category string `json:"category"`
		}{}

		if err = json.NewDecoder(r.Body).Decode(&body); err != nil || body.Category == "" {
			reportProblem(w, "start timer", "request body must carry a category", http.StatusBadRequest)
			return
		}

		timer, err := app.StartTimer(ctx, body.Category)
		if err != nil {
			reportError(ctx, w, "start timer", err)
			return
		}

		writeJSON(w, http.StatusCreated, timerResponse{
			ID:       timer.PageID,
			Category: timer.Category,
			URL:      timer.URL,
		})
	}
}

func NewListActiveTimersHandler(app timesheet.Timesheet) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error

		ctx, span := tracer.Start(r.Context(), "list-active-timers")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

		timers, err := app.ActiveTimers(ctx)
		if err != nil {
			reportError(ctx, w, "list timers", err)
			return
		}

		response := make([]timerResponse, 0, len(timers))
		for _, t := range timers {
			response = append(response, timerResponse{
				ID:       t.PageID,
				Category: t.Category,
				URL:      t.URL,
				Hours:    t.Hours,
			})
		}

		writeJSON(w, http.StatusOK, response)
	}
}

func NewStopTimerHandler(app timesheet.Timesheet) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error

		ctx, span := tracer.Start(r.Context(), "stop-timer")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

		if err = app.EndTimer(ctx, chi.URLParam(r, "timerID")); err != nil {
			reportError(ctx, w, "stop timer", err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func NewDeleteTimerHandler(app timesheet.Timesheet) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error

		ctx, span := tracer.Start(r.Context(), "delete-timer")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

		if err = app.DeleteTimer(ctx, chi.URLParam(r, "timerID")); err != nil {
			reportError(ctx, w, "delete timer", err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func NewDailyTotalHandler(app timesheet.Timesheet) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error

		ctx, span := tracer.Start(r.Context(), "daily-total")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

		date := time.Now()
		if day := r.URL.Query().Get("date"); day != "" {
			if date, err = time.Parse("2006-01-02", day); err != nil {
				reportProblem(w, "daily total", "date must be formatted like 2006-01-02", http.StatusBadRequest)
				return
			}
		}

		total, err := app.DailyTotal(ctx, date)
		if err != nil {
			reportError(ctx, w, "daily total", err)
			return
		}

		writeJSON(w, http.StatusOK, struct {
			Date  string  `json:"date"`
			Hours float64 `json:"hours"`
		}{Date: date.Format("2006-01-02"), Hours: total})
	}
}

func NewWeeklyTotalsHandler(app timesheet.Timesheet) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error

		ctx, span := tracer.Start(r.Context(), "weekly-totals")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

		report, err := app.WeeklyTotals(ctx)
		if err != nil {
			reportError(ctx, w, "weekly totals", err)
			return
		}

		writeJSON(w, http.StatusOK, struct {
			Days  []string             `json:"days"`
			Hours map[string][]float64 `json:"hours"`
		}{Days: report.Days, Hours: report.Hours})
	}
}

func NewCreateRollupPageHandler(app timesheet.Timesheet) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error

		ctx, span := tracer.Start(r.Context(), "create-rollup-page")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

		body := struct {
			Date string `json:"date"`
		}{}

		// an empty body means today
		_ = json.NewDecoder(r.Body).Decode(&body)

		date := time.Now()
		if body.Date != "" {
			if date, err = time.Parse("2006-01-02", body.Date); err != nil {
				reportProblem(w, "create rollup page", "date must be formatted like 2006-01-02", http.StatusBadRequest)
				return
			}
		}

		pageID, err := app.CreateDailyRollupPage(ctx, date)
		if err != nil {
			reportError(ctx, w, "create rollup page", err)
			return
		}

		writeJSON(w, http.StatusCreated, struct {
			ID string `json:"id"`
		}{ID: pageID})
	}
}

func NewListEntryOptionsHandler(app timesheet.Timesheet) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error

		ctx, span := tracer.Start(r.Context(), "list-entry-options")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

		names, err := app.EntryOptions(ctx)
		if err != nil {
			reportError(ctx, w, "list entry options", err)
			return
		}

		writeJSON(w, http.StatusOK, names)
	}
}

func NewAddEntryOptionHandler(app timesheet.Timesheet) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error

		ctx, span := tracer.Start(r.Context(), "add-entry-option")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

		body := struct {
			Name string `json:"name"`
		}{}

		if err = json.NewDecoder(r.Body).Decode(&body); err != nil || body.Name == "" {
			reportProblem(w, "add entry option", "request body must carry a name", http.StatusBadRequest)
			return
		}

		if err = app.AddEntryOption(ctx, body.Name); err != nil {
			reportError(ctx, w, "add entry option", err)
			return
		}

		w.WriteHeader(http.StatusCreated)
	}
}

func NewRemoveEntryOptionHandler(app timesheet.Timesheet) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error

		ctx, span := tracer.Start(r.Context(), "remove-entry-option")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

		if err = app.RemoveEntryOption(ctx, chi.URLParam(r, "name")); err != nil {
			reportError(ctx, w, "remove entry option", err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func NewScheduleReminderHandler(svc reminders.ReminderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error

		ctx, span := tracer.Start(r.Context(), "schedule-reminder")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

		body := struct {
			Message string    `json:"message"`
			RunAt   time.Time `json:"run_at,omitzero"`
			Cron    string    `json:"cron,omitempty"`
		}{}

		if err = json.NewDecoder(r.Body).Decode(&body); err != nil || body.Message == "" {
			reportProblem(w, "schedule reminder", "request body must carry a message", http.StatusBadRequest)
			return
		}

		var reminder *reminders.Reminder
		if body.Cron != "" {
			reminder, err = svc.ScheduleRecurring(ctx, body.Message, body.Cron)
		} else {
			reminder, err = svc.Schedule(ctx, body.Message, body.RunAt)
		}

		if err != nil {
			reportError(ctx, w, "schedule reminder", err)
			return
		}

		writeJSON(w, http.StatusCreated, struct {
			PageID string    `json:"page_id"`
			JobID  string    `json:"job_id"`
			RunAt  time.Time `json:"run_at,omitzero"`
			URL    string    `json:"url,omitempty"`
		}{PageID: reminder.PageID, JobID: reminder.JobID, RunAt: reminder.RunAt, URL: reminder.URL})
	}
}

func NewCancelReminderHandler(svc reminders.ReminderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error

		ctx, span := tracer.Start(r.Context(), "cancel-reminder")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

		if err = svc.Cancel(ctx, chi.URLParam(r, "jobID")); err != nil {
			reportError(ctx, w, "cancel reminder", err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func NewPauseReminderHandler(svc reminders.ReminderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error

		ctx, span := tracer.Start(r.Context(), "pause-reminder")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

		if err = svc.Pause(ctx, chi.URLParam(r, "jobID")); err != nil {
			reportError(ctx, w, "pause reminder", err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func NewResumeReminderHandler(svc reminders.ReminderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error

		ctx, span := tracer.Start(r.Context(), "resume-reminder")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

		if err = svc.Resume(ctx, chi.URLParam(r, "jobID")); err != nil {
			reportError(ctx, w, "resume reminder", err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// NewDeliverReminderHandler is the scheduler's callback target.
func NewDeliverReminderHandler(svc reminders.ReminderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error

		ctx, span := tracer.Start(r.Context(), "deliver-reminder")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

		if err = svc.Deliver(ctx, chi.URLParam(r, "jobID")); err != nil {
			reportError(ctx, w, "deliver reminder", err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Add("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// reportError maps application errors onto response codes, with problem
// detail bodies for the client facing ones.
func reportError(ctx context.Context, w http.ResponseWriter, title string, err error) {
	log := logging.GetFromContext(ctx)
	log.Error(title+" failed", "err", err.Error())

	switch {
	case errors.Is(err, notionerrors.ErrObjectNotFound),
		errors.Is(err, scheduler.ErrJobNotFound):
		reportProblem(w, title, err.Error(), http.StatusNotFound)
	case errors.Is(err, notionerrors.ErrValidation),
		errors.Is(err, notionerrors.ErrInvalidRequestURL),
		errors.Is(err, scheduler.ErrInvalidJob):
		reportProblem(w, title, err.Error(), http.StatusBadRequest)
	case errors.Is(err, notionerrors.ErrUnauthorized),
		errors.Is(err, notionerrors.ErrRestrictedResource):
		reportProblem(w, title, err.Error(), http.StatusForbidden)
	case errors.Is(err, notionerrors.ErrRateLimited),
		errors.Is(err, scheduler.ErrSchedulerTooBusy):
		reportProblem(w, title, err.Error(), http.StatusTooManyRequests)
	case errors.Is(err, notionerrors.ErrServiceUnavailable),
		errors.Is(err, scheduler.ErrServiceUnavailable):
		reportProblem(w, title, err.Error(), http.StatusBadGateway)
	default:
		reportProblem(w, title, err.Error(), http.StatusInternalServerError)
	}
}

// reportProblem writes an RFC 7807 style problem response.
func reportProblem(w http.ResponseWriter, title, detail string, status int) {
	w.Header().Add("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(struct {
		Title  string `json:"title"`
		Detail string `json:"detail"`
		Status int    `json:"status"`
	}{Title: title, Detail: detail, Status: status})
}
