package reminders

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/matryer/is"

	"github.com/notework/timekeeper/internal/pkg/infrastructure/scheduler"
	"github.com/notework/timekeeper/pkg/notion/client"
)

const (
	remindersDBID  = "668d797c76fa49349b05ad288df2d136"
	reminderPageID = "598337872cf94fdf8782e53db20768a5"
	recipientID    = "0a1b2c3d-4e5f-6071-8293-a4b5c6d7e8f9"
)

func TestScheduleRegistersTheJobBeforeCreatingThePage(t *testing.T) {
	is, svc, recorded, cleanup := setupService(t, map[string]string{
		"POST /jobs":  `{"id":"job-1","name":"drink water","next_run_time":"2026-08-30T15:04:05Z"}`,
		"POST /pages": `{"object":"page","id":"` + reminderPageID + `","url":"https://notes.example.com/reminder"}`,
		"PATCH /pages/" + reminderPageID: `{"object":"page","id":"` + reminderPageID + `"}`,
	})
	defer cleanup()

	reminder, err := svc.Schedule(context.Background(), "drink water", time.Date(2026, 8, 30, 15, 4, 5, 0, time.UTC))

	is.NoErr(err)
	is.Equal(reminder.JobID, "job-1")
	is.Equal(reminder.PageID, reminderPageID)
	is.Equal(reminder.RunAt, time.Date(2026, 8, 30, 15, 4, 5, 0, time.UTC))

	job := recorded["POST /jobs"]
	is.True(strings.Contains(job, `"name":"drink water"`))
	is.True(strings.Contains(job, `/deliver"`))
	is.True(strings.Contains(job, `"misfire_grace_time":60`))

	patched := recorded["PATCH /pages/"+reminderPageID]
	is.True(strings.Contains(patched, `"job_id":{"type":"rich_text","rich_text":[{"type":"text","text":{"content":"job-1"}}]}`))
	is.True(strings.Contains(patched, `"reminder_status":{"type":"status","status":{"name":"awaiting"}}`))
	is.True(strings.Contains(patched, `"next_run_time"`))
}

func TestScheduleFailsWhenTheSchedulerRejectsTheJob(t *testing.T) {
	is, svc, recorded, cleanup := setupService(t, map[string]string{})
	defer cleanup()

	_, err := svc.Schedule(context.Background(), "never", time.Now())

	is.True(err != nil)
	_, pageCreated := recorded["POST /pages"]
	is.True(!pageCreated) // no page should exist for a job that was not accepted
}

func TestDeliverAppendsTheReminderAndFlipsTheStatus(t *testing.T) {
	is, svc, recorded, cleanup := setupService(t, map[string]string{
		"POST /databases/" + remindersDBID + "/query": `{"object":"list","results":[
			{"object":"page","id":"` + reminderPageID + `","properties":{
				"name":{"type":"title","title":[{"type":"text","text":{"content":"drink water"}}]}}}
		],"has_more":false}`,
		"PATCH /blocks/" + reminderPageID + "/children": `{"object":"list","results":[]}`,
		"PATCH /pages/" + reminderPageID:                `{"object":"page","id":"` + reminderPageID + `"}`,
	})
	defer cleanup()

	err := svc.Deliver(context.Background(), "job-1")
	is.NoErr(err)

	query := recorded["POST /databases/"+remindersDBID+"/query"]
	is.Equal(query, `{"filter":{"property":"job_id","rich_text":{"equals":"job-1"}}}`)

	appended := recorded["PATCH /blocks/"+reminderPageID+"/children"]
	is.True(strings.Contains(appended, `"mention":{"type":"user","user":{"object":"user","id":"`+recipientID+`"}}`))
	is.True(strings.Contains(appended, `"annotations":{"bold":true,"code":true,"color":"purple"}`))
	is.True(strings.Contains(appended, `"color":"purple_background"`))
	is.True(strings.Contains(appended, `"content":"drink water"`))
	is.True(strings.Contains(appended, `"divider":{}`))

	patched := recorded["PATCH /pages/"+reminderPageID]
	is.True(strings.Contains(patched, `"status":{"name":"complete"}`))
	is.True(strings.Contains(patched, `"notification":{"type":"people","people":[{"object":"user","id":"`+recipientID+`"}]}`))
}

func TestDeliverFailsForJobsWithoutAPage(t *testing.T) {
	is, svc, _, cleanup := setupService(t, map[string]string{
		"POST /databases/" + remindersDBID + "/query": `{"object":"list","results":[],"has_more":false}`,
	})
	defer cleanup()

	err := svc.Deliver(context.Background(), "orphan")
	is.True(err != nil)
}

func TestCancelRemovesTheJobAndMarksThePage(t *testing.T) {
	is, svc, recorded, cleanup := setupService(t, map[string]string{
		"DELETE /jobs/job-1": `{}`,
		"POST /databases/" + remindersDBID + "/query": `{"object":"list","results":[
			{"object":"page","id":"` + reminderPageID + `","properties":{
				"name":{"type":"title","title":[{"type":"text","text":{"content":"drink water"}}]}}}
		],"has_more":false}`,
		"PATCH /pages/" + reminderPageID: `{"object":"page","id":"` + reminderPageID + `"}`,
	})
	defer cleanup()

	err := svc.Cancel(context.Background(), "job-1")
	is.NoErr(err)

	is.True(strings.Contains(recorded["PATCH /pages/"+reminderPageID], `"status":{"name":"cancelled"}`))
}

func TestCancelPropagatesUnknownJobs(t *testing.T) {
	is, svc, _, cleanup := setupService(t, map[string]string{})
	defer cleanup()

	err := svc.Cancel(context.Background(), "nosuch")
	is.True(errors.Is(err, scheduler.ErrJobNotFound))
}

func setupService(t *testing.T, routes map[string]string) (*is.I, ReminderService, map[string]string, func()) {
	is := is.New(t)

	recorded := map[string]string{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path

		body, _ := io.ReadAll(r.Body)
		recorded[key] = string(body)

		response, found := routes[key]
		if !found {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"object":"error","status":404,"code":"object_not_found","message":"unexpected request ` + key + `"}`))
			return
		}

		w.Header().Add("Content-Type", "application/json")
		w.Write([]byte(response))
	}))

	svc, err := New(
		client.New("sekrit", client.BaseURL(server.URL)),
		scheduler.New(server.URL),
		&Config{
			Database:    remindersDBID,
			DefaultUser: recipientID,
			CallbackURL: "http://timekeeper.local",
		},
	)
	is.NoErr(err)

	return is, svc, recorded, server.Close
}
