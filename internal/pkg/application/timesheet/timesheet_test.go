package timesheet

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matryer/is"

	"github.com/notework/timekeeper/pkg/notion/client"
)

const (
	timetrackID = "11111111222233334444555555555555"
	rollupDBID  = "668d797c76fa49349b05ad288df2d136"
	optionsID   = "598337872cf94fdf8782e53db20768a5"
	timerPageID = "0a1b2c3d4e5f60718293a4b5c6d7e8f9"
	rollupPage  = "76fa49349b054d288df2d136668d797c"
)

func TestActiveTimersParsesRunningEntries(t *testing.T) {
	is, app, recorder, cleanup := setupApp(t, map[string]string{
		"POST /databases/" + timetrackID + "/query": `{"object":"list","results":[
			{"object":"page","id":"` + timerPageID + `","url":"https://notes.example.com/one","properties":{
				"name":{"type":"title","title":[{"type":"text","text":{"content":"work"}}]},
				"timer":{"type":"formula","formula":{"type":"number","number":1.5}}}},
			{"object":"page","id":"` + rollupPage + `","url":"https://notes.example.com/two","properties":{
				"name":{"type":"title","title":[{"type":"text","text":{"content":"reading"}}]},
				"timer":{"type":"formula","formula":{"type":"number","number":0.25}}}}
		],"has_more":false}`,
	})
	defer cleanup()

	timers, err := app.ActiveTimers(context.Background())

	is.NoErr(err)
	is.Equal(len(timers), 2)
	is.Equal(timers[0].Category, "work")
	is.Equal(timers[0].Hours, 1.5)
	is.Equal(timers[1].Category, "reading")

	is.Equal(
		recorder.body("POST /databases/"+timetrackID+"/query", 0),
		`{"filter":{"and":[{"property":"active","checkbox":{"equals":true}},{"timestamp":"created_time","created_time":{"this_week":{}}}]},"sorts":[{"timestamp":"created_time","direction":"descending"}]}`,
	)
}

func TestDailyTotalReadsTheRollupPageTotal(t *testing.T) {
	is, app, recorder, cleanup := setupApp(t, map[string]string{
		"GET /databases/" + rollupDBID: rollupSchema(`prop("sum_work")`),
		"POST /databases/" + rollupDBID + "/query": `{"object":"list","results":[
			{"object":"page","id":"` + rollupPage + `","properties":{
				"total":{"type":"formula","formula":{"type":"number","number":7.5}}}}
		],"has_more":false}`,
	})
	defer cleanup()

	total, err := app.DailyTotal(context.Background(), time.Date(2026, 8, 29, 13, 0, 0, 0, time.UTC))

	is.NoErr(err)
	is.Equal(total, 7.5)

	is.Equal(recorder.query("POST /databases/"+rollupDBID+"/query", 0), "filter_properties=tot1")
	is.Equal(
		recorder.body("POST /databases/"+rollupDBID+"/query", 0),
		`{"filter":{"property":"name","title":{"equals":"2026-08-29"}}}`,
	)
}

func TestStartTimerRelatesTheTimerToTheDailyRollupPage(t *testing.T) {
	is, app, recorder, cleanup := setupApp(t, map[string]string{
		"POST /pages":                   `{"object":"page","id":"` + timerPageID + `","url":"https://notes.example.com/timer"}`,
		"GET /databases/" + timetrackID: timetrackSchema(`"rollup_work":{"id":"relw","type":"relation"}`),
		"GET /databases/" + rollupDBID:  rollupSchema(`prop("sum_work")`),
		"POST /databases/" + rollupDBID + "/query": `{"object":"list","results":[
			{"object":"page","id":"` + rollupPage + `","properties":{}}],"has_more":false}`,
		"PATCH /pages/" + timerPageID: `{"object":"page","id":"` + timerPageID + `"}`,
	})
	defer cleanup()

	timer, err := app.StartTimer(context.Background(), "work")

	is.NoErr(err)
	is.Equal(timer.Category, "work")
	is.Equal(timer.PageID, timerPageID)
	is.Equal(timer.URL, "https://notes.example.com/timer")

	created := recorder.body("POST /pages", 0)
	is.True(strings.Contains(created, `"parent":{"type":"database_id","database_id":"`+timetrackID+`"}`))
	is.True(strings.Contains(created, `"work"`))

	patched := recorder.body("PATCH /pages/"+timerPageID, 0)
	is.True(strings.Contains(patched, `"rollup_work":{"type":"relation","relation":[{"id":"`+rollupPage+`"}]}`))
	is.True(strings.Contains(patched, `"override_start"`))
}

func TestStartTimerMigratesTheSchemaForANewCategory(t *testing.T) {
	is, app, recorder, cleanup := setupApp(t, map[string]string{
		"POST /pages":                     `{"object":"page","id":"` + timerPageID + `","url":"https://notes.example.com/timer"}`,
		"GET /databases/" + timetrackID:   timetrackSchema(`"rollup_work":{"id":"relw","type":"relation"}`),
		"GET /databases/" + rollupDBID:    rollupSchema(`prop("sum_work")`),
		"PATCH /databases/" + timetrackID: `{"object":"database","id":"` + timetrackID + `"}`,
		"PATCH /databases/" + rollupDBID:  `{"object":"database","id":"` + rollupDBID + `"}`,
		"POST /databases/" + rollupDBID + "/query": `{"object":"list","results":[
			{"object":"page","id":"` + rollupPage + `","properties":{}}],"has_more":false}`,
		"PATCH /pages/" + timerPageID: `{"object":"page","id":"` + timerPageID + `"}`,
	})
	defer cleanup()

	_, err := app.StartTimer(context.Background(), "newcat")
	is.NoErr(err)

	relation := recorder.body("PATCH /databases/"+timetrackID, 0)
	is.True(strings.Contains(relation, `"rollup_newcat"`))
	is.True(strings.Contains(relation, `"database_id":"`+rollupDBID+`"`))
	is.True(strings.Contains(relation, `"dual_property":{"synced_property_name":"timer_newcat"}`))

	sum := recorder.body("PATCH /databases/"+rollupDBID, 0)
	is.True(strings.Contains(sum, `"sum_newcat"`))
	is.True(strings.Contains(sum, `"function":"sum"`))

	formula := recorder.body("PATCH /databases/"+rollupDBID, 1)
	is.True(strings.Contains(formula, `prop(\"sum_work\") + prop(\"sum_newcat\")`))
}

func TestEndTimerStampsTheStopFlagAndEndDate(t *testing.T) {
	is, app, recorder, cleanup := setupApp(t, map[string]string{
		"PATCH /pages/" + timerPageID: `{"object":"page","id":"` + timerPageID + `"}`,
	})
	defer cleanup()

	err := app.EndTimer(context.Background(), timerPageID)
	is.NoErr(err)

	patched := recorder.body("PATCH /pages/"+timerPageID, 0)
	is.True(strings.Contains(patched, `"stop":{"type":"checkbox","checkbox":true}`))
	is.True(strings.Contains(patched, `"override_end"`))
}

func TestEntryOptionsAreCachedPerSession(t *testing.T) {
	is, app, recorder, cleanup := setupApp(t, map[string]string{
		"POST /databases/" + optionsID + "/query": `{"object":"list","results":[
			{"object":"page","id":"` + rollupPage + `","properties":{
				"lifetime_entries":{"type":"title","title":[{"type":"text","text":{"content":"work"}}]}}}
		],"has_more":false}`,
	})
	defer cleanup()

	names, err := app.EntryOptions(context.Background())
	is.NoErr(err)
	is.Equal(names, []string{"work"})

	_, err = app.EntryOptions(context.Background())
	is.NoErr(err)
	is.Equal(recorder.count("POST /databases/"+optionsID+"/query"), 1)

	app.RefreshEntryOptions()

	_, err = app.EntryOptions(context.Background())
	is.NoErr(err)
	is.Equal(recorder.count("POST /databases/"+optionsID+"/query"), 2)
}

func TestRemoveEntryOptionDeletesThePage(t *testing.T) {
	is, app, recorder, cleanup := setupApp(t, map[string]string{
		"POST /databases/" + optionsID + "/query": `{"object":"list","results":[
			{"object":"page","id":"` + rollupPage + `","properties":{
				"lifetime_entries":{"type":"title","title":[{"type":"text","text":{"content":"work"}}]}}}
		],"has_more":false}`,
		"DELETE /blocks/" + rollupPage: `{"object":"block","id":"` + rollupPage + `","archived":true}`,
	})
	defer cleanup()

	err := app.RemoveEntryOption(context.Background(), "work")
	is.NoErr(err)

	is.Equal(recorder.count("DELETE /blocks/"+rollupPage), 1)
}

func TestRemoveEntryOptionFailsForUnknownNames(t *testing.T) {
	is, app, _, cleanup := setupApp(t, map[string]string{
		"POST /databases/" + optionsID + "/query": `{"object":"list","results":[],"has_more":false}`,
	})
	defer cleanup()

	err := app.RemoveEntryOption(context.Background(), "nosuch")
	is.True(err != nil) // unknown options should not be silently ignored
}

func timetrackSchema(extraColumns string) string {
	return `{"object":"database","id":"` + timetrackID + `","properties":{
		"name":{"id":"title","type":"title"},
		"active":{"id":"actv","type":"checkbox"},
		"timer":{"id":"tmr1","type":"formula"},` + extraColumns + `}}`
}

func rollupSchema(totalExpression string) string {
	return `{"object":"database","id":"` + rollupDBID + `","properties":{
		"name":{"id":"title","type":"title"},
		"total":{"id":"tot1","type":"formula","formula":{"expression":"` +
		strings.ReplaceAll(totalExpression, `"`, `\"`) + `"}}}}`
}

type requestRecorder struct {
	mu      sync.Mutex
	bodies  map[string][]string
	queries map[string][]string
}

func (r *requestRecorder) record(key, query, body string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bodies[key] = append(r.bodies[key], body)
	r.queries[key] = append(r.queries[key], query)
}

func (r *requestRecorder) body(key string, index int) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if index >= len(r.bodies[key]) {
		return ""
	}
	return r.bodies[key][index]
}

func (r *requestRecorder) query(key string, index int) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if index >= len(r.queries[key]) {
		return ""
	}
	return r.queries[key][index]
}

func (r *requestRecorder) count(key string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.bodies[key])
}

func setupApp(t *testing.T, routes map[string]string) (*is.I, Timesheet, *requestRecorder, func()) {
	is := is.New(t)

	recorder := &requestRecorder{
		bodies:  map[string][]string{},
		queries: map[string][]string{},
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path

		body, _ := io.ReadAll(r.Body)
		recorder.record(key, r.URL.RawQuery, string(body))

		response, found := routes[key]
		if !found {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"object":"error","status":404,"code":"object_not_found","message":"unexpected request ` + key + `"}`))
			return
		}

		w.Header().Add("Content-Type", "application/json")
		w.Write([]byte(response))
	}))

	app, err := New(
		client.New("sekrit", client.BaseURL(server.URL)),
		&Config{
			Databases: Databases{
				Timetrack: timetrackID,
				Rollup:    rollupDBID,
				Options:   optionsID,
			},
			Timezone: "UTC",
		},
	)
	is.NoErr(err)

	return is, app, recorder, server.Close
}
