// Package scheduler consumes the external job scheduler service. Jobs fire
// by calling back into this service over HTTP, so the scheduler stays the
// single owner of trigger state and persistence.
package scheduler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("timekeeper/scheduler-client")

const TraceAttributeJobID string = "job-id"

var (
	ErrJobNotFound        = errors.New("job not found")
	ErrSchedulerTooBusy   = errors.New("job could not be accepted right now")
	ErrInvalidJob         = errors.New("job definition is invalid")
	ErrServiceUnavailable = errors.New("scheduler is unavailable")
)

// Job describes one scheduled callback. Either RunAt (one shot) or CronSpec
// (recurring) is set, never both.
type Job struct {
	ID       string    `json:"id,omitempty"`
	Name     string    `json:"name"`
	RunAt    time.Time `json:"next_run_time,omitzero"`
	CronSpec string    `json:"cron,omitempty"`
	Callback string    `json:"callback"`

	// seconds a missed trigger may be delayed before it is dropped
	MisfireGraceTime int `json:"misfire_grace_time,omitempty"`
}

type SchedulerClient interface {
	AddJob(ctx context.Context, job Job) (*Job, error)
	RemoveJob(ctx context.Context, jobID string) error
	PauseJob(ctx context.Context, jobID string) error
	ResumeJob(ctx context.Context, jobID string) error
}

type schedulerClient struct {
	baseURL string
}

func New(serviceURL string) SchedulerClient {
	return &schedulerClient{
		baseURL: strings.TrimSuffix(serviceURL, "/"),
	}
}

func (c *schedulerClient) AddJob(ctx context.Context, job Job) (*Job, error) {
	var err error

	ctx, span := tracer.Start(ctx, "add-job")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	if job.RunAt.IsZero() == (job.CronSpec == "") {
		err = fmt.Errorf("a job needs a run time or a cron spec, not both (%w)", ErrInvalidJob)
		return nil, err
	}

	body, err := json.Marshal(job)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal job: %w", err)
	}

	respBody, err := c.callScheduler(ctx, http.MethodPost, c.baseURL+"/jobs", bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}

	accepted := &Job{}
	if err = json.Unmarshal(respBody, accepted); err != nil {
		return nil, fmt.Errorf("failed to decode accepted job: %w", err)
	}

	span.SetAttributes(attribute.String(TraceAttributeJobID, accepted.ID))
	return accepted, nil
}

func (c *schedulerClient) RemoveJob(ctx context.Context, jobID string) error {
	return c.jobAction(ctx, "remove-job", http.MethodDelete, jobID, "")
}

func (c *schedulerClient) PauseJob(ctx context.Context, jobID string) error {
	return c.jobAction(ctx, "pause-job", http.MethodPost, jobID, "/pause")
}

func (c *schedulerClient) ResumeJob(ctx context.Context, jobID string) error {
	return c.jobAction(ctx, "resume-job", http.MethodPost, jobID, "/resume")
}

func (c *schedulerClient) jobAction(ctx context.Context, spanName, method, jobID, suffix string) error {
	var err error

	ctx, span := tracer.Start(ctx, spanName,
		trace.WithAttributes(attribute.String(TraceAttributeJobID, jobID)),
	)
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	_, err = c.callScheduler(ctx, method, c.baseURL+"/jobs/"+url.PathEscape(jobID)+suffix, nil)
	return err
}

func (c *schedulerClient) callScheduler(ctx context.Context, method, endpoint string, body io.Reader) ([]byte, error) {
	httpClient := http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Add("Content-Type", "application/json")
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %s (%w)", err.Error(), ErrServiceUnavailable)
	}

	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrJobNotFound
	case resp.StatusCode == http.StatusBadRequest:
		return nil, ErrInvalidJob
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, ErrSchedulerTooBusy
	case resp.StatusCode >= http.StatusBadRequest:
		return nil, fmt.Errorf("unexpected response code %d (%w)", resp.StatusCode, ErrServiceUnavailable)
	}

	return respBody, nil
}
