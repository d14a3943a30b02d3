package metrics

import (
	"context"
	"sync"

	"github.com/KAVYA-KOLLAREDDY/Tiny-Vivid-Minds/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

var (
	// Auth counters
	LoginsTotal        *telemetry.Counter
	RefreshesTotal     *telemetry.Counter
	LogoutsTotal       *telemetry.Counter
	RegistrationsTotal *telemetry.Counter
	RateLimitedTotal   *telemetry.Counter

	// Learning counters
	SubmissionsTotal     *telemetry.Counter
	AttemptRetriesTotal  *telemetry.Counter
	GradingsTotal        *telemetry.Counter
	LevelCompletionTotal *telemetry.Counter

	// Ledger retention
	TokensSweptTotal *telemetry.Counter

	// Histograms
	RequestDuration *telemetry.Histogram

	initOnce sync.Once
	initErr  error
)

// Init initializes all application metrics
func Init() error {
	initOnce.Do(func() {
		initErr = initMetrics()
	})
	return initErr
}

func initMetrics() error {
	counters := []struct {
		dst  **telemetry.Counter
		opts telemetry.MetricOpts
	}{
		{&LoginsTotal, telemetry.MetricOpts{Name: "tvm_logins_total", Description: "Login attempts by outcome", Unit: "1"}},
		{&RefreshesTotal, telemetry.MetricOpts{Name: "tvm_token_refreshes_total", Description: "Access token refreshes by outcome", Unit: "1"}},
		{&LogoutsTotal, telemetry.MetricOpts{Name: "tvm_logouts_total", Description: "Logouts by scope", Unit: "1"}},
		{&RegistrationsTotal, telemetry.MetricOpts{Name: "tvm_registrations_total", Description: "Registrations by role", Unit: "1"}},
		{&RateLimitedTotal, telemetry.MetricOpts{Name: "tvm_rate_limited_total", Description: "Requests rejected by the login limiter", Unit: "1"}},
		{&SubmissionsTotal, telemetry.MetricOpts{Name: "tvm_submissions_total", Description: "Activity submissions by outcome", Unit: "1"}},
		{&AttemptRetriesTotal, telemetry.MetricOpts{Name: "tvm_attempt_conflict_retries_total", Description: "Attempt number conflicts retried", Unit: "1"}},
		{&GradingsTotal, telemetry.MetricOpts{Name: "tvm_gradings_total", Description: "Submissions graded by status", Unit: "1"}},
		{&LevelCompletionTotal, telemetry.MetricOpts{Name: "tvm_level_completions_total", Description: "Level completion requests by outcome", Unit: "1"}},
		{&TokensSweptTotal, telemetry.MetricOpts{Name: "tvm_refresh_tokens_swept_total", Description: "Refresh ledger records deleted by kind", Unit: "1"}},
	}
	for _, c := range counters {
		counter, err := telemetry.NewCounter(c.opts)
		if err != nil {
			return err
		}
		*c.dst = counter
	}

	var err error
	RequestDuration, err = telemetry.NewHistogramWithBuckets(telemetry.MetricOpts{
		Name:        "tvm_request_duration_seconds",
		Description: "HTTP request duration in seconds",
		Unit:        "s",
		Buckets:     []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}, // 5ms to 5s
	})
	return err
}

// RecordLogin records a login attempt
func RecordLogin(ctx context.Context, outcome string) {
	if LoginsTotal != nil {
		LoginsTotal.Inc(ctx, attribute.String("outcome", outcome))
	}
}

// RecordRefresh records an access token refresh
func RecordRefresh(ctx context.Context, outcome string) {
	if RefreshesTotal != nil {
		RefreshesTotal.Inc(ctx, attribute.String("outcome", outcome))
	}
}

// RecordLogout records a logout
func RecordLogout(ctx context.Context, scope string) {
	if LogoutsTotal != nil {
		LogoutsTotal.Inc(ctx, attribute.String("scope", scope))
	}
}

// RecordRegistration records a new account
func RecordRegistration(ctx context.Context, role string) {
	if RegistrationsTotal != nil {
		RegistrationsTotal.Inc(ctx, attribute.String("role", role))
	}
}

// RecordRateLimited records a throttled request
func RecordRateLimited(ctx context.Context, path string) {
	if RateLimitedTotal != nil {
		RateLimitedTotal.Inc(ctx, attribute.String("path", path))
	}
}

// RecordSubmission records an activity submission
func RecordSubmission(ctx context.Context, activityType, outcome string) {
	if SubmissionsTotal != nil {
		SubmissionsTotal.Inc(ctx,
			attribute.String("activity_type", activityType),
			attribute.String("outcome", outcome),
		)
	}
}

// RecordAttemptRetry records a retried attempt number conflict
func RecordAttemptRetry(ctx context.Context) {
	if AttemptRetriesTotal != nil {
		AttemptRetriesTotal.Inc(ctx)
	}
}

// RecordGrading records a graded submission
func RecordGrading(ctx context.Context, status string) {
	if GradingsTotal != nil {
		GradingsTotal.Inc(ctx, attribute.String("status", status))
	}
}

// RecordLevelCompletion records a level completion request
func RecordLevelCompletion(ctx context.Context, outcome string) {
	if LevelCompletionTotal != nil {
		LevelCompletionTotal.Inc(ctx, attribute.String("outcome", outcome))
	}
}

// RecordTokensSwept records deleted ledger records
func RecordTokensSwept(ctx context.Context, kind string, n int64) {
	if TokensSweptTotal != nil && n > 0 {
		TokensSweptTotal.Add(ctx, n, attribute.String("kind", kind))
	}
}

// RecordRequestDuration records HTTP request latency
func RecordRequestDuration(ctx context.Context, method, route string, status int, seconds float64) {
	if RequestDuration != nil {
		RequestDuration.Record(ctx, seconds,
			attribute.String("method", method),
			attribute.String("route", route),
			attribute.Int("status", status),
		)
	}
}
