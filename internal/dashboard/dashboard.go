// Package dashboard holds the console's view state: editable settings, the latest
// job status and the result of each operator action.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/timmy/reviewdash/internal/domain"
	"github.com/timmy/reviewdash/internal/gateway"
	"github.com/timmy/reviewdash/internal/notifier"
)

// ErrSettingsLocked is returned when settings are edited or a job is started while
// the last known status says a job is running.
var ErrSettingsLocked = errors.New("settings are locked while a generation job is running")

const (
	labelStart   = "Start Generation"
	labelRunning = "Generation Running..."
	phaseIdle    = "Not started"
)

// StatusSource provides the latest job status snapshot.
type StatusSource interface {
	Snapshot() domain.JobStatus
}

// Actions executes operator actions against the generation service.
type Actions interface {
	StartJob(ctx context.Context, settings domain.GenerationSettings) (string, error)
	FetchSample(ctx context.Context) (*domain.SampleReview, error)
	FetchAspects(ctx context.Context) (*domain.AspectCatalog, error)
	FetchTestBatch(ctx context.Context) (*domain.TestBatchResult, error)
	TestBatchSize() int
}

// NoticeLevel distinguishes acknowledgments from failures.
type NoticeLevel string

const (
	NoticeInfo  NoticeLevel = "info"
	NoticeError NoticeLevel = "error"
)

// Notice is a blocking message for the operator.
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Action  string      `json:"action"`
	Message string      `json:"message"`
}

// Config holds dashboard configuration.
type Config struct {
	// Settings are the initial generation settings. Zero value uses domain.DefaultSettings.
	Settings domain.GenerationSettings
	Notifier *notifier.Notifier
}

// Dashboard owns the settings slot and the three result slots.
// The status slot belongs to the StatusSource and is only read here.
type Dashboard struct {
	status   StatusSource
	actions  Actions
	notifier *notifier.Notifier

	mu        sync.RWMutex
	settings  domain.GenerationSettings
	sample    *domain.SampleReview
	aspects   *domain.AspectCatalog
	testBatch *domain.TestBatchResult
}

// New creates a Dashboard.
func New(status StatusSource, actions Actions, cfg *Config) *Dashboard {
	if cfg == nil {
		cfg = &Config{}
	}
	settings := cfg.Settings
	if settings == (domain.GenerationSettings{}) {
		settings = domain.DefaultSettings()
	}
	return &Dashboard{
		status:   status,
		actions:  actions,
		notifier: cfg.Notifier,
		settings: settings,
	}
}

// Settings returns the current generation settings.
func (d *Dashboard) Settings() domain.GenerationSettings {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.settings
}

// InputsLocked reports whether settings are frozen by a running job.
func (d *Dashboard) InputsLocked() bool {
	return d.status.Snapshot().IsRunning
}

// UpdateSettings replaces the settings.
// Returns ErrSettingsLocked while a job is running and domain.ErrInvalidSettings for
// non-positive values; the settings are left unchanged in both cases.
func (d *Dashboard) UpdateSettings(s domain.GenerationSettings) error {
	if d.InputsLocked() {
		return ErrSettingsLocked
	}
	if err := s.Validate(); err != nil {
		return err
	}

	d.mu.Lock()
	d.settings = s
	d.mu.Unlock()

	d.notifier.Broadcast()
	return nil
}

// StartJob sends the current settings to the generation service.
// The returned notice carries the service acknowledgment or the failure text.
// The status slot is not touched; the next poll reflects the new job.
func (d *Dashboard) StartJob(ctx context.Context) (*Notice, error) {
	if d.InputsLocked() {
		return nil, ErrSettingsLocked
	}

	msg, err := d.actions.StartJob(ctx, d.Settings())
	if err != nil {
		return failureNotice(gateway.ActionStart, err), nil
	}
	return &Notice{Level: NoticeInfo, Action: string(gateway.ActionStart), Message: msg}, nil
}

// FetchSample replaces the sample slot. It returns a notice only on failure.
func (d *Dashboard) FetchSample(ctx context.Context) *Notice {
	review, err := d.actions.FetchSample(ctx)
	if err != nil {
		return failureNotice(gateway.ActionSample, err)
	}

	d.mu.Lock()
	d.sample = review
	d.mu.Unlock()

	d.notifier.Broadcast()
	return nil
}

// FetchAspects replaces the aspect slot. It returns a notice only on failure.
func (d *Dashboard) FetchAspects(ctx context.Context) *Notice {
	catalog, err := d.actions.FetchAspects(ctx)
	if err != nil {
		return failureNotice(gateway.ActionAspects, err)
	}

	d.mu.Lock()
	d.aspects = catalog
	d.mu.Unlock()

	d.notifier.Broadcast()
	return nil
}

// FetchTestBatch replaces the test batch slot. It returns a notice only on failure.
func (d *Dashboard) FetchTestBatch(ctx context.Context) *Notice {
	result, err := d.actions.FetchTestBatch(ctx)
	if err != nil {
		return failureNotice(gateway.ActionTestBatch, err)
	}

	d.mu.Lock()
	d.testBatch = result
	d.mu.Unlock()

	d.notifier.Broadcast()
	return nil
}

func failureNotice(action gateway.Action, err error) *Notice {
	msg := err.Error()
	var actionErr *gateway.ActionError
	if errors.As(err, &actionErr) {
		msg = actionErr.Message
	}
	return &Notice{Level: NoticeError, Action: string(action), Message: msg}
}

// AspectsView is the aspect slot as displayed.
type AspectsView struct {
	Total int      `json:"total"`
	Names []string `json:"names"`
}

// View is everything the presentation layer renders, computed from one status snapshot.
type View struct {
	Status           domain.JobStatus          `json:"status"`
	Progress         string                    `json:"progress"`
	Phase            string                    `json:"phase"`
	ReviewsGenerated string                    `json:"reviews_generated"`
	ShowFiles        bool                      `json:"show_files"`
	FilesCreated     int                       `json:"files_created"`
	InputsLocked     bool                      `json:"inputs_locked"`
	StartLabel       string                    `json:"start_label"`
	Settings         domain.GenerationSettings `json:"settings"`
	TestBatchSize    int                       `json:"test_batch_size"`
	Sample           *domain.SampleReview      `json:"sample,omitempty"`
	Aspects          *AspectsView              `json:"aspects,omitempty"`
	TestBatch        *domain.TestBatchResult   `json:"test_batch,omitempty"`
}

// View renders the current state.
func (d *Dashboard) View() View {
	status := d.status.Snapshot()

	v := View{
		Status:           status,
		Progress:         domain.FormatProgress(status),
		Phase:            status.CurrentPhase,
		ReviewsGenerated: fmt.Sprintf("%s / %s", domain.FormatCount(status.Progress), domain.FormatCount(status.Total)),
		InputsLocked:     status.IsRunning,
		StartLabel:       labelStart,
		TestBatchSize:    d.actions.TestBatchSize(),
	}
	if v.Phase == "" {
		v.Phase = phaseIdle
	}
	if status.IsRunning {
		v.StartLabel = labelRunning
	}
	if status.Completed && len(status.FilesCreated) > 0 {
		v.ShowFiles = true
		v.FilesCreated = len(status.FilesCreated)
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	v.Settings = d.settings
	v.Sample = d.sample
	v.TestBatch = d.testBatch
	if d.aspects != nil {
		v.Aspects = &AspectsView{
			Total: d.aspects.TotalAspects,
			Names: d.aspects.Names(),
		}
	}
	return v
}
