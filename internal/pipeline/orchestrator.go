package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"lessonforge/internal/config"
	"lessonforge/internal/logging"
	"lessonforge/internal/notifications"
	"lessonforge/internal/polling"
	"lessonforge/internal/project"
	"lessonforge/internal/providers/avatar"
	"lessonforge/internal/providers/content"
	"lessonforge/internal/providers/render"
	"lessonforge/internal/providers/speech"
	"lessonforge/internal/retry"
	"lessonforge/internal/services"
	"lessonforge/internal/spacing"
)

// Deps carries the collaborators the orchestrator drives. Research, Mirror,
// and Notifier are optional.
type Deps struct {
	Store    *project.Store
	Content  ContentGenerator
	Speech   SpeechSynthesizer
	Avatar   AvatarRenderer
	Render   VideoCompositor
	Research ContextGatherer
	Mirror   ArtifactMirror
	Notifier notifications.Service
	Logger   *slog.Logger
}

// Orchestrator moves projects through the pipeline one admitted stage at a
// time.
type Orchestrator struct {
	cfg    *config.Config
	deps   Deps
	gate   *Gate
	spacer *spacing.Spacer
	logger *slog.Logger

	sleeper func(ctx context.Context, d time.Duration) error
}

// Option customizes the orchestrator.
type Option func(*Orchestrator)

// WithSleeper overrides every internal wait (retry backoff and poll delays),
// useful for tests.
func WithSleeper(sleeper func(ctx context.Context, d time.Duration) error) Option {
	return func(o *Orchestrator) {
		o.sleeper = sleeper
	}
}

// WithSpacer overrides the request spacer, useful for tests with a fake clock.
func WithSpacer(spacer *spacing.Spacer) Option {
	return func(o *Orchestrator) {
		if spacer != nil {
			o.spacer = spacer
		}
	}
}

// New constructs an orchestrator.
func New(cfg *config.Config, deps Deps, opts ...Option) *Orchestrator {
	logger := deps.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	if deps.Notifier == nil {
		deps.Notifier = notifications.NewService(cfg)
	}
	o := &Orchestrator{
		cfg:    cfg,
		deps:   deps,
		gate:   &Gate{},
		spacer: spacing.NewSpacer(),
		logger: logging.NewComponentLogger(logger, "pipeline"),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Gate exposes the admission gate, shared with any other component that must
// respect single-flight semantics.
func (o *Orchestrator) Gate() *Gate {
	return o.gate
}

// Advance validates the transition to target, admits the stage through the
// gate, and runs it synchronously. The project always lands in the stage's
// ready status or in failed with errorStep set; errors past admission are
// also recorded on the project.
func (o *Orchestrator) Advance(ctx context.Context, projectID string, target project.Status) error {
	p, spec, err := o.admit(ctx, projectID, target)
	if err != nil {
		return err
	}
	defer o.gate.Release()
	return o.runStage(ctx, p, spec)
}

// Dispatch performs the same admission as Advance but returns as soon as the
// project is persisted in its generating state; the provider work continues
// on a background goroutine. Used by the daemon API so stage endpoints reply
// immediately.
func (o *Orchestrator) Dispatch(ctx context.Context, projectID string, target project.Status) error {
	p, spec, err := o.admit(ctx, projectID, target)
	if err != nil {
		return err
	}

	bg := context.WithoutCancel(ctx)
	go func() {
		defer o.gate.Release()
		if err := o.runStage(bg, p, spec); err != nil {
			o.logger.Warn("stage failed",
				logging.String(logging.FieldProjectID, p.ID),
				logging.String(logging.FieldStage, string(spec.stage)),
				logging.Error(err))
		}
	}()
	return nil
}

// admit loads the project, validates the transition and prerequisite, takes
// the gate, and persists the generating status. On success the gate is held
// by the caller.
func (o *Orchestrator) admit(ctx context.Context, projectID string, target project.Status) (*project.Project, stageSpec, error) {
	spec, ok := stageFor(target)
	if !ok {
		return nil, stageSpec{}, fmt.Errorf("%q is not a stage entry status: %w", target, services.ErrInvalidTransition)
	}

	p, err := o.deps.Store.GetByID(ctx, projectID)
	if err != nil {
		return nil, stageSpec{}, err
	}
	if p == nil {
		return nil, stageSpec{}, fmt.Errorf("project %s: %w", projectID, services.ErrJobNotFound)
	}

	isRetry := p.Status == project.StatusFailed && p.ErrorStep == spec.stage
	if p.Status != spec.from && !isRetry {
		return nil, stageSpec{}, fmt.Errorf("cannot move %s from %s to %s: %w",
			p.ID, p.Status, target, services.ErrInvalidTransition)
	}
	if err := spec.requires(p); err != nil {
		return nil, stageSpec{}, err
	}

	if !o.gate.TryAcquire() {
		return nil, stageSpec{}, services.ErrBusy
	}

	previous := p.Status
	p.Status = spec.generating
	matched, err := o.deps.Store.UpdateFrom(ctx, p, previous)
	if err != nil {
		o.gate.Release()
		return nil, stageSpec{}, err
	}
	if !matched {
		o.gate.Release()
		return nil, stageSpec{}, fmt.Errorf("project %s changed underneath: %w", p.ID, services.ErrInvalidTransition)
	}

	o.logger.Info("stage started",
		logging.String(logging.FieldProjectID, p.ID),
		logging.String(logging.FieldStage, string(spec.stage)))
	return p, spec, nil
}

// runStage executes the provider work for one admitted stage and persists the
// outcome with a status-guarded update, so a result arriving after the
// project moved on (restart, retry) is dropped instead of applied.
func (o *Orchestrator) runStage(ctx context.Context, p *project.Project, spec stageSpec) error {
	ctx = services.WithProjectID(ctx, p.ID)
	ctx = services.WithStage(ctx, string(spec.stage))

	var stageErr error
	switch spec.stage {
	case project.StageContent:
		stageErr = o.runContent(ctx, p)
	case project.StageAudio:
		stageErr = o.runAudio(ctx, p)
	case project.StageAvatar:
		stageErr = o.runAvatar(ctx, p)
	case project.StageRender:
		stageErr = o.runRender(ctx, p)
	default:
		stageErr = fmt.Errorf("unknown stage %q", spec.stage)
	}

	if stageErr != nil {
		p.SetFailed(spec.stage, stageErr.Error())
		if matched, err := o.deps.Store.UpdateFrom(ctx, p, spec.generating); err != nil {
			return errors.Join(stageErr, err)
		} else if !matched {
			o.logger.Warn("discarding late stage failure",
				logging.String(logging.FieldProjectID, p.ID),
				logging.String(logging.FieldStage, string(spec.stage)))
			return stageErr
		}
		if err := o.deps.Notifier.NotifyStageFailed(ctx, p.Title, spec.stage, stageErr); err != nil {
			o.logger.Debug("failure notification not delivered", logging.Error(err))
		}
		return stageErr
	}

	p.Status = spec.done
	p.ClearFailure()
	matched, err := o.deps.Store.UpdateFrom(ctx, p, spec.generating)
	if err != nil {
		return err
	}
	if !matched {
		o.logger.Warn("discarding late stage result",
			logging.String(logging.FieldProjectID, p.ID),
			logging.String(logging.FieldStage, string(spec.stage)))
		return nil
	}

	o.logger.Info("stage completed",
		logging.String(logging.FieldProjectID, p.ID),
		logging.String(logging.FieldStage, string(spec.stage)))
	o.notifyDone(ctx, p, spec)
	return nil
}

func (o *Orchestrator) notifyDone(ctx context.Context, p *project.Project, spec stageSpec) {
	var err error
	if spec.done == project.StatusCompleted {
		url := ""
		if p.FinalOutput != nil {
			url = p.FinalOutput.URL
		}
		err = o.deps.Notifier.NotifyPipelineCompleted(ctx, p.Title, url)
	} else {
		err = o.deps.Notifier.NotifyStageCompleted(ctx, p.Title, spec.stage)
	}
	if err != nil {
		o.logger.Debug("notification not delivered", logging.Error(err))
	}
}

func (o *Orchestrator) runContent(ctx context.Context, p *project.Project) error {
	req := content.Request{
		TemplateType:    p.TemplateType,
		Topic:           p.SourceConfig.Topic,
		Level:           p.SourceConfig.Level,
		DurationSeconds: p.SourceConfig.TargetDurationSeconds,
		NativeLanguage:  o.nativeLanguage(p),
	}
	if o.deps.Research != nil && (o.cfg.Research.Enabled || len(p.SourceConfig.URLs) > 0) {
		req.ResearchContext = o.deps.Research.Gather(ctx, p.SourceConfig.Topic, p.SourceConfig.URLs)
	}

	policy := o.policy(providerBudget{
		maxRetries: o.cfg.Providers.Content.MaxRetries,
		baseMs:     o.cfg.Providers.Content.RetryBaseMs,
		maxMs:      o.cfg.Providers.Content.RetryMaxMs,
	}, project.StageContent)

	var lesson *project.LessonContent
	err := policy.Run(ctx, func(ctx context.Context) error {
		if err := o.spacer.Wait(ctx, "content", o.minInterval(o.cfg.Providers.Content.MinIntervalMs)); err != nil {
			return err
		}
		generated, err := o.deps.Content.GenerateLesson(ctx, req)
		if err != nil {
			return err
		}
		lesson = generated
		return nil
	})
	if err != nil {
		return err
	}
	p.LessonContent = lesson
	return nil
}

func (o *Orchestrator) runAudio(ctx context.Context, p *project.Project) error {
	policy := o.policy(providerBudget{
		maxRetries: o.cfg.Providers.Speech.MaxRetries,
		baseMs:     o.cfg.Providers.Speech.RetryBaseMs,
		maxMs:      o.cfg.Providers.Speech.RetryMaxMs,
	}, project.StageAudio)

	var result *speech.Result
	err := policy.Run(ctx, func(ctx context.Context) error {
		if err := o.spacer.Wait(ctx, "speech", o.minInterval(o.cfg.Providers.Speech.MinIntervalMs)); err != nil {
			return err
		}
		synthesized, err := o.deps.Speech.Synthesize(ctx, speech.Request{
			Script:    p.LessonContent.FullScript,
			VoiceID:   p.VoiceConfig.VoiceID,
			VoiceName: p.VoiceConfig.VoiceName,
		})
		if err != nil {
			return err
		}
		result = synthesized
		return nil
	})
	if err != nil {
		return err
	}
	p.AudioOutput = &project.AudioOutput{URL: result.AudioURL, DurationSeconds: result.DurationSeconds}
	return nil
}

func (o *Orchestrator) runAvatar(ctx context.Context, p *project.Project) error {
	policy := o.policy(providerBudget{
		maxRetries: o.cfg.Providers.Avatar.MaxRetries,
		baseMs:     o.cfg.Providers.Avatar.RetryBaseMs,
		maxMs:      o.cfg.Providers.Avatar.RetryMaxMs,
	}, project.StageAvatar)

	var jobID string
	err := policy.Run(ctx, func(ctx context.Context) error {
		if err := o.spacer.Wait(ctx, "avatar", o.minInterval(o.cfg.Providers.Avatar.MinIntervalMs)); err != nil {
			return err
		}
		submitted, err := o.deps.Avatar.Submit(ctx, avatar.SubmitRequest{
			AudioURL:    p.AudioOutput.URL,
			CharacterID: p.AvatarConfig.CharacterID,
			AspectRatio: p.VideoSettings.AspectRatio,
		})
		if err != nil {
			return err
		}
		jobID = submitted
		return nil
	})
	if err != nil {
		return err
	}

	avatarCfg := o.cfg.Providers.Avatar
	sched := polling.Schedule{
		Interval:    time.Duration(avatarCfg.PollInitialMs) * time.Millisecond,
		Growth:      avatarCfg.PollGrowth,
		GrowthEvery: avatarCfg.PollGrowthEvery,
		MaxInterval: time.Duration(avatarCfg.PollMaxMs) * time.Millisecond,
		MaxAttempts: avatarCfg.PollMaxAttempts,
	}
	if o.sleeper != nil {
		sched = sched.WithSleeper(o.sleeper)
	}
	status, err := sched.WaitForCompletion(ctx, func(ctx context.Context, _ int) (polling.Status, error) {
		return o.deps.Avatar.Status(ctx, jobID)
	})
	if err != nil {
		return err
	}
	p.AvatarOutput = &project.AvatarOutput{URL: status.ResultURL, ProviderJobID: jobID}
	return nil
}

func (o *Orchestrator) runRender(ctx context.Context, p *project.Project) error {
	policy := o.policy(providerBudget{
		maxRetries: o.cfg.Providers.Render.MaxRetries,
		baseMs:     o.cfg.Providers.Render.RetryBaseMs,
		maxMs:      o.cfg.Providers.Render.RetryMaxMs,
	}, project.StageRender)

	req := render.SubmitRequest{
		ProjectID:   p.ID,
		AvatarURL:   p.AvatarOutput.URL,
		AspectRatio: p.VideoSettings.AspectRatio,
		Resolution:  p.VideoSettings.Resolution,
	}
	if p.AudioOutput != nil {
		req.AudioURL = p.AudioOutput.URL
	}
	if p.LessonContent != nil {
		for _, slide := range p.LessonContent.Slides {
			req.Slides = append(req.Slides, render.SlidePayload{Title: slide.Title, Content: slide.Content})
		}
	}

	var jobID string
	err := policy.Run(ctx, func(ctx context.Context) error {
		if err := o.spacer.Wait(ctx, "render", o.minInterval(o.cfg.Providers.Render.MinIntervalMs)); err != nil {
			return err
		}
		submitted, err := o.deps.Render.Submit(ctx, req)
		if err != nil {
			return err
		}
		jobID = submitted
		return nil
	})
	if err != nil {
		return err
	}

	renderCfg := o.cfg.Providers.Render
	sched := polling.Schedule{
		Interval:       time.Duration(renderCfg.PollIntervalMs) * time.Millisecond,
		MaxAttempts:    renderCfg.PollMaxAttempts,
		InitialWait:    time.Duration(renderCfg.PollInitialWaitMs) * time.Millisecond,
		TransientDelay: time.Duration(renderCfg.PollTransientDelayMs) * time.Millisecond,
	}
	if o.sleeper != nil {
		sched = sched.WithSleeper(o.sleeper)
	}
	status, err := sched.WaitForCompletion(ctx, func(ctx context.Context, _ int) (polling.Status, error) {
		return o.deps.Render.Status(ctx, jobID)
	})
	if err != nil {
		return err
	}

	finalURL := status.ResultURL
	if o.deps.Mirror != nil {
		if mirrored, err := o.deps.Mirror.MirrorVideo(ctx, p.ID, finalURL); err != nil {
			o.logger.Warn("artifact mirror failed, keeping provider url",
				logging.String(logging.FieldProjectID, p.ID),
				logging.Error(err))
		} else {
			finalURL = mirrored
		}
	}
	p.FinalOutput = &project.FinalOutput{URL: finalURL}
	return nil
}

type providerBudget struct {
	maxRetries int
	baseMs     int
	maxMs      int
}

func (o *Orchestrator) policy(budget providerBudget, stage project.Stage) retry.Policy {
	policy := retry.Policy{
		MaxRetries: budget.maxRetries,
		BaseDelay:  time.Duration(budget.baseMs) * time.Millisecond,
		MaxDelay:   time.Duration(budget.maxMs) * time.Millisecond,
		Growth:     2,
		OnRetry: func(attempt int, delay time.Duration, err error) {
			o.logger.Warn("retrying provider call",
				logging.String(logging.FieldStage, string(stage)),
				logging.Int("attempt", attempt),
				logging.Duration("delay", delay),
				logging.Error(err))
		},
	}
	if o.sleeper != nil {
		policy = policy.WithSleeper(o.sleeper)
	}
	return policy
}

func (o *Orchestrator) minInterval(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

func (o *Orchestrator) nativeLanguage(p *project.Project) string {
	if p.SourceConfig.NativeLanguage != "" {
		return p.SourceConfig.NativeLanguage
	}
	return o.cfg.Workflow.DefaultNativeLanguage
}
