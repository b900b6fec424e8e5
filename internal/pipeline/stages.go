package pipeline

import (
	"fmt"

	"lessonforge/internal/project"
	"lessonforge/internal/services"
)

// stageSpec describes one pipeline stage: where it starts, which status marks
// it in flight, where it lands, and which upstream artifact it needs.
type stageSpec struct {
	stage      project.Stage
	from       project.Status
	generating project.Status
	done       project.Status
	requires   func(p *project.Project) error
}

var stageOrder = []stageSpec{
	{
		stage:      project.StageContent,
		from:       project.StatusDraft,
		generating: project.StatusContentGenerating,
		done:       project.StatusContentReady,
		requires:   func(*project.Project) error { return nil },
	},
	{
		stage:      project.StageAudio,
		from:       project.StatusContentReady,
		generating: project.StatusAudioGenerating,
		done:       project.StatusAudioReady,
		requires: func(p *project.Project) error {
			if p.LessonContent == nil || p.LessonContent.FullScript == "" {
				return fmt.Errorf("audio generation needs a script: %w", services.ErrMissingPrerequisite)
			}
			return nil
		},
	},
	{
		stage:      project.StageAvatar,
		from:       project.StatusAudioReady,
		generating: project.StatusAvatarGenerating,
		done:       project.StatusAvatarReady,
		requires: func(p *project.Project) error {
			if p.AudioOutput == nil || p.AudioOutput.URL == "" {
				return fmt.Errorf("avatar generation needs narration audio: %w", services.ErrMissingPrerequisite)
			}
			return nil
		},
	},
	{
		stage:      project.StageRender,
		from:       project.StatusAvatarReady,
		generating: project.StatusRendering,
		done:       project.StatusCompleted,
		requires: func(p *project.Project) error {
			if p.AvatarOutput == nil || p.AvatarOutput.URL == "" {
				return fmt.Errorf("rendering needs the avatar video: %w", services.ErrMissingPrerequisite)
			}
			return nil
		},
	},
}

func stageFor(target project.Status) (stageSpec, bool) {
	for _, spec := range stageOrder {
		if spec.generating == target {
			return spec, true
		}
	}
	return stageSpec{}, false
}

// RetryTarget returns the generating status that re-enters the stage a failed
// project stopped at.
func RetryTarget(p *project.Project) (project.Status, bool) {
	if p == nil || p.Status != project.StatusFailed {
		return "", false
	}
	for _, spec := range stageOrder {
		if spec.stage == p.ErrorStep {
			return spec.generating, true
		}
	}
	return "", false
}

// NextTarget returns the generating status that moves the project forward
// from its current status, or the retry target when it failed.
func NextTarget(p *project.Project) (project.Status, bool) {
	if p == nil {
		return "", false
	}
	if p.Status == project.StatusFailed {
		return RetryTarget(p)
	}
	for _, spec := range stageOrder {
		if spec.from == p.Status {
			return spec.generating, true
		}
	}
	return "", false
}
