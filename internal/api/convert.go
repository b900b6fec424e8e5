package api

import (
	"time"

	"lessonforge/internal/project"
)

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// FromProject converts a project record to its API representation.
func FromProject(p *project.Project) Project {
	if p == nil {
		return Project{}
	}

	dto := Project{
		ID:           p.ID,
		Title:        p.Title,
		TemplateType: string(p.TemplateType),
		Status:       string(p.Status),
		Topic:        p.SourceConfig.Topic,
		Level:        p.SourceConfig.Level,
		ErrorStep:    string(p.ErrorStep),
		ErrorMessage: p.ErrorMessage,
		Source: SourceConfig{
			Topic:                 p.SourceConfig.Topic,
			Level:                 p.SourceConfig.Level,
			TargetDurationSeconds: p.SourceConfig.TargetDurationSeconds,
			NativeLanguage:        p.SourceConfig.NativeLanguage,
			URLs:                  append([]string(nil), p.SourceConfig.URLs...),
			Mode:                  p.SourceConfig.Mode,
		},
		Voice: VoiceConfig{
			Provider:  p.VoiceConfig.Provider,
			VoiceID:   p.VoiceConfig.VoiceID,
			VoiceName: p.VoiceConfig.VoiceName,
		},
		Avatar: AvatarConfig{
			Provider:      p.AvatarConfig.Provider,
			CharacterID:   p.AvatarConfig.CharacterID,
			CharacterName: p.AvatarConfig.CharacterName,
		},
		Video: VideoSettings{
			AspectRatio:        p.VideoSettings.AspectRatio,
			Resolution:         p.VideoSettings.Resolution,
			IncludeIntro:       p.VideoSettings.IncludeIntro,
			IncludeOutro:       p.VideoSettings.IncludeOutro,
			LowerThird:         p.VideoSettings.LowerThird,
			IncludeProgressBar: p.VideoSettings.IncludeProgressBar,
		},
	}
	if !p.CreatedAt.IsZero() {
		dto.CreatedAt = p.CreatedAt.Format(dateTimeFormat)
	}
	if !p.UpdatedAt.IsZero() {
		dto.UpdatedAt = p.UpdatedAt.Format(dateTimeFormat)
	}
	if p.LessonContent != nil {
		dto.LessonContent = &LessonContent{
			Objective:         p.LessonContent.Objective,
			SlideCount:        len(p.LessonContent.Slides),
			QuestionCount:     len(p.LessonContent.Questions),
			FullScript:        p.LessonContent.FullScript,
			EstimatedDuration: p.LessonContent.EstimatedDuration,
		}
	}
	if p.AudioOutput != nil {
		dto.AudioOutput = &AudioOutput{
			URL:             p.AudioOutput.URL,
			DurationSeconds: p.AudioOutput.DurationSeconds,
		}
	}
	if p.AvatarOutput != nil {
		dto.AvatarOutput = &AvatarOutput{
			URL:           p.AvatarOutput.URL,
			ProviderJobID: p.AvatarOutput.ProviderJobID,
		}
	}
	if p.FinalOutput != nil {
		dto.FinalOutput = &FinalOutput{URL: p.FinalOutput.URL}
	}
	return dto
}

// FromProjects converts a slice of project records.
func FromProjects(projects []*project.Project) []Project {
	if len(projects) == 0 {
		return nil
	}
	out := make([]Project, 0, len(projects))
	for _, p := range projects {
		out = append(out, FromProject(p))
	}
	return out
}

// ToProject builds a draft project record from a create request.
func ToProject(req CreateProjectRequest) *project.Project {
	return &project.Project{
		Title:        req.Title,
		TemplateType: project.TemplateType(req.TemplateType),
		SourceConfig: project.SourceConfig{
			Topic:                 req.Source.Topic,
			Level:                 req.Source.Level,
			TargetDurationSeconds: req.Source.TargetDurationSeconds,
			NativeLanguage:        req.Source.NativeLanguage,
			URLs:                  append([]string(nil), req.Source.URLs...),
			Mode:                  req.Source.Mode,
		},
		VoiceConfig: project.VoiceConfig{
			Provider:  req.Voice.Provider,
			VoiceID:   req.Voice.VoiceID,
			VoiceName: req.Voice.VoiceName,
		},
		AvatarConfig: project.AvatarConfig{
			Provider:      req.Avatar.Provider,
			CharacterID:   req.Avatar.CharacterID,
			CharacterName: req.Avatar.CharacterName,
		},
		VideoSettings: project.VideoSettings{
			AspectRatio:        req.Video.AspectRatio,
			Resolution:         req.Video.Resolution,
			IncludeIntro:       req.Video.IncludeIntro,
			IncludeOutro:       req.Video.IncludeOutro,
			LowerThird:         req.Video.LowerThird,
			IncludeProgressBar: req.Video.IncludeProgressBar,
		},
	}
}

// MergeProjectStats converts store stats to string keys for API payloads.
func MergeProjectStats(stats map[project.Status]int) map[string]int {
	merged := make(map[string]int, len(stats))
	for status, count := range stats {
		merged[string(status)] = count
	}
	return merged
}

// ParseTimestamp reads an API timestamp back into a time.Time.
func ParseTimestamp(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	ts, err := time.Parse(dateTimeFormat, value)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}
