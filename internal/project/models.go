package project

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"
)

// Status represents the lifecycle of a video project.
type Status string

const (
	StatusDraft             Status = "draft"
	StatusContentGenerating Status = "content_generating"
	StatusContentReady      Status = "content_ready"
	StatusAudioGenerating   Status = "audio_generating"
	StatusAudioReady        Status = "audio_ready"
	StatusAvatarGenerating  Status = "avatar_generating"
	StatusAvatarReady       Status = "avatar_ready"
	StatusRendering         Status = "rendering"
	StatusCompleted         Status = "completed"
	StatusFailed            Status = "failed"
)

// Stage names a pipeline phase; persisted in ErrorStep when that phase fails.
type Stage string

const (
	StageContent Stage = "content_generation"
	StageAudio   Stage = "audio_generation"
	StageAvatar  Stage = "avatar_generation"
	StageRender  Stage = "rendering"
)

// DaemonRestartReason is the error message set when in-flight projects are
// failed because the daemon stopped mid-stage.
const DaemonRestartReason = "Daemon restarted while stage was in flight"

var allStatuses = []Status{
	StatusDraft,
	StatusContentGenerating,
	StatusContentReady,
	StatusAudioGenerating,
	StatusAudioReady,
	StatusAvatarGenerating,
	StatusAvatarReady,
	StatusRendering,
	StatusCompleted,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

var generatingStatuses = map[Status]Stage{
	StatusContentGenerating: StageContent,
	StatusAudioGenerating:   StageAudio,
	StatusAvatarGenerating:  StageAvatar,
	StatusRendering:         StageRender,
}

// TemplateType selects the lesson format the content generator produces.
type TemplateType string

const (
	TemplateGrammarLesson        TemplateType = "grammar_lesson"
	TemplateNewsBroadcast        TemplateType = "news_broadcast"
	TemplateVocabularyLesson     TemplateType = "vocabulary_lesson"
	TemplateConversationPractice TemplateType = "conversation_practice"
)

var templateTypes = map[TemplateType]struct{}{
	TemplateGrammarLesson:        {},
	TemplateNewsBroadcast:        {},
	TemplateVocabularyLesson:     {},
	TemplateConversationPractice: {},
}

var cefrLevels = map[string]struct{}{
	"A1": {}, "A2": {}, "B1": {}, "B2": {}, "C1": {}, "C2": {},
}

// SourceConfig parameterizes script generation.
type SourceConfig struct {
	Topic                 string   `json:"topic"`
	Level                 string   `json:"level"`
	TargetDurationSeconds int      `json:"target_duration_seconds"`
	NativeLanguage        string   `json:"native_language"`
	URLs                  []string `json:"urls,omitempty"`
	Mode                  string   `json:"mode,omitempty"`
}

// VoiceConfig selects the speech synthesis voice.
type VoiceConfig struct {
	Provider  string `json:"provider"`
	VoiceID   string `json:"voice_id"`
	VoiceName string `json:"voice_name"`
}

// AvatarConfig selects the talking-avatar character.
type AvatarConfig struct {
	Provider      string `json:"provider"`
	CharacterID   string `json:"character_id"`
	CharacterName string `json:"character_name"`
}

// VideoSettings controls final compositing options.
type VideoSettings struct {
	AspectRatio        string `json:"aspect_ratio"`
	Resolution         string `json:"resolution"`
	IncludeIntro       bool   `json:"include_intro"`
	IncludeOutro       bool   `json:"include_outro"`
	LowerThird         string `json:"lower_third,omitempty"`
	IncludeProgressBar bool   `json:"include_progress_bar"`
}

// VocabularyItem is one taught term in the lesson.
type VocabularyItem struct {
	Term       string `json:"term"`
	Definition string `json:"definition"`
	Example    string `json:"example,omitempty"`
}

// Slide is one visual unit of the lesson.
type Slide struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Question is one comprehension check.
type Question struct {
	Prompt  string   `json:"prompt"`
	Options []string `json:"options,omitempty"`
	Answer  string   `json:"answer"`
}

// LessonContent is the structured script produced by the content stage and
// consumed by every later stage.
type LessonContent struct {
	Objective         string           `json:"objective"`
	Vocabulary        []VocabularyItem `json:"vocabulary"`
	Slides            []Slide          `json:"slides"`
	Questions         []Question       `json:"questions"`
	KeyTakeaways      []string         `json:"key_takeaways"`
	FullScript        string           `json:"full_script"`
	EstimatedDuration int              `json:"estimated_duration"`
}

// AudioOutput is the speech stage artifact.
type AudioOutput struct {
	URL             string  `json:"url"`
	DurationSeconds float64 `json:"duration_seconds"`
}

// AvatarOutput is the avatar stage artifact.
type AvatarOutput struct {
	URL           string `json:"url"`
	ProviderJobID string `json:"provider_job_id"`
}

// FinalOutput is the terminal render artifact.
type FinalOutput struct {
	URL string `json:"url"`
}

// Project represents one video being produced.
type Project struct {
	ID            string
	Title         string
	TemplateType  TemplateType
	SourceConfig  SourceConfig
	VoiceConfig   VoiceConfig
	AvatarConfig  AvatarConfig
	VideoSettings VideoSettings
	Status        Status
	LessonContent *LessonContent
	AudioOutput   *AudioOutput
	AvatarOutput  *AvatarOutput
	FinalOutput   *FinalOutput
	ErrorStep     Stage
	ErrorMessage  string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsGenerating reports whether the status reflects an in-flight stage.
func (p Project) IsGenerating() bool {
	_, ok := generatingStatuses[p.Status]
	return ok
}

// IsGeneratingStatus reports whether a status reflects an in-flight stage.
func IsGeneratingStatus(status Status) bool {
	_, ok := generatingStatuses[status]
	return ok
}

// StageForGeneratingStatus returns the stage a generating status belongs to.
func StageForGeneratingStatus(status Status) (Stage, bool) {
	stage, ok := generatingStatuses[status]
	return stage, ok
}

// SetFailed records a stage failure on the project.
func (p *Project) SetFailed(stage Stage, message string) {
	p.Status = StatusFailed
	p.ErrorStep = stage
	p.ErrorMessage = strings.TrimSpace(message)
}

// ClearFailure wipes any recorded failure state.
func (p *Project) ClearFailure() {
	p.ErrorStep = ""
	p.ErrorMessage = ""
}

// Validate checks the fields a project must carry before entering the pipeline.
func (p *Project) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return fmt.Errorf("project title is required")
	}
	if _, ok := templateTypes[p.TemplateType]; !ok {
		return fmt.Errorf("unknown template type %q", p.TemplateType)
	}
	if strings.TrimSpace(p.SourceConfig.Topic) == "" {
		return fmt.Errorf("source topic is required")
	}
	level := strings.ToUpper(strings.TrimSpace(p.SourceConfig.Level))
	if _, ok := cefrLevels[level]; !ok {
		return fmt.Errorf("level %q is not a CEFR level (A1-C2)", p.SourceConfig.Level)
	}
	p.SourceConfig.Level = level
	if p.SourceConfig.TargetDurationSeconds <= 0 {
		return fmt.Errorf("target duration must be positive")
	}
	if lang := strings.TrimSpace(p.SourceConfig.NativeLanguage); lang != "" {
		tag, err := language.Parse(lang)
		if err != nil {
			return fmt.Errorf("native language %q is not a valid language tag: %w", lang, err)
		}
		p.SourceConfig.NativeLanguage = tag.String()
	}
	switch p.VideoSettings.AspectRatio {
	case "", "16:9", "9:16":
	default:
		return fmt.Errorf("aspect ratio %q is not supported (16:9 or 9:16)", p.VideoSettings.AspectRatio)
	}
	return nil
}
