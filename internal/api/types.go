package api

// Project describes a video project in a transport-friendly format.
type Project struct {
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	TemplateType  string         `json:"templateType"`
	Status        string         `json:"status"`
	Topic         string         `json:"topic"`
	Level         string         `json:"level"`
	ErrorStep     string         `json:"errorStep,omitempty"`
	ErrorMessage  string         `json:"errorMessage,omitempty"`
	CreatedAt     string         `json:"createdAt,omitempty"`
	UpdatedAt     string         `json:"updatedAt,omitempty"`
	Source        SourceConfig   `json:"source"`
	Voice         VoiceConfig    `json:"voice"`
	Avatar        AvatarConfig   `json:"avatar"`
	Video         VideoSettings  `json:"video"`
	LessonContent *LessonContent `json:"lessonContent,omitempty"`
	AudioOutput   *AudioOutput   `json:"audioOutput,omitempty"`
	AvatarOutput  *AvatarOutput  `json:"avatarOutput,omitempty"`
	FinalOutput   *FinalOutput   `json:"finalOutput,omitempty"`
}

// SourceConfig carries the lesson inputs.
type SourceConfig struct {
	Topic                 string   `json:"topic"`
	Level                 string   `json:"level"`
	TargetDurationSeconds int      `json:"targetDurationSeconds"`
	NativeLanguage        string   `json:"nativeLanguage,omitempty"`
	URLs                  []string `json:"urls,omitempty"`
	Mode                  string   `json:"mode,omitempty"`
}

// VoiceConfig selects the narration voice.
type VoiceConfig struct {
	Provider  string `json:"provider"`
	VoiceID   string `json:"voiceId"`
	VoiceName string `json:"voiceName,omitempty"`
}

// AvatarConfig selects the presenter character.
type AvatarConfig struct {
	Provider      string `json:"provider"`
	CharacterID   string `json:"characterId"`
	CharacterName string `json:"characterName,omitempty"`
}

// VideoSettings carries output format settings.
type VideoSettings struct {
	AspectRatio        string `json:"aspectRatio"`
	Resolution         string `json:"resolution"`
	IncludeIntro       bool   `json:"includeIntro,omitempty"`
	IncludeOutro       bool   `json:"includeOutro,omitempty"`
	LowerThird         string `json:"lowerThird,omitempty"`
	IncludeProgressBar bool   `json:"includeProgressBar,omitempty"`
}

// LessonContent is the script artifact in transport form. Slides and
// questions are summarized by count; the full payload stays in the store.
type LessonContent struct {
	Objective         string `json:"objective"`
	SlideCount        int    `json:"slideCount"`
	QuestionCount     int    `json:"questionCount"`
	FullScript        string `json:"fullScript"`
	EstimatedDuration int    `json:"estimatedDuration"`
}

// AudioOutput is the narration artifact.
type AudioOutput struct {
	URL             string  `json:"url"`
	DurationSeconds float64 `json:"durationSeconds"`
}

// AvatarOutput is the talking-avatar artifact.
type AvatarOutput struct {
	URL           string `json:"url"`
	ProviderJobID string `json:"providerJobId,omitempty"`
}

// FinalOutput is the finished video artifact.
type FinalOutput struct {
	URL string `json:"url"`
}

// DaemonStatus aggregates daemon runtime information for API consumers.
type DaemonStatus struct {
	Running       bool           `json:"running"`
	PID           int            `json:"pid"`
	ProjectDBPath string         `json:"projectDbPath"`
	LockFilePath  string         `json:"lockFilePath"`
	ProjectStats  map[string]int `json:"projectStats"`
}

// CreateProjectRequest is the payload for POST /api/projects.
type CreateProjectRequest struct {
	Title        string        `json:"title"`
	TemplateType string        `json:"templateType"`
	Source       SourceConfig  `json:"source"`
	Voice        VoiceConfig   `json:"voice"`
	Avatar       AvatarConfig  `json:"avatar"`
	Video        VideoSettings `json:"video"`
}

// ProjectListResponse wraps a collection of projects.
type ProjectListResponse struct {
	Projects []Project `json:"projects"`
}

// ProjectResponse wraps a single project.
type ProjectResponse struct {
	Project Project `json:"project"`
}

// AcceptedResponse acknowledges a stage request that is now running.
type AcceptedResponse struct {
	ProjectID string `json:"projectId"`
	Target    string `json:"target"`
}

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Error string `json:"error"`
}
