package project

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

const projectColumns = "id, title, template_type, source_config_json, voice_config_json, avatar_config_json, video_settings_json, status, lesson_content_json, audio_output_json, avatar_output_json, final_output_json, error_step, error_message, created_at, updated_at"

func scanProject(scanner interface{ Scan(dest ...any) error }) (*Project, error) {
	var (
		id            string
		title         string
		templateType  string
		sourceConfig  sql.NullString
		voiceConfig   sql.NullString
		avatarConfig  sql.NullString
		videoSettings sql.NullString
		statusStr     string
		lessonContent sql.NullString
		audioOutput   sql.NullString
		avatarOutput  sql.NullString
		finalOutput   sql.NullString
		errorStep     sql.NullString
		errorMessage  sql.NullString
		createdRaw    sql.NullString
		updatedRaw    sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&title,
		&templateType,
		&sourceConfig,
		&voiceConfig,
		&avatarConfig,
		&videoSettings,
		&statusStr,
		&lessonContent,
		&audioOutput,
		&avatarOutput,
		&finalOutput,
		&errorStep,
		&errorMessage,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	p := &Project{
		ID:           id,
		Title:        title,
		TemplateType: TemplateType(templateType),
		Status:       Status(statusStr),
		ErrorStep:    Stage(errorStep.String),
		ErrorMessage: errorMessage.String,
	}

	if err := decodeJSONField(sourceConfig, &p.SourceConfig); err != nil {
		return nil, fmt.Errorf("decode source config: %w", err)
	}
	if err := decodeJSONField(voiceConfig, &p.VoiceConfig); err != nil {
		return nil, fmt.Errorf("decode voice config: %w", err)
	}
	if err := decodeJSONField(avatarConfig, &p.AvatarConfig); err != nil {
		return nil, fmt.Errorf("decode avatar config: %w", err)
	}
	if err := decodeJSONField(videoSettings, &p.VideoSettings); err != nil {
		return nil, fmt.Errorf("decode video settings: %w", err)
	}

	if lessonContent.Valid && lessonContent.String != "" {
		p.LessonContent = &LessonContent{}
		if err := json.Unmarshal([]byte(lessonContent.String), p.LessonContent); err != nil {
			return nil, fmt.Errorf("decode lesson content: %w", err)
		}
	}
	if audioOutput.Valid && audioOutput.String != "" {
		p.AudioOutput = &AudioOutput{}
		if err := json.Unmarshal([]byte(audioOutput.String), p.AudioOutput); err != nil {
			return nil, fmt.Errorf("decode audio output: %w", err)
		}
	}
	if avatarOutput.Valid && avatarOutput.String != "" {
		p.AvatarOutput = &AvatarOutput{}
		if err := json.Unmarshal([]byte(avatarOutput.String), p.AvatarOutput); err != nil {
			return nil, fmt.Errorf("decode avatar output: %w", err)
		}
	}
	if finalOutput.Valid && finalOutput.String != "" {
		p.FinalOutput = &FinalOutput{}
		if err := json.Unmarshal([]byte(finalOutput.String), p.FinalOutput); err != nil {
			return nil, fmt.Errorf("decode final output: %w", err)
		}
	}

	if created, err := parseTimeString(createdRaw.String); err == nil {
		p.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		p.UpdatedAt = updated
	}
	return p, nil
}

func decodeJSONField(raw sql.NullString, target any) error {
	if !raw.Valid || raw.String == "" {
		return nil
	}
	return json.Unmarshal([]byte(raw.String), target)
}

func encodeJSONField(value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

func encodeOptional[T any](value *T) (any, error) {
	if value == nil {
		return nil, nil
	}
	return encodeJSONField(value)
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}

func (p *Project) encodeFields() (source, voice, avatar, settings, lesson, audio, avatarOut, final any, err error) {
	if source, err = encodeJSONField(p.SourceConfig); err != nil {
		return
	}
	if voice, err = encodeJSONField(p.VoiceConfig); err != nil {
		return
	}
	if avatar, err = encodeJSONField(p.AvatarConfig); err != nil {
		return
	}
	if settings, err = encodeJSONField(p.VideoSettings); err != nil {
		return
	}
	if lesson, err = encodeOptional(p.LessonContent); err != nil {
		return
	}
	if audio, err = encodeOptional(p.AudioOutput); err != nil {
		return
	}
	if avatarOut, err = encodeOptional(p.AvatarOutput); err != nil {
		return
	}
	final, err = encodeOptional(p.FinalOutput)
	return
}
