package queue

import (
	"database/sql"
	"errors"
	"time"
)

const jobColumns = "id, audio_path, output_path, status, engine, language, word_count, cue_count, transcript_path, save_json, fingerprint, error_message, created_at, updated_at, progress_stage, progress_message, last_heartbeat"

func scanJob(scanner interface{ Scan(dest ...any) error }) (*Job, error) {
	var (
		id               int64
		audioPath        string
		outputPath       string
		statusStr        string
		engine           sql.NullString
		language         sql.NullString
		wordCount        sql.NullInt64
		cueCount         sql.NullInt64
		transcriptPath   sql.NullString
		saveJSON         sql.NullInt64
		fingerprint      sql.NullString
		errorMessage     sql.NullString
		createdRaw       sql.NullString
		updatedRaw       sql.NullString
		progressStage    sql.NullString
		progressMessage  sql.NullString
		lastHeartbeatRaw sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&audioPath,
		&outputPath,
		&statusStr,
		&engine,
		&language,
		&wordCount,
		&cueCount,
		&transcriptPath,
		&saveJSON,
		&fingerprint,
		&errorMessage,
		&createdRaw,
		&updatedRaw,
		&progressStage,
		&progressMessage,
		&lastHeartbeatRaw,
	); err != nil {
		return nil, err
	}

	job := &Job{
		ID:              id,
		AudioPath:       audioPath,
		OutputPath:      outputPath,
		Status:          Status(statusStr),
		Engine:          engine.String,
		Language:        language.String,
		WordCount:       int(wordCount.Int64),
		CueCount:        int(cueCount.Int64),
		TranscriptPath:  transcriptPath.String,
		SaveJSON:        saveJSON.Valid && saveJSON.Int64 != 0,
		Fingerprint:     fingerprint.String,
		ErrorMessage:    errorMessage.String,
		ProgressStage:   progressStage.String,
		ProgressMessage: progressMessage.String,
	}

	if created, err := parseTimeString(createdRaw.String); err == nil {
		job.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		job.UpdatedAt = updated
	}
	if lastHeartbeatRaw.Valid {
		if heartbeat, err := parseTimeString(lastHeartbeatRaw.String); err == nil {
			job.LastHeartbeat = &heartbeat
		}
	}
	return job, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	return value.UTC().Format(time.RFC3339Nano)
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
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

func statusArgs(statuses []Status) []any {
	args := make([]any, len(statuses))
	for i, status := range statuses {
		args[i] = status
	}
	return args
}
