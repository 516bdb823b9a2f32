package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"wordglow/internal/language"
	"wordglow/internal/queue"
)

const timeLayout = "2006-01-02 15:04"

func buildQueueListRows(jobs []*queue.Job) [][]string {
	rows := make([][]string, 0, len(jobs))
	for _, job := range jobs {
		cues := ""
		if job.CueCount > 0 {
			cues = strconv.Itoa(job.CueCount)
		}
		rows = append(rows, []string{
			strconv.FormatInt(job.ID, 10),
			filepath.Base(job.AudioPath),
			string(job.Status),
			progressText(job),
			cues,
			formatTime(job.UpdatedAt),
		})
	}
	return rows
}

func progressText(job *queue.Job) string {
	switch {
	case job.ProgressStage != "" && job.ProgressMessage != "" && job.ProgressMessage != job.ProgressStage:
		return job.ProgressStage + ": " + job.ProgressMessage
	case job.ProgressStage != "":
		return job.ProgressStage
	default:
		return job.ProgressMessage
	}
}

func jobDetailFields(job *queue.Job) [][2]string {
	fields := [][2]string{
		{"Audio", job.AudioPath},
		{"Output", job.OutputPath},
		{"Engine", valueOrDash(job.Engine)},
		{"Language", language.DisplayName(job.Language)},
		{"Words", strconv.Itoa(job.WordCount)},
		{"Cues", strconv.Itoa(job.CueCount)},
		{"Transcript", valueOrDash(job.TranscriptPath)},
		{"Save JSON", yesNo(job.SaveJSON)},
		{"Fingerprint", shortFingerprint(job.Fingerprint)},
		{"Progress", valueOrDash(progressText(job))},
	}
	if job.ErrorMessage != "" {
		fields = append(fields, [2]string{"Error", job.ErrorMessage})
	}
	if job.LastHeartbeat != nil {
		fields = append(fields, [2]string{"Heartbeat", formatTime(*job.LastHeartbeat)})
	}
	fields = append(fields,
		[2]string{"Created", formatTime(job.CreatedAt)},
		[2]string{"Updated", formatTime(job.UpdatedAt)},
	)
	return fields
}

func shortFingerprint(fp string) string {
	if len(fp) > 12 {
		return fp[:12]
	}
	return valueOrDash(fp)
}

func valueOrDash(value string) string {
	if value == "" {
		return "-"
	}
	return value
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(timeLayout)
}

func formatQueueStats(health queue.HealthSummary) string {
	return fmt.Sprintf("%d total: %d pending, %d processing, %d completed, %d failed, %d review",
		health.Total, health.Pending, health.Processing, health.Completed, health.Failed, health.Review)
}
