package records

import (
	"encoding/json"
	"io"
	"log"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sitpractice/sit-api/api/types"
	"github.com/sitpractice/sit-api/internal/models"
	"github.com/sitpractice/sit-api/internal/services/records"
)

// PostCheckin records a check-in from a multipart form. Fields:
// occurred_at (RFC3339, required), flow_id, steps (JSON array of
// {step_id, answer_index}), voice_note (file), voice_note_duration
// (seconds). The response returns immediately; transcription runs
// asynchronously.
func PostCheckin(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		occurredAtRaw := c.PostForm("occurred_at")
		if occurredAtRaw == "" {
			types.SendBadRequest(c, "occurred_at is required")
			return
		}
		occurredAt, err := time.Parse(time.RFC3339, occurredAtRaw)
		if err != nil {
			types.SendBadRequest(c, "occurred_at must be an RFC3339 timestamp")
			return
		}

		input := records.CreateCheckinInput{
			OccurredAt: occurredAt,
		}

		if flowID := c.PostForm("flow_id"); flowID != "" {
			input.FlowID = &flowID
		}

		if stepsRaw := c.PostForm("steps"); stepsRaw != "" {
			var steps models.StepPath
			if err := json.Unmarshal([]byte(stepsRaw), &steps); err != nil {
				types.SendBadRequest(c, "steps must be a JSON array of {step_id, answer_index}")
				return
			}
			input.Steps = steps
		}

		fileHeader, err := c.FormFile("voice_note")
		if err == nil && fileHeader != nil {
			file, err := fileHeader.Open()
			if err != nil {
				log.Printf("[ERROR] Failed to open uploaded voice note: %v", err)
				types.SendInternalError(c, "Failed to read voice note")
				return
			}
			data, err := io.ReadAll(file)
			file.Close()
			if err != nil {
				log.Printf("[ERROR] Failed to read uploaded voice note: %v", err)
				types.SendInternalError(c, "Failed to read voice note")
				return
			}

			voiceNote := &records.VoiceNote{
				Filename:    fileHeader.Filename,
				ContentType: fileHeader.Header.Get("Content-Type"),
				Data:        data,
			}
			if durationRaw := c.PostForm("voice_note_duration"); durationRaw != "" {
				duration, err := strconv.ParseFloat(durationRaw, 64)
				if err != nil || duration < 0 {
					types.SendBadRequest(c, "voice_note_duration must be a non-negative number")
					return
				}
				voiceNote.DurationSeconds = duration
			}
			input.VoiceNote = voiceNote
		}

		checkin, err := deps.RecordService.CreateCheckin(c.Request.Context(), types.UserID(c), input)
		if err != nil {
			log.Printf("[ERROR] Failed to create checkin: %v", err)
			types.SendInternalError(c, "Failed to create checkin")
			return
		}

		types.SendCreated(c, checkin)
	}
}
