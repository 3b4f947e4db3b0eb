package tool

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/crew-assistants/agent/contract"
)

const (
	ActionCheckAvailability = "check_availability"
	ActionSaveAppointment   = "save_appointment"
)

// Accepted layouts for appointment_time, most specific first.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04Z07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04Z07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02",
}

type AvailabilityResult struct {
	Available bool   `json:"available"`
	Message   string `json:"message"`
}

type SaveResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// AppointmentTool checks and books appointment slots in a record store.
// Availability rejects a taken (time, specialty) pair, saving does not.
type AppointmentTool struct {
	store contractx.RecordStore
}

func NewAppointmentTool(store contractx.RecordStore) *AppointmentTool {
	return &AppointmentTool{store: store}
}

func (a *AppointmentTool) Run(ctx context.Context, args map[string]any) (any, error) {
	action := stringArg(args, "action")
	switch action {
	case ActionCheckAvailability:
		return a.CheckAvailability(ctx, stringArg(args, "appointment_time"), stringArg(args, "specialty")), nil
	case ActionSaveAppointment:
		return a.Save(ctx, stringArg(args, "patient_name"), stringArg(args, "appointment_time"), stringArg(args, "specialty")), nil
	default:
		return SaveResult{Success: false, Message: "Invalid action."}, nil
	}
}

func (a *AppointmentTool) CheckAvailability(ctx context.Context, timestamp, category string) AvailabilityResult {
	if _, err := parseTimestamp(timestamp); err != nil {
		return AvailabilityResult{Available: false, Message: "Invalid date format."}
	}

	taken, err := a.store.Exists(ctx, timestamp, category)
	if err != nil {
		log.Error().Err(err).Str("appointment_time", timestamp).Msg("availability lookup failed")
		return AvailabilityResult{Available: false, Message: fmt.Sprintf("Error checking availability: %v", err)}
	}
	if taken {
		return AvailabilityResult{Available: false, Message: "Slot is already booked."}
	}
	return AvailabilityResult{Available: true, Message: "Slot is available."}
}

func (a *AppointmentTool) Save(ctx context.Context, name, timestamp, category string) SaveResult {
	err := a.store.Append(ctx, contractx.Record{
		Name:      name,
		Timestamp: timestamp,
		Category:  category,
	})
	if err != nil {
		log.Error().Err(err).Str("patient_name", name).Msg("save appointment failed")
		return SaveResult{Success: false, Message: fmt.Sprintf("Error saving appointment: %v", err)}
	}
	log.Info().Str("appointment_time", timestamp).Str("specialty", category).Msg("appointment saved")
	return SaveResult{
		Success: true,
		Message: fmt.Sprintf("Appointment saved for %s at %s with %s.", name, timestamp, category),
	}
}

func parseTimestamp(raw string) (time.Time, error) {
	var lastErr error
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, raw)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func appointmentInfo() *schema.ToolInfo {
	return &schema.ToolInfo{
		Name: ToolAppointmentDB,
		Desc: "Check appointment availability or save an appointment in the hospital database.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"action": {
				Type:     schema.String,
				Desc:     "Action to perform",
				Enum:     []string{ActionCheckAvailability, ActionSaveAppointment},
				Required: true,
			},
			"patient_name":     {Type: schema.String, Desc: "Name of the patient"},
			"appointment_time": {Type: schema.String, Desc: "Appointment time in ISO format, e.g. 2025-06-23T10:00:00-04:00"},
			"specialty":        {Type: schema.String, Desc: "Doctor specialty, e.g. Cardiology"},
		}),
	}
}
