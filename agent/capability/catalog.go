// Package capability holds the closed catalog of operations the agent may
// invoke, their declared argument schemas, and the gateway that executes them.
// The Decision Engine is bound to exactly these schemas; any other name is
// rejected before dispatch.
package capability

import (
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"

	contractx "github.com/clinicdesk/scheduling-agent/agent/contract"
)

type capabilitySpec struct {
	name     contractx.Name
	info     *schema.ToolInfo
	required []string
}

var catalog = []capabilitySpec{
	{
		name:     contractx.CapPatientLookup,
		required: []string{"full_name", "dob"},
		info: &schema.ToolInfo{
			Name: string(contractx.CapPatientLookup),
			Desc: "Look up a patient by full name and date of birth (YYYY-MM-DD) in the EMR. Returns whether they are a new or returning patient, with details when found.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"full_name": {Type: schema.String, Desc: "Patient's full name", Required: true},
				"dob":       {Type: schema.String, Desc: "Date of birth, YYYY-MM-DD", Required: true},
			}),
		},
	},
	{
		name:     contractx.CapInsuranceCollect,
		required: []string{"carrier"},
		info: &schema.ToolInfo{
			Name: string(contractx.CapInsuranceCollect),
			Desc: "Record the insurance details the patient provided.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"carrier":   {Type: schema.String, Desc: "Insurance carrier name", Required: true},
				"member_id": {Type: schema.String, Desc: "Member or policy id"},
			}),
		},
	},
	{
		name: contractx.CapInsuranceSkip,
		info: &schema.ToolInfo{
			Name:        string(contractx.CapInsuranceSkip),
			Desc:        "Record that the patient declined to provide insurance details.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{}),
		},
	},
	{
		name: contractx.CapDoctorList,
		info: &schema.ToolInfo{
			Name:        string(contractx.CapDoctorList),
			Desc:        "List the clinic's doctors with their specialties.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{}),
		},
	},
	{
		name:     contractx.CapSlotsList,
		required: []string{"doctor_name"},
		info: &schema.ToolInfo{
			Name: string(contractx.CapSlotsList),
			Desc: "Get available appointment slots for a doctor. New patients get 60-minute slots, returning patients 30-minute slots.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"doctor_name":    {Type: schema.String, Desc: "Doctor to check", Required: true},
				"is_new_patient": {Type: schema.Boolean, Desc: "Whether the patient is new", Required: true},
			}),
		},
	},
	{
		name:     contractx.CapAppointmentBook,
		required: []string{"patient_name", "doctor_name", "appointment_time"},
		info: &schema.ToolInfo{
			Name: string(contractx.CapAppointmentBook),
			Desc: "Book the appointment for the patient at the confirmed time.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"patient_name":     {Type: schema.String, Desc: "Patient's full name", Required: true},
				"doctor_name":      {Type: schema.String, Desc: "Doctor's name", Required: true},
				"appointment_time": {Type: schema.String, Desc: "Confirmed slot, exactly as offered", Required: true},
			}),
		},
	},
	{
		name:     contractx.CapIntakeForms,
		required: []string{"patient_name", "doctor_name", "appointment_time"},
		info: &schema.ToolInfo{
			Name: string(contractx.CapIntakeForms),
			Desc: "Send the booking confirmation email. New patients additionally receive the intake forms to complete before the visit.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"patient_name":     {Type: schema.String, Desc: "Patient's full name", Required: true},
				"doctor_name":      {Type: schema.String, Desc: "Doctor's name", Required: true},
				"appointment_time": {Type: schema.String, Desc: "Booked slot", Required: true},
				"is_new_patient":   {Type: schema.Boolean, Desc: "Whether the patient is new", Required: true},
				"email":            {Type: schema.String, Desc: "Patient's email address"},
			}),
		},
	},
	{
		name:     contractx.CapReminders,
		required: []string{"patient_name", "appointment_time"},
		info: &schema.ToolInfo{
			Name: string(contractx.CapReminders),
			Desc: "Schedule appointment reminders 24 hours and 3 hours before the visit.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"patient_name":     {Type: schema.String, Desc: "Patient's full name", Required: true},
				"appointment_time": {Type: schema.String, Desc: "Booked slot", Required: true},
			}),
		},
	},
}

// ToolInfos returns the declared schemas for binding to the Decision Engine's
// model.
func ToolInfos() []*schema.ToolInfo {
	infos := make([]*schema.ToolInfo, 0, len(catalog))
	for _, c := range catalog {
		infos = append(infos, c.info)
	}
	return infos
}

func Known(name contractx.Name) bool {
	for _, c := range catalog {
		if c.name == name {
			return true
		}
	}
	return false
}

// ValidateRequest enforces the catalog boundary: the name must be declared and
// every required argument present and non-empty.
func ValidateRequest(req contractx.Request) error {
	var spec *capabilitySpec
	for i := range catalog {
		if catalog[i].name == req.Name {
			spec = &catalog[i]
			break
		}
	}
	if spec == nil {
		return fmt.Errorf("%w: %s", contractx.ErrUnknownCapability, req.Name)
	}

	for _, key := range spec.required {
		val, ok := req.Args[key]
		if !ok {
			return fmt.Errorf("%w: %s requires %q", contractx.ErrMissingArgument, req.Name, key)
		}
		if s, isString := val.(string); isString && strings.TrimSpace(s) == "" {
			return fmt.Errorf("%w: %s requires non-empty %q", contractx.ErrMissingArgument, req.Name, key)
		}
	}
	return nil
}
