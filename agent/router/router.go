// Package router implements the deterministic control layer of the workflow.
// After each capability result it decides which node runs next: back to the
// Decision Engine, a fixed scripted prompt, a follow-up capability invocation,
// or end of turn. Free-text interpretation never happens here; that belongs to
// the intent package.
package router

import (
	contractx "github.com/clinicdesk/scheduling-agent/agent/contract"
	statex "github.com/clinicdesk/scheduling-agent/agent/state"
)

type Phase string

const (
	PhaseAwaitingDecision Phase = "awaiting_decision"
	PhaseAwaitingResult   Phase = "awaiting_capability_result"
	PhaseScriptedPrompt   Phase = "scripted_prompt"
	PhaseTerminal         Phase = "terminal"
)

type PromptKind string

const (
	PromptAskInsurance          PromptKind = "ask_insurance"
	PromptConfirmOrChooseDoctor PromptKind = "confirm_or_choose_doctor"
	PromptPresentSlots          PromptKind = "present_slots"
	PromptFinalConfirmation     PromptKind = "final_confirmation"
)

type DirectiveKind string

const (
	DirectiveDecide    DirectiveKind = "decide"
	DirectiveInvoke    DirectiveKind = "invoke"
	DirectivePrompt    DirectiveKind = "prompt"
	DirectiveTerminate DirectiveKind = "terminate"
)

// Directive is one routing decision. Invoke carries a fully-argued capability
// request built from state, without a correlation id; the dispatcher assigns
// one on execution.
type Directive struct {
	Kind   DirectiveKind
	Prompt PromptKind
	Invoke contractx.Request
}

func decide() Directive {
	return Directive{Kind: DirectiveDecide}
}

func prompt(kind PromptKind) Directive {
	return Directive{Kind: DirectivePrompt, Prompt: kind}
}

func invoke(name contractx.Name, args map[string]any) Directive {
	return Directive{Kind: DirectiveInvoke, Invoke: contractx.Request{Name: name, Args: args}}
}

func terminate() Directive {
	return Directive{Kind: DirectiveTerminate}
}

// Next inspects the most recent transcript entry and the accumulated state
// and returns the next node to run. Unmatched shapes terminate the turn
// rather than crash.
func Next(st *statex.ConversationState) Directive {
	if st == nil {
		return terminate()
	}

	last := st.LastMessage()
	if last == nil {
		return decide()
	}

	switch last.Role {
	case statex.RoleUser:
		return decide()
	case statex.RoleCapability:
		if last.Failed {
			return terminate()
		}
		return afterResult(last.Capability, st)
	default:
		return terminate()
	}
}

func afterResult(cap contractx.Name, st *statex.ConversationState) Directive {
	switch cap {
	case contractx.CapPatientLookup:
		switch st.PatientStatus {
		case statex.PatientNew:
			return prompt(PromptAskInsurance)
		case statex.PatientReturning:
			return prompt(PromptConfirmOrChooseDoctor)
		default:
			// Lookup succeeded but extraction left the status unknown; let
			// the Decision Engine re-drive the lookup next turn.
			return terminate()
		}

	case contractx.CapInsuranceCollect, contractx.CapInsuranceSkip:
		if st.DoctorName == "" {
			return invoke(contractx.CapDoctorList, nil)
		}
		return invoke(contractx.CapSlotsList, map[string]any{
			"doctor_name":    st.DoctorName,
			"is_new_patient": st.PatientStatus == statex.PatientNew,
		})

	case contractx.CapDoctorList:
		return prompt(PromptConfirmOrChooseDoctor)

	case contractx.CapSlotsList:
		return prompt(PromptPresentSlots)

	case contractx.CapAppointmentBook:
		return decide()

	case contractx.CapIntakeForms, contractx.CapReminders:
		return prompt(PromptFinalConfirmation)

	default:
		return terminate()
	}
}
