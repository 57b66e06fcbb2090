package commands

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/daftar/internal/action"
	"github.com/MrJamesThe3rd/daftar/internal/engine"
	"github.com/MrJamesThe3rd/daftar/internal/entity"
)

type personResponse struct {
	ID     uuid.UUID         `json:"id"`
	Type   entity.PersonType `json:"type"`
	Name   string            `json:"name"`
	Phone  string            `json:"phone,omitempty"`
	Region string            `json:"region,omitempty"`
}

type pendingResponse struct {
	Token       uuid.UUID        `json:"token"`
	Source      action.Source    `json:"source"`
	Action      action.Name      `json:"action"`
	Description string           `json:"description"`
	Args        action.Action    `json:"args"`
	Person      *personResponse  `json:"person,omitempty"`
	Warning     string           `json:"warning,omitempty"`
	Candidates  []personResponse `json:"candidates,omitempty"`
	SuggestedID *uuid.UUID       `json:"suggested_id,omitempty"`
	Warnings    []warningDTO     `json:"candidate_warnings,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}

type warningDTO struct {
	PersonID uuid.UUID `json:"person_id"`
	Message  string    `json:"message"`
}

type errorDTO struct {
	Kind    engine.Kind `json:"kind"`
	Message string      `json:"message"`
}

type statusResponse struct {
	State     engine.State     `json:"state"`
	Executing bool             `json:"executing"`
	Pending   *pendingResponse `json:"pending,omitempty"`
	Error     *errorDTO        `json:"error,omitempty"`
}

type outcomeResponse struct {
	State       engine.State     `json:"state"`
	Result      *engine.Result   `json:"result,omitempty"`
	Warning     string           `json:"warning,omitempty"`
	Candidates  []personResponse `json:"candidates,omitempty"`
	SuggestedID *uuid.UUID       `json:"suggested_id,omitempty"`
	Warnings    []warningDTO     `json:"candidate_warnings,omitempty"`
}

func toPerson(p entity.Person) personResponse {
	return personResponse{
		ID:     p.ID,
		Type:   p.Type,
		Name:   p.Name,
		Phone:  p.Phone,
		Region: p.Region,
	}
}

func toPeople(people []entity.Person) []personResponse {
	if len(people) == 0 {
		return nil
	}

	resp := make([]personResponse, len(people))
	for i, p := range people {
		resp[i] = toPerson(p)
	}

	return resp
}

func toPending(p *engine.Pending) *pendingResponse {
	if p == nil {
		return nil
	}

	resp := &pendingResponse{
		Token:       p.Token,
		Source:      p.Source,
		Action:      p.Action.Kind(),
		Description: p.Action.Describe(),
		Args:        p.Action,
		Candidates:  toPeople(p.Candidates),
		SuggestedID: personID(p.Suggested),
		Warnings:    toWarnings(p.CandidateWarnings),
		CreatedAt:   p.CreatedAt,
	}

	if p.Person != nil {
		resp.Person = new(toPerson(*p.Person))
	}

	if p.Warning != nil {
		resp.Warning = p.Warning.String()
	}

	return resp
}

func toStatus(s engine.Status) statusResponse {
	resp := statusResponse{
		State:     s.State,
		Executing: s.Executing,
		Pending:   toPending(s.Pending),
	}

	if s.Err != nil {
		resp.Error = &errorDTO{Kind: s.Err.Kind, Message: s.Err.Message}
	}

	return resp
}

func toOutcome(o engine.Outcome) outcomeResponse {
	resp := outcomeResponse{
		State:       o.State,
		Result:      o.Result,
		Candidates:  toPeople(o.Candidates),
		SuggestedID: personID(o.Suggested),
		Warnings:    toWarnings(o.CandidateWarnings),
	}

	if o.Warning != nil {
		resp.Warning = o.Warning.String()
	}

	return resp
}

func personID(p *entity.Person) *uuid.UUID {
	if p == nil {
		return nil
	}

	return new(p.ID)
}

func toWarnings(warnings []engine.DebtWarning) []warningDTO {
	if len(warnings) == 0 {
		return nil
	}

	resp := make([]warningDTO, len(warnings))
	for i, w := range warnings {
		resp[i] = warningDTO{PersonID: w.PersonID, Message: w.String()}
	}

	return resp
}
