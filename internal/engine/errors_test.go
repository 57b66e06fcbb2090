package engine_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/daftar/internal/action"
	"github.com/MrJamesThe3rd/daftar/internal/engine"
	"github.com/MrJamesThe3rd/daftar/internal/entity"
)

func TestClassify(t *testing.T) {
	type testCase struct {
		name string
		err  error
		want engine.Kind
	}

	tests := []testCase{
		{name: "Busy", err: engine.ErrBusy, want: engine.KindBusy},
		{name: "Duplicate", err: fmt.Errorf("creating person: %w", entity.ErrDuplicate), want: engine.KindDuplicate},
		{name: "NotFound", err: fmt.Errorf("x: %w", entity.ErrNotFound), want: engine.KindNotFound},
		{name: "Dependents", err: entity.ErrHasDependents, want: engine.KindReferential},
		{name: "AlreadyReturned", err: entity.ErrAlreadyReturned, want: engine.KindValidation},
		{name: "Unavailable", err: fmt.Errorf("query: %w", entity.ErrUnavailable), want: engine.KindStore},
		{name: "Deadline", err: context.DeadlineExceeded, want: engine.KindStore},
		{name: "UnknownAction", err: action.ErrUnknownAction, want: engine.KindValidation},
		{name: "Arguments", err: &action.ArgumentError{Action: action.NameRecordSale}, want: engine.KindValidation},
		{name: "Stale", err: engine.ErrStaleToken, want: engine.KindValidation},
		{name: "Other", err: errors.New("boom"), want: engine.KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := engine.Classify(tt.err)
			assert.Equal(t, tt.want, got.Kind)
			assert.NotEmpty(t, got.Message)
			assert.ErrorIs(t, got, tt.err)
		})
	}

	assert.Nil(t, engine.Classify(nil))
}

func TestClassify_KeepsEngineErrors(t *testing.T) {
	orig := &engine.Error{Kind: engine.KindDuplicate, Message: "taken"}

	got := engine.Classify(fmt.Errorf("wrapped: %w", orig))
	assert.Same(t, orig, got)
}
