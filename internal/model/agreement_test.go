package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAgreementStatusCanTransition(t *testing.T) {
	tests := []struct {
		from AgreementStatus
		to   AgreementStatus
		want bool
	}{
		{AgreementPending, AgreementActive, true},
		{AgreementPending, AgreementTerminated, true},
		{AgreementPending, AgreementSuspended, false},
		{AgreementActive, AgreementTerminated, true},
		{AgreementActive, AgreementSuspended, true},
		{AgreementActive, AgreementPending, false},
		{AgreementSuspended, AgreementActive, false},
		{AgreementSuspended, AgreementTerminated, false},
		{AgreementTerminated, AgreementActive, false},
	}
	for _, tt := range tests {
		assert.Equalf(t, tt.want, tt.from.CanTransition(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestAgreementStatusValid(t *testing.T) {
	for _, s := range []AgreementStatus{AgreementPending, AgreementActive, AgreementSuspended, AgreementTerminated} {
		assert.Truef(t, s.Valid(), "%s should be valid", s)
	}
	assert.False(t, AgreementStatus("expired").Valid())
}
