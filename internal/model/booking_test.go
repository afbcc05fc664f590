package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBookingStatusCanTransition(t *testing.T) {
	tests := []struct {
		from BookingStatus
		to   BookingStatus
		want bool
	}{
		{BookingPending, BookingAccepted, true},
		{BookingPending, BookingRejected, true},
		// Cancellation only happens along the agreement path, so a
		// pending booking can never jump straight to cancelled.
		{BookingPending, BookingCancelled, false},
		{BookingPending, BookingActive, false},
		{BookingPending, BookingDurationPending, false},
		{BookingAccepted, BookingAgreementPending, true},
		{BookingAgreementPending, BookingDurationPending, true},
		{BookingAgreementPending, BookingActive, true},
		{BookingDurationPending, BookingDurationApproved, true},
		{BookingDurationPending, BookingDurationRejected, true},
		{BookingDurationApproved, BookingActive, true},
		{BookingPaymentPending, BookingActive, true},
		{BookingPaymentPending, BookingRejected, false},
		{BookingActive, BookingCompleted, true},
		{BookingActive, BookingCancelled, true},
		{BookingActive, BookingPending, false},
		{BookingRejected, BookingPending, false},
		{BookingCancelled, BookingActive, false},
		{BookingCompleted, BookingActive, false},
	}
	for _, tt := range tests {
		assert.Equalf(t, tt.want, tt.from.CanTransition(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestBookingStatusTerminal(t *testing.T) {
	terminal := []BookingStatus{BookingRejected, BookingCompleted, BookingCancelled}
	for _, s := range terminal {
		assert.Truef(t, s.Terminal(), "%s should be terminal", s)
	}
	live := []BookingStatus{
		BookingPending, BookingAccepted, BookingAgreementPending, BookingDurationPending,
		BookingDurationApproved, BookingDurationRejected, BookingPaymentPending, BookingActive,
	}
	for _, s := range live {
		assert.Falsef(t, s.Terminal(), "%s should not be terminal", s)
	}
}

func TestBookingStatusValid(t *testing.T) {
	assert.True(t, BookingPending.Valid())
	assert.True(t, BookingPaymentPending.Valid())
	assert.False(t, BookingStatus("waiting").Valid())
	assert.False(t, BookingStatus("").Valid())
}

// Every status named in the transition table, on either side of an
// edge, must be a member of the enum.
func TestBookingTransitionTableClosed(t *testing.T) {
	for from, tos := range bookingTransitions {
		assert.Truef(t, from.Valid(), "unknown source status %q", from)
		for _, to := range tos {
			assert.Truef(t, to.Valid(), "unknown target status %q in %s transitions", to, from)
		}
	}
}
