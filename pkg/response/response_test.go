package response

import (
	"fmt"
	"net/http"
	"testing"

	"PartnerGo/pkg/errors"
)

func TestErrorToHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{errors.CaptchaRateLimited, http.StatusTooManyRequests},
		{errors.VerificationSliderRequired, http.StatusTooManyRequests},
		{errors.TooManyRequests, http.StatusTooManyRequests},
		{errors.VerificationCodeExpired, http.StatusBadRequest},
		{errors.VerificationCodeInvalid, http.StatusBadRequest},
		{errors.PhoneInvalid, http.StatusBadRequest},
		{errors.OnboardingStepInvalid, http.StatusBadRequest},
		{errors.OnboardingRoleInvalid, http.StatusBadRequest},
		{errors.OnboardingModeInvalid, http.StatusBadRequest},
		{errors.Unauthorized, http.StatusUnauthorized},
		{errors.InvalidUserID, http.StatusUnauthorized},
		{errors.OnboardingSessionNotFound, http.StatusNotFound},
		{errors.PhoneAlreadyRegistered, http.StatusConflict},
		{errors.OnboardingBusy, http.StatusConflict},
		{errors.OnboardingFinalized, http.StatusConflict},
		{errors.OnboardingCancelled, http.StatusConflict},
		{errors.OnboardingRoleAlreadySet, http.StatusConflict},
		{fmt.Errorf("database connection refused"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			if got := errorToHTTPStatus(tt.err); got != tt.want {
				t.Errorf("errorToHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestErrorLookup(t *testing.T) {
	def := errors.Get("ONBOARDING_BUSY")
	if def != errors.OnboardingBusy {
		t.Errorf("Get returned %+v, want %+v", def, errors.OnboardingBusy)
	}

	unknown := errors.Get("NO_SUCH_CODE")
	if unknown.Code != "NO_SUCH_CODE" || unknown.Message != "Unexpected error" {
		t.Errorf("Get for unknown code returned %+v", unknown)
	}
}
