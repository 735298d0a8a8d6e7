package internaldefs

import (
	pressauth "github.com/pressassist/pressauth"
)

// CounterDef maps a core metric ID to its exposition name and help text.
type CounterDef struct {
	ID   pressauth.MetricID
	Name string
	Help string
}

// HistogramDef maps a histogram metric ID to its exposition name and help
// text.
type HistogramDef struct {
	ID   pressauth.MetricID
	Name string
	Help string
}

// CounterDefs lists every exported counter in exposition order.
var CounterDefs = []CounterDef{
	{ID: pressauth.MetricLoginSuccess, Name: "pressauth_login_success_total", Help: "Successful login attempts."},
	{ID: pressauth.MetricLoginFailure, Name: "pressauth_login_failure_total", Help: "Failed login attempts."},
	{ID: pressauth.MetricLoginRateLimited, Name: "pressauth_login_rate_limited_total", Help: "Logins refused by the per-IP rate limit."},
	{ID: pressauth.MetricSessionCreated, Name: "pressauth_session_created_total", Help: "Created sessions."},
	{ID: pressauth.MetricSessionInvalidated, Name: "pressauth_session_invalidated_total", Help: "Individually invalidated sessions."},
	{ID: pressauth.MetricLogout, Name: "pressauth_logout_total", Help: "Single-session logout operations."},
	{ID: pressauth.MetricLogoutAll, Name: "pressauth_logout_all_total", Help: "Per-user bulk session invalidations."},
	{ID: pressauth.MetricCSRFFailure, Name: "pressauth_csrf_failure_total", Help: "CSRF token mismatches."},
	{ID: pressauth.MetricPermissionDenied, Name: "pressauth_permission_denied_total", Help: "Authorization refusals."},
	{ID: pressauth.MetricPasswordChangeSuccess, Name: "pressauth_password_change_success_total", Help: "Successful password changes."},
	{ID: pressauth.MetricPasswordChangeInvalidOld, Name: "pressauth_password_change_invalid_old_total", Help: "Password change attempts with an invalid current password."},
	{ID: pressauth.MetricPasswordChangeReuseRejected, Name: "pressauth_password_change_reuse_rejected_total", Help: "Password change attempts rejected for reuse."},
	{ID: pressauth.MetricPasswordResetRequest, Name: "pressauth_password_reset_request_total", Help: "Issued password reset tokens."},
	{ID: pressauth.MetricPasswordResetConfirmSuccess, Name: "pressauth_password_reset_confirm_success_total", Help: "Successful password reset confirmations."},
	{ID: pressauth.MetricPasswordResetConfirmFailure, Name: "pressauth_password_reset_confirm_failure_total", Help: "Failed password reset confirmations."},
}

// HistogramDefs lists every exported histogram.
var HistogramDefs = []HistogramDef{
	{ID: pressauth.MetricVerifyLatency, Name: "pressauth_verify_latency_seconds", Help: "Session verification latency histogram."},
}

// HistogramBounds are the upper bounds of the core latency buckets, in
// seconds.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// NormalizeBuckets pads or truncates a raw bucket slice to the fixed core
// width.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts into the cumulative form the
// Prometheus exposition requires.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
