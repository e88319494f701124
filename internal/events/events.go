package events

import "github.com/discope/camps/internal/models"

// OnWaitlistRelease is called after an enrollment successfully moves
// from the waitlist back to pending. services will call this if it's set.
var OnWaitlistRelease func(enr models.Enrollment)
