package domain

import "time"

// Profile is the mutable application-level record keyed by User.ID. Role is
// kept as a free string at the storage boundary (legacy rows may carry
// values outside the ProfileRole enum); DeriveAccess treats unknown values
// as contributing no flags.
type Profile struct {
	ID                   string    `json:"id" db:"id"`
	FullName             string    `json:"full_name" db:"full_name"`
	AvatarURL            string    `json:"avatar_url" db:"avatar_url"`
	Bio                  string    `json:"bio" db:"bio"`
	Role                 string    `json:"role" db:"role"`
	Phone                string    `json:"phone" db:"phone"`
	CPF                  string    `json:"cpf" db:"cpf"`
	BirthDate            string    `json:"birth_date" db:"birth_date"`
	PlanType             string    `json:"plan_type" db:"plan_type"`
	IsOnboardingComplete bool      `json:"is_onboarding_complete" db:"is_onboarding_complete"`
	City                 string    `json:"city" db:"city"`
	State                string    `json:"state" db:"state"`
	CreatedAt            time.Time `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time `json:"updated_at" db:"updated_at"`
}

// Availability states for a freelancer.
const (
	AvailabilityAvailable   = "AVAILABLE"
	AvailabilityBusy        = "BUSY"
	AvailabilityUnavailable = "UNAVAILABLE"
)

// FreelancerDetail is the freelancer-specific row created alongside the
// profile when a user signs up with the freelancer role.
type FreelancerDetail struct {
	ID                 string    `json:"id" db:"id"`
	AvailabilityStatus string    `json:"availability_status" db:"availability_status"`
	HourlyRateCents    int64     `json:"hourly_rate_cents" db:"hourly_rate_cents"`
	Headline           string    `json:"headline" db:"headline"`
	CreatedAt          time.Time `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time `json:"updated_at" db:"updated_at"`
}
