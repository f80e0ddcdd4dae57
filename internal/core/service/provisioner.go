package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/freelaz/marketplace-api/internal/api/metrics"
	"github.com/freelaz/marketplace-api/internal/core/domain"
	"github.com/freelaz/marketplace-api/internal/core/ports"
)

const (
	defaultProvisionBuffer = 256
	maxProvisionAttempts   = 5
	provisionRetryDelay    = 2 * time.Second
)

// Provisioning write kinds, used as queue task tags and metric labels.
const (
	writeProfile    = "profile"
	writeRole       = "role"
	writeFreelancer = "freelancer"
)

// ProvisionTask is one post-sign-up write to replay. Exactly one of the
// payload fields matching Write is set.
type ProvisionTask struct {
	Write      string
	UserID     string
	Role       domain.AppRole
	Profile    *domain.Profile
	Freelancer *domain.FreelancerDetail
	attempt    int
}

// Provisioner retries failed post-sign-up provisioning writes on a single
// background worker. Retries are bounded; a task that exhausts its attempts
// is logged and dropped — the account stays usable with all derived flags
// false until the user or an operator repairs the rows.
type Provisioner struct {
	tasks       chan ProvisionTask
	profiles    ports.ProfileRepository
	roles       ports.RoleRepository
	freelancers ports.FreelancerRepository
	retryDelay  time.Duration
	log         zerolog.Logger
}

func NewProvisioner(profiles ports.ProfileRepository, roles ports.RoleRepository, freelancers ports.FreelancerRepository, log zerolog.Logger) *Provisioner {
	return &Provisioner{
		tasks:       make(chan ProvisionTask, defaultProvisionBuffer),
		profiles:    profiles,
		roles:       roles,
		freelancers: freelancers,
		retryDelay:  provisionRetryDelay,
		log:         log,
	}
}

// Start launches the worker goroutine. The worker stops when ctx is
// cancelled.
func (p *Provisioner) Start(ctx context.Context) {
	go p.run(ctx)
}

// Enqueue hands a failed write to the retry worker. Non-blocking: if the
// buffer is full the task is dropped and logged rather than stalling the
// sign-up path.
func (p *Provisioner) Enqueue(task ProvisionTask) {
	select {
	case p.tasks <- task:
	default:
		p.log.Error().
			Str("write", task.Write).
			Str("user_id", task.taskUserID()).
			Msg("provisioning retry queue full, task dropped")
	}
}

func (p *Provisioner) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case task, ok := <-p.tasks:
			if !ok {
				return
			}
			p.process(ctx, task)
		}
	}
}

func (p *Provisioner) process(ctx context.Context, task ProvisionTask) {
	task.attempt++
	err := p.apply(ctx, task)
	if err == nil {
		metrics.ProvisioningRetriesTotal.WithLabelValues(task.Write, "ok").Inc()
		p.log.Info().
			Str("write", task.Write).
			Str("user_id", task.taskUserID()).
			Int("attempt", task.attempt).
			Msg("provisioning write repaired")
		return
	}

	if task.attempt >= maxProvisionAttempts {
		metrics.ProvisioningRetriesTotal.WithLabelValues(task.Write, "failed").Inc()
		p.log.Error().Err(err).
			Str("write", task.Write).
			Str("user_id", task.taskUserID()).
			Int("attempt", task.attempt).
			Msg("provisioning write abandoned after max attempts")
		return
	}

	p.log.Warn().Err(err).
		Str("write", task.Write).
		Str("user_id", task.taskUserID()).
		Int("attempt", task.attempt).
		Msg("provisioning retry failed, requeueing")

	// Requeue after a delay without blocking the worker loop.
	time.AfterFunc(p.retryDelay, func() {
		p.Enqueue(task)
	})
}

func (p *Provisioner) apply(ctx context.Context, task ProvisionTask) error {
	switch task.Write {
	case writeProfile:
		return p.profiles.Upsert(ctx, task.Profile)
	case writeRole:
		return p.roles.Assign(ctx, task.UserID, task.Role)
	case writeFreelancer:
		return p.freelancers.Upsert(ctx, task.Freelancer)
	}
	return nil
}

func (t ProvisionTask) taskUserID() string {
	switch {
	case t.UserID != "":
		return t.UserID
	case t.Profile != nil:
		return t.Profile.ID
	case t.Freelancer != nil:
		return t.Freelancer.ID
	}
	return ""
}
