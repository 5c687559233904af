// Package collection owns the signed-in user's canonical project list.
//
// Mutations are confirmed before they are applied: the list only changes after the API
// returns the server's version of a record. Every outcome is reported through the
// notification queue; API failures never leave the list partially modified.
package collection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"pulse-cli/internal/metrics"
	"pulse-cli/internal/model"
	"pulse-cli/internal/notify"
)

var (
	// ErrValidation marks input rejected locally, before any network call.
	ErrValidation = errors.New("invalid project input")
	// ErrBusy is returned when another mutation of the same key or record is in flight.
	ErrBusy = errors.New("operation already in progress")
	// ErrNotFound is returned when the id is not in the canonical list.
	ErrNotFound = errors.New("project not found")
)

// Repository is the remote project API.
type Repository interface {
	ListProjects(ctx context.Context) ([]model.Project, error)
	CreateProject(ctx context.Context, fields model.ProjectFields) (model.Project, error)
	UpdateProject(ctx context.Context, id model.ID, fields model.ProjectFields) (model.Project, error)
	DeleteProject(ctx context.Context, id model.ID) error
}

// AuthFailureHandler tears the session down on authentication errors.
type AuthFailureHandler interface {
	HandleAuthFailure(ctx context.Context, err error) bool
}

// ConfirmFunc asks the user to approve deleting p.
type ConfirmFunc func(p model.Project) bool

type Options struct {
	Repo          Repository
	Notifications *notify.Queue
	Auth          AuthFailureHandler
	Metrics       *metrics.Metrics
	Logger        *slog.Logger
}

type Controller struct {
	repo  Repository
	notes *notify.Queue
	auth  AuthFailureHandler
	m     *metrics.Metrics
	log   *slog.Logger
	now   func() time.Time

	mu       sync.Mutex
	projects []model.Project
	loaded   bool
	loadingN int
	ops      map[string]OpState

	// rev counts local commits. touched records the rev of the last local commit per id so a
	// list fetched before that commit cannot overwrite it.
	rev     uint64
	touched map[model.ID]uint64
	// loadSeq orders Load calls; a response older than the last applied one is dropped.
	loadSeq     uint64
	appliedLoad uint64
	// epoch is bumped by Reset; calls that began in an earlier epoch commit nothing.
	epoch uint64
}

func New(opts Options) *Controller {
	notes := opts.Notifications
	if notes == nil {
		notes = notify.New(0, opts.Metrics)
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Controller{
		repo:    opts.Repo,
		notes:   notes,
		auth:    opts.Auth,
		m:       opts.Metrics,
		log:     log,
		now:     time.Now,
		ops:     map[string]OpState{},
		touched: map[model.ID]uint64{},
	}
}

func (c *Controller) Notifications() *notify.Queue { return c.notes }

// Projects returns a copy of the canonical list.
func (c *Controller) Projects() []model.Project {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.Project(nil), c.projects...)
}

func (c *Controller) Project(id model.ID) (model.Project, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexLocked(id)
	if i < 0 {
		return model.Project{}, false
	}
	return c.projects[i], true
}

func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadingN > 0
}

// Loaded reports whether at least one Load has succeeded.
func (c *Controller) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded
}

// Ops returns a snapshot of every operation key seen so far.
func (c *Controller) Ops() map[string]OpState {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]OpState, len(c.ops))
	for k, v := range c.ops {
		out[k] = v
	}
	return out
}

func (c *Controller) Op(key string) OpState {
	c.mu.Lock()
	defer c.mu.Unlock()
	if st, ok := c.ops[key]; ok {
		return st
	}
	return OpState{Key: key, Phase: PhaseIdle}
}

func (c *Controller) Busy(key string) bool {
	return c.Op(key).Phase == PhasePending
}

// RecordBusy reports whether any mutation of id is in flight.
func (c *Controller) RecordBusy(id model.ID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.recordBusyLocked(id)
}

func (c *Controller) recordBusyLocked(id model.ID) bool {
	for _, k := range recordKeys(id) {
		if c.ops[k].Phase == PhasePending {
			return true
		}
	}
	return false
}

// Reset forgets everything (sign-out). Loads and mutations still in flight are discarded
// when they return.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.projects = nil
	c.loaded = false
	c.ops = map[string]OpState{}
	c.touched = map[model.ID]uint64{}
	c.loadSeq++
	c.appliedLoad = c.loadSeq
	c.epoch++
}

// Load replaces the canonical list with the server's. On failure the previous list is kept.
func (c *Controller) Load(ctx context.Context) error {
	c.mu.Lock()
	c.loadingN++
	c.loadSeq++
	seq := c.loadSeq
	startRev := c.rev
	c.mu.Unlock()

	list, err := c.repo.ListProjects(ctx)

	c.mu.Lock()
	c.loadingN--
	if err != nil {
		stale := seq < c.appliedLoad
		c.forgetTouchedLocked()
		c.mu.Unlock()
		if stale {
			c.m.ObserveOp("load", "stale")
			return err
		}
		c.fail(ctx, "load", err, loadFailureMessage(err))
		return err
	}
	if applied := c.appliedLoad; seq < applied {
		c.forgetTouchedLocked()
		c.mu.Unlock()
		c.log.Debug("dropping stale project list", "seq", seq, "applied", applied)
		c.m.ObserveOp("load", "stale")
		return nil
	}
	c.appliedLoad = seq
	c.projects = c.mergeLocked(list, startRev)
	c.loaded = true
	n := len(c.projects)
	c.forgetTouchedLocked()
	c.mu.Unlock()

	c.log.Debug("projects loaded", "count", n)
	c.m.ObserveOp("load", "committed")
	return nil
}

// mergeLocked keeps local commits made after startRev over the fetched list.
func (c *Controller) mergeLocked(fetched []model.Project, startRev uint64) []model.Project {
	out := make([]model.Project, 0, len(fetched))
	seen := make(map[model.ID]bool, len(fetched))
	for _, p := range fetched {
		if seen[p.ID] {
			continue
		}
		if c.touched[p.ID] > startRev {
			i := c.indexLocked(p.ID)
			if i < 0 {
				// Deleted locally while the list was in flight.
				continue
			}
			p = c.projects[i]
		}
		seen[p.ID] = true
		out = append(out, p)
	}
	for _, p := range c.projects {
		if !seen[p.ID] && c.touched[p.ID] > startRev {
			seen[p.ID] = true
			out = append(out, p)
		}
	}
	return out
}

func (c *Controller) forgetTouchedLocked() {
	if c.loadingN == 0 && len(c.touched) > 0 {
		c.touched = map[model.ID]uint64{}
	}
}

// Create validates fields locally, then creates the project and appends the server record.
func (c *Controller) Create(ctx context.Context, fields model.ProjectFields) (model.Project, error) {
	if fields.Name == nil || strings.TrimSpace(*fields.Name) == "" {
		return model.Project{}, fmt.Errorf("%w: name must not be blank", ErrValidation)
	}
	if fields.Status != nil && !fields.Status.Valid() {
		return model.Project{}, fmt.Errorf("%w: unknown status %q", ErrValidation, *fields.Status)
	}
	fields.Name = model.StrPtr(strings.TrimSpace(*fields.Name))

	epoch, err := c.begin(KeyCreate, "")
	if err != nil {
		return model.Project{}, err
	}
	p, err := c.repo.CreateProject(ctx, fields)
	if err != nil {
		msg := failureMessage(err, msgCreateFailed)
		if c.finish(KeyCreate, epoch, err, msg) {
			c.fail(ctx, "create", err, msg)
		}
		return model.Project{}, err
	}

	c.mu.Lock()
	if c.epoch != epoch {
		c.mu.Unlock()
		c.discarded("create")
		return p, nil
	}
	if i := c.indexLocked(p.ID); i >= 0 {
		c.projects[i] = p
	} else {
		c.projects = append(c.projects, p)
	}
	c.touchLocked(p.ID)
	c.mu.Unlock()

	c.finish(KeyCreate, epoch, nil, "")
	c.succeed("create", msgCreated)
	return p, nil
}

// ChangeStatus moves a project to status. Unchanged status is a no-op: no call, no
// pending flag and no notification.
func (c *Controller) ChangeStatus(ctx context.Context, id model.ID, status model.Status) error {
	if !status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}
	cur, ok := c.Project(id)
	if !ok {
		c.notFound("status")
		return ErrNotFound
	}
	if cur.Status == status {
		c.m.ObserveOp("status", "noop")
		return nil
	}
	_, err := c.mutate(ctx, "status", StatusKey(id), id, model.ProjectFields{Status: model.StatusPtr(status)}, msgStatusUpdated)
	return err
}

// Update applies a partial change (name, description and/or status).
func (c *Controller) Update(ctx context.Context, id model.ID, fields model.ProjectFields) (model.Project, error) {
	if fields.Empty() {
		return model.Project{}, fmt.Errorf("%w: nothing to update", ErrValidation)
	}
	if fields.Name != nil {
		if strings.TrimSpace(*fields.Name) == "" {
			return model.Project{}, fmt.Errorf("%w: name must not be blank", ErrValidation)
		}
		fields.Name = model.StrPtr(strings.TrimSpace(*fields.Name))
	}
	if fields.Status != nil && !fields.Status.Valid() {
		return model.Project{}, fmt.Errorf("%w: unknown status %q", ErrValidation, *fields.Status)
	}
	if _, ok := c.Project(id); !ok {
		c.notFound("update")
		return model.Project{}, ErrNotFound
	}
	return c.mutate(ctx, "update", UpdateKey(id), id, fields, msgUpdated)
}

func (c *Controller) mutate(ctx context.Context, op, key string, id model.ID, fields model.ProjectFields, okMsg string) (model.Project, error) {
	epoch, err := c.begin(key, id)
	if err != nil {
		return model.Project{}, err
	}
	p, err := c.repo.UpdateProject(ctx, id, fields)
	if err == nil && p.ID != id {
		err = fmt.Errorf("%s: server returned project %q for %q", op, p.ID, id)
	}
	if err != nil {
		msg := failureMessage(err, msgUpdateFailed)
		if c.finish(key, epoch, err, msg) {
			c.fail(ctx, op, err, msg)
		}
		return model.Project{}, err
	}

	c.mu.Lock()
	if c.epoch != epoch {
		c.mu.Unlock()
		c.discarded(op)
		return p, nil
	}
	if i := c.indexLocked(id); i >= 0 {
		c.projects[i] = p
		c.touchLocked(id)
	}
	c.mu.Unlock()

	c.finish(key, epoch, nil, "")
	c.succeed(op, okMsg)
	return p, nil
}

// Delete asks confirm before removing the project. It reports whether the project was
// deleted; a declined confirmation returns (false, nil) without a network call.
func (c *Controller) Delete(ctx context.Context, id model.ID, confirm ConfirmFunc) (bool, error) {
	p, ok := c.Project(id)
	if !ok {
		c.notFound("delete")
		return false, ErrNotFound
	}
	if c.RecordBusy(id) {
		c.m.ObserveOp("delete", "busy")
		return false, ErrBusy
	}
	if confirm == nil || !confirm(p) {
		c.m.ObserveOp("delete", "cancelled")
		return false, nil
	}

	key := DeleteKey(id)
	epoch, err := c.begin(key, id)
	if err != nil {
		return false, err
	}
	if err := c.repo.DeleteProject(ctx, id); err != nil {
		msg := failureMessage(err, msgDeleteFailed)
		if c.finish(key, epoch, err, msg) {
			c.fail(ctx, "delete", err, msg)
		}
		return false, err
	}

	c.mu.Lock()
	if c.epoch != epoch {
		c.mu.Unlock()
		c.discarded("delete")
		return true, nil
	}
	if i := c.indexLocked(id); i >= 0 {
		c.projects = append(c.projects[:i:i], c.projects[i+1:]...)
	}
	c.touchLocked(id)
	c.mu.Unlock()

	c.finish(key, epoch, nil, "")
	c.succeed("delete", msgDeleted)
	return true, nil
}

// begin marks key pending and returns the current epoch. With a record id, any other
// pending mutation of that record also makes it fail with ErrBusy.
func (c *Controller) begin(key string, id model.ID) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	busy := c.ops[key].Phase == PhasePending
	if id != "" && c.recordBusyLocked(id) {
		busy = true
	}
	if busy {
		c.m.ObserveOp(opName(key), "busy")
		return 0, fmt.Errorf("%s: %w", key, ErrBusy)
	}
	c.ops[key] = OpState{Key: key, Phase: PhasePending, At: c.now()}
	return c.epoch, nil
}

// finish records the outcome of key. It reports false, recording nothing, when Reset ran
// after the operation began.
func (c *Controller) finish(key string, epoch uint64, err error, msg string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch {
		return false
	}
	st := OpState{Key: key, Phase: PhaseCommitted, At: c.now()}
	if err != nil {
		st.Phase = PhaseFailed
		st.Message = msg
	}
	c.ops[key] = st
	return true
}

func (c *Controller) discarded(op string) {
	c.log.Debug("discarding result from before sign-out", "op", op)
	c.m.ObserveOp(op, "stale")
}

func (c *Controller) succeed(op, msg string) {
	c.notes.Success(msg)
	c.m.ObserveOp(op, "committed")
}

// fail reports err as an error notification and hands it to the session, which signs
// out on authentication failures.
func (c *Controller) fail(ctx context.Context, op string, err error, msg string) {
	c.log.Warn("project operation failed", "op", op, "err", err)
	c.notes.Error(msg)
	c.m.ObserveOp(op, "failed")
	if c.auth != nil {
		c.auth.HandleAuthFailure(context.WithoutCancel(ctx), err)
	}
}

func (c *Controller) notFound(op string) {
	c.notes.Error(msgNotFound)
	c.m.ObserveOp(op, "not_found")
}

func (c *Controller) touchLocked(id model.ID) {
	c.rev++
	c.touched[id] = c.rev
}

func (c *Controller) indexLocked(id model.ID) int {
	for i, p := range c.projects {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// opName maps an op key back to its operation name ("status-3" -> "status").
func opName(key string) string {
	if i := strings.IndexByte(key, '-'); i > 0 {
		return key[:i]
	}
	return key
}
