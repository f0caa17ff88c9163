package repomanager

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/credentials"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/profiles"
)

// compensatingManager serves backends without multi-key transactions. Every
// record created inside WithinTx is remembered and deleted again, newest
// first, when fn fails or panics.
type compensatingManager struct {
	creds credentials.Repository
	profs profiles.Repository
	ping  func(ctx context.Context) error
	close func() error
}

func (m *compensatingManager) Credentials() credentials.Repository { return m.creds }

func (m *compensatingManager) Profiles() profiles.Repository { return m.profs }

func (m *compensatingManager) WithinTx(ctx context.Context, fn TxFunc) (err error) {
	u := &undoLog{}
	c := &trackedCredentials{Repository: m.creds, undo: u}
	p := &trackedProfiles{Repository: m.profs, undo: u}

	defer func() {
		if r := recover(); r != nil {
			_ = u.rollback(context.WithoutCancel(ctx))
			panic(r)
		}
		if err != nil {
			if uerr := u.rollback(context.WithoutCancel(ctx)); uerr != nil {
				err = errors.Join(err, uerr)
			}
		}
	}()

	return fn(ctx, c, p)
}

func (m *compensatingManager) RunMigrations(context.Context) error { return nil }

func (m *compensatingManager) Ping(ctx context.Context) error {
	if m.ping == nil {
		return nil
	}
	return m.ping(ctx)
}

func (m *compensatingManager) Close() error {
	if m.close == nil {
		return nil
	}
	return m.close()
}

type undoLog struct {
	mu    sync.Mutex
	steps []func(context.Context) error
}

func (u *undoLog) push(step func(context.Context) error) {
	u.mu.Lock()
	u.steps = append(u.steps, step)
	u.mu.Unlock()
}

func (u *undoLog) rollback(ctx context.Context) error {
	u.mu.Lock()
	steps := u.steps
	u.steps = nil
	u.mu.Unlock()

	var errs []error
	for i := len(steps) - 1; i >= 0; i-- {
		if err := steps[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("compensation failed: %w", errors.Join(errs...))
	}
	return nil
}

type trackedCredentials struct {
	credentials.Repository
	undo *undoLog
}

func (t *trackedCredentials) Create(ctx context.Context, c *models.Credential) (*models.Credential, error) {
	created, err := t.Repository.Create(ctx, c)
	if err != nil {
		return nil, err
	}
	id := created.ID
	t.undo.push(func(ctx context.Context) error { return t.Repository.Delete(ctx, id) })
	return created, nil
}

type trackedProfiles struct {
	profiles.Repository
	undo *undoLog
}

func (t *trackedProfiles) Create(ctx context.Context, p *models.Profile) (*models.Profile, error) {
	created, err := t.Repository.Create(ctx, p)
	if err != nil {
		return nil, err
	}
	id := created.ID
	t.undo.push(func(ctx context.Context) error { return t.Repository.Delete(ctx, id) })
	return created, nil
}
