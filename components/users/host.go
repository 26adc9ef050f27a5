// components/users/host.go
//
// Form callbacks.  They run inside Machine.Dispatch while the session
// entry is locked, write through the repository, and report outcomes as
// dialogs.  Failures are logged and shown; they never reach the form core.
//
//------------------------------------------------------------------------------

package users

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/yanizio/cadastro/internal/form"
	"github.com/yanizio/cadastro/internal/message"
	"github.com/yanizio/cadastro/internal/metrics"
	"github.com/yanizio/cadastro/internal/session"
	"github.com/yanizio/cadastro/internal/user"
)

// Dialog copy.
var (
	dlgCreated   = message.Success("Sucesso", "Usuário cadastrado com sucesso!")
	dlgUpdated   = message.Success("Sucesso", "Usuário atualizado com sucesso!")
	dlgDeleted   = message.Success("Sucesso", "Usuário excluído com sucesso!")
	dlgDuplicate = message.Error("Erro", "Email ou CPF já cadastrado.")
	dlgNotFound  = message.Error("Erro", "Usuário não encontrado.")
	dlgFailed    = message.Error("Erro", "Não foi possível salvar. Tente novamente.")
)

// host returns the callbacks bound to e.
func (c *Component) host(e *session.Entry) form.Host {
	return form.Host{
		OnSubmit: func(v form.Values) { c.persist(e, v) },
		OnDelete: func() { c.remove(e) },
		OnNotice: func(n form.Notice) {
			metrics.SubmissionsTotal.WithLabelValues("rejected").Inc()
			e.Dialogs.Push(message.Dialog{Icon: n.Icon, Title: n.Title, Text: n.Text})
		},
	}
}

func (c *Component) persist(e *session.Entry, v form.Values) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	log := zap.S().With("session", e.ID, "record", e.RecordID)

	rec, err := user.NewRecord(v, c.bcryptCost)
	if err != nil {
		c.fail(e, "build", err, dlgFailed)
		return
	}

	if e.RecordID == 0 {
		id, err := c.repo.Create(ctx, rec)
		if err != nil {
			c.fail(e, "create", err, dialogFor(err))
			return
		}
		metrics.SubmissionsTotal.WithLabelValues("created").Inc()
		log.Infow("user created", "id", id)
		e.Dialogs.Push(dlgCreated)
		return
	}

	rec.ID = e.RecordID
	if err := c.repo.Update(ctx, rec); err != nil {
		c.fail(e, "update", err, dialogFor(err))
		return
	}
	metrics.SubmissionsTotal.WithLabelValues("updated").Inc()
	log.Infow("user updated")
	e.Dialogs.Push(dlgUpdated)
}

func (c *Component) remove(e *session.Entry) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	if err := c.repo.Delete(ctx, e.RecordID); err != nil {
		c.fail(e, "delete", err, dialogFor(err))
		return
	}
	zap.S().Infow("user deleted", "session", e.ID, "id", e.RecordID)
	e.Dialogs.Push(dlgDeleted)
	e.Finish()
}

func (c *Component) fail(e *session.Entry, op string, err error, d message.Dialog) {
	metrics.CallbackErrorsTotal.WithLabelValues(op).Inc()
	zap.S().Errorw("form callback failed", "op", op, "session", e.ID, "record", e.RecordID, "err", err)
	e.Dialogs.Push(d)
}

func dialogFor(err error) message.Dialog {
	switch {
	case errors.Is(err, user.ErrDuplicate):
		return dlgDuplicate
	case errors.Is(err, user.ErrNotFound):
		return dlgNotFound
	default:
		return dlgFailed
	}
}
